// Package httphandler is the HTTP driving adapter: it receives webhook
// deliveries, verifies their signatures, decodes them into domain events,
// and dispatches to the application services.
package httphandler

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/griffinwalsh/hookbill/internal/application"
	"github.com/griffinwalsh/hookbill/internal/domain/model"
)

// maxWebhookBody caps request bodies at the hosting service's documented
// webhook payload limit of 25 MB.
const maxWebhookBody = 25 << 20

// Handler is the HTTP driving adapter that serves the webhook endpoint.
type Handler struct {
	secret  []byte
	reviews *application.ReviewService
	greeter *application.Greeter
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	secret []byte,
	reviews *application.ReviewService,
	greeter *application.Greeter,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		secret:  secret,
		reviews: reviews,
		greeter: greeter,
		logger:  logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /webhook", h.Webhook)
	mux.HandleFunc("GET /healthz", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Webhook handles one webhook delivery synchronously: the raw body is read
// and its signature verified before any JSON decoding, and the response is
// written only after the event has been fully processed. A signature
// mismatch is the only 401; processing failures return 500 so the sender
// marks the delivery failed and may redeliver.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return
	}

	delivery := model.NewDelivery(r.Header.Get("X-GitHub-Delivery"))

	if !VerifySignature(h.secret, r.Header.Get("X-Hub-Signature-256"), body) {
		h.logger.Warn("webhook signature verification failed", "delivery", delivery.ID)
		writeError(w, http.StatusUnauthorized, "invalid signature")
		return
	}
	if err := delivery.Advance(model.StageVerified); err != nil {
		h.logger.Warn("stage transition rejected", "delivery", delivery.ID, "error", err)
	}

	eventType := r.Header.Get("X-GitHub-Event")
	event, err := decodeEvent(eventType, body)
	if err != nil {
		h.logger.Warn("undecodable webhook payload",
			"delivery", delivery.ID,
			"event", eventType,
			"error", err)
		writeJSON(w, http.StatusOK, WebhookResponse{Status: "ignored"})
		return
	}

	switch e := event.(type) {
	case model.PingEvent:
		h.logger.Info("webhook ping received",
			"delivery", delivery.ID,
			"hook_id", e.HookID,
			"zen", e.Zen)
		writeJSON(w, http.StatusOK, WebhookResponse{Status: "acknowledged"})

	case model.IssueCommentEvent:
		if err := h.greeter.HandleIssueComment(r.Context(), e, delivery); err != nil {
			h.logger.Error("issue comment handling failed",
				"delivery", delivery.ID,
				"repo", e.Repo,
				"issue", e.IssueNumber,
				"error", err)
			writeError(w, http.StatusInternalServerError, "event processing failed")
			return
		}
		writeJSON(w, http.StatusOK, WebhookResponse{Status: "ok"})

	case model.PullRequestEvent:
		if err := h.reviews.HandlePullRequest(r.Context(), e, delivery); err != nil {
			h.logger.Error("pull request review failed",
				"delivery", delivery.ID,
				"repo", e.Repo,
				"pr", e.Number,
				"error", err)
			writeError(w, http.StatusInternalServerError, "event processing failed")
			return
		}
		writeJSON(w, http.StatusOK, WebhookResponse{Status: "ok"})

	case model.UnrecognizedEvent:
		h.logger.Debug("unrecognized webhook event, dropping",
			"delivery", delivery.ID,
			"type", e.Type)
		writeJSON(w, http.StatusOK, WebhookResponse{Status: "acknowledged"})
	}
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
