package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	anthropicadapter "github.com/griffinwalsh/hookbill/internal/adapter/driven/anthropic"
	githubadapter "github.com/griffinwalsh/hookbill/internal/adapter/driven/github"
	httphandler "github.com/griffinwalsh/hookbill/internal/adapter/driving/http"
	"github.com/griffinwalsh/hookbill/internal/application"
	"github.com/griffinwalsh/hookbill/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})))
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"auth_mode", authMode(cfg),
		"anthropic_model", cfg.AnthropicModel,
		"ai_timeout", cfg.AITimeout,
	)

	// 2. Review guidelines: embedded defaults unless a file overrides them.
	guidelines, err := config.LoadGuidelines(cfg.GuidelinesFile)
	if err != nil {
		return err
	}
	if cfg.GuidelinesFile != "" {
		slog.Info("review guidelines loaded", "file", cfg.GuidelinesFile)
	}

	// 3. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Create the GitHub client for the configured credential mode.
	ghClient, err := newGitHubClient(cfg)
	if err != nil {
		return err
	}

	// 5. Startup self-check: resolve the bot login used for comment dedup.
	// App installations cannot call the user endpoint, so in app mode the
	// publisher recognizes its comments by marker prefix instead.
	var botLogin string
	if !cfg.UseAppAuth() {
		checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		login, err := ghClient.AuthenticatedLogin(checkCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("github credential self-check: %w", err)
		}
		botLogin = login
		slog.Info("github credentials verified", "login", login)
	}

	// 6. Wire the reviewer, publisher, and services.
	reviewer := anthropicadapter.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicBaseURL, cfg.AnthropicModel, cfg.AITimeout)
	publisher := application.NewPublisher(ghClient, botLogin)
	reviewSvc := application.NewReviewService(ghClient, reviewer, publisher,
		guidelines.Preamble, guidelines.Focus, cfg.AITimeout)
	greeter := application.NewGreeter(publisher)

	// 7. Create the HTTP handler and register routes.
	handler := httphandler.NewHandler([]byte(cfg.WebhookSecret), reviewSvc, greeter, slog.Default())
	mux := httphandler.NewServeMux(handler, slog.Default())

	// Webhook processing is synchronous, so the write timeout must outlive
	// a full multi-file review, not just a fast response.
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	// 8. Log startup complete.
	slog.Info("hookbill started", "listen_addr", cfg.ListenAddr)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout to drain in-flight deliveries.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// newGitHubClient builds the client for whichever credential mode the
// config selected: a personal access token, or GitHub App installation
// auth with an auto-refreshing installation token.
func newGitHubClient(cfg *config.Config) (*githubadapter.Client, error) {
	if cfg.UseAppAuth() {
		key, err := os.ReadFile(cfg.GitHubAppPrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("reading GitHub App private key: %w", err)
		}
		return githubadapter.NewAppClient(cfg.GitHubAppID, cfg.GitHubAppInstallationID, key)
	}
	return githubadapter.NewClient(cfg.GitHubToken), nil
}

func authMode(cfg *config.Config) string {
	if cfg.UseAppAuth() {
		return "app"
	}
	return "token"
}
