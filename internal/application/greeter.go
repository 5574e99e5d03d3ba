package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/griffinwalsh/hookbill/internal/domain/model"
)

const (
	greetCommand   = "/greet"
	greetingFormat = "👋 Hello @%s! Thanks for using the greeting command."
)

// Greeter answers the /greet command on issue and pull request comments.
type Greeter struct {
	publisher *Publisher
}

// NewGreeter creates a new Greeter.
func NewGreeter(publisher *Publisher) *Greeter {
	return &Greeter{publisher: publisher}
}

// HandleIssueComment posts a greeting when a newly created comment's body,
// after trimming whitespace, is exactly the /greet command. The greeting
// mentions the commenter and doubles as its own dedup marker, so a
// redelivered webhook greets each commenter at most once. Anything else is
// acknowledged without effect.
func (g *Greeter) HandleIssueComment(ctx context.Context, ev model.IssueCommentEvent, delivery *model.Delivery) error {
	log := slog.With("delivery", delivery.ID, "repo", ev.Repo, "issue", ev.IssueNumber)

	if ev.Action != "created" || strings.TrimSpace(ev.CommentBody) != greetCommand {
		advanceStage(delivery, model.StageDone)
		log.Debug("comment is not a greet command, ignoring")
		return nil
	}

	greeting := fmt.Sprintf(greetingFormat, ev.CommenterLogin)
	created, err := g.publisher.EnsureIssueComment(ctx, ev.Repo, ev.IssueNumber, greeting, greeting)
	if err != nil {
		advanceStage(delivery, model.StageFailed)
		return fmt.Errorf("posting greeting: %w", err)
	}

	advanceStage(delivery, model.StageDone)
	if created {
		log.Info("greeted commenter", "login", ev.CommenterLogin)
	} else {
		log.Info("greeting already present, skipping", "login", ev.CommenterLogin)
	}
	return nil
}
