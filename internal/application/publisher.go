package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/griffinwalsh/hookbill/internal/domain/model"
	"github.com/griffinwalsh/hookbill/internal/domain/port/driven"
)

// Marker prefixes identify comments this bot has posted. Idempotency is
// derived entirely from hosting API state: before publishing, existing
// comments are fetched and any bot-authored comment starting with the
// relevant marker is treated as already delivered.
const (
	reviewCommentMarker   = "# AI Code Review for"
	progressCommentMarker = "# 🤖 AI Code Review in Progress"
	summaryCommentMarker  = "# 🤖 AI Code Review Complete"
)

// PublishResult tallies the outcome of a review-comment batch.
type PublishResult struct {
	Posted     int
	Duplicates int
	Failed     int
}

// Publisher writes bot comments to the hosting service, skipping anything
// already present so a redelivered webhook never duplicates output.
type Publisher struct {
	github   driven.GitHubClient
	botLogin string
}

// NewPublisher creates a Publisher. botLogin is the authenticated account
// name used to recognize the bot's own comments; it may be empty (App
// installations cannot resolve their own login), in which case ownership
// is inferred from marker prefixes alone.
func NewPublisher(github driven.GitHubClient, botLogin string) *Publisher {
	return &Publisher{
		github:   github,
		botLogin: botLogin,
	}
}

// EnsureIssueComment posts body to the pull request conversation unless the
// bot already left a comment starting with marker. It reports whether a new
// comment was created.
func (p *Publisher) EnsureIssueComment(ctx context.Context, repoFullName string, prNumber int, marker, body string) (bool, error) {
	existing, err := p.github.FetchIssueComments(ctx, repoFullName, prNumber)
	if err != nil {
		return false, fmt.Errorf("fetching issue comments: %w", err)
	}

	for _, c := range existing {
		if strings.HasPrefix(c.Body, marker) && p.authoredByBot(c.Author) {
			slog.Debug("issue comment already present, skipping",
				"repo", repoFullName,
				"pr", prNumber,
				"marker", firstLine(marker))
			return false, nil
		}
	}

	if err := p.github.CreateIssueComment(ctx, repoFullName, prNumber, body); err != nil {
		return false, fmt.Errorf("creating issue comment: %w", err)
	}
	return true, nil
}

// PublishReviewComments posts a batch of inline review comments against
// commitSHA. Comments whose (path, position) slot is already occupied by a
// bot comment are counted as duplicates. A comment the hosting service
// permanently rejects is logged and counted as failed without aborting the
// rest of the batch; any other error aborts so webhook redelivery can retry.
func (p *Publisher) PublishReviewComments(ctx context.Context, repoFullName string, prNumber int, commitSHA string, comments []model.ReviewComment) (PublishResult, error) {
	var result PublishResult
	if len(comments) == 0 {
		return result, nil
	}

	existing, err := p.github.FetchReviewComments(ctx, repoFullName, prNumber)
	if err != nil {
		return result, fmt.Errorf("fetching review comments: %w", err)
	}

	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		if strings.HasPrefix(c.Body, reviewCommentMarker) && p.authoredByBot(c.Author) {
			seen[anchorKey(c.Path, c.Position)] = true
		}
	}

	for _, c := range comments {
		key := anchorKey(c.Anchor.Path, c.Anchor.Position)
		if seen[key] {
			slog.Debug("review comment already present, skipping",
				"repo", repoFullName,
				"pr", prNumber,
				"path", c.Anchor.Path,
				"position", c.Anchor.Position)
			result.Duplicates++
			continue
		}

		err := p.github.CreateReviewComment(ctx, repoFullName, prNumber, commitSHA, c)
		switch {
		case err == nil:
			seen[key] = true
			result.Posted++
		case errors.Is(err, model.ErrUnrecoverablePublish):
			slog.Warn("review comment rejected, continuing",
				"repo", repoFullName,
				"pr", prNumber,
				"path", c.Anchor.Path,
				"position", c.Anchor.Position,
				"error", err)
			result.Failed++
		default:
			return result, fmt.Errorf("creating review comment on %s: %w", c.Anchor.Path, err)
		}
	}

	return result, nil
}

// authoredByBot reports whether a comment author is this bot. When the
// login could not be resolved at startup the marker prefix already matched,
// so any author is accepted.
func (p *Publisher) authoredByBot(author string) bool {
	return p.botLogin == "" || author == p.botLogin
}

func anchorKey(path string, position int) string {
	return path + ":" + strconv.Itoa(position)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
