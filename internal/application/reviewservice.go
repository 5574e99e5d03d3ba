// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/griffinwalsh/hookbill/internal/domain/diff"
	"github.com/griffinwalsh/hookbill/internal/domain/model"
	"github.com/griffinwalsh/hookbill/internal/domain/port/driven"
)

const (
	noFilesCommentBody = "PR Comment by Bot - No files found to review"

	progressCommentFormat = progressCommentMarker + "\n\n" +
		"I'm analyzing your pull request and will provide a detailed code review shortly.\n\n" +
		"Reviewing %d file(s) changed in this PR.\n\n" +
		"Please wait while I process the code..."
)

// fileResult is the outcome of reviewing one changed file. Exactly one of
// comment and skipReason is set.
type fileResult struct {
	path       string
	comment    *model.ReviewComment
	skipReason string
}

// ReviewService orchestrates the review of a newly opened pull request:
// list the changed files, ask the reviewer for a narrative per file, anchor
// each narrative to a diff position, and hand the batch to the publisher.
// One file failing never fails the delivery; the file is skipped and named
// in the summary.
type ReviewService struct {
	github    driven.GitHubClient
	reviewer  driven.Reviewer
	publisher *Publisher
	preamble  string
	focus     []string
	aiTimeout time.Duration
}

// NewReviewService creates a new ReviewService with the required
// dependencies. preamble and focus steer the review prompt; aiTimeout
// bounds each reviewer call.
func NewReviewService(
	github driven.GitHubClient,
	reviewer driven.Reviewer,
	publisher *Publisher,
	preamble string,
	focus []string,
	aiTimeout time.Duration,
) *ReviewService {
	return &ReviewService{
		github:    github,
		reviewer:  reviewer,
		publisher: publisher,
		preamble:  preamble,
		focus:     focus,
		aiTimeout: aiTimeout,
	}
}

// HandlePullRequest runs the full review pipeline for an opened pull
// request. The delivery advances through Analyzing and Publishing to Done,
// or to Failed when a top-level step (file listing, publishing) errors.
func (s *ReviewService) HandlePullRequest(ctx context.Context, ev model.PullRequestEvent, delivery *model.Delivery) error {
	log := slog.With("delivery", delivery.ID, "repo", ev.Repo, "pr", ev.Number)

	advanceStage(delivery, model.StageAnalyzing)
	log.Info("starting pull request review", "title", ev.Title, "head", ev.HeadSHA)

	files, err := s.github.FetchChangedFiles(ctx, ev.Repo, ev.Number)
	if err != nil {
		advanceStage(delivery, model.StageFailed)
		return fmt.Errorf("fetching changed files: %w", err)
	}

	if len(files) == 0 {
		if _, err := s.publisher.EnsureIssueComment(ctx, ev.Repo, ev.Number, noFilesCommentBody, noFilesCommentBody); err != nil {
			advanceStage(delivery, model.StageFailed)
			return fmt.Errorf("posting no-files comment: %w", err)
		}
		advanceStage(delivery, model.StageDone)
		log.Info("pull request has no changed files, nothing to review")
		return nil
	}

	progress := fmt.Sprintf(progressCommentFormat, len(files))
	if _, err := s.publisher.EnsureIssueComment(ctx, ev.Repo, ev.Number, progressCommentMarker, progress); err != nil {
		log.Warn("could not post progress comment, continuing", "error", err)
	}

	results := make([]fileResult, 0, len(files))
	for _, f := range files {
		res, err := s.reviewFile(ctx, ev, f)
		if err != nil {
			advanceStage(delivery, model.StageFailed)
			return fmt.Errorf("reviewing %s: %w", f.Path, err)
		}
		if res.skipReason != "" {
			log.Info("skipping file", "path", f.Path, "reason", res.skipReason)
		}
		results = append(results, res)
	}

	comments := make([]model.ReviewComment, 0, len(results))
	for _, r := range results {
		if r.comment != nil {
			comments = append(comments, *r.comment)
		}
	}

	advanceStage(delivery, model.StagePublishing)
	pub, err := s.publisher.PublishReviewComments(ctx, ev.Repo, ev.Number, ev.HeadSHA, comments)
	if err != nil {
		advanceStage(delivery, model.StageFailed)
		return fmt.Errorf("publishing review comments: %w", err)
	}

	summary := buildSummary(len(files), results, pub)
	if _, err := s.publisher.EnsureIssueComment(ctx, ev.Repo, ev.Number, summaryCommentMarker, summary); err != nil {
		advanceStage(delivery, model.StageFailed)
		return fmt.Errorf("posting summary comment: %w", err)
	}

	advanceStage(delivery, model.StageDone)
	log.Info("pull request review complete",
		"files", len(files),
		"reviewed", len(comments),
		"posted", pub.Posted,
		"duplicates", pub.Duplicates,
		"failed", pub.Failed,
	)
	return nil
}

// reviewFile reviews one changed file. Per-file failures are absorbed into
// the returned fileResult; the error return is reserved for conditions that
// must abort the whole delivery (rate limiting, dead credentials).
func (s *ReviewService) reviewFile(ctx context.Context, ev model.PullRequestEvent, file model.ChangedFile) (fileResult, error) {
	res := fileResult{path: file.Path}

	if file.Status == model.FileStatusRemoved {
		res.skipReason = "file was removed"
		return res, nil
	}
	if file.Patch == "" {
		res.skipReason = "no diff content (binary or rename)"
		return res, nil
	}

	content, err := s.github.FetchFileContent(ctx, ev.Repo, file.Path, ev.HeadSHA)
	switch {
	case abortWorthy(err):
		return res, err
	case err != nil:
		res.skipReason = fmt.Sprintf("could not fetch file content: %v", err)
		return res, nil
	}
	file.Content = content

	fp, err := diff.Parse(file.Path, file.Patch)
	if err != nil {
		res.skipReason = fmt.Sprintf("unparseable patch: %v", err)
		return res, nil
	}
	if _, ok := fp.FirstAnchor(); !ok {
		res.skipReason = "no commentable lines in diff"
		return res, nil
	}

	prompt := buildReviewPrompt(ev, file, s.preamble, s.focus)

	aiCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()
	narrative, err := s.reviewer.Review(aiCtx, prompt)
	switch {
	case abortWorthy(err):
		return res, err
	case err != nil:
		res.skipReason = fmt.Sprintf("review generation failed: %v", err)
		return res, nil
	}

	anchor, ok := selectAnchor(fp, narrative)
	if !ok {
		res.skipReason = "no commentable lines in diff"
		return res, nil
	}

	res.comment = &model.ReviewComment{
		Anchor: anchor,
		Body:   fmt.Sprintf("%s `%s`\n\n%s", reviewCommentMarker, file.Path, narrative),
	}
	return res, nil
}

// abortWorthy reports whether an error must abort the delivery instead of
// skipping a single file. Rate limits and dead credentials affect every
// remaining call, so the delivery fails and webhook redelivery retries.
func abortWorthy(err error) bool {
	return errors.Is(err, model.ErrRateLimited) || errors.Is(err, model.ErrAuthentication)
}

// buildSummary renders the closing issue comment: counts from the publish
// batch plus one line per skipped file.
func buildSummary(total int, results []fileResult, pub PublishResult) string {
	var b strings.Builder
	b.WriteString(summaryCommentMarker)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "I've reviewed %d file(s) in this pull request.\n\n", total)
	fmt.Fprintf(&b, "- Successfully posted %d review comment(s)\n", pub.Posted)
	fmt.Fprintf(&b, "- Failed to post %d review comment(s)\n", pub.Failed)
	if pub.Duplicates > 0 {
		fmt.Fprintf(&b, "- Skipped %d review comment(s) already posted\n", pub.Duplicates)
	}

	var skipped []fileResult
	for _, r := range results {
		if r.skipReason != "" {
			skipped = append(skipped, r)
		}
	}
	if len(skipped) > 0 {
		b.WriteString("\nSkipped files:\n")
		for _, r := range skipped {
			fmt.Fprintf(&b, "- `%s`: %s\n", r.path, r.skipReason)
		}
	}

	b.WriteString("\nPlease review the comments and make any necessary changes. If you have any questions about the review, feel free to ask!")
	return b.String()
}

// advanceStage moves a delivery along its lifecycle, logging the new stage.
// An illegal edge is logged and otherwise ignored; stage bookkeeping never
// takes down a delivery that is making progress.
func advanceStage(d *model.Delivery, to model.Stage) {
	if err := d.Advance(to); err != nil {
		slog.Warn("stage transition rejected", "delivery", d.ID, "error", err)
		return
	}
	slog.Debug("delivery stage advanced", "delivery", d.ID, "stage", to)
}
