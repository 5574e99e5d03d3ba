package application

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/griffinwalsh/hookbill/internal/domain/model"
)

func reviewCommentAt(path string, position int) model.ReviewComment {
	return model.ReviewComment{
		Anchor: model.CommentAnchor{Path: path, Position: position, Line: position},
		Body:   fmt.Sprintf("%s `%s`\n\nBody.", reviewCommentMarker, path),
	}
}

// --- Tests for EnsureIssueComment ---

func TestEnsureIssueComment_CreatesWhenAbsent(t *testing.T) {
	host := &mockHost{login: "hookbill"}
	p := NewPublisher(host, "hookbill")

	created, err := p.EnsureIssueComment(context.Background(), "owner/repo", 7, summaryCommentMarker, summaryCommentMarker+"\n\nAll done.")

	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, host.createdIssues, 1)
}

func TestEnsureIssueComment_SkipsWhenBotCommentExists(t *testing.T) {
	host := &mockHost{
		login: "hookbill",
		issueComments: []model.PostedIssueComment{
			{Author: "hookbill", Body: summaryCommentMarker + "\n\nOld run."},
		},
	}
	p := NewPublisher(host, "hookbill")

	created, err := p.EnsureIssueComment(context.Background(), "owner/repo", 7, summaryCommentMarker, summaryCommentMarker+"\n\nNew run.")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Empty(t, host.createdIssues)
}

func TestEnsureIssueComment_IgnoresOtherAuthors(t *testing.T) {
	// A human quoting the bot's header must not suppress the bot's comment.
	host := &mockHost{
		login: "hookbill",
		issueComments: []model.PostedIssueComment{
			{Author: "alice", Body: summaryCommentMarker + "\n\nLooks like the bot said..."},
		},
	}
	p := NewPublisher(host, "hookbill")

	created, err := p.EnsureIssueComment(context.Background(), "owner/repo", 7, summaryCommentMarker, summaryCommentMarker+"\n\nReal summary.")

	require.NoError(t, err)
	assert.True(t, created)
}

func TestEnsureIssueComment_EmptyLoginMatchesByMarkerAlone(t *testing.T) {
	// App installations cannot resolve their own login; dedup then rests on
	// the marker prefix.
	host := &mockHost{
		issueComments: []model.PostedIssueComment{
			{Author: "some-app[bot]", Body: summaryCommentMarker + "\n\nOld run."},
		},
	}
	p := NewPublisher(host, "")

	created, err := p.EnsureIssueComment(context.Background(), "owner/repo", 7, summaryCommentMarker, summaryCommentMarker+"\n\nNew run.")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Empty(t, host.createdIssues)
}

func TestEnsureIssueComment_FetchErrorPropagates(t *testing.T) {
	host := &mockHost{
		login:         "hookbill",
		fetchIssueErr: fmt.Errorf("%w: 503", model.ErrTransientFetch),
	}
	p := NewPublisher(host, "hookbill")

	_, err := p.EnsureIssueComment(context.Background(), "owner/repo", 7, summaryCommentMarker, "body")

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrTransientFetch)
}

// --- Tests for PublishReviewComments ---

func TestPublishReviewComments_PostsBatch(t *testing.T) {
	host := &mockHost{login: "hookbill"}
	p := NewPublisher(host, "hookbill")

	result, err := p.PublishReviewComments(context.Background(), "owner/repo", 7, "abc123",
		[]model.ReviewComment{reviewCommentAt("a.go", 2), reviewCommentAt("b.go", 4)})

	require.NoError(t, err)
	assert.Equal(t, PublishResult{Posted: 2}, result)
	require.Len(t, host.createdReviews, 2)
	assert.Equal(t, []string{"abc123", "abc123"}, host.createdSHAs)
}

func TestPublishReviewComments_EmptyBatchFetchesNothing(t *testing.T) {
	host := &mockHost{
		login:          "hookbill",
		fetchReviewErr: fmt.Errorf("%w: should not be called", model.ErrTransientFetch),
	}
	p := NewPublisher(host, "hookbill")

	result, err := p.PublishReviewComments(context.Background(), "owner/repo", 7, "abc123", nil)

	require.NoError(t, err)
	assert.Equal(t, PublishResult{}, result)
}

func TestPublishReviewComments_SkipsExistingAnchor(t *testing.T) {
	host := &mockHost{
		login: "hookbill",
		reviewComments: []model.PostedReviewComment{
			{Author: "hookbill", Path: "a.go", Position: 2, Body: reviewCommentMarker + " `a.go`\n\nOld."},
		},
	}
	p := NewPublisher(host, "hookbill")

	result, err := p.PublishReviewComments(context.Background(), "owner/repo", 7, "abc123",
		[]model.ReviewComment{reviewCommentAt("a.go", 2), reviewCommentAt("a.go", 5)})

	require.NoError(t, err)
	assert.Equal(t, PublishResult{Posted: 1, Duplicates: 1}, result)
	require.Len(t, host.createdReviews, 1)
	assert.Equal(t, 5, host.createdReviews[0].Anchor.Position)
}

func TestPublishReviewComments_OtherAuthorsDoNotCount(t *testing.T) {
	host := &mockHost{
		login: "hookbill",
		reviewComments: []model.PostedReviewComment{
			{Author: "alice", Path: "a.go", Position: 2, Body: "Human comment."},
		},
	}
	p := NewPublisher(host, "hookbill")

	result, err := p.PublishReviewComments(context.Background(), "owner/repo", 7, "abc123",
		[]model.ReviewComment{reviewCommentAt("a.go", 2)})

	require.NoError(t, err)
	assert.Equal(t, PublishResult{Posted: 1}, result)
}

func TestPublishReviewComments_ContinuesPastUnrecoverable(t *testing.T) {
	host := &mockHost{
		login: "hookbill",
		reviewErrs: map[string]error{
			"bad.go": fmt.Errorf("%w: 422 position invalid", model.ErrUnrecoverablePublish),
		},
	}
	p := NewPublisher(host, "hookbill")

	result, err := p.PublishReviewComments(context.Background(), "owner/repo", 7, "abc123",
		[]model.ReviewComment{
			reviewCommentAt("good.go", 1),
			reviewCommentAt("bad.go", 3),
			reviewCommentAt("also-good.go", 2),
		})

	require.NoError(t, err)
	assert.Equal(t, PublishResult{Posted: 2, Failed: 1}, result)
	require.Len(t, host.createdReviews, 2)
}

func TestPublishReviewComments_AbortsOnRateLimit(t *testing.T) {
	host := &mockHost{
		login: "hookbill",
		reviewErrs: map[string]error{
			"a.go": fmt.Errorf("%w: secondary limit", model.ErrRateLimited),
		},
	}
	p := NewPublisher(host, "hookbill")

	_, err := p.PublishReviewComments(context.Background(), "owner/repo", 7, "abc123",
		[]model.ReviewComment{reviewCommentAt("a.go", 2), reviewCommentAt("b.go", 4)})

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrRateLimited)
	assert.Empty(t, host.createdReviews)
}

func TestPublishReviewComments_FetchErrorAborts(t *testing.T) {
	host := &mockHost{
		login:          "hookbill",
		fetchReviewErr: fmt.Errorf("%w: 502", model.ErrTransientFetch),
	}
	p := NewPublisher(host, "hookbill")

	_, err := p.PublishReviewComments(context.Background(), "owner/repo", 7, "abc123",
		[]model.ReviewComment{reviewCommentAt("a.go", 2)})

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrTransientFetch)
}
