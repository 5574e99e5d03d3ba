package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v82/github"

	"github.com/griffinwalsh/hookbill/internal/domain/model"
)

// CreateReviewComment anchors a comment to a diff position of the given
// commit. Position is the offset into the file's rendered patch text, not a
// file line number.
func (c *Client) CreateReviewComment(ctx context.Context, repoFullName string, prNumber int, commitSHA string, comment model.ReviewComment) error {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return err
	}

	prComment := &gh.PullRequestComment{
		Body:     gh.Ptr(comment.Body),
		CommitID: gh.Ptr(commitSHA),
		Path:     gh.Ptr(comment.Anchor.Path),
		Position: gh.Ptr(comment.Anchor.Position),
	}

	_, resp, err := c.gh.PullRequests.CreateComment(ctx, owner, repo, prNumber, prComment)
	if err != nil {
		return fmt.Errorf("creating review comment on %s#%d at %s:%d: %w",
			repoFullName, prNumber, comment.Anchor.Path, comment.Anchor.Position, classify(resp, err, true))
	}

	logRateLimit(resp, repoFullName+"/create-review-comment", 0, 1)
	return nil
}

// CreateIssueComment adds a PR-level comment via the Issues API.
func (c *Client) CreateIssueComment(ctx context.Context, repoFullName string, prNumber int, body string) error {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return err
	}

	comment := &gh.IssueComment{Body: gh.Ptr(body)}
	_, resp, err := c.gh.Issues.CreateComment(ctx, owner, repo, prNumber, comment)
	if err != nil {
		return fmt.Errorf("creating comment on %s#%d: %w", repoFullName, prNumber, classify(resp, err, true))
	}

	logRateLimit(resp, repoFullName+"/create-comment", 0, 1)
	return nil
}
