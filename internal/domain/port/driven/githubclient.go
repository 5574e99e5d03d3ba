package driven

import (
	"context"

	"github.com/griffinwalsh/hookbill/internal/domain/model"
)

// GitHubClient defines the driven port for interacting with the GitHub API.
// Read methods fetch data; write methods create comments. Implementations map
// transport failures onto the model error kinds.
type GitHubClient interface {
	// Read methods

	// AuthenticatedLogin returns the login of the credential's user. Called
	// once at startup as a self-check; the login also keys comment dedup.
	AuthenticatedLogin(ctx context.Context) (string, error)
	// FetchChangedFiles lists every file changed by a pull request,
	// following pagination.
	FetchChangedFiles(ctx context.Context, repoFullName string, prNumber int) ([]model.ChangedFile, error)
	// FetchFileContent returns the decoded content of path at ref.
	FetchFileContent(ctx context.Context, repoFullName string, path string, ref string) (string, error)
	FetchReviewComments(ctx context.Context, repoFullName string, prNumber int) ([]model.PostedReviewComment, error)
	FetchIssueComments(ctx context.Context, repoFullName string, prNumber int) ([]model.PostedIssueComment, error)

	// Write methods

	// CreateReviewComment anchors a comment to a diff position of the given
	// commit.
	CreateReviewComment(ctx context.Context, repoFullName string, prNumber int, commitSHA string, comment model.ReviewComment) error
	// CreateIssueComment adds a PR-level comment (via the Issues API).
	CreateIssueComment(ctx context.Context, repoFullName string, prNumber int, body string) error
}
