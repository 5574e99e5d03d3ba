package driven

import "context"

// Reviewer defines the driven port for the AI collaborator. Implementations
// make exactly one attempt per call; redelivered webhooks are the only retry
// mechanism.
type Reviewer interface {
	// Review sends one review prompt and returns the narrative text.
	Review(ctx context.Context, prompt string) (string, error)
}
