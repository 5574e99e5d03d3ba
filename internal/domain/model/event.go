// Package model holds the domain values shared by the application services
// and the adapters.
package model

// Event is a webhook delivery decoded into one of a closed set of variants.
// Switching on the concrete type covers every case; there is no open-ended
// payload map to probe.
type Event interface {
	isEvent()
}

// PingEvent is the hosting service's webhook handshake.
type PingEvent struct {
	Zen    string
	HookID int64
}

// IssueCommentEvent is a newly created comment on an issue or pull request.
// Only the "created" action decodes to this variant.
type IssueCommentEvent struct {
	Action         string
	Repo           string // owner/name
	IssueNumber    int
	CommentBody    string
	CommenterLogin string
}

// PullRequestEvent is a newly opened pull request. Only the "opened" action
// decodes to this variant.
type PullRequestEvent struct {
	Action  string
	Repo    string // owner/name
	Number  int
	Title   string
	Body    string
	Author  string
	HeadSHA string
	HeadRef string
	BaseRef string
}

// UnrecognizedEvent is any delivery whose event type or action falls outside
// the closed set. It is acknowledged and dropped.
type UnrecognizedEvent struct {
	Type string
}

func (PingEvent) isEvent()         {}
func (IssueCommentEvent) isEvent() {}
func (PullRequestEvent) isEvent()  {}
func (UnrecognizedEvent) isEvent() {}
