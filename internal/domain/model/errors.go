package model

import "errors"

// Error kinds returned by the driven adapters. Adapters wrap these with %w so
// callers branch with errors.Is. The system never retries internally; webhook
// redelivery is the sole retry mechanism.
var (
	// ErrAuthentication covers rejected credentials (401, or 403 that is not
	// a rate limit). Fail fast at startup, fail the delivery afterwards.
	ErrAuthentication = errors.New("authentication rejected")

	// ErrNotFound covers missing resources (404).
	ErrNotFound = errors.New("not found")

	// ErrRateLimited covers primary and secondary API rate limits. The
	// current attempt is abandoned; a redelivery retries it.
	ErrRateLimited = errors.New("rate limited")

	// ErrTransientFetch covers 5xx responses and network failures while
	// reading from the hosting API. Per-file fetches absorb it and skip the
	// file.
	ErrTransientFetch = errors.New("transient fetch failure")

	// ErrUnrecoverablePublish covers 4xx responses while creating a comment.
	// The comment is skipped and the batch continues.
	ErrUnrecoverablePublish = errors.New("unrecoverable publish failure")
)
