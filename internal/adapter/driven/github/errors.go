package github

import (
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v82/github"

	"github.com/griffinwalsh/hookbill/internal/domain/model"
)

// classify maps a failed go-github call onto the model error kinds so callers
// can branch with errors.Is. write selects the publish-side mapping, where a
// non-auth 4xx means the comment itself is unpostable.
func classify(resp *gh.Response, err error, write bool) error {
	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return fmt.Errorf("%w: %w", model.ErrRateLimited, err)
	}

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %w", model.ErrAuthentication, err)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %w", model.ErrNotFound, err)
	case write && status >= 400 && status < 500:
		return fmt.Errorf("%w: %w", model.ErrUnrecoverablePublish, err)
	default:
		// 5xx, other 4xx on reads, and transport failures that never
		// produced a response.
		return fmt.Errorf("%w: %w", model.ErrTransientFetch, err)
	}
}
