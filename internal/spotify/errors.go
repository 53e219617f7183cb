package spotify

import (
	"fmt"
	"time"

	"github.com/desertthunder/spotlite/internal/shared"
)

// StatusError is a non-2xx application error from the Spotify API, carrying
// the remote status and message. These are never retried.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("spotify API error: status %d", e.Code)
	}
	return fmt.Sprintf("spotify API error: status %d: %s", e.Code, e.Message)
}

func (e *StatusError) Unwrap() error { return shared.ErrAPIRequest }

// RateLimitError is surfaced when a request is still rate-limited after one
// honored backoff-and-retry cycle.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return shared.ErrRateLimited }

// apiErrorBody is Spotify's error envelope.
type apiErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}
