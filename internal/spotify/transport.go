package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/spotlite/internal/shared"
)

// maxAttempts bounds retries of a single request on transient failures
// (network errors and 5xx responses), counting the initial attempt.
const maxAttempts = 3

// defaultRetryAfter is used when a 429 response carries no Retry-After header.
const defaultRetryAfter = time.Second

// do executes one authenticated request against the API and decodes the JSON
// response into out (skipped when out is nil). path may be a resource path or
// an absolute URL, which is how pagination follows `next` pointers.
//
// Recovery rules, in order:
//   - 401 once: force a token refresh and replay the request; a second 401,
//     or a 403, is surfaced as an authentication failure.
//   - 429 once: honor the provider's Retry-After, then replay; a second 429
//     surfaces [RateLimitError].
//   - network errors and 5xx: retried up to maxAttempts with exponential
//     backoff and jitter.
//   - any other non-2xx: surfaced as [StatusError], never retried.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.endpointURL(path, query)

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	var refreshed, rateLimited bool
	attempt := 1
	backoff := c.retryBackoff

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		resp, err := c.send(ctx, method, endpoint, payload, token)
		if err != nil {
			if attempt >= maxAttempts {
				return fmt.Errorf("%w: %s %s after %d attempts: %v", shared.ErrNetwork, method, endpoint, attempt, err)
			}
			c.logger.Warn("request failed, retrying", "method", method, "url", endpoint, "attempt", attempt, "error", err)
			if err := sleep(ctx, jitter(backoff)); err != nil {
				return err
			}
			attempt++
			backoff *= 2
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("%w: reading response: %v", shared.ErrNetwork, readErr)
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized && !refreshed:
			refreshed = true
			if token, err = c.refreshAfter(ctx, token); err != nil {
				return err
			}
			continue

		case resp.StatusCode == http.StatusTooManyRequests:
			wait := retryAfter(resp)
			if rateLimited {
				return &RateLimitError{RetryAfter: wait}
			}
			rateLimited = true
			c.logger.Warn("rate limited, backing off", "url", endpoint, "wait", wait)
			if err := sleep(ctx, wait); err != nil {
				return err
			}
			continue

		case resp.StatusCode >= http.StatusInternalServerError && attempt < maxAttempts:
			c.logger.Warn("server error, retrying", "url", endpoint, "status", resp.StatusCode, "attempt", attempt)
			if err := sleep(ctx, jitter(backoff)); err != nil {
				return err
			}
			attempt++
			backoff *= 2
			continue

		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return statusError(resp.StatusCode, respBody)
		}

		if out != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
		}

		return nil
	}
}

// send issues a single signed HTTP request.
func (c *Client) send(ctx context.Context, method, endpoint string, payload []byte, token string) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

// endpointURL joins a resource path with the API base, passing absolute URLs
// (pagination cursors) through untouched.
func (c *Client) endpointURL(path string, query url.Values) string {
	endpoint := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		endpoint = c.baseURL + path
	}

	if len(query) > 0 {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint += sep + query.Encode()
	}

	return endpoint
}

// statusError maps a non-2xx response to the error taxonomy: 401/403 are
// authentication failures, everything else carries the remote status and
// message.
func statusError(code int, body []byte) error {
	var envelope apiErrorBody
	message := ""
	if err := json.Unmarshal(body, &envelope); err == nil {
		message = envelope.Error.Message
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}

	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		return fmt.Errorf("%w: status %d: %s", shared.ErrAuthFailed, code, message)
	}

	return &StatusError{Code: code, Message: message}
}

// retryAfter reads the provider-specified wait from a 429 response.
func retryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return defaultRetryAfter
	}

	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return defaultRetryAfter
	}

	return time.Duration(seconds) * time.Second
}

// jitter randomizes a backoff duration by ±20% to avoid synchronized retries.
func jitter(d time.Duration) time.Duration {
	return time.Duration(float64(d) * (0.8 + rand.Float64()*0.4))
}

// sleep waits for d, honoring context cancellation.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
