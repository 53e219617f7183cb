package shared

import "fmt"

var (
	// Configuration errors, surfaced at construction time
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors; recovery requires a fresh authorization code
	ErrNoSession     = fmt.Errorf("no user session attached")
	ErrAuthFailed    = fmt.Errorf("authentication failed")
	ErrRefreshFailed = fmt.Errorf("token refresh failed")
	ErrInvalidScope  = fmt.Errorf("invalid scope")
	ErrTimeout       = fmt.Errorf("operation timed out")

	// API and transport errors
	ErrAPIRequest  = fmt.Errorf("API request failed")
	ErrRateLimited = fmt.Errorf("rate limited")
	ErrNetwork     = fmt.Errorf("network request failed")

	// Persistence errors
	ErrSessionNotFound = fmt.Errorf("stored session not found")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
