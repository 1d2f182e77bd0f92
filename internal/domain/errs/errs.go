// Package errs defines the closed error taxonomy of the service.
//
// Every failure surfaced across a component boundary is one of four kinds:
//   - ValidationError: malformed request input; never retried; 400 at the API.
//   - UpstreamError: a data-source call failed; retried when transient; 502
//     after exhaustion.
//   - CacheError: a cache tier failed; always absorbed (logged, treated as a
//     miss), never visible to callers.
//   - ConfigError: required configuration missing or inconsistent; fatal at
//     startup.
//
// Handlers narrow errors with errors.As, so each kind unwraps its cause.
package errs

import "fmt"

// ValidationError reports malformed or missing request parameters.
type ValidationError struct {
	Reason string
	Err    error
}

// NewValidation builds a ValidationError with an optional cause.
func NewValidation(reason string, err error) *ValidationError {
	return &ValidationError{Reason: reason, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

// UpstreamError reports a failed call to an external data source.
// Status is the upstream HTTP status code, or 0 when the failure happened
// below HTTP (connection reset, timeout, DNS).
type UpstreamError struct {
	Provider string
	Status   int
	Err      error
}

// NewUpstream builds an UpstreamError for the given provider.
func NewUpstream(provider string, status int, err error) *UpstreamError {
	return &UpstreamError{Provider: provider, Status: status, Err: err}
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s upstream error (status %d): %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s upstream error: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// CacheError reports a failure in one of the cache tiers. The cache logs it
// and degrades to a miss or no-op; callers on the request path never see it.
type CacheError struct {
	Op   string // "get", "set", "delete"
	Tier string // "remote", "local"
	Err  error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s failed on %s tier: %v", e.Op, e.Tier, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

// ConfigError reports absent or invalid configuration discovered at startup.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "config error: " + e.Reason }
