package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// ErrorKind classifies a backend failure for the retry loop and the user
// message. Only KindRetryableTransient is ever retried automatically.
type ErrorKind string

const (
	KindNotConfigured      ErrorKind = "not_configured"
	KindRetryableTransient ErrorKind = "retryable_transient"
	KindRateLimited        ErrorKind = "rate_limited"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindPayloadTooLarge    ErrorKind = "payload_too_large"
	KindContentFiltered    ErrorKind = "content_filtered"
	KindUnknown            ErrorKind = "unknown"
)

// ProviderError wraps a vendor failure with its classification. The raw
// vendor detail stays in Err for logs; user-facing text is derived from
// Kind at the orchestrator boundary.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (HTTP %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// KindOf extracts the classification from an error chain. Unwrapped
// network-level failures count as transient; everything else is unknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if isNetworkError(err) {
		return KindRetryableTransient
	}
	return KindUnknown
}

// IsTransient reports whether the retry policy may attempt the call again.
func IsTransient(err error) bool { return KindOf(err) == KindRetryableTransient }

// classifyStatus maps an HTTP response status to an error kind. Only 503
// counts as transient; other server errors surface immediately so the user
// is not kept waiting on a backend that is failing deterministically.
func classifyStatus(status int) ErrorKind {
	switch status {
	case http.StatusServiceUnavailable:
		return KindRetryableTransient
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindInvalidCredentials
	case http.StatusRequestEntityTooLarge:
		return KindPayloadTooLarge
	default:
		return KindUnknown
	}
}

// classifyTransport wraps a transport-level failure. Context cancellation
// passes through untouched so the orchestrator can tell "user aborted" from
// "network flaked".
func classifyTransport(provider string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	kind := KindUnknown
	if isNetworkError(err) {
		kind = KindRetryableTransient
	}
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	// http.Client wraps some resets as plain *url.Error strings.
	msg := err.Error()
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "Client.Timeout exceeded")
}

// notConfigured is the fail-fast error returned before any network I/O when
// the active provider has no credential.
func notConfigured(provider string) error {
	return &ProviderError{
		Provider: provider,
		Kind:     KindNotConfigured,
		Err:      errors.New("API key not set"),
	}
}
