// Package llm holds the provider adapters that drive the third-party model
// backends. Each adapter turns one prompt (plus optional images and prior
// conversation turns) into a single text completion and classifies vendor
// failures into the shared error kinds. Vendor wire shapes never leak past
// this package.
package llm

import "context"

// Role tags one conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one prior (role, text) exchange replayed to the backend so a
// debug call can reference the earlier solution.
type Turn struct {
	Role Role
	Text string
}

// CompletionRequest is the provider-agnostic payload for one backend call.
// Images are raw PNG bytes; each adapter encodes them however its vendor
// API expects.
type CompletionRequest struct {
	Prompt  string
	Images  [][]byte
	History []Turn
	// Model overrides the adapter's configured default, letting one adapter
	// serve the per-stage model choices (extraction, solution, debugging).
	Model       string
	Temperature float64
	MaxTokens   int
}

// Provider is the capability contract every backend adapter implements.
// Complete blocks until the vendor responds, the context is cancelled, or
// the HTTP client times out. Errors carry an ErrorKind (see errors.go).
type Provider interface {
	Name() string
	// Vision reports whether the adapter accepts image parts. Text-only
	// providers require images to be flattened to text upstream (OCR).
	Vision() bool
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Default generation parameters applied when a request leaves them zero.
const (
	defaultTemperature = 0.2
	defaultMaxTokens   = 4000
)

func (r *CompletionRequest) fillDefaults() {
	if r.Temperature == 0 {
		r.Temperature = defaultTemperature
	}
	if r.MaxTokens == 0 {
		r.MaxTokens = defaultMaxTokens
	}
}

// resolveModel picks the request override when present.
func resolveModel(fallback, override string) string {
	if override != "" {
		return override
	}
	return fallback
}
