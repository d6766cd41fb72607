package orchestrator

import (
	"fmt"

	"screen-solver/llm"
)

// userMessage maps an error kind to the human-readable message shown in the
// UI. The vendor detail is appended as supplementary text; the raw payload
// never stands alone in front of the user.
func userMessage(kind llm.ErrorKind, err error) string {
	var hint string
	switch kind {
	case llm.KindNotConfigured:
		hint = "No API key is configured for the active provider. Add the key and retry."
	case llm.KindRetryableTransient:
		hint = "The backend is temporarily unavailable and retries were exhausted. Try again shortly."
	case llm.KindRateLimited:
		hint = "Rate limit reached. Wait a moment before retrying."
	case llm.KindInvalidCredentials:
		hint = "The provider rejected the API key. Check your key."
	case llm.KindPayloadTooLarge:
		hint = "The request was too large. Reduce the number or size of screenshots."
	case llm.KindContentFiltered:
		hint = "The response was blocked by the provider's safety filter."
	default:
		hint = "Processing failed."
	}
	return fmt.Sprintf("%s (%v)", hint, err)
}
