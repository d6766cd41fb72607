package ocr

import "strings"

// DefaultPromptBudget caps how much OCR text the fast pipeline puts in a
// prompt.
const DefaultPromptBudget = 6000

// CleanForPrompt normalizes raw OCR output for embedding in a JSON prompt
// body: non-ASCII stripped, whitespace collapsed, JSON-hostile punctuation
// removed, then truncated to max runes.
func CleanForPrompt(text string, max int) string {
	if max <= 0 {
		max = DefaultPromptBudget
	}
	var b strings.Builder
	b.Grow(len(text))
	space := false
	for _, r := range text {
		switch {
		case r == '\n':
			b.WriteByte('\n')
			space = false
		case r == ' ' || r == '\t' || r == '\r':
			space = true
		case r > 126 || r < 32:
			// drop non-ASCII and control characters
		case r == '"' || r == '\\' || r == '`':
			// drop characters that tend to break JSON-embedded prompts
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if len(out) > max {
		out = out[:max]
	}
	return out
}
