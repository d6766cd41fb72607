package ocr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanForPromptCollapsesWhitespace(t *testing.T) {
	got := CleanForPrompt("What  is\t the   answer", 0)
	assert.Equal(t, "What is the answer", got)
}

func TestCleanForPromptKeepsNewlines(t *testing.T) {
	got := CleanForPrompt("line one  \r\nline two", 0)
	assert.Equal(t, "line one\nline two", got)
}

func TestCleanForPromptStripsNonASCII(t *testing.T) {
	got := CleanForPrompt("café → answer\x07", 0)
	assert.Equal(t, "caf answer", got)
}

func TestCleanForPromptDropsJSONHostileRunes(t *testing.T) {
	got := CleanForPrompt("say \"hello\" and \\escape\\ and `tick`", 0)
	assert.NotContains(t, got, `"`)
	assert.NotContains(t, got, `\`)
	assert.NotContains(t, got, "`")
	assert.Equal(t, "say hello and escape and tick", got)
}

func TestCleanForPromptTruncates(t *testing.T) {
	got := CleanForPrompt(strings.Repeat("a", 100), 10)
	assert.Len(t, got, 10)
}

func TestCleanForPromptDefaultBudget(t *testing.T) {
	got := CleanForPrompt(strings.Repeat("a", DefaultPromptBudget+500), 0)
	assert.Len(t, got, DefaultPromptBudget)
}

func TestCleanForPromptTrimsEdges(t *testing.T) {
	assert.Equal(t, "x", CleanForPrompt("   x   ", 0))
	assert.Equal(t, "", CleanForPrompt("   \t  \n ", 0))
}
