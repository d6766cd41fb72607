package orchestrator

import "screen-solver/llm"

// conversation is the per-question-session history: ordered (role, text)
// turns plus the latest completion cache. It lives only in memory, is reset
// at the start of every initial-question run, and is mutated only after a
// successful call.
type conversation struct {
	turns        []llm.Turn
	lastResponse string
}

func (c *conversation) reset() {
	c.turns = nil
	c.lastResponse = ""
}

func (c *conversation) record(userText, completion string) {
	c.turns = append(c.turns,
		llm.Turn{Role: llm.RoleUser, Text: userText},
		llm.Turn{Role: llm.RoleAssistant, Text: completion},
	)
	c.lastResponse = completion
}

func (c *conversation) snapshot() []llm.Turn {
	return append([]llm.Turn(nil), c.turns...)
}
