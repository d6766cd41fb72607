package events

import (
	"log"
	"sync"

	"golang.design/x/clipboard"
)

// ClipboardSink decorates another sink, copying the primary text of each
// successful answer to the system clipboard. Clipboard access is optional:
// if initialization fails (headless session), events still flow through.
type ClipboardSink struct {
	next Sink

	once  sync.Once
	ready bool
}

func NewClipboardSink(next Sink) *ClipboardSink {
	return &ClipboardSink{next: next}
}

func (c *ClipboardSink) Publish(e Event) {
	switch ev := e.(type) {
	case SolutionReady:
		c.write(ev.Answer.PrimaryText())
	case DebugReady:
		c.write(ev.Answer.PrimaryText())
	}
	c.next.Publish(e)
}

func (c *ClipboardSink) write(text string) {
	if text == "" {
		return
	}
	c.once.Do(func() {
		if err := clipboard.Init(); err != nil {
			log.Printf("Clipboard unavailable, answers will not be copied: %v", err)
			return
		}
		c.ready = true
	})
	if !c.ready {
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
}
