package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"screen-solver/answer"
)

func TestEventTypes(t *testing.T) {
	cases := []struct {
		e    Event
		want string
	}{
		{Progress{}, TypeProgress},
		{SolutionReady{}, TypeSolutionReady},
		{DebugReady{}, TypeDebugReady},
		{ProcessingFailed{}, TypeProcessingFailed},
		{ViewChanged{}, TypeViewChanged},
		{Canceled{}, TypeCanceled},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.e.Type())
	}
}

func TestSinkFunc(t *testing.T) {
	var got []Event
	var s Sink = SinkFunc(func(e Event) { got = append(got, e) })
	s.Publish(Progress{Message: "working"})
	s.Publish(Canceled{Slot: "initial"})
	assert.Len(t, got, 2)
	assert.Equal(t, TypeProgress, got[0].Type())
}

// Answers with no primary text skip the clipboard entirely but still reach
// the wrapped sink.
func TestClipboardSinkForwardsWithoutText(t *testing.T) {
	var got []Event
	c := NewClipboardSink(SinkFunc(func(e Event) { got = append(got, e) }))

	c.Publish(Progress{Message: "working"})
	c.Publish(SolutionReady{Answer: answer.StructuredAnswer{Kind: answer.KindPlainText, Plain: &answer.PlainText{}}})
	c.Publish(ProcessingFailed{Category: "unknown", Message: "boom"})

	assert.Len(t, got, 3)
}
