// Package events defines the structured events the pipeline emits toward
// the presentation layer. The Sink interface is the only coupling between
// the core and whatever renders it.
package events

import "screen-solver/answer"

// View names the two screens the shell can show.
type View string

const (
	ViewQueue     View = "queue"
	ViewSolutions View = "solutions"
)

// Event is the base interface for all presentation events
type Event interface {
	Type() string
}

// Event type constants for identification
const (
	TypeProgress         = "Progress"
	TypeSolutionReady    = "SolutionReady"
	TypeDebugReady       = "DebugReady"
	TypeProcessingFailed = "ProcessingFailed"
	TypeViewChanged      = "ViewChanged"
	TypeCanceled         = "Canceled"
)

// Progress - emitted while a pipeline is running
type Progress struct {
	Message string
	Percent int // 0..100
	IsError bool
}

func (e Progress) Type() string { return TypeProgress }

// SolutionReady - emitted when the initial-question pipeline succeeds
type SolutionReady struct {
	Answer answer.StructuredAnswer
}

func (e SolutionReady) Type() string { return TypeSolutionReady }

// DebugReady - emitted when the debug pipeline succeeds
type DebugReady struct {
	Answer answer.StructuredAnswer
}

func (e DebugReady) Type() string { return TypeDebugReady }

// ProcessingFailed - emitted when a pipeline fails after retries. Category
// is the error-kind string; Message is user-facing with a remediation hint.
type ProcessingFailed struct {
	Category string
	Message  string
}

func (e ProcessingFailed) Type() string { return TypeProcessingFailed }

// ViewChanged - emitted whenever the orchestrator forces a view switch
type ViewChanged struct {
	View View
}

func (e ViewChanged) Type() string { return TypeViewChanged }

// Canceled - emitted when the user aborts an in-flight request. Not an
// error: no toast, just a state reset.
type Canceled struct {
	Slot string
}

func (e Canceled) Type() string { return TypeCanceled }

// Sink receives pipeline events. Implementations must be safe for calls
// from pipeline goroutines.
type Sink interface {
	Publish(Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Publish(Event) {}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

func (f SinkFunc) Publish(e Event) { f(e) }
