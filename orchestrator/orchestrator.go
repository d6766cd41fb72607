// Package orchestrator is the core pipeline driver: it decides which
// pipeline a trigger runs (initial question, debug, or nothing), executes
// the backend call with the shared retry policy, and hands raw completions
// to the parser. It owns the conversation state, the per-slot request
// registry, and the view the shell should display.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"screen-solver/config"
	"screen-solver/events"
	"screen-solver/llm"
	"screen-solver/ocr"
	"screen-solver/parser"
	"screen-solver/retry"
	"screen-solver/store"
)

// ProviderSource resolves provider names to adapters. *llm.Registry is the
// production implementation; tests substitute stubs.
type ProviderSource interface {
	Get(name string) (llm.Provider, error)
}

// Deps are the collaborators the orchestrator is constructed with. Nothing
// here is a process-wide singleton; the caller owns all of it.
type Deps struct {
	Config    *config.Store
	Shots     *store.Store
	Providers ProviderSource
	OCR       *ocr.Extractor
	Sink      events.Sink
	// Retry overrides the default backend-call policy (tests shrink the
	// delays).
	Retry *retry.Policy
}

type Orchestrator struct {
	cfg       *config.Store
	shots     *store.Store
	providers ProviderSource
	ocr       *ocr.Extractor
	sink      events.Sink
	policy    retry.Policy

	mu    sync.Mutex
	view  events.View
	conv  conversation
	slots map[Slot]*pending
}

const fastTextMaxTokens = 256

// categoryNoInput marks failures caused by an empty queue rather than a
// backend error.
const categoryNoInput = "no_input"

func New(d Deps) *Orchestrator {
	o := &Orchestrator{
		cfg:       d.Config,
		shots:     d.Shots,
		providers: d.Providers,
		ocr:       d.OCR,
		sink:      d.Sink,
		view:      events.ViewQueue,
		slots:     make(map[Slot]*pending),
	}
	if o.sink == nil {
		o.sink = events.NopSink{}
	}
	if d.Retry != nil {
		o.policy = *d.Retry
	} else {
		o.policy = retry.Default(llm.IsTransient)
	}
	// Adapters are rebuilt whenever the configuration changes; the swap is
	// atomic so in-flight calls keep the instance they started with.
	if reg, ok := d.Providers.(*llm.Registry); ok && d.Config != nil {
		d.Config.OnChange(func(c config.Config) { reg.Rebuild(c) })
	}
	return o
}

// View returns the view the shell should currently display.
func (o *Orchestrator) View() events.View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.view
}

// Conversation returns a copy of the current session's turns.
func (o *Orchestrator) Conversation() []llm.Turn {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.conv.snapshot()
}

// LastResponse returns the latest completion text, empty before the first
// success of a session.
func (o *Orchestrator) LastResponse() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.conv.lastResponse
}

// Process runs one pipeline to completion, chosen by queue state. A
// non-empty main queue always wins (a fresh capture means the user wants
// to start over, even mid-debug) and forces the view back to the queue
// before the run starts. The debug pipeline only triggers from the
// solutions view. Blocks until the pipeline finishes; run it on its own
// goroutine when the caller must stay responsive.
func (o *Orchestrator) Process(ctx context.Context) {
	if main := o.shots.List(store.QueueMain); len(main) > 0 {
		o.setView(events.ViewQueue)
		o.runInitial(ctx, main)
		return
	}
	if o.View() == events.ViewSolutions {
		if len(o.shots.List(store.QueueExtra)) > 0 {
			o.Debug(ctx)
			return
		}
	}
	o.publish(events.Progress{Message: "nothing to process", Percent: 100})
}

func (o *Orchestrator) runInitial(ctx context.Context, paths []string) {
	ctx, release, err := o.acquire(ctx, SlotInitial)
	if err != nil {
		o.publish(events.Canceled{Slot: string(SlotInitial)})
		return
	}
	defer release()

	o.mu.Lock()
	o.conv.reset()
	o.mu.Unlock()

	cfg := o.cfg.Load()
	o.publish(events.Progress{Message: "processing screenshots", Percent: 10})

	var raw string
	if cfg.Mode == config.ModeText {
		raw, err = o.fastText(ctx, cfg, paths)
	} else {
		raw, err = o.solveFromImages(ctx, cfg, paths)
	}
	if err != nil {
		o.fail(SlotInitial, err)
		return
	}

	o.mu.Lock()
	o.conv.record("screenshots provided", raw)
	o.mu.Unlock()

	ans := parser.New(cfg.Language).Parse(raw)
	o.shots.Clear(store.QueueMain)
	o.setView(events.ViewSolutions)
	o.publish(events.Progress{Message: "solution ready", Percent: 100})
	o.publish(events.SolutionReady{Answer: ans})
}

// Debug runs the debug pipeline: prior answer plus new error screenshots.
// Fails immediately, without any backend call, when the extra queue is
// empty. The view stays on solutions whatever the outcome, so the user can
// keep looking at the prior result while retrying.
func (o *Orchestrator) Debug(ctx context.Context) {
	paths := o.shots.List(store.QueueExtra)
	if len(paths) == 0 {
		o.publish(events.ProcessingFailed{Category: categoryNoInput, Message: "no error screenshots"})
		return
	}

	ctx, release, err := o.acquire(ctx, SlotDebug)
	if err != nil {
		o.publish(events.Canceled{Slot: string(SlotDebug)})
		return
	}
	defer release()

	cfg := o.cfg.Load()
	o.publish(events.Progress{Message: "processing error screenshots", Percent: 10})

	o.mu.Lock()
	last := o.conv.lastResponse
	history := o.conv.snapshot()
	o.mu.Unlock()

	provider, err := o.providers.Get(cfg.Provider)
	if err != nil {
		o.fail(SlotDebug, err)
		return
	}

	req := llm.CompletionRequest{
		Model:   cfg.DebuggingModel,
		History: history,
	}
	if provider.Vision() {
		imgs, err := o.readImages(paths)
		if err != nil {
			o.fail(SlotDebug, err)
			return
		}
		req.Prompt = debugPrompt(last)
		req.Images = imgs
	} else {
		extracted, err := o.extractText(paths)
		if err != nil {
			o.fail(SlotDebug, err)
			return
		}
		req.Prompt = debugPromptText(last, extracted)
	}

	o.publish(events.Progress{Message: "waiting for " + provider.Name(), Percent: 40})
	raw, err := o.complete(ctx, provider, req)
	if err != nil {
		o.fail(SlotDebug, err)
		return
	}

	o.mu.Lock()
	o.conv.record("error screenshots provided", raw)
	o.mu.Unlock()

	ans := parser.New(cfg.Language).Parse(raw)
	o.shots.Clear(store.QueueExtra)
	o.publish(events.Progress{Message: "debug result ready", Percent: 100})
	o.publish(events.DebugReady{Answer: ans})
}

// solveFromImages is the image sub-pipeline: all main-queue screenshots go
// to a vision-capable backend as one multi-part prompt.
func (o *Orchestrator) solveFromImages(ctx context.Context, cfg config.Config, paths []string) (string, error) {
	provider, err := o.providers.Get(cfg.Provider)
	if err != nil {
		return "", err
	}
	if !provider.Vision() {
		return "", &llm.ProviderError{
			Provider: provider.Name(),
			Kind:     llm.KindNotConfigured,
			Err:      fmt.Errorf("text-only provider requires text mode"),
		}
	}
	imgs, err := o.readImages(paths)
	if err != nil {
		return "", err
	}
	o.publish(events.Progress{Message: "waiting for " + provider.Name(), Percent: 40})
	return o.complete(ctx, provider, llm.CompletionRequest{
		Prompt: solutionPrompt(cfg.Language),
		Images: imgs,
		Model:  cfg.SolutionModel,
	})
}

// fastText is the text sub-pipeline: OCR locally, then a minimal prompt
// tuned for minimal output against the (cheap) extraction-stage model.
func (o *Orchestrator) fastText(ctx context.Context, cfg config.Config, paths []string) (string, error) {
	provider, err := o.providers.Get(cfg.Provider)
	if err != nil {
		return "", err
	}
	o.publish(events.Progress{Message: "extracting text", Percent: 20})
	extracted, err := o.extractText(paths)
	if err != nil {
		return "", err
	}
	o.publish(events.Progress{Message: "waiting for " + provider.Name(), Percent: 40})
	return o.complete(ctx, provider, llm.CompletionRequest{
		Prompt:    fastTextPrompt(extracted, cfg.Language),
		Model:     cfg.ExtractionModel,
		MaxTokens: fastTextMaxTokens,
	})
}

// complete drives one backend call under the shared retry policy. Only
// retryable-transient failures are retried; cancellation aborts outright.
func (o *Orchestrator) complete(ctx context.Context, p llm.Provider, req llm.CompletionRequest) (string, error) {
	return retry.Do(ctx, o.policy, func(ctx context.Context) (string, error) {
		return p.Complete(ctx, req)
	})
}

func (o *Orchestrator) readImages(paths []string) ([][]byte, error) {
	imgs := make([][]byte, 0, len(paths))
	for _, p := range paths {
		data, err := o.shots.ReadBytes(p)
		if err != nil {
			return nil, err
		}
		imgs = append(imgs, data)
	}
	return imgs, nil
}

func (o *Orchestrator) extractText(paths []string) (string, error) {
	if o.ocr == nil {
		return "", fmt.Errorf("OCR extractor not available")
	}
	text, err := o.ocr.ExtractAll(paths)
	if err != nil {
		return "", err
	}
	return ocr.CleanForPrompt(text, ocr.DefaultPromptBudget), nil
}

// fail translates a pipeline error into presentation events. Cancellation
// is a distinct terminal outcome, not an error: no toast, no queue
// mutation. Initial-pipeline failures roll the view back to the queue so
// the user is never stuck on an empty solutions view.
func (o *Orchestrator) fail(slot Slot, err error) {
	if errors.Is(err, context.Canceled) {
		log.Printf("Pipeline %s canceled by user", slot)
		o.publish(events.Canceled{Slot: string(slot)})
		return
	}
	kind := llm.KindOf(err)
	log.Printf("Pipeline %s failed (%s): %v", slot, kind, err)
	if slot == SlotInitial {
		o.setView(events.ViewQueue)
	}
	o.publish(events.ProcessingFailed{
		Category: string(kind),
		Message:  userMessage(kind, err),
	})
}

func (o *Orchestrator) setView(v events.View) {
	o.mu.Lock()
	changed := o.view != v
	o.view = v
	o.mu.Unlock()
	if changed {
		o.publish(events.ViewChanged{View: v})
	}
}

func (o *Orchestrator) publish(e events.Event) {
	o.sink.Publish(e)
}
