// Command solver is a development harness around the pipeline library:
// feed it screenshot files as the main or extra queue, run one pipeline,
// and print the structured answer.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"screen-solver/config"
	"screen-solver/events"
	"screen-solver/llm"
	"screen-solver/logutil"
	"screen-solver/ocr"
	"screen-solver/orchestrator"
	"screen-solver/screenshot"
	"screen-solver/store"
	"screen-solver/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	images := flag.String("images", "", "Comma-separated PNG files for the main queue")
	extra := flag.String("extra", "", "Comma-separated PNG files for the extra (debug) queue")
	capture := flag.Bool("capture", false, "Capture the primary display into the main queue")
	settings := flag.String("settings", "settings.json", "Path to the settings file")
	mode := flag.String("mode", "", "Override mode: image or text")
	provider := flag.String("provider", "", "Override provider: openai, anthropic, gemini, ollama")
	jsonOutput := flag.Bool("json", false, "Print the structured answer as JSON")
	verbose := flag.Bool("v", false, "Print progress events to stderr")
	flag.Parse()

	if *images == "" && *extra == "" && !*capture {
		return fmt.Errorf("nothing to process; pass -images, -extra, or -capture\nUsage: solver -images a.png,b.png [-extra err.png] [-mode text] [-json]")
	}

	cfgStore, err := config.NewStore(*settings)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	defer cfgStore.Close()

	if *mode != "" || *provider != "" {
		if _, err := cfgStore.Update(func(s *config.Settings) {
			if *mode != "" {
				s.Mode = config.Mode(*mode)
			}
			if *provider != "" {
				s.Provider = *provider
			}
		}); err != nil {
			return err
		}
	}
	cfg := cfgStore.Load()
	logutil.Setup(cfg.EnableFileLogging)

	shots := store.New(os.TempDir())
	for _, p := range splitList(*images) {
		shots.Add(store.QueueMain, p)
	}
	for _, p := range splitList(*extra) {
		shots.Add(store.QueueExtra, p)
	}
	if *capture {
		path, err := screenshot.CaptureInto(shots, store.QueueMain)
		if err != nil {
			return fmt.Errorf("screen capture failed: %w", err)
		}
		if *verbose {
			fmt.Fprintf(os.Stderr, "Captured %s\n", path)
		}
	}

	extractor := ocr.New("eng")
	defer extractor.Close()

	var answerOut *events.Event
	sink := events.SinkFunc(func(e events.Event) {
		switch ev := e.(type) {
		case events.Progress:
			if *verbose {
				fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", ev.Percent, ev.Message)
			}
		case events.ProcessingFailed:
			fmt.Fprintf(os.Stderr, "Failed (%s): %s\n", ev.Category, ev.Message)
		default:
			stored := e
			answerOut = &stored
		}
	})

	orch := orchestrator.New(orchestrator.Deps{
		Config:    cfgStore,
		Shots:     shots,
		Providers: llm.NewRegistry(cfg),
		OCR:       extractor,
		Sink:      sink,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := worker.New(1)
	defer pool.Close()

	// Debug flow needs a solutions view and a prior response; the harness
	// fakes neither, so -extra alone drives Debug directly.
	done := make(chan struct{})
	pool.Submit(ctx, func(ctx context.Context) {
		defer close(done)
		if *images == "" && !*capture {
			orch.Debug(ctx)
		} else {
			orch.Process(ctx)
		}
	})
	select {
	case <-done:
	case <-ctx.Done():
		orch.CancelAll()
		<-done
	}

	if answerOut == nil {
		return fmt.Errorf("no answer produced")
	}
	return printAnswer(*answerOut, *jsonOutput)
}

func printAnswer(e events.Event, asJSON bool) error {
	var ans interface{}
	switch ev := e.(type) {
	case events.SolutionReady:
		ans = ev.Answer
	case events.DebugReady:
		ans = ev.Answer
	case events.Canceled:
		fmt.Println("Canceled.")
		return nil
	default:
		return nil
	}
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ans)
	}
	fmt.Printf("%+v\n", ans)
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
