package llm

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"screen-solver/config"
	"screen-solver/logutil"
)

// Registry holds the current provider set. Rebuild swaps the whole set
// atomically so an in-flight call keeps the adapter instance it started
// with; callers never observe a half-rebuilt set.
type Registry struct {
	current atomic.Pointer[providerSet]
}

type providerSet struct {
	byName map[string]Provider
}

// NewRegistry builds adapters for every provider from the given config.
// Wire it to config change notifications with store.OnChange(r.Rebuild).
func NewRegistry(cfg config.Config) *Registry {
	r := &Registry{}
	r.Rebuild(cfg)
	return r
}

// Rebuild reconstructs every adapter from cfg and swaps the set in.
func (r *Registry) Rebuild(cfg config.Config) {
	set := &providerSet{byName: map[string]Provider{
		config.ProviderOpenAI:    NewOpenAI(cfg.OpenAIKey, cfg.SolutionModel),
		config.ProviderAnthropic: NewAnthropic(cfg.AnthropicKey, cfg.SolutionModel),
		config.ProviderOllama:    NewOllama(cfg.OllamaURL, cfg.SolutionModel),
	}}
	gem, err := NewGemini(context.Background(), cfg.GeminiKey, cfg.SolutionModel)
	if err != nil {
		log.Printf("Gemini client construction failed (key %s): %v", logutil.RedactKey(cfg.GeminiKey), err)
		gem = &GeminiProvider{model: cfg.SolutionModel}
	}
	set.byName[config.ProviderGemini] = gem
	r.current.Store(set)
}

// Get returns the adapter for a provider name.
func (r *Registry) Get(name string) (Provider, error) {
	set := r.current.Load()
	if set == nil {
		return nil, fmt.Errorf("provider registry not initialized")
	}
	p, ok := set.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", name)
	}
	return p, nil
}
