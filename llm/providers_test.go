package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-solver/config"
)

func newOpenAIAgainst(url string) *OpenAIProvider {
	p := NewOpenAI("test-key", "gpt-4o")
	p.baseURL = url
	return p
}

func TestOpenAICompleteSuccess(t *testing.T) {
	var got oaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(oaChatResponse{
			Choices: []oaChoice{{Message: oaResponseMessage{Content: "FINAL ANSWER: B 4:3"}}},
		})
	}))
	defer srv.Close()

	p := newOpenAIAgainst(srv.URL)
	out, err := p.Complete(context.Background(), CompletionRequest{
		Prompt: "solve it",
		Images: [][]byte{[]byte("png-bytes")},
		History: []Turn{
			{Role: RoleUser, Text: "screenshots provided"},
			{Role: RoleAssistant, Text: "earlier answer"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "FINAL ANSWER: B 4:3", out)

	assert.Equal(t, "gpt-4o", got.Model)
	assert.Equal(t, defaultTemperature, got.Temperature)
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
	// Two history turns plus the user message carrying text + image parts.
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "assistant", got.Messages[1].Role)
}

func TestOpenAIModelOverride(t *testing.T) {
	var got oaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(oaChatResponse{Choices: []oaChoice{{Message: oaResponseMessage{Content: "ok"}}}})
	}))
	defer srv.Close()

	p := newOpenAIAgainst(srv.URL)
	_, err := p.Complete(context.Background(), CompletionRequest{Prompt: "x", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", got.Model)
}

func TestOpenAIStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		want   ErrorKind
	}{
		{http.StatusServiceUnavailable, KindRetryableTransient},
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusUnauthorized, KindInvalidCredentials},
		{http.StatusInternalServerError, KindUnknown},
	}
	for _, c := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(c.status)
			json.NewEncoder(w).Encode(oaChatResponse{Error: &oaAPIError{Message: "nope", Type: "server_error"}})
		}))
		p := newOpenAIAgainst(srv.URL)
		_, err := p.Complete(context.Background(), CompletionRequest{Prompt: "x"})
		srv.Close()

		var pe *ProviderError
		require.ErrorAs(t, err, &pe, "status %d", c.status)
		assert.Equal(t, c.want, pe.Kind, "status %d", c.status)
		assert.Equal(t, c.status, pe.Status)
	}
}

func TestOpenAIContextLengthIsPayloadTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(oaChatResponse{
			Error: &oaAPIError{Message: "too long", Type: "invalid_request_error", Code: "context_length_exceeded"},
		})
	}))
	defer srv.Close()

	p := newOpenAIAgainst(srv.URL)
	_, err := p.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindPayloadTooLarge, pe.Kind)
}

func TestOpenAIContentFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(oaChatResponse{
			Choices: []oaChoice{{Message: oaResponseMessage{Content: ""}, FinishReason: "content_filter"}},
		})
	}))
	defer srv.Close()

	p := newOpenAIAgainst(srv.URL)
	_, err := p.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindContentFiltered, pe.Kind)
}

func TestOpenAIWithoutKeyFailsFast(t *testing.T) {
	p := NewOpenAI("", "gpt-4o")
	_, err := p.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindNotConfigured, pe.Kind)
}

func TestOpenAICancellationPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := newOpenAIAgainst(srv.URL)
	_, err := p.Complete(ctx, CompletionRequest{Prompt: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnthropicCompleteSuccess(t *testing.T) {
	var got anRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(anResponse{
			Content: []anBlock{{Type: "text", Text: "the answer"}},
		})
	}))
	defer srv.Close()

	p := NewAnthropic("test-key", "claude-sonnet-4-5")
	p.baseURL = srv.URL
	out, err := p.Complete(context.Background(), CompletionRequest{
		Prompt: "solve it",
		Images: [][]byte{[]byte("png-bytes")},
	})
	require.NoError(t, err)
	assert.Equal(t, "the answer", out)

	require.Len(t, got.Messages, 1)
	// Image block first, prompt text last.
	require.Len(t, got.Messages[0].Content, 2)
	assert.Equal(t, "image", got.Messages[0].Content[0].Type)
	assert.Equal(t, "text", got.Messages[0].Content[1].Type)
}

func TestAnthropicOverloadIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(529)
		json.NewEncoder(w).Encode(anResponse{Error: &anAPIError{Type: "overloaded_error", Message: "busy"}})
	}))
	defer srv.Close()

	p := NewAnthropic("test-key", "claude-sonnet-4-5")
	p.baseURL = srv.URL
	_, err := p.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindRetryableTransient, pe.Kind)
}

func TestOllamaComplete(t *testing.T) {
	var got olRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(olResponse{Message: olMessage{Role: "assistant", Content: "local answer"}})
	}))
	defer srv.Close()

	p := NewOllama(srv.URL, "llama3.2")
	out, err := p.Complete(context.Background(), CompletionRequest{Prompt: "solve it", MaxTokens: 256})
	require.NoError(t, err)
	assert.Equal(t, "local answer", out)
	assert.False(t, got.Stream)
	assert.Equal(t, 256, got.Options.NumPredict)
}

func TestOllamaRejectsImages(t *testing.T) {
	p := NewOllama("http://localhost:11434", "llama3.2")
	assert.False(t, p.Vision())
	_, err := p.Complete(context.Background(), CompletionRequest{
		Prompt: "x",
		Images: [][]byte{[]byte("png")},
	})
	require.Error(t, err)
	var pe *ProviderError
	assert.ErrorAs(t, err, &pe)
}

func TestRegistryResolvesAllProviders(t *testing.T) {
	cfg := config.Config{
		Settings:  config.DefaultSettings(),
		OpenAIKey: "k1",
	}
	r := NewRegistry(cfg)

	for _, name := range []string{
		config.ProviderOpenAI, config.ProviderAnthropic,
		config.ProviderGemini, config.ProviderOllama,
	} {
		p, err := r.Get(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Name())
	}

	_, err := r.Get("mystery")
	assert.Error(t, err)
}

func TestRegistryRebuildSwapsAdapters(t *testing.T) {
	cfg := config.Config{Settings: config.DefaultSettings()}
	r := NewRegistry(cfg)
	before, err := r.Get(config.ProviderOpenAI)
	require.NoError(t, err)

	cfg.OpenAIKey = "fresh-key"
	r.Rebuild(cfg)
	after, err := r.Get(config.ProviderOpenAI)
	require.NoError(t, err)
	assert.NotSame(t, before, after)
}
