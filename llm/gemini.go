package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// GeminiProvider is a thin wrapper around the official genai client.
type GeminiProvider struct {
	apiKey string
	model  string
	cli    *genai.Client
}

func NewGemini(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	p := &GeminiProvider{apiKey: apiKey, model: model}
	if apiKey == "" {
		// Client construction is deferred; Complete fails fast instead so a
		// missing key surfaces as not_configured rather than at startup.
		return p, nil
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	p.cli = cli
	return p, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }
func (p *GeminiProvider) Vision() bool { return true }

func (p *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if p.apiKey == "" || p.cli == nil {
		return "", notConfigured(p.Name())
	}
	req.fillDefaults()

	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, t := range req.History {
		role := genai.RoleUser
		if t.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: t.Text}},
		})
	}

	parts := []*genai.Part{{Text: req.Prompt}}
	for _, img := range req.Images {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: "image/png", Data: img},
		})
	}
	contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: parts})

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	resp, err := p.cli.Models.GenerateContent(ctx, resolveModel(p.model, req.Model), contents, cfg)
	if err != nil {
		return "", p.classify(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
			return "", &ProviderError{Provider: p.Name(), Kind: KindContentFiltered, Err: fmt.Errorf("candidate blocked by safety filter")}
		}
		return "", &ProviderError{Provider: p.Name(), Kind: KindUnknown, Err: fmt.Errorf("empty candidate in API response")}
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// classify maps genai SDK failures onto the shared kinds. The SDK surfaces
// vendor status through error text, so this is substring matching on the
// documented status names.
func (p *GeminiProvider) classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if isNetworkError(err) {
		return &ProviderError{Provider: p.Name(), Kind: KindRetryableTransient, Err: err}
	}
	msg := err.Error()
	kind := KindUnknown
	switch {
	case strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "429"):
		kind = KindRateLimited
	case strings.Contains(msg, "UNAVAILABLE") || strings.Contains(msg, "503"):
		kind = KindRetryableTransient
	case strings.Contains(msg, "UNAUTHENTICATED") || strings.Contains(msg, "PERMISSION_DENIED") ||
		strings.Contains(msg, "API key not valid") || strings.Contains(msg, "401") || strings.Contains(msg, "403"):
		kind = KindInvalidCredentials
	case strings.Contains(msg, "SAFETY") || strings.Contains(msg, "blocked"):
		kind = KindContentFiltered
	case strings.Contains(msg, "payload") && strings.Contains(msg, "large"):
		kind = KindPayloadTooLarge
	}
	return &ProviderError{Provider: p.Name(), Kind: kind, Err: err}
}
