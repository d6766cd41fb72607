package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
)

// Anthropic messages API structures
type anMessage struct {
	Role    string    `json:"role"`
	Content []anBlock `json:"content"`
}

type anBlock struct {
	Type   string    `json:"type"`
	Text   string    `json:"text,omitempty"`
	Source *anSource `json:"source,omitempty"`
}

type anSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anRequest struct {
	Model       string      `json:"model"`
	MaxTokens   int         `json:"max_tokens"`
	Temperature float64     `json:"temperature"`
	Messages    []anMessage `json:"messages"`
}

type anResponse struct {
	Content    []anBlock   `json:"content"`
	StopReason string      `json:"stop_reason"`
	Error      *anAPIError `json:"error,omitempty"`
}

type anAPIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// AnthropicProvider is the vision-capable Anthropic adapter.
type AnthropicProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewAnthropic(apiKey, model string) *AnthropicProvider {
	return &AnthropicProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: anthropicMessagesURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }
func (p *AnthropicProvider) Vision() bool { return true }

func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if p.apiKey == "" {
		return "", notConfigured(p.Name())
	}
	req.fillDefaults()

	// Anthropic requires strict user/assistant alternation, so history turns
	// map one block each.
	messages := make([]anMessage, 0, len(req.History)+1)
	for _, t := range req.History {
		messages = append(messages, anMessage{
			Role:    string(t.Role),
			Content: []anBlock{{Type: "text", Text: t.Text}},
		})
	}

	blocks := make([]anBlock, 0, len(req.Images)+1)
	for _, img := range req.Images {
		blocks = append(blocks, anBlock{
			Type: "image",
			Source: &anSource{
				Type:      "base64",
				MediaType: "image/png",
				Data:      base64.StdEncoding.EncodeToString(img),
			},
		})
	}
	blocks = append(blocks, anBlock{Type: "text", Text: req.Prompt})
	messages = append(messages, anMessage{Role: "user", Content: blocks})

	payload := anRequest{
		Model:       resolveModel(p.model, req.Model),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages:    messages,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", classifyTransport(p.Name(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransport(p.Name(), err)
	}

	var response anResponse
	if err := json.Unmarshal(body, &response); err != nil && resp.StatusCode == http.StatusOK {
		return "", &ProviderError{Provider: p.Name(), Kind: KindUnknown, Err: fmt.Errorf("failed to decode response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		detail := fmt.Errorf("API returned status %d", resp.StatusCode)
		if response.Error != nil {
			detail = fmt.Errorf("API error: %s (type: %s)", response.Error.Message, response.Error.Type)
		}
		kind := classifyStatus(resp.StatusCode)
		// Anthropic signals overload with a dedicated status and error type.
		if resp.StatusCode == 529 || (response.Error != nil && response.Error.Type == "overloaded_error") {
			kind = KindRetryableTransient
		}
		return "", &ProviderError{Provider: p.Name(), Kind: kind, Status: resp.StatusCode, Err: detail}
	}

	for _, b := range response.Content {
		if b.Type == "text" {
			return b.Text, nil
		}
	}
	return "", &ProviderError{Provider: p.Name(), Kind: KindUnknown, Err: fmt.Errorf("no text block in API response")}
}
