package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// Ollama chat API structures
type olMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type olRequest struct {
	Model    string      `json:"model"`
	Messages []olMessage `json:"messages"`
	Stream   bool        `json:"stream"`
	Options  olOptions   `json:"options"`
}

type olOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type olResponse struct {
	Message olMessage `json:"message"`
	Error   string    `json:"error,omitempty"`
}

// OllamaProvider is the text-only adapter for a local Ollama server. Images
// must have been flattened to text upstream (OCR) before reaching it.
type OllamaProvider struct {
	model   string
	baseURL string
	client  *http.Client
}

func NewOllama(baseURL, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	return &OllamaProvider{
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *OllamaProvider) Name() string { return "ollama" }
func (p *OllamaProvider) Vision() bool { return false }

func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if len(req.Images) > 0 {
		return "", &ProviderError{Provider: p.Name(), Kind: KindUnknown, Err: fmt.Errorf("text-only provider cannot accept image parts")}
	}
	req.fillDefaults()

	messages := make([]olMessage, 0, len(req.History)+1)
	for _, t := range req.History {
		messages = append(messages, olMessage{Role: string(t.Role), Content: t.Text})
	}
	messages = append(messages, olMessage{Role: "user", Content: req.Prompt})

	payload := olRequest{
		Model:    resolveModel(p.model, req.Model),
		Messages: messages,
		Stream:   false,
		Options:  olOptions{Temperature: req.Temperature, NumPredict: req.MaxTokens},
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", classifyTransport(p.Name(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransport(p.Name(), err)
	}

	var response olResponse
	if err := json.Unmarshal(body, &response); err != nil && resp.StatusCode == http.StatusOK {
		return "", &ProviderError{Provider: p.Name(), Kind: KindUnknown, Err: fmt.Errorf("failed to decode response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		detail := fmt.Errorf("API returned status %d", resp.StatusCode)
		if response.Error != "" {
			detail = fmt.Errorf("API error: %s", response.Error)
		}
		return "", &ProviderError{Provider: p.Name(), Kind: classifyStatus(resp.StatusCode), Status: resp.StatusCode, Err: detail}
	}
	return response.Message.Content, nil
}
