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

const openAIChatURL = "https://api.openai.com/v1/chat/completions"

// OpenAI chat API structures
type oaMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // string or []oaContent
}

type oaContent struct {
	Type     string      `json:"type"`
	Text     string      `json:"text,omitempty"`
	ImageURL *oaImageURL `json:"image_url,omitempty"`
}

type oaImageURL struct {
	URL string `json:"url"`
}

type oaChatRequest struct {
	Model       string      `json:"model"`
	Messages    []oaMessage `json:"messages"`
	Temperature float64     `json:"temperature"`
	MaxTokens   int         `json:"max_tokens"`
}

type oaChatResponse struct {
	Choices []oaChoice  `json:"choices"`
	Error   *oaAPIError `json:"error,omitempty"`
}

type oaChoice struct {
	Message      oaResponseMessage `json:"message"`
	FinishReason string            `json:"finish_reason"`
}

type oaResponseMessage struct {
	Content string `json:"content"`
}

type oaAPIError struct {
	Message string      `json:"message"`
	Type    string      `json:"type"`
	Code    interface{} `json:"code"` // Can be string or number
}

// OpenAIProvider is the vision-capable OpenAI adapter.
type OpenAIProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewOpenAI(apiKey, model string) *OpenAIProvider {
	return &OpenAIProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: openAIChatURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }
func (p *OpenAIProvider) Vision() bool { return true }

func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if p.apiKey == "" {
		return "", notConfigured(p.Name())
	}
	req.fillDefaults()

	messages := make([]oaMessage, 0, len(req.History)+1)
	for _, t := range req.History {
		messages = append(messages, oaMessage{Role: string(t.Role), Content: t.Text})
	}

	parts := []oaContent{{Type: "text", Text: req.Prompt}}
	for _, img := range req.Images {
		parts = append(parts, oaContent{
			Type: "image_url",
			ImageURL: &oaImageURL{
				URL: fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(img)),
			},
		})
	}
	messages = append(messages, oaMessage{Role: "user", Content: parts})

	payload := oaChatRequest{
		Model:       resolveModel(p.model, req.Model),
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
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
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", classifyTransport(p.Name(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransport(p.Name(), err)
	}

	var response oaChatResponse
	if err := json.Unmarshal(body, &response); err != nil && resp.StatusCode == http.StatusOK {
		return "", &ProviderError{Provider: p.Name(), Kind: KindUnknown, Err: fmt.Errorf("failed to decode response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		detail := fmt.Errorf("API returned status %d", resp.StatusCode)
		if response.Error != nil {
			detail = fmt.Errorf("API error: %s (type: %s, code: %v)", response.Error.Message, response.Error.Type, response.Error.Code)
		}
		kind := classifyStatus(resp.StatusCode)
		if response.Error != nil && response.Error.Type == "invalid_request_error" && response.Error.Code == "context_length_exceeded" {
			kind = KindPayloadTooLarge
		}
		return "", &ProviderError{Provider: p.Name(), Kind: kind, Status: resp.StatusCode, Err: detail}
	}

	if len(response.Choices) == 0 {
		return "", &ProviderError{Provider: p.Name(), Kind: KindUnknown, Err: fmt.Errorf("no choices in API response")}
	}
	choice := response.Choices[0]
	if choice.FinishReason == "content_filter" {
		return "", &ProviderError{Provider: p.Name(), Kind: KindContentFiltered, Err: fmt.Errorf("completion stopped by content filter")}
	}
	return choice.Message.Content, nil
}
