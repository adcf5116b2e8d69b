package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/set-night/postrelay/internal/domain"
)

const (
	openRouterURL     = "https://openrouter.ai/api/v1"
	openRouterTimeout = 30 * time.Second
)

type OpenRouter struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewOpenRouter(apiKey, model string) *OpenRouter {
	return &OpenRouter{
		apiKey:     apiKey,
		model:      model,
		baseURL:    openRouterURL,
		httpClient: &http.Client{Timeout: openRouterTimeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (o *OpenRouter) Classify(ctx context.Context, text string) (domain.Classification, error) {
	payload, err := json.Marshal(chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: truncate(text)},
		},
	})
	if err != nil {
		return domain.Classification{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return domain.Classification{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("%w: openrouter request: %v", domain.ErrClassifierBackend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Classification{}, fmt.Errorf("%w: openrouter status %d", domain.ErrClassifierBackend, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return domain.Classification{}, fmt.Errorf("%w: parse response: %v", domain.ErrClassifierBackend, err)
	}
	if chatResp.Error != nil {
		return domain.Classification{}, fmt.Errorf("%w: %s", domain.ErrClassifierBackend, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return domain.Classification{}, fmt.Errorf("%w: empty choices", domain.ErrClassifierBackend)
	}

	return parseVerdict(chatResp.Choices[0].Message.Content)
}
