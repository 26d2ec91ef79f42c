package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/prefsd/internal/llm"
	"github.com/MikeSquared-Agency/prefsd/internal/usage"
)

const (
	apiURL           = "https://api.anthropic.com/v1/messages"
	defaultMaxTokens = 1024
)

var _ llm.Completer = (*Client)(nil)

type Client struct {
	apiKey    string
	model     string
	apiURL    string
	maxTokens int
	client    *http.Client
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:    apiKey,
		model:     model,
		apiURL:    apiURL,
		maxTokens: defaultMaxTokens,
		client:    &http.Client{Timeout: 120 * time.Second},
	}
}

// SetTestTransport points the client at a test server instead of the public API.
func (c *Client) SetTestTransport(url string) {
	c.apiURL = url
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	Messages    []Message `json:"messages"`
}

type response struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string        `json:"stop_reason"`
	Usage      responseUsage `json:"usage"`
}

type responseUsage struct {
	InputTokens          int64 `json:"input_tokens"`
	OutputTokens         int64 `json:"output_tokens"`
	CacheReadInputTokens int64 `json:"cache_read_input_tokens"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends prompt as a single user turn.
func (c *Client) Complete(ctx context.Context, prompt string, temperature float64) (llm.Completion, error) {
	if err := llm.ValidatePrompt(prompt); err != nil {
		return llm.Completion{}, err
	}
	return c.Send(ctx, "", []Message{{Role: "user", Content: prompt}}, temperature)
}

// firstText returns the first text block. Thinking and tool_use blocks may precede it.
func firstText(r response) (string, bool) {
	for _, block := range r.Content {
		if block.Type == "text" {
			return block.Text, true
		}
	}
	return "", false
}

// Send posts messages to the Messages API and returns the first text block with usage.
func (c *Client) Send(ctx context.Context, system string, messages []Message, temperature float64) (llm.Completion, error) {
	reqBody := request{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		System:      system,
		Temperature: &temperature,
		Messages:    messages,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return llm.Completion{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return llm.Completion{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return llm.Completion{}, fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Completion{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &llm.APIError{Provider: "anthropic", StatusCode: resp.StatusCode, Message: string(respBody)}
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			apiErr.Type = errResp.Error.Type
			apiErr.Message = errResp.Error.Message
		}
		return llm.Completion{}, apiErr
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return llm.Completion{}, fmt.Errorf("unmarshal response: %w", err)
	}

	text, ok := firstText(apiResp)
	if !ok {
		return llm.Completion{}, fmt.Errorf("no text block in response content")
	}

	u := apiResp.Usage
	return llm.Completion{
		Text: text,
		Usage: usage.Usage{
			Requests:          1,
			InputTokens:       u.InputTokens,
			OutputTokens:      u.OutputTokens,
			TotalTokens:       u.InputTokens + u.OutputTokens,
			CachedInputTokens: u.CacheReadInputTokens,
		},
	}, nil
}
