package openai

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/MikeSquared-Agency/prefsd/internal/llm"
	"github.com/MikeSquared-Agency/prefsd/internal/usage"
)

var _ llm.Completer = (*Client)(nil)

// Client runs single-turn chat completions against an OpenAI-compatible API.
type Client struct {
	client *sdk.Client
	model  string
}

// NewClient builds a client. baseURL may be empty for the public API. The SDK's
// own retry loop is disabled so upstream failures surface on the first attempt.
func NewClient(apiKey, baseURL, model string) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := sdk.NewClient(opts...)
	return &Client{client: &client, model: model}
}

func (c *Client) Model() string { return c.model }

func (c *Client) Complete(ctx context.Context, prompt string, temperature float64) (llm.Completion, error) {
	if err := llm.ValidatePrompt(prompt); err != nil {
		return llm.Completion{}, err
	}

	completion, err := c.client.Chat.Completions.New(ctx, sdk.ChatCompletionNewParams{
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.UserMessage(prompt),
		},
		Model:       c.model,
		Temperature: sdk.Float(temperature),
	})
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			msg := apiErr.Message
			if msg == "" {
				msg = err.Error()
			}
			return llm.Completion{}, &llm.APIError{
				Provider:   "openai",
				StatusCode: apiErr.StatusCode,
				Type:       apiErr.Type,
				Message:    msg,
			}
		}
		return llm.Completion{}, fmt.Errorf("openai completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return llm.Completion{}, fmt.Errorf("openai returned no completion choices")
	}

	u := completion.Usage
	return llm.Completion{
		Text: completion.Choices[0].Message.Content,
		Usage: usage.Usage{
			Requests:          1,
			InputTokens:       u.PromptTokens,
			OutputTokens:      u.CompletionTokens,
			TotalTokens:       u.TotalTokens,
			CachedInputTokens: u.PromptTokensDetails.CachedTokens,
			ReasoningTokens:   u.CompletionTokensDetails.ReasoningTokens,
		},
	}, nil
}
