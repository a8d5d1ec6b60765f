package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/errexplain/internal/domain/ai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "llama-3.3-70b-versatile"

const systemInstruction = "You reply with exactly one JSON object and nothing else."

type Client struct {
	*openai.Client
	Model string
	// JSONMode asks the provider for a JSON response format when it supports it.
	JSONMode bool
}

// NewClient talks to any OpenAI-compatible endpoint; an empty baseURL means OpenAI itself.
func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model}
}

// Complete implements ai.Completer with a single non-streaming chat completion.
func (c *Client) Complete(ctx context.Context, prompt string, opts ai.CompletionOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.Model,
		Temperature: opts.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if c.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(c.Model) {
		req.MaxCompletionTokens = opts.MaxOutputTokens
		req.Temperature = 0
	} else {
		req.MaxTokens = opts.MaxOutputTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ai.ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

var _ ai.Completer = (*Client)(nil)
