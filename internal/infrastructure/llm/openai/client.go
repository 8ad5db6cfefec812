// Package openai provides an LLMClient implementation using OpenAI.
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ersonp/storygraph/internal/domain/ports"
	"github.com/ersonp/storygraph/internal/infrastructure/config"
)

const (
	// maxAttempts bounds retries for a single completion call.
	maxAttempts = 3
	// retryBaseDelay is doubled after each failed attempt.
	retryBaseDelay = time.Second
)

// Client implements the LLMClient interface using OpenAI.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new OpenAI LLM client.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	client := openai.NewClient(cfg.APIKey)

	model := "gpt-4o-mini"
	if cfg.Model != "" {
		model = cfg.Model
	}

	return &Client{
		client: client,
		model:  model,
	}, nil
}

// Generate runs one chat completion and returns the raw text response.
// Transient failures are retried with exponential backoff; cancellation
// aborts immediately.
func (c *Client) Generate(ctx context.Context, messages []ports.Message, temperature float32, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toOpenAIMessages(messages),
		Temperature: temperature,
	}
	if maxTokens > 0 {
		req.MaxTokens = maxTokens
	}

	var lastErr error
	delay := retryBaseDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", errors.New("no response from OpenAI")
			}
			return resp.Choices[0].Message.Content, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", fmt.Errorf("calling OpenAI: %w", lastErr)
		}
		if attempt == maxAttempts {
			break
		}

		select {
		case <-time.After(delay):
			delay *= 2
		case <-ctx.Done():
			return "", fmt.Errorf("calling OpenAI: %w", ctx.Err())
		}
	}

	return "", fmt.Errorf("calling OpenAI after %d attempts: %w", maxAttempts, lastErr)
}

func toOpenAIMessages(messages []ports.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == ports.RoleSystem {
			role = openai.ChatMessageRoleSystem
		}
		out[i] = openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		}
	}
	return out
}
