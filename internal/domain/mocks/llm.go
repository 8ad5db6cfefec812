// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"

	"github.com/ersonp/storygraph/internal/domain/ports"
)

// LLMClient is a mock implementation of ports.LLMClient.
type LLMClient struct {
	// Response is returned for every call when Responses is empty.
	Response string
	// Responses, when set, are returned in call order; calls past the end
	// fall back to Response.
	Responses []string
	Err       error

	// GenerateFunc, when set, overrides the configured return values.
	GenerateFunc func(ctx context.Context, messages []ports.Message) (string, error)

	// Call tracking
	GenerateCallCount int
	LastMessages      []ports.Message
}

// Generate returns the configured response or error.
func (m *LLMClient) Generate(ctx context.Context, messages []ports.Message, temperature float32, maxTokens int) (string, error) {
	call := m.GenerateCallCount
	m.GenerateCallCount++
	m.LastMessages = messages

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, messages)
	}
	if m.Err != nil {
		return "", m.Err
	}
	if call < len(m.Responses) {
		return m.Responses[call], nil
	}
	return m.Response, nil
}
