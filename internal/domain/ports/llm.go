// Package ports defines interfaces for external service communication.
package ports

import "context"

// Message roles accepted by LLM providers.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is a single chat message sent to the language model.
type Message struct {
	Role    string
	Content string
}

// LLMClient is the narrow generation interface the pipeline consumes.
// Prompt construction and response parsing live with the callers; the
// client only moves text. Implementations retry transient failures
// internally and respect the caller's context deadline.
type LLMClient interface {
	Generate(ctx context.Context, messages []Message, temperature float32, maxTokens int) (string, error)
}
