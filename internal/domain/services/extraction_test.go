package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/storygraph/internal/domain/mocks"
	"github.com/ersonp/storygraph/internal/domain/ports"
)

func TestExtractChunk(t *testing.T) {
	llm := &mocks.LLMClient{
		Response: `{"characters": [{"name": "林萧", "confidence": 0.9}]}`,
	}
	svc := NewExtractionService(llm, 1)

	set, err := svc.ExtractChunk(context.Background(), "some chapter text", 0)
	require.NoError(t, err)

	require.Len(t, set.Entities, 1)
	assert.Equal(t, "林萧", set.Entities[0].Name)

	// The chunk travels as the user message; the system prompt leads.
	require.Len(t, llm.LastMessages, 2)
	assert.Equal(t, ports.RoleSystem, llm.LastMessages[0].Role)
	assert.Equal(t, "some chapter text", llm.LastMessages[1].Content)
}

func TestExtractChunk_CallError(t *testing.T) {
	llm := &mocks.LLMClient{Err: errors.New("rate limited")}
	svc := NewExtractionService(llm, 1)

	_, err := svc.ExtractChunk(context.Background(), "text", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk 3 extraction")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestExtractChunk_UnparseableResponse(t *testing.T) {
	llm := &mocks.LLMClient{Response: "sorry, I cannot help with that"}
	svc := NewExtractionService(llm, 1)

	_, err := svc.ExtractChunk(context.Background(), "text", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk 5 parse")
}

func TestExtractAll_MergesAllChunks(t *testing.T) {
	llm := &mocks.LLMClient{
		GenerateFunc: func(ctx context.Context, messages []ports.Message) (string, error) {
			chunk := messages[1].Content
			return fmt.Sprintf(`{"characters": [{"name": "hero of %s", "confidence": 0.9}]}`, chunk), nil
		},
	}
	svc := NewExtractionService(llm, 1)
	reg := NewRegistry(nil)

	issues := svc.ExtractAll(context.Background(), []string{"one", "two", "three"}, reg)

	assert.Empty(t, issues)
	assert.Len(t, reg.Snapshot().Entities, 3)
}

func TestExtractAll_FailedChunkDoesNotBlockSiblings(t *testing.T) {
	llm := &mocks.LLMClient{
		GenerateFunc: func(ctx context.Context, messages []ports.Message) (string, error) {
			if messages[1].Content == "bad" {
				return "", errors.New("model unavailable")
			}
			return `{"themes": [{"name": "loss", "confidence": 0.7}, {"name": "hope", "confidence": 0.7}]}`, nil
		},
	}
	svc := NewExtractionService(llm, 1)
	reg := NewRegistry(nil)

	issues := svc.ExtractAll(context.Background(), []string{"good", "bad"}, reg)

	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "model unavailable")
	assert.Len(t, reg.Snapshot().Entities, 2, "the good chunk still lands")
}

func TestExtractAll_NoChunks(t *testing.T) {
	svc := NewExtractionService(&mocks.LLMClient{}, 1)
	assert.Nil(t, svc.ExtractAll(context.Background(), nil, NewRegistry(nil)))
}

func TestExtractAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := &mocks.LLMClient{
		GenerateFunc: func(ctx context.Context, messages []ports.Message) (string, error) {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			return `{"themes": [{"name": "loss"}]}`, nil
		},
	}
	svc := NewExtractionService(llm, 1)
	reg := NewRegistry(nil)

	issues := svc.ExtractAll(ctx, []string{"a", "b"}, reg)

	// Every chunk fails one way or another; nothing reaches the registry.
	assert.Len(t, issues, 2)
	snap := reg.Snapshot()
	assert.True(t, snap.Empty())
}

func TestNewExtractionService_DefaultWorkers(t *testing.T) {
	svc := NewExtractionService(&mocks.LLMClient{}, 0)
	assert.Equal(t, defaultWorkers, svc.workers)

	svc = NewExtractionService(&mocks.LLMClient{}, 8)
	assert.Equal(t, 8, svc.workers)
}
