package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ersonp/storygraph/internal/domain/entities"
	"github.com/ersonp/storygraph/internal/domain/ports"
)

// DefaultSearchLimit is the default number of results to return.
const DefaultSearchLimit = 10

// QueryService handles semantic entity search over the vector index.
// Both dependencies may be nil when the index is not configured; searches
// then fail with a clear error instead of a panic.
type QueryService struct {
	embedder ports.Embedder
	vectorDB ports.VectorDB
}

// NewQueryService creates a new query service.
func NewQueryService(embedder ports.Embedder, vectorDB ports.VectorDB) *QueryService {
	return &QueryService{
		embedder: embedder,
		vectorDB: vectorDB,
	}
}

// Search finds entities semantically similar to the query within a story.
func (s *QueryService) Search(ctx context.Context, storyID, query string, limit int) ([]ports.EntityRecord, error) {
	if s.embedder == nil || s.vectorDB == nil {
		return nil, errors.New("semantic index is not configured")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("generating query embedding: %w", err)
	}

	records, err := s.vectorDB.Search(ctx, storyID, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("searching entities: %w", err)
	}

	return records, nil
}

// SearchByKind finds entities filtered by node kind.
func (s *QueryService) SearchByKind(ctx context.Context, storyID, query string, kind entities.NodeKind, limit int) ([]ports.EntityRecord, error) {
	if s.embedder == nil || s.vectorDB == nil {
		return nil, errors.New("semantic index is not configured")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("generating query embedding: %w", err)
	}

	records, err := s.vectorDB.SearchByKind(ctx, storyID, kind, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("searching entities by kind: %w", err)
	}

	return records, nil
}
