package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/ersonp/storygraph/internal/domain/entities"
	"github.com/ersonp/storygraph/internal/domain/ports"
	"github.com/ersonp/storygraph/internal/domain/services"
)

// QueryHandler handles semantic entity search.
type QueryHandler struct {
	query *services.QueryService
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(query *services.QueryService) *QueryHandler {
	return &QueryHandler{query: query}
}

// Handle searches indexed entities, optionally filtered by node kind.
func (h *QueryHandler) Handle(ctx context.Context, storyID, query string, kind entities.NodeKind, limit int) ([]ports.EntityRecord, error) {
	if strings.TrimSpace(storyID) == "" {
		return nil, errors.New("story ID is required")
	}
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query text is required")
	}

	if kind != "" {
		return h.query.SearchByKind(ctx, storyID, query, kind, limit)
	}
	return h.query.Search(ctx, storyID, query, limit)
}
