package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ersonp/storygraph/internal/domain/entities"
	"github.com/ersonp/storygraph/internal/domain/ports"
	"github.com/ersonp/storygraph/internal/domain/services"
)

// RelationHandler handles relation listing and manual creation.
type RelationHandler struct {
	graph ports.GraphStore
}

// NewRelationHandler creates a new relation handler.
func NewRelationHandler(graph ports.GraphStore) *RelationHandler {
	return &RelationHandler{graph: graph}
}

// List returns a story's relations, optionally filtered by type. Unknown
// type strings are rejected rather than silently degraded: a filter that
// matches nothing the user asked for is a caller mistake.
func (h *RelationHandler) List(ctx context.Context, storyID, typeFilter string) ([]entities.Relation, error) {
	if strings.TrimSpace(storyID) == "" {
		return nil, errors.New("story ID is required")
	}
	if typeFilter == "" {
		return h.graph.RelationsByStory(ctx, storyID)
	}

	relType, ok := entities.NormalizeRelationType(typeFilter)
	if !ok {
		return nil, fmt.Errorf("unknown relation type: %s", typeFilter)
	}
	return h.graph.RelationsByType(ctx, storyID, relType)
}

// CreateInput describes a manually created relation.
type CreateInput struct {
	StoryID     string
	SourceID    string
	TargetID    string
	Type        string
	Description string
	TrustLevel  int
}

// Create adds a relation between two existing nodes. Manual relations carry
// full confidence.
func (h *RelationHandler) Create(ctx context.Context, in CreateInput) (*entities.Relation, error) {
	if strings.TrimSpace(in.StoryID) == "" {
		return nil, errors.New("story ID is required")
	}
	if in.SourceID == "" || in.TargetID == "" {
		return nil, errors.New("source and target node IDs are required")
	}
	if in.TrustLevel < 0 || in.TrustLevel > 100 {
		return nil, fmt.Errorf("trust level out of range: %d", in.TrustLevel)
	}

	relType, ok := entities.NormalizeRelationType(in.Type)
	if !ok {
		return nil, fmt.Errorf("unknown relation type: %s", in.Type)
	}

	rel := &entities.Relation{
		ID:          services.RelationStableID(in.StoryID, in.SourceID, in.TargetID, relType),
		StoryID:     in.StoryID,
		SourceID:    in.SourceID,
		TargetID:    in.TargetID,
		Type:        relType,
		Description: in.Description,
		Confidence:  1.0,
		TrustLevel:  in.TrustLevel,
		CreatedAt:   time.Now(),
	}

	if err := h.graph.CreateRelation(ctx, rel); err != nil {
		return nil, fmt.Errorf("creating relation: %w", err)
	}
	return rel, nil
}
