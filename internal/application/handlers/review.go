package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/ersonp/storygraph/internal/domain/entities"
	"github.com/ersonp/storygraph/internal/domain/ports"
	"github.com/ersonp/storygraph/internal/domain/services"
)

// DefaultReviewListLimit bounds review listings when no limit is given.
const DefaultReviewListLimit = 20

// ReviewHandler handles the review queue workflow.
type ReviewHandler struct {
	pipeline *services.Pipeline
	reviews  ports.ReviewStore
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(pipeline *services.Pipeline, reviews ports.ReviewStore) *ReviewHandler {
	return &ReviewHandler{
		pipeline: pipeline,
		reviews:  reviews,
	}
}

// List returns review entries for a story, newest first.
func (h *ReviewHandler) List(ctx context.Context, storyID string, status entities.ReviewStatus, limit, offset int) ([]entities.ReviewQueueEntry, error) {
	if strings.TrimSpace(storyID) == "" {
		return nil, errors.New("story ID is required")
	}
	if limit <= 0 {
		limit = DefaultReviewListLimit
	}
	return h.reviews.ReviewsByStory(ctx, storyID, status, limit, offset)
}

// Show returns a single review entry with its full payload.
func (h *ReviewHandler) Show(ctx context.Context, reviewID string) (*entities.ReviewQueueEntry, error) {
	entry, err := h.reviews.ReviewByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errors.New("review entry not found: " + reviewID)
	}
	return entry, nil
}

// Approve commits an entry's payload and marks it approved.
func (h *ReviewHandler) Approve(ctx context.Context, storyID, reviewID string) (*services.ApplyResult, error) {
	return h.pipeline.ApplyReview(ctx, storyID, reviewID)
}

// Reject marks an entry rejected without committing anything.
func (h *ReviewHandler) Reject(ctx context.Context, storyID, reviewID string) error {
	return h.pipeline.RejectReview(ctx, storyID, reviewID)
}
