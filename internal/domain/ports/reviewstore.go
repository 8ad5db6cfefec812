package ports

import (
	"context"

	"github.com/ersonp/storygraph/internal/domain/entities"
)

// ReviewStore persists review queue entries: extraction candidates that
// failed the confidence gate, awaiting human confirmation.
type ReviewStore interface {
	// CreateReview stores a new entry. The entry ID must be set by the caller.
	CreateReview(ctx context.Context, entry *entities.ReviewQueueEntry) error

	// ReviewByID returns an entry, or nil if it does not exist.
	ReviewByID(ctx context.Context, id string) (*entities.ReviewQueueEntry, error)

	// ReviewsByStory lists entries for a story, newest first. An empty
	// status matches all statuses.
	ReviewsByStory(ctx context.Context, storyID string, status entities.ReviewStatus, limit, offset int) ([]entities.ReviewQueueEntry, error)

	// UpdateReviewStatus moves an entry to a terminal status.
	UpdateReviewStatus(ctx context.Context, id string, status entities.ReviewStatus) error
}
