package mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/ersonp/storygraph/internal/domain/entities"
)

// ReviewStore is an in-memory mock implementation of ports.ReviewStore.
type ReviewStore struct {
	Entries map[string]*entities.ReviewQueueEntry
	Err     error

	// Call tracking
	CreateCallCount       int
	UpdateStatusCallCount int
}

// NewReviewStore creates an empty in-memory review store.
func NewReviewStore() *ReviewStore {
	return &ReviewStore{Entries: make(map[string]*entities.ReviewQueueEntry)}
}

// CreateReview stores a new entry.
func (m *ReviewStore) CreateReview(ctx context.Context, entry *entities.ReviewQueueEntry) error {
	m.CreateCallCount++
	if m.Err != nil {
		return m.Err
	}
	m.Entries[entry.ID] = entry
	return nil
}

// ReviewByID returns an entry, or nil if it does not exist.
func (m *ReviewStore) ReviewByID(ctx context.Context, id string) (*entities.ReviewQueueEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	entry, ok := m.Entries[id]
	if !ok {
		return nil, nil
	}
	copied := *entry
	return &copied, nil
}

// ReviewsByStory lists entries for a story, newest first.
func (m *ReviewStore) ReviewsByStory(ctx context.Context, storyID string, status entities.ReviewStatus, limit, offset int) ([]entities.ReviewQueueEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []entities.ReviewQueueEntry
	for _, e := range m.Entries {
		if e.StoryID != storyID {
			continue
		}
		if status != "" && e.Status != status {
			continue
		}
		out = append(out, *e)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpdateReviewStatus moves an entry to a terminal status.
func (m *ReviewStore) UpdateReviewStatus(ctx context.Context, id string, status entities.ReviewStatus) error {
	m.UpdateStatusCallCount++
	if m.Err != nil {
		return m.Err
	}
	entry, ok := m.Entries[id]
	if !ok {
		return fmt.Errorf("review entry not found: %s", id)
	}
	entry.Status = status
	entry.UpdatedAt = time.Now()
	return nil
}
