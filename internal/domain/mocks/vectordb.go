package mocks

import (
	"context"

	"github.com/ersonp/storygraph/internal/domain/entities"
	"github.com/ersonp/storygraph/internal/domain/ports"
)

// VectorDB is a mock implementation of ports.VectorDB.
type VectorDB struct {
	Records []ports.EntityRecord
	Err     error

	EnsureCollectionErr error

	// Call tracking
	UpsertBatchCallCount      int
	UpsertBatchLastRecords    []ports.EntityRecord
	EnsureCollectionCallCount int
}

// EnsureCollection creates the collection if it doesn't exist.
func (m *VectorDB) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	m.EnsureCollectionCallCount++
	return m.EnsureCollectionErr
}

// UpsertBatch stores records.
func (m *VectorDB) UpsertBatch(ctx context.Context, records []ports.EntityRecord) error {
	m.UpsertBatchCallCount++
	m.UpsertBatchLastRecords = records
	return m.Err
}

// Search returns the configured records filtered by story.
func (m *VectorDB) Search(ctx context.Context, storyID string, embedding []float32, limit int) ([]ports.EntityRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []ports.EntityRecord
	for _, r := range m.Records {
		if r.StoryID == storyID {
			out = append(out, r)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// SearchByKind returns the configured records filtered by story and kind.
func (m *VectorDB) SearchByKind(ctx context.Context, storyID string, kind entities.NodeKind, embedding []float32, limit int) ([]ports.EntityRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []ports.EntityRecord
	for _, r := range m.Records {
		if r.StoryID == storyID && r.Kind == kind {
			out = append(out, r)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Delete removes a record by ID.
func (m *VectorDB) Delete(ctx context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	for i, r := range m.Records {
		if r.ID == id {
			m.Records = append(m.Records[:i], m.Records[i+1:]...)
			break
		}
	}
	return nil
}
