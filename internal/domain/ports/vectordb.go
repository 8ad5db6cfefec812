package ports

import (
	"context"

	"github.com/ersonp/storygraph/internal/domain/entities"
)

// EntityRecord is the searchable projection of a committed entity kept in
// the vector index. Indexing is best-effort; the graph store remains the
// source of truth.
type EntityRecord struct {
	ID          string
	StoryID     string
	Kind        entities.NodeKind
	Name        string
	Description string
	Embedding   []float32
	Score       float32
}

// VectorDB defines the interface for the semantic entity index.
type VectorDB interface {
	// UpsertBatch stores records, replacing existing ones by ID.
	UpsertBatch(ctx context.Context, records []EntityRecord) error

	// Search returns the records most similar to the embedding within a story.
	Search(ctx context.Context, storyID string, embedding []float32, limit int) ([]EntityRecord, error)

	// SearchByKind is Search filtered to one node kind.
	SearchByKind(ctx context.Context, storyID string, kind entities.NodeKind, embedding []float32, limit int) ([]EntityRecord, error)

	// Delete removes a record by ID.
	Delete(ctx context.Context, id string) error
}

// CollectionManager handles vector collection lifecycle operations,
// separate from VectorDB so data operations stay narrow.
type CollectionManager interface {
	// EnsureCollection creates the collection if it doesn't exist.
	EnsureCollection(ctx context.Context, vectorSize uint64) error
}
