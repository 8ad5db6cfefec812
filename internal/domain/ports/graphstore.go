package ports

import (
	"context"

	"github.com/ersonp/storygraph/internal/domain/entities"
)

// GraphStore is the committed narrative graph. The store exclusively owns
// committed nodes and relations; the extraction pipeline only holds
// transient candidates.
//
// The store enforces two invariants: node IDs are unique, and
// (story_id, sequence_number) is unique per story for plot nodes.
// Relation creation rejects endpoints that do not exist.
type GraphStore interface {
	// EnsureSchema creates the storage schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the store.
	Close() error

	// Write operations. Upserts are keyed by node ID, so committing the
	// same stable ID twice updates rather than duplicates.

	UpsertCharacter(ctx context.Context, c *entities.Character) error
	UpsertPlotNode(ctx context.Context, p *entities.PlotNode) error
	UpsertWorldRule(ctx context.Context, r *entities.WorldRule) error
	UpsertNode(ctx context.Context, n *entities.GenericNode) error
	CreateRelation(ctx context.Context, rel *entities.Relation) error

	// NodeExists reports whether any node (of any kind) has the given ID.
	NodeExists(ctx context.Context, id string) (bool, error)

	// DeleteNode removes a node and every relation touching it.
	DeleteNode(ctx context.Context, id string) error

	// Read operations used by the consistency checks and the CLI.

	CharactersByStory(ctx context.Context, storyID string) ([]entities.Character, error)
	// PlotNodesByStory returns plot nodes ordered by sequence number.
	PlotNodesByStory(ctx context.Context, storyID string) ([]entities.PlotNode, error)
	WorldRulesByStory(ctx context.Context, storyID string) ([]entities.WorldRule, error)
	NodesByStory(ctx context.Context, storyID string, kind entities.NodeKind) ([]entities.GenericNode, error)
	RelationsByStory(ctx context.Context, storyID string) ([]entities.Relation, error)
	RelationsByType(ctx context.Context, storyID string, relType entities.RelationType) ([]entities.Relation, error)
}
