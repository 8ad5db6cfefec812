package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/storygraph/internal/domain/entities"
	"github.com/ersonp/storygraph/internal/domain/mocks"
)

func seedCharacters(g *mocks.GraphStore, ids ...string) {
	for _, id := range ids {
		g.Characters[id] = &entities.Character{ID: id, StoryID: "s", Name: id}
	}
}

func TestRelationHandler_Create(t *testing.T) {
	graph := mocks.NewGraphStore()
	seedCharacters(graph, "c1", "c2")
	h := NewRelationHandler(graph)

	rel, err := h.Create(context.Background(), CreateInput{
		StoryID: "s", SourceID: "c1", TargetID: "c2",
		Type: "friendship", TrustLevel: 60,
	})
	require.NoError(t, err)

	assert.Equal(t, entities.RelationSocialBond, rel.Type, "aliases normalize")
	assert.Equal(t, 1.0, rel.Confidence, "manual relations carry full confidence")
	assert.Contains(t, graph.Relations, rel.ID)

	// Re-creating the same edge yields the same stable ID.
	again, err := h.Create(context.Background(), CreateInput{
		StoryID: "s", SourceID: "c1", TargetID: "c2",
		Type: "social_bond", TrustLevel: 80,
	})
	require.NoError(t, err)
	assert.Equal(t, rel.ID, again.ID)
	assert.Len(t, graph.Relations, 1)
}

func TestRelationHandler_CreateValidation(t *testing.T) {
	h := NewRelationHandler(mocks.NewGraphStore())
	ctx := context.Background()

	_, err := h.Create(ctx, CreateInput{SourceID: "a", TargetID: "b", Type: "family"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "story ID is required")

	_, err = h.Create(ctx, CreateInput{StoryID: "s", TargetID: "b", Type: "family"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source and target node IDs are required")

	_, err = h.Create(ctx, CreateInput{StoryID: "s", SourceID: "a", TargetID: "b", Type: "family", TrustLevel: 101})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trust level out of range")

	_, err = h.Create(ctx, CreateInput{StoryID: "s", SourceID: "a", TargetID: "b", Type: "soulmate_of"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown relation type: soulmate_of")
}

func TestRelationHandler_CreateMissingEndpoint(t *testing.T) {
	graph := mocks.NewGraphStore()
	seedCharacters(graph, "c1")
	h := NewRelationHandler(graph)

	_, err := h.Create(context.Background(), CreateInput{
		StoryID: "s", SourceID: "c1", TargetID: "ghost", Type: "family",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint does not exist")
}

func TestRelationHandler_List(t *testing.T) {
	graph := mocks.NewGraphStore()
	seedCharacters(graph, "c1", "c2")
	graph.Relations["r1"] = &entities.Relation{
		ID: "r1", StoryID: "s", SourceID: "c1", TargetID: "c2",
		Type: entities.RelationSocialBond, CreatedAt: time.Now(),
	}
	graph.Relations["r2"] = &entities.Relation{
		ID: "r2", StoryID: "s", SourceID: "c2", TargetID: "c1",
		Type: entities.RelationOpposes, CreatedAt: time.Now(),
	}
	h := NewRelationHandler(graph)

	all, err := h.List(context.Background(), "s", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bonds, err := h.List(context.Background(), "s", "social_bond")
	require.NoError(t, err)
	require.Len(t, bonds, 1)
	assert.Equal(t, "r1", bonds[0].ID)

	_, err = h.List(context.Background(), "s", "nonsense")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown relation type")

	_, err = h.List(context.Background(), "", "")
	require.Error(t, err)
}
