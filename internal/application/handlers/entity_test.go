package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/storygraph/internal/domain/entities"
	"github.com/ersonp/storygraph/internal/domain/mocks"
)

func seededGraph() *mocks.GraphStore {
	g := mocks.NewGraphStore()
	g.Characters["c1"] = &entities.Character{ID: "c1", StoryID: "s", Name: "林萧"}
	g.PlotNodes["p1"] = &entities.PlotNode{ID: "p1", StoryID: "s", Title: "The duel", SequenceNumber: 1}
	g.WorldRules["w1"] = &entities.WorldRule{ID: "w1", StoryID: "s", Name: "Night Curfew"}
	g.Nodes["n1"] = &entities.GenericNode{ID: "n1", StoryID: "s", Kind: entities.KindLocation, Name: "白云山"}
	g.Nodes["n2"] = &entities.GenericNode{ID: "n2", StoryID: "s", Kind: entities.KindTheme, Name: "revenge"}
	return g
}

func TestEntityHandler_ListAll(t *testing.T) {
	h := NewEntityHandler(seededGraph())

	out, err := h.List(context.Background(), "s", "")
	require.NoError(t, err)

	assert.Len(t, out.Characters, 1)
	assert.Len(t, out.PlotNodes, 1)
	assert.Len(t, out.WorldRules, 1)
	assert.Len(t, out.Nodes, 2, "every generic kind is gathered")
}

func TestEntityHandler_ListByKind(t *testing.T) {
	h := NewEntityHandler(seededGraph())
	ctx := context.Background()

	out, err := h.List(ctx, "s", entities.KindCharacter)
	require.NoError(t, err)
	assert.Len(t, out.Characters, 1)
	assert.Empty(t, out.Nodes)

	out, err = h.List(ctx, "s", entities.KindLocation)
	require.NoError(t, err)
	require.Len(t, out.Nodes, 1)
	assert.Equal(t, "白云山", out.Nodes[0].Name)

	_, err = h.List(ctx, "s", "spaceship")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown node kind")

	_, err = h.List(ctx, "", entities.KindCharacter)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "story ID is required")
}

func TestEntityHandler_Delete(t *testing.T) {
	g := seededGraph()
	h := NewEntityHandler(g)
	ctx := context.Background()

	require.NoError(t, h.Delete(ctx, "c1"))
	assert.NotContains(t, g.Characters, "c1")

	err := h.Delete(ctx, "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node not found")

	err = h.Delete(ctx, "  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node ID is required")
}

func TestRuleHandler_CreateIsUpsertByName(t *testing.T) {
	g := mocks.NewGraphStore()
	h := NewRuleHandler(g)
	ctx := context.Background()

	rule, err := h.Create(ctx, RuleInput{StoryID: "s", Name: "Night Curfew", Severity: "strict"})
	require.NoError(t, err)
	assert.Equal(t, entities.RuleStrict, rule.Severity)

	// Same name, same story: same ID, updated in place.
	updated, err := h.Create(ctx, RuleInput{StoryID: "s", Name: "Night Curfew", Severity: "flexible"})
	require.NoError(t, err)
	assert.Equal(t, rule.ID, updated.ID)
	assert.Len(t, g.WorldRules, 1)
	assert.Equal(t, entities.RuleFlexible, g.WorldRules[rule.ID].Severity)
}

func TestRuleHandler_CreateValidation(t *testing.T) {
	h := NewRuleHandler(mocks.NewGraphStore())
	ctx := context.Background()

	_, err := h.Create(ctx, RuleInput{StoryID: "s", Name: "x", Severity: "catastrophic"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown rule severity")

	_, err = h.Create(ctx, RuleInput{StoryID: "s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule name is required")

	// Empty severity defaults to moderate.
	rule, err := h.Create(ctx, RuleInput{StoryID: "s", Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, entities.RuleModerate, rule.Severity)
}
