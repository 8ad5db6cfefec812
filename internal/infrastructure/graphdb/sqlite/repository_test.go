package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/storygraph/internal/domain/entities"
	"github.com/ersonp/storygraph/internal/infrastructure/config"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	repo, err := NewRepository(config.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "graph.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func testCharacter(id, name string) *entities.Character {
	now := time.Now().UTC()
	return &entities.Character{
		ID: id, StoryID: "s", Name: name, Status: entities.StatusAlive,
		Traits: []string{"stubborn"}, Strengths: []string{"swordplay"},
		CreatedAt: now, UpdatedAt: now,
	}
}

func TestNewRepository_RequiresPath(t *testing.T) {
	_, err := NewRepository(config.SQLiteConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite path is required")
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	repo := newTestRepo(t)
	assert.NoError(t, repo.EnsureSchema(context.Background()))
}

func TestUpsertCharacter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	c := testCharacter("c1", "林萧")
	require.NoError(t, repo.UpsertCharacter(ctx, c))

	chars, err := repo.CharactersByStory(ctx, "s")
	require.NoError(t, err)
	require.Len(t, chars, 1)
	assert.Equal(t, "林萧", chars[0].Name)
	assert.Equal(t, entities.StatusAlive, chars[0].Status)
	assert.Equal(t, []string{"stubborn"}, chars[0].Traits)
	assert.Equal(t, []string{"swordplay"}, chars[0].Strengths)

	// Same ID updates in place.
	c.Status = entities.StatusDeceased
	c.Traits = nil
	require.NoError(t, repo.UpsertCharacter(ctx, c))

	chars, err = repo.CharactersByStory(ctx, "s")
	require.NoError(t, err)
	require.Len(t, chars, 1)
	assert.Equal(t, entities.StatusDeceased, chars[0].Status)
	assert.Nil(t, chars[0].Traits, "empty lists round-trip as nil")
}

func TestCharactersByStory_OrderedByName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertCharacter(ctx, testCharacter("c2", "Zhao")))
	require.NoError(t, repo.UpsertCharacter(ctx, testCharacter("c1", "Anna")))

	chars, err := repo.CharactersByStory(ctx, "s")
	require.NoError(t, err)
	require.Len(t, chars, 2)
	assert.Equal(t, "Anna", chars[0].Name)
	assert.Equal(t, "Zhao", chars[1].Name)
}

func TestUpsertPlotNode_SequenceUniquePerStory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	p1 := &entities.PlotNode{
		ID: "p1", StoryID: "s", Title: "The duel", SequenceNumber: 1,
		Importance: 85, CharactersInvolved: []string{"c1"},
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.UpsertPlotNode(ctx, p1))

	// A different node at the same narrative position is rejected.
	p2 := &entities.PlotNode{
		ID: "p2", StoryID: "s", Title: "The feast", SequenceNumber: 1,
		CreatedAt: now, UpdatedAt: now,
	}
	require.Error(t, repo.UpsertPlotNode(ctx, p2))

	// The same position in another story is fine.
	p3 := &entities.PlotNode{
		ID: "p3", StoryID: "other", Title: "Elsewhere", SequenceNumber: 1,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.UpsertPlotNode(ctx, p3))

	// Re-upserting the same ID updates in place.
	p1.Title = "The duel, revised"
	require.NoError(t, repo.UpsertPlotNode(ctx, p1))

	plots, err := repo.PlotNodesByStory(ctx, "s")
	require.NoError(t, err)
	require.Len(t, plots, 1)
	assert.Equal(t, "The duel, revised", plots[0].Title)
	assert.Equal(t, []string{"c1"}, plots[0].CharactersInvolved)
}

func TestPlotNodesByStory_OrderedBySequence(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, p := range []*entities.PlotNode{
		{ID: "p3", StoryID: "s", Title: "third", SequenceNumber: 3, CreatedAt: now, UpdatedAt: now},
		{ID: "p1", StoryID: "s", Title: "first", SequenceNumber: 1, CreatedAt: now, UpdatedAt: now},
		{ID: "p2", StoryID: "s", Title: "second", SequenceNumber: 2, CreatedAt: now, UpdatedAt: now},
	} {
		require.NoError(t, repo.UpsertPlotNode(ctx, p))
	}

	plots, err := repo.PlotNodesByStory(ctx, "s")
	require.NoError(t, err)
	require.Len(t, plots, 3)
	assert.Equal(t, "first", plots[0].Title)
	assert.Equal(t, "second", plots[1].Title)
	assert.Equal(t, "third", plots[2].Title)
}

func TestUpsertWorldRule(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rule := &entities.WorldRule{
		ID: "w1", StoryID: "s", Name: "Night Curfew",
		Severity: entities.RuleStrict, Consequences: []string{"arrest"},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.UpsertWorldRule(ctx, rule))

	rule.Severity = entities.RuleModerate
	require.NoError(t, repo.UpsertWorldRule(ctx, rule))

	rules, err := repo.WorldRulesByStory(ctx, "s")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, entities.RuleModerate, rules[0].Severity)
	assert.Equal(t, []string{"arrest"}, rules[0].Consequences)
}

func TestUpsertNodeAndNodesByStory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.UpsertNode(ctx, &entities.GenericNode{
		ID: "n1", StoryID: "s", Kind: entities.KindLocation, Name: "白云山",
		CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, repo.UpsertNode(ctx, &entities.GenericNode{
		ID: "n2", StoryID: "s", Kind: entities.KindTheme, Name: "revenge",
		CreatedAt: now, UpdatedAt: now,
	}))

	locations, err := repo.NodesByStory(ctx, "s", entities.KindLocation)
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, "白云山", locations[0].Name)

	themes, err := repo.NodesByStory(ctx, "s", entities.KindTheme)
	require.NoError(t, err)
	assert.Len(t, themes, 1)
}

func TestCreateRelation_EndpointsMustExist(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertCharacter(ctx, testCharacter("c1", "林萧")))

	rel := &entities.Relation{
		ID: "r1", StoryID: "s", SourceID: "c1", TargetID: "missing",
		Type: entities.RelationSocialBond, CreatedAt: time.Now().UTC(),
	}
	err := repo.CreateRelation(ctx, rel)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation endpoint does not exist: missing")

	require.NoError(t, repo.UpsertCharacter(ctx, testCharacter("c2", "苏婉")))
	rel.TargetID = "c2"
	rel.TrustLevel = 70
	require.NoError(t, repo.CreateRelation(ctx, rel))

	relations, err := repo.RelationsByStory(ctx, "s")
	require.NoError(t, err)
	require.Len(t, relations, 1)
	assert.Equal(t, entities.RelationSocialBond, relations[0].Type)
	assert.Equal(t, 70, relations[0].TrustLevel)
}

func TestRelationsByType(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.UpsertCharacter(ctx, testCharacter("c1", "a")))
	require.NoError(t, repo.UpsertCharacter(ctx, testCharacter("c2", "b")))

	require.NoError(t, repo.CreateRelation(ctx, &entities.Relation{
		ID: "r1", StoryID: "s", SourceID: "c1", TargetID: "c2",
		Type: entities.RelationSocialBond, CreatedAt: now,
	}))
	require.NoError(t, repo.CreateRelation(ctx, &entities.Relation{
		ID: "r2", StoryID: "s", SourceID: "c2", TargetID: "c1",
		Type: entities.RelationOpposes, CreatedAt: now,
	}))

	bonds, err := repo.RelationsByType(ctx, "s", entities.RelationSocialBond)
	require.NoError(t, err)
	require.Len(t, bonds, 1)
	assert.Equal(t, "r1", bonds[0].ID)
}

func TestNodeExists(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.UpsertCharacter(ctx, testCharacter("c1", "林萧")))
	require.NoError(t, repo.UpsertPlotNode(ctx, &entities.PlotNode{
		ID: "p1", StoryID: "s", Title: "t", SequenceNumber: 1, CreatedAt: now, UpdatedAt: now,
	}))

	for _, id := range []string{"c1", "p1"} {
		exists, err := repo.NodeExists(ctx, id)
		require.NoError(t, err)
		assert.Truef(t, exists, "id %s", id)
	}

	exists, err := repo.NodeExists(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteNode_CascadesRelations(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.UpsertCharacter(ctx, testCharacter("c1", "a")))
	require.NoError(t, repo.UpsertCharacter(ctx, testCharacter("c2", "b")))
	require.NoError(t, repo.CreateRelation(ctx, &entities.Relation{
		ID: "r1", StoryID: "s", SourceID: "c1", TargetID: "c2",
		Type: entities.RelationSocialBond, CreatedAt: now,
	}))

	require.NoError(t, repo.DeleteNode(ctx, "c1"))

	exists, err := repo.NodeExists(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, exists)

	relations, err := repo.RelationsByStory(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, relations)
}

func TestReviewQueue_Lifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	entry := &entities.ReviewQueueEntry{
		ID: "rev1", StoryID: "s", Status: entities.ReviewPending,
		Payload: entities.ReviewPayload{
			Entities: []entities.CandidateEntity{
				{Kind: entities.KindLocation, Name: "白云山", Confidence: 0.3},
			},
		},
		Source: "extraction", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.CreateReview(ctx, entry))

	loaded, err := repo.ReviewByID(ctx, "rev1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, entities.ReviewPending, loaded.Status)
	assert.Equal(t, "extraction", loaded.Source)
	require.Len(t, loaded.Payload.Entities, 1)
	assert.Equal(t, "白云山", loaded.Payload.Entities[0].Name)

	missing, err := repo.ReviewByID(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.UpdateReviewStatus(ctx, "rev1", entities.ReviewApproved))
	loaded, err = repo.ReviewByID(ctx, "rev1")
	require.NoError(t, err)
	assert.Equal(t, entities.ReviewApproved, loaded.Status)

	err = repo.UpdateReviewStatus(ctx, "ghost", entities.ReviewRejected)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "review entry not found")
}

func TestReviewsByStory_FilterAndPagination(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, status := range []entities.ReviewStatus{
		entities.ReviewPending, entities.ReviewPending, entities.ReviewApproved,
	} {
		require.NoError(t, repo.CreateReview(ctx, &entities.ReviewQueueEntry{
			ID: string(rune('a' + i)), StoryID: "s", Status: status,
			Payload:   entities.ReviewPayload{},
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			UpdatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	pending, err := repo.ReviewsByStory(ctx, "s", entities.ReviewPending, 10, 0)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "b", pending[0].ID, "newest first")

	// Empty status matches all.
	all, err := repo.ReviewsByStory(ctx, "s", "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := repo.ReviewsByStory(ctx, "s", "", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].ID)

	none, err := repo.ReviewsByStory(ctx, "other", "", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
