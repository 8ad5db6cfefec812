package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/storygraph/internal/domain/entities"
	"github.com/ersonp/storygraph/internal/domain/mocks"
)

const testStory = "story1"

func newChecker(graph *mocks.GraphStore) *ConsistencyService {
	return NewConsistencyService(graph, NewScorer(nil, 0))
}

func addCharacter(g *mocks.GraphStore, id, name string, status entities.CharacterStatus, strengths ...string) {
	g.Characters[id] = &entities.Character{
		ID: id, StoryID: testStory, Name: name, Status: status, Strengths: strengths,
	}
}

func addPlot(g *mocks.GraphStore, p entities.PlotNode) {
	p.StoryID = testStory
	g.PlotNodes[p.ID] = &p
}

func addRelation(g *mocks.GraphStore, r entities.Relation) {
	r.StoryID = testStory
	g.Relations[r.ID] = &r
}

func issuesOf(t *testing.T, report *entities.ConsistencyReport, category entities.IssueCategory) []entities.ConsistencyIssue {
	t.Helper()
	var out []entities.ConsistencyIssue
	for _, issue := range report.Issues {
		if issue.Category == category {
			out = append(out, issue)
		}
	}
	return out
}

func TestCheck_RequiresStoryID(t *testing.T) {
	s := newChecker(mocks.NewGraphStore())
	_, err := s.Check(context.Background(), "  ", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "story ID is required")
}

func TestCheck_CleanGraphPasses(t *testing.T) {
	g := mocks.NewGraphStore()
	addCharacter(g, "c1", "林萧", entities.StatusAlive)
	addPlot(g, entities.PlotNode{ID: "p1", Title: "Opening", SequenceNumber: 1})

	report, err := newChecker(g).Check(context.Background(), testStory, nil)
	require.NoError(t, err)

	assert.Empty(t, report.Issues)
	assert.Equal(t, 100.0, report.OverallScore)
	assert.True(t, report.Passed)
	assert.Equal(t, testStory, report.StoryID)
	assert.False(t, report.ScanTime.IsZero())
}

func TestCheck_Spatiotemporal(t *testing.T) {
	g := mocks.NewGraphStore()
	addPlot(g, entities.PlotNode{
		ID: "p1", Title: "Duel in the capital", SequenceNumber: 5,
		CharactersInvolved: []string{"c1", "c2"}, Locations: []string{"京城"},
	})
	addPlot(g, entities.PlotNode{
		ID: "p2", Title: "Ritual on the mountain", SequenceNumber: 5,
		CharactersInvolved: []string{"c1"}, Locations: []string{"白云山"},
	})

	report, err := newChecker(g).Check(context.Background(), testStory, []CheckRule{CheckSpatiotemporal})
	require.NoError(t, err)

	issues := issuesOf(t, report, entities.IssueSpatiotemporal)
	require.Len(t, issues, 1)
	issue := issues[0]
	assert.Equal(t, entities.SeverityCritical, issue.Severity)
	assert.Equal(t, 0.95, issue.Confidence)
	assert.Contains(t, issue.Description, "c1")
	assert.ElementsMatch(t, []string{"p1", "p2"}, issue.AffectedIDs)
	assert.False(t, report.Passed)
}

func TestCheck_SpatiotemporalNoSharedCharacter(t *testing.T) {
	g := mocks.NewGraphStore()
	addPlot(g, entities.PlotNode{ID: "p1", SequenceNumber: 5, CharactersInvolved: []string{"c1"}, Locations: []string{"京城"}})
	addPlot(g, entities.PlotNode{ID: "p2", SequenceNumber: 5, CharactersInvolved: []string{"c2"}, Locations: []string{"白云山"}})

	report, err := newChecker(g).Check(context.Background(), testStory, []CheckRule{CheckSpatiotemporal})
	require.NoError(t, err)
	assert.Empty(t, report.Issues)
}

func TestCheck_SpatiotemporalMissingLocationIgnored(t *testing.T) {
	g := mocks.NewGraphStore()
	addPlot(g, entities.PlotNode{ID: "p1", SequenceNumber: 5, CharactersInvolved: []string{"c1"}, Locations: []string{"京城"}})
	addPlot(g, entities.PlotNode{ID: "p2", SequenceNumber: 5, CharactersInvolved: []string{"c1"}})

	report, err := newChecker(g).Check(context.Background(), testStory, []CheckRule{CheckSpatiotemporal})
	require.NoError(t, err)
	assert.Empty(t, report.Issues)
}

func TestCheck_CharacterStatus(t *testing.T) {
	g := mocks.NewGraphStore()
	addCharacter(g, "c1", "老者", entities.StatusDeceased)
	addPlot(g, entities.PlotNode{
		ID: "p1", Title: "The elder dies defending the gate", SequenceNumber: 8,
		CharactersInvolved: []string{"c1"},
	})
	addPlot(g, entities.PlotNode{
		ID: "p2", Title: "The elder speaks at the council", SequenceNumber: 10,
		CharactersInvolved: []string{"c1"},
	})

	report, err := newChecker(g).Check(context.Background(), testStory, []CheckRule{CheckCharacterStatus})
	require.NoError(t, err)

	issues := issuesOf(t, report, entities.IssueCharacterStatus)
	require.Len(t, issues, 1)
	issue := issues[0]
	assert.Equal(t, entities.SeverityCritical, issue.Severity)
	assert.Equal(t, 1.0, issue.Confidence)
	assert.Contains(t, issue.Description, "老者")
	assert.Contains(t, issue.Description, "sequence 8")
	assert.Contains(t, issue.AffectedIDs, "c1")
	assert.Contains(t, issue.AffectedIDs, "p2")
}

func TestCheck_CharacterStatusChineseDeathKeyword(t *testing.T) {
	g := mocks.NewGraphStore()
	addCharacter(g, "c1", "老者", entities.StatusDeceased)
	addPlot(g, entities.PlotNode{ID: "p1", Title: "老者牺牲", SequenceNumber: 3, CharactersInvolved: []string{"c1"}})
	addPlot(g, entities.PlotNode{ID: "p2", Title: "council", SequenceNumber: 4, CharactersInvolved: []string{"c1"}})

	report, err := newChecker(g).Check(context.Background(), testStory, []CheckRule{CheckCharacterStatus})
	require.NoError(t, err)
	assert.Len(t, report.Issues, 1)
}

func TestCheck_CharacterStatusNoDeathPlot(t *testing.T) {
	// Deceased without a located death scene: nothing to anchor "later" on.
	g := mocks.NewGraphStore()
	addCharacter(g, "c1", "老者", entities.StatusDeceased)
	addPlot(g, entities.PlotNode{ID: "p1", Title: "council", SequenceNumber: 4, CharactersInvolved: []string{"c1"}})

	report, err := newChecker(g).Check(context.Background(), testStory, []CheckRule{CheckCharacterStatus})
	require.NoError(t, err)
	assert.Empty(t, report.Issues)
}

func TestCheck_CharacterStatusAliveIgnored(t *testing.T) {
	g := mocks.NewGraphStore()
	addCharacter(g, "c1", "林萧", entities.StatusAlive)
	addPlot(g, entities.PlotNode{ID: "p1", Title: "a rival is killed", SequenceNumber: 1, CharactersInvolved: []string{"c1"}})
	addPlot(g, entities.PlotNode{ID: "p2", Title: "aftermath", SequenceNumber: 2, CharactersInvolved: []string{"c1"}})

	report, err := newChecker(g).Check(context.Background(), testStory, []CheckRule{CheckCharacterStatus})
	require.NoError(t, err)
	assert.Empty(t, report.Issues)
}

func TestCheck_Motivation(t *testing.T) {
	g := mocks.NewGraphStore()
	addCharacter(g, "c1", "林萧", entities.StatusAlive)
	addCharacter(g, "c2", "苏婉", entities.StatusAlive)
	addPlot(g, entities.PlotNode{
		ID: "p1", Title: "The betrayal", SequenceNumber: 1, Importance: 90,
		CharactersInvolved: []string{"c1", "c2", "not-a-character"},
	})
	addRelation(g, entities.Relation{ID: "r1", SourceID: "c2", TargetID: "m1", Type: entities.RelationDrivenBy})

	report, err := newChecker(g).Check(context.Background(), testStory, []CheckRule{CheckMotivation})
	require.NoError(t, err)

	issues := issuesOf(t, report, entities.IssueMotivation)
	require.Len(t, issues, 1, "only the unmotivated character is flagged; unknown IDs are skipped")
	issue := issues[0]
	assert.Equal(t, entities.SeverityHigh, issue.Severity)
	assert.Equal(t, 0.75, issue.Confidence)
	assert.Contains(t, issue.Description, "林萧")
	assert.Equal(t, []string{"c1", "p1"}, issue.AffectedIDs)
}

func TestCheck_MotivationLowImportanceIgnored(t *testing.T) {
	g := mocks.NewGraphStore()
	addCharacter(g, "c1", "林萧", entities.StatusAlive)
	addPlot(g, entities.PlotNode{ID: "p1", SequenceNumber: 1, Importance: 79, CharactersInvolved: []string{"c1"}})

	report, err := newChecker(g).Check(context.Background(), testStory, []CheckRule{CheckMotivation})
	require.NoError(t, err)
	assert.Empty(t, report.Issues)
}

func TestCheck_Relationship(t *testing.T) {
	g := mocks.NewGraphStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	addRelation(g, entities.Relation{
		ID: "r1", SourceID: "c1", TargetID: "c2", Type: entities.RelationSocialBond,
		TrustLevel: 90, CreatedAt: base,
	})
	addRelation(g, entities.Relation{
		ID: "r2", SourceID: "c1", TargetID: "c2", Type: entities.RelationSocialBond,
		TrustLevel: 20, CreatedAt: base.Add(time.Hour),
	})

	report, err := newChecker(g).Check(context.Background(), testStory, []CheckRule{CheckRelationship})
	require.NoError(t, err)

	issues := issuesOf(t, report, entities.IssueRelationship)
	require.Len(t, issues, 1)
	issue := issues[0]
	assert.Equal(t, entities.SeverityMedium, issue.Severity)
	assert.Equal(t, 0.70, issue.Confidence)
	assert.Contains(t, issue.Description, "from trust 90 to 20")
	assert.Equal(t, 70, issue.Evidence["trust_delta"])
}

func TestCheck_RelationshipSmallDeltaIgnored(t *testing.T) {
	g := mocks.NewGraphStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	addRelation(g, entities.Relation{ID: "r1", SourceID: "c1", TargetID: "c2", Type: entities.RelationSocialBond, TrustLevel: 60, CreatedAt: base})
	addRelation(g, entities.Relation{ID: "r2", SourceID: "c1", TargetID: "c2", Type: entities.RelationSocialBond, TrustLevel: 30, CreatedAt: base.Add(time.Hour)})

	report, err := newChecker(g).Check(context.Background(), testStory, []CheckRule{CheckRelationship})
	require.NoError(t, err)
	assert.Empty(t, report.Issues)
}

func TestCheck_RelationshipSameTimestampIgnored(t *testing.T) {
	// Two bonds recorded at the same instant carry no before/after.
	g := mocks.NewGraphStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	addRelation(g, entities.Relation{ID: "r1", SourceID: "c1", TargetID: "c2", Type: entities.RelationSocialBond, TrustLevel: 90, CreatedAt: base})
	addRelation(g, entities.Relation{ID: "r2", SourceID: "c1", TargetID: "c2", Type: entities.RelationSocialBond, TrustLevel: 10, CreatedAt: base})

	report, err := newChecker(g).Check(context.Background(), testStory, []CheckRule{CheckRelationship})
	require.NoError(t, err)
	assert.Empty(t, report.Issues)
}

func TestCheck_Knowledge(t *testing.T) {
	g := mocks.NewGraphStore()
	addCharacter(g, "c1", "林萧", entities.StatusAlive, "swordplay", "tracking")
	addPlot(g, entities.PlotNode{
		ID: "p1", Title: "The cure", SequenceNumber: 1,
		Description:        "林萧 brews medicine to save the village",
		CharactersInvolved: []string{"c1"},
	})

	report, err := newChecker(g).Check(context.Background(), testStory, []CheckRule{CheckKnowledge})
	require.NoError(t, err)

	issues := issuesOf(t, report, entities.IssueKnowledge)
	require.Len(t, issues, 1)
	issue := issues[0]
	assert.Equal(t, entities.SeverityMedium, issue.Severity)
	assert.Equal(t, 0.65, issue.Confidence)
	assert.Contains(t, issue.Description, "medicine")
}

func TestCheck_KnowledgeCoveredStrength(t *testing.T) {
	g := mocks.NewGraphStore()
	addCharacter(g, "c1", "林萧", entities.StatusAlive, "master of Medicine and healing")
	addPlot(g, entities.PlotNode{
		ID: "p1", SequenceNumber: 1,
		Description:        "林萧 brews medicine to save the village",
		CharactersInvolved: []string{"c1"},
	})

	report, err := newChecker(g).Check(context.Background(), testStory, []CheckRule{CheckKnowledge})
	require.NoError(t, err)
	assert.Empty(t, report.Issues)
}

func TestCheck_WorldRule(t *testing.T) {
	g := mocks.NewGraphStore()
	g.WorldRules["w1"] = &entities.WorldRule{
		ID: "w1", StoryID: testStory, Name: "Night Curfew",
		Severity: entities.RuleStrict,
	}
	addPlot(g, entities.PlotNode{
		ID: "p1", Title: "Breaking the curfew", SequenceNumber: 1,
		Description: "the heroes slip out after dark",
	})

	report, err := newChecker(g).Check(context.Background(), testStory, []CheckRule{CheckWorldRule})
	require.NoError(t, err)

	issues := issuesOf(t, report, entities.IssueWorldRule)
	require.Len(t, issues, 1)
	issue := issues[0]
	assert.Equal(t, entities.SeverityHigh, issue.Severity, "strict rules escalate")
	assert.Equal(t, 0.60, issue.Confidence)
	assert.Equal(t, "curfew", issue.Evidence["matched_term"])
}

func TestCheck_WorldRuleModerateSeverity(t *testing.T) {
	g := mocks.NewGraphStore()
	g.WorldRules["w1"] = &entities.WorldRule{
		ID: "w1", StoryID: testStory, Name: "Night Curfew",
		Severity: entities.RuleModerate,
	}
	addPlot(g, entities.PlotNode{ID: "p1", Title: "Breaking the curfew", SequenceNumber: 1})

	report, err := newChecker(g).Check(context.Background(), testStory, []CheckRule{CheckWorldRule})
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, entities.SeverityMedium, report.Issues[0].Severity)
}

func TestCheck_WorldRuleNonViolationMarkerExempts(t *testing.T) {
	g := mocks.NewGraphStore()
	g.WorldRules["w1"] = &entities.WorldRule{
		ID: "w1", StoryID: testStory, Name: "Night Curfew", Severity: entities.RuleStrict,
	}
	addPlot(g, entities.PlotNode{
		ID: "p1", Title: "An evening errand", SequenceNumber: 1,
		Description: "according to the curfew they return before nightfall",
	})

	report, err := newChecker(g).Check(context.Background(), testStory, []CheckRule{CheckWorldRule})
	require.NoError(t, err)
	assert.Empty(t, report.Issues)
}

func TestCheck_PlotCoherence(t *testing.T) {
	g := mocks.NewGraphStore()
	addRelation(g, entities.Relation{ID: "n1", SourceID: "p1", TargetID: "p2", Type: entities.RelationNext})
	addRelation(g, entities.Relation{ID: "n2", SourceID: "p2", TargetID: "p3", Type: entities.RelationNext})
	// p1 influences p2 directly; p2 and p3 are unconnected.
	addRelation(g, entities.Relation{ID: "i1", SourceID: "p1", TargetID: "p2", Type: entities.RelationInfluences})

	report, err := newChecker(g).Check(context.Background(), testStory, []CheckRule{CheckPlotCoherence})
	require.NoError(t, err)

	issues := issuesOf(t, report, entities.IssuePlotCoherence)
	require.Len(t, issues, 1)
	issue := issues[0]
	assert.Equal(t, entities.SeverityLow, issue.Severity)
	assert.Equal(t, 0.50, issue.Confidence)
	assert.Equal(t, []string{"p2", "p3"}, issue.AffectedIDs)
}

func TestCheck_PlotCoherenceIndirectPath(t *testing.T) {
	g := mocks.NewGraphStore()
	addRelation(g, entities.Relation{ID: "n1", SourceID: "p1", TargetID: "p4", Type: entities.RelationNext})
	// p1 -> p2 -> p3 -> p4 sits within the depth bound.
	addRelation(g, entities.Relation{ID: "i1", SourceID: "p1", TargetID: "p2", Type: entities.RelationInfluences})
	addRelation(g, entities.Relation{ID: "i2", SourceID: "p2", TargetID: "p3", Type: entities.RelationInfluences})
	addRelation(g, entities.Relation{ID: "i3", SourceID: "p3", TargetID: "p4", Type: entities.RelationInfluences})

	report, err := newChecker(g).Check(context.Background(), testStory, []CheckRule{CheckPlotCoherence})
	require.NoError(t, err)
	assert.Empty(t, report.Issues)
}

func TestCheck_PlotCoherencePathTooDeep(t *testing.T) {
	g := mocks.NewGraphStore()
	addRelation(g, entities.Relation{ID: "n1", SourceID: "p1", TargetID: "p5", Type: entities.RelationNext})
	// Four hops exceeds the depth bound of three.
	addRelation(g, entities.Relation{ID: "i1", SourceID: "p1", TargetID: "p2", Type: entities.RelationInfluences})
	addRelation(g, entities.Relation{ID: "i2", SourceID: "p2", TargetID: "p3", Type: entities.RelationInfluences})
	addRelation(g, entities.Relation{ID: "i3", SourceID: "p3", TargetID: "p4", Type: entities.RelationInfluences})
	addRelation(g, entities.Relation{ID: "i4", SourceID: "p4", TargetID: "p5", Type: entities.RelationInfluences})

	report, err := newChecker(g).Check(context.Background(), testStory, []CheckRule{CheckPlotCoherence})
	require.NoError(t, err)
	assert.Len(t, report.Issues, 1)
}

func TestCheck_FailedCheckIsolated(t *testing.T) {
	g := mocks.NewGraphStore()
	g.CharactersErr = errors.New("disk gone")

	// Plot coherence only needs relations, so it still runs and reports.
	addRelation(g, entities.Relation{ID: "n1", SourceID: "p1", TargetID: "p2", Type: entities.RelationNext})

	report, err := newChecker(g).Check(context.Background(), testStory, []CheckRule{
		CheckCharacterStatus, CheckPlotCoherence,
	})
	require.NoError(t, err, "a failed check degrades, it does not abort the run")

	assert.Len(t, issuesOf(t, report, entities.IssuePlotCoherence), 1)
	assert.Empty(t, issuesOf(t, report, entities.IssueCharacterStatus))
}

func TestCheck_UnknownRuleSkipped(t *testing.T) {
	report, err := newChecker(mocks.NewGraphStore()).Check(context.Background(), testStory, []CheckRule{"astrology"})
	require.NoError(t, err)
	assert.Empty(t, report.Issues)
	assert.Equal(t, 100.0, report.OverallScore)
}
