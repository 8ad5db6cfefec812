package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/storygraph/internal/domain/entities"
)

func TestScorer_NoIssues(t *testing.T) {
	s := NewScorer(nil, 0)

	report := s.BuildReport("story1", nil)

	assert.Equal(t, "story1", report.StoryID)
	assert.Equal(t, 100.0, report.OverallScore)
	assert.True(t, report.Passed)
	assert.Empty(t, report.Issues)
	assert.Equal(t, []string{"no consistency issues detected"}, report.Recommendations)
}

func TestScorer_PenaltyWeightedByConfidence(t *testing.T) {
	s := NewScorer(nil, 0)

	report := s.BuildReport("s", []entities.ConsistencyIssue{
		{Category: entities.IssueSpatiotemporal, Severity: entities.SeverityCritical, Confidence: 1.0},
	})
	assert.Equal(t, 75.0, report.OverallScore)
	assert.False(t, report.Passed)

	report = s.BuildReport("s", []entities.ConsistencyIssue{
		{Category: entities.IssueWorldRule, Severity: entities.SeverityHigh, Confidence: 0.60},
	})
	assert.InDelta(t, 91.0, report.OverallScore, 1e-9)
	assert.True(t, report.Passed)
}

func TestScorer_MixedSeverities(t *testing.T) {
	s := NewScorer(nil, 0)

	report := s.BuildReport("s", []entities.ConsistencyIssue{
		{Category: entities.IssueCharacterStatus, Severity: entities.SeverityCritical, Confidence: 1.0}, // 25
		{Category: entities.IssueMotivation, Severity: entities.SeverityHigh, Confidence: 0.75},         // 11.25
		{Category: entities.IssueRelationship, Severity: entities.SeverityMedium, Confidence: 0.70},     // 5.6
		{Category: entities.IssuePlotCoherence, Severity: entities.SeverityLow, Confidence: 0.50},       // 1.5
	})

	assert.InDelta(t, 56.65, report.OverallScore, 1e-9)
	assert.False(t, report.Passed)
	assert.Equal(t, 1, report.CategoryCounts[entities.IssueCharacterStatus])
	assert.Equal(t, 1, report.CategoryCounts[entities.IssueMotivation])
	assert.Len(t, report.Issues, 4)
}

func TestScorer_ScoreClampedAtZero(t *testing.T) {
	s := NewScorer(nil, 0)

	var issues []entities.ConsistencyIssue
	for i := 0; i < 10; i++ {
		issues = append(issues, entities.ConsistencyIssue{
			Category: entities.IssueSpatiotemporal, Severity: entities.SeverityCritical, Confidence: 1.0,
		})
	}

	report := s.BuildReport("s", issues)
	assert.Equal(t, 0.0, report.OverallScore)
	assert.False(t, report.Passed)
}

func TestScorer_ScoreClampedAtHundred(t *testing.T) {
	// A misconfigured negative penalty must not push the score above 100.
	s := NewScorer(map[string]float64{string(entities.SeverityCritical): -10}, 0)

	report := s.BuildReport("s", []entities.ConsistencyIssue{
		{Category: entities.IssueSpatiotemporal, Severity: entities.SeverityCritical, Confidence: 1.0},
	})
	assert.Equal(t, 100.0, report.OverallScore)
}

func TestScorer_InfoCostsNothing(t *testing.T) {
	s := NewScorer(nil, 0)

	report := s.BuildReport("s", []entities.ConsistencyIssue{
		{Category: entities.IssuePlotCoherence, Severity: entities.SeverityInfo, Confidence: 1.0},
	})
	assert.Equal(t, 100.0, report.OverallScore)
	assert.True(t, report.Passed)
}

func TestScorer_CustomPenaltiesAndThreshold(t *testing.T) {
	s := NewScorer(map[string]float64{string(entities.SeverityCritical): 50}, 40)

	report := s.BuildReport("s", []entities.ConsistencyIssue{
		{Category: entities.IssueSpatiotemporal, Severity: entities.SeverityCritical, Confidence: 1.0},
		// Unconfigured severities keep their defaults.
		{Category: entities.IssuePlotCoherence, Severity: entities.SeverityLow, Confidence: 1.0},
	})

	assert.Equal(t, 47.0, report.OverallScore)
	assert.True(t, report.Passed, "custom threshold of 40 applies")
}

func TestScorer_Recommendations(t *testing.T) {
	s := NewScorer(nil, 0)

	report := s.BuildReport("s", []entities.ConsistencyIssue{
		{Category: entities.IssueSpatiotemporal, Severity: entities.SeverityCritical, Confidence: 1.0},
		{Category: entities.IssueCharacterStatus, Severity: entities.SeverityCritical, Confidence: 1.0},
		{Category: entities.IssueMotivation, Severity: entities.SeverityHigh, Confidence: 0.75},
	})

	require.NotEmpty(t, report.Recommendations)
	assert.Contains(t, report.Recommendations[0], "2 critical issue(s)")
	assert.Contains(t, report.Recommendations, "review the plot timeline: characters appear in conflicting locations at the same sequence")
	assert.Contains(t, report.Recommendations, "reconcile character statuses with the plots they appear in")
	assert.Contains(t, report.Recommendations, "add motivations for the 1 character appearance(s) in major plots")
}

func TestScorer_MinorIssuesRecommendation(t *testing.T) {
	s := NewScorer(nil, 0)

	report := s.BuildReport("s", []entities.ConsistencyIssue{
		{Category: entities.IssuePlotCoherence, Severity: entities.SeverityLow, Confidence: 0.5},
	})

	assert.Equal(t, []string{"minor issues only; address them during the next revision pass"}, report.Recommendations)
}
