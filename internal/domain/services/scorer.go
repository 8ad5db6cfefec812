package services

import (
	"fmt"

	"github.com/ersonp/storygraph/internal/domain/entities"
)

const (
	// DefaultPassingThreshold is the minimum score a story passes at.
	DefaultPassingThreshold = 80.0
	maxScore                = 100.0
)

// DefaultSeverityPenalties maps severity to score penalty per issue.
func DefaultSeverityPenalties() map[string]float64 {
	return map[string]float64{
		string(entities.SeverityCritical): 25,
		string(entities.SeverityHigh):     15,
		string(entities.SeverityMedium):   8,
		string(entities.SeverityLow):      3,
		string(entities.SeverityInfo):     0,
	}
}

// Scorer turns a flat issue list into a scored consistency report.
// Each issue subtracts its severity penalty weighted by the issue's own
// confidence, so a tentative finding costs less than a certain one.
type Scorer struct {
	penalties map[string]float64
	passing   float64
}

// NewScorer creates a scorer. Missing penalties and a non-positive passing
// threshold fall back to defaults.
func NewScorer(penalties map[string]float64, passingThreshold float64) *Scorer {
	merged := DefaultSeverityPenalties()
	for severity, penalty := range penalties {
		merged[severity] = penalty
	}
	if passingThreshold <= 0 {
		passingThreshold = DefaultPassingThreshold
	}
	return &Scorer{
		penalties: merged,
		passing:   passingThreshold,
	}
}

// BuildReport scores the issues and assembles the report.
func (s *Scorer) BuildReport(storyID string, issues []entities.ConsistencyIssue) *entities.ConsistencyReport {
	score := maxScore
	counts := make(map[entities.IssueCategory]int)

	for _, issue := range issues {
		score -= s.penalties[string(issue.Severity)] * issue.Confidence
		counts[issue.Category]++
	}
	if score < 0 {
		score = 0
	}
	// Configured penalties may be negative; the score stays within 0-100.
	if score > maxScore {
		score = maxScore
	}

	return &entities.ConsistencyReport{
		StoryID:         storyID,
		OverallScore:    score,
		Passed:          score >= s.passing,
		Issues:          issues,
		CategoryCounts:  counts,
		Recommendations: recommendations(issues, counts),
	}
}

// recommendations derives deterministic guidance from the issue mix.
func recommendations(issues []entities.ConsistencyIssue, counts map[entities.IssueCategory]int) []string {
	if len(issues) == 0 {
		return []string{"no consistency issues detected"}
	}

	var recs []string

	criticals := 0
	for _, issue := range issues {
		if issue.Severity == entities.SeverityCritical {
			criticals++
		}
	}
	if criticals > 0 {
		recs = append(recs, fmt.Sprintf("resolve the %d critical issue(s) before continuing the narrative", criticals))
	}

	if n := counts[entities.IssueSpatiotemporal]; n > 0 {
		recs = append(recs, "review the plot timeline: characters appear in conflicting locations at the same sequence")
	}
	if n := counts[entities.IssueCharacterStatus]; n > 0 {
		recs = append(recs, "reconcile character statuses with the plots they appear in")
	}
	if n := counts[entities.IssueMotivation]; n > 0 {
		recs = append(recs, fmt.Sprintf("add motivations for the %d character appearance(s) in major plots", n))
	}
	if n := counts[entities.IssueWorldRule]; n > 0 {
		recs = append(recs, "clarify how flagged scenes comply with the world rules they touch")
	}

	if len(recs) == 0 {
		recs = append(recs, "minor issues only; address them during the next revision pass")
	}
	return recs
}
