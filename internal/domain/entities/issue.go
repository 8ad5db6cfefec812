package entities

import "time"

// IssueCategory names the consistency rule that produced an issue.
type IssueCategory string

const (
	IssueSpatiotemporal  IssueCategory = "spatiotemporal"
	IssueCharacterStatus IssueCategory = "character_status"
	IssueMotivation      IssueCategory = "motivation"
	IssueRelationship    IssueCategory = "relationship"
	IssueKnowledge       IssueCategory = "knowledge_ability"
	IssueWorldRule       IssueCategory = "world_rule"
	IssuePlotCoherence   IssueCategory = "plot_coherence"
)

// IssueSeverity weighs an issue in the report score.
type IssueSeverity string

const (
	SeverityCritical IssueSeverity = "critical"
	SeverityHigh     IssueSeverity = "high"
	SeverityMedium   IssueSeverity = "medium"
	SeverityLow      IssueSeverity = "low"
	SeverityInfo     IssueSeverity = "info"
)

// ConsistencyIssue is one detected narrative-logic violation. Issues are
// report artifacts: they are created fresh on every check run and never
// persisted as graph nodes.
type ConsistencyIssue struct {
	ID           string         `json:"id"`
	Category     IssueCategory  `json:"category"`
	Severity     IssueSeverity  `json:"severity"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Location     string         `json:"location,omitempty"`
	AffectedIDs  []string       `json:"affected_element_ids,omitempty"`
	Evidence     map[string]any `json:"evidence,omitempty"`
	SuggestedFix string         `json:"suggested_fix,omitempty"`
	Confidence   float64        `json:"confidence"`
}

// ConsistencyReport is the scored output of one consistency-check run.
type ConsistencyReport struct {
	StoryID         string                `json:"story_id"`
	ScanTime        time.Time             `json:"scan_time"`
	OverallScore    float64               `json:"overall_score"`
	Passed          bool                  `json:"passed"`
	Issues          []ConsistencyIssue    `json:"issues"`
	CategoryCounts  map[IssueCategory]int `json:"category_counts"`
	Recommendations []string              `json:"recommendations"`
}
