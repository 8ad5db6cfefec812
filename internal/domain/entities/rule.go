package entities

import "time"

// RuleSeverity is how strictly a world rule binds the narrative.
type RuleSeverity string

const (
	RuleStrict   RuleSeverity = "strict"
	RuleModerate RuleSeverity = "moderate"
	RuleFlexible RuleSeverity = "flexible"
)

// WorldRule is a law of the fictional world: magic systems, social customs,
// physical constraints. Rules are created manually, not extracted.
type WorldRule struct {
	ID           string       `json:"id"`
	StoryID      string       `json:"story_id"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	RuleType     string       `json:"rule_type,omitempty"`
	Severity     RuleSeverity `json:"severity"`
	Consequences []string     `json:"consequences,omitempty"`
	Exceptions   []string     `json:"exceptions,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}
