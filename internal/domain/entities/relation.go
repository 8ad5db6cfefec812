package entities

import (
	"strings"
	"time"
)

// RelationType defines the kind of edge between two graph nodes.
// The set is closed: unrecognized types degrade to RelationInfluences.
type RelationType string

const (
	RelationSocialBond  RelationType = "social_bond"
	RelationFamily      RelationType = "family"
	RelationRomantic    RelationType = "romantic"
	RelationInfluences  RelationType = "influences"
	RelationLeadsTo     RelationType = "leads_to"
	RelationNext        RelationType = "next"
	RelationResolves    RelationType = "resolves"
	RelationComplicates RelationType = "complicates"
	RelationInvolvedIn  RelationType = "involved_in"
	RelationDrivenBy    RelationType = "driven_by"
	RelationContains    RelationType = "contains"
	RelationViolates    RelationType = "violates"
	RelationEnforces    RelationType = "enforces"
	RelationLocatedIn   RelationType = "located_in"
	RelationOwns        RelationType = "owns"
	RelationPartOf      RelationType = "part_of"
	RelationRepresents  RelationType = "represents"
	RelationOpposes     RelationType = "opposes"
	RelationSupports    RelationType = "supports"
)

// relationAliases maps spellings the model tends to produce onto the
// canonical closed set.
var relationAliases = map[string]RelationType{
	"social":     RelationSocialBond,
	"friend":     RelationSocialBond,
	"friendship": RelationSocialBond,
	"knows":      RelationSocialBond,
	"family_of":  RelationFamily,
	"parent":     RelationFamily,
	"child":      RelationFamily,
	"sibling":    RelationFamily,
	"lover":      RelationRomantic,
	"romance":    RelationRomantic,
	"causes":     RelationLeadsTo,
	"leads-to":   RelationLeadsTo,
	"follows":    RelationNext,
	"sequel":     RelationNext,
	"located_at": RelationLocatedIn,
	"located-in": RelationLocatedIn,
	"in":         RelationLocatedIn,
	"member_of":  RelationPartOf,
	"belongs_to": RelationPartOf,
	"breaks":     RelationViolates,
	"enemy":      RelationOpposes,
	"rival":      RelationOpposes,
	"against":    RelationOpposes,
	"ally":       RelationSupports,
	"helps":      RelationSupports,
	"motivates":  RelationDrivenBy,
	"driven-by":  RelationDrivenBy,
}

var relationTypes = map[RelationType]bool{
	RelationSocialBond: true, RelationFamily: true, RelationRomantic: true,
	RelationInfluences: true, RelationLeadsTo: true, RelationNext: true,
	RelationResolves: true, RelationComplicates: true, RelationInvolvedIn: true,
	RelationDrivenBy: true, RelationContains: true, RelationViolates: true,
	RelationEnforces: true, RelationLocatedIn: true, RelationOwns: true,
	RelationPartOf: true, RelationRepresents: true, RelationOpposes: true,
	RelationSupports: true,
}

// NormalizeRelationType maps an arbitrary type string onto the closed enum.
// The second return is false when the input was unrecognized and the caller
// should treat the result (RelationInfluences) as a degraded guess.
func NormalizeRelationType(s string) (RelationType, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, " ", "_")
	if relationTypes[RelationType(key)] {
		return RelationType(key), true
	}
	if t, ok := relationAliases[key]; ok {
		return t, true
	}
	return RelationInfluences, false
}

// Relation is a typed directed edge between two committed node IDs.
// Both endpoints must exist in the graph at creation time.
type Relation struct {
	ID          string       `json:"id"`
	StoryID     string       `json:"story_id"`
	SourceID    string       `json:"source_id"`
	TargetID    string       `json:"target_id"`
	Type        RelationType `json:"type"`
	Description string       `json:"description,omitempty"`
	Confidence  float64      `json:"confidence"`
	TrustLevel  int          `json:"trust_level,omitempty"` // 0-100, social bonds only
	CreatedAt   time.Time    `json:"created_at"`
}
