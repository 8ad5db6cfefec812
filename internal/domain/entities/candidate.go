package entities

// CandidateEntity is an entity extracted from one chunk, before merging,
// validation, and the confidence gate. Character-specific fields are empty
// for other kinds.
type CandidateEntity struct {
	Kind        NodeKind `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Confidence  float64  `json:"confidence"`
	Reason      string   `json:"reason,omitempty"`

	Status      string   `json:"status,omitempty"`
	Traits      []string `json:"traits,omitempty"`
	Strengths   []string `json:"strengths,omitempty"`
	Motivations []string `json:"motivations,omitempty"`
	TrustLevel  int      `json:"trust_level,omitempty"`
}

// CandidatePlotNode is a plot event extracted from one chunk. Character and
// location references are raw names, resolved to IDs at commit time.
type CandidatePlotNode struct {
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	SequenceNumber int      `json:"sequence_number"`
	Importance     int      `json:"importance"`
	Tension        int      `json:"tension"`
	Characters     []string `json:"characters,omitempty"`
	Locations      []string `json:"locations,omitempty"`
	Conflicts      []string `json:"conflicts,omitempty"`
	Themes         []string `json:"themes,omitempty"`
	Confidence     float64  `json:"confidence"`
	Reason         string   `json:"reason,omitempty"`
}

// CandidateRelation is an edge between two candidate names. Invalid marks a
// relation whose endpoints could not be verified; such relations are routed
// to review instead of being committed.
type CandidateRelation struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Type        string  `json:"type"`
	Description string  `json:"description,omitempty"`
	Confidence  float64 `json:"confidence"`
	TrustLevel  int     `json:"trust_level,omitempty"`
	Invalid     bool    `json:"invalid,omitempty"`
	Reason      string  `json:"reason,omitempty"`
}

// CandidateSet is everything the pipeline holds for one extraction run.
type CandidateSet struct {
	Entities  []CandidateEntity   `json:"entities"`
	PlotNodes []CandidatePlotNode `json:"plot_nodes"`
	Relations []CandidateRelation `json:"relations"`
}

// Empty reports whether the set carries no candidates at all.
func (s *CandidateSet) Empty() bool {
	return len(s.Entities) == 0 && len(s.PlotNodes) == 0 && len(s.Relations) == 0
}
