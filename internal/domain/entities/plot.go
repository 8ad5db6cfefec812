package entities

import "time"

// PlotNode is a single plot event. SequenceNumber is unique per story and
// defines the total order over narrative time.
type PlotNode struct {
	ID                 string    `json:"id"`
	StoryID            string    `json:"story_id"`
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	SequenceNumber     int       `json:"sequence_number"`
	Importance         int       `json:"importance"` // 0-100
	Tension            int       `json:"tension"`    // 0-100
	CharactersInvolved []string  `json:"characters_involved,omitempty"`
	Locations          []string  `json:"locations,omitempty"`
	Conflicts          []string  `json:"conflicts,omitempty"`
	Themes             []string  `json:"themes,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// PrimaryLocation returns the first listed location, or "" if none.
func (p *PlotNode) PrimaryLocation() string {
	if len(p.Locations) == 0 {
		return ""
	}
	return p.Locations[0]
}

// Involves reports whether the plot lists the given character ID or name.
func (p *PlotNode) Involves(id string) bool {
	for _, c := range p.CharactersInvolved {
		if c == id {
			return true
		}
	}
	return false
}
