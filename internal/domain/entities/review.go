package entities

import "time"

// ReviewStatus is the lifecycle state of a review queue entry.
// Approved and rejected are terminal.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// ReviewPayload holds the candidates that failed the confidence gate or
// whose relation endpoints could not be resolved.
type ReviewPayload struct {
	Entities  []CandidateEntity   `json:"entities,omitempty"`
	PlotNodes []CandidatePlotNode `json:"plot_nodes,omitempty"`
	Relations []CandidateRelation `json:"relations,omitempty"`
}

// Count returns the total number of pending items in the payload.
func (p *ReviewPayload) Count() int {
	return len(p.Entities) + len(p.PlotNodes) + len(p.Relations)
}

// ReviewQueueEntry groups all pending items from one extraction run for
// human confirmation.
type ReviewQueueEntry struct {
	ID        string        `json:"id"`
	StoryID   string        `json:"story_id"`
	Status    ReviewStatus  `json:"status"`
	Payload   ReviewPayload `json:"payload"`
	Source    string        `json:"source"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
