package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/storygraph/internal/domain/entities"
	"github.com/ersonp/storygraph/internal/domain/ports"
)

const (
	// DefaultConfidenceThreshold gates candidates into commit vs review.
	DefaultConfidenceThreshold = 0.6
	// stableIDPrefix marks graph IDs minted by the committer.
	stableIDPrefix = "sg_"
	// stableIDLength is the hex length of the hash suffix.
	stableIDLength = 16
)

// StableID derives a deterministic node ID from (story, kind, name).
// Re-extracting the same named entity for the same story always yields the
// same ID, making commits idempotent: repeated runs merge instead of
// duplicating.
func StableID(storyID string, kind entities.NodeKind, name string) string {
	sum := sha256.Sum256([]byte(storyID + ":" + string(kind) + ":" + entities.NormalizeName(name)))
	return stableIDPrefix + hex.EncodeToString(sum[:])[:stableIDLength]
}

// PlotStableID additionally incorporates the candidate's position index so
// same-titled plot nodes stay distinct.
func PlotStableID(storyID, title string, index int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%s:%d", storyID, entities.KindPlotNode, entities.NormalizeName(title), index)))
	return stableIDPrefix + hex.EncodeToString(sum[:])[:stableIDLength]
}

// RelationStableID keys a relation by its resolved endpoints and type, so a
// retried commit creates the same edge instead of a duplicate.
func RelationStableID(storyID, sourceID, targetID string, relType entities.RelationType) string {
	sum := sha256.Sum256([]byte(storyID + ":rel:" + sourceID + ":" + string(relType) + ":" + targetID))
	return stableIDPrefix + hex.EncodeToString(sum[:])[:stableIDLength]
}

// CommitOptions controls one commit pass.
type CommitOptions struct {
	// DryRun computes the same partition and counts without persisting
	// anything, including the review queue entry.
	DryRun bool
	// Gate disables the confidence threshold when false (apply-review path).
	Gate bool
	// Source labels any review entry this pass queues. Empty means
	// "extraction".
	Source string
}

// CommitResult reports what one commit pass did.
type CommitResult struct {
	NodesCreated         int                    `json:"nodes_created"`
	PlotNodesCreated     int                    `json:"plot_nodes_created"`
	RelationshipsCreated int                    `json:"relationships_created"`
	PendingReview        int                    `json:"pending_review"`
	Pending              entities.ReviewPayload `json:"pending,omitempty"`
	ReviewEntryID        string                 `json:"review_entry_id,omitempty"`
	Errors               []string               `json:"errors,omitempty"`

	// Committed carries the records to index, for best-effort embedding.
	Committed []ports.EntityRecord `json:"-"`
}

// Committer partitions validated candidates into committed graph writes and
// a pending-review bucket. Every candidate lands in exactly one of the two.
type Committer struct {
	graph     ports.GraphStore
	reviews   ports.ReviewStore
	threshold float64
}

// NewCommitter creates a committer with the given confidence threshold.
// A non-positive threshold falls back to the default.
func NewCommitter(graph ports.GraphStore, reviews ports.ReviewStore, threshold float64) *Committer {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &Committer{
		graph:     graph,
		reviews:   reviews,
		threshold: threshold,
	}
}

// Commit persists the candidate set. Item-level failures (store rejections,
// invariant violations) are collected into the result and do not abort the
// batch. With opts.Gate, candidates below the threshold are routed to the
// pending-review bucket; all pending items for the run are grouped into a
// single review queue entry.
func (c *Committer) Commit(ctx context.Context, storyID string, set entities.CandidateSet, opts CommitOptions) (*CommitResult, error) {
	result := &CommitResult{}
	now := time.Now()

	// Name -> assigned ID map for this pass; relations resolve against it.
	nameToID := make(map[string]string)

	for _, cand := range set.Entities {
		if opts.Gate && cand.Confidence < c.threshold {
			result.Pending.Entities = append(result.Pending.Entities, cand)
			continue
		}

		id := StableID(storyID, cand.Kind, cand.Name)
		if err := c.upsertEntity(ctx, storyID, id, cand, now, opts.DryRun); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("entity %q: %v", cand.Name, err))
			continue
		}

		nameToID[entities.NormalizeName(cand.Name)] = id
		result.NodesCreated++
		result.Committed = append(result.Committed, ports.EntityRecord{
			ID:          id,
			StoryID:     storyID,
			Kind:        cand.Kind,
			Name:        cand.Name,
			Description: cand.Description,
		})
	}

	for i, cand := range set.PlotNodes {
		if opts.Gate && cand.Confidence < c.threshold {
			result.Pending.PlotNodes = append(result.Pending.PlotNodes, cand)
			continue
		}

		id := PlotStableID(storyID, cand.Title, i)
		node := &entities.PlotNode{
			ID:             id,
			StoryID:        storyID,
			Title:          cand.Title,
			Description:    cand.Description,
			SequenceNumber: cand.SequenceNumber,
			Importance:     cand.Importance,
			Tension:        cand.Tension,
			Locations:      cand.Locations,
			Conflicts:      cand.Conflicts,
			Themes:         cand.Themes,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		// Involved characters resolve to committed IDs where known;
		// unresolved names are kept raw for later manual linking.
		for _, name := range cand.Characters {
			if cid, ok := nameToID[entities.NormalizeName(name)]; ok {
				node.CharactersInvolved = append(node.CharactersInvolved, cid)
			} else {
				node.CharactersInvolved = append(node.CharactersInvolved, name)
			}
		}

		if !opts.DryRun {
			if err := c.graph.UpsertPlotNode(ctx, node); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("plot node %q: %v", cand.Title, err))
				continue
			}
		}

		nameToID[entities.NormalizeName(cand.Title)] = id
		result.PlotNodesCreated++
	}

	plotTitles := c.plotTitleIndex(ctx, storyID)

	for _, rel := range set.Relations {
		srcID, srcOK := c.resolveEndpoint(ctx, storyID, rel.Source, nameToID, plotTitles, opts.DryRun)
		dstID, dstOK := c.resolveEndpoint(ctx, storyID, rel.Target, nameToID, plotTitles, opts.DryRun)

		// Relations with unassigned endpoints (gated to review, marked
		// invalid, or never extracted) go to review with raw names kept.
		if rel.Invalid || !srcOK || !dstOK {
			if rel.Reason == "" {
				rel.Reason = "endpoint has no committed node"
			}
			result.Pending.Relations = append(result.Pending.Relations, rel)
			continue
		}

		relType, _ := entities.NormalizeRelationType(rel.Type)
		edge := &entities.Relation{
			ID:          RelationStableID(storyID, srcID, dstID, relType),
			StoryID:     storyID,
			SourceID:    srcID,
			TargetID:    dstID,
			Type:        relType,
			Description: rel.Description,
			Confidence:  rel.Confidence,
			TrustLevel:  rel.TrustLevel,
			CreatedAt:   now,
		}

		if !opts.DryRun {
			if err := c.graph.CreateRelation(ctx, edge); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("relation %s->%s: %v", rel.Source, rel.Target, err))
				continue
			}
		}
		result.RelationshipsCreated++
	}

	result.PendingReview = result.Pending.Count()
	if result.PendingReview > 0 && !opts.DryRun {
		source := opts.Source
		if source == "" {
			source = "extraction"
		}
		entry := &entities.ReviewQueueEntry{
			ID:        uuid.New().String(),
			StoryID:   storyID,
			Status:    entities.ReviewPending,
			Payload:   result.Pending,
			Source:    source,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := c.reviews.CreateReview(ctx, entry); err != nil {
			return result, fmt.Errorf("queueing review entry: %w", err)
		}
		result.ReviewEntryID = entry.ID
	}

	return result, nil
}

// endpointKinds are probed, in order, when a relation endpoint was not
// assigned an ID during this pass. Approved review payloads routinely
// reference nodes committed in an earlier run.
var endpointKinds = []entities.NodeKind{
	entities.KindCharacter,
	entities.KindLocation,
	entities.KindConflict,
	entities.KindMotivation,
	entities.KindTheme,
	entities.KindItem,
}

// resolveEndpoint maps a relation endpoint name to a committed node ID:
// first through the in-memory map built during this pass, then through a
// stable-ID existence probe against the store, then through the plot title
// index.
func (c *Committer) resolveEndpoint(ctx context.Context, storyID, name string, nameToID map[string]string, plotTitles func() map[string]string, dryRun bool) (string, bool) {
	if id, ok := nameToID[entities.NormalizeName(name)]; ok {
		return id, true
	}
	if dryRun {
		return "", false
	}
	for _, kind := range endpointKinds {
		id := StableID(storyID, kind, name)
		if exists, err := c.graph.NodeExists(ctx, id); err == nil && exists {
			return id, true
		}
	}
	if id, ok := plotTitles()[entities.NormalizeName(name)]; ok {
		return id, true
	}
	return "", false
}

// plotTitleIndex returns a lazy title -> ID index over the story's committed
// plot nodes. Plot stable IDs carry a position index, so they cannot be
// re-derived from the title alone the way other kinds are probed; titles
// have to be looked up. The index loads on first use and only once per pass.
func (c *Committer) plotTitleIndex(ctx context.Context, storyID string) func() map[string]string {
	var index map[string]string
	return func() map[string]string {
		if index != nil {
			return index
		}
		index = make(map[string]string)
		nodes, err := c.graph.PlotNodesByStory(ctx, storyID)
		if err != nil {
			slog.Warn("committer: plot title lookup failed", "story_id", storyID, "error", err)
			return index
		}
		for _, n := range nodes {
			index[entities.NormalizeName(n.Title)] = n.ID
		}
		return index
	}
}

// upsertEntity writes one gated-through candidate as its typed node.
func (c *Committer) upsertEntity(ctx context.Context, storyID, id string, cand entities.CandidateEntity, now time.Time, dryRun bool) error {
	if dryRun {
		return nil
	}

	if cand.Kind == entities.KindCharacter {
		status := entities.CharacterStatus(cand.Status)
		if !entities.ValidStatus(status) {
			status = entities.StatusUnknown
		}
		return c.graph.UpsertCharacter(ctx, &entities.Character{
			ID:          id,
			StoryID:     storyID,
			Name:        cand.Name,
			Status:      status,
			Backstory:   cand.Description,
			Traits:      cand.Traits,
			Strengths:   cand.Strengths,
			Motivations: cand.Motivations,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	return c.graph.UpsertNode(ctx, &entities.GenericNode{
		ID:          id,
		StoryID:     storyID,
		Kind:        cand.Kind,
		Name:        cand.Name,
		Description: cand.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// ApplyReview commits a human-approved payload with the identical logic as
// Commit but without the confidence gate: trust is manual.
func (c *Committer) ApplyReview(ctx context.Context, storyID string, payload entities.ReviewPayload) (*CommitResult, error) {
	set := entities.CandidateSet{
		Entities:  payload.Entities,
		PlotNodes: payload.PlotNodes,
		Relations: payload.Relations,
	}
	// Endpoints approved by a human may reference nodes committed in an
	// earlier run; clear the invalid mark and let endpoint resolution at
	// commit time decide. Relations that still fail to resolve are
	// re-queued under their own source label.
	for i := range set.Relations {
		set.Relations[i].Invalid = false
	}
	return c.Commit(ctx, storyID, set, CommitOptions{Gate: false, Source: "apply_review"})
}
