package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ersonp/storygraph/internal/domain/entities"
	"github.com/ersonp/storygraph/internal/domain/ports"
)

// ExtractOptions controls one extraction run.
type ExtractOptions struct {
	ChunkSize int
	Overlap   int
	// DryRun computes the full pipeline without persisting anything.
	DryRun bool
}

// ExtractResult is the outcome of one extraction run.
type ExtractResult struct {
	NodesCreated         int                    `json:"nodes_created"`
	PlotNodesCreated     int                    `json:"plot_nodes_created"`
	RelationshipsCreated int                    `json:"relationships_created"`
	PendingReview        int                    `json:"pending_review"`
	Pending              entities.ReviewPayload `json:"pending,omitempty"`
	ReviewEntryID        string                 `json:"review_entry_id,omitempty"`
	ValidationIssues     []string               `json:"validation_issues,omitempty"`
	Errors               []string               `json:"errors,omitempty"`
}

// ApplyResult is the outcome of applying an approved review entry. Items
// that still cannot be committed (unresolvable relation endpoints) are
// re-queued; PendingReview and ReviewEntryID report that follow-up entry.
type ApplyResult struct {
	NodesCreated         int      `json:"nodes_created"`
	PlotNodesCreated     int      `json:"plot_nodes_created"`
	RelationshipsCreated int      `json:"relationships_created"`
	PendingReview        int      `json:"pending_review,omitempty"`
	ReviewEntryID        string   `json:"review_entry_id,omitempty"`
	Errors               []string `json:"errors,omitempty"`
}

// Pipeline wires the extraction stages end to end:
// chunk -> extract (parallel) -> merge -> validate -> gate/commit.
// The embedder and vector index are optional; when present, committed
// entities are indexed best-effort after the commit.
type Pipeline struct {
	extractor *ExtractionService
	validator *Validator
	committer *Committer
	reviews   ports.ReviewStore
	aliases   AliasTable

	embedder ports.Embedder
	vectorDB ports.VectorDB
}

// NewPipeline creates a pipeline. embedder and vectorDB may be nil.
func NewPipeline(extractor *ExtractionService, validator *Validator, committer *Committer, reviews ports.ReviewStore, aliases AliasTable, embedder ports.Embedder, vectorDB ports.VectorDB) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		validator: validator,
		committer: committer,
		reviews:   reviews,
		aliases:   aliases,
		embedder:  embedder,
		vectorDB:  vectorDB,
	}
}

// ExtractAndStore runs the whole pipeline over raw narrative text.
// Caller errors (missing story, empty content) are rejected before any
// work starts; everything after that degrades per item instead of failing
// the run.
func (p *Pipeline) ExtractAndStore(ctx context.Context, storyID, content string, opts ExtractOptions) (*ExtractResult, error) {
	if strings.TrimSpace(storyID) == "" {
		return nil, errors.New("story ID is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("content is empty")
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Overlap < 0 {
		opts.Overlap = DefaultChunkOverlap
	}

	chunks := ChunkText(content, opts.ChunkSize, opts.Overlap)
	reg := NewRegistry(p.aliases)

	issues := p.extractor.ExtractAll(ctx, chunks, reg)

	merged := reg.Snapshot()
	if merged.Empty() {
		return &ExtractResult{ValidationIssues: issues}, nil
	}

	validated, validationIssues := p.validator.Validate(ctx, merged, reg)
	issues = append(issues, validationIssues...)

	commit, err := p.committer.Commit(ctx, storyID, validated, CommitOptions{
		DryRun: opts.DryRun,
		Gate:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("committing candidates: %w", err)
	}

	if !opts.DryRun {
		p.indexCommitted(ctx, commit.Committed)
	}

	return &ExtractResult{
		NodesCreated:         commit.NodesCreated,
		PlotNodesCreated:     commit.PlotNodesCreated,
		RelationshipsCreated: commit.RelationshipsCreated,
		PendingReview:        commit.PendingReview,
		Pending:              commit.Pending,
		ReviewEntryID:        commit.ReviewEntryID,
		ValidationIssues:     issues,
		Errors:               commit.Errors,
	}, nil
}

// ApplyReview commits an approved review entry and marks it terminal.
func (p *Pipeline) ApplyReview(ctx context.Context, storyID, reviewID string) (*ApplyResult, error) {
	if strings.TrimSpace(storyID) == "" {
		return nil, errors.New("story ID is required")
	}

	entry, err := p.reviews.ReviewByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("loading review entry: %w", err)
	}
	if entry == nil {
		return nil, fmt.Errorf("review entry not found: %s", reviewID)
	}
	if entry.StoryID != storyID {
		return nil, fmt.Errorf("review entry %s belongs to story %s", reviewID, entry.StoryID)
	}
	if entry.Status != entities.ReviewPending {
		return nil, fmt.Errorf("review entry %s is already %s", reviewID, entry.Status)
	}

	commit, err := p.committer.ApplyReview(ctx, storyID, entry.Payload)
	if err != nil {
		return nil, fmt.Errorf("applying review payload: %w", err)
	}

	if err := p.reviews.UpdateReviewStatus(ctx, reviewID, entities.ReviewApproved); err != nil {
		return nil, fmt.Errorf("marking review approved: %w", err)
	}

	p.indexCommitted(ctx, commit.Committed)

	return &ApplyResult{
		NodesCreated:         commit.NodesCreated,
		PlotNodesCreated:     commit.PlotNodesCreated,
		RelationshipsCreated: commit.RelationshipsCreated,
		PendingReview:        commit.PendingReview,
		ReviewEntryID:        commit.ReviewEntryID,
		Errors:               commit.Errors,
	}, nil
}

// RejectReview marks a pending entry rejected without committing anything.
func (p *Pipeline) RejectReview(ctx context.Context, storyID, reviewID string) error {
	entry, err := p.reviews.ReviewByID(ctx, reviewID)
	if err != nil {
		return fmt.Errorf("loading review entry: %w", err)
	}
	if entry == nil {
		return fmt.Errorf("review entry not found: %s", reviewID)
	}
	if entry.StoryID != storyID {
		return fmt.Errorf("review entry %s belongs to story %s", reviewID, entry.StoryID)
	}
	if entry.Status != entities.ReviewPending {
		return fmt.Errorf("review entry %s is already %s", reviewID, entry.Status)
	}
	return p.reviews.UpdateReviewStatus(ctx, reviewID, entities.ReviewRejected)
}

// indexCommitted embeds committed entities into the vector index.
// Indexing is ancillary: failures are logged and never fail the commit.
func (p *Pipeline) indexCommitted(ctx context.Context, records []ports.EntityRecord) {
	if p.embedder == nil || p.vectorDB == nil || len(records) == 0 {
		return
	}

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = strings.TrimSpace(r.Name + " " + r.Description)
	}

	embeddings, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil || len(embeddings) != len(records) {
		slog.Warn("pipeline: entity indexing skipped", "error", err)
		return
	}
	for i := range records {
		records[i].Embedding = embeddings[i]
	}

	if err := p.vectorDB.UpsertBatch(ctx, records); err != nil {
		slog.Warn("pipeline: entity indexing failed", "error", err)
	}
}
