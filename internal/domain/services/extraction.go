package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ersonp/storygraph/internal/domain/entities"
	"github.com/ersonp/storygraph/internal/domain/ports"
)

const (
	// defaultWorkers bounds the number of concurrent chunk extractions.
	defaultWorkers = 4
	// perChunkTimeout caps how long a single chunk extraction can take.
	perChunkTimeout = 90 * time.Second
	// extractionMaxTokens bounds the extraction response size.
	extractionMaxTokens = 4096
)

// ExtractionService turns text chunks into candidate sets via the language
// model. Chunks are independent calls and run concurrently up to a bounded
// worker pool; results fold into the registry, which serializes merges.
type ExtractionService struct {
	llm     ports.LLMClient
	workers int
}

// NewExtractionService creates a new extraction service.
func NewExtractionService(llm ports.LLMClient, workers int) *ExtractionService {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &ExtractionService{
		llm:     llm,
		workers: workers,
	}
}

// ExtractChunk runs one extraction call for a single chunk and parses the
// structured response.
func (s *ExtractionService) ExtractChunk(ctx context.Context, chunk string, index int) (entities.CandidateSet, error) {
	content, err := s.llm.Generate(ctx, []ports.Message{
		{Role: ports.RoleSystem, Content: extractionPrompt},
		{Role: ports.RoleUser, Content: chunk},
	}, 0.1, extractionMaxTokens)
	if err != nil {
		return entities.CandidateSet{}, fmt.Errorf("chunk %d extraction: %w", index, err)
	}

	set, err := parseCandidateSet(content)
	if err != nil {
		return entities.CandidateSet{}, fmt.Errorf("chunk %d parse: %w", index, err)
	}

	return set, nil
}

// ExtractAll extracts candidates from every chunk into the registry.
// A chunk that fails (call error, timeout, unparseable response)
// contributes nothing and does not block or fail its siblings; failures
// come back as issue strings. Cancelling ctx skips unscheduled chunks and
// propagates to in-flight calls.
func (s *ExtractionService) ExtractAll(ctx context.Context, chunks []string, reg *Registry) []string {
	if len(chunks) == 0 {
		return nil
	}

	slog.Info("extraction: processing chunks", "total", len(chunks), "workers", s.workers)

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		sem    = make(chan struct{}, s.workers)
		issues []string
	)

	for i, chunk := range chunks {
		wg.Add(1)
		go func(chunk string, index int) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				issues = append(issues, fmt.Sprintf("chunk %d: %v", index, ctx.Err()))
				mu.Unlock()
				return
			}

			chunkCtx, cancel := context.WithTimeout(ctx, perChunkTimeout)
			defer cancel()

			start := time.Now()
			set, err := s.ExtractChunk(chunkCtx, chunk, index)
			if err != nil {
				slog.Warn("extraction: chunk failed", "chunk", index, "error", err,
					"elapsed", time.Since(start).Round(time.Millisecond))
				mu.Lock()
				issues = append(issues, err.Error())
				mu.Unlock()
				return
			}

			reg.MergeSet(set)
			slog.Debug("extraction: chunk processed", "chunk", index,
				"entities", len(set.Entities), "plot_nodes", len(set.PlotNodes),
				"relations", len(set.Relations),
				"elapsed", time.Since(start).Round(time.Millisecond))
		}(chunk, i)
	}

	wg.Wait()
	return issues
}
