// Package handlers contains application-level command handlers that sit
// between the CLI and the domain services.
package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ersonp/storygraph/internal/domain/services"
)

// ExtractHandler handles narrative text extraction into the graph.
type ExtractHandler struct {
	pipeline *services.Pipeline
}

// NewExtractHandler creates a new extract handler.
func NewExtractHandler(pipeline *services.Pipeline) *ExtractHandler {
	return &ExtractHandler{pipeline: pipeline}
}

// HandleFile extracts from a file on disk.
func (h *ExtractHandler) HandleFile(ctx context.Context, storyID, filePath string, opts services.ExtractOptions) (*services.ExtractResult, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("accessing file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", absPath)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	return h.pipeline.ExtractAndStore(ctx, storyID, string(data), opts)
}

// HandleText extracts from raw text.
func (h *ExtractHandler) HandleText(ctx context.Context, storyID, text string, opts services.ExtractOptions) (*services.ExtractResult, error) {
	return h.pipeline.ExtractAndStore(ctx, storyID, text, opts)
}
