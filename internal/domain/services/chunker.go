// Package services contains domain business logic.
package services

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultChunkSize is the default size for text chunks, in bytes.
	DefaultChunkSize = 2000
	// DefaultChunkOverlap is the default overlap between chunks, in bytes.
	DefaultChunkOverlap = 200
)

// sentenceEnders are the characters a chunk prefers to end on.
const sentenceEnders = ".!?\n。！？…"

// ChunkText splits text into overlapping windows, preferring to cut at a
// sentence boundary. The window advances in strides of chunkSize-overlap;
// when the raw cut point falls inside the text, the cut moves back to the
// nearest sentence-ending punctuation within the last 40% of the window.
//
// Empty text yields no chunks. Text shorter than chunkSize, or a
// non-positive chunkSize, yields the whole text as a single chunk. The
// cursor is forced forward at least one byte per step so the walk
// terminates even when overlap >= chunkSize.
func ChunkText(text string, chunkSize, overlap int) []string {
	if text == "" {
		return nil
	}
	if chunkSize <= 0 || len(text) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step < 1 {
		step = 1
	}
	// The backseek can pull the cut back to searchFrom+1, so the smallest
	// advance per iteration is chunkSize*6/10 + 1 - overlap (or the forced
	// single byte). The cap must budget for that worst case or a
	// boundary-dense text loses its tail.
	minStride := chunkSize*6/10 + 1 - overlap
	if minStride < 1 {
		minStride = 1
	}
	maxIterations := len(text)/minStride + 2

	var chunks []string
	start := 0
	for i := 0; i < maxIterations && start < len(text); i++ {
		end := start + chunkSize
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}

		// Search backward for a sentence boundary within the last 40%
		// of the window, to avoid splitting mid-sentence.
		searchFrom := start + chunkSize*6/10
		window := text[searchFrom:end]
		if idx := strings.LastIndexAny(window, sentenceEnders); idx >= 0 {
			_, size := utf8.DecodeRuneInString(window[idx:])
			end = searchFrom + idx + size
		}

		chunks = append(chunks, text[start:end])

		next := end - overlap
		if next <= start {
			// Non-advancing cursor: force progress.
			next = start + step
		}
		start = next
	}

	return chunks
}
