package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/storygraph/internal/domain/services"
)

func newExtractCmd() *cobra.Command {
	var (
		chunkSize int
		overlap   int
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract narrative elements from a text file into the story graph",
		Long:  "Chunks the file, extracts characters, plot nodes and relations with the LLM, validates and merges them, then commits high-confidence candidates and queues the rest for review.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				opts := services.ExtractOptions{
					ChunkSize: chunkSize,
					Overlap:   overlap,
					DryRun:    dryRun,
				}
				if chunkSize == 0 {
					opts.ChunkSize = d.Config.Pipeline.ChunkSize
				}
				if overlap == 0 {
					opts.Overlap = d.Config.Pipeline.ChunkOverlap
				}

				fmt.Printf("Extracting %s into story %q...\n", args[0], globalStory)

				result, err := d.ExtractHandler.HandleFile(cmd.Context(), globalStory, args[0], opts)
				if err != nil {
					return err
				}

				printExtractResult(result)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Chunk size in characters (default from config)")
	cmd.Flags().IntVar(&overlap, "overlap", 0, "Chunk overlap in characters (default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the full pipeline without persisting anything")

	return cmd
}

func printExtractResult(result *services.ExtractResult) {
	fmt.Printf("Nodes created:         %d\n", result.NodesCreated)
	fmt.Printf("Plot nodes created:    %d\n", result.PlotNodesCreated)
	fmt.Printf("Relationships created: %d\n", result.RelationshipsCreated)
	fmt.Printf("Pending review:        %d\n", result.PendingReview)

	if result.ReviewEntryID != "" {
		fmt.Printf("\nReview entry %s created. Inspect it with:\n  storygraph review show %s\n", result.ReviewEntryID, result.ReviewEntryID)
	}
	if len(result.ValidationIssues) > 0 {
		fmt.Println("\nIssues:")
		for _, issue := range result.ValidationIssues {
			fmt.Printf("  - %s\n", issue)
		}
	}
	if len(result.Errors) > 0 {
		fmt.Println("\nErrors:")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
}
