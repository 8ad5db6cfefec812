// Package main provides the entry point for the storygraph CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version     = "0.1.0-dev"
	globalStory string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "storygraph",
		Short:   "A narrative knowledge graph with LLM extraction and consistency checking",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVarP(&globalStory, "story", "s", "", "Story to operate on (required)")

	rootCmd.AddCommand(
		newExtractCmd(),
		newCheckCmd(),
		newReviewCmd(),
		newEntitiesCmd(),
		newRelationsCmd(),
		newRulesCmd(),
		newQueryCmd(),
		newStoriesCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
