package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/storygraph/internal/domain/entities"
)

func newReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Manage the extraction review queue",
	}

	cmd.AddCommand(
		newReviewListCmd(),
		newReviewShowCmd(),
		newReviewApproveCmd(),
		newReviewRejectCmd(),
	)

	return cmd
}

func newReviewListCmd() *cobra.Command {
	var (
		status string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List review queue entries for the story",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				entries, err := d.ReviewHandler.List(cmd.Context(), globalStory, entities.ReviewStatus(status), limit, offset)
				if err != nil {
					return err
				}

				if len(entries) == 0 {
					fmt.Println("No review entries.")
					return nil
				}

				fmt.Printf("%-36s %-10s %-8s %s\n", "ID", "STATUS", "ITEMS", "CREATED")
				for _, e := range entries {
					fmt.Printf("%-36s %-10s %-8d %s\n", e.ID, e.Status, e.Payload.Count(), e.CreatedAt.Format("2006-01-02 15:04"))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "pending", "Filter by status (pending, approved, rejected, empty for all)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Entries to skip")

	return cmd
}

func newReviewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <review-id>",
		Short: "Show a review entry's full payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				entry, err := d.ReviewHandler.Show(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				data, err := json.MarshalIndent(entry, "", "  ")
				if err != nil {
					return fmt.Errorf("rendering review entry: %w", err)
				}
				fmt.Println(string(data))
				return nil
			})
		},
	}
}

func newReviewApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <review-id>",
		Short: "Approve a pending entry and commit its candidates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				result, err := d.ReviewHandler.Approve(cmd.Context(), globalStory, args[0])
				if err != nil {
					return err
				}

				fmt.Printf("Approved. Nodes: %d, plot nodes: %d, relationships: %d\n",
					result.NodesCreated, result.PlotNodesCreated, result.RelationshipsCreated)
				if result.PendingReview > 0 {
					fmt.Printf("%d item(s) could not be committed and were re-queued as %s\n",
						result.PendingReview, result.ReviewEntryID)
				}
				for _, e := range result.Errors {
					fmt.Printf("  - %s\n", e)
				}
				return nil
			})
		},
	}
}

func newReviewRejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject <review-id>",
		Short: "Reject a pending entry without committing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				if err := d.ReviewHandler.Reject(cmd.Context(), globalStory, args[0]); err != nil {
					return err
				}
				fmt.Println("Rejected.")
				return nil
			})
		},
	}
}
