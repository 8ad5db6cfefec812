package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/storygraph/internal/application/handlers"
)

func newRelationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relations",
		Short: "List and create graph relations",
	}

	cmd.AddCommand(
		newRelationsListCmd(),
		newRelationsCreateCmd(),
	)

	return cmd
}

func newRelationsListCmd() *cobra.Command {
	var typeFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the story's relations, optionally filtered by type",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				relations, err := d.RelationHandler.List(cmd.Context(), globalStory, typeFilter)
				if err != nil {
					return err
				}

				if len(relations) == 0 {
					fmt.Println("No relations found.")
					return nil
				}

				fmt.Printf("%-18s %-18s %-14s %-5s %s\n", "SOURCE", "TARGET", "TYPE", "TRUST", "CONFIDENCE")
				for _, rel := range relations {
					fmt.Printf("%-18s %-18s %-14s %-5d %.2f\n", rel.SourceID, rel.TargetID, rel.Type, rel.TrustLevel, rel.Confidence)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&typeFilter, "type", "t", "", "Relation type filter")

	return cmd
}

func newRelationsCreateCmd() *cobra.Command {
	var (
		description string
		trustLevel  int
	)

	cmd := &cobra.Command{
		Use:   "create <source-id> <type> <target-id>",
		Short: "Create a relation between two existing nodes",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				rel, err := d.RelationHandler.Create(cmd.Context(), handlers.CreateInput{
					StoryID:     globalStory,
					SourceID:    args[0],
					Type:        args[1],
					TargetID:    args[2],
					Description: description,
					TrustLevel:  trustLevel,
				})
				if err != nil {
					return err
				}
				fmt.Printf("Created relation %s: %s -[%s]-> %s\n", rel.ID, rel.SourceID, rel.Type, rel.TargetID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Relation description")
	cmd.Flags().IntVar(&trustLevel, "trust", 0, "Trust level 0-100 (social bonds)")

	return cmd
}
