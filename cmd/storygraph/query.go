package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/storygraph/internal/domain/entities"
)

func newQueryCmd() *cobra.Command {
	var (
		kind  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Semantically search the story's indexed entities",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				query := strings.Join(args, " ")

				records, err := d.QueryHandler.Handle(cmd.Context(), globalStory, query, entities.NodeKind(kind), limit)
				if err != nil {
					return err
				}

				if len(records) == 0 {
					fmt.Println("No matches.")
					return nil
				}

				for i, rec := range records {
					fmt.Printf("%d. [%.3f] %-12s %s\n", i+1, rec.Score, rec.Kind, rec.Name)
					if rec.Description != "" {
						fmt.Printf("   %s\n", rec.Description)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Restrict to one node kind")
	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Maximum results")

	return cmd
}
