package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/storygraph/internal/application/handlers"
	"github.com/ersonp/storygraph/internal/domain/entities"
)

func newEntitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entities",
		Short: "List and manage committed graph nodes",
	}

	cmd.AddCommand(
		newEntitiesListCmd(),
		newEntitiesDeleteCmd(),
	)

	return cmd
}

func newEntitiesListCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the story's nodes, optionally filtered by kind",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				nodes, err := d.EntityHandler.List(cmd.Context(), globalStory, entities.NodeKind(kind))
				if err != nil {
					return err
				}
				printStoryNodes(nodes)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Node kind (character, plot_node, world_rule, location, item, conflict, theme, motivation)")

	return cmd
}

func printStoryNodes(nodes *handlers.StoryNodes) {
	total := len(nodes.Characters) + len(nodes.PlotNodes) + len(nodes.WorldRules) + len(nodes.Nodes)
	if total == 0 {
		fmt.Println("No nodes found.")
		return
	}

	if len(nodes.Characters) > 0 {
		fmt.Println("Characters:")
		for _, c := range nodes.Characters {
			fmt.Printf("  %-20s %-10s %s\n", c.Name, c.Status, c.ID)
		}
	}
	if len(nodes.PlotNodes) > 0 {
		fmt.Println("Plot nodes:")
		for _, p := range nodes.PlotNodes {
			fmt.Printf("  %4d. %-40s imp=%-3d %s\n", p.SequenceNumber, p.Title, p.Importance, p.ID)
		}
	}
	if len(nodes.WorldRules) > 0 {
		fmt.Println("World rules:")
		for _, r := range nodes.WorldRules {
			fmt.Printf("  %-30s %-10s %s\n", r.Name, r.Severity, r.ID)
		}
	}
	if len(nodes.Nodes) > 0 {
		fmt.Println("Other nodes:")
		for _, n := range nodes.Nodes {
			fmt.Printf("  %-12s %-25s %s\n", n.Kind, n.Name, n.ID)
		}
	}
}

func newEntitiesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <node-id>",
		Short: "Delete a node and every relation touching it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				if err := d.EntityHandler.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Printf("Deleted %s\n", args[0])
				return nil
			})
		},
	}
}
