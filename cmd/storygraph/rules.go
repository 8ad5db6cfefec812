package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/storygraph/internal/application/handlers"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage world rules",
		Long:  "World rules are the laws of the fictional world (magic systems, social customs, physical constraints). They are authored by hand and consulted by the consistency checker.",
	}

	cmd.AddCommand(
		newRulesListCmd(),
		newRulesCreateCmd(),
		newRulesDeleteCmd(),
	)

	return cmd
}

func newRulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the story's world rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				rules, err := d.RuleHandler.List(cmd.Context(), globalStory)
				if err != nil {
					return err
				}

				if len(rules) == 0 {
					fmt.Println("No world rules defined.")
					return nil
				}

				fmt.Printf("%-30s %-10s %-12s %s\n", "NAME", "SEVERITY", "TYPE", "ID")
				for _, r := range rules {
					fmt.Printf("%-30s %-10s %-12s %s\n", r.Name, r.Severity, r.RuleType, r.ID)
				}
				return nil
			})
		},
	}
}

func newRulesCreateCmd() *cobra.Command {
	var (
		description  string
		ruleType     string
		severity     string
		consequences []string
		exceptions   []string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create or update a world rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				rule, err := d.RuleHandler.Create(cmd.Context(), handlers.RuleInput{
					StoryID:      globalStory,
					Name:         args[0],
					Description:  description,
					RuleType:     ruleType,
					Severity:     severity,
					Consequences: consequences,
					Exceptions:   exceptions,
				})
				if err != nil {
					return err
				}
				fmt.Printf("Saved rule %q (%s)\n", rule.Name, rule.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "What the rule states")
	cmd.Flags().StringVar(&ruleType, "type", "", "Rule category (magic_system, social, physical, ...)")
	cmd.Flags().StringVar(&severity, "severity", "moderate", "How strictly the rule binds (strict, moderate, flexible)")
	cmd.Flags().StringArrayVar(&consequences, "consequence", nil, "Consequence of breaking the rule (repeatable)")
	cmd.Flags().StringArrayVar(&exceptions, "exception", nil, "Known exception to the rule (repeatable)")

	return cmd
}

func newRulesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <rule-id>",
		Short: "Delete a world rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				if err := d.RuleHandler.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Printf("Deleted %s\n", args[0])
				return nil
			})
		},
	}
}
