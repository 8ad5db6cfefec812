package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/storygraph/internal/domain/entities"
	"github.com/ersonp/storygraph/internal/domain/services"
)

func newCheckCmd() *cobra.Command {
	var rules string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run consistency checks over the story graph",
		Long:  "Audits the committed graph for narrative-logic violations (timeline conflicts, dead characters acting, unmotivated actions, rule violations) and prints a scored report.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				report, err := d.ConsistencyHandler.Handle(cmd.Context(), globalStory, rules)
				if err != nil {
					return err
				}
				printReport(report)
				return nil
			})
		},
	}

	ruleNames := make([]string, len(services.AllCheckRules))
	for i, r := range services.AllCheckRules {
		ruleNames[i] = string(r)
	}
	cmd.Flags().StringVar(&rules, "rules", "", "Comma-separated rules to run (default all: "+strings.Join(ruleNames, ",")+")")

	return cmd
}

func printReport(report *entities.ConsistencyReport) {
	status := "FAILED"
	if report.Passed {
		status = "PASSED"
	}
	fmt.Printf("Consistency score: %.1f/100 (%s)\n", report.OverallScore, status)

	if len(report.Issues) == 0 {
		fmt.Println("No issues found.")
		return
	}

	fmt.Printf("\n%d issue(s):\n", len(report.Issues))
	for _, issue := range report.Issues {
		fmt.Printf("\n[%s] %s (%s, confidence %.2f)\n", strings.ToUpper(string(issue.Severity)), issue.Title, issue.Category, issue.Confidence)
		fmt.Printf("  %s\n", issue.Description)
		if issue.SuggestedFix != "" {
			fmt.Printf("  fix: %s\n", issue.SuggestedFix)
		}
	}

	if len(report.CategoryCounts) > 0 {
		fmt.Println("\nBy category:")
		categories := make([]string, 0, len(report.CategoryCounts))
		for c := range report.CategoryCounts {
			categories = append(categories, string(c))
		}
		sort.Strings(categories)
		for _, c := range categories {
			fmt.Printf("  %-20s %d\n", c, report.CategoryCounts[entities.IssueCategory(c)])
		}
	}

	if len(report.Recommendations) > 0 {
		fmt.Println("\nRecommendations:")
		for _, rec := range report.Recommendations {
			fmt.Printf("  - %s\n", rec)
		}
	}
}
