package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/ersonp/storygraph/internal/domain/entities"
	"github.com/ersonp/storygraph/internal/domain/services"
)

// ConsistencyHandler handles consistency check runs.
type ConsistencyHandler struct {
	checker *services.ConsistencyService
}

// NewConsistencyHandler creates a new consistency handler.
func NewConsistencyHandler(checker *services.ConsistencyService) *ConsistencyHandler {
	return &ConsistencyHandler{checker: checker}
}

// Handle runs the named rules (comma-separated, empty = all) and returns
// the scored report.
func (h *ConsistencyHandler) Handle(ctx context.Context, storyID, ruleNames string) (*entities.ConsistencyReport, error) {
	rules, err := parseRules(ruleNames)
	if err != nil {
		return nil, err
	}
	return h.checker.Check(ctx, storyID, rules)
}

// parseRules turns a comma-separated rule list into check rules.
func parseRules(names string) ([]services.CheckRule, error) {
	names = strings.TrimSpace(names)
	if names == "" {
		return nil, nil
	}

	known := make(map[services.CheckRule]bool, len(services.AllCheckRules))
	for _, r := range services.AllCheckRules {
		known[r] = true
	}

	var rules []services.CheckRule
	for _, name := range strings.Split(names, ",") {
		rule := services.CheckRule(strings.TrimSpace(name))
		if rule == "" {
			continue
		}
		if !known[rule] {
			return nil, fmt.Errorf("unknown consistency rule: %s", rule)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
