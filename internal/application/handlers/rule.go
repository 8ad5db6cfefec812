package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ersonp/storygraph/internal/domain/entities"
	"github.com/ersonp/storygraph/internal/domain/ports"
	"github.com/ersonp/storygraph/internal/domain/services"
)

// RuleHandler handles world rule management. Rules are authored by hand;
// the extraction pipeline never creates them.
type RuleHandler struct {
	graph ports.GraphStore
}

// NewRuleHandler creates a new rule handler.
func NewRuleHandler(graph ports.GraphStore) *RuleHandler {
	return &RuleHandler{graph: graph}
}

// RuleInput describes a world rule to create or update.
type RuleInput struct {
	StoryID      string
	Name         string
	Description  string
	RuleType     string
	Severity     string
	Consequences []string
	Exceptions   []string
}

// Create adds or updates a world rule. Rule IDs are stable by name, so
// re-creating a rule updates it in place.
func (h *RuleHandler) Create(ctx context.Context, in RuleInput) (*entities.WorldRule, error) {
	if strings.TrimSpace(in.StoryID) == "" {
		return nil, errors.New("story ID is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.New("rule name is required")
	}

	severity := entities.RuleSeverity(in.Severity)
	switch severity {
	case "":
		severity = entities.RuleModerate
	case entities.RuleStrict, entities.RuleModerate, entities.RuleFlexible:
	default:
		return nil, fmt.Errorf("unknown rule severity: %s", in.Severity)
	}

	rule := &entities.WorldRule{
		ID:           services.StableID(in.StoryID, entities.KindWorldRule, in.Name),
		StoryID:      in.StoryID,
		Name:         in.Name,
		Description:  in.Description,
		RuleType:     in.RuleType,
		Severity:     severity,
		Consequences: in.Consequences,
		Exceptions:   in.Exceptions,
		CreatedAt:    time.Now(),
	}

	if err := h.graph.UpsertWorldRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("saving world rule: %w", err)
	}
	return rule, nil
}

// List returns a story's world rules.
func (h *RuleHandler) List(ctx context.Context, storyID string) ([]entities.WorldRule, error) {
	if strings.TrimSpace(storyID) == "" {
		return nil, errors.New("story ID is required")
	}
	return h.graph.WorldRulesByStory(ctx, storyID)
}

// Delete removes a world rule and every relation touching it.
func (h *RuleHandler) Delete(ctx context.Context, ruleID string) error {
	if strings.TrimSpace(ruleID) == "" {
		return errors.New("rule ID is required")
	}
	exists, err := h.graph.NodeExists(ctx, ruleID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("rule not found: %s", ruleID)
	}
	return h.graph.DeleteNode(ctx, ruleID)
}
