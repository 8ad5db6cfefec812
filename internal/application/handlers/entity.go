package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ersonp/storygraph/internal/domain/entities"
	"github.com/ersonp/storygraph/internal/domain/ports"
)

// genericKinds are the kinds listed from the generic node table.
var genericKinds = []entities.NodeKind{
	entities.KindLocation,
	entities.KindItem,
	entities.KindConflict,
	entities.KindTheme,
	entities.KindMotivation,
}

// EntityHandler handles graph node listing and removal.
type EntityHandler struct {
	graph ports.GraphStore
}

// NewEntityHandler creates a new entity handler.
func NewEntityHandler(graph ports.GraphStore) *EntityHandler {
	return &EntityHandler{graph: graph}
}

// StoryNodes is the full node inventory of one story.
type StoryNodes struct {
	Characters []entities.Character   `json:"characters,omitempty"`
	PlotNodes  []entities.PlotNode    `json:"plot_nodes,omitempty"`
	WorldRules []entities.WorldRule   `json:"world_rules,omitempty"`
	Nodes      []entities.GenericNode `json:"nodes,omitempty"`
}

// List returns nodes of one kind, or the whole inventory when kind is empty.
func (h *EntityHandler) List(ctx context.Context, storyID string, kind entities.NodeKind) (*StoryNodes, error) {
	if strings.TrimSpace(storyID) == "" {
		return nil, errors.New("story ID is required")
	}

	out := &StoryNodes{}
	var err error

	switch kind {
	case "":
		if out.Characters, err = h.graph.CharactersByStory(ctx, storyID); err != nil {
			return nil, err
		}
		if out.PlotNodes, err = h.graph.PlotNodesByStory(ctx, storyID); err != nil {
			return nil, err
		}
		if out.WorldRules, err = h.graph.WorldRulesByStory(ctx, storyID); err != nil {
			return nil, err
		}
		for _, k := range genericKinds {
			nodes, err := h.graph.NodesByStory(ctx, storyID, k)
			if err != nil {
				return nil, err
			}
			out.Nodes = append(out.Nodes, nodes...)
		}
	case entities.KindCharacter:
		if out.Characters, err = h.graph.CharactersByStory(ctx, storyID); err != nil {
			return nil, err
		}
	case entities.KindPlotNode:
		if out.PlotNodes, err = h.graph.PlotNodesByStory(ctx, storyID); err != nil {
			return nil, err
		}
	case entities.KindWorldRule:
		if out.WorldRules, err = h.graph.WorldRulesByStory(ctx, storyID); err != nil {
			return nil, err
		}
	case entities.KindLocation, entities.KindItem, entities.KindConflict, entities.KindTheme, entities.KindMotivation:
		if out.Nodes, err = h.graph.NodesByStory(ctx, storyID, kind); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown node kind: %s", kind)
	}

	return out, nil
}

// Delete removes a node and every relation touching it.
func (h *EntityHandler) Delete(ctx context.Context, nodeID string) error {
	if strings.TrimSpace(nodeID) == "" {
		return errors.New("node ID is required")
	}
	exists, err := h.graph.NodeExists(ctx, nodeID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("node not found: %s", nodeID)
	}
	return h.graph.DeleteNode(ctx, nodeID)
}
