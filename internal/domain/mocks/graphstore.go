package mocks

import (
	"context"
	"fmt"

	"github.com/ersonp/storygraph/internal/domain/entities"
)

// GraphStore is an in-memory mock implementation of ports.GraphStore. It
// enforces the same invariants as the real store: unique node IDs, unique
// (story, sequence) for plot nodes, and existing relation endpoints.
type GraphStore struct {
	Characters map[string]*entities.Character
	PlotNodes  map[string]*entities.PlotNode
	WorldRules map[string]*entities.WorldRule
	Nodes      map[string]*entities.GenericNode
	Relations  map[string]*entities.Relation

	Err error

	// Per-method errors (take precedence over Err when set)
	CharactersErr error
	PlotNodesErr  error
	WorldRulesErr error
	RelationsErr  error
}

// NewGraphStore creates an empty in-memory store.
func NewGraphStore() *GraphStore {
	return &GraphStore{
		Characters: make(map[string]*entities.Character),
		PlotNodes:  make(map[string]*entities.PlotNode),
		WorldRules: make(map[string]*entities.WorldRule),
		Nodes:      make(map[string]*entities.GenericNode),
		Relations:  make(map[string]*entities.Relation),
	}
}

// EnsureSchema is a no-op for the in-memory store.
func (m *GraphStore) EnsureSchema(ctx context.Context) error { return m.Err }

// Close is a no-op for the in-memory store.
func (m *GraphStore) Close() error { return nil }

// UpsertCharacter stores a character keyed by ID.
func (m *GraphStore) UpsertCharacter(ctx context.Context, c *entities.Character) error {
	if m.Err != nil {
		return m.Err
	}
	m.Characters[c.ID] = c
	return nil
}

// UpsertPlotNode stores a plot node, rejecting duplicate sequence numbers
// held by a different node in the same story.
func (m *GraphStore) UpsertPlotNode(ctx context.Context, p *entities.PlotNode) error {
	if m.Err != nil {
		return m.Err
	}
	for _, other := range m.PlotNodes {
		if other.ID != p.ID && other.StoryID == p.StoryID && other.SequenceNumber == p.SequenceNumber {
			return fmt.Errorf("sequence number %d already used in story %s", p.SequenceNumber, p.StoryID)
		}
	}
	m.PlotNodes[p.ID] = p
	return nil
}

// UpsertWorldRule stores a world rule keyed by ID.
func (m *GraphStore) UpsertWorldRule(ctx context.Context, r *entities.WorldRule) error {
	if m.Err != nil {
		return m.Err
	}
	m.WorldRules[r.ID] = r
	return nil
}

// UpsertNode stores a generic node keyed by ID.
func (m *GraphStore) UpsertNode(ctx context.Context, n *entities.GenericNode) error {
	if m.Err != nil {
		return m.Err
	}
	m.Nodes[n.ID] = n
	return nil
}

// CreateRelation stores a relation, rejecting missing endpoints.
func (m *GraphStore) CreateRelation(ctx context.Context, rel *entities.Relation) error {
	if m.Err != nil {
		return m.Err
	}
	for _, endpoint := range []string{rel.SourceID, rel.TargetID} {
		exists, _ := m.NodeExists(ctx, endpoint)
		if !exists {
			return fmt.Errorf("relation endpoint does not exist: %s", endpoint)
		}
	}
	m.Relations[rel.ID] = rel
	return nil
}

// NodeExists reports whether any node of any kind has the given ID.
func (m *GraphStore) NodeExists(ctx context.Context, id string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	if _, ok := m.Characters[id]; ok {
		return true, nil
	}
	if _, ok := m.PlotNodes[id]; ok {
		return true, nil
	}
	if _, ok := m.WorldRules[id]; ok {
		return true, nil
	}
	if _, ok := m.Nodes[id]; ok {
		return true, nil
	}
	return false, nil
}

// DeleteNode removes a node and every relation touching it.
func (m *GraphStore) DeleteNode(ctx context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	delete(m.Characters, id)
	delete(m.PlotNodes, id)
	delete(m.WorldRules, id)
	delete(m.Nodes, id)
	for rid, rel := range m.Relations {
		if rel.SourceID == id || rel.TargetID == id {
			delete(m.Relations, rid)
		}
	}
	return nil
}

// CharactersByStory returns the story's characters.
func (m *GraphStore) CharactersByStory(ctx context.Context, storyID string) ([]entities.Character, error) {
	if m.CharactersErr != nil {
		return nil, m.CharactersErr
	}
	if m.Err != nil {
		return nil, m.Err
	}
	var out []entities.Character
	for _, c := range m.Characters {
		if c.StoryID == storyID {
			out = append(out, *c)
		}
	}
	return out, nil
}

// PlotNodesByStory returns the story's plot nodes ordered by sequence.
func (m *GraphStore) PlotNodesByStory(ctx context.Context, storyID string) ([]entities.PlotNode, error) {
	if m.PlotNodesErr != nil {
		return nil, m.PlotNodesErr
	}
	if m.Err != nil {
		return nil, m.Err
	}
	var out []entities.PlotNode
	for _, p := range m.PlotNodes {
		if p.StoryID == storyID {
			out = append(out, *p)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].SequenceNumber < out[i].SequenceNumber {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

// WorldRulesByStory returns the story's world rules.
func (m *GraphStore) WorldRulesByStory(ctx context.Context, storyID string) ([]entities.WorldRule, error) {
	if m.WorldRulesErr != nil {
		return nil, m.WorldRulesErr
	}
	if m.Err != nil {
		return nil, m.Err
	}
	var out []entities.WorldRule
	for _, r := range m.WorldRules {
		if r.StoryID == storyID {
			out = append(out, *r)
		}
	}
	return out, nil
}

// NodesByStory returns the story's generic nodes of one kind.
func (m *GraphStore) NodesByStory(ctx context.Context, storyID string, kind entities.NodeKind) ([]entities.GenericNode, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []entities.GenericNode
	for _, n := range m.Nodes {
		if n.StoryID == storyID && n.Kind == kind {
			out = append(out, *n)
		}
	}
	return out, nil
}

// RelationsByStory returns the story's relations.
func (m *GraphStore) RelationsByStory(ctx context.Context, storyID string) ([]entities.Relation, error) {
	if m.RelationsErr != nil {
		return nil, m.RelationsErr
	}
	if m.Err != nil {
		return nil, m.Err
	}
	var out []entities.Relation
	for _, r := range m.Relations {
		if r.StoryID == storyID {
			out = append(out, *r)
		}
	}
	return out, nil
}

// RelationsByType returns the story's relations of one type.
func (m *GraphStore) RelationsByType(ctx context.Context, storyID string, relType entities.RelationType) ([]entities.Relation, error) {
	if m.RelationsErr != nil {
		return nil, m.RelationsErr
	}
	if m.Err != nil {
		return nil, m.Err
	}
	var out []entities.Relation
	for _, r := range m.Relations {
		if r.StoryID == storyID && r.Type == relType {
			out = append(out, *r)
		}
	}
	return out, nil
}
