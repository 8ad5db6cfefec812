// Package entities contains core domain data structures.
package entities

import (
	"strings"
	"time"
)

// NodeKind identifies the kind of a graph node.
type NodeKind string

// Node kinds. Characters, plot nodes, and world rules carry their own
// structure; the remaining kinds are generic named nodes.
const (
	KindCharacter  NodeKind = "character"
	KindPlotNode   NodeKind = "plot_node"
	KindWorldRule  NodeKind = "world_rule"
	KindLocation   NodeKind = "location"
	KindItem       NodeKind = "item"
	KindConflict   NodeKind = "conflict"
	KindTheme      NodeKind = "theme"
	KindMotivation NodeKind = "motivation"
)

// CharacterStatus is the life status of a character.
type CharacterStatus string

const (
	StatusAlive    CharacterStatus = "alive"
	StatusDeceased CharacterStatus = "deceased"
	StatusMissing  CharacterStatus = "missing"
	StatusUnknown  CharacterStatus = "unknown"
)

// Character is a named person (or being) in a story.
type Character struct {
	ID          string          `json:"id"`
	StoryID     string          `json:"story_id"`
	Name        string          `json:"name"`
	Status      CharacterStatus `json:"status"`
	Location    string          `json:"location,omitempty"`
	Traits      []string        `json:"traits,omitempty"`
	Backstory   string          `json:"backstory,omitempty"`
	Motivations []string        `json:"motivations,omitempty"`
	Strengths   []string        `json:"strengths,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// GenericNode is a named node without dedicated structure: locations,
// items, conflicts, themes, and motivations.
type GenericNode struct {
	ID          string    `json:"id"`
	StoryID     string    `json:"story_id"`
	Kind        NodeKind  `json:"kind"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NormalizeName reduces a name to its matching key: all whitespace removed,
// lowercased. "Lin  Xiao" and "lin xiao" normalize to the same key.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}

// ValidStatus reports whether s is a recognized character status.
func ValidStatus(s CharacterStatus) bool {
	switch s {
	case StatusAlive, StatusDeceased, StatusMissing, StatusUnknown:
		return true
	}
	return false
}
