package services

import (
	"sort"
	"sync"

	"github.com/ersonp/storygraph/internal/domain/entities"
)

// AliasTable maps entity kind -> normalized alias -> canonical name.
// Alias keys must already be lowercased with whitespace stripped
// (config.AliasesConfig.Table produces this shape).
type AliasTable map[string]map[string]string

// registryKey dedupes candidates by (kind, normalized name).
type registryKey struct {
	kind entities.NodeKind
	name string
}

// Registry accumulates candidates across chunks into a deduplicated,
// alias-normalized map. Named entities are merged best-of; plot nodes and
// relations are accumulated as lists (sequence collisions are tolerated
// here and resolved downstream). Merge writes are serialized: the merge
// rule is not commutative-safe across unsynchronized writers.
type Registry struct {
	mu        sync.Mutex
	aliases   AliasTable
	entities  map[registryKey]entities.CandidateEntity
	plotNodes []entities.CandidatePlotNode
	relations []entities.CandidateRelation
}

// NewRegistry creates a registry with the given alias table (may be nil).
func NewRegistry(aliases AliasTable) *Registry {
	return &Registry{
		aliases:  aliases,
		entities: make(map[registryKey]entities.CandidateEntity),
	}
}

// Canonicalize applies the alias table to a name: if the normalized name is
// a known alias for the kind, the canonical name is returned, otherwise the
// input (trimmed) is returned unchanged.
func (r *Registry) Canonicalize(kind entities.NodeKind, name string) string {
	key := entities.NormalizeName(name)
	if m, ok := r.aliases[string(kind)]; ok {
		if canonical, ok := m[key]; ok {
			return canonical
		}
	}
	return name
}

// MergeSet folds one chunk's candidates into the registry.
func (r *Registry) MergeSet(set entities.CandidateSet) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range set.Entities {
		r.mergeEntityLocked(c)
	}
	r.plotNodes = append(r.plotNodes, set.PlotNodes...)
	for _, rel := range set.Relations {
		rel.Source = r.canonicalizeAny(rel.Source)
		rel.Target = r.canonicalizeAny(rel.Target)
		r.relations = append(r.relations, rel)
	}
}

// canonicalizeAny applies the alias table across all kinds. Relation
// endpoints are untyped names, so the first matching alias wins.
func (r *Registry) canonicalizeAny(name string) string {
	key := entities.NormalizeName(name)
	for _, m := range r.aliases {
		if canonical, ok := m[key]; ok {
			return canonical
		}
	}
	return name
}

// mergeEntityLocked applies the best-of rule: the incoming candidate wins
// if its confidence is strictly higher, or on a tie if its description is
// longer. Merging the same candidate twice is a no-op.
func (r *Registry) mergeEntityLocked(c entities.CandidateEntity) {
	c.Name = r.Canonicalize(c.Kind, c.Name)
	key := registryKey{kind: c.Kind, name: entities.NormalizeName(c.Name)}
	if key.name == "" {
		return
	}

	existing, ok := r.entities[key]
	if !ok {
		r.entities[key] = c
		return
	}

	if c.Confidence > existing.Confidence ||
		(c.Confidence == existing.Confidence && len(c.Description) > len(existing.Description)) {
		r.entities[key] = c
	}
}

// Contains reports whether a name is registered under the given kind.
func (r *Registry) Contains(kind entities.NodeKind, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := registryKey{kind: kind, name: entities.NormalizeName(r.Canonicalize(kind, name))}
	_, ok := r.entities[key]
	return ok
}

// Snapshot returns the merged candidate set in deterministic order.
func (r *Registry) Snapshot() entities.CandidateSet {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := entities.CandidateSet{
		PlotNodes: append([]entities.CandidatePlotNode(nil), r.plotNodes...),
		Relations: append([]entities.CandidateRelation(nil), r.relations...),
	}

	set.Entities = make([]entities.CandidateEntity, 0, len(r.entities))
	for _, c := range r.entities {
		set.Entities = append(set.Entities, c)
	}
	sort.Slice(set.Entities, func(i, j int) bool {
		if set.Entities[i].Kind != set.Entities[j].Kind {
			return set.Entities[i].Kind < set.Entities[j].Kind
		}
		return set.Entities[i].Name < set.Entities[j].Name
	})

	return set
}
