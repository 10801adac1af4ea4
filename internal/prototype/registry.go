package prototype

import (
	"fmt"
	"sort"
)

// #region registry

// Lookup keys used by game data. Kept here so callers and fixtures agree.
const (
	KeyEmotionPrototypes = "core:emotion_prototypes"
	KeySexualPrototypes  = "core:sexual_prototypes"
)

// Registry resolves prototype tables by named lookup key. It replaces the
// upstream global data registry with an explicit, per-call collaborator:
// analyzers receive a *Registry, never reach into process-wide state.
type Registry struct {
	tables map[string]map[string]*Prototype
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]map[string]*Prototype)}
}

// Register adds prototypes under a lookup key, replacing same-ID entries.
func (r *Registry) Register(key string, protos ...*Prototype) {
	table, ok := r.tables[key]
	if !ok {
		table = make(map[string]*Prototype, len(protos))
		r.tables[key] = table
	}
	for _, p := range protos {
		table[p.ID] = p
	}
}

// Lookup resolves one prototype by key and ID.
func (r *Registry) Lookup(key, id string) (*Prototype, bool) {
	p, ok := r.tables[key][id]
	return p, ok
}

// Table returns all prototypes under a key, sorted by ID for deterministic
// report ordering.
func (r *Registry) Table(key string) []*Prototype {
	table := r.tables[key]
	out := make([]*Prototype, 0, len(table))
	for _, p := range table {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Resolve maps a prototype reference path like "emotions.joy" or
// "sexualStates.aroused" to the prototype it names.
func (r *Registry) Resolve(refPath string) (*Prototype, bool) {
	key, id, ok := splitRef(refPath)
	if !ok {
		return nil, false
	}
	return r.Lookup(key, id)
}

func splitRef(refPath string) (key, id string, ok bool) {
	const (
		emotionPrefix = "emotions."
		sexualPrefix  = "sexualStates."
	)
	if len(refPath) > len(emotionPrefix) && refPath[:len(emotionPrefix)] == emotionPrefix {
		return KeyEmotionPrototypes, refPath[len(emotionPrefix):], true
	}
	if len(refPath) > len(sexualPrefix) && refPath[:len(sexualPrefix)] == sexualPrefix {
		return KeySexualPrototypes, refPath[len(sexualPrefix):], true
	}
	return "", "", false
}

// RefError describes a prototype reference that failed to resolve.
type RefError struct {
	Ref string
}

func (e *RefError) Error() string {
	return fmt.Sprintf("prototype reference %q not found in registry", e.Ref)
}

// #endregion registry
