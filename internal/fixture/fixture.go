// Package fixture loads and saves diagnostic fixtures: an expression under
// analysis, the prototype tables it references, and a sampled context pool,
// all in one JSON document so a diagnosis can be reproduced exactly.
package fixture

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/logging"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/logic"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/prototype"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/snapshot"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a diagnostic fixture.
type Fixture struct {
	Description     string                        `json:"description"`
	Expression      FixtureExpression             `json:"expression"`
	PrototypeTables map[string][]FixturePrototype `json:"prototype_tables"`
	Contexts        []FixtureContext              `json:"contexts"`
}

// FixtureExpression mirrors logic.Expression with JSON tags.
type FixtureExpression struct {
	ID            string `json:"id"`
	Prerequisites []any  `json:"prerequisites"`
}

// FixturePrototype mirrors prototype.Prototype's authored fields.
type FixturePrototype struct {
	ID      string             `json:"id"`
	Type    string             `json:"type"`
	Weights map[string]float64 `json:"weights"`
	Gates   []string           `json:"gates"`
}

// FixtureFrame mirrors snapshot.Frame with JSON tags.
type FixtureFrame struct {
	MoodAxes     map[string]float64 `json:"mood_axes"`
	SexualAxes   map[string]float64 `json:"sexual_axes"`
	AffectTraits map[string]float64 `json:"affect_traits"`
	Emotions     map[string]float64 `json:"emotions"`
	SexualStates map[string]float64 `json:"sexual_states"`
}

// FixtureContext is one sampled snapshot, current plus optional previous.
type FixtureContext struct {
	Frame    FixtureFrame  `json:"frame"`
	Previous *FixtureFrame `json:"previous,omitempty"`
}

// #endregion fixture-types

// #region load-save

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// SaveFixture writes the fixture as indented JSON.
func SaveFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion load-save

// #region converters

// ToExpression converts the fixture expression to the domain type. Each
// prerequisite entry is either a bare logic tree or a {"logic": ...} wrapper.
func (fe *FixtureExpression) ToExpression() logic.Expression {
	prereqs := make([]logic.Prerequisite, 0, len(fe.Prerequisites))
	for _, raw := range fe.Prerequisites {
		if m, ok := raw.(map[string]any); ok {
			if inner, has := m["logic"]; has {
				prereqs = append(prereqs, logic.Prerequisite{Logic: inner})
				continue
			}
		}
		prereqs = append(prereqs, logic.Prerequisite{Logic: raw})
	}
	return logic.Expression{ID: fe.ID, Prerequisites: prereqs}
}

// ToRegistry builds a prototype registry from the fixture tables. Table keys
// are registry keys (e.g. "core:emotion_prototypes").
func (f *Fixture) ToRegistry(log logging.Logger) *prototype.Registry {
	reg := prototype.NewRegistry()
	for key, table := range f.PrototypeTables {
		for _, fp := range table {
			reg.Register(key, prototype.New(fp.ID, prototype.Type(fp.Type), fp.Weights, fp.Gates, log))
		}
	}
	return reg
}

// ToSnapshots converts the fixture's context pool to domain snapshots.
func (f *Fixture) ToSnapshots() []snapshot.Snapshot {
	out := make([]snapshot.Snapshot, 0, len(f.Contexts))
	for _, fc := range f.Contexts {
		s := snapshot.Snapshot{Frame: fc.Frame.toFrame()}
		if fc.Previous != nil {
			prev := fc.Previous.toFrame()
			s.Previous = &prev
		}
		out = append(out, s)
	}
	return out
}

func (ff *FixtureFrame) toFrame() snapshot.Frame {
	return snapshot.Frame{
		MoodAxes:     ff.MoodAxes,
		SexualAxes:   ff.SexualAxes,
		AffectTraits: ff.AffectTraits,
		Emotions:     ff.Emotions,
		SexualStates: ff.SexualStates,
	}
}

// FromSnapshots converts domain snapshots into fixture contexts.
func FromSnapshots(snaps []snapshot.Snapshot) []FixtureContext {
	out := make([]FixtureContext, 0, len(snaps))
	for _, s := range snaps {
		fc := FixtureContext{Frame: fromFrame(s.Frame)}
		if s.Previous != nil {
			prev := fromFrame(*s.Previous)
			fc.Previous = &prev
		}
		out = append(out, fc)
	}
	return out
}

func fromFrame(f snapshot.Frame) FixtureFrame {
	return FixtureFrame{
		MoodAxes:     f.MoodAxes,
		SexualAxes:   f.SexualAxes,
		AffectTraits: f.AffectTraits,
		Emotions:     f.Emotions,
		SexualStates: f.SexualStates,
	}
}

// #endregion converters
