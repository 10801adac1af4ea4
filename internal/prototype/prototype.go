// Package prototype models weighted composite scores over mood/sexual axes,
// gated by activation preconditions. A prototype's intensity is
// clamp(Σ weight·normalizedAxis, 0, Σ|weight|) / Σ|weight|, so it always
// lands in [0,1]; gates decide whether the prototype is active at all,
// independent of intensity.
package prototype

import (
	"math"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/axis"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/gate"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/logging"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/snapshot"
)

// #region type

// Type distinguishes emotion prototypes from sexual-state prototypes.
type Type string

const (
	TypeEmotion Type = "emotion"
	TypeSexual  Type = "sexual"
)

// Prototype is an immutable weighted composite score definition.
// Gates are parsed once at construction; unparsed gates never block
// activation.
type Prototype struct {
	ID      string
	Type    Type
	Weights map[string]float64
	Gates   []string

	constraints []gate.Constraint
	parseInfo   gate.ParseInfo
	totalWeight float64 // Σ|weight|
}

// New parses the gate list and caches the weight magnitude sum.
func New(id string, typ Type, weights map[string]float64, gates []string, log logging.Logger) *Prototype {
	p := &Prototype{ID: id, Type: typ, Weights: weights, Gates: gates}
	p.constraints, p.parseInfo = gate.ParseAll(gates, log)
	for _, w := range weights {
		p.totalWeight += math.Abs(w)
	}
	return p
}

// GateConstraints returns the successfully parsed gate constraints.
func (p *Prototype) GateConstraints() []gate.Constraint { return p.constraints }

// GateParseInfo reports how much of the gate list parsed.
func (p *Prototype) GateParseInfo() gate.ParseInfo { return p.parseInfo }

// TotalWeight returns Σ|weight|.
func (p *Prototype) TotalWeight() float64 { return p.totalWeight }

// #endregion type

// #region gates

// PassesGates reports whether every parsed gate holds for the snapshot.
// Unparsed gates and missing axis values are trivially satisfiable.
func (p *Prototype) PassesGates(s snapshot.Snapshot) bool {
	for _, c := range p.constraints {
		if !c.EvalSnapshot(s) {
			return false
		}
	}
	return true
}

// #endregion gates

// #region intensity

// Intensity computes the normalized composite score in [0,1].
//
// The full canonical axis set is enumerated exhaustively; an axis the
// prototype weights but the snapshot lacks contributes 0 to the numerator
// while its |weight| still counts in the denominator. Skipping it instead
// would silently corrupt both.
func (p *Prototype) Intensity(s snapshot.Snapshot, cat *axis.Catalog) float64 {
	if p.totalWeight == 0 {
		return 0
	}

	var raw float64
	for _, name := range cat.All() {
		w, ok := p.Weights[name]
		if !ok || w == 0 {
			continue
		}
		v, ok := s.Axis(name)
		if !ok {
			continue // missing axis contributes 0
		}
		raw += w * cat.Normalize(name, v)
	}

	if raw < 0 {
		raw = 0
	}
	if raw > p.totalWeight {
		raw = p.totalWeight
	}
	return raw / p.totalWeight
}

// #endregion intensity
