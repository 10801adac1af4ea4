// Package fit ranks prototypes by how well each could serve a branch's
// requirement: how often its gates pass in sampled play, how its intensity
// distributes over the gate-passing subset, and how its weights and gates sit
// against the branch's axis constraints.
package fit

import (
	"fmt"
	"math"
	"sort"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/axis"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/logging"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/prototype"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/reach"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/snapshot"
)

// #region config

// Config weights the composite fit score. The four weights sum to 1.
type Config struct {
	GatePassWeight  float64
	AboveWeight     float64
	ConflictWeight  float64
	ExclusionWeight float64
}

// DefaultConfig returns the standard composite weighting.
func DefaultConfig() Config {
	return Config{
		GatePassWeight:  0.30,
		AboveWeight:     0.35,
		ConflictWeight:  0.20,
		ExclusionWeight: 0.15,
	}
}

// #endregion config

// #region entry

// Distribution summarizes intensity over the gate-passing context subset.
// Pointer fields are nil when no context passed the gates.
type Distribution struct {
	P50                *float64
	P90                *float64
	P95                *float64
	Min                *float64
	Max                *float64
	AboveThresholdRate float64
}

// Entry is one prototype's ranked fit assessment.
type Entry struct {
	PrototypeID            string
	GatePassRate           float64
	Distribution           Distribution
	ConflictScore          float64 // fraction of weight mass pulling against the constraints, in [0,1]
	ConflictMagnitude      float64
	ConflictingAxes        []string
	ExclusionCompatibility float64
	CompositeScore         float64
}

// #endregion entry

// #region ranker

// Ranker scores prototypes against axis constraints over a context pool.
type Ranker struct {
	config Config
	cat    *axis.Catalog
	log    logging.Logger
}

// NewRanker fails fast when a collaborator is missing.
func NewRanker(config Config, cat *axis.Catalog, log logging.Logger) (*Ranker, error) {
	if cat == nil {
		return nil, fmt.Errorf("fit: axis catalog is required")
	}
	if log == nil {
		return nil, fmt.Errorf("fit: logger is required")
	}
	if config == (Config{}) {
		config = DefaultConfig()
	}
	return &Ranker{config: config, cat: cat, log: log}, nil
}

// AnalyzeAll scores every prototype and returns entries sorted by composite
// score descending, ties broken by prototype ID for deterministic output.
func (r *Ranker) AnalyzeAll(protos []*prototype.Prototype, contexts []snapshot.Snapshot, constraints map[string]reach.Interval, threshold float64) []Entry {
	entries := make([]Entry, 0, len(protos))
	for _, p := range protos {
		entries = append(entries, r.analyze(p, contexts, constraints, threshold))
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CompositeScore != entries[j].CompositeScore {
			return entries[i].CompositeScore > entries[j].CompositeScore
		}
		return entries[i].PrototypeID < entries[j].PrototypeID
	})
	return entries
}

func (r *Ranker) analyze(p *prototype.Prototype, contexts []snapshot.Snapshot, constraints map[string]reach.Interval, threshold float64) Entry {
	e := Entry{PrototypeID: p.ID}

	var passing []float64
	for _, ctx := range contexts {
		if p.PassesGates(ctx) {
			passing = append(passing, p.Intensity(ctx, r.cat))
		}
	}
	if len(contexts) > 0 {
		e.GatePassRate = float64(len(passing)) / float64(len(contexts))
	}
	e.Distribution = summarize(passing, threshold)

	e.ConflictScore, e.ConflictMagnitude, e.ConflictingAxes = r.conflict(p, constraints)
	e.ExclusionCompatibility = r.exclusionCompatibility(p, constraints)

	e.CompositeScore = r.config.GatePassWeight*e.GatePassRate +
		r.config.AboveWeight*e.Distribution.AboveThresholdRate +
		r.config.ConflictWeight*(1-e.ConflictScore) +
		r.config.ExclusionWeight*e.ExclusionCompatibility
	return e
}

// #endregion ranker

// #region distribution

// summarize computes floor-indexed percentiles over the sorted values:
// idx = floor(p·(n−1)). Empty input yields nil statistics and zero rates.
func summarize(values []float64, threshold float64) Distribution {
	var d Distribution
	if len(values) == 0 {
		return d
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	d.Min = ptr(sorted[0])
	d.Max = ptr(sorted[len(sorted)-1])
	d.P50 = ptr(percentile(sorted, 0.50))
	d.P90 = ptr(percentile(sorted, 0.90))
	d.P95 = ptr(percentile(sorted, 0.95))

	above := 0
	for _, v := range sorted {
		if v >= threshold {
			above++
		}
	}
	d.AboveThresholdRate = float64(above) / float64(len(sorted))
	return d
}

func percentile(sorted []float64, p float64) float64 {
	idx := int(math.Floor(p * float64(len(sorted)-1)))
	return sorted[idx]
}

func ptr(v float64) *float64 { return &v }

// #endregion distribution

// #region conflict

// conflict measures weight mass pulling against the branch's constraints: an
// axis conflicts when the weight's sign opposes the sign of the constraint
// interval's normalized midpoint.
func (r *Ranker) conflict(p *prototype.Prototype, constraints map[string]reach.Interval) (score, magnitude float64, axes []string) {
	total := p.TotalWeight()
	if total == 0 || len(constraints) == 0 {
		return 0, 0, nil
	}

	for name, iv := range constraints {
		w, ok := p.Weights[name]
		if !ok || w == 0 {
			continue
		}
		def, known := r.cat.Lookup(name)
		if !known {
			continue
		}
		mid := def.Normalize(iv.Mid())
		if w*mid < 0 {
			magnitude += math.Abs(w * mid)
			axes = append(axes, name)
		}
	}
	sort.Strings(axes)

	score = magnitude / total
	if score > 1 {
		score = 1
	}
	return score, magnitude, axes
}

// exclusionCompatibility is the fraction of the prototype's parsed gates on
// constrained axes whose implied region still intersects the branch's
// interval. No relevant gates means fully compatible.
func (r *Ranker) exclusionCompatibility(p *prototype.Prototype, constraints map[string]reach.Interval) float64 {
	relevant, compatible := 0, 0
	for _, c := range p.GateConstraints() {
		iv, ok := constraints[c.Axis]
		if !ok {
			continue
		}
		def, known := r.cat.Lookup(c.Axis)
		if !known {
			continue
		}
		relevant++
		lo, hi := c.Interval(def.NativeMin, def.NativeMax)
		if !iv.Intersect(reach.Interval{Lo: lo, Hi: hi}).Empty() {
			compatible++
		}
	}
	if relevant == 0 {
		return 1
	}
	return float64(compatible) / float64(relevant)
}

// #endregion conflict
