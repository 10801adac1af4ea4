package overlap

import (
	"math/rand"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/axis"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/snapshot"
)

// #region generator

// Generator produces sampled simulation states for Monte Carlo evaluation.
// Implementations must be deterministic for a fixed seed so comparisons can
// be replayed.
type Generator interface {
	Next() snapshot.Snapshot
}

// SeededGenerator draws axis values uniformly over each axis's native range.
// Integer-domain axes are rounded to whole values.
type SeededGenerator struct {
	cat *axis.Catalog
	rng *rand.Rand
}

// NewSeededGenerator builds a generator over the catalog's full axis set.
func NewSeededGenerator(cat *axis.Catalog, seed int64) *SeededGenerator {
	return &SeededGenerator{cat: cat, rng: rand.New(rand.NewSource(seed))}
}

// Next samples one full frame. Every canonical axis gets a value so gate and
// intensity evaluation never see missing data during comparison runs.
func (g *SeededGenerator) Next() snapshot.Snapshot {
	f := snapshot.Frame{
		MoodAxes:     map[string]float64{},
		SexualAxes:   map[string]float64{},
		AffectTraits: map[string]float64{},
	}
	for _, name := range g.cat.All() {
		def, ok := g.cat.Lookup(name)
		if !ok {
			continue
		}
		v := def.NativeMin + g.rng.Float64()*(def.NativeMax-def.NativeMin)
		if def.Integer {
			v = float64(int64(v + 0.5))
		}
		switch def.Domain {
		case axis.DomainMood:
			f.MoodAxes[name] = v
		case axis.DomainSexual:
			f.SexualAxes[name] = v
		case axis.DomainTrait:
			f.AffectTraits[name] = v
		}
	}
	return snapshot.Snapshot{Frame: f}
}

// #endregion generator
