package reach

import (
	"math"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/axis"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/gate"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/prototype"
)

// #region reachability

// Reachability is the achievable intensity envelope of one prototype within
// one branch, and whether the branch's requirement on it can be met.
type Reachability struct {
	MinPossible float64 // normalized intensity lower bound, in [0,1]
	MaxPossible float64 // normalized intensity upper bound, in [0,1]
	Reachable   bool
	Gap         float64 // signed shortfall: positive means the requirement cannot be met
	Contradict  bool    // branch + gate constraints empty out some axis entirely
}

// #endregion reachability

// #region compute

// ComputeReachability computes the intensity bounds proto can reach under
// the branch's axis intervals, then tests them against the branch's
// requirement (op, threshold in normalized intensity units).
//
// The prototype's OWN gates are always intersected in, even when the branch
// only requires the prototype from below ("< threshold"): an inactive
// prototype still reports the envelope its gates would allow.
func ComputeReachability(b Branch, proto *prototype.Prototype, op gate.Op, threshold float64, cat *axis.Catalog) Reachability {
	total := proto.TotalWeight()
	if total == 0 {
		return grade(Reachability{MinPossible: 0, MaxPossible: 0}, op, threshold)
	}

	var sumMin, sumMax float64
	for name, w := range proto.Weights {
		if w == 0 {
			continue
		}

		def, known := cat.Lookup(name)
		if !known {
			// missing axis data contributes 0 while |w| stays in the denominator
			continue
		}

		iv := Interval{def.NativeMin, def.NativeMax}
		if bc, ok := b.AxisIntervals[name]; ok {
			iv = iv.Intersect(bc)
		}
		for _, c := range proto.GateConstraints() {
			if c.Axis != name {
				continue
			}
			lo, hi := c.Interval(def.NativeMin, def.NativeMax)
			iv = iv.Intersect(Interval{lo, hi})
		}

		if iv.Empty() {
			return Reachability{
				MinPossible: math.NaN(),
				MaxPossible: math.NaN(),
				Reachable:   false,
				Gap:         math.NaN(),
				Contradict:  true,
			}
		}

		nlo := def.Normalize(iv.Lo)
		nhi := def.Normalize(iv.Hi)
		if w >= 0 {
			sumMin += w * nlo
			sumMax += w * nhi
		} else {
			sumMin += w * nhi
			sumMax += w * nlo
		}
	}

	// clamp both bounds to [0, Σ|w|] before normalizing
	sumMin = clampTo(sumMin, 0, total)
	sumMax = clampTo(sumMax, 0, total)

	return grade(Reachability{
		MinPossible: sumMin / total,
		MaxPossible: sumMax / total,
	}, op, threshold)
}

func grade(r Reachability, op gate.Op, threshold float64) Reachability {
	switch op {
	case gate.OpGE:
		r.Reachable = r.MaxPossible >= threshold
		r.Gap = threshold - r.MaxPossible
	case gate.OpGT:
		r.Reachable = r.MaxPossible > threshold
		r.Gap = threshold - r.MaxPossible
	case gate.OpLE:
		// trivially true whenever threshold > 0 and minPossible can be 0
		r.Reachable = r.MinPossible <= threshold
		r.Gap = r.MinPossible - threshold
	case gate.OpLT:
		r.Reachable = r.MinPossible < threshold
		r.Gap = r.MinPossible - threshold
	case gate.OpEQ:
		r.Reachable = r.MinPossible <= threshold && threshold <= r.MaxPossible
		if r.Reachable {
			r.Gap = 0
		} else if threshold > r.MaxPossible {
			r.Gap = threshold - r.MaxPossible
		} else {
			r.Gap = r.MinPossible - threshold
		}
	}
	return r
}

func clampTo(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// #endregion compute
