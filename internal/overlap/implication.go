package overlap

import (
	"sort"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/prototype"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/reach"
)

// #region implication

// gateRegions intersects a prototype's parsed gate constraints per axis.
// Axes without constraints are unconstrained and omitted.
func (e *Evaluator) gateRegions(p *prototype.Prototype) map[string]reach.Interval {
	regions := make(map[string]reach.Interval)
	for _, c := range p.GateConstraints() {
		def, ok := e.cat.Lookup(c.Axis)
		if !ok {
			continue
		}
		lo, hi := c.Interval(def.NativeMin, def.NativeMax)
		iv := reach.Interval{Lo: lo, Hi: hi}
		if existing, ok := regions[c.Axis]; ok {
			iv = existing.Intersect(iv)
		}
		regions[c.Axis] = iv
	}
	return regions
}

// contains reports whether inner's activation region sits inside outer's on
// every axis, returning the axes where containment fails. An axis outer
// constrains but inner leaves free (or inner's region exceeds outer's) is a
// counter-example.
func (e *Evaluator) contains(inner, outer map[string]reach.Interval) (bool, []string) {
	var counter []string
	for axisName, out := range outer {
		in, constrained := inner[axisName]
		if !constrained {
			def, ok := e.cat.Lookup(axisName)
			if !ok {
				continue
			}
			in = reach.Interval{Lo: def.NativeMin, Hi: def.NativeMax}
		}
		if in.Lo < out.Lo || in.Hi > out.Hi {
			counter = append(counter, axisName)
		}
	}
	sort.Strings(counter)
	return len(counter) == 0, counter
}

// implication derives directional gate subsumption from interval containment.
// Confidence is the empirical conditional activation rate observed during the
// same sample run; a deterministic containment with no observed activations
// of the antecedent keeps confidence 1.
func (e *Evaluator) implication(a, b *prototype.Prototype, onA, onB []bool) *Implication {
	regA := e.gateRegions(a)
	regB := e.gateRegions(b)

	aInB, counterAB := e.contains(regA, regB)
	bInA, counterBA := e.contains(regB, regA)

	switch {
	case aInB:
		return &Implication{Direction: "A_implies_B", Confidence: conditional(onB, onA)}
	case bInA:
		return &Implication{Direction: "B_implies_A", Confidence: conditional(onA, onB)}
	default:
		axes := append(counterAB, counterBA...)
		sort.Strings(axes)
		return &Implication{Direction: "none", CounterExampleAxes: dedupe(axes)}
	}
}

// conditional returns P(consequent | antecedent) over the sample run,
// defaulting to 1 when the antecedent never fired.
func conditional(consequent, antecedent []bool) float64 {
	var fired, held int
	for i := range antecedent {
		if antecedent[i] {
			fired++
			if consequent[i] {
				held++
			}
		}
	}
	if fired == 0 {
		return 1
	}
	return float64(held) / float64(fired)
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// #endregion implication
