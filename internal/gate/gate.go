// Package gate parses and evaluates textual gate constraints of the form
// "axis >= value". Gates are activation preconditions on prototypes,
// independent of intensity. Malformed gates never fail hard: they are logged
// and treated as trivially satisfiable so a typo can't silently mark a
// prototype unreachable.
package gate

import (
	"regexp"
	"strconv"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/axis"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/logging"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/snapshot"
)

// #region parse

var gatePattern = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_.]*)\s*(>=|<=|==|>|<)\s*(-?[0-9]+(?:\.[0-9]+)?)\s*$`)

// Parse parses a single textual gate like "valence >= 30" or
// "moodAxes.threat < 20". Axis namespace prefixes are stripped.
// ok is false for anything that does not match; Parse never errors.
func Parse(text string) (Constraint, bool) {
	m := gatePattern.FindStringSubmatch(text)
	if m == nil {
		return Constraint{}, false
	}
	threshold, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return Constraint{}, false
	}
	return Constraint{
		Axis:      axis.StripNamespace(m[1]),
		Op:        Op(m[2]),
		Threshold: threshold,
	}, true
}

// ParseAll parses a prototype's gate list. Unparsed gates are logged at warn
// level and reported in the returned ParseInfo; they never appear in the
// constraint slice.
func ParseAll(gates []string, log logging.Logger) ([]Constraint, ParseInfo) {
	info := ParseInfo{Status: ParseComplete, TotalGateCount: len(gates)}
	constraints := make([]Constraint, 0, len(gates))

	for _, g := range gates {
		c, ok := Parse(g)
		if !ok {
			if log != nil {
				log.Warn("unparsed gate treated as satisfiable", "gate", g)
			}
			info.UnparsedGates = append(info.UnparsedGates, g)
			continue
		}
		constraints = append(constraints, c)
	}

	info.ParsedGateCount = len(constraints)
	switch {
	case len(gates) == 0 || info.ParsedGateCount == len(gates):
		info.Status = ParseComplete
	case info.ParsedGateCount == 0:
		info.Status = ParseFailed
	default:
		info.Status = ParsePartial
	}
	return constraints, info
}

// #endregion parse

// #region eval

// Eval reports whether the constraint holds for value v.
func (c Constraint) Eval(v float64) bool {
	switch c.Op {
	case OpGE:
		return v >= c.Threshold
	case OpLE:
		return v <= c.Threshold
	case OpGT:
		return v > c.Threshold
	case OpLT:
		return v < c.Threshold
	case OpEQ:
		return v == c.Threshold
	default:
		return false
	}
}

// EvalSnapshot evaluates the constraint against a snapshot's current frame.
// A missing axis value is treated as satisfying (permissive default).
func (c Constraint) EvalSnapshot(s snapshot.Snapshot) bool {
	v, ok := s.Axis(c.Axis)
	if !ok {
		return true
	}
	return c.Eval(v)
}

// #endregion eval

// #region interval

// Interval returns the axis value range [lo, hi] implied by the constraint,
// intersected with the axis's native range. Strict operators share bounds
// with their inclusive forms; closed-range interval arithmetic is the
// resolution the reachability engine works at.
func (c Constraint) Interval(nativeLo, nativeHi float64) (float64, float64) {
	lo, hi := nativeLo, nativeHi
	switch c.Op {
	case OpGE, OpGT:
		if c.Threshold > lo {
			lo = c.Threshold
		}
	case OpLE, OpLT:
		if c.Threshold < hi {
			hi = c.Threshold
		}
	case OpEQ:
		lo, hi = c.Threshold, c.Threshold
	}
	return lo, hi
}

// #endregion interval
