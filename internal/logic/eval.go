package logic

import (
	"github.com/narrateworks/character-engine/go-diagnostics/internal/gate"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/snapshot"
)

// #region eval

// Eval evaluates the node against a snapshot. Missing variable lookups
// resolve to 0 (permissive default).
func (n *Node) Eval(s snapshot.Snapshot) bool {
	return n.EvalOverride(s, nil)
}

// EvalOverride evaluates the node with an optional threshold override hook.
// The hook receives each leaf; when it returns ok, the returned value
// replaces the leaf's threshold. Sensitivity sweeps use this to re-evaluate
// a full expression at shifted thresholds without rebuilding the AST.
func (n *Node) EvalOverride(s snapshot.Snapshot, override func(*Node) (float64, bool)) bool {
	switch n.Kind {
	case KindTrue:
		return true
	case KindAnd:
		for _, c := range n.Children {
			if !c.EvalOverride(s, override) {
				return false
			}
		}
		return true
	case KindOr:
		for _, c := range n.Children {
			if c.EvalOverride(s, override) {
				return true
			}
		}
		return false
	case KindCompare:
		v, _ := s.Lookup(n.VarPath)
		return compare(v, n.Op, n.threshold(override))
	case KindDelta:
		lv, _ := s.Lookup(n.LeftPath)
		rv, _ := s.Lookup(n.RightPath)
		return compare(lv-rv, n.Op, n.threshold(override))
	default:
		return false
	}
}

func (n *Node) threshold(override func(*Node) (float64, bool)) float64 {
	if override != nil {
		if v, ok := override(n); ok {
			return v
		}
	}
	return n.Threshold
}

func compare(v float64, op gate.Op, threshold float64) bool {
	return gate.Constraint{Op: op, Threshold: threshold}.Eval(v)
}

// #endregion eval
