// Package reach enumerates the conjunctive branches of an expression's
// prerequisite logic and computes, per branch per prototype, the achievable
// intensity bounds via interval arithmetic over axis constraints.
package reach

import (
	"fmt"
	"strings"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/axis"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/gate"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/logging"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/logic"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/prototype"
)

// #region config

// Config bounds branch enumeration.
type Config struct {
	MaxBranches int // ceiling on materialized branches; enumeration degrades to truncation, never a hang
}

// DefaultConfig returns the standard enumeration ceiling.
func DefaultConfig() Config {
	return Config{MaxBranches: 100}
}

// #endregion config

// #region branch

// Branch is one conjunctive path through an expression's prerequisite tree:
// OR distributed into AND. Branches are derived, transient artifacts.
type Branch struct {
	Index         int
	Leaves        []*logic.Node // ordered leaf comparisons along this path
	AxisIntervals map[string]Interval
	PrototypeRefs []string // leaf var paths that reference prototypes
}

// EnumerateResult is the outcome of DNF enumeration.
type EnumerateResult struct {
	Branches   []Branch
	TotalPaths int // true DNF path count, including truncated paths
	Truncated  bool
}

// #endregion branch

// #region enumerate

// EnumerateBranches distributes OR over AND across all prerequisites
// (prerequisites conjoin) to produce the disjunctive normal form. When the
// true path count exceeds cfg.MaxBranches the result is truncated to the
// limit and a warning names the actual count; counts at or below the limit
// never warn.
func EnumerateBranches(expr logic.Expression, cat *axis.Catalog, cfg Config, log logging.Logger) EnumerateResult {
	roots := make([]*logic.Node, 0, len(expr.Prerequisites))
	for _, p := range expr.Prerequisites {
		if p.Logic == nil {
			continue
		}
		roots = append(roots, logic.Parse(p.Logic, log))
	}
	root := &logic.Node{Kind: logic.KindAnd, Children: roots}
	if len(roots) == 0 {
		return EnumerateResult{Branches: []Branch{}, TotalPaths: 0}
	}

	max := cfg.MaxBranches
	if max <= 0 {
		max = DefaultConfig().MaxBranches
	}

	res := EnumerateResult{TotalPaths: pathCount(root)}

	paths := make([][]*logic.Node, 0, min(res.TotalPaths, max))
	walkPaths(root, nil, &paths, max)

	res.Branches = make([]Branch, 0, len(paths))
	for i, leaves := range paths {
		res.Branches = append(res.Branches, buildBranch(i, leaves, cat))
	}

	if res.TotalPaths > max {
		res.Truncated = true
		if log != nil {
			log.Warn(fmt.Sprintf("expression %s: %d paths found, truncated to %d branches",
				expr.ID, res.TotalPaths, max))
		}
	}
	return res
}

// pathCount computes the true DNF path count without materializing paths:
// leaves count 1, AND multiplies, OR adds. The count increments exactly once
// per completed path, never per leaf visited.
func pathCount(n *logic.Node) int {
	switch n.Kind {
	case logic.KindAnd:
		count := 1
		for _, c := range n.Children {
			count *= pathCount(c)
		}
		return count
	case logic.KindOr:
		count := 0
		for _, c := range n.Children {
			count += pathCount(c)
		}
		return count
	default: // leaves, including trivially-true placeholders
		return 1
	}
}

// walkPaths materializes conjunctive paths depth-first, stopping once the
// limit is reached. Returns false to signal the caller to stop.
func walkPaths(n *logic.Node, acc []*logic.Node, out *[][]*logic.Node, limit int) bool {
	switch n.Kind {
	case logic.KindAnd:
		return walkAnd(n.Children, acc, out, limit)
	case logic.KindOr:
		for _, c := range n.Children {
			if !walkPaths(c, acc, out, limit) {
				return false
			}
		}
		return true
	case logic.KindCompare, logic.KindDelta:
		return emitPath(append(acc, n), out, limit)
	default: // KindTrue contributes no leaf but still completes a path
		return emitPath(acc, out, limit)
	}
}

func walkAnd(children []*logic.Node, acc []*logic.Node, out *[][]*logic.Node, limit int) bool {
	if len(children) == 0 {
		return emitPath(acc, out, limit)
	}
	head, rest := children[0], children[1:]

	switch head.Kind {
	case logic.KindOr:
		for _, alt := range head.Children {
			// distribute: each OR alternative continues the same AND tail
			if !walkAnd(append([]*logic.Node{alt}, rest...), acc, out, limit) {
				return false
			}
		}
		return true
	case logic.KindAnd:
		merged := append(append([]*logic.Node{}, head.Children...), rest...)
		return walkAnd(merged, acc, out, limit)
	case logic.KindCompare, logic.KindDelta:
		return walkAnd(rest, append(acc, head), out, limit)
	default: // KindTrue
		return walkAnd(rest, acc, out, limit)
	}
}

func emitPath(acc []*logic.Node, out *[][]*logic.Node, limit int) bool {
	if len(*out) >= limit {
		return false
	}
	path := make([]*logic.Node, len(acc))
	copy(path, acc)
	*out = append(*out, path)
	return len(*out) < limit
}

// #endregion enumerate

// #region build-branch

// buildBranch intersects all axis comparisons on each axis into a single
// interval and records prototype references. "previous."-frame comparisons
// constrain history, not the reachable current state, so they are skipped.
func buildBranch(index int, leaves []*logic.Node, cat *axis.Catalog) Branch {
	b := Branch{
		Index:         index,
		Leaves:        leaves,
		AxisIntervals: make(map[string]Interval),
	}
	for _, leaf := range leaves {
		switch leaf.Kind {
		case logic.KindCompare:
			if axis.IsAxisPath(leaf.VarPath) {
				if strings.HasPrefix(leaf.VarPath, "previous.") {
					continue
				}
				name := axis.StripNamespace(leaf.VarPath)
				def, ok := cat.Lookup(name)
				if !ok {
					continue
				}
				c := gate.Constraint{Axis: name, Op: leaf.Op, Threshold: leaf.Threshold}
				lo, hi := c.Interval(def.NativeMin, def.NativeMax)
				iv := Interval{lo, hi}
				if existing, ok := b.AxisIntervals[name]; ok {
					iv = existing.Intersect(iv)
				}
				b.AxisIntervals[name] = iv
			} else if !strings.HasPrefix(leaf.VarPath, "previous.") {
				b.PrototypeRefs = append(b.PrototypeRefs, leaf.VarPath)
			}
		case logic.KindDelta:
			// delta leaves carry no single-axis interval
		}
	}
	return b
}

// AugmentWithGates folds the gate constraints of every prototype the branch
// requires to be active (high-direction references) into the branch's axis
// intervals. Low-direction references ("< threshold") can hold with the
// prototype inactive, so their gates impose nothing.
func AugmentWithGates(b *Branch, reg *prototype.Registry, cat *axis.Catalog) {
	for _, leaf := range b.Leaves {
		if leaf.Kind != logic.KindCompare || !leaf.Op.IsHighDirection() || leaf.Threshold <= 0 {
			continue
		}
		p, ok := reg.Resolve(leaf.VarPath)
		if !ok {
			continue
		}
		for _, c := range p.GateConstraints() {
			def, ok := cat.Lookup(c.Axis)
			if !ok {
				continue
			}
			lo, hi := c.Interval(def.NativeMin, def.NativeMax)
			iv := Interval{lo, hi}
			if existing, ok := b.AxisIntervals[c.Axis]; ok {
				iv = existing.Intersect(iv)
			}
			b.AxisIntervals[c.Axis] = iv
		}
	}
}

// #endregion build-branch
