package logic

import (
	"fmt"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/axis"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/logging"
)

// #region extract

// ExtractNonAxisClauses walks every prerequisite tree and returns the
// comparison clauses whose variable is outside the axis namespaces
// (moodAxes/mood/sexualAxes/affectTraits). Each clause records a dotted
// source path for traceability. Always returns a non-nil slice, including
// for nil or empty input.
func ExtractNonAxisClauses(prereqs []Prerequisite, log logging.Logger) []Clause {
	clauses := []Clause{}
	for i, p := range prereqs {
		if p.Logic == nil {
			continue
		}
		root := Parse(p.Logic, log)
		visitLeaves(root, fmt.Sprintf("prereqs[%d]", i), func(leaf *Node, path string) {
			if c, ok := clauseFromLeaf(leaf, path); ok {
				clauses = append(clauses, c)
			}
		})
	}
	return clauses
}

// visitLeaves walks the AST depth-first, accumulating the source path the
// way the raw tree was nested: compound nodes append ".and[j]" / ".or[j]".
func visitLeaves(n *Node, path string, visit func(*Node, string)) {
	switch n.Kind {
	case KindAnd, KindOr:
		label := "and"
		if n.Kind == KindOr {
			label = "or"
		}
		for j, child := range n.Children {
			visitLeaves(child, fmt.Sprintf("%s.%s[%d]", path, label, j), visit)
		}
	case KindCompare, KindDelta:
		visit(n, path)
	case KindTrue:
		// permissive placeholder, nothing to extract
	}
}

func clauseFromLeaf(leaf *Node, path string) (Clause, bool) {
	switch leaf.Kind {
	case KindCompare:
		if axis.IsAxisPath(leaf.VarPath) {
			return Clause{}, false
		}
		return Clause{
			VarPath:    leaf.VarPath,
			Op:         leaf.Op,
			Threshold:  leaf.Threshold,
			Type:       ClassifyClause(leaf.VarPath, false),
			SourcePath: path,
		}, true
	case KindDelta:
		// A delta over two axis values is still pure axis signal and stays
		// with the interval engine; anything else is extracted.
		if axis.IsAxisPath(leaf.LeftPath) && axis.IsAxisPath(leaf.RightPath) {
			return Clause{}, false
		}
		return Clause{
			VarPath:    leaf.LeftPath + " - " + leaf.RightPath,
			LeftPath:   leaf.LeftPath,
			RightPath:  leaf.RightPath,
			Op:         leaf.Op,
			Threshold:  leaf.Threshold,
			IsDelta:    true,
			Type:       ClauseDelta,
			SourcePath: path,
		}, true
	default:
		return Clause{}, false
	}
}

// #endregion extract
