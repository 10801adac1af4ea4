// Package logic parses raw prerequisite trees into a tagged-union AST and
// extracts non-axis clauses from them. Raw trees are JSON-logic shaped:
//
//	{"and": [ ... ]}
//	{"or": [ ... ]}
//	{">=": [{"var": "emotions.joy"}, 0.6]}
//	{">":  [{"-": [{"var": "a"}, {"var": "b"}]}, 0.2]}
//
// Malformed nodes never abort parsing: they are logged and degrade to a
// trivially-true node so one bad leaf can't invalidate a whole expression.
package logic

import (
	"github.com/narrateworks/character-engine/go-diagnostics/internal/gate"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/logging"
)

// #region parse

var comparisonOps = map[string]gate.Op{
	">=": gate.OpGE,
	"<=": gate.OpLE,
	">":  gate.OpGT,
	"<":  gate.OpLT,
	"==": gate.OpEQ,
}

// Parse converts one raw prerequisite logic value into an AST node.
// It never fails: anything unrecognizable becomes KindTrue after a warn log.
func Parse(raw any, log logging.Logger) *Node {
	node, ok := parseNode(raw)
	if !ok {
		if log != nil {
			log.Warn("malformed logic node treated as trivially true", "raw", raw)
		}
		return &Node{Kind: KindTrue}
	}
	return node
}

func parseNode(raw any) (*Node, bool) {
	m, ok := raw.(map[string]any)
	if !ok || len(m) != 1 {
		return nil, false
	}

	if children, ok := m["and"]; ok {
		return parseCompound(KindAnd, children)
	}
	if children, ok := m["or"]; ok {
		return parseCompound(KindOr, children)
	}

	for key, op := range comparisonOps {
		if operands, ok := m[key]; ok {
			return parseComparison(op, operands)
		}
	}
	return nil, false
}

func parseCompound(kind Kind, rawChildren any) (*Node, bool) {
	list, ok := rawChildren.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	node := &Node{Kind: kind, Children: make([]*Node, 0, len(list))}
	for _, child := range list {
		parsed, ok := parseNode(child)
		if !ok {
			// A malformed child degrades to trivially-true in place, so the
			// sibling structure (and branch counting) stays intact.
			parsed = &Node{Kind: KindTrue}
		}
		node.Children = append(node.Children, parsed)
	}
	return node, true
}

func parseComparison(op gate.Op, rawOperands any) (*Node, bool) {
	operands, ok := rawOperands.([]any)
	if !ok || len(operands) != 2 {
		return nil, false
	}

	left, right := operands[0], operands[1]

	// var op const
	if path, ok := varRef(left); ok {
		if threshold, ok := numeric(right); ok {
			return &Node{Kind: KindCompare, VarPath: path, Op: op, Threshold: threshold}, true
		}
	}

	// const op var: reversed comparison, flip the operator
	if threshold, ok := numeric(left); ok {
		if path, ok := varRef(right); ok {
			return &Node{Kind: KindCompare, VarPath: path, Op: op.Flip(), Threshold: threshold}, true
		}
	}

	// (var - var) op const: delta clause. Only recognized when BOTH
	// subtraction operands are variable references.
	if lp, rp, ok := deltaRef(left); ok {
		if threshold, ok := numeric(right); ok {
			return &Node{Kind: KindDelta, LeftPath: lp, RightPath: rp, Op: op, Threshold: threshold}, true
		}
	}
	if threshold, ok := numeric(left); ok {
		if lp, rp, ok := deltaRef(right); ok {
			return &Node{Kind: KindDelta, LeftPath: lp, RightPath: rp, Op: op.Flip(), Threshold: threshold}, true
		}
	}

	return nil, false
}

// #endregion parse

// #region operands

func varRef(raw any) (string, bool) {
	m, ok := raw.(map[string]any)
	if !ok || len(m) != 1 {
		return "", false
	}
	v, ok := m["var"]
	if !ok {
		return "", false
	}
	path, ok := v.(string)
	if !ok || path == "" {
		return "", false
	}
	return path, true
}

func numeric(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func deltaRef(raw any) (string, string, bool) {
	m, ok := raw.(map[string]any)
	if !ok || len(m) != 1 {
		return "", "", false
	}
	sub, ok := m["-"]
	if !ok {
		return "", "", false
	}
	operands, ok := sub.([]any)
	if !ok || len(operands) != 2 {
		return "", "", false
	}
	lp, ok := varRef(operands[0])
	if !ok {
		return "", "", false
	}
	rp, ok := varRef(operands[1])
	if !ok {
		return "", "", false
	}
	return lp, rp, true
}

// #endregion operands
