package logic

import (
	"fmt"
	"strings"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/gate"
)

// #region node

// Kind tags a prerequisite logic node.
type Kind int

const (
	// KindTrue is the permissive placeholder a malformed node degrades to.
	KindTrue Kind = iota
	KindAnd
	KindOr
	KindCompare
	KindDelta
)

func (k Kind) String() string {
	switch k {
	case KindTrue:
		return "true"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindCompare:
		return "compare"
	case KindDelta:
		return "delta"
	default:
		return "unknown"
	}
}

// Node is one node of a tagged-union prerequisite AST.
// Compare leaves carry VarPath; Delta leaves carry LeftPath and RightPath
// (the comparison applies to left-right).
type Node struct {
	Kind      Kind
	Children  []*Node
	VarPath   string
	LeftPath  string
	RightPath string
	Op        gate.Op
	Threshold float64
}

// ClauseKey identifies a leaf by (varPath, operator, threshold); used to
// deduplicate blockers and to target threshold overrides during sweeps.
func (n *Node) ClauseKey() string {
	path := n.VarPath
	if n.Kind == KindDelta {
		path = n.LeftPath + "-" + n.RightPath
	}
	return fmt.Sprintf("%s|%s|%g", path, n.Op, n.Threshold)
}

// #endregion node

// #region expression

// Prerequisite wraps one raw logic tree as authored in expression data.
type Prerequisite struct {
	Logic any `json:"logic"`
}

// Expression is a rule gating an emotion, mood, or sexual state.
// Prerequisites are already schema-validated upstream; this package still
// degrades gracefully on anything unexpected.
type Expression struct {
	ID            string         `json:"id"`
	Prerequisites []Prerequisite `json:"prerequisites"`
}

// #endregion expression

// #region clause

// ClauseType buckets extracted clauses by variable namespace.
type ClauseType string

const (
	ClauseEmotion ClauseType = "emotion"
	ClauseSexual  ClauseType = "sexual"
	ClauseDelta   ClauseType = "delta"
	ClauseOther   ClauseType = "other"
)

// Clause is a non-axis comparison extracted from prerequisite logic.
type Clause struct {
	VarPath    string
	LeftPath   string // delta only
	RightPath  string // delta only
	Op         gate.Op
	Threshold  float64
	IsDelta    bool
	Type       ClauseType
	SourcePath string // e.g. "prereqs[0].and[1].or[0]"
}

// ClassifyClause buckets a var path by prefix. Delta clauses are always
// ClauseDelta regardless of operand namespaces.
func ClassifyClause(varPath string, isDelta bool) ClauseType {
	if isDelta {
		return ClauseDelta
	}
	p := strings.TrimPrefix(varPath, "previous.")
	switch {
	case strings.HasPrefix(p, "emotions."):
		return ClauseEmotion
	case strings.HasPrefix(p, "sexualStates."):
		return ClauseSexual
	default:
		return ClauseOther
	}
}

// #endregion clause
