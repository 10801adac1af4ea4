package harness

import (
	"time"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/feasibility"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/fit"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/gate"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/reach"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/recommend"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/sensitivity"
)

// #region expression-report

// Requirement is one prototype reference a branch places a demand on.
type Requirement struct {
	Ref          string              `json:"ref"`
	Op           gate.Op             `json:"op"`
	Threshold    float64             `json:"threshold"`
	Reachability *reach.Reachability `json:"reachability,omitempty"`
	Unresolved   bool                `json:"unresolved,omitempty"`
}

// BranchReport is the per-branch analysis slice.
type BranchReport struct {
	Index         int                       `json:"index"`
	AxisIntervals map[string]reach.Interval `json:"axis_intervals"`
	Requirements  []Requirement             `json:"requirements"`
	Reachable     bool                      `json:"reachable"`
	Leaderboard   []fit.Entry               `json:"leaderboard,omitempty"`
}

// ExpressionReport is the full diagnosis of one expression.
type ExpressionReport struct {
	ExpressionID    string               `json:"expression_id"`
	Verdict         string               `json:"verdict"` // "reachable" | "unreachable" | "no_branches"
	TotalPaths      int                  `json:"total_paths"`
	Truncated       bool                 `json:"truncated"`
	Branches        []BranchReport       `json:"branches"`
	ClauseResults   []feasibility.Result `json:"clause_results"`
	SensitivityData []sensitivity.Grid   `json:"sensitivity_data,omitempty"`
	GlobalData      []sensitivity.Grid   `json:"global_data,omitempty"`
	Elapsed         time.Duration        `json:"elapsed_ns"`
}

// #endregion expression-report

// #region comparison-report

// ComparisonReport is the full pairwise prototype diagnosis.
type ComparisonReport struct {
	PrototypeA     string                   `json:"prototype_a"`
	PrototypeB     string                   `json:"prototype_b"`
	Classification recommend.Classification `json:"classification"`
	Recommendation recommend.Recommendation `json:"recommendation"`
	Suggestions    []recommend.Suggestion   `json:"suggestions"`
	Elapsed        time.Duration            `json:"elapsed_ns"`
}

// #endregion comparison-report
