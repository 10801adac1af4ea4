// Package feasibility evaluates extracted non-axis clauses against sampled
// simulation contexts and classifies how often each clause's requirement is
// actually met in play.
package feasibility

import (
	"fmt"
	"math"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/gate"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/logging"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/logic"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/snapshot"
)

// #region analyzer

// Analyzer classifies clause feasibility over a context pool.
type Analyzer struct {
	config Config
	log    logging.Logger
}

// NewAnalyzer fails fast when the logger collaborator is missing.
func NewAnalyzer(config Config, log logging.Logger) (*Analyzer, error) {
	if log == nil {
		return nil, fmt.Errorf("feasibility: logger is required")
	}
	if config.RareThreshold <= 0 {
		config.RareThreshold = DefaultConfig().RareThreshold
	}
	return &Analyzer{config: config, log: log}, nil
}

// #endregion analyzer

// #region analyze

// Analyze evaluates every clause against every context. A failure on one
// clause is logged and excluded; it never aborts the batch.
func (a *Analyzer) Analyze(clauses []logic.Clause, contexts []snapshot.Snapshot, exprID string) []Result {
	results := make([]Result, 0, len(clauses))
	for _, c := range clauses {
		r, err := a.analyzeClause(c, contexts)
		if err != nil {
			a.log.Error("clause analysis failed",
				"expression", exprID, "varPath", c.VarPath, "error", err.Error())
			continue
		}
		results = append(results, r)
	}
	return results
}

func (a *Analyzer) analyzeClause(c logic.Clause, contexts []snapshot.Snapshot) (Result, error) {
	if c.VarPath == "" {
		return Result{}, fmt.Errorf("clause has empty var path (source %s)", c.SourcePath)
	}

	signal := "direct"
	if c.IsDelta {
		signal = "delta"
	}

	r := Result{
		VarPath:   c.VarPath,
		Signal:    signal,
		Op:        c.Op,
		Threshold: c.Threshold,
		MaxValue:  math.NaN(),
		MinValue:  math.NaN(),
	}

	constraint := gate.Constraint{Op: c.Op, Threshold: c.Threshold}
	var best *SampleRef

	for i, ctx := range contexts {
		v, ok := clauseValue(c, ctx)
		if !ok {
			continue // excluded from the denominator
		}
		r.ValidCount++
		if math.IsNaN(r.MaxValue) || v > r.MaxValue {
			r.MaxValue = v
		}
		if math.IsNaN(r.MinValue) || v < r.MinValue {
			r.MinValue = v
		}
		if constraint.Eval(v) {
			r.PassCount++
			if best == nil || betterSample(c.Op, v, best.Value) {
				best = &SampleRef{Index: i, Value: v}
			}
		}
	}

	if r.ValidCount > 0 {
		r.PassRate = float64(r.PassCount) / float64(r.ValidCount)
	}
	r.Classification = a.classify(r)
	r.Evidence = Evidence{
		Note:       evidenceNote(r, best),
		BestSample: best,
	}
	return r, nil
}

// clauseValue resolves the clause's observed value in one context. For delta
// clauses, a context missing either operand is invalid and excluded.
func clauseValue(c logic.Clause, ctx snapshot.Snapshot) (float64, bool) {
	if c.IsDelta {
		lv, ok := ctx.Lookup(c.LeftPath)
		if !ok {
			return 0, false
		}
		rv, ok := ctx.Lookup(c.RightPath)
		if !ok {
			return 0, false
		}
		return lv - rv, true
	}
	return ctx.Lookup(c.VarPath)
}

// betterSample prefers the most decisive passing value for the operator's
// direction: highest for >=/>/==, lowest for <=/<.
func betterSample(op gate.Op, v, current float64) bool {
	if op == gate.OpLE || op == gate.OpLT {
		return v < current
	}
	return v > current
}

// #endregion analyze

// #region classify

func (a *Analyzer) classify(r Result) Classification {
	switch {
	case r.ValidCount == 0:
		return ClassUnknown
	case r.PassCount == 0:
		if ceilingBelowRequirement(r) {
			return ClassEmpiricallyUnreachable
		}
		return ClassImpossible
	case r.PassRate < a.config.RareThreshold:
		return ClassRare
	default:
		return ClassOK
	}
}

// ceilingBelowRequirement reports whether the observed extreme never reached
// the requirement: max below threshold for high-direction operators, min
// above threshold for low-direction ones.
func ceilingBelowRequirement(r Result) bool {
	switch r.Op {
	case gate.OpGE, gate.OpGT:
		return r.MaxValue < r.Threshold
	case gate.OpLE, gate.OpLT:
		return r.MinValue > r.Threshold
	case gate.OpEQ:
		return r.MaxValue < r.Threshold || r.MinValue > r.Threshold
	default:
		return false
	}
}

func evidenceNote(r Result, best *SampleRef) string {
	if best != nil {
		return fmt.Sprintf("%s signal %s: best passing sample #%d with value %.4f (pass rate %.4f over %d valid)",
			r.Signal, r.VarPath, best.Index, best.Value, r.PassRate, r.ValidCount)
	}
	if r.ValidCount == 0 {
		return fmt.Sprintf("%s signal %s: no valid samples", r.Signal, r.VarPath)
	}
	return fmt.Sprintf("%s signal %s: no passing samples; observed range [%.4f, %.4f] vs %s %.4f",
		r.Signal, r.VarPath, r.MinValue, r.MaxValue, r.Op, r.Threshold)
}

// #endregion classify
