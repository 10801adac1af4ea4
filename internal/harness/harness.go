// Package harness wires the diagnostic analyzers into two top-level
// operations: full expression diagnosis and pairwise prototype comparison.
// Collaborators are injected and validated at construction; per-item
// failures inside a run are logged and isolated, never fatal.
package harness

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/axis"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/feasibility"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/fit"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/logging"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/logic"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/overlap"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/prototype"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/provenance"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/reach"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/recommend"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/sensitivity"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/snapshot"
)

// #region deps

// Deps are the harness's injected collaborators. Log, Registry, and Catalog
// are required; Generator defaults to a seeded sampler and RunLog is
// optional.
type Deps struct {
	Log       logging.Logger
	Registry  *prototype.Registry
	Catalog   *axis.Catalog
	Generator overlap.Generator
	RunLog    *provenance.Log
}

// Harness coordinates the analyzer pipeline.
type Harness struct {
	config      Config
	deps        Deps
	feasibility *feasibility.Analyzer
	ranker      *fit.Ranker
	evaluator   *overlap.Evaluator
	suggester   *recommend.SuggestionEngine
	sweeper     *sensitivity.Analyzer
}

// New validates dependencies and wires the analyzers. Construction fails
// fast, naming the first missing collaborator.
func New(config Config, deps Deps) (*Harness, error) {
	if deps.Log == nil {
		return nil, fmt.Errorf("harness: logger is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("harness: prototype registry is required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("harness: axis catalog is required")
	}
	if deps.Generator == nil {
		deps.Generator = overlap.NewSeededGenerator(deps.Catalog, config.Seed)
	}
	if config.Overlap.SampleCount <= 0 {
		config.Overlap.SampleCount = overlap.DefaultConfig().SampleCount
	}

	fa, err := feasibility.NewAnalyzer(config.Feasibility, deps.Log)
	if err != nil {
		return nil, err
	}
	ranker, err := fit.NewRanker(config.Fit, deps.Catalog, deps.Log)
	if err != nil {
		return nil, err
	}
	evaluator, err := overlap.NewEvaluator(config.Overlap, deps.Generator, deps.Catalog, deps.Log)
	if err != nil {
		return nil, err
	}
	suggester, err := recommend.NewSuggestionEngine(config.Suggestion, deps.Catalog, deps.Log)
	if err != nil {
		return nil, err
	}
	sweeper, err := sensitivity.NewAnalyzer(config.Sensitivity, deps.Catalog, deps.Log)
	if err != nil {
		return nil, err
	}

	return &Harness{
		config:      config,
		deps:        deps,
		feasibility: fa,
		ranker:      ranker,
		evaluator:   evaluator,
		suggester:   suggester,
		sweeper:     sweeper,
	}, nil
}

// #endregion deps

// #region analyze-expression

// AnalyzeExpression runs the full diagnosis: branch enumeration, per-branch
// reachability against every referenced prototype, empirical clause
// feasibility, fit leaderboards, and threshold sensitivity for whatever
// blocks the expression.
func (h *Harness) AnalyzeExpression(expr logic.Expression, contexts []snapshot.Snapshot) (*ExpressionReport, error) {
	start := time.Now()

	report := &ExpressionReport{ExpressionID: expr.ID, Verdict: "no_branches"}

	enum := reach.EnumerateBranches(expr, h.deps.Catalog, h.config.Reach, h.deps.Log)
	report.TotalPaths = enum.TotalPaths
	report.Truncated = enum.Truncated

	anyReachable := false
	for i := range enum.Branches {
		b := enum.Branches[i]
		reach.AugmentWithGates(&b, h.deps.Registry, h.deps.Catalog)
		br := h.analyzeBranch(b, contexts)
		if br.Reachable {
			anyReachable = true
		}
		report.Branches = append(report.Branches, br)
	}
	if len(report.Branches) > 0 {
		if anyReachable {
			report.Verdict = "reachable"
		} else {
			report.Verdict = "unreachable"
		}
	}

	clauses := logic.ExtractNonAxisClauses(expr.Prerequisites, h.deps.Log)
	report.ClauseResults = h.feasibility.Analyze(clauses, contexts, expr.ID)

	blockers := h.blockersFrom(clauses, report.ClauseResults)
	if len(blockers) > 0 {
		report.SensitivityData = h.sweeper.ComputeSensitivityData(contexts, blockers)
		report.GlobalData = h.sweeper.ComputeGlobalSensitivityData(expr, contexts, blockers)
	}

	report.Elapsed = time.Since(start)
	h.record(expr.ID, report.Verdict, report)
	return report, nil
}

// analyzeBranch resolves each prototype requirement in the branch and grades
// its reachability. Unresolved references are reported, not fatal.
func (h *Harness) analyzeBranch(b reach.Branch, contexts []snapshot.Snapshot) BranchReport {
	br := BranchReport{
		Index:         b.Index,
		AxisIntervals: b.AxisIntervals,
		Reachable:     true,
	}

	for _, leaf := range b.Leaves {
		if leaf.Kind != logic.KindCompare || axis.IsAxisPath(leaf.VarPath) {
			continue
		}
		req := Requirement{Ref: leaf.VarPath, Op: leaf.Op, Threshold: leaf.Threshold}
		p, ok := h.deps.Registry.Resolve(leaf.VarPath)
		if !ok {
			req.Unresolved = true
			h.deps.Log.Warn("prototype reference unresolved",
				"ref", leaf.VarPath, "branch", b.Index)
			br.Requirements = append(br.Requirements, req)
			continue
		}
		r := reach.ComputeReachability(b, p, leaf.Op, leaf.Threshold, h.deps.Catalog)
		req.Reachability = &r
		if !r.Reachable {
			br.Reachable = false
		}
		br.Requirements = append(br.Requirements, req)
	}

	if threshold, ok := h.dominantThreshold(br.Requirements); ok {
		protos := h.deps.Registry.Table(prototype.KeyEmotionPrototypes)
		protos = append(protos, h.deps.Registry.Table(prototype.KeySexualPrototypes)...)
		br.Leaderboard = h.ranker.AnalyzeAll(protos, contexts, b.AxisIntervals, threshold)
	}
	return br
}

// dominantThreshold picks the highest high-direction requirement in the
// branch as the leaderboard's intensity bar. Branches with no positive
// requirement skip the leaderboard.
func (h *Harness) dominantThreshold(reqs []Requirement) (float64, bool) {
	best, found := 0.0, false
	for _, r := range reqs {
		if r.Op.IsHighDirection() && r.Threshold > best {
			best, found = r.Threshold, true
		}
	}
	return best, found
}

// blockersFrom pairs non-OK clause verdicts with their clauses for the
// sensitivity sweep.
func (h *Harness) blockersFrom(clauses []logic.Clause, results []feasibility.Result) []sensitivity.Blocker {
	byPath := make(map[string]logic.Clause, len(clauses))
	for _, c := range clauses {
		byPath[fmt.Sprintf("%s|%s|%g", c.VarPath, c.Op, c.Threshold)] = c
	}

	var blockers []sensitivity.Blocker
	for _, r := range results {
		if r.Classification == feasibility.ClassOK {
			continue
		}
		key := fmt.Sprintf("%s|%s|%g", r.VarPath, r.Op, r.Threshold)
		c, ok := byPath[key]
		if !ok {
			continue
		}
		blockers = append(blockers, sensitivity.Blocker{Clause: c, Feasibility: r})
	}
	sort.SliceStable(blockers, func(i, j int) bool {
		return blockers[i].Clause.SourcePath < blockers[j].Clause.SourcePath
	})
	return blockers
}

// #endregion analyze-expression

// #region compare-prototypes

// ComparePrototypes runs the Monte Carlo comparison for two prototype
// references (e.g. "emotions.joy"), classifies the overlap, and generates
// separation suggestions.
func (h *Harness) ComparePrototypes(refA, refB string) (*ComparisonReport, error) {
	start := time.Now()

	a, ok := h.deps.Registry.Resolve(refA)
	if !ok {
		return nil, &prototype.RefError{Ref: refA}
	}
	b, ok := h.deps.Registry.Resolve(refB)
	if !ok {
		return nil, &prototype.RefError{Ref: refB}
	}

	metrics := h.evaluator.Evaluate(a, b)
	class := recommend.Classify(&metrics, h.config.Recommend)
	rec := recommend.BuildRecommendation(a.ID, b.ID, class, &metrics)

	pool := make([]snapshot.Snapshot, h.config.Overlap.SampleCount)
	for i := range pool {
		pool[i] = h.deps.Generator.Next()
	}
	suggestions := h.suggester.GenerateSuggestions(a, b, pool, class)

	report := &ComparisonReport{
		PrototypeA:     a.ID,
		PrototypeB:     b.ID,
		Classification: class,
		Recommendation: rec,
		Suggestions:    suggestions,
		Elapsed:        time.Since(start),
	}
	h.record(fmt.Sprintf("%s~%s", refA, refB), string(class), report)
	return report, nil
}

// #endregion compare-prototypes

// #region provenance

// record persists the run when a run log is configured. Persistence failure
// is logged, never propagated: losing a provenance row must not fail a
// diagnosis.
func (h *Harness) record(subject, verdict string, report any) {
	if h.deps.RunLog == nil {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		h.deps.Log.Error("marshal report for provenance", "subject", subject, "error", err.Error())
		return
	}
	if _, err := h.deps.RunLog.Record(provenance.Run{
		ExpressionID: subject,
		Verdict:      verdict,
		ReportJSON:   string(data),
	}); err != nil {
		h.deps.Log.Error("record provenance run", "subject", subject, "error", err.Error())
	}
}

// #endregion provenance
