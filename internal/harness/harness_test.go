package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/axis"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/feasibility"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/logging"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/logic"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/prototype"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/provenance"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/snapshot"
)

func cmp(op, path string, threshold float64) map[string]any {
	return map[string]any{op: []any{map[string]any{"var": path}, threshold}}
}

func and(children ...any) map[string]any { return map[string]any{"and": children} }

func expr(id string, trees ...any) logic.Expression {
	prereqs := make([]logic.Prerequisite, len(trees))
	for i, tr := range trees {
		prereqs[i] = logic.Prerequisite{Logic: tr}
	}
	return logic.Expression{ID: id, Prerequisites: prereqs}
}

func testRegistry(log logging.Logger) *prototype.Registry {
	reg := prototype.NewRegistry()
	reg.Register(prototype.KeyEmotionPrototypes,
		prototype.New("joy", prototype.TypeEmotion,
			map[string]float64{"valence": 1}, []string{"valence >= 10"}, log),
		prototype.New("delight", prototype.TypeEmotion,
			map[string]float64{"valence": 1}, []string{"valence >= 15"}, log),
		prototype.New("dread", prototype.TypeEmotion,
			map[string]float64{"valence": -1, "threat": 1}, []string{"threat >= 30"}, log),
	)
	return reg
}

func testContexts(n int) []snapshot.Snapshot {
	out := make([]snapshot.Snapshot, n)
	for i := range out {
		frac := float64(i) / float64(n-1)
		out[i] = snapshot.Snapshot{Frame: snapshot.Frame{
			MoodAxes: map[string]float64{"valence": -100 + 200*frac, "threat": 100 * frac},
			Emotions: map[string]float64{"joy": frac},
		}}
	}
	return out
}

func mustHarness(t *testing.T, deps Deps) *Harness {
	t.Helper()
	h, err := New(DefaultConfig(), deps)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

func defaultDeps(log logging.Logger) Deps {
	return Deps{Log: log, Registry: testRegistry(log), Catalog: axis.DefaultCatalog()}
}

func TestNewFailsFastNamingMissingDependency(t *testing.T) {
	log := logging.Nop()
	cat := axis.DefaultCatalog()
	reg := testRegistry(log)

	tests := []struct {
		name string
		deps Deps
		want string
	}{
		{"missing logger", Deps{Registry: reg, Catalog: cat}, "logger"},
		{"missing registry", Deps{Log: log, Catalog: cat}, "registry"},
		{"missing catalog", Deps{Log: log, Registry: reg}, "catalog"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(DefaultConfig(), tc.deps)
			if err == nil {
				t.Fatal("expected construction error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q must name the missing dependency %q", err, tc.want)
			}
		})
	}
}

func TestAnalyzeExpressionReachable(t *testing.T) {
	h := mustHarness(t, defaultDeps(logging.Nop()))

	e := expr("expr_smile", and(
		cmp(">=", "emotions.joy", 0.5),
		cmp(">=", "moodAxes.valence", 20),
	))
	report, err := h.AnalyzeExpression(e, testContexts(100))
	if err != nil {
		t.Fatalf("AnalyzeExpression: %v", err)
	}

	if report.Verdict != "reachable" {
		t.Errorf("verdict = %s, want reachable", report.Verdict)
	}
	if report.TotalPaths != 1 || len(report.Branches) != 1 {
		t.Fatalf("paths = %d, branches = %d, want 1/1", report.TotalPaths, len(report.Branches))
	}
	b := report.Branches[0]
	if len(b.Requirements) != 1 || b.Requirements[0].Ref != "emotions.joy" {
		t.Fatalf("requirements = %+v", b.Requirements)
	}
	if b.Requirements[0].Reachability == nil || !b.Requirements[0].Reachability.Reachable {
		t.Errorf("joy should be reachable under valence >= 20: %+v", b.Requirements[0])
	}
	if len(b.Leaderboard) != 3 {
		t.Errorf("leaderboard = %d entries, want 3", len(b.Leaderboard))
	}
	if len(report.ClauseResults) != 1 || report.ClauseResults[0].VarPath != "emotions.joy" {
		t.Errorf("clauseResults = %+v", report.ClauseResults)
	}
}

func TestAnalyzeExpressionContradiction(t *testing.T) {
	h := mustHarness(t, defaultDeps(logging.Nop()))

	// valence <= 0 contradicts joy's own gate valence >= 10
	e := expr("expr_blocked", and(
		cmp(">=", "emotions.joy", 0.5),
		cmp("<=", "moodAxes.valence", 0),
	))
	report, err := h.AnalyzeExpression(e, testContexts(50))
	if err != nil {
		t.Fatal(err)
	}
	if report.Verdict != "unreachable" {
		t.Errorf("verdict = %s, want unreachable", report.Verdict)
	}
	r := report.Branches[0].Requirements[0].Reachability
	if r == nil || !r.Contradict {
		t.Errorf("expected gate contradiction, got %+v", r)
	}
}

func TestAnalyzeExpressionUnresolvedReferenceIsolated(t *testing.T) {
	log := logging.NewCapture()
	h := mustHarness(t, defaultDeps(log))

	e := expr("expr_ghost", cmp(">=", "emotions.ghost", 0.5))
	report, err := h.AnalyzeExpression(e, testContexts(20))
	if err != nil {
		t.Fatalf("unresolved reference must not abort the run: %v", err)
	}
	if len(report.Branches) != 1 || len(report.Branches[0].Requirements) != 1 {
		t.Fatalf("report = %+v", report)
	}
	if !report.Branches[0].Requirements[0].Unresolved {
		t.Error("requirement must be marked unresolved")
	}
	if !log.Contains("warn", "unresolved") {
		t.Errorf("unresolved reference must be logged, got %v", log.Entries())
	}
}

func TestAnalyzeExpressionSensitivityForBlockedClause(t *testing.T) {
	h := mustHarness(t, defaultDeps(logging.Nop()))

	// joy tops out below 0.9 in this pool, so the clause blocks
	e := expr("expr_rare", cmp(">=", "emotions.joy", 2.0))
	contexts := testContexts(60)
	report, err := h.AnalyzeExpression(e, contexts)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.ClauseResults) != 1 {
		t.Fatalf("clauseResults = %+v", report.ClauseResults)
	}
	if got := report.ClauseResults[0].Classification; got != feasibility.ClassEmpiricallyUnreachable {
		t.Errorf("classification = %s, want EMPIRICALLY_UNREACHABLE", got)
	}
	if len(report.SensitivityData) != 1 || len(report.GlobalData) != 1 {
		t.Errorf("sensitivity grids = %d/%d, want 1/1",
			len(report.SensitivityData), len(report.GlobalData))
	}
}

func TestAnalyzeExpressionNoBranches(t *testing.T) {
	h := mustHarness(t, defaultDeps(logging.Nop()))
	report, err := h.AnalyzeExpression(logic.Expression{ID: "empty"}, testContexts(10))
	if err != nil {
		t.Fatal(err)
	}
	if report.Verdict != "no_branches" {
		t.Errorf("verdict = %s, want no_branches", report.Verdict)
	}
}

func TestComparePrototypes(t *testing.T) {
	h := mustHarness(t, defaultDeps(logging.Nop()))

	report, err := h.ComparePrototypes("emotions.joy", "emotions.delight")
	if err != nil {
		t.Fatalf("ComparePrototypes: %v", err)
	}
	if report.PrototypeA != "joy" || report.PrototypeB != "delight" {
		t.Errorf("pair = %s/%s", report.PrototypeA, report.PrototypeB)
	}
	if report.Classification == "" || report.Recommendation.Type == "" {
		t.Errorf("classification and recommendation must be filled: %+v", report)
	}
	if report.Recommendation.Evidence.GateOverlap == nil {
		t.Error("evidence must carry the computed overlap metrics")
	}
}

func TestComparePrototypesUnknownReference(t *testing.T) {
	h := mustHarness(t, defaultDeps(logging.Nop()))
	if _, err := h.ComparePrototypes("emotions.joy", "emotions.nobody"); err == nil {
		t.Fatal("expected reference error")
	} else if !strings.Contains(err.Error(), "emotions.nobody") {
		t.Errorf("error must name the bad reference: %v", err)
	}
}

func TestAnalyzeExpressionRecordsProvenance(t *testing.T) {
	runLog, err := provenance.NewLog(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { runLog.Close() })

	deps := defaultDeps(logging.Nop())
	deps.RunLog = runLog
	h := mustHarness(t, deps)

	if _, err := h.AnalyzeExpression(expr("expr_smile", cmp(">=", "emotions.joy", 0.5)), testContexts(30)); err != nil {
		t.Fatal(err)
	}

	runs, err := runLog.List("expr_smile", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("recorded runs = %d, want 1", len(runs))
	}
	if runs[0].Verdict == "" || runs[0].ReportJSON == "" {
		t.Errorf("run must carry verdict and report: %+v", runs[0])
	}
}

func TestLoadTunables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tunables.yaml")
	doc := `
seed: 7
max_branches: 25
rare_threshold: 0.01
sample_count: 1234
near_miss_min_pool: 80
min_info_gain: 0.02
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadTunables(path)
	if err != nil {
		t.Fatalf("LoadTunables: %v", err)
	}
	if cfg.Seed != 7 || cfg.Reach.MaxBranches != 25 {
		t.Errorf("seed/maxBranches = %d/%d", cfg.Seed, cfg.Reach.MaxBranches)
	}
	if cfg.Feasibility.RareThreshold != 0.01 || cfg.Overlap.SampleCount != 1234 {
		t.Errorf("rare/samples = %v/%d", cfg.Feasibility.RareThreshold, cfg.Overlap.SampleCount)
	}
	if cfg.Sensitivity.NearMissMinPool != 80 || cfg.Suggestion.MinInfoGain != 0.02 {
		t.Errorf("nearMiss/minGain = %d/%v", cfg.Sensitivity.NearMissMinPool, cfg.Suggestion.MinInfoGain)
	}
	// untouched keys keep their defaults
	if cfg.Sensitivity.Step != 0.05 || cfg.Overlap.EpsilonBand != 0.1 {
		t.Errorf("defaults disturbed: %+v", cfg)
	}

	if _, err := LoadTunables(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
