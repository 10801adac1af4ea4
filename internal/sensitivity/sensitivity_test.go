package sensitivity

import (
	"math"
	"testing"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/axis"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/feasibility"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/gate"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/logging"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/logic"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/snapshot"
)

func mustAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(DefaultConfig(), axis.DefaultCatalog(), logging.Nop())
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	return a
}

func emoClause(path string, op gate.Op, threshold float64) logic.Clause {
	return logic.Clause{VarPath: path, Op: op, Threshold: threshold, Type: logic.ClauseEmotion}
}

func blocker(c logic.Clause, passRate float64) Blocker {
	return Blocker{Clause: c, Feasibility: feasibility.Result{VarPath: c.VarPath, PassRate: passRate}}
}

func joyPool(n int) []snapshot.Snapshot {
	pool := make([]snapshot.Snapshot, n)
	for i := range pool {
		pool[i] = snapshot.Snapshot{Frame: snapshot.Frame{
			Emotions: map[string]float64{"joy": float64(i) / float64(n-1)},
		}}
	}
	return pool
}

func TestComputeSensitivityDataGridShape(t *testing.T) {
	a := mustAnalyzer(t)
	grids := a.ComputeSensitivityData(joyPool(21), []Blocker{
		blocker(emoClause("emotions.joy", gate.OpGE, 0.5), 0.5),
	})

	if len(grids) != 1 {
		t.Fatalf("grids = %d, want 1", len(grids))
	}
	g := grids[0]
	if len(g.Points) != 21 {
		t.Fatalf("points = %d, want 21 (radius 10 each side plus center)", len(g.Points))
	}
	if g.Points[0].Threshold != 0.5-10*0.05 || g.Points[20].Threshold != 0.5+10*0.05 {
		t.Errorf("grid span = [%v, %v], want [0, 1]", g.Points[0].Threshold, g.Points[20].Threshold)
	}
	for _, pt := range g.Points {
		if pt.EffectiveThreshold != nil {
			t.Fatalf("float-domain points must omit effectiveThreshold, got %v at %v",
				*pt.EffectiveThreshold, pt.Threshold)
		}
	}
	// joy is uniform on [0,1]: pass rate falls as the threshold rises
	center := g.Points[10]
	if center.Threshold != 0.5 {
		t.Fatalf("center threshold = %v, want 0.5", center.Threshold)
	}
	if math.Abs(center.PassRate-11.0/21.0) > 1e-9 {
		t.Errorf("pass rate at 0.5 = %v, want 11/21", center.PassRate)
	}
	if g.Points[0].PassRate < g.Points[20].PassRate {
		t.Error("pass rate must not rise with a stricter >= threshold")
	}
	if g.IsNearMissPool {
		t.Error("nonzero baseline must keep the raw pool")
	}
}

func TestIntegerAxisGridStepsAndEffectiveThreshold(t *testing.T) {
	a := mustAnalyzer(t)

	pool := make([]snapshot.Snapshot, 60)
	for i := range pool {
		pool[i] = snapshot.Snapshot{Frame: snapshot.Frame{
			AffectTraits: map[string]float64{"harm_aversion": float64(i)},
		}}
	}

	grids := a.ComputeSensitivityData(pool, []Blocker{
		blocker(logic.Clause{VarPath: "affectTraits.harm_aversion", Op: gate.OpGE, Threshold: 50.5, Type: logic.ClauseOther}, 0.2),
	})
	g := grids[0]

	if got := g.Points[1].Threshold - g.Points[0].Threshold; got != 1 {
		t.Errorf("integer axis step = %v, want 1", got)
	}
	center := g.Points[10]
	if center.EffectiveThreshold == nil {
		t.Fatal("integer-domain points must carry effectiveThreshold")
	}
	if *center.EffectiveThreshold != 51 {
		t.Errorf("effectiveThreshold = %v, want ceil(50.5) = 51", *center.EffectiveThreshold)
	}

	grids = a.ComputeSensitivityData(pool, []Blocker{
		blocker(logic.Clause{VarPath: "affectTraits.harm_aversion", Op: gate.OpLE, Threshold: 50.5, Type: logic.ClauseOther}, 0.8),
	})
	eff := grids[0].Points[10].EffectiveThreshold
	if eff == nil || *eff != 50 {
		t.Errorf("effectiveThreshold = %v, want floor(50.5) = 50 for <=", eff)
	}
}

func TestBlockersDedupedByClauseKey(t *testing.T) {
	a := mustAnalyzer(t)
	c := emoClause("emotions.joy", gate.OpGE, 0.5)
	grids := a.ComputeSensitivityData(joyPool(21), []Blocker{
		blocker(c, 0.5), blocker(c, 0.5), blocker(emoClause("emotions.joy", gate.OpGE, 0.7), 0.3),
	})
	if len(grids) != 2 {
		t.Errorf("grids = %d, want 2 (duplicate clause collapses)", len(grids))
	}
}

func TestComputeGlobalSensitivityData(t *testing.T) {
	a := mustAnalyzer(t)

	// AND(joy >= t, fear >= 0.2): the joy sweep is bounded by fear's rate
	tree := map[string]any{"and": []any{
		map[string]any{">=": []any{map[string]any{"var": "emotions.joy"}, 0.5}},
		map[string]any{">=": []any{map[string]any{"var": "emotions.fear"}, 0.2}},
	}}
	e := logic.Expression{ID: "x", Prerequisites: []logic.Prerequisite{{Logic: tree}}}

	pool := make([]snapshot.Snapshot, 21)
	for i := range pool {
		v := float64(i) / 20
		pool[i] = snapshot.Snapshot{Frame: snapshot.Frame{
			Emotions: map[string]float64{"joy": v, "fear": v},
		}}
	}

	grids := a.ComputeGlobalSensitivityData(e, pool, []Blocker{
		blocker(emoClause("emotions.joy", gate.OpGE, 0.5), 0.5),
	})
	g := grids[0]

	// at swept threshold 0: joy >= 0 always holds, so the rate equals
	// fear >= 0.2 alone (17/21); at the base threshold both bind (11/21)
	if math.Abs(g.Points[0].PassRate-17.0/21.0) > 1e-9 {
		t.Errorf("rate at loosest point = %v, want 17/21", g.Points[0].PassRate)
	}
	if math.Abs(g.Points[10].PassRate-11.0/21.0) > 1e-9 {
		t.Errorf("rate at base = %v, want 11/21", g.Points[10].PassRate)
	}
}

func TestNearMissPoolSubstitution(t *testing.T) {
	a := mustAnalyzer(t)

	// joy never reaches 0.9 ⇒ baseline 0 with two blockers and a big pool
	pool := make([]snapshot.Snapshot, 60)
	for i := range pool {
		pool[i] = snapshot.Snapshot{Frame: snapshot.Frame{
			Emotions: map[string]float64{"joy": 0.3, "fear": float64(i) / 59},
		}}
	}
	hard := blocker(emoClause("emotions.joy", gate.OpGE, 0.9), 0)
	soft := blocker(emoClause("emotions.fear", gate.OpGE, 0.5), 0.5)

	grids := a.ComputeSensitivityData(pool, []Blocker{hard, soft})
	byPath := map[string]Grid{}
	for _, g := range grids {
		byPath[g.VarPath] = g
	}

	fearGrid := byPath["emotions.fear"]
	if !fearGrid.IsNearMissPool {
		t.Fatal("zero baseline with multiple blockers and a large pool must switch to near-miss sampling")
	}
	if len(fearGrid.ExcludedBlockers) != 1 {
		t.Errorf("excludedBlockers = %v, want the hard joy blocker", fearGrid.ExcludedBlockers)
	}
}

func TestNearMissFallsBackSilentlyOnSmallPool(t *testing.T) {
	a := mustAnalyzer(t)

	pool := make([]snapshot.Snapshot, 20) // below the 50-context floor
	for i := range pool {
		pool[i] = snapshot.Snapshot{Frame: snapshot.Frame{
			Emotions: map[string]float64{"joy": 0.3, "fear": float64(i) / 19},
		}}
	}
	grids := a.ComputeSensitivityData(pool, []Blocker{
		blocker(emoClause("emotions.joy", gate.OpGE, 0.9), 0),
		blocker(emoClause("emotions.fear", gate.OpGE, 0.5), 0.5),
	})
	for _, g := range grids {
		if g.IsNearMissPool || g.ExcludedBlockers != nil {
			t.Errorf("small pool must fall back to the raw population: %+v", g)
		}
	}
}
