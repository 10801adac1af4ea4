package fixture

import (
	"path/filepath"
	"testing"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/logging"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/prototype"
)

func sampleFixture() *Fixture {
	return &Fixture{
		Description: "joy reachability case",
		Expression: FixtureExpression{
			ID: "expr_smile",
			Prerequisites: []any{
				map[string]any{"logic": map[string]any{
					">=": []any{map[string]any{"var": "emotions.joy"}, 0.5},
				}},
			},
		},
		PrototypeTables: map[string][]FixturePrototype{
			prototype.KeyEmotionPrototypes: {
				{ID: "joy", Type: "emotion", Weights: map[string]float64{"valence": 1}, Gates: []string{"valence >= 10"}},
			},
		},
		Contexts: []FixtureContext{
			{
				Frame:    FixtureFrame{MoodAxes: map[string]float64{"valence": 40}, Emotions: map[string]float64{"joy": 0.6}},
				Previous: &FixtureFrame{Emotions: map[string]float64{"joy": 0.1}},
			},
			{Frame: FixtureFrame{MoodAxes: map[string]float64{"valence": -20}}},
		},
	}
}

func TestFixtureSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case.json")
	if err := SaveFixture(path, sampleFixture()); err != nil {
		t.Fatalf("SaveFixture: %v", err)
	}

	f, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if f.Description != "joy reachability case" {
		t.Errorf("description = %q", f.Description)
	}
	if f.Expression.ID != "expr_smile" || len(f.Expression.Prerequisites) != 1 {
		t.Errorf("expression = %+v", f.Expression)
	}
	if len(f.Contexts) != 2 || f.Contexts[0].Previous == nil || f.Contexts[1].Previous != nil {
		t.Errorf("contexts round-trip mismatch: %+v", f.Contexts)
	}
}

func TestLoadFixtureErrors(t *testing.T) {
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestToExpressionUnwrapsLogic(t *testing.T) {
	f := sampleFixture()
	e := f.Expression.ToExpression()
	if e.ID != "expr_smile" || len(e.Prerequisites) != 1 {
		t.Fatalf("expression = %+v", e)
	}
	if e.Prerequisites[0].Logic == nil {
		t.Fatal("wrapped logic tree must be unwrapped")
	}

	// bare trees (no "logic" wrapper) pass through unchanged
	bare := FixtureExpression{ID: "x", Prerequisites: []any{
		map[string]any{">=": []any{map[string]any{"var": "emotions.a"}, 0.1}},
	}}
	e = bare.ToExpression()
	if e.Prerequisites[0].Logic == nil {
		t.Fatal("bare tree must pass through")
	}
}

func TestToRegistry(t *testing.T) {
	reg := sampleFixture().ToRegistry(logging.Nop())
	p, ok := reg.Resolve("emotions.joy")
	if !ok {
		t.Fatal("joy should resolve from the fixture tables")
	}
	if p.Weights["valence"] != 1 || len(p.GateConstraints()) != 1 {
		t.Errorf("prototype = %+v", p)
	}
}

func TestToSnapshots(t *testing.T) {
	snaps := sampleFixture().ToSnapshots()
	if len(snaps) != 2 {
		t.Fatalf("snapshots = %d, want 2", len(snaps))
	}
	if v, ok := snaps[0].Lookup("previous.emotions.joy"); !ok || v != 0.1 {
		t.Errorf("previous frame lookup = %v (%v), want 0.1", v, ok)
	}
	if snaps[1].Previous != nil {
		t.Error("context without previous frame must stay nil")
	}
}

func tempStore(t *testing.T) *ContextStore {
	t.Helper()
	s, err := NewContextStore(filepath.Join(t.TempDir(), "pools.db"))
	if err != nil {
		t.Fatalf("NewContextStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestContextStoreRoundTrip(t *testing.T) {
	s := tempStore(t)
	snaps := sampleFixture().ToSnapshots()

	id, err := s.SavePool("", "unit pool", snaps)
	if err != nil {
		t.Fatalf("SavePool: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated pool ID")
	}

	loaded, err := s.LoadPool(id)
	if err != nil {
		t.Fatalf("LoadPool: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded = %d contexts, want 2", len(loaded))
	}
	if v, ok := loaded[0].Lookup("moodAxes.valence"); !ok || v != 40 {
		t.Errorf("valence = %v (%v), want 40", v, ok)
	}
	if v, ok := loaded[0].Lookup("previous.emotions.joy"); !ok || v != 0.1 {
		t.Errorf("previous joy = %v (%v), want 0.1", v, ok)
	}
	if loaded[1].Previous != nil {
		t.Error("nil previous frame must survive the round trip")
	}
}

func TestContextStoreListPools(t *testing.T) {
	s := tempStore(t)
	snaps := sampleFixture().ToSnapshots()

	if _, err := s.SavePool("pool-a", "first", snaps); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SavePool("pool-b", "second", snaps[:1]); err != nil {
		t.Fatal(err)
	}

	pools, err := s.ListPools(10)
	if err != nil {
		t.Fatalf("ListPools: %v", err)
	}
	if len(pools) != 2 {
		t.Fatalf("pools = %d, want 2", len(pools))
	}
	sizes := map[string]int{}
	for _, p := range pools {
		sizes[p.PoolID] = p.Size
	}
	if sizes["pool-a"] != 2 || sizes["pool-b"] != 1 {
		t.Errorf("sizes = %v", sizes)
	}
}
