package prototype

import (
	"math"
	"testing"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/axis"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/logging"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/snapshot"
)

func moodSnapshot(vals map[string]float64) snapshot.Snapshot {
	return snapshot.Snapshot{Frame: snapshot.Frame{MoodAxes: vals}}
}

func TestIntensityNegativeWeightOnNegativeValue(t *testing.T) {
	// weights {valence: -1} with valence=-50 (normalized -0.5) yields 0.5.
	p := New("distress", TypeEmotion, map[string]float64{"valence": -1}, nil, logging.Nop())
	got := p.Intensity(moodSnapshot(map[string]float64{"valence": -50}), axis.DefaultCatalog())
	if math.Abs(got-0.5) > 1e-12 {
		t.Errorf("intensity = %v, want 0.5", got)
	}
}

func TestIntensityClampsNegativeRawSum(t *testing.T) {
	p := New("joy", TypeEmotion, map[string]float64{"valence": 1}, nil, logging.Nop())
	got := p.Intensity(moodSnapshot(map[string]float64{"valence": -80}), axis.DefaultCatalog())
	if got != 0 {
		t.Errorf("intensity = %v, want 0 (clamped)", got)
	}
	if math.IsNaN(got) {
		t.Error("intensity must never be NaN")
	}
}

func TestIntensityMixedWeights(t *testing.T) {
	p := New("joy", TypeEmotion, map[string]float64{"valence": 2, "threat": -1}, nil, logging.Nop())
	// valence 50 → 0.5·2 = 1.0; threat -40 → -0.4·-1 = 0.4; raw 1.4; Σ|w| = 3.
	got := p.Intensity(moodSnapshot(map[string]float64{"valence": 50, "threat": -40}), axis.DefaultCatalog())
	want := 1.4 / 3.0
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("intensity = %v, want %v", got, want)
	}
}

func TestIntensityMissingAxisContributesZero(t *testing.T) {
	p := New("joy", TypeEmotion, map[string]float64{"valence": 1, "arousal": 1}, nil, logging.Nop())
	// arousal absent: numerator only gets valence, denominator keeps both.
	got := p.Intensity(moodSnapshot(map[string]float64{"valence": 100}), axis.DefaultCatalog())
	if math.Abs(got-0.5) > 1e-12 {
		t.Errorf("intensity = %v, want 0.5", got)
	}
}

func TestIntensityZeroWeights(t *testing.T) {
	p := New("empty", TypeEmotion, nil, nil, logging.Nop())
	if got := p.Intensity(moodSnapshot(map[string]float64{"valence": 50}), axis.DefaultCatalog()); got != 0 {
		t.Errorf("intensity = %v, want 0 for weightless prototype", got)
	}
}

func TestPassesGates(t *testing.T) {
	p := New("joy", TypeEmotion, map[string]float64{"valence": 1},
		[]string{"valence >= 20", "threat < 50"}, logging.Nop())

	if !p.PassesGates(moodSnapshot(map[string]float64{"valence": 30, "threat": 10})) {
		t.Error("gates should pass")
	}
	if p.PassesGates(moodSnapshot(map[string]float64{"valence": 10, "threat": 10})) {
		t.Error("valence gate should fail")
	}
	// missing threat value is permissive
	if !p.PassesGates(moodSnapshot(map[string]float64{"valence": 30})) {
		t.Error("missing axis should not block gates")
	}
}

func TestUnparsedGatesNeverBlock(t *testing.T) {
	log := logging.NewCapture()
	p := New("joy", TypeEmotion, map[string]float64{"valence": 1},
		[]string{"!!not a gate!!"}, log)

	if !p.PassesGates(moodSnapshot(map[string]float64{"valence": -100})) {
		t.Error("unparsed gate must be trivially satisfiable")
	}
	if p.GateParseInfo().Status != "failed" {
		t.Errorf("parse status = %s, want failed", p.GateParseInfo().Status)
	}
	if !log.Contains("warn", "unparsed gate") {
		t.Error("expected unparsed gate warning")
	}
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()
	joy := New("joy", TypeEmotion, map[string]float64{"valence": 1}, nil, logging.Nop())
	aroused := New("aroused", TypeSexual, map[string]float64{"sex_excitation": 1}, nil, logging.Nop())
	r.Register(KeyEmotionPrototypes, joy)
	r.Register(KeySexualPrototypes, aroused)

	if p, ok := r.Resolve("emotions.joy"); !ok || p.ID != "joy" {
		t.Errorf("Resolve(emotions.joy) = (%v, %v)", p, ok)
	}
	if p, ok := r.Resolve("sexualStates.aroused"); !ok || p.ID != "aroused" {
		t.Errorf("Resolve(sexualStates.aroused) = (%v, %v)", p, ok)
	}
	if _, ok := r.Resolve("emotions.missing"); ok {
		t.Error("unknown prototype should not resolve")
	}
	if _, ok := r.Resolve("moodAxes.valence"); ok {
		t.Error("axis path should not resolve to a prototype")
	}
}

func TestRegistryTableOrdering(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"c", "a", "b"} {
		r.Register(KeyEmotionPrototypes, New(id, TypeEmotion, nil, nil, logging.Nop()))
	}
	table := r.Table(KeyEmotionPrototypes)
	if len(table) != 3 || table[0].ID != "a" || table[1].ID != "b" || table[2].ID != "c" {
		t.Errorf("table order = %v", []string{table[0].ID, table[1].ID, table[2].ID})
	}
}
