package gate

import (
	"testing"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/logging"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/snapshot"
)

func TestParseValidGates(t *testing.T) {
	cases := []struct {
		text string
		want Constraint
	}{
		{"valence >= 30", Constraint{Axis: "valence", Op: OpGE, Threshold: 30}},
		{"moodAxes.threat < 20", Constraint{Axis: "threat", Op: OpLT, Threshold: 20}},
		{"sexualAxes.sex_excitation>50", Constraint{Axis: "sex_excitation", Op: OpGT, Threshold: 50}},
		{"  arousal <= -12.5 ", Constraint{Axis: "arousal", Op: OpLE, Threshold: -12.5}},
		{"affectTraits.harm_aversion == 100", Constraint{Axis: "harm_aversion", Op: OpEQ, Threshold: 100}},
	}
	for _, tc := range cases {
		got, ok := Parse(tc.text)
		if !ok {
			t.Errorf("Parse(%q) failed, want %+v", tc.text, tc.want)
			continue
		}
		if got != tc.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tc.text, got, tc.want)
		}
	}
}

func TestParseMalformedGates(t *testing.T) {
	for _, text := range []string{
		"", "valence", ">= 30", "valence => 30", "valence >= ", "valence >= high",
		"valence >= 30 && threat < 5",
	} {
		if _, ok := Parse(text); ok {
			t.Errorf("Parse(%q) succeeded, want failure", text)
		}
	}
}

func TestParseAllStatuses(t *testing.T) {
	cases := []struct {
		name       string
		gates      []string
		wantStatus ParseStatus
		wantParsed int
	}{
		{"empty is complete", nil, ParseComplete, 0},
		{"all parsed", []string{"valence >= 30", "threat < 20"}, ParseComplete, 2},
		{"some parsed", []string{"valence >= 30", "???"}, ParsePartial, 1},
		{"none parsed", []string{"???", "!!!"}, ParseFailed, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			log := logging.NewCapture()
			constraints, info := ParseAll(tc.gates, log)
			if info.Status != tc.wantStatus {
				t.Errorf("status = %s, want %s", info.Status, tc.wantStatus)
			}
			if len(constraints) != tc.wantParsed || info.ParsedGateCount != tc.wantParsed {
				t.Errorf("parsed %d constraints (info says %d), want %d",
					len(constraints), info.ParsedGateCount, tc.wantParsed)
			}
			if info.TotalGateCount != len(tc.gates) {
				t.Errorf("TotalGateCount = %d, want %d", info.TotalGateCount, len(tc.gates))
			}
			wantUnparsed := len(tc.gates) - tc.wantParsed
			if len(info.UnparsedGates) != wantUnparsed {
				t.Errorf("UnparsedGates = %v, want %d entries", info.UnparsedGates, wantUnparsed)
			}
			if wantUnparsed > 0 && !log.Contains("warn", "unparsed gate") {
				t.Error("expected a warn log for unparsed gates")
			}
		})
	}
}

func TestEval(t *testing.T) {
	cases := []struct {
		c    Constraint
		v    float64
		want bool
	}{
		{Constraint{"valence", OpGE, 30}, 30, true},
		{Constraint{"valence", OpGE, 30}, 29.9, false},
		{Constraint{"valence", OpGT, 30}, 30, false},
		{Constraint{"valence", OpLE, 30}, 30, true},
		{Constraint{"valence", OpLT, 30}, 30, false},
		{Constraint{"valence", OpEQ, 30}, 30, true},
		{Constraint{"valence", OpEQ, 30}, 31, false},
	}
	for _, tc := range cases {
		if got := tc.c.Eval(tc.v); got != tc.want {
			t.Errorf("%+v.Eval(%v) = %v, want %v", tc.c, tc.v, got, tc.want)
		}
	}
}

func TestEvalSnapshotMissingAxisIsPermissive(t *testing.T) {
	s := snapshot.Snapshot{Frame: snapshot.Frame{
		MoodAxes: map[string]float64{"valence": 10},
	}}
	c := Constraint{Axis: "arousal", Op: OpGE, Threshold: 90}
	if !c.EvalSnapshot(s) {
		t.Error("missing axis should satisfy the gate")
	}
	c = Constraint{Axis: "valence", Op: OpGE, Threshold: 90}
	if c.EvalSnapshot(s) {
		t.Error("present axis below threshold should fail the gate")
	}
}

func TestConstraintInterval(t *testing.T) {
	cases := []struct {
		c      Constraint
		lo, hi float64
	}{
		{Constraint{"valence", OpGE, 30}, 30, 100},
		{Constraint{"valence", OpLT, 20}, -100, 20},
		{Constraint{"valence", OpEQ, 5}, 5, 5},
		{Constraint{"valence", OpGE, -200}, -100, 100}, // below native min
	}
	for _, tc := range cases {
		lo, hi := tc.c.Interval(-100, 100)
		if lo != tc.lo || hi != tc.hi {
			t.Errorf("%+v.Interval = [%v,%v], want [%v,%v]", tc.c, lo, hi, tc.lo, tc.hi)
		}
	}
}

func TestOpFlip(t *testing.T) {
	pairs := map[Op]Op{OpGE: OpLE, OpLE: OpGE, OpGT: OpLT, OpLT: OpGT, OpEQ: OpEQ}
	for in, want := range pairs {
		if got := in.Flip(); got != want {
			t.Errorf("%s.Flip() = %s, want %s", in, got, want)
		}
	}
}
