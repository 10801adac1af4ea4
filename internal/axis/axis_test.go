package axis

import "testing"

func TestNormalizeMoodRange(t *testing.T) {
	c := DefaultCatalog()
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"valence", -100, -1},
		{"valence", 0, 0},
		{"valence", 100, 1},
		{"valence", -50, -0.5},
		{"valence", 250, 1},  // clamped
		{"valence", -250, -1}, // clamped
	}
	for _, tc := range cases {
		if got := c.Normalize(tc.name, tc.in); got != tc.want {
			t.Errorf("Normalize(%s, %v) = %v, want %v", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestNormalizeUnitRange(t *testing.T) {
	c := DefaultCatalog()
	if got := c.Normalize("sex_excitation", 50); got != 0.5 {
		t.Errorf("sexual axis Normalize(50) = %v, want 0.5", got)
	}
	if got := c.Normalize("harm_aversion", 100); got != 1 {
		t.Errorf("trait Normalize(100) = %v, want 1", got)
	}
	if got := c.Normalize("harm_aversion", -10); got != 0 {
		t.Errorf("trait Normalize(-10) = %v, want 0 (clamped)", got)
	}
}

func TestIntegerDomainFlags(t *testing.T) {
	c := DefaultCatalog()
	if !c.IsInteger("harm_aversion") {
		t.Error("expected harm_aversion to be integer-domain")
	}
	if c.IsInteger("valence") {
		t.Error("expected valence to be continuous")
	}
	if c.IsInteger("unknown_axis") {
		t.Error("unknown axis should default to continuous")
	}
}

func TestIsAxisPath(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"moodAxes.valence", true},
		{"mood.valence", true},
		{"sexualAxes.sex_excitation", true},
		{"affectTraits.harm_aversion", true},
		{"previous.moodAxes.valence", true},
		{"emotions.joy", false},
		{"sexualStates.aroused", false},
		{"previous.emotions.joy", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsAxisPath(tc.path); got != tc.want {
			t.Errorf("IsAxisPath(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestStripNamespace(t *testing.T) {
	if got := StripNamespace("moodAxes.valence"); got != "valence" {
		t.Errorf("StripNamespace = %q, want valence", got)
	}
	if got := StripNamespace("previous.affectTraits.harm_aversion"); got != "harm_aversion" {
		t.Errorf("StripNamespace = %q, want harm_aversion", got)
	}
	if got := StripNamespace("valence"); got != "valence" {
		t.Errorf("bare name should pass through, got %q", got)
	}
}

func TestAllEnumeratesEveryDomain(t *testing.T) {
	c := DefaultCatalog()
	all := c.All()
	want := len(c.MoodAxes()) + len(c.SexualAxes()) + len(c.AffectTraits())
	if len(all) != want {
		t.Fatalf("All() returned %d names, want %d", len(all), want)
	}
	seen := map[string]bool{}
	for _, n := range all {
		if seen[n] {
			t.Fatalf("duplicate axis %q in All()", n)
		}
		seen[n] = true
	}
}
