// Package snapshot defines the sampled simulation context analyzers read from.
// A Snapshot carries current and previous values for mood axes, sexual axes,
// affect traits, emotion intensities, and sexual-state intensities. Analyzers
// never mutate snapshots.
package snapshot

import "strings"

// #region frame

// Frame holds one tick's worth of simulation values.
type Frame struct {
	MoodAxes     map[string]float64
	SexualAxes   map[string]float64
	AffectTraits map[string]float64
	Emotions     map[string]float64
	SexualStates map[string]float64
}

// #endregion frame

// #region snapshot

// Snapshot is one sampled simulation context: the current frame plus an
// optional previous frame for delta clauses.
type Snapshot struct {
	Frame
	Previous *Frame
}

// #endregion snapshot

// #region lookup

// Lookup resolves a dotted var path such as "moodAxes.valence",
// "emotions.joy", or "previous.sexualStates.aroused". ok is false when the
// namespace is unknown, the key is absent, or "previous." is requested on a
// snapshot without a previous frame.
func (s Snapshot) Lookup(path string) (float64, bool) {
	frame := &s.Frame
	if rest, found := strings.CutPrefix(path, "previous."); found {
		if s.Previous == nil {
			return 0, false
		}
		frame = s.Previous
		path = rest
	}

	ns, key, found := strings.Cut(path, ".")
	if !found || key == "" {
		return 0, false
	}

	var m map[string]float64
	switch ns {
	case "moodAxes", "mood":
		m = frame.MoodAxes
	case "sexualAxes":
		m = frame.SexualAxes
	case "affectTraits":
		m = frame.AffectTraits
	case "emotions":
		m = frame.Emotions
	case "sexualStates":
		m = frame.SexualStates
	default:
		return 0, false
	}

	v, ok := m[key]
	return v, ok
}

// Axis resolves a bare axis name against the current frame, trying mood,
// sexual, and trait maps in that order.
func (s Snapshot) Axis(name string) (float64, bool) {
	if v, ok := s.MoodAxes[name]; ok {
		return v, true
	}
	if v, ok := s.SexualAxes[name]; ok {
		return v, true
	}
	if v, ok := s.AffectTraits[name]; ok {
		return v, true
	}
	return 0, false
}

// #endregion lookup
