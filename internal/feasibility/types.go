package feasibility

import "github.com/narrateworks/character-engine/go-diagnostics/internal/gate"

// #region classification

// Classification is the empirical verdict for one clause.
type Classification string

const (
	ClassOK                     Classification = "OK"
	ClassRare                   Classification = "RARE"
	ClassEmpiricallyUnreachable Classification = "EMPIRICALLY_UNREACHABLE" // observed ceiling below requirement
	ClassImpossible             Classification = "IMPOSSIBLE"
	ClassUnknown                Classification = "UNKNOWN" // no valid samples
)

// #endregion classification

// #region config

// Config holds feasibility thresholds. Tunable, never hard-coded at call sites.
type Config struct {
	RareThreshold float64 // pass rates in (0, RareThreshold) classify as RARE
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{RareThreshold: 0.001}
}

// #endregion config

// #region result

// SampleRef points at the best passing sample for a clause.
type SampleRef struct {
	Index int
	Value float64
}

// Evidence is the human-readable support attached to each result.
// BestSample is nil when no sample passed.
type Evidence struct {
	Note       string
	BestSample *SampleRef
}

// Result is the empirical verdict for one extracted clause.
type Result struct {
	VarPath        string
	Signal         string // "direct" | "delta"
	Op             gate.Op
	Threshold      float64
	PassRate       float64
	MaxValue       float64 // highest valid observation; NaN when no valid samples
	MinValue       float64 // lowest valid observation; NaN when no valid samples
	ValidCount     int
	PassCount      int
	Classification Classification
	Evidence       Evidence
}

// #endregion result
