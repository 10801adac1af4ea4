// Package overlap compares two prototypes' gate and intensity behavior over
// Monte Carlo sampled states: how often they activate together, how similar
// their intensities are, and whether one prototype's gates deterministically
// imply the other's.
package overlap

import (
	"fmt"
	"math"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/axis"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/gate"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/logging"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/prototype"
)

// #region config

// Config bounds one comparison run.
type Config struct {
	SampleCount            int
	EpsilonBand            float64   // |iA-iB| <= EpsilonBand counts as "within band"
	CoactivationThresholds []float64 // intensity levels for the coactivation ladder
}

// DefaultConfig returns the standard Monte Carlo settings.
func DefaultConfig() Config {
	return Config{
		SampleCount:            5000,
		EpsilonBand:            0.1,
		CoactivationThresholds: []float64{0.3, 0.5, 0.7},
	}
}

// #endregion config

// #region metrics

// GateOverlap summarizes joint gate-activation behavior.
type GateOverlap struct {
	OnEitherRate float64
	OnBothRate   float64
	POnlyRate    float64
	QOnlyRate    float64
	Jaccard      float64 // onBoth / onEither; 0 when neither ever activates
}

// Intensity summarizes pairwise intensity similarity.
type Intensity struct {
	PearsonCorrelation float64 // NaN when either series has zero variance
	MeanAbsDiff        float64
	RMSE               float64
	WithinEpsilonRate  float64
	ADominanceRate     float64
	BDominanceRate     float64
}

// PassRates holds conditional activation probabilities.
type PassRates struct {
	AGivenB     float64
	BGivenA     float64
	CoPassCount int
}

// CoactivationPoint is one rung of the coactivation ladder: the rate at which
// both intensities meet or exceed the threshold simultaneously.
type CoactivationPoint struct {
	Threshold float64
	Rate      float64
}

// Implication is a deterministic gate-subsumption claim.
type Implication struct {
	Direction          string // "A_implies_B" | "B_implies_A" | "none"
	Confidence         float64
	CounterExampleAxes []string
}

// Metrics is the full comparison result. GateImplication is nil unless both
// prototypes' gate lists parsed completely.
type Metrics struct {
	GateOverlap      GateOverlap
	Intensity        Intensity
	PassRates        PassRates
	HighCoactivation []CoactivationPoint
	GateImplication  *Implication
	GateParseInfoA   gate.ParseInfo
	GateParseInfoB   gate.ParseInfo
}

// #endregion metrics

// #region evaluator

// Evaluator runs Monte Carlo prototype comparisons.
type Evaluator struct {
	config Config
	gen    Generator
	cat    *axis.Catalog
	log    logging.Logger
}

// NewEvaluator fails fast when a collaborator is missing.
func NewEvaluator(config Config, gen Generator, cat *axis.Catalog, log logging.Logger) (*Evaluator, error) {
	if gen == nil {
		return nil, fmt.Errorf("overlap: state generator is required")
	}
	if cat == nil {
		return nil, fmt.Errorf("overlap: axis catalog is required")
	}
	if log == nil {
		return nil, fmt.Errorf("overlap: logger is required")
	}
	if config.SampleCount <= 0 {
		config.SampleCount = DefaultConfig().SampleCount
	}
	if config.EpsilonBand <= 0 {
		config.EpsilonBand = DefaultConfig().EpsilonBand
	}
	if len(config.CoactivationThresholds) == 0 {
		config.CoactivationThresholds = DefaultConfig().CoactivationThresholds
	}
	return &Evaluator{config: config, gen: gen, cat: cat, log: log}, nil
}

// Evaluate samples config.SampleCount states and computes the full metric
// set for the pair.
func (e *Evaluator) Evaluate(a, b *prototype.Prototype) Metrics {
	n := e.config.SampleCount

	iA := make([]float64, n)
	iB := make([]float64, n)
	onA := make([]bool, n)
	onB := make([]bool, n)

	for i := 0; i < n; i++ {
		s := e.gen.Next()
		onA[i] = a.PassesGates(s)
		onB[i] = b.PassesGates(s)
		iA[i] = a.Intensity(s, e.cat)
		iB[i] = b.Intensity(s, e.cat)
	}

	m := Metrics{
		GateOverlap:      gateOverlap(onA, onB),
		Intensity:        e.intensity(iA, iB),
		PassRates:        passRates(onA, onB),
		HighCoactivation: e.coactivation(iA, iB),
		GateParseInfoA:   a.GateParseInfo(),
		GateParseInfoB:   b.GateParseInfo(),
	}

	// A partial or failed parse must never back a deterministic nesting claim.
	if m.GateParseInfoA.Status == gate.ParseComplete && m.GateParseInfoB.Status == gate.ParseComplete {
		m.GateImplication = e.implication(a, b, onA, onB)
	} else {
		e.log.Warn("gate implication skipped: incomplete gate parse",
			"a", a.ID, "aStatus", string(m.GateParseInfoA.Status),
			"b", b.ID, "bStatus", string(m.GateParseInfoB.Status))
	}
	return m
}

// #endregion evaluator

// #region gate-metrics

func gateOverlap(onA, onB []bool) GateOverlap {
	var either, both, aOnly, bOnly int
	for i := range onA {
		switch {
		case onA[i] && onB[i]:
			both++
			either++
		case onA[i]:
			aOnly++
			either++
		case onB[i]:
			bOnly++
			either++
		}
	}
	n := float64(len(onA))
	g := GateOverlap{
		OnEitherRate: float64(either) / n,
		OnBothRate:   float64(both) / n,
		POnlyRate:    float64(aOnly) / n,
		QOnlyRate:    float64(bOnly) / n,
	}
	if either > 0 {
		g.Jaccard = float64(both) / float64(either)
	}
	return g
}

func passRates(onA, onB []bool) PassRates {
	var aCount, bCount, both int
	for i := range onA {
		if onA[i] {
			aCount++
		}
		if onB[i] {
			bCount++
		}
		if onA[i] && onB[i] {
			both++
		}
	}
	pr := PassRates{CoPassCount: both}
	if bCount > 0 {
		pr.AGivenB = float64(both) / float64(bCount)
	}
	if aCount > 0 {
		pr.BGivenA = float64(both) / float64(aCount)
	}
	return pr
}

// #endregion gate-metrics

// #region intensity-metrics

func (e *Evaluator) intensity(iA, iB []float64) Intensity {
	n := len(iA)
	var sumAbs, sumSq float64
	var within, aDom, bDom int
	for i := 0; i < n; i++ {
		d := iA[i] - iB[i]
		sumAbs += math.Abs(d)
		sumSq += d * d
		if math.Abs(d) <= e.config.EpsilonBand {
			within++
		}
		if d > 0 {
			aDom++
		} else if d < 0 {
			bDom++
		}
	}
	fn := float64(n)
	return Intensity{
		PearsonCorrelation: pearson(iA, iB),
		MeanAbsDiff:        sumAbs / fn,
		RMSE:               math.Sqrt(sumSq / fn),
		WithinEpsilonRate:  float64(within) / fn,
		ADominanceRate:     float64(aDom) / fn,
		BDominanceRate:     float64(bDom) / fn,
	}
}

// pearson returns NaN when either series is constant: correlation against a
// flat signal is undefined, not zero.
func pearson(x, y []float64) float64 {
	n := float64(len(x))
	var sx, sy float64
	for i := range x {
		sx += x[i]
		sy += y[i]
	}
	mx, my := sx/n, sy/n

	var cov, vx, vy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(vx*vy)
}

func (e *Evaluator) coactivation(iA, iB []float64) []CoactivationPoint {
	points := make([]CoactivationPoint, 0, len(e.config.CoactivationThresholds))
	n := float64(len(iA))
	for _, th := range e.config.CoactivationThresholds {
		count := 0
		for i := range iA {
			if iA[i] >= th && iB[i] >= th {
				count++
			}
		}
		points = append(points, CoactivationPoint{Threshold: th, Rate: float64(count) / n})
	}
	return points
}

// #endregion intensity-metrics
