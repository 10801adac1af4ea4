package recommend

import (
	"fmt"
	"math"
	"sort"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/axis"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/gate"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/logging"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/prototype"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/reach"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/snapshot"
)

// #region config

// SuggestionConfig bounds the decision-stump search.
type SuggestionConfig struct {
	MinSamplesPerAxis     int
	MaxSuggestionsPerPair int
	MinInfoGain           float64
	MinOverlapReduction   float64
	AxisRanges            map[string]reach.Interval // optional per-axis threshold clamp
}

// DefaultSuggestionConfig returns the standard stump-search settings.
func DefaultSuggestionConfig() SuggestionConfig {
	return SuggestionConfig{
		MinSamplesPerAxis:     20,
		MaxSuggestionsPerPair: 3,
		MinInfoGain:           0.01,
		MinOverlapReduction:   0.05,
	}
}

// #endregion config

// #region suggestion

// Suggestion is one proposed gate addition that would pull a pair apart.
type Suggestion struct {
	Axis                     string
	Op                       gate.Op
	Threshold                float64
	TargetPrototype          string
	OverlapReductionEstimate float64
	ActivationImpactEstimate float64 // signed: negative means the target activates less often
	InfoGain                 float64
	IsValid                  bool
	ValidationMessages       []string
}

// #endregion suggestion

// #region engine

// SuggestionEngine fits single-threshold decision stumps that separate two
// prototypes' activation patterns.
type SuggestionEngine struct {
	config SuggestionConfig
	cat    *axis.Catalog
	log    logging.Logger
}

// NewSuggestionEngine fails fast when a collaborator is missing.
func NewSuggestionEngine(config SuggestionConfig, cat *axis.Catalog, log logging.Logger) (*SuggestionEngine, error) {
	if cat == nil {
		return nil, fmt.Errorf("recommend: axis catalog is required")
	}
	if log == nil {
		return nil, fmt.Errorf("recommend: logger is required")
	}
	if config.MinSamplesPerAxis <= 0 {
		config.MinSamplesPerAxis = DefaultSuggestionConfig().MinSamplesPerAxis
	}
	if config.MaxSuggestionsPerPair <= 0 {
		config.MaxSuggestionsPerPair = DefaultSuggestionConfig().MaxSuggestionsPerPair
	}
	return &SuggestionEngine{config: config, cat: cat, log: log}, nil
}

// GenerateSuggestions fits one stump per candidate axis over the pool's
// exclusive activations (contexts where exactly one prototype's gates pass),
// then keeps the strongest few that clear the info-gain and
// overlap-reduction floors.
func (e *SuggestionEngine) GenerateSuggestions(a, b *prototype.Prototype, pool []snapshot.Snapshot, hint Classification) []Suggestion {
	var aOnly, bOnly, coActive []snapshot.Snapshot
	for _, ctx := range pool {
		pa, pb := a.PassesGates(ctx), b.PassesGates(ctx)
		switch {
		case pa && pb:
			coActive = append(coActive, ctx)
		case pa:
			aOnly = append(aOnly, ctx)
		case pb:
			bOnly = append(bOnly, ctx)
		}
	}
	if len(aOnly) == 0 || len(bOnly) == 0 {
		e.log.Debug("no exclusive activations to separate",
			"a", a.ID, "b", b.ID, "hint", string(hint))
		return nil
	}

	var out []Suggestion
	for _, name := range e.cat.All() {
		s, ok := e.fitStump(name, a, b, aOnly, bOnly, coActive)
		if !ok {
			continue
		}
		if s.InfoGain < e.config.MinInfoGain || s.OverlapReductionEstimate < e.config.MinOverlapReduction {
			continue
		}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].InfoGain != out[j].InfoGain {
			return out[i].InfoGain > out[j].InfoGain
		}
		return out[i].Axis < out[j].Axis
	})
	if len(out) > e.config.MaxSuggestionsPerPair {
		out = out[:e.config.MaxSuggestionsPerPair]
	}
	return out
}

// #endregion engine

// #region stump

type labeledValue struct {
	value float64
	isA   bool
}

// fitStump finds the threshold on one axis that best separates A-only from
// B-only activations by information gain.
func (e *SuggestionEngine) fitStump(name string, a, b *prototype.Prototype, aOnly, bOnly, coActive []snapshot.Snapshot) (Suggestion, bool) {
	samples := make([]labeledValue, 0, len(aOnly)+len(bOnly))
	for _, ctx := range aOnly {
		if v, ok := ctx.Axis(name); ok {
			samples = append(samples, labeledValue{v, true})
		}
	}
	for _, ctx := range bOnly {
		if v, ok := ctx.Axis(name); ok {
			samples = append(samples, labeledValue{v, false})
		}
	}
	if len(samples) < e.config.MinSamplesPerAxis {
		return Suggestion{}, false
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].value < samples[j].value })

	totalA := 0
	for _, s := range samples {
		if s.isA {
			totalA++
		}
	}
	baseEntropy := entropy(totalA, len(samples)-totalA)
	if baseEntropy == 0 {
		return Suggestion{}, false
	}

	bestGain, bestThreshold := 0.0, math.NaN()
	var bestAHigh bool
	leftA, leftB := 0, 0
	for i := 0; i < len(samples)-1; i++ {
		if samples[i].isA {
			leftA++
		} else {
			leftB++
		}
		if samples[i].value == samples[i+1].value {
			continue
		}
		left := leftA + leftB
		right := len(samples) - left
		rightA := totalA - leftA
		rightB := len(samples) - totalA - leftB

		cond := (float64(left)*entropy(leftA, leftB) + float64(right)*entropy(rightA, rightB)) / float64(len(samples))
		if gain := baseEntropy - cond; gain > bestGain {
			bestGain = gain
			bestThreshold = (samples[i].value + samples[i+1].value) / 2
			// which side does A live on?
			bestAHigh = float64(rightA)/math.Max(float64(right), 1) > float64(leftA)/math.Max(float64(left), 1)
		}
	}
	if math.IsNaN(bestThreshold) {
		return Suggestion{}, false
	}

	s := Suggestion{
		Axis:            name,
		InfoGain:        bestGain,
		IsValid:         true,
		TargetPrototype: a.ID,
	}
	if bestAHigh {
		s.Op = gate.OpGE
	} else {
		s.Op = gate.OpLE
	}
	s.Threshold = bestThreshold

	if r, ok := e.config.AxisRanges[name]; ok {
		clamped := math.Min(math.Max(s.Threshold, r.Lo), r.Hi)
		if clamped != s.Threshold {
			s.ValidationMessages = append(s.ValidationMessages,
				fmt.Sprintf("threshold %.4f clamped to configured range [%g, %g]", s.Threshold, r.Lo, r.Hi))
			s.Threshold = clamped
		}
	}

	newGate := gate.Constraint{Axis: name, Op: s.Op, Threshold: s.Threshold}
	s.OverlapReductionEstimate = cutRate(newGate, coActive)
	s.ActivationImpactEstimate = -cutRate(newGate, append(append([]snapshot.Snapshot{}, aOnly...), coActive...))
	return s, true
}

// cutRate is the fraction of contexts the candidate gate would deactivate.
func cutRate(c gate.Constraint, contexts []snapshot.Snapshot) float64 {
	if len(contexts) == 0 {
		return 0
	}
	cut := 0
	for _, ctx := range contexts {
		if !c.EvalSnapshot(ctx) {
			cut++
		}
	}
	return float64(cut) / float64(len(contexts))
}

// entropy of a binary split, in bits.
func entropy(a, b int) float64 {
	n := a + b
	if n == 0 || a == 0 || b == 0 {
		return 0
	}
	pa := float64(a) / float64(n)
	pb := float64(b) / float64(n)
	return -pa*math.Log2(pa) - pb*math.Log2(pb)
}

// #endregion stump
