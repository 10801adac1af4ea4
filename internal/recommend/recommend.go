// Package recommend turns behavioral overlap metrics into actionable
// recommendations: merge, subsume, separate, or keep prototypes distinct,
// plus concrete threshold-split suggestions to pull overlapping pairs apart.
package recommend

import (
	"fmt"
	"math"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/overlap"
)

// #region classification

// Classification is the internal verdict for a prototype pair.
type Classification string

const (
	ClassMerge               Classification = "merge"
	ClassMergeRecommended    Classification = "merge_recommended"
	ClassSubsumed            Classification = "subsumed"
	ClassSubsumedRecommended Classification = "subsumed_recommended"
	ClassNestedSiblings      Classification = "nested_siblings"
	ClassNeedsSeparation     Classification = "needs_separation"
	ClassKeepDistinct        Classification = "keep_distinct"
	ClassConvertToExpression Classification = "convert_to_expression"
	ClassNotRedundant        Classification = "not_redundant"
)

// Config holds the classification cut points.
type Config struct {
	MergeJaccard      float64 // joint activation overlap needed to consider merging
	MergeSimilarity   float64 // within-epsilon rate needed to consider merging
	StrongCorrelation float64 // Pearson level that upgrades merge to recommended
	SubsumeConfidence float64 // implication confidence needed for a subsumption call
	SeparationJaccard float64 // overlap above this with dissimilar intensity needs separation
	HighCoactivation  float64 // top-rung coactivation rate suggesting expression conversion
	DistinctJaccard   float64 // overlap at or below this is simply not redundant
}

// DefaultConfig returns the standard cut points.
func DefaultConfig() Config {
	return Config{
		MergeJaccard:      0.85,
		MergeSimilarity:   0.85,
		StrongCorrelation: 0.95,
		SubsumeConfidence: 0.99,
		SeparationJaccard: 0.5,
		HighCoactivation:  0.5,
		DistinctJaccard:   0.1,
	}
}

// #endregion classification

// #region classify

// Classify buckets a pair by its overlap metrics. Rules fire in priority
// order: near-identical behavior, deterministic nesting, high overlap with
// divergent intensity, then the residual buckets.
func Classify(m *overlap.Metrics, cfg Config) Classification {
	if m == nil {
		return ClassNotRedundant
	}

	jac := m.GateOverlap.Jaccard
	sim := m.Intensity.WithinEpsilonRate
	corr := m.Intensity.PearsonCorrelation

	if jac >= cfg.MergeJaccard && sim >= cfg.MergeSimilarity {
		if !math.IsNaN(corr) && corr >= cfg.StrongCorrelation {
			return ClassMergeRecommended
		}
		return ClassMerge
	}

	if imp := m.GateImplication; imp != nil && imp.Direction != "none" {
		if imp.Confidence >= cfg.SubsumeConfidence {
			if sim >= cfg.MergeSimilarity {
				return ClassSubsumedRecommended
			}
			return ClassSubsumed
		}
		return ClassNestedSiblings
	}

	if jac >= cfg.SeparationJaccard {
		if sim < cfg.MergeSimilarity {
			return ClassNeedsSeparation
		}
		if topCoactivation(m) >= cfg.HighCoactivation {
			return ClassConvertToExpression
		}
		return ClassKeepDistinct
	}

	if jac <= cfg.DistinctJaccard {
		return ClassNotRedundant
	}
	return ClassKeepDistinct
}

// topCoactivation returns the coactivation rate at the highest configured
// threshold, 0 when the ladder is absent.
func topCoactivation(m *overlap.Metrics) float64 {
	if len(m.HighCoactivation) == 0 {
		return 0
	}
	best := m.HighCoactivation[0]
	for _, pt := range m.HighCoactivation[1:] {
		if pt.Threshold > best.Threshold {
			best = pt
		}
	}
	return best.Rate
}

// #endregion classify

// #region recommendation

// Evidence is the always-complete support payload: numeric sources that were
// never computed stay NaN, arrays stay empty, nested objects stay nil.
type Evidence struct {
	PearsonCorrelation  float64
	GateOverlap         *overlap.GateOverlap
	PassRates           *overlap.PassRates
	IntensitySimilarity *overlap.Intensity
	HighCoactivation    []overlap.CoactivationPoint
	GateImplication     *overlap.Implication
}

// Recommendation is the external-facing verdict for a prototype pair.
type Recommendation struct {
	Type           string
	Classification Classification
	Actions        []string
	Evidence       Evidence
}

// externalType maps the internal classification to the coarse external type.
func externalType(c Classification) string {
	switch c {
	case ClassMerge, ClassMergeRecommended:
		return "merge"
	case ClassSubsumed, ClassSubsumedRecommended:
		return "subsume"
	case ClassNestedSiblings:
		return "nest"
	case ClassNeedsSeparation:
		return "separate"
	case ClassConvertToExpression:
		return "convert"
	case ClassKeepDistinct:
		return "keep"
	default:
		return "none"
	}
}

// BuildRecommendation assembles the external recommendation. It never
// panics: a nil or empty metrics object yields sentinel evidence.
func BuildRecommendation(idA, idB string, c Classification, m *overlap.Metrics) Recommendation {
	rec := Recommendation{
		Type:           externalType(c),
		Classification: c,
		Actions:        actions(idA, idB, c, m),
		Evidence: Evidence{
			PearsonCorrelation: math.NaN(),
			HighCoactivation:   []overlap.CoactivationPoint{},
		},
	}
	if m == nil {
		return rec
	}

	rec.Evidence.PearsonCorrelation = m.Intensity.PearsonCorrelation
	rec.Evidence.GateOverlap = &m.GateOverlap
	rec.Evidence.PassRates = &m.PassRates
	rec.Evidence.IntensitySimilarity = &m.Intensity
	rec.Evidence.GateImplication = m.GateImplication
	if m.HighCoactivation != nil {
		rec.Evidence.HighCoactivation = m.HighCoactivation
	}
	return rec
}

// actions writes the human-readable steps, naming the redundant prototype,
// the nesting direction, or the conversion hint.
func actions(idA, idB string, c Classification, m *overlap.Metrics) []string {
	switch c {
	case ClassMerge, ClassMergeRecommended:
		return []string{
			fmt.Sprintf("merge %s into %s; their gate and intensity behavior is near-identical", idB, idA),
			fmt.Sprintf("retire %s after migrating references", idB),
		}
	case ClassSubsumed, ClassSubsumedRecommended, ClassNestedSiblings:
		narrower, wider := idA, idB
		if m != nil && m.GateImplication != nil && m.GateImplication.Direction == "B_implies_A" {
			narrower, wider = idB, idA
		}
		out := []string{
			fmt.Sprintf("%s activates only when %s does; review whether %s earns its own prototype", narrower, wider, narrower),
		}
		if c != ClassNestedSiblings {
			out = append(out, fmt.Sprintf("fold %s into %s or sharpen its gates", narrower, wider))
		}
		return out
	case ClassNeedsSeparation:
		return []string{
			fmt.Sprintf("%s and %s co-activate heavily but diverge in intensity; add a separating gate", idA, idB),
		}
	case ClassConvertToExpression:
		return []string{
			fmt.Sprintf("%s and %s behave like one state with a modifier; consider converting %s to an expression over %s", idA, idB, idB, idA),
		}
	case ClassKeepDistinct:
		return []string{fmt.Sprintf("%s and %s overlap moderately; keep both and monitor", idA, idB)}
	default:
		return []string{}
	}
}

// #endregion recommendation
