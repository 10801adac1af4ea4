package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/feasibility"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/fit"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/overlap"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/reach"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/recommend"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/sensitivity"
)

// #region config

// Config bundles every analyzer's settings for one harness instance.
type Config struct {
	Seed        int64
	Reach       reach.Config
	Feasibility feasibility.Config
	Fit         fit.Config
	Overlap     overlap.Config
	Recommend   recommend.Config
	Suggestion  recommend.SuggestionConfig
	Sensitivity sensitivity.Config
}

// DefaultConfig composes every analyzer's defaults.
func DefaultConfig() Config {
	return Config{
		Seed:        1,
		Reach:       reach.DefaultConfig(),
		Feasibility: feasibility.DefaultConfig(),
		Fit:         fit.DefaultConfig(),
		Overlap:     overlap.DefaultConfig(),
		Recommend:   recommend.DefaultConfig(),
		Suggestion:  recommend.DefaultSuggestionConfig(),
		Sensitivity: sensitivity.DefaultConfig(),
	}
}

// #endregion config

// #region tunables

// Tunables is the YAML override surface. Absent keys keep their defaults;
// the feasibility rare threshold and near-miss pool floor live here rather
// than as hard-coded invariants.
type Tunables struct {
	Seed                   *int64    `yaml:"seed"`
	MaxBranches            *int      `yaml:"max_branches"`
	RareThreshold          *float64  `yaml:"rare_threshold"`
	SampleCount            *int      `yaml:"sample_count"`
	EpsilonBand            *float64  `yaml:"epsilon_band"`
	CoactivationThresholds []float64 `yaml:"coactivation_thresholds"`
	SweepStep              *float64  `yaml:"sweep_step"`
	SweepIntStep           *float64  `yaml:"sweep_int_step"`
	SweepGridRadius        *int      `yaml:"sweep_grid_radius"`
	NearMissMinPool        *int      `yaml:"near_miss_min_pool"`
	MinSamplesPerAxis      *int      `yaml:"min_samples_per_axis"`
	MaxSuggestionsPerPair  *int      `yaml:"max_suggestions_per_pair"`
	MinInfoGain            *float64  `yaml:"min_info_gain"`
	MinOverlapReduction    *float64  `yaml:"min_overlap_reduction"`
}

// LoadTunables reads a YAML tunables file and applies it over the defaults.
func LoadTunables(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read tunables %s: %w", path, err)
	}
	var t Tunables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Config{}, fmt.Errorf("parse tunables %s: %w", path, err)
	}
	return t.Apply(DefaultConfig()), nil
}

// Apply overlays the set tunables onto a base config.
func (t Tunables) Apply(cfg Config) Config {
	if t.Seed != nil {
		cfg.Seed = *t.Seed
	}
	if t.MaxBranches != nil {
		cfg.Reach.MaxBranches = *t.MaxBranches
	}
	if t.RareThreshold != nil {
		cfg.Feasibility.RareThreshold = *t.RareThreshold
	}
	if t.SampleCount != nil {
		cfg.Overlap.SampleCount = *t.SampleCount
	}
	if t.EpsilonBand != nil {
		cfg.Overlap.EpsilonBand = *t.EpsilonBand
	}
	if len(t.CoactivationThresholds) > 0 {
		cfg.Overlap.CoactivationThresholds = t.CoactivationThresholds
	}
	if t.SweepStep != nil {
		cfg.Sensitivity.Step = *t.SweepStep
	}
	if t.SweepIntStep != nil {
		cfg.Sensitivity.IntStep = *t.SweepIntStep
	}
	if t.SweepGridRadius != nil {
		cfg.Sensitivity.GridRadius = *t.SweepGridRadius
	}
	if t.NearMissMinPool != nil {
		cfg.Sensitivity.NearMissMinPool = *t.NearMissMinPool
	}
	if t.MinSamplesPerAxis != nil {
		cfg.Suggestion.MinSamplesPerAxis = *t.MinSamplesPerAxis
	}
	if t.MaxSuggestionsPerPair != nil {
		cfg.Suggestion.MaxSuggestionsPerPair = *t.MaxSuggestionsPerPair
	}
	if t.MinInfoGain != nil {
		cfg.Suggestion.MinInfoGain = *t.MinInfoGain
	}
	if t.MinOverlapReduction != nil {
		cfg.Suggestion.MinOverlapReduction = *t.MinOverlapReduction
	}
	return cfg
}

// #endregion tunables
