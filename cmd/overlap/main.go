package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/axis"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/fixture"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/harness"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/logging"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/overlap"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "fixture JSON carrying the prototype tables")
	refA := flag.String("a", "", "first prototype reference (e.g. emotions.joy)")
	refB := flag.String("b", "", "second prototype reference")
	tunablesPath := flag.String("tunables", "", "optional YAML tunables file")
	samples := flag.Int("samples", 0, "Monte Carlo sample count (0 = configured default)")
	seed := flag.Int64("seed", 1, "state generator seed")
	jsonOut := flag.Bool("json", false, "output the full report as JSON")
	debug := flag.Bool("debug", false, "verbose logging")
	flag.Parse()

	if *fixturePath == "" || *refA == "" || *refB == "" {
		fmt.Fprintln(os.Stderr, "usage: overlap --fixture path/to/case.json --a emotions.joy --b emotions.delight [--samples N] [--seed S] [--json]")
		os.Exit(2)
	}

	os.Exit(run(*fixturePath, *refA, *refB, *tunablesPath, *samples, *seed, *jsonOut, *debug))
}

func run(fixturePath, refA, refB, tunablesPath string, samples int, seed int64, jsonOut, debug bool) int {
	log, flush, err := logging.NewZap(debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logging: %v\n", err)
		return 1
	}
	defer flush()

	f, err := fixture.LoadFixture(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	cfg := harness.DefaultConfig()
	if tunablesPath != "" {
		cfg, err = harness.LoadTunables(tunablesPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	}
	cfg.Seed = seed
	if samples > 0 {
		cfg.Overlap.SampleCount = samples
	}

	cat := axis.DefaultCatalog()
	h, err := harness.New(cfg, harness.Deps{
		Log:       log,
		Registry:  f.ToRegistry(log),
		Catalog:   cat,
		Generator: overlap.NewSeededGenerator(cat, seed),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	report, err := h.ComparePrototypes(refA, refB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "encode report: %v\n", err)
			return 1
		}
		return 0
	}

	printSummary(report)
	return 0
}

// #endregion main

// #region summary

func printSummary(r *harness.ComparisonReport) {
	fmt.Printf("%s vs %s: %s (%s)\n", r.PrototypeA, r.PrototypeB, r.Classification, r.Recommendation.Type)
	for _, a := range r.Recommendation.Actions {
		fmt.Printf("  - %s\n", a)
	}

	ev := r.Recommendation.Evidence
	if ev.GateOverlap != nil {
		fmt.Printf("  gate overlap: jaccard %.3f, both %.3f, either %.3f\n",
			ev.GateOverlap.Jaccard, ev.GateOverlap.OnBothRate, ev.GateOverlap.OnEitherRate)
	}
	if ev.IntensitySimilarity != nil {
		fmt.Printf("  intensity: pearson %.3f, mad %.4f, within-eps %.3f\n",
			ev.IntensitySimilarity.PearsonCorrelation,
			ev.IntensitySimilarity.MeanAbsDiff,
			ev.IntensitySimilarity.WithinEpsilonRate)
	}
	if ev.GateImplication != nil {
		fmt.Printf("  implication: %s (confidence %.3f)\n",
			ev.GateImplication.Direction, ev.GateImplication.Confidence)
	}

	for _, s := range r.Suggestions {
		fmt.Printf("  suggest: %s gets gate %s %s %.3f (gain %.3f, overlap -%.1f%%)\n",
			s.TargetPrototype, s.Axis, s.Op, s.Threshold, s.InfoGain, 100*s.OverlapReductionEstimate)
		for _, msg := range s.ValidationMessages {
			fmt.Printf("    note: %s\n", msg)
		}
	}
}

// #endregion summary
