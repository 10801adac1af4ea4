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
	"github.com/narrateworks/character-engine/go-diagnostics/internal/provenance"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/snapshot"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to diagnostic fixture JSON")
	tunablesPath := flag.String("tunables", "", "optional YAML tunables file")
	poolDB := flag.String("pool-db", "", "optional context pool database")
	poolID := flag.String("pool-id", "", "pool to load from --pool-db (overrides fixture contexts)")
	runsDB := flag.String("runs-db", "", "optional run log database")
	jsonOut := flag.Bool("json", false, "output the full report as JSON")
	debug := flag.Bool("debug", false, "verbose logging")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: diagnose --fixture path/to/case.json [--tunables t.yaml] [--pool-db pools.db --pool-id id] [--runs-db runs.db] [--json]")
		os.Exit(2)
	}

	os.Exit(run(*fixturePath, *tunablesPath, *poolDB, *poolID, *runsDB, *jsonOut, *debug))
}

func run(fixturePath, tunablesPath, poolDB, poolID, runsDB string, jsonOut, debug bool) int {
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

	contexts := f.ToSnapshots()
	if poolID != "" {
		contexts, err = loadPool(poolDB, poolID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	}

	deps := harness.Deps{
		Log:      log,
		Registry: f.ToRegistry(log),
		Catalog:  axis.DefaultCatalog(),
	}
	if runsDB != "" {
		runLog, err := provenance.NewLog(runsDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open run log: %v\n", err)
			return 1
		}
		defer runLog.Close()
		deps.RunLog = runLog
	}

	h, err := harness.New(cfg, deps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	report, err := h.AnalyzeExpression(f.Expression.ToExpression(), contexts)
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
	} else {
		printSummary(report)
	}

	if report.Verdict == "reachable" {
		return 0
	}
	return 3 // diagnosable but not reachable
}

func loadPool(poolDB, poolID string) ([]snapshot.Snapshot, error) {
	if poolDB == "" {
		return nil, fmt.Errorf("--pool-id requires --pool-db")
	}
	store, err := fixture.NewContextStore(poolDB)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.LoadPool(poolID)
}

// #endregion main

// #region summary

func printSummary(r *harness.ExpressionReport) {
	fmt.Printf("expression %s: %s (%d paths", r.ExpressionID, r.Verdict, r.TotalPaths)
	if r.Truncated {
		fmt.Printf(", truncated to %d branches", len(r.Branches))
	}
	fmt.Printf(", %v)\n", r.Elapsed)

	for _, b := range r.Branches {
		status := "reachable"
		if !b.Reachable {
			status = "UNREACHABLE"
		}
		fmt.Printf("  branch %d: %s\n", b.Index, status)
		for _, req := range b.Requirements {
			switch {
			case req.Unresolved:
				fmt.Printf("    %s %s %g: unresolved reference\n", req.Ref, req.Op, req.Threshold)
			case req.Reachability.Contradict:
				fmt.Printf("    %s %s %g: gate contradiction\n", req.Ref, req.Op, req.Threshold)
			default:
				fmt.Printf("    %s %s %g: bounds [%.3f, %.3f] gap %+.3f\n",
					req.Ref, req.Op, req.Threshold,
					req.Reachability.MinPossible, req.Reachability.MaxPossible, req.Reachability.Gap)
			}
		}
		if len(b.Leaderboard) > 0 {
			top := b.Leaderboard[0]
			fmt.Printf("    best fit: %s (score %.3f)\n", top.PrototypeID, top.CompositeScore)
		}
	}

	for _, c := range r.ClauseResults {
		fmt.Printf("  clause %s %s %g: %s (pass %.4f over %d)\n",
			c.VarPath, c.Op, c.Threshold, c.Classification, c.PassRate, c.ValidCount)
	}
	if len(r.SensitivityData) > 0 {
		fmt.Printf("  sensitivity grids: %d marginal, %d global\n",
			len(r.SensitivityData), len(r.GlobalData))
	}
}

// #endregion summary
