package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/provenance"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the diagnostic run database")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show a single run in full")
	exprID := flag.String("expression", "", "filter runs by expression ID")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db runs.db [--last N] [--run id] [--expression id] [--json]")
		os.Exit(2)
	}

	log, err := provenance.NewLog(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	if *runID != "" {
		if err := runDetailMode(log, *runID, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if err := runListMode(log, *exprID, *last, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region detail

func runDetailMode(log *provenance.Log, runID string, jsonOut bool) error {
	r, err := log.Get(runID)
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Printf("run        %s\n", r.RunID)
	fmt.Printf("expression %s\n", r.ExpressionID)
	fmt.Printf("verdict    %s\n", r.Verdict)
	fmt.Printf("duration   %v\n", r.Duration)
	fmt.Printf("created    %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	if r.PoolID != "" {
		fmt.Printf("pool       %s\n", r.PoolID)
	}
	if r.ReportJSON != "" {
		fmt.Printf("report:\n%s\n", r.ReportJSON)
	}
	return nil
}

// #endregion detail

// #region list

func runListMode(log *provenance.Log, exprID string, last int, jsonOut bool) error {
	runs, err := log.List(exprID, last)
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	fmt.Printf("%-36s  %-24s  %-14s  %s\n", "RUN", "EXPRESSION", "VERDICT", "CREATED")
	for _, r := range runs {
		fmt.Printf("%-36s  %-24s  %-14s  %s\n",
			r.RunID, r.ExpressionID, r.Verdict, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// #endregion list
