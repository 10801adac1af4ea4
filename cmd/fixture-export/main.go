package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/axis"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/fixture"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/overlap"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/snapshot"
)

// #region main

func main() {
	inPath := flag.String("in", "", "optional source fixture to copy expression and prototype tables from")
	outPath := flag.String("out", "", "output fixture JSON path")
	count := flag.Int("contexts", 500, "number of contexts to sample")
	seed := flag.Int64("seed", 1, "state generator seed")
	poolDB := flag.String("pool-db", "", "optionally persist the sampled pool to this database")
	poolID := flag.String("pool-id", "", "pool ID to store under (default: generated)")
	fromPool := flag.String("from-pool", "", "export this stored pool from --pool-db instead of sampling")
	desc := flag.String("desc", "sampled context pool", "fixture description")
	flag.Parse()

	if *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --out case.json [--in base.json] [--contexts N] [--seed S] [--pool-db pools.db] [--from-pool id]")
		os.Exit(2)
	}
	if *fromPool != "" && *poolDB == "" {
		fmt.Fprintln(os.Stderr, "--from-pool requires --pool-db")
		os.Exit(2)
	}

	os.Exit(run(*inPath, *outPath, *count, *seed, *poolDB, *poolID, *fromPool, *desc))
}

func run(inPath, outPath string, count int, seed int64, poolDB, poolID, fromPool, desc string) int {
	out := &fixture.Fixture{Description: desc}
	if inPath != "" {
		base, err := fixture.LoadFixture(inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		out.Expression = base.Expression
		out.PrototypeTables = base.PrototypeTables
		if out.Description == "sampled context pool" {
			out.Description = base.Description
		}
	}

	var snaps []snapshot.Snapshot
	if fromPool != "" {
		store, err := fixture.NewContextStore(poolDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open pool db: %v\n", err)
			return 1
		}
		snaps, err = store.LoadPool(fromPool)
		store.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "load pool: %v\n", err)
			return 1
		}
	} else {
		gen := overlap.NewSeededGenerator(axis.DefaultCatalog(), seed)
		snaps = make([]snapshot.Snapshot, count)
		for i := range snaps {
			snaps[i] = gen.Next()
		}
	}
	out.Contexts = fixture.FromSnapshots(snaps)

	if err := fixture.SaveFixture(outPath, out); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Printf("wrote %s with %d contexts\n", outPath, len(snaps))

	if fromPool == "" && poolDB != "" {
		store, err := fixture.NewContextStore(poolDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open pool db: %v\n", err)
			return 1
		}
		defer store.Close()

		id, err := store.SavePool(poolID, desc, snaps)
		if err != nil {
			fmt.Fprintf(os.Stderr, "save pool: %v\n", err)
			return 1
		}
		fmt.Printf("stored pool %s (%d contexts)\n", id, len(snaps))
	}
	return 0
}

// #endregion main
