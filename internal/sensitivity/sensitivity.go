// Package sensitivity sweeps clause thresholds across a step grid to show
// how pass rate responds to parameter changes. For expressions that never
// fire at all it can switch to a near-miss context pool so the sweep still
// has signal to work with.
package sensitivity

import (
	"fmt"
	"math"
	"sort"

	"github.com/narrateworks/character-engine/go-diagnostics/internal/axis"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/feasibility"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/gate"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/logging"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/logic"
	"github.com/narrateworks/character-engine/go-diagnostics/internal/snapshot"
)

// #region config

// Config bounds threshold sweeps.
type Config struct {
	Step            float64 // grid step for continuous variables
	IntStep         float64 // grid step for declared integer-domain axes
	GridRadius      int     // grid points swept on each side of the base threshold
	NearMissMinPool int     // minimum pool size before near-miss substitution kicks in
}

// DefaultConfig returns the standard sweep settings.
func DefaultConfig() Config {
	return Config{
		Step:            0.05,
		IntStep:         1,
		GridRadius:      10,
		NearMissMinPool: 50,
	}
}

// #endregion config

// #region types

// Blocker pairs a blocking clause with its feasibility verdict.
type Blocker struct {
	Clause      logic.Clause
	Feasibility feasibility.Result
}

// GridPoint is one swept threshold and the pass rate observed there.
// EffectiveThreshold is set only for integer-domain variables: the whole
// value the comparison actually bites at (ceil for >=/>, floor for <=/<).
type GridPoint struct {
	Threshold          float64
	EffectiveThreshold *float64
	PassRate           float64
}

// Grid is the sweep result for one distinct blocking clause.
type Grid struct {
	VarPath          string
	Op               gate.Op
	BaseThreshold    float64
	Points           []GridPoint
	IsNearMissPool   bool
	ExcludedBlockers []string
}

// #endregion types

// #region analyzer

// Analyzer sweeps blocker thresholds over context pools.
type Analyzer struct {
	config Config
	cat    *axis.Catalog
	log    logging.Logger
}

// NewAnalyzer fails fast when a collaborator is missing.
func NewAnalyzer(config Config, cat *axis.Catalog, log logging.Logger) (*Analyzer, error) {
	if cat == nil {
		return nil, fmt.Errorf("sensitivity: axis catalog is required")
	}
	if log == nil {
		return nil, fmt.Errorf("sensitivity: logger is required")
	}
	if config.Step <= 0 {
		config.Step = DefaultConfig().Step
	}
	if config.IntStep <= 0 {
		config.IntStep = DefaultConfig().IntStep
	}
	if config.GridRadius <= 0 {
		config.GridRadius = DefaultConfig().GridRadius
	}
	if config.NearMissMinPool <= 0 {
		config.NearMissMinPool = DefaultConfig().NearMissMinPool
	}
	return &Analyzer{config: config, cat: cat, log: log}, nil
}

// ComputeSensitivityData sweeps each distinct blocking clause marginally:
// the pass rate at each grid point considers that clause alone.
func (a *Analyzer) ComputeSensitivityData(contexts []snapshot.Snapshot, blockers []Blocker) []Grid {
	distinct := dedupeBlockers(blockers)

	grids := make([]Grid, 0, len(distinct))
	for _, b := range distinct {
		pool, nearMiss, excluded := a.selectPool(contexts, b, distinct)
		g := Grid{
			VarPath:          b.Clause.VarPath,
			Op:               b.Clause.Op,
			BaseThreshold:    b.Clause.Threshold,
			IsNearMissPool:   nearMiss,
			ExcludedBlockers: excluded,
		}
		for _, th := range a.gridFor(b.Clause) {
			g.Points = append(g.Points, a.marginalPoint(b.Clause, th, pool))
		}
		grids = append(grids, g)
	}
	return grids
}

// ComputeGlobalSensitivityData sweeps each distinct blocking clause while
// re-evaluating the full expression: every leaf matching the clause key gets
// the shifted threshold, everything else stays fixed.
func (a *Analyzer) ComputeGlobalSensitivityData(expr logic.Expression, contexts []snapshot.Snapshot, blockers []Blocker) []Grid {
	roots := make([]*logic.Node, 0, len(expr.Prerequisites))
	for _, p := range expr.Prerequisites {
		if p.Logic == nil {
			continue
		}
		roots = append(roots, logic.Parse(p.Logic, a.log))
	}

	distinct := dedupeBlockers(blockers)
	grids := make([]Grid, 0, len(distinct))
	for _, b := range distinct {
		key := clauseKey(b.Clause)
		pool, nearMiss, excluded := a.selectPool(contexts, b, distinct)
		g := Grid{
			VarPath:          b.Clause.VarPath,
			Op:               b.Clause.Op,
			BaseThreshold:    b.Clause.Threshold,
			IsNearMissPool:   nearMiss,
			ExcludedBlockers: excluded,
		}
		for _, th := range a.gridFor(b.Clause) {
			override := func(n *logic.Node) (float64, bool) {
				if n.ClauseKey() == key {
					return th, true
				}
				return 0, false
			}
			pass := 0
			for _, ctx := range pool {
				if evalAll(roots, ctx, override) {
					pass++
				}
			}
			pt := GridPoint{Threshold: th}
			if len(pool) > 0 {
				pt.PassRate = float64(pass) / float64(len(pool))
			}
			a.annotateEffective(&pt, b.Clause)
			g.Points = append(g.Points, pt)
		}
		grids = append(grids, g)
	}
	return grids
}

func evalAll(roots []*logic.Node, ctx snapshot.Snapshot, override func(*logic.Node) (float64, bool)) bool {
	for _, r := range roots {
		if !r.EvalOverride(ctx, override) {
			return false
		}
	}
	return true
}

// #endregion analyzer

// #region grid

// gridFor builds the threshold grid around the clause's base value. Integer
// axes sweep in whole steps; everything else uses the continuous step.
func (a *Analyzer) gridFor(c logic.Clause) []float64 {
	step := a.config.Step
	if a.isIntegerVar(c) {
		step = a.config.IntStep
	}
	grid := make([]float64, 0, 2*a.config.GridRadius+1)
	for i := -a.config.GridRadius; i <= a.config.GridRadius; i++ {
		grid = append(grid, c.Threshold+float64(i)*step)
	}
	return grid
}

func (a *Analyzer) isIntegerVar(c logic.Clause) bool {
	if c.IsDelta || !axis.IsAxisPath(c.VarPath) {
		return false
	}
	return a.cat.IsInteger(axis.StripNamespace(c.VarPath))
}

func (a *Analyzer) marginalPoint(c logic.Clause, threshold float64, pool []snapshot.Snapshot) GridPoint {
	pt := GridPoint{Threshold: threshold}
	constraint := gate.Constraint{Op: c.Op, Threshold: threshold}

	valid, pass := 0, 0
	for _, ctx := range pool {
		v, ok := clauseValue(c, ctx)
		if !ok {
			continue
		}
		valid++
		if constraint.Eval(v) {
			pass++
		}
	}
	if valid > 0 {
		pt.PassRate = float64(pass) / float64(valid)
	}
	a.annotateEffective(&pt, c)
	return pt
}

// annotateEffective attaches the whole value an integer-domain comparison
// actually bites at. Float-domain points carry no effective threshold.
func (a *Analyzer) annotateEffective(pt *GridPoint, c logic.Clause) {
	if !a.isIntegerVar(c) {
		return
	}
	var eff float64
	switch c.Op {
	case gate.OpGE, gate.OpGT:
		eff = math.Ceil(pt.Threshold)
	case gate.OpLE, gate.OpLT:
		eff = math.Floor(pt.Threshold)
	default:
		eff = pt.Threshold
	}
	pt.EffectiveThreshold = &eff
}

func clauseValue(c logic.Clause, ctx snapshot.Snapshot) (float64, bool) {
	if c.IsDelta {
		lv, ok := ctx.Lookup(c.LeftPath)
		if !ok {
			return 0, false
		}
		rv, ok := ctx.Lookup(c.RightPath)
		if !ok {
			return 0, false
		}
		return lv - rv, true
	}
	return ctx.Lookup(c.VarPath)
}

// #endregion grid

// #region near-miss

// dedupeBlockers keeps the first blocker per distinct (varPath, op,
// threshold) key, preserving input order for deterministic grids.
func dedupeBlockers(blockers []Blocker) []Blocker {
	seen := make(map[string]bool, len(blockers))
	out := make([]Blocker, 0, len(blockers))
	for _, b := range blockers {
		k := clauseKey(b.Clause)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, b)
	}
	return out
}

func clauseKey(c logic.Clause) string {
	path := c.VarPath
	if c.IsDelta {
		path = c.LeftPath + "-" + c.RightPath
	}
	return fmt.Sprintf("%s|%s|%g", path, c.Op, c.Threshold)
}

// selectPool picks the context pool for one blocker's sweep. When the
// expression's baseline never fires, more than one blocker exists, and the
// raw pool is large enough, it substitutes near-miss contexts: those passing
// every other blocker except the most severe ones. Anything short of those
// conditions falls back to the raw population silently.
func (a *Analyzer) selectPool(contexts []snapshot.Snapshot, target Blocker, all []Blocker) (pool []snapshot.Snapshot, nearMiss bool, excluded []string) {
	if baselineRate(contexts, all) > 0 || len(all) <= 1 || len(contexts) < a.config.NearMissMinPool {
		return contexts, false, nil
	}

	// rank the other blockers by severity (lowest observed pass rate first)
	others := make([]Blocker, 0, len(all)-1)
	targetKey := clauseKey(target.Clause)
	for _, b := range all {
		if clauseKey(b.Clause) != targetKey {
			others = append(others, b)
		}
	}
	sort.SliceStable(others, func(i, j int) bool {
		return others[i].Feasibility.PassRate < others[j].Feasibility.PassRate
	})

	// drop the most severe blockers until some contexts survive the rest
	for cut := 1; cut <= len(others); cut++ {
		keep := others[cut:]
		selected := passingAll(contexts, keep)
		if len(selected) > 0 {
			for _, b := range others[:cut] {
				excluded = append(excluded, clauseKey(b.Clause))
			}
			a.log.Debug("near-miss pool selected",
				"target", target.Clause.VarPath, "poolSize", len(selected), "excluded", len(excluded))
			return selected, true, excluded
		}
	}
	return contexts, false, nil
}

// baselineRate is the fraction of contexts passing every blocker at its base
// threshold.
func baselineRate(contexts []snapshot.Snapshot, blockers []Blocker) float64 {
	if len(contexts) == 0 {
		return 0
	}
	pass := len(passingAll(contexts, blockers))
	return float64(pass) / float64(len(contexts))
}

func passingAll(contexts []snapshot.Snapshot, blockers []Blocker) []snapshot.Snapshot {
	var out []snapshot.Snapshot
	for _, ctx := range contexts {
		ok := true
		for _, b := range blockers {
			v, valid := clauseValue(b.Clause, ctx)
			c := gate.Constraint{Op: b.Clause.Op, Threshold: b.Clause.Threshold}
			if !valid || !c.Eval(v) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, ctx)
		}
	}
	return out
}

// #endregion near-miss
