package solver

import (
	"context"
	"fmt"

	"github.com/edgesp/spsolve/internal/decoder"
	"github.com/edgesp/spsolve/internal/engine"
	"github.com/edgesp/spsolve/internal/model"
	"github.com/edgesp/spsolve/internal/seeds"
)

// defaultHeuristicSeeds primes a GA's first generation with the full
// heuristic library rather than a single seed, for the "*_hi" pipelines.
var defaultHeuristicSeeds = []string{"net_delay", "deadline", "cluster_metoids_sc"}

// Params assembles every parameter the nine named pipelines in Names()
// accept (C8's "assembles parameters" step).
type Params struct {
	Engine        engine.Params
	Objectives    []Objective
	SeedNames     []string
	PreferredEps  float64
	StopThreshold float64
	// Recorder, when non-nil, observes every generation of a BRKGA/NSGA-II
	// run (see package instrumentation). Unused by the decode-only and
	// cluster pipelines.
	Recorder engine.Recorder
	// InnerParams overrides the parameters used by "cluster"'s per-cluster
	// inner solve; nil reuses Params itself (scaled down by the caller if
	// desired before passing it in).
	InnerParams *Params
}

// Result is what every named solver pipeline returns: the decoded
// solution, plus the ranked population for pipelines that ran a GA (nil
// for the decode-only pipelines).
type Result struct {
	Solution model.Solution
	Ranked   []model.Individual
}

// Names lists the solver identifiers the orchestrator accepts, matching
// spec.md §4.8's abstract solver-name set.
func Names() []string {
	return []string{"cloud", "heuristic", "greedy", "soga", "soga_hi", "moga", "moga_pareto", "cluster", "milp"}
}

// Solve dispatches to one of the nine named pipelines.
func Solve(ctx context.Context, name string, in *model.Input, p Params) (Result, error) {
	switch name {
	case "cloud":
		// The all-zero chromosome decodes to every request falling
		// through to the CLOUD candidate (see seeds.Cloud).
		return decodeOnly(in, []string{"cloud"})
	case "greedy":
		return decodeOnly(in, []string{"net_delay"})
	case "heuristic":
		names := p.SeedNames
		if len(names) == 0 {
			names = []string{"net_delay", "deadline"}
		}
		return decodeOnly(in, names)
	case "soga":
		return runScalar(ctx, in, p, []string{"cloud"})
	case "soga_hi":
		return runScalar(ctx, in, p, defaultSeedNames(p))
	case "moga":
		return runMulti(ctx, in, p, true)
	case "moga_pareto":
		return runMulti(ctx, in, p, false)
	case "cluster":
		return runCluster(ctx, in, p)
	case "milp":
		return Result{}, fmt.Errorf("solver %q is out of scope: no MILP/MINLP backend is implemented", name)
	default:
		return Result{}, fmt.Errorf("unknown solver %q: must be one of %v", name, Names())
	}
}

func defaultSeedNames(p Params) []string {
	if len(p.SeedNames) > 0 {
		return p.SeedNames
	}
	return defaultHeuristicSeeds
}

// decodeOnly merges the named seeds into one gene vector and decodes it
// directly, without running any generations: the "cloud"/"greedy"/
// "heuristic" pipelines.
func decodeOnly(in *model.Input, seedNames []string) (Result, error) {
	layout := model.NewChromosomeLayout(in)
	vecs, err := seeds.Build(seedNames, in, layout)
	if err != nil {
		return Result{}, fmt.Errorf("building seed: %w", err)
	}
	genes := seeds.Merge(vecs, nil)
	sol := decoder.New(in).Decode(genes)
	return Result{Solution: sol}, nil
}

// runScalar drives a BRKGA search (C5) against a single objective.
func runScalar(ctx context.Context, in *model.Input, p Params, seedNames []string) (Result, error) {
	if len(p.Objectives) == 0 {
		return Result{}, fmt.Errorf("single-objective solver requires exactly one objective")
	}
	chrom := NewScalarChromosome(in, p.Objectives[0])
	layout := model.NewChromosomeLayout(in)
	seedVecs, err := seeds.Build(seedNames, in, layout)
	if err != nil {
		return Result{}, fmt.Errorf("building seeds: %w", err)
	}

	eng := engine.New(chrom, engine.ScalarRanker{StopFitness: p.StopThreshold}, p.Engine)
	eng.Recorder = p.Recorder
	ranked := eng.Run(ctx, seedVecs)
	if len(ranked) == 0 {
		return Result{}, fmt.Errorf("engine returned an empty population")
	}
	return Result{Solution: chrom.Decode(ranked[0].GeneSlice()), Ranked: ranked}, nil
}

// runMulti drives an NSGA-II search (C6) against two or more objectives,
// in plain or "preferred" dominance mode.
func runMulti(ctx context.Context, in *model.Input, p Params, preferred bool) (Result, error) {
	if len(p.Objectives) < 2 {
		return Result{}, fmt.Errorf("multi-objective solver requires at least two objectives")
	}
	chrom := NewMultiChromosome(in, p.Objectives)
	layout := model.NewChromosomeLayout(in)
	seedNames := defaultSeedNames(p)
	seedVecs, err := seeds.Build(seedNames, in, layout)
	if err != nil {
		return Result{}, fmt.Errorf("building seeds: %w", err)
	}

	eps := 0.0
	if preferred {
		eps = p.PreferredEps
	}
	ranker := &engine.ParetoRanker{PreferredEpsilon: eps, Threshold: p.StopThreshold}
	eng := engine.New(chrom, ranker, p.Engine)
	eng.Recorder = p.Recorder
	ranked := eng.Run(ctx, seedVecs)
	if len(ranked) == 0 {
		return Result{}, fmt.Errorf("engine returned an empty population")
	}
	return Result{Solution: chrom.Decode(ranked[0].GeneSlice()), Ranked: ranked}, nil
}

// runCluster drives the cluster-decomposition alternative (C7), delegating
// every per-cluster sub-instance to a scalar BRKGA run.
func runCluster(ctx context.Context, in *model.Input, p Params) (Result, error) {
	if len(p.Objectives) == 0 {
		return Result{}, fmt.Errorf("cluster solver requires an objective for its inner solve")
	}
	innerParams := p
	if p.InnerParams != nil {
		innerParams = *p.InnerParams
	}

	cs := NewClusterSolver(in, func(sub *model.Input) model.Solution {
		res, err := runScalar(ctx, sub, innerParams, defaultSeedNames(innerParams))
		if err != nil {
			// sub is always well-formed by construction (Input.Filter plus
			// a capacity override); a failure here means the objective was
			// never validated before Solve was called.
			panic(fmt.Sprintf("solver: cluster inner solve: %v", err))
		}
		return res.Solution
	})
	return Result{Solution: cs.Solve()}, nil
}
