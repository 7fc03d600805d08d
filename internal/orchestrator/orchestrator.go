// Package orchestrator wires configuration, the named solver pipelines
// (C8), instrumentation, and reporting into one end-to-end entry point,
// mirroring the teacher's collect → simulate → rank → report pipeline.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/edgesp/spsolve/internal/config"
	"github.com/edgesp/spsolve/internal/engine"
	"github.com/edgesp/spsolve/internal/instrumentation"
	"github.com/edgesp/spsolve/internal/metric"
	"github.com/edgesp/spsolve/internal/model"
	"github.com/edgesp/spsolve/internal/report"
	"github.com/edgesp/spsolve/internal/solver"
)

// Orchestrator coordinates one end-to-end solve: validate objectives,
// build engine parameters, dispatch to the named pipeline, score the
// result, and report it.
type Orchestrator struct {
	Config   config.Config
	Recorder *instrumentation.Recorder
	Writer   io.Writer
}

// New creates an orchestrator with the given configuration, writing
// progress narration to stdout.
func New(cfg config.Config) *Orchestrator {
	return &Orchestrator{
		Config: cfg,
		Writer: os.Stdout,
	}
}

// Solve runs the configured pipeline against in and reports the result.
func (o *Orchestrator) Solve(ctx context.Context, in *model.Input, meta report.ReportMeta) (report.Output, error) {
	cfg := o.Config

	fmt.Fprintf(o.Writer, "Resolving %d objective(s) for solver %q...\n", len(cfg.Solve.Objectives), cfg.Solve.Solver)
	objectives, err := solver.ResolveObjectives(cfg.Solve.Objectives)
	if err != nil {
		return report.Output{}, fmt.Errorf("resolving objectives: %w", err)
	}

	params := solver.Params{
		Engine: engine.Params{
			PopulationSize:   cfg.Engine.PopulationSize,
			Generations:      cfg.Engine.Generations,
			EliteProportion:  cfg.Engine.EliteProportion,
			MutantProportion: cfg.Engine.MutantProportion,
			EliteProbability: cfg.Engine.EliteProbability,
			Seed:             cfg.Engine.Seed,
			PoolSize:         cfg.Engine.PoolSize,
		},
		Objectives:    objectives,
		SeedNames:     cfg.Solve.Seeds,
		PreferredEps:  cfg.Solve.PreferredEps,
		StopThreshold: cfg.Solve.StopThreshold,
	}
	// o.Recorder is a typed *instrumentation.Recorder; only assign it to
	// the interface-typed field when non-nil, or a nil-but-typed interface
	// would compare non-nil and panic on first use.
	if o.Recorder != nil {
		params.Recorder = o.Recorder
	}

	fmt.Fprintf(o.Writer, "Running %q over %d app(s), %d node(s)...\n", cfg.Solve.Solver, meta.NumApps, meta.NumNodes)
	start := time.Now()
	res, err := solver.Solve(ctx, cfg.Solve.Solver, in, params)
	if err != nil {
		return report.Output{}, fmt.Errorf("solving: %w", err)
	}
	elapsed := time.Since(start)

	generations := 0
	if res.Ranked != nil {
		generations = cfg.Engine.Generations
	}

	evaluator := metric.New(in)
	scores := make([]report.ObjectiveScore, len(objectives))
	for i, obj := range objectives {
		fn, err := metric.Resolve(obj.Name)
		if err != nil {
			return report.Output{}, fmt.Errorf("scoring: %w", err)
		}
		scores[i] = report.ObjectiveScore{Name: obj.Name, Value: fn(evaluator, res.Solution, obj.Filter)}
	}

	fmt.Fprintf(o.Writer, "Solved in %s, reporting as %q...\n", elapsed, cfg.Output.Format)
	out := report.Output{
		SolverName:  cfg.Solve.Solver,
		Solution:    res.Solution,
		Objectives:  scores,
		Generations: generations,
		ElapsedTime: elapsed,
	}

	reporter := report.NewReporter(cfg.Output.Format, o.Writer)
	if err := reporter.Report(ctx, out, meta); err != nil {
		return report.Output{}, fmt.Errorf("generating report: %w", err)
	}
	return out, nil
}
