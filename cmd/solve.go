package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	inputpkg "github.com/edgesp/spsolve/internal/input"
	"github.com/edgesp/spsolve/internal/instrumentation"
	"github.com/edgesp/spsolve/internal/orchestrator"
	"github.com/edgesp/spsolve/internal/report"
	"github.com/edgesp/spsolve/internal/solver"
)

var solveCmd = &cobra.Command{
	Use:   "solve <input.json>",
	Short: "Solve a placement/routing instance and report the result",
	Long: fmt.Sprintf("Loads an instance JSON file and runs one of the named solver pipelines: %v.",
		solver.Names()),
	Args: cobra.ExactArgs(1),
	RunE: runSolve,
}

func init() {
	f := solveCmd.Flags()
	f.Int("population-size", 0, "BRKGA/NSGA-II population size")
	f.Int("generations", 0, "number of generations to run")
	f.Int("pool-size", 0, "number of worker goroutines for fitness evaluation")
	f.Float64("elite-proportion", 0, "fraction of the population treated as elite")
	f.Float64("mutant-proportion", 0, "fraction of the population replaced by mutants")
	f.Float64("stop-threshold", 0, "MGBM/zero-fitness stopping threshold")
	f.StringSlice("objectives", nil, "objective metric name(s)")
	f.StringSlice("seeds", nil, "heuristic seed name(s) to prime the first generation")
	f.String("output-file", "", "write the report to a file instead of stdout")

	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if v, _ := cmd.Flags().GetInt("population-size"); v > 0 {
		cfg.Engine.PopulationSize = v
	}
	if cmd.Flags().Changed("generations") {
		v, _ := cmd.Flags().GetInt("generations")
		cfg.Engine.Generations = v
	}
	if cmd.Flags().Changed("pool-size") {
		v, _ := cmd.Flags().GetInt("pool-size")
		cfg.Engine.PoolSize = v
	}
	if cmd.Flags().Changed("elite-proportion") {
		v, _ := cmd.Flags().GetFloat64("elite-proportion")
		cfg.Engine.EliteProportion = v
	}
	if cmd.Flags().Changed("mutant-proportion") {
		v, _ := cmd.Flags().GetFloat64("mutant-proportion")
		cfg.Engine.MutantProportion = v
	}
	if cmd.Flags().Changed("stop-threshold") {
		v, _ := cmd.Flags().GetFloat64("stop-threshold")
		cfg.Solve.StopThreshold = v
	}
	if objs, _ := cmd.Flags().GetStringSlice("objectives"); len(objs) > 0 {
		cfg.Solve.Objectives = objs
	}
	if seeds, _ := cmd.Flags().GetStringSlice("seeds"); len(seeds) > 0 {
		cfg.Solve.Seeds = seeds
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	in, err := inputpkg.LoadInstance(args[0])
	if err != nil {
		return err
	}

	orch := orchestrator.New(cfg)

	if cfg.Output.MetricsAddr != "" {
		rec := instrumentation.NewRecorder()
		orch.Recorder = rec
		srv := &http.Server{Addr: cfg.Output.MetricsAddr, Handler: rec.Handler()}
		go func() { _ = srv.ListenAndServe() }()
		defer srv.Close()
	}

	w := os.Stdout
	if outFile, _ := cmd.Flags().GetString("output-file"); outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	orch.Writer = w

	meta := report.ReportMeta{
		InputName: args[0],
		NumApps:   len(in.Apps),
		NumNodes:  len(in.Nodes),
		NumBS:     in.NumBS(),
	}
	_, err = orch.Solve(ctx, in, meta)
	return err
}
