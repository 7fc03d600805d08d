package report

import (
	"context"
	"io"
	"strings"
)

// TableReporter outputs a solve's result as a formatted terminal table.
type TableReporter struct {
	w io.Writer
}

func (r *TableReporter) Report(_ context.Context, out Output, meta ReportMeta) error {
	ew := &errWriter{w: r.w}

	ew.printf("\n")
	ew.printf("spsolve result\n")
	ew.printf("%s\n", strings.Repeat("=", 60))
	ew.printf("Solver:      %s\n", out.SolverName)
	ew.printf("Input:       %s\n", meta.InputName)
	ew.printf("Apps/Nodes:  %d / %d (%d base stations)\n", meta.NumApps, meta.NumNodes, meta.NumBS)
	ew.printf("Generations: %d\n", out.Generations)
	ew.printf("Elapsed:     %s\n", out.ElapsedTime)
	ew.printf("%s\n\n", strings.Repeat("=", 60))

	if len(out.Objectives) == 0 {
		ew.printf("No objective scores recorded.\n")
	} else {
		ew.printf("%-30s %12s\n", "Objective", "Value")
		ew.printf("%s\n", strings.Repeat("-", 43))
		for _, o := range out.Objectives {
			ew.printf("%-30s %12.4f\n", o.Name, o.Value)
		}
	}

	ew.printf("\nPlacements:\n")
	for a := range out.Solution.Place {
		instances := out.Solution.Instances(a)
		ew.printf("  app %-4d -> nodes %v\n", a, instances)
	}
	ew.printf("\n")
	return ew.err
}
