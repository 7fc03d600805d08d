package report

import (
	"context"
	"io"
)

// MarkdownReporter outputs a solve's result as a markdown document, for
// pasting into an issue or a run log. The teacher's report package
// references a MarkdownReporter from its NewReporter factory but never
// ships one; this fills that gap in the table/json siblings' style.
type MarkdownReporter struct {
	w io.Writer
}

func (r *MarkdownReporter) Report(_ context.Context, out Output, meta ReportMeta) error {
	ew := &errWriter{w: r.w}

	ew.printf("# spsolve result\n\n")
	ew.printf("- **Solver**: %s\n", out.SolverName)
	ew.printf("- **Input**: %s\n", meta.InputName)
	ew.printf("- **Apps/Nodes**: %d / %d (%d base stations)\n", meta.NumApps, meta.NumNodes, meta.NumBS)
	ew.printf("- **Generations**: %d\n", out.Generations)
	ew.printf("- **Elapsed**: %s\n\n", out.ElapsedTime)

	ew.printf("## Objectives\n\n")
	if len(out.Objectives) == 0 {
		ew.printf("No objective scores recorded.\n\n")
	} else {
		ew.printf("| Objective | Value |\n")
		ew.printf("|---|---:|\n")
		for _, o := range out.Objectives {
			ew.printf("| %s | %.4f |\n", o.Name, o.Value)
		}
		ew.printf("\n")
	}

	ew.printf("## Placements\n\n")
	ew.printf("| App | Nodes |\n")
	ew.printf("|---|---|\n")
	for a := range out.Solution.Place {
		ew.printf("| %d | %v |\n", a, out.Solution.Instances(a))
	}
	ew.printf("\n")
	return ew.err
}
