// Package report formats a solve's output as a table, JSON, or markdown
// document, mirroring the teacher's three-way report.Reporter pattern.
package report

import (
	"context"
	"io"
	"time"

	"github.com/edgesp/spsolve/internal/model"
)

// ObjectiveScore is one named metric evaluated against the final solution.
type ObjectiveScore struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Output is the result of one solve: a placement/routing solution, the
// objective scores used to rank it, and run metadata — the language-level
// analog of spec.md §6's `(place, load, metric_handle, elapsed_time)`.
type Output struct {
	SolverName  string
	Solution    model.Solution
	Objectives  []ObjectiveScore
	Generations int
	ElapsedTime time.Duration
}

// Reporter formats and writes a solve Output to an output destination.
type Reporter interface {
	Report(ctx context.Context, out Output, meta ReportMeta) error
}

// ReportMeta carries contextual information about the instance solved,
// independent of the solution itself.
type ReportMeta struct {
	InputName string
	NumApps   int
	NumNodes  int
	NumBS     int
}

// NewReporter creates a reporter for the given format writing to w.
func NewReporter(format string, w io.Writer) Reporter {
	switch format {
	case "json":
		return &JSONReporter{w: w}
	case "markdown":
		return &MarkdownReporter{w: w}
	default:
		return &TableReporter{w: w}
	}
}
