package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// JSONReporter outputs a solve's result as JSON.
type JSONReporter struct {
	w io.Writer
}

type jsonSolution struct {
	Place [][]bool  `json:"place"`
	Load  [][][]int `json:"load"`
}

type jsonOutput struct {
	Meta        ReportMeta       `json:"meta"`
	SolverName  string           `json:"solver"`
	Objectives  []ObjectiveScore `json:"objectives"`
	Generations int              `json:"generations"`
	ElapsedTime string           `json:"elapsed_time"`
	Solution    jsonSolution     `json:"solution"`
}

func (r *JSONReporter) Report(_ context.Context, out Output, meta ReportMeta) error {
	output := jsonOutput{
		Meta:        meta,
		SolverName:  out.SolverName,
		Objectives:  out.Objectives,
		Generations: out.Generations,
		ElapsedTime: out.ElapsedTime.String(),
		Solution:    jsonSolution{Place: out.Solution.Place, Load: out.Solution.Load},
	}

	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}
