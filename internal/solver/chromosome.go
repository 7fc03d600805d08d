// Package solver wires the decoder, metric evaluator, and seeding library
// into the shapes the engine package's Chromosome/Ranker interfaces expect
// (C5/C6's problem-specific plug-in), plus the cluster-decomposition
// alternative driver (C7).
package solver

import (
	"fmt"

	"github.com/edgesp/spsolve/internal/decoder"
	"github.com/edgesp/spsolve/internal/metric"
	"github.com/edgesp/spsolve/internal/model"
)

// Objective names one metric-vocabulary function plus an optional filter
// restricting its iteration.
type Objective struct {
	Name   string
	Filter metric.Filter
}

// ResolveObjectives validates a list of objective names against the metric
// vocabulary, returning the orchestrator's UnknownSolverOrSeed-class error
// immediately rather than deferring it to the first fitness evaluation.
func ResolveObjectives(names []string) ([]Objective, error) {
	objs := make([]Objective, len(names))
	for i, name := range names {
		if _, err := metric.Resolve(name); err != nil {
			return nil, fmt.Errorf("resolving objective %d: %w", i, err)
		}
		objs[i] = Objective{Name: name}
	}
	return objs, nil
}

// ScalarChromosome implements engine.Chromosome for BRKGA (C5): one gene
// vector decodes to one solution, scored by a single named objective.
type ScalarChromosome struct {
	Decoder   *decoder.Decoder
	Evaluator *metric.Evaluator
	Objective Objective
}

// NewScalarChromosome builds a BRKGA chromosome for instance in, scored by
// the named objective (already validated by ResolveObjectives).
func NewScalarChromosome(in *model.Input, objective Objective) *ScalarChromosome {
	return &ScalarChromosome{
		Decoder:   decoder.New(in),
		Evaluator: metric.New(in),
		Objective: objective,
	}
}

// NumGenes returns the chromosome length derived from the instance.
func (c *ScalarChromosome) NumGenes() int { return c.Decoder.Layout.NumGenes() }

// Fitness decodes genes and scores the resulting solution against the
// configured objective. An unresolved objective name is a programmer error
// here; ResolveObjectives must be called before construction.
func (c *ScalarChromosome) Fitness(genes []float64) []float64 {
	sol := c.Decoder.Decode(genes)
	fn, err := metric.Resolve(c.Objective.Name)
	if err != nil {
		panic(fmt.Sprintf("solver: %v", err))
	}
	return []float64{fn(c.Evaluator, sol, c.Objective.Filter)}
}

// Decode re-runs the decoder on a gene vector, for callers (the
// orchestrator, the cluster solver) that need the (place, load) solution
// itself rather than a fitness scalar.
func (c *ScalarChromosome) Decode(genes []float64) model.Solution {
	return c.Decoder.Decode(genes)
}

// MultiChromosome implements engine.Chromosome for NSGA-II (C6): the same
// decoding step, scored against an ordered list of objectives so fitness is
// a tuple rather than a scalar. Coordinate 0 is the NSGA-II "preferred" axis.
type MultiChromosome struct {
	Decoder    *decoder.Decoder
	Evaluator  *metric.Evaluator
	Objectives []Objective
}

// NewMultiChromosome builds an NSGA-II chromosome for instance in, scored by
// the ordered objectives (already validated by ResolveObjectives).
func NewMultiChromosome(in *model.Input, objectives []Objective) *MultiChromosome {
	return &MultiChromosome{
		Decoder:    decoder.New(in),
		Evaluator:  metric.New(in),
		Objectives: objectives,
	}
}

// NumGenes returns the chromosome length derived from the instance.
func (c *MultiChromosome) NumGenes() int { return c.Decoder.Layout.NumGenes() }

// Fitness decodes genes once and scores the resulting solution against
// every configured objective, in order.
func (c *MultiChromosome) Fitness(genes []float64) []float64 {
	sol := c.Decoder.Decode(genes)
	out := make([]float64, len(c.Objectives))
	for i, obj := range c.Objectives {
		fn, err := metric.Resolve(obj.Name)
		if err != nil {
			panic(fmt.Sprintf("solver: %v", err))
		}
		out[i] = fn(c.Evaluator, sol, obj.Filter)
	}
	return out
}

// Decode re-runs the decoder on a gene vector.
func (c *MultiChromosome) Decode(genes []float64) model.Solution {
	return c.Decoder.Decode(genes)
}
