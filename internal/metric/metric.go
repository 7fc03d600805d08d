// Package metric implements the fixed vocabulary of scoring functions (C4)
// over a decoded (place, load) solution.
package metric

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/edgesp/spsolve/internal/model"
)

// Filter restricts a metric's iteration to a subset of apps and/or nodes.
// A nil Apps/Nodes set means "no restriction" on that dimension. Filters
// compose additively: Filter{Apps: x}.And(Filter{Nodes: y}) restricts to
// apps in x AND nodes in y.
type Filter struct {
	Apps  map[int]bool
	Nodes map[int]bool
}

// And returns the conjunction of two filters.
func (f Filter) And(g Filter) Filter {
	out := Filter{}
	if f.Apps != nil || g.Apps != nil {
		out.Apps = intersectOrEither(f.Apps, g.Apps)
	}
	if f.Nodes != nil || g.Nodes != nil {
		out.Nodes = intersectOrEither(f.Nodes, g.Nodes)
	}
	return out
}

func intersectOrEither(a, b map[int]bool) map[int]bool {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	out := map[int]bool{}
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}

func (f Filter) allowsApp(a int) bool {
	return f.Apps == nil || f.Apps[a]
}

func (f Filter) allowsNode(h int) bool {
	return f.Nodes == nil || f.Nodes[h]
}

// Evaluator scores a decoded solution against the fixed metric vocabulary.
type Evaluator struct {
	In *model.Input
}

// New returns an Evaluator for the given instance.
func New(in *model.Input) *Evaluator {
	return &Evaluator{In: in}
}

// flow is one (app, bs, node) triple with positive load and its delay.
type flow struct {
	a, b, h int
	load    int
	delay   float64
}

// procDelay returns work_size_a / (node_load*(k1_cpu - work_size) + k2_cpu),
// or +Inf if the divisor is <= 0.
func procDelay(app model.App, nodeLoad float64) float64 {
	cpu := app.CPUDemand()
	divisor := nodeLoad*(cpu.K1-app.WorkSize) + cpu.K2
	if divisor <= 0.0 {
		return math.Inf(1)
	}
	return app.WorkSize / divisor
}

// flows returns every (a,b,h) triple with positive load, annotated with its
// end-to-end delay (network + processing), restricted by filter.
func (e *Evaluator) flows(sol model.Solution, filter Filter) []flow {
	in := e.In
	var out []flow
	for a, app := range in.Apps {
		if !filter.allowsApp(a) {
			continue
		}
		for _, h := range sol.Instances(a) {
			if !filter.allowsNode(h) {
				continue
			}
			nodeLoad := sol.NodeLoad(a, h)
			if nodeLoad == 0 {
				continue
			}
			pd := procDelay(app, float64(nodeLoad))
			for b := 0; b < in.NumBS(); b++ {
				load := sol.Load[a][b][h]
				if load <= 0 {
					continue
				}
				out = append(out, flow{a: a, b: b, h: h, load: load,
					delay: in.NetDelay[a][b][h] + pd})
			}
		}
	}
	return out
}

// MaxDeadlineViolation returns the worst-case deadline overrun across all
// flows, clamped to >= 0.
func (e *Evaluator) MaxDeadlineViolation(sol model.Solution, filter Filter) float64 {
	max := 0.0
	for _, f := range e.flows(sol, filter) {
		v := f.delay - e.In.Apps[f.a].Deadline
		if v > max {
			max = v
		}
	}
	return max
}

// AvgDeadlineViolation returns the load-weighted mean of positive
// violations (0 if there are none).
func (e *Evaluator) AvgDeadlineViolation(sol model.Solution, filter Filter) float64 {
	var vals, weights []float64
	for _, f := range e.flows(sol, filter) {
		v := f.delay - e.In.Apps[f.a].Deadline
		if v <= 0 {
			continue
		}
		vals = append(vals, v)
		weights = append(weights, float64(f.load))
	}
	if len(vals) == 0 {
		return 0
	}
	return stat.Mean(vals, weights)
}

// DeadlineSatisfactionRate returns the fraction of request-units whose
// delay is within deadline.
func (e *Evaluator) DeadlineSatisfactionRate(sol model.Solution, filter Filter) float64 {
	var satisfied, total float64
	for _, f := range e.flows(sol, filter) {
		total += float64(f.load)
		if f.delay <= e.In.Apps[f.a].Deadline {
			satisfied += float64(f.load)
		}
	}
	if total == 0 {
		return 1.0
	}
	return satisfied / total
}

// AvgResponseTime returns the load-weighted mean delay across all flows.
// stat.Mean propagates a +Inf delay (a zero/negative processing-delay
// divisor) to the overall mean naturally, since its weighted sum is +Inf.
func (e *Evaluator) AvgResponseTime(sol model.Solution, filter Filter) float64 {
	flows := e.flows(sol, filter)
	if len(flows) == 0 {
		return 0
	}
	vals := make([]float64, len(flows))
	weights := make([]float64, len(flows))
	for i, f := range flows {
		vals[i] = f.delay
		weights[i] = float64(f.load)
	}
	return stat.Mean(vals, weights)
}

// resourceUsage returns demand/capacity for every (h,r) with finite
// positive capacity, restricted by filter.
func (e *Evaluator) resourceUsage(sol model.Solution, filter Filter) map[[2]int]float64 {
	in := e.In
	usage := map[[2]int]float64{}
	for h, node := range in.Nodes {
		if !filter.allowsNode(h) {
			continue
		}
		for ri, r := range in.Resources {
			capacity := node.GetCapacity(r.Name)
			if !(capacity > 0.0) || capacity >= model.Inf {
				continue
			}
			demand := 0.0
			for a, app := range in.Apps {
				if !filter.allowsApp(a) || !sol.Place[a][h] {
					continue
				}
				nodeLoad := float64(sol.NodeLoad(a, h))
				demand += app.GetDemand(r.Name).Eval(nodeLoad, true)
			}
			usage[[2]int{h, ri}] = demand / capacity
		}
	}
	return usage
}

// MaxResourceUsage returns the maximum demand/capacity ratio over all
// (node, resource) pairs with finite positive capacity.
func (e *Evaluator) MaxResourceUsage(sol model.Solution, filter Filter) float64 {
	max := 0.0
	for _, v := range e.resourceUsage(sol, filter) {
		if v > max {
			max = v
		}
	}
	return max
}

// AvgResourceUsage returns the mean demand/capacity ratio over all
// (node, resource) pairs with finite positive capacity.
func (e *Evaluator) AvgResourceUsage(sol model.Solution, filter Filter) float64 {
	usage := e.resourceUsage(sol, filter)
	if len(usage) == 0 {
		return 0
	}
	vals := make([]float64, 0, len(usage))
	for _, v := range usage {
		vals = append(vals, v)
	}
	return stat.Mean(vals, nil)
}

// PowerConsumption returns sum_h p_idle + (p_max - p_idle) * (cpu demand /
// cpu capacity), for nodes with positive idle/max power, finite positive
// CPU capacity and positive CPU demand; idle nodes contribute nothing.
func (e *Evaluator) PowerConsumption(sol model.Solution, filter Filter) float64 {
	in := e.In
	total := 0.0
	for h, node := range in.Nodes {
		if !filter.allowsNode(h) {
			continue
		}
		cpuCapacity := node.GetCapacity(model.CPUResourceName)
		if node.Power.Idle <= 0 && node.Power.Max <= 0 {
			continue
		}
		if !(cpuCapacity > 0.0) || cpuCapacity >= model.Inf {
			continue
		}
		cpuDemand := 0.0
		for a, app := range in.Apps {
			if !filter.allowsApp(a) || !sol.Place[a][h] {
				continue
			}
			nodeLoad := float64(sol.NodeLoad(a, h))
			cpuDemand += app.CPUDemand().Eval(nodeLoad, true)
		}
		if cpuDemand <= 0 {
			continue
		}
		total += node.Power.Idle + (node.Power.Max-node.Power.Idle)*(cpuDemand/cpuCapacity)
	}
	return total
}

// Cost returns sum over active (a,h) and resource r of
// c1_r*(k1_r*node_load_ah + k2_r) + c2_r.
func (e *Evaluator) Cost(sol model.Solution, filter Filter) float64 {
	in := e.In
	total := 0.0
	for a, app := range in.Apps {
		if !filter.allowsApp(a) {
			continue
		}
		for _, h := range sol.Instances(a) {
			if !filter.allowsNode(h) {
				continue
			}
			nodeLoad := float64(sol.NodeLoad(a, h))
			for _, r := range in.Resources {
				cost, ok := in.Nodes[h].Cost[r.Name]
				if !ok {
					continue
				}
				demand := app.GetDemand(r.Name).Eval(nodeLoad, true)
				total += cost.K1*demand + cost.K2
			}
		}
	}
	return total
}

// AvgUnavailability returns the mean over apps of the probability that all
// of an app's placed instances are simultaneously down:
// prod_{h: place[a,h]} (1 - availability_a * availability_h).
func (e *Evaluator) AvgUnavailability(sol model.Solution, filter Filter) float64 {
	in := e.In
	var sum float64
	var count int
	for a, app := range in.Apps {
		if !filter.allowsApp(a) {
			continue
		}
		count++
		prod := 1.0
		for _, h := range sol.Instances(a) {
			if !filter.allowsNode(h) {
				continue
			}
			prod *= 1.0 - app.Availability*in.Nodes[h].Availability
		}
		sum += prod
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// Func scores a decoded solution against one named metric in the fixed
// vocabulary, restricted by filter.
type Func func(e *Evaluator, sol model.Solution, filter Filter) float64

// Registry resolves objective names to Func values for C5/C6/C8, mirroring
// package seeds' name-to-function registry.
var Registry = map[string]Func{
	"max_deadline_violation":     (*Evaluator).MaxDeadlineViolation,
	"avg_deadline_violation":     (*Evaluator).AvgDeadlineViolation,
	"deadline_satisfaction_rate": (*Evaluator).DeadlineSatisfactionRate,
	"avg_response_time":          (*Evaluator).AvgResponseTime,
	"max_resource_usage":         (*Evaluator).MaxResourceUsage,
	"avg_resource_usage":         (*Evaluator).AvgResourceUsage,
	"power_consumption":          (*Evaluator).PowerConsumption,
	"cost":                       (*Evaluator).Cost,
	"avg_unavailability":         (*Evaluator).AvgUnavailability,
}

// Names returns the fixed metric vocabulary in a stable order, for error
// messages and CLI help text.
func Names() []string {
	return []string{
		"max_deadline_violation", "avg_deadline_violation",
		"deadline_satisfaction_rate", "avg_response_time",
		"max_resource_usage", "avg_resource_usage",
		"power_consumption", "cost", "avg_unavailability",
	}
}

// Resolve looks up an objective name, returning a descriptive error for
// unknown names rather than a bare map miss.
func Resolve(name string) (Func, error) {
	fn, ok := Registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown objective %q: must be one of %v", name, Names())
	}
	return fn, nil
}
