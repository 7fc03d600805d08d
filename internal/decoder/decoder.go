// Package decoder implements the deterministic chromosome→solution mapping
// (C3): a capacity-aware greedy placement+routing pass followed by a
// local-search repair enforcing the per-app max-instances budget.
package decoder

import (
	"math"
	"sort"

	"github.com/edgesp/spsolve/internal/model"
)

// Decoder maps a gene vector to a (place, load) solution for a fixed
// problem instance.
type Decoder struct {
	In     *model.Input
	Layout model.ChromosomeLayout
}

// New builds a Decoder for the given instance.
func New(in *model.Input) *Decoder {
	return &Decoder{In: in, Layout: model.NewChromosomeLayout(in)}
}

// Decode is deterministic given genes and the instance. genes must have at
// least Layout.NumGenes() entries (a cached-fitness tail is ignored).
func (d *Decoder) Decode(genes []float64) model.Solution {
	in := d.In
	nbApps := len(in.Apps)
	nbNodes := len(in.Nodes)
	nbBS := in.NumBS()
	cloudIdx := in.CloudIndex()

	sol := model.NewSolution(nbApps, nbNodes, nbBS)

	nbInstances := d.instanceBudgets(genes)
	candidates := d.candidateLists(genes, nbInstances, cloudIdx)
	order := d.requestOrder(genes)

	appLoad := make([][]float64, nbApps)
	for a := range appLoad {
		appLoad[a] = make([]float64, nbNodes)
	}
	used := make([][]float64, nbNodes)
	for h := range used {
		used[h] = make([]float64, len(in.Resources))
	}

	reqs := in.RequestList()
	for _, reqIdx := range order {
		req := reqs[reqIdx]
		a, b := req.App, req.BS
		app := in.Apps[a]
		cand := candidates[a]

		// Re-sort candidates best-first by the current marginal delay
		// estimate; ties keep the previous relative order.
		ranked := append([]int(nil), cand...)
		sort.SliceStable(ranked, func(i, j int) bool {
			return scoreCandidate(in, a, b, ranked[i], appLoad[a]) < scoreCandidate(in, a, b, ranked[j], appLoad[a])
		})

		for _, h := range ranked {
			if admits(in, app, a, h, sol.Place[a][h], used[h]) {
				commit(in, app, a, b, h, sol, appLoad, used)
				break
			}
		}
	}

	d.LocalSearchRepair(sol)
	return sol
}

// instanceBudgets computes nb_instances_a = ceil(gene_region1[a] *
// max_instances_a), clamped to [0, |Nodes|].
func (d *Decoder) instanceBudgets(genes []float64) []int {
	in := d.In
	nbNodes := len(in.Nodes)
	out := make([]int, len(in.Apps))
	for a, app := range in.Apps {
		frac := genes[d.Layout.Region1(a)]
		n := int(math.Ceil(frac * float64(app.MaxInstances)))
		if n < 0 {
			n = 0
		}
		if n > nbNodes {
			n = nbNodes
		}
		out[a] = n
	}
	return out
}

// candidateLists sorts nodes by region-2 priority descending and keeps the
// top nbInstances[a]; CLOUD is always appended as a fallback.
func (d *Decoder) candidateLists(genes []float64, nbInstances []int, cloudIdx int) [][]int {
	in := d.In
	nbNodes := len(in.Nodes)
	out := make([][]int, len(in.Apps))

	for a := range in.Apps {
		priority := make([]int, nbNodes)
		for h := range priority {
			priority[h] = h
		}
		sort.SliceStable(priority, func(i, j int) bool {
			return genes[d.Layout.Region2(a, priority[i])] > genes[d.Layout.Region2(a, priority[j])]
		})

		n := nbInstances[a]
		if n > len(priority) {
			n = len(priority)
		}
		cand := append([]int(nil), priority[:n]...)

		hasCloud := false
		for _, h := range cand {
			if h == cloudIdx {
				hasCloud = true
				break
			}
		}
		if !hasCloud {
			cand = append(cand, cloudIdx)
		}
		out[a] = cand
	}
	return out
}

// requestOrder returns canonical request indices sorted by region-3
// priority descending, ties broken by ascending canonical index.
func (d *Decoder) requestOrder(genes []float64) []int {
	n := d.Layout.NbRequests
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return genes[d.Layout.Region3(order[i])] > genes[d.Layout.Region3(order[j])]
	})
	return order
}

// scoreCandidate implements score(a,b,h) = NetDelay[a][b][h] +
// proc_delay_est(a,h), where proc_delay_est uses the marginal load of
// admitting one more request.
func scoreCandidate(in *model.Input, a, b, h int, appLoad []float64) float64 {
	app := in.Apps[a]
	cpu := app.CPUDemand()
	divisor := (1.0 + appLoad[h]) * (cpu.K1 - app.WorkSize) + cpu.K2
	procDelay := math.Inf(1)
	if divisor > 0.0 {
		procDelay = app.WorkSize / divisor
	}
	return in.NetDelay[a][b][h] + procDelay
}

// admits reports whether node h has headroom for one more unit of app a's
// load under every resource.
func admits(in *model.Input, app model.App, a, h int, placed bool, used []float64) bool {
	for ri, r := range in.Resources {
		demand := app.GetDemand(r.Name)
		placedDelta := 0.0
		if !placed {
			placedDelta = demand.K2
		}
		needed := used[ri] + demand.K1 + placedDelta
		if needed > in.Nodes[h].GetCapacity(r.Name) {
			return false
		}
	}
	return true
}

// commit records one request unit of app a from base station b at node h.
func commit(in *model.Input, app model.App, a, b, h int, sol model.Solution, appLoad [][]float64, used [][]float64) {
	wasPlaced := sol.Place[a][h]
	sol.Load[a][b][h]++
	appLoad[a][h]++
	sol.Place[a][h] = true

	for ri, r := range in.Resources {
		demand := app.GetDemand(r.Name)
		placedDelta := 0.0
		if !wasPlaced {
			placedDelta = demand.K2
		}
		used[h][ri] += demand.K1 + placedDelta
	}
}

// LocalSearchRepair enforces the max-instances invariant: for every app
// whose non-CLOUD instance count exceeds MaxInstances, it offloads the
// least-loaded non-CLOUD instances to CLOUD (activating CLOUD) until at
// most MaxInstances non-CLOUD instances remain. CLOUD does not count
// against the budget. Conservation is preserved; CLOUD may end up
// overloaded as a result.
func (d *Decoder) LocalSearchRepair(sol model.Solution) {
	in := d.In
	cloudIdx := in.CloudIndex()
	nbBS := in.NumBS()

	for a, app := range in.Apps {
		instances := sol.Instances(a)
		if len(instances) <= app.MaxInstances {
			continue
		}

		local := make([]int, 0, len(instances))
		for _, h := range instances {
			if h != cloudIdx {
				local = append(local, h)
			}
		}
		instances = local

		sort.SliceStable(instances, func(i, j int) bool {
			return sol.NodeLoad(a, instances[i]) > sol.NodeLoad(a, instances[j])
		})

		for len(instances) > app.MaxInstances {
			h := instances[len(instances)-1]
			instances = instances[:len(instances)-1]
			sol.Place[a][cloudIdx] = true
			sol.Place[a][h] = false
			for b := 0; b < nbBS; b++ {
				sol.Load[a][b][cloudIdx] += sol.Load[a][b][h]
				sol.Load[a][b][h] = 0
			}
		}
	}
}
