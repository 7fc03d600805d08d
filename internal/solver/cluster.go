package solver

import (
	"math"
	"sort"

	"github.com/edgesp/spsolve/internal/decoder"
	"github.com/edgesp/spsolve/internal/kmedoids"
	"github.com/edgesp/spsolve/internal/model"
)

// InnerSolve runs a configured inner solver (BRKGA with the heuristic seed
// library, by default) against a capacity-reduced sub-instance restricted
// to one app and one node cluster, returning its decoded solution.
type InnerSolve func(in *model.Input) model.Solution

// ClusterSolver implements C7, the cluster-decomposition alternative
// driver: for each app (processed in deadline-ascending order) it clusters
// the app's serving base stations with k-medoids, solves each cluster as
// an independent, capacity-reduced sub-instance, and merges the results.
type ClusterSolver struct {
	In    *model.Input
	Inner InnerSolve
}

// NewClusterSolver builds a ClusterSolver for instance in, delegating each
// cluster's sub-instance to inner.
func NewClusterSolver(in *model.Input, inner InnerSolve) *ClusterSolver {
	return &ClusterSolver{In: in, Inner: inner}
}

// Solve runs the full decomposition and returns the merged, repaired
// global solution.
func (c *ClusterSolver) Solve() model.Solution {
	in := c.In
	nbApps := len(in.Apps)
	nbNodes := len(in.Nodes)
	sol := model.NewSolution(nbApps, nbNodes, in.NumBS())

	order := make([]int, nbApps)
	for a := range order {
		order[a] = a
	}
	sort.SliceStable(order, func(i, j int) bool {
		return in.Apps[order[i]].Deadline < in.Apps[order[j]].Deadline
	})

	for _, a := range order {
		clusters := c.selectClusters(a)
		kStar := len(clusters)
		for _, bsCluster := range clusters {
			c.solveCluster(a, bsCluster, kStar, sol)
		}
	}

	decoder.New(in).LocalSearchRepair(sol)
	return sol
}

// bsFeatures returns the base-station indices serving app a.
func bsFeatures(in *model.Input, a int) []int {
	var out []int
	for b := 0; b < in.NumBS(); b++ {
		if in.Users[a][b] > 0 {
			out = append(out, b)
		}
	}
	return out
}

// selectClusters picks k* = argmax_k silhouette(fit(k)) for
// k in 1..min(|features|, max_instances_a) and returns the resulting
// base-station clusters.
func (c *ClusterSolver) selectClusters(a int) [][]int {
	in := c.In
	feats := bsFeatures(in, a)
	if len(feats) == 0 {
		return nil
	}

	maxK := in.Apps[a].MaxInstances
	if len(feats) < maxK {
		maxK = len(feats)
	}
	if maxK < 1 {
		maxK = 1
	}

	var best [][]int
	bestScore := math.Inf(-1)
	for k := 1; k <= maxK; k++ {
		km := kmedoids.New()
		clusters := km.Fit(k, feats, in.NetDelay[a])
		score := km.SilhouetteScore(clusters, in.NetDelay[a])
		if score > bestScore {
			bestScore = score
			best = clusters
		}
	}
	return nonEmpty(best)
}

func nonEmpty(clusters [][]int) [][]int {
	out := clusters[:0]
	for _, cl := range clusters {
		if len(cl) > 0 {
			out = append(out, cl)
		}
	}
	return out
}

// solveCluster builds the sub-instance for one base-station cluster,
// solves it, and merges the result into the global solution.
func (c *ClusterSolver) solveCluster(a int, bsCluster []int, kStar int, sol model.Solution) {
	in := c.In
	nodeIdx := append(append([]int(nil), bsCluster...), in.CoreIndex(), in.CloudIndex())

	sub := in.Filter([]int{a}, nodeIdx)
	if kStar > 0 {
		sub.Apps[0].MaxInstances = int(math.Floor(float64(in.Apps[a].MaxInstances) / float64(kStar)))
	}
	reduceCapacity(in, sub, nodeIdx, sol)

	subSol := c.Inner(sub)
	mergeClusterSolution(a, nodeIdx, subSol, sol)
}

// reduceCapacity overrides each cluster node's capacity to account for
// demand already committed by previously solved apps/clusters in sol,
// mirroring the original algorithm's per-cluster remaining-capacity pass.
// Filter shares capacity maps with the parent instance, so every entry is
// cloned here before being reduced.
func reduceCapacity(in, sub *model.Input, nodeIdx []int, sol model.Solution) {
	for cH, h := range nodeIdx {
		node := sub.Nodes[cH]
		newCap := make(map[string]float64, len(node.Capacity))
		for rName, capacity := range node.Capacity {
			if math.IsInf(capacity, 1) {
				newCap[rName] = capacity
				continue
			}
			demand := 0.0
			for a2, app2 := range in.Apps {
				if !sol.Place[a2][h] {
					continue
				}
				nodeLoad := float64(sol.NodeLoad(a2, h))
				demand += app2.GetDemand(rName).Eval(nodeLoad, true)
			}
			newCap[rName] = capacity - demand
		}
		node.Capacity = newCap
		sub.Nodes[cH] = node
	}
}

// mergeClusterSolution folds a cluster's single-app sub-solution back into
// the global (place, load), remapping sub-instance node/BS indices through
// nodeIdx.
func mergeClusterSolution(a int, nodeIdx []int, subSol model.Solution, sol model.Solution) {
	subNumBS := len(nodeIdx) - 2
	for cH, h := range nodeIdx {
		if subSol.Place[0][cH] {
			sol.Place[a][h] = true
		}
		for cB := 0; cB < subNumBS; cB++ {
			b := nodeIdx[cB]
			sol.Load[a][b][h] += subSol.Load[0][cB][cH]
		}
	}
}
