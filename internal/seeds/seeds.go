// Package seeds implements the heuristic seeding library (C2): pure
// functions from a read-only problem instance to a full-length gene
// vector, used to prime the first generation of the evolutionary engine.
// Seeds never compute fitness; decoding and scoring are left to C3/C4.
package seeds

import (
	"fmt"
	"math"

	"github.com/edgesp/spsolve/internal/kmedoids"
	"github.com/edgesp/spsolve/internal/model"
)

// Func builds one full-length gene vector for the given instance and
// chromosome layout.
type Func func(in *model.Input, layout model.ChromosomeLayout) []float64

// Cloud returns the all-zero chromosome: the decoder interprets a zero
// region-1 fraction as "no local instances", so every request falls
// through to the CLOUD candidate.
func Cloud(in *model.Input, layout model.ChromosomeLayout) []float64 {
	return make([]float64, layout.NumGenes())
}

// NetDelay prioritizes, for each app, the nodes with the shortest average
// network delay: region-1 is set to 1.0 (full instance budget) and
// region-2[a,h] = 1 - avg_delay(a,h)/max_avg_delay(a).
func NetDelay(in *model.Input, layout model.ChromosomeLayout) []float64 {
	genes := make([]float64, layout.NumGenes())
	nbNodes := len(in.Nodes)

	for a := range in.Apps {
		genes[layout.Region1(a)] = 1.0

		delays := make([]float64, nbNodes)
		maxDelay := 1.0
		for h := 0; h < nbNodes; h++ {
			d := in.AvgNetDelay(a, h)
			delays[h] = d
			if d > maxDelay {
				maxDelay = d
			}
		}
		for h := 0; h < nbNodes; h++ {
			genes[layout.Region2(a, h)] = 1.0 - delays[h]/maxDelay
		}
	}
	return genes
}

// features returns the base-station indices with at least one user of app a.
func features(in *model.Input, a int) []int {
	var out []int
	for b := 0; b < in.NumBS(); b++ {
		if in.Users[a][b] > 0 {
			out = append(out, b)
		}
	}
	return out
}

// medoidDistances computes the distance of every node h to its nearest
// medoid in medoids, using NetDelay[a][m][h] (delay from medoid base
// station m to node h) as the distance function.
func medoidDistances(in *model.Input, a int, medoids []int) ([]float64, float64) {
	nbNodes := len(in.Nodes)
	dist := make([]float64, nbNodes)
	maxDist := 1.0
	for h := 0; h < nbNodes; h++ {
		best := math.Inf(1)
		for _, m := range medoids {
			if d := in.NetDelay[a][m][h]; d < best {
				best = d
			}
		}
		dist[h] = best
		if best > maxDist {
			maxDist = best
		}
	}
	return dist, maxDist
}

// ClusterMedoids clusters each app's serving base stations into
// k = min(|features|, max_instances_a) groups and prioritizes nodes by
// proximity to the nearest cluster medoid.
func ClusterMedoids(in *model.Input, layout model.ChromosomeLayout) []float64 {
	genes := make([]float64, layout.NumGenes())
	nbNodes := len(in.Nodes)

	for a, app := range in.Apps {
		genes[layout.Region1(a)] = 1.0

		feats := features(in, a)
		k := app.MaxInstances
		if len(feats) < k {
			k = len(feats)
		}
		if k <= 0 {
			continue
		}

		km := kmedoids.New()
		km.Fit(k, feats, in.NetDelay[a])
		dist, maxDist := medoidDistances(in, a, km.LastMedoids())

		for h := 0; h < nbNodes; h++ {
			genes[layout.Region2(a, h)] = 1.0 - dist[h]/maxDist
		}
	}
	return genes
}

// ClusterMedoidsSC is like ClusterMedoids but searches k in
// 1..min(|features|, max_instances_a) and keeps the k with the best
// silhouette score.
func ClusterMedoidsSC(in *model.Input, layout model.ChromosomeLayout) []float64 {
	genes := make([]float64, layout.NumGenes())
	nbNodes := len(in.Nodes)

	for a, app := range in.Apps {
		genes[layout.Region1(a)] = 1.0

		feats := features(in, a)
		maxK := app.MaxInstances
		if len(feats) < maxK {
			maxK = len(feats)
		}

		var medoids []int
		maxScore := -1.0
		for k := 1; k <= maxK; k++ {
			km := kmedoids.New()
			clusters := km.Fit(k, feats, in.NetDelay[a])
			score := km.SilhouetteScore(clusters, in.NetDelay[a])
			if score > maxScore {
				maxScore = score
				medoids = km.LastMedoids()
			}
		}

		if len(medoids) == 0 {
			continue
		}
		dist, maxDist := medoidDistances(in, a, medoids)
		for h := 0; h < nbNodes; h++ {
			genes[layout.Region2(a, h)] = 1.0 - dist[h]/maxDist
		}
	}
	return genes
}

// Deadline prioritizes requests from apps with the strictest deadlines:
// region-1 is set to 1.0 and each request gene is set to
// 1 - deadline_a/max_deadline.
func Deadline(in *model.Input, layout model.ChromosomeLayout) []float64 {
	genes := make([]float64, layout.NumGenes())

	maxDeadline := 1.0
	for _, app := range in.Apps {
		if app.Deadline > maxDeadline {
			maxDeadline = app.Deadline
		}
	}
	for a := range in.Apps {
		genes[layout.Region1(a)] = 1.0
	}
	for i, req := range in.RequestList() {
		genes[layout.Region3(i)] = 1.0 - in.Apps[req.App].Deadline/maxDeadline
	}
	return genes
}

// Merge returns the convex combination of the given gene vectors. A nil
// weights slice defaults to uniform weighting.
func Merge(genes [][]float64, weights []float64) []float64 {
	if len(genes) == 0 {
		return nil
	}
	n := len(genes[0])
	if weights == nil {
		weights = make([]float64, len(genes))
		w := 1.0 / float64(len(genes))
		for i := range weights {
			weights[i] = w
		}
	}

	out := make([]float64, n)
	for i, g := range genes {
		for j, v := range g {
			out[j] += weights[i] * v
		}
	}
	return out
}

// Invert returns 1-g element-wise.
func Invert(genes []float64) []float64 {
	out := make([]float64, len(genes))
	for i, v := range genes {
		out[i] = 1.0 - v
	}
	return out
}

// Registry resolves seed names to Func values for the orchestrator's
// --seeds flag.
var Registry = map[string]Func{
	"cloud":              Cloud,
	"net_delay":          NetDelay,
	"cluster_metoids":    ClusterMedoids,
	"cluster_metoids_sc": ClusterMedoidsSC,
	"deadline":           Deadline,
}

// Resolve looks up a seed name, returning a descriptive error for unknown
// names rather than a bare map miss.
func Resolve(name string) (Func, error) {
	fn, ok := Registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown seed %q: must be one of cloud, net_delay, cluster_metoids, cluster_metoids_sc, deadline", name)
	}
	return fn, nil
}

// Build resolves and evaluates a list of named seeds against the instance,
// returning one gene vector per name in order.
func Build(names []string, in *model.Input, layout model.ChromosomeLayout) ([][]float64, error) {
	out := make([][]float64, 0, len(names))
	for _, name := range names {
		fn, err := Resolve(name)
		if err != nil {
			return nil, err
		}
		out = append(out, fn(in, layout))
	}
	return out, nil
}
