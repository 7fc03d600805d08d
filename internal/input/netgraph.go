package input

import (
	"math/rand"

	"github.com/edgesp/spsolve/internal/model"
)

// netDelayGraph builds the dense NetDelay[a][i][j] matrix for one
// application from a sparse random draw over the BS-BS, BS-core and
// core-cloud edges followed by an all-pairs shortest path, mirroring
// path.py's calc_net_delay (a Floyd-Warshall closure over gen_net_graphs'
// sparse per-edge draws).
func netDelayGraph(spec NetDelaySpec, bsPoints []hexPoint, rng *rand.Rand) [][]float64 {
	nbBS := len(bsPoints)
	n := nbBS + 2
	coreIdx, cloudIdx := nbBS, nbBS+1

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			if i == j {
				continue
			}
			dist[i][j] = model.Inf
		}
	}

	for i := 0; i < nbBS; i++ {
		for j := i + 1; j < nbBS; j++ {
			if !bsPoints[i].isNeighbor(bsPoints[j]) {
				continue
			}
			d := drawRange(spec.BSBS, rng)
			dist[i][j], dist[j][i] = d, d
		}
	}
	for i := 0; i < nbBS; i++ {
		d := drawRange(spec.BSCore, rng)
		dist[i][coreIdx], dist[coreIdx][i] = d, d
	}
	d := drawRange(spec.CoreCloud, rng)
	dist[coreIdx][cloudIdx], dist[cloudIdx][coreIdx] = d, d

	floydWarshall(dist)
	// NetDelay[a] carries one row per BS (callers index it [b][h] with b
	// ranging over BS only); core/cloud rows exist solely to seed the
	// shortest-path computation above and are dropped here.
	return dist[:nbBS]
}

// floydWarshall computes all-pairs shortest paths in place, treating
// model.Inf as unreachable: legs equal to model.Inf are skipped
// explicitly, so no sum involving an unreachable leg is formed.
func floydWarshall(dist [][]float64) {
	n := len(dist)
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			if dist[i][k] == model.Inf {
				continue
			}
			for j := 0; j < n; j++ {
				if dist[k][j] == model.Inf {
					continue
				}
				if alt := dist[i][k] + dist[k][j]; alt < dist[i][j] {
					dist[i][j] = alt
				}
			}
		}
	}
}

// drawRange samples a Range uniformly, or returns model.Inf for an
// unbounded range.
func drawRange(r Range, rng *rand.Rand) float64 {
	if r.Inf {
		return model.Inf
	}
	if r.Low >= r.High {
		return r.Low
	}
	return r.Low + rng.Float64()*(r.High-r.Low)
}
