// Package kmedoids implements k-medoids clustering over an arbitrary
// distance matrix, with a deterministic priority-based medoid
// initialization and a silhouette-score helper for model selection.
package kmedoids

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const defaultMaxIterations = 300

// KMedoids clusters a feature subset of points using a symmetric distance
// matrix defined over the full point set. Fit is deterministic given the
// same distance matrix — no random restarts.
type KMedoids struct {
	MaxIterations int

	lastMedoids []int
}

// New returns a KMedoids clusterer with the default iteration cap.
func New() *KMedoids {
	return &KMedoids{MaxIterations: defaultMaxIterations}
}

// Fit partitions points into nbClusters node-sets. distances must be a
// symmetric matrix indexed by the full node set; points is the subset of
// node indices being clustered (each medoid candidate is drawn from
// points). Returns nbClusters node-sets, possibly with empty sets when
// nbClusters > len(points).
func (k *KMedoids) Fit(nbClusters int, points []int, distances [][]float64) [][]int {
	if nbClusters <= 0 || len(points) == 0 {
		k.lastMedoids = nil
		return make([][]int, max(nbClusters, 0))
	}

	maxIter := k.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}

	labels := make(map[int]int, len(points))
	for _, v := range points {
		labels[v] = -1
	}
	medoids := k.initialMedoids(nbClusters, points, distances)

	var clusters [][]int
	changed := true
	for iter := 0; iter < maxIter && changed; iter++ {
		clusters = make([][]int, nbClusters)
		changed = false

		for _, v := range points {
			minDist := math.Inf(1)
			newLabel := -1
			for label, medoid := range medoids {
				// Ties broken by lowest medoid index: only strictly
				// closer medoids displace the current label.
				if distances[v][medoid] < minDist {
					newLabel = label
					minDist = distances[v][medoid]
				}
			}
			if newLabel != labels[v] {
				changed = true
			}
			labels[v] = newLabel
			clusters[newLabel] = append(clusters[newLabel], v)
		}

		for c := range clusters {
			cluster := clusters[c]
			if len(cluster) == 0 {
				continue
			}
			medoid := medoids[c]
			minSumDist := math.Inf(1)
			for _, v := range cluster {
				sumDist := 0.0
				for _, u := range cluster {
					sumDist += distances[v][u]
				}
				if sumDist < minSumDist {
					minSumDist = sumDist
					medoid = v
				}
			}
			medoids[c] = medoid
		}
	}

	k.lastMedoids = medoids
	return clusters
}

// LastMedoids returns the medoids computed by the most recent Fit call.
func (k *KMedoids) LastMedoids() []int {
	return k.lastMedoids
}

// initialMedoids picks the nbClusters most "central" points: for each
// candidate j, priority(j) = sum_i distances[i][j] / sum_l distances[i][l]
// summed over i in points (i with zero total distance is skipped); the
// nbClusters points with lowest priority are selected.
func (k *KMedoids) initialMedoids(nbClusters int, points []int, distances [][]float64) []int {
	sumDist := make(map[int]float64, len(points))
	row := make([]float64, len(points))
	for _, i := range points {
		for idx, l := range points {
			row[idx] = distances[i][l]
		}
		sumDist[i] = floats.Sum(row)
	}

	priority := make(map[int]float64, len(points))
	for _, j := range points {
		priority[j] = 0.0
	}
	for _, i := range points {
		if sumDist[i] <= 0.0 {
			continue
		}
		for _, j := range points {
			priority[j] += distances[i][j] / sumDist[i]
		}
	}

	sorted := append([]int(nil), points...)
	sortByPriority(sorted, priority)

	n := nbClusters
	if n > len(sorted) {
		n = len(sorted)
	}
	medoids := make([]int, n)
	copy(medoids, sorted[:n])
	// Pad with the last sorted point when nbClusters > len(points) so
	// medoid slots always stay populated; the corresponding clusters
	// naturally end up empty in Fit.
	for len(medoids) < nbClusters {
		medoids = append(medoids, sorted[len(sorted)-1])
	}
	return medoids
}

func sortByPriority(points []int, priority map[int]float64) {
	// Small input sizes (node counts); an insertion sort keeps the
	// comparator simple and the ordering stable for equal priorities.
	for i := 1; i < len(points); i++ {
		j := i
		for j > 0 && priority[points[j-1]] > priority[points[j]] {
			points[j-1], points[j] = points[j], points[j-1]
			j--
		}
	}
}

// SilhouetteScore returns, in [-1, 1], the mean over all clusters of each
// cluster's mean per-point silhouette (b-a)/max(a,b), where a is the
// point's mean distance to the members of its own cluster (itself
// included) and b the smallest mean distance to another non-empty
// cluster. Clusters of size <= 1 (empty ones included) contribute 0 to
// that mean. Returns 0 if there are no clusters.
func (k *KMedoids) SilhouetteScore(clusters [][]int, distances [][]float64) float64 {
	nbClusters := len(clusters)
	if nbClusters == 0 {
		return 0.0
	}

	vals := make([]float64, nbClusters)
	for label := range clusters {
		vals[label] = clusterSilhouette(label, clusters, distances)
	}
	return stat.Mean(vals, nil)
}

func clusterSilhouette(label int, clusters [][]int, distances [][]float64) float64 {
	cluster := clusters[label]
	if len(cluster) <= 1 {
		return 0.0
	}
	vals := make([]float64, len(cluster))
	for i, v := range cluster {
		vals[i] = datumSilhouette(v, label, clusters, distances)
	}
	return stat.Mean(vals, nil)
}

func datumSilhouette(datum, label int, clusters [][]int, distances [][]float64) float64 {
	cluster := clusters[label]
	if len(cluster) <= 1 {
		return 0.0
	}

	ownDists := make([]float64, len(cluster))
	for i, v := range cluster {
		ownDists[i] = distances[datum][v]
	}
	a := stat.Mean(ownDists, nil)

	b := math.Inf(1)
	for cLabel, c := range clusters {
		if cLabel == label || len(c) == 0 {
			continue
		}
		otherDists := make([]float64, len(c))
		for i, v := range c {
			otherDists[i] = distances[datum][v]
		}
		if cb := stat.Mean(otherDists, nil); cb < b {
			b = cb
		}
	}

	if math.IsInf(b, 1) || (b == 0.0 && a == 0.0) {
		return 0.0
	}
	return (b - a) / math.Max(a, b)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
