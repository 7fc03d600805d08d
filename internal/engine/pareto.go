package engine

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/edgesp/spsolve/internal/model"
)

// maxCrowdDist is the finite sentinel assigned to front-boundary
// individuals, replacing +Inf so crowding-distance sums stay finite.
const maxCrowdDist = 1.0

// ParetoRanker implements NSGA-II's ranking: lexicographic (front rank,
// −crowding distance), with an optional "preferred" dominance mode that
// treats objective 0 as a priority axis up to a tolerance, plus the MGBM
// online stopping criterion.
type ParetoRanker struct {
	// PreferredEpsilon enables "preferred" dominance on objective 0: if
	// |u0-v0| <= PreferredEpsilon, dominance is decided on the remaining
	// objectives; otherwise decided on objective 0 alone. Zero disables
	// preferred mode (plain Pareto dominance on all objectives).
	PreferredEpsilon float64
	// Threshold is the MGBM stopping threshold; the search stops once the
	// stagnation estimator I_t drops below it.
	Threshold float64

	mgbmIndex   float64
	prevFitness [][]float64
}

// Rank partitions the population into fronts, computes crowding distance
// within each, and returns individuals ordered by (front rank ascending,
// crowding distance descending).
func (r *ParetoRanker) Rank(population []model.Individual) []model.Individual {
	fitnesses := make([][]float64, len(population))
	for i, ind := range population {
		fitnesses[i] = ind.Fitness()
	}

	fronts := r.nonDominatedSort(fitnesses)
	distances := crowdingDistances(fitnesses, fronts)

	rank := make([]int, len(population))
	for fi, front := range fronts {
		for _, p := range front {
			rank[p] = fi
		}
	}

	order := make([]int, len(population))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		pi, pj := order[i], order[j]
		if rank[pi] != rank[pj] {
			return rank[pi] < rank[pj]
		}
		return distances[pi] > distances[pj]
	})

	ranked := make([]model.Individual, len(population))
	for i, p := range order {
		ranked[i] = population[p]
	}
	return ranked
}

// dominates reports whether fitness u dominates v for minimization, with
// optional preferred-objective tie tolerance on coordinate 0.
func (r *ParetoRanker) dominates(u, v []float64) bool {
	if r.PreferredEpsilon > 0 && len(u) > 0 {
		if math.Abs(u[0]-v[0]) > r.PreferredEpsilon {
			return u[0] < v[0]
		}
		return dominatesPlain(u[1:], v[1:])
	}
	return dominatesPlain(u, v)
}

func dominatesPlain(u, v []float64) bool {
	strictlyBetter := false
	for i := range u {
		if u[i] > v[i] {
			return false
		}
		if u[i] < v[i] {
			strictlyBetter = true
		}
	}
	return strictlyBetter
}

// nonDominatedSort implements the standard O(n^2) fast non-dominated sort.
func (r *ParetoRanker) nonDominatedSort(fitnesses [][]float64) [][]int {
	n := len(fitnesses)
	dominatedBy := make([][]int, n) // S[p]: individuals p dominates
	dominationCount := make([]int, n)
	fronts := [][]int{{}}

	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			if p == q {
				continue
			}
			switch {
			case r.dominates(fitnesses[p], fitnesses[q]):
				dominatedBy[p] = append(dominatedBy[p], q)
			case r.dominates(fitnesses[q], fitnesses[p]):
				dominationCount[p]++
			}
		}
		if dominationCount[p] == 0 {
			fronts[0] = append(fronts[0], p)
		}
	}

	for i := 0; len(fronts[i]) > 0; i++ {
		var next []int
		for _, p := range fronts[i] {
			for _, q := range dominatedBy[p] {
				dominationCount[q]--
				if dominationCount[q] == 0 {
					next = append(next, q)
				}
			}
		}
		fronts = append(fronts, next)
	}
	return fronts[:len(fronts)-1]
}

// crowdingDistances computes the NSGA-II crowding distance for every
// individual, front by front, using maxCrowdDist as the boundary
// sentinel instead of +Inf.
func crowdingDistances(fitnesses [][]float64, fronts [][]int) []float64 {
	distances := make([]float64, len(fitnesses))
	if len(fitnesses) == 0 {
		return distances
	}
	nbObj := len(fitnesses[0])

	for _, front := range fronts {
		if len(front) == 0 {
			continue
		}
		if len(front) <= 2 {
			for _, p := range front {
				distances[p] = maxCrowdDist
			}
			continue
		}
		for m := 0; m < nbObj; m++ {
			sorted := append([]int(nil), front...)
			sort.SliceStable(sorted, func(i, j int) bool {
				return fitnesses[sorted[i]][m] < fitnesses[sorted[j]][m]
			})

			objVals := make([]float64, len(sorted))
			for i, p := range sorted {
				objVals[i] = fitnesses[p][m]
			}
			minV, maxV := floats.Min(objVals), floats.Max(objVals)
			distances[sorted[0]] = maxCrowdDist
			distances[sorted[len(sorted)-1]] = maxCrowdDist
			if maxV == minV {
				continue
			}
			for i := 1; i < len(sorted)-1; i++ {
				distances[sorted[i]] += (fitnesses[sorted[i+1]][m] - fitnesses[sorted[i-1]][m]) / (maxV - minV)
			}
		}
	}
	return distances
}

// Stop implements the MGBM (Mutual Generational Bitwise Metric) online
// stopping criterion: it tracks how much the non-dominated front at t-1
// is dominated by the front at t and vice versa, and stops once the
// running average of that rate over generations drops below Threshold.
func (r *ParetoRanker) Stop(ranked []model.Individual, generation int) bool {
	currentFront := nonDominatedFitnesses(ranked, r)
	if r.prevFitness == nil {
		r.prevFitness = currentFront
		return false
	}

	mdr := mutualDominationRate(r, r.prevFitness, currentFront)
	t := float64(generation + 1)
	r.mgbmIndex = (t/(t+1))*r.mgbmIndex + (1/(t+1))*mdr
	r.prevFitness = currentFront

	return r.mgbmIndex < r.Threshold
}

func nonDominatedFitnesses(ranked []model.Individual, r *ParetoRanker) [][]float64 {
	fitnesses := make([][]float64, len(ranked))
	for i, ind := range ranked {
		fitnesses[i] = ind.Fitness()
	}
	fronts := r.nonDominatedSort(fitnesses)
	if len(fronts) == 0 {
		return nil
	}
	front := make([][]float64, len(fronts[0]))
	for i, p := range fronts[0] {
		front[i] = fitnesses[p]
	}
	return front
}

// mutualDominationRate computes mdr_t per the spec: the fraction of the
// previous front dominated by some member of the current front, minus the
// fraction of the current front dominated by some member of the previous
// front.
func mutualDominationRate(r *ParetoRanker, prev, cur [][]float64) float64 {
	if len(prev) == 0 || len(cur) == 0 {
		return 0
	}
	dominatedPrev := 0
	for _, u := range prev {
		for _, v := range cur {
			if r.dominates(v, u) {
				dominatedPrev++
				break
			}
		}
	}
	dominatedCur := 0
	for _, v := range cur {
		for _, u := range prev {
			if r.dominates(u, v) {
				dominatedCur++
				break
			}
		}
	}
	return float64(dominatedPrev)/float64(len(prev)) - float64(dominatedCur)/float64(len(cur))
}
