package engine

import "github.com/edgesp/spsolve/internal/model"

// ScalarRanker implements BRKGA's ranking: ascending single-scalar
// fitness (smaller is better), stopping once the best fitness reaches the
// configured target (0 by default, matching the spec's single-objective
// predicate).
type ScalarRanker struct {
	// StopFitness is the best-fitness value that ends the search early.
	// Zero value means "stop at 0", the spec's default predicate.
	StopFitness float64
}

// Rank sorts the population ascending by fitness[0].
func (r ScalarRanker) Rank(population []model.Individual) []model.Individual {
	sortByFitnessAscending(population, func(ind model.Individual) float64 {
		f := ind.Fitness()
		if len(f) == 0 {
			return 0
		}
		return f[0]
	})
	return population
}

// Stop reports whether the best-ranked individual has reached StopFitness.
func (r ScalarRanker) Stop(ranked []model.Individual, generation int) bool {
	if len(ranked) == 0 {
		return false
	}
	f := ranked[0].Fitness()
	return len(f) > 0 && f[0] <= r.StopFitness
}
