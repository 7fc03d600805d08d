// Package engine implements the generic evolutionary engine (C5/C6):
// BRKGA population mechanics parameterized by a Ranker, so the BRKGA
// scalar-fitness engine and the NSGA-II multi-objective engine share one
// generation loop and differ only in how a population is ordered and when
// it should stop.
package engine

import (
	"context"
	"log"
	"math"
	"sort"
	"sync"

	"github.com/edgesp/spsolve/internal/model"
)

// Chromosome is the problem-specific plug-in: it knows how to score an
// individual and how many genes a full chromosome has. The engine never
// inspects gene contents itself.
type Chromosome interface {
	NumGenes() int
	Fitness(genes []float64) []float64
}

// SeededChromosome is an optional Chromosome extension for fitness
// functions that want their own source of randomness (a randomized
// tie-break, a Monte-Carlo objective estimate). The worker pool derives one
// independent RNG per task from the task's fixed population index (see
// RNG.Split), so using it never makes output depend on PoolSize or
// scheduling order. Chromosome implementations that don't need randomness
// simply don't implement this.
type SeededChromosome interface {
	Chromosome
	FitnessSeeded(genes []float64, rng *RNG) []float64
}

// Ranker orders a scored population best-first and decides when to stop.
// ScalarRanker implements BRKGA's ascending-fitness order; ParetoRanker
// implements NSGA-II's (rank, crowding) order plus the MGBM criterion.
type Ranker interface {
	Rank(population []model.Individual) []model.Individual
	Stop(ranked []model.Individual, generation int) bool
}

// Recorder observes engine progress; see package instrumentation for the
// Prometheus-backed implementation. A nil Recorder is a no-op.
type Recorder interface {
	ObserveGeneration(generation int, population []model.Individual)
}

// Params configures one run of the engine.
type Params struct {
	PopulationSize   int
	Generations      int
	EliteProportion  float64
	MutantProportion float64
	// EliteProbability is the probability an offspring gene is copied from
	// its elite parent during crossover. Defaults to EliteProportion.
	EliteProbability float64
	Seed             int64
	// PoolSize is the number of worker goroutines fitness evaluation is
	// farmed out to. <=0 defaults to 1 (sequential, on the caller's
	// goroutine). Every PoolSize produces identical output, since workers
	// share no mutable state and results are written back by population
	// index rather than completion order.
	PoolSize int
}

// Engine runs the shared BRKGA/NSGA-II generation loop.
type Engine struct {
	Chromosome Chromosome
	Ranker     Ranker
	Params     Params
	Recorder   Recorder

	rng       *RNG
	workerRNG *RNG
	eliteSize int
	mutSize   int
}

// New builds an Engine with normalized parameters and a root RNG derived
// from Params.Seed.
func New(chromosome Chromosome, ranker Ranker, params Params) *Engine {
	if params.EliteProbability == 0 {
		params.EliteProbability = params.EliteProportion
	}
	if params.PoolSize <= 0 {
		params.PoolSize = 1
	}
	return &Engine{
		Chromosome: chromosome,
		Ranker:     ranker,
		Params:     params,
		// rng drives population mechanics (seeding, mutants, crossover) on
		// the caller's goroutine only, so its sequence never depends on
		// PoolSize. workerRNG is a separate stream solely for deriving
		// per-task child RNGs in evaluateFitness; keeping it apart from rng
		// means the number of fitness workers never perturbs population
		// mechanics draws.
		rng:       NewRNG(params.Seed),
		workerRNG: NewRNG(params.Seed ^ 0x5DEECE66D),
		eliteSize: int(round(params.EliteProportion * float64(params.PopulationSize))),
		mutSize:   int(round(params.MutantProportion * float64(params.PopulationSize))),
	}
}

func round(x float64) float64 {
	if x < 0 {
		return -round(-x)
	}
	i := float64(int64(x))
	if x-i >= 0.5 {
		return i + 1
	}
	return i
}

// Run executes the generation loop starting from seeds (bootstrap gene
// vectors from C2), filling the remainder of the first population with
// random individuals. It returns the best-ranked final population, and
// stops early on ctx cancellation, returning the last fully-ranked
// population computed so far.
func (e *Engine) Run(ctx context.Context, seeds [][]float64) []model.Individual {
	numGenes := e.Chromosome.NumGenes()
	pop := e.firstPopulation(seeds, numGenes)
	ranked := e.scoreAndRank(pop)

	if e.Recorder != nil {
		e.Recorder.ObserveGeneration(0, ranked)
	}

	for gen := 1; gen <= e.Params.Generations; gen++ {
		select {
		case <-ctx.Done():
			return ranked
		default:
		}
		if e.Ranker.Stop(ranked, gen-1) {
			break
		}
		ranked = e.nextPopulation(ranked, numGenes)
		if e.Recorder != nil {
			e.Recorder.ObserveGeneration(gen, ranked)
		}
	}
	return ranked
}

func (e *Engine) firstPopulation(seeds [][]float64, numGenes int) []model.Individual {
	pop := make([]model.Individual, 0, e.Params.PopulationSize)
	for _, g := range seeds {
		if len(pop) >= e.Params.PopulationSize {
			break
		}
		pop = append(pop, model.NewIndividual(g, numGenes))
	}
	for len(pop) < e.Params.PopulationSize {
		pop = append(pop, e.randomIndividual(numGenes))
	}
	return pop
}

func (e *Engine) randomIndividual(numGenes int) model.Individual {
	genes := make([]float64, numGenes)
	for i := range genes {
		genes[i] = e.rng.Float64()
	}
	return model.NewIndividual(genes, numGenes)
}

// scoreAndRank computes fitness for every unscored individual, then hands
// the population to the Ranker.
func (e *Engine) scoreAndRank(pop []model.Individual) []model.Individual {
	e.evaluateFitness(pop)
	return e.Ranker.Rank(pop)
}

// evaluateFitness scores every individual in pop that isn't already scored,
// fanning tasks out across Params.PoolSize worker goroutines (grounded on
// the teacher's simulation.Engine.RunAll: a buffered channel as a counting
// semaphore plus a WaitGroup, results written into a pre-sized slice by
// index rather than appended). Because each task's result is written to
// pop[i] and nothing else is shared between tasks, the final contents of
// pop — and therefore the Ranker's input — are identical no matter how many
// workers ran or in what order they finished; PoolSize only changes
// wall-clock time (Testable Property 5).
func (e *Engine) evaluateFitness(pop []model.Individual) {
	pending := make([]int, 0, len(pop))
	numObj := 0
	for i, ind := range pop {
		if ind.HasFitness() {
			if numObj == 0 {
				numObj = len(ind.Fitness())
			}
			continue
		}
		pending = append(pending, i)
	}
	if len(pending) == 0 {
		return
	}

	// Derive one independent child RNG per pending task up front, keyed by
	// the task's fixed population index. Split mutates its receiver, so
	// deriving children from workers running concurrently would race;
	// deriving them all here, sequentially, before any goroutine starts
	// avoids that while keeping every child's seed a pure function of i.
	children := make(map[int]*RNG, len(pending))
	for _, i := range pending {
		children[i] = e.workerRNG.Split(i)
	}

	// A panicking first task needs a same-shaped +Inf fallback to report;
	// if no individual in pop is already scored, run one task synchronously
	// to learn the fitness vector's width before fanning the rest out.
	if numObj == 0 {
		first := pending[0]
		pending = pending[1:]
		pop[first] = pop[first].WithFitness(e.evalOne(first, pop[first], children[first], 1))
		numObj = len(pop[first].Fitness())
		if len(pending) == 0 {
			return
		}
	}

	if e.Params.PoolSize <= 1 {
		for _, i := range pending {
			pop[i] = pop[i].WithFitness(e.evalOne(i, pop[i], children[i], numObj))
		}
		return
	}

	sem := make(chan struct{}, e.Params.PoolSize)
	var wg sync.WaitGroup
	for _, i := range pending {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			pop[i] = pop[i].WithFitness(e.evalOne(i, pop[i], children[i], numObj))
		}(i)
	}
	wg.Wait()
}

// evalOne scores one individual, recovering a panicking Chromosome instead
// of letting it crash the run: the coordinator logs the failure and records
// a +Inf fitness vector for the affected individual, then continues
// (WorkerFailure). fallbackLen sizes that vector to match its peers.
func (e *Engine) evalOne(i int, ind model.Individual, rng *RNG, fallbackLen int) (fitness []float64) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("engine: fitness task %d panicked: %v; recording +Inf fitness", i, r)
			fitness = infVector(fallbackLen)
		}
	}()
	if sc, ok := e.Chromosome.(SeededChromosome); ok {
		return sc.FitnessSeeded(ind.GeneSlice(), rng)
	}
	return e.Chromosome.Fitness(ind.GeneSlice())
}

// infVector returns an n-length vector of +Inf, the worst possible fitness
// under both ScalarRanker's ascending order and ParetoRanker's domination
// check.
func infVector(n int) []float64 {
	if n <= 0 {
		n = 1
	}
	v := make([]float64, n)
	for i := range v {
		v[i] = math.Inf(1)
	}
	return v
}

// nextPopulation builds one generation: elite survivors, fresh mutants,
// and uniform-crossover offspring, then re-scores and truncates to size.
func (e *Engine) nextPopulation(ranked []model.Individual, numGenes int) []model.Individual {
	eliteSize := e.eliteSize
	if eliteSize > len(ranked) {
		eliteSize = len(ranked)
	}
	elite := ranked[:eliteSize]
	nonElite := ranked[eliteSize:]

	next := make([]model.Individual, 0, e.Params.PopulationSize)
	next = append(next, elite...)

	for i := 0; i < e.mutSize; i++ {
		next = append(next, e.randomIndividual(numGenes))
	}

	crossSize := e.Params.PopulationSize - len(next)
	for i := 0; i < crossSize; i++ {
		if len(elite) == 0 || len(nonElite) == 0 {
			next = append(next, e.randomIndividual(numGenes))
			continue
		}
		p1 := elite[e.rng.Intn(len(elite))]
		p2 := nonElite[e.rng.Intn(len(nonElite))]
		next = append(next, e.crossover(p1, p2, numGenes))
	}

	ranked = e.scoreAndRank(next)
	if len(ranked) > e.Params.PopulationSize {
		ranked = ranked[:e.Params.PopulationSize]
	}
	return ranked
}

// crossover implements parameterized uniform crossover: each gene is
// copied from the elite parent with probability EliteProbability, else
// from the non-elite parent.
func (e *Engine) crossover(elite, other model.Individual, numGenes int) model.Individual {
	child := make([]float64, numGenes)
	eg, og := elite.GeneSlice(), other.GeneSlice()
	for g := 0; g < numGenes; g++ {
		if e.rng.Float64() < e.Params.EliteProbability {
			child[g] = eg[g]
		} else {
			child[g] = og[g]
		}
	}
	return model.NewIndividual(child, numGenes)
}

// sortByFitnessAscending is shared by ScalarRanker and any caller needing
// a stable ascending-fitness ordering.
func sortByFitnessAscending(pop []model.Individual, key func(model.Individual) float64) {
	sort.SliceStable(pop, func(i, j int) bool {
		return key(pop[i]) < key(pop[j])
	})
}
