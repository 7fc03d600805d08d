package engine

import (
	"context"
	"math"
	"testing"

	"github.com/edgesp/spsolve/internal/model"
)

// sumChromosome scores an individual by the sum of its genes: the global
// minimum (fitness 0) is the all-zero vector, giving ScalarRanker's stop
// predicate something concrete to reach.
type sumChromosome struct{ numGenes int }

func (c sumChromosome) NumGenes() int { return c.numGenes }

func (c sumChromosome) Fitness(genes []float64) []float64 {
	sum := 0.0
	for _, g := range genes {
		sum += g
	}
	return []float64{sum}
}

func TestEngine_ScalarRanker_ConvergesAndStops(t *testing.T) {
	chromosome := sumChromosome{numGenes: 4}
	params := Params{
		PopulationSize: 10, Generations: 200,
		EliteProportion: 0.2, MutantProportion: 0.2, Seed: 1,
	}
	seeds := [][]float64{make([]float64, 4)} // the zero vector, already optimal
	e := New(chromosome, ScalarRanker{}, params)

	ranked := e.Run(context.Background(), seeds)
	if len(ranked) != params.PopulationSize {
		t.Fatalf("population size: got %d, want %d", len(ranked), params.PopulationSize)
	}
	if got := ranked[0].Fitness()[0]; got != 0 {
		t.Errorf("best fitness: got %v, want 0", got)
	}
}

func TestEngine_Deterministic(t *testing.T) {
	chromosome := sumChromosome{numGenes: 6}
	params := Params{
		PopulationSize: 12, Generations: 15,
		EliteProportion: 0.25, MutantProportion: 0.25, Seed: 42,
	}

	run := func() []float64 {
		e := New(chromosome, ScalarRanker{StopFitness: -1}, params) // never stop early
		ranked := e.Run(context.Background(), nil)
		out := make([]float64, len(ranked))
		for i, ind := range ranked {
			out[i] = ind.Fitness()[0]
		}
		return out
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic run at index %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestEngine_ContextCancellation(t *testing.T) {
	chromosome := sumChromosome{numGenes: 4}
	params := Params{
		PopulationSize: 8, Generations: 1000,
		EliteProportion: 0.25, MutantProportion: 0.25, Seed: 7,
	}
	e := New(chromosome, ScalarRanker{StopFitness: -1}, params)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ranked := e.Run(ctx, nil)
	if len(ranked) != params.PopulationSize {
		t.Fatalf("expected a fully-ranked population even on immediate cancellation, got %d", len(ranked))
	}
}

// twoObjChromosome returns (x, 1-x) for a single-gene individual: every
// point on this line is non-dominated, so the whole population forms one
// Pareto front.
type twoObjChromosome struct{}

func (twoObjChromosome) NumGenes() int { return 1 }
func (twoObjChromosome) Fitness(genes []float64) []float64 {
	return []float64{genes[0], 1.0 - genes[0]}
}

func TestParetoRanker_FrontAndCrowding(t *testing.T) {
	pop := []model.Individual{
		model.NewIndividual([]float64{0.0}, 1).WithFitness([]float64{0.0, 1.0}),
		model.NewIndividual([]float64{0.5}, 1).WithFitness([]float64{0.5, 0.5}),
		model.NewIndividual([]float64{1.0}, 1).WithFitness([]float64{1.0, 0.0}),
	}
	r := &ParetoRanker{}
	ranked := r.Rank(pop)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 individuals, got %d", len(ranked))
	}
	// All three are mutually non-dominated (single front). The finite
	// boundary sentinel (1.0) caps each axis endpoint's distance, while
	// the interior point accumulates a normalized gap per objective; with
	// only two objectives spanning the full [0,1] range, the interior
	// point's summed distance (2.0) exceeds the sentinel, so it sorts
	// first.
	first := ranked[0].Fitness()
	if first[0] != 0.5 {
		t.Errorf("expected the midpoint to have the largest crowding distance and rank first, got order %v %v %v",
			ranked[0].Fitness(), ranked[1].Fitness(), ranked[2].Fitness())
	}
}

func TestParetoRanker_PreferredMode(t *testing.T) {
	// S4: two objectives (deadline-violation, cost). With epsilon=0.01, an
	// individual with markedly lower objective-0 must dominate one with
	// higher objective-0 even if its cost is worse.
	r := &ParetoRanker{PreferredEpsilon: 0.01}
	u := []float64{0.0, 100.0} // low violation, high cost
	v := []float64{1.0, 1.0}   // high violation, low cost
	if !r.dominates(u, v) {
		t.Errorf("expected u=%v to dominate v=%v under preferred mode", u, v)
	}
	if r.dominates(v, u) {
		t.Errorf("expected v=%v not to dominate u=%v under preferred mode", v, u)
	}

	// Within epsilon on objective 0, compare on the remaining objectives.
	w := []float64{0.005, 50.0}
	x := []float64{0.0, 100.0}
	if !r.dominates(w, x) {
		t.Errorf("expected w=%v to dominate x=%v on tied objective-0 but lower cost", w, x)
	}
}

func TestParetoRanker_MGBMStopsOnStationaryPopulation(t *testing.T) {
	r := &ParetoRanker{Threshold: 0.05}
	pop := []model.Individual{
		model.NewIndividual([]float64{0.0}, 1).WithFitness([]float64{1.0, 1.0}),
		model.NewIndividual([]float64{0.0}, 1).WithFitness([]float64{1.0, 1.0}),
	}

	stopped := false
	maxGenerations := 100
	for gen := 0; gen < maxGenerations; gen++ {
		if r.Stop(pop, gen) {
			stopped = true
			break
		}
	}
	if !stopped {
		t.Fatalf("expected MGBM to stop within %d generations on a stationary population", maxGenerations)
	}
}

// TestEngine_PoolSizeDoesNotChangeOutput is review Testable Property 5:
// bit-identical output regardless of worker count.
func TestEngine_PoolSizeDoesNotChangeOutput(t *testing.T) {
	chromosome := sumChromosome{numGenes: 6}
	seeds := [][]float64{{0.9, 0.1, 0.4, 0.6, 0.2, 0.8}}

	run := func(poolSize int) []float64 {
		params := Params{
			PopulationSize: 16, Generations: 10,
			EliteProportion: 0.25, MutantProportion: 0.25, Seed: 99,
			PoolSize: poolSize,
		}
		e := New(chromosome, ScalarRanker{StopFitness: -1}, params)
		ranked := e.Run(context.Background(), seeds)
		out := make([]float64, len(ranked))
		for i, ind := range ranked {
			out[i] = ind.Fitness()[0]
		}
		return out
	}

	want := run(1)
	for _, poolSize := range []int{2, 3, 4, 8} {
		got := run(poolSize)
		if len(got) != len(want) {
			t.Fatalf("PoolSize=%d: length mismatch: got %d, want %d", poolSize, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("PoolSize=%d: fitness[%d] = %v, want %v (PoolSize=1)", poolSize, i, got[i], want[i])
			}
		}
	}
}

// panickyChromosome panics for the one gene vector whose first gene exceeds
// the trigger, exercising the WorkerFailure recovery path.
type panickyChromosome struct {
	numGenes int
	trigger  float64
}

func (c panickyChromosome) NumGenes() int { return c.numGenes }

func (c panickyChromosome) Fitness(genes []float64) []float64 {
	if genes[0] > c.trigger {
		panic("simulated decode failure")
	}
	return []float64{genes[0]}
}

func TestEngine_WorkerFailureRecordsInfFitnessAndContinues(t *testing.T) {
	chromosome := panickyChromosome{numGenes: 1, trigger: 0.5}
	seeds := [][]float64{{0.1}, {0.9}, {0.2}, {0.3}}
	params := Params{
		PopulationSize: 4, Generations: 0,
		EliteProportion: 0.25, MutantProportion: 0.25, Seed: 5, PoolSize: 4,
	}
	e := New(chromosome, ScalarRanker{StopFitness: -1}, params)

	ranked := e.Run(context.Background(), seeds)
	if len(ranked) != 4 {
		t.Fatalf("expected a fully-ranked population of 4, got %d", len(ranked))
	}

	foundInf := false
	for _, ind := range ranked {
		f := ind.Fitness()[0]
		if math.IsInf(f, 1) {
			foundInf = true
			continue
		}
		if f > 0.5 {
			t.Errorf("expected every non-panicking individual's gene to be <= 0.5, got %v", f)
		}
	}
	if !foundInf {
		t.Fatalf("expected the panicking individual (gene 0.9) to score +Inf, got %v", ranked)
	}
	// The worst (+Inf) individual must sort last under ScalarRanker's
	// ascending order.
	if !math.IsInf(ranked[len(ranked)-1].Fitness()[0], 1) {
		t.Errorf("expected the +Inf individual to rank last, got %v", ranked)
	}
}
