package model

// ChromosomeLayout derives the three fixed-length chromosome regions from
// the instance sizes once, at construction time, per the spec's "no
// dynamic-length crossover" design note.
//
//	region 1 — [0, NbApps)                          per-app instance fraction
//	region 2 — [NbApps, NbApps+NbApps*NbNodes)       per-(app,node) priority
//	region 3 — [region2End, region2End+NbRequests)   per-request priority
type ChromosomeLayout struct {
	NbApps     int
	NbNodes    int
	NbRequests int
}

// NewChromosomeLayout derives a layout from an instance and its canonical
// request list length.
func NewChromosomeLayout(in *Input) ChromosomeLayout {
	return ChromosomeLayout{
		NbApps:     len(in.Apps),
		NbNodes:    len(in.Nodes),
		NbRequests: in.TotalRequests(),
	}
}

// NumGenes returns the total chromosome length.
func (l ChromosomeLayout) NumGenes() int {
	return l.NbApps + l.NbApps*l.NbNodes + l.NbRequests
}

// Region1 returns the gene index for app a's instance fraction.
func (l ChromosomeLayout) Region1(a int) int {
	return a
}

// Region2 returns the gene index for (app a, node h)'s placement priority.
func (l ChromosomeLayout) Region2(a, h int) int {
	return l.NbApps + a*l.NbNodes + h
}

// Region3Start returns the first gene index of region 3.
func (l ChromosomeLayout) Region3Start() int {
	return l.NbApps + l.NbApps*l.NbNodes
}

// Region3 returns the gene index for the reqIndex-th canonical request unit.
func (l ChromosomeLayout) Region3(reqIndex int) int {
	return l.Region3Start() + reqIndex
}

// Individual is one chromosome: a fixed-length gene vector with an optional
// cached fitness appended at the tail. Any genes beyond numGenes hold that
// fitness and mark the individual as already scored — see
// HasFitness/Fitness.
type Individual struct {
	Genes      []float64
	numGenes   int
	FitnessLen int
}

// NewIndividual wraps a raw gene slice of exactly numGenes length (no cached
// fitness yet).
func NewIndividual(genes []float64, numGenes int) Individual {
	return Individual{Genes: genes, numGenes: numGenes}
}

// HasFitness reports whether a fitness vector is cached at the tail.
func (ind Individual) HasFitness() bool {
	return len(ind.Genes) > ind.numGenes
}

// Fitness returns the cached fitness vector, or nil if not yet scored.
func (ind Individual) Fitness() []float64 {
	if !ind.HasFitness() {
		return nil
	}
	return ind.Genes[ind.numGenes:]
}

// WithFitness returns a copy of ind with fitness appended at the tail.
func (ind Individual) WithFitness(fitness []float64) Individual {
	genes := make([]float64, ind.numGenes, ind.numGenes+len(fitness))
	copy(genes, ind.Genes[:ind.numGenes])
	genes = append(genes, fitness...)
	return Individual{Genes: genes, numGenes: ind.numGenes}
}

// GeneSlice returns just the gene portion (without any cached fitness).
func (ind Individual) GeneSlice() []float64 {
	return ind.Genes[:ind.numGenes]
}

// NumGenes returns the declared chromosome length (excluding any cached
// fitness tail).
func (ind Individual) NumGenes() int {
	return ind.numGenes
}
