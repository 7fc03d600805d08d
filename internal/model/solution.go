package model

// Solution is the mutable decoder output: where each app is placed, and how
// each base station's request flow for each app is routed across nodes.
//
// Place[a][h] is 1 iff app a has an instance on node h.
// Load[a][b][h] is the number of app-a requests from base station b routed
// to node h.
type Solution struct {
	Place [][]bool
	Load  [][][]int
}

// NewSolution allocates a zeroed solution for the given instance sizes.
func NewSolution(nbApps, nbNodes, nbBS int) Solution {
	place := make([][]bool, nbApps)
	load := make([][][]int, nbApps)
	for a := 0; a < nbApps; a++ {
		place[a] = make([]bool, nbNodes)
		load[a] = make([][]int, nbBS)
		for b := 0; b < nbBS; b++ {
			load[a][b] = make([]int, nbNodes)
		}
	}
	return Solution{Place: place, Load: load}
}

// NodeLoad returns sum_b Load[a][b][h], the total requests of app a served
// at node h.
func (s Solution) NodeLoad(a, h int) int {
	total := 0
	for b := range s.Load[a] {
		total += s.Load[a][b][h]
	}
	return total
}

// Instances returns the node indices where app a is placed.
func (s Solution) Instances(a int) []int {
	var out []int
	for h, placed := range s.Place[a] {
		if placed {
			out = append(out, h)
		}
	}
	return out
}

// NumInstances returns the number of active placements of app a.
func (s Solution) NumInstances(a int) int {
	n := 0
	for _, placed := range s.Place[a] {
		if placed {
			n++
		}
	}
	return n
}
