package decoder

import (
	"testing"

	"github.com/edgesp/spsolve/internal/model"
)

// twoNodeInput builds a 1 BS + CORE + CLOUD instance with a single app and
// a single base station. cloudCPU/bsCPU let callers force capacity-driven
// placement decisions.
func twoNodeInput(bsCPU, cloudCPU float64, maxInstances int) *model.Input {
	nodes := []model.Node{
		{ID: "bs0", Kind: model.NodeBS, Capacity: map[string]float64{model.CPUResourceName: bsCPU}},
		{ID: "core0", Kind: model.NodeCore, Capacity: map[string]float64{model.CPUResourceName: bsCPU}},
		{ID: "cloud", Kind: model.NodeCloud, Capacity: map[string]float64{model.CPUResourceName: cloudCPU}},
	}
	apps := []model.App{{
		ID: "a0", Deadline: 100, WorkSize: 1, RequestRate: 1, MaxInstances: maxInstances,
		Demand: map[string]model.LinearDemand{model.CPUResourceName: {K1: 1, K2: 1}},
	}}
	delay := [][][]float64{{
		{1, 5, 20},
	}}
	users := [][]int{{3}}
	return &model.Input{
		Resources: []model.Resource{{Name: model.CPUResourceName, Type: model.ValueFloat}},
		Apps:      apps, Nodes: nodes, NetDelay: delay, Users: users,
	}
}

func allGenes(n int, v float64) []float64 {
	g := make([]float64, n)
	for i := range g {
		g[i] = v
	}
	return g
}

// TestDecode_CloudCheap mirrors scenario S1: with ample BS capacity and BS
// the cheapest (lowest net delay) candidate, all load lands on BS.
func TestDecode_CloudCheap(t *testing.T) {
	in := twoNodeInput(50, 50, 1)
	d := New(in)
	genes := allGenes(d.Layout.NumGenes(), 1.0) // full instance budget, uniform priority
	sol := d.Decode(genes)

	if !sol.Place[0][0] {
		t.Fatalf("expected app placed on BS, got place=%v", sol.Place[0])
	}
	if got := sol.Load[0][0][0]; got != 3 {
		t.Errorf("Load[0][0][0]: got %d, want 3", got)
	}
	if v := maxDeadlineViolation(in, sol); v != 0 {
		t.Errorf("expected zero deadline violation, got %v", v)
	}
}

// maxDeadlineViolation inlines the same end-to-end delay formula as
// package metric's Evaluator, to keep this test file import-cycle free.
func maxDeadlineViolation(in *model.Input, sol model.Solution) float64 {
	max := 0.0
	for a, app := range in.Apps {
		for _, h := range sol.Instances(a) {
			nodeLoad := float64(sol.NodeLoad(a, h))
			cpu := app.CPUDemand()
			divisor := nodeLoad*(cpu.K1-app.WorkSize) + cpu.K2
			procDelay := 0.0
			if divisor > 0 {
				procDelay = app.WorkSize / divisor
			}
			for b := 0; b < in.NumBS(); b++ {
				if sol.Load[a][b][h] <= 0 {
					continue
				}
				delay := in.NetDelay[a][b][h] + procDelay
				if v := delay - app.Deadline; v > max {
					max = v
				}
			}
		}
	}
	return max
}

// TestDecode_CapacityForcedCloud mirrors scenario S2: BS has zero CPU
// capacity, so every request must be routed to CLOUD regardless of seed.
func TestDecode_CapacityForcedCloud(t *testing.T) {
	in := twoNodeInput(0, 50, 1)
	d := New(in)
	genes := allGenes(d.Layout.NumGenes(), 1.0)
	sol := d.Decode(genes)

	cloudIdx := in.CloudIndex()
	if sol.Place[0][0] {
		t.Errorf("BS has zero capacity, should not be placed: place=%v", sol.Place[0])
	}
	if !sol.Place[0][cloudIdx] {
		t.Fatalf("expected CLOUD placement, got place=%v", sol.Place[0])
	}
	if got := sol.Load[0][0][cloudIdx]; got != 3 {
		t.Errorf("Load[0][0][cloud]: got %d, want 3", got)
	}
}

// TestLocalSearchRepair_InstanceBudget mirrors scenario S3: an app placed
// on more nodes than its max-instances budget allows must be repaired down
// to budget, with any offloaded load conserved at CLOUD.
func TestLocalSearchRepair_InstanceBudget(t *testing.T) {
	nbBS := 5
	nodes := make([]model.Node, nbBS+2)
	for i := 0; i < nbBS; i++ {
		nodes[i] = model.Node{ID: "bs", Kind: model.NodeBS, Capacity: map[string]float64{model.CPUResourceName: 50}}
	}
	nodes[nbBS] = model.Node{ID: "core", Kind: model.NodeCore, Capacity: map[string]float64{model.CPUResourceName: 50}}
	nodes[nbBS+1] = model.Node{ID: "cloud", Kind: model.NodeCloud, Capacity: map[string]float64{model.CPUResourceName: 50}}
	cloudIdx := nbBS + 1

	app := model.App{ID: "a0", Deadline: 100, WorkSize: 1, RequestRate: 1, MaxInstances: 2,
		Demand: map[string]model.LinearDemand{model.CPUResourceName: {K1: 1, K2: 1}}}

	sol := model.NewSolution(1, len(nodes), nbBS)
	total := 0
	for h := 0; h < nbBS; h++ {
		sol.Place[0][h] = true
		sol.Load[0][h][h] = h + 1 // distinct loads so the repair order is deterministic
		total += h + 1
	}

	in := &model.Input{
		Resources: []model.Resource{{Name: model.CPUResourceName, Type: model.ValueFloat}},
		Apps:      []model.App{app}, Nodes: nodes,
		Users: [][]int{make([]int, nbBS)},
	}
	d := New(in)
	d.LocalSearchRepair(sol)

	activeBS := 0
	for h := 0; h < nbBS; h++ {
		if sol.Place[0][h] {
			activeBS++
		}
	}
	if activeBS != app.MaxInstances {
		t.Errorf("expected %d active BS instances after repair, got %d", app.MaxInstances, activeBS)
	}
	if !sol.Place[0][cloudIdx] {
		t.Errorf("expected CLOUD active after repair to absorb offloaded load")
	}

	gotTotal := 0
	for b := 0; b < nbBS; b++ {
		for h := range nodes {
			gotTotal += sol.Load[0][b][h]
		}
	}
	if gotTotal != total {
		t.Errorf("load conservation violated: got total %d, want %d", gotTotal, total)
	}
}

// TestDecode_RequestConservation checks property 1: every request unit in
// the instance is routed to exactly one node, for an arbitrary seed.
func TestDecode_RequestConservation(t *testing.T) {
	in := twoNodeInput(50, 50, 2)
	d := New(in)
	genes := make([]float64, d.Layout.NumGenes())
	for i := range genes {
		genes[i] = float64(i%7) / 7.0
	}
	sol := d.Decode(genes)

	want := in.TotalRequests()
	got := 0
	for a := range in.Apps {
		for b := 0; b < in.NumBS(); b++ {
			for h := range in.Nodes {
				got += sol.Load[a][b][h]
			}
		}
	}
	if got != want {
		t.Errorf("request conservation: got %d routed units, want %d", got, want)
	}
}

// TestDecode_PlacementImpliesLoad checks property 2: place[a,h] is true iff
// node h carries positive load for app a.
func TestDecode_PlacementImpliesLoad(t *testing.T) {
	in := twoNodeInput(50, 50, 2)
	d := New(in)
	genes := allGenes(d.Layout.NumGenes(), 0.5)
	sol := d.Decode(genes)

	for h := range in.Nodes {
		load := sol.NodeLoad(0, h)
		placed := sol.Place[0][h]
		if placed && load == 0 {
			t.Errorf("node %d marked placed but carries zero load", h)
		}
		if !placed && load != 0 {
			t.Errorf("node %d carries load %d but not marked placed", h, load)
		}
	}
}

