package seeds

import (
	"math"
	"testing"

	"github.com/edgesp/spsolve/internal/model"
)

// starInput builds 4 BS + CORE + CLOUD serving one app from every BS, with
// net delay increasing by node index so seeds have an unambiguous ranking
// to check against.
func starInput() *model.Input {
	nbBS := 4
	nodes := make([]model.Node, nbBS+2)
	for i := 0; i < nbBS; i++ {
		nodes[i] = model.Node{ID: "bs", Kind: model.NodeBS, Capacity: map[string]float64{model.CPUResourceName: 50}}
	}
	nodes[nbBS] = model.Node{ID: "core", Kind: model.NodeCore, Capacity: map[string]float64{model.CPUResourceName: 50}}
	nodes[nbBS+1] = model.Node{ID: "cloud", Kind: model.NodeCloud, Capacity: map[string]float64{model.CPUResourceName: model.Inf}}

	apps := []model.App{{ID: "a0", Deadline: 50, WorkSize: 1, RequestRate: 1, MaxInstances: 2,
		Demand: map[string]model.LinearDemand{model.CPUResourceName: {K1: 1, K2: 1}}}}

	nbNodes := len(nodes)
	delay := make([][][]float64, 1)
	delay[0] = make([][]float64, nbBS)
	for b := 0; b < nbBS; b++ {
		delay[0][b] = make([]float64, nbNodes)
		for h := 0; h < nbNodes; h++ {
			delay[0][b][h] = math.Abs(float64(b - h))
		}
	}
	users := [][]int{{1, 1, 1, 1}}

	return &model.Input{
		Resources: []model.Resource{{Name: model.CPUResourceName, Type: model.ValueFloat}},
		Apps:      apps, Nodes: nodes, NetDelay: delay, Users: users,
	}
}

func TestCloud_AllZero(t *testing.T) {
	in := starInput()
	layout := model.NewChromosomeLayout(in)
	genes := Cloud(in, layout)
	if len(genes) != layout.NumGenes() {
		t.Fatalf("len(genes): got %d, want %d", len(genes), layout.NumGenes())
	}
	for i, v := range genes {
		if v != 0 {
			t.Errorf("gene %d: got %v, want 0", i, v)
		}
	}
}

func TestNetDelay_PrefersNearestNode(t *testing.T) {
	in := starInput()
	layout := model.NewChromosomeLayout(in)
	genes := NetDelay(in, layout)

	if genes[layout.Region1(0)] != 1.0 {
		t.Errorf("region1: got %v, want 1.0", genes[layout.Region1(0)])
	}
	// Node 0 (BS0) has a lower average delay to the base stations than
	// CLOUD, the farthest node; its region-2 priority must exceed CLOUD's.
	near := genes[layout.Region2(0, 0)]
	far := genes[layout.Region2(0, len(in.Nodes)-1)]
	if !(near > far) {
		t.Errorf("expected near-node priority %v > far-node priority %v", near, far)
	}
}

func TestDeadline_StrictestFirst(t *testing.T) {
	nodes := []model.Node{
		{ID: "bs", Kind: model.NodeBS, Capacity: map[string]float64{model.CPUResourceName: 50}},
		{ID: "core", Kind: model.NodeCore, Capacity: map[string]float64{model.CPUResourceName: 50}},
		{ID: "cloud", Kind: model.NodeCloud, Capacity: map[string]float64{model.CPUResourceName: 50}},
	}
	apps := []model.App{
		{ID: "strict", Deadline: 10, RequestRate: 1, MaxInstances: 1,
			Demand: map[string]model.LinearDemand{model.CPUResourceName: {K1: 1}}},
		{ID: "lax", Deadline: 100, RequestRate: 1, MaxInstances: 1,
			Demand: map[string]model.LinearDemand{model.CPUResourceName: {K1: 1}}},
	}
	delay := [][][]float64{
		{{0, 0, 0}},
		{{0, 0, 0}},
	}
	users := [][]int{{1}, {1}}
	in := &model.Input{
		Resources: []model.Resource{{Name: model.CPUResourceName, Type: model.ValueFloat}},
		Apps:      apps, Nodes: nodes, NetDelay: delay, Users: users,
	}
	layout := model.NewChromosomeLayout(in)
	genes := Deadline(in, layout)

	reqs := in.RequestList()
	var strictGene, laxGene float64
	for i, r := range reqs {
		if r.App == 0 {
			strictGene = genes[layout.Region3(i)]
		} else {
			laxGene = genes[layout.Region3(i)]
		}
	}
	if !(strictGene > laxGene) {
		t.Errorf("expected stricter-deadline request gene %v > laxer %v", strictGene, laxGene)
	}
}

func TestClusterMedoids_PrioritizesNearMedoid(t *testing.T) {
	in := starInput()
	layout := model.NewChromosomeLayout(in)
	genes := ClusterMedoids(in, layout)

	if genes[layout.Region1(0)] != 1.0 {
		t.Errorf("region1: got %v, want 1.0", genes[layout.Region1(0)])
	}
	// Every feature base station is its own nearest medoid candidate, so
	// region-2 priority for BS nodes should dominate CORE/CLOUD.
	bsPriority := genes[layout.Region2(0, 0)]
	cloudPriority := genes[layout.Region2(0, len(in.Nodes)-1)]
	if !(bsPriority >= cloudPriority) {
		t.Errorf("expected BS priority %v >= CLOUD priority %v", bsPriority, cloudPriority)
	}
}

func TestClusterMedoidsSC_MatchesLayoutLength(t *testing.T) {
	in := starInput()
	layout := model.NewChromosomeLayout(in)
	genes := ClusterMedoidsSC(in, layout)
	if len(genes) != layout.NumGenes() {
		t.Fatalf("len(genes): got %d, want %d", len(genes), layout.NumGenes())
	}
}

func TestMerge_UniformWeights(t *testing.T) {
	a := []float64{0.0, 1.0}
	b := []float64{1.0, 0.0}
	merged := Merge([][]float64{a, b}, nil)
	if merged[0] != 0.5 || merged[1] != 0.5 {
		t.Errorf("Merge: got %v, want [0.5 0.5]", merged)
	}
}

func TestMerge_CustomWeights(t *testing.T) {
	a := []float64{1.0, 0.0}
	b := []float64{0.0, 1.0}
	merged := Merge([][]float64{a, b}, []float64{0.25, 0.75})
	want := []float64{0.25, 0.75}
	for i := range want {
		if merged[i] != want[i] {
			t.Errorf("Merge[%d]: got %v, want %v", i, merged[i], want[i])
		}
	}
}

func TestInvert(t *testing.T) {
	g := []float64{0.0, 0.25, 1.0}
	inv := Invert(g)
	want := []float64{1.0, 0.75, 0.0}
	for i := range want {
		if inv[i] != want[i] {
			t.Errorf("Invert[%d]: got %v, want %v", i, inv[i], want[i])
		}
	}
}

func TestResolve_UnknownName(t *testing.T) {
	if _, err := Resolve("nonexistent"); err == nil {
		t.Fatal("expected error for unknown seed name")
	}
}

func TestBuild_ResolvesEachName(t *testing.T) {
	in := starInput()
	layout := model.NewChromosomeLayout(in)
	built, err := Build([]string{"cloud", "net_delay"}, in, layout)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(built) != 2 {
		t.Fatalf("len(built): got %d, want 2", len(built))
	}
}

func TestBuild_PropagatesUnknownNameError(t *testing.T) {
	in := starInput()
	layout := model.NewChromosomeLayout(in)
	if _, err := Build([]string{"cloud", "bogus"}, in, layout); err == nil {
		t.Fatal("expected error for unknown seed in list")
	}
}
