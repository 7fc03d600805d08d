package metric

import (
	"math"
	"testing"

	"github.com/edgesp/spsolve/internal/model"
)

// twoNodeInput mirrors the decoder package's S1/S2 fixture: 1 BS + CORE +
// CLOUD, one app with three users at the BS.
func twoNodeInput() *model.Input {
	cpu := model.Resource{Name: model.CPUResourceName, Type: model.ValueFloat}
	app := model.App{
		ID: "a0", Deadline: 100, WorkSize: 0.5, RequestRate: 1.0, MaxInstances: 1,
		Availability: 0.9,
		Demand:       map[string]model.LinearDemand{model.CPUResourceName: {K1: 1, K2: 0}},
	}
	bs := model.Node{
		Kind: model.NodeBS, Availability: 0.99,
		Capacity: map[string]float64{model.CPUResourceName: 50},
		Power:    model.PowerModel{Idle: 10, Max: 50},
		Cost:     map[string]model.LinearDemand{model.CPUResourceName: {K1: 2, K2: 1}},
	}
	core := model.Node{Kind: model.NodeCore, Capacity: map[string]float64{model.CPUResourceName: 50}}
	cloud := model.Node{
		Kind: model.NodeCloud, Availability: 1.0,
		Capacity: map[string]float64{model.CPUResourceName: model.Inf},
		Cost:     map[string]model.LinearDemand{model.CPUResourceName: {K1: 1, K2: 5}},
	}
	return &model.Input{
		Resources: []model.Resource{cpu},
		Apps:      []model.App{app},
		Nodes:     []model.Node{bs, core, cloud},
		NetDelay:  [][][]float64{{{1, 5, 10}}},
		Users:     [][]int{{3}},
	}
}

func TestMaxDeadlineViolation_NoViolation(t *testing.T) {
	in := twoNodeInput()
	sol := model.NewSolution(1, 3, 1)
	sol.Place[0][0] = true
	sol.Load[0][0][0] = 3

	e := New(in)
	if got := e.MaxDeadlineViolation(sol, Filter{}); got != 0 {
		t.Errorf("max_deadline_violation: got %v, want 0", got)
	}
}

func TestMaxDeadlineViolation_CloudOnly(t *testing.T) {
	// Placing everything at CLOUD should report delay = net_delay(BS,CLOUD)
	// + proc_delay, violating a tight deadline.
	in := twoNodeInput()
	in.Apps[0].Deadline = 1
	sol := model.NewSolution(1, 3, 1)
	sol.Place[0][2] = true
	sol.Load[0][0][2] = 3

	e := New(in)
	got := e.MaxDeadlineViolation(sol, Filter{})
	if got <= 0 {
		t.Errorf("expected a positive violation with a tight deadline, got %v", got)
	}
}

func TestDeadlineSatisfactionRate_AllSatisfied(t *testing.T) {
	in := twoNodeInput()
	sol := model.NewSolution(1, 3, 1)
	sol.Place[0][0] = true
	sol.Load[0][0][0] = 3

	e := New(in)
	if got := e.DeadlineSatisfactionRate(sol, Filter{}); got != 1.0 {
		t.Errorf("deadline_satisfaction_rate: got %v, want 1.0", got)
	}
}

func TestDeadlineSatisfactionRate_NoFlows(t *testing.T) {
	in := twoNodeInput()
	sol := model.NewSolution(1, 3, 1)
	e := New(in)
	if got := e.DeadlineSatisfactionRate(sol, Filter{}); got != 1.0 {
		t.Errorf("deadline_satisfaction_rate with no flows: got %v, want 1.0 (vacuous)", got)
	}
}

func TestAvgResponseTime_WeightedMean(t *testing.T) {
	in := twoNodeInput()
	in.Users = [][]int{{6}}
	sol := model.NewSolution(1, 3, 1)
	sol.Place[0][0] = true
	sol.Place[0][2] = true
	sol.Load[0][0][0] = 3
	sol.Load[0][0][2] = 3

	e := New(in)
	got := e.AvgResponseTime(sol, Filter{})
	if got <= in.NetDelay[0][0][0] || got >= in.NetDelay[0][0][2]+10 {
		t.Errorf("avg_response_time %v should lie strictly between the two flows' delays", got)
	}
}

func TestAvgResourceUsage_ExcludesInfiniteCapacity(t *testing.T) {
	in := twoNodeInput()
	sol := model.NewSolution(1, 3, 1)
	sol.Place[0][0] = true
	sol.Load[0][0][0] = 3

	e := New(in)
	usage := e.resourceUsage(sol, Filter{})
	if _, ok := usage[[2]int{2, 0}]; ok {
		t.Errorf("CLOUD has infinite capacity and must not appear in resource usage")
	}
	want := 3.0 / 50.0
	if got := usage[[2]int{0, 0}]; got != want {
		t.Errorf("BS usage: got %v, want %v", got, want)
	}
}

func TestMaxResourceUsage_MatchesHighestRatio(t *testing.T) {
	in := twoNodeInput()
	sol := model.NewSolution(1, 3, 1)
	sol.Place[0][0] = true
	sol.Load[0][0][0] = 10

	e := New(in)
	want := 10.0 / 50.0
	if got := e.MaxResourceUsage(sol, Filter{}); got != want {
		t.Errorf("max_resource_usage: got %v, want %v", got, want)
	}
}

func TestPowerConsumption_ZeroWhenIdle(t *testing.T) {
	in := twoNodeInput()
	sol := model.NewSolution(1, 3, 1) // nothing placed
	e := New(in)
	if got := e.PowerConsumption(sol, Filter{}); got != 0 {
		t.Errorf("power_consumption with no placements: got %v, want 0", got)
	}
}

func TestPowerConsumption_ScalesWithCPUDemand(t *testing.T) {
	in := twoNodeInput()
	sol := model.NewSolution(1, 3, 1)
	sol.Place[0][0] = true
	sol.Load[0][0][0] = 25 // half the BS's CPU capacity

	e := New(in)
	want := 10.0 + (50.0-10.0)*0.5
	if got := e.PowerConsumption(sol, Filter{}); got != want {
		t.Errorf("power_consumption: got %v, want %v", got, want)
	}
}

func TestCost_SumsActivePlacements(t *testing.T) {
	in := twoNodeInput()
	sol := model.NewSolution(1, 3, 1)
	sol.Place[0][0] = true
	sol.Load[0][0][0] = 3

	e := New(in)
	want := 2.0*3.0 + 1.0 // BS cost: k1*load + k2
	if got := e.Cost(sol, Filter{}); got != want {
		t.Errorf("cost: got %v, want %v", got, want)
	}
}

func TestAvgUnavailability_SingleInstance(t *testing.T) {
	in := twoNodeInput()
	sol := model.NewSolution(1, 3, 1)
	sol.Place[0][0] = true
	sol.Load[0][0][0] = 3

	e := New(in)
	want := 1.0 - in.Apps[0].Availability*in.Nodes[0].Availability
	if got := e.AvgUnavailability(sol, Filter{}); got != want {
		t.Errorf("avg_unavailability: got %v, want %v", got, want)
	}
}

func TestAvgUnavailability_MultipleInstancesMultiply(t *testing.T) {
	in := twoNodeInput()
	in.Apps[0].MaxInstances = 2
	sol := model.NewSolution(1, 3, 1)
	sol.Place[0][0] = true
	sol.Place[0][2] = true
	sol.Load[0][0][0] = 2
	sol.Load[0][0][2] = 1

	e := New(in)
	want := (1.0 - in.Apps[0].Availability*in.Nodes[0].Availability) *
		(1.0 - in.Apps[0].Availability*in.Nodes[2].Availability)
	if got := e.AvgUnavailability(sol, Filter{}); math.Abs(got-want) > 1e-12 {
		t.Errorf("avg_unavailability: got %v, want %v", got, want)
	}
}

func TestFilter_AndComposesApps(t *testing.T) {
	f1 := Filter{Apps: map[int]bool{0: true, 1: true}}
	f2 := Filter{Apps: map[int]bool{1: true, 2: true}}
	got := f1.And(f2)
	if !got.allowsApp(1) || got.allowsApp(0) || got.allowsApp(2) {
		t.Errorf("And should intersect app sets, got Apps=%v", got.Apps)
	}
}

func TestFilter_AndWithNilIsIdentity(t *testing.T) {
	f1 := Filter{Apps: map[int]bool{0: true}}
	f2 := Filter{}
	got := f1.And(f2)
	if !got.allowsApp(0) || got.allowsApp(1) {
		t.Errorf("And with an unrestricted filter should preserve the other side, got Apps=%v", got.Apps)
	}
}

func TestFilter_NodesRestriction(t *testing.T) {
	in := twoNodeInput()
	sol := model.NewSolution(1, 3, 1)
	sol.Place[0][0] = true
	sol.Place[0][2] = true
	sol.Load[0][0][0] = 2
	sol.Load[0][0][2] = 1

	e := New(in)
	bsOnly := Filter{Nodes: map[int]bool{0: true}}
	got := e.Cost(sol, bsOnly)
	want := 2.0*2.0 + 1.0 // BS only, load=2
	if got != want {
		t.Errorf("cost restricted to BS: got %v, want %v", got, want)
	}
}
