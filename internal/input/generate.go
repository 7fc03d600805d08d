package input

import (
	"fmt"
	"math/rand"

	"github.com/edgesp/spsolve/internal/model"
)

// Generate produces a synthetic model.Input from schema s with nbBS base
// stations, nbUsers total users scattered over them, and one application
// instance per entry of s.Apps, grounded in original_source/input.py's
// gen_rand_data pipeline.
func Generate(s *Schema, nbBS, nbUsers int, rng *rand.Rand) (*model.Input, error) {
	if nbBS <= 0 {
		return nil, fmt.Errorf("input: nbBS must be positive")
	}
	if len(s.Apps) == 0 {
		return nil, fmt.Errorf("input: schema declares no app types")
	}

	var bsPoints []hexPoint
	var box boundBox
	switch s.Map.Format {
	case "rectangle":
		bsPoints = genRectMap(nbBS)
		box = rectBoundBox(nbBS)
	default:
		bsPoints = genHexMap(nbBS)
		box = hexBoundBox(nbBS)
	}

	nodes := make([]model.Node, 0, nbBS+2)
	for i, p := range bsPoints {
		pos := p.toPixel()
		nodes = append(nodes, genNode(s.Nodes.BS, model.NodeBS, fmt.Sprintf("bs-%d", i), &pos, rng))
	}
	nodes = append(nodes, genNode(s.Nodes.Core, model.NodeCore, "core", nil, rng))
	nodes = append(nodes, genNode(s.Nodes.Cloud, model.NodeCloud, "cloud", nil, rng))

	apps := make([]model.App, len(s.Apps))
	netDelay := make([][][]float64, len(s.Apps))
	users := make([][]int, len(s.Apps))
	for i, appSpec := range s.Apps {
		apps[i] = genApp(appSpec, rng)
		netDelay[i] = netDelayGraph(appSpec.NetDelay, bsPoints, rng)
		dist := s.Map.Distribution[rng.Intn(len(s.Map.Distribution))]
		users[i] = genUsers(appSpec, dist, nbUsers, bsPoints, box, rng)
	}

	return &model.Input{
		Resources: genResources(s.Resources),
		Apps:      apps,
		Nodes:     nodes,
		NetDelay:  netDelay,
		Users:     users,
	}, nil
}

func genResources(specs []ResourceSpec) []model.Resource {
	out := make([]model.Resource, len(specs))
	for i, r := range specs {
		vt := model.ValueFloat
		if r.Type == "int" {
			vt = model.ValueInt
		}
		out[i] = model.Resource{Name: r.Name, Unit: r.Unit, Type: vt, Precision: r.Precision}
	}
	return out
}

func genNode(tier NodeTierSpec, kind model.NodeKind, id string, pos *model.Point2D, rng *rand.Rand) model.Node {
	n := model.Node{
		ID:           id,
		Kind:         kind,
		Position:     pos,
		Availability: drawRange(tier.Availability, rng),
		Power: model.PowerModel{
			Idle: drawRange(tier.Power.Min, rng),
			Max:  drawRange(tier.Power.Max, rng),
		},
	}
	if kind == model.NodeCloud {
		n.Capacity = map[string]float64{}
		for name := range tier.Capacity {
			n.Capacity[name] = model.Inf
		}
	} else {
		n.Capacity = make(map[string]float64, len(tier.Capacity))
		for name, r := range tier.Capacity {
			n.Capacity[name] = drawRange(r, rng)
		}
	}
	n.Cost = make(map[string]model.LinearDemand, len(tier.Cost))
	for name, d := range tier.Cost {
		n.Cost[name] = model.LinearDemand{K1: drawRange(d.A, rng), K2: drawRange(d.B, rng)}
	}
	return n
}

// genApp stamps out one App instance from a template. CPU demand is derived
// from WorkSize (k1 = work_size+1, k2 = uniform(0, work_size+1)) rather than
// drawn from an independent schema range, matching input.py's
// _gen_rand_apps; every other declared resource demand is drawn
// independently from its own range.
func genApp(spec AppSpec, rng *rand.Rand) model.App {
	workSize := drawRange(spec.WorkSize, rng)
	app := model.App{
		ID:           spec.Type,
		Type:         spec.Type,
		Deadline:     drawRange(spec.Deadline, rng),
		WorkSize:     workSize,
		RequestRate:  drawRange(spec.RequestRate, rng),
		Availability: drawRange(spec.Availability, rng),
		MaxInstances: int(drawRange(spec.MaxInstances, rng)),
		Demand:       make(map[string]model.LinearDemand, len(spec.Demand)+1),
	}
	k1 := workSize + 1
	app.Demand[model.CPUResourceName] = model.LinearDemand{K1: k1, K2: rng.Float64() * k1}
	for name, d := range spec.Demand {
		if name == model.CPUResourceName {
			continue
		}
		app.Demand[name] = model.LinearDemand{K1: drawRange(d.A, rng), K2: drawRange(d.B, rng)}
	}
	return app
}

// genUsers scatters round(spec.Users * nbUsers) users across the base
// stations using the given point distribution, then assigns each
// scattered point to its nearest base station by hex distance, matching
// input.py's _gen_rand_users.
func genUsers(spec AppSpec, distribution string, nbUsers int, bsPoints []hexPoint, box boundBox, rng *rand.Rand) []int {
	n := int(spec.Users*float64(nbUsers) + 0.5)
	counts := make([]int, len(bsPoints))
	if n <= 0 || len(bsPoints) == 0 {
		return counts
	}

	points := genPoints(distribution, n, box, rng)
	for _, p := range points {
		h := pixelToHex(p)
		best, bestDist := 0, model.Inf
		for i, bp := range bsPoints {
			if d := h.distance(bp); d < bestDist {
				best, bestDist = i, d
			}
		}
		counts[best]++
	}
	return counts
}
