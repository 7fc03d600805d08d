package input

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/edgesp/spsolve/internal/model"
)

// instanceDoc is the on-disk JSON shape of a concrete, already-generated
// model.Input, as written by Generate+SaveInstance and read back by
// LoadInstance. It is deliberately separate from Schema: Schema describes
// a template to sample from, this describes one sampled instance.
type instanceDoc struct {
	Resources []resourceDoc `json:"resources"`
	Apps      []appDoc      `json:"apps"`
	Nodes     []nodeDoc     `json:"nodes"`
	NetDelay  [][][]float64 `json:"net_delay"`
	Users     [][]int       `json:"users"`
}

type resourceDoc struct {
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	Type      string `json:"type"`
	Precision int    `json:"precision"`
}

type linearDemandDoc struct {
	K1 float64 `json:"k1"`
	K2 float64 `json:"k2"`
}

type appDoc struct {
	ID           string                     `json:"id"`
	Type         string                     `json:"type"`
	Deadline     float64                    `json:"deadline"`
	WorkSize     float64                    `json:"work_size"`
	RequestRate  float64                    `json:"request_rate"`
	MaxInstances int                        `json:"max_instances"`
	Availability float64                    `json:"availability"`
	Demand       map[string]linearDemandDoc `json:"demand"`
}

type point2DDoc struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type nodeDoc struct {
	ID           string                     `json:"id"`
	Kind         string                     `json:"kind"`
	Position     *point2DDoc                `json:"position,omitempty"`
	Capacity     map[string]float64         `json:"capacity"`
	PowerIdle    float64                    `json:"power_idle"`
	PowerMax     float64                    `json:"power_max"`
	Cost         map[string]linearDemandDoc `json:"cost"`
	Availability float64                    `json:"availability"`
}

// SaveInstance writes in to path as the instanceDoc JSON format.
func SaveInstance(path string, in *model.Input) error {
	data, err := json.MarshalIndent(toDoc(in), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling instance: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing instance file: %w", err)
	}
	return nil
}

// LoadInstance reads a model.Input previously written by SaveInstance.
func LoadInstance(path string) (*model.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading instance file: %w", err)
	}
	var doc instanceDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing instance JSON: %w", err)
	}
	return fromDoc(doc), nil
}

func toDoc(in *model.Input) instanceDoc {
	doc := instanceDoc{
		Resources: make([]resourceDoc, len(in.Resources)),
		Apps:      make([]appDoc, len(in.Apps)),
		Nodes:     make([]nodeDoc, len(in.Nodes)),
		NetDelay:  in.NetDelay,
		Users:     in.Users,
	}
	for i, r := range in.Resources {
		doc.Resources[i] = resourceDoc{Name: r.Name, Unit: r.Unit, Type: string(r.Type), Precision: r.Precision}
	}
	for i, a := range in.Apps {
		demand := make(map[string]linearDemandDoc, len(a.Demand))
		for name, d := range a.Demand {
			demand[name] = linearDemandDoc{K1: d.K1, K2: d.K2}
		}
		doc.Apps[i] = appDoc{
			ID: a.ID, Type: a.Type, Deadline: a.Deadline, WorkSize: a.WorkSize,
			RequestRate: a.RequestRate, MaxInstances: a.MaxInstances,
			Availability: a.Availability, Demand: demand,
		}
	}
	for i, n := range in.Nodes {
		cost := make(map[string]linearDemandDoc, len(n.Cost))
		for name, d := range n.Cost {
			cost[name] = linearDemandDoc{K1: d.K1, K2: d.K2}
		}
		var pos *point2DDoc
		if n.Position != nil {
			pos = &point2DDoc{X: n.Position.X, Y: n.Position.Y}
		}
		doc.Nodes[i] = nodeDoc{
			ID: n.ID, Kind: string(n.Kind), Position: pos, Capacity: n.Capacity,
			PowerIdle: n.Power.Idle, PowerMax: n.Power.Max, Cost: cost,
			Availability: n.Availability,
		}
	}
	return doc
}

func fromDoc(doc instanceDoc) *model.Input {
	in := &model.Input{
		Resources: make([]model.Resource, len(doc.Resources)),
		Apps:      make([]model.App, len(doc.Apps)),
		Nodes:     make([]model.Node, len(doc.Nodes)),
		NetDelay:  doc.NetDelay,
		Users:     doc.Users,
	}
	for i, r := range doc.Resources {
		vt := model.ValueFloat
		if r.Type == "int" {
			vt = model.ValueInt
		}
		in.Resources[i] = model.Resource{Name: r.Name, Unit: r.Unit, Type: vt, Precision: r.Precision}
	}
	for i, a := range doc.Apps {
		demand := make(map[string]model.LinearDemand, len(a.Demand))
		for name, d := range a.Demand {
			demand[name] = model.LinearDemand{K1: d.K1, K2: d.K2}
		}
		in.Apps[i] = model.App{
			ID: a.ID, Type: a.Type, Deadline: a.Deadline, WorkSize: a.WorkSize,
			RequestRate: a.RequestRate, MaxInstances: a.MaxInstances,
			Availability: a.Availability, Demand: demand,
		}
	}
	for i, n := range doc.Nodes {
		cost := make(map[string]model.LinearDemand, len(n.Cost))
		for name, d := range n.Cost {
			cost[name] = model.LinearDemand{K1: d.K1, K2: d.K2}
		}
		var pos *model.Point2D
		if n.Position != nil {
			pos = &model.Point2D{X: n.Position.X, Y: n.Position.Y}
		}
		in.Nodes[i] = model.Node{
			ID: n.ID, Kind: model.NodeKind(n.Kind), Position: pos, Capacity: n.Capacity,
			Power:        model.PowerModel{Idle: n.PowerIdle, Max: n.PowerMax},
			Cost:         cost,
			Availability: n.Availability,
		}
	}
	return in
}
