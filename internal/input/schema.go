// Package input implements the instance schema (§6) and the synthetic
// instance generator (C9): a hex or rectangular base-station lattice, an
// application catalog, per-application network-delay graphs, and a random
// user distribution, grounded in the original source's input.py/point.py.
package input

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/edgesp/spsolve/internal/model"
)

// Range is a scalar field that may be given as a fixed number, a [lo, hi]
// pair to be drawn uniformly at random at generation time, or the string
// "INF" for unbounded capacity.
type Range struct {
	Inf  bool
	Low  float64
	High float64
}

// UnmarshalJSON accepts a bare number, a two-element [lo, hi] array, or the
// string "INF".
func (r *Range) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if !strings.EqualFold(s, "INF") {
			return fmt.Errorf("range: unrecognized string value %q (only \"INF\" is supported)", s)
		}
		r.Inf = true
		return nil
	}

	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err == nil {
		r.Low, r.High = pair[0], pair[1]
		return nil
	}

	var scalar float64
	if err := json.Unmarshal(data, &scalar); err == nil {
		r.Low, r.High = scalar, scalar
		return nil
	}
	return fmt.Errorf("range: value must be a number, a [lo, hi] pair, or \"INF\"")
}

// DemandSpec is a linear demand/cost model (k1, k2), each term independently
// rangeable.
type DemandSpec struct {
	A Range `json:"a"`
	B Range `json:"b"`
}

// NetDelaySpec carries the three delay tiers a network-delay graph needs.
type NetDelaySpec struct {
	BSBS      Range `json:"bs_bs"`
	BSCore    Range `json:"bs_core"`
	CoreCloud Range `json:"core_cloud"`
}

// ResourceSpec describes one named, typed capacity dimension.
type ResourceSpec struct {
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	Type      string `json:"type"`
	Precision int    `json:"precision"`
}

// AppSpec is one application-type template; the generator stamps out one
// App per template, with independently drawn scalar fields.
type AppSpec struct {
	Type         string                `json:"type"`
	Users        float64               `json:"users"`
	Deadline     Range                 `json:"deadline"`
	WorkSize     Range                 `json:"work_size"`
	RequestRate  Range                 `json:"request_rate"`
	Availability Range                 `json:"availability"`
	MaxInstances Range                 `json:"max_instances"`
	Demand       map[string]DemandSpec `json:"demand"`
	NetDelay     NetDelaySpec          `json:"network_delay"`
}

// PowerSpec is the idle/max power draw range for one node tier.
type PowerSpec struct {
	Min Range `json:"min"`
	Max Range `json:"max"`
}

// NodeTierSpec describes one of the BS/CORE/CLOUD node tiers.
type NodeTierSpec struct {
	Availability Range                 `json:"availability"`
	Power        PowerSpec             `json:"power"`
	Cost         map[string]DemandSpec `json:"cost"`
	Capacity     map[string]Range      `json:"capacity"`
}

// NodesSpec groups the three node-tier templates.
type NodesSpec struct {
	BS    NodeTierSpec `json:"bs"`
	Core  NodeTierSpec `json:"core"`
	Cloud NodeTierSpec `json:"cloud"`
}

// MapSpec selects the base-station lattice shape and candidate user
// distributions.
type MapSpec struct {
	Format       string   `json:"format"`
	Distribution []string `json:"distribution"`
}

// Schema is the top-level input document (§6).
type Schema struct {
	Resources []ResourceSpec `json:"resources"`
	Apps      []AppSpec      `json:"apps"`
	Nodes     NodesSpec      `json:"nodes"`
	Map       MapSpec        `json:"map"`
}

// Validate checks the schema for the InputValidation error class (§7):
// malformed structure is caught by JSON unmarshaling, this catches
// semantic errors instead.
func (s *Schema) Validate() error {
	if len(s.Resources) == 0 {
		return fmt.Errorf("input: at least one resource must be declared")
	}
	hasCPU := false
	for _, r := range s.Resources {
		if r.Name == model.CPUResourceName {
			hasCPU = true
		}
		if r.Type != "int" && r.Type != "float" {
			return fmt.Errorf("input: resource %q has unknown type %q", r.Name, r.Type)
		}
	}
	if !hasCPU {
		return fmt.Errorf("input: a %s resource must be declared", model.CPUResourceName)
	}
	if len(s.Apps) == 0 {
		return fmt.Errorf("input: at least one app type must be declared")
	}
	switch s.Map.Format {
	case "hex", "rectangle":
	default:
		return fmt.Errorf("input: map.format must be hex or rectangle, got %q", s.Map.Format)
	}
	if len(s.Map.Distribution) == 0 {
		return fmt.Errorf("input: map.distribution must name at least one distribution")
	}
	for _, d := range s.Map.Distribution {
		switch d {
		case "uniform", "blob", "circle", "moon":
		default:
			return fmt.Errorf("input: unknown user distribution %q", d)
		}
	}
	return nil
}
