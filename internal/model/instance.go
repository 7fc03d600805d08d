package model

import "math"

// Request identifies one canonical (app, source base station) pair; region 3
// of the chromosome assigns one gene per request *unit*, i.e. this tuple
// repeated Requests[a][b] times.
type Request struct {
	App int
	BS  int
}

// Input is the immutable problem instance. Node indices are canonical: the
// core is always len(Nodes)-2 and the cloud is always len(Nodes)-1.
type Input struct {
	Resources []Resource
	Apps      []App
	Nodes     []Node

	// NetDelay[a][b][h] is the nonnegative shortest-path delay for app a
	// from base station b to node h: one row per base station, one column
	// per node.
	NetDelay [][][]float64

	// Users[a][b] is the number of users of app a served by base station b.
	Users [][]int
}

// CoreIndex returns the canonical index of the CORE node.
func (in *Input) CoreIndex() int { return len(in.Nodes) - 2 }

// CloudIndex returns the canonical index of the CLOUD node.
func (in *Input) CloudIndex() int { return len(in.Nodes) - 1 }

// NumBS returns the number of base-station nodes (all nodes but core/cloud).
func (in *Input) NumBS() int { return len(in.Nodes) - 2 }

// Requests returns ceil(Users[a][b] * RequestRate_a), the number of request
// units app a receives from base station b per unit time.
func (in *Input) Requests(a, b int) int {
	users := in.Users[a][b]
	if users <= 0 {
		return 0
	}
	rate := in.Apps[a].RequestRate
	return int(math.Ceil(float64(users) * rate))
}

// TotalRequests returns |Requests| = sum_{a,b} Requests[a][b], the length
// of chromosome region 3.
func (in *Input) TotalRequests() int {
	total := 0
	for a := range in.Apps {
		for b := 0; b < in.NumBS(); b++ {
			total += in.Requests(a, b)
		}
	}
	return total
}

// RequestList returns the canonical, deterministic ordering of individual
// request units: apps in index order, base stations in index order, each
// (a, b) pair repeated Requests(a, b) times.
func (in *Input) RequestList() []Request {
	reqs := make([]Request, 0, in.TotalRequests())
	for a := range in.Apps {
		for b := 0; b < in.NumBS(); b++ {
			n := in.Requests(a, b)
			for i := 0; i < n; i++ {
				reqs = append(reqs, Request{App: a, BS: b})
			}
		}
	}
	return reqs
}

// AvgNetDelay returns mean_b NetDelay[a][b][h] over base stations b.
func (in *Input) AvgNetDelay(a, h int) float64 {
	nbBS := in.NumBS()
	if nbBS == 0 {
		return 0
	}
	sum := 0.0
	for b := 0; b < nbBS; b++ {
		sum += in.NetDelay[a][b][h]
	}
	return sum / float64(nbBS)
}

// Filter returns a new Input restricted to the given app and node indices,
// preserving relative NetDelay/Users data and remapping the core/cloud
// positions to the last two entries of nodeIdx (as required by the cluster
// solver, which always appends CORE and CLOUD to a cluster's node list).
func (in *Input) Filter(appIdx, nodeIdx []int) *Input {
	out := &Input{
		Resources: in.Resources,
		Apps:      make([]App, len(appIdx)),
		Nodes:     make([]Node, len(nodeIdx)),
	}
	for i, a := range appIdx {
		out.Apps[i] = in.Apps[a]
	}
	for i, h := range nodeIdx {
		out.Nodes[i] = in.Nodes[h]
	}

	nbBS := in.NumBS()
	out.Users = make([][]int, len(appIdx))
	out.NetDelay = make([][][]float64, len(appIdx))
	for ci, a := range appIdx {
		out.Users[ci] = make([]int, len(nodeIdx))
		for cb, b := range nodeIdx {
			if b < nbBS {
				out.Users[ci][cb] = in.Users[a][b]
			}
		}
		// NetDelay[a] has one row per BS (not per node, see the NetDelay
		// field comment): only nodeIdx entries that are themselves BS
		// indices are valid first-index lookups, and by convention
		// (callers append CORE/CLOUD last) they produce exactly the
		// sub-instance's BS rows, in order.
		out.NetDelay[ci] = make([][]float64, 0, len(nodeIdx))
		for _, i := range nodeIdx {
			if i >= nbBS {
				continue
			}
			row := make([]float64, len(nodeIdx))
			for cj, j := range nodeIdx {
				row[cj] = in.NetDelay[a][i][j]
			}
			out.NetDelay[ci] = append(out.NetDelay[ci], row)
		}
	}
	return out
}
