package model

// App is an application template: a latency-sensitive service instantiated
// on a subset of nodes and fed by request traffic originating at base
// stations.
type App struct {
	ID           string
	Type         string
	Deadline     float64
	WorkSize     float64
	RequestRate  float64
	MaxInstances int
	Availability float64
	Demand       map[string]LinearDemand
}

// GetDemand returns the linear demand of resource r, or the zero value if
// the app declares no demand for it.
func (a App) GetDemand(r string) LinearDemand {
	if a.Demand == nil {
		return LinearDemand{}
	}
	return a.Demand[r]
}

// CPUDemand is a shorthand for GetDemand(CPUResourceName).
func (a App) CPUDemand() LinearDemand {
	return a.GetDemand(CPUResourceName)
}
