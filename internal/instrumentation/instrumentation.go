// Package instrumentation exposes per-generation engine progress as
// Prometheus gauges, repurposing the teacher's Prometheus client dependency
// from a metrics *query* role to a metrics *exposition* role: there is no
// live cluster to query in this domain, only a running solve to observe.
package instrumentation

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edgesp/spsolve/internal/model"
)

// Recorder implements engine.Recorder, pushing per-generation gauges to a
// dedicated Prometheus registry.
type Recorder struct {
	Registry *prometheus.Registry

	generation     prometheus.Gauge
	bestFitness    prometheus.Gauge
	populationSize prometheus.Gauge
}

// NewRecorder builds a Recorder with its own registry, so one process can
// run several solves without gauge name collisions.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	return &Recorder{
		Registry: reg,
		generation: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "spsolve",
			Subsystem: "engine",
			Name:      "generation",
			Help:      "Current generation number of the running solve.",
		}),
		bestFitness: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "spsolve",
			Subsystem: "engine",
			Name:      "best_fitness",
			Help:      "Best (coordinate 0) fitness in the current ranked population.",
		}),
		populationSize: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "spsolve",
			Subsystem: "engine",
			Name:      "population_size",
			Help:      "Number of individuals in the current ranked population.",
		}),
	}
}

// ObserveGeneration implements engine.Recorder.
func (r *Recorder) ObserveGeneration(generation int, population []model.Individual) {
	r.generation.Set(float64(generation))
	r.populationSize.Set(float64(len(population)))
	if len(population) == 0 {
		return
	}
	best := population[0].Fitness()
	if len(best) > 0 {
		r.bestFitness.Set(best[0])
	}
}

// Handler returns an HTTP handler serving this Recorder's registry in the
// Prometheus exposition format, for wiring behind a --metrics-addr flag.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})
}
