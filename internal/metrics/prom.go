package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PromRecorder exports dispatch telemetry to Prometheus.
type PromRecorder struct {
	registry *prometheus.Registry

	TickDuration *prometheus.HistogramVec
	Ticks        *prometheus.CounterVec
	Failures     *prometheus.CounterVec
	Particles    prometheus.Gauge
}

// NewPromRecorder registers the collectors on reg, or on a fresh registry
// when reg is nil.
func NewPromRecorder(reg *prometheus.Registry) *PromRecorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &PromRecorder{
		registry: reg,
		TickDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "partsim_tick_duration_seconds",
				Help:    "Time to dispatch the kernel over every particle",
				Buckets: prometheus.ExponentialBuckets(1e-5, 2, 16),
			},
			[]string{"backend"},
		),
		Ticks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "partsim_ticks_total",
				Help: "Completed simulation ticks by backend",
			},
			[]string{"backend"},
		),
		Failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "partsim_dispatch_failures_total",
				Help: "Dispatches that did not complete",
			},
			[]string{"backend"},
		),
		Particles: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "partsim_particles",
				Help: "Particles in the store",
			},
		),
	}
}

func (r *PromRecorder) ObserveTick(backend string, particles int, elapsed time.Duration) {
	r.TickDuration.WithLabelValues(backend).Observe(elapsed.Seconds())
	r.Ticks.WithLabelValues(backend).Inc()
	r.Particles.Set(float64(particles))
}

func (r *PromRecorder) ObserveFailure(backend string) {
	r.Failures.WithLabelValues(backend).Inc()
}

func (r *PromRecorder) Registry() *prometheus.Registry { return r.registry }

func (r *PromRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
