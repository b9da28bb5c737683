// Package metrics provides ensemble statistics over the particle store and
// Prometheus telemetry for the dispatch loop.
package metrics

import "github.com/san-kum/partsim/internal/buffer"

// Metric matches sim.Metric.
type Metric interface {
	Name() string
	Observe(tick uint64, t float64, v buffer.View)
	Value() float64
	Reset()
}

// Default returns the standard set recorded for every run.
func Default(bound float64) []Metric {
	return []Metric{
		NewKineticEnergy(),
		NewMaxSpeed(),
		NewContainment(bound),
		NewMeanAlpha(),
	}
}
