package metrics

import (
	"github.com/san-kum/partsim/internal/buffer"
	"github.com/san-kum/partsim/internal/particle"
)

// MeanAlpha averages particle alpha over all particles and ticks.
type MeanAlpha struct {
	name    string
	total   float64
	samples int
}

func NewMeanAlpha() *MeanAlpha {
	return &MeanAlpha{name: "mean_alpha"}
}

func (a *MeanAlpha) Name() string { return a.name }

func (a *MeanAlpha) Observe(_ uint64, _ float64, v buffer.View) {
	v.Each(func(_ int, p particle.Particle) {
		a.total += float64(p.Color.A)
		a.samples++
	})
}

func (a *MeanAlpha) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.total / float64(a.samples)
}

func (a *MeanAlpha) Reset() {
	a.total = 0
	a.samples = 0
}
