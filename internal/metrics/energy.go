package metrics

import (
	"github.com/san-kum/partsim/internal/buffer"
	"github.com/san-kum/partsim/internal/particle"
)

// KineticEnergy averages the per-particle kinetic energy (unit mass) over
// all observed ticks.
type KineticEnergy struct {
	name    string
	last    float64
	total   float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(_ uint64, _ float64, v buffer.View) {
	e.last = MeanKineticEnergy(v)
	e.total += e.last
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

// Last returns the energy of the most recent tick.
func (e *KineticEnergy) Last() float64 { return e.last }

func (e *KineticEnergy) Reset() {
	e.last = 0
	e.total = 0
	e.samples = 0
}

func MeanKineticEnergy(v buffer.View) float64 {
	if v.Len() == 0 {
		return 0
	}
	sum := 0.0
	v.Each(func(_ int, p particle.Particle) {
		s := float64(p.Speed())
		sum += 0.5 * s * s
	})
	return sum / float64(v.Len())
}
