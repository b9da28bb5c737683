package metrics

import (
	"math"

	"github.com/san-kum/partsim/internal/buffer"
	"github.com/san-kum/partsim/internal/particle"
)

// Containment is the fraction of observed ticks on which every particle was
// inside the square [-bound, bound]².
type Containment struct {
	name       string
	bound      float64
	violations int
	samples    int
}

func NewContainment(bound float64) *Containment {
	return &Containment{name: "containment", bound: bound}
}

func (c *Containment) Name() string { return c.name }

func (c *Containment) Observe(_ uint64, _ float64, v buffer.View) {
	c.samples++
	inside := true
	v.Each(func(_ int, p particle.Particle) {
		if math.Abs(float64(p.Position.X)) > c.bound || math.Abs(float64(p.Position.Y)) > c.bound {
			inside = false
		}
	})
	if !inside {
		c.violations++
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1
	}
	return 1 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
