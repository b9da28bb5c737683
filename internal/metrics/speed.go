package metrics

import (
	"math"

	"github.com/san-kum/partsim/internal/buffer"
	"github.com/san-kum/partsim/internal/particle"
)

// MaxSpeed tracks the highest particle speed seen on any tick.
type MaxSpeed struct {
	name string
	max  float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(_ uint64, _ float64, v buffer.View) {
	v.Each(func(_ int, p particle.Particle) {
		m.max = math.Max(m.max, float64(p.Speed()))
	})
}

func (m *MaxSpeed) Value() float64 { return m.max }

func (m *MaxSpeed) Reset() { m.max = 0 }
