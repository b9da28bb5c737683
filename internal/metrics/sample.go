package metrics

import (
	"math"

	"github.com/san-kum/partsim/internal/buffer"
	"github.com/san-kum/partsim/internal/particle"
)

// SampleColumns names the values returned by Sample, in order.
var SampleColumns = []string{"kinetic_energy", "max_speed", "outside", "mean_alpha"}

// Sample computes instantaneous statistics of one view in a single pass:
// mean kinetic energy, max speed, the count of particles outside
// [-bound, bound]² and mean alpha.
func Sample(v buffer.View, bound float64) []float64 {
	out := make([]float64, len(SampleColumns))
	n := v.Len()
	if n == 0 {
		return out
	}

	var energy, maxSpeed, outside, alpha float64
	v.Each(func(_ int, p particle.Particle) {
		s := float64(p.Speed())
		energy += 0.5 * s * s
		maxSpeed = math.Max(maxSpeed, s)
		if math.Abs(float64(p.Position.X)) > bound || math.Abs(float64(p.Position.Y)) > bound {
			outside++
		}
		alpha += float64(p.Color.A)
	})

	out[0] = energy / float64(n)
	out[1] = maxSpeed
	out[2] = outside
	out[3] = alpha / float64(n)
	return out
}
