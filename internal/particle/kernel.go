package particle

import (
	"fmt"
	"math"
)

// Kernel is the per-particle transition function. It holds only read-only
// constants and is safe to share across goroutines.
type Kernel struct {
	c Constants
}

func NewKernel(c Constants) *Kernel {
	return &Kernel{c: c}
}

func (k *Kernel) Constants() Constants { return k.c }

// Update advances particle i of src by one tick and stores the result in
// dst[i]. Indices past the end of either buffer are skipped without touching
// memory, so a dispatch grid may be larger than the particle count.
func (k *Kernel) Update(src, dst []Particle, i int, p Params) {
	if i < 0 {
		panic(fmt.Sprintf("particle: negative invocation index %d", i))
	}
	if i >= len(src) || i >= len(dst) {
		return
	}
	dst[i] = k.Advance(src[i], i, p)
}

// Advance returns the next state of particle pt at index i.
func (k *Kernel) Advance(pt Particle, i int, p Params) Particle {
	c := &k.c
	dt := p.DeltaTime
	pos := pt.Position
	vel := pt.Velocity

	pos = pos.Add(vel.Scale(dt))

	for a := 0; a < 2; a++ {
		x := pos.Axis(a)
		if abs32(*x) > c.Bound {
			v := vel.Axis(a)
			*v = -*v
			*x = sign32(*x) * c.Bound
		}
	}

	toCenter := pos.Scale(-1)
	if dist := toCenter.Len(); dist > c.CenterEpsilon {
		vel = vel.Add(toCenter.Scale(1 / dist).Scale(c.Gravity * dt))
	}

	vel = vel.Scale(c.Damping)

	speed := vel.Len()
	if speed > c.MaxSpeed {
		vel = vel.Scale(c.MaxSpeed / speed)
		speed = c.MaxSpeed
	}

	phase := float64(p.Time*c.PulseRate + float32(i)*c.PhaseStep)
	oscillation := float32(math.Sin(phase))*0.5 + 0.5
	speedFactor := speed / c.MaxSpeed

	color := pt.Color
	color.A = lerp(c.AlphaMin, c.AlphaMax, speedFactor*oscillation)

	return Particle{Position: pos, Velocity: vel, Color: color}
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func sign32(x float32) float32 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
