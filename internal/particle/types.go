package particle

import (
	"fmt"
	"math"
)

type Vec2 struct {
	X, Y float32
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

func (v Vec2) Len() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// Axis returns a pointer to component a (0 = X, 1 = Y).
func (v *Vec2) Axis(a int) *float32 {
	if a == 0 {
		return &v.X
	}
	return &v.Y
}

func (v Vec2) IsValid() bool {
	return isFinite(v.X) && isFinite(v.Y)
}

type Vec4 struct {
	R, G, B, A float32
}

type Particle struct {
	Position Vec2
	Velocity Vec2
	Color    Vec4
}

// Stride is the size in bytes of one Particle in a device buffer.
const Stride = 8 * 4

func (p Particle) Speed() float32 { return p.Velocity.Len() }

func (p Particle) IsValid() bool {
	return p.Position.IsValid() && p.Velocity.IsValid() && isFinite(p.Color.A)
}

func (p Particle) String() string {
	return fmt.Sprintf("pos=(%.4f, %.4f) vel=(%.4f, %.4f) alpha=%.3f",
		p.Position.X, p.Position.Y, p.Velocity.X, p.Velocity.Y, p.Color.A)
}

// Params are the per-tick scalars shared by every invocation of a dispatch.
type Params struct {
	DeltaTime float32 // seconds since the previous tick
	Time      float32 // simulation clock, drives color pulsing only
}

func isFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
