// Package particle defines the particle record and the per-particle update
// kernel.
//
// The kernel is a pure function of one particle's prior state and the tick's
// [Params]. It reads from a source buffer and writes exactly one slot of a
// destination buffer, so it can be invoked for every index in parallel:
//
//	k := particle.NewKernel(particle.DefaultConstants())
//	for i := range src {
//		k.Update(src, dst, i, particle.Params{DeltaTime: dt, Time: t})
//	}
//
// # Memory Layout
//
// [Particle] is eight contiguous float32 values (position, velocity, color),
// matching the std430 layout of the compute shader storage buffer.
package particle
