package buffer

import "github.com/san-kum/partsim/internal/particle"

// View is a read-only window on the current buffer. It is only valid until
// the owner starts the next tick; use Snapshot to keep the data longer.
type View struct {
	p []particle.Particle
}

func (v View) Len() int { return len(v.p) }

func (v View) At(i int) particle.Particle { return v.p[i] }

// Each calls fn for every particle in index order.
func (v View) Each(fn func(i int, p particle.Particle)) {
	for i := range v.p {
		fn(i, v.p[i])
	}
}

// CopyTo copies up to len(dst) particles into dst and returns the count.
func (v View) CopyTo(dst []particle.Particle) int {
	return copy(dst, v.p)
}

func (v View) Snapshot() []particle.Particle {
	out := make([]particle.Particle, len(v.p))
	copy(out, v.p)
	return out
}
