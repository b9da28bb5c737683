// Package buffer holds the double-buffered particle store.
//
// A Store owns two equally sized buffers and a role index. During a tick the
// current buffer is read-only and the next buffer is write-only; Swap flips
// the roles once every write has landed.
package buffer

import "github.com/san-kum/partsim/internal/particle"

type Store struct {
	buffers [2][]particle.Particle
	current int
}

// New allocates both buffers with len(initial) slots and copies initial into
// buffer A, which starts as current.
func New(initial []particle.Particle) *Store {
	n := len(initial)
	s := &Store{
		buffers: [2][]particle.Particle{
			make([]particle.Particle, n),
			make([]particle.Particle, n),
		},
	}
	copy(s.buffers[0], initial)
	return s
}

func (s *Store) Len() int { return len(s.buffers[0]) }

// Role reports which buffer is current: 0 for A, 1 for B.
func (s *Store) Role() int { return s.current }

// Current returns the buffer the next dispatch reads from.
func (s *Store) Current() []particle.Particle { return s.buffers[s.current] }

// Next returns the buffer the next dispatch writes into.
func (s *Store) Next() []particle.Particle { return s.buffers[1-s.current] }

func (s *Store) Swap() { s.current = 1 - s.current }

// Reset overwrites the current buffer with initial and makes A current again.
// The length of initial must match the store.
func (s *Store) Reset(initial []particle.Particle) error {
	if len(initial) != s.Len() {
		return particle.ErrSizeMismatch
	}
	s.current = 0
	copy(s.buffers[0], initial)
	return nil
}

func (s *Store) View() View { return View{p: s.buffers[s.current]} }
