package compute

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/partsim/internal/particle"
)

// GroupBackend schedules each workgroup as its own task, at most limit at a
// time, the way a GPU schedules groups of a compute grid.
type GroupBackend struct {
	limit int
}

func NewGroupBackend(limit int) *GroupBackend {
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	return &GroupBackend{limit: limit}
}

func (g *GroupBackend) Name() string    { return "group" }
func (g *GroupBackend) Available() bool { return true }
func (g *GroupBackend) Cleanup()        {}

func (g *GroupBackend) Run(ctx context.Context, k *particle.Kernel, src, dst []particle.Particle, p particle.Params) error {
	if err := checkBuffers(src, dst); err != nil {
		return err
	}

	grid := GridSize(len(src))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.limit)

	issued := 0
	for base := 0; base < grid; base += WorkgroupSize {
		if gctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return interrupted(err)
			}
			return runGroup(k, src, dst, p, base)
		})
		issued += WorkgroupSize
	}

	if err := eg.Wait(); err != nil {
		return err
	}
	if issued < grid {
		return interrupted(context.Cause(ctx))
	}
	return nil
}
