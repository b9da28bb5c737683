package compute

import (
	"context"
	"runtime"
	"sync"

	"github.com/san-kum/partsim/internal/particle"
)

// CPUBackend splits the grid into one contiguous chunk per worker.
type CPUBackend struct {
	workers int
}

func NewCPUBackend(workers int) *CPUBackend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &CPUBackend{workers: workers}
}

func (c *CPUBackend) Name() string    { return "cpu" }
func (c *CPUBackend) Available() bool { return true }
func (c *CPUBackend) Cleanup()        {}
func (c *CPUBackend) Workers() int    { return c.workers }

func (c *CPUBackend) Run(ctx context.Context, k *particle.Kernel, src, dst []particle.Particle, p particle.Params) error {
	if err := checkBuffers(src, dst); err != nil {
		return err
	}

	groups := GridSize(len(src)) / WorkgroupSize
	if groups <= 1 || c.workers == 1 {
		return NewSerialBackend().Run(ctx, k, src, dst, p)
	}

	workers := c.workers
	if groups < workers {
		workers = groups
	}
	chunkSize := (groups + workers - 1) / workers

	errs := make([]error, workers)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > groups {
			end = groups
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(worker, start, end int) {
			defer wg.Done()

			for g := start; g < end; g++ {
				if err := ctx.Err(); err != nil {
					errs[worker] = interrupted(err)
					return
				}
				if err := runGroup(k, src, dst, p, g*WorkgroupSize); err != nil {
					errs[worker] = err
					return
				}
			}
		}(w, start, end)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
