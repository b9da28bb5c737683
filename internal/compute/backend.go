package compute

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/partsim/internal/particle"
)

// WorkgroupSize is the number of invocations per dispatch group. Grids are
// rounded up to a multiple of it, so the tail of the last group runs past the
// particle count and is skipped by the kernel.
const WorkgroupSize = 256

// ErrInterrupted indicates a dispatch stopped before every invocation ran.
// The destination buffer is partially written.
var ErrInterrupted = errors.New("compute: dispatch interrupted")

type Backend interface {
	Name() string
	Available() bool
	// Run invokes k once per index of src, writing into dst, and returns
	// after all invocations completed.
	Run(ctx context.Context, k *particle.Kernel, src, dst []particle.Particle, p particle.Params) error
	Cleanup()
}

// GridSize returns the workgroup-aligned invocation count for n particles.
func GridSize(n int) int {
	return (n + WorkgroupSize - 1) / WorkgroupSize * WorkgroupSize
}

func checkBuffers(src, dst []particle.Particle) error {
	if len(src) != len(dst) {
		return fmt.Errorf("%w: src %d, dst %d", particle.ErrSizeMismatch, len(src), len(dst))
	}
	return nil
}

func interrupted(cause error) error {
	return fmt.Errorf("%w: %v", ErrInterrupted, cause)
}

// runGroup executes one workgroup starting at base.
func runGroup(k *particle.Kernel, src, dst []particle.Particle, p particle.Params, base int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = interrupted(fmt.Errorf("workgroup %d: %v", base/WorkgroupSize, r))
		}
	}()
	for i := base; i < base+WorkgroupSize; i++ {
		k.Update(src, dst, i, p)
	}
	return nil
}
