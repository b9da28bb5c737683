package compute

import (
	"context"

	"github.com/san-kum/partsim/internal/particle"
)

type SerialBackend struct{}

func NewSerialBackend() *SerialBackend { return &SerialBackend{} }

func (s *SerialBackend) Name() string    { return "serial" }
func (s *SerialBackend) Available() bool { return true }
func (s *SerialBackend) Cleanup()        {}

func (s *SerialBackend) Run(ctx context.Context, k *particle.Kernel, src, dst []particle.Particle, p particle.Params) error {
	if err := checkBuffers(src, dst); err != nil {
		return err
	}
	grid := GridSize(len(src))
	for base := 0; base < grid; base += WorkgroupSize {
		if err := ctx.Err(); err != nil {
			return interrupted(err)
		}
		if err := runGroup(k, src, dst, p, base); err != nil {
			return err
		}
	}
	return nil
}
