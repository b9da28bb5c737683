//go:build !opengl

package compute

import (
	"context"

	"github.com/san-kum/partsim/internal/particle"
)

type OpenGLBackend struct{}

func NewOpenGLBackend() *OpenGLBackend {
	return &OpenGLBackend{}
}

func (b *OpenGLBackend) Name() string    { return "opengl (not available)" }
func (b *OpenGLBackend) Available() bool { return false }
func (b *OpenGLBackend) Cleanup()        {}

func (b *OpenGLBackend) Run(ctx context.Context, k *particle.Kernel, src, dst []particle.Particle, p particle.Params) error {
	return NewCPUBackend(0).Run(ctx, k, src, dst, p)
}
