// Package compute provides the parallel dispatch mechanisms that run the
// particle kernel over a whole buffer.
//
// Every backend issues one kernel invocation per index of a workgroup-aligned
// grid and returns only once all of them have finished:
//
//   - CPU: chunked fan-out over a fixed set of worker goroutines
//   - Group: one errgroup task per workgroup, bounded concurrency
//   - Serial: single goroutine, index order
//   - OpenGL: the GLSL compute shader, two storage buffers
//
// # GPU Acceleration
//
// The OpenGL backend is compiled only with the opengl build tag:
//
//	go build -tags opengl ./cmd/partsim
//
// Without it, [AutoSelectBackend] always returns the CPU backend.
package compute
