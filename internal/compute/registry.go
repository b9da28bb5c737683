package compute

import (
	"fmt"
	"sort"
)

var factories = map[string]func(workers int) Backend{
	"serial": func(int) Backend { return NewSerialBackend() },
	"cpu":    func(w int) Backend { return NewCPUBackend(w) },
	"group":  func(w int) Backend { return NewGroupBackend(w) },
	"opengl": func(int) Backend { return NewOpenGLBackend() },
}

// NewBackend returns the named backend. "auto" or "" selects the best
// available one.
func NewBackend(name string, workers int) (Backend, error) {
	if name == "" || name == "auto" {
		return AutoSelectBackend(workers), nil
	}

	fn, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend: %s (available: %v)", name, Names())
	}

	b := fn(workers)
	if !b.Available() {
		b.Cleanup()
		return nil, fmt.Errorf("backend %s not available in this build", name)
	}
	return b, nil
}

// AutoSelectBackend prefers the GPU and falls back to the CPU.
func AutoSelectBackend(workers int) Backend {
	gpu := NewOpenGLBackend()
	if gpu.Available() {
		return gpu
	}
	gpu.Cleanup()
	return NewCPUBackend(workers)
}

func Names() []string {
	names := make([]string, 0, len(factories)+1)
	for name := range factories {
		names = append(names, name)
	}
	names = append(names, "auto")
	sort.Strings(names)
	return names
}
