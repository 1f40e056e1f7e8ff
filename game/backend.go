package game

import (
	"fmt"

	"github.com/pthm-cable/photonwell/config"
	"github.com/pthm-cable/photonwell/gpu"
	"github.com/pthm-cable/photonwell/sim"
)

// Backends lists every backend name in the order B cycles through them.
var Backends = []string{
	config.BackendSequential,
	config.BackendWorkers,
	config.BackendGPU,
	config.BackendOpenCL,
}

// NeedsWindow reports whether the named backend runs on the window's GL
// context.
func NeedsWindow(name string) bool {
	return name == config.BackendGPU
}

// NewBackend builds the named execution backend. CPU backends start with
// driver.lifecycle, kernel backends with gpu.lifecycle.
func NewBackend(cfg *config.Config, name string) (sim.Backend, error) {
	switch name {
	case config.BackendSequential:
		return sim.NewSequential(cfg, cfg.Driver.Lifecycle), nil
	case config.BackendWorkers:
		return sim.NewWorkers(cfg, cfg.Driver.Lifecycle, cfg.Driver.Workers), nil
	case config.BackendGPU:
		c, err := gpu.NewCompute(cfg, cfg.GPU.Lifecycle)
		if err != nil {
			return nil, fmt.Errorf("creating gpu backend: %w", err)
		}
		return c, nil
	case config.BackendOpenCL:
		o, err := gpu.NewOpenCL(cfg, cfg.GPU.Lifecycle)
		if err != nil {
			return nil, fmt.Errorf("creating opencl backend: %w", err)
		}
		return o, nil
	}
	return nil, fmt.Errorf("unknown backend %q", name)
}

// NewDriver builds the backend and a world whose startup rule matches the
// backend's lifecycle mode.
func NewDriver(cfg *config.Config, name string, seed uint64) (*sim.Driver, error) {
	b, err := NewBackend(cfg, name)
	if err != nil {
		return nil, err
	}
	w, err := sim.NewWorld(cfg, seed, b.Lifecycle())
	if err != nil {
		b.Close()
		return nil, err
	}
	return sim.NewDriver(w, b), nil
}

// nextBackend returns the backend after current in Backends.
func nextBackend(current string) string {
	for i, name := range Backends {
		if name == current {
			return Backends[(i+1)%len(Backends)]
		}
	}
	return Backends[0]
}
