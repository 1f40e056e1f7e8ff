package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks the invariants the simulation relies on.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Photons.Count > 0, "photons.count must be positive, got %d", c.Photons.Count)
	check(c.Photons.Orbiting >= 0, "photons.orbiting must not be negative, got %d", c.Photons.Orbiting)
	check(c.Photons.Orbiting <= c.Photons.Count,
		"photons.orbiting (%d) exceeds photons.count (%d)", c.Photons.Orbiting, c.Photons.Count)
	check(c.Photons.TrailLength >= 1, "photons.trail_length must be at least 1, got %d", c.Photons.TrailLength)

	check(c.Well.Mass > 0, "well.mass must be positive, got %g", c.Well.Mass)
	check(c.Well.MinRadius > 0, "well.min_radius must be positive, got %g", c.Well.MinRadius)
	check(c.Well.GridSize > 0, "well.grid_size must be positive, got %g", c.Well.GridSize)
	check(c.Well.EscapeFactor >= 1, "well.escape_factor must be at least 1, got %g", c.Well.EscapeFactor)

	check(c.Physics.DT > 0, "physics.dt must be positive, got %g", c.Physics.DT)
	check(c.Physics.MaxForce > 0, "physics.max_force must be positive, got %g", c.Physics.MaxForce)
	check(c.Physics.FDStep > 0, "physics.fd_step must be positive, got %g", c.Physics.FDStep)

	check(c.Spawn.OrbitRadius >= c.Well.MinRadius,
		"spawn.orbit_radius (%g) is inside well.min_radius (%g)", c.Spawn.OrbitRadius, c.Well.MinRadius)
	check(c.Spawn.OrbitSpeedScale > 0, "spawn.orbit_speed_scale must be positive, got %g", c.Spawn.OrbitSpeedScale)
	check(c.Spawn.InitialDelayMax >= 0, "spawn.initial_delay_max must not be negative")
	check(c.Spawn.RespawnDelayMax >= 0, "spawn.respawn_delay_max must not be negative")

	switch c.Driver.Backend {
	case BackendSequential, BackendWorkers, BackendGPU, BackendOpenCL:
	default:
		check(false, "driver.backend %q is not one of %s, %s, %s, %s", c.Driver.Backend,
			BackendSequential, BackendWorkers, BackendGPU, BackendOpenCL)
	}
	check(c.Driver.Workers >= 0, "driver.workers must not be negative, got %d", c.Driver.Workers)
	check(c.GPU.WorkgroupSize > 0, "gpu.workgroup_size must be positive, got %d", c.GPU.WorkgroupSize)
	check(c.Telemetry.MetricsInterval > 0, "telemetry.metrics_interval must be positive, got %s", c.Telemetry.MetricsInterval)

	return errors.Join(errs...)
}
