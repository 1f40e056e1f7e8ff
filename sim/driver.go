package sim

import (
	"fmt"

	"github.com/pthm-cable/photonwell/systems"
)

// TickStats summarizes the events of one tick.
type TickStats struct {
	Tick      int64
	Captured  int
	Escaped   int
	Respawned int
	Recycled  int
}

// Add accumulates o into s, keeping the later tick number.
func (s *TickStats) Add(o TickStats) {
	s.Tick = max(s.Tick, o.Tick)
	s.Captured += o.Captured
	s.Escaped += o.Escaped
	s.Respawned += o.Respawned
	s.Recycled += o.Recycled
}

// Driver runs fixed-step ticks over a World. It is not safe for concurrent
// use; presentation reads state through Snapshot between ticks.
type Driver struct {
	world   *World
	backend Backend
	events  []systems.Event
	tick    int64
}

// NewDriver pairs a world with an execution backend.
func NewDriver(w *World, b Backend) *Driver {
	return &Driver{
		world:   w,
		backend: b,
		events:  make([]systems.Event, w.Len()),
	}
}

// Tick advances every photon by one fixed step.
func (d *Driver) Tick() (TickStats, error) {
	clear(d.events)
	if err := d.backend.Step(d.world, d.events); err != nil {
		return TickStats{}, fmt.Errorf("%s step at tick %d: %w", d.backend.Name(), d.tick, err)
	}
	d.tick++

	// Reduction happens after the barrier, in ID order
	stats := TickStats{Tick: d.tick}
	for _, ev := range d.events {
		switch ev {
		case systems.EventCaptured:
			stats.Captured++
		case systems.EventEscaped:
			stats.Escaped++
		case systems.EventRespawned:
			stats.Respawned++
		case systems.EventRecycled:
			stats.Recycled++
		}
	}
	return stats, nil
}

// Events returns the per-photon events of the last tick, indexed by ID.
// The slice is overwritten by the next Tick.
func (d *Driver) Events() []systems.Event {
	return d.events
}

// CurrentTick returns the number of completed ticks.
func (d *Driver) CurrentTick() int64 {
	return d.tick
}

// World returns the driven world.
func (d *Driver) World() *World {
	return d.world
}

// Backend returns the active execution backend.
func (d *Driver) Backend() Backend {
	return d.backend
}

// SetBackend swaps the execution backend, closing the previous one.
func (d *Driver) SetBackend(b Backend) error {
	old := d.backend
	d.backend = b
	if old != nil && old != b {
		if err := old.Close(); err != nil {
			return fmt.Errorf("closing %s backend: %w", old.Name(), err)
		}
	}
	return nil
}

// SetLifecycle toggles the lifecycle layer on the active backend.
func (d *Driver) SetLifecycle(on bool) {
	d.backend.SetLifecycle(on)
}

// Reset reinitializes all photons using the backend's lifecycle mode.
func (d *Driver) Reset() {
	d.world.Reset(d.backend.Lifecycle())
	d.tick = 0
	clear(d.events)
}

// Close releases the backend.
func (d *Driver) Close() error {
	return d.backend.Close()
}
