// Package telemetry provides tick timing, windowed photon statistics,
// CSV output and OpenTelemetry instruments.
package telemetry

import (
	"github.com/pthm-cable/photonwell/components"
	"github.com/pthm-cable/photonwell/sim"
	"github.com/pthm-cable/photonwell/systems"
)

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int64
	dt                  float32

	windowStartTick int64
	counts          sim.TickStats
	lifetimes       *LifetimeTracker

	// scratch, reused across flushes
	speeds []float64
	radii  []float64
}

// NewCollector creates a collector for n photons. windowTicks is the window
// length in ticks and dt the seconds per tick.
func NewCollector(n, windowTicks int, dt float32) *Collector {
	return &Collector{
		windowDurationTicks: int64(max(windowTicks, 1)),
		dt:                  dt,
		lifetimes:           NewLifetimeTracker(n, float64(dt)),
	}
}

// Restart opens a new window at the frame's tick, discarding counts.
// Call it after the driver is created or reset.
func (c *Collector) Restart(f *sim.Frame) {
	c.windowStartTick = f.Tick
	c.counts = sim.TickStats{}
	c.lifetimes.Restart(f)
}

// Record adds one tick's summary and per-photon events.
func (c *Collector) Record(ts sim.TickStats, events []systems.Event) {
	c.counts.Add(ts)
	c.lifetimes.Observe(ts.Tick, events)
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces the stats for the window ending at f and starts the next.
func (c *Collector) Flush(f *sim.Frame, backend string, lifecycle bool) WindowStats {
	c.speeds = c.speeds[:0]
	c.radii = c.radii[:0]
	for _, p := range f.Photons {
		if !p.Active {
			continue
		}
		c.speeds = append(c.speeds, float64(p.Velocity.Len()))
		if p.Kind == components.KindOrbiting {
			c.radii = append(c.radii, float64(p.Position.Planar().Len()))
		}
	}

	speed := Describe(c.speeds)
	orbit := Describe(c.radii)
	flight := Describe(c.lifetimes.Drain())

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   f.Tick,
		SimTimeSec:      float64(f.Tick) * float64(c.dt),
		Backend:         backend,
		Lifecycle:       lifecycle,

		Active:   f.Active,
		Inactive: len(f.Photons) - f.Active,

		Captured:     c.counts.Captured,
		Escaped:      c.counts.Escaped,
		Respawned:    c.counts.Respawned,
		Recycled:     c.counts.Recycled,
		CaptureRatio: ratio(c.counts.Captured, c.counts.Captured+c.counts.Escaped),

		SpeedMean: speed.Mean,
		SpeedP10:  speed.P10,
		SpeedP50:  speed.P50,
		SpeedP90:  speed.P90,

		OrbitRadiusMean: orbit.Mean,
		OrbitRadiusStd:  orbit.Std,
		OrbitRadiusMin:  orbit.Min,
		OrbitRadiusMax:  orbit.Max,

		FlightMean: flight.Mean,
		FlightP50:  flight.P50,
		FlightP90:  flight.P90,
	}

	c.windowStartTick = f.Tick
	c.counts = sim.TickStats{}
	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}

// InFlight returns the number of photons currently being timed.
func (c *Collector) InFlight() int {
	return c.lifetimes.InFlight()
}
