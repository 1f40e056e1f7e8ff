package telemetry

import (
	"github.com/pthm-cable/photonwell/sim"
	"github.com/pthm-cable/photonwell/systems"
)

// LifetimeTracker measures how long each photon flies between spawning
// and leaving the field, whether by capture, escape, or edge recycling.
type LifetimeTracker struct {
	spawnTick []int64 // -1 while parked
	dt        float64
	flights   []float64 // seconds, completed since the last Drain
}

// NewLifetimeTracker creates a tracker for n photons stepped by dt.
func NewLifetimeTracker(n int, dt float64) *LifetimeTracker {
	lt := &LifetimeTracker{
		spawnTick: make([]int64, n),
		dt:        dt,
	}
	for i := range lt.spawnTick {
		lt.spawnTick[i] = -1
	}
	return lt
}

// Restart starts the clock for every photon active in f and clears
// completed flights.
func (lt *LifetimeTracker) Restart(f *sim.Frame) {
	for i, p := range f.Photons {
		if i >= len(lt.spawnTick) {
			break
		}
		lt.spawnTick[i] = -1
		if p.Active {
			lt.spawnTick[i] = f.Tick
		}
	}
	lt.flights = lt.flights[:0]
}

// Observe applies the per-photon events of the tick that just completed.
func (lt *LifetimeTracker) Observe(tick int64, events []systems.Event) {
	for id, ev := range events {
		if id >= len(lt.spawnTick) {
			break
		}
		switch ev {
		case systems.EventRespawned:
			lt.spawnTick[id] = tick
		case systems.EventCaptured, systems.EventEscaped:
			lt.finish(id, tick)
			lt.spawnTick[id] = -1
		case systems.EventRecycled:
			lt.finish(id, tick)
			lt.spawnTick[id] = tick
		}
	}
}

func (lt *LifetimeTracker) finish(id int, tick int64) {
	if start := lt.spawnTick[id]; start >= 0 {
		lt.flights = append(lt.flights, float64(tick-start)*lt.dt)
	}
}

// Drain returns the flights completed since the last call. The slice is
// reused by later calls.
func (lt *LifetimeTracker) Drain() []float64 {
	out := lt.flights
	lt.flights = lt.flights[:0]
	return out
}

// InFlight returns the number of photons currently being timed.
func (lt *LifetimeTracker) InFlight() int {
	n := 0
	for _, t := range lt.spawnTick {
		if t >= 0 {
			n++
		}
	}
	return n
}
