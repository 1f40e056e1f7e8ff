package systems

import (
	"github.com/pthm-cable/photonwell/components"
	"github.com/pthm-cable/photonwell/config"
)

// Updater advances a single photon by one tick. It is the unit of work
// every CPU backend runs, sequentially or in parallel.
type Updater struct {
	Lifecycle Lifecycle
	DT        float32
	Managed   bool // capture/escape/respawn enabled; otherwise edge recycling
}

// NewUpdater builds an Updater from config.
func NewUpdater(cfg *config.Config, managed bool) Updater {
	return Updater{
		Lifecycle: NewLifecycle(cfg),
		DT:        cfg.Derived.DT32,
		Managed:   managed,
	}
}

// Update runs one tick for one photon. An inactive photon only counts down
// and, if its timer runs out, spawns; it is not integrated on that tick.
//
// Without the lifecycle layer there are no timers: a photon left inactive
// when the layer was switched off spawns on its next Update whatever its
// RespawnTimer, and active photons are recycled at the edge instead of
// retired.
func (u Updater) Update(p *components.Photon, m *components.Motion, life *components.Life, tr *components.Trail) Event {
	if !life.Active {
		if !u.Managed {
			// Lifecycle switched off while waiting
			u.Lifecycle.Spawn(p, m, life, tr)
			return EventRespawned
		}
		life.RespawnTimer -= u.DT
		if life.RespawnTimer <= 0 {
			u.Lifecycle.Spawn(p, m, life, tr)
			return EventRespawned
		}
		return EventNone
	}

	Integrate(m, tr, u.Lifecycle.Field, u.DT)

	if u.Managed {
		return u.Lifecycle.Retire(p, m, life)
	}
	return u.Lifecycle.Recycle(m, tr)
}
