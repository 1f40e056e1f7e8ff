package sim

import (
	"github.com/pthm-cable/photonwell/config"
	"github.com/pthm-cable/photonwell/systems"
)

// Backend advances every photon in a World by one tick.
// events has one slot per photon; Step writes the outcome for photon i to
// events[i]. Step returns only after all photons are updated.
type Backend interface {
	Name() string
	Step(w *World, events []systems.Event) error
	// Lifecycle reports whether capture/escape/respawn is applied.
	Lifecycle() bool
	SetLifecycle(on bool)
	Close() error
}

// Sequential updates photons in ID order on the calling goroutine.
type Sequential struct {
	updater systems.Updater
}

// NewSequential creates the scalar backend.
func NewSequential(cfg *config.Config, lifecycle bool) *Sequential {
	return &Sequential{updater: systems.NewUpdater(cfg, lifecycle)}
}

func (s *Sequential) Name() string { return config.BackendSequential }

func (s *Sequential) Step(w *World, events []systems.Event) error {
	updateRange(s.updater, w.refs, events, 0, len(w.refs))
	return nil
}

func (s *Sequential) Lifecycle() bool      { return s.updater.Managed }
func (s *Sequential) SetLifecycle(on bool) { s.updater.Managed = on }
func (s *Sequential) Close() error         { return nil }

// updateRange runs the per-photon update over refs[i0:i1].
func updateRange(u systems.Updater, refs []Ref, events []systems.Event, i0, i1 int) {
	for i := i0; i < i1; i++ {
		r := refs[i]
		events[i] = u.Update(r.Photon, r.Motion, r.Life, r.Trail)
	}
}
