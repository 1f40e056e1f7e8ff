// Package sim owns the photon collection and runs ticks through a
// pluggable execution backend.
package sim

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/photonwell/components"
	"github.com/pthm-cable/photonwell/config"
	"github.com/pthm-cable/photonwell/systems"
)

// Ref points at one photon's components. Pointers stay valid for the life
// of the World because entities are created once and never removed.
type Ref struct {
	Photon *components.Photon
	Motion *components.Motion
	Life   *components.Life
	Trail  *components.Trail
}

// World is a fixed-capacity photon collection indexed by photon ID.
type World struct {
	cfg       *config.Config
	seed      uint64
	lifecycle systems.Lifecycle

	world  *ecs.World
	mapper *ecs.Map4[components.Photon, components.Motion, components.Life, components.Trail]
	filter *ecs.Filter4[components.Photon, components.Motion, components.Life, components.Trail]

	entities []ecs.Entity
	refs     []Ref

	// generation changes whenever photon state is rewritten from the host,
	// so device-side copies know to re-upload.
	generation uint64
}

// NewWorld validates cfg and creates every photon. Photons 0..K-1 are
// orbiting, the rest infalling. managed selects the startup rule: with the
// lifecycle layer on, infalling photons start inactive with staggered timers.
func NewWorld(cfg *config.Config, seed uint64, managed bool) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("creating world: %w", err)
	}

	n := cfg.Photons.Count
	world := ecs.NewWorld()
	w := &World{
		cfg:       cfg,
		seed:      seed,
		lifecycle: systems.NewLifecycle(cfg),
		world:     world,
		mapper:    ecs.NewMap4[components.Photon, components.Motion, components.Life, components.Trail](world),
		filter:    ecs.NewFilter4[components.Photon, components.Motion, components.Life, components.Trail](world),
		entities:  make([]ecs.Entity, n),
		refs:      make([]Ref, n),
	}

	for id := 0; id < n; id++ {
		kind := components.KindInfalling
		if id < cfg.Photons.Orbiting {
			kind = components.KindOrbiting
		}
		p := components.Photon{ID: id, Kind: kind, Rand: components.NewPhotonRand(seed, id)}
		m := components.Motion{}
		life := components.Life{}
		tr := components.NewTrail(cfg.Photons.TrailLength)
		w.entities[id] = w.mapper.NewEntity(&p, &m, &life, &tr)
	}

	// Storage is final once every entity exists
	for id, e := range w.entities {
		p, m, life, tr := w.mapper.Get(e)
		w.refs[id] = Ref{Photon: p, Motion: m, Life: life, Trail: tr}
	}

	w.Reset(managed)
	return w, nil
}

// Reset reinitializes every photon in place with the startup rule.
func (w *World) Reset(managed bool) {
	for _, r := range w.refs {
		w.lifecycle.Init(r.Photon, r.Motion, r.Life, r.Trail, managed)
	}
	w.generation++
}

// Len returns the photon count.
func (w *World) Len() int {
	return len(w.refs)
}

// Refs returns the photons in ID order. Callers must not retain the slice
// across a Reset of a different World.
func (w *World) Refs() []Ref {
	return w.refs
}

// Ref returns one photon by ID.
func (w *World) Ref(id int) Ref {
	return w.refs[id]
}

// Entity returns the ECS entity backing photon id.
func (w *World) Entity(id int) ecs.Entity {
	return w.entities[id]
}

// Config returns the configuration the world was built with.
func (w *World) Config() *config.Config {
	return w.cfg
}

// Seed returns the run seed.
func (w *World) Seed() uint64 {
	return w.seed
}

// Generation identifies the current host-side state; see Reset.
func (w *World) Generation() uint64 {
	return w.generation
}

// Population counts photons by activity and kind.
type Population struct {
	Active    int
	Inactive  int
	Orbiting  int
	Infalling int
}

// Population walks the ECS filter and tallies photons.
func (w *World) Population() Population {
	var pop Population
	query := w.filter.Query()
	for query.Next() {
		p, _, life, _ := query.Get()
		if life.Active {
			pop.Active++
		} else {
			pop.Inactive++
		}
		if p.Kind == components.KindOrbiting {
			pop.Orbiting++
		} else {
			pop.Infalling++
		}
	}
	return pop
}
