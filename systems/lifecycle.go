package systems

import (
	"math"

	"github.com/pthm-cable/photonwell/components"
	"github.com/pthm-cable/photonwell/config"
)

// Event reports what happened to one photon during a tick.
type Event uint8

const (
	EventNone Event = iota
	EventCaptured
	EventEscaped
	EventRespawned
	EventRecycled
)

// String returns the event name used in logs and metric attributes.
func (e Event) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventCaptured:
		return "captured"
	case EventEscaped:
		return "escaped"
	case EventRespawned:
		return "respawned"
	case EventRecycled:
		return "recycled"
	}
	return "unknown"
}

// Lifecycle holds the spawn and retirement rules.
type Lifecycle struct {
	Field           Field
	GridSize        float32 // infalling photons enter at x = -GridSize
	EscapeRadius    float32
	OrbitRadius     float32
	OrbitSpeed      float32
	InfallSpeed     float32
	LateralJitter   float32
	InitialDelayMax float32
	RespawnDelayMax float32
}

// NewLifecycle builds the lifecycle rules from config.
func NewLifecycle(cfg *config.Config) Lifecycle {
	return Lifecycle{
		Field:           NewField(cfg),
		GridSize:        float32(cfg.Well.GridSize),
		EscapeRadius:    float32(cfg.Derived.EscapeRadius),
		OrbitRadius:     float32(cfg.Spawn.OrbitRadius),
		OrbitSpeed:      float32(cfg.Spawn.OrbitSpeedScale * math.Sqrt(cfg.Well.Mass/cfg.Spawn.OrbitRadius)),
		InfallSpeed:     float32(cfg.Spawn.InfallSpeed),
		LateralJitter:   float32(cfg.Spawn.LateralJitter),
		InitialDelayMax: float32(cfg.Spawn.InitialDelayMax),
		RespawnDelayMax: float32(cfg.Spawn.RespawnDelayMax),
	}
}

// Spawn resets a photon in place according to its kind and activates it.
func (l Lifecycle) Spawn(p *components.Photon, m *components.Motion, life *components.Life, tr *components.Trail) {
	switch p.Kind {
	case components.KindOrbiting:
		theta := p.Rand.Float64() * 2 * math.Pi
		sin, cos := math.Sincos(theta)
		rho := l.OrbitRadius
		v := l.OrbitSpeed
		m.Pos = l.Field.Surface(rho*float32(cos), rho*float32(sin))
		m.Vel = components.Vec2{X: -v * float32(sin), Z: v * float32(cos)}
	default:
		// Draw in float32 so the upper bounds stay exclusive
		z := l.GridSize * (2*p.Rand.Float32() - 1)
		jitter := l.LateralJitter * (2*p.Rand.Float32() - 1)
		m.Pos = l.Field.Surface(-l.GridSize, z)
		m.Vel = components.Vec2{X: l.InfallSpeed, Z: jitter}
	}

	life.Active = true
	life.RespawnTimer = 0
	tr.Fill(m.Pos)
}

// Init sets the startup state. Orbiting photons spawn immediately, as does
// every photon when the lifecycle layer is off. Otherwise infalling photons
// wait at the domain edge with a staggered timer.
func (l Lifecycle) Init(p *components.Photon, m *components.Motion, life *components.Life, tr *components.Trail, managed bool) {
	if p.Kind == components.KindOrbiting || !managed {
		l.Spawn(p, m, life, tr)
		return
	}
	*m = components.Motion{Pos: l.Field.Surface(-l.GridSize, 0)}
	tr.Fill(m.Pos)
	life.Active = false
	life.RespawnTimer = l.InitialDelayMax * p.Rand.Float32()
}

// Retire deactivates an infalling photon that has been captured or has
// escaped. Orbiting photons are never retired.
func (l Lifecycle) Retire(p *components.Photon, m *components.Motion, life *components.Life) Event {
	if p.Kind == components.KindOrbiting {
		return EventNone
	}
	r := m.Pos.Planar().Len()
	var ev Event
	switch {
	case r < l.Field.MinRadius:
		ev = EventCaptured
	case r > l.EscapeRadius:
		ev = EventEscaped
	default:
		return EventNone
	}
	life.Active = false
	life.RespawnTimer = l.RespawnDelayMax * p.Rand.Float32()
	return ev
}

// Recycle is the edge rule used when the lifecycle layer is off: a photon
// past the escape radius re-enters at x = -GridSize keeping its clamped z
// and lateral velocity. It consumes no randomness.
func (l Lifecycle) Recycle(m *components.Motion, tr *components.Trail) Event {
	if m.Pos.Planar().Len() <= l.EscapeRadius {
		return EventNone
	}
	z := min(max(m.Pos.Z, -l.GridSize), l.GridSize)
	m.Pos = l.Field.Surface(-l.GridSize, z)
	m.Vel = components.Vec2{X: l.InfallSpeed, Z: m.Vel.Z}
	tr.Fill(m.Pos)
	return EventRecycled
}
