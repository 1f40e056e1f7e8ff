// Package gpu runs the photon update as a data-parallel kernel, either as a
// GLSL compute shader through raylib's rlgl layer or as an OpenCL kernel.
// Device buffers mirror the World; the host copy is refreshed after every
// dispatch so presentation and telemetry read the same state as CPU runs.
package gpu

import (
	"unsafe"

	"github.com/pthm-cable/photonwell/components"
	"github.com/pthm-cable/photonwell/config"
	"github.com/pthm-cable/photonwell/sim"
	"github.com/pthm-cable/photonwell/systems"
)

// gpuPhoton matches the std430 / OpenCL struct layout used by both kernels.
type gpuPhoton struct {
	Pos    [4]float32 // x, y, z, 1
	Vel    [4]float32 // vel.x, vel.z, active (0/1), respawn timer
	Cursor int32
	Kind   int32
	Rng    uint32 // xorshift32 state, never zero
	Event  int32  // systems.Event written by the kernel
}

const photonStride = int(unsafe.Sizeof(gpuPhoton{}))

// trailStride is the byte size of one trail entry (vec4 / float4).
const trailStride = 4 * 4

// hostState is the host mirror of the device buffers.
type hostState struct {
	photons    []gpuPhoton
	trails     []float32 // N*T vec4 entries
	n, t       int
	generation uint64 // world generation last uploaded
	uploaded   bool
}

func newHostState(n, t int) *hostState {
	return &hostState{
		photons: make([]gpuPhoton, n),
		trails:  make([]float32, n*t*4),
		n:       n,
		t:       t,
	}
}

func (h *hostState) photonBytes() int { return h.n * photonStride }
func (h *hostState) trailBytes() int  { return h.n * h.t * trailStride }

// needsUpload reports whether the device copy is stale.
func (h *hostState) needsUpload(w *sim.World) bool {
	return !h.uploaded || h.generation != w.Generation()
}

// pack copies the world into the host mirror. Each photon's kernel random
// stream is seeded from its own host stream.
func (h *hostState) pack(w *sim.World) {
	for i, r := range w.Refs() {
		g := &h.photons[i]
		g.Pos = [4]float32{r.Motion.Pos.X, r.Motion.Pos.Y, r.Motion.Pos.Z, 1}
		active := float32(0)
		if r.Life.Active {
			active = 1
		}
		g.Vel = [4]float32{r.Motion.Vel.X, r.Motion.Vel.Z, active, r.Life.RespawnTimer}
		g.Cursor = int32(r.Trail.Cursor)
		g.Kind = int32(r.Photon.Kind)
		g.Rng = r.Photon.Rand.Uint32() | 1
		g.Event = int32(systems.EventNone)

		base := i * h.t * 4
		for j, p := range r.Trail.Points {
			k := base + j*4
			h.trails[k] = p.X
			h.trails[k+1] = p.Y
			h.trails[k+2] = p.Z
			h.trails[k+3] = 1
		}
	}
	h.generation = w.Generation()
	h.uploaded = true
}

// unpack writes the host mirror back into the world and collects events.
func (h *hostState) unpack(w *sim.World, events []systems.Event) {
	for i, r := range w.Refs() {
		g := &h.photons[i]
		r.Motion.Pos = components.Vec3{X: g.Pos[0], Y: g.Pos[1], Z: g.Pos[2]}
		r.Motion.Vel = components.Vec2{X: g.Vel[0], Z: g.Vel[1]}
		r.Life.Active = g.Vel[2] > 0.5
		r.Life.RespawnTimer = g.Vel[3]
		r.Trail.Cursor = int(g.Cursor)
		events[i] = systems.Event(g.Event)

		base := i * h.t * 4
		for j := range r.Trail.Points {
			k := base + j*4
			r.Trail.Points[j] = components.Vec3{X: h.trails[k], Y: h.trails[k+1], Z: h.trails[k+2]}
		}
	}
}

// params are the scalar kernel inputs, all passed as floats.
type params struct {
	DT              float32
	Mass            float32
	MinRadius       float32
	FDStep          float32
	MaxForce        float32
	GridSize        float32
	EscapeRadius    float32
	OrbitRadius     float32
	OrbitSpeed      float32
	InfallSpeed     float32
	LateralJitter   float32
	RespawnDelayMax float32
	Count           float32
	TrailLength     float32
	Lifecycle       float32
}

func newParams(cfg *config.Config, lifecycle bool) params {
	p := params{
		DT:              cfg.Derived.DT32,
		Mass:            float32(cfg.Well.Mass),
		MinRadius:       float32(cfg.Well.MinRadius),
		FDStep:          float32(cfg.Physics.FDStep),
		MaxForce:        float32(cfg.Physics.MaxForce),
		GridSize:        float32(cfg.Well.GridSize),
		EscapeRadius:    float32(cfg.Derived.EscapeRadius),
		OrbitRadius:     float32(cfg.Spawn.OrbitRadius),
		OrbitSpeed:      systems.NewLifecycle(cfg).OrbitSpeed,
		InfallSpeed:     float32(cfg.Spawn.InfallSpeed),
		LateralJitter:   float32(cfg.Spawn.LateralJitter),
		RespawnDelayMax: float32(cfg.Spawn.RespawnDelayMax),
		Count:           float32(cfg.Photons.Count),
		TrailLength:     float32(cfg.Photons.TrailLength),
	}
	p.setLifecycle(lifecycle)
	return p
}

func (p *params) setLifecycle(on bool) {
	p.Lifecycle = 0
	if on {
		p.Lifecycle = 1
	}
}

// uniform is a named scalar kernel input.
type uniform struct {
	Name  string
	Value float32
}

// uniforms lists the inputs in kernel argument order.
func (p params) uniforms() []uniform {
	return []uniform{
		{"dt", p.DT},
		{"mass", p.Mass},
		{"minRadius", p.MinRadius},
		{"fdStep", p.FDStep},
		{"maxForce", p.MaxForce},
		{"gridSize", p.GridSize},
		{"escapeRadius", p.EscapeRadius},
		{"orbitRadius", p.OrbitRadius},
		{"orbitSpeed", p.OrbitSpeed},
		{"infallSpeed", p.InfallSpeed},
		{"lateralJitter", p.LateralJitter},
		{"respawnDelayMax", p.RespawnDelayMax},
		{"count", p.Count},
		{"trailLength", p.TrailLength},
		{"lifecycle", p.Lifecycle},
	}
}

// groups returns the dispatch size for n invocations.
func groups(n, size int) uint32 {
	return uint32(n/size + 1)
}
