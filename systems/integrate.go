package systems

import "github.com/pthm-cable/photonwell/components"

// Step advances one motion state by dt with semi-implicit Euler.
// The force is sampled at the start position and applied to velocity
// before the position moves; Y is then re-derived from the field.
func Step(m components.Motion, f Field, dt float32) components.Motion {
	g := f.Force(m.Pos.X, m.Pos.Z)

	vel := components.Vec2{
		X: m.Vel.X - g.X*dt,
		Z: m.Vel.Z - g.Z*dt,
	}
	x := m.Pos.X + vel.X*dt
	z := m.Pos.Z + vel.Z*dt

	return components.Motion{Pos: f.Surface(x, z), Vel: vel}
}

// Integrate steps m in place and records the new position in the trail.
func Integrate(m *components.Motion, tr *components.Trail, f Field, dt float32) {
	*m = Step(*m, f, dt)
	tr.Push(m.Pos)
}
