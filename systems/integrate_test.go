package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/photonwell/components"
)

func TestStepFromRestMatchesForce(t *testing.T) {
	f := testField()
	const dt = float32(0.06)

	positions := []components.Vec2{{X: 3, Z: 0}, {X: -7.5, Z: 2.25}, {X: 0.5, Z: 0.5}, {X: 20, Z: -31}}
	for _, p := range positions {
		m := components.Motion{Pos: f.Surface(p.X, p.Z)}
		g := f.Force(p.X, p.Z)

		got := Step(m, f, dt)

		if got.Vel.X != -g.X*dt || got.Vel.Z != -g.Z*dt {
			t.Errorf("at %+v: vel = %+v, want %+v", p, got.Vel, components.Vec2{X: -g.X * dt, Z: -g.Z * dt})
		}
	}
}

func TestStepSemiImplicit(t *testing.T) {
	f := testField()
	const dt = float32(0.06)
	m := components.Motion{Pos: f.Surface(5, 1), Vel: components.Vec2{X: 0.3, Z: -0.2}}

	got := Step(m, f, dt)

	// Position moves with the updated velocity
	wantX := m.Pos.X + got.Vel.X*dt
	wantZ := m.Pos.Z + got.Vel.Z*dt
	if math.Abs(float64(got.Pos.X-wantX)) > 1e-6 || math.Abs(float64(got.Pos.Z-wantZ)) > 1e-6 {
		t.Errorf("pos = (%v, %v), want (%v, %v)", got.Pos.X, got.Pos.Z, wantX, wantZ)
	}
	if got.Pos.Y != f.Displacement(got.Pos.X, got.Pos.Z) {
		t.Errorf("pos.Y = %v, not on the field (%v)", got.Pos.Y, f.Displacement(got.Pos.X, got.Pos.Z))
	}
	// Input untouched
	if m.Vel.X != 0.3 {
		t.Error("Step mutated its input")
	}
}

func TestIntegrateTrailWrap(t *testing.T) {
	f := testField()
	const T = 8
	const dt = float32(0.06)

	m := components.Motion{Pos: f.Surface(-40, 3), Vel: components.Vec2{X: 0.8}}
	tr := components.NewTrail(T)
	tr.Fill(m.Pos)

	var history []components.Vec3
	var cursorAfterFirst int
	for i := 0; i < T+1; i++ {
		Integrate(&m, &tr, f, dt)
		history = append(history, m.Pos)
		if i == 0 {
			cursorAfterFirst = tr.Cursor
		}
	}

	if tr.Cursor != cursorAfterFirst {
		t.Errorf("Cursor = %d after T+1 steps, want %d", tr.Cursor, cursorAfterFirst)
	}

	seen := make(map[components.Vec3]bool)
	j := 0
	for p := range tr.All() {
		seen[p] = true
		if want := history[j+1]; p != want {
			t.Errorf("trail[%d] = %+v, want %+v", j, p, want)
		}
		j++
	}
	if len(seen) != T {
		t.Errorf("trail holds %d distinct positions, want %d", len(seen), T)
	}
	if seen[history[0]] {
		t.Error("oldest position was not evicted")
	}
}

func TestPositionStaysOnField(t *testing.T) {
	f := testField()
	m := components.Motion{Pos: f.Surface(2.5, 0), Vel: components.Vec2{Z: 3.16}}
	tr := components.NewTrail(4)
	for i := 0; i < 500; i++ {
		Integrate(&m, &tr, f, 0.06)
		if m.Pos.Y != f.Displacement(m.Pos.X, m.Pos.Z) {
			t.Fatalf("step %d: Y drifted off the field", i)
		}
	}
}
