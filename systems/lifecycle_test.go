package systems

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/pthm-cable/photonwell/components"
	"github.com/pthm-cable/photonwell/config"
)

type testPhoton struct {
	p    components.Photon
	m    components.Motion
	life components.Life
	tr   components.Trail
}

func newTestPhoton(id int, kind components.Kind) *testPhoton {
	return &testPhoton{
		p:  components.Photon{ID: id, Kind: kind, Rand: components.NewPhotonRand(1, id)},
		tr: components.NewTrail(16),
	}
}

func (tp *testPhoton) update(u Updater) Event {
	return u.Update(&tp.p, &tp.m, &tp.life, &tp.tr)
}

func TestSpawnPostconditions(t *testing.T) {
	l := NewLifecycle(config.Default())

	for _, kind := range []components.Kind{components.KindOrbiting, components.KindInfalling} {
		t.Run(kind.String(), func(t *testing.T) {
			tp := newTestPhoton(3, kind)
			tp.life.RespawnTimer = -0.04
			tp.tr.Cursor = 5

			l.Spawn(&tp.p, &tp.m, &tp.life, &tp.tr)

			if !tp.life.Active || tp.life.RespawnTimer != 0 {
				t.Errorf("life = %+v, want active with zero timer", tp.life)
			}
			if tp.tr.Cursor != 0 {
				t.Errorf("Cursor = %d, want 0", tp.tr.Cursor)
			}
			for p := range tp.tr.All() {
				if p != tp.m.Pos {
					t.Fatalf("trail entry %+v != position %+v", p, tp.m.Pos)
				}
			}
			if tp.m.Pos.Y != l.Field.Displacement(tp.m.Pos.X, tp.m.Pos.Z) {
				t.Error("spawn position is off the field")
			}
		})
	}
}

func TestSpawnOrbitingIsCircular(t *testing.T) {
	l := NewLifecycle(config.Default())
	wantSpeed := math.Sqrt(25.0 / 2.5)

	for id := 0; id < 40; id++ {
		tp := newTestPhoton(id, components.KindOrbiting)
		l.Spawn(&tp.p, &tp.m, &tp.life, &tp.tr)

		if r := tp.m.Pos.Planar().Len(); math.Abs(float64(r)-2.5) > 1e-5 {
			t.Errorf("photon %d: radius %v, want 2.5", id, r)
		}
		if v := tp.m.Vel.Len(); math.Abs(float64(v)-wantSpeed) > 1e-5 {
			t.Errorf("photon %d: speed %v, want %v", id, v, wantSpeed)
		}
		dot := tp.m.Vel.X*tp.m.Pos.X + tp.m.Vel.Z*tp.m.Pos.Z
		if math.Abs(float64(dot)) > 1e-4 {
			t.Errorf("photon %d: velocity not tangential, dot = %v", id, dot)
		}
	}
}

func TestSpawnOrbitSpeedScale(t *testing.T) {
	cfg := config.Default()
	cfg.Spawn.OrbitSpeedScale = 1.1
	l := NewLifecycle(cfg)

	tp := newTestPhoton(0, components.KindOrbiting)
	l.Spawn(&tp.p, &tp.m, &tp.life, &tp.tr)

	want := 1.1 * math.Sqrt(25.0/2.5)
	if v := tp.m.Vel.Len(); math.Abs(float64(v)-want) > 1e-5 {
		t.Errorf("speed %v, want %v", v, want)
	}
}

func TestSpawnInfallingAtEdge(t *testing.T) {
	l := NewLifecycle(config.Default())
	for id := 40; id < 150; id++ {
		tp := newTestPhoton(id, components.KindInfalling)
		l.Spawn(&tp.p, &tp.m, &tp.life, &tp.tr)

		if tp.m.Pos.X != -40 {
			t.Errorf("photon %d: x = %v, want -40", id, tp.m.Pos.X)
		}
		if tp.m.Pos.Z < -40 || tp.m.Pos.Z >= 40 {
			t.Errorf("photon %d: z = %v outside [-40, 40)", id, tp.m.Pos.Z)
		}
		if tp.m.Vel.X != 0.8 || tp.m.Vel.Z < -0.125 || tp.m.Vel.Z >= 0.125 {
			t.Errorf("photon %d: vel = %+v", id, tp.m.Vel)
		}
	}
}

// topSource always returns the largest possible draw.
type topSource struct{}

func (topSource) Uint64() uint64 { return ^uint64(0) }

func TestSpawnRangesExcludeUpperBound(t *testing.T) {
	cfg := config.Default()
	l := NewLifecycle(cfg)
	tp := newTestPhoton(100, components.KindInfalling)
	tp.p.Rand = rand.New(topSource{})

	l.Spawn(&tp.p, &tp.m, &tp.life, &tp.tr)
	if tp.m.Pos.Z >= 40 {
		t.Errorf("z = %v, want < 40", tp.m.Pos.Z)
	}
	if tp.m.Vel.Z >= 0.125 {
		t.Errorf("jitter = %v, want < 0.125", tp.m.Vel.Z)
	}

	l.Init(&tp.p, &tp.m, &tp.life, &tp.tr, true)
	if tp.life.RespawnTimer >= float32(cfg.Spawn.InitialDelayMax) {
		t.Errorf("initial timer = %v, want < %v", tp.life.RespawnTimer, cfg.Spawn.InitialDelayMax)
	}

	tp.m.Pos = components.Vec3{X: 100}
	if ev := l.Retire(&tp.p, &tp.m, &tp.life); ev != EventEscaped {
		t.Fatalf("Retire = %v, want escaped", ev)
	}
	if tp.life.RespawnTimer >= float32(cfg.Spawn.RespawnDelayMax) {
		t.Errorf("respawn timer = %v, want < %v", tp.life.RespawnTimer, cfg.Spawn.RespawnDelayMax)
	}
}

func TestInitStaggersInfalling(t *testing.T) {
	l := NewLifecycle(config.Default())

	orb := newTestPhoton(0, components.KindOrbiting)
	l.Init(&orb.p, &orb.m, &orb.life, &orb.tr, true)
	if !orb.life.Active {
		t.Error("orbiting photon should start active")
	}

	inf := newTestPhoton(41, components.KindInfalling)
	l.Init(&inf.p, &inf.m, &inf.life, &inf.tr, true)
	if inf.life.Active {
		t.Error("infalling photon should start inactive")
	}
	if inf.life.RespawnTimer < 0 || inf.life.RespawnTimer >= 3 {
		t.Errorf("initial timer = %v, want [0, 3)", inf.life.RespawnTimer)
	}

	unmanaged := newTestPhoton(42, components.KindInfalling)
	l.Init(&unmanaged.p, &unmanaged.m, &unmanaged.life, &unmanaged.tr, false)
	if !unmanaged.life.Active {
		t.Error("without lifecycle every photon starts active")
	}
}

func TestEscapeThenRespawn(t *testing.T) {
	cfg := config.Default()
	u := NewUpdater(cfg, true)

	tp := newTestPhoton(50, components.KindInfalling)
	tp.m = components.Motion{Pos: u.Lifecycle.Field.Surface(59.9, 0), Vel: components.Vec2{X: 10}}
	tp.life.Active = true

	if ev := tp.update(u); ev != EventEscaped {
		t.Fatalf("event = %v, want escaped", ev)
	}
	if tp.life.Active {
		t.Fatal("photon still active after crossing the escape radius")
	}
	if tp.life.RespawnTimer < 0 || tp.life.RespawnTimer >= 1 {
		t.Errorf("respawn timer = %v, want [0, 1)", tp.life.RespawnTimer)
	}

	// 0.1 - 0.06 > 0, then 0.04 - 0.06 <= 0
	tp.life.RespawnTimer = 0.1
	frozen := tp.m
	if ev := tp.update(u); ev != EventNone || tp.life.Active {
		t.Fatalf("reactivated early: event %v, life %+v", ev, tp.life)
	}
	if tp.m != frozen {
		t.Error("inactive photon was integrated")
	}
	if ev := tp.update(u); ev != EventRespawned || !tp.life.Active {
		t.Fatalf("event = %v, life = %+v, want respawned", ev, tp.life)
	}
	if tp.m.Pos.X != -40 {
		t.Errorf("respawned at x = %v, want -40", tp.m.Pos.X)
	}
}

func TestCapture(t *testing.T) {
	u := NewUpdater(config.Default(), true)
	tp := newTestPhoton(60, components.KindInfalling)
	tp.m = components.Motion{Pos: u.Lifecycle.Field.Surface(1.55, 0), Vel: components.Vec2{X: -2}}
	tp.life.Active = true

	if ev := tp.update(u); ev != EventCaptured {
		t.Fatalf("event = %v, want captured", ev)
	}
	if tp.life.Active {
		t.Error("captured photon still active")
	}
}

func TestOrbitingNeverRetires(t *testing.T) {
	u := NewUpdater(config.Default(), true)
	tp := newTestPhoton(1, components.KindOrbiting)
	tp.m = components.Motion{Pos: u.Lifecycle.Field.Surface(1.55, 0), Vel: components.Vec2{X: -2}}
	tp.life.Active = true

	if ev := tp.update(u); ev != EventNone || !tp.life.Active {
		t.Errorf("orbiting photon retired: event %v, life %+v", ev, tp.life)
	}
}

func TestRecycleWithoutLifecycle(t *testing.T) {
	u := NewUpdater(config.Default(), false)
	tp := newTestPhoton(70, components.KindInfalling)
	tp.m = components.Motion{Pos: u.Lifecycle.Field.Surface(10, 59.9), Vel: components.Vec2{X: 0.1, Z: 10}}
	tp.life.Active = true

	if ev := tp.update(u); ev != EventRecycled {
		t.Fatalf("event = %v, want recycled", ev)
	}
	if !tp.life.Active {
		t.Error("recycled photon went inactive")
	}
	if tp.m.Pos.X != -40 || tp.m.Pos.Z != 40 {
		t.Errorf("re-entry at (%v, %v), want (-40, 40)", tp.m.Pos.X, tp.m.Pos.Z)
	}
	if tp.m.Vel.X != 0.8 {
		t.Errorf("vel.X = %v, want 0.8", tp.m.Vel.X)
	}
	if tp.m.Pos.Y != u.Lifecycle.Field.Displacement(-40, 40) {
		t.Error("re-entry point is off the field")
	}
	for p := range tp.tr.All() {
		if p != tp.m.Pos {
			t.Fatal("trail not refilled on recycle")
		}
	}

	// Captured photons keep falling through the clamp instead of retiring
	tp.m = components.Motion{Pos: u.Lifecycle.Field.Surface(1.55, 0), Vel: components.Vec2{X: -2}}
	if ev := tp.update(u); ev != EventNone || !tp.life.Active {
		t.Errorf("event = %v, life = %+v, want untouched", ev, tp.life)
	}
}

func TestWaitingPhotonSpawnsWhenLifecycleOff(t *testing.T) {
	cfg := config.Default()
	managed := NewUpdater(cfg, true)
	unmanaged := NewUpdater(cfg, false)

	tp := newTestPhoton(80, components.KindInfalling)
	managed.Lifecycle.Init(&tp.p, &tp.m, &tp.life, &tp.tr, true)
	tp.life.RespawnTimer = 2.5

	if ev := tp.update(managed); ev != EventNone || tp.life.Active {
		t.Fatalf("managed: event = %v, life = %+v, want still waiting", ev, tp.life)
	}

	// The timer is ignored once the layer is off
	if ev := tp.update(unmanaged); ev != EventRespawned {
		t.Fatalf("unmanaged: event = %v, want respawned", ev)
	}
	if !tp.life.Active || tp.life.RespawnTimer != 0 {
		t.Errorf("life = %+v, want active with timer 0", tp.life)
	}
	if tp.m.Pos.X != -40 {
		t.Errorf("spawned at x = %v, want -40", tp.m.Pos.X)
	}
}
