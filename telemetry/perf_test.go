package telemetry

import (
	"testing"
	"time"
)

// fakeClock advances only when told to.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCollector(window int) (*PerfCollector, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	pc := NewPerfCollector(window)
	pc.now = clock.now
	return pc, clock
}

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc, clock := newTestCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseStep)
		clock.advance(300 * time.Microsecond)
		pc.StartPhase(PhaseSnapshot)
		clock.advance(100 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration != 400*time.Microsecond {
		t.Errorf("AvgTickDuration = %v, want 400µs", stats.AvgTickDuration)
	}
	if stats.PhaseAvg[PhaseStep] != 300*time.Microsecond {
		t.Errorf("step avg = %v, want 300µs", stats.PhaseAvg[PhaseStep])
	}
	if stats.PhasePct[PhaseSnapshot] != 25 {
		t.Errorf("snapshot pct = %v, want 25", stats.PhasePct[PhaseSnapshot])
	}
	if stats.PhaseAvg[PhaseTelemetry] != 0 {
		t.Errorf("untouched phase avg = %v, want 0", stats.PhaseAvg[PhaseTelemetry])
	}
	if stats.TicksPerSecond != 2500 {
		t.Errorf("TicksPerSecond = %v, want 2500", stats.TicksPerSecond)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc, clock := newTestCollector(5)

	// Five slow ticks followed by five fast ones; only the fast remain
	for i := 0; i < 10; i++ {
		d := 10 * time.Millisecond
		if i >= 5 {
			d = time.Millisecond
		}
		pc.StartTick()
		pc.StartPhase(PhaseStep)
		clock.advance(d)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.MaxTickDuration != time.Millisecond {
		t.Errorf("MaxTickDuration = %v, want 1ms after the window rolled", stats.MaxTickDuration)
	}
	if stats.MinTickDuration != time.Millisecond {
		t.Errorf("MinTickDuration = %v, want 1ms", stats.MinTickDuration)
	}
	if stats.Samples != 5 {
		t.Errorf("Samples = %d, want 5", stats.Samples)
	}
}

func TestPerfCollector_Percentile(t *testing.T) {
	pc, clock := newTestCollector(20)

	for i := 1; i <= 20; i++ {
		pc.StartTick()
		clock.advance(time.Duration(i) * time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.P95TickDuration != 19*time.Millisecond {
		t.Errorf("P95TickDuration = %v, want 19ms", stats.P95TickDuration)
	}
	if stats.MaxTickDuration != 20*time.Millisecond {
		t.Errorf("MaxTickDuration = %v, want 20ms", stats.MaxTickDuration)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()
	if stats.AvgTickDuration != 0 || stats.TicksPerSecond != 0 || stats.Samples != 0 {
		t.Errorf("empty collector reported %+v", stats)
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc, clock := newTestCollector(10)

	pc.RecordFrame()
	clock.advance(20 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration != 20*time.Millisecond {
		t.Errorf("FrameDuration = %v, want 20ms", stats.FrameDuration)
	}
	if stats.FPS != 50 {
		t.Errorf("FPS = %v, want 50", stats.FPS)
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	pc, clock := newTestCollector(4)
	pc.StartTick()
	pc.StartPhase(PhaseStep)
	clock.advance(time.Millisecond)
	pc.EndTick()

	row := pc.Stats().ToCSV(600, "workers")
	if row.WindowEnd != 600 || row.Backend != "workers" {
		t.Errorf("row = %+v", row)
	}
	if row.AvgTickUS != 1000 || row.StepPct != 100 {
		t.Errorf("row timing = %d µs, %v%% step", row.AvgTickUS, row.StepPct)
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseStep.String() != "step" || PhaseTelemetry.String() != "telemetry" {
		t.Error("phase names do not match their CSV columns")
	}
	if Phase(42).String() != "unknown" {
		t.Errorf("Phase(42) = %q", Phase(42).String())
	}
}
