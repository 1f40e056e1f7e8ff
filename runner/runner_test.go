package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/photonwell/config"
	"github.com/pthm-cable/photonwell/sim"
	"github.com/pthm-cable/photonwell/systems"
	"github.com/pthm-cable/photonwell/telemetry"
)

func newTestRunner(t *testing.T, opts Options) (*config.Config, *Runner) {
	t.Helper()
	cfg := config.Default()
	cfg.Telemetry.StatsWindow = 0.6 // 10 ticks
	cfg.ComputeDerived()

	w, err := sim.NewWorld(cfg, 11, cfg.Driver.Lifecycle)
	if err != nil {
		t.Fatal(err)
	}
	r, err := New(cfg, sim.NewDriver(w, sim.NewSequential(cfg, cfg.Driver.Lifecycle)), opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Close() })
	return cfg, r
}

func TestUpdateRunsStepsPerUpdate(t *testing.T) {
	ctx := context.Background()
	_, r := newTestRunner(t, Options{StepsPerUpdate: 5})

	if err := r.Update(ctx); err != nil {
		t.Fatal(err)
	}
	if r.Tick() != 5 {
		t.Errorf("Tick = %d after one update, want 5", r.Tick())
	}
	if r.Frame().Tick != 5 {
		t.Errorf("frame tick = %d, want 5", r.Frame().Tick)
	}

	r.TogglePause()
	if err := r.Update(ctx); err != nil {
		t.Fatal(err)
	}
	if r.Tick() != 5 {
		t.Errorf("paused update advanced to tick %d", r.Tick())
	}

	if err := r.Step(ctx); err != nil {
		t.Fatal(err)
	}
	if r.Tick() != 6 || r.Frame().Tick != 6 {
		t.Errorf("single step: tick %d, frame %d, want 6", r.Tick(), r.Frame().Tick)
	}
	if !r.Paused() {
		t.Error("single step unpaused the runner")
	}
}

func TestSetStepsPerUpdateClamps(t *testing.T) {
	_, r := newTestRunner(t, Options{})
	if r.StepsPerUpdate() != 1 {
		t.Errorf("default StepsPerUpdate = %d, want 1", r.StepsPerUpdate())
	}

	tests := []struct {
		in, want int
	}{
		{0, 1},
		{-3, 1},
		{7, 7},
		{MaxStepsPerUpdate + 5, MaxStepsPerUpdate},
	}
	for _, tt := range tests {
		r.SetStepsPerUpdate(tt.in)
		if got := r.StepsPerUpdate(); got != tt.want {
			t.Errorf("SetStepsPerUpdate(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTelemetryWindowsWritten(t *testing.T) {
	dir := t.TempDir()
	_, r := newTestRunner(t, Options{OutputDir: dir, StepsPerUpdate: 20})

	if err := r.Update(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	var rows []telemetry.WindowStats
	if err := gocsv.UnmarshalFile(mustOpen(t, filepath.Join(dir, "telemetry.csv")), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d telemetry rows, want 2", len(rows))
	}
	if r.Windows() != 2 || r.LastWindow().WindowEndTick != 20 {
		t.Errorf("Windows = %d, last ends at %d, want 2 ending at 20", r.Windows(), r.LastWindow().WindowEndTick)
	}
	for i, want := range []int64{10, 20} {
		if rows[i].WindowEndTick != want {
			t.Errorf("row %d ends at tick %d, want %d", i, rows[i].WindowEndTick, want)
		}
		if rows[i].Backend != config.BackendSequential {
			t.Errorf("row %d backend = %q", i, rows[i].Backend)
		}
	}

	var perf []telemetry.PerfStatsCSV
	if err := gocsv.UnmarshalFile(mustOpen(t, filepath.Join(dir, "perf.csv")), &perf); err != nil {
		t.Fatal(err)
	}
	if len(perf) != 2 {
		t.Errorf("got %d perf rows, want 2", len(perf))
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot does not load: %v", err)
	}
}

func mustOpen(t *testing.T, path string) *os.File {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestResetClearsTotals(t *testing.T) {
	ctx := context.Background()
	cfg, r := newTestRunner(t, Options{StepsPerUpdate: 20})

	// Every infalling photon spawns within initial_delay_max
	for r.Tick() < 60 {
		if err := r.Update(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if got := r.Totals().Respawned; got < cfg.Derived.Infalling {
		t.Errorf("Respawned = %d after %d ticks, want at least %d", got, r.Tick(), cfg.Derived.Infalling)
	}

	r.Reset()
	if r.Tick() != 0 || r.Frame().Tick != 0 {
		t.Errorf("after reset: tick %d, frame %d", r.Tick(), r.Frame().Tick)
	}
	if r.Totals() != (sim.TickStats{}) {
		t.Errorf("totals not cleared: %+v", r.Totals())
	}
	if r.Frame().Active != cfg.Photons.Orbiting {
		t.Errorf("active after reset = %d, want %d orbiting", r.Frame().Active, cfg.Photons.Orbiting)
	}
}

func TestToggleLifecycleSpawnsWaitingPhotons(t *testing.T) {
	cfg, r := newTestRunner(t, Options{})
	if !r.Lifecycle() {
		t.Fatal("lifecycle should default to on")
	}

	r.ToggleLifecycle()
	if r.Lifecycle() {
		t.Fatal("lifecycle still on after toggle")
	}
	if err := r.Step(context.Background()); err != nil {
		t.Fatal(err)
	}
	if r.Frame().Active != cfg.Photons.Count {
		t.Errorf("active = %d after one recycling tick, want all %d", r.Frame().Active, cfg.Photons.Count)
	}
	if got := r.Totals().Respawned; got != cfg.Derived.Infalling {
		t.Errorf("Respawned = %d, want %d", got, cfg.Derived.Infalling)
	}
}

var errStep = errors.New("step failed")

type failingBackend struct{ *sim.Sequential }

func (failingBackend) Step(*sim.World, []systems.Event) error { return errStep }

func TestFailedTickClosesPerfSample(t *testing.T) {
	ctx := context.Background()
	cfg, r := newTestRunner(t, Options{})

	if err := r.SetBackend(failingBackend{sim.NewSequential(cfg, true)}); err != nil {
		t.Fatal(err)
	}
	if err := r.Update(ctx); !errors.Is(err, errStep) {
		t.Fatalf("Update() error = %v, want %v", err, errStep)
	}
	if got := r.PerfStats().Samples; got != 1 {
		t.Errorf("perf samples after failed tick = %d, want 1", got)
	}

	if err := r.SetBackend(sim.NewSequential(cfg, true)); err != nil {
		t.Fatal(err)
	}
	if err := r.Update(ctx); err != nil {
		t.Fatal(err)
	}
	if r.Tick() != 1 {
		t.Errorf("Tick = %d, want 1 after the failed tick", r.Tick())
	}
	if got := r.PerfStats().Samples; got != 2 {
		t.Errorf("perf samples = %d, want 2", got)
	}
}

func TestSetBackendKeepsLifecycle(t *testing.T) {
	cfg, r := newTestRunner(t, Options{})
	r.ToggleLifecycle()

	if err := r.SetBackend(sim.NewWorkers(cfg, true, 2)); err != nil {
		t.Fatal(err)
	}
	if r.BackendName() != config.BackendWorkers {
		t.Errorf("backend = %q, want workers", r.BackendName())
	}
	if r.Lifecycle() {
		t.Error("lifecycle toggle lost on backend switch")
	}
	if err := r.Step(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := r.Totals().Respawned; got != cfg.Derived.Infalling {
		t.Errorf("Respawned = %d, want %d waiting photons spawned by edge recycling mode", got, cfg.Derived.Infalling)
	}
}
