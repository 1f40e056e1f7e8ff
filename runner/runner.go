// Package runner advances a simulation on behalf of a front end. It owns the
// driver, the presentation frame and all telemetry, and holds the user
// controls (pause, single step, speed, lifecycle). Nothing here touches a
// window, so headless, terminal and windowed modes share it.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/pthm-cable/photonwell/config"
	"github.com/pthm-cable/photonwell/sim"
	"github.com/pthm-cable/photonwell/telemetry"
)

// MaxStepsPerUpdate bounds the speed control.
const MaxStepsPerUpdate = 20

// Options configures a Runner.
type Options struct {
	LogStats       bool   // log window and perf stats via slog
	OutputDir      string // CSV and config snapshot directory, empty to disable
	StepsPerUpdate int    // ticks per Update call
	Paused         bool

	// MeterProvider receives the tick metrics; nil means the global one.
	MeterProvider metric.MeterProvider
}

// Runner drives ticks and collects their results.
type Runner struct {
	driver *sim.Driver
	frame  sim.Frame

	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager
	metrics   *telemetry.Metrics
	logStats  bool

	paused         bool
	stepsPerUpdate int
	totals         sim.TickStats // since the last reset

	windows    int // stats windows closed since start
	lastWindow telemetry.WindowStats
}

// New takes ownership of driver. The output directory, if any, is created
// and receives the config snapshot immediately.
func New(cfg *config.Config, driver *sim.Driver, opts Options) (*Runner, error) {
	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, err
	}

	mp := opts.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	metrics, err := telemetry.NewMetrics(mp, driver.Backend().Name())
	if err != nil {
		// Instruments are optional; run without them
		slog.Warn("metrics disabled", "error", err)
	}

	r := &Runner{
		driver:         driver,
		perf:           telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector:      telemetry.NewCollector(driver.World().Len(), cfg.Derived.TicksPerWindow, cfg.Derived.DT32),
		output:         output,
		metrics:        metrics,
		logStats:       opts.LogStats,
		paused:         opts.Paused,
		stepsPerUpdate: clampSteps(opts.StepsPerUpdate),
	}
	r.driver.Snapshot(&r.frame)
	r.collector.Restart(&r.frame)
	r.metrics.SetActive(r.frame.Active)
	return r, nil
}

func clampSteps(n int) int {
	return min(max(n, 1), MaxStepsPerUpdate)
}

// Update runs StepsPerUpdate ticks unless paused.
func (r *Runner) Update(ctx context.Context) error {
	if r.paused {
		return nil
	}
	for i := 0; i < r.stepsPerUpdate; i++ {
		if err := r.step(ctx, i == r.stepsPerUpdate-1); err != nil {
			return err
		}
	}
	return nil
}

// Step runs exactly one tick, paused or not.
func (r *Runner) Step(ctx context.Context) error {
	return r.step(ctx, true)
}

// step runs one tick. The frame is refreshed when present is set or a
// stats window closes on this tick.
func (r *Runner) step(ctx context.Context, present bool) error {
	r.perf.StartTick()

	r.perf.StartPhase(telemetry.PhaseStep)
	start := time.Now()
	ts, err := r.driver.Tick()
	if err != nil {
		r.perf.EndTick()
		return err
	}
	elapsed := time.Since(start)

	flush := r.collector.ShouldFlush(ts.Tick)
	if present || flush {
		r.perf.StartPhase(telemetry.PhaseSnapshot)
		r.driver.Snapshot(&r.frame)
	}

	r.perf.StartPhase(telemetry.PhaseTelemetry)
	r.totals.Add(ts)
	r.collector.Record(ts, r.driver.Events())
	r.metrics.RecordTick(ctx, ts, elapsed)
	if flush {
		r.metrics.SetActive(r.frame.Active)
		r.flushTelemetry()
	}

	r.perf.EndTick()
	return nil
}

// flushTelemetry closes the current stats window.
func (r *Runner) flushTelemetry() {
	backend := r.driver.Backend()
	stats := r.collector.Flush(&r.frame, backend.Name(), backend.Lifecycle())
	perfStats := r.perf.Stats()
	r.windows++
	r.lastWindow = stats

	if r.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := r.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := r.output.WritePerf(perfStats, stats.WindowEndTick, backend.Name()); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// Frame returns the state after the most recent presented tick.
func (r *Runner) Frame() *sim.Frame {
	return &r.frame
}

// Tick returns the number of completed ticks.
func (r *Runner) Tick() int64 {
	return r.driver.CurrentTick()
}

// Paused reports whether Update is suspended.
func (r *Runner) Paused() bool {
	return r.paused
}

// TogglePause flips the paused state.
func (r *Runner) TogglePause() {
	r.paused = !r.paused
}

// StepsPerUpdate returns the ticks run per Update.
func (r *Runner) StepsPerUpdate() int {
	return r.stepsPerUpdate
}

// SetStepsPerUpdate sets the speed, clamped to [1, MaxStepsPerUpdate].
func (r *Runner) SetStepsPerUpdate(n int) {
	r.stepsPerUpdate = clampSteps(n)
}

// Lifecycle reports whether capture/escape/respawn is active.
func (r *Runner) Lifecycle() bool {
	return r.driver.Backend().Lifecycle()
}

// ToggleLifecycle switches between the lifecycle layer and edge recycling.
// Photons keep their state; waiting photons spawn on the next tick when the
// layer is turned off.
func (r *Runner) ToggleLifecycle() {
	on := !r.Lifecycle()
	r.driver.SetLifecycle(on)
	slog.Info("lifecycle toggled", "lifecycle", on, "tick", r.Tick())
}

// Reset restarts every photon with the startup rule and clears the totals.
func (r *Runner) Reset() {
	r.driver.Reset()
	r.driver.Snapshot(&r.frame)
	r.collector.Restart(&r.frame)
	r.totals = sim.TickStats{}
	r.metrics.SetActive(r.frame.Active)
	slog.Info("simulation reset", "lifecycle", r.Lifecycle())
}

// SetBackend swaps the execution backend keeping photon state and the
// current lifecycle mode.
func (r *Runner) SetBackend(b sim.Backend) error {
	b.SetLifecycle(r.Lifecycle())
	if err := r.driver.SetBackend(b); err != nil {
		return err
	}
	r.metrics.SetBackend(b.Name())
	slog.Info("backend switched", "backend", b.Name(), "lifecycle", b.Lifecycle())
	return nil
}

// BackendName returns the active backend's name.
func (r *Runner) BackendName() string {
	return r.driver.Backend().Name()
}

// Windows returns how many stats windows have closed. It never decreases,
// so callers can poll it for new windows.
func (r *Runner) Windows() int {
	return r.windows
}

// LastWindow returns the most recently closed stats window.
func (r *Runner) LastWindow() telemetry.WindowStats {
	return r.lastWindow
}

// Totals returns event counts since the last reset.
func (r *Runner) Totals() sim.TickStats {
	return r.totals
}

// PerfStats returns the rolling tick timing.
func (r *Runner) PerfStats() telemetry.PerfStats {
	return r.perf.Stats()
}

// RecordFrame marks the end of a rendered frame for FPS accounting.
func (r *Runner) RecordFrame() {
	r.perf.RecordFrame()
}

// OutputDir returns where CSV output goes, or "".
func (r *Runner) OutputDir() string {
	return r.output.Dir()
}

// Close releases the backend and closes output files.
func (r *Runner) Close() error {
	var errs []error
	if err := r.driver.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing driver: %w", err))
	}
	if err := r.output.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing output: %w", err))
	}
	if err := r.metrics.Close(); err != nil {
		errs = append(errs, fmt.Errorf("unregistering metrics: %w", err))
	}
	return errors.Join(errs...)
}
