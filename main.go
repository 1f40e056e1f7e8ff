package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/photonwell/config"
	"github.com/pthm-cable/photonwell/game"
	"github.com/pthm-cable/photonwell/runner"
	"github.com/pthm-cable/photonwell/telemetry"
)

// mode selects the front end.
type mode int

const (
	modeWindow mode = iota
	modeHeadless
	modeTerminal
)

// options collects the command line.
type options struct {
	mode     mode
	realtime bool
	seed     uint64
	maxTicks int64
	runner   runner.Options
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	tty := flag.Bool("tty", false, "Render a top-down view in the terminal")
	realtime := flag.Bool("realtime", false, "Headless: pace ticks at physics.tick_interval instead of running flat out")
	backend := flag.String("backend", "", "Execution backend: sequential, workers, gpu, opencl (empty = use config)")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster runs)")
	logStats := flag.Bool("log-stats", false, "Output window and perf stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, metrics.json and config snapshot")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *backend != "" {
		cfg.Driver.Backend = *backend
		if err := cfg.Validate(); err != nil {
			slog.Error("invalid backend", "error", err)
			os.Exit(1)
		}
	}

	opts := options{
		realtime: *realtime,
		seed:     *seed,
		maxTicks: *maxTicks,
		runner: runner.Options{
			LogStats:       *logStats,
			OutputDir:      *outputDir,
			StepsPerUpdate: *stepsPerUpdate,
		},
	}
	if opts.seed == 0 {
		opts.seed = uint64(time.Now().UnixNano())
	}
	switch {
	case *tty && *headless:
		slog.Error("-tty and -headless are mutually exclusive")
		os.Exit(1)
	case *tty:
		opts.mode = modeTerminal
	case *headless:
		opts.mode = modeHeadless
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts); err != nil {
		slog.Error("simulation failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options) error {
	backend := cfg.Driver.Backend

	if opts.mode == modeWindow || game.NeedsWindow(backend) {
		rl.SetTraceLogLevel(rl.LogWarning)
		flags := uint32(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
		if opts.mode != modeWindow {
			// Compute shaders need a GL context even without a view
			flags = rl.FlagWindowHidden
		}
		rl.SetConfigFlags(flags)
		rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), game.Title)
		defer rl.CloseWindow()
		rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	}

	if opts.mode == modeTerminal {
		closeLog, err := redirectLogs(opts.runner.OutputDir)
		if err != nil {
			return err
		}
		defer closeLog()
	}

	provider, err := telemetry.NewMetricsProvider(opts.runner.OutputDir, cfg.Telemetry.MetricsInterval)
	if err != nil {
		return err
	}
	defer shutdownMetrics(provider)
	provider.Install()
	opts.runner.MeterProvider = provider.MeterProvider()

	driver, err := game.NewDriver(cfg, backend, opts.seed)
	if err != nil {
		return err
	}
	r, err := runner.New(cfg, driver, opts.runner)
	if err != nil {
		driver.Close()
		return err
	}

	slog.Info("starting simulation",
		"seed", opts.seed,
		"backend", backend,
		"lifecycle", r.Lifecycle(),
		"photons", cfg.Photons.Count,
		"orbiting", cfg.Photons.Orbiting,
		"max_ticks", opts.maxTicks,
		"steps_per_update", r.StepsPerUpdate(),
		"output_dir", r.OutputDir(),
	)

	switch opts.mode {
	case modeHeadless:
		defer closeRunner(r)
		return runHeadless(ctx, cfg, r, opts)
	case modeTerminal:
		defer closeRunner(r)
		return runTerminal(ctx, cfg, r, opts)
	}

	g := game.New(ctx, cfg, r, opts.seed)
	defer g.Unload()
	for !rl.WindowShouldClose() && ctx.Err() == nil {
		if err := g.Update(); err != nil {
			return err
		}
		g.Draw()

		if opts.maxTicks > 0 && g.Tick() >= opts.maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
	}
	return nil
}

// runHeadless steps without presentation until the context ends or
// max-ticks is reached.
func runHeadless(ctx context.Context, cfg *config.Config, r *runner.Runner, opts options) error {
	var pace <-chan time.Time
	if opts.realtime {
		ticker := time.NewTicker(cfg.Physics.TickInterval)
		defer ticker.Stop()
		pace = ticker.C
	}

	for {
		if pace != nil {
			select {
			case <-ctx.Done():
			case <-pace:
			}
		}
		if ctx.Err() != nil {
			slog.Info("interrupted", "tick", r.Tick())
			return nil
		}

		if err := r.Update(ctx); err != nil {
			return err
		}

		if opts.maxTicks > 0 && r.Tick() >= opts.maxTicks {
			slog.Info("max ticks reached", "tick", r.Tick())
			return nil
		}
	}
}

func closeRunner(r *runner.Runner) {
	if err := r.Close(); err != nil {
		slog.Error("failed to close runner", "error", err)
	}
}

// shutdownMetrics flushes the last metrics export. It runs after the
// runner has closed.
func shutdownMetrics(p *telemetry.MetricsProvider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		slog.Error("failed to shut down metrics", "error", err)
	}
}

// redirectLogs moves slog off stdout while the terminal view owns it.
// Logs go to run.log in the output directory, or nowhere.
func redirectLogs(dir string) (func(), error) {
	if dir == "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(io.Discard, nil)))
		return func() {}, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "run.log"))
	if err != nil {
		return nil, fmt.Errorf("creating run log: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(f, nil)))
	return func() {
		if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			fmt.Fprintln(os.Stderr, "closing run log:", err)
		}
	}, nil
}
