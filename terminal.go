package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/photonwell/config"
	"github.com/pthm-cable/photonwell/runner"
	"github.com/pthm-cable/photonwell/termview"
)

// runTerminal shows the simulation in the terminal, one Update per
// physics.tick_interval, until quit, interrupt or max-ticks.
func runTerminal(ctx context.Context, cfg *config.Config, r *runner.Runner, opts options) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal screen: %w", err)
	}
	defer screen.Fini()

	view := termview.New(screen, cfg)
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go screen.ChannelEvents(events, quit)
	defer close(quit)

	ticker := time.NewTicker(cfg.Physics.TickInterval)
	defer ticker.Stop()

	draw := func() {
		view.Draw(r.Frame(), termview.Status{
			Backend:   r.BackendName(),
			Lifecycle: r.Lifecycle(),
			Paused:    r.Paused(),
			Speed:     r.StepsPerUpdate(),
		})
	}
	draw()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch termview.Translate(ev) {
			case termview.CmdQuit:
				return nil
			case termview.CmdPause:
				r.TogglePause()
			case termview.CmdStep:
				if err := r.Step(ctx); err != nil {
					return err
				}
			case termview.CmdLifecycle:
				r.ToggleLifecycle()
			case termview.CmdReset:
				r.Reset()
			case termview.CmdFaster:
				r.SetStepsPerUpdate(r.StepsPerUpdate() + 1)
			case termview.CmdSlower:
				r.SetStepsPerUpdate(r.StepsPerUpdate() - 1)
			case termview.CmdResize:
				screen.Sync()
				view.Resize()
			default:
				continue
			}
			draw()

		case <-ticker.C:
			if err := r.Update(ctx); err != nil {
				return err
			}
			draw()

			if opts.maxTicks > 0 && r.Tick() >= opts.maxTicks {
				slog.Info("max ticks reached", "tick", r.Tick())
				return nil
			}
		}
	}
}
