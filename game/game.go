// Package game is the windowed front end: it wires the runner to the raylib
// scene, the orbit camera and the HUD, and builds execution backends for
// every mode.
package game

import (
	"context"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/photonwell/camera"
	"github.com/pthm-cable/photonwell/config"
	"github.com/pthm-cable/photonwell/inspector"
	"github.com/pthm-cable/photonwell/renderer"
	"github.com/pthm-cable/photonwell/runner"
	"github.com/pthm-cable/photonwell/systems"
	"github.com/pthm-cable/photonwell/ui"
)

// Title is the window and HUD title.
const Title = "Photon Well"

const (
	panelWidth   = 220
	panelMargin  = 10
	inspectorTop = 120 // below the HUD text
)

// Game holds the window-side state around a runner.
type Game struct {
	ctx context.Context
	cfg *config.Config
	run *runner.Runner

	orbit   *camera.Orbit
	scene   *renderer.SceneRenderer
	photons *renderer.PhotonRenderer

	hud         *ui.HUD
	perfPanel   *ui.PerfPanel
	controls    *ui.ControlsPanel
	inspector   *inspector.Inspector
	history     *inspector.HistoryPanel
	showPerf    bool
	showHistory bool
	seenWindows int

	dragging     bool // left button went down outside the panels
	stepPending  bool
	screenWidth  int32
	screenHeight int32

	err error // first tick error, ends the loop
}

// New creates the game for an open window. seed places the stars.
func New(ctx context.Context, cfg *config.Config, run *runner.Runner, seed uint64) *Game {
	field := systems.NewField(cfg)
	g := &Game{
		ctx:          ctx,
		cfg:          cfg,
		run:          run,
		orbit:        camera.New(cfg.Camera),
		scene:        renderer.NewSceneRenderer(cfg, field, seed),
		photons:      renderer.NewPhotonRenderer(cfg.Photons.TrailLength),
		hud:          ui.NewHUD(),
		inspector:    inspector.New(field, panelMargin, inspectorTop),
		history:      inspector.NewHistoryPanel(),
		screenWidth:  int32(rl.GetScreenWidth()),
		screenHeight: int32(rl.GetScreenHeight()),
	}
	g.perfPanel = ui.NewPerfPanel(0, 0, panelWidth)
	g.controls = ui.NewControlsPanel(0, 0, panelWidth)
	g.layoutPanels()
	return g
}

// Update handles input and advances the simulation. It returns the first
// tick error; once set the game stops stepping.
func (g *Game) Update() error {
	if g.err != nil {
		return g.err
	}
	g.handleInput()

	if g.stepPending {
		g.stepPending = false
		g.err = g.run.Step(g.ctx)
	} else {
		g.err = g.run.Update(g.ctx)
	}

	if n := g.run.Windows(); n != g.seenWindows {
		g.seenWindows = n
		g.history.Push(g.run.LastWindow())
	}
	return g.err
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int64 {
	return g.run.Tick()
}

// apply executes control panel requests.
func (g *Game) apply(act ui.Actions) {
	if act.TogglePause {
		g.run.TogglePause()
	}
	if act.Step {
		g.stepPending = true
	}
	if act.ToggleLifecycle {
		g.run.ToggleLifecycle()
	}
	if act.Reset {
		g.reset()
	}
	if act.ResetCamera {
		g.orbit.Reset(g.cfg.Camera)
	}
	if act.StepsPerUpdate != g.run.StepsPerUpdate() {
		g.run.SetStepsPerUpdate(act.StepsPerUpdate)
	}
}

// reset restarts the simulation and clears the window graph.
func (g *Game) reset() {
	g.run.Reset()
	g.history.Reset()
}

// cycleBackend moves to the next backend that can be built, keeping photon
// state and the lifecycle mode.
func (g *Game) cycleBackend() {
	current := g.run.BackendName()
	for name := nextBackend(current); name != current; name = nextBackend(name) {
		b, err := NewBackend(g.cfg, name)
		if err != nil {
			slog.Warn("backend unavailable", "backend", name, "error", err)
			continue
		}
		if err := g.run.SetBackend(b); err != nil {
			slog.Error("failed to switch backend", "error", err)
		}
		return
	}
}

// layoutPanels pins the panels to the right edge, perf below controls.
func (g *Game) layoutPanels() {
	x := g.screenWidth - panelWidth - panelMargin
	g.controls.SetPosition(x, panelMargin)

	y := int32(panelMargin)
	if g.controls.IsVisible() {
		y += g.controls.Height() + panelMargin
	}
	g.perfPanel.SetPosition(x, y)

	g.history.Layout(g.screenWidth, g.screenHeight, panelWidth+2*panelMargin)
}

// overPanel reports whether p is over any visible panel.
func (g *Game) overPanel(p rl.Vector2) bool {
	return g.controls.Contains(p) ||
		g.inspector.Contains(p) ||
		(g.showHistory && g.history.Contains(p))
}

// Unload releases the runner and its backend. Call before closing the window.
func (g *Game) Unload() {
	if err := g.run.Close(); err != nil {
		slog.Error("failed to close runner", "error", err)
	}
}
