package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/photonwell/renderer"
)

// controlsLegend is shown at the bottom of the window.
const controlsLegend = "drag: orbit  wheel: zoom  right-click: inspect  SPACE: pause  N: step  </>: speed  L: lifecycle  R: reset  C: camera  B: backend  TAB: panel  P: perf  H: history"

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.run.TogglePause()
	}
	if rl.IsKeyPressed(rl.KeyN) {
		g.stepPending = true
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		g.run.SetStepsPerUpdate(g.run.StepsPerUpdate() - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		g.run.SetStepsPerUpdate(g.run.StepsPerUpdate() + 1)
	}

	if rl.IsKeyPressed(rl.KeyL) {
		g.run.ToggleLifecycle()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.reset()
	}
	if rl.IsKeyPressed(rl.KeyB) {
		g.cycleBackend()
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		g.controls.Toggle()
		g.layoutPanels()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.showPerf = !g.showPerf
	}
	if rl.IsKeyPressed(rl.KeyH) {
		g.showHistory = !g.showHistory
	}

	g.inspector.HandleInput(g.run.Frame(), renderer.Camera3D(g.orbit))
	if g.showHistory {
		g.history.HandleInput()
	}
	g.handleCameraInput()
}

// handleResize checks for window resize and moves the panels.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	g.screenWidth = int32(rl.GetScreenWidth())
	g.screenHeight = int32(rl.GetScreenHeight())
	g.layoutPanels()
}

// handleCameraInput orbits on left drag and zooms on the wheel.
func (g *Game) handleCameraInput() {
	if rl.IsKeyPressed(rl.KeyC) {
		g.orbit.Reset(g.cfg.Camera)
	}

	// Drags that start on a panel belong to the panel
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		g.dragging = !g.overPanel(rl.GetMousePosition())
	}
	if g.dragging && rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		d := rl.GetMouseDelta()
		g.orbit.Drag(d.X, d.Y)
	} else {
		g.dragging = false
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.orbit.Zoom(wheel)
	}
}
