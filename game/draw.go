package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/photonwell/renderer"
	"github.com/pthm-cable/photonwell/ui"
)

// Draw renders the scene from the latest frame.
func (g *Game) Draw() {
	g.run.RecordFrame()
	f := g.run.Frame()
	cam := renderer.Camera3D(g.orbit)

	rl.BeginDrawing()
	g.scene.Clear()

	rl.BeginMode3D(cam)
	g.scene.Draw()
	g.photons.DrawTrails(f)
	rl.EndMode3D()

	g.photons.DrawHeads(f, cam)
	g.inspector.DrawSelectionHighlight(f, cam)
	g.drawUI()

	rl.EndDrawing()
}

// drawUI renders the HUD and panels, applying any panel requests.
func (g *Game) drawUI() {
	f := g.run.Frame()
	totals := g.run.Totals()

	g.hud.Draw(ui.HUDData{
		Title:          Title,
		Backend:        g.run.BackendName(),
		Lifecycle:      g.run.Lifecycle(),
		Tick:           g.run.Tick(),
		Active:         f.Active,
		Total:          len(f.Photons),
		StepsPerUpdate: g.run.StepsPerUpdate(),
		Paused:         g.run.Paused(),
		FPS:            rl.GetFPS(),
		Captured:       totals.Captured,
		Escaped:        totals.Escaped,
		Respawned:      totals.Respawned,
		Recycled:       totals.Recycled,
	})
	g.hud.DrawControls(g.screenHeight, controlsLegend)

	if g.showPerf {
		g.perfPanel.Draw(g.run.PerfStats())
	}
	if g.showHistory {
		g.history.Draw()
	}
	g.inspector.Draw(f)

	g.apply(g.controls.Draw(ui.ControlState{
		Paused:         g.run.Paused(),
		Lifecycle:      g.run.Lifecycle(),
		StepsPerUpdate: g.run.StepsPerUpdate(),
	}))
}
