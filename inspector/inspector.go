// Package inspector shows details for a selected photon and a rolling graph
// of window stats.
package inspector

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/photonwell/components"
	"github.com/pthm-cable/photonwell/inspector/probe"
	"github.com/pthm-cable/photonwell/sim"
	"github.com/pthm-cable/photonwell/systems"
)

// Panel dimensions
const (
	PanelWidth   = 260
	PanelPadding = 10
	HeaderHeight = 30

	pickRadius = 8 // pixels
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorHighlight   = rl.Color{R: 120, G: 220, B: 255, A: 255}
)

// Inspector manages photon selection and its panel.
type Inspector struct {
	field       systems.Field
	selected    int
	hasSelected bool
	panelX      int32
	panelY      int32
}

// New creates an inspector with its panel at (x, y).
func New(field systems.Field, x, y int32) *Inspector {
	return &Inspector{field: field, panelX: x, panelY: y}
}

// SetPosition moves the panel.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.panelX = x
	ins.panelY = y
}

// projector returns a probe.Projector for the current camera.
func projector(cam rl.Camera3D) probe.Projector {
	w, h := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
	return func(p components.Vec3) (float32, float32, bool) {
		s := rl.GetWorldToScreen(rl.Vector3{X: p.X, Y: p.Y, Z: p.Z}, cam)
		return s.X, s.Y, s.X >= 0 && s.Y >= 0 && s.X < w && s.Y < h
	}
}

// HandleInput selects with a right click and deselects with a right click
// on empty space or the close button.
func (ins *Inspector) HandleInput(f *sim.Frame, cam rl.Camera3D) {
	mouse := rl.GetMousePosition()
	if ins.hasSelected && rl.IsMouseButtonPressed(rl.MouseButtonLeft) && ins.closeButton(mouse) {
		ins.Deselect()
		return
	}
	if !rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		return
	}

	if id, ok := probe.Pick(f, projector(cam), mouse.X, mouse.Y, pickRadius); ok {
		ins.selected = id
		ins.hasSelected = true
		return
	}
	ins.Deselect()
}

func (ins *Inspector) closeButton(p rl.Vector2) bool {
	closeX := float32(ins.panelX + PanelWidth - 25)
	closeY := float32(ins.panelY + 5)
	return p.X >= closeX && p.X <= closeX+20 && p.Y >= closeY && p.Y <= closeY+20
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
}

// Selected returns the selected photon index.
func (ins *Inspector) Selected() (int, bool) {
	return ins.selected, ins.hasSelected
}

// Contains reports whether p is over the open panel.
func (ins *Inspector) Contains(p rl.Vector2) bool {
	if !ins.hasSelected {
		return false
	}
	return rl.CheckCollisionPointRec(p, rl.Rectangle{
		X: float32(ins.panelX), Y: float32(ins.panelY),
		Width: PanelWidth, Height: float32(panelHeight),
	})
}

// panelHeight covers the header, the id line and eight rows.
const panelHeight = HeaderHeight + PanelPadding + 22 + 8 + 18*8 + PanelPadding

// Draw renders the panel for the selected photon. Inactive photons keep
// their selection so the panel follows them through a respawn.
func (ins *Inspector) Draw(f *sim.Frame) {
	if !ins.hasSelected {
		return
	}
	if ins.selected >= len(f.Photons) {
		ins.Deselect()
		return
	}
	p := f.Photons[ins.selected]
	rd := probe.Read(p, ins.field)

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, panelHeight, ColorPanelBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(ins.panelX), Y: float32(ins.panelY), Width: PanelWidth, Height: panelHeight},
		1,
		ColorPanelBorder,
	)

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText("PHOTON", ins.panelX+PanelPadding, ins.panelY+7, 16, ColorHeaderText)

	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	rl.DrawRectangle(closeX, closeY, 20, 20, ColorCloseBtn)
	rl.DrawText("X", closeX+6, closeY+3, 14, rl.White)

	y := ins.panelY + HeaderHeight + PanelPadding
	x := ins.panelX + PanelPadding

	rl.DrawText(fmt.Sprintf("ID: %d  Kind: %s", p.ID, p.Kind), x, y, 14, ColorHeaderText)
	y += 22
	rl.DrawLine(x, y, ins.panelX+PanelWidth-PanelPadding, y, ColorPanelBorder)
	y += 8

	if !p.Active {
		DrawBool(x, y, "State", false, "", "waiting to spawn")
		return
	}

	y += DrawLabel(x, y, "Position", fmt.Sprintf("(%.2f, %.2f, %.2f)", p.Position.X, p.Position.Y, p.Position.Z))
	y += DrawLabel(x, y, "Velocity", fmt.Sprintf("(%.2f, %.2f)", p.Velocity.X, p.Velocity.Z))
	y += DrawLabel(x, y, "Radius", fmt.Sprintf("%.2f", rd.Radius))
	y += DrawLabel(x, y, "Height", fmt.Sprintf("%.2f", rd.Displacement))
	y += DrawLabel(x, y, "Speed", fmt.Sprintf("%.2f", rd.Speed))
	y += DrawBar(x, y, "Force", rd.Force, ins.field.MaxForce)
	y += DrawLabel(x, y, "Energy", fmt.Sprintf("%.2f", rd.Energy))
	DrawBool(x, y, "Orbit", rd.Bound, "bound", "unbound")
}

// DrawSelectionHighlight rings the selected photon's head. Call after EndMode3D.
func (ins *Inspector) DrawSelectionHighlight(f *sim.Frame, cam rl.Camera3D) {
	if !ins.hasSelected || ins.selected >= len(f.Photons) {
		return
	}
	p := &f.Photons[ins.selected]
	if !p.Active {
		return
	}
	x, y, ok := projector(cam)(p.Position)
	if !ok {
		return
	}
	rl.DrawCircleLines(int32(x), int32(y), pickRadius, ColorHighlight)
}
