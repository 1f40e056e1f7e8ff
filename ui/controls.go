package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/photonwell/runner"
)

// ControlState is the current value of every control.
type ControlState struct {
	Paused         bool
	Lifecycle      bool
	StepsPerUpdate int
}

// Actions are the one-shot requests made through the panel this frame.
type Actions struct {
	TogglePause     bool
	Step            bool
	ToggleLifecycle bool
	Reset           bool
	ResetCamera     bool
	StepsPerUpdate  int // new speed, equal to the old one when untouched
}

// ControlsPanel renders the raygui panel for driving the simulation.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition moves the panel.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Height returns the panel height in pixels.
func (c *ControlsPanel) Height() int32 {
	return int32(c.bounds().Height)
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point is over the visible panel, so
// camera drags starting there can be ignored.
func (c *ControlsPanel) Contains(p rl.Vector2) bool {
	if !c.visible {
		return false
	}
	return rl.CheckCollisionPointRec(p, c.bounds())
}

func (c *ControlsPanel) bounds() rl.Rectangle {
	return rl.Rectangle{X: float32(c.x), Y: float32(c.y), Width: float32(c.width), Height: 200}
}

// Draw renders the panel and returns what the user asked for.
func (c *ControlsPanel) Draw(state ControlState) Actions {
	act := Actions{StepsPerUpdate: state.StepsPerUpdate}
	if !c.visible {
		return act
	}

	r := c.renderer
	b := c.bounds()
	r.DrawPanel(c.x, c.y, c.width, int32(b.Height))

	pad := float32(r.Theme.Padding)
	x := b.X + pad
	y := float32(r.DrawSectionHeader(int32(x), c.y+r.Theme.Padding, "Controls"))
	half := (b.Width - 3*pad) / 2
	row := func(col int) rl.Rectangle {
		return rl.Rectangle{X: x + float32(col)*(half+pad), Y: y, Width: half, Height: 26}
	}

	pauseLabel := "Pause"
	if state.Paused {
		pauseLabel = "Resume"
	}
	act.TogglePause = gui.Button(row(0), pauseLabel)
	act.Step = gui.Button(row(1), "Step")
	y += 34

	lifeLabel := "Lifecycle: off"
	if state.Lifecycle {
		lifeLabel = "Lifecycle: on"
	}
	act.ToggleLifecycle = gui.Button(row(0), lifeLabel)
	act.Reset = gui.Button(row(1), "Reset")
	y += 34

	act.ResetCamera = gui.Button(row(0), "Reset camera")
	y += 40

	rl.DrawText(fmt.Sprintf("Steps per frame: %d", state.StepsPerUpdate), int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += 16
	speed := gui.SliderBar(
		rl.Rectangle{X: x + 16, Y: y, Width: b.Width - 2*pad - 40, Height: 18},
		"1", fmt.Sprint(runner.MaxStepsPerUpdate),
		float32(state.StepsPerUpdate), 1, runner.MaxStepsPerUpdate,
	)
	act.StepsPerUpdate = int(speed + 0.5)
	return act
}
