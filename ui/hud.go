package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/photonwell/telemetry"
)

// HUDData holds everything the main HUD shows.
type HUDData struct {
	Title          string
	Backend        string
	Lifecycle      bool
	Tick           int64
	Active         int
	Total          int
	StepsPerUpdate int
	Paused         bool
	FPS            int32

	// Totals since the last reset
	Captured  int
	Escaped   int
	Respawned int
	Recycled  int
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD in the top-left corner.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	mode := "recycling"
	if data.Lifecycle {
		mode = "lifecycle"
	}
	rl.DrawText(
		fmt.Sprintf("Backend: %s (%s) | Photons: %d/%d active", data.Backend, mode, data.Active, data.Total),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d", data.Tick, data.StepsPerUpdate, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	events := fmt.Sprintf("Captured: %d | Escaped: %d | Respawned: %d", data.Captured, data.Escaped, data.Respawned)
	if !data.Lifecycle || data.Recycled > 0 {
		events += fmt.Sprintf(" | Recycled: %d", data.Recycled)
	}
	rl.DrawText(events, 10, 75, 16, rl.LightGray)

	if data.Paused {
		rl.DrawText("PAUSED", 10, 95, 16, rl.Yellow)
	}
}

// DrawControls renders the key legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, legend string) {
	rl.DrawText(legend, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel shows the rolling tick timing breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	pad := r.Theme.Padding
	phases := []telemetry.Phase{telemetry.PhaseStep, telemetry.PhaseSnapshot, telemetry.PhaseTelemetry}
	height := pad*2 + r.Theme.LineHeight*int32(4+len(phases))

	r.DrawPanel(p.x, p.y, p.width, height)
	x, y := p.x+pad, p.y+pad

	y = r.DrawSectionHeader(x, y, "Tick timing")
	y = r.DrawLabelValue(x, y, "avg", stats.AvgTickDuration.Round(time.Microsecond).String())
	y = r.DrawLabelValue(x, y, "p95", stats.P95TickDuration.Round(time.Microsecond).String())
	y = r.DrawLabelValue(x, y, "ticks/s", fmt.Sprintf("%.0f", stats.TicksPerSecond))

	for _, ph := range phases {
		pct := stats.PhasePct[ph]
		color := r.Theme.ValueColor
		if pct > 50 {
			color = r.Theme.WarnColor
		}
		rl.DrawText(ph.String(), x, y, r.Theme.FontSize, r.Theme.LabelColor)
		rl.DrawText(
			fmt.Sprintf("%8s %5.1f%%", stats.PhaseAvg[ph].Round(time.Microsecond), pct),
			x+r.Theme.LabelWidth, y, r.Theme.FontSize, color,
		)
		y += r.Theme.LineHeight
	}
}
