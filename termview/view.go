// Package termview renders a top-down view of the well in a terminal with
// tcell. It reads the same frames as the 3D renderer.
package termview

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/photonwell/components"
	"github.com/pthm-cable/photonwell/config"
	"github.com/pthm-cable/photonwell/renderer/geom"
	"github.com/pthm-cable/photonwell/sim"
)

const (
	headRune    = '*'
	trailRune   = '.'
	horizonRune = '@'
)

var (
	styleBackground = tcell.StyleDefault.Background(tcell.ColorBlack)
	styleHead       = styleBackground.Foreground(tcell.ColorWhite).Bold(true)
	styleHorizon    = styleBackground.Foreground(tcell.NewRGBColor(70, 40, 90))
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
)

// trailStyles holds one style per fade level, oldest first.
var trailStyles = func() []tcell.Style {
	const levels = 8
	s := make([]tcell.Style, levels)
	for i := range s {
		a := geom.TrailAlpha(i+1, levels) / geom.MaxTrailAlpha
		c := int32(40 + 215*a)
		s[i] = styleBackground.Foreground(tcell.NewRGBColor(c, c, 0))
	}
	return s
}()

// Status is the text shown on the bottom line.
type Status struct {
	Backend   string
	Lifecycle bool
	Paused    bool
	Speed     int
}

// View draws frames onto a tcell screen. Terminal cells are about twice as
// tall as they are wide, so x is stretched to keep the well round.
type View struct {
	screen  tcell.Screen
	extent  float32
	horizon float32

	// projection, refreshed on resize
	w, h   int
	cx, cz float32
	sx, sz float32
}

// New creates a view of the square [-grid_size, grid_size] domain.
func New(screen tcell.Screen, cfg *config.Config) *View {
	v := &View{
		screen:  screen,
		extent:  float32(cfg.Well.GridSize),
		horizon: float32(cfg.Well.MinRadius),
	}
	v.Resize()
	return v
}

// Resize recomputes the projection for the current screen size.
func (v *View) Resize() {
	v.w, v.h = v.screen.Size()
	rows := max(v.h-1, 1) // bottom line is the status bar
	span := 2 * v.extent

	v.sz = min(float32(rows)/span, float32(v.w)/(2*span))
	v.sx = 2 * v.sz
	v.cx = float32(v.w) / 2
	v.cz = float32(rows) / 2
}

// Project maps a world position to a cell. ok is false off screen.
func (v *View) Project(p components.Vec3) (col, row int, ok bool) {
	col = int(math.Floor(float64(v.cx + p.X*v.sx)))
	row = int(math.Floor(float64(v.cz + p.Z*v.sz)))
	ok = col >= 0 && col < v.w && row >= 0 && row < v.h-1
	return col, row, ok
}

// Draw renders f and the status line, then shows the screen.
func (v *View) Draw(f *sim.Frame, st Status) {
	v.screen.SetStyle(styleBackground)
	v.screen.Clear()

	v.drawHorizon()

	for i := range f.Photons {
		p := &f.Photons[i]
		if !p.Active {
			continue
		}
		n := len(p.Trail)
		for j, pt := range p.Trail {
			if col, row, ok := v.Project(pt); ok {
				level := j * len(trailStyles) / max(n, 1)
				v.screen.SetContent(col, row, trailRune, nil, trailStyles[level])
			}
		}
	}

	// Heads on top of every trail
	for i := range f.Photons {
		p := &f.Photons[i]
		if !p.Active {
			continue
		}
		if col, row, ok := v.Project(p.Position); ok {
			v.screen.SetContent(col, row, headRune, nil, styleHead)
		}
	}

	v.drawStatus(f, st)
	v.screen.Show()
}

func (v *View) drawHorizon() {
	r := v.horizon
	for z := -r; z <= r; z += 1 / v.sz {
		for x := -r; x <= r; x += 1 / v.sx {
			if x*x+z*z > r*r {
				continue
			}
			if col, row, ok := v.Project(components.Vec3{X: x, Z: z}); ok {
				v.screen.SetContent(col, row, horizonRune, nil, styleHorizon)
			}
		}
	}
}

func (v *View) drawStatus(f *sim.Frame, st Status) {
	mode := "recycle"
	if st.Lifecycle {
		mode = "lifecycle"
	}
	state := ""
	if st.Paused {
		state = " PAUSED"
	}
	text := fmt.Sprintf(" tick %d | %d/%d active | %s %s | x%d%s | q quit  space pause  . step  l lifecycle  r reset  +/- speed",
		f.Tick, f.Active, len(f.Photons), st.Backend, mode, st.Speed, state)

	row := v.h - 1
	col := 0
	for _, ch := range text {
		if col >= v.w {
			break
		}
		v.screen.SetContent(col, row, ch, nil, styleStatus)
		col++
	}
	for ; col < v.w; col++ {
		v.screen.SetContent(col, row, ' ', nil, styleStatus)
	}
}
