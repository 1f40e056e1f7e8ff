package inspector

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/photonwell/inspector/probe"
	"github.com/pthm-cable/photonwell/telemetry"
)

const (
	// History buffer size (number of windows to keep)
	historySize = 120

	seriesActive    = 0
	seriesCaptured  = 1
	seriesEscaped   = 2
	seriesRespawned = 3
	seriesRecycled  = 4
	seriesOrbitR    = 5
	numSeries       = 6

	historyHeight = 180
)

// Count series share the left axis; the orbit radius has its own.
var (
	countSeries  = []int{seriesActive, seriesCaptured, seriesEscaped, seriesRespawned, seriesRecycled}
	radiusSeries = []int{seriesOrbitR}
)

// History panel colors
var (
	colorHistoryTitle   = rl.Color{R: 200, G: 200, B: 220, A: 255}
	colorHistoryPanelBg = rl.Color{R: 20, G: 20, B: 30, A: 230}
	colorGraphBg        = rl.Color{R: 15, G: 15, B: 25, A: 255}
	colorGraphGrid      = rl.Color{R: 40, G: 40, B: 50, A: 255}
	colorGraphBorder    = rl.Color{R: 60, G: 60, B: 70, A: 255}

	seriesNames = [numSeries]string{"Active", "Captured", "Escaped", "Respawned", "Recycled", "Orbit r"}

	seriesColors = [numSeries]rl.Color{
		{R: 100, G: 149, B: 237, A: 255}, // cornflower
		{R: 255, G: 100, B: 80, A: 255},  // red-orange
		{R: 150, G: 255, B: 150, A: 255}, // light green
		{R: 255, G: 255, B: 100, A: 255}, // yellow
		{R: 160, G: 120, B: 60, A: 255},  // tan
		{R: 120, G: 220, B: 255, A: 255}, // cyan
	}
)

// HistoryPanel graphs recent stats windows.
type HistoryPanel struct {
	x, y, width int32

	history       *probe.History
	latest        telemetry.WindowStats
	seriesVisible [numSeries]bool
	scratch       []float64
}

// NewHistoryPanel creates an empty panel.
func NewHistoryPanel() *HistoryPanel {
	return &HistoryPanel{
		history:       probe.NewHistory(numSeries, historySize),
		seriesVisible: [numSeries]bool{true, true, true, false, true, true},
		scratch:       make([]float64, 0, historySize),
	}
}

// Layout places the panel along the bottom of the screen, leaving
// rightMargin pixels free.
func (p *HistoryPanel) Layout(screenWidth, screenHeight, rightMargin int32) {
	p.x = 10
	p.y = screenHeight - historyHeight - 35
	p.width = max(screenWidth-rightMargin-20, 400)
}

// Push records a closed stats window.
func (p *HistoryPanel) Push(s telemetry.WindowStats) {
	p.latest = s
	p.history.Push(
		float64(s.Active),
		float64(s.Captured),
		float64(s.Escaped),
		float64(s.Respawned),
		float64(s.Recycled),
		s.OrbitRadiusMean,
	)
}

// Reset clears the graph.
func (p *HistoryPanel) Reset() {
	p.history.Reset()
	p.latest = telemetry.WindowStats{}
}

// Contains reports whether pt is over the panel.
func (p *HistoryPanel) Contains(pt rl.Vector2) bool {
	return rl.CheckCollisionPointRec(pt, rl.Rectangle{
		X: float32(p.x), Y: float32(p.y), Width: float32(p.width), Height: historyHeight,
	})
}

// HandleInput toggles series from legend clicks.
func (p *HistoryPanel) HandleInput() {
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}
	m := rl.GetMousePosition()
	mx, my := int32(m.X), int32(m.Y)

	legendX, legendY := p.x+10, p.y+historyHeight-24
	for i := 0; i < numSeries; i++ {
		itemX := legendX + int32(i)*90
		if mx >= itemX && mx < itemX+85 && my >= legendY && my < legendY+18 {
			p.seriesVisible[i] = !p.seriesVisible[i]
			return
		}
	}
}

// Draw renders the panel.
func (p *HistoryPanel) Draw() {
	rl.DrawRectangle(p.x, p.y, p.width, historyHeight, colorHistoryPanelBg)
	rl.DrawRectangleLines(p.x, p.y, p.width, historyHeight, colorGraphBorder)
	rl.DrawText("WINDOWS", p.x+10, p.y+6, 14, colorHistoryTitle)

	if p.history.Len() == 0 {
		rl.DrawText("Waiting for the first stats window...", p.x+100, p.y+80, 14, ColorTextDim)
		return
	}

	summaryWidth := int32(150)
	p.drawSummary(p.x+10, p.y+28)
	p.drawGraph(p.x+summaryWidth+20, p.y+24, p.width-summaryWidth-40, historyHeight-54)
	p.drawLegend(p.x+10, p.y+historyHeight-24)
}

// drawSummary prints the latest window.
func (p *HistoryPanel) drawSummary(x, y int32) {
	s := p.latest
	lines := []string{
		fmt.Sprintf("tick %d", s.WindowEndTick),
		fmt.Sprintf("capture %.0f%%", s.CaptureRatio*100),
		fmt.Sprintf("speed p50 %.2f", s.SpeedP50),
		fmt.Sprintf("orbit r %.2f±%.2f", s.OrbitRadiusMean, s.OrbitRadiusStd),
	}
	for _, l := range lines {
		rl.DrawText(l, x, y, 11, ColorText)
		y += 18
	}
}

// drawGraph renders the line graph.
func (p *HistoryPanel) drawGraph(x, y, w, h int32) {
	rl.DrawRectangle(x, y, w, h, colorGraphBg)
	rl.DrawRectangleLines(x, y, w, h, colorGraphBorder)

	for i := int32(1); i < 4; i++ {
		gridY := y + (h * i / 4)
		rl.DrawLine(x, gridY, x+w, gridY, colorGraphGrid)
	}
	for i := int32(1); i < 6; i++ {
		gridX := x + (w * i / 6)
		rl.DrawLine(gridX, y, gridX, y+h, colorGraphGrid)
	}

	if p.history.Len() < 2 {
		return
	}

	countMin, countMax := p.seriesRange(countSeries)
	radiusMin, radiusMax := p.seriesRange(radiusSeries)

	for _, s := range countSeries {
		if p.seriesVisible[s] {
			p.drawSeriesLine(x, y, w, h, s, countMin, countMax)
		}
	}
	for _, s := range radiusSeries {
		if p.seriesVisible[s] {
			p.drawSeriesLine(x, y, w, h, s, radiusMin, radiusMax)
		}
	}

	rl.DrawText(fmt.Sprintf("%.0f", countMax), x+2, y+2, 9, ColorTextDim)
	rl.DrawText(fmt.Sprintf("%.0f", countMin), x+2, y+h-10, 9, ColorTextDim)
	if p.seriesVisible[seriesOrbitR] {
		hi, lo := fmt.Sprintf("%.2f", radiusMax), fmt.Sprintf("%.2f", radiusMin)
		rl.DrawText(hi, x+w-rl.MeasureText(hi, 9)-2, y+2, 9, ColorTextDim)
		rl.DrawText(lo, x+w-rl.MeasureText(lo, 9)-2, y+h-10, 9, ColorTextDim)
	}
}

// seriesRange finds min/max across the visible series, padded by 10%.
func (p *HistoryPanel) seriesRange(series []int) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range series {
		if !p.seriesVisible[s] {
			continue
		}
		l, h := p.history.Range(s)
		lo, hi = min(lo, l), max(hi, h)
	}
	if lo >= hi {
		if math.IsInf(lo, 0) {
			return 0, 1
		}
		return lo - 0.5, hi + 0.5
	}
	padding := max((hi-lo)*0.1, 0.001)
	return lo - padding, hi + padding
}

// drawSeriesLine draws one series as a line.
func (p *HistoryPanel) drawSeriesLine(x, y, w, h int32, series int, minVal, maxVal float64) {
	p.scratch = p.history.Series(series, p.scratch[:0])
	n := len(p.scratch)
	valueRange := maxVal - minVal

	var prevX, prevY int32
	for i, v := range p.scratch {
		px := x + int32(float64(i)*float64(w)/float64(n-1))
		py := y + h - int32((v-minVal)/valueRange*float64(h))
		py = min(max(py, y), y+h)

		if i > 0 {
			rl.DrawLine(prevX, prevY, px, py, seriesColors[series])
		}
		prevX, prevY = px, py
	}
}

// drawLegend draws the clickable legend.
func (p *HistoryPanel) drawLegend(x, y int32) {
	const itemWidth = 90
	for i := 0; i < numSeries; i++ {
		itemX := x + int32(i)*itemWidth
		color := seriesColors[i]
		textColor := ColorText
		if !p.seriesVisible[i] {
			color.A = 80
			textColor = ColorTextDim
		}
		rl.DrawRectangle(itemX, y+2, 10, 10, color)
		rl.DrawText(seriesNames[i], itemX+14, y, 11, textColor)
	}
	rl.DrawText("(click to toggle)", x+numSeries*itemWidth+10, y, 10, ColorTextDim)
}
