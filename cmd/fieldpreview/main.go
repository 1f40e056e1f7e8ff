// Well field preview tool - interactive heat map and radial profile of the
// height field with sliders for its parameters.
//
// Usage: go run ./cmd/fieldpreview [-config config.yaml]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/photonwell/config"
	"github.com/pthm-cable/photonwell/systems"
)

const (
	windowWidth  = 1000
	windowHeight = 760
	previewSize  = 480
	profileH     = 200
	panelWidth   = windowWidth - previewSize - 30
	gridSize     = 240
)

// FieldParams holds the tunable field values.
type FieldParams struct {
	Mass      float32
	MinRadius float32
	FDStep    float32
	MaxForce  float32
	Extent    float32 // half width of the preview in world units
}

func paramsFromConfig(cfg *config.Config) FieldParams {
	return FieldParams{
		Mass:      float32(cfg.Well.Mass),
		MinRadius: float32(cfg.Well.MinRadius),
		FDStep:    float32(cfg.Physics.FDStep),
		MaxForce:  float32(cfg.Physics.MaxForce),
		Extent:    10,
	}
}

func (p FieldParams) field() systems.Field {
	return systems.Field{Mass: p.Mass, MinRadius: p.MinRadius, FDStep: p.FDStep, MaxForce: p.MaxForce}
}

// snippet is the YAML copied to the clipboard.
type snippet struct {
	Well struct {
		Mass      float32 `yaml:"mass"`
		MinRadius float32 `yaml:"min_radius"`
	} `yaml:"well"`
	Physics struct {
		FDStep   float32 `yaml:"fd_step"`
		MaxForce float32 `yaml:"max_force"`
	} `yaml:"physics"`
}

func (p FieldParams) yaml() string {
	var s snippet
	s.Well.Mass = p.Mass
	s.Well.MinRadius = p.MinRadius
	s.Physics.FDStep = p.FDStep
	s.Physics.MaxForce = p.MaxForce
	out, err := yaml.Marshal(&s)
	if err != nil {
		return err.Error()
	}
	return string(out)
}

func main() {
	configPath := flag.String("config", "", "Config YAML file (empty = use defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	defaults := paramsFromConfig(cfg)
	params := defaults

	rl.InitWindow(windowWidth, windowHeight, "Well Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	grid := make([]float32, gridSize*gridSize)
	img := rl.GenImageColor(gridSize, gridSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	needsRegen := true

	for !rl.WindowShouldClose() {
		if needsRegen {
			sampleDepth(grid, gridSize, params)
			updateTexture(texture, grid)
			needsRegen = false
		}
		f := params.field()

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: gridSize, Height: gridSize},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)
		drawRings(params, cfg)

		drawProfile(10, previewSize+20, previewSize, profileH, f, params.Extent)

		// Stats
		rho := float32(cfg.Spawn.OrbitRadius)
		vc := sqrt32(f.Force(rho, 0).Len() * rho)
		omegaDT := vc / rho * float32(cfg.Physics.DT)
		statsY := int32(previewSize + profileH + 30)
		rl.DrawText(fmt.Sprintf("Depth at core: %.2f  Force at orbit: %.3f", f.Displacement(0, 0), f.Force(rho, 0).Len()), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Circular speed at r=%.1f: %.3f  (angle/tick %.3f rad)", rho, vc, omegaDT), 15, statsY+20, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Well Field Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		sliders := []struct {
			label    string
			value    *float32
			min, max float32
			format   string
		}{
			{"Mass (well depth)", &params.Mass, 1, 100, "%.1f"},
			{"Min radius (flattened core)", &params.MinRadius, 0.1, 5, "%.2f"},
			{"FD step (slope sample spacing)", &params.FDStep, 0.01, 1, "%.3f"},
			{"Max force (slope clamp)", &params.MaxForce, 0.5, 20, "%.2f"},
			{"Extent (preview half width)", &params.Extent, 2, 60, "%.0f"},
		}
		for _, s := range sliders {
			rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			v := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				fmt.Sprintf(s.format, s.min), fmt.Sprintf(s.format, s.max),
				*s.value, s.min, s.max,
			)
			rl.DrawText(fmt.Sprintf(s.format, *s.value), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if v != *s.value {
				*s.value = v
				needsRegen = true
			}
			panelY += 35
		}

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaults
			needsRegen = true
		}
		panelY += 55

		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		text := params.yaml()
		rl.DrawText(text, int32(panelX), int32(panelY), 14, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), windowHeight-30, 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(text)
		}

		rl.EndDrawing()
	}
}

// sampleDepth fills grid with the normalised well depth, 0 at the rim of
// the preview and 1 at the core.
func sampleDepth(grid []float32, size int, p FieldParams) {
	f := p.field()
	deepest := f.Displacement(0, 0)
	rim := f.Displacement(p.Extent, 0)
	span := rim - deepest
	for y := 0; y < size; y++ {
		z := ((float32(y)+0.5)/float32(size)*2 - 1) * p.Extent
		for x := 0; x < size; x++ {
			wx := ((float32(x)+0.5)/float32(size)*2 - 1) * p.Extent
			d := f.Displacement(wx, z)
			grid[y*size+x] = clamp01((rim - d) / span)
		}
	}
}

// drawRings marks the core, the orbit radius and, when in view, the escape
// radius on the heat map.
func drawRings(p FieldParams, cfg *config.Config) {
	cx, cy := float32(10+previewSize/2), float32(10+previewSize/2)
	scale := float32(previewSize/2) / p.Extent
	rings := []struct {
		r     float32
		color rl.Color
	}{
		{p.MinRadius, rl.Red},
		{float32(cfg.Spawn.OrbitRadius), rl.Green},
		{float32(cfg.Derived.EscapeRadius), rl.Magenta},
	}
	for _, ring := range rings {
		if ring.r > p.Extent {
			continue
		}
		rl.DrawCircleLinesV(rl.Vector2{X: cx, Y: cy}, ring.r*scale, ring.color)
	}
}

// drawProfile plots depth and force magnitude against radius.
func drawProfile(x, y, w, h int32, f systems.Field, extent float32) {
	rl.DrawRectangle(x, y, w, h, rl.Color{R: 245, G: 245, B: 250, A: 255})
	rl.DrawRectangleLines(x, y, w, h, rl.DarkGray)

	deepest := -f.Displacement(0, 0)
	var prevD, prevF rl.Vector2
	for i := int32(0); i <= w; i++ {
		r := float32(i) / float32(w) * extent
		d := -f.Displacement(r, 0) / deepest
		fm := f.Force(r, 0).Len() / f.MaxForce

		pd := rl.Vector2{X: float32(x + i), Y: float32(y+h) - d*float32(h)}
		pf := rl.Vector2{X: float32(x + i), Y: float32(y+h) - fm*float32(h)}
		if i > 0 {
			rl.DrawLineV(prevD, pd, rl.DarkBlue)
			rl.DrawLineV(prevF, pf, rl.Orange)
		}
		prevD, prevF = pd, pf
	}
	rl.DrawText("depth", x+6, y+4, 12, rl.DarkBlue)
	rl.DrawText("force / max", x+60, y+4, 12, rl.Orange)
	rl.DrawText(fmt.Sprintf("r = %.0f", extent), x+w-50, y+h-16, 12, rl.Gray)
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

func clamp01(x float32) float32 {
	return min(max(x, 0), 1)
}

// updateTexture updates the GPU texture from the grid values.
func updateTexture(texture rl.Texture2D, grid []float32) {
	pixels := make([]color.RGBA, len(grid))
	for i, v := range grid {
		// Dark blue -> cyan -> yellow -> white
		var r, g, b uint8
		switch {
		case v < 0.25:
			t := v / 0.25
			r, g, b = uint8(10+t*30), uint8(20+t*60), uint8(60+t*100)
		case v < 0.5:
			t := (v - 0.25) / 0.25
			r, g, b = uint8(40+t*20), uint8(80+t*120), uint8(160+t*40)
		case v < 0.75:
			t := (v - 0.5) / 0.25
			r, g, b = uint8(60+t*140), uint8(200-t*40), uint8(200-t*150)
		default:
			t := (v - 0.75) / 0.25
			r, g, b = uint8(200+t*55), uint8(160+t*95), uint8(50+t*205)
		}
		pixels[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	rl.UpdateTexture(texture, pixels)
}
