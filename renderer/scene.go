// Package renderer draws the well, its surroundings and the photons with
// raylib. Everything here must run on the window thread.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/photonwell/camera"
	"github.com/pthm-cable/photonwell/components"
	"github.com/pthm-cable/photonwell/config"
	"github.com/pthm-cable/photonwell/renderer/geom"
	"github.com/pthm-cable/photonwell/systems"
)

var (
	gridColor  = rl.Color{R: 0, G: 51, B: 102, A: 128}
	starColor  = rl.White
	background = rl.Color{R: 3, G: 0, B: 5, A: 255}
)

// Camera3D converts an orbit camera into a raylib look-at camera.
func Camera3D(o *camera.Orbit) rl.Camera3D {
	return rl.Camera3D{
		Position:   vec(o.Eye()),
		Target:     rl.NewVector3(0, 0, 0),
		Up:         vec(o.Up()),
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
}

func vec(v components.Vec3) rl.Vector3 {
	return rl.NewVector3(v.X, v.Y, v.Z)
}

// SceneRenderer draws the static backdrop: stars, the height-field grid and
// the event horizon.
type SceneRenderer struct {
	stars   []rl.Vector3
	rows    [][]rl.Vector3
	cols    [][]rl.Vector3
	horizon float32
}

// NewSceneRenderer precomputes the backdrop geometry.
func NewSceneRenderer(cfg *config.Config, field systems.Field, seed uint64) *SceneRenderer {
	r := &SceneRenderer{horizon: float32(cfg.Well.MinRadius)}

	for _, s := range geom.Stars(cfg.Scene.Stars, float32(cfg.Scene.StarExtent), seed) {
		r.stars = append(r.stars, vec(s))
	}

	grid := geom.HeightGrid(field, float32(cfg.Well.GridSize), cfg.Well.GridSlices)
	r.rows = toVectors(grid.Rows)
	r.cols = toVectors(grid.Cols)
	return r
}

func toVectors(lines [][]components.Vec3) [][]rl.Vector3 {
	out := make([][]rl.Vector3, len(lines))
	for i, line := range lines {
		out[i] = make([]rl.Vector3, len(line))
		for j, p := range line {
			out[i][j] = vec(p)
		}
	}
	return out
}

// Clear fills the frame with the background color.
func (r *SceneRenderer) Clear() {
	rl.ClearBackground(background)
}

// Draw renders the backdrop. Call between BeginMode3D and EndMode3D.
func (r *SceneRenderer) Draw() {
	for _, s := range r.stars {
		rl.DrawPoint3D(s, starColor)
	}

	for _, lines := range [][][]rl.Vector3{r.rows, r.cols} {
		for _, line := range lines {
			for j := 1; j < len(line); j++ {
				rl.DrawLine3D(line[j-1], line[j], gridColor)
			}
		}
	}

	rl.DrawSphere(rl.NewVector3(0, 0, 0), r.horizon, rl.Black)
}
