package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/photonwell/renderer/geom"
	"github.com/pthm-cable/photonwell/sim"
)

var (
	trailColor = rl.Yellow
	headColor  = rl.White
)

// headSize is the photon marker edge in pixels.
const headSize = 3

// PhotonRenderer draws trails in world space and heads in screen space.
type PhotonRenderer struct {
	alpha []float32 // per trail slot, oldest first
}

// NewPhotonRenderer creates a renderer for trails of trailLen entries.
func NewPhotonRenderer(trailLen int) *PhotonRenderer {
	r := &PhotonRenderer{alpha: make([]float32, trailLen)}
	for j := range r.alpha {
		r.alpha[j] = geom.TrailAlpha(j, trailLen)
	}
	return r
}

// DrawTrails renders the trail of every active photon as a line strip
// fading in from oldest to newest. Call inside 3D mode.
func (r *PhotonRenderer) DrawTrails(f *sim.Frame) {
	// Translucent trails must not occlude each other
	rl.DrawRenderBatchActive()
	rl.DisableDepthMask()
	for i := range f.Photons {
		p := &f.Photons[i]
		if !p.Active {
			continue
		}
		for j := 1; j < len(p.Trail); j++ {
			a := r.alpha[min(j, len(r.alpha)-1)]
			rl.DrawLine3D(vec(p.Trail[j-1]), vec(p.Trail[j]), rl.Fade(trailColor, a))
		}
	}
	rl.DrawRenderBatchActive()
	rl.EnableDepthMask()
}

// DrawHeads marks each active photon with a fixed-size square.
// Call after EndMode3D.
func (r *PhotonRenderer) DrawHeads(f *sim.Frame, cam rl.Camera3D) {
	for i := range f.Photons {
		p := &f.Photons[i]
		if !p.Active {
			continue
		}
		s := rl.GetWorldToScreen(vec(p.Position), cam)
		rl.DrawRectangle(int32(s.X)-headSize/2, int32(s.Y)-headSize/2, headSize, headSize, headColor)
	}
}
