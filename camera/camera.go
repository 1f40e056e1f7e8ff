// Package camera provides the orbit camera used to view the well.
package camera

import (
	"math"

	"github.com/pthm-cable/photonwell/components"
	"github.com/pthm-cable/photonwell/config"
)

// Orbit is a camera on a sphere around the origin, always looking at it.
// Angles are in degrees: AngleX is elevation, AngleZ is azimuth.
type Orbit struct {
	AngleX   float32
	AngleZ   float32
	Distance float32

	// Input response
	DragSensitivity float32 // degrees per pixel
	ZoomStep        float32 // multiplicative per wheel notch

	// Constraints
	MinAngle, MaxAngle       float32
	MinDistance, MaxDistance float32
}

// New creates an orbit camera with the configured pose and limits.
func New(cfg config.CameraConfig) *Orbit {
	return &Orbit{
		AngleX:          float32(cfg.AngleX),
		AngleZ:          float32(cfg.AngleZ),
		Distance:        float32(cfg.Distance),
		DragSensitivity: float32(cfg.DragSensitivity),
		ZoomStep:        float32(cfg.ZoomStep),
		MinAngle:        float32(cfg.MinAngle),
		MaxAngle:        float32(cfg.MaxAngle),
		MinDistance:     float32(cfg.MinDistance),
		MaxDistance:     float32(cfg.MaxDistance),
	}
}

// Drag rotates the camera by a mouse movement in pixels.
// Horizontal motion spins the azimuth; vertical motion tilts, clamped.
func (o *Orbit) Drag(dx, dy float32) {
	o.AngleZ += dx * o.DragSensitivity
	o.AngleX += dy * o.DragSensitivity
	o.AngleX = clamp(o.AngleX, o.MinAngle, o.MaxAngle)
}

// Zoom applies wheel notches. Positive moves closer.
func (o *Orbit) Zoom(notches float32) {
	switch {
	case notches > 0:
		o.Distance /= pow(o.ZoomStep, notches)
	case notches < 0:
		o.Distance *= pow(o.ZoomStep, -notches)
	}
	o.Distance = clamp(o.Distance, o.MinDistance, o.MaxDistance)
}

// Eye returns the camera position in world space.
func (o *Orbit) Eye() components.Vec3 {
	ax := float64(o.AngleX) * math.Pi / 180
	az := float64(o.AngleZ) * math.Pi / 180
	d := float64(o.Distance)
	return components.Vec3{
		X: float32(d * math.Sin(az) * math.Cos(ax)),
		Y: float32(d * math.Sin(ax)),
		Z: float32(d * math.Cos(az) * math.Cos(ax)),
	}
}

// Up returns the up vector for a look-at matrix. Past the zenith the
// camera is upside down, so up flips to keep the image continuous.
func (o *Orbit) Up() components.Vec3 {
	if o.AngleX > 90 {
		return components.Vec3{Y: -1}
	}
	return components.Vec3{Y: 1}
}

// Reset restores the configured pose without touching limits.
func (o *Orbit) Reset(cfg config.CameraConfig) {
	o.AngleX = float32(cfg.AngleX)
	o.AngleZ = float32(cfg.AngleZ)
	o.Distance = float32(cfg.Distance)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func pow(base, exp float32) float32 {
	return float32(math.Pow(float64(base), float64(exp)))
}
