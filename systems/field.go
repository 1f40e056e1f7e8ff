// Package systems contains the per-photon simulation rules.
// Everything here is pure math over component values and is shared by all
// CPU execution backends.
package systems

import (
	"math"

	"github.com/pthm-cable/photonwell/components"
	"github.com/pthm-cable/photonwell/config"
)

// Field is the gravity-well height field.
type Field struct {
	Mass      float32
	MinRadius float32
	FDStep    float32 // central difference step
	MaxForce  float32
}

// NewField builds a Field from config.
func NewField(cfg *config.Config) Field {
	return Field{
		Mass:      float32(cfg.Well.Mass),
		MinRadius: float32(cfg.Well.MinRadius),
		FDStep:    float32(cfg.Physics.FDStep),
		MaxForce:  float32(cfg.Physics.MaxForce),
	}
}

// Displacement returns the surface height at (x, z): -Mass / max(r, MinRadius).
func (f Field) Displacement(x, z float32) float32 {
	r := sqrt32(x*x + z*z)
	if r < f.MinRadius {
		r = f.MinRadius
	}
	return -f.Mass / r
}

// Force returns the clamped surface slope at (x, z).
// Callers subtract Force*dt from velocity, which pulls toward the well.
func (f Field) Force(x, z float32) components.Vec2 {
	h := f.FDStep
	span := 2 * h
	sx := (f.Displacement(x+h, z) - f.Displacement(x-h, z)) / span
	sz := (f.Displacement(x, z+h) - f.Displacement(x, z-h)) / span

	mag := sqrt32(sx*sx + sz*sz)
	if mag > f.MaxForce {
		sx = sx / mag * f.MaxForce
		sz = sz / mag * f.MaxForce
	}
	return components.Vec2{X: sx, Z: sz}
}

// Surface returns the point on the field above (x, z).
func (f Field) Surface(x, z float32) components.Vec3 {
	return components.Vec3{X: x, Y: f.Displacement(x, z), Z: z}
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
