// Package components defines ECS components for the simulation.
package components

import (
	"math"
	"math/rand/v2"
)

// Kind distinguishes the two photon populations.
type Kind uint8

const (
	KindOrbiting Kind = iota
	KindInfalling
)

// String returns the display name for a Kind.
func (k Kind) String() string {
	switch k {
	case KindOrbiting:
		return "orbiting"
	case KindInfalling:
		return "infalling"
	}
	return "unknown"
}

// Vec2 is a vector in the x/z plane.
type Vec2 struct {
	X, Z float32
}

// Len returns the vector magnitude.
func (v Vec2) Len() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Z*v.Z)))
}

// Vec3 is a world-space point. Y is the vertical axis.
type Vec3 struct {
	X, Y, Z float32
}

// Planar returns the x/z projection.
func (v Vec3) Planar() Vec2 {
	return Vec2{X: v.X, Z: v.Z}
}

// Motion holds a photon's kinematic state.
// Pos.Y always equals the field displacement at (Pos.X, Pos.Z).
type Motion struct {
	Pos Vec3
	Vel Vec2
}

// Life holds activity state. An inactive photon is not integrated;
// its timer counts down to the next spawn.
type Life struct {
	Active       bool
	RespawnTimer float32
}

// Photon holds identity and the photon's private random stream.
type Photon struct {
	ID   int
	Kind Kind
	Rand *rand.Rand
}

// NewPhotonRand returns the random stream for photon id under the given run seed.
// Streams are independent of update order, so any execution model draws the
// same numbers for the same photon.
func NewPhotonRand(seed uint64, id int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(id)))
}
