// Package geom builds the static scene geometry around the well and the
// per-vertex trail fade. It has no graphics dependency so every view can
// share it.
package geom

import (
	"math/rand/v2"

	"github.com/pthm-cable/photonwell/components"
	"github.com/pthm-cable/photonwell/systems"
)

// starStream keeps the star field independent of photon streams that
// share the run seed.
const starStream = 0x5747_4152

// Stars scatters n points uniformly in a cube of the given half-extent.
func Stars(n int, extent float32, seed uint64) []components.Vec3 {
	r := rand.New(rand.NewPCG(seed, starStream))
	coord := func() float32 { return extent * (2*r.Float32() - 1) }

	stars := make([]components.Vec3, n)
	for i := range stars {
		stars[i] = components.Vec3{X: coord(), Y: coord(), Z: coord()}
	}
	return stars
}

// Grid is the height field sampled on a square lattice, as polylines.
// Rows run along x at fixed z, Cols run along z at fixed x.
type Grid struct {
	Rows [][]components.Vec3
	Cols [][]components.Vec3
}

// HeightGrid samples f on slices cells per axis over [-extent, extent].
func HeightGrid(f systems.Field, extent float32, slices int) Grid {
	slices = max(slices, 1)
	n := slices + 1
	step := 2 * extent / float32(slices)
	at := func(i int) float32 { return -extent + float32(i)*step }

	// One shared lattice; rows and cols are views of it
	lattice := make([][]components.Vec3, n)
	for i := range lattice {
		lattice[i] = make([]components.Vec3, n)
		for j := range lattice[i] {
			lattice[i][j] = f.Surface(at(j), at(i))
		}
	}

	g := Grid{Rows: lattice, Cols: make([][]components.Vec3, n)}
	for j := 0; j < n; j++ {
		col := make([]components.Vec3, n)
		for i := 0; i < n; i++ {
			col[i] = lattice[i][j]
		}
		g.Cols[j] = col
	}
	return g
}

// MaxTrailAlpha is the opacity of the newest trail segment.
const MaxTrailAlpha = 0.7

// TrailAlpha returns the opacity of chronological trail entry j of n.
func TrailAlpha(j, n int) float32 {
	if n <= 0 {
		return 0
	}
	return MaxTrailAlpha * float32(j) / float32(n)
}
