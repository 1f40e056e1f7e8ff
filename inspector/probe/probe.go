// Package probe holds the window-free parts of the inspector: picking a
// photon under the cursor, deriving readings for it and keeping a rolling
// history of window stats.
package probe

import (
	"math"

	"github.com/pthm-cable/photonwell/components"
	"github.com/pthm-cable/photonwell/sim"
	"github.com/pthm-cable/photonwell/systems"
)

// Projector maps a world point to screen pixels. ok is false when the point
// is not visible.
type Projector func(p components.Vec3) (x, y float32, ok bool)

// Pick returns the index of the active photon whose head is closest to
// (mx, my) within radius pixels.
func Pick(f *sim.Frame, project Projector, mx, my, radius float32) (int, bool) {
	best := -1
	bestDist := radius * radius
	for i := range f.Photons {
		p := &f.Photons[i]
		if !p.Active {
			continue
		}
		x, y, ok := project(p.Position)
		if !ok {
			continue
		}
		dx, dy := x-mx, y-my
		if d := dx*dx + dy*dy; d <= bestDist {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}

// Reading is the derived state of one photon.
type Reading struct {
	Radius       float32 // planar distance from the well
	Displacement float32
	Speed        float32
	Force        float32 // clamped slope magnitude
	Energy       float32 // speed²/2 + displacement, per unit mass
	Bound        bool    // Energy < 0: cannot climb out of the well
	Core         bool    // inside the flattened core (r < MinRadius)
}

// Read derives a Reading for v in field f.
func Read(v sim.PhotonView, f systems.Field) Reading {
	x, z := v.Position.X, v.Position.Z
	speed := v.Velocity.Len()
	disp := f.Displacement(x, z)
	r := Reading{
		Radius:       v.Position.Planar().Len(),
		Displacement: disp,
		Speed:        speed,
		Force:        f.Force(x, z).Len(),
		Energy:       speed*speed/2 + disp,
	}
	r.Bound = r.Energy < 0
	r.Core = r.Radius < f.MinRadius
	return r
}

// History keeps the last capacity samples of a fixed set of series.
type History struct {
	series   [][]float64
	next     int
	count    int
	capacity int
}

// NewHistory creates a history of n series.
func NewHistory(n, capacity int) *History {
	h := &History{series: make([][]float64, n), capacity: capacity}
	for i := range h.series {
		h.series[i] = make([]float64, capacity)
	}
	return h
}

// Push appends one sample per series, dropping the oldest when full.
// Missing values are recorded as zero.
func (h *History) Push(values ...float64) {
	for i := range h.series {
		var v float64
		if i < len(values) {
			v = values[i]
		}
		h.series[i][h.next] = v
	}
	h.next = (h.next + 1) % h.capacity
	if h.count < h.capacity {
		h.count++
	}
}

// Len returns the number of stored samples.
func (h *History) Len() int { return h.count }

// Reset drops all samples.
func (h *History) Reset() {
	h.next = 0
	h.count = 0
}

// Series appends series i, oldest first, to dst.
func (h *History) Series(i int, dst []float64) []float64 {
	start := (h.next - h.count + h.capacity) % h.capacity
	for j := 0; j < h.count; j++ {
		dst = append(dst, h.series[i][(start+j)%h.capacity])
	}
	return dst
}

// Range returns the min and max of series i, or (0, 0) when empty.
func (h *History) Range(i int) (lo, hi float64) {
	if h.count == 0 {
		return 0, 0
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range h.Series(i, nil) {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}
