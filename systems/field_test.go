package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/photonwell/config"
)

func testField() Field {
	return NewField(config.Default())
}

func TestDisplacement(t *testing.T) {
	f := testField()

	tests := []struct {
		name string
		x, z float32
		want float64
	}{
		{"at clamp radius", 0, 1.5, -25.0 / 1.5},
		{"inside clamp", 0.2, -0.3, -25.0 / 1.5},
		{"origin", 0, 0, -25.0 / 1.5},
		{"r=5", 3, 4, -5},
		{"far", -40, 0, -25.0 / 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Displacement(tt.x, tt.z)
			if math.Abs(float64(got)-tt.want) > 1e-5 {
				t.Errorf("Displacement(%v, %v) = %v, want %v", tt.x, tt.z, got, tt.want)
			}
		})
	}
}

func TestDisplacementMonotonicWell(t *testing.T) {
	f := testField()
	prev := float32(math.Inf(-1))
	for i := 0; i <= 2000; i++ {
		r := float32(i) * 0.05
		d := f.Displacement(r*0.6, r*0.8)
		if d > 0 {
			t.Fatalf("Displacement at r=%v is %v, want <= 0", r, d)
		}
		if d < prev {
			t.Fatalf("Displacement decreased moving outward at r=%v: %v < %v", r, d, prev)
		}
		prev = d
	}
}

func TestForceReferenceValue(t *testing.T) {
	f := testField()
	g := f.Force(3, 0)

	// 25 * (1/2.9 - 1/3.1) / 0.2
	want := 25.0 * (1/2.9 - 1/3.1) / 0.2
	if math.Abs(float64(g.X)-want) > 1e-3 {
		t.Errorf("Force(3,0).X = %v, want %v", g.X, want)
	}
	if math.Abs(float64(g.Z)) > 1e-6 {
		t.Errorf("Force(3,0).Z = %v, want 0", g.Z)
	}
	// Slope points away from the well; subtracting it attracts
	if g.X <= 0 {
		t.Errorf("Force(3,0).X = %v, want positive slope", g.X)
	}
}

func TestForceClamp(t *testing.T) {
	f := testField()
	for x := float32(-10); x <= 10; x += 0.25 {
		for z := float32(-10); z <= 10; z += 0.25 {
			g := f.Force(x, z)
			if mag := g.Len(); mag > f.MaxForce*(1+1e-6) {
				t.Fatalf("|Force(%v,%v)| = %v exceeds %v", x, z, mag, f.MaxForce)
			}
		}
	}
}

func TestForceClampPreservesDirection(t *testing.T) {
	f := testField()
	x, z := float32(1.2), float32(1.2)
	g := f.Force(x, z)

	if math.Abs(float64(g.Len()-f.MaxForce)) > 1e-4 {
		t.Fatalf("|Force| = %v, want clamped to %v", g.Len(), f.MaxForce)
	}
	// Radially outward on the diagonal
	if math.Abs(float64(g.X-g.Z)) > 1e-4 || g.X <= 0 {
		t.Errorf("Force(%v,%v) = %+v, want outward diagonal", x, z, g)
	}
}
