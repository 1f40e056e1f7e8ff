package geom

import (
	"math"
	"testing"

	"github.com/pthm-cable/photonwell/config"
	"github.com/pthm-cable/photonwell/systems"
)

func TestStars(t *testing.T) {
	a := Stars(500, 200, 9)
	b := Stars(500, 200, 9)
	if len(a) != 500 {
		t.Fatalf("got %d stars, want 500", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("star %d differs between identical seeds", i)
		}
		for _, c := range []float32{a[i].X, a[i].Y, a[i].Z} {
			if c < -200 || c >= 200 {
				t.Errorf("star %d coordinate %v outside the cube", i, c)
			}
		}
	}
	if Stars(500, 200, 10)[0] == a[0] {
		t.Error("different seeds produced the same first star")
	}
}

func TestHeightGrid(t *testing.T) {
	cfg := config.Default()
	f := systems.NewField(cfg)
	g := HeightGrid(f, 40, 50)

	if len(g.Rows) != 51 || len(g.Cols) != 51 {
		t.Fatalf("grid has %d rows and %d cols, want 51 each", len(g.Rows), len(g.Cols))
	}
	for _, line := range append(g.Rows, g.Cols...) {
		if len(line) != 51 {
			t.Fatalf("polyline has %d points, want 51", len(line))
		}
		for _, p := range line {
			want := f.Displacement(p.X, p.Z)
			if math.Abs(float64(p.Y-want)) > 1e-5 {
				t.Fatalf("grid point (%v, %v) at y=%v, field says %v", p.X, p.Z, p.Y, want)
			}
		}
	}

	// Corners span the domain
	first, last := g.Rows[0][0], g.Rows[50][50]
	if first.X != -40 || first.Z != -40 {
		t.Errorf("first corner = (%v, %v), want (-40, -40)", first.X, first.Z)
	}
	if math.Abs(float64(last.X-40)) > 1e-4 || math.Abs(float64(last.Z-40)) > 1e-4 {
		t.Errorf("last corner = (%v, %v), want (40, 40)", last.X, last.Z)
	}

	// Rows hold z fixed, cols hold x fixed
	if g.Rows[3][0].Z != g.Rows[3][50].Z {
		t.Error("row is not at constant z")
	}
	if g.Cols[7][0].X != g.Cols[7][50].X {
		t.Error("col is not at constant x")
	}
}

func TestTrailAlpha(t *testing.T) {
	tests := []struct {
		j, n int
		want float32
	}{
		{0, 300, 0},
		{150, 300, 0.35},
		{300, 300, 0.7},
		{3, 0, 0},
	}
	for _, tt := range tests {
		got := TrailAlpha(tt.j, tt.n)
		if math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("TrailAlpha(%d, %d) = %v, want %v", tt.j, tt.n, got, tt.want)
		}
	}
}
