package telemetry

import (
	"math"
	"testing"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Distribution
	}{
		{"empty", nil, Distribution{}},
		{"single", []float64{5}, Distribution{N: 1, Mean: 5, Min: 5, P10: 5, P50: 5, P90: 5, Max: 5}},
		{
			"one to ten shuffled",
			[]float64{7, 3, 10, 1, 9, 2, 8, 4, 6, 5},
			Distribution{N: 10, Mean: 5.5, Std: 3.0277, Min: 1, P10: 1, P50: 5, P90: 9, Max: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Describe(tt.values)
			if got.N != tt.want.N {
				t.Fatalf("N = %d, want %d", got.N, tt.want.N)
			}
			check := func(field string, got, want float64) {
				if math.Abs(got-want) > 0.001 {
					t.Errorf("%s = %v, want %v", field, got, want)
				}
			}
			check("Mean", got.Mean, tt.want.Mean)
			check("Std", got.Std, tt.want.Std)
			check("Min", got.Min, tt.want.Min)
			check("P10", got.P10, tt.want.P10)
			check("P50", got.P50, tt.want.P50)
			check("P90", got.P90, tt.want.P90)
			check("Max", got.Max, tt.want.Max)
		})
	}
}

func TestRatio(t *testing.T) {
	if got := ratio(3, 4); got != 0.75 {
		t.Errorf("ratio(3, 4) = %v, want 0.75", got)
	}
	if got := ratio(0, 0); got != 0 {
		t.Errorf("ratio(0, 0) = %v, want 0", got)
	}
}
