package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Distribution summarizes a sample of values.
type Distribution struct {
	N    int
	Mean float64
	Std  float64
	Min  float64
	P10  float64
	P50  float64
	P90  float64
	Max  float64
}

// Describe summarizes values. The slice is sorted in place.
// An empty sample yields the zero Distribution.
func Describe(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{}
	}

	slices.Sort(values)
	d := Distribution{
		N:   n,
		Min: floats.Min(values),
		Max: floats.Max(values),
		P10: stat.Quantile(0.10, stat.Empirical, values, nil),
		P50: stat.Quantile(0.50, stat.Empirical, values, nil),
		P90: stat.Quantile(0.90, stat.Empirical, values, nil),
	}
	if n > 1 {
		d.Mean, d.Std = stat.MeanStdDev(values, nil)
	} else {
		d.Mean = values[0]
	}
	return d
}

// WindowStats holds aggregated statistics for one telemetry window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Backend         string  `csv:"backend"`
	Lifecycle       bool    `csv:"lifecycle"`

	// Population at window end
	Active   int `csv:"active"`
	Inactive int `csv:"inactive"`

	// Events during window
	Captured  int `csv:"captured"`
	Escaped   int `csv:"escaped"`
	Respawned int `csv:"respawned"`
	Recycled  int `csv:"recycled"`

	// Fraction of retired infalling photons that fell in
	CaptureRatio float64 `csv:"capture_ratio"`

	// Planar speed of active photons at window end
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Distance from the well of active orbiting photons. A stable ring
	// keeps the mean near the spawn radius and the spread small.
	OrbitRadiusMean float64 `csv:"orbit_radius_mean"`
	OrbitRadiusStd  float64 `csv:"orbit_radius_std"`
	OrbitRadiusMin  float64 `csv:"orbit_radius_min"`
	OrbitRadiusMax  float64 `csv:"orbit_radius_max"`

	// Flight time in seconds of infalling photons that retired this window
	FlightMean float64 `csv:"flight_mean"`
	FlightP50  float64 `csv:"flight_p50"`
	FlightP90  float64 `csv:"flight_p90"`
}

// ratio returns num/den, or 0 for an empty denominator.
func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.String("backend", s.Backend),
		slog.Bool("lifecycle", s.Lifecycle),
		slog.Int("active", s.Active),
		slog.Int("inactive", s.Inactive),
		slog.Int("captured", s.Captured),
		slog.Int("escaped", s.Escaped),
		slog.Int("respawned", s.Respawned),
		slog.Int("recycled", s.Recycled),
		slog.Float64("capture_ratio", s.CaptureRatio),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("orbit_radius_mean", s.OrbitRadiusMean),
		slog.Float64("orbit_radius_std", s.OrbitRadiusStd),
		slog.Float64("flight_mean", s.FlightMean),
		slog.Float64("flight_p50", s.FlightP50),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"backend", s.Backend,
		"active", s.Active,
		"captured", s.Captured,
		"escaped", s.Escaped,
		"respawned", s.Respawned,
		"recycled", s.Recycled,
		"capture_ratio", s.CaptureRatio,
		"speed_p50", s.SpeedP50,
		"orbit_radius_mean", s.OrbitRadiusMean,
		"orbit_radius_std", s.OrbitRadiusStd,
		"flight_p50", s.FlightP50,
	)
}
