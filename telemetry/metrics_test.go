package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/pthm-cable/photonwell/sim"
)

func newReaderMetrics(t *testing.T, backend string) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp, backend)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

// int64Points returns the data points of a sum or gauge keyed by the
// value of attribute key.
func int64Points(t *testing.T, rm metricdata.ResourceMetrics, name string, key attribute.Key) map[string]int64 {
	t.Helper()
	got := map[string]int64{}
	m, ok := findMetric(rm, name)
	if !ok {
		return got
	}
	var points []metricdata.DataPoint[int64]
	switch data := m.Data.(type) {
	case metricdata.Sum[int64]:
		points = data.DataPoints
	case metricdata.Gauge[int64]:
		points = data.DataPoints
	default:
		t.Fatalf("%s has data %T", name, m.Data)
	}
	for _, dp := range points {
		v, _ := dp.Attributes.Value(key)
		got[v.AsString()] += dp.Value
	}
	return got
}

func TestMetricsRecordTick(t *testing.T) {
	m, reader := newReaderMetrics(t, "sequential")
	ctx := context.Background()

	m.RecordTick(ctx, sim.TickStats{Tick: 1, Captured: 2, Respawned: 1}, time.Millisecond)
	m.RecordTick(ctx, sim.TickStats{Tick: 2, Captured: 1, Escaped: 3}, 2*time.Millisecond)
	m.SetActive(42)

	rm := collect(t, reader)

	events := int64Points(t, rm, "photonwell.photon.events", "event")
	want := map[string]int64{"captured": 3, "escaped": 3, "respawned": 1}
	for kind, n := range want {
		if events[kind] != n {
			t.Errorf("events{event=%q} = %d, want %d", kind, events[kind], n)
		}
	}
	if _, ok := events["recycled"]; ok {
		t.Error("recycled reported without any recycles")
	}

	ticks := int64Points(t, rm, "photonwell.ticks", "backend")
	if ticks["sequential"] != 2 {
		t.Errorf("ticks{backend=sequential} = %d, want 2", ticks["sequential"])
	}

	active := int64Points(t, rm, "photonwell.photons.active", "backend")
	if active["sequential"] != 42 {
		t.Errorf("active gauge = %v, want 42 for sequential", active)
	}

	hist, ok := findMetric(rm, "photonwell.tick.duration")
	if !ok {
		t.Fatal("tick duration histogram not exported")
	}
	h, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok || len(h.DataPoints) != 1 || h.DataPoints[0].Count != 2 {
		t.Errorf("tick duration = %+v, want one point with count 2", hist.Data)
	}
}

func TestMetricsSetBackendRelabels(t *testing.T) {
	m, reader := newReaderMetrics(t, "sequential")
	ctx := context.Background()

	m.RecordTick(ctx, sim.TickStats{Tick: 1}, time.Millisecond)
	m.SetBackend("workers")
	m.RecordTick(ctx, sim.TickStats{Tick: 2}, time.Millisecond)
	m.RecordTick(ctx, sim.TickStats{Tick: 3}, time.Millisecond)

	ticks := int64Points(t, collect(t, reader), "photonwell.ticks", "backend")
	if ticks["sequential"] != 1 || ticks["workers"] != 2 {
		t.Errorf("ticks by backend = %v, want sequential 1 workers 2", ticks)
	}
}

func TestMetricsCloseUnregistersGauge(t *testing.T) {
	m, reader := newReaderMetrics(t, "gpu")
	m.SetActive(7)

	if got := int64Points(t, collect(t, reader), "photonwell.photons.active", "backend"); got["gpu"] != 7 {
		t.Fatalf("active gauge before Close = %v, want 7", got)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if got := int64Points(t, collect(t, reader), "photonwell.photons.active", "backend"); len(got) != 0 {
		t.Errorf("active gauge after Close = %v, want no observations", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.RecordTick(context.Background(), sim.TickStats{Escaped: 1}, time.Millisecond)
	m.SetActive(1)
	m.SetBackend("gpu")
	if err := m.Close(); err != nil {
		t.Errorf("Close on nil metrics: %v", err)
	}
}

func TestMetricsProviderWritesJSON(t *testing.T) {
	dir := t.TempDir()
	p, err := NewMetricsProvider(dir, time.Hour)
	if err != nil {
		t.Fatalf("NewMetricsProvider: %v", err)
	}

	m, err := NewMetrics(p.MeterProvider(), "workers")
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	m.RecordTick(context.Background(), sim.TickStats{Tick: 1, Captured: 1}, time.Millisecond)

	// Shutdown runs a final export
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "metrics.json"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"photonwell.photon.events", "photonwell.ticks", `"photonwell"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("metrics.json missing %s", want)
		}
	}
}

func TestNilMetricsProvider(t *testing.T) {
	p, err := NewMetricsProvider("", time.Second)
	if err != nil || p != nil {
		t.Fatalf("NewMetricsProvider(\"\") = %v, %v, want nil, nil", p, err)
	}
	p.Install()
	if p.MeterProvider() == nil {
		t.Error("nil provider returned no meter provider")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown on nil provider: %v", err)
	}
}
