package telemetry

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/pthm-cable/photonwell/sim"
)

const instrumentationName = "github.com/pthm-cable/photonwell/telemetry"

// Metrics publishes tick results as OpenTelemetry instruments. Against the
// global provider with nothing installed every instrument is a no-op.
type Metrics struct {
	events       metric.Int64Counter
	ticks        metric.Int64Counter
	tickDuration metric.Float64Histogram
	activeGauge  metric.Int64ObservableGauge
	registration metric.Registration

	active  atomic.Int64
	backend atomic.Pointer[attribute.KeyValue] // read by the gauge callback
}

// NewMetrics registers the instruments on mp for the named backend.
func NewMetrics(mp metric.MeterProvider, backend string) (*Metrics, error) {
	m := &Metrics{}
	m.SetBackend(backend)
	mt := mp.Meter(instrumentationName)

	var err error
	m.events, err = mt.Int64Counter(
		"photonwell.photon.events",
		metric.WithDescription("Photon lifecycle events by kind"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating events counter: %w", err)
	}

	m.ticks, err = mt.Int64Counter(
		"photonwell.ticks",
		metric.WithDescription("Completed simulation ticks"),
		metric.WithUnit("{tick}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick counter: %w", err)
	}

	m.tickDuration, err = mt.Float64Histogram(
		"photonwell.tick.duration",
		metric.WithDescription("Wall time of one backend step"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick duration histogram: %w", err)
	}

	m.activeGauge, err = mt.Int64ObservableGauge(
		"photonwell.photons.active",
		metric.WithDescription("Photons currently in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating active gauge: %w", err)
	}
	m.registration, err = mt.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(m.activeGauge, m.active.Load(), metric.WithAttributes(*m.backend.Load()))
			return nil
		},
		m.activeGauge,
	)
	if err != nil {
		return nil, fmt.Errorf("registering active callback: %w", err)
	}

	return m, nil
}

// RecordTick publishes one tick's events and step duration.
func (m *Metrics) RecordTick(ctx context.Context, ts sim.TickStats, step time.Duration) {
	if m == nil {
		return
	}
	backend := *m.backend.Load()
	m.ticks.Add(ctx, 1, metric.WithAttributes(backend))
	m.tickDuration.Record(ctx, step.Seconds(), metric.WithAttributes(backend))

	for _, e := range []struct {
		kind  string
		count int
	}{
		{"captured", ts.Captured},
		{"escaped", ts.Escaped},
		{"respawned", ts.Respawned},
		{"recycled", ts.Recycled},
	} {
		if e.count > 0 {
			m.events.Add(ctx, int64(e.count),
				metric.WithAttributes(backend, attribute.String("event", e.kind)))
		}
	}
}

// Close unregisters the active gauge callback.
func (m *Metrics) Close() error {
	if m == nil || m.registration == nil {
		return nil
	}
	err := m.registration.Unregister()
	m.registration = nil
	return err
}

// SetActive updates the value reported by the active photon gauge.
func (m *Metrics) SetActive(n int) {
	if m == nil {
		return
	}
	m.active.Store(int64(n))
}

// SetBackend relabels future measurements after a backend switch.
func (m *Metrics) SetBackend(name string) {
	if m == nil {
		return
	}
	kv := attribute.String("backend", name)
	m.backend.Store(&kv)
}
