package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ServiceName identifies this program in exported metrics.
const ServiceName = "photonwell"

// MetricsProvider exports OpenTelemetry metrics as JSON lines to
// metrics.json in the output directory. A nil provider is valid and leaves
// the global no-op meter in place.
type MetricsProvider struct {
	file          *os.File
	meterProvider *sdkmetric.MeterProvider
}

// NewMetricsProvider opens dir/metrics.json and starts a periodic reader
// that exports every interval. Returns nil if dir is empty.
func NewMetricsProvider(dir string, interval time.Duration) (*MetricsProvider, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "metrics.json"))
	if err != nil {
		return nil, fmt.Errorf("creating metrics.json: %w", err)
	}
	exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	return &MetricsProvider{
		file: f,
		meterProvider: sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
				sdkmetric.WithInterval(interval),
			)),
		),
	}, nil
}

// Install makes p the global meter provider.
func (p *MetricsProvider) Install() {
	if p == nil {
		return
	}
	otel.SetMeterProvider(p.meterProvider)
}

// MeterProvider returns the SDK provider, or the global one for a nil p.
func (p *MetricsProvider) MeterProvider() metric.MeterProvider {
	if p == nil {
		return otel.GetMeterProvider()
	}
	return p.meterProvider
}

// Shutdown exports pending measurements and closes metrics.json.
func (p *MetricsProvider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if err := p.meterProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("metric shutdown failed: %w", err))
	}
	if err := p.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing metrics.json: %w", err))
	}
	return errors.Join(errs...)
}
