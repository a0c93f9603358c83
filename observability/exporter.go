package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// NewConsoleMetricsExporter serves for test/dev environment.
// The returned callback flushes and shuts down the meter provider.
func NewConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (func(ctx context.Context) error, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	callback := mp.Shutdown
	otel.SetMeterProvider(mp)
	return callback, nil
}

// NewPrometheusMetricsExporter serves for the product environment,
// the metrics are collected by the registry.
func NewPrometheusMetricsExporter(reg *prometheus.Registry) (func(ctx context.Context) error, error) {
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	callback := mp.Shutdown
	otel.SetMeterProvider(mp)
	return callback, nil
}

// WritePrometheusText dumps the gathered metrics in the text exposition format.
func WritePrometheusText(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err = expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
