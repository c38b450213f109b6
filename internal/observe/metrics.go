// Package observe provides the observability primitives of colliderkit:
// OpenTelemetry metrics, tracing and trace-aware structured logging.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A [Provider]
// exports them through a Prometheus registry so that a long-running editor
// session can be scraped on /metrics. Tests build [NewMetrics] on a
// provider backed by a ManualReader.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all colliderkit metrics.
const meterName = "github.com/MrWong99/colliderkit"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// --- Catalog ---

	// CatalogEntities counts entities added to a catalog. Use with attribute:
	//   attribute.String("kind", "collider"|"rigidbody"|"auto_collider")
	CatalogEntities metric.Int64Counter

	// CatalogIssues counts entities skipped during a catalog build. Use with
	// attribute:
	//   attribute.String("reason", "duplicate"|"unsupported")
	CatalogIssues metric.Int64Counter

	// --- Editor ---

	// SelectionChanges counts applied selection changes. Use with attribute:
	//   attribute.String("category", "collider"|"rigidbody"|"auto_collider")
	SelectionChanges metric.Int64Counter

	// TickDuration tracks the time spent in one editor tick.
	TickDuration metric.Float64Histogram

	// PreviewsActive tracks the number of live preview primitives.
	PreviewsActive metric.Int64UpDownCounter

	// --- Presets ---

	// PresetOperations counts preset saves and loads. Use with attributes:
	//   attribute.String("op", "save"|"load"), attribute.String("status", "ok"|"error")
	PresetOperations metric.Int64Counter

	// PresetDuration tracks preset save and load latency.
	PresetDuration metric.Float64Histogram

	// --- HTTP ---

	// HTTPRequestDuration tracks metrics endpoint latency.
	HTTPRequestDuration metric.Float64Histogram
}

// tickBuckets are histogram boundaries (in seconds) around a 20ms frame.
var tickBuckets = []float64{
	0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.02, 0.05, 0.1,
}

// ioBuckets are histogram boundaries (in seconds) for file operations.
var ioBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Counters.
	if met.CatalogEntities, err = m.Int64Counter("colliderkit.catalog.entities",
		metric.WithDescription("Entities added to a catalog by kind."),
	); err != nil {
		return nil, err
	}
	if met.CatalogIssues, err = m.Int64Counter("colliderkit.catalog.issues",
		metric.WithDescription("Entities skipped during catalog build by reason."),
	); err != nil {
		return nil, err
	}
	if met.SelectionChanges, err = m.Int64Counter("colliderkit.selection.changes",
		metric.WithDescription("Applied selection changes by category."),
	); err != nil {
		return nil, err
	}
	if met.PresetOperations, err = m.Int64Counter("colliderkit.preset.operations",
		metric.WithDescription("Preset saves and loads by operation and status."),
	); err != nil {
		return nil, err
	}

	// Histograms.
	if met.TickDuration, err = m.Float64Histogram("colliderkit.tick.duration",
		metric.WithDescription("Time spent in one editor tick."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(tickBuckets...),
	); err != nil {
		return nil, err
	}
	if met.PresetDuration, err = m.Float64Histogram("colliderkit.preset.duration",
		metric.WithDescription("Latency of preset saves and loads."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(ioBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("colliderkit.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.PreviewsActive, err = m.Int64UpDownCounter("colliderkit.previews.active",
		metric.WithDescription("Number of live preview primitives."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordEntity records one catalog entity of kind.
func (m *Metrics) RecordEntity(ctx context.Context, kind string) {
	m.CatalogEntities.Add(ctx, 1, metric.WithAttributes(Attr("kind", kind)))
}

// RecordIssue records one entity skipped for reason.
func (m *Metrics) RecordIssue(ctx context.Context, reason string) {
	m.CatalogIssues.Add(ctx, 1, metric.WithAttributes(Attr("reason", reason)))
}

// RecordSelection records one selection change in category.
func (m *Metrics) RecordSelection(ctx context.Context, category string) {
	m.SelectionChanges.Add(ctx, 1, metric.WithAttributes(Attr("category", category)))
}

// RecordPreset records a preset operation that started at start. A non-nil
// err marks it as failed.
func (m *Metrics) RecordPreset(ctx context.Context, op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.PresetOperations.Add(ctx, 1, metric.WithAttributes(Attr("op", op), Attr("status", status)))
	m.PresetDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(Attr("op", op)))
}
