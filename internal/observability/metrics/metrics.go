package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes the tracker's business counters.
type Metrics struct {
	requestsSubmitted metric.Int64Counter
	statusChanges     metric.Int64Counter
	commentsPosted    metric.Int64Counter
	materialsImported metric.Int64Counter
	unlockAttempts    metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(30*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return provider.Shutdown(ctx)
			},
		})
	}
	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New creates the counters on the given provider.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "stockroom"
	}
	meter := provider.Meter(name)

	m := &Metrics{}
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.requestsSubmitted, "stockroom_requests_submitted_total", "Request lines written by cart submissions."},
		{&m.statusChanges, "stockroom_status_transitions_total", "Request lines moved between statuses."},
		{&m.commentsPosted, "stockroom_comments_posted_total", "Comments posted on request threads."},
		{&m.materialsImported, "stockroom_materials_imported_total", "Catalog rows processed by bulk import."},
		{&m.unlockAttempts, "stockroom_pin_attempts_total", "Manager PIN unlock attempts."},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}
	return m, nil
}

func (m *Metrics) RecordRequestsSubmitted(ctx context.Context, department string, lines int) {
	if m == nil || lines <= 0 {
		return
	}
	attrs := FilterAttributes(attribute.String("department", strings.TrimSpace(department)))
	m.requestsSubmitted.Add(ctx, int64(lines), metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordStatusChange(ctx context.Context, to string, lines int) {
	if m == nil || lines <= 0 {
		return
	}
	attrs := FilterAttributes(attribute.String("to_status", to))
	m.statusChanges.Add(ctx, int64(lines), metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordComment(ctx context.Context, role string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("role", role))
	m.commentsPosted.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordImport counts added and skipped rows of one import run.
func (m *Metrics) RecordImport(ctx context.Context, added, skipped int) {
	if m == nil {
		return
	}
	if added > 0 {
		m.materialsImported.Add(ctx, int64(added), metric.WithAttributes(attribute.String("outcome", "added")))
	}
	if skipped > 0 {
		m.materialsImported.Add(ctx, int64(skipped), metric.WithAttributes(attribute.String("outcome", "skipped")))
	}
}

func (m *Metrics) RecordUnlock(ctx context.Context, ok bool) {
	if m == nil {
		return
	}
	outcome := "denied"
	if ok {
		outcome = "granted"
	}
	m.unlockAttempts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

// display names, comment text and batch ids never become labels
var allowedLabelKeys = map[attribute.Key]struct{}{
	"department":  {},
	"to_status":   {},
	"role":        {},
	"outcome":     {},
	"route":       {},
	"method":      {},
	"status_code": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
