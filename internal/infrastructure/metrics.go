package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/geofleet/svc-location-tracker/internal/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	metricsNamespace = "location_tracker"
)

type (
	Metrics interface {
		RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration, requestSize, responseSize int64)
		RecordFixCollected(ctx context.Context, source string, success bool)
		RecordDelivery(ctx context.Context, transport string, duration time.Duration, success bool)
		RecordQueueDepth(ctx context.Context, depth int64)
		RecordSessionEvent(ctx context.Context, event string)
		Handler() http.Handler
		Shutdown(ctx context.Context) error
	}

	OTELMetrics struct {
		meterProvider *sdkmetric.MeterProvider
		meter         metric.Meter
		logger        Logger

		httpRequestTotal    metric.Int64Counter
		httpRequestDuration metric.Float64Histogram
		httpRequestSize     metric.Int64Histogram
		httpResponseSize    metric.Int64Histogram
		fixCollectedTotal   metric.Int64Counter
		fixCollectErrors    metric.Int64Counter
		deliveryTotal       metric.Int64Counter
		deliveryErrors      metric.Int64Counter
		deliveryDuration    metric.Float64Histogram
		queueDepth          metric.Int64Gauge
		sessionEventTotal   metric.Int64Counter
	}
)

func NewMetrics(ctx context.Context, cfg config.ServiceConfig, logger Logger) (Metrics, error) {
	if !cfg.Telemetry.Metrics.Enabled {
		logger.Info().Msg("metrics disabled, using NoOp implementation")

		return &NoOpMetrics{}, nil
	}

	return NewOTELMetrics(ctx, cfg, logger)
}

func NewOTELMetrics(ctx context.Context, cfg config.ServiceConfig, logger Logger) (*OTELMetrics, error) {
	endpoint := fmt.Sprintf("%s:%s", cfg.Telemetry.OtelGRPCHost, cfg.Telemetry.OtelGRPCPort)

	conn, err := grpc.NewClient(
		endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to OTEL collector: %w", err)
	}

	exporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.AppConfig.ServiceName),
			semconv.ServiceVersionKey.String(cfg.AppConfig.ServiceVersion),
			semconv.ServiceInstanceIDKey.String(cfg.Tracking.DeviceID),
			semconv.DeploymentEnvironmentKey.String(cfg.AppConfig.Env),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(meterProvider)

	meter := meterProvider.Meter(
		metricsNamespace,
		metric.WithInstrumentationVersion(cfg.AppConfig.ServiceVersion),
	)

	provider := &OTELMetrics{
		meterProvider: meterProvider,
		meter:         meter,
		logger:        logger,
	}

	if err := provider.initializeMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.Info().
		Str("otel_endpoint", endpoint).
		Msg("OTEL metrics provider initialized successfully")

	return provider, nil
}

func (om *OTELMetrics) initializeMetrics() error {
	var err error

	om.httpRequestTotal, err = om.meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	om.httpRequestDuration, err = om.meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	om.httpRequestSize, err = om.meter.Int64Histogram(
		"http_request_size_bytes",
		metric.WithDescription("HTTP request size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return fmt.Errorf("failed to create http_request_size_bytes histogram: %w", err)
	}

	om.httpResponseSize, err = om.meter.Int64Histogram(
		"http_response_size_bytes",
		metric.WithDescription("HTTP response size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return fmt.Errorf("failed to create http_response_size_bytes histogram: %w", err)
	}

	om.fixCollectedTotal, err = om.meter.Int64Counter(
		"fixes_collected_total",
		metric.WithDescription("Total number of location fixes collected"),
		metric.WithUnit("{fix}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create fixes_collected_total counter: %w", err)
	}

	om.fixCollectErrors, err = om.meter.Int64Counter(
		"fix_collect_errors_total",
		metric.WithDescription("Total number of fix collection errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create fix_collect_errors_total counter: %w", err)
	}

	om.deliveryTotal, err = om.meter.Int64Counter(
		"fix_deliveries_total",
		metric.WithDescription("Total number of fix deliveries attempted"),
		metric.WithUnit("{delivery}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create fix_deliveries_total counter: %w", err)
	}

	om.deliveryErrors, err = om.meter.Int64Counter(
		"fix_delivery_errors_total",
		metric.WithDescription("Total number of fix delivery errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create fix_delivery_errors_total counter: %w", err)
	}

	om.deliveryDuration, err = om.meter.Float64Histogram(
		"fix_delivery_duration_seconds",
		metric.WithDescription("Fix delivery duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create fix_delivery_duration_seconds histogram: %w", err)
	}

	om.queueDepth, err = om.meter.Int64Gauge(
		"delivery_queue_depth",
		metric.WithDescription("Number of fixes waiting for delivery"),
		metric.WithUnit("{fix}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create delivery_queue_depth gauge: %w", err)
	}

	om.sessionEventTotal, err = om.meter.Int64Counter(
		"tracking_session_events_total",
		metric.WithDescription("Total number of tracking session lifecycle events"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create tracking_session_events_total counter: %w", err)
	}

	return nil
}

func (om *OTELMetrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration, requestSize, responseSize int64) {
	attrs := metric.WithAttributes(
		HTTPMethodAttr(method),
		HTTPPathAttr(path),
		HTTPStatusCodeAttr(statusCode),
	)

	om.httpRequestTotal.Add(ctx, 1, attrs)
	om.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)

	if requestSize > 0 {
		om.httpRequestSize.Record(ctx, requestSize, attrs)
	}

	om.httpResponseSize.Record(ctx, responseSize, attrs)
}

func (om *OTELMetrics) RecordFixCollected(ctx context.Context, source string, success bool) {
	if success {
		om.fixCollectedTotal.Add(ctx, 1, metric.WithAttributes(SourceAttr(source)))

		return
	}

	om.fixCollectErrors.Add(ctx, 1, metric.WithAttributes(SourceAttr(source)))
}

func (om *OTELMetrics) RecordDelivery(ctx context.Context, transport string, duration time.Duration, success bool) {
	attrs := metric.WithAttributes(TransportAttr(transport), StatusAttr(deliveryStatus(success)))

	om.deliveryTotal.Add(ctx, 1, attrs)
	om.deliveryDuration.Record(ctx, duration.Seconds(), attrs)

	if !success {
		om.deliveryErrors.Add(ctx, 1, metric.WithAttributes(TransportAttr(transport)))
	}
}

func (om *OTELMetrics) RecordQueueDepth(ctx context.Context, depth int64) {
	om.queueDepth.Record(ctx, depth)
}

func (om *OTELMetrics) RecordSessionEvent(ctx context.Context, event string) {
	om.sessionEventTotal.Add(ctx, 1, metric.WithAttributes(SessionEventAttr(event)))
}

func (om *OTELMetrics) Handler() http.Handler {
	return promhttp.Handler()
}

func (om *OTELMetrics) Shutdown(ctx context.Context) error {
	if om.meterProvider == nil {
		return nil
	}

	return om.meterProvider.Shutdown(ctx)
}

func deliveryStatus(success bool) string {
	if success {
		return "delivered"
	}

	return "failed"
}
