package middleware

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/salesdash/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

var attrHTTPStatusClass = attribute.Key("http.status_class")

var (
	requestSizeBuckets  = []float64{100, 500, 1e3, 5e3, 1e4, 5e4, 1e5, 5e5, 1e6}
	responseSizeBuckets = []float64{100, 500, 1e3, 5e3, 1e4, 5e4, 1e5, 5e5, 1e6, 5e6}
)

// HTTPMetricsConfig selects the meter provider for request metrics.
// Logger is optional and only reports instrument registration failures.
type HTTPMetricsConfig struct {
	MeterProvider *telemetry.MeterProvider
	Enabled       bool
	Logger        *zap.Logger
}

type httpInstruments struct {
	requests     *telemetry.Counter
	failures     *telemetry.Counter
	latency      *telemetry.Histogram
	requestSize  *telemetry.Histogram
	responseSize *telemetry.Histogram
	inFlight     metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	var (
		in   httpInstruments
		errs []error
		err  error
	)
	histogram := func(name, desc, unit string, bounds []float64) *telemetry.Histogram {
		h, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{Name: name, Description: desc, Unit: unit, Boundaries: bounds})
		errs = append(errs, err)
		return h
	}

	in.requests, err = telemetry.NewCounter(meter, "http_server_request_total", "HTTP requests served", "{request}")
	errs = append(errs, err)
	in.failures, err = telemetry.NewCounter(meter, "http_server_request_errors_total", "HTTP requests answered with 4xx or 5xx", "{request}")
	errs = append(errs, err)
	in.latency = histogram("http_server_request_duration_seconds", "HTTP request latency", "s", telemetry.HTTPDurationBuckets)
	in.requestSize = histogram("http_server_request_size_bytes", "HTTP request body size", "By", requestSizeBuckets)
	in.responseSize = histogram("http_server_response_size_bytes", "HTTP response body size", "By", responseSizeBuckets)
	in.inFlight, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("HTTP requests in flight"), metric.WithUnit("{request}"))
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &in, nil
}

func passThrough(c *gin.Context) { c.Next() }

// HTTPMetrics records request totals, failures, latency, body sizes and
// in-flight requests per method and matched route. It passes requests
// straight through unless metrics export is enabled.
func HTTPMetrics(cfg HTTPMetricsConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.MeterProvider == nil || !cfg.MeterProvider.IsEnabled() {
		return passThrough
	}
	in, err := newHTTPInstruments(cfg.MeterProvider.Meter("http.server"))
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("http metrics unavailable", zap.Error(err))
		}
		return passThrough
	}
	return in.handler
}

// HTTPMetricsWithMeter is HTTPMetrics for a caller-supplied meter.
func HTTPMetricsWithMeter(meter metric.Meter, enabled bool) gin.HandlerFunc {
	if !enabled {
		return passThrough
	}
	in, err := newHTTPInstruments(meter)
	if err != nil {
		return passThrough
	}
	return in.handler
}

func (in *httpInstruments) handler(c *gin.Context) {
	ctx := c.Request.Context()
	began := time.Now()

	in.inFlight.Add(ctx, 1)
	defer in.inFlight.Add(ctx, -1)
	c.Next()

	route := c.FullPath()
	if route == "" {
		// Unmatched paths share one label to keep cardinality bounded.
		route = "unknown"
	}
	status := c.Writer.Status()
	labels := []attribute.KeyValue{
		telemetry.AttrHTTPMethod.String(c.Request.Method),
		telemetry.AttrHTTPRoute.String(route),
	}

	in.requests.Inc(ctx, append(labels, telemetry.AttrHTTPStatusCode.Int(status))...)
	if status >= 400 {
		in.failures.Inc(ctx, append(labels, attrHTTPStatusClass.String(HTTPMetricsStatusGroup(status)))...)
	}
	in.latency.RecordDuration(ctx, time.Since(began), labels...)
	if n := c.Request.ContentLength; n > 0 {
		in.requestSize.Record(ctx, float64(n), labels...)
	}
	if n := c.Writer.Size(); n > 0 {
		in.responseSize.Record(ctx, float64(n), labels...)
	}
}

// HTTPMetricsStatusGroup buckets a status code into its class label.
func HTTPMetricsStatusGroup(code int) string {
	switch code / 100 {
	case 2:
		return "2xx"
	case 3:
		return "3xx"
	case 4:
		return "4xx"
	case 5:
		return "5xx"
	}
	if code >= 600 {
		return "5xx"
	}
	return "other"
}
