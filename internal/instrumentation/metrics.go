package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrResult    = "result"
	attrModel     = "model"
)

// Metrics provides methods for recording observability metrics.
// The zero value (and a nil pointer) is a safe no-op recorder, so callers
// never need to guard their recording calls.
type Metrics struct {
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	graphOperationsTotal   metric.Int64Counter
	graphOperationDuration metric.Float64Histogram

	summariesTotal metric.Int64Counter
	mailsSentTotal metric.Int64Counter
}

// NewMetrics creates a Metrics instance with all instruments initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.graphOperationsTotal, err = meter.Int64Counter(
		"graph_operations_total",
		metric.WithDescription("Total number of Microsoft Graph operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph_operations_total counter: %w", err)
	}

	m.graphOperationDuration, err = meter.Float64Histogram(
		"graph_operation_duration_seconds",
		metric.WithDescription("Microsoft Graph operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph_operation_duration_seconds histogram: %w", err)
	}

	m.summariesTotal, err = meter.Int64Counter(
		"summaries_total",
		metric.WithDescription("Total number of transcript summaries generated"),
		metric.WithUnit("{summary}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create summaries_total counter: %w", err)
	}

	m.mailsSentTotal, err = meter.Int64Counter(
		"mails_sent_total",
		metric.WithDescription("Total number of summary emails submitted"),
		metric.WithUnit("{mail}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mails_sent_total counter: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records one handled HTTP request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(status)),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordGraphOperation records one Microsoft Graph operation outcome.
func (m *Metrics) RecordGraphOperation(ctx context.Context, operation, result string, duration time.Duration) {
	if m == nil || m.graphOperationsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrResult, result),
	)
	m.graphOperationsTotal.Add(ctx, 1, attrs)
	m.graphOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordSummary records one summarization run.
func (m *Metrics) RecordSummary(ctx context.Context, model, result string) {
	if m == nil || m.summariesTotal == nil {
		return
	}
	m.summariesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrModel, model),
		attribute.String(attrResult, result),
	))
}

// RecordMailSent records one sendMail submission.
func (m *Metrics) RecordMailSent(ctx context.Context, result string) {
	if m == nil || m.mailsSentTotal == nil {
		return
	}
	m.mailsSentTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrResult, result),
	))
}
