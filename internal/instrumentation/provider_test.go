package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewProviderDisabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	require.NoError(t, err)

	assert.False(t, provider.Enabled())
	require.NotNil(t, provider.Metrics())

	// No-op recorder must be safe to use.
	provider.Metrics().RecordHTTPRequest(context.Background(), "GET", "/", 200, time.Millisecond)
	provider.Metrics().RecordGraphOperation(context.Background(), "fetch_transcript", "success", time.Second)
	provider.Metrics().RecordSummary(context.Background(), "gpt-4o-mini", "success")
	provider.Metrics().RecordMailSent(context.Background(), "success")

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProviderRejectsUnknownExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		Enabled:         true,
		ServiceName:     "teamsbrief",
		MetricsExporter: Exporter("graphite"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown metrics exporter")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantError bool
	}{
		{
			name:      "disabled config is always valid",
			config:    Config{Enabled: false, MetricsExporter: "bogus"},
			wantError: false,
		},
		{
			name:      "prometheus exporter",
			config:    Config{Enabled: true, MetricsExporter: ExporterPrometheus},
			wantError: false,
		},
		{
			name:      "stdout exporter",
			config:    Config{Enabled: true, MetricsExporter: ExporterStdout},
			wantError: false,
		},
		{
			name:      "otlp exporter",
			config:    Config{Enabled: true, MetricsExporter: ExporterOTLP},
			wantError: false,
		},
		{
			name:      "empty exporter falls back to default",
			config:    Config{Enabled: true},
			wantError: false,
		},
		{
			name:      "unknown exporter",
			config:    Config{Enabled: true, MetricsExporter: "graphite"},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestMetricsRecordWithManualReader(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	metrics, err := NewMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordHTTPRequest(ctx, "POST", "/summarize", 200, 42*time.Millisecond)
	metrics.RecordGraphOperation(ctx, "resolve_meeting_id", "success", time.Second)
	metrics.RecordSummary(ctx, "gpt-4o-mini", "success")
	metrics.RecordMailSent(ctx, "error")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	assert.NotEmpty(t, rm.ScopeMetrics)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	// Must not panic.
	m.RecordHTTPRequest(context.Background(), "GET", "/", 200, 0)
	m.RecordGraphOperation(context.Background(), "send_mail", "success", 0)
	m.RecordSummary(context.Background(), "m", "success")
	m.RecordMailSent(context.Background(), "success")
}
