package instrumentation

import "fmt"

// Exporter selects how metrics leave the process.
type Exporter string

const (
	// ExporterPrometheus exposes metrics for scraping via the metrics server.
	ExporterPrometheus Exporter = "prometheus"

	// ExporterStdout periodically dumps metrics to stdout. Useful for
	// development.
	ExporterStdout Exporter = "stdout"

	// ExporterOTLP pushes metrics to an OTLP/HTTP collector.
	ExporterOTLP Exporter = "otlp"
)

// Config holds instrumentation settings.
type Config struct {
	// Enabled determines whether any metrics are collected at all.
	Enabled bool

	// ServiceName identifies this service in exported metrics.
	ServiceName string

	// ServiceVersion is the build version attached to the resource.
	ServiceVersion string

	// MetricsExporter selects the export path. Defaults to prometheus.
	MetricsExporter Exporter

	// OTLPEndpoint is the collector endpoint (host:port) when
	// MetricsExporter is otlp. Empty uses the exporter's default.
	OTLPEndpoint string
}

// DefaultConfig returns the configuration used by the serve command.
func DefaultConfig(serviceVersion string) Config {
	return Config{
		Enabled:         true,
		ServiceName:     "teamsbrief",
		ServiceVersion:  serviceVersion,
		MetricsExporter: ExporterPrometheus,
	}
}

// Validate checks the exporter selection.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.MetricsExporter {
	case ExporterPrometheus, ExporterStdout, ExporterOTLP:
		return nil
	case "":
		return nil
	default:
		return fmt.Errorf("unknown metrics exporter %q", c.MetricsExporter)
	}
}
