package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/teamsbrief/internal/app"
	"github.com/teemow/teamsbrief/internal/config"
	"github.com/teemow/teamsbrief/internal/graph"
	"github.com/teemow/teamsbrief/internal/instrumentation"
	"github.com/teemow/teamsbrief/internal/logging"
	"github.com/teemow/teamsbrief/internal/msauth"
	"github.com/teemow/teamsbrief/internal/server"
	"github.com/teemow/teamsbrief/internal/summarize"
)

// ServeConfig holds settings for the web server command.
type ServeConfig struct {
	Addr           string
	AllowedOrigins []string
	Debug          bool
}

// MetricsConfig holds configuration for the metrics server.
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string

	// Exporter selects the metrics export path (prometheus, stdout, otlp)
	Exporter string

	// OTLPEndpoint is the collector endpoint when Exporter is otlp
	OTLPEndpoint string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		httpAddr       string
		allowedOrigins string
		metricsEnabled bool
		metricsAddr    string
		metricsExport  string
		otlpEndpoint   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web app for summarizing Teams calls",
		Long: `Start a small web app with a form for submitting a Teams meeting join
link or a pasted transcript together with recipients and a subject line.
Submissions run the same pipeline as the summarize command.

Requires the same environment configuration as summarize:
AZURE_CLIENT_ID, AZURE_TENANT_ID and OPENAI_API_KEY (plus optional
OPENAI_MODEL and OPENAI_BASE_URL).

Metrics are exposed on a dedicated port for Prometheus scraping; use
--metrics-exporter to push via OTLP or dump to stdout instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Setup(debugMode)
			return runServe(ServeConfig{
				Addr:           httpAddr,
				AllowedOrigins: strings.Split(allowedOrigins, ","),
				Debug:          debugMode,
			}, MetricsConfig{
				Enabled:      metricsEnabled,
				Addr:         metricsAddr,
				Exporter:     metricsExport,
				OTLPEndpoint: otlpEndpoint,
			})
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&httpAddr, "addr", ":8080", "Web server address")
	cmd.Flags().StringVar(&allowedOrigins, "cors-origins", "*", "Comma-separated allowed CORS origins")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")
	cmd.Flags().StringVar(&metricsExport, "metrics-exporter", "prometheus", "Metrics exporter: prometheus, stdout or otlp")
	cmd.Flags().StringVar(&otlpEndpoint, "otlp-endpoint", "", "OTLP/HTTP collector endpoint (for --metrics-exporter otlp)")

	return cmd
}

func runServe(serveConfig ServeConfig, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load metrics config from environment if not set via flags
	if !metricsConfig.Enabled && os.Getenv("METRICS_ENABLED") == "true" {
		metricsConfig.Enabled = true
	}
	if metricsConfig.Addr == "" || metricsConfig.Addr == ":9090" {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metricsConfig.Addr = addr
		}
	}

	cfg := config.Load()
	if err := cfg.ValidateAzure(); err != nil {
		return err
	}
	if err := cfg.ValidateOpenAI(); err != nil {
		return err
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig(version)
	instrConfig.Enabled = metricsConfig.Enabled
	if metricsConfig.Exporter != "" {
		instrConfig.MetricsExporter = instrumentation.Exporter(metricsConfig.Exporter)
	}
	instrConfig.OTLPEndpoint = metricsConfig.OTLPEndpoint

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error during instrumentation shutdown: %v", err)
		}
	}()

	// Start metrics server if the prometheus exporter is active
	var metricsServer *server.MetricsServer
	if metricsConfig.Enabled && provider.Enabled() &&
		instrConfig.MetricsExporter == instrumentation.ExporterPrometheus {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			log.Printf("Metrics server started on %s", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}()
	}

	// Build the pipeline. The Graph token must already be cached (run the
	// login command first); the serve process cannot drive a device-code
	// prompt per request.
	hc, err := msauth.New(cfg.AzureClientID, cfg.AzureTenantID).Client(shutdownCtx)
	if err != nil {
		return fmt.Errorf("failed to authenticate against Microsoft Graph (run 'teamsbrief login' first): %w", err)
	}

	graphClient := graph.NewClient(hc)
	if provider.Enabled() {
		graphClient = graphClient.WithMetrics(provider.Metrics())
	}

	summarizer, err := summarize.New(summarize.Options{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
	})
	if err != nil {
		return err
	}
	if provider.Enabled() {
		summarizer = summarizer.WithMetrics(provider.Metrics())
	}

	pipeline := app.New(graphClient, summarizer, nil)

	webServer, err := server.New(pipeline, server.Config{
		Addr:           serveConfig.Addr,
		AllowedOrigins: serveConfig.AllowedOrigins,
	})
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}
	if provider.Enabled() {
		webServer.SetMetrics(provider.Metrics())
	}

	fmt.Printf("Web server starting on %s\n", serveConfig.Addr)
	fmt.Printf("  Form: /\n")
	fmt.Printf("  Health endpoint: /healthz\n")
	if metricsServer != nil {
		fmt.Printf("  Metrics endpoint: %s/metrics\n", metricsServer.Addr())
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := webServer.Start(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-shutdownCtx.Done():
		fmt.Println("Shutdown signal received, stopping web server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := webServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down web server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("web server stopped with error: %w", err)
		}
		fmt.Println("Web server stopped normally")
	}

	fmt.Println("Web server gracefully stopped")
	return nil
}
