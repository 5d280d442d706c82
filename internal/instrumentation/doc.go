// Package instrumentation provides OpenTelemetry metrics for teamsbrief.
//
// The serve command creates a Provider whose recorder counts HTTP requests,
// Microsoft Graph operations, generated summaries and submitted mails.
// Metrics can be exported for Prometheus scraping (default), dumped to
// stdout, or pushed to an OTLP collector. A disabled provider hands out a
// no-op recorder, so the CLI path carries zero instrumentation overhead.
package instrumentation
