// Package graph is the Microsoft Graph client for teamsbrief.
//
// It resolves Teams meeting join URLs to meeting IDs, fetches meeting
// transcripts with a fixed fallback chain (v1.0 listing, then beta; inline
// content, then content-URL download negotiated over several Accept
// headers), and submits summary emails through the sendMail endpoint.
//
// Raw response bodies are persisted through an injectable DiagnosticSink so
// failed runs can be inspected after the fact without real disk I/O in
// tests. All failures surface as typed errors: ResolutionError,
// DownloadError and NoTranscriptError.
package graph
