// Package logging provides structured logging helpers built on log/slog.
//
// It defines the canonical attribute keys used across the codebase, a small
// Logger interface for components that should not depend on slog directly,
// and sanitization helpers for sensitive values such as bearer tokens.
package logging
