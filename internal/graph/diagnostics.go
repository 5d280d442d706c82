package graph

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/teemow/teamsbrief/internal/logging"
)

// Fixed diagnostic artifact names. Each is overwritten on every run.
const (
	artifactMeetingLookup = "meeting_lookup.json"
)

// artifactTranscripts returns the per-version artifact name for a transcript
// listing response, e.g. "transcripts_v1.0.json".
func artifactTranscripts(version string) string {
	return "transcripts_" + version + ".json"
}

// DiagnosticSink receives raw Graph response bodies for post-hoc inspection.
// Writes are best-effort: implementations must not fail the calling
// operation.
type DiagnosticSink interface {
	Write(name string, body []byte)
}

// Discard is a sink that drops all artifacts.
var Discard DiagnosticSink = discardSink{}

type discardSink struct{}

func (discardSink) Write(string, []byte) {}

// FileSink persists artifacts under a directory, one file per artifact name,
// overwritten on every write. Write failures are logged, never raised.
type FileSink struct {
	dir    string
	logger *slog.Logger
}

// NewFileSink creates a sink writing into dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{
		dir:    dir,
		logger: logging.WithService(slog.Default(), "graph"),
	}
}

// Write implements DiagnosticSink.
func (s *FileSink) Write(name string, body []byte) {
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, body, 0644); err != nil {
		s.logger.Warn("failed to write diagnostic artifact",
			slog.String("artifact", path), logging.Err(err))
	}
}
