package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/teemow/teamsbrief/internal/graph"
	"github.com/teemow/teamsbrief/internal/logging"
	"github.com/teemow/teamsbrief/internal/summarize"
)

// DefaultSubject is used when no subject line is given.
const DefaultSubject = "Teams Call Summary"

// GraphClient is the Graph surface the pipeline needs. *graph.Client
// satisfies it; tests substitute fakes.
type GraphClient interface {
	ResolveMeetingID(ctx context.Context, joinURL string) (string, error)
	FetchTranscript(ctx context.Context, meetingID string) (string, error)
	SendMail(ctx context.Context, m graph.Mail) error
}

// TranscriptSummarizer produces a summary from transcript text.
type TranscriptSummarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Options describes one summarize-and-email run.
type Options struct {
	// TranscriptPath is a local transcript file. Exactly one of
	// TranscriptPath, TranscriptText and MeetingLink must be set.
	TranscriptPath string

	// TranscriptText is transcript text supplied directly, e.g. pasted
	// into the web form.
	TranscriptText string

	// MeetingLink is a Teams join URL to resolve via Graph.
	MeetingLink string

	// Recipients is the non-empty list of target addresses.
	Recipients []string

	// Subject is the email subject; DefaultSubject when empty.
	Subject string
}

// Result reports what a successful run produced.
type Result struct {
	// MeetingID is set when the transcript came from a meeting link.
	MeetingID string

	// Summary is the generated summary text.
	Summary string

	// Recipients are the addresses the mail was submitted to.
	Recipients []string
}

// App sequences the pipeline: obtain transcript, summarize, render, send.
// Fully sequential; every step completes before the next starts.
type App struct {
	graph      GraphClient
	summarizer TranscriptSummarizer
	logger     logging.Logger
}

// New creates the pipeline. A nil logger falls back to the default.
func New(g GraphClient, s TranscriptSummarizer, logger logging.Logger) *App {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &App{graph: g, summarizer: s, logger: logger}
}

// Validate checks that the options describe a runnable pipeline.
func (o Options) Validate() error {
	sources := 0
	for _, set := range []bool{o.TranscriptPath != "", o.TranscriptText != "", o.MeetingLink != ""} {
		if set {
			sources++
		}
	}
	if sources == 0 {
		return fmt.Errorf("either a transcript or a meeting link is required")
	}
	if sources > 1 {
		return fmt.Errorf("transcript and meeting link are mutually exclusive")
	}
	if len(o.Recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	return nil
}

// Run executes the pipeline and returns what was produced. Any failure
// aborts the run; there is no partial-success state.
func (a *App) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := &Result{Recipients: opts.Recipients}

	transcript, err := a.obtainTranscript(ctx, opts, result)
	if err != nil {
		return nil, err
	}
	if transcript == "" {
		return nil, fmt.Errorf("transcript is empty")
	}

	a.logger.Info("summarizing transcript", "chars", len(transcript))
	summary, err := a.summarizer.Summarize(ctx, transcript)
	if err != nil {
		return nil, err
	}
	result.Summary = summary

	subject := opts.Subject
	if subject == "" {
		subject = DefaultSubject
	}

	a.logger.Info("sending summary email", "recipients", len(opts.Recipients))
	if err := a.graph.SendMail(ctx, graph.Mail{
		Subject:  subject,
		HTMLBody: summarize.RenderEmailHTML(summary, transcript),
		To:       opts.Recipients,
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// obtainTranscript uses the supplied text, reads the local file, or
// resolves the meeting link.
func (a *App) obtainTranscript(ctx context.Context, opts Options, result *Result) (string, error) {
	if opts.TranscriptText != "" {
		return strings.TrimSpace(opts.TranscriptText), nil
	}
	if opts.TranscriptPath != "" {
		slurp, err := os.ReadFile(opts.TranscriptPath)
		if err != nil {
			return "", fmt.Errorf("failed to read transcript: %w", err)
		}
		return strings.TrimSpace(string(slurp)), nil
	}

	a.logger.Info("resolving meeting from join link")
	meetingID, err := a.graph.ResolveMeetingID(ctx, opts.MeetingLink)
	if err != nil {
		return "", err
	}
	result.MeetingID = meetingID

	a.logger.Info("fetching transcript", "meeting_id", meetingID)
	return a.graph.FetchTranscript(ctx, meetingID)
}

// ParseRecipients splits a comma-separated address list, trimming
// whitespace and dropping empty entries.
func ParseRecipients(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
