package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/teemow/teamsbrief/internal/instrumentation"
	"github.com/teemow/teamsbrief/internal/logging"
)

// Options configures the Summarizer.
type Options struct {
	// APIKey authenticates against the completion endpoint. Required.
	APIKey string

	// Model is the chat model name, e.g. "gpt-4o-mini".
	Model string

	// BaseURL overrides the API endpoint (e.g. an Azure OpenAI deployment).
	BaseURL string
}

// Summarizer turns raw meeting transcripts into structured summaries via a
// chat-completion endpoint.
type Summarizer struct {
	client  openai.Client
	model   string
	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

// New creates a Summarizer.
func New(opts Options) (*Summarizer, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("summarizer API key not set")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("summarizer model not set")
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &Summarizer{
		client: openai.NewClient(reqOpts...),
		model:  opts.Model,
		logger: logging.WithService(slog.Default(), "summarize"),
	}, nil
}

// WithMetrics attaches a metrics recorder.
func (s *Summarizer) WithMetrics(m *instrumentation.Metrics) *Summarizer {
	s.metrics = m
	return s
}

// Model returns the configured model name.
func (s *Summarizer) Model() string {
	return s.model
}

// Summarize sends the transcript to the completion endpoint and returns the
// generated summary text. The transcript is capped before sending.
func (s *Summarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt(transcript)),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		s.metrics.RecordSummary(ctx, s.model, logging.StatusError)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		s.metrics.RecordSummary(ctx, s.model, logging.StatusError)
		return "", fmt.Errorf("chat completion returned no choices")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		s.metrics.RecordSummary(ctx, s.model, logging.StatusError)
		return "", fmt.Errorf("chat completion returned empty content")
	}

	s.metrics.RecordSummary(ctx, s.model, logging.StatusSuccess)
	s.logger.Info("transcript summarized",
		logging.Operation("summarize"),
		slog.String("model", s.model),
		slog.Int("transcript_chars", len(transcript)),
		slog.Int("summary_chars", len(summary)))
	return summary, nil
}
