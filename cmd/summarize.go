package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/teamsbrief/internal/app"
	"github.com/teemow/teamsbrief/internal/config"
	"github.com/teemow/teamsbrief/internal/graph"
	"github.com/teemow/teamsbrief/internal/logging"
	"github.com/teemow/teamsbrief/internal/msauth"
	"github.com/teemow/teamsbrief/internal/summarize"
)

func newSummarizeCmd() *cobra.Command {
	var (
		transcriptPath string
		meetingLink    string
		recipients     string
		subject        string
		model          string
		openaiBaseURL  string
		debugMode      bool
		diagDir        string
	)

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize a Teams call transcript and email the result",
		Long: `Obtain a transcript from a local file or by resolving a Teams meeting
join link via Microsoft Graph, generate a summary with a chat completion
model, and email the summary to the given recipients.

Configuration is read from the environment (a .env file in the working
directory is honored):
  AZURE_CLIENT_ID, AZURE_TENANT_ID  Azure AD app for the device-code flow
  OPENAI_API_KEY                    API key for the summarization endpoint
  OPENAI_MODEL, OPENAI_BASE_URL     Optional model/endpoint overrides

The first run against Graph starts a device-code sign-in; the token is
cached for later runs (see the login command).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Setup(debugMode)
			return runSummarize(summarizeOptions{
				transcriptPath: transcriptPath,
				meetingLink:    meetingLink,
				recipients:     recipients,
				subject:        subject,
				model:          model,
				openaiBaseURL:  openaiBaseURL,
				debug:          debugMode,
				diagDir:        diagDir,
			})
		},
	}

	cmd.Flags().StringVar(&transcriptPath, "transcript", "", "Path to a local transcript file")
	cmd.Flags().StringVar(&meetingLink, "meeting-link", "", "Teams meeting join URL to resolve via Microsoft Graph")
	cmd.Flags().StringVar(&recipients, "to", "", "Comma-separated recipient email addresses (required)")
	cmd.Flags().StringVar(&subject, "subject", app.DefaultSubject, "Email subject line")
	cmd.Flags().StringVar(&model, "model", "", "Chat model to use. Can also use OPENAI_MODEL env var.")
	cmd.Flags().StringVar(&openaiBaseURL, "openai-base-url", "", "Override the completion API endpoint. Can also use OPENAI_BASE_URL env var.")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging and diagnostic artifact persistence")
	cmd.Flags().StringVar(&diagDir, "diag-dir", ".", "Directory for diagnostic artifacts (with --debug)")

	return cmd
}

type summarizeOptions struct {
	transcriptPath string
	meetingLink    string
	recipients     string
	subject        string
	model          string
	openaiBaseURL  string
	debug          bool
	diagDir        string
}

func runSummarize(opts summarizeOptions) error {
	ctx := context.Background()

	cfg := config.Load()
	if opts.model != "" {
		cfg.OpenAIModel = opts.model
	}
	if opts.openaiBaseURL != "" {
		cfg.OpenAIBaseURL = opts.openaiBaseURL
	}

	runOpts := app.Options{
		TranscriptPath: opts.transcriptPath,
		MeetingLink:    opts.meetingLink,
		Recipients:     app.ParseRecipients(opts.recipients),
		Subject:        opts.subject,
	}
	if err := runOpts.Validate(); err != nil {
		return err
	}
	if err := cfg.ValidateOpenAI(); err != nil {
		return err
	}
	// Graph is needed even for file input: the summary is sent via sendMail.
	if err := cfg.ValidateAzure(); err != nil {
		return err
	}

	hc, err := msauth.New(cfg.AzureClientID, cfg.AzureTenantID).Client(ctx)
	if err != nil {
		return fmt.Errorf("failed to authenticate against Microsoft Graph: %w", err)
	}

	graphClient := graph.NewClient(hc)
	if opts.debug {
		graphClient = graphClient.WithDiagnostics(graph.NewFileSink(opts.diagDir))
	}

	summarizer, err := summarize.New(summarize.Options{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
	})
	if err != nil {
		return err
	}

	result, err := app.New(graphClient, summarizer, nil).Run(ctx, runOpts)
	if err != nil {
		return err
	}

	fmt.Printf("Summary sent to %d recipient(s).\n", len(result.Recipients))
	if result.MeetingID != "" {
		fmt.Printf("Meeting ID: %s\n", result.MeetingID)
	}
	return nil
}
