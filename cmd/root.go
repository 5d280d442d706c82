package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the teamsbrief application
var rootCmd = &cobra.Command{
	Use:   "teamsbrief",
	Short: "Summarizes Teams call transcripts and emails the result",
	Long: `teamsbrief obtains a Microsoft Teams meeting transcript, either from a
local file or via Microsoft Graph, generates a summary with a chat
completion model, and emails it through the signed-in user's mailbox.

It can run as:
  - A standalone CLI tool (default)
  - A small web app with a submission form (serve)`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "teamsbrief version %s\n" .Version}}`)

	// If no subcommand is provided, run the summarize command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "summarize")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newSummarizeCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
