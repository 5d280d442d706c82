// Package cmd implements the command-line interface for teamsbrief.
//
// This package provides the following commands:
//   - summarize: Summarize a Teams call transcript and email the result
//   - login: Sign in to Microsoft Graph via the device-code flow
//   - serve: Start the web app with a submission form
//   - version: Display version information
//
// The summarize command is the default command when no subcommand is specified.
package cmd
