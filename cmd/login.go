package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/teamsbrief/internal/config"
	"github.com/teemow/teamsbrief/internal/graph"
	"github.com/teemow/teamsbrief/internal/logging"
	"github.com/teemow/teamsbrief/internal/msauth"
)

func newLoginCmd() *cobra.Command {
	var debugMode bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to Microsoft Graph via the device-code flow",
		Long: `Run the device-code sign-in against Azure AD and cache the resulting
token for later runs. The sign-in is verified by fetching the user's
profile from Microsoft Graph.

Requires AZURE_CLIENT_ID and AZURE_TENANT_ID in the environment or a
.env file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Setup(debugMode)
			return runLogin()
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	return cmd
}

func runLogin() error {
	ctx := context.Background()

	cfg := config.Load()
	if err := cfg.ValidateAzure(); err != nil {
		return err
	}

	hc, err := msauth.New(cfg.AzureClientID, cfg.AzureTenantID).Client(ctx)
	if err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}

	profile, err := graph.NewClient(hc).Me(ctx)
	if err != nil {
		return fmt.Errorf("sign-in succeeded but profile lookup failed: %w", err)
	}

	address := profile.Mail
	if address == "" {
		address = profile.UserPrincipalName
	}
	fmt.Printf("Signed in as %s (%s)\n", profile.DisplayName, address)
	return nil
}
