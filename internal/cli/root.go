// Package cli implements the infrasync terminal frontend: login, session
// inspection, monitor management, digests, organization and billing.
package cli

import (
	"github.com/spf13/cobra"
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "infrasync",
		Short:         "Infrasync CLI: repository monitors and digests from the terminal",
		Long:          "infrasync manages repository monitors, digest delivery, organization membership and billing against an Infrasync backend.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		return app.shutdown()
	}

	rootCmd.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newMonitorsCmd(app),
		newDigestsCmd(app),
		newOrgCmd(app),
		newBillingCmd(app),
	)

	return rootCmd
}
