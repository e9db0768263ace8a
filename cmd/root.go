package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cura",
		Short:         "CuraScan terminal client: session management and AI-assisted screening",
		Long:          "cura is the CuraScan terminal client for clinical staff. It manages the authenticated session (login, logout, whoami) and hosts the consent-gated screening workflow used to submit images for AI-assisted analysis.",
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

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newDashboardCmd(app),
	)

	return rootCmd
}
