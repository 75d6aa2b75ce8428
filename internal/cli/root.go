// Package cli implements the journal command line.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the journal command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "journal",
		Short: "Keep a journal from the command line",
		Long: `journal talks to the journal service. Log in once; the session is
stored in the configured credential backend and refreshed automatically.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newRegisterCmd(app),
		newResetPasswordCmd(app),
		newStatusCmd(app),
		newWhoamiCmd(app),
		newEntriesCmd(app),
		newCategoriesCmd(app),
		newSummaryCmd(app),
	)
	return rootCmd
}
