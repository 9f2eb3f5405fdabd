// Package cli implements the datafence command tree. Commands operate
// on the same SQLite file the gateway uses, so decisions made from the
// command line and over HTTP see identical state.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "datafence",
	Short: "Cross-border data transfer governance",
	Long:  "Classifies data assets, gates outbound transfers against approvals and\nblacklists, desensitizes payload fields, and scores transfer scenarios.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
