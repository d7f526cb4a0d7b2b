package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags.
var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the git commit SHA of the build.
	Commit = "none"
	// Date is the build date.
	Date = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the dev version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dev %s (commit %s, built %s)\n", Version, Commit, Date)
	},
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("dev version {{.Version}}\n")
	rootCmd.AddCommand(versionCmd)
}
