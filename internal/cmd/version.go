package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information, overridden at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the qanotes version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if GitCommit != "" {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "qanotes %s (%s)\n", Version, GitCommit)
			return
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "qanotes %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = Version
}
