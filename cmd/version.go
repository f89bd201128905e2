package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the studentdesk release version.
const Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "studentdesk v%s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
