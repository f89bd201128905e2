// Package cmd implements the studentdesk command line interface.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"studentdesk/internal/config"
	"studentdesk/internal/logging"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "studentdesk",
	Short: "Watch your student portal and get notified when something changes.",
	Long:  `Watch your student portal and get notified when something changes.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Load()
		return logging.InitGlobal()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.ShutdownGlobal()
	},
}

// Execute runs the root command. It is called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.SilenceUsage = true

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Print(helpText(cmd))
	})
}

func helpText(cmd *cobra.Command) string {
	commandOrder := []string{
		"serve",
		"seed",
		"watch",
		"follow",
		"submit",
		"push",
		"settings",
		"help",
		"version",
	}

	var cmdLines []string
	for _, name := range commandOrder {
		var found *cobra.Command
		for _, c := range cmd.Root().Commands() {
			if c.Name() == name {
				found = c
				break
			}
		}
		if found == nil {
			continue
		}
		cmdLines = append(cmdLines, fmt.Sprintf("    %-16s %s", found.Use, found.Short))
	}

	return fmt.Sprintf(`studentdesk v%s

Watch your student portal and get notified when something changes.

USAGE:
    studentdesk [COMMAND] [OPTIONS]

COMMANDS:
%s

OPTIONS:
    -h, --help      Show help message
`, Version, strings.Join(cmdLines, "\n"))
}
