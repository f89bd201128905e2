package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"studentdesk/internal/colors"
	"studentdesk/internal/settings"
)

var settingsResetForce bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage watcher settings",
	Long: `Manage watcher settings.

USAGE:
    studentdesk settings <subcommand>

SUBCOMMANDS:
    show     Display current settings
    reset    Reset settings to defaults`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := settings.Load()
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(loaded, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset settings to defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := settings.Path()
		if !settingsResetForce {
			fmt.Fprintf(cmd.OutOrStdout(), "Delete %s and restore defaults? [y/N] ", path)
			reader := bufio.NewReader(cmd.InOrStdin())
			answer, _ := reader.ReadString('\n')
			answer = strings.ToLower(strings.TrimSpace(answer))
			if answer != "y" && answer != "yes" {
				colors.Info("Aborted")
				return nil
			}
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		colors.Success("Settings reset to defaults")
		return nil
	},
}

func init() {
	settingsResetCmd.Flags().BoolVar(&settingsResetForce, "force", false, "Reset without confirmation")
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}
