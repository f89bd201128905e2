package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"studentdesk/internal/api"
	"studentdesk/internal/config"
	"studentdesk/internal/notify"
	"studentdesk/internal/settings"
	"studentdesk/internal/tui"
)

var (
	watchServerURL string
	watchDownloads string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open the interactive portal watcher",
	Long: `Open the interactive portal watcher.

Sign in, browse schedule, homework and grades, and keep the terminal
open to get notified when anything changes on the server.

USAGE:
    studentdesk watch [OPTIONS]

OPTIONS:
    --server <url>     Portal server URL (default from config)
    --downloads <dir>  Directory for downloaded attachments (default ".")
    -h, --help         Show this help`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if watchServerURL == "" {
			watchServerURL = config.Get("api_url", "http://127.0.0.1:5000")
		}
		loaded, err := settings.Load()
		if err != nil {
			return err
		}
		timeout := time.Duration(config.GetInt("request_timeout_sec", 10)) * time.Second

		return tui.Run(tui.Options{
			Client:       api.New(watchServerURL, timeout),
			Settings:     loaded,
			SettingsPath: settings.Path(),
			StateDir:     config.Get("state_dir", ""),
			DownloadDir:  watchDownloads,
			Notifier:     notify.NewDesktop(),
		})
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchServerURL, "server", "", "Portal server URL")
	watchCmd.Flags().StringVar(&watchDownloads, "downloads", ".", "Directory for downloaded attachments")
	rootCmd.AddCommand(watchCmd)
}
