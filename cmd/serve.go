package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"studentdesk/internal/colors"
	"studentdesk/internal/config"
	"studentdesk/internal/server"
	"studentdesk/internal/server/storage"
)

var (
	serveAddress string
	serveDBPath  string
	serveUploads string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portal API server",
	Long: `Run the portal API server.

USAGE:
    studentdesk serve [OPTIONS]

OPTIONS:
    --address <host:port>  Listen address (default from config)
    --db <path>            SQLite database path (default from config)
    --uploads <dir>        Attachment upload directory (default from config)
    -h, --help             Show this help`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddress == "" {
			serveAddress = config.Get("server_addr", "127.0.0.1:5000")
		}
		if serveDBPath == "" {
			serveDBPath = config.Get("db_path", "")
		}
		if serveUploads == "" {
			serveUploads = config.Get("upload_dir", "")
		}

		store, err := storage.New(serveDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		srv := server.New(server.Options{
			Address:   serveAddress,
			Storage:   store,
			UploadDir: serveUploads,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		colors.Info("Serving on", serveAddress)
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "Listen address")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", "SQLite database path")
	serveCmd.Flags().StringVar(&serveUploads, "uploads", "", "Attachment upload directory")
	rootCmd.AddCommand(serveCmd)
}
