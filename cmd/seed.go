package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"studentdesk/internal/colors"
	"studentdesk/internal/config"
	"studentdesk/internal/server/storage"
)

var seedDBPath string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with demo data",
	Long: `Populate the database with demo students, schedule, homework and grades.

The demo accounts are "Ivanov Ivan Ivanovich" (password1) and
"Petrova Maria Sergeevna" (password2). Seeding is refused when the
database already contains students.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedDBPath == "" {
			seedDBPath = config.Get("db_path", "")
		}
		store, err := storage.New(seedDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		err = store.Seed(cmd.Context())
		if errors.Is(err, storage.ErrAlreadySeeded) {
			colors.Warning("Database already contains students, nothing to do")
			return nil
		}
		if err != nil {
			return err
		}
		colors.Success("Demo data created in", seedDBPath)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedDBPath, "db", "", "SQLite database path")
	rootCmd.AddCommand(seedCmd)
}
