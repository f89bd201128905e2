package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"studentdesk/internal/api"
	"studentdesk/internal/colors"
	"studentdesk/internal/config"
)

var (
	pushServerURL   string
	pushProgram     string
	pushTitle       string
	pushDescription string
	pushDueDate     string
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push homework to every student of a program",
	Long: `Push homework to every student of a program.

This is the teacher-side operation: the entry appears in the homework
list of all students enrolled in the program and their watchers pick it
up on the next poll.

USAGE:
    studentdesk push --program <program> --title <title> [OPTIONS]

OPTIONS:
    --server <url>       Portal server URL (default from config)
    --program <name>     Target program
    --title <title>      Homework title
    --description <txt>  Homework description
    --due <date>         Due date, e.g. 2006-01-02
    -h, --help           Show this help`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if pushServerURL == "" {
			pushServerURL = config.Get("api_url", "http://127.0.0.1:5000")
		}
		if pushProgram == "" || pushTitle == "" {
			return fmt.Errorf("--program and --title are required")
		}

		timeout := time.Duration(config.GetInt("request_timeout_sec", 10)) * time.Second
		client := api.New(pushServerURL, timeout)
		id, err := client.PushHomework(cmd.Context(), pushProgram, pushTitle, pushDescription, pushDueDate)
		if err != nil {
			return err
		}
		colors.Success(fmt.Sprintf("Pushed %q to program %s (id %d)", pushTitle, pushProgram, id))
		return nil
	},
}

func init() {
	pushCmd.Flags().StringVar(&pushServerURL, "server", "", "Portal server URL")
	pushCmd.Flags().StringVar(&pushProgram, "program", "", "Target program")
	pushCmd.Flags().StringVar(&pushTitle, "title", "", "Homework title")
	pushCmd.Flags().StringVar(&pushDescription, "description", "", "Homework description")
	pushCmd.Flags().StringVar(&pushDueDate, "due", "", "Due date")
	rootCmd.AddCommand(pushCmd)
}
