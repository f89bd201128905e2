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
	submitServerURL   string
	submitName        string
	submitPassword    string
	submitTitle       string
	submitDescription string
	submitDueDate     string
	submitFile        string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit homework from the command line",
	Long: `Submit homework from the command line.

USAGE:
    studentdesk submit --name <full name> --password <pw> --title <title> [OPTIONS]

OPTIONS:
    --server <url>       Portal server URL (default from config)
    --name <name>        Student full name
    --password <pw>      Student password
    --title <title>      Homework title
    --description <txt>  Homework description
    --due <date>         Due date, e.g. 2006-01-02
    --file <path>        Attachment file to upload
    -h, --help           Show this help`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if submitServerURL == "" {
			submitServerURL = config.Get("api_url", "http://127.0.0.1:5000")
		}
		if submitName == "" || submitPassword == "" {
			return fmt.Errorf("--name and --password are required")
		}
		if submitTitle == "" {
			return fmt.Errorf("--title is required")
		}

		timeout := time.Duration(config.GetInt("request_timeout_sec", 10)) * time.Second
		client := api.New(submitServerURL, timeout)
		session, err := client.Login(cmd.Context(), submitName, submitPassword)
		if err != nil {
			return err
		}

		result, err := client.SubmitHomework(cmd.Context(), session.ID, api.Submission{
			Title:       submitTitle,
			Description: submitDescription,
			DueDate:     submitDueDate,
			FilePath:    submitFile,
		})
		if err != nil {
			return err
		}
		if result.Attachment != "" {
			colors.Success(fmt.Sprintf("Submitted %q with attachment %s (id %d)", result.Title, result.Attachment, result.ID))
		} else {
			colors.Success(fmt.Sprintf("Submitted %q (id %d)", result.Title, result.ID))
		}
		return nil
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitServerURL, "server", "", "Portal server URL")
	submitCmd.Flags().StringVar(&submitName, "name", "", "Student full name")
	submitCmd.Flags().StringVar(&submitPassword, "password", "", "Student password")
	submitCmd.Flags().StringVar(&submitTitle, "title", "", "Homework title")
	submitCmd.Flags().StringVar(&submitDescription, "description", "", "Homework description")
	submitCmd.Flags().StringVar(&submitDueDate, "due", "", "Due date")
	submitCmd.Flags().StringVar(&submitFile, "file", "", "Attachment file to upload")
	rootCmd.AddCommand(submitCmd)
}
