package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"studentdesk/internal/api"
	"studentdesk/internal/colors"
	"studentdesk/internal/config"
	"studentdesk/internal/dispatch"
	"studentdesk/internal/formatter"
	"studentdesk/internal/hooks"
	"studentdesk/internal/notify"
	"studentdesk/internal/settings"
	"studentdesk/internal/watch"
)

var (
	followServerURL string
	followName      string
	followPassword  string
	followInterval  float64
	followDesktop   bool
	followFormat    string
)

var followCmd = &cobra.Command{
	Use:     "follow",
	Aliases: []string{"poll"},
	Short:   "Monitor portal changes in the terminal",
	Long: `Monitor portal changes in the terminal.

Signs in with the given credentials and polls the server, printing one
line per detected change. Useful for scripting or running inside a
multiplexer pane.

USAGE:
    studentdesk follow --name <full name> --password <password> [OPTIONS]

OPTIONS:
    --server <url>     Portal server URL (default from config)
    --name <name>      Student full name
    --password <pw>    Student password
    --interval <secs>  Poll interval (default from settings)
    --desktop          Also send desktop notifications
    --format <fmt>     Output format: a preset name or a {{variable}} template
    -h, --help         Show this help`,
	RunE: func(c *cobra.Command, args []string) error {
		if followServerURL == "" {
			followServerURL = config.Get("api_url", "http://127.0.0.1:5000")
		}
		if followName == "" || followPassword == "" {
			return fmt.Errorf("--name and --password are required")
		}
		loaded, err := settings.Load()
		if err != nil {
			return err
		}

		timeout := time.Duration(config.GetInt("request_timeout_sec", 10)) * time.Second
		client := api.New(followServerURL, timeout)
		session, err := client.Login(c.Context(), followName, followPassword)
		if err != nil {
			return err
		}
		colors.Success("Signed in as", session.FullName)

		interval := loaded.PollInterval()
		if followInterval > 0 {
			interval = time.Duration(followInterval * float64(time.Second))
		}
		notifier := notify.Noop()
		if followDesktop {
			notifier = notify.NewDesktop()
		}

		opts := FollowOptions{
			Source:   client.SourceFor(session.ID),
			Store:    watch.NewFileStore(watch.SnapshotPath(config.Get("state_dir", ""), session.ID)),
			Interval: interval,
			Notifier: notifier,
			Format:   followFormat,
			Student:  session.FullName,
			Dispatch: dispatch.Options{
				Homework: loaded.NotifyHomework,
				Schedule: loaded.NotifySchedule,
				Grades:   loaded.NotifyGrades,
				Sound:    loaded.NotifySound,
			},
		}
		return Follow(c.Context(), opts)
	},
}

// FollowOptions holds all parameters for following portal changes.
type FollowOptions struct {
	Source   watch.Source
	Store    watch.Store
	Interval time.Duration
	Notifier notify.Notifier
	Dispatch dispatch.Options
	// Format is a preset name or a {{variable}} template for change lines.
	// Empty selects the built-in line format.
	Format string
	// Student is the watched student's full name, exposed to templates
	// and hooks.
	Student string
	// Output receives the change lines. Defaults to os.Stdout.
	Output io.Writer
	// TickChan overrides the poll ticker, used by tests.
	TickChan <-chan time.Time
}

// Follow polls the portal and prints detected changes until the context
// is cancelled or an interrupt arrives.
func Follow(ctx context.Context, opts FollowOptions) error {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Noop()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var tmpl string
	if opts.Format != "" {
		expanded, err := formatter.Expand(opts.Format)
		if err != nil {
			return err
		}
		tmpl = expanded
	}
	engine := formatter.NewTemplateEngine()

	dispatcher := dispatch.New(opts.Notifier, nil, opts.Dispatch)

	var lastReachable = true
	poller := watch.NewPoller(watch.Options{
		Source:   opts.Source,
		Store:    opts.Store,
		Interval: opts.Interval,
		TickChan: opts.TickChan,
		OnDeltas: func(deltas watch.Deltas, snapshot watch.Snapshot) {
			for _, req := range dispatcher.Dispatch(deltas) {
				if tmpl != "" {
					line, err := engine.Substitute(tmpl, formatter.VariableContext{
						Category: req.Category,
						Title:    req.Title,
						Body:     req.Body,
						Student:  opts.Student,
						At:       time.Now(),
					})
					if err == nil {
						_, _ = fmt.Fprintln(opts.Output, line)
					}
				} else {
					printChange(opts.Output, req)
				}
				_ = hooks.Run(hooks.EventChange, map[string]string{
					"CATEGORY": req.Category.String(),
					"TITLE":    req.Title,
					"BODY":     req.Body,
					"STUDENT":  opts.Student,
				})
			}
		},
		OnStatus: func(status watch.Status) {
			if status.Reachable != lastReachable {
				lastReachable = status.Reachable
				if status.Reachable {
					colors.Info("Server reachable again")
					_ = hooks.Run(hooks.EventReachable, nil)
				} else {
					colors.Warning("Server unreachable, keeping last known state")
					_ = hooks.Run(hooks.EventUnreachable, nil)
				}
			}
		},
	})

	colors.Info("Watching for changes (Ctrl+C to stop)...")
	poller.Start(ctx)
	<-ctx.Done()
	poller.Stop()
	return nil
}

// printChange writes one change line in a grep-friendly format.
func printChange(w io.Writer, req dispatch.Request) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	if req.Body != "" {
		_, _ = fmt.Fprintf(w, "[%s] [%s] %s (%s)\n", ts, req.Category, req.Title, req.Body)
		return
	}
	_, _ = fmt.Fprintf(w, "[%s] [%s] %s\n", ts, req.Category, req.Title)
}

func init() {
	followCmd.Flags().StringVar(&followServerURL, "server", "", "Portal server URL")
	followCmd.Flags().StringVar(&followName, "name", "", "Student full name")
	followCmd.Flags().StringVar(&followPassword, "password", "", "Student password")
	followCmd.Flags().Float64Var(&followInterval, "interval", 0, "Poll interval in seconds")
	followCmd.Flags().BoolVar(&followDesktop, "desktop", false, "Also send desktop notifications")
	followCmd.Flags().StringVar(&followFormat, "format", "", "Output format: preset name or {{variable}} template")
	rootCmd.AddCommand(followCmd)
}
