// Package tui implements the interactive watch application: login,
// tabbed views over the tracked collections, live poll results and the
// on-screen notification stack.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"studentdesk/internal/api"
	"studentdesk/internal/dispatch"
	"studentdesk/internal/logging"
	"studentdesk/internal/notify"
	"studentdesk/internal/settings"
	"studentdesk/internal/stack"
	"studentdesk/internal/watch"
)

type screen int

const (
	screenLogin screen = iota
	screenMain
)

type tab int

const (
	tabOverview tab = iota
	tabSchedule
	tabHomework
	tabGrades
	tabSettings
)

var tabTitles = []string{"Overview", "Schedule", "Homework", "Grades", "Settings"}

// Options configures the watch application.
type Options struct {
	// Client talks to the portal server.
	Client *api.Client
	// Settings is the initial state; live edits go through the settings tab.
	Settings *settings.Settings
	// SettingsPath is watched for external edits. Empty disables the watcher.
	SettingsPath string
	// StateDir holds persisted poll snapshots.
	StateDir string
	// DownloadDir receives downloaded attachments.
	DownloadDir string
	// Notifier delivers desktop notifications. Defaults to a no-op.
	Notifier notify.Notifier
}

// Model is the bubbletea model for the watch application.
type Model struct {
	opts Options
	log  logging.Logger
	send func(tea.Msg)

	screen screen
	tab    tab
	width  int
	height int

	login  *loginForm
	submit *submitForm

	session  api.Session
	snapshot watch.Snapshot
	status   watch.Status
	cursor   map[tab]int
	setRow   int
	dirty    bool

	placements []stack.Placement
	stack      *stack.Stack
	dispatcher *dispatch.Dispatcher
	poller     *watch.Poller
	store      watch.Store
	interval   time.Duration
	watchCtx   context.Context
	cancel     context.CancelFunc

	flash string
}

// NewModel creates the application model.
func NewModel(opts Options) *Model {
	if opts.Settings == nil {
		opts.Settings = settings.DefaultSettings()
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Noop()
	}
	return &Model{
		opts:   opts,
		log:    logging.GetGlobal().With("component", "tui"),
		send:   func(tea.Msg) {},
		screen: screenLogin,
		login:  newLoginForm(opts.Settings.LastFullName),
		cursor: make(map[tab]int),
	}
}

// Run starts the application and blocks until it exits.
func Run(opts Options) error {
	m := NewModel(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.send = p.Send
	_, err := p.Run()
	m.shutdown()
	return err
}

func (m *Model) Init() tea.Cmd {
	return m.login.focusCmd()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case sessionMsg:
		return m.handleSession(msg)

	case snapshotMsg:
		m.snapshot = msg.snapshot
		return m, nil

	case pollStatusMsg:
		m.status = watch.Status(msg)
		return m, nil

	case stackMsg:
		m.placements = msg
		return m, nil

	case settingsMsg:
		return m.handleSettingsReload((*settings.Settings)(msg))

	case refreshedMsg:
		if msg.err != nil {
			m.flash = fmt.Sprintf("refresh failed: %v", msg.err)
			return m, nil
		}
		m.snapshot.Homework = msg.homework
		m.snapshot.Schedule = msg.schedule
		m.snapshot.Grades = msg.grades
		m.flash = "refreshed"
		return m, nil

	case submittedMsg:
		m.submit = nil
		if msg.err != nil {
			m.flash = fmt.Sprintf("submit failed: %v", msg.err)
		} else {
			m.flash = fmt.Sprintf("submitted %q", msg.result.Title)
		}
		return m, nil

	case downloadedMsg:
		if msg.err != nil {
			m.flash = fmt.Sprintf("download failed: %v", msg.err)
		} else {
			m.flash = fmt.Sprintf("saved %s", msg.path)
		}
		return m, nil
	}

	if m.screen == screenLogin {
		return m, m.login.update(msg)
	}
	if m.submit != nil {
		return m, m.submit.update(msg)
	}
	return m, nil
}

func (m *Model) handleSession(msg sessionMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.login.setError(msg.err)
		return m, nil
	}
	m.session = msg.session
	m.screen = screenMain
	m.flash = fmt.Sprintf("signed in as %s", msg.session.FullName)
	m.log.Info("session started", "student_id", msg.session.ID)

	m.opts.Settings.LastFullName = msg.session.FullName
	if err := m.persistSettings(); err != nil {
		m.log.Warn("settings save failed", "error", err)
	}

	m.startWatch()
	return m, m.refreshCmd()
}

// startWatch wires the notification stack, dispatcher, poller and the
// settings file watcher for the signed-in student.
func (m *Model) startWatch() {
	st := m.opts.Settings
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	m.stack = stack.New(stack.Options{
		OnChange: func(placements []stack.Placement) {
			m.send(stackMsg(placements))
		},
	})
	m.dispatcher = dispatch.New(m.opts.Notifier, func(req dispatch.Request) {
		m.stack.Show(req.Category, req.Title, req.Body, req.Duration)
	}, dispatch.Options{
		Homework: st.NotifyHomework,
		Schedule: st.NotifySchedule,
		Grades:   st.NotifyGrades,
		Sound:    st.NotifySound,
		Duration: st.NotificationDuration(),
	})

	if m.opts.StateDir != "" {
		m.store = watch.NewFileStore(watch.SnapshotPath(m.opts.StateDir, m.session.ID))
	}
	m.watchCtx = ctx
	m.startPoller(st.PollInterval())
	if st.AutoPollAfterLogin {
		m.poller.Start(ctx)
	}

	if m.opts.SettingsPath != "" {
		watcher := settings.NewWatcher(m.opts.SettingsPath, st)
		go func() {
			if err := watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				m.log.Warn("settings watcher stopped", "error", err)
			}
		}()
		ch := watcher.Subscribe(1)
		go func() {
			for s := range ch {
				m.send(settingsMsg(s))
			}
		}()
	}
}

// startPoller builds a fresh poller for the signed-in student. The
// snapshot store is shared across pollers so the baseline survives a
// restart.
func (m *Model) startPoller(interval time.Duration) {
	m.interval = interval
	m.poller = watch.NewPoller(watch.Options{
		Source:   m.opts.Client.SourceFor(m.session.ID),
		Store:    m.store,
		Interval: interval,
		OnDeltas: func(deltas watch.Deltas, snapshot watch.Snapshot) {
			m.dispatcher.Dispatch(deltas)
			m.send(snapshotMsg{deltas: deltas, snapshot: snapshot})
		},
		OnStatus: func(status watch.Status) {
			m.send(pollStatusMsg(status))
		},
	})
}

func (m *Model) handleSettingsReload(s *settings.Settings) (tea.Model, tea.Cmd) {
	m.opts.Settings = s
	m.dirty = false
	if m.dispatcher != nil {
		m.dispatcher.SetOptions(dispatch.Options{
			Homework: s.NotifyHomework,
			Schedule: s.NotifySchedule,
			Grades:   s.NotifyGrades,
			Sound:    s.NotifySound,
			Duration: s.NotificationDuration(),
		})
	}
	if m.poller != nil && s.PollInterval() != m.interval {
		running := m.poller.Running()
		m.poller.Stop()
		m.startPoller(s.PollInterval())
		if running {
			m.poller.Start(m.watchCtx)
		}
	}
	m.flash = "settings reloaded"
	return m, nil
}

// shutdown tears down the poll loop and the notification stack.
func (m *Model) shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.poller != nil {
		m.poller.Stop()
	}
	if m.stack != nil {
		m.stack.Close()
	}
}

func (m *Model) persistSettings() error {
	if m.opts.SettingsPath != "" {
		return settings.SaveTo(m.opts.SettingsPath, m.opts.Settings)
	}
	return settings.Save(m.opts.Settings)
}

func (m *Model) loginCmd(form loginSubmission) tea.Cmd {
	client := m.opts.Client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()
		if form.register {
			session, err := client.Register(ctx, api.RegisterRequest{
				FullName: form.fullName,
				Program:  form.program,
				Year:     form.year,
				Password: form.password,
			})
			return sessionMsg{session: session, err: err}
		}
		session, err := client.Login(ctx, form.fullName, form.password)
		return sessionMsg{session: session, err: err}
	}
}

func (m *Model) refreshCmd() tea.Cmd {
	client := m.opts.Client
	id := m.session.ID
	day := m.opts.Settings.ScheduleDay
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()
		homework, err := client.Homework(ctx, id)
		if err != nil {
			return refreshedMsg{err: err}
		}
		schedule, err := client.Schedule(ctx, id, day)
		if err != nil {
			return refreshedMsg{err: err}
		}
		grades, err := client.Grades(ctx, id)
		if err != nil {
			return refreshedMsg{err: err}
		}
		return refreshedMsg{homework: homework, schedule: schedule, grades: grades}
	}
}

func (m *Model) pollNowCmd() tea.Cmd {
	poller := m.poller
	if poller == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := poller.PollOnce(ctx); err != nil && !errors.Is(err, watch.ErrPollInFlight) {
			return refreshedMsg{err: err}
		}
		return nil
	}
}

func (m *Model) downloadCmd(homeworkID int) tea.Cmd {
	client := m.opts.Client
	dir := m.opts.DownloadDir
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		path, err := client.DownloadAttachment(ctx, homeworkID, dir)
		return downloadedMsg{path: path, err: err}
	}
}

func (m *Model) submitCmd(sub api.Submission) tea.Cmd {
	client := m.opts.Client
	id := m.session.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		result, err := client.SubmitHomework(ctx, id, sub)
		return submittedMsg{result: result, err: err}
	}
}
