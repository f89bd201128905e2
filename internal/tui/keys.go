package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"studentdesk/internal/dispatch"
	"studentdesk/internal/domain"
	"studentdesk/internal/settings"
)

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.screen == screenLogin {
		return m.handleLoginKey(msg)
	}
	if m.submit != nil {
		return m.handleSubmitKey(msg)
	}
	return m.handleMainKey(msg)
}

func (m *Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyTab, tea.KeyDown:
		return m, m.login.cycleFocus(1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.login.cycleFocus(-1)
	case tea.KeyCtrlR:
		return m, m.login.toggleRegister()
	case tea.KeyEnter:
		sub, err := m.login.submission()
		if err != nil {
			m.login.setError(err)
			return m, nil
		}
		m.login.errText = ""
		return m, m.loginCmd(sub)
	}
	return m, m.login.update(msg)
}

func (m *Model) handleSubmitKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.submit = nil
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.submit.cycleFocus(1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.submit.cycleFocus(-1)
	case tea.KeyEnter:
		sub, err := m.submit.submission()
		if err != nil {
			m.submit.errText = err.Error()
			return m, nil
		}
		return m, m.submitCmd(sub)
	}
	return m, m.submit.update(msg)
}

func (m *Model) handleMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		m.tab = (m.tab + 1) % tab(len(tabTitles))
		return m, nil
	case "shift+tab":
		m.tab = (m.tab + tab(len(tabTitles)) - 1) % tab(len(tabTitles))
		return m, nil
	case "1", "2", "3", "4", "5":
		if m.tab == tabSettings {
			break
		}
		m.tab = tab(int(msg.Runes[0] - '1'))
		return m, nil
	case "r":
		return m, m.refreshCmd()
	case "p":
		m.flash = "polling"
		return m, m.pollNowCmd()
	case "x":
		if m.stack != nil {
			m.stack.DismissOldest()
		}
		return m, nil
	case "X":
		if m.stack != nil {
			m.stack.DismissAll()
		}
		return m, nil
	}

	if m.tab == tabSettings {
		return m.handleSettingsKey(msg)
	}

	switch msg.String() {
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "s":
		if m.tab == tabHomework {
			m.submit = newSubmitForm()
			return m, m.submit.focusCmd()
		}
	case "d":
		if m.tab == tabHomework {
			if hw, ok := m.selectedHomework(); ok && hw.HasAttachment() {
				m.flash = "downloading"
				return m, m.downloadCmd(hw.ID)
			}
			m.flash = "no attachment on selected homework"
		}
	}
	return m, nil
}

func (m *Model) listLen(t tab) int {
	switch t {
	case tabSchedule:
		return len(m.snapshot.Schedule)
	case tabHomework:
		return len(m.snapshot.Homework)
	case tabGrades:
		return len(m.snapshot.Grades)
	default:
		return 0
	}
}

func (m *Model) moveCursor(delta int) {
	n := m.listLen(m.tab)
	if n == 0 {
		m.cursor[m.tab] = 0
		return
	}
	c := m.cursor[m.tab] + delta
	if c < 0 {
		c = 0
	}
	if c >= n {
		c = n - 1
	}
	m.cursor[m.tab] = c
}

func (m *Model) selectedHomework() (domain.Homework, bool) {
	i := m.cursor[tabHomework]
	if i < 0 || i >= len(m.snapshot.Homework) {
		return domain.Homework{}, false
	}
	return m.snapshot.Homework[i], true
}

// Settings tab rows, in display order.
const (
	setRowNotifyHomework = iota
	setRowNotifySchedule
	setRowNotifyGrades
	setRowSound
	setRowPollInterval
	setRowDuration
	setRowScheduleDay
	setRowAutoPoll
	setRowCount
)

func (m *Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.opts.Settings
	switch msg.String() {
	case "up", "k":
		if m.setRow > 0 {
			m.setRow--
		}
	case "down", "j":
		if m.setRow < setRowCount-1 {
			m.setRow++
		}
	case "enter", " ":
		m.toggleSetting(s)
	case "left", "h":
		m.adjustSetting(s, -1)
	case "right", "l":
		m.adjustSetting(s, 1)
	case "w":
		if err := settings.Validate(s); err != nil {
			m.flash = err.Error()
			return m, nil
		}
		if err := m.persistSettings(); err != nil {
			m.flash = err.Error()
			return m, nil
		}
		m.dirty = false
		m.flash = "settings saved"
	}
	return m, nil
}

func (m *Model) toggleSetting(s *settings.Settings) {
	switch m.setRow {
	case setRowNotifyHomework:
		s.NotifyHomework = !s.NotifyHomework
	case setRowNotifySchedule:
		s.NotifySchedule = !s.NotifySchedule
	case setRowNotifyGrades:
		s.NotifyGrades = !s.NotifyGrades
	case setRowSound:
		s.NotifySound = !s.NotifySound
	case setRowAutoPoll:
		s.AutoPollAfterLogin = !s.AutoPollAfterLogin
	case setRowScheduleDay:
		m.adjustSetting(s, 1)
		return
	default:
		return
	}
	m.settingsEdited()
}

func (m *Model) adjustSetting(s *settings.Settings, delta int) {
	switch m.setRow {
	case setRowPollInterval:
		s.PollIntervalSec += delta * 5
		if s.PollIntervalSec < settings.MinPollIntervalSec {
			s.PollIntervalSec = settings.MinPollIntervalSec
		}
	case setRowDuration:
		s.NotificationDurationSec += delta
		if s.NotificationDurationSec < 1 {
			s.NotificationDurationSec = 1
		}
	case setRowScheduleDay:
		s.ScheduleDay = cycleDay(s.ScheduleDay, delta)
	default:
		return
	}
	m.settingsEdited()
}

// settingsEdited marks unsaved changes and applies the notification
// options immediately. The poll interval takes effect on the next start.
func (m *Model) settingsEdited() {
	m.dirty = true
	s := m.opts.Settings
	if m.dispatcher != nil {
		m.dispatcher.SetOptions(dispatch.Options{
			Homework: s.NotifyHomework,
			Schedule: s.NotifySchedule,
			Grades:   s.NotifyGrades,
			Sound:    s.NotifySound,
			Duration: s.NotificationDuration(),
		})
	}
}

func cycleDay(current string, delta int) string {
	days := append([]string{settings.ScheduleDayAll}, domain.WeekDays...)
	idx := 0
	for i, d := range days {
		if d == current {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(days)) % len(days)
	return days[idx]
}
