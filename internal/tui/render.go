package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"studentdesk/internal/domain"
	"studentdesk/internal/settings"
	"studentdesk/internal/stack"
	"studentdesk/internal/watch"
)

const (
	dayWidth     = 10
	timeWidth    = 13
	subjectWidth = 28
	dueWidth     = 17
	gradeWidth   = 6
	flagWidth    = 4
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	activeTab     = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("12"))
	inactiveTab   = lipgloss.NewStyle().Faint(true)
	selectedRow   = lipgloss.NewStyle().Background(lipgloss.Color("12")).Foreground(lipgloss.Color("0"))
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dueSoonStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	upcomingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	notifBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func (m *Model) View() string {
	if m.screen == screenLogin {
		return m.loginView()
	}
	if m.submit != nil {
		return m.submitView()
	}

	var b strings.Builder
	b.WriteString(renderTabBar(m.tab))
	b.WriteString("\n\n")

	switch m.tab {
	case tabOverview:
		b.WriteString(m.overviewView())
	case tabSchedule:
		b.WriteString(renderSchedule(m.snapshot.Schedule, m.cursor[tabSchedule]))
	case tabHomework:
		b.WriteString(renderHomework(m.snapshot.Homework, m.cursor[tabHomework], time.Now()))
	case tabGrades:
		b.WriteString(renderGrades(m.snapshot.Grades, m.cursor[tabGrades]))
	case tabSettings:
		b.WriteString(renderSettings(m.opts.Settings, m.setRow, m.dirty))
	}

	b.WriteString("\n")
	b.WriteString(renderFooter(m.status, m.flash, m.tab))

	content := b.String()
	if overlay := renderNotifications(m.placements); overlay != "" {
		if m.width > 0 {
			overlay = lipgloss.PlaceHorizontal(m.width, lipgloss.Right, overlay)
		}
		content = overlay + "\n" + content
	}
	return content
}

func (m *Model) loginView() string {
	f := m.login
	var b strings.Builder
	if f.register {
		b.WriteString(titleStyle.Render("studentdesk: register"))
	} else {
		b.WriteString(titleStyle.Render("studentdesk: sign in"))
	}
	b.WriteString("\n\n")
	for i := 0; i < f.visibleFields(); i++ {
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}
	if f.errText != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(f.errText))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(faintStyle.Render("[enter] submit  [tab] next field  [ctrl+r] toggle register  [esc] quit"))
	return b.String()
}

func (m *Model) submitView() string {
	f := m.submit
	var b strings.Builder
	b.WriteString(titleStyle.Render("Submit homework"))
	b.WriteString("\n\n")
	for i := range f.inputs {
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}
	if f.errText != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(f.errText))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(faintStyle.Render("[enter] submit  [tab] next field  [esc] cancel"))
	return b.String()
}

func (m *Model) overviewView() string {
	now := time.Now()
	var overdue, dueSoon int
	for _, hw := range m.snapshot.Homework {
		switch hw.UrgencyAt(now) {
		case domain.UrgencyOverdue:
			overdue++
		case domain.UrgencyDueSoon:
			dueSoon++
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Signed in as %s\n\n", m.session.FullName)
	fmt.Fprintf(&b, "Homework: %d", len(m.snapshot.Homework))
	if overdue > 0 {
		b.WriteString("  ")
		b.WriteString(overdueStyle.Render(fmt.Sprintf("%d overdue", overdue)))
	}
	if dueSoon > 0 {
		b.WriteString("  ")
		b.WriteString(dueSoonStyle.Render(fmt.Sprintf("%d due soon", dueSoon)))
	}
	fmt.Fprintf(&b, "\nClasses:  %d\nGrades:   %d\n", len(m.snapshot.Schedule), len(m.snapshot.Grades))
	return b.String()
}

func renderTabBar(active tab) string {
	parts := make([]string, len(tabTitles))
	for i, title := range tabTitles {
		label := fmt.Sprintf("%d:%s", i+1, title)
		if tab(i) == active {
			parts[i] = activeTab.Render(label)
		} else {
			parts[i] = inactiveTab.Render(label)
		}
	}
	return strings.Join(parts, "  ")
}

func renderSchedule(items []domain.ScheduleItem, cursor int) string {
	if len(items) == 0 {
		return faintStyle.Render("no classes")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-*s %-*s %-*s %s\n", dayWidth, "DAY", timeWidth, "TIME", subjectWidth, "SUBJECT", "WHERE")
	for i, item := range items {
		row := fmt.Sprintf("%-*s %-*s %-*s %s",
			dayWidth, item.WeekDay, timeWidth, item.Time,
			subjectWidth, truncate(item.Subject, subjectWidth), item.Location())
		if i == cursor {
			row = selectedRow.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

func renderHomework(items []domain.Homework, cursor int, now time.Time) string {
	if len(items) == 0 {
		return faintStyle.Render("no homework")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-*s %-*s %-*s %s\n", flagWidth, "", dueWidth, "DUE", subjectWidth, "TITLE", "DESCRIPTION")
	for i, hw := range items {
		flag := " "
		if hw.HasAttachment() {
			flag = "@"
		}
		row := fmt.Sprintf("%-*s %-*s %-*s %s",
			flagWidth, flag, dueWidth, hw.DueDisplay(),
			subjectWidth, truncate(hw.Title, subjectWidth), truncate(hw.Description, 40))
		switch {
		case i == cursor:
			row = selectedRow.Render(row)
		case hw.UrgencyAt(now) == domain.UrgencyOverdue:
			row = overdueStyle.Render(row)
		case hw.UrgencyAt(now) == domain.UrgencyDueSoon:
			row = dueSoonStyle.Render(row)
		case hw.DueDate != "":
			row = upcomingStyle.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

func renderGrades(items []domain.Grade, cursor int) string {
	if len(items) == 0 {
		return faintStyle.Render("no grades")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-*s %-*s %s\n", subjectWidth, "SUBJECT", gradeWidth, "GRADE", "COMMENT")
	for i, g := range items {
		row := fmt.Sprintf("%-*s %-*s %s",
			subjectWidth, truncate(g.Subject, subjectWidth), gradeWidth, g.Grade, truncate(g.Comment, 50))
		if i == cursor {
			row = selectedRow.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

func renderSettings(s *settings.Settings, cursor int, dirty bool) string {
	rows := []struct {
		label string
		value string
	}{
		{"Notify on homework changes", onOff(s.NotifyHomework)},
		{"Notify on schedule changes", onOff(s.NotifySchedule)},
		{"Notify on grade changes", onOff(s.NotifyGrades)},
		{"Notification sound", onOff(s.NotifySound)},
		{"Poll interval", fmt.Sprintf("%ds", s.PollIntervalSec)},
		{"Notification duration", fmt.Sprintf("%ds", s.NotificationDurationSec)},
		{"Schedule day filter", s.ScheduleDay},
		{"Poll automatically after login", onOff(s.AutoPollAfterLogin)},
	}
	var b strings.Builder
	for i, r := range rows {
		row := fmt.Sprintf("%-32s %s", r.label, r.value)
		if i == cursor {
			row = selectedRow.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if dirty {
		b.WriteString(dueSoonStyle.Render("unsaved changes"))
		b.WriteString("\n")
	}
	b.WriteString(faintStyle.Render("[space] toggle  [left/right] adjust  [w] save"))
	return b.String()
}

func renderFooter(status watch.Status, flash string, active tab) string {
	var parts []string
	if status.LastPoll.IsZero() {
		parts = append(parts, "not polled yet")
	} else if status.Reachable {
		parts = append(parts, fmt.Sprintf("server ok, last poll %s", status.LastPoll.Format("15:04:05")))
	} else {
		parts = append(parts, errorStyle.Render(fmt.Sprintf("server unreachable, last attempt %s", status.LastPoll.Format("15:04:05"))))
	}
	if flash != "" {
		parts = append(parts, flash)
	}
	help := "[tab] switch  [r] refresh  [p] poll  [x] dismiss  [q] quit"
	if active == tabHomework {
		help = "[s] submit  [d] download  " + help
	}
	parts = append(parts, faintStyle.Render(help))
	return strings.Join(parts, "  |  ")
}

// renderNotifications draws the stack with each entry indented by its
// slot offset, newest at the bottom.
func renderNotifications(placements []stack.Placement) string {
	if len(placements) == 0 {
		return ""
	}
	lines := make([]string, 0, len(placements))
	for _, p := range placements {
		box := notifBoxStyle.Render(fmt.Sprintf("%s: %s", p.Notification.Title, truncate(p.Notification.Body, 60)))
		pad := strings.Repeat(" ", p.Offset)
		for _, line := range strings.Split(box, "\n") {
			lines = append(lines, pad+line)
		}
	}
	return strings.Join(lines, "\n")
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func truncate(s string, width int) string {
	if width <= 3 || len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}
