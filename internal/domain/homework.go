package domain

import (
	"strconv"
	"time"
)

// Homework represents a single homework record as returned by the API.
type Homework struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Pushed      int    `json:"pushed"`
	Attachment  string `json:"attachment"`
}

// Key returns the stable diff key for the homework record.
func (h Homework) Key() string {
	return strconv.Itoa(h.ID)
}

// HasAttachment reports whether a downloadable attachment exists.
func (h Homework) HasAttachment() bool {
	return h.Attachment != ""
}

// Urgency is a derived, time-relative label computed from a due timestamp
// at display time. It is never stored.
type Urgency string

const (
	UrgencyOverdue  Urgency = "overdue"
	UrgencyDueSoon  Urgency = "due-soon"
	UrgencyUpcoming Urgency = "upcoming"
)

// String returns the string representation of the urgency.
func (u Urgency) String() string {
	return string(u)
}

// DueSoonWindow is the window ahead of "now" within which a deadline is
// classified as due-soon.
const DueSoonWindow = 24 * time.Hour

// dueDateLayouts are the accepted textual due-date formats, tried in order.
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006",
}

// ParseDueDate parses a due date leniently from the known textual formats.
// Returns false for empty or unparseable values; the raw text stays
// displayable regardless.
func ParseDueDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// UrgencyAt classifies the homework deadline relative to now.
// Items with no parseable due date are treated as upcoming.
func (h Homework) UrgencyAt(now time.Time) Urgency {
	due, ok := ParseDueDate(h.DueDate)
	if !ok {
		return UrgencyUpcoming
	}
	switch {
	case due.Before(now):
		return UrgencyOverdue
	case !due.After(now.Add(DueSoonWindow)):
		return UrgencyDueSoon
	default:
		return UrgencyUpcoming
	}
}

// DueDisplay returns the due date formatted for display, falling back to
// the raw value when it cannot be parsed.
func (h Homework) DueDisplay() string {
	due, ok := ParseDueDate(h.DueDate)
	if !ok {
		return h.DueDate
	}
	return due.Format("2006-01-02 15:04")
}
