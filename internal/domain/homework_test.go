package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDueDate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
	}{
		{"empty", "", false},
		{"iso date", "2025-10-10", true},
		{"iso datetime", "2025-10-10 09:30", true},
		{"iso t datetime", "2025-10-10T09:30:00", true},
		{"rfc3339", "2025-10-10T09:30:00Z", true},
		{"dotted", "10.10.2025", true},
		{"garbage", "next friday", false},
		{"partial", "2025-13-40", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseDueDate(tt.input)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestParseDueDate_Value(t *testing.T) {
	got, ok := ParseDueDate("2025-10-10")
	require.True(t, ok)
	assert.Equal(t, 2025, got.Year())
	assert.Equal(t, time.October, got.Month())
	assert.Equal(t, 10, got.Day())
}

func TestHomework_UrgencyAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	tests := []struct {
		name string
		due  string
		want Urgency
	}{
		{"overdue", now.Add(-time.Hour).Format("2006-01-02T15:04:05"), UrgencyOverdue},
		{"due in 23h", now.Add(23 * time.Hour).Format("2006-01-02T15:04:05"), UrgencyDueSoon},
		{"due in exactly 24h", now.Add(24 * time.Hour).Format("2006-01-02T15:04:05"), UrgencyDueSoon},
		{"due in 25h", now.Add(25 * time.Hour).Format("2006-01-02T15:04:05"), UrgencyUpcoming},
		{"no due date", "", UrgencyUpcoming},
		{"unparseable", "whenever", UrgencyUpcoming},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Homework{ID: 1, Title: "Lab 1", DueDate: tt.due}
			assert.Equal(t, tt.want, h.UrgencyAt(now))
		})
	}
}

// Urgency is recomputed against the clock, so a fixed deadline drifts
// through due-soon into overdue without any data change.
func TestHomework_UrgencyAt_Reevaluation(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	h := Homework{ID: 1, Title: "Lab 1", DueDate: now.Add(23 * time.Hour).Format("2006-01-02T15:04:05")}

	assert.Equal(t, UrgencyDueSoon, h.UrgencyAt(now))
	assert.Equal(t, UrgencyDueSoon, h.UrgencyAt(now.Add(2*time.Hour)))
	assert.Equal(t, UrgencyOverdue, h.UrgencyAt(now.Add(24*time.Hour)))
}

func TestHomework_DueDisplay(t *testing.T) {
	tests := []struct {
		name string
		due  string
		want string
	}{
		{"parseable", "2025-10-10", "2025-10-10 00:00"},
		{"raw preserved", "before the exam", "before the exam"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Homework{DueDate: tt.due}
			assert.Equal(t, tt.want, h.DueDisplay())
		})
	}
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "42", Homework{ID: 42}.Key())
	assert.Equal(t, "7", Grade{ID: 7}.Key())

	item := ScheduleItem{WeekDay: "Monday", Time: "09:00-10:30", Subject: "Programming", Classroom: "A101", Teacher: "I. Sidorov"}
	assert.Equal(t, "Monday|09:00-10:30|Programming|A101|I. Sidorov", item.Key())

	// structurally identical rows collapse to one key
	dup := item
	assert.Equal(t, item.Key(), dup.Key())
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"homework", false},
		{"schedule", false},
		{"grades", false},
		{"", true},
		{"exams", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := ParseCategory(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, c.String())
			assert.True(t, c.IsValid())
		})
	}
}
