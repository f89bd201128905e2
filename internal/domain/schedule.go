package domain

import "strings"

// ScheduleItem represents one recurring class slot in the weekly schedule.
// The read model carries no server-assigned id, so diffing uses the full
// tuple as a synthesized key.
type ScheduleItem struct {
	WeekDay   string `json:"week_day"`
	Time      string `json:"time"`
	Subject   string `json:"subject"`
	Classroom string `json:"classroom"`
	Teacher   string `json:"teacher"`
}

// Key returns the synthesized diff key for the schedule item. Two
// structurally identical rows share a key and are indistinguishable.
func (s ScheduleItem) Key() string {
	return strings.Join([]string{s.WeekDay, s.Time, s.Subject, s.Classroom, s.Teacher}, "|")
}

// Location returns the classroom/teacher pair formatted for display.
func (s ScheduleItem) Location() string {
	return s.Classroom + " / " + s.Teacher
}

// WeekDays lists day names in schedule order, matching the API's day filter.
var WeekDays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}
