package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentdesk/internal/domain"
)

func hwKey(h domain.Homework) string { return h.Key() }

func TestKeyed_AddedRemovedChanged(t *testing.T) {
	previous := []domain.Homework{
		{ID: 1, Title: "A", DueDate: "2025-01-01"},
		{ID: 2, Title: "B", DueDate: "2025-01-05"},
	}
	current := []domain.Homework{
		{ID: 1, Title: "A v2", DueDate: "2025-01-01"},
		{ID: 3, Title: "C", DueDate: "2025-02-01"},
	}

	d := Keyed(previous, current, hwKey)

	require.Len(t, d.Added, 1)
	assert.Equal(t, 3, d.Added[0].ID)
	require.Len(t, d.Removed, 1)
	assert.Equal(t, 2, d.Removed[0].ID)
	require.Len(t, d.Changed, 1)
	assert.Equal(t, 1, d.Changed[0].ID)
	assert.Equal(t, "A v2", d.Changed[0].Title)
}

func TestKeyed_IdenticalInputsProduceEmptyDelta(t *testing.T) {
	items := []domain.Homework{
		{ID: 1, Title: "A"},
		{ID: 2, Title: "B"},
	}
	d := Keyed(items, items, hwKey)
	assert.True(t, d.Empty())
	assert.Zero(t, d.Count())
}

func TestKeyed_OrderInsensitive(t *testing.T) {
	previous := []domain.Homework{
		{ID: 1, Title: "A"},
		{ID: 2, Title: "B"},
	}
	shuffled := []domain.Homework{
		{ID: 2, Title: "B"},
		{ID: 1, Title: "A"},
	}
	d := Keyed(previous, shuffled, hwKey)
	assert.True(t, d.Empty(), "reordering alone must not signal a change")
}

func TestKeyed_Deterministic(t *testing.T) {
	previous := []domain.Homework{{ID: 5, Title: "E"}, {ID: 1, Title: "A"}}
	current := []domain.Homework{
		{ID: 4, Title: "D"}, {ID: 2, Title: "B"}, {ID: 1, Title: "A v2"}, {ID: 3, Title: "C"},
	}

	first := Keyed(previous, current, hwKey)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Keyed(previous, current, hwKey))
	}
	// sorted by key
	require.Len(t, first.Added, 3)
	assert.Equal(t, []int{2, 3, 4}, []int{first.Added[0].ID, first.Added[1].ID, first.Added[2].ID})
}

func TestKeyed_Partition(t *testing.T) {
	previous := []domain.Grade{
		{ID: 1, Subject: "Math", Grade: "A"},
		{ID: 2, Subject: "OS", Grade: "B"},
		{ID: 3, Subject: "DB", Grade: "C"},
	}
	current := []domain.Grade{
		{ID: 2, Subject: "OS", Grade: "A"},
		{ID: 3, Subject: "DB", Grade: "C"},
		{ID: 4, Subject: "Law", Grade: "B+"},
	}

	d := Keyed(previous, current, func(g domain.Grade) string { return g.Key() })

	seen := make(map[string]int)
	for _, g := range d.Added {
		seen[g.Key()]++
	}
	for _, g := range d.Removed {
		seen[g.Key()]++
	}
	for _, g := range d.Changed {
		seen[g.Key()]++
	}
	for key, n := range seen {
		assert.Equal(t, 1, n, "key %s classified more than once", key)
	}

	prevKeys := map[string]bool{"1": true, "2": true, "3": true}
	currKeys := map[string]bool{"2": true, "3": true, "4": true}
	for _, g := range d.Changed {
		assert.True(t, prevKeys[g.Key()] && currKeys[g.Key()], "changed key must exist on both sides")
	}
}

func TestKeyed_EmptySides(t *testing.T) {
	items := []domain.Grade{{ID: 1, Subject: "Math", Grade: "A"}}
	key := func(g domain.Grade) string { return g.Key() }

	d := Keyed(nil, items, key)
	assert.Len(t, d.Added, 1)
	assert.Empty(t, d.Removed)

	d = Keyed(items, nil, key)
	assert.Len(t, d.Removed, 1)
	assert.Empty(t, d.Added)

	assert.True(t, Keyed[domain.Grade](nil, nil, key).Empty())
}

// Schedule rows diff on the synthesized full-tuple key, so edits surface
// as a remove plus an add, never as a change.
func TestKeyed_ScheduleTupleKey(t *testing.T) {
	previous := []domain.ScheduleItem{
		{WeekDay: "Monday", Time: "09:00-10:30", Subject: "Programming", Classroom: "A101", Teacher: "I. Sidorov"},
	}
	current := []domain.ScheduleItem{
		{WeekDay: "Monday", Time: "09:00-10:30", Subject: "Programming", Classroom: "B202", Teacher: "I. Sidorov"},
	}

	d := Keyed(previous, current, func(s domain.ScheduleItem) string { return s.Key() })
	assert.Len(t, d.Added, 1)
	assert.Len(t, d.Removed, 1)
	assert.Empty(t, d.Changed)
}
