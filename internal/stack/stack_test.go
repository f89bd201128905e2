package stack

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentdesk/internal/domain"
)

func TestShowAssignsSequentialSlots(t *testing.T) {
	s := New(Options{Pitch: 4})
	defer s.Close()

	id1 := s.Show(domain.CategoryHomework, "first", "", 0)
	id2 := s.Show(domain.CategoryGrades, "second", "", 0)
	id3 := s.Show(domain.CategorySchedule, "third", "", 0)
	require.True(t, id1 < id2 && id2 < id3)

	visible := s.Visible()
	require.Len(t, visible, 3)
	for i, p := range visible {
		assert.Equal(t, i, p.Slot)
		assert.Equal(t, i*4, p.Offset)
	}
	assert.Equal(t, "first", visible[0].Title)
	assert.Equal(t, "third", visible[2].Title)
}

func TestDismissClosesGap(t *testing.T) {
	s := New(Options{Pitch: 3})
	defer s.Close()

	s.Show(domain.CategoryHomework, "a", "", 0)
	id2 := s.Show(domain.CategoryHomework, "b", "", 0)
	s.Show(domain.CategoryHomework, "c", "", 0)

	require.True(t, s.Dismiss(id2))

	visible := s.Visible()
	require.Len(t, visible, 2)
	assert.Equal(t, "a", visible[0].Title)
	assert.Equal(t, 0, visible[0].Offset)
	assert.Equal(t, "c", visible[1].Title)
	assert.Equal(t, 1, visible[1].Slot)
	assert.Equal(t, 3, visible[1].Offset)
}

func TestDismissUnknownIDIsNoOp(t *testing.T) {
	s := New(Options{})
	defer s.Close()

	s.Show(domain.CategoryHomework, "a", "", 0)
	assert.False(t, s.Dismiss(999))
	assert.Equal(t, 1, s.Len())
}

func TestAutoDismiss(t *testing.T) {
	var mu sync.Mutex
	var last []Placement
	s := New(Options{OnChange: func(p []Placement) {
		mu.Lock()
		last = p
		mu.Unlock()
	}})
	defer s.Close()

	s.Show(domain.CategoryHomework, "short", "", 30*time.Millisecond)
	s.Show(domain.CategoryHomework, "sticky", "", 0)
	require.Equal(t, 2, s.Len())

	require.Eventually(t, func() bool { return s.Len() == 1 }, time.Second, 5*time.Millisecond)

	visible := s.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "sticky", visible[0].Title)
	assert.Equal(t, 0, visible[0].Slot)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, last, 1)
	assert.Equal(t, "sticky", last[0].Title)
}

func TestOverlappingTimersExpireIndependently(t *testing.T) {
	s := New(Options{})
	defer s.Close()

	s.Show(domain.CategoryHomework, "long", "", 150*time.Millisecond)
	s.Show(domain.CategoryHomework, "short", "", 30*time.Millisecond)

	require.Eventually(t, func() bool { return s.Len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "long", s.Visible()[0].Title)

	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestManualDismissCancelsTimer(t *testing.T) {
	s := New(Options{})
	defer s.Close()

	id := s.Show(domain.CategoryHomework, "a", "", 30*time.Millisecond)
	require.True(t, s.Dismiss(id))

	// the expired timer must not dismiss anything else
	s.Show(domain.CategoryHomework, "b", "", 0)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "b", s.Visible()[0].Title)
}

func TestDismissOldest(t *testing.T) {
	s := New(Options{})
	defer s.Close()

	assert.False(t, s.DismissOldest())

	s.Show(domain.CategoryHomework, "a", "", 0)
	s.Show(domain.CategoryHomework, "b", "", 0)
	require.True(t, s.DismissOldest())
	assert.Equal(t, "b", s.Visible()[0].Title)
}

func TestDismissAll(t *testing.T) {
	s := New(Options{})
	defer s.Close()

	s.Show(domain.CategoryHomework, "a", "", time.Minute)
	s.Show(domain.CategoryHomework, "b", "", 0)
	s.DismissAll()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Visible())
}

func TestCloseRejectsNewEntries(t *testing.T) {
	s := New(Options{})
	s.Show(domain.CategoryHomework, "a", "", time.Minute)
	s.Close()
	assert.Zero(t, s.Show(domain.CategoryHomework, "b", "", 0))
	assert.Zero(t, s.Len())
}

func TestStackIntegrityUnderChurn(t *testing.T) {
	s := New(Options{Pitch: 2})
	defer s.Close()

	var ids []int
	for i := 0; i < 10; i++ {
		ids = append(ids, s.Show(domain.CategoryGrades, "n", "", 0))
	}
	// dismiss every other entry
	for i := 0; i < 10; i += 2 {
		require.True(t, s.Dismiss(ids[i]))
	}

	visible := s.Visible()
	require.Len(t, visible, 5)
	for i, p := range visible {
		assert.Equal(t, i, p.Slot, "slots must stay gap-free")
		assert.Equal(t, i*2, p.Offset)
	}
	// arrival order preserved
	for i := 1; i < len(visible); i++ {
		assert.Less(t, visible[i-1].ID, visible[i].ID)
	}
}
