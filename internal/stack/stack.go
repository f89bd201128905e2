// Package stack maintains the on-screen notification stack: ordered slots,
// per-notification auto-dismiss timers and gap-free re-indexing.
package stack

import (
	"sync"
	"time"

	"studentdesk/internal/domain"
)

// DefaultPitch is the vertical distance between adjacent slots, in rows.
const DefaultPitch = 4

// Notification is one entry on the stack.
type Notification struct {
	ID       int
	Category domain.Category
	Title    string
	Body     string
	PostedAt time.Time
	// Duration until auto-dismissal. Zero or negative means the entry
	// stays until dismissed manually.
	Duration time.Duration
}

// Placement is a notification with its resolved stack position.
type Placement struct {
	Notification
	// Slot is the 0-based position counted from the anchor.
	Slot int
	// Offset is the row distance from the anchor, Slot * pitch.
	Offset int
}

// Options configures a Stack.
type Options struct {
	// Pitch is the row distance between adjacent slots.
	Pitch int
	// OnChange is invoked with the current placements after every mutation.
	// It is called from Show/Dismiss callers and from expired timers.
	OnChange func([]Placement)
}

// Stack is a thread-safe notification stack. Slots are assigned in arrival
// order; dismissing any entry closes the gap so remaining entries keep
// contiguous slots while their timers continue running independently.
type Stack struct {
	mu     sync.Mutex
	opts   Options
	nextID int
	items  []Notification
	timers map[int]*time.Timer
	closed bool
}

// New creates an empty Stack.
func New(opts Options) *Stack {
	if opts.Pitch <= 0 {
		opts.Pitch = DefaultPitch
	}
	return &Stack{
		opts:   opts,
		nextID: 1,
		timers: make(map[int]*time.Timer),
	}
}

// Show appends a notification to the stack and returns its id. When the
// duration is positive an auto-dismiss timer is armed for exactly that
// entry; timers of earlier entries are unaffected.
func (s *Stack) Show(category domain.Category, title, body string, duration time.Duration) int {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0
	}
	id := s.nextID
	s.nextID++
	s.items = append(s.items, Notification{
		ID:       id,
		Category: category,
		Title:    title,
		Body:     body,
		PostedAt: time.Now(),
		Duration: duration,
	})
	if duration > 0 {
		s.timers[id] = time.AfterFunc(duration, func() {
			s.Dismiss(id)
		})
	}
	placements := s.placementsLocked()
	onChange := s.opts.OnChange
	s.mu.Unlock()

	if onChange != nil {
		onChange(placements)
	}
	return id
}

// Dismiss removes the notification with the given id, cancels its timer
// and re-indexes the remaining entries. It reports whether the id was
// present; dismissing an already-gone id is a harmless no-op, which also
// covers a timer firing after a manual dismissal.
func (s *Stack) Dismiss(id int) bool {
	s.mu.Lock()
	idx := -1
	for i, n := range s.items {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	placements := s.placementsLocked()
	onChange := s.opts.OnChange
	s.mu.Unlock()

	if onChange != nil {
		onChange(placements)
	}
	return true
}

// DismissOldest removes the entry in slot 0, if any.
func (s *Stack) DismissOldest() bool {
	s.mu.Lock()
	if len(s.items) == 0 {
		s.mu.Unlock()
		return false
	}
	id := s.items[0].ID
	s.mu.Unlock()
	return s.Dismiss(id)
}

// DismissAll clears the stack and cancels every timer.
func (s *Stack) DismissAll() {
	s.mu.Lock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.items = nil
	placements := s.placementsLocked()
	onChange := s.opts.OnChange
	s.mu.Unlock()

	if onChange != nil {
		onChange(placements)
	}
}

// Close stops all timers and rejects further Show calls.
func (s *Stack) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.items = nil
}

// Visible returns the current placements in slot order.
func (s *Stack) Visible() []Placement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.placementsLocked()
}

// Len returns the number of entries on the stack.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Stack) placementsLocked() []Placement {
	placements := make([]Placement, len(s.items))
	for i, n := range s.items {
		placements[i] = Placement{
			Notification: n,
			Slot:         i,
			Offset:       i * s.opts.Pitch,
		}
	}
	return placements
}
