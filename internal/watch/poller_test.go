package watch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentdesk/internal/domain"
)

type fakeSource struct {
	mu          sync.Mutex
	homework    []domain.Homework
	schedule    []domain.ScheduleItem
	grades      []domain.Grade
	homeworkErr error
	scheduleErr error
	gradesErr   error
	blockHW     chan struct{}
}

func (f *fakeSource) Homework(ctx context.Context) ([]domain.Homework, error) {
	f.mu.Lock()
	block := f.blockHW
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.homeworkErr != nil {
		return nil, f.homeworkErr
	}
	return append([]domain.Homework(nil), f.homework...), nil
}

func (f *fakeSource) Schedule(ctx context.Context) ([]domain.ScheduleItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scheduleErr != nil {
		return nil, f.scheduleErr
	}
	return append([]domain.ScheduleItem(nil), f.schedule...), nil
}

func (f *fakeSource) Grades(ctx context.Context) ([]domain.Grade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gradesErr != nil {
		return nil, f.gradesErr
	}
	return append([]domain.Grade(nil), f.grades...), nil
}

func (f *fakeSource) set(fn func(*fakeSource)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func newTestSource() *fakeSource {
	return &fakeSource{
		homework: []domain.Homework{{ID: 1, Title: "Lab 1", DueDate: "2025-10-10"}},
		schedule: []domain.ScheduleItem{{WeekDay: "Monday", Time: "09:00-10:30", Subject: "Programming"}},
		grades:   []domain.Grade{{ID: 1, Subject: "Programming", Grade: "A"}},
	}
}

func TestFirstPollSeedsWithoutDeltas(t *testing.T) {
	src := newTestSource()
	p := NewPoller(Options{Source: src})

	deltas, err := p.PollOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, deltas.Empty())

	snap := p.Current()
	assert.Len(t, snap.Homework, 1)
	assert.Len(t, snap.Schedule, 1)
	assert.Len(t, snap.Grades, 1)

	status := p.Status()
	assert.True(t, status.Seeded)
	assert.True(t, status.Reachable)
	assert.False(t, status.LastPoll.IsZero())
}

func TestChangesReported(t *testing.T) {
	src := newTestSource()
	p := NewPoller(Options{Source: src})

	_, err := p.PollOnce(context.Background())
	require.NoError(t, err)

	src.set(func(f *fakeSource) {
		f.homework = []domain.Homework{
			{ID: 1, Title: "Lab 1 (revised)", DueDate: "2025-10-10"},
			{ID: 2, Title: "Lab 2", DueDate: "2025-10-20"},
		}
		f.grades = nil
	})

	deltas, err := p.PollOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, deltas.Homework.Added, 1)
	assert.Equal(t, "Lab 2", deltas.Homework.Added[0].Title)
	require.Len(t, deltas.Homework.Changed, 1)
	assert.Equal(t, "Lab 1 (revised)", deltas.Homework.Changed[0].Title)
	require.Len(t, deltas.Grades.Removed, 1)
	assert.True(t, deltas.Schedule.Empty())

	// baseline advanced
	assert.Len(t, p.Current().Homework, 2)
	assert.Empty(t, p.Current().Grades)
}

func TestNoOpCycleStillReports(t *testing.T) {
	src := newTestSource()
	var calls int
	p := NewPoller(Options{
		Source:   src,
		OnDeltas: func(d Deltas, _ Snapshot) { calls++; assert.True(t, d.Empty()) },
	})

	_, err := p.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, calls, "seeding cycle must not report deltas")

	_, err = p.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestFetchFailureCountsAsUnchanged(t *testing.T) {
	src := newTestSource()
	p := NewPoller(Options{Source: src})

	_, err := p.PollOnce(context.Background())
	require.NoError(t, err)

	src.set(func(f *fakeSource) {
		f.homeworkErr = errors.New("boom")
		f.grades = []domain.Grade{
			{ID: 1, Subject: "Programming", Grade: "A"},
			{ID: 2, Subject: "Math", Grade: "B+"},
		}
	})

	deltas, err := p.PollOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, deltas.Homework.Empty(), "failed fetch must not produce a delta")
	require.Len(t, deltas.Grades.Added, 1)

	// homework baseline survives the failed fetch
	assert.Len(t, p.Current().Homework, 1)
	assert.True(t, p.Status().Reachable)

	// recovery diffs against the retained baseline, not empty
	src.set(func(f *fakeSource) { f.homeworkErr = nil })
	deltas, err = p.PollOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, deltas.Homework.Empty())
}

func TestAllFetchesFailingMarksUnreachable(t *testing.T) {
	src := newTestSource()
	p := NewPoller(Options{Source: src})

	_, err := p.PollOnce(context.Background())
	require.NoError(t, err)

	src.set(func(f *fakeSource) {
		f.homeworkErr = errors.New("down")
		f.scheduleErr = errors.New("down")
		f.gradesErr = errors.New("down")
	})

	deltas, err := p.PollOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, deltas.Empty())
	assert.False(t, p.Status().Reachable)
	assert.Len(t, p.Current().Homework, 1)
}

func TestSeedingRetriesWhileUnreachable(t *testing.T) {
	src := newTestSource()
	src.set(func(f *fakeSource) {
		f.homeworkErr = errors.New("down")
		f.scheduleErr = errors.New("down")
		f.gradesErr = errors.New("down")
	})
	p := NewPoller(Options{Source: src})

	_, err := p.PollOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, p.Status().Seeded)

	src.set(func(f *fakeSource) {
		f.homeworkErr, f.scheduleErr, f.gradesErr = nil, nil, nil
	})

	deltas, err := p.PollOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, deltas.Empty(), "late baseline cycle must not report deltas")
	assert.True(t, p.Status().Seeded)
}

func TestIntervalClamping(t *testing.T) {
	p := NewPoller(Options{Source: newTestSource(), Interval: time.Second})
	assert.Equal(t, MinInterval, p.opts.Interval)
}

func TestPersistedSnapshotSkipsSeeding(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(Snapshot{
		Homework: []domain.Homework{{ID: 1, Title: "Lab 1", DueDate: "2025-10-10"}},
	}))

	src := newTestSource()
	src.set(func(f *fakeSource) {
		f.homework = append(f.homework, domain.Homework{ID: 2, Title: "Lab 2"})
	})
	p := NewPoller(Options{Source: src, Store: store})

	deltas, err := p.PollOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, deltas.Homework.Added, 1)
	assert.Equal(t, 2, deltas.Homework.Added[0].ID)
}

func TestStartStopWithInjectedTicks(t *testing.T) {
	src := newTestSource()
	tick := make(chan time.Time)
	statuses := make(chan Status, 16)
	p := NewPoller(Options{
		Source:   src,
		TickChan: tick,
		OnStatus: func(s Status) { statuses <- s },
	})

	p.Start(context.Background())
	require.True(t, p.Running())

	// immediate poll on start
	select {
	case s := <-statuses:
		assert.True(t, s.Seeded)
	case <-time.After(2 * time.Second):
		t.Fatal("no status after start")
	}

	tick <- time.Now()
	select {
	case <-statuses:
	case <-time.After(2 * time.Second):
		t.Fatal("no status after tick")
	}

	p.Stop()
	assert.False(t, p.Running())

	// a second Start must not re-seed
	p.Start(context.Background())
	select {
	case s := <-statuses:
		assert.True(t, s.Seeded)
	case <-time.After(2 * time.Second):
		t.Fatal("no status after restart")
	}
	p.Stop()
}

func TestPollCyclesNeverOverlap(t *testing.T) {
	src := newTestSource()
	block := make(chan struct{})
	src.set(func(f *fakeSource) { f.blockHW = block })
	p := NewPoller(Options{Source: src})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := p.PollOnce(context.Background())
		assert.NoError(t, err)
	}()

	// wait until the first cycle is inside fetchAll
	require.Eventually(t, func() bool {
		_, err := p.PollOnce(context.Background())
		return errors.Is(err, ErrPollInFlight)
	}, 2*time.Second, 10*time.Millisecond)

	close(block)
	<-done
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := SnapshotPath(t.TempDir(), 7)
	store := NewFileStore(path)

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	snap := Snapshot{
		Homework: []domain.Homework{{ID: 1, Title: "Lab 1"}},
		Grades:   []domain.Grade{{ID: 2, Subject: "Math", Grade: "B"}},
		TakenAt:  time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.Save(snap))

	loaded, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snap.Homework, loaded.Homework)
	assert.Equal(t, snap.Grades, loaded.Grades)

	require.NoError(t, store.Clear())
	_, ok, err = store.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}
