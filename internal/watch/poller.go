package watch

import (
	"context"
	"errors"
	"sync"
	"time"

	"studentdesk/internal/diff"
	"studentdesk/internal/domain"
	"studentdesk/internal/logging"
)

// MinInterval is the lowest allowed poll interval. Smaller configured
// values are clamped up to it.
const MinInterval = 5 * time.Second

// DefaultFetchTimeout bounds each category fetch within a poll cycle.
const DefaultFetchTimeout = 10 * time.Second

// ErrPollInFlight is returned when a poll cycle is requested while a
// previous cycle is still running.
var ErrPollInFlight = errors.New("poll cycle already in flight")

// Source supplies the category data to poll. *api.StudentSource satisfies it.
type Source interface {
	Homework(ctx context.Context) ([]domain.Homework, error)
	Schedule(ctx context.Context) ([]domain.ScheduleItem, error)
	Grades(ctx context.Context) ([]domain.Grade, error)
}

// Status describes the poller's view of the server after the last cycle.
type Status struct {
	// LastPoll is when the last cycle completed.
	LastPoll time.Time
	// Reachable is true when at least one category fetch succeeded.
	Reachable bool
	// Seeded is true once a baseline snapshot exists.
	Seeded bool
}

// Options configures a Poller.
type Options struct {
	Source Source
	// Store persists snapshots between cycles. Defaults to an in-memory store.
	Store Store
	// Interval between poll cycles, clamped to MinInterval.
	Interval time.Duration
	// FetchTimeout bounds each category fetch. Defaults to DefaultFetchTimeout.
	FetchTimeout time.Duration
	// OnDeltas is called after every completed non-seeding cycle, including
	// cycles with no changes.
	OnDeltas func(Deltas, Snapshot)
	// OnStatus is called after every completed cycle.
	OnStatus func(Status)
	// TickChan overrides the interval ticker, used by tests.
	TickChan <-chan time.Time
}

// Poller periodically fetches all categories, diffs them against the
// previous snapshot and reports the deltas. The first successful cycle
// after activation only establishes the baseline and reports nothing.
type Poller struct {
	opts Options
	log  logging.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	seeded  bool
	prev    Snapshot
	status  Status

	cycleMu sync.Mutex
	wg      sync.WaitGroup
}

// NewPoller creates a Poller. A nil Store defaults to an in-memory store.
// If the store already holds a snapshot it becomes the baseline, so no
// re-seeding happens and changes since the stored state are reported.
func NewPoller(opts Options) *Poller {
	if opts.Source == nil {
		panic("watch.NewPoller: Source cannot be nil")
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Interval < MinInterval {
		opts.Interval = MinInterval
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	p := &Poller{
		opts: opts,
		log:  logging.GetGlobal().With("component", "poller"),
	}
	if snap, ok, err := opts.Store.Load(); err == nil && ok {
		p.prev = snap
		p.seeded = true
		p.status.Seeded = true
	}
	return p
}

// Running reports whether the poll loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Status returns the state recorded after the last completed cycle.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Current returns the latest snapshot.
func (p *Poller) Current() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prev
}

// Start launches the poll loop: one immediate cycle, then one per interval.
// It is a no-op when the loop is already running.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.loop(loopCtx)
}

// Stop halts the poll loop and waits for an in-flight cycle to finish.
// The baseline snapshot survives so a later Start does not re-seed.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	cancel()
	p.wg.Wait()
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	tickChan, cleanup := p.setupTickChan()
	defer cleanup()

	if _, err := p.PollOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.log.Warn("initial poll failed", "error", err)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-tickChan:
			if _, err := p.PollOnce(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				if !errors.Is(err, ErrPollInFlight) {
					p.log.Warn("poll failed", "error", err)
				}
			}
		}
	}
}

func (p *Poller) setupTickChan() (<-chan time.Time, func()) {
	if p.opts.TickChan != nil {
		return p.opts.TickChan, func() {}
	}
	ticker := time.NewTicker(p.opts.Interval)
	return ticker.C, ticker.Stop
}

type fetchResult struct {
	homework   []domain.Homework
	homeworkOK bool
	schedule   []domain.ScheduleItem
	scheduleOK bool
	grades     []domain.Grade
	gradesOK   bool
}

// PollOnce runs a single poll cycle: fetch every category concurrently,
// diff against the baseline and advance it. A category whose fetch fails
// counts as unchanged this cycle. Cycles never overlap; a call made while
// another cycle runs returns ErrPollInFlight.
func (p *Poller) PollOnce(ctx context.Context) (Deltas, error) {
	if !p.cycleMu.TryLock() {
		return Deltas{}, ErrPollInFlight
	}
	defer p.cycleMu.Unlock()

	res := p.fetchAll(ctx)
	if err := ctx.Err(); err != nil {
		return Deltas{}, err
	}

	p.mu.Lock()
	reachable := res.homeworkOK || res.scheduleOK || res.gradesOK
	now := time.Now()

	if !p.seeded {
		if !reachable {
			p.status = Status{LastPoll: now, Reachable: false, Seeded: false}
			status := p.status
			p.mu.Unlock()
			p.notifyStatus(status)
			return Deltas{}, nil
		}
		// Baseline cycle: record what we got, report nothing.
		p.prev = Snapshot{
			Homework: res.homework,
			Schedule: res.schedule,
			Grades:   res.grades,
			TakenAt:  now,
		}
		p.seeded = true
		p.status = Status{LastPoll: now, Reachable: true, Seeded: true}
		snap, status := p.prev, p.status
		p.mu.Unlock()

		if err := p.opts.Store.Save(snap); err != nil {
			p.log.Warn("failed to persist snapshot", "error", err)
		}
		p.log.Info("baseline established",
			"homework", len(snap.Homework), "schedule", len(snap.Schedule), "grades", len(snap.Grades))
		p.notifyStatus(status)
		return Deltas{}, nil
	}

	next := p.prev
	next.TakenAt = now
	var deltas Deltas
	if res.homeworkOK {
		deltas.Homework = diff.Keyed(p.prev.Homework, res.homework, domain.Homework.Key)
		next.Homework = res.homework
	}
	if res.scheduleOK {
		deltas.Schedule = diff.Keyed(p.prev.Schedule, res.schedule, domain.ScheduleItem.Key)
		next.Schedule = res.schedule
	}
	if res.gradesOK {
		deltas.Grades = diff.Keyed(p.prev.Grades, res.grades, domain.Grade.Key)
		next.Grades = res.grades
	}
	p.prev = next
	p.status = Status{LastPoll: now, Reachable: reachable, Seeded: true}
	snap, status := p.prev, p.status
	p.mu.Unlock()

	if err := p.opts.Store.Save(snap); err != nil {
		p.log.Warn("failed to persist snapshot", "error", err)
	}
	if !deltas.Empty() {
		p.log.Info("changes detected",
			"homework", deltas.Homework.Count(),
			"schedule", deltas.Schedule.Count(),
			"grades", deltas.Grades.Count())
	}
	if p.opts.OnDeltas != nil {
		p.opts.OnDeltas(deltas, snap)
	}
	p.notifyStatus(status)
	return deltas, nil
}

// fetchAll fetches the three categories concurrently, each bounded by the
// fetch timeout.
func (p *Poller) fetchAll(ctx context.Context) fetchResult {
	var res fetchResult
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		fetchCtx, cancel := context.WithTimeout(ctx, p.opts.FetchTimeout)
		defer cancel()
		items, err := p.opts.Source.Homework(fetchCtx)
		if err != nil {
			p.log.Debug("homework fetch failed", "error", err)
			return
		}
		res.homework, res.homeworkOK = items, true
	}()
	go func() {
		defer wg.Done()
		fetchCtx, cancel := context.WithTimeout(ctx, p.opts.FetchTimeout)
		defer cancel()
		items, err := p.opts.Source.Schedule(fetchCtx)
		if err != nil {
			p.log.Debug("schedule fetch failed", "error", err)
			return
		}
		res.schedule, res.scheduleOK = items, true
	}()
	go func() {
		defer wg.Done()
		fetchCtx, cancel := context.WithTimeout(ctx, p.opts.FetchTimeout)
		defer cancel()
		items, err := p.opts.Source.Grades(fetchCtx)
		if err != nil {
			p.log.Debug("grades fetch failed", "error", err)
			return
		}
		res.grades, res.gradesOK = items, true
	}()

	wg.Wait()
	return res
}

func (p *Poller) notifyStatus(status Status) {
	if p.opts.OnStatus != nil {
		p.opts.OnStatus(status)
	}
}
