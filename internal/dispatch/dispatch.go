// Package dispatch turns category deltas into notification requests.
package dispatch

import (
	"fmt"
	"sync"
	"time"

	"studentdesk/internal/diff"
	"studentdesk/internal/domain"
	"studentdesk/internal/logging"
	"studentdesk/internal/notify"
	"studentdesk/internal/watch"
)

// DefaultDuration is how long a notification stays visible when no
// duration is configured.
const DefaultDuration = 8 * time.Second

// Options holds the per-category toggles and delivery settings.
// A disabled category is silenced, not unwatched: its snapshot keeps
// advancing so re-enabling it does not replay old changes.
type Options struct {
	Homework bool
	Schedule bool
	Grades   bool
	Sound    bool
	Duration time.Duration
}

// DefaultOptions enables every category without sound.
func DefaultOptions() Options {
	return Options{
		Homework: true,
		Schedule: true,
		Grades:   true,
		Duration: DefaultDuration,
	}
}

// Request is one notification to display.
type Request struct {
	Category domain.Category
	Title    string
	Body     string
	Duration time.Duration
}

// Dispatcher fans category deltas out to a sink and the desktop.
type Dispatcher struct {
	mu       sync.Mutex
	opts     Options
	notifier notify.Notifier
	sink     func(Request)
	log      logging.Logger
}

// New creates a Dispatcher. The sink receives every produced request in
// order; a nil sink or notifier is allowed.
func New(notifier notify.Notifier, sink func(Request), opts Options) *Dispatcher {
	if notifier == nil {
		notifier = notify.Noop()
	}
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	return &Dispatcher{
		opts:     opts,
		notifier: notifier,
		sink:     sink,
		log:      logging.GetGlobal().With("component", "dispatch"),
	}
}

// Options returns the current delivery settings.
func (d *Dispatcher) Options() Options {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opts
}

// SetOptions replaces the delivery settings.
func (d *Dispatcher) SetOptions(opts Options) {
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	d.mu.Lock()
	d.opts = opts
	d.mu.Unlock()
}

// Dispatch converts the deltas of one poll cycle into notification
// requests and delivers them. Added and changed records each produce one
// request; removals collapse into a single request per category. The
// alert sound plays at most once per category per cycle.
func (d *Dispatcher) Dispatch(deltas watch.Deltas) []Request {
	d.mu.Lock()
	opts := d.opts
	d.mu.Unlock()

	var all []Request
	if opts.Homework {
		all = append(all, d.deliver(homeworkRequests(deltas.Homework, opts.Duration), opts.Sound)...)
	}
	if opts.Schedule {
		all = append(all, d.deliver(scheduleRequests(deltas.Schedule, opts.Duration), opts.Sound)...)
	}
	if opts.Grades {
		all = append(all, d.deliver(gradeRequests(deltas.Grades, opts.Duration), opts.Sound)...)
	}
	if len(all) > 0 {
		d.log.Info("notifications dispatched", "count", len(all))
	}
	return all
}

// deliver sends one category's requests to the sink and the desktop.
// With sound enabled only the first request of the batch carries it.
func (d *Dispatcher) deliver(reqs []Request, sound bool) []Request {
	for i, req := range reqs {
		if d.sink != nil {
			d.sink(req)
		}
		var err error
		if sound && i == 0 {
			err = d.notifier.Alert(req.Title, req.Body)
		} else {
			err = d.notifier.Notify(req.Title, req.Body)
		}
		if err != nil {
			d.log.Warn("desktop notification failed", "title", req.Title, "error", err)
		}
	}
	return reqs
}

func homeworkRequests(delta diff.Delta[domain.Homework], duration time.Duration) []Request {
	var reqs []Request
	for _, hw := range delta.Added {
		reqs = append(reqs, Request{
			Category: domain.CategoryHomework,
			Title:    "New homework: " + hw.Title,
			Body:     homeworkBody(hw),
			Duration: duration,
		})
	}
	for _, hw := range delta.Changed {
		reqs = append(reqs, Request{
			Category: domain.CategoryHomework,
			Title:    "Homework updated: " + hw.Title,
			Body:     homeworkBody(hw),
			Duration: duration,
		})
	}
	if n := len(delta.Removed); n > 0 {
		reqs = append(reqs, Request{
			Category: domain.CategoryHomework,
			Title:    fmt.Sprintf("%d homework removed", n),
			Duration: duration,
		})
	}
	return reqs
}

func homeworkBody(hw domain.Homework) string {
	if hw.DueDate == "" {
		return hw.Description
	}
	if hw.Description == "" {
		return "Due " + hw.DueDisplay()
	}
	return fmt.Sprintf("Due %s. %s", hw.DueDisplay(), hw.Description)
}

func scheduleRequests(delta diff.Delta[domain.ScheduleItem], duration time.Duration) []Request {
	var reqs []Request
	for _, item := range delta.Added {
		reqs = append(reqs, Request{
			Category: domain.CategorySchedule,
			Title:    "New class: " + item.Subject,
			Body:     fmt.Sprintf("%s %s, %s", item.WeekDay, item.Time, item.Location()),
			Duration: duration,
		})
	}
	for _, item := range delta.Changed {
		reqs = append(reqs, Request{
			Category: domain.CategorySchedule,
			Title:    "Class updated: " + item.Subject,
			Body:     fmt.Sprintf("%s %s, %s", item.WeekDay, item.Time, item.Location()),
			Duration: duration,
		})
	}
	if n := len(delta.Removed); n > 0 {
		reqs = append(reqs, Request{
			Category: domain.CategorySchedule,
			Title:    fmt.Sprintf("%d classes removed", n),
			Duration: duration,
		})
	}
	return reqs
}

func gradeRequests(delta diff.Delta[domain.Grade], duration time.Duration) []Request {
	var reqs []Request
	for _, g := range delta.Added {
		reqs = append(reqs, Request{
			Category: domain.CategoryGrades,
			Title:    fmt.Sprintf("New grade: %s: %s", g.Subject, g.Grade),
			Body:     g.Comment,
			Duration: duration,
		})
	}
	for _, g := range delta.Changed {
		reqs = append(reqs, Request{
			Category: domain.CategoryGrades,
			Title:    fmt.Sprintf("Grade updated: %s: %s", g.Subject, g.Grade),
			Body:     g.Comment,
			Duration: duration,
		})
	}
	if n := len(delta.Removed); n > 0 {
		reqs = append(reqs, Request{
			Category: domain.CategoryGrades,
			Title:    fmt.Sprintf("%d grades removed", n),
			Duration: duration,
		})
	}
	return reqs
}

