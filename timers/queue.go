package timers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shse/playground/priority"
	"go.uber.org/zap"
)

type ID uint64

// NoOwner marks timers that don't belong to a player.
const NoOwner = -1

type timer struct {
	id    ID
	owner int
	due   time.Time
	fn    func()
}

// earlier orders timers by due time. Timers due at the same moment run in the
// order they were added, ids are handed out in increasing order.
func earlier(a, b timer) int {
	switch {
	case a.due.Before(b.due):
		return -1
	case a.due.After(b.due):
		return 1
	case a.id < b.id:
		return -1
	case a.id > b.id:
		return 1
	default:
		return 0
	}
}

// Queue runs callbacks once their delay has passed. It is driven by calling
// Run from the goroutine that owns it, usually once per server frame.
type Queue struct {
	logger   *zap.Logger
	clock    func() time.Time
	timers   *priority.Queue[timer]
	lastID   ID
	pending  prometheus.Gauge
	executed prometheus.Counter
}

func NewQueue(logger *zap.Logger, clock func() time.Time) *Queue {
	if clock == nil {
		clock = time.Now
	}

	return &Queue{
		logger,
		clock,
		priority.NewQueue(earlier),
		0,
		prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pending_timers",
			Help: "Number of scheduled timers."}),
		prometheus.NewCounter(prometheus.CounterOpts{
			Name: "executed_timers_total",
			Help: "Number of timers that have run."}),
	}
}

func (q *Queue) Collectors() []prometheus.Collector {
	return []prometheus.Collector{q.pending, q.executed}
}

// Add schedules fn to run once delay has passed. owner ties the timer to a
// player so that it can be cancelled with CancelOwner, use NoOwner otherwise.
func (q *Queue) Add(owner int, delay time.Duration, fn func()) ID {
	q.lastID++

	q.timers.Enqueue(timer{q.lastID, owner, q.clock().Add(delay), fn})
	q.pending.Set(float64(q.timers.Size()))

	return q.lastID
}

// Run executes every timer that is due at now, in due order, and returns the
// number of timers that ran. Timers added by the callbacks are left for a
// later call.
func (q *Queue) Run(now time.Time) int {
	var due []timer

	for q.timers.Size() > 0 {
		if next, _ := q.timers.Peek(); next.due.After(now) {
			break
		}

		// Size is checked above, the queue can't be empty here.
		next, _ := q.timers.Dequeue()
		due = append(due, next)
	}

	if len(due) == 0 {
		return 0
	}

	q.pending.Set(float64(q.timers.Size()))

	for _, t := range due {
		q.execute(t)
	}

	q.executed.Add(float64(len(due)))

	return len(due)
}

func (q *Queue) execute(t timer) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("Timer failed",
				zap.Uint64("timer", uint64(t.id)),
				zap.Int("owner", t.owner),
				zap.Any("panic", r))
		}
	}()

	t.fn()
}

// Cancel removes a timer that has not run yet.
func (q *Queue) Cancel(id ID) bool {
	return q.remove(func(t timer) bool { return t.id == id }) > 0
}

// CancelOwner removes every pending timer of owner and returns how many there were.
func (q *Queue) CancelOwner(owner int) int {
	removed := q.remove(func(t timer) bool { return t.owner == owner })

	if removed > 0 {
		q.logger.Debug("Timers cancelled", zap.Int("owner", owner), zap.Int("count", removed))
	}

	return removed
}

func (q *Queue) remove(match func(timer) bool) int {
	before := q.timers.Size()

	q.timers.Filter(func(t timer) bool {
		return !match(t)
	})

	q.pending.Set(float64(q.timers.Size()))

	return before - q.timers.Size()
}

func (q *Queue) Pending() int {
	return q.timers.Size()
}

// Next returns when the earliest timer is due.
func (q *Queue) Next() (time.Time, bool) {
	next, err := q.timers.Peek()

	if err != nil {
		return time.Time{}, false
	}

	return next.due, true
}

// Owned returns how many pending timers belong to owner.
func (q *Queue) Owned(owner int) int {
	count := 0

	for _, t := range q.timers.Entries() {
		if t.owner == owner {
			count++
		}
	}

	return count
}
