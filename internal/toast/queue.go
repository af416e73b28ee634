// Package toast holds the single-slot transient notification shown to the
// user after an action.
package toast

import (
	"sync"
	"time"

	"github.com/spec-kit/ticketapp/internal/clock"
	"github.com/spec-kit/ticketapp/internal/domain"
)

// DefaultDuration is how long a toast stays visible unless configured.
const DefaultDuration = 3 * time.Second

// Sink observes every change of the slot. A cleared slot is reported with
// visible set to false.
type Sink func(toast domain.Toast, visible bool)

// Queue keeps at most one visible toast. Every Show supersedes the previous
// toast; its expiry timer is left running but only clears the slot if no
// later Show happened in between.
type Queue struct {
	mu         sync.Mutex
	clock      clock.Clock
	duration   time.Duration
	current    domain.Toast
	visible    bool
	generation uint64
	sink       Sink
}

// Option customizes a Queue.
type Option func(*Queue)

// WithSink registers an observer for slot changes.
func WithSink(sink Sink) Option {
	return func(q *Queue) { q.sink = sink }
}

// NewQueue returns an empty queue. A non-positive duration falls back to
// DefaultDuration.
func NewQueue(clk clock.Clock, duration time.Duration, opts ...Option) *Queue {
	if clk == nil {
		clk = clock.Real()
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	q := &Queue{clock: clk, duration: duration}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Show displays message for the default duration.
func (q *Queue) Show(message string, kind domain.ToastKind) domain.Toast {
	return q.ShowFor(message, kind, q.duration)
}

// ShowFor displays message for d, replacing whatever is visible.
func (q *Queue) ShowFor(message string, kind domain.ToastKind, d time.Duration) domain.Toast {
	if d <= 0 {
		d = q.duration
	}

	q.mu.Lock()
	q.generation++
	shown := domain.Toast{Message: message, Kind: kind, Generation: q.generation}
	q.current = shown
	q.visible = true
	sink := q.sink
	q.mu.Unlock()

	if sink != nil {
		sink(shown, true)
	}
	q.clock.AfterFunc(d, func() { q.expire(shown.Generation) })
	return shown
}

// Current returns the visible toast, if any.
func (q *Queue) Current() (domain.Toast, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.visible {
		return domain.Toast{}, false
	}
	return q.current, true
}

func (q *Queue) expire(generation uint64) {
	q.mu.Lock()
	if !q.visible || q.generation != generation {
		q.mu.Unlock()
		return
	}
	cleared := q.current
	q.current = domain.Toast{}
	q.visible = false
	sink := q.sink
	q.mu.Unlock()

	if sink != nil {
		sink(cleared, false)
	}
}
