// Package clock lets time-dependent code run against a fake clock in tests.
package clock

import "time"

// Clock is the subset of the time package used by the service.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f in its own goroutine (real) or during Advance (fake)
	// once d has elapsed.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer cancels a pending AfterFunc call.
type Timer struct {
	stop func() bool
}

// Stop prevents the callback from firing. It reports whether the call
// stopped the timer.
func (t *Timer) Stop() bool {
	if t == nil || t.stop == nil {
		return false
	}
	return t.stop()
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) *Timer {
	timer := time.AfterFunc(d, f)
	return &Timer{stop: timer.Stop}
}
