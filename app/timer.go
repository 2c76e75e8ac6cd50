package app

import "time"

// Timer is a stopwatch.
type Timer struct {
	clock func() time.Time
	start time.Time
}

// NewTimer starts a timer. A nil clock uses time.Now.
func NewTimer(clock func() time.Time) *Timer {
	if clock == nil {
		clock = time.Now
	}
	return &Timer{clock: clock, start: clock()}
}

// Read returns the time elapsed since the timer was started or last reset.
func (t *Timer) Read() time.Duration {
	return t.clock().Sub(t.start)
}

// Reset restarts the timer and returns the elapsed time before the reset.
func (t *Timer) Reset() time.Duration {
	now := t.clock()
	elapsed := now.Sub(t.start)
	t.start = now
	return elapsed
}
