// Package warning implements the tamper warning timer.
package warning

import "time"

// DefaultDuration is how long a warning stays visible after the last arm.
const DefaultDuration = 5 * time.Second

// Timer tracks when the tamper warning was last armed.
// Expiry is derived on query; nothing fires in the background.
// Timer is not safe for concurrent use; the session serializes access.
type Timer struct {
	duration time.Duration
	armedAt  time.Time
	armed    bool
}

// New creates a timer with the given visibility window.
// A non-positive duration selects DefaultDuration.
func New(duration time.Duration) *Timer {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Timer{duration: duration}
}

// Duration returns the visibility window.
func (t *Timer) Duration() time.Duration { return t.duration }

// Arm starts or restarts the warning window at now.
func (t *Timer) Arm(now time.Time) {
	t.armedAt = now
	t.armed = true
}

// Active reports whether the warning is armed and now is within the window.
func (t *Timer) Active(now time.Time) bool {
	return t.armed && now.Sub(t.armedAt) < t.duration
}

// ClearIfExpired disarms the timer once the window has elapsed.
// It returns true when it cleared the warning.
func (t *Timer) ClearIfExpired(now time.Time) bool {
	if t.armed && !t.Active(now) {
		t.Reset()
		return true
	}
	return false
}

// Reset disarms the timer.
func (t *Timer) Reset() {
	t.armed = false
	t.armedAt = time.Time{}
}

// ArmedAt returns the last arm time and whether the timer is armed.
func (t *Timer) ArmedAt() (time.Time, bool) {
	return t.armedAt, t.armed
}
