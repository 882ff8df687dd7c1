package quiz

// DefaultSecondsPerQuestion is the time budget heuristic applied when an
// attempt is started without an explicit limit.
const DefaultSecondsPerQuestion = 120

// Timer is a session-scoped countdown with edge-triggered, single-shot
// expiry. It is driven externally, one Tick per elapsed second, and is not
// safe for concurrent use — the owning session serializes access.
type Timer struct {
	remaining int
	expired   bool
	stopped   bool
}

// NewTimer creates a countdown with the given budget in seconds.
func NewTimer(totalSeconds int) *Timer {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	return &Timer{remaining: totalSeconds}
}

// Tick consumes one second of the budget. It returns true exactly once, at
// the tick where the remaining time reaches zero. A stopped or already
// expired timer is inert.
func (t *Timer) Tick() bool {
	if t.stopped || t.expired {
		return false
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining == 0 {
		t.expired = true
		return true
	}
	return false
}

// Remaining returns the seconds left on the clock.
func (t *Timer) Remaining() int {
	return t.remaining
}

// Expired reports whether the budget ran out.
func (t *Timer) Expired() bool {
	return t.expired
}

// Stop cancels the countdown. A stopped timer never fires expiry.
func (t *Timer) Stop() {
	t.stopped = true
}
