// Package timer provides a tick-driven countdown timer with a one-shot
// completion callback.
package timer

// FinishedFunc is called when a timer reaches zero. The timer passed in is
// the one that finished, so one function can serve several timers.
type FinishedFunc func(t *Timer)

// Timer counts down a fixed number of ticks once started.
// Not safe for concurrent use.
type Timer struct {
	period uint32
	count  uint32

	start    bool // armed, count loads on the next Tick
	active   bool
	finished bool // sticky until ClearFinished

	onFinished FinishedFunc
}

// InitMs sets the period to periodMs/tickMs ticks (truncating).
// A tickMs of zero leaves the period unchanged.
func (t *Timer) InitMs(periodMs, tickMs uint32) {
	if tickMs != 0 {
		t.period = periodMs / tickMs
	}
}

// Start arms the timer. It does nothing while the period is zero.
// Starting a running timer restarts it from the full period on the next Tick.
func (t *Timer) Start() {
	if t.period != 0 {
		t.start = true
	}
}

// Stop disarms the timer. The finished flag is left as is.
func (t *Timer) Stop() {
	t.start = false
	t.active = false
}

// Tick advances the timer by one tick.
func (t *Timer) Tick() {
	if t.start && t.period != 0 {
		t.start = false
		t.count = t.period
		t.active = true
	}

	if !t.active {
		return
	}
	t.count--
	if t.count == 0 {
		t.active = false
		t.finished = true
		if t.onFinished != nil {
			t.onFinished(t)
		}
	}
}

// Count returns the ticks remaining.
func (t *Timer) Count() uint32 { return t.count }

func (t *Timer) Period() uint32 { return t.period }

func (t *Timer) IsRunning() bool { return t.active }

// IsFinished reports whether the timer reached zero since the last ClearFinished.
func (t *Timer) IsFinished() bool { return t.finished }

func (t *Timer) ClearFinished() { t.finished = false }

// SetFinishedFunc sets the completion callback. It runs synchronously inside
// Tick.
func (t *Timer) SetFinishedFunc(fn FinishedFunc) { t.onFinished = fn }
