package accounts

import (
	"sync"
	"time"
)

// Watchdog enforces the inactivity window for one session. It owns a
// single-slot timer: arming replaces any pending timer, so session
// transitions never leak timers. The watchdog is independent of token
// expiry; a cryptographically valid token does not keep a session alive.
type Watchdog struct {
	idleLimit time.Duration
	onExpire  func()
	now       func() time.Time

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	last    time.Time
	stopped bool
}

// WatchdogOption customizes watchdog construction.
type WatchdogOption func(*Watchdog)

// WithWatchdogClock injects a custom clock (useful for tests).
func WithWatchdogClock(clock func() time.Time) WatchdogOption {
	return func(w *Watchdog) {
		if clock != nil {
			w.now = clock
		}
	}
}

// NewWatchdog creates a disarmed watchdog. onExpire runs once, on the
// timer goroutine, when the idle limit elapses with no Touch.
func NewWatchdog(idleLimit time.Duration, onExpire func(), opts ...WatchdogOption) *Watchdog {
	if idleLimit <= 0 {
		idleLimit = DefaultIdleLimit
	}
	w := &Watchdog{
		idleLimit: idleLimit,
		onExpire:  onExpire,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Arm records activity now and starts a fresh idle window. Callers must
// only arm after the session state is durably stored, never before.
func (w *Watchdog) Arm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.last = w.now()
	w.armLocked(w.idleLimit)
}

// ArmRemaining starts a window measured from a persisted activity
// timestamp. It returns false — without arming — when the timestamp is
// already staler than the idle limit; stale activity must not resurrect a
// session.
func (w *Watchdog) ArmRemaining(lastActivity time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return false
	}

	elapsed := w.now().Sub(lastActivity)
	if elapsed > w.idleLimit {
		return false
	}

	w.last = lastActivity
	w.armLocked(w.idleLimit - elapsed)
	return true
}

// Touch consumes a user-presence event: it cancels the pending timer,
// records the activity time, and re-arms a full idle window. Touching an
// expired or stopped watchdog is a no-op.
func (w *Watchdog) Touch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.last = w.now()
	w.armLocked(w.idleLimit)
}

// Stop cancels the pending timer permanently. Used on manual logout.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// LastActivity returns the most recent recorded activity time.
func (w *Watchdog) LastActivity() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// IdleLimit returns the configured window.
func (w *Watchdog) IdleLimit() time.Duration {
	return w.idleLimit
}

func (w *Watchdog) armLocked(d time.Duration) {
	w.gen++
	gen := w.gen
	if w.timer != nil {
		w.timer.Stop()
	}
	if d < 0 {
		d = 0
	}
	w.timer = time.AfterFunc(d, func() {
		w.fire(gen)
	})
}

// fire runs on the timer goroutine. The generation check discards firings
// that raced with an intervening Touch or Stop.
func (w *Watchdog) fire(gen uint64) {
	w.mu.Lock()
	if w.stopped || gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	w.timer = nil
	cb := w.onExpire
	w.mu.Unlock()

	if cb != nil {
		cb()
	}
}
