package scrollspy

import (
	"sync"
	"time"
)

// Throttle limits how often fn runs. Calls inside the interval are
// collapsed into one trailing call, so the last notification before
// scrolling stops always reaches fn.
type Throttle struct {
	interval time.Duration
	fn       func()

	mu      sync.Mutex
	last    time.Time
	timer   *time.Timer
	stopped bool
	now     func() time.Time
}

// NewThrottle wraps fn. An interval <= 0 disables throttling.
func NewThrottle(interval time.Duration, fn func()) *Throttle {
	return &Throttle{interval: interval, fn: fn, now: time.Now}
}

// Notify requests a call to fn.
func (th *Throttle) Notify() {
	if th.interval <= 0 {
		th.fn()
		return
	}

	th.mu.Lock()
	if th.stopped {
		th.mu.Unlock()
		return
	}
	now := th.now()
	wait := th.interval - now.Sub(th.last)
	if wait <= 0 && th.timer == nil {
		th.last = now
		th.mu.Unlock()
		th.fn()
		return
	}
	if th.timer == nil {
		if wait <= 0 {
			wait = th.interval
		}
		th.timer = time.AfterFunc(wait, th.trailing)
	}
	th.mu.Unlock()
}

func (th *Throttle) trailing() {
	th.mu.Lock()
	th.timer = nil
	if th.stopped {
		th.mu.Unlock()
		return
	}
	th.last = th.now()
	th.mu.Unlock()
	th.fn()
}

// Stop cancels any pending trailing call. Further notifications are dropped.
func (th *Throttle) Stop() {
	th.mu.Lock()
	defer th.mu.Unlock()
	th.stopped = true
	if th.timer != nil {
		th.timer.Stop()
		th.timer = nil
	}
}
