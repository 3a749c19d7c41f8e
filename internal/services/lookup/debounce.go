package lookup

import (
	"sync"
	"time"
)

// Debouncer runs a function only after its input has settled for a fixed
// delay. Each Trigger call replaces the pending one (trailing debounce, not
// throttling), and the stale guard drops results whose originating input no
// longer matches the latest trigger.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	latest string
	closed bool
}

// NewDebouncer constructs a Debouncer with the given settle delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn to run after the settle delay, cancelling any pending
// run. When fn finally fires it receives the input it was scheduled with; it
// is only invoked if that input is still the latest one.
func (d *Debouncer) Trigger(input string, fn func(input string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	d.latest = input
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		if d.Stale(input) {
			return
		}
		fn(input)
	})
}

// Stale reports whether input no longer matches the latest trigger. Callers
// performing asynchronous work re-check this before applying results, so a
// response from a superseded query is discarded instead of applied.
func (d *Debouncer) Stale(input string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed || input != d.latest
}

// Stop cancels any pending run and marks the debouncer closed; further
// triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
