package directory

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period of the search input.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer coalesces rapid calls so only the last one runs once the input goes quiet.
type Debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	duration time.Duration
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(duration time.Duration) *Debouncer {
	if duration < 0 {
		duration = 0
	}
	return &Debouncer{duration: duration}
}

// Debounce schedules fn after the quiet period, replacing any pending call.
func (d *Debouncer) Debounce(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, fn)
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
