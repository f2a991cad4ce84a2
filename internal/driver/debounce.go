package driver

import (
	"sync"
	"time"

	"github.com/mkessel/retropix/internal/domain"
)

// DefaultDebounce batches rapid control changes so dragging a slider does
// not trigger a transform per tick.
const DefaultDebounce = 50 * time.Millisecond

// Debouncer delivers only the last configuration seen after updates go
// quiet for the debounce window. Every update re-arms the timer.
type Debouncer struct {
	delay time.Duration
	apply func(domain.FilterConfig)

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer invoking apply with the settled config.
// A non-positive delay uses DefaultDebounce.
func NewDebouncer(delay time.Duration, apply func(domain.FilterConfig)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, apply: apply}
}

// Update records a configuration change and re-arms the timer.
func (d *Debouncer) Update(cfg domain.FilterConfig) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			d.apply(cfg)
		}
	})
}

// Stop discards any pending delivery. Idempotent.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
