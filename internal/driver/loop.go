package driver

import (
	"sync"
	"time"

	"github.com/mkessel/retropix/internal/domain"
)

// DefaultRefreshRate is the live-preview tick rate.
const DefaultRefreshRate = 30

// Surface is a presentation target the refresh loop writes styled frames into.
type Surface interface {
	Blit(frame *domain.Frame) error
}

// FrameFunc produces the current styled frame for one refresh tick.
type FrameFunc func(elapsed time.Duration) (*domain.Frame, error)

// RefreshLoop runs one transform per tick against a surface. The single loop
// goroutine serializes transforms, so ticks never overlap on the working
// buffer. Start and Stop are idempotent.
type RefreshLoop struct {
	interval time.Duration
	frame    FrameFunc
	surface  Surface

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewRefreshLoop creates a loop ticking at the given frames per second.
// A non-positive fps uses DefaultRefreshRate.
func NewRefreshLoop(fps int, frame FrameFunc, surface Surface) *RefreshLoop {
	if fps <= 0 {
		fps = DefaultRefreshRate
	}
	return &RefreshLoop{
		interval: time.Second / time.Duration(fps),
		frame:    frame,
		surface:  surface,
	}
}

// Start launches the loop. Starting a running loop is a no-op.
func (l *RefreshLoop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return
	}
	l.running = true
	l.stop = make(chan struct{})
	l.done = make(chan struct{})
	go l.run(l.stop, l.done)
}

func (l *RefreshLoop) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	started := time.Now()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			frame, err := l.frame(time.Since(started))
			if err != nil {
				// Transform errors are local to the tick; retry on the next one.
				continue
			}
			if err := l.surface.Blit(frame); err != nil {
				return
			}
		}
	}
}

// Stop halts the loop and waits for the in-flight tick to finish.
// Stopping an already-stopped loop is a no-op.
func (l *RefreshLoop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	close(l.stop)
	done := l.done
	l.mu.Unlock()
	<-done
}

// Running reports whether the loop is currently active.
func (l *RefreshLoop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}
