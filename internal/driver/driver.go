package driver

import (
	"time"

	"github.com/mkessel/retropix/internal/dither"
	"github.com/mkessel/retropix/internal/domain"
	"github.com/mkessel/retropix/internal/source"
)

// Driver wires a media session to the transform engine. Configuration
// changes on the still path are debounced; the settled value re-renders the
// session output (last writer wins on the displayed result).
type Driver struct {
	engine    *dither.Engine
	session   *Session
	debouncer *Debouncer
}

// New creates a driver with a fresh session.
func New(engine *dither.Engine) *Driver {
	d := &Driver{engine: engine, session: NewSession()}
	d.debouncer = NewDebouncer(DefaultDebounce, func(cfg domain.FilterConfig) {
		if frame, err := d.Render(cfg); err == nil {
			d.session.SetOutput(frame)
		}
	})
	return d
}

// Session returns the driver's media session.
func (d *Driver) Session() *Session {
	return d.session
}

// Load opens the media at path and swaps it into the session, releasing the
// previous source.
func (d *Driver) Load(path string) error {
	src, err := source.Open(path)
	if err != nil {
		return err
	}
	return d.session.ReplaceSource(src)
}

// UpdateConfig schedules a debounced re-render with the new configuration.
func (d *Driver) UpdateConfig(cfg domain.FilterConfig) {
	d.debouncer.Update(cfg)
}

// Render transforms the current frame immediately.
func (d *Driver) Render(cfg domain.FilterConfig) (*domain.Frame, error) {
	src := d.session.Source()
	if src == nil {
		return nil, domain.ErrSourceUnavailable
	}
	frame, err := src.FrameAt(0)
	if err != nil {
		return nil, err
	}
	return d.engine.Transform(frame, cfg)
}

// Preview returns a refresh loop rendering the session's clip into the
// surface at the given rate. The caller starts and stops the loop.
func (d *Driver) Preview(fps int, cfg domain.FilterConfig, surface Surface) *RefreshLoop {
	return NewRefreshLoop(fps, func(elapsed time.Duration) (*domain.Frame, error) {
		src := d.session.Source()
		if src == nil {
			return nil, domain.ErrSourceUnavailable
		}
		t := elapsed
		if dur := src.Duration(); dur > 0 {
			t = elapsed % dur
		}
		raw, err := src.FrameAt(t)
		if err != nil {
			return nil, err
		}
		return d.engine.Transform(raw, cfg)
	}, surface)
}

// Close tears down the debouncer and session. Idempotent.
func (d *Driver) Close() error {
	d.debouncer.Stop()
	return d.session.Close()
}
