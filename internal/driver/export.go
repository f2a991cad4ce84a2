package driver

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mkessel/retropix/internal/dither"
	"github.com/mkessel/retropix/internal/domain"
	"github.com/mkessel/retropix/internal/encode"
	"github.com/mkessel/retropix/internal/source"
)

// DefaultExportFPS is the capture frame rate for video export.
const DefaultExportFPS = 30

// progressInterval is how much clip time passes between progress samples.
const progressInterval = 500 * time.Millisecond

// ProgressFunc receives export progress in percent, 0 to 100.
type ProgressFunc func(pct float64)

// ExportResult describes a finished export pass.
type ExportResult struct {
	Container encode.Container
	Frames    int
	Duration  time.Duration
}

// Exporter captures styled frames over a clip's timeline into a negotiated
// video container. One exporter runs one export at a time.
type Exporter struct {
	engine *dither.Engine

	mu        sync.Mutex
	exporting bool
	progress  float64
}

// NewExporter creates an exporter around the given engine.
func NewExporter(engine *dither.Engine) *Exporter {
	return &Exporter{engine: engine}
}

// Exporting reports whether an export pass is in progress.
func (e *Exporter) Exporting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exporting
}

// Progress returns the current export progress in percent.
func (e *Exporter) Progress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progress
}

func (e *Exporter) setProgress(pct float64, onProgress ProgressFunc) {
	e.mu.Lock()
	e.progress = pct
	e.mu.Unlock()
	if onProgress != nil {
		onProgress(pct)
	}
}

// ExportStill runs a single transform and returns the styled frame.
func (e *Exporter) ExportStill(src source.Source, cfg domain.FilterConfig) (*domain.Frame, error) {
	frame, err := src.FrameAt(0)
	if err != nil {
		return nil, err
	}
	return e.engine.Transform(frame, cfg)
}

// ExportVideo plays the clip from position zero, transforms every captured
// frame, and feeds it to the encoder negotiated for the preferred container.
// Progress is sampled every half second of clip time; when the duration is
// unknown the samples are skipped rather than reported as garbage.
func (e *Exporter) ExportVideo(ctx context.Context, src source.Source, cfg domain.FilterConfig,
	w io.Writer, preferred encode.Container, fps int, onProgress ProgressFunc) (*ExportResult, error) {

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if fps <= 0 {
		fps = DefaultExportFPS
	}

	e.mu.Lock()
	if e.exporting {
		e.mu.Unlock()
		return nil, fmt.Errorf("export already in progress")
	}
	e.exporting = true
	e.progress = 0
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.exporting = false
		e.progress = 0
		e.mu.Unlock()
	}()

	width, height := src.Size()
	enc, container, err := encode.Negotiate(w, preferred, encode.Options{Width: width, Height: height, FPS: fps})
	if err != nil {
		return nil, err
	}

	duration := src.Duration()
	step := time.Second / time.Duration(fps)
	nextSample := time.Duration(0)
	frames := 0

	// Playback always restarts at zero so the export covers the whole clip.
	for t := time.Duration(0); t < duration || frames == 0; t += step {
		if err := ctx.Err(); err != nil {
			enc.Close()
			return nil, err
		}

		raw, err := src.FrameAt(t)
		if err != nil {
			enc.Close()
			return nil, err
		}
		styled, err := e.engine.Transform(raw, cfg)
		if err != nil {
			enc.Close()
			return nil, err
		}
		if err := enc.AddFrame(styled); err != nil {
			enc.Close()
			return nil, err
		}
		frames++

		if duration > 0 && t >= nextSample {
			e.setProgress(float64(t)/float64(duration)*100, onProgress)
			nextSample += progressInterval
		}
	}

	if err := enc.Close(); err != nil {
		return nil, err
	}
	e.setProgress(100, onProgress)

	return &ExportResult{
		Container: container,
		Frames:    frames,
		Duration:  time.Duration(frames) * step,
	}, nil
}
