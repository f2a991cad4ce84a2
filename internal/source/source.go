// Package source provides decoded media sources for the pipeline: still
// images and animated GIF clips treated as video.
package source

import (
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"

	"github.com/mkessel/retropix/internal/domain"
)

// Source is one decoded piece of media. Sources own their decoded buffers;
// Close releases them and must be called when a session swaps sources.
type Source interface {
	// Size returns the intrinsic dimensions.
	Size() (width, height int)
	// FrameAt returns the frame covering the given playback position.
	// Still sources ignore the position.
	FrameAt(t time.Duration) (*domain.Frame, error)
	// Duration returns the clip length, or 0 for still sources.
	Duration() time.Duration
	Close() error
}

// Open decodes the file at path into a source. GIF files with more than one
// frame become clips; everything else is a still.
func Open(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".gif") {
		g, err := gif.DecodeAll(f)
		if err != nil {
			return nil, fmt.Errorf("%w: decode gif %s: %v", domain.ErrSourceUnavailable, path, err)
		}
		if len(g.Image) > 1 {
			return NewClipSource(g)
		}
	}

	if _, err := f.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrSourceUnavailable, path, err)
	}
	return NewImageSource(img)
}

// ImageSource is a still image.
type ImageSource struct {
	frame *domain.Frame
}

// NewImageSource wraps a decoded image.
func NewImageSource(img image.Image) (*ImageSource, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, domain.ErrInvalidDimensions
	}
	return &ImageSource{frame: domain.FromImage(img)}, nil
}

// Size returns the image dimensions.
func (s *ImageSource) Size() (int, int) {
	return s.frame.Width, s.frame.Height
}

// FrameAt returns the still frame regardless of position.
func (s *ImageSource) FrameAt(time.Duration) (*domain.Frame, error) {
	if s.frame == nil {
		return nil, domain.ErrSourceUnavailable
	}
	return s.frame, nil
}

// Duration is always zero for a still.
func (s *ImageSource) Duration() time.Duration { return 0 }

// Close releases the decoded buffer.
func (s *ImageSource) Close() error {
	s.frame = nil
	return nil
}

// ClipSource is an animated GIF played as a video clip.
type ClipSource struct {
	frames []*domain.Frame
	// stamps[i] is the time at which frame i ends.
	stamps   []time.Duration
	width    int
	height   int
	duration time.Duration
}

// NewClipSource coalesces an animated GIF into a sequence of full frames
// with accumulated timestamps. Frames are composed over the running canvas
// at their declared offsets.
func NewClipSource(g *gif.GIF) (*ClipSource, error) {
	if len(g.Image) == 0 {
		return nil, domain.ErrSourceUnavailable
	}
	w, h := g.Config.Width, g.Config.Height
	if w == 0 || h == 0 {
		b := g.Image[0].Bounds()
		w, h = b.Dx(), b.Dy()
	}
	if w <= 0 || h <= 0 {
		return nil, domain.ErrInvalidDimensions
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))
	c := &ClipSource{width: w, height: h}
	var elapsed time.Duration
	for i, pal := range g.Image {
		draw.Draw(canvas, pal.Bounds(), pal, pal.Bounds().Min, draw.Over)
		c.frames = append(c.frames, domain.FromImage(canvas))

		delay := 100 * time.Millisecond
		if i < len(g.Delay) && g.Delay[i] > 0 {
			delay = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		elapsed += delay
		c.stamps = append(c.stamps, elapsed)
	}
	c.duration = elapsed
	return c, nil
}

// Size returns the clip dimensions.
func (c *ClipSource) Size() (int, int) {
	return c.width, c.height
}

// Duration returns the total clip length.
func (c *ClipSource) Duration() time.Duration {
	return c.duration
}

// FrameAt returns the frame covering position t, clamped to the clip ends.
func (c *ClipSource) FrameAt(t time.Duration) (*domain.Frame, error) {
	if len(c.frames) == 0 {
		return nil, domain.ErrSourceUnavailable
	}
	for i, end := range c.stamps {
		if t < end {
			return c.frames[i], nil
		}
	}
	return c.frames[len(c.frames)-1], nil
}

// Close releases all decoded frames.
func (c *ClipSource) Close() error {
	c.frames = nil
	c.stamps = nil
	return nil
}
