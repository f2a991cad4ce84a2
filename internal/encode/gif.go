package encode

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"

	"github.com/mkessel/retropix/internal/domain"
)

// GIFEncoder writes styled frames into an animated GIF. The two-color output
// of the pipeline fits a GIF palette losslessly; arbitrary frames quantize
// to the Plan9 palette.
type GIFEncoder struct {
	w      io.Writer
	opts   Options
	anim   gif.GIF
	delay  int // centiseconds per frame
	closed bool
}

// NewGIFEncoder creates an animated GIF encoder. Frame rates above 100fps
// cannot be represented in GIF's centisecond delays and are refused.
func NewGIFEncoder(w io.Writer, opts Options) (*GIFEncoder, error) {
	delay := 100 / opts.FPS
	if delay < 1 {
		return nil, fmt.Errorf("fps %d exceeds gif timing resolution", opts.FPS)
	}
	return &GIFEncoder{w: w, opts: opts, delay: delay}, nil
}

// AddFrame palettizes one styled frame.
func (e *GIFEncoder) AddFrame(frame *domain.Frame) error {
	if e.closed {
		return fmt.Errorf("gif encoder already closed")
	}
	if frame.Width != e.opts.Width || frame.Height != e.opts.Height {
		return fmt.Errorf("frame %dx%d does not match stream %dx%d: %w",
			frame.Width, frame.Height, e.opts.Width, e.opts.Height, domain.ErrInvalidDimensions)
	}

	img := frame.ToImage()
	pal := framePalette(frame)
	out := image.NewPaletted(img.Bounds(), pal)
	draw.FloydSteinberg.Draw(out, img.Bounds(), img, image.Point{})

	e.anim.Image = append(e.anim.Image, out)
	e.anim.Delay = append(e.anim.Delay, e.delay)
	return nil
}

// Close assembles and writes the GIF.
func (e *GIFEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if len(e.anim.Image) == 0 {
		return fmt.Errorf("gif: no frames captured")
	}
	return gif.EncodeAll(e.w, &e.anim)
}

// framePalette collects the frame's distinct colors, falling back to Plan9
// when there are more than a GIF palette can hold.
func framePalette(frame *domain.Frame) color.Palette {
	seen := make(map[domain.RGB]bool)
	var pal color.Palette
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			c := *frame.GetPixel(x, y)
			if seen[c] {
				continue
			}
			seen[c] = true
			pal = append(pal, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
			if len(pal) > 256 {
				return palette.Plan9
			}
		}
	}
	return pal
}
