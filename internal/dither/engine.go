// Package dither implements the frame transform engine: downsample, tone
// adjustment, dither decision, palette mapping, and nearest-neighbor upscale.
package dither

import (
	"image/color"
	"math"
	"math/rand"
	"time"

	ditherlib "github.com/makeworld-the-better-one/dither/v2"

	"github.com/mkessel/retropix/internal/domain"
)

// Rand supplies uniform values in [0, 1). *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Engine runs the per-frame transform. It is stateless apart from the
// injected random source used by the stochastic mode.
type Engine struct {
	rnd Rand
}

// New creates an engine with a time-seeded random source.
func New() *Engine {
	return &Engine{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewWithRand creates an engine with the given random source, making the
// stochastic mode deterministic for tests.
func NewWithRand(rnd Rand) *Engine {
	return &Engine{rnd: rnd}
}

// bayer4 is the 4x4 ordered-dither threshold matrix, normalized to [0, 1).
var bayer4 = [4][4]float64{
	{0.0 / 16, 8.0 / 16, 2.0 / 16, 10.0 / 16},
	{12.0 / 16, 4.0 / 16, 14.0 / 16, 6.0 / 16},
	{3.0 / 16, 11.0 / 16, 1.0 / 16, 9.0 / 16},
	{15.0 / 16, 7.0 / 16, 13.0 / 16, 5.0 / 16},
}

// Transform maps the source frame to a styled frame of identical dimensions.
// Pixelation comes from resolution loss in a working buffer of size
// floor(source/pixelSize) followed by a hard-edged upscale, never from
// shrinking the visible canvas.
func (e *Engine) Transform(src *domain.Frame, cfg domain.FilterConfig) (*domain.Frame, error) {
	if src == nil || src.Width <= 0 || src.Height <= 0 || cfg.PixelSize < 1 {
		return nil, domain.ErrInvalidDimensions
	}
	if cfg.Contrast == 259 {
		return nil, domain.ErrDegenerateContrast
	}

	workW := src.Width / cfg.PixelSize
	workH := src.Height / cfg.PixelSize
	if workW < 1 || workH < 1 {
		return nil, domain.ErrInvalidDimensions
	}

	gray := e.downsampleGray(src, cfg, workW, workH)

	var bits []uint8
	if cfg.Mode == domain.ModeFloydSteinberg {
		bits = diffuseBits(gray, workW, workH)
	} else {
		bits = e.thresholdBits(gray, cfg, workW, workH)
	}

	if cfg.Invert {
		for i, b := range bits {
			bits[i] = 1 - b
		}
	}

	return upscale(bits, cfg, workW, workH, src.Width, src.Height), nil
}

// downsampleGray box-averages each pixelSize block of the source, applies the
// contrast/brightness adjustment, and returns per-pixel luminance in [0, 1].
//
// The contrast formula intentionally does not clamp channel values to
// [0, 255] before the luminance step; extreme settings push intermediates
// out of range and that shapes the visible output.
func (e *Engine) downsampleGray(src *domain.Frame, cfg domain.FilterConfig, workW, workH int) []float64 {
	factor := 259 * (cfg.Contrast + 255) / (255 * (259 - cfg.Contrast))
	ps := cfg.PixelSize
	gray := make([]float64, workW*workH)

	for wy := 0; wy < workH; wy++ {
		for wx := 0; wx < workW; wx++ {
			var sumR, sumG, sumB int
			for dy := 0; dy < ps; dy++ {
				row := ((wy*ps+dy)*src.Width + wx*ps) * domain.BytesPerPixel
				for dx := 0; dx < ps; dx++ {
					sumR += int(src.Pixels[row])
					sumG += int(src.Pixels[row+1])
					sumB += int(src.Pixels[row+2])
					row += domain.BytesPerPixel
				}
			}
			n := float64(ps * ps)
			r := factor*(float64(sumR)/n-128) + 128 + cfg.Brightness
			g := factor*(float64(sumG)/n-128) + 128 + cfg.Brightness
			b := factor*(float64(sumB)/n-128) + 128 + cfg.Brightness
			gray[wy*workW+wx] = clamp01((0.299*r + 0.587*g + 0.114*b) / 255)
		}
	}
	return gray
}

// thresholdBits makes the per-pixel on/off decision against the mode's
// threshold surface. The comparison is strictly greater-than: luminance
// exactly at the threshold stays off.
func (e *Engine) thresholdBits(gray []float64, cfg domain.FilterConfig, workW, workH int) []uint8 {
	t := cfg.Threshold / 255
	bits := make([]uint8, len(gray))

	for y := 0; y < workH; y++ {
		for x := 0; x < workW; x++ {
			var cut float64
			switch cfg.Mode {
			case domain.ModeBayer:
				cut = bayer4[y%4][x%4]*0.8 + t*0.2
			case domain.ModeHalftone:
				dx := float64(x%2)/2 - 0.5
				dy := float64(y%2)/2 - 0.5
				cut = math.Sqrt(dx*dx+dy*dy)*cfg.DotScale + t*0.2
			case domain.ModeStochastic:
				cut = e.rnd.Float64()*0.6 + t*0.4
			default:
				// Threshold mode, and the fallback for unrecognized modes.
				cut = t
			}
			if gray[y*workW+x] > cut {
				bits[y*workW+x] = 1
			}
		}
	}
	return bits
}

// diffuseBits runs Floyd-Steinberg error diffusion over the luminance plane
// against a black/white palette; white maps to the "on" bit.
func diffuseBits(gray []float64, workW, workH int) []uint8 {
	img := domain.NewFrame(workW, workH)
	for i, g := range gray {
		v := uint8(g*255 + 0.5)
		img.SetPixel(i%workW, i/workW, domain.NewRGB(v, v, v))
	}

	d := ditherlib.NewDitherer([]color.Color{color.Black, color.White})
	d.Matrix = ditherlib.FloydSteinberg
	out := d.Dither(img.ToImage())

	bits := make([]uint8, workW*workH)
	bounds := out.Bounds()
	for y := 0; y < workH; y++ {
		for x := 0; x < workW; x++ {
			r, _, _, _ := out.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			if r > 0x7fff {
				bits[y*workW+x] = 1
			}
		}
	}
	return bits
}

// upscale maps each on/off bit to the palette and blows the working buffer
// back up to source dimensions with hard block edges. The remainder margin
// beyond the last full block repeats the edge blocks.
func upscale(bits []uint8, cfg domain.FilterConfig, workW, workH, outW, outH int) *domain.Frame {
	out := domain.NewFrame(outW, outH)
	for y := 0; y < outH; y++ {
		wy := y / cfg.PixelSize
		if wy >= workH {
			wy = workH - 1
		}
		for x := 0; x < outW; x++ {
			wx := x / cfg.PixelSize
			if wx >= workW {
				wx = workW - 1
			}
			if bits[wy*workW+wx] == 1 {
				out.SetPixel(x, y, cfg.ColorB)
			} else {
				out.SetPixel(x, y, cfg.ColorA)
			}
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
