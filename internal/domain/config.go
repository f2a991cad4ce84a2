package domain

import "fmt"

// Mode selects the dithering algorithm.
type Mode string

// Supported dither modes. Unrecognized values fall back to ModeThreshold.
const (
	ModeBayer          Mode = "bayer"
	ModeThreshold      Mode = "threshold"
	ModeHalftone       Mode = "halftone"
	ModeStochastic     Mode = "stochastic"
	ModeFloydSteinberg Mode = "floyd"
)

// Recognized reports whether m is one of the enumerated dither modes.
func (m Mode) Recognized() bool {
	switch m {
	case ModeBayer, ModeThreshold, ModeHalftone, ModeStochastic, ModeFloydSteinberg:
		return true
	}
	return false
}

// Configuration value ranges accepted from callers.
const (
	MinPixelSize  = 1
	MaxPixelSize  = 24
	MinContrast   = -100
	MaxContrast   = 100
	MinBrightness = -128
	MaxBrightness = 128
	MinThreshold  = 0
	MaxThreshold  = 255

	// degenerateContrast makes the contrast correction factor divide by zero.
	degenerateContrast = 259
)

// FilterConfig holds all parameters of one transform invocation.
// It is treated as immutable once handed to the engine.
type FilterConfig struct {
	PixelSize  int     // size in source pixels of one output block
	Contrast   float64 // [-100, 100]
	Brightness float64 // additive offset
	Threshold  float64 // [0, 255] luminance cut point
	Mode       Mode
	Invert     bool    // swaps which palette color represents "on"
	DotScale   float64 // halftone dot radius scale factor
	ColorA     RGB     // "off"/background
	ColorB     RGB     // "on"/foreground
}

// DefaultConfig returns the configuration used when no flags are given.
func DefaultConfig() FilterConfig {
	return FilterConfig{
		PixelSize: 8,
		Threshold: 128,
		Mode:      ModeBayer,
		DotScale:  1,
		ColorA:    NewRGB(0, 0, 0),
		ColorB:    NewRGB(255, 255, 255),
	}
}

// Validate checks the configuration against the accepted value ranges.
func (c FilterConfig) Validate() error {
	if c.PixelSize < MinPixelSize || c.PixelSize > MaxPixelSize {
		return fmt.Errorf("pixel size %d out of range [%d, %d]: %w",
			c.PixelSize, MinPixelSize, MaxPixelSize, ErrInvalidDimensions)
	}
	if c.Contrast == degenerateContrast {
		return ErrDegenerateContrast
	}
	if c.Contrast < MinContrast || c.Contrast > MaxContrast {
		return fmt.Errorf("contrast %g out of range [%d, %d]", c.Contrast, MinContrast, MaxContrast)
	}
	if c.Brightness < MinBrightness || c.Brightness > MaxBrightness {
		return fmt.Errorf("brightness %g out of range [%d, %d]", c.Brightness, MinBrightness, MaxBrightness)
	}
	if c.Threshold < MinThreshold || c.Threshold > MaxThreshold {
		return fmt.Errorf("threshold %g out of range [%d, %d]", c.Threshold, MinThreshold, MaxThreshold)
	}
	if c.DotScale <= 0 {
		return fmt.Errorf("dot scale %g must be positive", c.DotScale)
	}
	return nil
}

// Suggestion is a partial configuration proposed by the suggestion service.
// Nil fields mean "no opinion".
type Suggestion struct {
	PixelSize  *int     `json:"pixelSize,omitempty"`
	Contrast   *float64 `json:"contrast,omitempty"`
	Brightness *float64 `json:"brightness,omitempty"`
	Threshold  *float64 `json:"threshold,omitempty"`
	Mode       *Mode    `json:"mode,omitempty"`
}

// Empty reports whether the suggestion carries no values at all.
func (s Suggestion) Empty() bool {
	return s.PixelSize == nil && s.Contrast == nil && s.Brightness == nil &&
		s.Threshold == nil && s.Mode == nil
}

// Merge returns a copy of the configuration with the suggestion's fields
// applied. An empty suggestion is a no-op. Out-of-range values are clamped
// rather than rejected, so a sloppy suggestion never breaks the session.
func (c FilterConfig) Merge(s Suggestion) FilterConfig {
	out := c
	if s.PixelSize != nil {
		out.PixelSize = clampInt(*s.PixelSize, MinPixelSize, MaxPixelSize)
	}
	if s.Contrast != nil {
		out.Contrast = clampFloat(*s.Contrast, MinContrast, MaxContrast)
	}
	if s.Brightness != nil {
		out.Brightness = clampFloat(*s.Brightness, MinBrightness, MaxBrightness)
	}
	if s.Threshold != nil {
		out.Threshold = clampFloat(*s.Threshold, MinThreshold, MaxThreshold)
	}
	if s.Mode != nil && s.Mode.Recognized() {
		out.Mode = *s.Mode
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
