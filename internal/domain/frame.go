// Package domain contains core domain types for the retropix pipeline.
package domain

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
)

// BytesPerPixel is the number of bytes per pixel (RGBA).
const BytesPerPixel = 4

// RGB represents an RGB color with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// NewRGB creates a new RGB color.
func NewRGB(r, g, b uint8) RGB {
	return RGB{R: r, G: g, B: b}
}

// ParseHex parses a "#rrggbb" or "rrggbb" hex triple.
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Equals checks if two RGB colors are equal.
func (c RGB) Equals(other RGB) bool {
	return c.R == other.R && c.G == other.G && c.B == other.B
}

// String returns a string representation of the RGB color.
func (c RGB) String() string {
	return fmt.Sprintf("RGB(%d, %d, %d)", c.R, c.G, c.B)
}

// Hex returns the color as a "#rrggbb" string.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGBA implements color.Color; the color is always fully opaque.
func (c RGB) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}.RGBA()
}

// Frame represents a single frame of pixel data.
type Frame struct {
	Width  int
	Height int
	// Pixels is a flat array of RGBA values: [r0,g0,b0,a0, r1,g1,b1,a1, ...]
	Pixels []byte
}

// NewFrame creates a new opaque frame filled with black (0, 0, 0).
func NewFrame(width, height int) *Frame {
	f := &Frame{
		Width:  width,
		Height: height,
		Pixels: make([]byte, width*height*BytesPerPixel),
	}
	for i := 3; i < len(f.Pixels); i += BytesPerPixel {
		f.Pixels[i] = 255
	}
	return f
}

// NewFrameWithColor creates a new frame filled with the specified color.
func NewFrameWithColor(width, height int, color RGB) *Frame {
	f := NewFrame(width, height)
	f.Fill(color)
	return f
}

// SetPixel sets a single pixel in the frame. Out of bounds coordinates are silently ignored.
func (f *Frame) SetPixel(x, y int, color RGB) {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return
	}
	offset := (y*f.Width + x) * BytesPerPixel
	f.Pixels[offset] = color.R
	f.Pixels[offset+1] = color.G
	f.Pixels[offset+2] = color.B
	f.Pixels[offset+3] = 255
}

// GetPixel returns the color at the specified coordinates, or nil if out of bounds.
func (f *Frame) GetPixel(x, y int) *RGB {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return nil
	}
	offset := (y*f.Width + x) * BytesPerPixel
	return &RGB{
		R: f.Pixels[offset],
		G: f.Pixels[offset+1],
		B: f.Pixels[offset+2],
	}
}

// Fill fills the entire frame with the specified color, fully opaque.
func (f *Frame) Fill(color RGB) {
	for i := 0; i < f.Width*f.Height; i++ {
		offset := i * BytesPerPixel
		f.Pixels[offset] = color.R
		f.Pixels[offset+1] = color.G
		f.Pixels[offset+2] = color.B
		f.Pixels[offset+3] = 255
	}
}

// Clone creates a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	clone := &Frame{
		Width:  f.Width,
		Height: f.Height,
		Pixels: make([]byte, len(f.Pixels)),
	}
	copy(clone.Pixels, f.Pixels)
	return clone
}

// ToImage converts the frame to an image.NRGBA. The returned image shares no
// storage with the frame.
func (f *Frame) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	rowBytes := f.Width * BytesPerPixel
	for y := 0; y < f.Height; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+rowBytes], f.Pixels[y*rowBytes:(y+1)*rowBytes])
	}
	return img
}

// FromImage converts any image.Image into a frame.
func FromImage(img image.Image) *Frame {
	b := img.Bounds()
	f := NewFrame(b.Dx(), b.Dy())
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			offset := (y*f.Width + x) * BytesPerPixel
			f.Pixels[offset] = c.R
			f.Pixels[offset+1] = c.G
			f.Pixels[offset+2] = c.B
			f.Pixels[offset+3] = c.A
		}
	}
	return f
}
