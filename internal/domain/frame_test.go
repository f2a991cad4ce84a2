package domain

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRGB(t *testing.T) {
	rgb := NewRGB(255, 128, 64)
	assert.Equal(t, uint8(255), rgb.R)
	assert.Equal(t, uint8(128), rgb.G)
	assert.Equal(t, uint8(64), rgb.B)
}

func TestRGBEquals(t *testing.T) {
	rgb1 := NewRGB(100, 150, 200)
	rgb2 := NewRGB(100, 150, 200)
	rgb3 := NewRGB(100, 150, 201)

	assert.True(t, rgb1.Equals(rgb2))
	assert.False(t, rgb1.Equals(rgb3))
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    RGB
		wantErr bool
	}{
		{name: "with hash", input: "#ff8040", want: NewRGB(255, 128, 64)},
		{name: "without hash", input: "ff8040", want: NewRGB(255, 128, 64)},
		{name: "black", input: "#000000", want: NewRGB(0, 0, 0)},
		{name: "white", input: "#ffffff", want: NewRGB(255, 255, 255)},
		{name: "uppercase", input: "#FFFFFF", want: NewRGB(255, 255, 255)},
		{name: "too short", input: "#fff", wantErr: true},
		{name: "not hex", input: "#zzzzzz", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRGBHexRoundTrip(t *testing.T) {
	c := NewRGB(18, 52, 86)
	parsed, err := ParseHex(c.Hex())
	require.NoError(t, err)
	assert.Equal(t, c, parsed)
}

func TestNewFrame(t *testing.T) {
	frame := NewFrame(64, 48)

	assert.Equal(t, 64, frame.Width)
	assert.Equal(t, 48, frame.Height)
	assert.Equal(t, 64*48*BytesPerPixel, len(frame.Pixels))

	// New frames are opaque black.
	assert.Equal(t, uint8(0), frame.Pixels[0])
	assert.Equal(t, uint8(255), frame.Pixels[3])
}

func TestNewFrameWithColor(t *testing.T) {
	red := NewRGB(255, 0, 0)
	frame := NewFrameWithColor(8, 8, red)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			pixel := frame.GetPixel(x, y)
			require.NotNil(t, pixel)
			assert.True(t, pixel.Equals(red), "Pixel at (%d, %d) should be red", x, y)
		}
	}
}

func TestFrameSetGetPixel(t *testing.T) {
	frame := NewFrame(8, 8)
	blue := NewRGB(0, 0, 255)

	frame.SetPixel(3, 5, blue)
	pixel := frame.GetPixel(3, 5)

	require.NotNil(t, pixel)
	assert.True(t, pixel.Equals(blue))
	// Alpha stays opaque.
	assert.Equal(t, uint8(255), frame.Pixels[(5*8+3)*BytesPerPixel+3])
}

func TestFrameSetPixelOutOfBounds(t *testing.T) {
	frame := NewFrame(8, 8)
	blue := NewRGB(0, 0, 255)

	// Should not panic, silently ignore out of bounds
	frame.SetPixel(-1, 0, blue)
	frame.SetPixel(0, -1, blue)
	frame.SetPixel(8, 0, blue)
	frame.SetPixel(0, 8, blue)
	frame.SetPixel(100, 100, blue)
}

func TestFrameGetPixelOutOfBounds(t *testing.T) {
	frame := NewFrame(8, 8)

	assert.Nil(t, frame.GetPixel(-1, 0))
	assert.Nil(t, frame.GetPixel(0, -1))
	assert.Nil(t, frame.GetPixel(8, 0))
	assert.Nil(t, frame.GetPixel(0, 8))
}

func TestFrameClone(t *testing.T) {
	frame := NewFrameWithColor(4, 4, NewRGB(10, 20, 30))
	clone := frame.Clone()

	clone.SetPixel(0, 0, NewRGB(99, 99, 99))

	assert.True(t, frame.GetPixel(0, 0).Equals(NewRGB(10, 20, 30)))
	assert.True(t, clone.GetPixel(0, 0).Equals(NewRGB(99, 99, 99)))
}

func TestFrameToImage(t *testing.T) {
	frame := NewFrameWithColor(3, 2, NewRGB(1, 2, 3))
	img := frame.ToImage()

	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 255}, img.NRGBAAt(2, 1))
}

func TestFromImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(1, 0, color.NRGBA{R: 40, G: 50, B: 60, A: 255})

	frame := FromImage(img)
	require.Equal(t, 2, frame.Width)
	require.Equal(t, 2, frame.Height)
	assert.True(t, frame.GetPixel(1, 0).Equals(NewRGB(40, 50, 60)))
}

func TestFromImageNonZeroOrigin(t *testing.T) {
	img := image.NewNRGBA(image.Rect(5, 5, 7, 7))
	img.SetNRGBA(5, 5, color.NRGBA{R: 9, G: 8, B: 7, A: 255})

	frame := FromImage(img)
	require.Equal(t, 2, frame.Width)
	assert.True(t, frame.GetPixel(0, 0).Equals(NewRGB(9, 8, 7)))
}
