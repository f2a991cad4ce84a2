package encode

import (
	"bytes"
	"encoding/binary"
	"image/gif"
	"image/png"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/mkessel/retropix/internal/domain"
)

func testFrame(w, h int) *domain.Frame {
	f := domain.NewFrame(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				f.SetPixel(x, y, domain.NewRGB(255, 255, 255))
			}
		}
	}
	return f
}

func TestEncodeStillPNG(t *testing.T) {
	frame := testFrame(8, 6)
	var buf bytes.Buffer
	require.NoError(t, EncodeStill(&buf, frame, "png"))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())

	// PNG round-trips the palette losslessly.
	decoded := domain.FromImage(img)
	assert.Equal(t, frame.Pixels, decoded.Pixels)
}

func TestEncodeStillBMP(t *testing.T) {
	frame := testFrame(8, 6)
	var buf bytes.Buffer
	require.NoError(t, EncodeStill(&buf, frame, "bmp"))

	img, err := bmp.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())
}

func TestEncodeStillDefaultsToPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeStill(&buf, testFrame(4, 4), ""))
	_, err := png.Decode(&buf)
	assert.NoError(t, err)
}

func TestEncodeStillUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, EncodeStill(&buf, testFrame(4, 4), "webp"))
}

func TestAVIEncoderContainer(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewAVIEncoder(&buf, Options{Width: 8, Height: 8, FPS: 30})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, enc.AddFrame(testFrame(8, 8)))
	}
	require.NoError(t, enc.Close())

	data := buf.Bytes()
	require.Greater(t, len(data), 12)
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "AVI ", string(data[8:12]))

	// RIFF size field covers the whole file minus the 8-byte RIFF header.
	riffSize := binary.LittleEndian.Uint32(data[4:8])
	assert.Equal(t, int(riffSize), len(data)-8)

	// Frame count lives in the avih header.
	frames := binary.LittleEndian.Uint32(data[48:52])
	assert.Equal(t, uint32(3), frames)
}

func TestAVIEncoderRejectsMismatchedFrame(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewAVIEncoder(&buf, Options{Width: 8, Height: 8, FPS: 30})
	require.NoError(t, err)
	assert.ErrorIs(t, enc.AddFrame(testFrame(4, 4)), domain.ErrInvalidDimensions)
}

func TestAVIEncoderCloseIdempotent(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewAVIEncoder(&buf, Options{Width: 8, Height: 8, FPS: 30})
	require.NoError(t, err)
	require.NoError(t, enc.AddFrame(testFrame(8, 8)))
	require.NoError(t, enc.Close())
	size := buf.Len()

	require.NoError(t, enc.Close())
	assert.Equal(t, size, buf.Len(), "second close must not write again")
	assert.Error(t, enc.AddFrame(testFrame(8, 8)))
}

func TestGIFEncoderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewGIFEncoder(&buf, Options{Width: 8, Height: 8, FPS: 10})
	require.NoError(t, err)

	require.NoError(t, enc.AddFrame(testFrame(8, 8)))
	require.NoError(t, enc.AddFrame(domain.NewFrameWithColor(8, 8, domain.NewRGB(255, 0, 0))))
	require.NoError(t, enc.Close())

	anim, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	assert.Len(t, anim.Image, 2)
	assert.Equal(t, 10, anim.Delay[0]) // 10 fps -> 10cs per frame
}

func TestGIFEncoderRefusesHighFPS(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewGIFEncoder(&buf, Options{Width: 8, Height: 8, FPS: 200})
	assert.Error(t, err)
}

func TestRawZstdEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewRawZstdEncoder(&buf, Options{Width: 4, Height: 4, FPS: 30})
	require.NoError(t, err)

	frame := testFrame(4, 4)
	require.NoError(t, enc.AddFrame(frame))
	require.NoError(t, enc.AddFrame(frame))
	require.NoError(t, enc.Close())

	data := buf.Bytes()
	require.Greater(t, len(data), len(rvzMagic)+12)
	assert.Equal(t, rvzMagic, string(data[:len(rvzMagic)]))

	hdr := data[len(rvzMagic):]
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(hdr[0:]))
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(hdr[4:]))
	assert.Equal(t, uint32(30), binary.LittleEndian.Uint32(hdr[8:]))

	dec, err := zstd.NewReader(nil)
	require.NoError(t, err)
	defer dec.Close()
	raw, err := dec.DecodeAll(hdr[12:], nil)
	require.NoError(t, err)
	assert.Equal(t, append(append([]byte{}, frame.Pixels...), frame.Pixels...), raw)
}

func TestNegotiatePrefersRequestedContainer(t *testing.T) {
	var buf bytes.Buffer
	enc, container, err := Negotiate(&buf, ContainerGIF, Options{Width: 8, Height: 8, FPS: 10})
	require.NoError(t, err)
	assert.Equal(t, ContainerGIF, container)
	assert.IsType(t, &GIFEncoder{}, enc)
}

func TestNegotiateFallsBackWhenPreferredRefuses(t *testing.T) {
	// 200fps is beyond GIF timing resolution, so negotiation falls through
	// to the next container instead of failing the export.
	var buf bytes.Buffer
	_, container, err := Negotiate(&buf, ContainerGIF, Options{Width: 8, Height: 8, FPS: 200})
	require.NoError(t, err)
	assert.Equal(t, ContainerAVI, container)
}

func TestNegotiateUnknownPreferredFallsBack(t *testing.T) {
	var buf bytes.Buffer
	_, container, err := Negotiate(&buf, Container("mp4"), Options{Width: 8, Height: 8, FPS: 30})
	require.NoError(t, err)
	assert.Equal(t, ContainerAVI, container)
}

func TestNegotiateInvalidOptions(t *testing.T) {
	var buf bytes.Buffer
	_, _, err := Negotiate(&buf, "", Options{Width: 0, Height: 8, FPS: 30})
	assert.ErrorIs(t, err, domain.ErrEncodingUnsupported)
}
