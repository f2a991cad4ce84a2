package encode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image/jpeg"
	"io"

	"github.com/mkessel/retropix/internal/domain"
)

// jpegQuality for MJPEG frames. Two-color frames compress well even at high quality.
const jpegQuality = 90

// AVIEncoder assembles an MJPEG stream inside a RIFF/AVI container. Frames
// are JPEG-encoded as they arrive and the container is written on Close,
// since chunk offsets depend on every frame size.
type AVIEncoder struct {
	w      io.Writer
	opts   Options
	frames [][]byte
	closed bool
}

// NewAVIEncoder creates an AVI/MJPEG encoder. Dimensions above 65535 do not
// fit the stream header rect and are refused.
func NewAVIEncoder(w io.Writer, opts Options) (*AVIEncoder, error) {
	if opts.Width > 0xffff || opts.Height > 0xffff {
		return nil, fmt.Errorf("%w: avi rect limited to 65535", domain.ErrInvalidDimensions)
	}
	return &AVIEncoder{w: w, opts: opts}, nil
}

// AddFrame JPEG-encodes one styled frame.
func (e *AVIEncoder) AddFrame(frame *domain.Frame) error {
	if e.closed {
		return fmt.Errorf("avi encoder already closed")
	}
	if frame.Width != e.opts.Width || frame.Height != e.opts.Height {
		return fmt.Errorf("frame %dx%d does not match stream %dx%d: %w",
			frame.Width, frame.Height, e.opts.Width, e.opts.Height, domain.ErrInvalidDimensions)
	}
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, frame.ToImage(), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("encode JPEG frame: %w", err)
	}
	e.frames = append(e.frames, buf.Bytes())
	return nil
}

// Close writes the full container. Safe to call once; further frames are refused.
func (e *AVIEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	return e.writeContainer()
}

// binaryWriter wraps an io.Writer and accumulates the first error,
// preventing silently-ignored write failures throughout the AVI assembly.
type binaryWriter struct {
	w   io.Writer
	err error
}

func (bw *binaryWriter) fourCC(s string) {
	if bw.err != nil {
		return
	}
	_, bw.err = bw.w.Write([]byte(s))
}

func (bw *binaryWriter) u32(v uint32) {
	if bw.err != nil {
		return
	}
	bw.err = binary.Write(bw.w, binary.LittleEndian, v)
}

func (bw *binaryWriter) u16(v uint16) {
	if bw.err != nil {
		return
	}
	bw.err = binary.Write(bw.w, binary.LittleEndian, v)
}

func (bw *binaryWriter) bytes(data []byte) {
	if bw.err != nil {
		return
	}
	_, bw.err = bw.w.Write(data)
}

func padded(n uint32) uint32 {
	// AVI requires even-aligned chunks.
	if n%2 != 0 {
		return n + 1
	}
	return n
}

func (e *AVIEncoder) writeContainer() error {
	imgW := uint32(e.opts.Width)
	imgH := uint32(e.opts.Height)
	fps := uint32(e.opts.FPS)
	frames := uint32(len(e.frames))

	var moviSize, maxFrame uint32 = 4, 0
	for _, data := range e.frames {
		moviSize += 8 + padded(uint32(len(data)))
		if uint32(len(data)) > maxFrame {
			maxFrame = uint32(len(data))
		}
	}
	idx1Size := 8 + frames*16
	hdrlSize := uint32(4 + 64 + 124) // "hdrl" + avih + strl
	fileSize := 4 + (8 + hdrlSize) + (8 + moviSize) + idx1Size

	bw := &binaryWriter{w: e.w}

	bw.fourCC("RIFF")
	bw.u32(fileSize)
	bw.fourCC("AVI ")

	bw.fourCC("LIST")
	bw.u32(hdrlSize)
	bw.fourCC("hdrl")

	// avih (56 bytes)
	bw.fourCC("avih")
	bw.u32(56)
	bw.u32(1_000_000 / fps) // microseconds per frame
	bw.u32(maxFrame * fps)  // max bytes/sec
	bw.u32(0)               // padding granularity
	bw.u32(0x10)            // AVIF_HASINDEX
	bw.u32(frames)
	bw.u32(0)        // initial frames
	bw.u32(1)        // streams
	bw.u32(maxFrame) // suggested buffer
	bw.u32(imgW)
	bw.u32(imgH)
	bw.u32(0) // reserved ×4
	bw.u32(0)
	bw.u32(0)
	bw.u32(0)

	// strl LIST (116 bytes)
	bw.fourCC("LIST")
	bw.u32(116)
	bw.fourCC("strl")

	// strh (56 bytes)
	bw.fourCC("strh")
	bw.u32(56)
	bw.fourCC("vids")
	bw.fourCC("MJPG")
	bw.u32(0) // flags
	bw.u16(0) // priority
	bw.u16(0) // language
	bw.u32(0) // initial frames
	bw.u32(1) // scale
	bw.u32(fps)
	bw.u32(0) // start
	bw.u32(frames)
	bw.u32(maxFrame) // suggested buffer
	bw.u32(0)        // quality
	bw.u32(0)        // sample size
	bw.u16(0)        // rect left
	bw.u16(0)        // rect top
	bw.u16(uint16(imgW))
	bw.u16(uint16(imgH))

	// strf — BITMAPINFOHEADER (40 bytes)
	bw.fourCC("strf")
	bw.u32(40)
	bw.u32(40)
	bw.u32(imgW)
	bw.u32(imgH)
	bw.u16(1)  // planes
	bw.u16(24) // bpp
	bw.fourCC("MJPG")
	bw.u32(imgW * imgH * 3)
	bw.u32(0) // x pels/m
	bw.u32(0) // y pels/m
	bw.u32(0) // clr used
	bw.u32(0) // clr important

	bw.fourCC("LIST")
	bw.u32(moviSize)
	bw.fourCC("movi")

	padByte := []byte{0}
	for _, data := range e.frames {
		bw.fourCC("00dc")
		bw.u32(uint32(len(data)))
		bw.bytes(data)
		if len(data)%2 != 0 {
			bw.bytes(padByte)
		}
	}

	bw.fourCC("idx1")
	bw.u32(frames * 16)

	offset := uint32(4) // from movi start
	for _, data := range e.frames {
		bw.fourCC("00dc")
		bw.u32(0x10) // AVIIF_KEYFRAME
		bw.u32(offset)
		bw.u32(uint32(len(data)))
		offset += 8 + padded(uint32(len(data)))
	}

	if bw.err != nil {
		return fmt.Errorf("write AVI: %w", bw.err)
	}
	return nil
}
