package encode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/mkessel/retropix/internal/domain"
)

// rvzMagic heads the raw zstd frame stream.
const rvzMagic = "RVZ1\n"

// RawZstdEncoder is the last-resort container: a plain header followed by a
// single zstd stream of raw RGBA frames. Always available, so negotiation
// never hard-fails.
type RawZstdEncoder struct {
	w      io.Writer
	opts   Options
	zenc   *zstd.Encoder
	frames uint32
	closed bool
}

// NewRawZstdEncoder creates a raw-stream encoder and writes the header.
func NewRawZstdEncoder(w io.Writer, opts Options) (*RawZstdEncoder, error) {
	var hdr [12]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(opts.Width))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(opts.Height))
	binary.LittleEndian.PutUint32(hdr[8:], uint32(opts.FPS))
	if _, err := w.Write([]byte(rvzMagic)); err != nil {
		return nil, fmt.Errorf("write rvz header: %w", err)
	}
	if _, err := w.Write(hdr[:]); err != nil {
		return nil, fmt.Errorf("write rvz header: %w", err)
	}

	zenc, err := zstd.NewWriter(w,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
	)
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	return &RawZstdEncoder{w: w, opts: opts, zenc: zenc}, nil
}

// AddFrame appends one raw RGBA frame to the compressed stream.
func (e *RawZstdEncoder) AddFrame(frame *domain.Frame) error {
	if e.closed {
		return fmt.Errorf("rvz encoder already closed")
	}
	if frame.Width != e.opts.Width || frame.Height != e.opts.Height {
		return fmt.Errorf("frame %dx%d does not match stream %dx%d: %w",
			frame.Width, frame.Height, e.opts.Width, e.opts.Height, domain.ErrInvalidDimensions)
	}
	if _, err := e.zenc.Write(frame.Pixels); err != nil {
		return fmt.Errorf("zstd encode: %w", err)
	}
	e.frames++
	return nil
}

// Close flushes and terminates the zstd stream.
func (e *RawZstdEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	return e.zenc.Close()
}
