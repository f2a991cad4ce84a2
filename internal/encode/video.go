package encode

import (
	"fmt"
	"io"

	"github.com/mkessel/retropix/internal/domain"
)

// VideoEncoder consumes styled frames at a fixed rate and assembles them
// into a container on Close.
type VideoEncoder interface {
	AddFrame(frame *domain.Frame) error
	Close() error
}

// Options hold the capture parameters shared by all containers.
type Options struct {
	Width  int
	Height int
	FPS    int
}

func (o Options) validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return domain.ErrInvalidDimensions
	}
	if o.FPS <= 0 {
		return fmt.Errorf("fps %d must be positive", o.FPS)
	}
	return nil
}

// Container identifies a negotiated video container.
type Container string

// Containers in preference order. Codec support is platform-dependent in the
// general case, so callers go through Negotiate rather than constructing an
// encoder directly.
const (
	ContainerAVI Container = "avi" // MJPEG in RIFF/AVI
	ContainerGIF Container = "gif" // animated GIF
	ContainerRVZ Container = "rvz" // zstd-compressed raw RGBA stream
)

// Ext returns the file extension for the container.
func (c Container) Ext() string { return "." + string(c) }

var preference = []Container{ContainerAVI, ContainerGIF, ContainerRVZ}

// Negotiate returns the first encoder in the preference chain that accepts
// the options. If preferred is non-empty it is tried first; a refusal falls
// through to the rest of the chain instead of failing the export. Only when
// every container refuses does it return ErrEncodingUnsupported.
func Negotiate(w io.Writer, preferred Container, opts Options) (VideoEncoder, Container, error) {
	chain := preference
	if preferred != "" {
		chain = append([]Container{preferred}, preference...)
	}

	var firstErr error
	tried := make(map[Container]bool)
	for _, c := range chain {
		if tried[c] {
			continue
		}
		tried[c] = true

		enc, err := newEncoder(w, c, opts)
		if err == nil {
			return enc, c, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, "", fmt.Errorf("%w: %v", domain.ErrEncodingUnsupported, firstErr)
}

func newEncoder(w io.Writer, c Container, opts Options) (VideoEncoder, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	switch c {
	case ContainerAVI:
		return NewAVIEncoder(w, opts)
	case ContainerGIF:
		return NewGIFEncoder(w, opts)
	case ContainerRVZ:
		return NewRawZstdEncoder(w, opts)
	default:
		return nil, fmt.Errorf("unknown container %q", c)
	}
}
