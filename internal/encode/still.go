// Package encode writes export artifacts: lossless stills and real-time
// video containers with codec negotiation.
package encode

import (
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/mkessel/retropix/internal/domain"
)

// EncodeStill writes the frame as a single still image. Supported formats
// are "png" (lossless, alpha-capable, the default) and "bmp".
func EncodeStill(w io.Writer, frame *domain.Frame, format string) error {
	switch strings.ToLower(format) {
	case "", "png":
		return png.Encode(w, frame.ToImage())
	case "bmp":
		return bmp.Encode(w, frame.ToImage())
	default:
		return fmt.Errorf("unsupported still format %q: use png or bmp", format)
	}
}

// WriteStill writes the frame to path, inferring the format from the extension.
func WriteStill(path string, frame *domain.Frame) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := EncodeStill(f, frame, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
