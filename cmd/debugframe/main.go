package main

import (
	"fmt"
	"os"

	"github.com/mkessel/retropix/internal/dither"
	"github.com/mkessel/retropix/internal/domain"
	"github.com/mkessel/retropix/internal/source"
)

// debugframe runs the transform across the dither modes and pixel sizes and
// reports the on/off pixel split, to sanity-check threshold behavior on real
// media without staring at output files.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: debugframe <image>")
		os.Exit(1)
	}

	src, err := source.Open(os.Args[1])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer src.Close()

	w, h := src.Size()
	fmt.Printf("Source: %dx%d, duration %s\n\n", w, h, src.Duration())

	raw, err := src.FrameAt(0)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	engine := dither.New()
	modes := []domain.Mode{domain.ModeBayer, domain.ModeThreshold, domain.ModeHalftone, domain.ModeStochastic, domain.ModeFloydSteinberg}

	for _, mode := range modes {
		for _, pixel := range []int{1, 4, 8, 16} {
			cfg := domain.DefaultConfig()
			cfg.Mode = mode
			cfg.PixelSize = pixel

			frame, err := engine.Transform(raw, cfg)
			if err != nil {
				fmt.Printf("%-10s pixel=%-2d  error: %v\n", mode, pixel, err)
				continue
			}

			on := 0
			for y := 0; y < frame.Height; y++ {
				for x := 0; x < frame.Width; x++ {
					if frame.GetPixel(x, y).Equals(cfg.ColorB) {
						on++
					}
				}
			}
			total := frame.Width * frame.Height
			fmt.Printf("%-10s pixel=%-2d  on=%6.2f%%  (%d/%d)\n",
				mode, pixel, float64(on)*100/float64(total), on, total)
		}
		fmt.Println()
	}
}
