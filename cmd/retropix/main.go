// Package main is the entry point for the retropix CLI.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkessel/retropix/internal/dither"
	"github.com/mkessel/retropix/internal/domain"
	"github.com/mkessel/retropix/internal/driver"
	"github.com/mkessel/retropix/internal/encode"
	"github.com/mkessel/retropix/internal/source"
	"github.com/mkessel/retropix/internal/storage"
	"github.com/mkessel/retropix/internal/storage/sqlite"
	"github.com/mkessel/retropix/internal/suggest"
	"github.com/mkessel/retropix/internal/term"
)

func main() {
	if len(os.Args) < 2 {
		showUsage()
		return
	}

	switch os.Args[1] {
	case "image":
		imageCommand(os.Args[2:])
	case "video":
		videoCommand(os.Args[2:])
	case "watch":
		watchCommand(os.Args[2:])
	case "preview":
		previewCommand(os.Args[2:])
	case "suggest":
		suggestCommand(os.Args[2:])
	case "history":
		historyCommand()
	default:
		showUsage()
	}
}

func showUsage() {
	fmt.Println("RetroPix - pixelation and dithering stylizer")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  retropix image <in> <out>    - Stylize a still image (png/bmp output)")
	fmt.Println("  retropix video <in> <out>    - Export a stylized clip (avi/gif/rvz output)")
	fmt.Println("  retropix watch <in>          - Live preview in the terminal (q to quit)")
	fmt.Println("  retropix preview <in>        - ASCII preview of the stylized frame")
	fmt.Println("  retropix suggest <in>        - Ask the suggestion service for settings")
	fmt.Println("  retropix history             - List past exports")
	fmt.Println()
	fmt.Println("Filter flags (image/video/watch/preview/suggest):")
	fmt.Println("  -pixel N       block size in source pixels (1-24, default 8)")
	fmt.Println("  -contrast N    contrast (-100 to 100)")
	fmt.Println("  -brightness N  brightness offset (-128 to 128)")
	fmt.Println("  -threshold N   luminance cut point (0-255, default 128)")
	fmt.Println("  -mode M        bayer | threshold | halftone | stochastic | floyd")
	fmt.Println("  -invert        swap palette colors")
	fmt.Println("  -dotscale N    halftone dot radius scale (default 1)")
	fmt.Println("  -a #rrggbb     background color (default #000000)")
	fmt.Println("  -b #rrggbb     foreground color (default #ffffff)")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  RETROPIX_SUGGEST_URL - endpoint of the suggestion service")
	fmt.Println("  RETROPIX_LEDGER      - path of the export history database")
}

// filterFlags registers the shared filter flags on a flag set.
type filterFlags struct {
	pixel      *int
	contrast   *float64
	brightness *float64
	threshold  *float64
	mode       *string
	invert     *bool
	dotScale   *float64
	colorA     *string
	colorB     *string
}

func registerFilterFlags(fs *flag.FlagSet) *filterFlags {
	def := domain.DefaultConfig()
	return &filterFlags{
		pixel:      fs.Int("pixel", def.PixelSize, "pixel block size"),
		contrast:   fs.Float64("contrast", def.Contrast, "contrast"),
		brightness: fs.Float64("brightness", def.Brightness, "brightness"),
		threshold:  fs.Float64("threshold", def.Threshold, "threshold"),
		mode:       fs.String("mode", string(def.Mode), "dither mode"),
		invert:     fs.Bool("invert", false, "invert palette"),
		dotScale:   fs.Float64("dotscale", def.DotScale, "halftone dot scale"),
		colorA:     fs.String("a", def.ColorA.Hex(), "background color"),
		colorB:     fs.String("b", def.ColorB.Hex(), "foreground color"),
	}
}

func (f *filterFlags) config() (domain.FilterConfig, error) {
	colorA, err := domain.ParseHex(*f.colorA)
	if err != nil {
		return domain.FilterConfig{}, err
	}
	colorB, err := domain.ParseHex(*f.colorB)
	if err != nil {
		return domain.FilterConfig{}, err
	}
	cfg := domain.FilterConfig{
		PixelSize:  *f.pixel,
		Contrast:   *f.contrast,
		Brightness: *f.brightness,
		Threshold:  *f.threshold,
		Mode:       domain.Mode(strings.ToLower(*f.mode)),
		Invert:     *f.invert,
		DotScale:   *f.dotScale,
		ColorA:     colorA,
		ColorB:     colorB,
	}
	if err := cfg.Validate(); err != nil {
		return domain.FilterConfig{}, err
	}
	return cfg, nil
}

func parseArgs(name string, args []string, positional int) (*filterFlags, []string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := registerFilterFlags(fs)
	fs.Parse(args)
	if fs.NArg() < positional {
		fmt.Printf("Usage: retropix %s [flags] <in>%s\n", name, strings.Repeat(" <out>", positional-1))
		os.Exit(1)
	}
	return flags, fs.Args()
}

func imageCommand(args []string) {
	flags, rest := parseArgs("image", args, 2)
	cfg, err := flags.config()
	if err != nil {
		fatal(err)
	}
	in, out := rest[0], rest[1]

	src, err := source.Open(in)
	if err != nil {
		fatal(err)
	}
	defer src.Close()

	exporter := driver.NewExporter(dither.New())
	frame, err := exporter.ExportStill(src, cfg)
	if err != nil {
		fatal(err)
	}
	if err := encode.WriteStill(out, frame); err != nil {
		fatal(err)
	}
	fmt.Printf("Wrote %s (%dx%d)\n", out, frame.Width, frame.Height)

	recordJob(&storage.ExportJob{
		ID:         uuid.NewString(),
		SourcePath: in,
		Artifact:   out,
		Container:  strings.TrimPrefix(filepath.Ext(out), "."),
		Width:      frame.Width,
		Height:     frame.Height,
		Frames:     1,
		CreatedAt:  time.Now(),
	})
}

func videoCommand(args []string) {
	fs := flag.NewFlagSet("video", flag.ExitOnError)
	flags := registerFilterFlags(fs)
	fps := fs.Int("fps", driver.DefaultExportFPS, "capture frame rate")
	fs.Parse(args)
	if fs.NArg() < 2 {
		fmt.Println("Usage: retropix video [flags] <in> <out>")
		os.Exit(1)
	}
	cfg, err := flags.config()
	if err != nil {
		fatal(err)
	}
	in, out := fs.Arg(0), fs.Arg(1)

	src, err := source.Open(in)
	if err != nil {
		fatal(err)
	}
	defer src.Close()

	f, err := os.Create(out)
	if err != nil {
		fatal(err)
	}
	defer f.Close()

	preferred := encode.Container(strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), "."))

	exporter := driver.NewExporter(dither.New())
	result, err := exporter.ExportVideo(context.Background(), src, cfg, f, preferred, *fps,
		func(pct float64) {
			bar := strings.Repeat("█", int(pct)/5) + strings.Repeat("░", 20-int(pct)/5)
			fmt.Printf("\r  [%s] %3.0f%%", bar, pct)
		})
	fmt.Println()
	if err != nil {
		fatal(err)
	}
	if string(result.Container) != strings.TrimPrefix(filepath.Ext(out), ".") {
		fmt.Printf("Note: negotiated %s container; consider renaming the artifact\n", result.Container)
	}
	width, height := src.Size()
	fmt.Printf("Wrote %s (%d frames, %s, %s)\n", out, result.Frames, result.Duration, result.Container)

	recordJob(&storage.ExportJob{
		ID:         uuid.NewString(),
		SourcePath: in,
		Artifact:   out,
		Container:  string(result.Container),
		Width:      width,
		Height:     height,
		Frames:     result.Frames,
		DurationMs: result.Duration.Milliseconds(),
		CreatedAt:  time.Now(),
	})
}

func watchCommand(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	flags := registerFilterFlags(fs)
	fps := fs.Int("fps", driver.DefaultRefreshRate, "refresh rate")
	fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Println("Usage: retropix watch [flags] <in>")
		os.Exit(1)
	}
	cfg, err := flags.config()
	if err != nil {
		fatal(err)
	}

	d := driver.New(dither.New())
	defer d.Close()
	if err := d.Load(fs.Arg(0)); err != nil {
		fatal(err)
	}

	screen, err := term.NewScreen()
	if err != nil {
		fatal(err)
	}

	loop := d.Preview(*fps, cfg, screen)
	loop.Start()
	screen.WaitForQuit()
	loop.Stop()
	screen.Fini()
}

func previewCommand(args []string) {
	flags, rest := parseArgs("preview", args, 1)
	cfg, err := flags.config()
	if err != nil {
		fatal(err)
	}

	src, err := source.Open(rest[0])
	if err != nil {
		fatal(err)
	}
	defer src.Close()

	exporter := driver.NewExporter(dither.New())
	frame, err := exporter.ExportStill(src, cfg)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("%dx%d frame preview:\n\n", frame.Width, frame.Height)
	printFrameASCII(frame)
	fmt.Println()
	fmt.Println("Legend: █=bright ▓=medium ▒=dim ░=faint ·=very dim (space)=off")

	cachePreview(frame)
}

// cachePreview stores the rendered preview in the ledger so the suggest
// command can reuse it without re-rendering. Failures are warnings.
func cachePreview(frame *domain.Frame) {
	store, err := openLedger()
	if err != nil {
		return
	}
	defer store.Close()

	var buf bytes.Buffer
	if err := encode.EncodeStill(&buf, frame, "png"); err != nil {
		return
	}
	if err := store.CachePreview(context.Background(), &storage.CachedPreview{
		PNGData:     buf.Bytes(),
		GeneratedAt: time.Now(),
	}); err != nil {
		fmt.Printf("Warning: could not cache preview: %v\n", err)
	}
}

func suggestCommand(args []string) {
	flags, rest := parseArgs("suggest", args, 1)
	cfg, err := flags.config()
	if err != nil {
		fatal(err)
	}

	src, err := source.Open(rest[0])
	if err != nil {
		fatal(err)
	}
	defer src.Close()

	exporter := driver.NewExporter(dither.New())
	preview, err := exporter.ExportStill(src, cfg)
	if err != nil {
		fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), suggest.DefaultTimeout)
	defer cancel()

	client := suggest.NewClient(os.Getenv("RETROPIX_SUGGEST_URL"))
	suggestion, err := client.Fetch(ctx, preview)
	if err != nil {
		// Best effort: the empty suggestion keeps the current settings.
		fmt.Printf("Note: no suggestion available (%v)\n", err)
	}
	if suggestion.Empty() {
		fmt.Println("No suggested changes; settings unchanged.")
		return
	}

	merged := cfg.Merge(suggestion)
	fmt.Println("Suggested settings:")
	fmt.Printf("  pixel size: %d\n", merged.PixelSize)
	fmt.Printf("  contrast:   %g\n", merged.Contrast)
	fmt.Printf("  brightness: %g\n", merged.Brightness)
	fmt.Printf("  threshold:  %g\n", merged.Threshold)
	fmt.Printf("  mode:       %s\n", merged.Mode)
}

func historyCommand() {
	store, err := openLedger()
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	jobs, err := store.ListJobs(context.Background())
	if err != nil {
		fatal(err)
	}
	if len(jobs) == 0 {
		fmt.Println("No exports recorded.")
		return
	}
	for _, job := range jobs {
		fmt.Printf("%s  %-4s %dx%d %4d frames  %s -> %s\n",
			job.CreatedAt.Format("2006-01-02 15:04"), job.Container,
			job.Width, job.Height, job.Frames, job.SourcePath, job.Artifact)
	}
}

// openLedger opens the export history database.
func openLedger() (storage.Store, error) {
	path := os.Getenv("RETROPIX_LEDGER")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir := filepath.Join(home, ".retropix")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "exports.db")
	}
	return sqlite.NewFileStore(path)
}

// recordJob appends a row to the export ledger. Ledger failures are warnings,
// never export failures.
func recordJob(job *storage.ExportJob) {
	store, err := openLedger()
	if err != nil {
		fmt.Printf("Warning: export ledger unavailable: %v\n", err)
		return
	}
	defer store.Close()
	if err := store.SaveJob(context.Background(), job); err != nil {
		fmt.Printf("Warning: could not record export: %v\n", err)
	}
}

// printFrameASCII renders the frame as ASCII art, subsampled to fit 64 columns.
func printFrameASCII(frame *domain.Frame) {
	cols := frame.Width
	if cols > 64 {
		cols = 64
	}
	rows := frame.Height * cols / frame.Width / 2
	if rows < 1 {
		rows = 1
	}

	fmt.Print("  ┌")
	for x := 0; x < cols; x++ {
		fmt.Print("─")
	}
	fmt.Println("┐")

	for y := 0; y < rows; y++ {
		fmt.Printf("%2d│", y)
		for x := 0; x < cols; x++ {
			pixel := frame.GetPixel(x*frame.Width/cols, y*frame.Height/rows)
			if pixel == nil {
				fmt.Print(" ")
				continue
			}

			brightness := (int(pixel.R) + int(pixel.G) + int(pixel.B)) / 3

			switch {
			case brightness > 200:
				fmt.Print("█")
			case brightness > 150:
				fmt.Print("▓")
			case brightness > 100:
				fmt.Print("▒")
			case brightness > 50:
				fmt.Print("░")
			case brightness > 10:
				fmt.Print("·")
			default:
				fmt.Print(" ")
			}
		}
		fmt.Println("│")
	}

	fmt.Print("  └")
	for x := 0; x < cols; x++ {
		fmt.Print("─")
	}
	fmt.Println("┘")
}

func fatal(err error) {
	fmt.Printf("Error: %v\n", err)
	os.Exit(1)
}
