// Package term renders styled frames into the terminal with tcell, using
// half-block cells so every terminal cell carries two vertical pixels.
package term

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/mkessel/retropix/internal/domain"
)

// Screen is a terminal presentation surface. It satisfies driver.Surface.
type Screen struct {
	s tcell.Screen
}

// NewScreen initializes the terminal screen.
func NewScreen() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	s.Clear()
	return &Screen{s: s}, nil
}

// Blit draws the frame centered in the terminal, nearest-sampled to fit,
// preserving aspect ratio. Each cell shows two vertically adjacent pixels
// through the upper-half-block rune.
func (sc *Screen) Blit(frame *domain.Frame) error {
	cols, rows := sc.s.Size()
	if cols < 1 || rows < 1 {
		return nil
	}
	pw, ph := cols, rows*2

	scaleX := float64(pw) / float64(frame.Width)
	scaleY := float64(ph) / float64(frame.Height)
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	outW := int(float64(frame.Width) * scale)
	outH := int(float64(frame.Height) * scale)
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}
	offX := (pw - outW) / 2
	offY := (ph - outH) / 2

	sample := func(px, py int) tcell.Color {
		x := px - offX
		y := py - offY
		if x < 0 || x >= outW || y < 0 || y >= outH {
			return tcell.ColorBlack
		}
		sx := x * frame.Width / outW
		sy := y * frame.Height / outH
		c := frame.GetPixel(sx, sy)
		if c == nil {
			return tcell.ColorBlack
		}
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	}

	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			top := sample(cx, cy*2)
			bottom := sample(cx, cy*2+1)
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			sc.s.SetContent(cx, cy, '▀', nil, style)
		}
	}
	sc.s.Show()
	return nil
}

// WaitForQuit blocks until the user presses Esc, q, or Ctrl-C.
func (sc *Screen) WaitForQuit() {
	for {
		ev := sc.s.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			sc.s.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
				(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
				return
			}
		case nil:
			return
		}
	}
}

// Fini restores the terminal.
func (sc *Screen) Fini() {
	sc.s.Fini()
}
