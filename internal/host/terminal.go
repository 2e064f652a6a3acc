package host

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/skykeep/pkg/render"
	"go.uber.org/zap"
)

// Terminal presents frames with half-block cells, two pixel rows per cell,
// and reads mouse input as gestures.
type Terminal struct {
	term *uv.Terminal
	log  *zap.Logger

	mu            sync.Mutex
	width, height int // Cells

	gestures chan Gesture
	done     chan struct{}
	pointer  Pointer
	once     sync.Once
}

// OpenTerminal switches the terminal to the alternate screen with mouse
// tracking and starts reading input.
func OpenTerminal(log *zap.Logger) (*Terminal, error) {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return nil, fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return nil, fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mouse mode

	t := &Terminal{
		term:     term,
		log:      log.Named("terminal"),
		width:    width,
		height:   height,
		gestures: make(chan Gesture, 64),
		done:     make(chan struct{}),
	}
	go t.pump()
	return t, nil
}

// Size returns the framebuffer size for the current window.
func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width, t.height * 2
}

// Present draws fb and flushes the changed cells.
func (t *Terminal) Present(fb *render.Framebuffer) error {
	t.mu.Lock()
	area := uv.Rect(0, 0, t.width, t.height)
	t.mu.Unlock()

	fb.Draw(t.term, area)
	return t.term.Display()
}

// Gestures returns the input stream. It closes when the terminal stops.
func (t *Terminal) Gestures() <-chan Gesture {
	return t.gestures
}

// Close restores the terminal.
func (t *Terminal) Close() error {
	var err error
	t.once.Do(func() {
		close(t.done)
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		t.term.ExitAltScreen()
		t.term.ShowCursor()
		err = t.term.Shutdown(context.Background())
	})
	return err
}

func (t *Terminal) pump() {
	defer close(t.gestures)
	for ev := range t.term.Events() {
		for _, g := range t.translate(ev) {
			select {
			case t.gestures <- g:
			case <-t.done:
				return
			}
		}
	}
}

func (t *Terminal) translate(ev uv.Event) []Gesture {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		t.mu.Lock()
		t.width, t.height = ev.Width, ev.Height
		t.mu.Unlock()
		t.term.Erase()
		t.term.Resize(ev.Width, ev.Height)
		t.log.Debug("window resized", zap.Int("cols", ev.Width), zap.Int("rows", ev.Height))
		return nil

	case uv.KeyPressEvent:
		if ev.MatchString("q", "ctrl+c", "escape") {
			return []Gesture{{Kind: Quit}}
		}
		return nil

	case uv.MouseClickEvent:
		return t.pointer.Press(ev.X, ev.Y)

	case uv.MouseMotionEvent:
		return t.pointer.Motion(ev.X, ev.Y)

	case uv.MouseReleaseEvent:
		t.mu.Lock()
		width := t.width
		t.mu.Unlock()
		return t.pointer.Release(ev.X, ev.Y, width)

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			return t.pointer.Wheel(true, time.Now())
		case uv.MouseWheelDown:
			return t.pointer.Wheel(false, time.Now())
		}
	}
	return nil
}

// Snapshot is a headless surface that writes each presented frame to a PNG.
type Snapshot struct {
	Path          string
	Width, Height int
	Frames        int // Frames presented so far
}

func (s *Snapshot) Size() (int, int) { return s.Width, s.Height }

func (s *Snapshot) Present(fb *render.Framebuffer) error {
	s.Frames++
	if s.Path == "" {
		return nil
	}
	return fb.SavePNG(s.Path)
}

func (s *Snapshot) Gestures() <-chan Gesture { return nil }

func (s *Snapshot) Close() error { return nil }
