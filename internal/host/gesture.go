package host

import (
	"time"

	"github.com/taigrr/skykeep/pkg/camera"
)

// GestureKind identifies a gesture event.
type GestureKind int

const (
	PanStart GestureKind = iota
	PanUpdate
	PanEnd
	PinchStart
	PinchUpdate
	PinchEnd
	Tap
	Quit
)

func (k GestureKind) String() string {
	switch k {
	case PanStart:
		return "pan_start"
	case PanUpdate:
		return "pan_update"
	case PanEnd:
		return "pan_end"
	case PinchStart:
		return "pinch_start"
	case PinchUpdate:
		return "pinch_update"
	case PinchEnd:
		return "pinch_end"
	case Tap:
		return "tap"
	case Quit:
		return "quit"
	default:
		return "unknown"
	}
}

// Gesture is one input event in surface coordinates.
type Gesture struct {
	Kind   GestureKind
	DX, DY float64 // PanUpdate deltas since the previous update
	Scale  float64 // PinchUpdate scale relative to PinchStart
	X      float64 // Tap position
	Width  float64 // Surface width at the time of the tap
}

// Dispatch forwards g to the camera controller.
func Dispatch(c *camera.Controller, g Gesture) {
	switch g.Kind {
	case PanStart:
		c.PanStart()
	case PanUpdate:
		c.PanUpdate(g.DX, g.DY)
	case PanEnd:
		c.PanEnd()
	case PinchStart:
		c.PinchStart()
	case PinchUpdate:
		c.PinchUpdate(g.Scale)
	case PinchEnd:
		c.PinchEnd()
	case Tap:
		c.Tap(g.X, g.Width)
	}
}

// WheelStep is the pinch scale of one wheel notch.
const WheelStep = 1.1

// WheelBurst is the longest gap between notches that still extends one pinch.
const WheelBurst = 250 * time.Millisecond

// Pointer turns mouse button, motion and wheel events into gestures. A press
// and release without motion is a tap; motion while pressed is a pan. Wheel
// notches close together share one pinch, so a fast scroll compounds.
type Pointer struct {
	down, panning bool
	lastX, lastY  int

	wheeling   bool
	wheelScale float64
	wheelAt    time.Time
}

// Press starts tracking a button press at (x, y).
func (p *Pointer) Press(x, y int) []Gesture {
	out := p.endWheel()
	p.down, p.panning = true, false
	p.lastX, p.lastY = x, y
	return out
}

// Motion reports pointer movement. Without a pressed button it is ignored.
func (p *Pointer) Motion(x, y int) []Gesture {
	if !p.down || (x == p.lastX && y == p.lastY) {
		return nil
	}
	var out []Gesture
	if !p.panning {
		p.panning = true
		out = append(out, Gesture{Kind: PanStart})
	}
	out = append(out, Gesture{
		Kind: PanUpdate,
		DX:   float64(x - p.lastX),
		DY:   float64(y - p.lastY),
	})
	p.lastX, p.lastY = x, y
	return out
}

// Release ends a press on a surface of the given width.
func (p *Pointer) Release(x, y, width int) []Gesture {
	if !p.down {
		return nil
	}
	p.down = false
	if p.panning {
		p.panning = false
		return []Gesture{{Kind: PanEnd}}
	}
	return []Gesture{{Kind: Tap, X: float64(x), Width: float64(width)}}
}

// Wheel reports one notch at now. Wheel up zooms in. A notch within
// WheelBurst of the previous one updates the open pinch with the compounded
// scale; otherwise the open pinch ends and a new one starts.
func (p *Pointer) Wheel(up bool, now time.Time) []Gesture {
	step := WheelStep
	if !up {
		step = 1 / WheelStep
	}

	var out []Gesture
	if p.wheeling && now.Sub(p.wheelAt) <= WheelBurst {
		p.wheelScale *= step
	} else {
		out = append(out, p.endWheel()...)
		out = append(out, Gesture{Kind: PinchStart})
		p.wheeling, p.wheelScale = true, step
	}
	p.wheelAt = now
	return append(out, Gesture{Kind: PinchUpdate, Scale: p.wheelScale})
}

func (p *Pointer) endWheel() []Gesture {
	if !p.wheeling {
		return nil
	}
	p.wheeling = false
	return []Gesture{{Kind: PinchEnd}}
}
