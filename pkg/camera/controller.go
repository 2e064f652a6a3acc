// Package camera implements the gesture-driven orbit camera around the scene origin.
package camera

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/taigrr/skykeep/pkg/math3d"
	"github.com/taigrr/skykeep/pkg/render"
	"go.uber.org/zap"
)

// Defaults for Options.
const (
	MinDistance     = 40.0
	MaxDistance     = 180.0
	InitialDistance = 90.0
	PitchLimit      = math.Pi / 2.5
	SmoothingFactor = 0.15
	PanSensitivity  = 0.01
	QuarterTurn     = math.Pi / 2
	TapBands        = 3
)

// Smoothing selects how current values chase their targets.
type Smoothing int

const (
	SmoothExponential Smoothing = iota // current += (target - current) * factor
	SmoothSpring                       // Damped harmonica spring
)

// Options configures a Controller.
type Options struct {
	MinDistance     float64
	MaxDistance     float64
	InitialDistance float64
	PanSensitivity  float64 // Radians per unit of drag
	Smoothing       Smoothing
	SmoothingFactor float64
	FPS             int // Spring time step
	SpringFrequency float64
	SpringDamping   float64
}

// DefaultOptions returns the standard orbit settings.
func DefaultOptions() Options {
	return Options{
		MinDistance:     MinDistance,
		MaxDistance:     MaxDistance,
		InitialDistance: InitialDistance,
		PanSensitivity:  PanSensitivity,
		Smoothing:       SmoothExponential,
		SmoothingFactor: SmoothingFactor,
		FPS:             30,
		SpringFrequency: 6,
		SpringDamping:   1,
	}
}

// Rotation holds orbit angles in radians.
type Rotation struct {
	Pitch float64
	Yaw   float64
}

// State is the orbit camera state. Gestures move the targets; Step moves the
// current values toward them.
type State struct {
	Distance       float64
	Rotation       Rotation
	TargetDistance float64
	TargetRotation Rotation
}

// Controller interprets pan, pinch and tap gestures. It is not safe for
// concurrent use; the render loop owns it.
type Controller struct {
	opts  Options
	state State

	rotating bool
	zooming  bool
	zoomRef  float64

	rotations []float64 // Accumulated tap spin per item

	spring harmonica.Spring
	vel    [3]float64 // Spring velocities: distance, pitch, yaw

	log *zap.Logger
}

// New creates a controller at the initial distance with no rotation.
func New(opts Options, log *zap.Logger) *Controller {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	d := math3d.Clamp(opts.InitialDistance, opts.MinDistance, opts.MaxDistance)
	return &Controller{
		opts: opts,
		state: State{
			Distance:       d,
			TargetDistance: d,
		},
		spring: harmonica.NewSpring(harmonica.FPS(opts.FPS), opts.SpringFrequency, opts.SpringDamping),
		log:    log.Named("camera"),
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state
}

// Rotating reports whether a pan gesture is active.
func (c *Controller) Rotating() bool { return c.rotating }

// Zooming reports whether a pinch gesture is active.
func (c *Controller) Zooming() bool { return c.zooming }

// PanStart begins rotating.
func (c *Controller) PanStart() {
	c.rotating = true
}

// PanUpdate adds a drag delta to the target rotation. Pitch is clamped to
// ±PitchLimit; yaw spins freely.
func (c *Controller) PanUpdate(dx, dy float64) {
	c.state.TargetRotation.Yaw += dx * c.opts.PanSensitivity
	c.state.TargetRotation.Pitch = math3d.Clamp(
		c.state.TargetRotation.Pitch+dy*c.opts.PanSensitivity,
		-PitchLimit, PitchLimit,
	)
}

// PanEnd stops rotating. Targets stay where the drag left them.
func (c *Controller) PanEnd() {
	c.rotating = false
}

// PinchStart records the current distance as the zoom reference.
func (c *Controller) PinchStart() {
	c.zooming = true
	c.zoomRef = c.state.Distance
}

// PinchUpdate sets the target distance to reference/scale, clamped to the
// distance range. Non-positive scales are ignored.
func (c *Controller) PinchUpdate(scale float64) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return
	}
	ref := c.zoomRef
	if !c.zooming {
		ref = c.state.Distance
	}
	c.state.TargetDistance = math3d.Clamp(ref/scale, c.opts.MinDistance, c.opts.MaxDistance)
}

// PinchEnd stops zooming.
func (c *Controller) PinchEnd() {
	c.zooming = false
}

// SetItemCount sizes the tap rotation table. Existing rotations are kept.
func (c *Controller) SetItemCount(n int) {
	for len(c.rotations) < n {
		c.rotations = append(c.rotations, 0)
	}
	c.rotations = c.rotations[:n]
}

// Rotations returns the accumulated tap rotation per item. The slice is owned
// by the controller.
func (c *Controller) Rotations() []float64 {
	return c.rotations
}

// Tap maps x within a surface of the given width to one of three equal bands
// and gives that item a quarter turn. It returns the item index and whether
// a rotation was applied.
func (c *Controller) Tap(x, width float64) (int, bool) {
	if width <= 0 || x < 0 || x > width {
		return -1, false
	}
	band := min(int(x/(width/TapBands)), TapBands-1)
	if band >= len(c.rotations) {
		return band, false
	}
	c.rotations[band] += QuarterTurn
	c.log.Debug("tap", zap.Int("item", band), zap.Float64("rotation", c.rotations[band]))
	return band, true
}

// Step advances the current values toward their targets by one frame.
func (c *Controller) Step() {
	s := &c.state
	switch c.opts.Smoothing {
	case SmoothSpring:
		s.Distance, c.vel[0] = c.spring.Update(s.Distance, c.vel[0], s.TargetDistance)
		s.Rotation.Pitch, c.vel[1] = c.spring.Update(s.Rotation.Pitch, c.vel[1], s.TargetRotation.Pitch)
		s.Rotation.Yaw, c.vel[2] = c.spring.Update(s.Rotation.Yaw, c.vel[2], s.TargetRotation.Yaw)
	default:
		f := c.opts.SmoothingFactor
		s.Distance = math3d.Approach(s.Distance, s.TargetDistance, f)
		s.Rotation.Pitch = math3d.Approach(s.Rotation.Pitch, s.TargetRotation.Pitch, f)
		s.Rotation.Yaw = math3d.Approach(s.Rotation.Yaw, s.TargetRotation.Yaw, f)
	}

	// Springs can overshoot; the ranges hold for current values too.
	s.Distance = math3d.Clamp(s.Distance, c.opts.MinDistance, c.opts.MaxDistance)
	s.Rotation.Pitch = math3d.Clamp(s.Rotation.Pitch, -PitchLimit, PitchLimit)
}

// Position returns the camera position on the orbit sphere.
func (c *Controller) Position() math3d.Vec3 {
	return math3d.Spherical(c.state.Distance, math.Pi/2+c.state.Rotation.Pitch, c.state.Rotation.Yaw)
}

// Apply places cam on the orbit and aims it at the origin.
func (c *Controller) Apply(cam *render.Camera) {
	cam.SetPosition(c.Position())
	cam.LookAt(math3d.Zero3())
}
