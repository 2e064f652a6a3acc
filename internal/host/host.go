// Package host owns the render loop: it waits for the castles to load,
// animates them, and presents frames on a surface.
package host

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/taigrr/skykeep/pkg/camera"
	"github.com/taigrr/skykeep/pkg/math3d"
	"github.com/taigrr/skykeep/pkg/render"
	"github.com/taigrr/skykeep/pkg/scene"
	"go.uber.org/zap"
)

// ErrClosed is returned when a closed host is used.
var ErrClosed = errors.New("host closed")

// Surface is where frames go. Size is in framebuffer pixels.
type Surface interface {
	Size() (width, height int)
	Present(fb *render.Framebuffer) error
	// Gestures may return nil when the surface has no input.
	Gestures() <-chan Gesture
	Close() error
}

// LoadFunc produces the castle groups. It runs off the render loop.
type LoadFunc func(ctx context.Context) []*scene.Group

// Options configures a Host.
type Options struct {
	FPS        int
	Background render.Color
	Backface   bool // Draw back faces too
}

const (
	spinnerSize  = 12.0
	spinnerSpeed = 1.5
)

var spinnerColor = render.RGB(220, 200, 140)

// Host runs the frame loop. Frame, Handle and Close must be called from one
// goroutine; only the load runs elsewhere.
type Host struct {
	opts    Options
	surface Surface
	ctrl    *camera.Controller
	load    LoadFunc
	log     *zap.Logger

	cam   *render.Camera
	fb    *render.Framebuffer
	rast  *render.Rasterizer
	wire  *render.Wireframe
	scene *scene.Scene

	loaded  chan []*scene.Group
	loading bool
	cancel  context.CancelFunc

	mu     sync.Mutex // guards closed against the load goroutine
	closed bool

	culled int
}

// New returns a host drawing onto surface. The load starts with Start or Run.
func New(surface Surface, ctrl *camera.Controller, load LoadFunc, opts Options, log *zap.Logger) *Host {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	w, h := surface.Size()
	cam := render.NewCamera()
	cam.SetFOV(math.Pi / 3)
	cam.SetClipPlanes(1, 1000)
	fb := render.NewFramebuffer(w, h)
	if h > 0 {
		cam.SetAspectRatio(float64(w) / float64(h))
	}
	rast := render.NewRasterizer(cam, fb, render.ThreePointRig())
	rast.DisableBackfaceCulling = opts.Backface

	return &Host{
		opts:    opts,
		surface: surface,
		ctrl:    ctrl,
		load:    load,
		log:     log.Named("host"),
		cam:     cam,
		fb:      fb,
		rast:    rast,
		wire:    render.NewWireframe(cam),
		scene:   scene.New(),
		loaded:  make(chan []*scene.Group, 1),
	}
}

// Start begins loading in the background. Results arriving after Close are
// disposed instead of assembled.
func (h *Host) Start(ctx context.Context) {
	ctx, h.cancel = context.WithCancel(ctx)
	h.loading = true
	h.log.Info("loading castles")

	go func() {
		groups := h.load(ctx)

		h.mu.Lock()
		defer h.mu.Unlock()
		if h.closed {
			h.log.Debug("discarding late load", zap.Int("groups", len(groups)))
			for _, g := range groups {
				g.Dispose()
			}
			return
		}
		h.loaded <- groups
	}()
}

// Loading reports whether the load is still outstanding.
func (h *Host) Loading() bool { return h.loading }

// Scene returns the assembled scene.
func (h *Host) Scene() *scene.Scene { return h.scene }

// Camera returns the render camera.
func (h *Host) Camera() *render.Camera { return h.cam }

// Framebuffer returns the current frame.
func (h *Host) Framebuffer() *render.Framebuffer { return h.fb }

// Culled returns how many meshes were skipped as off screen in the last frame.
func (h *Host) Culled() int { return h.culled }

// Handle applies one gesture to the camera.
func (h *Host) Handle(g Gesture) {
	Dispatch(h.ctrl, g)
}

// WaitLoaded blocks until the load has been assembled.
func (h *Host) WaitLoaded(ctx context.Context) error {
	if !h.loading {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case groups := <-h.loaded:
		h.assemble(groups)
		return nil
	}
}

// Frame renders the scene at elapsed time t seconds.
func (h *Host) Frame(t float64) {
	if h.loading {
		select {
		case groups := <-h.loaded:
			h.assemble(groups)
		default:
		}
	}
	h.resize()

	h.ctrl.Step()
	h.ctrl.Apply(h.cam)
	h.rast.BeginFrame(h.opts.Background)

	if h.loading {
		spin := math3d.RotateY(t * spinnerSpeed).Mul(math3d.RotateX(t * spinnerSpeed * 0.6))
		h.wire.DrawCube(h.fb, spin.Mul(math3d.Scale(math3d.V3(spinnerSize, spinnerSize, spinnerSize))), spinnerColor)
		return
	}

	scene.Animate(t, h.scene.Groups, h.ctrl.Rotations())

	frustum := h.cam.Frustum()
	h.culled = 0
	for _, g := range h.scene.Groups {
		m := g.Transform.Matrix()
		for _, mesh := range g.Meshes {
			bounds := render.AABB{Min: mesh.BoundsMin, Max: mesh.BoundsMax}.Transform(m)
			if !frustum.Intersects(bounds) {
				h.culled++
				continue
			}
			h.rast.DrawMesh(mesh, m, mesh.Material)
		}
	}
}

// Run loads the scene and renders at the configured frame rate until ctx ends,
// the surface input closes, or a quit gesture arrives.
func (h *Host) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h.Start(ctx)
	defer h.Close()

	ticker := time.NewTicker(time.Second / time.Duration(h.opts.FPS))
	defer ticker.Stop()

	start := time.Now()
	gestures := h.surface.Gestures()
	for {
		select {
		case <-ctx.Done():
			return nil
		case g, ok := <-gestures:
			if !ok || g.Kind == Quit {
				return nil
			}
			h.Handle(g)
		case now := <-ticker.C:
			h.Frame(now.Sub(start).Seconds())
			if err := h.surface.Present(h.fb); err != nil {
				return fmt.Errorf("present: %w", err)
			}
		}
	}
}

// RenderOnce waits for the load, renders one frame at t and presents it.
func (h *Host) RenderOnce(ctx context.Context, t float64) error {
	if h.isClosed() {
		return ErrClosed
	}
	if h.cancel == nil {
		h.Start(ctx)
	}
	if err := h.WaitLoaded(ctx); err != nil {
		return err
	}
	h.Frame(t)
	return h.surface.Present(h.fb)
}

// Close cancels any outstanding load and releases the scene and render
// resources. It is safe to call more than once.
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	if h.cancel != nil {
		h.cancel()
	}
	// A load that finished before Close is still buffered.
	select {
	case groups := <-h.loaded:
		for _, g := range groups {
			g.Dispose()
		}
	default:
	}

	h.scene.Dispose()
	h.rast.Dispose()
	h.loading = false
	h.log.Info("host closed")
	return h.surface.Close()
}

func (h *Host) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *Host) assemble(groups []*scene.Group) {
	h.loading = false
	scene.Assemble(groups, h.scene)
	h.ctrl.SetItemCount(h.scene.Len())

	fallbacks := 0
	for _, g := range h.scene.Groups {
		if g.Fallback {
			fallbacks++
		}
	}
	h.log.Info("scene ready", zap.Int("castles", h.scene.Len()), zap.Int("fallbacks", fallbacks))
}

func (h *Host) resize() {
	w, ht := h.surface.Size()
	if w == h.fb.Width && ht == h.fb.Height {
		return
	}
	h.fb = render.NewFramebuffer(w, ht)
	h.rast.SetFramebuffer(h.fb)
	if ht > 0 {
		h.cam.SetAspectRatio(float64(w) / float64(ht))
	}
	h.log.Debug("resized", zap.Int("width", w), zap.Int("height", ht))
}
