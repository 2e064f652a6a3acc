package render

import "github.com/taigrr/skykeep/pkg/math3d"

var cubeEdges = [12][2]int{
	{0, 1}, {1, 3}, {3, 2}, {2, 0}, // -Z
	{4, 5}, {5, 7}, {7, 6}, {6, 4}, // +Z
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Wireframe draws line geometry through a camera. The host uses it for the
// spinner shown while castles load.
type Wireframe struct {
	camera *Camera
}

// NewWireframe returns a line renderer for camera.
func NewWireframe(camera *Camera) *Wireframe {
	return &Wireframe{camera: camera}
}

// DrawLine3D projects both endpoints and draws the segment. Segments with an
// endpoint off screen are skipped.
func (w *Wireframe) DrawLine3D(fb *Framebuffer, p1, p2 math3d.Vec3, c Color) bool {
	x1, y1, _, ok1 := w.camera.WorldToScreen(p1, fb.Width, fb.Height)
	x2, y2, _, ok2 := w.camera.WorldToScreen(p2, fb.Width, fb.Height)
	if !ok1 || !ok2 {
		return false
	}
	fb.DrawLine(int(x1), int(y1), int(x2), int(y2), c)
	return true
}

// DrawCube draws the edges of a unit cube under transform and returns how
// many edges were on screen.
func (w *Wireframe) DrawCube(fb *Framebuffer, transform math3d.Mat4, c Color) int {
	var corners [8]math3d.Vec3
	for i := range corners {
		corner := math3d.V3(-0.5, -0.5, -0.5)
		if i&1 != 0 {
			corner.X = 0.5
		}
		if i&2 != 0 {
			corner.Y = 0.5
		}
		if i&4 != 0 {
			corner.Z = 0.5
		}
		corners[i] = transform.MulVec3(corner)
	}

	drawn := 0
	for _, e := range cubeEdges {
		if w.DrawLine3D(fb, corners[e[0]], corners[e[1]], c) {
			drawn++
		}
	}
	return drawn
}
