package render

import "github.com/taigrr/skykeep/pkg/math3d"

// Plane is Normal·p + D = 0 with the normal facing into the frustum.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

func (p Plane) distance(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds the six inward-facing clip planes of a camera.
type Frustum struct {
	Planes [6]Plane
}

// FrustumOf extracts the planes of m (Gribb/Hartmann). m is column-major, so
// row i is m[i], m[i+4], m[i+8], m[i+12].
func FrustumOf(m math3d.Mat4) Frustum {
	row := func(i int) (math3d.Vec3, float64) {
		return math3d.V3(m[i], m[i+4], m[i+8]), m[i+12]
	}
	w, wd := row(3)

	var f Frustum
	for axis := range 3 {
		n, d := row(axis)
		f.Planes[axis*2] = normalizePlane(w.Add(n), wd+d)
		f.Planes[axis*2+1] = normalizePlane(w.Sub(n), wd-d)
	}
	return f
}

func normalizePlane(n math3d.Vec3, d float64) Plane {
	l := n.Len()
	if l == 0 {
		return Plane{Normal: n, D: d}
	}
	return Plane{Normal: n.Scale(1 / l), D: d / l}
}

// Frustum returns the camera's current view frustum.
func (c *Camera) Frustum() Frustum {
	return FrustumOf(c.ViewProjectionMatrix())
}

// AABB is an axis-aligned box.
type AABB struct {
	Min, Max math3d.Vec3
}

// Transform bounds the eight corners of b after m.
func (b AABB) Transform(m math3d.Mat4) AABB {
	out := AABB{Min: m.MulVec3(b.Min), Max: m.MulVec3(b.Min)}
	for i := 1; i < 8; i++ {
		c := b.Min
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		p := m.MulVec3(c)
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// Intersects reports whether any part of box may be inside f. It tests the
// corner furthest along each plane normal.
func (f Frustum) Intersects(box AABB) bool {
	for _, p := range f.Planes {
		corner := box.Min
		if p.Normal.X >= 0 {
			corner.X = box.Max.X
		}
		if p.Normal.Y >= 0 {
			corner.Y = box.Max.Y
		}
		if p.Normal.Z >= 0 {
			corner.Z = box.Max.Z
		}
		if p.distance(corner) < 0 {
			return false
		}
	}
	return true
}
