package models

import (
	"fmt"
	"math"

	"github.com/taigrr/skykeep/pkg/math3d"
	"github.com/taigrr/skykeep/pkg/render"
)

// Palette colors fallback castles by manifest index (linear RGB).
var Palette = []math3d.Vec3{
	{X: 0.55, Y: 0.53, Z: 0.50}, // stone
	{X: 0.76, Y: 0.60, Z: 0.38}, // sandstone
	{X: 0.33, Y: 0.42, Z: 0.58}, // slate
	{X: 0.36, Y: 0.52, Z: 0.30}, // moss
	{X: 0.72, Y: 0.36, Z: 0.24}, // terracotta
}

// Fallback castle dimensions in model units.
const (
	bodyHalfWidth = 1.0
	bodyHeight    = 2.0
	roofRadius    = 1.4
	roofHeight    = 1.5
	roofSegments  = 12
)

// FallbackCastle builds the procedural stand-in for a model that failed to
// load: a box body under a cone roof, colored by index. It never fails.
func FallbackCastle(index int) []*Mesh {
	color := Palette[((index%len(Palette))+len(Palette))%len(Palette)]

	body := NewMesh(fmt.Sprintf("fallback-%d-body", index))
	addBox(body, math3d.V3(-bodyHalfWidth, 0, -bodyHalfWidth), math3d.V3(bodyHalfWidth, bodyHeight, bodyHalfWidth))
	body.Material = render.NewMaterial(body.Name, color)
	body.CalculateBounds()

	roof := NewMesh(fmt.Sprintf("fallback-%d-roof", index))
	addCone(roof, math3d.V3(0, bodyHeight, 0), roofRadius, roofHeight, roofSegments)
	// Roof is a darker shade of the body.
	roof.Material = render.NewMaterial(roof.Name, color.Scale(0.7))
	roof.CalculateBounds()

	return []*Mesh{body, roof}
}

func addBox(m *Mesh, lo, hi math3d.Vec3) {
	center := lo.Add(hi).Scale(0.5)
	c := func(x, y, z int) math3d.Vec3 {
		p := lo
		if x == 1 {
			p.X = hi.X
		}
		if y == 1 {
			p.Y = hi.Y
		}
		if z == 1 {
			p.Z = hi.Z
		}
		return p
	}

	quads := [6][4]math3d.Vec3{
		{c(0, 0, 1), c(1, 0, 1), c(1, 1, 1), c(0, 1, 1)}, // +Z
		{c(1, 0, 0), c(0, 0, 0), c(0, 1, 0), c(1, 1, 0)}, // -Z
		{c(1, 0, 1), c(1, 0, 0), c(1, 1, 0), c(1, 1, 1)}, // +X
		{c(0, 0, 0), c(0, 0, 1), c(0, 1, 1), c(0, 1, 0)}, // -X
		{c(0, 1, 1), c(1, 1, 1), c(1, 1, 0), c(0, 1, 0)}, // +Y
		{c(0, 0, 0), c(1, 0, 0), c(1, 0, 1), c(0, 0, 1)}, // -Y
	}
	for _, q := range quads {
		addFlatTriangle(m, q[0], q[1], q[2], center)
		addFlatTriangle(m, q[0], q[2], q[3], center)
	}
}

func addCone(m *Mesh, base math3d.Vec3, radius, height float64, segments int) {
	apex := base.Add(math3d.V3(0, height, 0))
	inside := base.Add(math3d.V3(0, height/4, 0))

	ring := make([]math3d.Vec3, segments)
	for i := range ring {
		a := 2 * math.Pi * float64(i) / float64(segments)
		ring[i] = base.Add(math3d.V3(radius*math.Sin(a), 0, radius*math.Cos(a)))
	}
	for i := range ring {
		next := ring[(i+1)%segments]
		addFlatTriangle(m, ring[i], next, apex, inside)
		addFlatTriangle(m, base, next, ring[i], inside)
	}
}

// addFlatTriangle appends a flat-shaded triangle oriented away from inside.
func addFlatTriangle(m *Mesh, a, b, c, inside math3d.Vec3) {
	normal := b.Sub(a).Cross(c.Sub(a))
	centroid := a.Add(b).Add(c).Scale(1.0 / 3)
	if normal.Dot(centroid.Sub(inside)) < 0 {
		b, c = c, b
		normal = normal.Negate()
	}
	normal = normal.Normalize()

	base := len(m.Vertices)
	m.Vertices = append(m.Vertices,
		MeshVertex{Position: a, Normal: normal},
		MeshVertex{Position: b, Normal: normal},
		MeshVertex{Position: c, Normal: normal},
	)
	m.AddTriangleCCW(base, base+1, base+2)
}
