// Package models provides castle mesh data, glTF scene decoding and procedural
// fallback geometry.
package models

import (
	"github.com/taigrr/skykeep/pkg/math3d"
	"github.com/taigrr/skykeep/pkg/render"
)

// Mesh is one drawable primitive with its material binding.
// Faces are stored clockwise (the rasterizer's front-face winding).
type Mesh struct {
	Name     string
	Vertices []MeshVertex
	Faces    []Face
	HasUV    bool // Whether the source exposed texture coordinates
	Material *render.Material

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3

	disposed bool
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// Face is a triangle of indices into Mesh.Vertices.
type Face struct {
	V [3]int
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// AddTriangleCCW appends a counter-clockwise (glTF order) triangle, storing it
// in the engine's clockwise order.
func (m *Mesh) AddTriangleCCW(a, b, c int) {
	m.Faces = append(m.Faces, Face{V: [3]int{a, c, b}})
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// CalculateSmoothNormals computes area-weighted averaged vertex normals.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}

	for _, f := range m.Faces {
		v0 := m.Vertices[f.V[0]].Position
		v1 := m.Vertices[f.V[1]].Position
		v2 := m.Vertices[f.V[2]].Position

		// Clockwise storage: swap edges to get the outward normal.
		normal := v2.Sub(v0).Cross(v1.Sub(v0))
		for _, idx := range f.V {
			m.Vertices[idx].Normal = m.Vertices[idx].Normal.Add(normal)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// Transformed returns a copy with positions and normals transformed by mat.
// The material binding is shared.
func (m *Mesh) Transformed(mat math3d.Mat4) *Mesh {
	out := &Mesh{
		Name:     m.Name,
		Vertices: make([]MeshVertex, len(m.Vertices)),
		Faces:    make([]Face, len(m.Faces)),
		HasUV:    m.HasUV,
		Material: m.Material,
	}
	copy(out.Faces, m.Faces)
	for i, v := range m.Vertices {
		out.Vertices[i] = MeshVertex{
			Position: mat.MulVec3(v.Position),
			Normal:   mat.MulVec3Dir(v.Normal).Normalize(),
			UV:       v.UV,
		}
	}
	out.CalculateBounds()
	return out
}

// Dispose releases vertex and index buffers plus the material and its textures.
func (m *Mesh) Dispose() {
	if m.disposed {
		return
	}
	m.Material.Dispose()
	m.Material = nil
	m.Vertices = nil
	m.Faces = nil
	m.disposed = true
}

// Disposed reports whether Dispose has run.
func (m *Mesh) Disposed() bool {
	return m.disposed
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// GetVertex returns the position, normal, and UV for vertex i.
// Implements render.MeshRenderer.
func (m *Mesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.Vertices[i]
	return v.Position, v.Normal, v.UV
}

// GetFace returns the vertex indices for face i.
// Implements render.MeshRenderer.
func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i].V
}
