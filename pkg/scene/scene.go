// Package scene holds the castle render groups, their world placement, and
// the per-frame animation.
package scene

import (
	"github.com/taigrr/skykeep/pkg/math3d"
	"github.com/taigrr/skykeep/pkg/models"
)

// Transform is a group's placement. Rotation holds Euler angles in radians.
type Transform struct {
	Position math3d.Vec3
	Rotation math3d.Vec3
	Scale    math3d.Vec3
}

// Matrix returns the model matrix (scale, then rotation, then translation).
func (t Transform) Matrix() math3d.Mat4 {
	return math3d.Compose(t.Position, math3d.RotateEuler(t.Rotation), t.Scale)
}

// Group is one castle: a positioned, scaled bundle of meshes.
type Group struct {
	Name      string
	Index     int // Manifest index
	Transform Transform
	Meshes    []*models.Mesh
	Fallback  bool // Built from procedural geometry

	disposed bool
}

// NewGroup wraps meshes in a group with unit scale at the origin.
func NewGroup(name string, index int, meshes []*models.Mesh, fallback bool) *Group {
	return &Group{
		Name:      name,
		Index:     index,
		Transform: Transform{Scale: math3d.V3(1, 1, 1)},
		Meshes:    meshes,
		Fallback:  fallback,
	}
}

// Dispose releases every mesh buffer, material and texture the group owns.
func (g *Group) Dispose() {
	if g == nil || g.disposed {
		return
	}
	for _, m := range g.Meshes {
		m.Dispose()
	}
	g.Meshes = nil
	g.disposed = true
}

// Disposed reports whether Dispose has run.
func (g *Group) Disposed() bool {
	return g.disposed
}

// Scene is the set of groups drawn each frame.
type Scene struct {
	Groups []*Group
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{}
}

// Add appends groups in draw order.
func (s *Scene) Add(groups ...*Group) {
	s.Groups = append(s.Groups, groups...)
}

// Len returns the number of groups.
func (s *Scene) Len() int {
	return len(s.Groups)
}

// Clear removes every group without disposing it.
func (s *Scene) Clear() {
	s.Groups = nil
}

// Dispose disposes every group and clears the scene.
func (s *Scene) Dispose() {
	for _, g := range s.Groups {
		g.Dispose()
	}
	s.Clear()
}
