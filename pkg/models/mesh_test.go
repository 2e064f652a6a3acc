package models

import (
	"testing"

	"github.com/taigrr/skykeep/pkg/math3d"
	"github.com/taigrr/skykeep/pkg/render"
)

func TestFallbackCastlePaletteCycles(t *testing.T) {
	tests := []struct {
		index int
		want  math3d.Vec3
	}{
		{0, Palette[0]},
		{1, Palette[1]},
		{4, Palette[4]},
		{5, Palette[0]},
		{7, Palette[2]},
	}

	for _, tt := range tests {
		meshes := FallbackCastle(tt.index)
		if len(meshes) != 2 {
			t.Fatalf("index %d: expected body and roof, got %d meshes", tt.index, len(meshes))
		}
		if got := meshes[0].Material.Color; got != tt.want {
			t.Errorf("index %d: body color = %v, want %v", tt.index, got, tt.want)
		}
	}
}

func TestFallbackCastleGeometry(t *testing.T) {
	meshes := FallbackCastle(0)
	body, roof := meshes[0], meshes[1]

	if body.TriangleCount() != 12 {
		t.Errorf("body triangles = %d, want 12", body.TriangleCount())
	}
	if roof.TriangleCount() != 2*roofSegments {
		t.Errorf("roof triangles = %d, want %d", roof.TriangleCount(), 2*roofSegments)
	}
	if roof.BoundsMax.Y != bodyHeight+roofHeight {
		t.Errorf("roof apex at %v, want %v", roof.BoundsMax.Y, bodyHeight+roofHeight)
	}

	// Every body face points away from the box center.
	center := body.Center()
	for i := range body.TriangleCount() {
		f := body.GetFace(i)
		var centroid math3d.Vec3
		for _, idx := range f {
			centroid = centroid.Add(body.Vertices[idx].Position)
		}
		centroid = centroid.Scale(1.0 / 3)
		if n := body.Vertices[f[0]].Normal; n.Dot(centroid.Sub(center)) <= 0 {
			t.Errorf("face %d normal %v points inward", i, n)
		}
	}
}

func TestFallbackCastleSurvivesBackfaceCulling(t *testing.T) {
	fb := render.NewFramebuffer(64, 64)
	cam := render.NewCamera()
	cam.SetPosition(math3d.V3(0, 1, 10))
	cam.LookAt(math3d.V3(0, 1, 0))
	lights := render.Lights{{Kind: render.LightAmbient, Color: math3d.V3(1, 1, 1), Intensity: 1}}
	r := render.NewRasterizer(cam, fb, lights)

	body := FallbackCastle(0)[0]
	r.BeginFrame(render.RGB(0, 0, 0))
	r.DrawMesh(body, math3d.Identity(), body.Material)

	// Only the two triangles of the +Z face look at the camera.
	if r.TrianglesDrawn != 2 {
		t.Errorf("TrianglesDrawn = %d, want 2", r.TrianglesDrawn)
	}
	if fb.GetPixel(32, 32) == render.RGB(0, 0, 0) {
		t.Error("center pixel should be covered by the castle body")
	}
}

func TestMeshTransformed(t *testing.T) {
	m := NewMesh("tri")
	m.Vertices = []MeshVertex{
		{Position: math3d.V3(0, 0, 0), Normal: math3d.V3(0, 0, 1)},
		{Position: math3d.V3(1, 0, 0), Normal: math3d.V3(0, 0, 1)},
		{Position: math3d.V3(0, 1, 0), Normal: math3d.V3(0, 0, 1)},
	}
	m.AddTriangleCCW(0, 1, 2)

	out := m.Transformed(math3d.Translate(math3d.V3(0, 0, 3)))
	if out == m {
		t.Fatal("Transformed should return a copy")
	}
	if out.Vertices[1].Position != math3d.V3(1, 0, 3) {
		t.Errorf("transformed position = %v, want (1,0,3)", out.Vertices[1].Position)
	}
	if m.Vertices[1].Position != math3d.V3(1, 0, 0) {
		t.Error("source mesh was modified")
	}
	if out.BoundsMax.Z != 3 {
		t.Errorf("bounds not recomputed: max Z = %v", out.BoundsMax.Z)
	}
	if out.GetFace(0) != [3]int{0, 2, 1} {
		t.Errorf("face winding = %v, want clockwise {0,2,1}", out.GetFace(0))
	}
}

func TestMeshDispose(t *testing.T) {
	tex := render.NewTexture(2, 2)
	m := NewMesh("textured")
	m.Vertices = make([]MeshVertex, 3)
	m.AddTriangleCCW(0, 1, 2)
	m.Material = render.NewPBRMaterial("pbr", nil, tex, nil)

	m.Dispose()
	if !m.Disposed() {
		t.Error("Disposed should be true")
	}
	if m.VertexCount() != 0 || m.TriangleCount() != 0 {
		t.Error("buffers should be released")
	}
	if m.Material != nil {
		t.Error("material should be released")
	}
	if !tex.Disposed() {
		t.Error("material textures should be disposed")
	}

	// Second dispose is a no-op.
	m.Dispose()
}
