package render

import (
	"math"
	"testing"

	"github.com/taigrr/skykeep/pkg/math3d"
)

// mockMesh implements MeshRenderer for testing.
type mockMesh struct {
	vertices []struct {
		pos    math3d.Vec3
		normal math3d.Vec3
		uv     math3d.Vec2
	}
	faces [][3]int
}

func (m *mockMesh) VertexCount() int     { return len(m.vertices) }
func (m *mockMesh) TriangleCount() int   { return len(m.faces) }
func (m *mockMesh) GetFace(i int) [3]int { return m.faces[i] }
func (m *mockMesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.vertices[i]
	return v.pos, v.normal, v.uv
}

func (m *mockMesh) add(pos math3d.Vec3, uv math3d.Vec2) {
	m.vertices = append(m.vertices, struct {
		pos    math3d.Vec3
		normal math3d.Vec3
		uv     math3d.Vec2
	}{pos, math3d.V3(0, 0, 1), uv})
}

// quadFacingCamera builds a 2x2 quad in the XY plane with engine (clockwise) winding.
func quadFacingCamera() *mockMesh {
	m := &mockMesh{}
	m.add(math3d.V3(-1, -1, 0), math3d.V2(0, 1))
	m.add(math3d.V3(1, -1, 0), math3d.V2(1, 1))
	m.add(math3d.V3(1, 1, 0), math3d.V2(1, 0))
	m.add(math3d.V3(-1, 1, 0), math3d.V2(0, 0))
	m.faces = [][3]int{{0, 2, 1}, {0, 3, 2}}
	return m
}

func createTestRasterizer(width, height int) (*Rasterizer, *Framebuffer) {
	fb := NewFramebuffer(width, height)
	camera := NewCamera()
	camera.SetPosition(math3d.V3(0, 0, 10))
	camera.LookAt(math3d.Zero3())
	camera.SetAspectRatio(float64(width) / float64(height))
	lights := Lights{{Kind: LightAmbient, Color: math3d.V3(1, 1, 1), Intensity: 1}}
	return NewRasterizer(camera, fb, lights), fb
}

func TestBarycentric(t *testing.T) {
	tests := []struct {
		name     string
		px, py   float64
		expected math3d.Vec3
	}{
		{"vertex 0", 0, 0, math3d.V3(1, 0, 0)},
		{"vertex 1", 1, 0, math3d.V3(0, 1, 0)},
		{"vertex 2", 0, 1, math3d.V3(0, 0, 1)},
		{"centroid", 1.0 / 3, 1.0 / 3, math3d.V3(1.0/3, 1.0/3, 1.0/3)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bc := barycentric(0, 0, 1, 0, 0, 1, tc.px, tc.py)
			if !bc.ApproxEqual(tc.expected, 0.001) {
				t.Errorf("barycentric(%v, %v) = %v, want %v", tc.px, tc.py, bc, tc.expected)
			}
		})
	}
}

func TestDrawMeshCoversScreenCenter(t *testing.T) {
	r, fb := createTestRasterizer(64, 64)
	bg := RGB(0, 0, 0)
	r.BeginFrame(bg)

	r.DrawMesh(quadFacingCamera(), math3d.Identity(), NewMaterial("red", math3d.V3(1, 0, 0)))

	if r.TrianglesDrawn != 2 {
		t.Fatalf("TrianglesDrawn = %d, want 2", r.TrianglesDrawn)
	}
	center := fb.GetPixel(32, 32)
	if center.R != 255 || center.G != 0 || center.B != 0 {
		t.Errorf("center pixel = %v, want pure red", center)
	}
	if corner := fb.GetPixel(0, 0); corner != bg {
		t.Errorf("corner pixel = %v, want background", corner)
	}
}

func TestDrawMeshCullsBackFaces(t *testing.T) {
	r, fb := createTestRasterizer(32, 32)
	r.BeginFrame(RGB(0, 0, 0))

	// Rotating half a turn shows the quad's back to the camera.
	r.DrawMesh(quadFacingCamera(), math3d.RotateY(math.Pi), nil)
	if r.TrianglesDrawn != 0 {
		t.Errorf("TrianglesDrawn = %d, want 0 for back-facing quad", r.TrianglesDrawn)
	}
	if c := fb.GetPixel(16, 16); c != RGB(0, 0, 0) {
		t.Errorf("back face was drawn: %v", c)
	}

	r.DisableBackfaceCulling = true
	r.BeginFrame(RGB(0, 0, 0))
	r.DrawMesh(quadFacingCamera(), math3d.RotateY(math.Pi), nil)
	if r.TrianglesDrawn != 2 {
		t.Errorf("TrianglesDrawn = %d, want 2 with culling disabled", r.TrianglesDrawn)
	}
}

func TestDepthTestKeepsNearest(t *testing.T) {
	r, fb := createTestRasterizer(32, 32)
	r.BeginFrame(RGB(0, 0, 0))

	r.DrawMesh(quadFacingCamera(), math3d.Translate(math3d.V3(0, 0, 1)), NewMaterial("near", math3d.V3(0, 1, 0)))
	r.DrawMesh(quadFacingCamera(), math3d.Identity(), NewMaterial("far", math3d.V3(0, 0, 1)))

	if c := fb.GetPixel(16, 16); c.G != 255 || c.B != 0 {
		t.Errorf("center pixel = %v, want the nearer green quad", c)
	}
}

func TestBaseColorMapModulatesColor(t *testing.T) {
	r, fb := createTestRasterizer(32, 32)
	r.BeginFrame(RGB(0, 0, 0))

	tex := NewTexture(1, 1)
	tex.Pixels[0] = RGB(0, 0, 255)
	tex.ColorSpace = ColorSpaceSRGB
	mat := NewPBRMaterial("tex", nil, tex, nil)

	r.DrawMesh(quadFacingCamera(), math3d.Identity(), mat)
	if c := fb.GetPixel(16, 16); c != RGB(0, 0, 255) {
		t.Errorf("center pixel = %v, want texture blue", c)
	}
}

func TestNormalMapLightsPerPixel(t *testing.T) {
	draw := func(normal *Texture) Color {
		r, fb := createTestRasterizer(32, 32)
		r.Lights = Lights{{Kind: LightDirectional, Direction: math3d.V3(0, 0, -1), Color: math3d.V3(1, 1, 1), Intensity: 1}}
		r.BeginFrame(RGB(0, 0, 0))
		r.DrawMesh(quadFacingCamera(), math3d.Identity(), NewPBRMaterial("n", normal, nil, nil))
		return fb.GetPixel(16, 16)
	}
	normalMap := func(c Color) *Texture {
		tex := NewTexture(1, 1)
		tex.Pixels[0] = c
		tex.ColorSpace = ColorSpaceLinear
		return tex
	}

	plain := draw(nil)
	flat := draw(normalMap(RGB(128, 128, 255)))
	if d := int(plain.R) - int(flat.R); d < -2 || d > 2 {
		t.Errorf("flat normal map changed shading: %v vs %v", flat, plain)
	}

	tilted := draw(normalMap(RGB(255, 128, 128)))
	if tilted.R >= plain.R/4 {
		t.Errorf("normal tilted away from the light = %v, want much darker than %v", tilted, plain)
	}
}

func TestPerturbNormal(t *testing.T) {
	n := math3d.V3(0, 0, 1)
	flat := perturbNormal(n, math3d.V3(1, 0, 0), math3d.V3(0.5, 0.5, 1))
	if !flat.ApproxEqual(n, 1e-9) {
		t.Errorf("flat sample = %v, want %v", flat, n)
	}

	// Degenerate tangent still yields a unit normal.
	got := perturbNormal(n, math3d.Vec3{}, math3d.V3(1, 0.5, 0.5))
	if math.Abs(got.Len()-1) > 1e-9 || math.Abs(got.Dot(n)) > 1e-9 {
		t.Errorf("perturbed = %v, want unit vector perpendicular to %v", got, n)
	}
}

func TestRasterizerDispose(t *testing.T) {
	r, fb := createTestRasterizer(8, 8)
	r.Dispose()
	if fb.Pixels != nil || r.Framebuffer() != nil || r.Width() != 0 {
		t.Error("Dispose should release framebuffer and depth buffer")
	}
}

func TestCameraWorldToScreenCenter(t *testing.T) {
	cam := NewCamera()
	cam.SetPosition(math3d.V3(0, 5, 20))
	cam.LookAt(math3d.Zero3())
	cam.SetAspectRatio(2)

	x, y, _, ok := cam.WorldToScreen(math3d.Zero3(), 200, 100)
	if !ok {
		t.Fatal("target should be visible")
	}
	if math.Abs(x-100) > 1e-6 || math.Abs(y-50) > 1e-6 {
		t.Errorf("target projected to (%v, %v), want screen center", x, y)
	}

	if _, _, _, ok := cam.WorldToScreen(math3d.V3(0, 5, 40), 200, 100); ok {
		t.Error("point behind the camera should not be visible")
	}
}
