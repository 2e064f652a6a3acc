package render

import (
	"math"

	"github.com/taigrr/skykeep/pkg/math3d"
)

// MeshRenderer lets the rasterizer draw meshes without importing the models package.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// Rasterizer handles software triangle rasterization.
type Rasterizer struct {
	camera  *Camera
	fb      *Framebuffer
	zbuffer []float64 // Depth buffer (row-major)
	Lights  Lights

	DisableBackfaceCulling bool // If true, render both sides of triangles
	TrianglesDrawn         int  // Triangles that survived culling this frame
}

// NewRasterizer creates a rasterizer drawing through camera into fb.
func NewRasterizer(camera *Camera, fb *Framebuffer, lights Lights) *Rasterizer {
	r := &Rasterizer{
		camera: camera,
		fb:     fb,
		Lights: lights,
	}
	r.Resize()
	return r
}

// Framebuffer returns the target framebuffer.
func (r *Rasterizer) Framebuffer() *Framebuffer {
	return r.fb
}

// SetFramebuffer retargets the rasterizer, e.g. after the surface is resized.
func (r *Rasterizer) SetFramebuffer(fb *Framebuffer) {
	r.fb = fb
	r.Resize()
}

// Resize resizes the depth buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// BeginFrame clears color and depth and resets per-frame counters.
func (r *Rasterizer) BeginFrame(background Color) {
	if r.fb != nil {
		r.fb.Clear(background)
	}
	r.TrianglesDrawn = 0

	// Copy-doubling clear
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// Dispose releases the depth buffer and the framebuffer.
func (r *Rasterizer) Dispose() {
	if r.fb != nil {
		r.fb.Dispose()
	}
	r.fb = nil
	r.zbuffer = nil
}

// DrawMesh renders a mesh with the given model transform and material.
// A nil material draws flat white.
func (r *Rasterizer) DrawMesh(mesh MeshRenderer, transform math3d.Mat4, mat *Material) {
	if mat == nil {
		mat = NewMaterial("default", math3d.V3(1, 1, 1))
	}

	for i := 0; i < mesh.TriangleCount(); i++ {
		face := mesh.GetFace(i)

		var tri [3]vertex
		for k := range 3 {
			p, n, uv := mesh.GetVertex(face[k])
			tri[k] = vertex{
				Position: transform.MulVec3(p),
				Normal:   transform.MulVec3Dir(n).Normalize(),
				UV:       uv,
			}
		}
		r.drawTriangle(tri, mat)
	}
}

// vertex is a world-space vertex.
type vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// screenVertex holds a vertex transformed to screen space with its lighting.
type screenVertex struct {
	X, Y     float64 // Screen coordinates
	Z        float64 // Depth (for Z-buffer)
	InvW     float64 // 1/W for perspective-correct interpolation
	UV       math3d.Vec2
	Diffuse  math3d.Vec3
	Specular math3d.Vec3

	World, Normal math3d.Vec3 // Kept for per-pixel lighting
}

// drawTriangle rasterizes one triangle with per-pixel material sampling.
// Lighting is Gouraud unless the material has a normal map, in which case the
// interpolated normal is perturbed and lit per pixel.
func (r *Rasterizer) drawTriangle(tri [3]vertex, mat *Material) {
	var sv [3]screenVertex
	viewProj := r.camera.ViewProjectionMatrix()
	eye := r.camera.Position
	bumped := mat.NormalMap != nil

	for i := range 3 {
		clip := viewProj.MulVec4(math3d.V4FromV3(tri[i].Position, 1))

		// Near-plane crossings are dropped rather than clipped.
		if clip.W <= r.camera.Near*0.5 {
			return
		}

		sv[i].InvW = 1 / clip.W
		sv[i].X = (clip.X*sv[i].InvW + 1) * 0.5 * float64(r.Width())
		sv[i].Y = (1 - clip.Y*sv[i].InvW) * 0.5 * float64(r.Height()) // Y flipped
		sv[i].Z = clip.Z * sv[i].InvW
		sv[i].UV = tri[i].UV
		sv[i].World, sv[i].Normal = tri[i].Position, tri[i].Normal

		viewDir := eye.Sub(tri[i].Position).Normalize()
		sv[i].Diffuse, sv[i].Specular = r.Lights.Shade(tri[i].Normal, viewDir)
	}

	// Backface culling (screen-space winding)
	edge1 := math3d.V2(sv[1].X-sv[0].X, sv[1].Y-sv[0].Y)
	edge2 := math3d.V2(sv[2].X-sv[0].X, sv[2].Y-sv[0].Y)
	area := edge1.Cross(edge2)
	if area == 0 || (area < 0 && !r.DisableBackfaceCulling) {
		return
	}
	r.TrianglesDrawn++

	var tangent math3d.Vec3
	if bumped {
		tangent = triangleTangent(tri)
	}

	minX := int(math.Max(0, math.Floor(min(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max(sv[0].Y, sv[1].Y, sv[2].Y))))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			bc := barycentric(
				sv[0].X, sv[0].Y,
				sv[1].X, sv[1].Y,
				sv[2].X, sv[2].Y,
				float64(x)+0.5, float64(y)+0.5,
			)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z
			idx := y*r.fb.Width + x
			if z >= r.zbuffer[idx] {
				continue
			}

			// Perspective-correct weights
			w0, w1, w2 := bc.X*sv[0].InvW, bc.Y*sv[1].InvW, bc.Z*sv[2].InvW
			sum := w0 + w1 + w2
			if sum == 0 {
				continue
			}
			w0, w1, w2 = w0/sum, w1/sum, w2/sum

			u := w0*sv[0].UV.X + w1*sv[1].UV.X + w2*sv[2].UV.X
			v := w0*sv[0].UV.Y + w1*sv[1].UV.Y + w2*sv[2].UV.Y
			diffuse := sv[0].Diffuse.Scale(w0).Add(sv[1].Diffuse.Scale(w1)).Add(sv[2].Diffuse.Scale(w2))
			specular := sv[0].Specular.Scale(w0).Add(sv[1].Specular.Scale(w1)).Add(sv[2].Specular.Scale(w2))
			if bumped {
				pos := sv[0].World.Scale(w0).Add(sv[1].World.Scale(w1)).Add(sv[2].World.Scale(w2))
				n := sv[0].Normal.Scale(w0).Add(sv[1].Normal.Scale(w1)).Add(sv[2].Normal.Scale(w2)).Normalize()
				n = perturbNormal(n, tangent, mat.NormalMap.SampleLinear(u, v))
				diffuse, specular = r.Lights.Shade(n, eye.Sub(pos).Normalize())
			}

			r.zbuffer[idx] = z
			r.fb.Pixels[idx] = shade(mat, u, v, diffuse, specular)
		}
	}
}

// triangleTangent returns the world direction of increasing U across the
// triangle, or zero when its UVs are degenerate.
func triangleTangent(tri [3]vertex) math3d.Vec3 {
	e1 := tri[1].Position.Sub(tri[0].Position)
	e2 := tri[2].Position.Sub(tri[0].Position)
	du1, dv1 := tri[1].UV.X-tri[0].UV.X, tri[1].UV.Y-tri[0].UV.Y
	du2, dv2 := tri[2].UV.X-tri[0].UV.X, tri[2].UV.Y-tri[0].UV.Y

	det := du1*dv2 - du2*dv1
	if math.Abs(det) < 1e-12 {
		return math3d.Vec3{}
	}
	return e1.Scale(dv2).Sub(e2.Scale(dv1)).Scale(1 / det)
}

// perturbNormal applies a tangent-space normal map sample (0-1 per channel)
// to the surface normal n.
func perturbNormal(n, tangent, sample math3d.Vec3) math3d.Vec3 {
	m := sample.Scale(2).Sub(math3d.V3(1, 1, 1))

	// Gram-Schmidt; fall back to any perpendicular when UVs gave no tangent.
	t := tangent.Sub(n.Scale(n.Dot(tangent)))
	if t.Len() < 1e-9 {
		t = n.Cross(math3d.V3(1, 0, 0))
		if t.Len() < 1e-9 {
			t = n.Cross(math3d.V3(0, 1, 0))
		}
	}
	t = t.Normalize()
	b := n.Cross(t)

	return t.Scale(m.X).Add(b.Scale(m.Y)).Add(n.Scale(m.Z)).Normalize()
}

// shade combines the material with interpolated lighting into a display color.
func shade(mat *Material, u, v float64, diffuse, specular math3d.Vec3) Color {
	base, metal, rough := mat.surface(u, v)

	// Metals have no diffuse term and tint their reflections.
	f0 := math3d.V3(0.04, 0.04, 0.04).Lerp(base, metal)
	gloss := (1 - rough) * (1 - rough)
	lit := base.Mul(diffuse).Scale(1 - metal).Add(f0.Mul(specular).Scale(gloss))

	return RGB(LinearToSRGB8(lit.X), LinearToSRGB8(lit.Y), LinearToSRGB8(lit.Z))
}

// barycentric calculates barycentric coordinates for point (px, py) in a triangle.
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return math3d.V3(1-u-v, v, u)
}
