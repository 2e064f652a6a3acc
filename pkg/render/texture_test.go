package render

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/taigrr/skykeep/pkg/math3d"
)

func TestSampleLinearColorSpaces(t *testing.T) {
	tex := NewTexture(1, 1)
	tex.Pixels[0] = RGB(128, 128, 128)

	tex.ColorSpace = ColorSpaceLinear
	if got := tex.SampleLinear(0.5, 0.5); math.Abs(got.X-128.0/255) > 1e-9 {
		t.Errorf("linear sample = %v, want raw value", got.X)
	}

	tex.ColorSpace = ColorSpaceSRGB
	// sRGB 128 decodes to roughly 0.216 linear.
	if got := tex.SampleLinear(0.5, 0.5); math.Abs(got.X-0.2158) > 1e-3 {
		t.Errorf("srgb sample = %v, want ~0.216", got.X)
	}
}

func TestLinearToSRGBRoundTrip(t *testing.T) {
	for _, v := range []uint8{0, 1, 64, 128, 200, 255} {
		if got := LinearToSRGB8(srgbToLinear(float64(v))); got != v {
			t.Errorf("round trip %d -> %d", v, got)
		}
	}
}

func TestSampleFlipY(t *testing.T) {
	tex := NewTexture(1, 2)
	tex.Pixels[0] = RGB(255, 0, 0) // top row
	tex.Pixels[1] = RGB(0, 0, 255) // bottom row

	if got := tex.SampleLinear(0.5, 0.25); got.X != 1 {
		t.Errorf("top-left origin sample at v=0.25 = %v, want red", got)
	}
	tex.FlipY = true
	if got := tex.SampleLinear(0.5, 0.25); got.Z != 1 {
		t.Errorf("flipped sample at v=0.25 = %v, want blue", got)
	}
}

func TestSampleWrapModes(t *testing.T) {
	tex := NewTexture(2, 1)
	tex.Pixels[0] = RGB(255, 0, 0)
	tex.Pixels[1] = RGB(0, 255, 0)

	tex.WrapU = WrapRepeat
	if got := tex.SampleLinear(1.25, 0.5); got != math3d.V3(1, 0, 0) {
		t.Errorf("repeat sample = %v, want red", got)
	}
	tex.WrapU = WrapClamp
	if got := tex.SampleLinear(1.25, 0.5); got != math3d.V3(0, 1, 0) {
		t.Errorf("clamp sample = %v, want green", got)
	}
}

func TestTextureFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(2, 1, color.RGBA{10, 20, 30, 255})
	tex := TextureFromImage(img)
	if tex.Width != 3 || tex.Height != 2 {
		t.Fatalf("size = %dx%d, want 3x2", tex.Width, tex.Height)
	}
	if got := tex.GetPixel(2, 1); got != (Color{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("pixel = %v", got)
	}

	sub := img.SubImage(image.Rect(1, 1, 3, 2))
	if got := TextureFromImage(sub).GetPixel(1, 0); got != (Color{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("sub-image pixel = %v", got)
	}
}

func TestMaterialDispose(t *testing.T) {
	n, b, mr := NewTexture(1, 1), NewTexture(1, 1), NewTexture(1, 1)
	mat := NewPBRMaterial("m", n, b, mr)
	if len(mat.Textures()) != 3 {
		t.Fatalf("Textures() = %d, want 3", len(mat.Textures()))
	}
	mat.Dispose()
	for i, tex := range []*Texture{n, b, mr} {
		if !tex.Disposed() {
			t.Errorf("texture %d not disposed", i)
		}
	}
	if len(mat.Textures()) != 0 {
		t.Error("material still holds bindings after Dispose")
	}
	if got := n.SampleLinear(0.5, 0.5); got != (math3d.Vec3{}) {
		t.Errorf("disposed texture sampled %v, want black", got)
	}
}

func TestLightsShade(t *testing.T) {
	lights := Lights{
		{Kind: LightAmbient, Color: math3d.V3(1, 1, 1), Intensity: 0.25},
		{Kind: LightDirectional, Direction: math3d.V3(0, -1, 0), Color: math3d.V3(1, 1, 1), Intensity: 0.5},
	}

	up := math3d.V3(0, 1, 0)
	diffuse, specular := lights.Shade(up, up)
	if math.Abs(diffuse.X-0.75) > 1e-9 {
		t.Errorf("diffuse = %v, want 0.75", diffuse.X)
	}
	if math.Abs(specular.X-0.5) > 1e-9 {
		t.Errorf("specular = %v, want 0.5 for mirror direction", specular.X)
	}

	diffuse, specular = lights.Shade(up.Negate(), up)
	if math.Abs(diffuse.X-0.25) > 1e-9 || specular.X != 0 {
		t.Errorf("facing away: diffuse %v specular %v, want ambient only", diffuse.X, specular.X)
	}
}

func TestThreePointRig(t *testing.T) {
	rig := ThreePointRig()
	var ambient, directional int
	for _, l := range rig {
		switch l.Kind {
		case LightAmbient:
			ambient++
		case LightDirectional:
			directional++
		}
	}
	if ambient != 1 || directional != 3 {
		t.Errorf("rig has %d ambient and %d directional lights, want 1 and 3", ambient, directional)
	}
}
