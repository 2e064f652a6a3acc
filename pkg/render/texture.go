package render

import (
	"image"
	"math"

	"github.com/taigrr/skykeep/pkg/math3d"
)

// ColorSpace tells the sampler how to interpret stored texel values.
type ColorSpace int

const (
	ColorSpaceLinear ColorSpace = iota // Data maps (normals, metal/rough)
	ColorSpaceSRGB                     // Perceptual color, gamma encoded
)

func (c ColorSpace) String() string {
	if c == ColorSpaceSRGB {
		return "srgb"
	}
	return "linear"
}

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // Tile the texture
	WrapClamp                  // Clamp to edge
)

// FilterMode determines how texture sampling is performed.
type FilterMode int

const (
	FilterNearest  FilterMode = iota // Nearest-neighbor (pixelated)
	FilterBilinear                   // Bilinear interpolation (smooth)
)

// Texture holds a decoded image plus its sampling configuration.
type Texture struct {
	Name       string
	Width      int
	Height     int
	Pixels     []Color // Row-major, top-left origin
	ColorSpace ColorSpace
	WrapU      WrapMode
	WrapV      WrapMode
	FilterMode FilterMode
	// FlipY flips V at sample time for bottom-left origin sources.
	FlipY bool

	disposed bool
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:      width,
		Height:     height,
		Pixels:     make([]Color, width*height),
		WrapU:      WrapRepeat,
		WrapV:      WrapRepeat,
		FilterMode: FilterNearest,
	}
}

// TextureFromImage copies img into a new texture.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := NewTexture(bounds.Dx(), bounds.Dy())

	if rgba, ok := img.(*image.RGBA); ok {
		for y := range tex.Height {
			for x := range tex.Width {
				o := rgba.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
				tex.Pixels[y*tex.Width+x] = Color{R: rgba.Pix[o], G: rgba.Pix[o+1], B: rgba.Pix[o+2], A: rgba.Pix[o+3]}
			}
		}
		return tex
	}

	for y := range tex.Height {
		for x := range tex.Width {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// RGBA returns 16-bit values, scale to 8-bit
			tex.Pixels[y*tex.Width+x] = Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
		}
	}
	return tex
}

// Disposed reports whether Dispose has released the pixel buffer.
func (t *Texture) Disposed() bool {
	return t.disposed
}

// Dispose releases the pixel buffer. Sampling a disposed texture yields black.
func (t *Texture) Dispose() {
	if t == nil || t.disposed {
		return
	}
	t.Pixels = nil
	t.Width, t.Height = 0, 0
	t.disposed = true
}

// GetPixel returns the pixel at (x, y) with bounds checking.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// SampleLinear samples at UV (0-1) and returns linear RGB in [0,1].
// sRGB textures are decoded; linear textures are returned as stored.
func (t *Texture) SampleLinear(u, v float64) math3d.Vec3 {
	if t.Width == 0 || t.Height == 0 {
		return math3d.Vec3{}
	}

	u = wrapCoord(u, t.WrapU)
	v = wrapCoord(v, t.WrapV)
	if t.FlipY {
		v = 1 - v
	}

	var c [3]float64
	if t.FilterMode == FilterBilinear {
		c = t.sampleBilinear(u, v)
	} else {
		p := t.sampleNearest(u, v)
		c = [3]float64{float64(p.R), float64(p.G), float64(p.B)}
	}

	if t.ColorSpace == ColorSpaceSRGB {
		return math3d.V3(srgbToLinear(c[0]), srgbToLinear(c[1]), srgbToLinear(c[2]))
	}
	return math3d.V3(c[0]/255, c[1]/255, c[2]/255)
}

func wrapCoord(coord float64, mode WrapMode) float64 {
	if mode == WrapClamp {
		return math.Max(0, math.Min(1, coord))
	}
	return coord - math.Floor(coord)
}

func (t *Texture) sampleNearest(u, v float64) Color {
	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int(v*float64(t.Height)), t.Height-1)
	return t.GetPixel(x, y)
}

// sampleBilinear returns interpolated 8-bit channel values as floats.
func (t *Texture) sampleBilinear(u, v float64) [3]float64 {
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := wrapPixel(x0+1, t.Width, t.WrapU)
	y1 := wrapPixel(y0+1, t.Height, t.WrapV)
	x0 = wrapPixel(x0, t.Width, t.WrapU)
	y0 = wrapPixel(y0, t.Height, t.WrapV)

	c00, c10 := t.GetPixel(x0, y0), t.GetPixel(x1, y0)
	c01, c11 := t.GetPixel(x0, y1), t.GetPixel(x1, y1)

	lerp := func(a, b, c, d uint8) float64 {
		top := float64(a) + (float64(b)-float64(a))*tx
		bot := float64(c) + (float64(d)-float64(c))*tx
		return top + (bot-top)*ty
	}
	return [3]float64{
		lerp(c00.R, c10.R, c01.R, c11.R),
		lerp(c00.G, c10.G, c01.G, c11.G),
		lerp(c00.B, c10.B, c01.B, c11.B),
	}
}

func wrapPixel(x, size int, mode WrapMode) int {
	if mode == WrapClamp {
		return max(0, min(size-1, x))
	}
	x %= size
	if x < 0 {
		x += size
	}
	return x
}

// srgbToLinear decodes an 8-bit sRGB channel value (0-255, may be fractional).
func srgbToLinear(c float64) float64 {
	c /= 255
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// LinearToSRGB8 encodes a linear channel value for display.
func LinearToSRGB8(c float64) uint8 {
	c = math.Max(0, math.Min(1, c))
	if c <= 0.0031308 {
		c *= 12.92
	} else {
		c = 1.055*math.Pow(c, 1/2.4) - 0.055
	}
	return uint8(c*255 + 0.5)
}
