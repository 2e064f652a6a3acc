// Package render provides software rasterization onto terminal-sized framebuffers.
package render

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
)

// Framebuffer holds the colors the rasterizer writes. Terminal output packs
// two pixel rows into one cell, so Height is twice the row count.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []Color // Row-major, len Width*Height
}

// NewFramebuffer allocates a width x height framebuffer.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// index returns the offset of (x, y), or -1 outside the buffer.
func (fb *Framebuffer) index(x, y int) int {
	if uint(x) >= uint(fb.Width) || uint(y) >= uint(fb.Height) {
		return -1
	}
	return y*fb.Width + x
}

// Clear fills every pixel with c.
func (fb *Framebuffer) Clear(c Color) {
	if len(fb.Pixels) == 0 {
		return
	}
	fb.Pixels[0] = c
	for filled := 1; filled < len(fb.Pixels); filled *= 2 {
		copy(fb.Pixels[filled:], fb.Pixels[:filled])
	}
}

// SetPixel writes c at (x, y). Writes outside the buffer are dropped.
func (fb *Framebuffer) SetPixel(x, y int, c Color) {
	if i := fb.index(x, y); i >= 0 {
		fb.Pixels[i] = c
	}
}

// GetPixel reads (x, y), or the zero color outside the buffer.
func (fb *Framebuffer) GetPixel(x, y int) Color {
	if i := fb.index(x, y); i >= 0 {
		return fb.Pixels[i]
	}
	return Color{}
}

// DrawLine steps along the longer axis from (x0, y0) to (x1, y1), rounding
// the other coordinate. Both endpoints are drawn; off-buffer pixels are skipped.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c Color) {
	dx, dy := x1-x0, y1-y0
	steps := max(absInt(dx), absInt(dy))
	if steps == 0 {
		fb.SetPixel(x0, y0, c)
		return
	}
	sx, sy := float64(dx)/float64(steps), float64(dy)/float64(steps)
	for i := 0; i <= steps; i++ {
		fb.SetPixel(
			x0+int(math.Round(float64(i)*sx)),
			y0+int(math.Round(float64(i)*sy)),
			c,
		)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Dispose releases the pixel buffer.
func (fb *Framebuffer) Dispose() {
	fb.Pixels = nil
	fb.Width, fb.Height = 0, 0
}

// ToImage copies the framebuffer into a new RGBA image.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i, p := range fb.Pixels {
		copy(img.Pix[i*4:i*4+4], []uint8{p.R, p.G, p.B, p.A})
	}
	return img
}

// SavePNG encodes the framebuffer to path.
func (fb *Framebuffer) SavePNG(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := png.Encode(f, fb.ToImage()); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
