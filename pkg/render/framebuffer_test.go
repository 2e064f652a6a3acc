package render

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestFramebufferClear(t *testing.T) {
	// Odd size so the doubling copy ends on a partial chunk.
	fb := NewFramebuffer(7, 5)
	c := RGB(9, 8, 7)
	fb.Clear(c)
	for i, p := range fb.Pixels {
		if p != c {
			t.Fatalf("pixel %d = %v, want %v", i, p, c)
		}
	}

	empty := NewFramebuffer(0, 0)
	empty.Clear(c)
}

func TestFramebufferBounds(t *testing.T) {
	fb := NewFramebuffer(4, 3)
	c := RGB(1, 1, 1)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 3}} {
		fb.SetPixel(p[0], p[1], c)
		if got := fb.GetPixel(p[0], p[1]); got != (Color{}) {
			t.Errorf("GetPixel(%d, %d) = %v outside the buffer", p[0], p[1], got)
		}
	}
	for i, p := range fb.Pixels {
		if p != (Color{}) {
			t.Errorf("pixel %d written by an out-of-bounds SetPixel", i)
		}
	}

	fb.SetPixel(3, 2, c)
	if fb.Pixels[len(fb.Pixels)-1] != c {
		t.Error("last pixel not written")
	}
}

func TestDrawLineAxes(t *testing.T) {
	fb := NewFramebuffer(10, 10)
	c := RGB(5, 5, 5)

	fb.DrawLine(8, 3, 2, 3, c)
	for x := 2; x <= 8; x++ {
		if fb.GetPixel(x, 3) != c {
			t.Errorf("horizontal line missing (%d, 3)", x)
		}
	}

	fb.DrawLine(0, 0, 2, 9, c)
	count := 0
	for y := range 10 {
		for x := range 3 {
			if fb.GetPixel(x, y) == c {
				count++
			}
		}
	}
	// One pixel per row on a steep line, plus the horizontal line's (2, 3).
	if count != 11 {
		t.Errorf("steep line lit %d pixels, want 11", count)
	}

	fb.Clear(Color{})
	fb.DrawLine(4, 4, 4, 4, c)
	if fb.GetPixel(4, 4) != c {
		t.Error("zero-length line should draw its point")
	}

	// Lines leaving the buffer are clipped pixel by pixel.
	fb.DrawLine(-5, 5, 15, 5, c)
	if fb.GetPixel(0, 5) != c || fb.GetPixel(9, 5) != c {
		t.Error("clipped line missing in-buffer pixels")
	}
}

func TestToImageAndSavePNG(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	fb.Clear(RGB(10, 20, 30))
	fb.SetPixel(2, 1, RGB(200, 100, 50))

	img := fb.ToImage()
	if got := img.RGBAAt(2, 1); got != RGB(200, 100, 50) {
		t.Errorf("ToImage(2, 1) = %v", got)
	}
	if got := img.RGBAAt(0, 0); got != RGB(10, 20, 30) {
		t.Errorf("ToImage(0, 0) = %v", got)
	}

	path := filepath.Join(t.TempDir(), "fb.png")
	if err := fb.SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("decoded bounds = %v, want 3x2", b)
	}

	if err := fb.SavePNG(filepath.Join(t.TempDir(), "missing", "fb.png")); err == nil {
		t.Error("SavePNG into a missing directory should fail")
	}
}
