package loader

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/transform"
	"github.com/taigrr/skykeep/pkg/assets"
	"github.com/taigrr/skykeep/pkg/render"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Role is a texture's channel role, given by its position in the descriptor.
type Role int

const (
	RoleNormal     Role = iota // Tangent-space normal map
	RoleBaseColor              // Perceptual albedo
	RoleMetalRough             // G = roughness, B = metalness
)

// ExpectedTextures is the number of roles a fully textured castle supplies.
const ExpectedTextures = 3

func (r Role) String() string {
	switch r {
	case RoleNormal:
		return "normal"
	case RoleBaseColor:
		return "base color"
	case RoleMetalRough:
		return "metal/rough"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ColorSpace returns how texels of this role are interpreted. Only base color
// carries perceptual color; data maps stay linear.
func (r Role) ColorSpace() (render.ColorSpace, error) {
	switch r {
	case RoleNormal, RoleMetalRough:
		return render.ColorSpaceLinear, nil
	case RoleBaseColor:
		return render.ColorSpaceSRGB, nil
	default:
		return 0, ErrUnsupportedRole
	}
}

// TextureLoader fetches, decodes and configures single textures.
type TextureLoader struct {
	fetcher assets.Fetcher
	maxSize int
	log     *zap.Logger
}

// NewTextureLoader returns a loader reading through f. Textures larger than
// maxSize on either axis are downsampled; 0 disables downsampling.
func NewTextureLoader(f assets.Fetcher, maxSize int, log *zap.Logger) *TextureLoader {
	return &TextureLoader{fetcher: f, maxSize: maxSize, log: log.Named("loader").Named("texture")}
}

// Load fetches h and configures it for the given role. Failures are logged
// and returned as *TextureLoadError.
func (l *TextureLoader) Load(ctx context.Context, h assets.Handle, role int) (*render.Texture, error) {
	tex, err := l.load(ctx, h, role)
	if err != nil {
		err = &TextureLoadError{Handle: h, Role: role, Err: err}
		l.log.Warn("texture dropped", zap.Error(err))
		return nil, err
	}
	l.log.Debug("texture loaded",
		zap.String("handle", string(h)),
		zap.Stringer("role", Role(role)),
		zap.Int("width", tex.Width),
		zap.Int("height", tex.Height),
	)
	return tex, nil
}

func (l *TextureLoader) load(ctx context.Context, h assets.Handle, role int) (*render.Texture, error) {
	cs, err := Role(role).ColorSpace()
	if err != nil {
		return nil, err
	}

	data, err := l.fetcher.Fetch(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	img = l.downsample(img)

	tex := render.TextureFromImage(img)
	tex.Name = string(h)
	tex.ColorSpace = cs
	tex.FlipY = false // Sources use a top-left origin
	tex.WrapU = render.WrapRepeat
	tex.WrapV = render.WrapRepeat
	tex.FilterMode = render.FilterBilinear

	l.log.Debug("texture decoded", zap.String("format", format), zap.Stringer("colorspace", cs))
	return tex, nil
}

// downsample shrinks img so neither side exceeds maxSize, keeping aspect ratio.
func (l *TextureLoader) downsample(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if l.maxSize <= 0 || (w <= l.maxSize && h <= l.maxSize) {
		return img
	}

	scale := float64(l.maxSize) / float64(max(w, h))
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))
	return transform.Resize(img, nw, nh, transform.Linear)
}
