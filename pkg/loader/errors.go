// Package loader turns manifest descriptors into render-ready castle groups.
package loader

import (
	"errors"
	"fmt"

	"github.com/taigrr/skykeep/pkg/assets"
)

// ErrUnsupportedRole is returned for texture indices outside the three known roles.
var ErrUnsupportedRole = errors.New("unsupported texture role")

// TextureLoadError reports one texture that could not be loaded. It never
// fails the model; the texture is dropped from the loaded set.
type TextureLoadError struct {
	Handle assets.Handle
	Role   int
	Err    error
}

func (e *TextureLoadError) Error() string {
	return fmt.Sprintf("texture %s (role %d): %v", e.Handle, e.Role, e.Err)
}

func (e *TextureLoadError) Unwrap() error {
	return e.Err
}

// ModelLoadError reports a model whose geometry could not be built. The caller
// substitutes fallback geometry.
type ModelLoadError struct {
	Index  int
	Handle assets.Handle
	Err    error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("model %d (%s): %v", e.Index, e.Handle, e.Err)
}

func (e *ModelLoadError) Unwrap() error {
	return e.Err
}
