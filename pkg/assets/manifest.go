// Package assets declares the castle manifest and resolves resource handles
// to bytes.
package assets

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed manifest.yaml castles
var embedded embed.FS

// EmbeddedFS exposes the assets compiled into the binary.
func EmbeddedFS() fs.FS {
	return embedded
}

// Handle is an opaque resource reference: a relative or absolute path,
// "embed:<path>" for compiled-in assets, or an http(s) URL.
type Handle string

// Descriptor pairs one model with its textures in role order
// (normal, base color, metallic/roughness).
type Descriptor struct {
	Model    Handle   `yaml:"model"`
	Textures []Handle `yaml:"textures"`
}

// Manifest is the ordered list of castles to load. Order determines layout slot.
type Manifest struct {
	Castles []Descriptor `yaml:"castles"`
}

// Len returns the number of descriptors.
func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Castles)
}

// ManifestError reports an unreadable or malformed manifest.
type ManifestError struct {
	Source string
	Err    error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest %s: %v", e.Source, e.Err)
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

// Parse decodes a YAML manifest. Unknown keys and entries without a model are
// rejected.
func Parse(source string, data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return &m, nil
		}
		return nil, &ManifestError{Source: source, Err: err}
	}

	for i, d := range m.Castles {
		if d.Model == "" {
			return nil, &ManifestError{Source: source, Err: fmt.Errorf("castle %d: missing model", i)}
		}
	}
	return &m, nil
}

// Embedded returns the manifest compiled into the binary.
func Embedded() (*Manifest, error) {
	data, err := fs.ReadFile(embedded, "manifest.yaml")
	if err != nil {
		return nil, &ManifestError{Source: "embedded", Err: err}
	}
	return Parse("embedded", data)
}

// LoadFile reads a manifest from disk.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ManifestError{Source: path, Err: err}
	}
	return Parse(path, data)
}
