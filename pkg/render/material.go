package render

import "github.com/taigrr/skykeep/pkg/math3d"

// Material is a physically based surface description.
// Map slots follow the glTF metallic-roughness convention: the metal/rough map
// stores roughness in G and metalness in B, and both scale the scalar factors.
type Material struct {
	Name  string
	Color math3d.Vec3 // Linear base color factor

	BaseColorMap  *Texture
	NormalMap     *Texture
	MetalRoughMap *Texture

	Metalness float64
	Roughness float64
}

// NewMaterial returns an untextured dielectric material with the given linear color.
func NewMaterial(name string, color math3d.Vec3) *Material {
	return &Material{
		Name:      name,
		Color:     color,
		Metalness: 0,
		Roughness: 1,
	}
}

// NewPBRMaterial binds the three texture channels of a castle asset.
// Scalar factors stay at metalness 0, roughness 1 so variation comes from the maps.
func NewPBRMaterial(name string, normal, baseColor, metalRough *Texture) *Material {
	return &Material{
		Name:          name,
		Color:         math3d.V3(1, 1, 1),
		NormalMap:     normal,
		BaseColorMap:  baseColor,
		MetalRoughMap: metalRough,
		Metalness:     0,
		Roughness:     1,
	}
}

// Textures returns the non-nil texture bindings.
func (m *Material) Textures() []*Texture {
	var out []*Texture
	for _, t := range []*Texture{m.NormalMap, m.BaseColorMap, m.MetalRoughMap} {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Dispose releases every bound texture and clears the bindings.
// Textures shared with other materials are released too.
func (m *Material) Dispose() {
	if m == nil {
		return
	}
	for _, t := range m.Textures() {
		t.Dispose()
	}
	m.NormalMap, m.BaseColorMap, m.MetalRoughMap = nil, nil, nil
}

// surface evaluates the material at a texture coordinate.
func (m *Material) surface(u, v float64) (base math3d.Vec3, metal, rough float64) {
	base = m.Color
	metal, rough = m.Metalness, m.Roughness

	if m.BaseColorMap != nil {
		base = base.Mul(m.BaseColorMap.SampleLinear(u, v))
	}
	if m.MetalRoughMap != nil {
		mr := m.MetalRoughMap.SampleLinear(u, v)
		rough *= mr.Y
		metal *= mr.Z
	}
	return base, metal, rough
}
