package render

import (
	"math"

	"github.com/taigrr/skykeep/pkg/math3d"
)

// LightKind distinguishes ambient from directional lights.
type LightKind int

const (
	LightAmbient LightKind = iota
	LightDirectional
)

// Light illuminates the scene. Directional lights shine along Direction.
type Light struct {
	Name      string
	Kind      LightKind
	Direction math3d.Vec3
	Color     math3d.Vec3
	Intensity float64
}

// Lights is the rig evaluated per vertex.
type Lights []Light

// ThreePointRig returns the castle scene lighting: one ambient, a key light and
// two fill lights.
func ThreePointRig() Lights {
	white := math3d.V3(1, 1, 1)
	return Lights{
		{Name: "ambient", Kind: LightAmbient, Color: white, Intensity: 0.4},
		{Name: "key", Kind: LightDirectional, Direction: math3d.V3(-0.5, -1, -0.6).Normalize(), Color: white, Intensity: 0.9},
		{Name: "fill-left", Kind: LightDirectional, Direction: math3d.V3(1, -0.3, -0.2).Normalize(), Color: math3d.V3(0.85, 0.9, 1), Intensity: 0.35},
		{Name: "fill-back", Kind: LightDirectional, Direction: math3d.V3(0, -0.2, 1).Normalize(), Color: math3d.V3(1, 0.9, 0.8), Intensity: 0.2},
	}
}

const specularPower = 32

// Shade returns the diffuse and specular light reaching a surface point with the
// given normal, seen from viewDir (surface toward eye, normalized).
func (ls Lights) Shade(normal, viewDir math3d.Vec3) (diffuse, specular math3d.Vec3) {
	for _, l := range ls {
		radiance := l.Color.Scale(l.Intensity)
		if l.Kind == LightAmbient {
			diffuse = diffuse.Add(radiance)
			continue
		}
		toLight := l.Direction.Negate()
		ndl := normal.Dot(toLight)
		if ndl <= 0 {
			continue
		}
		diffuse = diffuse.Add(radiance.Scale(ndl))

		half := toLight.Add(viewDir).Normalize()
		if ndh := normal.Dot(half); ndh > 0 {
			specular = specular.Add(radiance.Scale(math.Pow(ndh, specularPower)))
		}
	}
	return diffuse, specular
}
