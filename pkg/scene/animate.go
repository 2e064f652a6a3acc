package scene

import "math"

// Animation constants. Speeds are radians per second of elapsed time.
const (
	BobSpeed      = 1.0
	BobAmplitude  = 1.5
	PhaseOffset   = 1.3
	SwaySpeed     = 0.7
	SwayAmplitude = 0.06
	SpinRate      = 0.25
)

// Animate writes each group's bob height, sway and spin for elapsed time t.
// rotations[i] is added to group i's spin; missing entries count as zero.
// Only Position.Y and Rotation are written, so repeated calls with the same
// inputs give the same transforms.
func Animate(t float64, groups []*Group, rotations []float64) {
	for i, g := range groups {
		phase := float64(i) * PhaseOffset

		var extra float64
		if i < len(rotations) {
			extra = rotations[i]
		}

		g.Transform.Position.Y = math.Sin(t*BobSpeed+phase) * BobAmplitude
		g.Transform.Rotation.X = math.Sin(t*SwaySpeed+phase) * SwayAmplitude
		g.Transform.Rotation.Z = math.Cos(t*SwaySpeed+phase) * SwayAmplitude
		g.Transform.Rotation.Y = t*SpinRate + extra
	}
}
