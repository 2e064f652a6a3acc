package math3d

import "math"

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Approach moves current toward target by factor (0..1) of the remaining gap.
// It is one step of exponential smoothing.
func Approach(current, target, factor float64) float64 {
	return current + (target-current)*factor
}

// Spherical converts orbit coordinates to a cartesian offset.
// phi is the polar angle measured from +Y, theta the azimuth measured from +Z.
func Spherical(radius, phi, theta float64) Vec3 {
	sinPhi := math.Sin(phi)
	return Vec3{
		X: radius * sinPhi * math.Sin(theta),
		Y: radius * math.Cos(phi),
		Z: radius * sinPhi * math.Cos(theta),
	}
}
