package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestSpherical(t *testing.T) {
	tests := []struct {
		name       string
		r, phi, th float64
		want       Vec3
	}{
		{"equator facing +Z", 10, math.Pi / 2, 0, V3(0, 0, 10)},
		{"equator facing +X", 10, math.Pi / 2, math.Pi / 2, V3(10, 0, 0)},
		{"north pole", 5, 0, 1.234, V3(0, 5, 0)},
		{"south pole", 5, math.Pi, 0, V3(0, -5, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Spherical(tc.r, tc.phi, tc.th)
			if !got.ApproxEqual(tc.want, 1e-9) {
				t.Errorf("Spherical(%v, %v, %v) = %v, want %v", tc.r, tc.phi, tc.th, got, tc.want)
			}
			if math.Abs(got.Len()-tc.r) > eps {
				t.Errorf("radius = %v, want %v", got.Len(), tc.r)
			}
		})
	}
}

func TestApproach(t *testing.T) {
	v := 0.0
	for range 200 {
		v = Approach(v, 10, 0.15)
	}
	if math.Abs(v-10) > 1e-6 {
		t.Errorf("Approach did not converge: %v", v)
	}

	if got := Approach(2, 2, 0.15); got != 2 {
		t.Errorf("Approach at target moved to %v", got)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 1) != 1 || Clamp(-5, 0, 1) != 0 || Clamp(0.5, 0, 1) != 0.5 {
		t.Error("Clamp returned value outside range")
	}
}

func TestFromQuatMatchesAxisRotation(t *testing.T) {
	angle := 0.7
	q := [4]float64{0, math.Sin(angle / 2), 0, math.Cos(angle / 2)}
	got := FromQuat(q)
	want := RotateY(angle)
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("FromQuat[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestComposeAppliesScaleThenRotationThenTranslation(t *testing.T) {
	m := Compose(V3(1, 2, 3), RotateY(math.Pi/2), V3(2, 2, 2))
	got := m.MulVec3(V3(1, 0, 0))
	// Scale to (2,0,0), rotate +90° about Y to (0,0,-2), translate.
	want := V3(1, 2, 1)
	if !got.ApproxEqual(want, 1e-9) {
		t.Errorf("Compose point = %v, want %v", got, want)
	}
}

func TestLookAtMapsEyeToOrigin(t *testing.T) {
	eye := V3(3, 4, 5)
	view := LookAt(eye, Zero3(), Up())
	if got := view.MulVec3(eye); !got.ApproxEqual(Zero3(), 1e-9) {
		t.Errorf("eye in view space = %v, want origin", got)
	}
	// The target lies straight ahead on -Z.
	got := view.MulVec3(Zero3())
	if math.Abs(got.X) > 1e-9 || math.Abs(got.Y) > 1e-9 || got.Z >= 0 {
		t.Errorf("target in view space = %v, want on -Z axis", got)
	}
}

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := RotateY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkViewProjection(b *testing.B) {
	view := LookAt(V3(0, 0, 10), Zero3(), Up())
	proj := Perspective(math.Pi/3, 1.333, 0.1, 100.0)

	for b.Loop() {
		_ = proj.Mul(view)
	}
}
