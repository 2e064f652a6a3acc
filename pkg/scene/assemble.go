package scene

import "github.com/taigrr/skykeep/pkg/math3d"

// Layout constants in world units.
const (
	GroupScale = 8.0
	Spacing    = 25.0
)

// Slots are the fixed left, center and right positions used for up to three groups.
var Slots = [...]math3d.Vec3{
	{X: -Spacing},
	{},
	{X: Spacing},
}

// SlotPosition returns the world position of group i out of n.
func SlotPosition(i, n int) math3d.Vec3 {
	if n <= len(Slots) && i >= 0 && i < len(Slots) {
		return Slots[i]
	}
	return math3d.V3((float64(i)-float64(n-1)/2)*Spacing, 0, 0)
}

// Assemble places groups by index, applies the uniform scale, and adds them to sc.
func Assemble(groups []*Group, sc *Scene) {
	n := len(groups)
	for i, g := range groups {
		g.Transform.Position = SlotPosition(i, n)
		g.Transform.Scale = math3d.V3(GroupScale, GroupScale, GroupScale)
	}
	sc.Add(groups...)
}
