package core

import "testing"

func TestEulerSingleAxis(t *testing.T) {
	tests := []struct {
		name     string
		rot      Quat
		in       Vec3
		expected Vec3
	}{
		{
			name:     "yaw 90 turns +X into -Z",
			rot:      Euler(0, 90, 0),
			in:       V3(1, 0, 0),
			expected: V3(0, 0, -1),
		},
		{
			name:     "pitch 90 turns +Y into +Z",
			rot:      Euler(90, 0, 0),
			in:       V3(0, 1, 0),
			expected: V3(0, 0, 1),
		},
		{
			name:     "roll 90 turns +X into +Y",
			rot:      Euler(0, 0, 90),
			in:       V3(1, 0, 0),
			expected: V3(0, 1, 0),
		},
		{
			name:     "zero angles are identity",
			rot:      Euler(0, 0, 0),
			in:       V3(3, -2, 5),
			expected: V3(3, -2, 5),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.rot.Rotate(tc.in)
			if !ApproxEqual(got, tc.expected) {
				t.Errorf("Rotate() = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestTransformApply(t *testing.T) {
	tr := Transform{
		Position: V3(10, 0, 0),
		Scale:    V3(2, 2, 2),
		Rotation: Identity(),
	}

	got := tr.Apply(V3(1, 1, 1))
	if !ApproxEqual(got, V3(12, 2, 2)) {
		t.Errorf("Apply() = %v, expected (12, 2, 2)", got)
	}
}

func TestTransformCompose(t *testing.T) {
	parent := Transform{
		Position: V3(0, 0, 0),
		Scale:    One(),
		Rotation: Euler(0, 90, 0),
	}
	child := IdentityTransform()
	child.Position = V3(50, 0, 0)

	world := parent.Compose(child)
	if !ApproxEqual(world.Position, V3(0, 0, -50)) {
		t.Errorf("Compose().Position = %v, expected (0, 0, -50)", world.Position)
	}
}
