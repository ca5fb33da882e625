// Package core provides the math primitives shared by the scene graph and the
// command interpreter.
package core

import "github.com/go-gl/mathgl/mgl32"

// Vec3 is a 3-D vector (position, scale or Euler angles).
type Vec3 = mgl32.Vec3

// Quat is a rotation quaternion.
type Quat = mgl32.Quat

// Epsilon is the tolerance used by ApproxEqual comparisons.
const Epsilon = 1e-4

// V3 builds a Vec3.
func V3(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

// One is the unit scale.
func One() Vec3 {
	return Vec3{1, 1, 1}
}

// Euler returns the rotation for Euler angles given in degrees.
// Rotations are applied Y first, then X, then Z, which is the convention the
// scene commands use for their qx qy qz fields.
func Euler(x, y, z float32) Quat {
	return mgl32.AnglesToQuat(
		mgl32.DegToRad(y),
		mgl32.DegToRad(x),
		mgl32.DegToRad(z),
		mgl32.YXZ,
	)
}

// Identity returns the identity rotation.
func Identity() Quat {
	return mgl32.QuatIdent()
}

// Transform is a local position/scale/rotation triple.
type Transform struct {
	Position Vec3
	Scale    Vec3
	Rotation Quat
}

// IdentityTransform returns a transform at the origin with unit scale.
func IdentityTransform() Transform {
	return Transform{
		Position: Vec3{},
		Scale:    One(),
		Rotation: Identity(),
	}
}

// Apply maps a point from this transform's local space into its parent space.
func (t Transform) Apply(p Vec3) Vec3 {
	scaled := Vec3{p[0] * t.Scale[0], p[1] * t.Scale[1], p[2] * t.Scale[2]}
	return t.Position.Add(t.Rotation.Rotate(scaled))
}

// Compose returns the transform equivalent to applying child and then t.
func (t Transform) Compose(child Transform) Transform {
	return Transform{
		Position: t.Apply(child.Position),
		Scale:    Vec3{t.Scale[0] * child.Scale[0], t.Scale[1] * child.Scale[1], t.Scale[2] * child.Scale[2]},
		Rotation: t.Rotation.Mul(child.Rotation).Normalize(),
	}
}

// ApproxEqual reports whether two vectors are equal within Epsilon.
func ApproxEqual(a, b Vec3) bool {
	return a.ApproxEqualThreshold(b, Epsilon)
}
