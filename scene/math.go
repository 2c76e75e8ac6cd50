package scene

import (
	"fmt"
	"math"
)

// Vec3 is a location or offset in scene space.
type Vec3 struct {
	X, Y, Z float32
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// Quat is a rotation stored as a unit quaternion (x, y, z, w).
// The zero value is not a valid rotation; use IdentityQuat.
type Quat struct {
	X, Y, Z, W float32
}

// IdentityQuat returns the rotation that leaves orientation unchanged.
func IdentityQuat() Quat {
	return Quat{W: 1}
}

// QuatFromYaw returns a rotation of angle radians around the Y axis.
func QuatFromYaw(angle float32) Quat {
	half := float64(angle) / 2
	return Quat{Y: float32(math.Sin(half)), W: float32(math.Cos(half))}
}

// Yaw returns the rotation angle around the Y axis in radians.
func (q Quat) Yaw() float32 {
	siny := 2 * (q.W*q.Y + q.Z*q.X)
	cosy := 1 - 2*(q.X*q.X+q.Y*q.Y)
	return float32(math.Atan2(float64(siny), float64(cosy)))
}

// IsZero reports whether q is the zero value, which callers treat as identity.
func (q Quat) IsZero() bool {
	return q == Quat{}
}

// Mul composes two rotations: the result applies o first, then q.
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

func (q Quat) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f, %.2f)", q.X, q.Y, q.Z, q.W)
}
