package pose

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a bone's local translation, rotation and scale relative to its
// parent.
type Transform struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
	Scale       mgl64.Vec3
}

// Identity returns the transform that leaves its child unchanged.
func Identity() Transform {
	return Transform{Rotation: mgl64.QuatIdent(), Scale: mgl64.Vec3{1, 1, 1}}
}

// Mul composes t (parent) with child, giving child's transform in t's space.
func (t Transform) Mul(child Transform) Transform {
	return Transform{
		Translation: t.Point(child.Translation),
		Rotation:    t.Rotation.Mul(child.Rotation),
		Scale:       mulElem(t.Scale, child.Scale),
	}
}

// Point maps a point from t's local space into its parent's space.
func (t Transform) Point(p mgl64.Vec3) mgl64.Vec3 {
	return t.Translation.Add(t.Rotation.Rotate(mulElem(t.Scale, p)))
}

// Lerp interpolates translation and scale linearly and rotation spherically
// along the shortest arc. f == 0 and f == 1 return a and b unchanged.
func Lerp(a, b Transform, f float64) Transform {
	switch f {
	case 0:
		return a
	case 1:
		return b
	}
	return Transform{
		Translation: LerpVec(a.Translation, b.Translation, f),
		Rotation:    Slerp(a.Rotation, b.Rotation, f),
		Scale:       LerpVec(a.Scale, b.Scale, f),
	}
}

// LerpVec interpolates two vectors linearly.
func LerpVec(a, b mgl64.Vec3, f float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(f))
}

// Slerp interpolates two rotations along the shortest path. The result is
// normalized.
func Slerp(a, b mgl64.Quat, f float64) mgl64.Quat {
	switch f {
	case 0:
		return a
	case 1:
		return b
	}
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatSlerp(a, b, f).Normalize()
}

// NormalizeVec returns v scaled to unit length, or false when v has no usable
// direction.
func NormalizeVec(v mgl64.Vec3) (mgl64.Vec3, bool) {
	l := v.Len()
	if l < 1e-12 || math.IsNaN(l) || math.IsInf(l, 0) {
		return mgl64.Vec3{}, false
	}
	return v.Mul(1 / l), true
}

func mulElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
