package pose

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// EulerOrder names the axes of an intrinsic Tait-Bryan rotation, first axis
// first. Angles are in radians.
type EulerOrder int

const (
	EulerXYZ EulerOrder = iota
	EulerXZY
	EulerYXZ
	EulerYZX
	EulerZXY
	EulerZYX
)

var eulerAxes = [...][3]int{
	EulerXYZ: {0, 1, 2},
	EulerXZY: {0, 2, 1},
	EulerYXZ: {1, 0, 2},
	EulerYZX: {1, 2, 0},
	EulerZXY: {2, 0, 1},
	EulerZYX: {2, 1, 0},
}

var eulerNames = [...]string{"XYZ", "XZY", "YXZ", "YZX", "ZXY", "ZYX"}

func (o EulerOrder) String() string {
	if o >= 0 && int(o) < len(eulerNames) {
		return eulerNames[o]
	}
	return fmt.Sprintf("EulerOrder(%d)", int(o))
}

// ParseEulerOrder maps an axis sequence such as "YXZ" to an EulerOrder.
func ParseEulerOrder(s string) (EulerOrder, error) {
	for i, name := range eulerNames {
		if name == s {
			return EulerOrder(i), nil
		}
	}
	return 0, fmt.Errorf("unknown euler order %q", s)
}

func (o EulerOrder) axes() [3]int {
	if o >= 0 && int(o) < len(eulerAxes) {
		return eulerAxes[o]
	}
	return eulerAxes[EulerXYZ]
}

func unitAxis(i int) mgl64.Vec3 {
	var v mgl64.Vec3
	v[i] = 1
	return v
}

// FromEuler composes the rotations angles[0], angles[1] and angles[2] about
// the axes of o, in that order.
func FromEuler(angles mgl64.Vec3, o EulerOrder) mgl64.Quat {
	ax := o.axes()
	q := mgl64.QuatIdent()
	for k, i := range ax {
		q = q.Mul(mgl64.QuatRotate(angles[k], unitAxis(i)))
	}
	return q.Normalize()
}

// ToEuler decomposes q into angles about the axes of o, the inverse of
// FromEuler. The middle angle lies in [-pi/2, pi/2]; at gimbal lock the first
// angle absorbs the third.
func ToEuler(q mgl64.Quat, o EulerOrder) mgl64.Vec3 {
	ax := o.axes()
	i, j, k := ax[0], ax[1], ax[2]
	m := q.Normalize().Mat4()
	s := 1.0
	if (j-i+3)%3 != 1 {
		s = -1
	}
	mid := math.Asin(math.Max(-1, math.Min(1, s*m.At(i, k))))
	if math.Abs(m.At(i, k)) > 1-1e-12 {
		return mgl64.Vec3{math.Atan2(s*m.At(k, j), m.At(j, j)), mid, 0}
	}
	return mgl64.Vec3{
		math.Atan2(-s*m.At(j, k), m.At(k, k)),
		mid,
		math.Atan2(-s*m.At(i, j), m.At(i, i)),
	}
}
