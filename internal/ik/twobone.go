// Package ik implements the closed-form two-bone inverse kinematics solver
// used by the TwoBoneIK node.
package ik

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const eps = 1e-9

// ErrDegenerate is returned when a chain has a zero-length segment.
var ErrDegenerate = errors.New("degenerate two-bone chain")

// Chain holds the character-space joint positions of a three-joint chain.
type Chain struct {
	Root, Mid, End mgl64.Vec3
}

// Solution holds the solved joint positions and the character-space rotation
// deltas to pre-multiply onto the root and mid joints' global rotations.
type Solution struct {
	Mid, End  mgl64.Vec3
	RootSwing mgl64.Quat
	MidSwing  mgl64.Quat
	// Reach is the root-to-effector distance actually solved for, after
	// clamping to [|L1-L2|, L1+L2].
	Reach float64
}

// Solve places the chain's end effector as close to target as the segment
// lengths allow, keeping the bend in the plane of the current pose.
func Solve(c Chain, target mgl64.Vec3) (Solution, error) {
	upper := c.Mid.Sub(c.Root)
	lower := c.End.Sub(c.Mid)
	l1, l2 := upper.Len(), lower.Len()
	if l1 < eps || l2 < eps || anyNaN(c.Root, c.Mid, c.End, target) {
		return Solution{}, ErrDegenerate
	}

	upperDir := upper.Mul(1 / l1)
	endDir, ok := normalize(c.End.Sub(c.Root))
	if !ok {
		endDir = upperDir
	}
	toTarget := target.Sub(c.Root)
	targetDir, ok := normalize(toTarget)
	if !ok {
		targetDir = endDir
	}

	reach := math.Max(math.Abs(l1-l2), math.Min(toTarget.Len(), l1+l2))

	poleIn, ok := normalize(reject(upper, endDir))
	if !ok {
		poleIn = perpendicular(endDir)
	}
	poleOut := Arc(endDir, targetDir).Rotate(poleIn)

	cos := 0.0
	if reach > eps {
		cos = clamp((reach*reach+l1*l1-l2*l2)/(2*l1*reach), -1, 1)
	}
	sin := math.Sqrt(math.Max(0, 1-cos*cos))
	mid := c.Root.Add(targetDir.Mul(l1 * cos)).Add(poleOut.Mul(l1 * sin))

	effector := c.Root.Add(targetDir.Mul(reach))
	lowerDir, ok := normalize(effector.Sub(mid))
	if !ok {
		lowerDir = targetDir
	}
	end := mid.Add(lowerDir.Mul(l2))

	newUpperDir, _ := normalize(mid.Sub(c.Root))
	rootSwing := Arc(upperDir, newUpperDir)

	swungLower, _ := normalize(rootSwing.Rotate(lower))
	midSwing := Arc(swungLower, lowerDir).Mul(rootSwing).Normalize()

	return Solution{Mid: mid, End: end, RootSwing: rootSwing, MidSwing: midSwing, Reach: reach}, nil
}

// Arc returns the shortest rotation taking direction from onto direction to.
// Inputs need not be normalized; zero vectors yield the identity.
func Arc(from, to mgl64.Vec3) mgl64.Quat {
	a, okA := normalize(from)
	b, okB := normalize(to)
	if !okA || !okB {
		return mgl64.QuatIdent()
	}
	d := clamp(a.Dot(b), -1, 1)
	if d >= 1-1e-15 {
		return mgl64.QuatIdent()
	}
	if d <= -1+1e-12 {
		return mgl64.QuatRotate(math.Pi, perpendicular(a))
	}
	s := math.Sqrt((1 + d) * 2)
	return mgl64.Quat{W: s / 2, V: a.Cross(b).Mul(1 / s)}.Normalize()
}

func reject(v, onto mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(onto.Mul(v.Dot(onto)))
}

func perpendicular(v mgl64.Vec3) mgl64.Vec3 {
	axis := mgl64.Vec3{1, 0, 0}
	if math.Abs(v.X()) > 0.9 {
		axis = mgl64.Vec3{0, 1, 0}
	}
	p, _ := normalize(reject(axis, v))
	return p
}

// normalize scales v by its largest component first, so huge but finite
// vectors do not overflow.
func normalize(v mgl64.Vec3) (mgl64.Vec3, bool) {
	m := math.Max(math.Abs(v[0]), math.Max(math.Abs(v[1]), math.Abs(v[2])))
	if m < eps || math.IsNaN(m) || math.IsInf(m, 0) {
		return mgl64.Vec3{}, false
	}
	v = v.Mul(1 / m)
	return v.Mul(1 / v.Len()), true
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func anyNaN(vs ...mgl64.Vec3) bool {
	for _, v := range vs {
		for _, c := range v {
			if math.IsNaN(c) {
				return true
			}
		}
	}
	return false
}
