package testutil

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/vk/animgraph/internal/pose"
)

// Bone paths of the test rig.
const (
	Hips  = pose.EntityPath("Hips")
	Spine = pose.EntityPath("Hips/Spine")
	LegL  = pose.EntityPath("Hips/Leg.L")
	ShinL = pose.EntityPath("Hips/Leg.L/Shin.L")
	FootL = pose.EntityPath("Hips/Leg.L/Shin.L/Foot.L")
	LegR  = pose.EntityPath("Hips/Leg.R")
	ShinR = pose.EntityPath("Hips/Leg.R/Shin.R")
	FootR = pose.EntityPath("Hips/Leg.R/Shin.R/Foot.R")
)

// SegmentLen is the length of every leg segment.
const SegmentLen = 0.5

// T builds a unit-scale transform.
func T(x, y, z float64, q mgl64.Quat) pose.Transform {
	return pose.Transform{Translation: mgl64.Vec3{x, y, z}, Rotation: q, Scale: mgl64.Vec3{1, 1, 1}}
}

// RotX returns a rotation of deg degrees about +X.
func RotX(deg float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(deg), mgl64.Vec3{1, 0, 0})
}

// RestPose is the rig at rest: legs hang straight down from the hips, each
// segment SegmentLen long.
func RestPose() *pose.Pose {
	id := mgl64.QuatIdent()
	return pose.FromBones(0,
		pose.Bone{Path: Hips, Transform: T(0, 1, 0, id)},
		pose.Bone{Path: Spine, Transform: T(0, 0.2, 0, id)},
		pose.Bone{Path: LegL, Transform: T(0.1, 0, 0, id)},
		pose.Bone{Path: ShinL, Transform: T(0, -SegmentLen, 0, id)},
		pose.Bone{Path: FootL, Transform: T(0, -SegmentLen, 0, id)},
		pose.Bone{Path: LegR, Transform: T(-0.1, 0, 0, id)},
		pose.Bone{Path: ShinR, Transform: T(0, -SegmentLen, 0, id)},
		pose.Bone{Path: FootR, Transform: T(0, -SegmentLen, 0, id)},
	)
}

// Skeleton wraps RestPose.
func Skeleton() *pose.Skeleton {
	s, err := pose.NewSkeleton("rig", RestPose())
	if err != nil {
		panic(err)
	}
	return s
}

// WalkClip swings the left leg forward and the right leg back over duration
// seconds while the hips drift along +X, so that it is not mirror symmetric.
func WalkClip(name string, duration float64) *pose.Clip {
	return &pose.Clip{
		Name:     name,
		Duration: duration,
		Tracks: []pose.Track{
			{Path: Hips, Translation: []pose.Keyframe[mgl64.Vec3]{
				{Time: 0, Value: mgl64.Vec3{0, 1, 0}},
				{Time: duration, Value: mgl64.Vec3{0.4, 1, 0}},
			}},
			{Path: LegL, Translation: []pose.Keyframe[mgl64.Vec3]{{Time: 0, Value: mgl64.Vec3{0.1, 0, 0}}},
				Rotation: []pose.Keyframe[mgl64.Quat]{
					{Time: 0, Value: RotX(-30)},
					{Time: duration, Value: RotX(30)},
				}},
			{Path: LegR, Translation: []pose.Keyframe[mgl64.Vec3]{{Time: 0, Value: mgl64.Vec3{-0.1, 0, 0}}},
				Rotation: []pose.Keyframe[mgl64.Quat]{
					{Time: 0, Value: RotX(20)},
					{Time: duration, Value: RotX(-10)},
				}},
		},
	}
}

// HoldClip samples as a constant pose with the hips at height y.
func HoldClip(name string, duration, y float64) *pose.Clip {
	return &pose.Clip{
		Name:     name,
		Duration: duration,
		Tracks: []pose.Track{
			{Path: Hips, Translation: []pose.Keyframe[mgl64.Vec3]{{Time: 0, Value: mgl64.Vec3{0, y, 0}}}},
		},
	}
}
