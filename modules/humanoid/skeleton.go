package humanoid

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/vk/animgraph/internal/pose"
)

// Bone paths of the humanoid rig.
const (
	Hips      = pose.EntityPath("Hips")
	Spine     = pose.EntityPath("Hips/Spine")
	Chest     = pose.EntityPath("Hips/Spine/Chest")
	Head      = pose.EntityPath("Hips/Spine/Chest/Head")
	UpperArmL = pose.EntityPath("Hips/Spine/Chest/UpperArm.L")
	LowerArmL = pose.EntityPath("Hips/Spine/Chest/UpperArm.L/LowerArm.L")
	HandL     = pose.EntityPath("Hips/Spine/Chest/UpperArm.L/LowerArm.L/Hand.L")
	UpperArmR = pose.EntityPath("Hips/Spine/Chest/UpperArm.R")
	LowerArmR = pose.EntityPath("Hips/Spine/Chest/UpperArm.R/LowerArm.R")
	HandR     = pose.EntityPath("Hips/Spine/Chest/UpperArm.R/LowerArm.R/Hand.R")
	UpperLegL = pose.EntityPath("Hips/UpperLeg.L")
	LowerLegL = pose.EntityPath("Hips/UpperLeg.L/LowerLeg.L")
	FootL     = pose.EntityPath("Hips/UpperLeg.L/LowerLeg.L/Foot.L")
	UpperLegR = pose.EntityPath("Hips/UpperLeg.R")
	LowerLegR = pose.EntityPath("Hips/UpperLeg.R/LowerLeg.R")
	FootR     = pose.EntityPath("Hips/UpperLeg.R/LowerLeg.R/Foot.R")
)

// HipsHeight is the rest height of the hips above the ground.
const HipsHeight = 1.0

// Segment lengths of the limbs.
const (
	UpperArmLen = 0.28
	LowerArmLen = 0.25
	UpperLegLen = 0.45
	LowerLegLen = 0.45
)

func bone(path pose.EntityPath, x, y, z float64) pose.Bone {
	return pose.Bone{Path: path, Transform: pose.Transform{
		Translation: mgl64.Vec3{x, y, z},
		Rotation:    mgl64.QuatIdent(),
		Scale:       mgl64.Vec3{1, 1, 1},
	}}
}

// RestPose is the rig standing upright with the arms hanging down.
func RestPose() *pose.Pose {
	return pose.FromBones(0,
		bone(Hips, 0, HipsHeight, 0),
		bone(Spine, 0, 0.15, 0),
		bone(Chest, 0, 0.2, 0),
		bone(Head, 0, 0.25, 0),
		bone(UpperArmL, 0.18, 0.15, 0),
		bone(LowerArmL, 0, -UpperArmLen, 0),
		bone(HandL, 0, -LowerArmLen, 0),
		bone(UpperArmR, -0.18, 0.15, 0),
		bone(LowerArmR, 0, -UpperArmLen, 0),
		bone(HandR, 0, -LowerArmLen, 0),
		bone(UpperLegL, 0.1, 0, 0),
		bone(LowerLegL, 0, -UpperLegLen, 0),
		bone(FootL, 0, -LowerLegLen, 0),
		bone(UpperLegR, -0.1, 0, 0),
		bone(LowerLegR, 0, -UpperLegLen, 0),
		bone(FootR, 0, -LowerLegLen, 0),
	)
}

// NewSkeleton returns the humanoid skeleton.
func NewSkeleton() (*pose.Skeleton, error) {
	return pose.NewSkeleton(SkeletonID, RestPose())
}
