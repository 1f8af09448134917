package engine

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/vk/animgraph/internal/graph"
	"github.com/vk/animgraph/internal/ik"
	"github.com/vk/animgraph/internal/pose"
)

// twoBonePose bends the chain ending at "target_path" so that its end reaches
// "target_position" in character space. Invalid chains pass the input through.
func (f *frame) twoBonePose(n *graph.Node, t float64) (*pose.Pose, error) {
	p, err := f.poseInput(n, "in").poseAt(t)
	if err != nil {
		return nil, err
	}
	pv, err := f.param(n, "target_path")
	if err != nil {
		return nil, err
	}
	end, _ := pv.AsPath()
	if end == "" {
		return p, nil
	}
	tv, err := f.param(n, "target_position")
	if err != nil {
		return nil, err
	}
	target, _ := tv.AsVector3()

	var endRot *mgl64.Quat
	use, err := f.boolean(n, "use_target_rotation")
	if err != nil {
		return nil, err
	}
	if use {
		rv, err := f.param(n, "target_rotation")
		if err != nil {
			return nil, err
		}
		q, _ := rv.AsQuaternion()
		endRot = &q
	}

	out, err := solveTwoBone(p, end, target, endRot)
	if err != nil {
		f.degrade(n.Name, err)
		return p, nil
	}
	return out, nil
}

// solveTwoBone returns a copy of p with the local rotations of end, its
// parent and its grandparent replaced by the IK solution. When endRot is set
// it becomes the end bone's character-space rotation.
func solveTwoBone(p *pose.Pose, end pose.EntityPath, target mgl64.Vec3, endRot *mgl64.Quat) (*pose.Pose, error) {
	mid, ok := end.Parent()
	if !ok {
		return nil, fmt.Errorf("%w: %q has no parent bone", ErrIKChainInvalid, end)
	}
	root, ok := mid.Parent()
	if !ok {
		return nil, fmt.Errorf("%w: %q has no grandparent bone", ErrIKChainInvalid, end)
	}
	for _, b := range []pose.EntityPath{root, mid, end} {
		if !p.Has(b) {
			return nil, fmt.Errorf("%w: bone %q is not in the pose", ErrIKChainInvalid, b)
		}
	}

	gRoot, _ := p.Global(root)
	gMid, _ := p.Global(mid)
	gEnd, _ := p.Global(end)
	sol, err := ik.Solve(ik.Chain{Root: gRoot.Translation, Mid: gMid.Translation, End: gEnd.Translation}, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrIKChainInvalid, end, err)
	}

	rootRot := sol.RootSwing.Mul(gRoot.Rotation).Normalize()
	midRot := sol.MidSwing.Mul(gMid.Rotation).Normalize()
	tipRot := sol.MidSwing.Mul(gEnd.Rotation).Normalize()
	if endRot != nil {
		tipRot = endRot.Normalize()
	}

	out := p.Clone()
	setRotation(out, root, p.ParentGlobal(root).Rotation.Inverse().Mul(rootRot))
	setRotation(out, mid, rootRot.Inverse().Mul(midRot))
	setRotation(out, end, midRot.Inverse().Mul(tipRot))
	return out, nil
}

func setRotation(p *pose.Pose, path pose.EntityPath, q mgl64.Quat) {
	t, _ := p.Get(path)
	t.Rotation = q.Normalize()
	p.Set(path, t)
}
