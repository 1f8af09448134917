package engine

import (
	"fmt"
	"math"

	"github.com/vk/animgraph/internal/blendspace"
	"github.com/vk/animgraph/internal/graph"
	"github.com/vk/animgraph/internal/pose"
)

// clamp01 clamps f to [0, 1]. NaN passes through.
func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func (f *frame) blendPose(n *graph.Node, t float64) (*pose.Pose, error) {
	factor, err := f.float(n, "factor")
	if err != nil {
		return nil, err
	}
	return crossfade(f.poseInput(n, "a"), f.poseInput(n, "b"), t, t, clamp01(factor))
}

func (f *frame) flipPose(n *graph.Node, d graph.FlipLRData, t float64) (*pose.Pose, error) {
	p, err := f.poseInput(n, "in").poseAt(t)
	if err != nil {
		return nil, err
	}
	m := d.Mirror
	if m.Mapper == nil {
		m.Mapper = pose.DefaultMapper()
	}
	return m.Pose(p), nil
}

// rotationPose applies "rotation" to every bone selected by "mask", in local
// space. Fractional weights slerp between the current and the full result.
func (f *frame) rotationPose(n *graph.Node, d graph.RotationData, t float64) (*pose.Pose, error) {
	p, err := f.poseInput(n, "in").poseAt(t)
	if err != nil {
		return nil, err
	}
	mv, err := f.param(n, "mask")
	if err != nil {
		return nil, err
	}
	qv, err := f.param(n, "rotation")
	if err != nil {
		return nil, err
	}
	mask, _ := mv.AsMask()
	rot, _ := qv.AsQuaternion()

	out := p.Clone()
	for _, b := range p.Bones() {
		w := mask.Weight(b.Path)
		if w <= 0 {
			continue
		}
		cur := b.Transform.Rotation
		full := rot
		if d.Mode == graph.RotationCompose {
			full = cur.Mul(rot)
		}
		b.Transform.Rotation = pose.Slerp(cur, full, w)
		out.Set(b.Path, b.Transform)
	}
	return out, nil
}

func (f *frame) extendPose(n *graph.Node, d graph.ExtendSkeletonData, t float64) (*pose.Pose, error) {
	p, err := f.poseInput(n, "in").poseAt(t)
	if err != nil {
		return nil, err
	}
	if d.Skeleton == nil {
		f.degrade(n.Name, fmt.Errorf("%w: skeleton %q is not loaded", ErrMissingRequiredInput, d.SkeletonID))
		return p, nil
	}
	return d.Skeleton.Extend(p), nil
}

// sample is one active blend-space input.
type sample struct {
	in  ref
	w   float64
	dur float64
}

// samples locates "position" in the space and returns the active inputs in
// descending weight order.
func (f *frame) samples(n *graph.Node, d graph.BlendSpaceData) ([]sample, error) {
	if d.Space == nil {
		f.degrade(n.Name, fmt.Errorf("%w: blend space has no points", ErrMissingRequiredInput))
		return nil, nil
	}
	pv, err := f.param(n, "position")
	if err != nil {
		return nil, err
	}
	pos, _ := pv.AsVector3()
	weights := d.Space.Locate(pos.X(), pos.Y())
	out := make([]sample, 0, len(weights))
	for _, w := range weights {
		in := f.poseInput(n, d.Space.Points[w.Index].ID)
		dur, err := in.duration()
		if err != nil {
			return nil, err
		}
		out = append(out, sample{in: in, w: w.Weight, dur: dur})
	}
	return out, nil
}

func finitePositive(d float64) bool { return d > 0 && !math.IsInf(d, 1) }

// referenceDuration is the weighted mean of the finite child durations, or
// zero when there are none.
func referenceDuration(ss []sample) float64 {
	var sum, total float64
	for _, s := range ss {
		if finitePositive(s.dur) {
			sum += s.w * s.dur
			total += s.w
		}
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

// sampleTime is the time at which s is sampled for a query at t. Normalized
// sync keeps every child at the same phase of its own duration.
func sampleTime(s sample, sync blendspace.SyncMode, ref, t float64) float64 {
	if sync == blendspace.SyncNormalized && finitePositive(ref) && finitePositive(s.dur) {
		return t / ref * s.dur
	}
	return t
}

func (f *frame) blendSpaceDuration(n *graph.Node, d graph.BlendSpaceData) (float64, error) {
	ss, err := f.samples(n, d)
	if err != nil || len(ss) == 0 {
		return 0, err
	}
	if ref := referenceDuration(ss); d.Sync == blendspace.SyncNormalized && ref > 0 {
		return ref, nil
	}
	return ss[0].dur, nil
}

func (f *frame) blendSpaceTime(n *graph.Node, d graph.BlendSpaceData, t float64) (float64, error) {
	ss, err := f.samples(n, d)
	if err != nil || len(ss) == 0 {
		return t, err
	}
	ref := referenceDuration(ss)
	lead := ss[0]
	ct, err := lead.in.timeAt(sampleTime(lead, d.Sync, ref, t))
	if err != nil {
		return 0, err
	}
	if d.Sync == blendspace.SyncNormalized && finitePositive(ref) && finitePositive(lead.dur) {
		return ct / lead.dur * ref, nil
	}
	return ct, nil
}

func (f *frame) blendSpacePose(n *graph.Node, d graph.BlendSpaceData, t float64) (*pose.Pose, error) {
	ss, err := f.samples(n, d)
	if err != nil || len(ss) == 0 {
		return pose.New(t), err
	}
	ref := referenceDuration(ss)
	inputs := make([]pose.Weighted, 0, len(ss))
	for _, s := range ss {
		p, err := s.in.poseAt(sampleTime(s, d.Sync, ref, t))
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, pose.Weighted{Pose: p, Weight: s.w})
	}
	return pose.BlendWeighted(inputs...), nil
}
