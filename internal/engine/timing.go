package engine

import (
	"fmt"
	"math"

	"github.com/vk/animgraph/internal/graph"
	"github.com/vk/animgraph/internal/pose"
)

func (f *frame) clipDuration(n *graph.Node, d graph.ClipData) float64 {
	if d.Clip == nil {
		f.degrade(n.Name, fmt.Errorf("%w: clip %q is not loaded", ErrMissingRequiredInput, d.ClipID))
		return 0
	}
	return d.Clip.Duration
}

func (f *frame) clipPose(n *graph.Node, d graph.ClipData, t float64) *pose.Pose {
	if d.Clip == nil {
		f.clipDuration(n, d)
		return pose.New(t)
	}
	return d.Clip.Sample(t)
}

func (f *frame) chainDuration(n *graph.Node) (float64, error) {
	da, err := f.poseInput(n, "a").duration()
	if err != nil {
		return 0, err
	}
	db, err := f.poseInput(n, "b").duration()
	if err != nil {
		return 0, err
	}
	return da + db, nil
}

func (f *frame) chainTime(n *graph.Node, t float64) (float64, error) {
	a := f.poseInput(n, "a")
	da, err := a.duration()
	if err != nil {
		return 0, err
	}
	if t < da || math.IsInf(da, 1) {
		return a.timeAt(t)
	}
	bt, err := f.poseInput(n, "b").timeAt(t - da)
	if err != nil {
		return 0, err
	}
	return da + bt, nil
}

// chainPose plays a then b. With an interpolation period p, the last p
// seconds of a crossfade toward the first frame of b.
func (f *frame) chainPose(n *graph.Node, d graph.ChainData, t float64) (*pose.Pose, error) {
	a := f.poseInput(n, "a")
	da, err := a.duration()
	if err != nil {
		return nil, err
	}
	if math.IsInf(da, 1) {
		return a.poseAt(t)
	}
	b := f.poseInput(n, "b")
	if t >= da {
		return b.poseAt(t - da)
	}
	p := d.InterpolationPeriod
	if p > 0 && t >= da-p {
		return crossfade(a, b, t, 0, (t-(da-p))/p)
	}
	return a.poseAt(t)
}

func crossfade(from, to ref, tFrom, tTo, factor float64) (*pose.Pose, error) {
	pf, err := from.poseAt(tFrom)
	if err != nil {
		return nil, err
	}
	pt, err := to.poseAt(tTo)
	if err != nil {
		return nil, err
	}
	return pose.Blend(pf, pt, factor), nil
}

// wrap is t modulo d, in [0, d).
func wrap(t, d float64) float64 {
	m := math.Mod(t, d)
	if m < 0 {
		m += d
	}
	if m >= d {
		m = 0
	}
	return m
}

// loopLocal maps t into the child's timeline. Children without a positive
// finite duration are not wrapped.
func loopLocal(t, d float64) float64 {
	switch {
	case math.IsInf(d, 1):
		return t
	case !(d > 0):
		return 0
	}
	return wrap(t, d)
}

func (f *frame) loopTime(n *graph.Node, t float64) (float64, error) {
	in := f.poseInput(n, "in")
	d, err := in.duration()
	if err != nil {
		return 0, err
	}
	return in.timeAt(loopLocal(t, d))
}

func (f *frame) loopPose(n *graph.Node, data graph.LoopData, t float64) (*pose.Pose, error) {
	in := f.poseInput(n, "in")
	d, err := in.duration()
	if err != nil {
		return nil, err
	}
	local := loopLocal(t, d)
	if !(d > 0) || math.IsInf(d, 1) {
		return in.poseAt(local)
	}
	p := math.Min(data.InterpolationPeriod, d)
	if p > 0 && local >= d-p {
		return crossfade(in, in, local, 0, (local-(d-p))/p)
	}
	return in.poseAt(local)
}

func (f *frame) speedDuration(n *graph.Node) (float64, error) {
	d, err := f.poseInput(n, "in").duration()
	if err != nil {
		return 0, err
	}
	s, err := f.float(n, "speed")
	if err != nil {
		return 0, err
	}
	if s == 0 {
		return math.Inf(1), nil
	}
	return d / math.Abs(s), nil
}

func (f *frame) speedTime(n *graph.Node, t float64) (float64, error) {
	in := f.poseInput(n, "in")
	s, err := f.float(n, "speed")
	if err != nil {
		return 0, err
	}
	if s == 0 {
		return in.timeAt(0)
	}
	ct, err := in.timeAt(t * s)
	if err != nil {
		return 0, err
	}
	return ct / s, nil
}

func (f *frame) speedPose(n *graph.Node, t float64) (*pose.Pose, error) {
	s, err := f.float(n, "speed")
	if err != nil {
		return nil, err
	}
	return f.poseInput(n, "in").poseAt(t * s)
}
