package engine

import (
	"fmt"
	"math"

	"github.com/vk/animgraph/internal/graph"
	"github.com/vk/animgraph/internal/pose"
	"github.com/vk/animgraph/internal/value"
)

// duration returns n's natural duration. Infinite for nodes that never end.
func (f *frame) duration(n *graph.Node) (float64, error) {
	return f.memoNum(cacheKey{node: n, kind: durationQuery}, func() (float64, error) {
		switch d := n.Data.(type) {
		case graph.ClipData:
			return f.clipDuration(n, d), nil
		case graph.ChainData:
			return f.chainDuration(n)
		case graph.LoopData, graph.StateMachineData:
			return math.Inf(1), nil
		case graph.CustomData:
			return f.customDuration(n, d)
		case graph.SpeedData:
			return f.speedDuration(n)
		case graph.BlendData:
			return f.poseInput(n, "a").duration()
		case graph.FlipLRData, graph.RotationData, graph.TwoBoneIKData, graph.ExtendSkeletonData, graph.EventMarkupData:
			return f.poseInput(n, "in").duration()
		case graph.BlendSpaceData:
			return f.blendSpaceDuration(n, d)
		case graph.GraphData:
			return f.subgraphDuration(n, d)
		}
		return 0, nil
	})
}

// timeAt returns the playback time n reports when queried at t.
func (f *frame) timeAt(n *graph.Node, t float64) (float64, error) {
	return f.memoNum(cacheKey{node: n, kind: timeQuery, t: bits(t)}, func() (float64, error) {
		switch d := n.Data.(type) {
		case graph.ClipData:
			return clampTime(t, f.clipDuration(n, d)), nil
		case graph.ChainData:
			return f.chainTime(n, t)
		case graph.LoopData:
			return f.loopTime(n, t)
		case graph.SpeedData:
			return f.speedTime(n, t)
		case graph.BlendData:
			return f.poseInput(n, "a").timeAt(t)
		case graph.FlipLRData, graph.RotationData, graph.TwoBoneIKData, graph.ExtendSkeletonData, graph.EventMarkupData:
			return f.poseInput(n, "in").timeAt(t)
		case graph.BlendSpaceData:
			return f.blendSpaceTime(n, d, t)
		case graph.GraphData:
			return f.subgraphTime(n, d, t)
		case graph.CustomData:
			return f.customTime(n, d, t)
		}
		return t, nil
	})
}

// poseAt samples n's pose at t. Returned poses are shared through the cache
// and must not be modified.
func (f *frame) poseAt(n *graph.Node, t float64) (*pose.Pose, error) {
	return f.memoPose(cacheKey{node: n, kind: poseQuery, t: bits(t)}, func() (*pose.Pose, error) {
		switch d := n.Data.(type) {
		case graph.ClipData:
			return f.clipPose(n, d, t), nil
		case graph.ChainData:
			return f.chainPose(n, d, t)
		case graph.LoopData:
			return f.loopPose(n, d, t)
		case graph.SpeedData:
			return f.speedPose(n, t)
		case graph.BlendData:
			return f.blendPose(n, t)
		case graph.FlipLRData:
			return f.flipPose(n, d, t)
		case graph.RotationData:
			return f.rotationPose(n, d, t)
		case graph.BlendSpaceData:
			return f.blendSpacePose(n, d, t)
		case graph.GraphData:
			return f.subgraphPose(n, d, t)
		case graph.StateMachineData:
			return f.machinePose(n, d, t)
		case graph.TwoBoneIKData:
			return f.twoBonePose(n, t)
		case graph.ExtendSkeletonData:
			return f.extendPose(n, d, t)
		case graph.EventMarkupData:
			return f.poseInput(n, "in").poseAt(t)
		case graph.CustomData:
			return f.customPose(n, d, t)
		}
		f.degrade(n.Name, fmt.Errorf("%w: %s node has no pose output", ErrMissingRequiredInput, n.Kind()))
		return pose.New(t), nil
	})
}

// output evaluates one of n's parameter outputs at the frame time.
func (f *frame) output(n *graph.Node, pin string) (value.Value, error) {
	return f.memoValue(cacheKey{node: n, pin: pin, kind: paramQuery, t: bits(f.time)}, func() (value.Value, error) {
		switch d := n.Data.(type) {
		case graph.ConstData:
			return d.Value, nil
		case graph.MathData:
			return f.mathOutput(n, d)
		case graph.CompareData:
			return f.compareOutput(n, d)
		case graph.SelectData:
			return f.selectOutput(n)
		case graph.FireEventData:
			return f.fireEventOutput(n, d)
		case graph.MergeEventsData:
			return f.mergeEventsOutput(n)
		case graph.RotationArcData:
			return f.rotationArcOutput(n)
		case graph.Vec3Data:
			return f.vec3Output(n, d, pin)
		case graph.QuatData:
			return f.quatOutput(n, d)
		case graph.ClipData:
			return f.clipEvents(n, d), nil
		case graph.EventMarkupData:
			return f.markupEvents(n, d)
		case graph.GraphData:
			return f.subgraphOutput(n, d, pin)
		case graph.CustomData:
			return f.customOutput(n, d, pin)
		}
		f.degrade(n.Name, fmt.Errorf("%w: %s node has no parameter output %q", ErrMissingRequiredInput, n.Kind(), pin))
		return value.Value{}, nil
	})
}

func clampTime(t, d float64) float64 {
	return math.Max(0, math.Min(d, t))
}
