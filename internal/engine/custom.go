package engine

import (
	"fmt"
	"math"

	"github.com/vk/animgraph/internal/graph"
	"github.com/vk/animgraph/internal/pose"
	"github.com/vk/animgraph/internal/value"
)

// customOutputs runs a custom node once per frame, query kind and time.
// Pose inputs are sampled at t and passed as Pose values.
func (f *frame) customOutputs(n *graph.Node, d graph.CustomData, q graph.CustomQuery, t float64) (map[string]value.Value, error) {
	key := cacheKey{node: n, pin: q.String(), kind: customQuery, t: bits(t)}
	if e, ok := f.cache[key]; ok {
		return e.vals, e.err
	}
	outs, err := f.runCustom(n, d, q, t)
	f.cache[key] = entry{vals: outs, err: err}
	return outs, err
}

func (f *frame) runCustom(n *graph.Node, d graph.CustomData, q graph.CustomQuery, t float64) (map[string]value.Value, error) {
	if d.Impl == nil {
		f.degrade(n.Name, fmt.Errorf("%w: custom node has no implementation", ErrMissingRequiredInput))
		return nil, nil
	}
	spec := d.Impl.Spec()
	inputs, err := f.customParams(n, spec)
	if err != nil {
		return nil, err
	}
	for _, in := range spec.Inputs {
		if in.Kind != graph.PosePin {
			continue
		}
		p, err := f.poseInput(n, in.Name).poseAt(t)
		if err != nil {
			return nil, err
		}
		inputs[in.Name] = value.Pose(p)
	}
	outs, err := d.Impl.Evaluate(graph.CustomRequest{Kind: q, Time: t, Inputs: inputs})
	if err != nil {
		return nil, f.fail(n.Name, err)
	}
	return outs, nil
}

func (f *frame) customParams(n *graph.Node, spec graph.NodeSpec) (map[string]value.Value, error) {
	inputs := make(map[string]value.Value, len(spec.Inputs))
	for _, in := range spec.Inputs {
		if in.Kind != graph.ParameterPin {
			continue
		}
		v, err := f.param(n, in.Name)
		if err != nil {
			return nil, err
		}
		inputs[in.Name] = v
	}
	return inputs, nil
}

func posePins(spec graph.NodeSpec) []string {
	var names []string
	for _, in := range spec.Inputs {
		if in.Kind == graph.PosePin {
			names = append(names, in.Name)
		}
	}
	return names
}

func (f *frame) customDuration(n *graph.Node, d graph.CustomData) (float64, error) {
	if d.Impl == nil {
		return math.Inf(1), nil
	}
	spec := d.Impl.Spec()
	pins := posePins(spec)
	durations := make(map[string]float64, len(pins))
	for _, name := range pins {
		dur, err := f.poseInput(n, name).duration()
		if err != nil {
			return 0, err
		}
		durations[name] = dur
	}
	timed, ok := d.Impl.(graph.CustomTimed)
	if !ok {
		if len(pins) == 0 {
			return math.Inf(1), nil
		}
		return durations[pins[0]], nil
	}
	params, err := f.customParams(n, spec)
	if err != nil {
		return 0, err
	}
	dur, err := timed.Duration(graph.CustomRequest{Kind: graph.QueryDuration, Time: f.time, Inputs: params, Durations: durations})
	if err != nil {
		return 0, f.fail(n.Name, err)
	}
	return dur, nil
}

func (f *frame) customTime(n *graph.Node, d graph.CustomData, t float64) (float64, error) {
	if d.Impl == nil {
		return t, nil
	}
	spec := d.Impl.Spec()
	pins := posePins(spec)
	timed, ok := d.Impl.(graph.CustomTimed)
	if !ok {
		if len(pins) == 0 {
			return t, nil
		}
		return f.poseInput(n, pins[0]).timeAt(t)
	}
	durations := make(map[string]float64, len(pins))
	times := make(map[string]float64, len(pins))
	for _, name := range pins {
		in := f.poseInput(n, name)
		dur, err := in.duration()
		if err != nil {
			return 0, err
		}
		at, err := in.timeAt(t)
		if err != nil {
			return 0, err
		}
		durations[name], times[name] = dur, at
	}
	params, err := f.customParams(n, spec)
	if err != nil {
		return 0, err
	}
	at, err := timed.TimeAt(graph.CustomRequest{Kind: graph.QueryTime, Time: t, Inputs: params, Durations: durations, Times: times})
	if err != nil {
		return 0, f.fail(n.Name, err)
	}
	return at, nil
}

func (f *frame) customOutput(n *graph.Node, d graph.CustomData, pin string) (value.Value, error) {
	outs, err := f.customOutputs(n, d, graph.QueryParameter, f.time)
	if err != nil {
		return value.Value{}, err
	}
	if v, ok := outs[pin]; ok {
		return v, nil
	}
	f.degrade(n.Name, fmt.Errorf("%w: custom node returned no %q", ErrMissingRequiredInput, pin))
	var kind value.Kind
	if d.Impl != nil {
		spec, _ := d.Impl.Spec().Output(pin)
		kind = spec.Type
	}
	return value.Zero(kind), nil
}

func (f *frame) customPose(n *graph.Node, d graph.CustomData, t float64) (*pose.Pose, error) {
	outs, err := f.customOutputs(n, d, graph.QueryPose, t)
	if err != nil {
		return nil, err
	}
	if p, ok := outs[graph.OutPose].AsPose(); ok {
		return p, nil
	}
	f.degrade(n.Name, fmt.Errorf("%w: custom node returned no pose", ErrMissingRequiredInput))
	return pose.New(t), nil
}
