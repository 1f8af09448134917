package engine

import (
	"errors"
	"fmt"

	"github.com/vk/animgraph/internal/graph"
	"github.com/vk/animgraph/internal/pose"
	"github.com/vk/animgraph/internal/value"
)

var errNoResolver = errors.New("no resolver configured")

// subframe returns the frame of n's nested graph, resolving a reference on
// first use. The frame shares the parent's time so that its parameters are
// evaluated once per parent frame.
func (f *frame) subframe(n *graph.Node, d graph.GraphData) (*frame, error) {
	g := d.Graph
	if g == nil {
		var err error
		if g, err = f.resolveGraph(n, d.Ref); err != nil {
			return nil, err
		}
	}
	return f.child(childKey{owner: n, g: g}, g, f.time)
}

func (f *frame) resolveGraph(n *graph.Node, id string) (*graph.Graph, error) {
	inst := f.c.inst
	if g, ok := inst.graphs[n]; ok {
		return g, nil
	}
	r := f.c.eng.resolver
	if r == nil {
		return nil, f.fail(n.Name, fmt.Errorf("%w %q: %w", ErrUnresolvedSubgraph, id, errNoResolver))
	}
	g, err := r.Graph(id)
	if err != nil {
		return nil, f.fail(n.Name, fmt.Errorf("%w %q: %w", ErrUnresolvedSubgraph, id, err))
	}
	if g == nil {
		return nil, f.fail(n.Name, fmt.Errorf("%w %q", ErrUnresolvedSubgraph, id))
	}
	inst.graphs[n] = g
	f.c.logger.Debug("Resolved sub-graph reference.", "node", n.Name, "ref", id)
	return g, nil
}

func (f *frame) subgraphDuration(n *graph.Node, d graph.GraphData) (float64, error) {
	sub, err := f.subframe(n, d)
	if err != nil {
		return 0, err
	}
	return sub.graphOutput().duration()
}

func (f *frame) subgraphTime(n *graph.Node, d graph.GraphData, t float64) (float64, error) {
	sub, err := f.subframe(n, d)
	if err != nil {
		return 0, err
	}
	return sub.graphOutput().timeAt(t)
}

func (f *frame) subgraphPose(n *graph.Node, d graph.GraphData, t float64) (*pose.Pose, error) {
	sub, err := f.subframe(n, d)
	if err != nil {
		return nil, err
	}
	out := sub.poseOutput()
	if out.node == nil {
		f.degrade(n.Name, fmt.Errorf("%w: sub-graph %q has no pose output", ErrMissingRequiredInput, sub.g.Name))
	}
	return out.poseAt(t)
}

func (f *frame) subgraphOutput(n *graph.Node, d graph.GraphData, pin string) (value.Value, error) {
	sub, err := f.subframe(n, d)
	if err != nil {
		return value.Value{}, err
	}
	return sub.graphParam(pin)
}
