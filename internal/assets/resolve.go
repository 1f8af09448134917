package assets

import (
	"fmt"

	"github.com/vk/animgraph/internal/graph"
)

// resolution walks one lookup. stack holds the assets being resolved, as
// "graph id" or "machine id", to detect reference cycles.
type resolution struct {
	l     *Library
	stack []string
}

func (r *resolution) enter(kind, id string) error {
	key := kind + " " + id
	for i, s := range r.stack {
		if s == key {
			chain := append(append([]string(nil), r.stack[i:]...), key)
			return &graph.BuildError{Err: graph.ErrCycleDetected, Graph: id, Chain: chain, Detail: "asset references"}
		}
	}
	r.stack = append(r.stack, key)
	return nil
}

func (r *resolution) leave() { r.stack = r.stack[:len(r.stack)-1] }

func (r *resolution) graph(id string) (*graph.Graph, error) {
	if err := r.enter("graph", id); err != nil {
		return nil, err
	}
	defer r.leave()
	def, err := lookup(r.l.graphs, "graph", id)
	if err != nil {
		return nil, err
	}
	return def.Resolve(r.node)
}

func (r *resolution) node(n *graph.Node) (graph.NodeData, error) {
	var err error
	switch d := n.Data.(type) {
	case graph.ClipData:
		if d.Clip != nil {
			return nil, nil
		}
		if d.Clip, err = lookup(r.l.clips, "clip", d.ClipID); err != nil {
			return nil, fmt.Errorf("node %q: %w", n.Name, err)
		}
		return d, nil
	case graph.ExtendSkeletonData:
		if d.Skeleton != nil {
			return nil, nil
		}
		if d.Skeleton, err = lookup(r.l.skeletons, "skeleton", d.SkeletonID); err != nil {
			return nil, fmt.Errorf("node %q: %w", n.Name, err)
		}
		return d, nil
	case graph.GraphData:
		if d.Graph != nil {
			d.Graph, err = d.Graph.Resolve(r.node)
		} else {
			d.Graph, err = r.graph(d.Ref)
		}
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.Name, err)
		}
		return d, nil
	case graph.StateMachineData:
		if d.Machine != nil {
			return nil, nil
		}
		if d.Machine, err = r.machine(d.Ref); err != nil {
			return nil, fmt.Errorf("node %q: %w", n.Name, err)
		}
		return d, nil
	}
	return nil, nil
}

func (r *resolution) machine(id string) (*graph.StateMachine, error) {
	if err := r.enter("machine", id); err != nil {
		return nil, err
	}
	defer r.leave()
	def, err := lookup(r.l.machines, "machine", id)
	if err != nil {
		return nil, err
	}
	states := make([]graph.State, 0, len(def.States))
	for _, s := range def.States {
		g, err := r.graph(s.Graph)
		if err != nil {
			return nil, fmt.Errorf("machine %q state %q: %w", id, s.ID, err)
		}
		states = append(states, graph.State{ID: s.ID, Graph: g})
	}
	transitions := make([]graph.Transition, 0, len(def.Transitions))
	for _, t := range def.Transitions {
		g, err := r.graph(t.Graph)
		if err != nil {
			return nil, fmt.Errorf("machine %q transition %q: %w", id, t.ID, err)
		}
		transitions = append(transitions, graph.Transition{
			ID:       t.ID,
			Source:   t.Source,
			Target:   t.Target,
			Trigger:  t.Trigger,
			Duration: t.Duration,
			Graph:    g,
		})
	}
	return graph.NewStateMachine(id, def.Start, states, transitions)
}
