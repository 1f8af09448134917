package graph

import (
	"errors"
	"fmt"
)

// Resolve returns a copy of g in which fn has replaced the data of each node.
// A nil NodeData keeps the node as it is. The copy is validated again, since
// resolving a reference narrows pins that were open before.
func (g *Graph) Resolve(fn func(n *Node) (NodeData, error)) (*Graph, error) {
	out := g.Clone()
	var errs []error
	for _, name := range out.order {
		n := out.nodes[name]
		d, err := fn(n)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if d != nil {
			n.Data = d
		}
	}
	if len(errs) == 0 {
		errs = validateEdges(out)
	}
	if len(errs) == 0 {
		if err := detectCycle(out); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("resolving graph %q: %w", g.Name, errors.Join(errs...))
	}
	return out, nil
}

// References lists the ids that g's nodes refer to without holding the
// referenced asset, keyed by node name.
func (g *Graph) References() map[string]string {
	refs := make(map[string]string)
	for _, n := range g.Nodes() {
		switch d := n.Data.(type) {
		case ClipData:
			if d.Clip == nil {
				refs[n.Name] = d.ClipID
			}
		case ExtendSkeletonData:
			if d.Skeleton == nil {
				refs[n.Name] = d.SkeletonID
			}
		case GraphData:
			if d.Graph == nil {
				refs[n.Name] = d.Ref
			}
		case StateMachineData:
			if d.Machine == nil {
				refs[n.Name] = d.Ref
			}
		}
	}
	return refs
}
