package graph

import "sort"

// pinRef is a resolved edge end: its declared pin, or open when the owner
// accepts any pin.
type pinRef struct {
	spec PinSpec
	open bool
}

func validateEdges(g *Graph) []error {
	var errs []error
	for _, kind := range []PinKind{PosePin, ParameterPin, TimePin} {
		edges := g.edges(kind)
		for _, to := range sortedTargets(edges) {
			from := edges[to]
			src, err := resolveSource(g, kind, from)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			dst, err := resolveTarget(g, kind, to)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if err := checkTypes(g, kind, from, to, src, dst); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errs
}

func resolveSource(g *Graph, kind PinKind, from Endpoint) (pinRef, error) {
	if from.Node == IO {
		switch kind {
		case ParameterPin:
			if in, ok := g.InputParam(from.Pin); ok {
				return pinRef{spec: param(in.Name, in.Default)}, nil
			}
		case PosePin:
			if g.hasPoseInput(from.Pin) {
				return pinRef{spec: poseIn(from.Pin)}, nil
			}
		}
		return pinRef{}, buildErr(ErrUnknownPin, g.Name, from, "graph has no %s input", kind)
	}
	n, ok := g.nodes[from.Node]
	if !ok {
		return pinRef{}, buildErr(ErrUnknownNode, g.Name, from, "edge source")
	}
	spec := SpecOf(n)
	if p, ok := spec.Output(from.Pin); ok {
		return pinRef{spec: p}, nil
	}
	if spec.Open {
		return pinRef{open: true}, nil
	}
	return pinRef{}, buildErr(ErrUnknownPin, g.Name, from, "%s node has no output %q", n.Kind(), from.Pin)
}

func resolveTarget(g *Graph, kind PinKind, to Endpoint) (pinRef, error) {
	if to.Node == IO {
		switch kind {
		case ParameterPin:
			if out, ok := g.OutputParam(to.Pin); ok {
				return pinRef{spec: paramOut(out.Name, out.Type)}, nil
			}
		case PosePin:
			if to.Pin == OutPose {
				return pinRef{spec: poseOutputs[0]}, nil
			}
		case TimePin:
			if to.Pin == OutTime {
				return pinRef{spec: poseOutputs[1]}, nil
			}
		}
		return pinRef{}, buildErr(ErrUnknownPin, g.Name, to, "graph has no %s output", kind)
	}
	n, ok := g.nodes[to.Node]
	if !ok {
		return pinRef{}, buildErr(ErrUnknownNode, g.Name, to, "edge target")
	}
	spec := SpecOf(n)
	if p, ok := spec.Input(to.Pin); ok {
		return pinRef{spec: p}, nil
	}
	if spec.Open {
		return pinRef{open: true}, nil
	}
	return pinRef{}, buildErr(ErrUnknownPin, g.Name, to, "%s node has no input %q", n.Kind(), to.Pin)
}

func checkTypes(g *Graph, kind PinKind, from, to Endpoint, src, dst pinRef) error {
	for _, end := range []struct {
		at  Endpoint
		ref pinRef
	}{{from, src}, {to, dst}} {
		if end.ref.open {
			continue
		}
		if end.ref.spec.Kind != kind {
			return buildErr(ErrTypeMismatch, g.Name, end.at, "%s pin used on a %s edge", end.ref.spec.Kind, kind)
		}
	}
	if kind != ParameterPin || src.open || dst.open {
		return nil
	}
	if !src.spec.Type.IsParameter() || src.spec.Type != dst.spec.Type {
		return buildErr(ErrTypeMismatch, g.Name, to, "%s cannot feed %s from %s", src.spec.Type, dst.spec.Type, from)
	}
	return nil
}

// dependency is one producer a node reads from.
type dependency struct {
	pin    string
	source string
}

func dependencies(g *Graph) map[string][]dependency {
	deps := make(map[string][]dependency)
	for _, kind := range []PinKind{PosePin, ParameterPin, TimePin} {
		for to, from := range g.edges(kind) {
			if to.Node == IO || from.Node == IO {
				continue
			}
			deps[to.Node] = append(deps[to.Node], dependency{pin: to.Pin, source: from.Node})
		}
	}
	for _, list := range deps {
		sort.Slice(list, func(i, j int) bool {
			if list[i].pin != list[j].pin {
				return list[i].pin < list[j].pin
			}
			return list[i].source < list[j].source
		})
	}
	return deps
}

// detectCycle runs a depth-first search over every edge namespace at once, so
// cycles that mix pose, time and parameter edges are reported too. The error
// names the chain of consuming pins, e.g. "a.in -> b.factor -> a".
func detectCycle(g *Graph) error {
	const (
		unvisited = iota
		visiting
		visited
	)
	deps := dependencies(g)
	state := make(map[string]int, len(g.nodes))
	var (
		nodes []string
		hops  []string
	)

	var visit func(name string) []string
	visit = func(name string) []string {
		state[name] = visiting
		nodes = append(nodes, name)
		for _, d := range deps[name] {
			hops = append(hops, name+"."+d.pin)
			switch state[d.source] {
			case visiting:
				start := 0
				for i, n := range nodes {
					if n == d.source {
						start = i
						break
					}
				}
				chain := append([]string(nil), hops[start:]...)
				return append(chain, d.source)
			case unvisited:
				if chain := visit(d.source); chain != nil {
					return chain
				}
			}
			hops = hops[:len(hops)-1]
		}
		nodes = nodes[:len(nodes)-1]
		state[name] = visited
		return nil
	}

	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if state[name] != unvisited {
			continue
		}
		if chain := visit(name); chain != nil {
			return &BuildError{Err: ErrCycleDetected, Graph: g.Name, Chain: chain}
		}
	}
	return nil
}

func sortedTargets(edges map[Endpoint]Endpoint) []Endpoint {
	out := make([]Endpoint, 0, len(edges))
	for to := range edges {
		out = append(out, to)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Node != out[j].Node {
			return out[i].Node < out[j].Node
		}
		return out[i].Pin < out[j].Pin
	})
	return out
}
