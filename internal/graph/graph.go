package graph

import (
	"github.com/vk/animgraph/internal/value"
)

// IO is the name of the virtual node addressing a graph's own inputs (as
// edge sources) and outputs (as edge targets).
const IO = "@io"

// Endpoint is one end of an edge.
type Endpoint struct {
	Node string
	Pin  string
}

// At is shorthand for an Endpoint.
func At(node, pin string) Endpoint { return Endpoint{Node: node, Pin: pin} }

func (e Endpoint) String() string { return e.Node + "." + e.Pin }

// InputParam is a graph input with its default value.
type InputParam struct {
	Name    string
	Default value.Value
}

// OutputParam is a typed graph output.
type OutputParam struct {
	Name string
	Type value.Kind
}

// Graph is an immutable, validated animation graph. Edges are stored
// inverted: each map goes from a consuming endpoint to the endpoint that
// produces its value.
type Graph struct {
	Name string

	nodes map[string]*Node
	order []string

	poseEdges  map[Endpoint]Endpoint
	paramEdges map[Endpoint]Endpoint
	timeEdges  map[Endpoint]Endpoint

	inputs     []InputParam
	poseInputs []string
	outputs    []OutputParam
}

func newGraph(name string) *Graph {
	return &Graph{
		Name:       name,
		nodes:      make(map[string]*Node),
		poseEdges:  make(map[Endpoint]Endpoint),
		paramEdges: make(map[Endpoint]Endpoint),
		timeEdges:  make(map[Endpoint]Endpoint),
	}
}

// Node returns the node with the given name.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.nodes[name])
	}
	return out
}

// Source returns the producer wired into target in the given namespace.
func (g *Graph) Source(kind PinKind, target Endpoint) (Endpoint, bool) {
	src, ok := g.edges(kind)[target]
	return src, ok
}

func (g *Graph) edges(kind PinKind) map[Endpoint]Endpoint {
	switch kind {
	case PosePin:
		return g.poseEdges
	case TimePin:
		return g.timeEdges
	default:
		return g.paramEdges
	}
}

// EdgeCount returns the number of edges in the given namespace.
func (g *Graph) EdgeCount(kind PinKind) int { return len(g.edges(kind)) }

// InputParams returns the declared input parameters in order.
func (g *Graph) InputParams() []InputParam {
	return append([]InputParam(nil), g.inputs...)
}

// InputParam returns one declared input parameter.
func (g *Graph) InputParam(name string) (InputParam, bool) {
	for _, in := range g.inputs {
		if in.Name == name {
			return in, true
		}
	}
	return InputParam{}, false
}

// PoseInputs returns the names of the graph's pose inputs.
func (g *Graph) PoseInputs() []string {
	return append([]string(nil), g.poseInputs...)
}

func (g *Graph) hasPoseInput(name string) bool {
	for _, n := range g.poseInputs {
		if n == name {
			return true
		}
	}
	return false
}

// OutputParams returns the declared output parameters in order.
func (g *Graph) OutputParams() []OutputParam {
	return append([]OutputParam(nil), g.outputs...)
}

// OutputParam returns one declared output parameter.
func (g *Graph) OutputParam(name string) (OutputParam, bool) {
	for _, out := range g.outputs {
		if out.Name == name {
			return out, true
		}
	}
	return OutputParam{}, false
}

// HasPoseOutput reports whether a node is wired to the graph's pose output.
func (g *Graph) HasPoseOutput() bool {
	_, ok := g.poseEdges[At(IO, OutPose)]
	return ok
}

// HasTimeOutput reports whether a node is wired to the graph's time output.
func (g *Graph) HasTimeOutput() bool {
	_, ok := g.timeEdges[At(IO, OutTime)]
	return ok
}

// Interface describes the graph as a node: its inputs become input pins and its
// outputs become output pins.
func (g *Graph) Interface() NodeSpec {
	var spec NodeSpec
	for _, in := range g.inputs {
		spec.Inputs = append(spec.Inputs, param(in.Name, in.Default))
	}
	for _, name := range g.poseInputs {
		spec.Inputs = append(spec.Inputs, poseIn(name))
	}
	for _, out := range g.outputs {
		spec.Outputs = append(spec.Outputs, paramOut(out.Name, out.Type))
	}
	if g.HasPoseOutput() || g.HasTimeOutput() {
		spec.Outputs = append(spec.Outputs, poseOutputs...)
	}
	return spec
}

// Clone returns a deep copy. Nested graphs and state machines are copied;
// clips, skeletons and custom implementations are shared.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}
	out := newGraph(g.Name)
	out.order = append([]string(nil), g.order...)
	for name, n := range g.nodes {
		out.nodes[name] = n.clone()
	}
	for k, v := range g.poseEdges {
		out.poseEdges[k] = v
	}
	for k, v := range g.paramEdges {
		out.paramEdges[k] = v
	}
	for k, v := range g.timeEdges {
		out.timeEdges[k] = v
	}
	out.inputs = append([]InputParam(nil), g.inputs...)
	out.poseInputs = append([]string(nil), g.poseInputs...)
	out.outputs = append([]OutputParam(nil), g.outputs...)
	return out
}
