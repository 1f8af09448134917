package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/animgraph/internal/value"
)

// Builder assembles a Graph. Methods record problems instead of failing
// immediately; Build reports all of them at once.
type Builder struct {
	g    *Graph
	errs []error
}

// NewBuilder starts an empty graph.
func NewBuilder(name string) *Builder {
	return &Builder{g: newGraph(name)}
}

func (b *Builder) fail(err error) *Builder {
	b.errs = append(b.errs, err)
	return b
}

// AddNode adds a node. Names must be unique and must not start with "@".
func (b *Builder) AddNode(name string, data NodeData) *Builder {
	at := At(name, "")
	switch {
	case name == "" || strings.HasPrefix(name, "@"):
		return b.fail(buildErr(ErrUnknownNode, b.g.Name, at, "invalid node name"))
	case data == nil:
		return b.fail(buildErr(ErrUnknownNode, b.g.Name, at, "node has no data"))
	}
	if _, exists := b.g.nodes[name]; exists {
		return b.fail(buildErr(ErrDuplicateName, b.g.Name, at, "duplicate node name"))
	}
	b.g.nodes[name] = &Node{Name: name, Data: data}
	b.g.order = append(b.g.order, name)
	return b
}

// AddInput declares an input parameter; def fixes both its kind and the value
// used when the parent leaves it unconnected.
func (b *Builder) AddInput(name string, def value.Value) *Builder {
	at := At(IO, name)
	if !def.Kind().IsParameter() {
		return b.fail(buildErr(ErrTypeMismatch, b.g.Name, at, "input default must be a parameter value, got %s", def.Kind()))
	}
	if _, exists := b.g.InputParam(name); exists {
		return b.fail(buildErr(ErrPinAlreadyConnected, b.g.Name, at, "duplicate input"))
	}
	b.g.inputs = append(b.g.inputs, InputParam{Name: name, Default: def})
	return b
}

// AddPoseInput declares a pose input that the parent graph supplies.
func (b *Builder) AddPoseInput(name string) *Builder {
	if b.g.hasPoseInput(name) {
		return b.fail(buildErr(ErrPinAlreadyConnected, b.g.Name, At(IO, name), "duplicate pose input"))
	}
	b.g.poseInputs = append(b.g.poseInputs, name)
	return b
}

// AddOutput declares a typed output parameter.
func (b *Builder) AddOutput(name string, kind value.Kind) *Builder {
	at := At(IO, name)
	if !kind.IsParameter() {
		return b.fail(buildErr(ErrTypeMismatch, b.g.Name, at, "output must be a parameter kind, got %s", kind))
	}
	if _, exists := b.g.OutputParam(name); exists {
		return b.fail(buildErr(ErrPinAlreadyConnected, b.g.Name, at, "duplicate output"))
	}
	b.g.outputs = append(b.g.outputs, OutputParam{Name: name, Type: kind})
	return b
}

// Connect adds an edge in the given namespace.
func (b *Builder) Connect(kind PinKind, from, to Endpoint) *Builder {
	edges := b.g.edges(kind)
	if prev, ok := edges[to]; ok {
		return b.fail(buildErr(ErrPinAlreadyConnected, b.g.Name, to, "%s edge from %s already present", kind, prev))
	}
	edges[to] = from
	return b
}

// ConnectPose wires a pose producer into a pose input.
func (b *Builder) ConnectPose(from, to Endpoint) *Builder { return b.Connect(PosePin, from, to) }

// ConnectParam wires a parameter producer into a parameter input.
func (b *Builder) ConnectParam(from, to Endpoint) *Builder { return b.Connect(ParameterPin, from, to) }

// ConnectTime wires a time producer into a time input.
func (b *Builder) ConnectTime(from, to Endpoint) *Builder { return b.Connect(TimePin, from, to) }

// Feed wires node's pose output into target's pose input pin.
func (b *Builder) Feed(node, target, pin string) *Builder {
	return b.ConnectPose(At(node, OutPose), At(target, pin))
}

// SetOutput makes node the graph's pose and time output.
func (b *Builder) SetOutput(node string) *Builder {
	b.ConnectPose(At(node, OutPose), At(IO, OutPose))
	return b.ConnectTime(At(node, OutTime), At(IO, OutTime))
}

// Build validates the graph and returns it. On failure the error joins every
// *BuildError found.
func (b *Builder) Build() (*Graph, error) {
	errs := append([]error(nil), b.errs...)
	errs = append(errs, validateEdges(b.g)...)
	if len(errs) == 0 {
		if err := detectCycle(b.g); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("building graph %q: %w", b.g.Name, errors.Join(errs...))
	}
	g := b.g
	b.g = g.Clone()
	return g, nil
}

// MustBuild is Build for statically known graphs; it panics on error.
func (b *Builder) MustBuild() *Graph {
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}
