package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/vk/animgraph/internal/graph"
	"github.com/vk/animgraph/internal/pose"
	"github.com/vk/animgraph/internal/value"
)

type queryKind uint8

const (
	durationQuery queryKind = iota
	timeQuery
	poseQuery
	paramQuery
	customQuery
)

// cacheKey identifies one memoized result within a frame. Times are part of
// the key because crossfades sample one producer at two times in one call.
type cacheKey struct {
	node *graph.Node
	pin  string
	kind queryKind
	t    uint64
}

type entry struct {
	num  float64
	pose *pose.Pose
	val  value.Value
	vals map[string]value.Value
	err  error
}

type diagKey struct {
	g   *graph.Graph
	msg string
}

// call is the state of one Evaluate invocation.
type call struct {
	ctx     context.Context
	eng     *Engine
	inst    *Instance
	logger  *slog.Logger
	kind    QueryKind
	stepped map[*graph.Node]bool
	seen    map[diagKey]bool
	diags   []error
}

type childKey struct {
	owner *graph.Node
	g     *graph.Graph
	start uint64
	at    uint64
}

// frame evaluates one graph level. Input parameters and pose inputs are
// looked up in fixed and poses first, then on the owner's pins in the parent
// frame, then fall back to the graph's defaults.
type frame struct {
	c        *call
	g        *graph.Graph
	parent   *frame
	owner    *graph.Node
	depth    int
	time     float64
	fixed    map[string]value.Value
	poses    map[string]ref
	children map[childKey]*frame
	cache    map[cacheKey]entry
}

func (c *call) newFrame(g *graph.Graph, parent *frame, owner *graph.Node, depth int, t float64) *frame {
	return &frame{
		c:        c,
		g:        g,
		parent:   parent,
		owner:    owner,
		depth:    depth,
		time:     t,
		fixed:    make(map[string]value.Value),
		poses:    make(map[string]ref),
		children: make(map[childKey]*frame),
		cache:    make(map[cacheKey]entry),
	}
}

// child returns the frame for a graph nested under key.owner, creating it on
// first use.
func (f *frame) child(key childKey, g *graph.Graph, t float64) (*frame, error) {
	if sub, ok := f.children[key]; ok {
		return sub, nil
	}
	if f.depth+1 > f.c.eng.maxDepth {
		return nil, f.fail(key.owner.Name, fmt.Errorf("%w: nesting deeper than %d levels at %q", ErrGraphCycle, f.c.eng.maxDepth, g.Name))
	}
	sub := f.c.newFrame(g, f, key.owner, f.depth+1, t)
	f.children[key] = sub
	f.c.logger.Debug("Entering sub-graph.", "node", key.owner.Name, "subgraph", g.Name, "depth", sub.depth)
	return sub, nil
}

func (f *frame) fail(node string, err error) error {
	return &EvalError{Graph: f.g.Name, Node: node, Err: err}
}

// degrade records a recoverable problem once per call.
func (f *frame) degrade(node string, err error) {
	e := &EvalError{Graph: f.g.Name, Node: node, Err: err}
	key := diagKey{g: f.g, msg: e.Error()}
	if f.c.seen[key] {
		return
	}
	f.c.seen[key] = true
	f.c.diags = append(f.c.diags, e)
	f.c.logger.Warn("Node degraded.", "subgraph", f.g.Name, "node", node, "error", err)
}

func bits(t float64) uint64 { return math.Float64bits(t) }

func (f *frame) memoNum(key cacheKey, fn func() (float64, error)) (float64, error) {
	if e, ok := f.cache[key]; ok {
		return e.num, e.err
	}
	v, err := fn()
	f.cache[key] = entry{num: v, err: err}
	return v, err
}

func (f *frame) memoPose(key cacheKey, fn func() (*pose.Pose, error)) (*pose.Pose, error) {
	if e, ok := f.cache[key]; ok {
		return e.pose, e.err
	}
	p, err := fn()
	if p == nil && err == nil {
		p = pose.New(0)
	}
	f.cache[key] = entry{pose: p, err: err}
	return p, err
}

func (f *frame) memoValue(key cacheKey, fn func() (value.Value, error)) (value.Value, error) {
	if e, ok := f.cache[key]; ok {
		return e.val, e.err
	}
	v, err := fn()
	f.cache[key] = entry{val: v, err: err}
	return v, err
}

// ref addresses a pose producer: a node in some frame, queried shift seconds
// earlier than the consumer asks. The zero ref is a missing input; it reports
// an empty pose, the query time and a zero duration.
type ref struct {
	f     *frame
	node  *graph.Node
	shift float64
}

func (r ref) duration() (float64, error) {
	if r.node == nil {
		return 0, nil
	}
	return r.f.duration(r.node)
}

func (r ref) timeAt(t float64) (float64, error) {
	if r.node == nil {
		return t, nil
	}
	return r.f.timeAt(r.node, t-r.shift)
}

func (r ref) poseAt(t float64) (*pose.Pose, error) {
	if r.node == nil {
		return pose.New(t), nil
	}
	return r.f.poseAt(r.node, t-r.shift)
}

// poseInput resolves the producer wired into n's pose input pin.
func (f *frame) poseInput(n *graph.Node, pin string) ref {
	src, ok := f.g.Source(graph.PosePin, graph.At(n.Name, pin))
	if !ok {
		f.degrade(n.Name, fmt.Errorf("%w: pose input %q is not connected", ErrMissingRequiredInput, pin))
		return ref{}
	}
	return f.resolve(src)
}

func (f *frame) resolve(src graph.Endpoint) ref {
	if src.Node == graph.IO {
		return f.ioPose(src.Pin)
	}
	n, ok := f.g.Node(src.Node)
	if !ok {
		return ref{}
	}
	return ref{f: f, node: n}
}

func (f *frame) ioPose(name string) ref {
	if r, ok := f.poses[name]; ok {
		return r
	}
	if f.parent != nil && f.owner != nil {
		return f.parent.poseInput(f.owner, name)
	}
	f.degrade(graph.IO, fmt.Errorf("%w: graph pose input %q is not supplied", ErrMissingRequiredInput, name))
	return ref{}
}

// graphOutput returns the producer of the graph's time output, falling back
// to the producer of its pose output.
func (f *frame) graphOutput() ref {
	if src, ok := f.g.Source(graph.TimePin, graph.At(graph.IO, graph.OutTime)); ok {
		return f.resolve(src)
	}
	return f.poseOutput()
}

func (f *frame) poseOutput() ref {
	if src, ok := f.g.Source(graph.PosePin, graph.At(graph.IO, graph.OutPose)); ok {
		return f.resolve(src)
	}
	return ref{}
}

// param returns the value read by n's parameter input pin.
func (f *frame) param(n *graph.Node, pin string) (value.Value, error) {
	spec, declared := graph.SpecOf(n).Input(pin)
	src, ok := f.g.Source(graph.ParameterPin, graph.At(n.Name, pin))
	if !ok {
		if declared && spec.Required() {
			f.degrade(n.Name, fmt.Errorf("%w: parameter %q is not connected", ErrMissingRequiredInput, pin))
		}
		return spec.Fallback(), nil
	}
	v, err := f.paramFrom(src)
	if err != nil {
		return value.Value{}, err
	}
	if declared && v.Kind() != spec.Type {
		f.degrade(n.Name, fmt.Errorf("%w: parameter %q wants %s, got %s", graph.ErrTypeMismatch, pin, spec.Type, v.Kind()))
		return spec.Fallback(), nil
	}
	return v, nil
}

func (f *frame) paramFrom(src graph.Endpoint) (value.Value, error) {
	if src.Node == graph.IO {
		return f.ioParam(src.Pin)
	}
	n, ok := f.g.Node(src.Node)
	if !ok {
		return value.Value{}, nil
	}
	return f.output(n, src.Pin)
}

func (f *frame) ioParam(name string) (value.Value, error) {
	if v, ok := f.fixed[name]; ok {
		return v, nil
	}
	if f.parent != nil && f.owner != nil {
		if _, wired := f.parent.g.Source(graph.ParameterPin, graph.At(f.owner.Name, name)); wired {
			return f.parent.param(f.owner, name)
		}
	} else if v, ok := f.c.inst.inputs[name]; ok {
		return v, nil
	}
	in, _ := f.g.InputParam(name)
	return in.Default, nil
}

// graphParam evaluates one of the graph's output parameters.
func (f *frame) graphParam(name string) (value.Value, error) {
	out, declared := f.g.OutputParam(name)
	src, ok := f.g.Source(graph.ParameterPin, graph.At(graph.IO, name))
	if !ok {
		if declared {
			f.degrade(graph.IO, fmt.Errorf("%w: output %q is not connected", ErrMissingRequiredInput, name))
		}
		return value.Zero(out.Type), nil
	}
	return f.paramFrom(src)
}

func (f *frame) outputParams() (map[string]value.Value, error) {
	outs := f.g.OutputParams()
	if len(outs) == 0 {
		return nil, nil
	}
	m := make(map[string]value.Value, len(outs))
	for _, out := range outs {
		v, err := f.graphParam(out.Name)
		if err != nil {
			return nil, err
		}
		m[out.Name] = v
	}
	return m, nil
}

func (f *frame) float(n *graph.Node, pin string) (float64, error) {
	v, err := f.param(n, pin)
	if err != nil {
		return 0, err
	}
	x, _ := v.AsFloat()
	return x, nil
}

func (f *frame) boolean(n *graph.Node, pin string) (bool, error) {
	v, err := f.param(n, pin)
	if err != nil {
		return false, err
	}
	b, _ := v.AsBool()
	return b, nil
}

func (f *frame) events(n *graph.Node, pin string) (value.EventQueue, error) {
	v, err := f.param(n, pin)
	if err != nil {
		return nil, err
	}
	q, _ := v.AsEvents()
	return q, nil
}
