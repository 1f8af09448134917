package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vk/animgraph/internal/ctxlog"
	"github.com/vk/animgraph/internal/graph"
	"github.com/vk/animgraph/internal/pose"
	"github.com/vk/animgraph/internal/value"
)

// DefaultMaxDepth bounds graph nesting at evaluation time.
const DefaultMaxDepth = 64

// Resolver loads the graphs and state machines that nodes reference by id
// instead of owning them.
type Resolver interface {
	Graph(id string) (*graph.Graph, error)
	Machine(id string) (*graph.StateMachine, error)
}

// Engine evaluates graph instances. It holds no per-character state and is
// safe for concurrent use.
type Engine struct {
	logger   *slog.Logger
	maxDepth int
	resolver Resolver
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Without it the logger is taken from the
// context passed to Evaluate.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithMaxDepth sets the nesting limit above which evaluation fails with
// ErrGraphCycle.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// WithResolver sets the resolver for graph and state machine references.
func WithResolver(r Resolver) Option { return func(e *Engine) { e.resolver = r } }

// New returns an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// QueryKind selects the phases Evaluate runs.
type QueryKind int

const (
	// TimeQuery runs the time phase only. It never changes instance state.
	TimeQuery QueryKind = iota
	// PoseQuery runs the time phase and then the pose phase.
	PoseQuery
)

func (k QueryKind) String() string {
	if k == PoseQuery {
		return "pose"
	}
	return "time"
}

// Query asks for the graph's state at Time, in seconds.
type Query struct {
	Kind QueryKind
	Time float64
}

// Result is the outcome of one Evaluate call. Pose and Outputs are only set
// for pose queries; Pose.Timestamp equals Time.
type Result struct {
	Pose        *pose.Pose
	Time        float64
	Duration    float64
	Outputs     map[string]value.Value
	Diagnostics []error
}

// Evaluate answers q for inst. Degraded nodes are listed in
// Result.Diagnostics; an unresolved reference or excessive nesting aborts the
// call with an *EvalError.
func (e *Engine) Evaluate(ctx context.Context, inst *Instance, q Query) (Result, error) {
	if inst == nil || inst.graph == nil {
		return Result{}, errors.New("evaluate: nil instance")
	}
	logger := e.logger
	if logger == nil {
		logger = ctxlog.FromContext(ctx)
	}
	inst.calls++
	c := &call{
		ctx:     ctxlog.WithLogger(ctx, logger),
		eng:     e,
		inst:    inst,
		logger:  logger.With("graph", inst.graph.Name, "query", q.Kind.String()),
		kind:    q.Kind,
		stepped: make(map[*graph.Node]bool),
		seen:    make(map[diagKey]bool),
	}
	root := c.newFrame(inst.graph, nil, nil, 0, q.Time)

	res := Result{Time: q.Time}
	out := root.graphOutput()
	if out.node != nil {
		d, err := out.duration()
		if err != nil {
			return Result{}, err
		}
		t, err := out.timeAt(q.Time)
		if err != nil {
			return Result{}, err
		}
		res.Duration, res.Time = d, t
	}

	if q.Kind == PoseQuery {
		p := pose.New(res.Time)
		if src := root.poseOutput(); src.node != nil {
			sampled, err := src.poseAt(q.Time)
			if err != nil {
				return Result{}, err
			}
			p = sampled.WithTimestamp(res.Time)
		}
		res.Pose = p

		outputs, err := root.outputParams()
		if err != nil {
			return Result{}, err
		}
		res.Outputs = outputs
	}

	res.Diagnostics = c.diags
	return res, nil
}
