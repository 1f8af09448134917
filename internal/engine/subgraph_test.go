package engine_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/animgraph/internal/engine"
	"github.com/vk/animgraph/internal/graph"
	"github.com/vk/animgraph/internal/testutil"
	"github.com/vk/animgraph/internal/value"
)

type fakeResolver struct {
	graphs   map[string]*graph.Graph
	machines map[string]*graph.StateMachine
	lookups  int
}

func (r *fakeResolver) Graph(id string) (*graph.Graph, error) {
	r.lookups++
	if g, ok := r.graphs[id]; ok {
		return g, nil
	}
	return nil, fmt.Errorf("graph %q not found", id)
}

func (r *fakeResolver) Machine(id string) (*graph.StateMachine, error) {
	r.lookups++
	if m, ok := r.machines[id]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("machine %q not found", id)
}

// scaledGraph plays its "upstream" pose input at the rate of its "speed"
// input and exposes the rate as "rate".
func scaledGraph() *graph.Graph {
	return graph.NewBuilder("scaled").
		AddPoseInput("upstream").
		AddInput("speed", value.Float(1)).
		AddOutput("rate", value.KindFloat).
		AddNode("fast", graph.SpeedData{}).
		ConnectPose(graph.At(graph.IO, "upstream"), graph.At("fast", "in")).
		ConnectParam(graph.At(graph.IO, "speed"), graph.At("fast", "speed")).
		ConnectParam(graph.At(graph.IO, "speed"), graph.At(graph.IO, "rate")).
		SetOutput("fast").
		MustBuild()
}

func parentOf(sub graph.GraphData) *graph.Graph {
	walk := testutil.WalkClip("walk", 1)
	return graph.NewBuilder("parent").
		AddOutput("rate", value.KindFloat).
		AddNode("walk", clipNode(walk)).
		AddNode("two", graph.ConstData{Value: value.Float(2)}).
		AddNode("nested", sub).
		Feed("walk", "nested", "upstream").
		ConnectParam(graph.At("two", graph.OutValue), graph.At("nested", "speed")).
		ConnectParam(graph.At("nested", "rate"), graph.At(graph.IO, "rate")).
		SetOutput("nested").
		MustBuild()
}

func TestEvaluate_InlineSubgraph(t *testing.T) {
	e, logs := newEngine(t)
	inst := engine.NewInstance(parentOf(graph.GraphData{Graph: scaledGraph()}))

	res := evalAt(t, e, inst, engine.PoseQuery, 0.25)

	testutil.AssertPoseIdentical(t, testutil.WalkClip("walk", 1).Sample(0.5), res.Pose)
	assert.Equal(t, 0.25, res.Time)
	assert.Equal(t, 0.5, res.Duration)
	assert.Equal(t, value.Float(2), res.Outputs["rate"])
	assert.Empty(t, res.Diagnostics)
	assert.Contains(t, logs.String(), "Entering sub-graph.")
}

func TestEvaluate_SubgraphDefaults(t *testing.T) {
	e, _ := newEngine(t)
	walk := testutil.WalkClip("walk", 1)
	g := graph.NewBuilder("parent").
		AddNode("walk", clipNode(walk)).
		AddNode("nested", graph.GraphData{Graph: scaledGraph()}).
		Feed("walk", "nested", "upstream").
		SetOutput("nested").
		MustBuild()

	testutil.AssertPoseIdentical(t, walk.Sample(0.25), poseAt(t, e, engine.NewInstance(g), 0.25))
}

func TestEvaluate_SubgraphMissingPoseInput(t *testing.T) {
	e, _ := newEngine(t)
	g := graph.NewBuilder("parent").
		AddNode("nested", graph.GraphData{Graph: scaledGraph()}).
		SetOutput("nested").
		MustBuild()

	res := evalAt(t, e, engine.NewInstance(g), engine.PoseQuery, 0.25)
	assert.Zero(t, res.Pose.Len())
	require.NotEmpty(t, res.Diagnostics)
	assert.ErrorIs(t, res.Diagnostics[0], engine.ErrMissingRequiredInput)
}

func TestEvaluate_ReferencedSubgraph(t *testing.T) {
	g := parentOf(graph.GraphData{Ref: "scaled"})

	t.Run("resolved once per instance", func(t *testing.T) {
		r := &fakeResolver{graphs: map[string]*graph.Graph{"scaled": scaledGraph()}}
		e, _ := newEngine(t, engine.WithResolver(r))
		inst := engine.NewInstance(g)

		testutil.AssertPoseIdentical(t, testutil.WalkClip("walk", 1).Sample(0.5), poseAt(t, e, inst, 0.25))
		poseAt(t, e, inst, 0.3)
		assert.Equal(t, 1, r.lookups)

		inst.Reset()
		poseAt(t, e, inst, 0.3)
		assert.Equal(t, 2, r.lookups)
	})

	t.Run("unknown reference aborts", func(t *testing.T) {
		e, _ := newEngine(t, engine.WithResolver(&fakeResolver{}))
		_, err := e.Evaluate(t.Context(), engine.NewInstance(g), engine.Query{Kind: engine.TimeQuery, Time: 0.25})
		require.ErrorIs(t, err, engine.ErrUnresolvedSubgraph)
		var evalErr *engine.EvalError
		require.ErrorAs(t, err, &evalErr)
		assert.Equal(t, "nested", evalErr.Node)
		assert.ErrorContains(t, err, `"scaled"`)
	})

	t.Run("no resolver aborts", func(t *testing.T) {
		e, _ := newEngine(t)
		_, err := e.Evaluate(t.Context(), engine.NewInstance(g), engine.Query{Kind: engine.PoseQuery})
		assert.ErrorIs(t, err, engine.ErrUnresolvedSubgraph)
	})
}

func TestEvaluate_NestingLimit(t *testing.T) {
	self := graph.NewBuilder("self").
		AddNode("again", graph.GraphData{Ref: "self"}).
		SetOutput("again").
		MustBuild()
	r := &fakeResolver{graphs: map[string]*graph.Graph{"self": self}}
	e, _ := newEngine(t, engine.WithResolver(r), engine.WithMaxDepth(8))

	_, err := e.Evaluate(t.Context(), engine.NewInstance(self), engine.Query{Kind: engine.PoseQuery})

	require.ErrorIs(t, err, engine.ErrGraphCycle)
	assert.ErrorContains(t, err, "deeper than 8")
}

func TestEvaluate_CustomErrorAborts(t *testing.T) {
	e, _ := newEngine(t)
	broken := graph.CustomData{Impl: graph.CustomFunc{
		Pins: graph.NodeSpec{Outputs: graph.PoseOutputs()},
		Fn: func(graph.CustomRequest) (map[string]value.Value, error) {
			return nil, errors.New("sensor offline")
		},
	}}
	g := graph.NewBuilder("custom").AddNode("probe", broken).SetOutput("probe").MustBuild()

	_, err := e.Evaluate(t.Context(), engine.NewInstance(g), engine.Query{Kind: engine.PoseQuery})

	var evalErr *engine.EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "probe", evalErr.Node)
	assert.ErrorContains(t, err, "sensor offline")
}

func TestEvaluate_CustomReceivesInputs(t *testing.T) {
	e, _ := newEngine(t)
	var got graph.CustomRequest
	lift := graph.CustomData{Impl: graph.CustomFunc{
		Pins: graph.NodeSpec{
			Inputs:  []graph.PinSpec{graph.PoseInput("in"), graph.ParamInput("height", value.Float(0))},
			Outputs: graph.PoseOutputs(),
		},
		Fn: func(req graph.CustomRequest) (map[string]value.Value, error) {
			got = req
			p, _ := req.Inputs["in"].AsPose()
			h, _ := req.Inputs["height"].AsFloat()
			tr, _ := p.Get(testutil.Hips)
			tr.Translation[1] += h
			p.Set(testutil.Hips, tr)
			return map[string]value.Value{graph.OutPose: value.Pose(p)}, nil
		},
	}}
	g := graph.NewBuilder("custom").
		AddInput("height", value.Float(0.5)).
		AddNode("hold", clipNode(testutil.HoldClip("hold", 1, 1))).
		AddNode("lift", lift).
		Feed("hold", "lift", "in").
		ConnectParam(graph.At(graph.IO, "height"), graph.At("lift", "height")).
		SetOutput("lift").
		MustBuild()

	res := evalAt(t, e, engine.NewInstance(g), engine.PoseQuery, 0.4)

	assert.Equal(t, 1.5, hipsY(t, res.Pose))
	assert.Equal(t, 0.4, got.Time)
	assert.Equal(t, graph.QueryPose, got.Kind)
	assert.Equal(t, 0.4, res.Time)
	assert.Equal(t, 1.0, res.Duration, "an untimed custom node reports its pose input's duration")
}

// passthrough returns its pose input unchanged.
func passthrough() graph.CustomFunc {
	return graph.CustomFunc{
		Pins: graph.NodeSpec{Inputs: []graph.PinSpec{graph.PoseInput("in")}, Outputs: graph.PoseOutputs()},
		Fn: func(req graph.CustomRequest) (map[string]value.Value, error) {
			return map[string]value.Value{graph.OutPose: req.Inputs["in"]}, nil
		},
	}
}

// trim ends its input early.
type trim struct {
	graph.CustomFunc
	at    float64
	kinds []graph.CustomQuery
}

func (c *trim) Duration(req graph.CustomRequest) (float64, error) {
	c.kinds = append(c.kinds, req.Kind)
	return math.Min(req.Durations["in"], c.at), nil
}

func (c *trim) TimeAt(req graph.CustomRequest) (float64, error) {
	c.kinds = append(c.kinds, req.Kind)
	return math.Min(req.Times["in"], c.at), nil
}

func chainOf(first graph.NodeData) *graph.Graph {
	return graph.NewBuilder("chain").
		AddNode("walk", clipNode(testutil.WalkClip("walk", 1))).
		AddNode("first", first).
		AddNode("mirror", graph.FlipLRData{}).
		AddNode("seq", graph.ChainData{}).
		Feed("walk", "first", "in").
		Feed("walk", "mirror", "in").
		Feed("first", "seq", "a").
		Feed("mirror", "seq", "b").
		SetOutput("seq").
		MustBuild()
}

func TestEvaluate_CustomTiming(t *testing.T) {
	e, _ := newEngine(t)
	mirrored := graph.NewBuilder("mirrored").
		AddNode("walk", clipNode(testutil.WalkClip("walk", 1))).
		AddNode("mirror", graph.FlipLRData{}).
		Feed("walk", "mirror", "in").
		SetOutput("mirror").
		MustBuild()

	t.Run("untimed nodes follow their input", func(t *testing.T) {
		inst := engine.NewInstance(chainOf(graph.CustomData{Impl: passthrough()}))

		res := evalAt(t, e, inst, engine.PoseQuery, 1.5)

		assert.Equal(t, 2.0, res.Duration)
		want := poseAt(t, e, engine.NewInstance(mirrored), 0.5)
		testutil.AssertPoseEqual(t, want, res.Pose, 1e-9)
	})

	t.Run("timed nodes report their own duration", func(t *testing.T) {
		cut := &trim{CustomFunc: passthrough(), at: 0.5}
		inst := engine.NewInstance(chainOf(graph.CustomData{Impl: cut}))

		res := evalAt(t, e, inst, engine.PoseQuery, 0.75)

		assert.Equal(t, 1.5, res.Duration)
		want := poseAt(t, e, engine.NewInstance(mirrored), 0.25)
		testutil.AssertPoseEqual(t, want, res.Pose, 1e-9)
		assert.Contains(t, cut.kinds, graph.QueryDuration)

		res = evalAt(t, e, engine.NewInstance(chainOf(graph.CustomData{Impl: cut})), engine.TimeQuery, 0.3)
		assert.Equal(t, 0.3, res.Time)
		assert.Contains(t, cut.kinds, graph.QueryTime)
	})
}
