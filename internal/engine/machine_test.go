package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/animgraph/internal/engine"
	"github.com/vk/animgraph/internal/graph"
	"github.com/vk/animgraph/internal/testutil"
	"github.com/vk/animgraph/internal/value"
)

func holdState(id graph.StateID, y float64) graph.State {
	return graph.State{ID: id, Graph: graph.NewBuilder(string(id)).
		AddNode("hold", clipNode(testutil.HoldClip(string(id), 10, y))).
		SetOutput("hold").
		MustBuild()}
}

// fadeGraph blends source into target over the transition duration.
func fadeGraph() *graph.Graph {
	return graph.NewBuilder("fade").
		AddPoseInput(graph.TransitionSource).
		AddPoseInput(graph.TransitionTarget).
		AddInput(graph.TransitionElapsed, value.Float(0)).
		AddInput(graph.TransitionDuration, value.Float(1)).
		AddNode("ratio", graph.MathData{Op: graph.MathDiv, Type: value.KindFloat}).
		AddNode("mix", graph.BlendData{}).
		ConnectParam(graph.At(graph.IO, graph.TransitionElapsed), graph.At("ratio", "a")).
		ConnectParam(graph.At(graph.IO, graph.TransitionDuration), graph.At("ratio", "b")).
		ConnectParam(graph.At("ratio", graph.OutValue), graph.At("mix", "factor")).
		ConnectPose(graph.At(graph.IO, graph.TransitionSource), graph.At("mix", "a")).
		ConnectPose(graph.At(graph.IO, graph.TransitionTarget), graph.At("mix", "b")).
		SetOutput("mix").
		MustBuild()
}

// machineInstance wraps m in a graph whose "events" input feeds the machine.
func machineInstance(t *testing.T, m *graph.StateMachine) *engine.Instance {
	t.Helper()
	g, err := graph.NewBuilder("character").
		AddInput(graph.MachineEvents, value.Events(nil)).
		AddNode("fsm", graph.StateMachineData{Machine: m}).
		ConnectParam(graph.At(graph.IO, graph.MachineEvents), graph.At("fsm", graph.MachineEvents)).
		SetOutput("fsm").
		Build()
	require.NoError(t, err)
	return engine.NewInstance(g)
}

func send(t *testing.T, inst *engine.Instance, names ...string) {
	t.Helper()
	var q value.EventQueue
	for _, n := range names {
		q = append(q, value.Event{Name: n, Weight: 1})
	}
	require.NoError(t, inst.SetInput(graph.MachineEvents, value.Events(q)))
}

func TestStateMachine_Lifecycle(t *testing.T) {
	e, logs := newEngine(t)
	m, err := graph.NewStateMachine("locomotion", "idle",
		[]graph.State{holdState("idle", 1), holdState("run", 2)},
		[]graph.Transition{
			{ID: "start", Source: "idle", Target: "run", Trigger: "go", Duration: 0.5, Graph: fadeGraph()},
			{ID: "halt", Source: "run", Target: "idle", Trigger: "stop", Duration: 0, Graph: fadeGraph()},
		})
	require.NoError(t, err)
	inst := machineInstance(t, m)

	_, ok := inst.Machine("fsm")
	assert.False(t, ok, "not started before the first evaluation")

	res := evalAt(t, e, inst, engine.PoseQuery, 0)
	assert.Equal(t, 1.0, hipsY(t, res.Pose))
	status, ok := inst.Machine("fsm")
	require.True(t, ok)
	assert.Equal(t, engine.MachineStatus{Active: "idle", StateStart: 0}, status)

	send(t, inst, "go")
	assert.Equal(t, 1.0, hipsY(t, poseAt(t, e, inst, 1)))
	status, _ = inst.Machine("fsm")
	assert.Equal(t, "start", status.Transition)

	inst.ClearInput(graph.MachineEvents)
	assert.Equal(t, 1.5, hipsY(t, poseAt(t, e, inst, 1.25)))

	send(t, inst, "go")
	assert.InDelta(t, 1.6, hipsY(t, poseAt(t, e, inst, 1.3)), 1e-12)
	assert.Contains(t, logs.String(), "Trigger dropped, transition in progress.")
	status, _ = inst.Machine("fsm")
	assert.Equal(t, "start", status.Transition)

	inst.ClearInput(graph.MachineEvents)
	assert.Equal(t, 2.0, hipsY(t, poseAt(t, e, inst, 1.5)))
	status, _ = inst.Machine("fsm")
	assert.Equal(t, engine.MachineStatus{Active: "run", StateStart: 1}, status)

	send(t, inst, "stop")
	assert.Equal(t, 1.0, hipsY(t, poseAt(t, e, inst, 2)), "zero-length transitions finish at once")
	status, _ = inst.Machine("fsm")
	assert.Equal(t, engine.MachineStatus{Active: "idle", StateStart: 2}, status)

	inst.Reset()
	_, ok = inst.Machine("fsm")
	assert.False(t, ok)
}

func TestStateMachine_TimeQueriesDoNotStep(t *testing.T) {
	e, _ := newEngine(t)
	m, err := graph.NewStateMachine("m", "idle",
		[]graph.State{holdState("idle", 1), holdState("run", 2)},
		[]graph.Transition{{ID: "start", Source: "idle", Target: "run", Trigger: "go", Graph: fadeGraph()}})
	require.NoError(t, err)
	inst := machineInstance(t, m)
	send(t, inst, "go")

	evalAt(t, e, inst, engine.TimeQuery, 0)
	_, ok := inst.Machine("fsm")
	assert.False(t, ok)

	assert.Equal(t, 2.0, hipsY(t, poseAt(t, e, inst, 0)))
}

func TestStateMachine_StateEvents(t *testing.T) {
	e, _ := newEngine(t)
	auto := graph.State{ID: "intro", Graph: graph.NewBuilder("intro").
		AddOutput(graph.MachineEvents, value.KindEventQueue).
		AddNode("hold", clipNode(testutil.HoldClip("intro", 1, 5))).
		AddNode("fire", graph.FireEventData{Event: "done"}).
		ConnectParam(graph.At("fire", graph.OutEvents), graph.At(graph.IO, graph.MachineEvents)).
		SetOutput("hold").
		MustBuild()}
	m, err := graph.NewStateMachine("m", "intro",
		[]graph.State{auto, holdState("idle", 1)},
		[]graph.Transition{{ID: "leave", Source: "intro", Target: "idle", Trigger: "done", Graph: fadeGraph()}})
	require.NoError(t, err)
	inst := machineInstance(t, m)

	assert.Equal(t, 1.0, hipsY(t, poseAt(t, e, inst, 0.25)))
	status, _ := inst.Machine("fsm")
	assert.Equal(t, graph.StateID("idle"), status.Active)
	assert.Equal(t, 0.25, status.StateStart)
}

func TestStateMachine_CompleteOutput(t *testing.T) {
	e, _ := newEngine(t)
	early := graph.NewBuilder("early").
		AddPoseInput(graph.TransitionSource).
		AddPoseInput(graph.TransitionTarget).
		AddInput(graph.TransitionElapsed, value.Float(0)).
		AddOutput(graph.TransitionComplete, value.KindBool).
		AddNode("limit", graph.ConstData{Value: value.Float(0.2)}).
		AddNode("past", graph.CompareData{Op: graph.CompareGreaterEqual}).
		ConnectParam(graph.At(graph.IO, graph.TransitionElapsed), graph.At("past", "a")).
		ConnectParam(graph.At("limit", graph.OutValue), graph.At("past", "b")).
		ConnectParam(graph.At("past", graph.OutValue), graph.At(graph.IO, graph.TransitionComplete)).
		ConnectPose(graph.At(graph.IO, graph.TransitionTarget), graph.At(graph.IO, graph.OutPose)).
		MustBuild()
	m, err := graph.NewStateMachine("m", "idle",
		[]graph.State{holdState("idle", 1), holdState("run", 2)},
		[]graph.Transition{{ID: "snap", Source: "idle", Target: "run", Trigger: "go", Duration: 10, Graph: early}})
	require.NoError(t, err)
	inst := machineInstance(t, m)

	send(t, inst, "go")
	assert.Equal(t, 2.0, hipsY(t, poseAt(t, e, inst, 0)))
	inst.ClearInput(graph.MachineEvents)

	evalAt(t, e, inst, engine.PoseQuery, 0.1)
	status, _ := inst.Machine("fsm")
	assert.Equal(t, "snap", status.Transition, "the duration is ignored")

	evalAt(t, e, inst, engine.PoseQuery, 0.2)
	status, _ = inst.Machine("fsm")
	assert.Equal(t, engine.MachineStatus{Active: "run", StateStart: 0}, status)
}

func TestStateMachine_EventsApplyInOrder(t *testing.T) {
	e, _ := newEngine(t)
	m, err := graph.NewStateMachine("m", "idle",
		[]graph.State{holdState("idle", 1), holdState("run", 2), holdState("jump", 3)},
		[]graph.Transition{
			{ID: "to-run", Source: "idle", Target: "run", Trigger: "go", Graph: fadeGraph()},
			{ID: "to-jump", Source: "idle", Target: "jump", Trigger: "leap", Graph: fadeGraph()},
		})
	require.NoError(t, err)
	inst := machineInstance(t, m)

	send(t, inst, "leap", "go")
	assert.Equal(t, 3.0, hipsY(t, poseAt(t, e, inst, 0)))
	status, _ := inst.Machine("fsm")
	assert.Equal(t, graph.StateID("jump"), status.Active)
}

func TestStateMachine_ByReference(t *testing.T) {
	m, err := graph.NewStateMachine("m", "idle", []graph.State{holdState("idle", 4)}, nil)
	require.NoError(t, err)
	g := graph.NewBuilder("character").
		AddNode("fsm", graph.StateMachineData{Ref: "locomotion"}).
		SetOutput("fsm").
		MustBuild()

	t.Run("resolved", func(t *testing.T) {
		e, _ := newEngine(t, engine.WithResolver(&fakeResolver{machines: map[string]*graph.StateMachine{"locomotion": m}}))
		assert.Equal(t, 4.0, hipsY(t, poseAt(t, e, engine.NewInstance(g), 0)))
	})

	t.Run("unresolved", func(t *testing.T) {
		e, _ := newEngine(t, engine.WithResolver(&fakeResolver{}))
		_, err := e.Evaluate(t.Context(), engine.NewInstance(g), engine.Query{Kind: engine.PoseQuery})
		assert.ErrorIs(t, err, engine.ErrUnresolvedSubgraph)
	})
}
