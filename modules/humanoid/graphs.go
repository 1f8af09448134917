package humanoid

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/vk/animgraph/internal/assets"
	"github.com/vk/animgraph/internal/blendspace"
	"github.com/vk/animgraph/internal/graph"
	"github.com/vk/animgraph/internal/pose"
	"github.com/vk/animgraph/internal/value"
)

// Input parameter names of the module's graphs.
const (
	InputVelocity     = "velocity"
	InputPlaybackRate = "playback_rate"
	InputEvents       = graph.MachineEvents
	InputReachTarget  = "reach_target"
	InputReachWeight  = "reach_weight"
	InputLookAt       = "look_at"
)

// Events the character state machine reacts to.
const (
	EventMove   = "move"
	EventStop   = "stop"
	EventJump   = "jump"
	EventLanded = "landed"
)

// Points of the locomotion blend space, in (forward, lateral) metres per
// second.
var locomotionPoints = []blendspace.Point{
	{ID: "idle", X: 0, Y: 0},
	{ID: "walk", X: 1.5, Y: 0},
	{ID: "run", X: 4, Y: 0},
	{ID: "strafe_left", X: 0, Y: 1.5},
	{ID: "strafe_right", X: 0, Y: -1.5},
}

func clipNode(id string) graph.ClipData { return graph.ClipData{ClipID: id} }

// idleLoopGraph repeats the idle clip.
func idleLoopGraph() (*graph.Graph, error) {
	return graph.NewBuilder(GraphIdleLoop).
		AddNode("idle", clipNode(ClipIdle)).
		AddNode("loop", graph.LoopData{InterpolationPeriod: 0.25}).
		Feed("idle", "loop", "in").
		SetOutput("loop").
		Build()
}

// locomotionGraph blends the gait cycles by velocity, phase-matched, and
// loops the result. The right strafe mirrors the left one.
func locomotionGraph() (*graph.Graph, error) {
	space, err := blendspace.New(locomotionPoints)
	if err != nil {
		return nil, err
	}
	return graph.NewBuilder(GraphLocomotion).
		AddInput(InputVelocity, value.Vector3(mgl64.Vec3{})).
		AddInput(InputPlaybackRate, value.Float(1)).
		AddNode("idle", clipNode(ClipIdle)).
		AddNode("walk", clipNode(ClipWalk)).
		AddNode("run", clipNode(ClipRun)).
		AddNode("strafe", clipNode(ClipStrafe)).
		AddNode("strafe_mirror", graph.FlipLRData{Mirror: pose.DefaultMirror()}).
		AddNode("space", graph.BlendSpaceData{Space: space, Sync: blendspace.SyncNormalized}).
		AddNode("loop", graph.LoopData{}).
		AddNode("rate", graph.SpeedData{}).
		Feed("strafe", "strafe_mirror", "in").
		Feed("idle", "space", "idle").
		Feed("walk", "space", "walk").
		Feed("run", "space", "run").
		Feed("strafe", "space", "strafe_left").
		Feed("strafe_mirror", "space", "strafe_right").
		ConnectParam(graph.At(graph.IO, InputVelocity), graph.At("space", "position")).
		Feed("space", "loop", "in").
		Feed("loop", "rate", "in").
		ConnectParam(graph.At(graph.IO, InputPlaybackRate), graph.At("rate", "speed")).
		SetOutput("rate").
		Build()
}

// jumpGraph plays the jump once and forwards the clip's landing marker on its
// "events" output.
func jumpGraph() (*graph.Graph, error) {
	return graph.NewBuilder(GraphJump).
		AddOutput(graph.MachineEvents, value.KindEventQueue).
		AddNode("jump", clipNode(ClipJump)).
		ConnectParam(graph.At("jump", graph.OutEvents), graph.At(graph.IO, graph.MachineEvents)).
		SetOutput("jump").
		Build()
}

// crossfadeGraph blends source into target linearly over the transition.
func crossfadeGraph() (*graph.Graph, error) {
	return graph.NewBuilder(GraphCrossfade).
		AddPoseInput(graph.TransitionSource).
		AddPoseInput(graph.TransitionTarget).
		AddInput(graph.TransitionElapsed, value.Float(0)).
		AddInput(graph.TransitionDuration, value.Float(1)).
		AddNode("progress", graph.MathData{Op: graph.MathDiv, Type: value.KindFloat}).
		AddNode("factor", graph.MathData{Op: graph.MathClamp, Type: value.KindFloat}).
		AddNode("mix", graph.BlendData{}).
		ConnectParam(graph.At(graph.IO, graph.TransitionElapsed), graph.At("progress", "a")).
		ConnectParam(graph.At(graph.IO, graph.TransitionDuration), graph.At("progress", "b")).
		ConnectParam(graph.At("progress", graph.OutValue), graph.At("factor", "a")).
		ConnectParam(graph.At("factor", graph.OutValue), graph.At("mix", "factor")).
		ConnectPose(graph.At(graph.IO, graph.TransitionSource), graph.At("mix", "a")).
		ConnectPose(graph.At(graph.IO, graph.TransitionTarget), graph.At("mix", "b")).
		SetOutput("mix").
		Build()
}

// characterGraph runs the character state machine on the full skeleton.
func characterGraph() (*graph.Graph, error) {
	return graph.NewBuilder(GraphCharacter).
		AddInput(InputVelocity, value.Vector3(mgl64.Vec3{})).
		AddInput(InputEvents, value.Events(nil)).
		AddNode("fsm", graph.StateMachineData{Ref: MachineCharacter}).
		AddNode("full", graph.ExtendSkeletonData{SkeletonID: SkeletonID}).
		ConnectParam(graph.At(graph.IO, InputVelocity), graph.At("fsm", InputVelocity)).
		ConnectParam(graph.At(graph.IO, InputEvents), graph.At("fsm", graph.MachineEvents)).
		Feed("fsm", "full", "in").
		SetOutput("full").
		Build()
}

// reachGraph layers a left-hand reach and a head look-at over the character.
// "reach_weight" fades the reach in and out.
func reachGraph() (*graph.Graph, error) {
	return graph.NewBuilder(GraphReach).
		AddInput(InputVelocity, value.Vector3(mgl64.Vec3{})).
		AddInput(InputEvents, value.Events(nil)).
		AddInput(InputReachTarget, value.Vector3(mgl64.Vec3{0.35, 1.3, 0.3})).
		AddInput(InputReachWeight, value.Float(1)).
		AddInput(InputLookAt, value.Vector3(mgl64.Vec3{0, 0, 1})).
		AddNode("body", graph.GraphData{Ref: GraphCharacter}).
		AddNode("hand", graph.ConstData{Value: value.Path(HandL)}).
		AddNode("ik", graph.TwoBoneIKData{}).
		AddNode("reach", graph.BlendData{}).
		AddNode("forward", graph.ConstData{Value: value.Vector3(mgl64.Vec3{0, 0, 1})}).
		AddNode("look", graph.RotationArcData{}).
		AddNode("head_mask", graph.ConstData{Value: value.Mask(pose.BoneMask{Head: 1})}).
		AddNode("head", graph.RotationData{Mode: graph.RotationCompose}).
		ConnectParam(graph.At(graph.IO, InputVelocity), graph.At("body", InputVelocity)).
		ConnectParam(graph.At(graph.IO, InputEvents), graph.At("body", InputEvents)).
		Feed("body", "ik", "in").
		ConnectParam(graph.At("hand", graph.OutValue), graph.At("ik", "target_path")).
		ConnectParam(graph.At(graph.IO, InputReachTarget), graph.At("ik", "target_position")).
		Feed("body", "reach", "a").
		Feed("ik", "reach", "b").
		ConnectParam(graph.At(graph.IO, InputReachWeight), graph.At("reach", "factor")).
		ConnectParam(graph.At("forward", graph.OutValue), graph.At("look", "from")).
		ConnectParam(graph.At(graph.IO, InputLookAt), graph.At("look", "to")).
		Feed("reach", "head", "in").
		ConnectParam(graph.At("head_mask", graph.OutValue), graph.At("head", "mask")).
		ConnectParam(graph.At("look", "rotation"), graph.At("head", "rotation")).
		SetOutput("head").
		Build()
}

// characterMachine idles, moves and jumps. Jumps land back in idle.
func characterMachine() assets.MachineDef {
	return assets.MachineDef{
		Start: StateIdle,
		States: []assets.StateDef{
			{ID: StateIdle, Graph: GraphIdleLoop},
			{ID: StateMove, Graph: GraphLocomotion},
			{ID: StateJump, Graph: GraphJump},
		},
		Transitions: []assets.TransitionDef{
			{ID: "start_moving", Source: StateIdle, Target: StateMove, Trigger: EventMove, Duration: 0.25, Graph: GraphCrossfade},
			{ID: "stop_moving", Source: StateMove, Target: StateIdle, Trigger: EventStop, Duration: 0.3, Graph: GraphCrossfade},
			{ID: "jump_from_idle", Source: StateIdle, Target: StateJump, Trigger: EventJump, Duration: 0.1, Graph: GraphCrossfade},
			{ID: "jump_from_move", Source: StateMove, Target: StateJump, Trigger: EventJump, Duration: 0.1, Graph: GraphCrossfade},
			{ID: "land", Source: StateJump, Target: StateIdle, Trigger: EventLanded, Duration: 0.2, Graph: GraphCrossfade},
		},
	}
}
