package graph

import (
	"fmt"

	"github.com/vk/animgraph/internal/blendspace"
	"github.com/vk/animgraph/internal/pose"
	"github.com/vk/animgraph/internal/value"
)

// NodeKind enumerates the built-in node variants plus the custom extension.
type NodeKind int

const (
	KindClip NodeKind = iota
	KindChain
	KindLoop
	KindSpeed
	KindBlend
	KindFlipLR
	KindRotation
	KindRotationArc
	KindBlendSpace
	KindGraph
	KindStateMachine
	KindTwoBoneIK
	KindExtendSkeleton
	KindConst
	KindMath
	KindCompare
	KindSelect
	KindFireEvent
	KindMergeEvents
	KindVec3
	KindQuat
	KindEventMarkup
	KindCustom
)

var nodeKindNames = [...]string{
	KindClip:           "clip",
	KindChain:          "chain",
	KindLoop:           "loop",
	KindSpeed:          "speed",
	KindBlend:          "blend",
	KindFlipLR:         "flip_lr",
	KindRotation:       "rotation",
	KindRotationArc:    "rotation_arc",
	KindBlendSpace:     "blend_space",
	KindGraph:          "graph",
	KindStateMachine:   "state_machine",
	KindTwoBoneIK:      "two_bone_ik",
	KindExtendSkeleton: "extend_skeleton",
	KindConst:          "const",
	KindMath:           "math",
	KindCompare:        "compare",
	KindSelect:         "select",
	KindFireEvent:      "fire_event",
	KindMergeEvents:    "merge_events",
	KindVec3:           "vec3",
	KindQuat:           "quat",
	KindEventMarkup:    "event_markup",
	KindCustom:         "custom",
}

func (k NodeKind) String() string {
	if k >= 0 && int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// Node is a named vertex of a graph.
type Node struct {
	Name string
	Data NodeData
}

// Kind returns the node's variant.
func (n *Node) Kind() NodeKind { return n.Data.Kind() }

func (n *Node) clone() *Node {
	return &Node{Name: n.Name, Data: n.Data.cloneData()}
}

// NodeData is the closed set of node variants. Only types in this package
// implement it; new behaviour plugs in through CustomData.
type NodeData interface {
	Kind() NodeKind
	cloneData() NodeData
}

// ClipData samples an animation clip. ClipID is kept for diagnostics.
type ClipData struct {
	ClipID string
	Clip   *pose.Clip
}

// ChainData plays input "a" then input "b".
type ChainData struct {
	InterpolationPeriod float64
}

// LoopData repeats input "in" forever.
type LoopData struct {
	InterpolationPeriod float64
}

// SpeedData rescales the time of input "in" by parameter "speed".
type SpeedData struct{}

// BlendData interpolates inputs "a" and "b" by parameter "factor".
type BlendData struct{}

// FlipLRData mirrors input "in".
type FlipLRData struct {
	Mirror pose.Mirror
}

// RotationMode selects how Rotation combines with the existing rotation.
type RotationMode int

const (
	RotationCompose RotationMode = iota
	RotationReplace
)

func (m RotationMode) String() string {
	if m == RotationReplace {
		return "replace"
	}
	return "compose"
}

// RotationData rotates the bones of input "in" selected by "mask".
type RotationData struct {
	Mode RotationMode
}

// RotationArcData outputs the shortest rotation from "from" onto "to".
type RotationArcData struct{}

// BlendSpaceData interpolates one pose input per point of Space.
type BlendSpaceData struct {
	Space *blendspace.Space
	Sync  blendspace.SyncMode
}

// GraphData nests a graph. When Graph is nil, Ref names a graph the engine
// resolves at evaluation time.
type GraphData struct {
	Ref   string
	Graph *Graph
}

// StateMachineData runs a state machine.
type StateMachineData struct {
	Ref     string
	Machine *StateMachine
}

// TwoBoneIKData solves the chain ending at parameter "target_path".
type TwoBoneIKData struct{}

// ExtendSkeletonData fills the bones of Skeleton missing from input "in".
type ExtendSkeletonData struct {
	SkeletonID string
	Skeleton   *pose.Skeleton
}

// ConstData outputs Value on "out".
type ConstData struct {
	Value value.Value
}

// MathOp is an arithmetic operation.
type MathOp int

const (
	MathAdd MathOp = iota
	MathSub
	MathMul
	MathDiv
	MathClamp
	MathAbs
)

var mathOpNames = [...]string{"add", "sub", "mul", "div", "clamp", "abs"}

func (o MathOp) String() string {
	if o >= 0 && int(o) < len(mathOpNames) {
		return mathOpNames[o]
	}
	return fmt.Sprintf("MathOp(%d)", int(o))
}

// ParseMathOp maps a name back to a MathOp.
func ParseMathOp(s string) (MathOp, error) {
	for i, name := range mathOpNames {
		if name == s {
			return MathOp(i), nil
		}
	}
	return 0, fmt.Errorf("unknown math op %q", s)
}

// MathData applies Op to Float or Vector3 operands. Clamp bounds are Floats.
type MathData struct {
	Op   MathOp
	Type value.Kind
}

// CompareOp is a float comparison.
type CompareOp int

const (
	CompareLess CompareOp = iota
	CompareLessEqual
	CompareGreater
	CompareGreaterEqual
	CompareEqual
	CompareNotEqual
)

var compareOpNames = [...]string{"<", "<=", ">", ">=", "==", "!="}

func (o CompareOp) String() string {
	if o >= 0 && int(o) < len(compareOpNames) {
		return compareOpNames[o]
	}
	return fmt.Sprintf("CompareOp(%d)", int(o))
}

// ParseCompareOp maps a symbol back to a CompareOp.
func ParseCompareOp(s string) (CompareOp, error) {
	for i, name := range compareOpNames {
		if name == s {
			return CompareOp(i), nil
		}
	}
	return 0, fmt.Errorf("unknown compare op %q", s)
}

// CompareData compares Floats "a" and "b" into Bool "out".
type CompareData struct {
	Op CompareOp
}

// SelectData outputs "a" when "cond" is true and "b" otherwise.
type SelectData struct {
	Type value.Kind
}

// FireEventData emits Event on "events" while "condition" is true.
type FireEventData struct {
	Event string
}

// MergeEventsData concatenates "a" and "b".
type MergeEventsData struct{}

// Vec3Op is a vector operation of a Vec3Data node.
type Vec3Op int

const (
	// Vec3FromFloats packs Floats "x", "y" and "z" into "out".
	Vec3FromFloats Vec3Op = iota
	// Vec3IntoFloats splits "in" into Floats "x", "y" and "z".
	Vec3IntoFloats
	// Vec3Length outputs the Float length of "in".
	Vec3Length
	// Vec3Normalize outputs "in" scaled to unit length. A zero vector stays
	// zero.
	Vec3Normalize
	// Vec3Lerp interpolates "a" towards "b" by Float "factor".
	Vec3Lerp
)

var vec3OpNames = [...]string{"from_floats", "into_floats", "length", "normalize", "lerp"}

func (o Vec3Op) String() string {
	if o >= 0 && int(o) < len(vec3OpNames) {
		return vec3OpNames[o]
	}
	return fmt.Sprintf("Vec3Op(%d)", int(o))
}

// Vec3Data applies Op to Vector3 parameters.
type Vec3Data struct {
	Op Vec3Op
}

// QuatOp is a rotation operation of a QuatData node.
type QuatOp int

const (
	// QuatMul composes "a" then "b" as a*b.
	QuatMul QuatOp = iota
	// QuatInverse inverts "in".
	QuatInverse
	// QuatSlerp interpolates "a" towards "b" by Float "factor" along the
	// shortest arc.
	QuatSlerp
	// QuatFromEuler builds a rotation from the Vector3 of angles "euler".
	QuatFromEuler
	// QuatIntoEuler decomposes "in" into the Vector3 "euler".
	QuatIntoEuler
)

var quatOpNames = [...]string{"mul", "inverse", "slerp", "from_euler", "into_euler"}

func (o QuatOp) String() string {
	if o >= 0 && int(o) < len(quatOpNames) {
		return quatOpNames[o]
	}
	return fmt.Sprintf("QuatOp(%d)", int(o))
}

// QuatData applies Op to Quaternion parameters. Order only matters for the
// Euler conversions.
type QuatData struct {
	Op    QuatOp
	Order pose.EulerOrder
}

// EventMarkupData passes input "in" through and adds the events of Tracks,
// sampled at the input's time, to the "events" queue it reads.
type EventMarkupData struct {
	Tracks []pose.EventTrack
}

// CustomData wraps a user-supplied node implementation. Implementations are
// shared between clones and must not keep per-evaluation state.
type CustomData struct {
	Impl Custom
}

func (ClipData) Kind() NodeKind           { return KindClip }
func (ChainData) Kind() NodeKind          { return KindChain }
func (LoopData) Kind() NodeKind           { return KindLoop }
func (SpeedData) Kind() NodeKind          { return KindSpeed }
func (BlendData) Kind() NodeKind          { return KindBlend }
func (FlipLRData) Kind() NodeKind         { return KindFlipLR }
func (RotationData) Kind() NodeKind       { return KindRotation }
func (RotationArcData) Kind() NodeKind    { return KindRotationArc }
func (BlendSpaceData) Kind() NodeKind     { return KindBlendSpace }
func (GraphData) Kind() NodeKind          { return KindGraph }
func (StateMachineData) Kind() NodeKind   { return KindStateMachine }
func (TwoBoneIKData) Kind() NodeKind      { return KindTwoBoneIK }
func (ExtendSkeletonData) Kind() NodeKind { return KindExtendSkeleton }
func (ConstData) Kind() NodeKind          { return KindConst }
func (MathData) Kind() NodeKind           { return KindMath }
func (CompareData) Kind() NodeKind        { return KindCompare }
func (SelectData) Kind() NodeKind         { return KindSelect }
func (FireEventData) Kind() NodeKind      { return KindFireEvent }
func (MergeEventsData) Kind() NodeKind    { return KindMergeEvents }
func (Vec3Data) Kind() NodeKind           { return KindVec3 }
func (QuatData) Kind() NodeKind           { return KindQuat }
func (EventMarkupData) Kind() NodeKind    { return KindEventMarkup }
func (CustomData) Kind() NodeKind         { return KindCustom }

func (d ClipData) cloneData() NodeData           { return d }
func (d ChainData) cloneData() NodeData          { return d }
func (d LoopData) cloneData() NodeData           { return d }
func (d SpeedData) cloneData() NodeData          { return d }
func (d BlendData) cloneData() NodeData          { return d }
func (d FlipLRData) cloneData() NodeData         { return d }
func (d RotationData) cloneData() NodeData       { return d }
func (d RotationArcData) cloneData() NodeData    { return d }
func (d BlendSpaceData) cloneData() NodeData     { return d }
func (d TwoBoneIKData) cloneData() NodeData      { return d }
func (d ExtendSkeletonData) cloneData() NodeData { return d }
func (d ConstData) cloneData() NodeData          { return d }
func (d MathData) cloneData() NodeData           { return d }
func (d CompareData) cloneData() NodeData        { return d }
func (d SelectData) cloneData() NodeData         { return d }
func (d FireEventData) cloneData() NodeData      { return d }
func (d MergeEventsData) cloneData() NodeData    { return d }
func (d Vec3Data) cloneData() NodeData           { return d }
func (d QuatData) cloneData() NodeData           { return d }
func (d CustomData) cloneData() NodeData         { return d }

func (d GraphData) cloneData() NodeData {
	return GraphData{Ref: d.Ref, Graph: d.Graph.Clone()}
}

func (d EventMarkupData) cloneData() NodeData {
	tracks := make([]pose.EventTrack, len(d.Tracks))
	for i, tr := range d.Tracks {
		tracks[i] = pose.EventTrack{Name: tr.Name, Items: append([]pose.EventItem(nil), tr.Items...)}
	}
	return EventMarkupData{Tracks: tracks}
}

func (d StateMachineData) cloneData() NodeData {
	return StateMachineData{Ref: d.Ref, Machine: d.Machine.Clone()}
}
