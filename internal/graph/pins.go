package graph

import (
	"fmt"

	"github.com/vk/animgraph/internal/value"
)

// PinKind separates the three edge namespaces.
type PinKind int

const (
	PosePin PinKind = iota
	ParameterPin
	TimePin
)

func (k PinKind) String() string {
	switch k {
	case PosePin:
		return "pose"
	case ParameterPin:
		return "parameter"
	case TimePin:
		return "time"
	}
	return fmt.Sprintf("PinKind(%d)", int(k))
}

// Well-known output pin names.
const (
	OutPose   = "pose"
	OutTime   = "time"
	OutValue  = "out"
	OutEvents = "events"
)

// PinSpec declares one pin. Default applies to parameter inputs; an input
// without a valid Default is required.
type PinSpec struct {
	Name    string
	Kind    PinKind
	Type    value.Kind
	Default value.Value
}

// Required reports whether an unconnected input is an error at evaluation.
func (p PinSpec) Required() bool {
	return p.Kind == PosePin || (p.Kind == ParameterPin && !p.Default.IsValid())
}

// Fallback is the value an unconnected parameter input reads: its default,
// or the zero value of its kind for required inputs.
func (p PinSpec) Fallback() value.Value {
	if p.Default.IsValid() {
		return p.Default
	}
	return value.Zero(p.Type)
}

func (p PinSpec) String() string {
	if p.Kind == ParameterPin {
		return fmt.Sprintf("%s:%s", p.Name, p.Type)
	}
	return fmt.Sprintf("%s:%s", p.Name, p.Kind)
}

// NodeSpec lists a node's pins. An Open spec accepts any pin; it describes
// nested graphs that are only resolved at evaluation time.
type NodeSpec struct {
	Inputs  []PinSpec
	Outputs []PinSpec
	Open    bool
}

// Input looks up an input pin by name.
func (s NodeSpec) Input(name string) (PinSpec, bool) { return find(s.Inputs, name) }

// Output looks up an output pin by name.
func (s NodeSpec) Output(name string) (PinSpec, bool) { return find(s.Outputs, name) }

// ProducesPose reports whether the node has a pose output.
func (s NodeSpec) ProducesPose() bool {
	p, ok := s.Output(OutPose)
	return ok && p.Kind == PosePin
}

func find(pins []PinSpec, name string) (PinSpec, bool) {
	for _, p := range pins {
		if p.Name == name {
			return p, true
		}
	}
	return PinSpec{}, false
}

func poseIn(name string) PinSpec { return PinSpec{Name: name, Kind: PosePin, Type: value.KindPose} }

func param(name string, def value.Value) PinSpec {
	return PinSpec{Name: name, Kind: ParameterPin, Type: def.Kind(), Default: def}
}

func required(name string, kind value.Kind) PinSpec {
	return PinSpec{Name: name, Kind: ParameterPin, Type: kind}
}

func paramOut(name string, kind value.Kind) PinSpec {
	return PinSpec{Name: name, Kind: ParameterPin, Type: kind}
}

var poseOutputs = []PinSpec{
	{Name: OutPose, Kind: PosePin, Type: value.KindPose},
	{Name: OutTime, Kind: TimePin, Type: value.KindTime},
}

func poseSpec(inputs ...PinSpec) NodeSpec {
	return NodeSpec{Inputs: inputs, Outputs: poseOutputs}
}

// SpecOf returns the pins of n.
func SpecOf(n *Node) NodeSpec {
	switch d := n.Data.(type) {
	case ClipData:
		return NodeSpec{Outputs: append(poseOutputs[:len(poseOutputs):len(poseOutputs)], paramOut(OutEvents, value.KindEventQueue))}
	case ChainData:
		return poseSpec(poseIn("a"), poseIn("b"))
	case LoopData:
		return poseSpec(poseIn("in"))
	case SpeedData:
		return poseSpec(poseIn("in"), param("speed", value.Float(1)))
	case BlendData:
		return poseSpec(poseIn("a"), poseIn("b"), param("factor", value.Float(0.5)))
	case FlipLRData:
		return poseSpec(poseIn("in"))
	case RotationData:
		return poseSpec(poseIn("in"),
			param("mask", value.Zero(value.KindBoneMask)),
			param("rotation", value.Zero(value.KindQuaternion)))
	case RotationArcData:
		return NodeSpec{
			Inputs: []PinSpec{
				param("from", value.Zero(value.KindVector3)),
				param("to", value.Zero(value.KindVector3)),
			},
			Outputs: []PinSpec{paramOut("rotation", value.KindQuaternion)},
		}
	case BlendSpaceData:
		var ins []PinSpec
		if d.Space != nil {
			for _, p := range d.Space.Points {
				ins = append(ins, poseIn(p.ID))
			}
		}
		return poseSpec(append(ins, param("position", value.Zero(value.KindVector3)))...)
	case GraphData:
		if d.Graph == nil {
			return NodeSpec{Outputs: poseOutputs, Open: true}
		}
		return d.Graph.Interface()
	case StateMachineData:
		if d.Machine == nil {
			return NodeSpec{Outputs: poseOutputs, Open: true}
		}
		return d.Machine.Interface()
	case TwoBoneIKData:
		return poseSpec(poseIn("in"),
			required("target_path", value.KindEntityPath),
			param("target_position", value.Zero(value.KindVector3)),
			param("target_rotation", value.Zero(value.KindQuaternion)),
			param("use_target_rotation", value.Bool(false)))
	case ExtendSkeletonData:
		return poseSpec(poseIn("in"))
	case ConstData:
		return NodeSpec{Outputs: []PinSpec{paramOut(OutValue, d.Value.Kind())}}
	case MathData:
		return mathSpec(d)
	case CompareData:
		return NodeSpec{
			Inputs:  []PinSpec{param("a", value.Float(0)), param("b", value.Float(0))},
			Outputs: []PinSpec{paramOut(OutValue, value.KindBool)},
		}
	case SelectData:
		return NodeSpec{
			Inputs: []PinSpec{
				param("cond", value.Bool(false)),
				param("a", value.Zero(d.Type)),
				param("b", value.Zero(d.Type)),
			},
			Outputs: []PinSpec{paramOut(OutValue, d.Type)},
		}
	case FireEventData:
		return NodeSpec{
			Inputs:  []PinSpec{param("condition", value.Bool(true))},
			Outputs: []PinSpec{paramOut(OutEvents, value.KindEventQueue)},
		}
	case MergeEventsData:
		return NodeSpec{
			Inputs: []PinSpec{
				param("a", value.Zero(value.KindEventQueue)),
				param("b", value.Zero(value.KindEventQueue)),
			},
			Outputs: []PinSpec{paramOut(OutEvents, value.KindEventQueue)},
		}
	case Vec3Data:
		return vec3Spec(d)
	case QuatData:
		return quatSpec(d)
	case EventMarkupData:
		return NodeSpec{
			Inputs:  []PinSpec{poseIn("in"), param(OutEvents, value.Zero(value.KindEventQueue))},
			Outputs: append(poseOutputs[:len(poseOutputs):len(poseOutputs)], paramOut(OutEvents, value.KindEventQueue)),
		}
	case CustomData:
		if d.Impl == nil {
			return NodeSpec{}
		}
		return d.Impl.Spec()
	}
	return NodeSpec{}
}

func mathSpec(d MathData) NodeSpec {
	out := NodeSpec{Outputs: []PinSpec{paramOut(OutValue, d.Type)}}
	zero := value.Zero(d.Type)
	switch d.Op {
	case MathAbs:
		out.Inputs = []PinSpec{param("a", zero)}
	case MathClamp:
		out.Inputs = []PinSpec{param("a", zero), param("min", value.Float(0)), param("max", value.Float(1))}
	case MathMul, MathDiv:
		one := value.Float(1)
		if d.Type == value.KindVector3 {
			one = value.Vector3([3]float64{1, 1, 1})
		}
		out.Inputs = []PinSpec{param("a", zero), param("b", one)}
	default:
		out.Inputs = []PinSpec{param("a", zero), param("b", zero)}
	}
	return out
}

func vec3Spec(d Vec3Data) NodeSpec {
	vec := value.Zero(value.KindVector3)
	switch d.Op {
	case Vec3FromFloats:
		return NodeSpec{
			Inputs:  []PinSpec{param("x", value.Float(0)), param("y", value.Float(0)), param("z", value.Float(0))},
			Outputs: []PinSpec{paramOut(OutValue, value.KindVector3)},
		}
	case Vec3IntoFloats:
		return NodeSpec{
			Inputs: []PinSpec{param("in", vec)},
			Outputs: []PinSpec{
				paramOut("x", value.KindFloat),
				paramOut("y", value.KindFloat),
				paramOut("z", value.KindFloat),
			},
		}
	case Vec3Length:
		return NodeSpec{Inputs: []PinSpec{param("in", vec)}, Outputs: []PinSpec{paramOut(OutValue, value.KindFloat)}}
	case Vec3Lerp:
		return NodeSpec{
			Inputs:  []PinSpec{param("a", vec), param("b", vec), param("factor", value.Float(0.5))},
			Outputs: []PinSpec{paramOut(OutValue, value.KindVector3)},
		}
	}
	return NodeSpec{Inputs: []PinSpec{param("in", vec)}, Outputs: []PinSpec{paramOut(OutValue, value.KindVector3)}}
}

func quatSpec(d QuatData) NodeSpec {
	rot := value.Zero(value.KindQuaternion)
	out := []PinSpec{paramOut(OutValue, value.KindQuaternion)}
	switch d.Op {
	case QuatMul:
		return NodeSpec{Inputs: []PinSpec{param("a", rot), param("b", rot)}, Outputs: out}
	case QuatSlerp:
		return NodeSpec{Inputs: []PinSpec{param("a", rot), param("b", rot), param("factor", value.Float(0.5))}, Outputs: out}
	case QuatFromEuler:
		return NodeSpec{Inputs: []PinSpec{param("euler", value.Zero(value.KindVector3))}, Outputs: out}
	case QuatIntoEuler:
		return NodeSpec{Inputs: []PinSpec{param("in", rot)}, Outputs: []PinSpec{paramOut("euler", value.KindVector3)}}
	}
	return NodeSpec{Inputs: []PinSpec{param("in", rot)}, Outputs: out}
}
