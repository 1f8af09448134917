package graph

import (
	"fmt"

	"github.com/vk/animgraph/internal/value"
)

// CustomQuery names the question a custom node is asked.
type CustomQuery int

const (
	QueryDuration CustomQuery = iota
	QueryTime
	QueryPose
	QueryParameter
)

func (q CustomQuery) String() string {
	switch q {
	case QueryDuration:
		return "duration"
	case QueryTime:
		return "time"
	case QueryPose:
		return "pose"
	case QueryParameter:
		return "parameter"
	}
	return fmt.Sprintf("CustomQuery(%d)", int(q))
}

// CustomRequest carries a custom node's resolved inputs for one query.
//
// For pose and parameter queries Inputs holds every input, with pose inputs
// as Pose values sampled at Time. For duration and time queries Inputs holds
// only the parameter inputs; Durations and Times hold what each pose input
// reports instead (Times only for time queries, queried at Time).
type CustomRequest struct {
	Kind      CustomQuery
	Time      float64
	Inputs    map[string]value.Value
	Durations map[string]float64
	Times     map[string]float64
}

// Custom is the extension contract for node kinds outside the built-in set.
// A custom node with a pose output returns it under OutPose as a Pose value.
//
// Unless it implements CustomTimed, a custom pose node reports the duration
// and time of its first pose input, or an infinite duration and the queried
// time when it has none.
type Custom interface {
	Spec() NodeSpec
	Evaluate(req CustomRequest) (map[string]value.Value, error)
}

// CustomTimed is implemented by custom nodes that change playback time.
type CustomTimed interface {
	Custom
	Duration(req CustomRequest) (float64, error)
	TimeAt(req CustomRequest) (float64, error)
}

// CustomFunc adapts a spec and a function to Custom.
type CustomFunc struct {
	Pins NodeSpec
	Fn   func(req CustomRequest) (map[string]value.Value, error)
}

func (c CustomFunc) Spec() NodeSpec { return c.Pins }

func (c CustomFunc) Evaluate(req CustomRequest) (map[string]value.Value, error) {
	return c.Fn(req)
}

// PoseInput declares a pose input pin for custom specs.
func PoseInput(name string) PinSpec { return poseIn(name) }

// ParamInput declares a parameter input pin with a default.
func ParamInput(name string, def value.Value) PinSpec { return param(name, def) }

// ParamOutput declares a parameter output pin.
func ParamOutput(name string, kind value.Kind) PinSpec { return paramOut(name, kind) }

// PoseOutputs returns the standard pose and time output pins.
func PoseOutputs() []PinSpec { return append([]PinSpec(nil), poseOutputs...) }
