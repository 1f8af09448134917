package runconfig

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/vk/animgraph/internal/pose"
	"github.com/vk/animgraph/internal/value"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ToValue converts an HCL value into a parameter value of the given kind.
//
//	float         number
//	bool          bool
//	vec3          [x, y, z]
//	quat          [x, y, z, w], normalized
//	entity_path   "Hips/Spine"
//	bone_mask     { "Hips/Spine" = 0.5 }
//	event_queue   ["jump", "land"]
func ToValue(v cty.Value, kind value.Kind) (value.Value, error) {
	if v.IsNull() {
		return value.Value{}, errors.New("value is null")
	}
	if !v.IsWhollyKnown() {
		return value.Value{}, errors.New("value is not known")
	}
	switch kind {
	case value.KindFloat:
		var f float64
		if err := decodeAs(v, cty.Number, &f); err != nil {
			return value.Value{}, err
		}
		return value.Float(f), nil
	case value.KindBool:
		var b bool
		if err := decodeAs(v, cty.Bool, &b); err != nil {
			return value.Value{}, err
		}
		return value.Bool(b), nil
	case value.KindVector3:
		xs, err := numbers(v, 3)
		if err != nil {
			return value.Value{}, err
		}
		return value.Vector3(mgl64.Vec3{xs[0], xs[1], xs[2]}), nil
	case value.KindQuaternion:
		xs, err := numbers(v, 4)
		if err != nil {
			return value.Value{}, err
		}
		q := mgl64.Quat{W: xs[3], V: mgl64.Vec3{xs[0], xs[1], xs[2]}}
		if q.Len() == 0 {
			return value.Value{}, errors.New("quaternion has zero length")
		}
		return value.Quaternion(q.Normalize()), nil
	case value.KindEntityPath:
		var s string
		if err := decodeAs(v, cty.String, &s); err != nil {
			return value.Value{}, err
		}
		return value.Path(pose.EntityPath(s)), nil
	case value.KindBoneMask:
		var m map[string]float64
		if err := decodeAs(v, cty.Map(cty.Number), &m); err != nil {
			return value.Value{}, err
		}
		mask := make(pose.BoneMask, len(m))
		for k, w := range m {
			mask[pose.EntityPath(k)] = w
		}
		return value.Mask(mask), nil
	case value.KindEventQueue:
		var names []string
		if err := decodeAs(v, cty.List(cty.String), &names); err != nil {
			return value.Value{}, err
		}
		q := make(value.EventQueue, len(names))
		for i, n := range names {
			q[i] = value.Event{Name: n, Weight: 1}
		}
		return value.Events(q), nil
	}
	return value.Value{}, fmt.Errorf("%s is not a host input kind", kind)
}

func decodeAs(v cty.Value, ty cty.Type, out any) error {
	converted, err := convert.Convert(v, ty)
	if err != nil {
		return fmt.Errorf("want %s: %w", ty.FriendlyName(), err)
	}
	if err := gocty.FromCtyValue(converted, out); err != nil {
		return fmt.Errorf("want %s: %w", ty.FriendlyName(), err)
	}
	return nil
}

func numbers(v cty.Value, n int) ([]float64, error) {
	var xs []float64
	if err := decodeAs(v, cty.List(cty.Number), &xs); err != nil {
		return nil, err
	}
	if len(xs) != n {
		return nil, fmt.Errorf("want %d numbers, got %d", n, len(xs))
	}
	return xs, nil
}

// InputValues converts an inputs object. kindOf reports the kind each named
// input expects.
func InputValues(inputs cty.Value, kindOf func(name string) (value.Kind, bool)) (map[string]value.Value, error) {
	out := make(map[string]value.Value)
	if inputs.IsNull() {
		return out, nil
	}
	if !inputs.CanIterateElements() {
		return nil, fmt.Errorf("inputs must be an object, got %s", inputs.Type().FriendlyName())
	}
	raw := inputs.AsValueMap()
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		kind, ok := kindOf(name)
		if !ok {
			return nil, fmt.Errorf("input %q is not declared by the graph", name)
		}
		v, err := ToValue(raw[name], kind)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}
