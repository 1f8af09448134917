package engine

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/vk/animgraph/internal/graph"
	"github.com/vk/animgraph/internal/ik"
	"github.com/vk/animgraph/internal/pose"
	"github.com/vk/animgraph/internal/value"
)

// Arithmetic follows IEEE-754: division by zero yields an infinity and NaN
// operands propagate.

func floatOp(op graph.MathOp, a, b float64) float64 {
	switch op {
	case graph.MathAdd:
		return a + b
	case graph.MathSub:
		return a - b
	case graph.MathMul:
		return a * b
	case graph.MathDiv:
		return a / b
	case graph.MathAbs:
		return math.Abs(a)
	}
	return math.NaN()
}

func clampFloat(x, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, x)) }

func (f *frame) mathOutput(n *graph.Node, d graph.MathData) (value.Value, error) {
	a, err := f.param(n, "a")
	if err != nil {
		return value.Value{}, err
	}
	var b value.Value
	var lo, hi float64
	switch d.Op {
	case graph.MathAbs:
	case graph.MathClamp:
		if lo, err = f.float(n, "min"); err != nil {
			return value.Value{}, err
		}
		if hi, err = f.float(n, "max"); err != nil {
			return value.Value{}, err
		}
	default:
		if b, err = f.param(n, "b"); err != nil {
			return value.Value{}, err
		}
	}

	if d.Type == value.KindVector3 {
		av, _ := a.AsVector3()
		bv, _ := b.AsVector3()
		var out mgl64.Vec3
		for i := range out {
			if d.Op == graph.MathClamp {
				out[i] = clampFloat(av[i], lo, hi)
			} else {
				out[i] = floatOp(d.Op, av[i], bv[i])
			}
		}
		return value.Vector3(out), nil
	}
	af, _ := a.AsFloat()
	if d.Op == graph.MathClamp {
		return value.Float(clampFloat(af, lo, hi)), nil
	}
	bf, _ := b.AsFloat()
	return value.Float(floatOp(d.Op, af, bf)), nil
}

// compareOutput uses Go's float comparisons, so every comparison involving
// NaN is false except !=.
func (f *frame) compareOutput(n *graph.Node, d graph.CompareData) (value.Value, error) {
	a, err := f.float(n, "a")
	if err != nil {
		return value.Value{}, err
	}
	b, err := f.float(n, "b")
	if err != nil {
		return value.Value{}, err
	}
	var r bool
	switch d.Op {
	case graph.CompareLess:
		r = a < b
	case graph.CompareLessEqual:
		r = a <= b
	case graph.CompareGreater:
		r = a > b
	case graph.CompareGreaterEqual:
		r = a >= b
	case graph.CompareEqual:
		r = a == b
	case graph.CompareNotEqual:
		r = a != b
	}
	return value.Bool(r), nil
}

func (f *frame) selectOutput(n *graph.Node) (value.Value, error) {
	cond, err := f.boolean(n, "cond")
	if err != nil {
		return value.Value{}, err
	}
	if cond {
		return f.param(n, "a")
	}
	return f.param(n, "b")
}

func (f *frame) fireEventOutput(n *graph.Node, d graph.FireEventData) (value.Value, error) {
	on, err := f.boolean(n, "condition")
	if err != nil {
		return value.Value{}, err
	}
	if !on {
		return value.Events(nil), nil
	}
	return value.Events(value.EventQueue{{Name: d.Event, Weight: 1}}), nil
}

func (f *frame) mergeEventsOutput(n *graph.Node) (value.Value, error) {
	a, err := f.events(n, "a")
	if err != nil {
		return value.Value{}, err
	}
	b, err := f.events(n, "b")
	if err != nil {
		return value.Value{}, err
	}
	return value.Events(value.Merge(a, b)), nil
}

func (f *frame) rotationArcOutput(n *graph.Node) (value.Value, error) {
	from, err := f.param(n, "from")
	if err != nil {
		return value.Value{}, err
	}
	to, err := f.param(n, "to")
	if err != nil {
		return value.Value{}, err
	}
	a, _ := from.AsVector3()
	b, _ := to.AsVector3()
	return value.Quaternion(ik.Arc(a, b)), nil
}

func (f *frame) vector(n *graph.Node, pin string) (mgl64.Vec3, error) {
	v, err := f.param(n, pin)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	x, _ := v.AsVector3()
	return x, nil
}

func (f *frame) rotation(n *graph.Node, pin string) (mgl64.Quat, error) {
	v, err := f.param(n, pin)
	if err != nil {
		return mgl64.Quat{}, err
	}
	q, _ := v.AsQuaternion()
	return q, nil
}

func (f *frame) vec3Output(n *graph.Node, d graph.Vec3Data, pin string) (value.Value, error) {
	switch d.Op {
	case graph.Vec3FromFloats:
		var out mgl64.Vec3
		for i, name := range []string{"x", "y", "z"} {
			x, err := f.float(n, name)
			if err != nil {
				return value.Value{}, err
			}
			out[i] = x
		}
		return value.Vector3(out), nil
	case graph.Vec3Lerp:
		a, err := f.vector(n, "a")
		if err != nil {
			return value.Value{}, err
		}
		b, err := f.vector(n, "b")
		if err != nil {
			return value.Value{}, err
		}
		t, err := f.float(n, "factor")
		if err != nil {
			return value.Value{}, err
		}
		return value.Vector3(pose.LerpVec(a, b, t)), nil
	}

	v, err := f.vector(n, "in")
	if err != nil {
		return value.Value{}, err
	}
	switch d.Op {
	case graph.Vec3IntoFloats:
		switch pin {
		case "y":
			return value.Float(v.Y()), nil
		case "z":
			return value.Float(v.Z()), nil
		}
		return value.Float(v.X()), nil
	case graph.Vec3Length:
		return value.Float(v.Len()), nil
	}
	if l := v.Len(); l > 0 {
		return value.Vector3(v.Mul(1 / l)), nil
	}
	return value.Vector3(mgl64.Vec3{}), nil
}

func (f *frame) quatOutput(n *graph.Node, d graph.QuatData) (value.Value, error) {
	switch d.Op {
	case graph.QuatMul, graph.QuatSlerp:
		a, err := f.rotation(n, "a")
		if err != nil {
			return value.Value{}, err
		}
		b, err := f.rotation(n, "b")
		if err != nil {
			return value.Value{}, err
		}
		if d.Op == graph.QuatMul {
			return value.Quaternion(a.Mul(b).Normalize()), nil
		}
		t, err := f.float(n, "factor")
		if err != nil {
			return value.Value{}, err
		}
		return value.Quaternion(pose.Slerp(a, b, t)), nil
	case graph.QuatFromEuler:
		e, err := f.vector(n, "euler")
		if err != nil {
			return value.Value{}, err
		}
		return value.Quaternion(pose.FromEuler(e, d.Order)), nil
	}

	q, err := f.rotation(n, "in")
	if err != nil {
		return value.Value{}, err
	}
	if d.Op == graph.QuatIntoEuler {
		return value.Vector3(pose.ToEuler(q, d.Order)), nil
	}
	return value.Quaternion(q.Inverse()), nil
}
