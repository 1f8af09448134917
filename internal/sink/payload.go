package sink

import (
	"github.com/vk/animgraph/internal/value"
)

// BonePayload is the wire form of one bone: translation, rotation as
// x, y, z, w, and scale.
type BonePayload struct {
	Path        string     `json:"path"`
	Translation [3]float64 `json:"t"`
	Rotation    [4]float64 `json:"r"`
	Scale       [3]float64 `json:"s"`
}

// FramePayload is the wire form of a Frame.
type FramePayload struct {
	Character string         `json:"character"`
	Frame     int            `json:"frame"`
	Time      float64        `json:"time"`
	Bones     []BonePayload  `json:"bones"`
	Outputs   map[string]any `json:"outputs,omitempty"`
	Degraded  []string       `json:"degraded,omitempty"`
}

// Payload converts f into its wire form.
func Payload(f Frame) FramePayload {
	out := FramePayload{Character: f.Character, Frame: f.Index, Time: f.Time, Bones: []BonePayload{}}
	if f.Pose != nil {
		for _, b := range f.Pose.Bones() {
			q := b.Transform.Rotation
			out.Bones = append(out.Bones, BonePayload{
				Path:        string(b.Path),
				Translation: b.Transform.Translation,
				Rotation:    [4]float64{q.V[0], q.V[1], q.V[2], q.W},
				Scale:       b.Transform.Scale,
			})
		}
	}
	if len(f.Outputs) > 0 {
		out.Outputs = make(map[string]any, len(f.Outputs))
		for k, v := range f.Outputs {
			out.Outputs[k] = outputValue(v)
		}
	}
	for _, d := range f.Diagnostics {
		out.Degraded = append(out.Degraded, d.Error())
	}
	return out
}

func outputValue(v value.Value) any {
	switch v.Kind() {
	case value.KindFloat:
		f, _ := v.AsFloat()
		return f
	case value.KindBool:
		b, _ := v.AsBool()
		return b
	case value.KindVector3:
		vec, _ := v.AsVector3()
		return [3]float64(vec)
	case value.KindQuaternion:
		q, _ := v.AsQuaternion()
		return [4]float64{q.V[0], q.V[1], q.V[2], q.W}
	case value.KindEntityPath:
		p, _ := v.AsPath()
		return string(p)
	case value.KindEventQueue:
		q, _ := v.AsEvents()
		return q.Names()
	case value.KindBoneMask:
		m, _ := v.AsMask()
		out := make(map[string]float64, len(m))
		for k, w := range m {
			out[string(k)] = w
		}
		return out
	}
	return v.Kind().String()
}
