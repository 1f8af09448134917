package value

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/vk/animgraph/internal/pose"
)

// Kind is the closed set of value types a pin can carry.
type Kind int

const (
	KindInvalid Kind = iota
	KindFloat
	KindBool
	KindVector3
	KindQuaternion
	KindPose
	KindBoneMask
	KindEntityPath
	KindEventQueue
	KindTime
)

var kindNames = map[Kind]string{
	KindInvalid:    "invalid",
	KindFloat:      "float",
	KindBool:       "bool",
	KindVector3:    "vec3",
	KindQuaternion: "quat",
	KindPose:       "pose",
	KindBoneMask:   "bone_mask",
	KindEntityPath: "entity_path",
	KindEventQueue: "event_queue",
	KindTime:       "time",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a kind name (as printed by String) back to a Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s && k != KindInvalid {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("unknown value kind %q", s)
}

// IsParameter reports whether values of k may flow on parameter edges.
func (k Kind) IsParameter() bool {
	return k != KindInvalid && k != KindPose && k != KindTime
}

// Value is a tagged union over Kind. The zero Value is invalid. Values are
// immutable: accessors return copies of reference data.
type Value struct {
	kind Kind

	num    float64
	flag   bool
	vec    mgl64.Vec3
	quat   mgl64.Quat
	pose   *pose.Pose
	mask   pose.BoneMask
	path   pose.EntityPath
	events EventQueue
}

func Float(f float64) Value         { return Value{kind: KindFloat, num: f} }
func Bool(b bool) Value             { return Value{kind: KindBool, flag: b} }
func Vector3(v mgl64.Vec3) Value    { return Value{kind: KindVector3, vec: v} }
func Quaternion(q mgl64.Quat) Value { return Value{kind: KindQuaternion, quat: q} }
func Path(p pose.EntityPath) Value  { return Value{kind: KindEntityPath, path: p} }

// Time is the unit token carried by time pins.
func Time() Value { return Value{kind: KindTime} }

// Pose wraps a copy of p.
func Pose(p *pose.Pose) Value { return Value{kind: KindPose, pose: p.Clone()} }

// Mask wraps a copy of m.
func Mask(m pose.BoneMask) Value { return Value{kind: KindBoneMask, mask: m.Clone()} }

// Events wraps a copy of q.
func Events(q EventQueue) Value { return Value{kind: KindEventQueue, events: q.Clone()} }

// Zero returns the zero value of kind k: 0, false, the zero vector, the
// identity rotation, an empty pose, mask, path or queue.
func Zero(k Kind) Value {
	switch k {
	case KindFloat:
		return Float(0)
	case KindBool:
		return Bool(false)
	case KindVector3:
		return Vector3(mgl64.Vec3{})
	case KindQuaternion:
		return Quaternion(mgl64.QuatIdent())
	case KindPose:
		return Pose(pose.New(0))
	case KindBoneMask:
		return Mask(pose.BoneMask{})
	case KindEntityPath:
		return Path("")
	case KindEventQueue:
		return Events(nil)
	case KindTime:
		return Time()
	}
	return Value{}
}

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// AsFloat returns the float payload. Non-float values yield NaN and false.
func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindFloat {
		return math.NaN(), false
	}
	return v.num, true
}

func (v Value) AsBool() (bool, bool) { return v.flag, v.kind == KindBool }

func (v Value) AsVector3() (mgl64.Vec3, bool) { return v.vec, v.kind == KindVector3 }

func (v Value) AsQuaternion() (mgl64.Quat, bool) {
	if v.kind != KindQuaternion {
		return mgl64.QuatIdent(), false
	}
	return v.quat, true
}

func (v Value) AsPose() (*pose.Pose, bool) {
	if v.kind != KindPose {
		return nil, false
	}
	return v.pose.Clone(), true
}

func (v Value) AsMask() (pose.BoneMask, bool) {
	if v.kind != KindBoneMask {
		return nil, false
	}
	return v.mask.Clone(), true
}

func (v Value) AsPath() (pose.EntityPath, bool) { return v.path, v.kind == KindEntityPath }

func (v Value) AsEvents() (EventQueue, bool) {
	if v.kind != KindEventQueue {
		return nil, false
	}
	return v.events.Clone(), true
}

func (v Value) String() string {
	switch v.kind {
	case KindFloat:
		return fmt.Sprintf("%g", v.num)
	case KindBool:
		return fmt.Sprintf("%t", v.flag)
	case KindVector3:
		return fmt.Sprintf("(%g, %g, %g)", v.vec[0], v.vec[1], v.vec[2])
	case KindQuaternion:
		return fmt.Sprintf("quat(%g; %g, %g, %g)", v.quat.W, v.quat.V[0], v.quat.V[1], v.quat.V[2])
	case KindPose:
		return fmt.Sprintf("pose(%d bones @ %g)", v.pose.Len(), v.pose.Timestamp)
	case KindBoneMask:
		return fmt.Sprintf("mask(%d bones)", len(v.mask))
	case KindEntityPath:
		return fmt.Sprintf("path(%s)", v.path)
	case KindEventQueue:
		return fmt.Sprintf("events%v", v.events.Names())
	case KindTime:
		return "time"
	}
	return "invalid"
}
