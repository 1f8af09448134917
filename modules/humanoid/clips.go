package humanoid

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/vk/animgraph/internal/pose"
)

// Clip durations, in seconds.
const (
	IdleDuration   = 2.0
	WalkDuration   = 1.0
	RunDuration    = 0.6
	StrafeDuration = 0.8
	JumpDuration   = 0.8
)

// keysPerCycle is the keyframe density of the generated cycles.
const keysPerCycle = 8

func rotX(deg float64) mgl64.Quat { return mgl64.QuatRotate(mgl64.DegToRad(deg), mgl64.Vec3{1, 0, 0}) }
func rotZ(deg float64) mgl64.Quat { return mgl64.QuatRotate(mgl64.DegToRad(deg), mgl64.Vec3{0, 0, 1}) }

// times returns keysPerCycle+1 evenly spaced times over [0, d].
func times(d float64) []float64 {
	out := make([]float64, keysPerCycle+1)
	for i := range out {
		out[i] = d * float64(i) / keysPerCycle
	}
	return out
}

func rotationTrack(path pose.EntityPath, d float64, fn func(phase float64) mgl64.Quat) pose.Track {
	tr := pose.Track{Path: path}
	for _, t := range times(d) {
		tr.Rotation = append(tr.Rotation, pose.Keyframe[mgl64.Quat]{Time: t, Value: fn(t / d)})
	}
	return tr
}

func translationTrack(path pose.EntityPath, d float64, fn func(phase float64) mgl64.Vec3) pose.Track {
	tr := pose.Track{Path: path}
	for _, t := range times(d) {
		tr.Translation = append(tr.Translation, pose.Keyframe[mgl64.Vec3]{Time: t, Value: fn(t / d)})
	}
	return tr
}

// withRest gives a rotation-only track the rest translation of its bone so
// that sampling it does not collapse the limb.
func withRest(tr pose.Track) pose.Track {
	rest, _ := RestPose().Get(tr.Path)
	tr.Translation = []pose.Keyframe[mgl64.Vec3]{{Time: 0, Value: rest.Translation}}
	return tr
}

func swing(amplitude float64, offset float64) func(float64) mgl64.Quat {
	return func(phase float64) mgl64.Quat {
		return rotX(amplitude * math.Sin(2*math.Pi*(phase+offset)))
	}
}

// gait builds a symmetric locomotion cycle: the legs swing in opposition, the
// arms counter the legs and the hips bob twice per cycle.
func gait(name string, d, legDeg, armDeg, height, bob float64) *pose.Clip {
	return &pose.Clip{
		Name:     name,
		Duration: d,
		Tracks: []pose.Track{
			translationTrack(Hips, d, func(p float64) mgl64.Vec3 {
				return mgl64.Vec3{0, height + bob*math.Cos(4*math.Pi*p), 0}
			}),
			withRest(rotationTrack(UpperLegL, d, swing(legDeg, 0))),
			withRest(rotationTrack(UpperLegR, d, swing(legDeg, 0.5))),
			withRest(rotationTrack(LowerLegL, d, func(p float64) mgl64.Quat {
				return rotX(legDeg * math.Max(0, math.Sin(2*math.Pi*p)))
			})),
			withRest(rotationTrack(LowerLegR, d, func(p float64) mgl64.Quat {
				return rotX(legDeg * math.Max(0, math.Sin(2*math.Pi*(p+0.5))))
			})),
			withRest(rotationTrack(UpperArmL, d, swing(armDeg, 0.5))),
			withRest(rotationTrack(UpperArmR, d, swing(armDeg, 0))),
		},
	}
}

// IdleClip breathes: the hips sink slightly and the chest tilts.
func IdleClip() *pose.Clip {
	d := IdleDuration
	return &pose.Clip{
		Name:     "idle",
		Duration: d,
		Tracks: []pose.Track{
			translationTrack(Hips, d, func(p float64) mgl64.Vec3 {
				return mgl64.Vec3{0, HipsHeight - 0.01*(1-math.Cos(2*math.Pi*p)), 0}
			}),
			withRest(rotationTrack(Chest, d, func(p float64) mgl64.Quat {
				return rotX(2 * math.Sin(2*math.Pi*p))
			})),
		},
	}
}

// WalkClip is one walking cycle.
func WalkClip() *pose.Clip { return gait("walk", WalkDuration, 25, 15, HipsHeight, 0.02) }

// RunClip is one running cycle, lower and with wider swings.
func RunClip() *pose.Clip { return gait("run", RunDuration, 45, 35, HipsHeight-0.05, 0.04) }

// StrafeClip side-steps to the character's left. The right strafe is its
// mirror image.
func StrafeClip() *pose.Clip {
	d := StrafeDuration
	return &pose.Clip{
		Name:     "strafe",
		Duration: d,
		Tracks: []pose.Track{
			translationTrack(Hips, d, func(p float64) mgl64.Vec3 {
				return mgl64.Vec3{0.03 * math.Sin(2*math.Pi*p), HipsHeight - 0.02, 0}
			}),
			withRest(rotationTrack(UpperLegL, d, func(p float64) mgl64.Quat {
				return rotZ(20 * math.Max(0, math.Sin(2*math.Pi*p)))
			})),
			withRest(rotationTrack(UpperLegR, d, func(p float64) mgl64.Quat {
				return rotZ(-10 * math.Max(0, math.Sin(2*math.Pi*(p+0.5))))
			})),
		},
	}
}

// JumpClip crouches, rises to JumpApex above the rest height and lands. Its
// "contact" track raises EventLanded from the last frame on.
func JumpClip() *pose.Clip {
	d := JumpDuration
	return &pose.Clip{
		Name:          "jump",
		Duration:      d,
		Interpolation: pose.InterpolationLinear,
		Tracks: []pose.Track{
			translationTrack(Hips, d, func(p float64) mgl64.Vec3 {
				return mgl64.Vec3{0, HipsHeight + JumpApex*math.Sin(math.Pi*p), 0}
			}),
			withRest(rotationTrack(UpperLegL, d, func(p float64) mgl64.Quat { return rotX(-40 * math.Sin(math.Pi*p)) })),
			withRest(rotationTrack(UpperLegR, d, func(p float64) mgl64.Quat { return rotX(-40 * math.Sin(math.Pi*p)) })),
			withRest(rotationTrack(LowerLegL, d, func(p float64) mgl64.Quat { return rotX(70 * math.Sin(math.Pi*p)) })),
			withRest(rotationTrack(LowerLegR, d, func(p float64) mgl64.Quat { return rotX(70 * math.Sin(math.Pi*p)) })),
		},
		Events: []pose.EventTrack{{
			Name:  "contact",
			Items: []pose.EventItem{{Event: EventLanded, Start: d, End: math.Inf(1)}},
		}},
	}
}

// JumpApex is the height the jump lifts the hips by.
const JumpApex = 0.4

// Clips returns every clip of the module keyed by id.
func Clips() map[string]*pose.Clip {
	return map[string]*pose.Clip{
		ClipIdle:   IdleClip(),
		ClipWalk:   WalkClip(),
		ClipRun:    RunClip(),
		ClipStrafe: StrafeClip(),
		ClipJump:   JumpClip(),
	}
}
