package pose

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rotZ(deg float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(deg), mgl64.Vec3{0, 0, 1})
}

func tr(x, y, z float64, q mgl64.Quat) Transform {
	return Transform{Translation: mgl64.Vec3{x, y, z}, Rotation: q, Scale: mgl64.Vec3{1, 1, 1}}
}

func TestEntityPath(t *testing.T) {
	p := PathOf("Hips", "", "Spine", "Chest")
	assert.Equal(t, EntityPath("Hips/Spine/Chest"), p)
	assert.Equal(t, "Chest", p.Name())
	assert.Equal(t, 3, p.Depth())

	parent, ok := p.Parent()
	require.True(t, ok)
	assert.Equal(t, EntityPath("Hips/Spine"), parent)

	_, ok = EntityPath("Hips").Parent()
	assert.False(t, ok)
	assert.Equal(t, EntityPath("Hips/Leg.L"), EntityPath("Hips").Child("Leg.L"))
}

func TestPose_SetGetOrder(t *testing.T) {
	p := New(0.5)
	p.Set("b", Identity())
	p.Set("a", Identity())
	p.Set("b", tr(1, 0, 0, mgl64.QuatIdent()))

	assert.Equal(t, []EntityPath{"b", "a"}, p.Paths())
	got, ok := p.Get("b")
	require.True(t, ok)
	assert.Equal(t, 1.0, got.Translation.X())
	assert.Equal(t, 2, p.Len())

	clone := p.Clone()
	clone.Set("c", Identity())
	assert.Equal(t, 2, p.Len(), "clone must not alias the original")
}

func TestPose_Global(t *testing.T) {
	p := New(0)
	p.Set("root", tr(0, 0, 0, rotZ(90)))
	p.Set("root/mid", tr(1, 0, 0, mgl64.QuatIdent()))
	p.Set("root/mid/end", tr(1, 0, 0, mgl64.QuatIdent()))

	g, ok := p.Global("root/mid/end")
	require.True(t, ok)
	assert.InDelta(t, 0.0, g.Translation.X(), 1e-9)
	assert.InDelta(t, 2.0, g.Translation.Y(), 1e-9)
}

func TestBlend(t *testing.T) {
	a := FromBones(0.25,
		Bone{Path: "hips", Transform: tr(0, 1, 0, rotZ(10))},
		Bone{Path: "only_a", Transform: tr(5, 0, 0, mgl64.QuatIdent())},
	)
	b := FromBones(0.75,
		Bone{Path: "hips", Transform: tr(2, 1, 0, rotZ(50))},
		Bone{Path: "only_b", Transform: tr(0, 5, 0, mgl64.QuatIdent())},
	)

	t.Run("factor zero reproduces A", func(t *testing.T) {
		out := Blend(a, b, 0)
		got, _ := out.Get("hips")
		want, _ := a.Get("hips")
		assert.Equal(t, want, got)
		assert.Equal(t, 0.25, out.Timestamp)
	})

	t.Run("factor one reproduces B", func(t *testing.T) {
		out := Blend(a, b, 1)
		got, _ := out.Get("hips")
		want, _ := b.Get("hips")
		assert.Equal(t, want, got)
	})

	t.Run("half blend of identical poses", func(t *testing.T) {
		out := Blend(a, a, 0.5)
		got, _ := out.Get("hips")
		want, _ := a.Get("hips")
		assert.True(t, got.Translation.ApproxEqual(want.Translation))
		assert.InDelta(t, 1.0, math.Abs(got.Rotation.Dot(want.Rotation)), 1e-9)
	})

	t.Run("union of bones passes through", func(t *testing.T) {
		out := Blend(a, b, 0.5)
		assert.Equal(t, []EntityPath{"hips", "only_a", "only_b"}, out.Paths())
		onlyA, _ := out.Get("only_a")
		assert.Equal(t, 5.0, onlyA.Translation.X())
		hips, _ := out.Get("hips")
		assert.InDelta(t, 1.0, hips.Translation.X(), 1e-9)
		assert.InDelta(t, 1.0, math.Abs(hips.Rotation.Dot(rotZ(30))), 1e-9)
	})
}

func TestSlerp_ShortestPath(t *testing.T) {
	a := rotZ(10)
	b := rotZ(50).Scale(-1) // same rotation, opposite hemisphere
	mid := Slerp(a, b, 0.5)
	assert.InDelta(t, 1.0, math.Abs(mid.Dot(rotZ(30))), 1e-9)
}

func TestBlendWeighted(t *testing.T) {
	a := FromBones(0, Bone{Path: "x", Transform: tr(0, 0, 0, mgl64.QuatIdent())})
	b := FromBones(0, Bone{Path: "x", Transform: tr(3, 0, 0, mgl64.QuatIdent())})
	c := FromBones(0, Bone{Path: "x", Transform: tr(0, 3, 0, mgl64.QuatIdent())})

	out := BlendWeighted(Weighted{a, 1.0 / 3}, Weighted{b, 1.0 / 3}, Weighted{c, 1.0 / 3})
	x, _ := out.Get("x")
	assert.InDelta(t, 1.0, x.Translation.X(), 1e-9)
	assert.InDelta(t, 1.0, x.Translation.Y(), 1e-9)

	single := BlendWeighted(Weighted{b, 1}, Weighted{c, 0})
	assert.Same(t, b, single)
}

func TestMirror(t *testing.T) {
	m := DefaultMirror()

	t.Run("pattern mapper swaps suffix", func(t *testing.T) {
		got, ok := DefaultMapper().MirrorName("Arm.L")
		require.True(t, ok)
		assert.Equal(t, "Arm.R", got)
		_, ok = DefaultMapper().MirrorName("Spine")
		assert.False(t, ok)
		assert.Equal(t, EntityPath("Hips/Leg.R/Foot.R"), m.Path("Hips/Leg.L/Foot.L"))
	})

	t.Run("custom mapper", func(t *testing.T) {
		mapper, err := NewPatternMapper("Left", "Right", "^", ".*")
		require.NoError(t, err)
		got, _ := mapper.MirrorName("LeftHand")
		assert.Equal(t, "RightHand", got)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := NewPatternMapper("L", "R", "(", "$")
		assert.Error(t, err)
	})

	in := FromBones(0.3,
		Bone{Path: "Hips", Transform: tr(0.1, 1, 0, rotZ(15))},
		Bone{Path: "Hips/Leg.L", Transform: tr(0.2, -0.1, 0.05, rotZ(20))},
		Bone{Path: "Hips/Leg.R", Transform: tr(-0.2, -0.1, 0, rotZ(-5))},
	)

	t.Run("swaps pairs and reflects", func(t *testing.T) {
		out := m.Pose(in)
		assert.Equal(t, in.Paths(), out.Paths())
		left, _ := out.Get("Hips/Leg.L")
		right, _ := in.Get("Hips/Leg.R")
		assert.Equal(t, -right.Translation.X(), left.Translation.X())
		assert.Equal(t, 0.3, out.Timestamp)
	})

	t.Run("applied twice is identity", func(t *testing.T) {
		twice := m.Pose(m.Pose(in))
		for _, b := range in.Bones() {
			got, ok := twice.Get(b.Path)
			require.True(t, ok)
			assert.Equal(t, b.Transform, got, b.Path)
		}
	})
}

func TestSkeleton_Extend(t *testing.T) {
	rest := FromBones(0,
		Bone{Path: "Hips", Transform: tr(0, 1, 0, mgl64.QuatIdent())},
		Bone{Path: "Hips/Spine", Transform: tr(0, 0.2, 0, mgl64.QuatIdent())},
	)
	sk, err := NewSkeleton("biped", rest)
	require.NoError(t, err)

	partial := FromBones(0.4, Bone{Path: "Hips", Transform: tr(0, 2, 0, mgl64.QuatIdent())})
	out := sk.Extend(partial)
	assert.Equal(t, []EntityPath{"Hips", "Hips/Spine"}, out.Paths())
	hips, _ := out.Get("Hips")
	assert.Equal(t, 2.0, hips.Translation.Y(), "existing bones are kept")
	assert.Equal(t, 0.4, out.Timestamp)

	_, err = NewSkeleton("broken", FromBones(0, Bone{Path: "a/b", Transform: Identity()}))
	assert.ErrorContains(t, err, "no parent bone")
}

func TestClip_Sample(t *testing.T) {
	clip := &Clip{
		Name:     "slide",
		Duration: 1,
		Tracks: []Track{{
			Path: "root",
			Translation: []Keyframe[mgl64.Vec3]{
				{Time: 0, Value: mgl64.Vec3{0, 0, 0}},
				{Time: 1, Value: mgl64.Vec3{2, 0, 0}},
			},
			Rotation: []Keyframe[mgl64.Quat]{
				{Time: 0, Value: rotZ(0)},
				{Time: 1, Value: rotZ(90)},
			},
		}},
	}
	require.NoError(t, clip.Validate())

	t.Run("linear", func(t *testing.T) {
		p := clip.Sample(0.25)
		root, ok := p.Get("root")
		require.True(t, ok)
		assert.InDelta(t, 0.5, root.Translation.X(), 1e-9)
		assert.InDelta(t, 1.0, math.Abs(root.Rotation.Dot(rotZ(22.5))), 1e-9)
		assert.Equal(t, mgl64.Vec3{1, 1, 1}, root.Scale)
		assert.Equal(t, 0.25, p.Timestamp)
	})

	t.Run("clamps out of range", func(t *testing.T) {
		p := clip.Sample(3)
		root, _ := p.Get("root")
		assert.InDelta(t, 2.0, root.Translation.X(), 1e-9)
		assert.Equal(t, 1.0, p.Timestamp)
	})

	t.Run("step and nearest", func(t *testing.T) {
		step := *clip
		step.Interpolation = InterpolationStep
		root, _ := step.Sample(0.9).Get("root")
		assert.Equal(t, 0.0, root.Translation.X())

		nearest := *clip
		nearest.Interpolation = InterpolationNearest
		root, _ = nearest.Sample(0.6).Get("root")
		assert.Equal(t, 2.0, root.Translation.X())
	})

	t.Run("validation", func(t *testing.T) {
		bad := &Clip{Name: "bad", Duration: 0}
		assert.ErrorContains(t, bad.Validate(), "duration")

		unsorted := &Clip{Name: "u", Duration: 1, Tracks: []Track{{
			Path:        "x",
			Translation: []Keyframe[mgl64.Vec3]{{Time: 1}, {Time: 0}},
		}}}
		assert.ErrorIs(t, unsorted.Validate(), errUnsortedKeys)
	})
}

func TestBoneMask_Weight(t *testing.T) {
	m := BoneMask{"a": 0.5, "b": 2, "c": -1}
	assert.Equal(t, 0.5, m.Weight("a"))
	assert.Equal(t, 1.0, m.Weight("b"))
	assert.Equal(t, 0.0, m.Weight("c"))
	assert.Equal(t, 0.0, m.Weight("missing"))
}

func TestEventTrack(t *testing.T) {
	var track EventTrack
	track.Name = "feet"
	track.Add(EventItem{Event: "right", Start: 0.5, End: 1})
	track.Add(EventItem{Event: "left", Start: 0, End: 0.5})
	track.Add(EventItem{Event: "scuff", Start: 0.5, End: 0.6})
	require.NoError(t, ValidateTracks([]EventTrack{track}))
	assert.Equal(t, []string{"left", "right", "scuff"}, []string{track.Items[0].Event, track.Items[1].Event, track.Items[2].Event})

	assert.Equal(t, []string{"left"}, track.Sample(0.49))
	assert.Equal(t, []string{"right", "scuff"}, track.Sample(0.5), "start is inclusive")
	assert.Empty(t, track.Sample(1), "end is exclusive")

	clip := &Clip{Name: "walk", Duration: 1, Events: []EventTrack{track, {Name: "end", Items: []EventItem{{Event: "done", Start: 1, End: math.Inf(1)}}}}}
	require.NoError(t, clip.Validate())
	assert.Equal(t, []string{"done"}, clip.SampleEvents(5), "clip events clamp like poses")
	assert.Equal(t, []string{"left"}, clip.SampleEvents(-1))

	t.Run("validation", func(t *testing.T) {
		bad := map[string][]EventTrack{
			"empty item":   {{Name: "a", Items: []EventItem{{Event: "x", Start: 0.5, End: 0.5}}}},
			"negative":     {{Name: "a", Items: []EventItem{{Event: "x", Start: -1, End: 0.5}}}},
			"unsorted":     {{Name: "a", Items: []EventItem{{Event: "x", Start: 0.5, End: 1}, {Event: "y", Start: 0, End: 1}}}},
			"duplicate":    {{Name: "a"}, {Name: "a"}},
			"not a number": {{Name: "a", Items: []EventItem{{Event: "x", Start: math.NaN(), End: 1}}}},
		}
		for name, tracks := range bad {
			assert.Error(t, ValidateTracks(tracks), name)
		}
		assert.ErrorContains(t, (&Clip{Name: "c", Duration: 1, Events: bad["duplicate"]}).Validate(), `clip "c"`)
	})
}

func TestEuler(t *testing.T) {
	angles := mgl64.Vec3{0.4, -0.7, 1.1}
	for _, order := range []EulerOrder{EulerXYZ, EulerXZY, EulerYXZ, EulerYZX, EulerZXY, EulerZYX} {
		t.Run(order.String(), func(t *testing.T) {
			q := FromEuler(angles, order)
			got := ToEuler(q, order)
			for i := range angles {
				assert.InDelta(t, angles[i], got[i], 1e-9)
			}
			back := FromEuler(got, order)
			assert.InDelta(t, 1, math.Abs(q.Dot(back)), 1e-12)
		})
	}

	t.Run("single axis", func(t *testing.T) {
		q := FromEuler(mgl64.Vec3{0, 0, math.Pi / 2}, EulerXYZ)
		assert.InDelta(t, 1, math.Abs(q.Dot(rotZ(90))), 1e-12)
	})

	t.Run("gimbal lock keeps the orientation", func(t *testing.T) {
		q := FromEuler(mgl64.Vec3{0.3, math.Pi / 2, 0.2}, EulerXYZ)
		back := FromEuler(ToEuler(q, EulerXYZ), EulerXYZ)
		assert.InDelta(t, 1, math.Abs(q.Dot(back)), 1e-6)
	})

	order, err := ParseEulerOrder("ZYX")
	require.NoError(t, err)
	assert.Equal(t, EulerZYX, order)
	_, err = ParseEulerOrder("XXY")
	assert.Error(t, err)
}
