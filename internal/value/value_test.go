package value

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/animgraph/internal/pose"
)

func TestKind(t *testing.T) {
	for k := range kindNames {
		if k == KindInvalid {
			continue
		}
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseKind("matrix")
	assert.Error(t, err)

	assert.True(t, KindFloat.IsParameter())
	assert.True(t, KindEventQueue.IsParameter())
	assert.False(t, KindPose.IsParameter())
	assert.False(t, KindTime.IsParameter())
}

func TestValue_Accessors(t *testing.T) {
	f, ok := Float(2.5).AsFloat()
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)

	f, ok = Bool(true).AsFloat()
	assert.False(t, ok)
	assert.True(t, math.IsNaN(f))

	v, ok := Vector3(mgl64.Vec3{1, 2, 3}).AsVector3()
	assert.True(t, ok)
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, v)

	q, ok := Float(1).AsQuaternion()
	assert.False(t, ok)
	assert.Equal(t, mgl64.QuatIdent(), q)
}

func TestValue_Immutable(t *testing.T) {
	mask := pose.BoneMask{"arm": 1}
	v := Mask(mask)
	mask["arm"] = 0

	got, ok := v.AsMask()
	require.True(t, ok)
	assert.Equal(t, 1.0, got["arm"])

	got["arm"] = 0.5
	again, _ := v.AsMask()
	assert.Equal(t, 1.0, again["arm"])

	p := pose.New(1)
	pv := Pose(p)
	p.Set("x", pose.Identity())
	inner, _ := pv.AsPose()
	assert.Equal(t, 0, inner.Len())
}

func TestZero(t *testing.T) {
	for k := range kindNames {
		if k == KindInvalid {
			assert.False(t, Zero(k).IsValid())
			continue
		}
		assert.Equal(t, k, Zero(k).Kind(), k.String())
	}
}

func TestEventQueue(t *testing.T) {
	q := Merge(EventQueue{{Name: "jump"}}, nil, EventQueue{{Name: "land", Weight: 0.5}})
	assert.Equal(t, []string{"jump", "land"}, q.Names())
	assert.True(t, q.Has("land"))
	assert.False(t, q.Has("run"))

	v := Events(q)
	q[0].Name = "mutated"
	got, _ := v.AsEvents()
	assert.Equal(t, "jump", got[0].Name)
	assert.Equal(t, "events[jump land]", v.String())
}
