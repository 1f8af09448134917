package ik

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bent = Chain{
	Root: mgl64.Vec3{0, 0, 0},
	Mid:  mgl64.Vec3{0, 1, 0},
	End:  mgl64.Vec3{1, 1, 0},
}

func assertVec(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9, "component %d of %v", i, got)
	}
}

func noNaN(t *testing.T, s Solution) {
	t.Helper()
	for _, v := range []mgl64.Vec3{s.Mid, s.End, s.RootSwing.V, s.MidSwing.V} {
		for _, c := range v {
			require.False(t, math.IsNaN(c))
		}
	}
	require.False(t, math.IsNaN(s.RootSwing.W))
	require.False(t, math.IsNaN(s.MidSwing.W))
}

// applied moves the original chain by the solution's rotations.
func applied(c Chain, s Solution) (mid, end mgl64.Vec3) {
	mid = c.Root.Add(s.RootSwing.Rotate(c.Mid.Sub(c.Root)))
	end = mid.Add(s.MidSwing.Rotate(c.End.Sub(c.Mid)))
	return mid, end
}

func TestSolve(t *testing.T) {
	t.Run("full reach straightens the chain", func(t *testing.T) {
		s, err := Solve(bent, mgl64.Vec3{2, 0, 0})
		require.NoError(t, err)
		noNaN(t, s)
		assertVec(t, mgl64.Vec3{1, 0, 0}, s.Mid)
		assertVec(t, mgl64.Vec3{2, 0, 0}, s.End)
		assert.InDelta(t, 2.0, s.Reach, 1e-12)

		mid, end := applied(bent, s)
		assertVec(t, s.Mid, mid)
		assertVec(t, s.End, end)
	})

	t.Run("beyond reach clamps", func(t *testing.T) {
		s, err := Solve(bent, mgl64.Vec3{10, 0, 0})
		require.NoError(t, err)
		noNaN(t, s)
		assertVec(t, mgl64.Vec3{2, 0, 0}, s.End)
	})

	t.Run("huge finite target still aims at it", func(t *testing.T) {
		s, err := Solve(bent, mgl64.Vec3{1e300, 1e300, 0})
		require.NoError(t, err)
		noNaN(t, s)
		assertVec(t, mgl64.Vec3{math.Sqrt2, math.Sqrt2, 0}, s.End)
		assert.InDelta(t, 2.0, s.Reach, 1e-12)
	})

	t.Run("inside reach bends toward the pole", func(t *testing.T) {
		s, err := Solve(bent, mgl64.Vec3{1, 0, 0})
		require.NoError(t, err)
		assertVec(t, mgl64.Vec3{0.5, math.Sqrt(3) / 2, 0}, s.Mid)
		assertVec(t, mgl64.Vec3{1, 0, 0}, s.End)

		mid, end := applied(bent, s)
		assertVec(t, s.Mid, mid)
		assertVec(t, s.End, end)
	})

	t.Run("too close clamps to minimum reach", func(t *testing.T) {
		uneven := Chain{Root: mgl64.Vec3{}, Mid: mgl64.Vec3{0, 2, 0}, End: mgl64.Vec3{1, 2, 0}}
		s, err := Solve(uneven, mgl64.Vec3{0.1, 0, 0})
		require.NoError(t, err)
		noNaN(t, s)
		assert.InDelta(t, 1.0, s.Reach, 1e-12)
		assert.InDelta(t, 1.0, s.End.Len(), 1e-9)
	})

	t.Run("straight input chain still bends", func(t *testing.T) {
		straight := Chain{Root: mgl64.Vec3{}, Mid: mgl64.Vec3{0, 1, 0}, End: mgl64.Vec3{0, 2, 0}}
		s, err := Solve(straight, mgl64.Vec3{0, 1, 0})
		require.NoError(t, err)
		noNaN(t, s)
		assertVec(t, mgl64.Vec3{0, 1, 0}, s.End)
		assert.InDelta(t, 1.0, s.Mid.Len(), 1e-9)
	})

	t.Run("zero length segment is degenerate", func(t *testing.T) {
		_, err := Solve(Chain{Mid: mgl64.Vec3{}, End: mgl64.Vec3{1, 0, 0}}, mgl64.Vec3{1, 0, 0})
		assert.ErrorIs(t, err, ErrDegenerate)
	})
}

func TestArc(t *testing.T) {
	cases := []struct {
		name     string
		from, to mgl64.Vec3
	}{
		{"quarter turn", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}},
		{"unnormalized", mgl64.Vec3{0, 0, 3}, mgl64.Vec3{2, 0, 2}},
		{"opposite", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{-1, 0, 0}},
		{"same", mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 5, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := Arc(tc.from, tc.to)
			got := q.Rotate(tc.from.Normalize())
			assertVec(t, tc.to.Normalize(), got)
		})
	}

	assert.Equal(t, mgl64.QuatIdent(), Arc(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}))
}
