package blendspace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(t *testing.T) *Space {
	t.Helper()
	s, err := New([]Point{
		{ID: "idle", X: 0, Y: 0},
		{ID: "walk", X: 1, Y: 0},
		{ID: "run", X: 1, Y: 1},
		{ID: "strafe", X: 0, Y: 1},
	})
	require.NoError(t, err)
	return s
}

func sum(ws []Weight) float64 {
	var total float64
	for _, w := range ws {
		total += w.Weight
	}
	return total
}

func TestNew(t *testing.T) {
	t.Run("single triangle", func(t *testing.T) {
		s, err := New([]Point{{ID: "a"}, {ID: "b", X: 1}, {ID: "c", Y: 1}})
		require.NoError(t, err)
		require.Len(t, s.Triangles, 1)
		tri := s.Triangles[0]
		assert.InDelta(t, 0.5, tri.CenterX, 1e-12)
		assert.InDelta(t, 0.5, tri.CenterY, 1e-12)
		assert.InDelta(t, math.Sqrt2/2, tri.Radius, 1e-12)
	})

	t.Run("square splits in two", func(t *testing.T) {
		assert.Len(t, square(t).Triangles, 2)
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		_, err := New([]Point{{ID: "a"}, {ID: "a", X: 1}})
		assert.ErrorIs(t, err, ErrDuplicatePoint)
		_, err = New([]Point{{ID: "a"}, {ID: "b"}})
		assert.ErrorIs(t, err, ErrDuplicatePoint)
		_, err = New(nil)
		assert.ErrorIs(t, err, ErrNoPoints)
	})

	t.Run("collinear has no triangles", func(t *testing.T) {
		s, err := New([]Point{{ID: "a"}, {ID: "b", X: 1}, {ID: "c", X: 2}})
		require.NoError(t, err)
		assert.Empty(t, s.Triangles)
		ws := s.Locate(1.5, 0)
		require.Len(t, ws, 2)
		assert.InDelta(t, 1.0, sum(ws), 1e-12)
	})
}

func TestLocate(t *testing.T) {
	s := square(t)

	t.Run("exact sample is pass-through", func(t *testing.T) {
		for i, p := range s.Points {
			ws := s.Locate(p.X, p.Y)
			require.Len(t, ws, 1, p.ID)
			assert.Equal(t, i, ws[0].Index)
			assert.Equal(t, 1.0, ws[0].Weight)
		}
	})

	t.Run("interior is barycentric", func(t *testing.T) {
		ws := s.Locate(0.6, 0.2)
		require.Len(t, ws, 3)
		assert.InDelta(t, 1.0, sum(ws), 1e-12)
		var x, y float64
		for _, w := range ws {
			x += w.Weight * s.Points[w.Index].X
			y += w.Weight * s.Points[w.Index].Y
		}
		assert.InDelta(t, 0.6, x, 1e-12)
		assert.InDelta(t, 0.2, y, 1e-12)
		assert.GreaterOrEqual(t, ws[0].Weight, ws[1].Weight)
		assert.GreaterOrEqual(t, ws[1].Weight, ws[2].Weight)
	})

	t.Run("on an edge collapses to two", func(t *testing.T) {
		ws := s.Locate(0.5, 0)
		require.Len(t, ws, 2)
		assert.InDelta(t, 0.5, ws[0].Weight, 1e-12)
	})

	t.Run("outside the hull uses nearest edge", func(t *testing.T) {
		ws := s.Locate(0.25, -3)
		require.Len(t, ws, 2)
		idle, _ := s.Index("idle")
		walk, _ := s.Index("walk")
		assert.Equal(t, idle, ws[0].Index)
		assert.Equal(t, walk, ws[1].Index)
		assert.InDelta(t, 0.75, ws[0].Weight, 1e-12)
	})

	t.Run("outside past a corner uses the vertex", func(t *testing.T) {
		ws := s.Locate(5, 5)
		require.Len(t, ws, 1)
		run, _ := s.Index("run")
		assert.Equal(t, run, ws[0].Index)
	})

	t.Run("nan query never panics", func(t *testing.T) {
		assert.NotPanics(t, func() { s.Locate(math.NaN(), 0) })
	})
}

func TestParseSyncMode(t *testing.T) {
	m, err := ParseSyncMode("normalized")
	require.NoError(t, err)
	assert.Equal(t, SyncNormalized, m)
	_, err = ParseSyncMode("bogus")
	assert.Error(t, err)
}
