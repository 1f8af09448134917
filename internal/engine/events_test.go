package engine_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/animgraph/internal/engine"
	"github.com/vk/animgraph/internal/graph"
	"github.com/vk/animgraph/internal/pose"
	"github.com/vk/animgraph/internal/testutil"
	"github.com/vk/animgraph/internal/value"
)

func eventNames(t *testing.T, res engine.Result, name string) []string {
	t.Helper()
	q, ok := res.Outputs[name].AsEvents()
	require.True(t, ok, "output %q is not an event queue", name)
	return q.Names()
}

func TestEvaluate_ClipEvents(t *testing.T) {
	e, _ := newEngine(t)
	walk := testutil.WalkClip("walk", 1)
	walk.Events = []pose.EventTrack{
		{Name: "feet", Items: []pose.EventItem{{Event: "step_l", Start: 0, End: 0.5}, {Event: "step_r", Start: 0.5, End: 1}}},
		{Name: "fx", Items: []pose.EventItem{{Event: "dust", Start: 0.4, End: 0.6}, {Event: "done", Start: 1, End: math.Inf(1)}}},
	}
	require.NoError(t, walk.Validate())
	inst := engine.NewInstance(graph.NewBuilder("walk").
		AddOutput("events", value.KindEventQueue).
		AddNode("walk", clipNode(walk)).
		ConnectParam(graph.At("walk", graph.OutEvents), graph.At(graph.IO, "events")).
		SetOutput("walk").
		MustBuild())

	cases := []struct {
		at   float64
		want []string
	}{
		{0, []string{"step_l"}},
		{0.45, []string{"step_l", "dust"}},
		{0.5, []string{"step_r", "dust"}},
		{0.7, []string{"step_r"}},
		{3, []string{"done"}},
	}
	for _, tc := range cases {
		res := evalAt(t, e, inst, engine.PoseQuery, tc.at)
		assert.Equal(t, tc.want, eventNames(t, res, "events"), "at %v", tc.at)
	}
}

func TestEvaluate_EventMarkup(t *testing.T) {
	e, _ := newEngine(t)
	walk := testutil.WalkClip("walk", 1)
	g := graph.NewBuilder("marked").
		AddOutput("events", value.KindEventQueue).
		AddNode("walk", clipNode(walk)).
		AddNode("pre", graph.FireEventData{Event: "pre"}).
		AddNode("mark", graph.EventMarkupData{Tracks: []pose.EventTrack{
			{Name: "steps", Items: []pose.EventItem{{Event: "step", Start: 0.2, End: 0.4}}},
			{Name: "end", Items: []pose.EventItem{{Event: "end", Start: 1, End: math.Inf(1)}}},
		}}).
		Feed("walk", "mark", "in").
		ConnectParam(graph.At("pre", graph.OutEvents), graph.At("mark", graph.OutEvents)).
		ConnectParam(graph.At("mark", graph.OutEvents), graph.At(graph.IO, "events")).
		SetOutput("mark").
		MustBuild()
	inst := engine.NewInstance(g)
	plain := engine.NewInstance(graph.NewBuilder("plain").AddNode("walk", clipNode(walk)).SetOutput("walk").MustBuild())

	t.Run("pose and timing pass through", func(t *testing.T) {
		res := evalAt(t, e, inst, engine.PoseQuery, 0.3)
		testutil.AssertPoseEqual(t, poseAt(t, e, plain, 0.3), res.Pose, 1e-9)
		assert.Equal(t, []string{"pre", "step"}, eventNames(t, res, "events"))
		assert.Equal(t, 1.0, res.Duration)
	})

	t.Run("tracks follow the input's time", func(t *testing.T) {
		res := evalAt(t, e, inst, engine.PoseQuery, 1.4)
		assert.Equal(t, []string{"pre", "end"}, eventNames(t, res, "events"), "the clip clamps at its end")
	})

	t.Run("definition is cloned", func(t *testing.T) {
		c := g.Clone()
		n, ok := c.Node("mark")
		require.True(t, ok)
		n.Data.(graph.EventMarkupData).Tracks[0].Items[0].Event = "changed"
		orig, _ := g.Node("mark")
		assert.Equal(t, "step", orig.Data.(graph.EventMarkupData).Tracks[0].Items[0].Event)
	})
}
