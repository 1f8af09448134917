package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/animgraph/internal/pose"
	"github.com/vk/animgraph/internal/testutil"
	"github.com/vk/animgraph/internal/value"
)

func frame(i int) Frame {
	return Frame{
		Character: "hero",
		Index:     i,
		Time:      float64(i) / 30,
		Pose:      testutil.RestPose(),
		Outputs: map[string]value.Value{
			"speed":  value.Float(1.5),
			"events": value.Events(value.EventQueue{{Name: "step", Weight: 1}}),
		},
	}
}

func TestLog(t *testing.T) {
	ctx, logs := testutil.Context(t)
	f := frame(3)
	f.Diagnostics = []error{errors.New("clip missing")}

	require.NoError(t, Log{Level: slog.LevelInfo}.Write(ctx, f))

	out := logs.String()
	assert.Contains(t, out, "Frame evaluated.")
	assert.Contains(t, out, "character=hero")
	assert.Contains(t, out, "frame=3")
	assert.Contains(t, out, "bones=8")
	assert.Contains(t, out, "outputs=\"[events speed]\"")
	assert.Contains(t, out, "Frame degraded.")
	assert.NoError(t, Log{}.Close())
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	ctx := context.Background()
	require.NoError(t, r.Write(ctx, frame(0)))
	require.NoError(t, r.Write(ctx, frame(1)))

	frames := r.Frames()
	require.Len(t, frames, 2)
	assert.Equal(t, 1, frames[1].Index)

	require.NoError(t, r.Close())
	assert.True(t, r.Closed())
	assert.Error(t, r.Write(ctx, frame(2)))
}

type failing struct{ closed bool }

func (f *failing) Write(context.Context, Frame) error { return errors.New("disk full") }
func (f *failing) Close() error {
	f.closed = true
	return errors.New("close failed")
}

func TestMulti(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := Multi{a, b}
	require.NoError(t, m.Write(context.Background(), frame(0)))
	assert.Len(t, a.Frames(), 1)
	assert.Len(t, b.Frames(), 1)

	bad := &failing{}
	m = Multi{a, bad, b}
	assert.ErrorContains(t, m.Write(context.Background(), frame(1)), "disk full")
	assert.Len(t, b.Frames(), 1, "sinks after a failure are skipped")

	err := m.Close()
	assert.ErrorContains(t, err, "close failed")
	assert.True(t, a.Closed())
	assert.True(t, b.Closed())
	assert.True(t, bad.closed)
}

func TestPayload(t *testing.T) {
	f := Frame{
		Character: "hero",
		Index:     2,
		Time:      0.5,
		Pose: pose.FromBones(0.5, pose.Bone{Path: "Hips", Transform: pose.Transform{
			Translation: mgl64.Vec3{0, 1, 0},
			Rotation:    mgl64.QuatRotate(mgl64.DegToRad(90), mgl64.Vec3{0, 1, 0}),
			Scale:       mgl64.Vec3{1, 1, 1},
		}}),
		Outputs: map[string]value.Value{
			"speed":  value.Float(2),
			"moving": value.Bool(true),
			"target": value.Vector3(mgl64.Vec3{1, 2, 3}),
			"hand":   value.Path("Hips/Hand.L"),
			"events": value.Events(value.EventQueue{{Name: "step"}}),
		},
		Diagnostics: []error{errors.New("degraded")},
	}

	p := Payload(f)
	require.Len(t, p.Bones, 1)
	assert.Equal(t, "Hips", p.Bones[0].Path)
	assert.Equal(t, [3]float64{0, 1, 0}, p.Bones[0].Translation)
	assert.InDelta(t, 0.7071067811865476, p.Bones[0].Rotation[1], 1e-12)
	assert.InDelta(t, 0.7071067811865476, p.Bones[0].Rotation[3], 1e-12)
	assert.Equal(t, 2.0, p.Outputs["speed"])
	assert.Equal(t, true, p.Outputs["moving"])
	assert.Equal(t, [3]float64{1, 2, 3}, p.Outputs["target"])
	assert.Equal(t, "Hips/Hand.L", p.Outputs["hand"])
	assert.Equal(t, []string{"step"}, p.Outputs["events"])
	assert.Equal(t, []string{"degraded"}, p.Degraded)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	r := p.Bones[0].Rotation
	assert.JSONEq(t, fmt.Sprintf(`{
		"character": "hero", "frame": 2, "time": 0.5,
		"bones": [{"path": "Hips", "t": [0, 1, 0], "r": [%v, %v, %v, %v], "s": [1, 1, 1]}],
		"outputs": {"speed": 2, "moving": true, "target": [1, 2, 3], "hand": "Hips/Hand.L", "events": ["step"]},
		"degraded": ["degraded"]
	}`, r[0], r[1], r[2], r[3]), string(raw))

	empty := Payload(Frame{Character: "ghost"})
	assert.NotNil(t, empty.Bones)
	assert.Nil(t, empty.Outputs)
}

func TestDialSocketIO_Errors(t *testing.T) {
	t.Run("bad url", func(t *testing.T) {
		_, err := DialSocketIO(context.Background(), SocketIOConfig{URL: "://nope"})
		assert.ErrorContains(t, err, "failed to parse URL")
	})

	t.Run("no host", func(t *testing.T) {
		_, err := DialSocketIO(context.Background(), SocketIOConfig{URL: "/socket.io"})
		assert.ErrorContains(t, err, "needs a scheme and a host")
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := DialSocketIO(ctx, SocketIOConfig{URL: "http://127.0.0.1:1", ConnectTimeout: time.Second})
		assert.Error(t, err)
	})
}
