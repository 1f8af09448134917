package engine

import (
	"github.com/vk/animgraph/internal/graph"
	"github.com/vk/animgraph/internal/pose"
	"github.com/vk/animgraph/internal/value"
)

func queueOf(names []string) value.EventQueue {
	if len(names) == 0 {
		return nil
	}
	q := make(value.EventQueue, len(names))
	for i, name := range names {
		q[i] = value.Event{Name: name, Weight: 1}
	}
	return q
}

// clipEvents samples the clip's event tracks at the frame time.
func (f *frame) clipEvents(n *graph.Node, d graph.ClipData) value.Value {
	if d.Clip == nil {
		f.clipDuration(n, d)
		return value.Events(nil)
	}
	return value.Events(queueOf(d.Clip.SampleEvents(f.time)))
}

// markupEvents appends the tracks' events, sampled at the time input "in"
// reports for the frame, to the queue wired into "events".
func (f *frame) markupEvents(n *graph.Node, d graph.EventMarkupData) (value.Value, error) {
	in, err := f.events(n, graph.OutEvents)
	if err != nil {
		return value.Value{}, err
	}
	t, err := f.poseInput(n, "in").timeAt(f.time)
	if err != nil {
		return value.Value{}, err
	}
	return value.Events(value.Merge(in, queueOf(pose.SampleTracks(d.Tracks, t)))), nil
}
