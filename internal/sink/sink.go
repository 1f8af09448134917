// Package sink delivers evaluated frames to their destination: the log, a
// socket.io endpoint, or memory for tests.
package sink

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/vk/animgraph/internal/ctxlog"
	"github.com/vk/animgraph/internal/pose"
	"github.com/vk/animgraph/internal/value"
)

// Frame is one evaluated pose of one character.
type Frame struct {
	Character   string
	Index       int
	Time        float64
	Pose        *pose.Pose
	Outputs     map[string]value.Value
	Diagnostics []error
}

// Sink receives frames in evaluation order. Write may be called from several
// goroutines when the driver runs characters in parallel.
type Sink interface {
	Write(ctx context.Context, f Frame) error
	Close() error
}

// Log writes a summary of every frame to the context logger.
type Log struct {
	// Level is the level frames are logged at.
	Level slog.Level
}

// Write implements Sink.
func (l Log) Write(ctx context.Context, f Frame) error {
	logger := ctxlog.FromContext(ctx)
	attrs := []any{"character", f.Character, "frame", f.Index, "time", f.Time}
	if f.Pose != nil {
		attrs = append(attrs, "bones", f.Pose.Len())
		if hips, ok := rootTranslation(f.Pose); ok {
			attrs = append(attrs, "root", hips)
		}
	}
	if names := outputNames(f.Outputs); len(names) > 0 {
		attrs = append(attrs, "outputs", names)
	}
	logger.Log(ctx, l.Level, "Frame evaluated.", attrs...)
	for _, d := range f.Diagnostics {
		logger.Warn("Frame degraded.", "character", f.Character, "frame", f.Index, "error", d)
	}
	return nil
}

// Close implements Sink.
func (Log) Close() error { return nil }

func rootTranslation(p *pose.Pose) ([3]float64, bool) {
	bones := p.Bones()
	if len(bones) == 0 {
		return [3]float64{}, false
	}
	return bones[0].Transform.Translation, true
}

func outputNames(outs map[string]value.Value) []string {
	names := make([]string, 0, len(outs))
	for k := range outs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Recorder keeps every frame in memory.
type Recorder struct {
	mu     sync.Mutex
	frames []Frame
	closed bool
}

// Write implements Sink.
func (r *Recorder) Write(_ context.Context, f Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errors.New("recorder is closed")
	}
	r.frames = append(r.frames, f)
	return nil
}

// Close implements Sink.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Frames returns the recorded frames.
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.frames...)
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Multi fans frames out to several sinks.
type Multi []Sink

// Write implements Sink. It stops at the first failing sink.
func (m Multi) Write(ctx context.Context, f Frame) error {
	for _, s := range m {
		if err := s.Write(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// Close implements Sink. Every sink is closed; the errors are joined.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
