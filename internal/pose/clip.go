package pose

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Interpolation selects how a clip samples between keyframes.
type Interpolation int

const (
	InterpolationLinear Interpolation = iota
	// InterpolationStep holds the previous keyframe.
	InterpolationStep
	// InterpolationNearest snaps to the closest keyframe.
	InterpolationNearest
)

func (i Interpolation) String() string {
	switch i {
	case InterpolationLinear:
		return "linear"
	case InterpolationStep:
		return "step"
	case InterpolationNearest:
		return "nearest"
	default:
		return fmt.Sprintf("Interpolation(%d)", int(i))
	}
}

// ParseInterpolation maps a configuration name to an Interpolation.
func ParseInterpolation(s string) (Interpolation, error) {
	switch s {
	case "", "linear":
		return InterpolationLinear, nil
	case "step":
		return InterpolationStep, nil
	case "nearest":
		return InterpolationNearest, nil
	}
	return 0, fmt.Errorf("unknown interpolation %q", s)
}

// Keyframe is a sample of one channel.
type Keyframe[T any] struct {
	Time  float64
	Value T
}

// Track holds the keyframed channels of one bone. A channel with no keyframes
// samples as the identity value for that channel.
type Track struct {
	Path        EntityPath
	Translation []Keyframe[mgl64.Vec3]
	Rotation    []Keyframe[mgl64.Quat]
	Scale       []Keyframe[mgl64.Vec3]
}

// Clip is a keyframed animation of a set of bones. Events are sampled on the
// clip's own clamped time.
type Clip struct {
	Name          string
	Duration      float64
	Interpolation Interpolation
	Tracks        []Track
	Events        []EventTrack
}

var errUnsortedKeys = errors.New("keyframes are not sorted by time")

// Validate checks the clip's duration, track uniqueness and keyframe order.
func (c *Clip) Validate() error {
	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		return fmt.Errorf("clip %q: duration must be positive and finite, got %v", c.Name, c.Duration)
	}
	seen := make(map[EntityPath]bool, len(c.Tracks))
	for _, tr := range c.Tracks {
		if seen[tr.Path] {
			return fmt.Errorf("clip %q: duplicate track for %q", c.Name, tr.Path)
		}
		seen[tr.Path] = true
		if !sorted(tr.Translation) || !sorted(tr.Rotation) || !sorted(tr.Scale) {
			return fmt.Errorf("clip %q: track %q: %w", c.Name, tr.Path, errUnsortedKeys)
		}
	}
	if err := ValidateTracks(c.Events); err != nil {
		return fmt.Errorf("clip %q: %w", c.Name, err)
	}
	return nil
}

// SampleEvents returns the events active at t, clamped like Sample.
func (c *Clip) SampleEvents(t float64) []string {
	return SampleTracks(c.Events, math.Max(0, math.Min(t, c.Duration)))
}

// Sample returns the clip's pose at t, clamped to [0, Duration].
func (c *Clip) Sample(t float64) *Pose {
	t = math.Max(0, math.Min(t, c.Duration))
	out := New(t)
	for _, tr := range c.Tracks {
		x := Identity()
		if v, ok := sample(tr.Translation, t, c.Interpolation, LerpVec); ok {
			x.Translation = v
		}
		if v, ok := sample(tr.Rotation, t, c.Interpolation, Slerp); ok {
			x.Rotation = v
		}
		if v, ok := sample(tr.Scale, t, c.Interpolation, LerpVec); ok {
			x.Scale = v
		}
		out.Set(tr.Path, x)
	}
	return out
}

func sample[T any](keys []Keyframe[T], t float64, mode Interpolation, lerp func(a, b T, f float64) T) (T, bool) {
	var zero T
	switch len(keys) {
	case 0:
		return zero, false
	case 1:
		return keys[0].Value, true
	}
	next := sort.Search(len(keys), func(i int) bool { return keys[i].Time > t })
	if next == 0 {
		return keys[0].Value, true
	}
	if next == len(keys) {
		return keys[len(keys)-1].Value, true
	}
	prev := keys[next-1]
	nextKey := keys[next]
	span := nextKey.Time - prev.Time
	f := 0.0
	if span > 0 {
		f = (t - prev.Time) / span
	}
	switch mode {
	case InterpolationStep:
		return prev.Value, true
	case InterpolationNearest:
		if f < 0.5 {
			return prev.Value, true
		}
		return nextKey.Value, true
	}
	return lerp(prev.Value, nextKey.Value, f), true
}

func sorted[T any](keys []Keyframe[T]) bool {
	return sort.SliceIsSorted(keys, func(i, j int) bool { return keys[i].Time < keys[j].Time })
}
