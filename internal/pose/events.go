package pose

import (
	"fmt"
	"math"
	"sort"
)

// EventItem marks Event as active over [Start, End). End may be +Inf for a
// marker that holds once reached.
type EventItem struct {
	Event string
	Start float64
	End   float64
}

// Active reports whether the item covers t.
func (it EventItem) Active(t float64) bool { return it.Start <= t && t < it.End }

// EventTrack is a named lane of event items, ordered by start time.
type EventTrack struct {
	Name  string
	Items []EventItem
}

// Add inserts it, keeping the items ordered by start time. Items that start
// together keep their insertion order.
func (tr *EventTrack) Add(it EventItem) {
	i := sort.Search(len(tr.Items), func(i int) bool { return tr.Items[i].Start > it.Start })
	tr.Items = append(tr.Items, EventItem{})
	copy(tr.Items[i+1:], tr.Items[i:])
	tr.Items[i] = it
}

// Sample returns the events active at t, in start order.
func (tr EventTrack) Sample(t float64) []string {
	var out []string
	for _, it := range tr.Items {
		if it.Active(t) {
			out = append(out, it.Event)
		}
	}
	return out
}

func (tr EventTrack) validate() error {
	for _, it := range tr.Items {
		if math.IsNaN(it.Start) || math.IsNaN(it.End) || it.Start < 0 || !(it.End > it.Start) {
			return fmt.Errorf("event track %q: item %q must satisfy 0 <= start < end, got [%v, %v)", tr.Name, it.Event, it.Start, it.End)
		}
	}
	if !sort.SliceIsSorted(tr.Items, func(i, j int) bool { return tr.Items[i].Start < tr.Items[j].Start }) {
		return fmt.Errorf("event track %q: items are not sorted by start time", tr.Name)
	}
	return nil
}

// SampleTracks concatenates the events every track has active at t. Tracks
// contribute in order.
func SampleTracks(tracks []EventTrack, t float64) []string {
	var out []string
	for _, tr := range tracks {
		out = append(out, tr.Sample(t)...)
	}
	return out
}

// ValidateTracks checks item bounds and ordering and that track names are
// unique.
func ValidateTracks(tracks []EventTrack) error {
	seen := make(map[string]bool, len(tracks))
	for _, tr := range tracks {
		if seen[tr.Name] {
			return fmt.Errorf("duplicate event track %q", tr.Name)
		}
		seen[tr.Name] = true
		if err := tr.validate(); err != nil {
			return err
		}
	}
	return nil
}
