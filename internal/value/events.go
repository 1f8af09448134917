package value

// Event is a named signal flowing on event-queue pins. Weight lets blended
// sources report how strongly an event fired; triggers ignore it.
type Event struct {
	Name   string
	Weight float64
}

// EventQueue is an ordered list of events observed during one evaluation.
type EventQueue []Event

// Clone returns a copy of q.
func (q EventQueue) Clone() EventQueue {
	if len(q) == 0 {
		return nil
	}
	out := make(EventQueue, len(q))
	copy(out, q)
	return out
}

// Has reports whether an event with the given name is queued.
func (q EventQueue) Has(name string) bool {
	for _, e := range q {
		if e.Name == name {
			return true
		}
	}
	return false
}

// Names returns the queued event names in order.
func (q EventQueue) Names() []string {
	out := make([]string, len(q))
	for i, e := range q {
		out[i] = e.Name
	}
	return out
}

// Merge concatenates queues in order.
func Merge(queues ...EventQueue) EventQueue {
	var out EventQueue
	for _, q := range queues {
		out = append(out, q...)
	}
	return out
}
