package model

import "fmt"

// Kind classifies a recorded event.
type Kind string

const (
	KindCreate   Kind = "create"
	KindDestroy  Kind = "destroy"
	KindDestruct Kind = "destruct"
	KindChange   Kind = "change"
)

// Event is one hook invocation on an Item.
type Event struct {
	Kind     Kind   `json:"kind"`
	Object   string `json:"object"`
	Property string `json:"property,omitempty"`
	Value    string `json:"value,omitempty"`
}

// String renders the event compactly, e.g. "change a.weight=3".
func (e Event) String() string {
	if e.Kind != KindChange {
		return fmt.Sprintf("%s %s", e.Kind, e.Object)
	}
	return fmt.Sprintf("%s %s.%s=%s", e.Kind, e.Object, e.Property, e.Value)
}

// Recorder collects events in the order hooks run. A nil Recorder discards
// them.
type Recorder struct {
	events []Event
}

func (r *Recorder) record(ev Event) {
	if r == nil {
		return
	}
	r.events = append(r.events, ev)
}

// Events returns the events recorded so far.
func (r *Recorder) Events() []Event {
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	return len(r.events)
}

// Since returns the events recorded after the first n.
func (r *Recorder) Since(n int) []Event {
	if n >= len(r.events) {
		return []Event{}
	}
	out := make([]Event, len(r.events)-n)
	copy(out, r.events[n:])
	return out
}

// Reset forgets every recorded event.
func (r *Recorder) Reset() {
	r.events = r.events[:0]
}
