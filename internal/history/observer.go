package history

// EventKind names a history operation.
type EventKind string

const (
	EventStage   EventKind = "stage"
	EventUnstage EventKind = "unstage"
	EventCommit  EventKind = "commit"
	EventUndo    EventKind = "undo"
	EventRedo    EventKind = "redo"
	EventClear   EventKind = "clear"
)

// Event describes a completed history operation.
type Event struct {
	Kind EventKind

	// Commands is the number of commands affected (transactions for clear).
	Commands int

	// Depths after the operation.
	UndoDepth int
	RedoDepth int
	Staged    int
}

// Observer receives an Event after every effective history operation.
// No-op operations (empty commit, undo with nothing to undo) are not
// reported; Clear always is.
//
// Observers must not mutate the history they observe.
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ev Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev Event) {
	f(ev)
}
