package history

import (
	"io"
	"log/slog"
)

// History owns the undo stack, the redo stack, and the staging transaction.
//
// INVARIANTS:
//   - undo holds committed transactions, oldest first
//   - redo holds undone transactions, most recently undone last
//   - Undo and Redo are no-ops while the stage is non-empty
type History struct {
	undo  []*Transaction
	redo  []*Transaction
	stage *Transaction

	logger    *slog.Logger
	observers []Observer
}

// Option configures a History.
type Option func(*History)

// WithLogger sets the structured logger. Default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(h *History) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithObserver registers an observer notified after every history operation.
// Observers run in registration order.
func WithObserver(o Observer) Option {
	return func(h *History) {
		if o != nil {
			h.observers = append(h.observers, o)
		}
	}
}

// New creates an empty History.
func New(opts ...Option) *History {
	h := &History{
		stage:  &Transaction{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AddObserver registers an observer after construction.
func (h *History) AddObserver(o Observer) {
	if o != nil {
		h.observers = append(h.observers, o)
	}
}

// Stage applies cmd immediately and appends it to the staging transaction.
func (h *History) Stage(cmd Command) {
	h.stage.Apply(cmd)
	h.emit(EventStage, 1)
}

// Unstage reverses the stage and clears it, returning the graph to the last
// committed state. No-op if the stage is empty.
func (h *History) Unstage() {
	if h.stage.IsEmpty() {
		return
	}
	n := h.stage.Len()
	h.stage.Reverse()
	h.stage.Clear()
	h.logger.Debug("history unstaged", "commands", n)
	h.emit(EventUnstage, n)
}

// Commit moves the stage onto the undo stack and discards the redo stack.
// Empty commits are not allowed and leave redo untouched.
func (h *History) Commit() {
	if h.stage.IsEmpty() {
		return
	}
	committed := h.stage
	h.undo = append(h.undo, committed)
	h.stage = &Transaction{}
	h.clearRedo()

	h.logger.Debug("history committed",
		"commands", committed.Len(),
		"undo_depth", len(h.undo),
	)
	h.emit(EventCommit, committed.Len())
}

// Undo reverses the most recent committed transaction and moves it to redo.
// No-op unless CanUndo.
func (h *History) Undo() {
	if !h.CanUndo() {
		return
	}
	last := len(h.undo) - 1
	t := h.undo[last]
	h.undo[last] = nil
	h.undo = h.undo[:last]

	t.Reverse()
	h.redo = append(h.redo, t)

	h.logger.Debug("history undone",
		"commands", t.Len(),
		"undo_depth", len(h.undo),
		"redo_depth", len(h.redo),
	)
	h.emit(EventUndo, t.Len())
}

// Redo re-applies the most recently undone transaction and moves it back to
// undo. No-op unless CanRedo.
func (h *History) Redo() {
	if !h.CanRedo() {
		return
	}
	last := len(h.redo) - 1
	t := h.redo[last]
	h.redo[last] = nil
	h.redo = h.redo[:last]

	t.Reverse()
	h.undo = append(h.undo, t)

	h.logger.Debug("history redone",
		"commands", t.Len(),
		"undo_depth", len(h.undo),
		"redo_depth", len(h.redo),
	)
	h.emit(EventRedo, t.Len())
}

// Clear unstages, then discards the undo stack oldest first, then the redo
// stack oldest first.
func (h *History) Clear() {
	h.Unstage()

	dropped := len(h.undo) + len(h.redo)
	for i, t := range h.undo {
		h.undo[i] = nil
		t.Clear()
	}
	h.undo = nil
	h.clearRedo()

	h.logger.Debug("history cleared", "transactions", dropped)
	h.emit(EventClear, dropped)
}

// CanCommit reports whether the stage holds uncommitted commands.
func (h *History) CanCommit() bool {
	return !h.stage.IsEmpty()
}

// CanUndo reports whether Undo would do anything.
func (h *History) CanUndo() bool {
	return h.stage.IsEmpty() && len(h.undo) > 0
}

// CanRedo reports whether Redo would do anything.
func (h *History) CanRedo() bool {
	return h.stage.IsEmpty() && len(h.redo) > 0
}

// UndoDepth returns the number of committed transactions.
func (h *History) UndoDepth() int {
	return len(h.undo)
}

// RedoDepth returns the number of undone transactions.
func (h *History) RedoDepth() int {
	return len(h.redo)
}

// Staged returns the number of commands in the stage.
func (h *History) Staged() int {
	return h.stage.Len()
}

// clearRedo discards redo transactions in chronological order. The most
// recently undone transaction is the oldest, so the stack is walked top down.
func (h *History) clearRedo() {
	for i := len(h.redo) - 1; i >= 0; i-- {
		t := h.redo[i]
		h.redo[i] = nil
		t.Clear()
	}
	h.redo = nil
}

func (h *History) emit(kind EventKind, commands int) {
	if len(h.observers) == 0 {
		return
	}
	ev := Event{
		Kind:      kind,
		Commands:  commands,
		UndoDepth: len(h.undo),
		RedoDepth: len(h.redo),
		Staged:    h.stage.Len(),
	}
	for _, o := range h.observers {
		o.Observe(ev)
	}
}
