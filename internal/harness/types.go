package harness

import "fmt"

// TraceEvent is one hook invocation, stamped with the step that caused it.
type TraceEvent struct {
	Seq   int64  `json:"seq"`
	Step  int    `json:"step"`
	Op    string `json:"op"`
	Event string `json:"event"`
}

// Result is the outcome of running a scenario.
type Result struct {
	// Name is the scenario name.
	Name string `json:"name"`

	// Pass is true when every expectation held and no step failed.
	Pass bool `json:"pass"`

	// Trace holds every event in order, including those fired when the
	// factory is closed after the last step.
	Trace []TraceEvent `json:"trace"`

	// Errors lists failed expectations.
	Errors []string `json:"errors,omitempty"`

	// Steps is the number of steps executed.
	Steps int `json:"steps"`

	// Final history depths and live object count, taken before the
	// factory is closed.
	UndoDepth int `json:"undo_depth"`
	RedoDepth int `json:"redo_depth"`
	Live      int `json:"live"`
}

// NewResult creates a passing result.
func NewResult(name string) *Result {
	return &Result{
		Name:   name,
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Events returns the rendered events of the trace.
func (r *Result) Events() []string {
	out := make([]string, len(r.Trace))
	for i, ev := range r.Trace {
		out[i] = ev.Event
	}
	return out
}
