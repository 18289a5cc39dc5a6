// Package harness runs edit scenarios against a fresh object factory.
//
// A scenario is a YAML document listing steps. Each step mutates Items
// from package model, drives the history, or checks the current state.
// Every lifecycle hook and change notification fired by a step is appended
// to the trace, so two runs of the same scenario produce identical traces.
//
// # Scenario Format
//
//	name: reparent_and_undo
//	description: "Moving a child records one change per list"
//	steps:
//	  - op: create
//	    items: [a, b, c]
//	  - op: link
//	    item: a
//	    prop: children
//	    target: c
//	  - op: commit
//	  - op: link
//	    item: b
//	    prop: children
//	    target: c
//	  - op: expect
//	    events: ["change a.children=", "change b.children=c"]
//	  - op: destroy
//	    item: c
//	  - op: destroy
//	    item: c
//	    panics: DESTROY_DESTROYED
//
// # Steps
//
//   - create: create every key in items
//   - set: set a scalar property (name, weight) of item to value
//   - link: link target into item's list prop (children, links), at the
//     back, at the front, or before another member
//   - unlink: unlink item from whichever prop list holds it
//   - remove: remove target from item's list prop through an iterator
//   - clear: clear item's list prop
//   - ref: point item's reference prop (next, owned) at target; an empty
//     or missing target unsets it
//   - destroy: destroy item
//   - commit, unstage, undo, redo: the history operation of that name
//   - reset: discard the whole history
//   - expect: check values, status, events and history depths
//
// Any step may carry panics: CODE, naming the precondition failure the
// step must raise. A step that panics unexpectedly fails the scenario and
// stops it.
//
// # Validation
//
// Documents are decoded with unknown fields rejected, then checked
// against the CUE schema in schema.cue, which encodes the fields each op
// requires.
//
// # Deterministic Testing
//
// Object IDs come from a sequential generator and trace entries are
// numbered by a history.Clock. Golden traces are canonical JSON
// compared with goldie:
//
//	go test ./internal/harness -update
package harness
