// Package invariant defines the precondition failures of the undoable core.
//
// Every failure in the core is a programmer error in the calling layer, not a
// recoverable runtime condition. Violations panic with an *Error so callers
// (and tests) can still identify the broken precondition by Code.
package invariant

import (
	"errors"
	"fmt"
)

// Code identifies the violated precondition.
type Code string

const (
	// CodeNotFromFactory indicates an object used outside the Factory protocol.
	CodeNotFromFactory Code = "NOT_FROM_FACTORY"

	// CodeMutateInOnCreate indicates a property change from inside OnCreate.
	CodeMutateInOnCreate Code = "MUTATE_IN_ON_CREATE"

	// CodeMutateInOnDestroy indicates a property change from inside OnDestroy.
	CodeMutateInOnDestroy Code = "MUTATE_IN_ON_DESTROY"

	// CodeMutateDestroyed indicates a property change on a destroyed object.
	CodeMutateDestroyed Code = "MUTATE_DESTROYED"

	// CodeReentrantMutation indicates a property change from inside a change notification.
	CodeReentrantMutation Code = "REENTRANT_MUTATION"

	// CodeDestroyInOnCreate indicates Destroy called from inside OnCreate.
	CodeDestroyInOnCreate Code = "DESTROY_IN_ON_CREATE"

	// CodeDestroyInOnDestroy indicates Destroy called from inside OnDestroy.
	CodeDestroyInOnDestroy Code = "DESTROY_IN_ON_DESTROY"

	// CodeDestroyDestroyed indicates Destroy called on an already destroyed object.
	CodeDestroyDestroyed Code = "DESTROY_DESTROYED"

	// CodeForeignIterator indicates a list position taken from a different list.
	CodeForeignIterator Code = "FOREIGN_ITERATOR"

	// CodeFactoryClosed indicates use of a factory after Close.
	CodeFactoryClosed Code = "FACTORY_CLOSED"

	// CodeLinkWhileConstructing indicates a list or reference change on an
	// object whose Create has not returned.
	CodeLinkWhileConstructing Code = "LINK_WHILE_CONSTRUCTING"

	// CodeStalledReset indicates a back-reference that refused to reset.
	CodeStalledReset Code = "STALLED_RESET"
)

// Error is the panic value for a violated precondition.
type Error struct {
	// Code identifies the precondition.
	Code Code

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Fail panics with an *Error for code.
func Fail(code Code, format string, args ...any) {
	panic(&Error{Code: code, Message: fmt.Sprintf(format, args...)})
}

// Check panics with an *Error for code unless cond holds.
func Check(cond bool, code Code, format string, args ...any) {
	if !cond {
		Fail(code, format, args...)
	}
}

// Is reports whether err is an *Error with the given code.
// Uses errors.As to handle wrapped errors.
func Is(err error, code Code) bool {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Code == code
	}
	return false
}

// Recover runs fn and returns the *Error it panicked with, or nil if fn
// returned normally. Panics that are not an *Error are re-raised.
func Recover(fn func()) (err *Error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ie, ok := r.(*Error)
		if !ok {
			panic(r)
		}
		err = ie
	}()
	fn()
	return nil
}
