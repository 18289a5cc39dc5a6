// Package property implements the registration and change-notification
// protocol shared by every undoable property.
//
// A Property is bound to an Owner at construction and appended to the
// owner's registration chain. Every mutation is packaged as a
// history.Command and handed to Owner.ApplyPropertyChange, the single
// chokepoint through which mutations reach a History. Applying a command
// reports back through Owner.NotifyPropertyChange.
package property

import (
	"github.com/roach88/undoable/internal/history"
	"github.com/roach88/undoable/internal/invariant"
)

// Property is a member of an owner's registration chain.
type Property interface {
	// OnReset clears the property as part of its owner's teardown.
	OnReset()
}

// Releaser is implemented by properties that hold links into other objects.
// Release drops those links directly, without producing commands; it is
// only used while an owner is being finalized.
type Releaser interface {
	Release()
}

// Owner is implemented by anything that holds properties.
type Owner interface {
	// RegisterProperty appends p to the registration chain.
	RegisterProperty(p Property)

	// ApplyPropertyChange routes a mutation command, typically to a History.
	ApplyPropertyChange(cmd history.Command)

	// NotifyPropertyChange reports that p changed. Owners dispatch it to
	// their Handler under the reentrancy guard.
	NotifyPropertyChange(p Property)
}

// Handler receives change notifications.
type Handler interface {
	OnPropertyChange(p Property)
}

// Chain is the insertion-ordered registration chain of an owner, together
// with the owner's reentrancy guard. Embed it to implement RegisterProperty.
//
// The chain is append-only for the lifetime of the owner.
type Chain struct {
	props     []Property
	notifying bool
}

// RegisterProperty appends p to the chain.
func (c *Chain) RegisterProperty(p Property) {
	c.props = append(c.props, p)
}

// Properties returns the registered properties in registration order.
func (c *Chain) Properties() []Property {
	out := make([]Property, len(c.props))
	copy(out, c.props)
	return out
}

// ResetAllProperties calls OnReset on every property in registration order.
func (c *Chain) ResetAllProperties() {
	for _, p := range c.props {
		p.OnReset()
	}
}

// ReleaseAllProperties calls Release on every property that implements
// Releaser, in registration order.
func (c *Chain) ReleaseAllProperties() {
	for _, p := range c.props {
		if r, ok := p.(Releaser); ok {
			r.Release()
		}
	}
}

// Notifying reports whether a change notification is being dispatched.
func (c *Chain) Notifying() bool {
	return c.notifying
}

// CheckNotNotifying panics if a notification is in progress. Owners call it
// at the top of ApplyPropertyChange.
func (c *Chain) CheckNotNotifying() {
	invariant.Check(!c.notifying, invariant.CodeReentrantMutation,
		"cannot change properties from OnPropertyChange")
}

// Dispatch calls h.OnPropertyChange(p) with the reentrancy guard held.
// A nil handler is a no-op.
func (c *Chain) Dispatch(h Handler, p Property) {
	if h == nil {
		return
	}
	prev := c.notifying
	c.notifying = true
	defer func() { c.notifying = prev }()
	h.OnPropertyChange(p)
}
