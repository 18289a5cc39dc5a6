package property

import "github.com/roach88/undoable/internal/history"

// Value is an undoable scalar property.
type Value[T comparable] struct {
	owner Owner
	value T
}

// Init binds the property to owner with an initial value and registers it.
func (v *Value[T]) Init(owner Owner, initial T) {
	v.owner = owner
	v.value = initial
	owner.RegisterProperty(v)
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	return v.value
}

// Set changes the value. Setting the current value produces no command and
// no notification.
func (v *Value[T]) Set(x T) {
	if x == v.value {
		return
	}
	v.owner.ApplyPropertyChange(&valueChange[T]{prop: v, value: x})
}

// OnReset is a no-op: scalar values carry no structure to tear down.
func (v *Value[T]) OnReset() {}

// ScalarChange is implemented by commands that only swap a scalar value.
// An owner still under construction may apply them directly; structural
// changes made before creation could not be undone with it.
type ScalarChange interface {
	history.Command
	scalarChange()
}

// valueChange swaps the stored value with the captured one. The swap is its
// own inverse, so both directions share one code path.
type valueChange[T comparable] struct {
	prop  *Value[T]
	value T
}

func (*valueChange[T]) scalarChange() {}

func (c *valueChange[T]) Apply(bool) {
	c.prop.value, c.value = c.value, c.prop.value
	c.prop.owner.NotifyPropertyChange(c.prop)
}
