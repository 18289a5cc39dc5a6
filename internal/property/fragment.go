package property

import "github.com/roach88/undoable/internal/history"

// Fragment groups properties inside an owner. It is a Property of its owner
// and an Owner of its own properties: mutations are routed to the outer
// owner, notifications report the fragment itself, and resetting the
// fragment resets everything registered with it.
//
// Embed Fragment in a struct holding the grouped properties and bind those
// properties to the embedding struct.
type Fragment struct {
	Chain
	owner Owner
}

// Init binds the fragment to owner and registers it.
func (f *Fragment) Init(owner Owner) {
	f.owner = owner
	owner.RegisterProperty(f)
}

// ApplyPropertyChange forwards cmd to the outer owner.
func (f *Fragment) ApplyPropertyChange(cmd history.Command) {
	f.owner.ApplyPropertyChange(cmd)
}

// NotifyPropertyChange reports the fragment, not the inner property, to the
// outer owner.
func (f *Fragment) NotifyPropertyChange(Property) {
	f.owner.NotifyPropertyChange(f)
}

// OnReset resets every property registered with the fragment.
func (f *Fragment) OnReset() {
	f.ResetAllProperties()
}

// Release releases every property registered with the fragment.
func (f *Fragment) Release() {
	f.ReleaseAllProperties()
}
