package object

import (
	"github.com/roach88/undoable/internal/history"
	"github.com/roach88/undoable/internal/invariant"
	"github.com/roach88/undoable/internal/list"
	"github.com/roach88/undoable/internal/property"
	"github.com/roach88/undoable/internal/ref"
)

// Tracked is implemented by every pointer to a struct embedding Base.
// Client types override the hooks by declaring methods with the same names.
type Tracked interface {
	property.Owner
	property.Handler
	list.Registrar

	// OnCreate runs when the object enters Created, including on undo of
	// its destroy. Property changes and Destroy are forbidden inside it.
	OnCreate()

	// OnDestroy runs when the object enters Destroyed, including on undo of
	// its create. Property changes and Destroy are forbidden inside it.
	OnDestroy()

	Referable() *ref.Referable
	ID() string
	Status() Status

	base() *Base
}

// Target is a Tracked type usable in owning references.
type Target interface {
	comparable
	Tracked
}

// Destructor is implemented by objects that need a final hook when they
// are finalized. OnDestruct may change properties; changes apply directly.
type Destructor interface {
	OnDestruct()
}

// Base carries the lifecycle state and registries of a tracked object.
// Embed it by value; do not copy it after Create.
type Base struct {
	property.Chain
	list.Members

	referable ref.Referable
	live      membership

	self       Tracked
	factory    *Factory
	history    *history.History
	id         string
	status     Status
	destroying bool
}

// membership links an object into its factory's live list.
type membership struct {
	next, prev *membership
	obj        *Base
}

func (b *Base) base() *Base { return b }

// ID returns the identifier assigned at Create.
func (b *Base) ID() string { return b.id }

// Status returns the lifecycle state.
func (b *Base) Status() Status { return b.status }

// Referable returns the ring of references pointing at the object.
func (b *Base) Referable() *ref.Referable { return &b.referable }

// Factory returns the factory that created the object.
func (b *Base) Factory() *Factory { return b.factory }

func (b *Base) IsConstructing() bool { return b.status == StatusConstructing }
func (b *Base) IsCreated() bool      { return b.status == StatusCreated }
func (b *Base) IsDestroyed() bool    { return b.status == StatusDestroyed }
func (b *Base) IsDestructing() bool  { return b.status == StatusDestructing }

// OnCreate is the default no-op hook.
func (b *Base) OnCreate() {}

// OnDestroy is the default no-op hook.
func (b *Base) OnDestroy() {}

// OnPropertyChange is the default no-op hook.
func (b *Base) OnPropertyChange(property.Property) {}

// ApplyPropertyChange routes cmd to the object's history. While the object
// is being finalized there is no history and cmd applies directly. While it
// is being constructed only scalar values may change, also directly; list
// and reference changes would outlive an undone creation.
func (b *Base) ApplyPropertyChange(cmd history.Command) {
	invariant.Check(b.factory != nil, invariant.CodeNotFromFactory,
		"object was not created through a factory")
	switch b.status {
	case StatusOnCreate:
		invariant.Fail(invariant.CodeMutateInOnCreate, "cannot change properties in OnCreate")
	case StatusOnDestroy:
		invariant.Fail(invariant.CodeMutateInOnDestroy, "cannot change properties in OnDestroy")
	case StatusDestroyed:
		invariant.Fail(invariant.CodeMutateDestroyed, "cannot change properties on destroyed object %s", b.id)
	}
	b.CheckNotNotifying()

	if b.history == nil {
		if b.status == StatusConstructing {
			_, scalar := cmd.(property.ScalarChange)
			invariant.Check(scalar, invariant.CodeLinkWhileConstructing,
				"object %s cannot change lists or references before Create returns", b.id)
		}
		cmd.Apply(false)
		return
	}
	b.history.Stage(cmd)
}

// NotifyPropertyChange dispatches p to the object's OnPropertyChange under
// the reentrancy guard.
func (b *Base) NotifyPropertyChange(p property.Property) {
	var h property.Handler = b.self
	if b.self == nil {
		h = b
	}
	b.Dispatch(h, p)
}

// Destroy tears the object down through history: it resets every property,
// unlinks every list node and clears every reference to the object, then
// stages the destroy. A Destroy reaching an object that is already tearing
// down returns immediately.
func (b *Base) Destroy() {
	if b.destroying {
		return
	}
	invariant.Check(b.factory != nil, invariant.CodeNotFromFactory,
		"object was not created through a factory")
	switch b.status {
	case StatusConstructing:
		invariant.Fail(invariant.CodeNotFromFactory, "cannot destroy object %s before Create returns", b.id)
	case StatusOnCreate:
		invariant.Fail(invariant.CodeDestroyInOnCreate, "cannot destroy in OnCreate")
	case StatusOnDestroy:
		invariant.Fail(invariant.CodeDestroyInOnDestroy, "cannot destroy in OnDestroy")
	case StatusDestroyed, StatusDestructing:
		invariant.Fail(invariant.CodeDestroyDestroyed, "object %s is already destroyed", b.id)
	}

	func() {
		b.destroying = true
		defer func() { b.destroying = false }()
		b.destroyMembers()
	}()

	b.history.Stage(&statusChange{obj: b, create: false})
}

// destroyMembers clears everything the object holds and everything that
// points at it.
func (b *Base) destroyMembers() {
	b.ResetAllProperties()
	b.UnlinkAllNodes()
	b.referable.ResetAllReferences()
}

// cascadeDestroy destroys t if it is live and not already tearing down.
func cascadeDestroy(t Tracked) {
	b := t.base()
	if b.status != StatusCreated || b.destroying {
		return
	}
	b.Destroy()
}

// destruct finalizes the object: no history, optional OnDestruct, then every
// link is dropped without commands.
func (b *Base) destruct() {
	b.history = nil
	b.status = StatusDestructing
	if d, ok := b.self.(Destructor); ok {
		d.OnDestruct()
	}
	b.ReleaseAllProperties()
	b.ReleaseAllNodes()
	b.referable.Release()
	b.factory.remove(b)
}

// statusChange moves an object between Created and Destroyed. The effective
// direction is create XOR reverse. Discarding the command finalizes the
// object if the last applied direction was destroy.
type statusChange struct {
	obj          *Base
	create       bool
	destructable bool
}

func (c *statusChange) Apply(reverse bool) {
	b := c.obj
	if c.create != reverse {
		c.destructable = false
		b.status = StatusOnCreate
		b.self.OnCreate()
		b.status = StatusCreated
		return
	}
	c.destructable = true
	b.status = StatusOnDestroy
	b.self.OnDestroy()
	b.status = StatusDestroyed
}

func (c *statusChange) Discard() {
	if c.destructable {
		c.obj.destruct()
	}
}
