// Package ref implements undoable non-owning references with back-links.
//
// Every Ref that points at a target is threaded onto the target's Referable
// ring, so a target being destroyed can clear each reference to it through
// history. Undoing the destroy restores the references.
package ref

import (
	"github.com/roach88/undoable/internal/invariant"
	"github.com/roach88/undoable/internal/property"
)

// Target is anything a Ref can point at. Pointers to objects embedding a
// Referable satisfy it.
type Target interface {
	comparable
	Referable() *Referable
}

// backRef is the reference side of a ring entry.
type backRef interface {
	clearRef()
	dropRef()
}

type link struct {
	next, prev *link
	ref        backRef
}

func (l *link) lazyInit() {
	if l.next == nil {
		l.next = l
		l.prev = l
	}
}

func (l *link) unlink() {
	if l.next == nil {
		return
	}
	join(l.prev, l.next)
	join(l, l)
}

func join(u, v *link) {
	u.next = v
	v.prev = u
}

// Referable is the ring of references pointing at one target. The zero
// value is an empty ring.
type Referable struct {
	head link
}

func (r *Referable) sentinel() *link {
	r.head.lazyInit()
	return &r.head
}

func (r *Referable) linkBack(l *link) {
	h := r.sentinel()
	l.lazyInit()
	l.unlink()
	join(h.prev, l)
	join(l, h)
}

// Len returns the number of references pointing at the target.
func (r *Referable) Len() int {
	n := 0
	h := r.sentinel()
	for l := h.next; l != h; l = l.next {
		n++
	}
	return n
}

// ResetAllReferences sets every reference to the target to unset, through
// each reference's owner. A reference whose owner does not apply the change
// would loop forever; that case panics instead.
func (r *Referable) ResetAllReferences() {
	h := r.sentinel()
	for l := h.next; l != h; l = h.next {
		l.ref.clearRef()
		invariant.Check(h.next != l, invariant.CodeStalledReset,
			"reference was not released by its owner")
	}
}

// Release drops every reference to the target without commands. Only used
// while the target is being finalized.
func (r *Referable) Release() {
	h := r.sentinel()
	for l := h.next; l != h; l = h.next {
		l.ref.dropRef()
	}
}

// Ref is an undoable reference property. Unset is the zero T.
type Ref[T Target] struct {
	link  link
	owner property.Owner
	value T
	reset func()
}

// Init binds the reference to owner, unset, and registers it. OnReset sets
// it to unset.
func (r *Ref[T]) Init(owner property.Owner) {
	r.InitWithReset(owner, nil)
}

// InitWithReset is Init with a custom OnReset behavior.
func (r *Ref[T]) InitWithReset(owner property.Owner, reset func()) {
	r.link.lazyInit()
	r.link.ref = r
	r.owner = owner
	r.reset = reset
	owner.RegisterProperty(r)
}

// Get returns the target, or the zero T if unset.
func (r *Ref[T]) Get() T {
	return r.value
}

// IsSet reports whether the reference points at a target.
func (r *Ref[T]) IsSet() bool {
	var zero T
	return r.value != zero
}

// Set points the reference at v. Pass the zero T to unset it. Setting the
// current target produces no command.
func (r *Ref[T]) Set(v T) {
	if v == r.value {
		return
	}
	r.owner.ApplyPropertyChange(&change[T]{prop: r, value: v})
}

// OnReset unsets the reference, or runs the reset hook given to
// InitWithReset.
func (r *Ref[T]) OnReset() {
	if r.reset != nil {
		r.reset()
		return
	}
	r.clearRef()
}

// Release detaches the reference from its target's ring without a command.
func (r *Ref[T]) Release() {
	r.dropRef()
}

func (r *Ref[T]) clearRef() {
	var zero T
	r.Set(zero)
}

func (r *Ref[T]) dropRef() {
	var zero T
	r.value = zero
	r.link.unlink()
}

func (r *Ref[T]) setInternal(v T) {
	r.value = v
	var zero T
	if v == zero {
		r.link.unlink()
		return
	}
	v.Referable().linkBack(&r.link)
}

// change swaps the referenced target with the captured one.
type change[T Target] struct {
	prop  *Ref[T]
	value T
}

func (c *change[T]) Apply(bool) {
	old := c.prop.value
	c.prop.setInternal(c.value)
	c.value = old
	c.prop.owner.NotifyPropertyChange(c.prop)
}
