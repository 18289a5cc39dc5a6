// Package list implements an undoable intrusive doubly-linked list.
//
// Members embed a Node per list Tag; the list never allocates. Every
// structural change is a relink or replace-all command applied through the
// list's owner, so it can be staged, undone and redone like any other
// property change.
//
// INVARIANTS:
//   - A node belongs to at most one list per Tag.
//   - Node.List is non-nil exactly while the node is linked.
//   - Iterators remain valid across unrelated mutations; an iterator at a
//     node that is unlinked must not be advanced.
package list

import (
	"iter"

	"github.com/roach88/undoable/internal/invariant"
	"github.com/roach88/undoable/internal/property"
)

// List is an undoable property holding intrusive nodes. The zero value is
// usable after Init.
type List[T any, Tag any] struct {
	head  Node[T, Tag]
	owner property.Owner
	reset func()
}

// Init binds the list to owner and registers it. OnReset clears the list.
func (l *List[T, Tag]) Init(owner property.Owner) {
	l.InitWithReset(owner, nil)
}

// InitWithReset is Init with a custom OnReset behavior. Owning variants use
// it to destroy their members after unlinking them.
func (l *List[T, Tag]) InitWithReset(owner property.Owner, reset func()) {
	l.head.lazyInit()
	l.owner = owner
	l.reset = reset
	owner.RegisterProperty(l)
}

func (l *List[T, Tag]) sentinel() *Node[T, Tag] {
	l.head.lazyInit()
	return &l.head
}

func (l *List[T, Tag]) notify() {
	l.owner.NotifyPropertyChange(l)
}

// IsEmpty reports whether the list has no members.
func (l *List[T, Tag]) IsEmpty() bool {
	h := l.sentinel()
	return h.next == h
}

// Len returns the number of members. It walks the list.
func (l *List[T, Tag]) Len() int {
	n := 0
	h := l.sentinel()
	for e := h.next; e != h; e = e.next {
		n++
	}
	return n
}

// Begin returns an iterator at the first member, or End if empty.
func (l *List[T, Tag]) Begin() Iterator[T, Tag] {
	return Iterator[T, Tag]{node: l.sentinel().next}
}

// End returns the past-the-end iterator.
func (l *List[T, Tag]) End() Iterator[T, Tag] {
	return Iterator[T, Tag]{node: l.sentinel()}
}

// Front returns the first member's value, or the zero T if empty.
func (l *List[T, Tag]) Front() T {
	return l.sentinel().next.value
}

// Back returns the last member's value, or the zero T if empty.
func (l *List[T, Tag]) Back() T {
	return l.sentinel().prev.value
}

// LinkFront moves n to the front of the list.
func (l *List[T, Tag]) LinkFront(n *Node[T, Tag]) {
	l.linkBefore(n, l.sentinel().next)
}

// LinkBack moves n to the back of the list.
func (l *List[T, Tag]) LinkBack(n *Node[T, Tag]) {
	l.linkBefore(n, l.sentinel())
}

// LinkAt moves n in front of pos and returns an iterator at n. If n is
// already in another list it is moved. pos must belong to l; pos at n itself
// is a no-op.
func (l *List[T, Tag]) LinkAt(pos Iterator[T, Tag], n *Node[T, Tag]) Iterator[T, Tag] {
	l.checkIterator(pos)
	l.linkBefore(n, pos.node)
	return Iterator[T, Tag]{node: n}
}

func (l *List[T, Tag]) linkBefore(n, next *Node[T, Tag]) {
	n.lazyInit()
	if n == next {
		return
	}
	l.owner.ApplyPropertyChange(&relink[T, Tag]{node: n, next: next, parent: l})
}

// UnlinkFront unlinks the first member. No-op if empty.
func (l *List[T, Tag]) UnlinkFront() {
	l.sentinel().next.Unlink()
}

// UnlinkBack unlinks the last member. No-op if empty.
func (l *List[T, Tag]) UnlinkBack() {
	l.sentinel().prev.Unlink()
}

// Remove unlinks the member at it and returns an iterator at the following
// member. Removing End is a no-op.
func (l *List[T, Tag]) Remove(it Iterator[T, Tag]) Iterator[T, Tag] {
	l.checkIterator(it)
	if it.node == &l.head {
		return it
	}
	next := it.Next()
	it.node.Unlink()
	return next
}

// Find returns an iterator at n, or End if n is not a member.
func (l *List[T, Tag]) Find(n *Node[T, Tag]) Iterator[T, Tag] {
	if n.parent == l {
		return Iterator[T, Tag]{node: n}
	}
	return l.End()
}

// Contains reports whether n is a member of l.
func (l *List[T, Tag]) Contains(n *Node[T, Tag]) bool {
	return n.parent == l
}

// Clear unlinks every member as a single command. Clearing an empty list
// produces no command.
func (l *List[T, Tag]) Clear() {
	if l.IsEmpty() {
		return
	}
	var items []*Node[T, Tag]
	h := &l.head
	for e := h.next; e != h; e = e.next {
		items = append(items, e)
	}
	l.owner.ApplyPropertyChange(&replaceAll[T, Tag]{list: l, items: items})
}

// All iterates values front to back. The member under the cursor may be
// unlinked during iteration.
func (l *List[T, Tag]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		h := l.sentinel()
		for e := h.next; e != h; {
			next := e.next
			if !yield(e.value) {
				return
			}
			e = next
		}
	}
}

// Backward iterates values back to front.
func (l *List[T, Tag]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		h := l.sentinel()
		for e := h.prev; e != h; {
			prev := e.prev
			if !yield(e.value) {
				return
			}
			e = prev
		}
	}
}

// Values returns the member values front to back.
func (l *List[T, Tag]) Values() []T {
	var out []T
	for v := range l.All() {
		out = append(out, v)
	}
	return out
}

// OnReset clears the list, or runs the reset hook given to InitWithReset.
func (l *List[T, Tag]) OnReset() {
	if l.reset != nil {
		l.reset()
		return
	}
	l.Clear()
}

// Release detaches every member directly, without commands or notification.
func (l *List[T, Tag]) Release() {
	h := l.sentinel()
	for e := h.next; e != h; {
		next := e.next
		link(e, e)
		e.parent = nil
		e = next
	}
	link(h, h)
}

func (l *List[T, Tag]) checkIterator(it Iterator[T, Tag]) {
	invariant.Check(it.node != nil && (it.node == &l.head || it.node.parent == l),
		invariant.CodeForeignIterator, "iterator does not belong to this list")
}

// replaceAll detaches a snapshot of members in the forward direction and
// appends them back in order in the reverse direction.
type replaceAll[T, Tag any] struct {
	list  *List[T, Tag]
	items []*Node[T, Tag]
}

func (c *replaceAll[T, Tag]) Apply(reverse bool) {
	l := c.list
	h := &l.head
	if reverse {
		for _, e := range c.items {
			link(h.prev, e)
			link(e, h)
			e.parent = l
		}
	} else {
		link(h, h)
		for _, e := range c.items {
			link(e, e)
			e.parent = nil
		}
	}
	l.notify()
}

// Iterator is a position in a list. Iterators are comparable with ==.
type Iterator[T any, Tag any] struct {
	node *Node[T, Tag]
}

// Next returns the iterator at the following position.
func (it Iterator[T, Tag]) Next() Iterator[T, Tag] {
	return Iterator[T, Tag]{node: it.node.next}
}

// Prev returns the iterator at the preceding position.
func (it Iterator[T, Tag]) Prev() Iterator[T, Tag] {
	return Iterator[T, Tag]{node: it.node.prev}
}

// Value returns the member value at the iterator. At End it is the zero T.
func (it Iterator[T, Tag]) Value() T {
	return it.node.value
}

// Node returns the node at the iterator.
func (it Iterator[T, Tag]) Node() *Node[T, Tag] {
	return it.node
}
