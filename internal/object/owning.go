package object

import (
	"github.com/roach88/undoable/internal/list"
	"github.com/roach88/undoable/internal/property"
	"github.com/roach88/undoable/internal/ref"
)

// OwningList is a list that destroys its members when it is reset, which
// happens when its owner is destroyed.
type OwningList[T Tracked, Tag any] struct {
	list.List[T, Tag]
}

// Init binds the list to owner and registers it.
func (l *OwningList[T, Tag]) Init(owner property.Owner) {
	l.List.InitWithReset(owner, l.destroyAll)
}

// destroyAll unlinks every member as one command, then destroys each.
func (l *OwningList[T, Tag]) destroyAll() {
	members := l.Values()
	l.Clear()
	for _, m := range members {
		cascadeDestroy(m)
	}
}

// OwningRef is a reference that destroys its target when it is reset.
type OwningRef[T Target] struct {
	ref.Ref[T]
}

// Init binds the reference to owner, unset, and registers it.
func (r *OwningRef[T]) Init(owner property.Owner) {
	r.Ref.InitWithReset(owner, r.destroyTarget)
}

// destroyTarget unsets the reference, then destroys the former target.
func (r *OwningRef[T]) destroyTarget() {
	if !r.IsSet() {
		return
	}
	target := r.Get()
	var zero T
	r.Set(zero)
	cascadeDestroy(target)
}
