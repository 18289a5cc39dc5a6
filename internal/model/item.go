// Package model defines Item, the tracked type driven by scenarios and the
// command-line tool.
//
// An Item has two scalar properties, an owning list of children, a plain
// list of links, a plain reference and an owning reference. Every lifecycle
// hook and every change notification is appended to a Recorder so a run can
// be compared event by event.
package model

import (
	"iter"
	"strconv"
	"strings"

	"github.com/roach88/undoable/internal/list"
	"github.com/roach88/undoable/internal/object"
	"github.com/roach88/undoable/internal/property"
	"github.com/roach88/undoable/internal/ref"
)

// ChildTag selects the node an Item uses in another Item's Children.
type ChildTag struct{}

// LinkTag selects the node an Item uses in another Item's Links.
type LinkTag struct{}

// Property names as they appear in events and scenarios.
const (
	PropName     = "name"
	PropWeight   = "weight"
	PropChildren = "children"
	PropLinks    = "links"
	PropNext     = "next"
	PropOwned    = "owned"
)

// Item is a tracked object. Create it with New.
type Item struct {
	object.Base

	key string
	rec *Recorder

	Name     property.Value[string]
	Weight   property.Value[int]
	Children object.OwningList[*Item, ChildTag]
	Links    list.List[*Item, LinkTag]
	Next     ref.Ref[*Item]
	Owned    object.OwningRef[*Item]

	ChildNode list.Node[*Item, ChildTag]
	LinkNode  list.Node[*Item, LinkTag]
}

// New creates an Item in f. key names the item in recorded events; rec may
// be nil.
func New(f *object.Factory, rec *Recorder, key string) *Item {
	return object.Create(f, func(it *Item) {
		it.key = key
		it.rec = rec
		it.Name.Init(it, key)
		it.Weight.Init(it, 0)
		it.Children.Init(it)
		it.Links.Init(it)
		it.Next.Init(it)
		it.Owned.Init(it)
		it.ChildNode.Init(it, it)
		it.LinkNode.Init(it, it)
	})
}

// Key returns the name given to New.
func (it *Item) Key() string {
	if it == nil {
		return ""
	}
	return it.key
}

func (it *Item) OnCreate() {
	it.rec.record(Event{Kind: KindCreate, Object: it.key})
}

func (it *Item) OnDestroy() {
	it.rec.record(Event{Kind: KindDestroy, Object: it.key})
}

func (it *Item) OnDestruct() {
	it.rec.record(Event{Kind: KindDestruct, Object: it.key})
}

func (it *Item) OnPropertyChange(p property.Property) {
	if it.IsConstructing() || it.IsDestructing() {
		return
	}
	name := it.PropertyName(p)
	it.rec.record(Event{
		Kind:     KindChange,
		Object:   it.key,
		Property: name,
		Value:    it.Describe(name),
	})
}

// PropertyName maps one of the item's properties to its scenario name.
// It returns "" for a property the item does not hold.
func (it *Item) PropertyName(p property.Property) string {
	switch p {
	case property.Property(&it.Name):
		return PropName
	case property.Property(&it.Weight):
		return PropWeight
	case property.Property(&it.Children.List):
		return PropChildren
	case property.Property(&it.Links):
		return PropLinks
	case property.Property(&it.Next):
		return PropNext
	case property.Property(&it.Owned.Ref):
		return PropOwned
	}
	return ""
}

// Describe renders the current value of the named property: scalars as
// text, lists as comma-separated keys, references as the target key.
func (it *Item) Describe(prop string) string {
	switch prop {
	case PropName:
		return it.Name.Get()
	case PropWeight:
		return strconv.Itoa(it.Weight.Get())
	case PropChildren:
		return joinKeys(it.Children.All())
	case PropLinks:
		return joinKeys(it.Links.All())
	case PropNext:
		return it.Next.Get().Key()
	case PropOwned:
		return it.Owned.Get().Key()
	}
	return ""
}

func joinKeys(seq iter.Seq[*Item]) string {
	var keys []string
	for m := range seq {
		keys = append(keys, m.key)
	}
	return strings.Join(keys, ",")
}
