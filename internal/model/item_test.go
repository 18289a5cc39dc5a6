package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/undoable/internal/invariant"
	"github.com/roach88/undoable/internal/object"
	"github.com/roach88/undoable/internal/testutil"
)

func newTestFactory(t *testing.T) (*object.Factory, *Recorder) {
	t.Helper()
	f := testutil.NewFactory(t, object.WithIDGenerator(object.NewSequentialGenerator("item")))
	return f, &Recorder{}
}

func strs(events []Event) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.String()
	}
	return out
}

func TestNew_InitIsNotRecorded(t *testing.T) {
	f, rec := newTestFactory(t)
	a := New(f, rec, "a")

	assert.Equal(t, "a", a.Key())
	assert.Equal(t, "item-1", a.ID())
	assert.Equal(t, "a", a.Name.Get())
	assert.Equal(t, []string{"create a"}, strs(rec.Events()))
}

func TestItem_UndoRedo(t *testing.T) {
	f, rec := newTestFactory(t)
	h := f.History()

	a := New(f, rec, "a")
	b := New(f, rec, "b")
	a.Weight.Set(3)
	a.Children.LinkBack(&b.ChildNode)
	h.Commit()
	assert.Equal(t, []string{
		"create a",
		"create b",
		"change a.weight=3",
		"change a.children=b",
	}, strs(rec.Events()))

	n := rec.Len()
	h.Undo()
	assert.Equal(t, []string{
		"change a.children=",
		"change a.weight=0",
		"destroy b",
		"destroy a",
	}, strs(rec.Since(n)))

	n = rec.Len()
	h.Redo()
	assert.Equal(t, []string{
		"create a",
		"create b",
		"change a.weight=3",
		"change a.children=b",
	}, strs(rec.Since(n)))
}

func TestItem_DestroyCascadesToChildren(t *testing.T) {
	f, rec := newTestFactory(t)
	h := f.History()

	a := New(f, rec, "a")
	b := New(f, rec, "b")
	c := New(f, rec, "c")
	a.Children.LinkBack(&b.ChildNode)
	a.Links.LinkBack(&c.LinkNode)
	c.Next.Set(a)
	h.Commit()

	n := rec.Len()
	a.Destroy()
	h.Commit()
	assert.Equal(t, []string{
		"change a.children=",
		"destroy b",
		"change a.links=",
		"change c.next=",
		"destroy a",
	}, strs(rec.Since(n)))
	assert.True(t, b.IsDestroyed())
	assert.True(t, c.IsCreated())

	n = rec.Len()
	h.Clear()
	assert.Equal(t, []string{"destruct b", "destruct a"}, strs(rec.Since(n)))
	assert.Equal(t, 1, f.Len())
}

func TestItem_OwnedReference(t *testing.T) {
	f, rec := newTestFactory(t)
	h := f.History()

	a := New(f, rec, "a")
	b := New(f, rec, "b")
	a.Owned.Set(b)
	h.Commit()
	assert.Equal(t, "b", a.Describe(PropOwned))

	n := rec.Len()
	a.Destroy()
	h.Commit()
	assert.Equal(t, []string{
		"change a.owned=",
		"destroy b",
		"destroy a",
	}, strs(rec.Since(n)))

	h.Undo()
	assert.True(t, b.IsCreated())
	assert.Same(t, b, a.Owned.Get())
}

func TestItem_PropertyName(t *testing.T) {
	f, _ := newTestFactory(t)
	a := New(f, nil, "a")
	other := New(f, nil, "other")

	assert.Equal(t, PropName, a.PropertyName(&a.Name))
	assert.Equal(t, PropWeight, a.PropertyName(&a.Weight))
	assert.Equal(t, PropChildren, a.PropertyName(&a.Children.List))
	assert.Equal(t, PropLinks, a.PropertyName(&a.Links))
	assert.Equal(t, PropNext, a.PropertyName(&a.Next))
	assert.Equal(t, PropOwned, a.PropertyName(&a.Owned.Ref))
	assert.Empty(t, a.PropertyName(&other.Name))
}

func TestItem_Describe(t *testing.T) {
	f, _ := newTestFactory(t)
	a := New(f, nil, "a")
	b := New(f, nil, "b")
	c := New(f, nil, "c")

	a.Links.LinkBack(&b.LinkNode)
	a.Links.LinkBack(&c.LinkNode)
	a.Next.Set(c)
	a.Weight.Set(-2)

	assert.Equal(t, "b,c", a.Describe(PropLinks))
	assert.Equal(t, "c", a.Describe(PropNext))
	assert.Equal(t, "-2", a.Describe(PropWeight))
	assert.Equal(t, "", a.Describe(PropOwned))
	assert.Equal(t, "", a.Describe("bogus"))
}

func TestRecorder(t *testing.T) {
	var nilRec *Recorder
	require.NotPanics(t, func() { nilRec.record(Event{Kind: KindCreate}) })

	rec := &Recorder{}
	rec.record(Event{Kind: KindCreate, Object: "a"})
	rec.record(Event{Kind: KindChange, Object: "a", Property: PropName, Value: "x"})
	assert.Equal(t, 2, rec.Len())
	assert.Equal(t, []string{"change a.name=x"}, strs(rec.Since(1)))
	assert.Empty(t, rec.Since(5))

	rec.Reset()
	assert.Zero(t, rec.Len())
}

func TestItem_DestroyedRejectsChanges(t *testing.T) {
	f, rec := newTestFactory(t)
	a := New(f, rec, "a")
	f.History().Commit()
	a.Destroy()

	testutil.RequireInvariant(t, invariant.CodeMutateDestroyed, func() { a.Weight.Set(1) })
	testutil.RequireInvariant(t, invariant.CodeDestroyDestroyed, a.Destroy)
}

func TestNew_TakesIDFromFactory(t *testing.T) {
	f := testutil.NewFactory(t, object.WithIDGenerator(testutil.NewFixedIDGenerator("root")))
	rec := &Recorder{}

	a := New(f, rec, "a")
	b := New(f, rec, "b")
	assert.Equal(t, "root", a.ID())
	assert.Equal(t, "fixed-2", b.ID())
	assert.Equal(t, "b", b.Key(), "keys name items, ids identify objects")
}
