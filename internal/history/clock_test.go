package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_NumbersObservedEvents(t *testing.T) {
	var clock Clock
	var seqs []int64
	var log []string
	h := New(WithObserver(ObserverFunc(func(Event) { seqs = append(seqs, clock.Next()) })))

	assert.Equal(t, int64(0), clock.Current())

	h.Stage(tickOf(1, &log))
	h.Commit()
	h.Undo()
	h.Redo()

	assert.Equal(t, []int64{1, 2, 3, 4}, seqs)
	assert.Equal(t, int64(4), clock.Current())
}
