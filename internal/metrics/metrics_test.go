package metrics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/undoable/internal/history"
	"github.com/roach88/undoable/internal/object"
)

// newTestCollector registers a collector on an isolated registry.
func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)
	return c, reg
}

type tick struct{}

func (tick) Apply(bool) {}

func TestCollector_ObservesHistory(t *testing.T) {
	c, _ := newTestCollector(t)
	h := history.New(history.WithObserver(c))

	h.Stage(tick{})
	h.Stage(tick{})
	h.Stage(tick{})
	h.Commit()
	h.Stage(tick{})
	h.Commit()
	h.Undo()

	assert.Equal(t, 4.0, testutil.ToFloat64(c.events.WithLabelValues("stage")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.events.WithLabelValues("commit")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.commands.WithLabelValues("commit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.commands.WithLabelValues("undo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.undoDepth))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.redoDepth))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.staged))
}

func TestNewCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	assert.Error(t, err)
}

type widget struct {
	object.Base
}

func TestRegisterFactory_LiveObjects(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := object.NewFactory()
	fg, err := RegisterFactory(reg, f)
	require.NoError(t, err)

	w1 := object.Create[widget](f, nil)
	object.Create[widget](f, nil)
	f.History().Commit()
	n, err := testutil.GatherAndCount(reg, "undoable_factory_live_objects")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	expected := `
# HELP undoable_factory_live_objects Objects not yet finalized, destroyed ones included
# TYPE undoable_factory_live_objects gauge
undoable_factory_live_objects 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected)))

	w1.Destroy()
	f.History().Commit()
	f.History().Clear()
	one := strings.Replace(expected, "objects 2", "objects 1", 1)
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(one)))

	fg.Track(nil)
	zero := strings.Replace(expected, "objects 2", "objects 0", 1)
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(zero)))
}

func TestWriteText(t *testing.T) {
	c, reg := newTestCollector(t)
	c.Observe(history.Event{Kind: history.EventCommit, Commands: 3, UndoDepth: 1})

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, reg))
	out := buf.String()
	assert.Contains(t, out, `undoable_history_events_total{kind="commit"} 1`)
	assert.Contains(t, out, `undoable_history_commands_total{kind="commit"} 3`)
	assert.Contains(t, out, "undoable_history_undo_depth 1")
}
