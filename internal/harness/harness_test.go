package harness

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/undoable/internal/history"
	"github.com/roach88/undoable/internal/object"
)

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }

func TestRun_Scenarios(t *testing.T) {
	paths, err := filepath.Glob("../../testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Equal(t, len(s.Steps), result.Steps)
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	s, err := LoadScenario("../../testdata/scenarios/cascade_destroy.yaml")
	require.NoError(t, err)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)
	assert.Equal(t, first.Trace, second.Trace)
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	s := &Scenario{
		Name: "failing",
		Steps: []Step{
			{Op: OpCreate, Items: []string{"a"}},
			{Op: OpSet, Item: "a", Prop: "name", Value: strp("renamed")},
			{Op: OpExpect, Item: "a", Prop: "name", Value: strp("other"), Status: "destroyed", Staged: intp(9)},
			{Op: OpExpect, Events: []string{"nothing"}},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		`step 3: a status: expected destroyed, got created`,
		`step 3: a.name: expected "other", got "renamed"`,
		`step 3: staged: expected 9, got 2`,
		`step 4: events: expected ["nothing"], got []`,
	}, result.Errors)
	assert.Equal(t, 4, result.Steps)
}

func TestRun_UnexpectedPanicStops(t *testing.T) {
	s := &Scenario{
		Name: "stops",
		Steps: []Step{
			{Op: OpCreate, Items: []string{"a"}},
			{Op: OpDestroy, Item: "a"},
			{Op: OpSet, Item: "a", Prop: "weight", Value: strp("1")},
			{Op: OpCommit},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "step 3 (set): MUTATE_DESTROYED")
	assert.Equal(t, 3, result.Steps)
	assert.Equal(t, 0, result.UndoDepth)
}

func TestRun_ExpectedPanicMissing(t *testing.T) {
	s := &Scenario{
		Name: "no_panic",
		Steps: []Step{
			{Op: OpCreate, Items: []string{"a"}},
			{Op: OpDestroy, Item: "a", Panics: "DESTROY_DESTROYED"},
			{Op: OpDestroy, Item: "a", Panics: "MUTATE_DESTROYED"},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"step 2 (destroy): expected DESTROY_DESTROYED, step completed",
		"step 3 (destroy): expected MUTATE_DESTROYED, got DESTROY_DESTROYED",
	}, result.Errors)
}

func TestRun_ScenarioErrors(t *testing.T) {
	tests := []struct {
		name  string
		steps []Step
		want  string
	}{
		{"unknown item", []Step{{Op: OpDestroy, Item: "ghost"}}, `step 1 (destroy): unknown item "ghost"`},
		{"duplicate item", []Step{{Op: OpCreate, Items: []string{"a", "a"}}}, `item "a" already exists`},
		{"bad weight", []Step{
			{Op: OpCreate, Items: []string{"a"}},
			{Op: OpSet, Item: "a", Prop: "weight", Value: strp("heavy")},
		}, "weight:"},
		{"finalized item", []Step{
			{Op: OpCreate, Items: []string{"a"}},
			{Op: OpDestroy, Item: "a"},
			{Op: OpCommit},
			{Op: OpReset},
			{Op: OpSet, Item: "a", Prop: "name", Value: strp("x")},
		}, `item "a" has been finalized`},
		{"unknown op", []Step{{Op: "explode"}}, `unknown op "explode"`},
		{"unlinked before", []Step{
			{Op: OpCreate, Items: []string{"o", "a", "b"}},
			{Op: OpLink, Item: "o", Prop: "links", Target: "a", Before: "b"},
		}, `step 2 (link): before "b" is not linked`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(&Scenario{Name: "errors", Steps: tt.steps})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRun_Options(t *testing.T) {
	var kinds []history.EventKind
	var seen *object.Factory
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s := &Scenario{
		Name: "options",
		Steps: []Step{
			{Op: OpCreate, Items: []string{"a"}},
			{Op: OpCommit},
			{Op: OpUndo},
		},
	}
	result, err := Run(s,
		WithLogger(logger),
		WithObserver(history.ObserverFunc(func(ev history.Event) { kinds = append(kinds, ev.Kind) })),
		WithFactoryHook(func(f *object.Factory) { seen = f }),
	)
	require.NoError(t, err)
	assert.True(t, result.Pass)

	assert.Equal(t, []history.EventKind{
		history.EventStage,
		history.EventCommit,
		history.EventUndo,
		history.EventClear,
	}, kinds)
	require.NotNil(t, seen)
	assert.True(t, seen.Closed())
	assert.Contains(t, logs.String(), "scenario=options")
	assert.Contains(t, logs.String(), "step executed")
	assert.Contains(t, logs.String(), "factory closed")
}

func TestRun_LinkPositions(t *testing.T) {
	s := &Scenario{
		Name: "positions",
		Steps: []Step{
			{Op: OpCreate, Items: []string{"o", "a", "b", "c"}},
			{Op: OpLink, Item: "o", Prop: "children", Target: "a"},
			{Op: OpLink, Item: "o", Prop: "children", Target: "b", Front: true},
			{Op: OpLink, Item: "o", Prop: "children", Target: "c", Before: "a"},
			{Op: OpExpect, Item: "o", Prop: "children", Value: strp("b,c,a")},
			{Op: OpUnlink, Item: "c", Prop: "children"},
			{Op: OpExpect, Item: "o", Prop: "children", Value: strp("b,a")},
			{Op: OpRef, Item: "o", Prop: "owned", Target: "c"},
			{Op: OpExpect, Item: "o", Prop: "owned", Value: strp("c")},
			{Op: OpRef, Item: "o", Prop: "owned"},
			{Op: OpExpect, Item: "o", Prop: "owned", Value: strp(""), Staged: intp(10)},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, 4, result.Live)
}

func TestRun_TraceSequence(t *testing.T) {
	s := &Scenario{
		Name: "sequence",
		Steps: []Step{
			{Op: OpCreate, Items: []string{"a", "b"}},
			{Op: OpCommit},
			{Op: OpDestroy, Item: "b"},
			{Op: OpCommit},
			{Op: OpUndo},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	require.NotEmpty(t, result.Trace)

	last := result.Trace[len(result.Trace)-1]
	assert.Equal(t, OpClose, last.Op, "closing the factory is traced last")
	for i, ev := range result.Trace {
		assert.Equal(t, int64(i+1), ev.Seq, "event %d: %s", i, ev.Event)
	}
}

func TestResult_AddError(t *testing.T) {
	r := NewResult("x")
	assert.True(t, r.Pass)
	r.AddError("step %d: bad", 2)
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"step 2: bad"}, r.Errors)
}
