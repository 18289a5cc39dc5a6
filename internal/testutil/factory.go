// Package testutil holds deterministic helpers shared by tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/undoable/internal/invariant"
	"github.com/roach88/undoable/internal/object"
)

// NewFactory creates a factory with sequential IDs that is closed when the
// test ends.
func NewFactory(t testing.TB, opts ...object.FactoryOption) *object.Factory {
	t.Helper()
	opts = append([]object.FactoryOption{
		object.WithIDGenerator(object.NewSequentialGenerator("obj")),
	}, opts...)
	f := object.NewFactory(opts...)
	t.Cleanup(f.Close)
	return f
}

// RequireInvariant fails the test unless fn panics with an invariant error
// carrying code.
func RequireInvariant(t testing.TB, code invariant.Code, fn func()) {
	t.Helper()
	err := invariant.Recover(fn)
	require.NotNil(t, err, "expected %s, no panic", code)
	require.Equal(t, code, err.Code, err.Message)
}
