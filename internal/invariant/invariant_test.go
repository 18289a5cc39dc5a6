package invariant

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	err := &Error{Code: CodeDestroyDestroyed, Message: "object 7 is destroyed"}
	assert.Equal(t, "DESTROY_DESTROYED: object 7 is destroyed", err.Error())
}

func TestIs(t *testing.T) {
	err := &Error{Code: CodeForeignIterator, Message: "x"}
	wrapped := fmt.Errorf("link: %w", err)

	assert.True(t, Is(err, CodeForeignIterator))
	assert.True(t, Is(wrapped, CodeForeignIterator))
	assert.False(t, Is(wrapped, CodeReentrantMutation))
	assert.False(t, Is(errors.New("plain"), CodeForeignIterator))
	assert.False(t, Is(nil, CodeForeignIterator))
}

func TestRecover(t *testing.T) {
	err := Recover(func() {
		Fail(CodeMutateDestroyed, "object %d", 3)
	})
	require.NotNil(t, err)
	assert.Equal(t, CodeMutateDestroyed, err.Code)
	assert.Equal(t, "object 3", err.Message)

	assert.Nil(t, Recover(func() {}))
}

func TestRecover_RepanicsForeignValues(t *testing.T) {
	assert.PanicsWithValue(t, "boom", func() {
		Recover(func() { panic("boom") })
	})
}

func TestCheck(t *testing.T) {
	assert.Nil(t, Recover(func() { Check(true, CodeStalledReset, "never") }))

	err := Recover(func() { Check(false, CodeStalledReset, "ref %s", "r1") })
	require.NotNil(t, err)
	assert.Equal(t, CodeStalledReset, err.Code)
	assert.Equal(t, "ref r1", err.Message)
}
