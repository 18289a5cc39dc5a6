package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	for _, name := range []string{"b.yaml", "a.yml", "notes.txt", "nested/c.yaml"} {
		writeFile(t, dir, name, "name: x\n")
	}

	files, err := findScenarioFiles([]string{dir}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "nested", "c.yaml"),
	}, files)
}

func TestFindScenarioFiles_Filter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cart_add.yaml", "")
	writeFile(t, dir, "cart_remove.yaml", "")
	writeFile(t, dir, "order.yaml", "")

	files, err := findScenarioFiles([]string{dir}, "cart_*")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFindScenarioFiles_ExplicitFilesAndDuplicates(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "only.yaml", "")

	files, err := findScenarioFiles([]string{path, dir, path}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestFindScenarioFiles_Errors(t *testing.T) {
	tests := []struct {
		name   string
		paths  func(t *testing.T) []string
		filter string
		code   string
	}{
		{
			name:  "missing path",
			paths: func(t *testing.T) []string { return []string{filepath.Join(t.TempDir(), "nope")} },
			code:  ErrCodeNotFound,
		},
		{
			name:  "no files",
			paths: func(t *testing.T) []string { return []string{t.TempDir()} },
			code:  ErrCodeNoFiles,
		},
		{
			name:   "bad filter",
			paths:  func(t *testing.T) []string { return []string{t.TempDir()} },
			filter: "[",
			code:   ErrCodeBadArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := findScenarioFiles(tt.paths(t), tt.filter)
			require.Error(t, err)
			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, tt.code, loadErr.Code)
		})
	}
}
