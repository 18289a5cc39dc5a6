package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validateResponse struct {
	Status string           `json:"status"`
	Data   ValidationResult `json:"data"`
	Error  *CLIError        `json:"error"`
}

func TestValidate_ValidScenarios(t *testing.T) {
	out, _, err := execute(t, "validate", scenariosDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ "+filepath.Join(scenariosDir, "basic_undo_redo.yaml")+" (basic_undo_redo, 9 steps)")
	assert.Contains(t, out, "cascade_destroy, 15 steps")
	assert.Contains(t, out, "move_and_unstage, 16 steps")
}

func TestValidate_JSON(t *testing.T) {
	out, _, err := execute(t, "validate", scenariosDir, "--format", "json")
	require.NoError(t, err)

	var resp validateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Len(t, resp.Data.Files, 3)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.yaml", "name: good\nsteps:\n  - op: commit\n")
	writeFile(t, dir, "rules.yaml", `name: rules
steps:
  - op: expect
    prop: weight
  - op: expect
    status: destroyed
`)
	writeFile(t, dir, "schema.yaml", "name: Bad-Name\nsteps:\n  - op: jump\n")
	writeFile(t, dir, "unknown.yaml", "name: unknown\ncolour: red\nsteps:\n  - op: commit\n")

	out, _, err := execute(t, "validate", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp validateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalid, resp.Error.Code)
	assert.False(t, resp.Data.Valid)

	files := make(map[string]FileValidation)
	for _, fv := range resp.Data.Files {
		files[filepath.Base(fv.File)] = fv
	}
	require.Len(t, files, 4)

	assert.True(t, files["good.yaml"].Valid)
	assert.Equal(t, "good", files["good.yaml"].Name)

	rules := files["rules.yaml"]
	assert.False(t, rules.Valid)
	assert.Len(t, rules.Problems, 2)
	assert.Contains(t, rules.Problems[0], "steps[0]")
	assert.Contains(t, rules.Problems[1], "steps[1]")

	schema := files["schema.yaml"]
	assert.False(t, schema.Valid)
	assert.NotEmpty(t, schema.Problems)

	unknown := files["unknown.yaml"]
	assert.False(t, unknown.Valid)
	require.Len(t, unknown.Problems, 1)
	assert.Contains(t, unknown.Problems[0], "colour")
}

func TestValidate_TextFailure(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.yaml", "name: empty\nsteps: []\n")

	out, _, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ "+path)
}

func TestValidate_NoFiles(t *testing.T) {
	out, _, err := execute(t, "validate", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeNoFiles+"]")
}
