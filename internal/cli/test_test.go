package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/datacube/internal/harness"
)

const scenarioDir = "../harness/testdata"

func TestTest_AllPass(t *testing.T) {
	out, _, err := executeCommand(t, "test", scenarioDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ png_subset")
	assert.Contains(t, out, "Test Summary: 6 passed, 0 failed, 6 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTest_Filter(t *testing.T) {
	out, _, err := executeCommand(t, "test", scenarioDir, "--filter", "png_*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTest_JSON(t *testing.T) {
	out, _, err := executeCommand(t, "--format", "json", "test", scenarioDir)
	require.NoError(t, err)

	var resp struct {
		Status string              `json:"status"`
		Data   harness.SuiteResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 6, resp.Data.Total)
	assert.Len(t, resp.Data.Scenarios, 6)
}

func TestTest_Failure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "wrong.yaml", `name: wrong
description: expects the wrong error
steps:
  - declare: {name: c, coverage: A}
expect:
  error: NOT_FOUND
`)

	out, _, err := executeCommand(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong")
	assert.Contains(t, out, "expected error NOT_FOUND")
}

func TestTest_Update(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.yaml", `name: one
description: single declaration
steps:
  - declare: {name: c, coverage: A}
`)

	out, _, err := executeCommand(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ one (golden updated)")

	_, err = os.Stat(filepath.Join(dir, "golden", "one.golden"))
	assert.NoError(t, err)
}

func TestTest_Errors(t *testing.T) {
	_, _, err := executeCommand(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, _, err := executeCommand(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}
