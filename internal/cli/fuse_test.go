package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuseText(t *testing.T) {
	path := writeFile(t, t.TempDir(), "s.yaml", removeThenAppend)

	out, _, err := execute(t, NewFuseCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)

	assert.Contains(t, out, "Plan: fused remove=1 add=1 update=1")
	assert.Contains(t, out, "  remove   [1,2)")
	assert.Contains(t, out, "  renumber [2,4) offset -1")
	assert.Contains(t, out, "  insert   3 o5")
	assert.Contains(t, out, "Final: [o1 o3 o4 o5]")
	assert.NotContains(t, out, "✗")
}

func TestFuseJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "s.yaml", removeThenAppend)

	out, _, err := execute(t, NewFuseCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Scenario string         `json:"scenario"`
			Summary  string         `json:"summary"`
			Plan     map[string]any `json:"plan"`
			Final    []string       `json:"final"`
			Pass     bool           `json:"pass"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "remove_then_append", resp.Data.Scenario)
	assert.Equal(t, "fused remove=1 add=1 update=1", resp.Data.Summary)
	assert.Equal(t, "fused", resp.Data.Plan["strategy"])
	assert.Equal(t, float64(4), resp.Data.Plan["final_size"])
	assert.Equal(t, []string{"o1", "o3", "o4", "o5"}, resp.Data.Final)
	assert.True(t, resp.Data.Pass)
}

func TestFuseReplace(t *testing.T) {
	path := writeFile(t, t.TempDir(), "s.yaml", `
name: replace
description: "remove and reinsert at the same index"
base: [o1, o2, o3]
edits:
  - op: remove
    index: 1
  - op: add
    index: 1
    value: o2New
expect:
  update: 1
`)

	out, _, err := execute(t, NewFuseCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "Plan: fused remove=0 add=0 update=1")
	assert.Contains(t, out, "  replace  1 -> 1 o2New")
}

func TestFuseExpectedError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "s.yaml", `
name: out_of_range
description: "index past the end"
base: [o1]
edits:
  - op: remove
    index: 3
error: INDEX_OUT_OF_RANGE
`)

	out, _, err := execute(t, NewFuseCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "Rejected: INDEX_OUT_OF_RANGE (expected)")
	assert.NotContains(t, out, "Plan:")
}

func TestFuseFailedExpectation(t *testing.T) {
	path := writeFile(t, t.TempDir(), "s.yaml", `
name: wrong
description: "expects two removes"
base: [o1, o2]
edits:
  - op: remove
    index: 0
expect:
  remove: 2
`)

	out, _, err := execute(t, NewFuseCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Assertion failed: remove_count")
}

func TestFuseMissingFile(t *testing.T) {
	out, _, err := execute(t, NewFuseCommand(&RootOptions{Format: "text"}), "/nonexistent/s.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeNotFound+"]")
}

func TestFuseInvalidScenario(t *testing.T) {
	path := writeFile(t, t.TempDir(), "s.yaml", "name: x\ndescription: y\nexpect: {}\nedits:\n  - op: move\n")

	out, _, err := execute(t, NewFuseCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeInvalidScenario)
	assert.Contains(t, out, `unknown op "move"`)
}
