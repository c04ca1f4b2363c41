package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLText(t *testing.T) {
	mappings := writeMappings(t)
	path := writeFile(t, t.TempDir(), "s.yaml", removeThenAppend)

	out, _, err := execute(t, NewSQLCommand(&RootOptions{Format: "text"}),
		path, "--mappings", mappings, "--mapping", "order_items", "--owner", "42")
	require.NoError(t, err)

	assert.Contains(t, out, "-- fused remove=1 add=1 update=1 (order_items)")
	// position_base 1 shifts every stored position by one.
	assert.Contains(t, out, `DELETE FROM "order_items" WHERE "order_id" = ? AND "idx" >= ? AND "idx" < ?; -- delete_range [42 2 3]`)
	assert.Contains(t, out, `UPDATE "order_items" SET "idx" = "idx" + ? WHERE "order_id" = ? AND "idx" >= ? AND "idx" < ?; -- shift [-1 42 3 5]`)
	assert.Contains(t, out, `INSERT INTO "order_items" ("order_id", "idx", "item") VALUES (?, ?, ?); -- insert [42 4 "o5"]`)
}

func TestSQLJSON(t *testing.T) {
	mappings := writeMappings(t)
	path := writeFile(t, t.TempDir(), "s.yaml", removeThenAppend)

	out, _, err := execute(t, NewSQLCommand(&RootOptions{Format: "json"}),
		path, "--mappings", mappings, "--mapping", "order_items", "--owner", "order-7")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   SQLOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "order_items", resp.Data.Mapping)
	require.Len(t, resp.Data.Statements, 3)

	kinds := []string{}
	for _, s := range resp.Data.Statements {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, []string{"delete_range", "shift", "insert"}, kinds)
	assert.Equal(t, "order-7", resp.Data.Statements[0].Args[0])
}

func TestSQLUnknownMapping(t *testing.T) {
	mappings := writeMappings(t)
	path := writeFile(t, t.TempDir(), "s.yaml", removeThenAppend)

	out, _, err := execute(t, NewSQLCommand(&RootOptions{Format: "text"}),
		path, "--mappings", mappings, "--mapping", "tags")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeUnknownMapping)
	assert.Contains(t, out, `mapping "tags" not found (have [order_items])`)
}

func TestSQLRequiresMappingFlags(t *testing.T) {
	path := writeFile(t, t.TempDir(), "s.yaml", removeThenAppend)

	_, _, err := execute(t, NewSQLCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestSQLScenarioWithoutPlan(t *testing.T) {
	mappings := writeMappings(t)
	path := writeFile(t, t.TempDir(), "s.yaml", `
name: out_of_range
description: "index past the end"
base: [o1]
edits:
  - op: remove
    index: 3
error: INDEX_OUT_OF_RANGE
`)

	out, _, err := execute(t, NewSQLCommand(&RootOptions{Format: "text"}),
		path, "--mappings", mappings, "--mapping", "order_items")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeEditRejected)
}
