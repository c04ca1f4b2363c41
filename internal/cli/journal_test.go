package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/listfuse/internal/ir"
)

func TestJournalAfterApply(t *testing.T) {
	db, args := applyArgs(t, removeThenAppend)
	_, _, err := execute(t, NewApplyCommand(&RootOptions{Format: "text"}), args...)
	require.NoError(t, err)

	out, _, err := execute(t, NewJournalCommand(&RootOptions{Format: "text"}), db, "--plan")
	require.NoError(t, err)
	assert.Contains(t, out, "seq=1 order_items owner=42 fused remove=1 add=1 update=1 statements=3")
	assert.Contains(t, out, `{"base_size":4,`)
	assert.Contains(t, out, "1 flush(es)")
}

func TestJournalJSONFiltersSession(t *testing.T) {
	db, args := applyArgs(t, removeThenAppend)
	out, _, err := execute(t, NewApplyCommand(&RootOptions{Format: "json"}), args...)
	require.NoError(t, err)

	var applied CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &applied))
	require.NotEmpty(t, applied.SessionID)

	var resp struct {
		Status string           `json:"status"`
		Data   []ir.FlushRecord `json:"data"`
	}

	out, _, err = execute(t, NewJournalCommand(&RootOptions{Format: "json"}), db, "--session", applied.SessionID)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, applied.SessionID, resp.Data[0].SessionID)

	out, _, err = execute(t, NewJournalCommand(&RootOptions{Format: "json"}), db, "--session", "other")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Empty(t, resp.Data)
}

func TestJournalEmpty(t *testing.T) {
	db, args := applyArgs(t, `
name: cancelled
description: "no net change"
base: [o1]
edits:
  - op: add
    index: 0
    value: x
  - op: remove
    index: 0
expect: {}
`)
	_, _, err := execute(t, NewApplyCommand(&RootOptions{Format: "text"}), args...)
	require.NoError(t, err)

	out, _, err := execute(t, NewJournalCommand(&RootOptions{Format: "text"}), db)
	require.NoError(t, err)
	assert.Contains(t, out, "No flushes recorded.")
}

func TestJournalMissingDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "missing.db")

	out, _, err := execute(t, NewJournalCommand(&RootOptions{Format: "text"}), db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "database not found")
	assert.NoFileExists(t, db)
}
