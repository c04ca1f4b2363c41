package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const orderItemsMapping = `
package test

mapping: order_items: {
	table:           "order_items"
	owner_column:    "order_id"
	position_column: "idx"
	element_column:  "item"
	position_base:   1
}
`

const removeThenAppend = `
name: remove_then_append
description: "Remove in the middle, then append at the end"
base: [o1, o2, o3, o4]
edits:
  - op: remove
    index: 1
  - op: add
    index: 3
    append: true
    value: o5
expect:
  remove: 1
  add: 1
  update: 1
  final: [o1, o3, o4, o5]
`

// harnessScenarios is the scenario suite of the harness package.
var harnessScenarios = filepath.Join("..", "harness", "testdata", "scenarios")

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeMappings(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "mappings.cue", orderItemsMapping)
	return dir
}

// execute runs cmd with args and returns stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
