package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/listfuse/internal/compiler"
)

func TestValidateValidMappings(t *testing.T) {
	dir := writeMappings(t)

	out, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 1 mapping(s) valid")
}

func TestValidateValidMappingsJSON(t *testing.T) {
	dir := writeMappings(t)

	out, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), dir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, []string{"order_items"}, resp.Data.Mappings)
}

func TestValidateVerboseGoesToStderr(t *testing.T) {
	dir := writeMappings(t)

	out, errOut, err := execute(t, NewValidateCommand(&RootOptions{Format: "json", Verbose: true}), dir)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Validating mapping: order_items")
	assert.NotContains(t, out, "Validating mapping")
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/mappings")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
	assert.Contains(t, out, "mappings directory not found")
}

func TestValidateEmptyDirectory(t *testing.T) {
	out, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNoFiles)
}

func TestValidateInvalidMappings(t *testing.T) {
	tests := []struct {
		name     string
		cue      string
		wantCode string
	}{
		{
			name: "missing column",
			cue: `
package test

mapping: tags: {
	table:           "post_tags"
	owner_column:    "post_id"
	position_column: "pos"
}
`,
			wantCode: ErrCodeMissingField,
		},
		{
			name: "position base out of range",
			cue: `
package test

mapping: tags: {
	table:           "post_tags"
	owner_column:    "post_id"
	position_column: "pos"
	element_column:  "tag"
	position_base:   2
}
`,
			wantCode: ErrCodeSchema,
		},
		{
			name: "bad identifier",
			cue: `
package test

mapping: tags: {
	table:           "post tags"
	owner_column:    "post_id"
	position_column: "pos"
	element_column:  "tag"
}
`,
			wantCode: compiler.ErrInvalidIdentifier,
		},
		{
			name: "shared column",
			cue: `
package test

mapping: tags: {
	table:           "post_tags"
	owner_column:    "post_id"
	position_column: "pos"
	element_column:  "pos"
}
`,
			wantCode: compiler.ErrDuplicateColumn,
		},
		{
			name: "no mappings",
			cue: `
package test

settings: verbose: true
`,
			wantCode: ErrCodeNoMappings,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "bad.cue", tt.cue)

			out, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), dir)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, err.Error(), "validation failed")
			assert.Contains(t, out, "✗ Validation failed")
			assert.Contains(t, out, tt.wantCode)
		})
	}
}

func TestValidateInvalidMappingsJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.cue", `
package test

mapping: tags: {
	table:           "post_tags"
	owner_column:    "post_id"
	position_column: "pos"
	element_column:  "pos"
}
`)

	out, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, "tags.element_column", resp.Data.Errors[0].Field)
	require.NotNil(t, resp.Error)
	assert.Equal(t, compiler.ErrDuplicateColumn, resp.Error.Code)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.cue", `
package test

mapping: first: {
	table:           "first"
	owner_column:    "owner"
	position_column: "pos"
}

mapping: second: {
	table:           "second"
	owner_column:    "owner"
	position_column: "owner"
	element_column:  "elem"
}
`)

	errs, err := ValidateMappingsDir(dir)
	require.Error(t, err, "fail-fast load stops at the first compile error")
	assert.Nil(t, errs)

	out, _, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 error(s)")
	assert.Contains(t, out, ErrCodeMissingField)
	assert.Contains(t, out, compiler.ErrDuplicateColumn)
}

func TestValidateMappingsDir(t *testing.T) {
	errs, err := ValidateMappingsDir(writeMappings(t))
	require.NoError(t, err)
	assert.Empty(t, errs)
}
