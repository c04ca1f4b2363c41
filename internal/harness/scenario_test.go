package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/listfuse/internal/edit"
	"github.com/roach88/listfuse/internal/ir"
)

func TestParseScenario_Valid(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: parsed
description: "parse everything"
base: [o1, 2, true, null, {k: v}]
strict: true
strategy: auto
position_base: 1
edits:
  - op: add_all
    index: 0
    values: [a, b]
  - op: remove
    index: 6
    trailing: true
expect:
  add: 2
  final: [a]
`))
	require.NoError(t, err)

	assert.Equal(t, "parsed", s.Name)
	assert.Len(t, s.Base, 5)
	assert.True(t, s.Strict)
	assert.Equal(t, "auto", s.Strategy)
	assert.Equal(t, 1, s.PositionBase)
	require.Len(t, s.Edits, 2)
	require.NotNil(t, s.Expect.Add)
	assert.Equal(t, 2, *s.Expect.Add)
	assert.Nil(t, s.Expect.Remove)

	base, known, err := scenarioBase(s)
	require.NoError(t, err)
	assert.True(t, known)
	assert.Equal(t, ir.IRInt(2), base[1])
	assert.Equal(t, ir.IRBool(true), base[2])
	assert.Equal(t, ir.IRNull{}, base[3])
	assert.Equal(t, ir.IRObject{"k": ir.S("v")}, base[4])

	e, err := s.Edits[0].toEdit()
	require.NoError(t, err)
	assert.Equal(t, edit.AddAll{Index: 0, Values: ir.Strings("a", "b")}, e)

	e, err = s.Edits[1].toEdit()
	require.NoError(t, err)
	assert.Equal(t, edit.Remove{Index: 6, Trailing: true}, e)
}

func TestParseScenario_SizedBase(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: sized
description: "sized"
base_size: 3
edits: []
expect: {}
`))
	require.NoError(t, err)

	base, known, err := scenarioBase(s)
	require.NoError(t, err)
	assert.False(t, known)
	assert.Len(t, base, 3)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\nexpect: {}\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: n\nexpect: {}\n",
			wantErr: "description is required",
		},
		{
			name:    "no expect or error",
			yaml:    "name: n\ndescription: d\n",
			wantErr: "one of expect or error is required",
		},
		{
			name:    "expect and error",
			yaml:    "name: n\ndescription: d\nexpect: {}\nerror: INDEX_OUT_OF_RANGE\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "base and base_size",
			yaml:    "name: n\ndescription: d\nbase: [a]\nbase_size: 1\nexpect: {}\n",
			wantErr: "base and base_size are mutually exclusive",
		},
		{
			name:    "negative base_size",
			yaml:    "name: n\ndescription: d\nbase_size: -1\nexpect: {}\n",
			wantErr: "base_size must be non-negative",
		},
		{
			name:    "unknown op",
			yaml:    "name: n\ndescription: d\nedits:\n  - op: move\n    index: 0\nexpect: {}\n",
			wantErr: `unknown op "move"`,
		},
		{
			name:    "missing op",
			yaml:    "name: n\ndescription: d\nedits:\n  - index: 0\nexpect: {}\n",
			wantErr: "op is required",
		},
		{
			name:    "trailing on add",
			yaml:    "name: n\ndescription: d\nedits:\n  - op: add\n    index: 0\n    trailing: true\nexpect: {}\n",
			wantErr: "trailing is only valid for remove",
		},
		{
			name:    "value on remove",
			yaml:    "name: n\ndescription: d\nedits:\n  - op: remove\n    index: 0\n    value: x\nexpect: {}\n",
			wantErr: "remove takes no value",
		},
		{
			name:    "unknown strategy",
			yaml:    "name: n\ndescription: d\nstrategy: lazy\nexpect: {}\n",
			wantErr: `unknown strategy "lazy"`,
		},
		{
			name:    "bad position base",
			yaml:    "name: n\ndescription: d\nposition_base: 2\nexpect: {}\n",
			wantErr: "position_base must be 0 or 1",
		},
		{
			name:    "unknown field",
			yaml:    "name: n\ndescription: d\nexpects: {}\n",
			wantErr: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: f\ndescription: d\nbase: [a]\nexpect: {final: [a]}\n"), 0644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "f", s.Name)
}
