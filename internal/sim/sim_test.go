package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/listfuse/internal/edit"
	"github.com/roach88/listfuse/internal/ir"
)

func slotsString(s *Simulator) []string {
	var out []string
	for _, slot := range s.Slots() {
		out = append(out, slot.String())
	}
	return out
}

func TestReplay(t *testing.T) {
	tests := []struct {
		name     string
		baseSize int
		edits    []edit.Edit
		slots    []string
		runs     []Run
		removed  []Range
	}{
		{
			name:     "empty log",
			baseSize: 3,
			slots:    []string{"O0", "O1", "O2"},
			runs:     []Run{{Start: 0, End: 3}},
		},
		{
			name:     "remove then append",
			baseSize: 4,
			edits:    []edit.Edit{edit.Remove{Index: 1}, edit.Add{Index: 3, Append: true, Value: ir.S("o5")}},
			slots:    []string{"O0", "O2", "O3", "N0"},
			runs:     []Run{{Start: 0, End: 1}, {Start: 2, End: 4}, {New: true, Tokens: []int{0}}},
			removed:  []Range{{Start: 1, End: 2}},
		},
		{
			name:     "remove twice at same index",
			baseSize: 4,
			edits:    []edit.Edit{edit.Remove{Index: 1}, edit.Remove{Index: 1}},
			slots:    []string{"O0", "O3"},
			runs:     []Run{{Start: 0, End: 1}, {Start: 3, End: 4}},
			removed:  []Range{{Start: 1, End: 3}},
		},
		{
			name:     "insert splits an original run",
			baseSize: 3,
			edits:    []edit.Edit{edit.AddAll{Index: 1, Values: ir.Strings("a", "b")}},
			slots:    []string{"O0", "N0", "N1", "O1", "O2"},
			runs:     []Run{{Start: 0, End: 1}, {New: true, Tokens: []int{0, 1}}, {Start: 1, End: 3}},
		},
		{
			name:     "adjacent inserts merge",
			baseSize: 2,
			edits: []edit.Edit{
				edit.Add{Index: 1, Value: ir.S("a")},
				edit.Add{Index: 2, Value: ir.S("b")},
				edit.Add{Index: 1, Value: ir.S("c")},
			},
			slots: []string{"O0", "N2", "N0", "N1", "O1"},
			runs:  []Run{{Start: 0, End: 1}, {New: true, Tokens: []int{2, 0, 1}}, {Start: 1, End: 2}},
		},
		{
			name:     "removing an insert rejoins the originals",
			baseSize: 3,
			edits:    []edit.Edit{edit.Add{Index: 1, Value: ir.S("a")}, edit.Remove{Index: 1}},
			slots:    []string{"O0", "O1", "O2"},
			runs:     []Run{{Start: 0, End: 3}},
		},
		{
			name:     "add then remove something else then remove the add",
			baseSize: 3,
			edits: []edit.Edit{
				edit.Add{Index: 1, Value: ir.S("a")},
				edit.Remove{Index: 2},
				edit.Remove{Index: 1},
			},
			slots:   []string{"O0", "O2"},
			runs:    []Run{{Start: 0, End: 1}, {Start: 2, End: 3}},
			removed: []Range{{Start: 1, End: 2}},
		},
		{
			name:     "clear and rebuild",
			baseSize: 2,
			edits: []edit.Edit{
				edit.Add{Index: 1, Append: true, Value: ir.S("o2")},
				edit.Remove{Index: 1},
				edit.Remove{Index: 0},
				edit.AddAll{Index: 0, Append: true, Values: ir.Strings("o1", "o2")},
			},
			slots:   []string{"N1", "N2", "O1"},
			runs:    []Run{{New: true, Tokens: []int{1, 2}}, {Start: 1, End: 2}},
			removed: []Range{{Start: 0, End: 1}},
		},
		{
			name:     "everything removed",
			baseSize: 2,
			edits:    []edit.Edit{edit.Remove{Index: 1, Trailing: true}, edit.Remove{Index: 0, Trailing: true}},
			runs:     []Run{},
			removed:  []Range{{Start: 0, End: 2}},
		},
		{
			name:     "empty base",
			baseSize: 0,
			edits:    []edit.Edit{edit.AddAll{Index: 0, Append: true, Values: ir.Strings("a", "b")}},
			slots:    []string{"N0", "N1"},
			runs:     []Run{{New: true, Tokens: []int{0, 1}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Replay(tt.baseSize, tt.edits)
			require.NoError(t, err)

			assert.Equal(t, tt.slots, slotsString(s))
			assert.Equal(t, len(tt.slots), s.Len())
			if len(tt.runs) == 0 {
				assert.Empty(t, s.Final())
			} else {
				assert.Equal(t, tt.runs, s.Final())
			}
			assert.Equal(t, tt.removed, s.Removed())
		})
	}
}

func TestReplayMatchesMaterialize(t *testing.T) {
	base := ir.Strings("o1", "o2", "o3", "o4", "o5")
	edits := []edit.Edit{
		edit.Remove{Index: 0},
		edit.AddAll{Index: 2, Values: ir.Strings("a", "b", "c")},
		edit.Remove{Index: 3},
		edit.Add{Index: 6, Append: true, Value: ir.S("d")},
		edit.Remove{Index: 1},
		edit.Add{Index: 0, Value: ir.S("e")},
	}

	s, err := Replay(len(base), edits)
	require.NoError(t, err)

	got, err := s.Materialize(base)
	require.NoError(t, err)
	want, err := edit.Materialize(base, edits)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestInitial(t *testing.T) {
	s := New(5)
	assert.Equal(t, []Run{{Start: 0, End: 5}}, s.Initial())
	assert.Nil(t, New(0).Initial())
	assert.Equal(t, 5, s.BaseSize())
}

func TestFinalIsACopy(t *testing.T) {
	s, err := Replay(1, []edit.Edit{edit.AddAll{Index: 0, Values: ir.Strings("a", "b")}})
	require.NoError(t, err)

	runs := s.Final()
	runs[0].Tokens[0] = 99
	assert.Equal(t, []int{0, 1}, s.Final()[0].Tokens)
}

func TestApplyIndexOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		edit edit.Edit
	}{
		{"remove at size", edit.Remove{Index: 2}},
		{"add past size", edit.Add{Index: 3}},
		{"add all negative", edit.AddAll{Index: -1, Values: ir.Strings("x")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(2)
			err := s.Apply(tt.edit)
			require.Error(t, err)
			assert.True(t, edit.IsIndexOutOfRange(err))
			assert.Equal(t, 2, s.Len())
			assert.Equal(t, []Run{{Start: 0, End: 2}}, s.Final())
		})
	}
}

func TestValueLookup(t *testing.T) {
	s, err := Replay(0, []edit.Edit{
		edit.Add{Index: 0, Value: ir.S("a")},
		edit.Remove{Index: 0},
		edit.Add{Index: 0, Value: ir.S("b")},
	})
	require.NoError(t, err)

	assert.Len(t, s.values, 2)
	assert.Equal(t, ir.S("a"), s.Value(0))
	assert.Equal(t, ir.S("b"), s.Value(1))
	assert.Equal(t, []Run{{New: true, Tokens: []int{1}}}, s.Final())
}

func TestRunCountStaysSmall(t *testing.T) {
	s := New(1_000_000)
	require.NoError(t, s.Apply(edit.Remove{Index: 10}))
	require.NoError(t, s.Apply(edit.Add{Index: 500_000, Value: ir.S("x")}))

	assert.Len(t, s.runs, 4)
	assert.Equal(t, 1_000_000, s.Len())
	assert.Equal(t, []Range{{Start: 10, End: 11}}, s.Removed())
}

func TestMaterializeRejectsWrongBase(t *testing.T) {
	_, err := New(2).Materialize(ir.Strings("a"))
	require.Error(t, err)
}
