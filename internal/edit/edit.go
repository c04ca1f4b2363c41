package edit

import (
	"fmt"

	"github.com/roach88/listfuse/internal/ir"
)

// Kind identifies the concrete type of an Edit.
type Kind string

const (
	KindAdd    Kind = "add"
	KindAddAll Kind = "add_all"
	KindRemove Kind = "remove"
)

// Edit is a sealed interface. Only Add, AddAll and Remove implement it;
// consumers switch over the three concrete types.
type Edit interface {
	isEdit()
	Kind() Kind
}

// Add inserts Value at Index. Append is the caller's claim that Index was
// the collection size when the edit happened.
type Add struct {
	Index  int
	Append bool
	Value  ir.IRValue
}

func (Add) isEdit() {}

// Kind returns KindAdd.
func (Add) Kind() Kind { return KindAdd }

func (a Add) String() string {
	return fmt.Sprintf("Add(%d,%s,%s)", a.Index, flag(a.Append), ir.Format(a.Value))
}

// AddAll inserts Values at Index, keeping their order.
type AddAll struct {
	Index  int
	Append bool
	Values []ir.IRValue
}

func (AddAll) isEdit() {}

// Kind returns KindAddAll.
func (AddAll) Kind() Kind { return KindAddAll }

func (a AddAll) String() string {
	vals := make([]string, len(a.Values))
	for i, v := range a.Values {
		vals[i] = ir.Format(v)
	}
	return fmt.Sprintf("AddAll(%d,%s,%v)", a.Index, flag(a.Append), vals)
}

// Remove deletes the element at Index. Trailing is the caller's claim that
// Index was the last valid index when the edit happened.
type Remove struct {
	Index    int
	Trailing bool
}

func (Remove) isEdit() {}

// Kind returns KindRemove.
func (Remove) Kind() Kind { return KindRemove }

func (r Remove) String() string {
	return fmt.Sprintf("Remove(%d,%s)", r.Index, flag(r.Trailing))
}

func flag(b bool) string {
	if b {
		return "T"
	}
	return "F"
}

// Delta returns how much an edit changes the collection size.
func Delta(e Edit) int {
	switch e := e.(type) {
	case Add:
		return 1
	case AddAll:
		return len(e.Values)
	case Remove:
		return -1
	default:
		panic(fmt.Sprintf("edit: unknown edit type %T", e))
	}
}

// AddedValues returns the values an edit introduces, in order.
func AddedValues(e Edit) []ir.IRValue {
	switch e := e.(type) {
	case Add:
		return []ir.IRValue{e.Value}
	case AddAll:
		return e.Values
	case Remove:
		return nil
	default:
		panic(fmt.Sprintf("edit: unknown edit type %T", e))
	}
}

// Materialize replays edits directly against a copy of base and returns
// the resulting values. It is the reference result fusion must reproduce.
func Materialize(base []ir.IRValue, edits []Edit) ([]ir.IRValue, error) {
	out := make([]ir.IRValue, len(base))
	copy(out, base)

	for i, e := range edits {
		switch e := e.(type) {
		case Add:
			if e.Index < 0 || e.Index > len(out) {
				return nil, fmt.Errorf("edit %d: %w", i, NewIndexOutOfRange("add", e.Index, len(out)))
			}
			out = insertAt(out, e.Index, AddedValues(e)...)
		case AddAll:
			if e.Index < 0 || e.Index > len(out) {
				return nil, fmt.Errorf("edit %d: %w", i, NewIndexOutOfRange("add_all", e.Index, len(out)))
			}
			out = insertAt(out, e.Index, AddedValues(e)...)
		case Remove:
			if e.Index < 0 || e.Index >= len(out) {
				return nil, fmt.Errorf("edit %d: %w", i, NewIndexOutOfRange("remove", e.Index, len(out)))
			}
			out = append(out[:e.Index], out[e.Index+1:]...)
		default:
			return nil, fmt.Errorf("edit %d: unknown edit type %T", i, e)
		}
	}
	return out, nil
}

func insertAt(list []ir.IRValue, index int, values ...ir.IRValue) []ir.IRValue {
	out := make([]ir.IRValue, 0, len(list)+len(values))
	out = append(out, list[:index]...)
	out = append(out, values...)
	return append(out, list[index:]...)
}
