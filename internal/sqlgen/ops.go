package sqlgen

import (
	"github.com/roach88/listfuse/internal/ir"
)

// Op is one row-level write in stored positions.
//
// This is a sealed interface: only DeleteRange, DeleteAll, Shift, Replace
// and InsertRow implement it.
type Op interface {
	opNode()
}

// DeleteRange deletes the rows at stored positions [From,To).
type DeleteRange struct {
	From int
	To   int
}

// DeleteAll deletes every row of the owner.
type DeleteAll struct{}

// Shift moves the rows at stored positions [From,To) by Offset.
type Shift struct {
	From   int
	To     int
	Offset int
}

// Replace rewrites the row at stored position At with Value and moves it
// to stored position To (To == At for an in-place update).
type Replace struct {
	At    int
	To    int
	Value ir.IRValue
}

// InsertRow inserts Value at stored position At.
type InsertRow struct {
	At    int
	Value ir.IRValue
}

func (DeleteRange) opNode() {}
func (DeleteAll) opNode()   {}
func (Shift) opNode()       {}
func (Replace) opNode()     {}
func (InsertRow) opNode()   {}

// Kind names an op for metrics and logs.
func Kind(op Op) string {
	switch op.(type) {
	case DeleteRange:
		return "delete_range"
	case DeleteAll:
		return "delete_all"
	case Shift:
		return "shift"
	case Replace:
		return "replace"
	case InsertRow:
		return "insert"
	default:
		return "unknown"
	}
}
