package edit

import (
	"fmt"
	"slices"

	"github.com/roach88/listfuse/internal/ir"
)

// Log is an append-only sequence of edits for one collection instance in
// one unit of work. It is not safe for concurrent use.
type Log struct {
	base      []ir.IRValue
	hasValues bool
	baseSize  int
	size      int
	edits     []Edit
	added     int
	removed   int
	sealed    bool
	strict    bool
}

// LogOption configures a Log.
type LogOption func(*Log)

// WithStrictFlags rejects Append/Trailing flags that disagree with the index.
func WithStrictFlags() LogOption {
	return func(l *Log) {
		l.strict = true
	}
}

// NewLog creates an empty log over a snapshot of base. The values let
// fusion recognise re-added elements.
func NewLog(base []ir.IRValue, opts ...LogOption) *Log {
	l := &Log{
		base:      slices.Clone(base),
		hasValues: true,
		baseSize:  len(base),
		size:      len(base),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewSizedLog creates an empty log over a base whose values are unknown.
func NewSizedLog(n int, opts ...LogOption) *Log {
	if n < 0 {
		n = 0
	}
	l := &Log{baseSize: n, size: n}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RecordAdd records inserting value at index.
func (l *Log) RecordAdd(index int, isAppend bool, value ir.IRValue) error {
	if err := l.checkInsert("add", index, isAppend); err != nil {
		return err
	}
	l.push(Add{Index: index, Append: isAppend, Value: value})
	return nil
}

// RecordAddAll records inserting values at index. An empty batch records
// nothing but is still validated.
func (l *Log) RecordAddAll(index int, isAppend bool, values []ir.IRValue) error {
	if err := l.checkInsert("add_all", index, isAppend); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	l.push(AddAll{Index: index, Append: isAppend, Values: slices.Clone(values)})
	return nil
}

// RecordRemove records removing the element at index.
func (l *Log) RecordRemove(index int, isTrailing bool) error {
	if l.sealed {
		return NewLogAlreadyFused("remove")
	}
	if index < 0 || index >= l.size {
		return NewIndexOutOfRange("remove", index, l.size)
	}
	if l.strict && isTrailing != (index == l.size-1) {
		return newFlagMismatch("remove", index, l.size, "trailing", isTrailing)
	}
	l.push(Remove{Index: index, Trailing: isTrailing})
	return nil
}

// push appends a validated edit and updates the live size and counts.
func (l *Log) push(e Edit) {
	l.edits = append(l.edits, e)
	d := Delta(e)
	l.size += d
	if d < 0 {
		l.removed -= d
	} else {
		l.added += d
	}
}

func (l *Log) checkInsert(op string, index int, isAppend bool) error {
	if l.sealed {
		return NewLogAlreadyFused(op)
	}
	if index < 0 || index > l.size {
		return NewIndexOutOfRange(op, index, l.size)
	}
	if l.strict && isAppend != (index == l.size) {
		return newFlagMismatch(op, index, l.size, "append", isAppend)
	}
	return nil
}

// Record appends an already-built edit, validating it like the typed
// Record methods.
func (l *Log) Record(e Edit) error {
	switch e := e.(type) {
	case Add:
		return l.RecordAdd(e.Index, e.Append, e.Value)
	case AddAll:
		return l.RecordAddAll(e.Index, e.Append, e.Values)
	case Remove:
		return l.RecordRemove(e.Index, e.Trailing)
	default:
		panic(fmt.Sprintf("edit: unknown edit type %T", e))
	}
}

// Seal marks the log as consumed. A second call fails with LOG_ALREADY_FUSED.
func (l *Log) Seal() error {
	if l.sealed {
		return NewLogAlreadyFused("fuse")
	}
	l.sealed = true
	return nil
}

// Sealed reports whether the log has been consumed.
func (l *Log) Sealed() bool { return l.sealed }

// Edits returns a copy of the recorded edits in order.
func (l *Log) Edits() []Edit { return slices.Clone(l.edits) }

// Len returns the number of recorded edits.
func (l *Log) Len() int { return len(l.edits) }

// Size returns the live size after all recorded edits.
func (l *Log) Size() int { return l.size }

// BaseSize returns the collection size the log started from.
func (l *Log) BaseSize() int { return l.baseSize }

// BaseValues returns a copy of the base snapshot and whether it is known.
func (l *Log) BaseValues() ([]ir.IRValue, bool) {
	if !l.hasValues {
		return nil, false
	}
	return slices.Clone(l.base), true
}

// AddedCount returns the number of elements added via Add and AddAll.
func (l *Log) AddedCount() int { return l.added }

// RemovedCount returns the number of Remove edits.
func (l *Log) RemovedCount() int { return l.removed }

// Strict reports whether flag validation is enabled.
func (l *Log) Strict() bool { return l.strict }

// Clone returns an unsealed copy of the log. Fusing the copy leaves l open
// for further edits, e.g. when the fused plan may fail to apply.
func (l *Log) Clone() *Log {
	c := *l
	c.base = slices.Clone(l.base)
	c.edits = slices.Clone(l.edits)
	c.sealed = false
	return &c
}
