package edit

import (
	"slices"

	"github.com/roach88/listfuse/internal/ir"
)

// RecordingList is an ordered list that records every structural change
// into a Log. The log is validated before the list changes, so a failed
// call leaves both untouched.
type RecordingList struct {
	values []ir.IRValue
	log    *Log
	opts   []LogOption
}

// NewRecordingList wraps a copy of base.
func NewRecordingList(base []ir.IRValue, opts ...LogOption) *RecordingList {
	return &RecordingList{
		values: slices.Clone(base),
		log:    NewLog(base, opts...),
		opts:   opts,
	}
}

// Add appends v.
func (r *RecordingList) Add(v ir.IRValue) error {
	return r.Insert(len(r.values), v)
}

// Insert places v at index, shifting later elements right.
func (r *RecordingList) Insert(index int, v ir.IRValue) error {
	if err := r.log.RecordAdd(index, index == len(r.values), v); err != nil {
		return err
	}
	r.values = slices.Insert(r.values, index, v)
	return nil
}

// AddAll appends vs in order.
func (r *RecordingList) AddAll(vs ...ir.IRValue) error {
	return r.InsertAll(len(r.values), vs...)
}

// InsertAll places vs at index, keeping their order.
func (r *RecordingList) InsertAll(index int, vs ...ir.IRValue) error {
	if err := r.log.RecordAddAll(index, index == len(r.values), vs); err != nil {
		return err
	}
	r.values = slices.Insert(r.values, index, vs...)
	return nil
}

// RemoveAt removes and returns the element at index.
func (r *RecordingList) RemoveAt(index int) (ir.IRValue, error) {
	if err := r.log.RecordRemove(index, index == len(r.values)-1); err != nil {
		return nil, err
	}
	old := r.values[index]
	r.values = slices.Delete(r.values, index, index+1)
	return old, nil
}

// Set replaces the element at index and returns the old one. It is
// recorded as a remove followed by an insert at the same index.
func (r *RecordingList) Set(index int, v ir.IRValue) (ir.IRValue, error) {
	if r.log.Sealed() {
		return nil, NewLogAlreadyFused("set")
	}
	if index < 0 || index >= len(r.values) {
		return nil, NewIndexOutOfRange("set", index, len(r.values))
	}
	old, err := r.RemoveAt(index)
	if err != nil {
		return nil, err
	}
	if err := r.Insert(index, v); err != nil {
		return nil, err
	}
	return old, nil
}

// Clear removes every element, last first, so each remove is trailing.
func (r *RecordingList) Clear() error {
	if r.log.Sealed() {
		return NewLogAlreadyFused("clear")
	}
	for len(r.values) > 0 {
		if _, err := r.RemoveAt(len(r.values) - 1); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the element at index.
func (r *RecordingList) Get(index int) (ir.IRValue, error) {
	if index < 0 || index >= len(r.values) {
		return nil, NewIndexOutOfRange("get", index, len(r.values))
	}
	return r.values[index], nil
}

// Values returns a copy of the current elements.
func (r *RecordingList) Values() []ir.IRValue { return slices.Clone(r.values) }

// Len returns the current number of elements.
func (r *RecordingList) Len() int { return len(r.values) }

// Log returns the log recording this list's edits.
func (r *RecordingList) Log() *Log { return r.log }

// Dirty reports whether any edit has been recorded since the last rebase.
func (r *RecordingList) Dirty() bool { return r.log.Len() > 0 }

// Rebase starts a fresh log with the current values as the new base.
// Call it after the old log's plan has been written.
func (r *RecordingList) Rebase() {
	r.log = NewLog(r.values, r.opts...)
}
