package testutil

import (
	"fmt"
	"math/rand"

	"github.com/roach88/listfuse/internal/edit"
	"github.com/roach88/listfuse/internal/ir"
)

// Base returns n distinct values "o1".."on".
func Base(n int) []ir.IRValue {
	out := make([]ir.IRValue, n)
	for i := range out {
		out[i] = ir.IRString(fmt.Sprintf("o%d", i+1))
	}
	return out
}

// RepeatedBase returns n values cycling through "o1".."ok", so equal values
// sit at several base positions.
func RepeatedBase(n, k int) []ir.IRValue {
	out := make([]ir.IRValue, n)
	for i := range out {
		out[i] = ir.IRString(fmt.Sprintf("o%d", i%k+1))
	}
	return out
}

// RandomEdits drives a RecordingList over base through steps random
// edits. Added values are drawn from a small pool that overlaps base, so
// re-adding an original value is common.
//
// The same seed always produces the same list.
func RandomEdits(seed int64, base []ir.IRValue, steps int) (*edit.RecordingList, error) {
	rng := rand.New(rand.NewSource(seed))
	list := edit.NewRecordingList(base)
	pool := len(base) + 3

	value := func() ir.IRValue {
		return ir.IRString(fmt.Sprintf("o%d", rng.Intn(pool)+1))
	}

	for i := 0; i < steps; i++ {
		n := list.Len()
		var err error
		switch op := rng.Intn(10); {
		case n > 0 && op < 4:
			_, err = list.RemoveAt(rng.Intn(n))
		case op < 7:
			err = list.Insert(rng.Intn(n+1), value())
		case op < 9:
			batch := make([]ir.IRValue, rng.Intn(3)+1)
			for j := range batch {
				batch[j] = value()
			}
			err = list.InsertAll(rng.Intn(n+1), batch...)
		case n > 0:
			_, err = list.Set(rng.Intn(n), value())
		default:
			err = list.Add(value())
		}
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}
	return list, nil
}
