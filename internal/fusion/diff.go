package fusion

import (
	"fmt"

	"github.com/roach88/listfuse/internal/edit"
	"github.com/roach88/listfuse/internal/ir"
)

// Diff derives a log that turns initial into current when no edit history
// was captured. Past the common prefix every initial element is removed
// at the first mismatch and the rest of current is appended as one batch.
// Fusing the result restores the tail elements that did not change.
func Diff(initial, current []ir.IRValue, opts ...edit.LogOption) (*edit.Log, error) {
	log := edit.NewLog(initial, opts...)

	prefix := 0
	for prefix < len(initial) && prefix < len(current) && ir.Equal(initial[prefix], current[prefix]) {
		prefix++
	}

	for size := len(initial); size > prefix; size-- {
		if err := log.RecordRemove(prefix, prefix == size-1); err != nil {
			return nil, fmt.Errorf("diff: %w", err)
		}
	}
	if err := log.RecordAddAll(prefix, true, current[prefix:]); err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	return log, nil
}
