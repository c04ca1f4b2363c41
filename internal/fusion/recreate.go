package fusion

import (
	"github.com/roach88/listfuse/internal/ir"
)

// Recreate returns the naive plan: delete every base row, then insert the
// final list. It is always correct.
func Recreate(baseSize int, final []ir.IRValue) *Plan {
	p := &Plan{strategy: StrategyRecreate, baseSize: baseSize, finalSize: len(final)}
	if baseSize > 0 {
		p.removes = []RemoveRange{{Start: 0, End: baseSize}}
	}
	p.inserts = make([]Insert, len(final))
	for i, v := range final {
		p.inserts[i] = Insert{Position: i, Value: v}
	}
	return p
}

// Choose keeps the fused plan only while it needs fewer operations than
// recreating the collection (one delete plus one insert per element).
func Choose(fused *Plan, final []ir.IRValue) *Plan {
	if fused.OperationCount() < len(final)+1 {
		return fused
	}
	return Recreate(fused.BaseSize(), final)
}
