package sqlgen

import (
	"slices"

	"github.com/roach88/listfuse/internal/fusion"
)

// move is a row or block that changes position, sorted before emission.
type move struct {
	source int
	op     Op
	offset int
}

// Lower converts a plan into ordered ops. base is added to every position;
// it is the mapping's position_base.
func Lower(plan *fusion.Plan, base int) []Op {
	var ops []Op

	if plan.Strategy() == fusion.StrategyRecreate {
		if plan.BaseSize() > 0 {
			ops = append(ops, DeleteAll{})
		}
		for _, ins := range plan.Inserts() {
			ops = append(ops, InsertRow{At: ins.Position + base, Value: ins.Value})
		}
		return ops
	}

	for _, r := range plan.Removes() {
		ops = append(ops, DeleteRange{From: r.Start + base, To: r.End + base})
	}

	var moves []move
	var inPlace []Op
	for _, r := range plan.Renumbers() {
		moves = append(moves, move{
			source: r.Start,
			offset: r.Offset,
			op:     Shift{From: r.Start + base, To: r.End + base, Offset: r.Offset},
		})
	}
	for _, r := range plan.Replaces() {
		op := Replace{At: r.From + base, To: r.Position + base, Value: r.Value}
		if r.Position == r.From {
			inPlace = append(inPlace, op)
			continue
		}
		moves = append(moves, move{source: r.From, offset: r.Position - r.From, op: op})
	}

	var down, up []move
	for _, m := range moves {
		if m.offset < 0 {
			down = append(down, m)
		} else {
			up = append(up, m)
		}
	}
	slices.SortFunc(down, func(a, b move) int { return a.source - b.source })
	slices.SortFunc(up, func(a, b move) int { return b.source - a.source })
	for _, m := range down {
		ops = append(ops, m.op)
	}
	for _, m := range up {
		ops = append(ops, m.op)
	}

	ops = append(ops, inPlace...)
	for _, ins := range plan.Inserts() {
		ops = append(ops, InsertRow{At: ins.Position + base, Value: ins.Value})
	}
	return ops
}
