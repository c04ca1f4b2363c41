package fusion

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/listfuse/internal/ir"
)

// Strategy names how a plan writes the collection.
type Strategy string

const (
	// StrategyFused writes the minimal fused operations.
	StrategyFused Strategy = "fused"

	// StrategyRecreate deletes every row and inserts the final list.
	StrategyRecreate Strategy = "recreate"

	// StrategyAuto picks the cheaper of the two (see Choose).
	StrategyAuto Strategy = "auto"
)

// ValidStrategies lists the strategies accepted by WithStrategy.
var ValidStrategies = map[Strategy]bool{
	StrategyFused:    true,
	StrategyRecreate: true,
	StrategyAuto:     true,
}

// ErrInconsistentPlan is returned by Apply when a plan does not describe a
// dense, collision-free final layout.
var ErrInconsistentPlan = errors.New("inconsistent plan")

// RemoveRange deletes the rows at base positions [Start,End).
type RemoveRange struct {
	Start int
	End   int
}

// Len returns the number of rows removed.
func (r RemoveRange) Len() int { return r.End - r.Start }

// Insert adds a new row holding Value at final position Position.
type Insert struct {
	Position int
	Value    ir.IRValue
}

// Renumber shifts the rows at base positions [Start,End) by Offset.
type Renumber struct {
	Start  int
	End    int
	Offset int
}

// Replace rewrites the row at base position From in place: it takes Value
// and moves to final position Position.
type Replace struct {
	From     int
	Position int
	Value    ir.IRValue
}

// Plan is the result of fusion. Positions are list indexes; storage
// offsets such as a 1-based position column are applied by sqlgen.
type Plan struct {
	strategy  Strategy
	baseSize  int
	finalSize int
	removes   []RemoveRange
	inserts   []Insert
	renumbers []Renumber
	replaces  []Replace
}

// RemoveCount returns the number of remove ranges.
func (p *Plan) RemoveCount() int { return len(p.removes) }

// AddCount returns the number of inserted rows.
func (p *Plan) AddCount() int { return len(p.inserts) }

// UpdateCount returns renumbered blocks plus in-place replacements.
func (p *Plan) UpdateCount() int { return len(p.renumbers) + len(p.replaces) }

// OperationCount returns the total number of physical operations.
func (p *Plan) OperationCount() int {
	return p.RemoveCount() + p.AddCount() + p.UpdateCount()
}

// Empty reports whether the plan writes nothing.
func (p *Plan) Empty() bool { return p.OperationCount() == 0 }

// Removes returns the remove ranges in ascending base order.
func (p *Plan) Removes() []RemoveRange { return slices.Clone(p.removes) }

// Inserts returns the inserts in ascending final order.
func (p *Plan) Inserts() []Insert { return slices.Clone(p.inserts) }

// Renumbers returns the renumbered blocks in ascending base order.
func (p *Plan) Renumbers() []Renumber { return slices.Clone(p.renumbers) }

// Replaces returns the in-place replacements in ascending base order.
func (p *Plan) Replaces() []Replace { return slices.Clone(p.replaces) }

// BaseSize returns the number of rows before the flush.
func (p *Plan) BaseSize() int { return p.baseSize }

// FinalSize returns the number of rows after the flush.
func (p *Plan) FinalSize() int { return p.finalSize }

// Strategy returns StrategyFused or StrategyRecreate.
func (p *Plan) Strategy() Strategy { return p.strategy }

// Summary renders the counts for logs and CLI output.
func (p *Plan) Summary() string {
	return fmt.Sprintf("%s remove=%d add=%d update=%d",
		p.strategy, p.RemoveCount(), p.AddCount(), p.UpdateCount())
}

// Apply executes the plan against base in memory, treating every row
// operation as simultaneous. It fails with ErrInconsistentPlan if two rows
// land on one position or a final position stays empty.
func (p *Plan) Apply(base []ir.IRValue) ([]ir.IRValue, error) {
	if len(base) != p.baseSize {
		return nil, fmt.Errorf("apply plan: base has %d values, plan expects %d", len(base), p.baseSize)
	}

	out := make([]ir.IRValue, p.finalSize)
	filled := make([]bool, p.finalSize)
	place := func(pos int, v ir.IRValue) error {
		if pos < 0 || pos >= p.finalSize {
			return fmt.Errorf("%w: position %d outside final size %d", ErrInconsistentPlan, pos, p.finalSize)
		}
		if filled[pos] {
			return fmt.Errorf("%w: position %d written twice", ErrInconsistentPlan, pos)
		}
		out[pos] = v
		filled[pos] = true
		return nil
	}

	touched := make([]bool, p.baseSize)
	claim := func(i int) error {
		if i < 0 || i >= p.baseSize {
			return fmt.Errorf("%w: base position %d outside base size %d", ErrInconsistentPlan, i, p.baseSize)
		}
		if touched[i] {
			return fmt.Errorf("%w: base position %d used twice", ErrInconsistentPlan, i)
		}
		touched[i] = true
		return nil
	}

	for _, r := range p.removes {
		for i := r.Start; i < r.End; i++ {
			if err := claim(i); err != nil {
				return nil, err
			}
		}
	}
	for _, r := range p.replaces {
		if err := claim(r.From); err != nil {
			return nil, err
		}
		if err := place(r.Position, r.Value); err != nil {
			return nil, err
		}
	}
	for _, r := range p.renumbers {
		for i := r.Start; i < r.End; i++ {
			if err := claim(i); err != nil {
				return nil, err
			}
			if err := place(i+r.Offset, base[i]); err != nil {
				return nil, err
			}
		}
	}
	for i, v := range base {
		if touched[i] {
			continue
		}
		if err := place(i, v); err != nil {
			return nil, err
		}
	}
	for _, ins := range p.inserts {
		if err := place(ins.Position, ins.Value); err != nil {
			return nil, err
		}
	}

	for pos, ok := range filled {
		if !ok {
			return nil, fmt.Errorf("%w: position %d left empty", ErrInconsistentPlan, pos)
		}
	}
	return out, nil
}

// Document describes the plan as an IR object. It is the input to ID and
// the form written to golden files.
func (p *Plan) Document() ir.IRObject {
	removes := make(ir.IRArray, len(p.removes))
	for i, r := range p.removes {
		removes[i] = ir.IRObject{"start": ir.IRInt(r.Start), "end": ir.IRInt(r.End)}
	}
	renumbers := make(ir.IRArray, len(p.renumbers))
	for i, r := range p.renumbers {
		renumbers[i] = ir.IRObject{
			"start":  ir.IRInt(r.Start),
			"end":    ir.IRInt(r.End),
			"offset": ir.IRInt(r.Offset),
		}
	}
	replaces := make(ir.IRArray, len(p.replaces))
	for i, r := range p.replaces {
		replaces[i] = ir.IRObject{
			"from":     ir.IRInt(r.From),
			"position": ir.IRInt(r.Position),
			"value":    orNull(r.Value),
		}
	}
	inserts := make(ir.IRArray, len(p.inserts))
	for i, ins := range p.inserts {
		inserts[i] = ir.IRObject{"position": ir.IRInt(ins.Position), "value": orNull(ins.Value)}
	}

	return ir.IRObject{
		"version":    ir.IRString(ir.PlanVersion),
		"strategy":   ir.IRString(p.strategy),
		"base_size":  ir.IRInt(p.baseSize),
		"final_size": ir.IRInt(p.finalSize),
		"counts": ir.IRObject{
			"remove": ir.IRInt(p.RemoveCount()),
			"add":    ir.IRInt(p.AddCount()),
			"update": ir.IRInt(p.UpdateCount()),
		},
		"removes":   removes,
		"renumbers": renumbers,
		"replaces":  replaces,
		"inserts":   inserts,
	}
}

// ID returns the content-addressed plan ID.
func (p *Plan) ID() (string, error) {
	return ir.PlanID(p.Document())
}

func orNull(v ir.IRValue) ir.IRValue {
	if v == nil {
		return ir.IRNull{}
	}
	return v
}
