// Package sim replays an edit log over a base collection of known size.
//
// The evolving collection is kept as a sequence of runs: an original run
// covers a contiguous range of base positions, a new run holds the tokens
// of added values in order. Each edit touches O(runs) state, never O(N).
// Edits are applied strictly in log order; an added value that a later
// edit removes leaves nothing behind.
package sim

import (
	"fmt"
	"slices"

	"github.com/roach88/listfuse/internal/edit"
	"github.com/roach88/listfuse/internal/ir"
)

// Slot is one position of the simulated collection: either Original (a
// base position) or New (a token naming an added value).
type Slot struct {
	New      bool
	Original int
	Token    int
}

func (s Slot) String() string {
	if s.New {
		return fmt.Sprintf("N%d", s.Token)
	}
	return fmt.Sprintf("O%d", s.Original)
}

// Run is a maximal block of slots of one kind. An original run covers base
// positions [Start,End); a new run carries Tokens in order.
type Run struct {
	New    bool
	Start  int
	End    int
	Tokens []int
}

// Len returns the number of slots in the run.
func (r Run) Len() int {
	if r.New {
		return len(r.Tokens)
	}
	return r.End - r.Start
}

func (r Run) String() string {
	if r.New {
		return fmt.Sprintf("N%v", r.Tokens)
	}
	return fmt.Sprintf("O[%d,%d)", r.Start, r.End)
}

// Range is a half-open range of base positions.
type Range struct {
	Start int
	End   int
}

// Len returns the number of positions in the range.
func (r Range) Len() int { return r.End - r.Start }

// Simulator holds replay state. It is not safe for concurrent use.
type Simulator struct {
	baseSize int
	runs     []Run
	size     int
	values   []ir.IRValue
}

// New creates a simulator over a base of n elements.
func New(n int) *Simulator {
	if n < 0 {
		n = 0
	}
	s := &Simulator{baseSize: n, size: n}
	if n > 0 {
		s.runs = []Run{{Start: 0, End: n}}
	}
	return s
}

// Replay applies edits in order to a base of baseSize elements.
func Replay(baseSize int, edits []edit.Edit) (*Simulator, error) {
	s := New(baseSize)
	for i, e := range edits {
		if err := s.Apply(e); err != nil {
			return nil, fmt.Errorf("replay edit %d: %w", i, err)
		}
	}
	return s, nil
}

// Apply replays one edit. Index errors leave the state unchanged.
func (s *Simulator) Apply(e edit.Edit) error {
	switch e := e.(type) {
	case edit.Add:
		if e.Index < 0 || e.Index > s.size {
			return edit.NewIndexOutOfRange("add", e.Index, s.size)
		}
		s.insert(e.Index, edit.AddedValues(e))
	case edit.AddAll:
		if e.Index < 0 || e.Index > s.size {
			return edit.NewIndexOutOfRange("add_all", e.Index, s.size)
		}
		s.insert(e.Index, edit.AddedValues(e))
	case edit.Remove:
		if e.Index < 0 || e.Index >= s.size {
			return edit.NewIndexOutOfRange("remove", e.Index, s.size)
		}
		s.remove(e.Index)
	default:
		return fmt.Errorf("sim: unknown edit type %T", e)
	}
	return nil
}

func (s *Simulator) insert(index int, values []ir.IRValue) {
	if len(values) == 0 {
		return
	}
	tokens := make([]int, len(values))
	for i, v := range values {
		tokens[i] = len(s.values)
		s.values = append(s.values, v)
	}
	added := Run{New: true, Tokens: tokens}

	if index == s.size {
		s.runs = append(s.runs, added)
	} else {
		i, k := s.locate(index)
		if k == 0 {
			s.runs = slices.Insert(s.runs, i, added)
		} else {
			left, right := split(s.runs[i], k)
			s.runs = slices.Replace(s.runs, i, i+1, left, added, right)
		}
	}
	s.size += len(values)
	s.normalize()
}

func (s *Simulator) remove(index int) {
	i, k := s.locate(index)
	r := s.runs[i]
	if r.New {
		tokens := slices.Clone(r.Tokens)
		s.runs[i].Tokens = slices.Delete(tokens, k, k+1)
	} else {
		left := Run{Start: r.Start, End: r.Start + k}
		right := Run{Start: r.Start + k + 1, End: r.End}
		s.runs = slices.Replace(s.runs, i, i+1, left, right)
	}
	s.size--
	s.normalize()
}

// locate returns the run holding position index and the offset inside it.
func (s *Simulator) locate(index int) (int, int) {
	off := 0
	for i, r := range s.runs {
		if index < off+r.Len() {
			return i, index - off
		}
		off += r.Len()
	}
	panic(fmt.Sprintf("sim: index %d not found in size %d", index, s.size))
}

// split cuts r before its k-th slot.
func split(r Run, k int) (Run, Run) {
	if r.New {
		return Run{New: true, Tokens: slices.Clone(r.Tokens[:k])},
			Run{New: true, Tokens: slices.Clone(r.Tokens[k:])}
	}
	return Run{Start: r.Start, End: r.Start + k}, Run{Start: r.Start + k, End: r.End}
}

// normalize drops empty runs and merges neighbours of the same kind that
// continue each other.
func (s *Simulator) normalize() {
	out := s.runs[:0]
	for _, r := range s.runs {
		if r.Len() == 0 {
			continue
		}
		if n := len(out); n > 0 {
			last := &out[n-1]
			switch {
			case last.New && r.New:
				last.Tokens = append(slices.Clip(last.Tokens), r.Tokens...)
				continue
			case !last.New && !r.New && last.End == r.Start:
				last.End = r.End
				continue
			}
		}
		out = append(out, r)
	}
	s.runs = out
}

// BaseSize returns the size of the base collection.
func (s *Simulator) BaseSize() int { return s.baseSize }

// Len returns the current size of the simulated collection.
func (s *Simulator) Len() int { return s.size }

// Initial returns the run sequence before any edit.
func (s *Simulator) Initial() []Run {
	if s.baseSize == 0 {
		return nil
	}
	return []Run{{Start: 0, End: s.baseSize}}
}

// Final returns a copy of the current run sequence.
func (s *Simulator) Final() []Run {
	out := make([]Run, len(s.runs))
	for i, r := range s.runs {
		out[i] = r
		out[i].Tokens = slices.Clone(r.Tokens)
	}
	return out
}

// Slots expands the current run sequence. O(N): tests and small lists only.
func (s *Simulator) Slots() []Slot {
	out := make([]Slot, 0, s.size)
	for _, r := range s.runs {
		if r.New {
			for _, tok := range r.Tokens {
				out = append(out, Slot{New: true, Token: tok})
			}
			continue
		}
		for p := r.Start; p < r.End; p++ {
			out = append(out, Slot{Original: p})
		}
	}
	return out
}

// Value returns the value an add introduced under token.
func (s *Simulator) Value(token int) ir.IRValue {
	return s.values[token]
}

// Removed returns the base ranges absent from the current sequence, in
// ascending order. Surviving originals keep their relative order, so the
// gaps between original runs are exactly the removed ranges.
func (s *Simulator) Removed() []Range {
	var out []Range
	next := 0
	for _, r := range s.runs {
		if r.New {
			continue
		}
		if r.Start > next {
			out = append(out, Range{Start: next, End: r.Start})
		}
		next = r.End
	}
	if next < s.baseSize {
		out = append(out, Range{Start: next, End: s.baseSize})
	}
	return out
}

// Materialize expands the current sequence into values, reading original
// slots from base.
func (s *Simulator) Materialize(base []ir.IRValue) ([]ir.IRValue, error) {
	if len(base) != s.baseSize {
		return nil, fmt.Errorf("sim: base has %d values, expected %d", len(base), s.baseSize)
	}
	out := make([]ir.IRValue, 0, s.size)
	for _, r := range s.runs {
		if r.New {
			for _, tok := range r.Tokens {
				out = append(out, s.values[tok])
			}
			continue
		}
		out = append(out, base[r.Start:r.End]...)
	}
	return out, nil
}
