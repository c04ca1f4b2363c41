package fusion

import (
	"fmt"

	"github.com/roach88/listfuse/internal/edit"
	"github.com/roach88/listfuse/internal/ir"
	"github.com/roach88/listfuse/internal/sim"
)

// Option configures Fuse.
type Option func(*config)

type config struct {
	restore  bool
	strategy Strategy
}

func defaultConfig() config {
	return config{restore: true, strategy: StrategyFused}
}

// WithoutRestoration treats every added value as new even when it equals
// the base value at its final position.
func WithoutRestoration() Option {
	return func(c *config) {
		c.restore = false
	}
}

// WithStrategy selects the write strategy. The default is StrategyFused.
// StrategyAuto and StrategyRecreate need a log that knows its base values;
// with a sized log StrategyAuto falls back to the fused plan.
func WithStrategy(s Strategy) Option {
	return func(c *config) {
		c.strategy = s
	}
}

// segment is one entry of the final sequence during planning: an original
// run [start,end) or a single added token.
type segment struct {
	new   bool
	start int
	end   int
	token int
}

// Fuse consumes log and returns its plan. A log can be fused once; a second
// call fails with LOG_ALREADY_FUSED and so does any later record.
func Fuse(log *edit.Log, opts ...Option) (*Plan, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if !ValidStrategies[cfg.strategy] {
		return nil, fmt.Errorf("fuse: unknown strategy %q", cfg.strategy)
	}

	if err := log.Seal(); err != nil {
		return nil, err
	}

	s, err := sim.Replay(log.BaseSize(), log.Edits())
	if err != nil {
		return nil, fmt.Errorf("fuse: %w", err)
	}

	base, known := log.BaseValues()
	segs := flatten(s.Final())
	if known && cfg.restore {
		segs = restore(segs, base, s.Value)
	}
	plan := buildPlan(segs, log.BaseSize(), s.Value)

	if cfg.strategy == StrategyFused {
		return plan, nil
	}
	if !known {
		if cfg.strategy == StrategyRecreate {
			return nil, fmt.Errorf("fuse: recreate needs base values, log only knows size %d", log.BaseSize())
		}
		return plan, nil
	}
	final, err := s.Materialize(base)
	if err != nil {
		return nil, fmt.Errorf("fuse: %w", err)
	}
	if cfg.strategy == StrategyRecreate {
		return Recreate(log.BaseSize(), final), nil
	}
	return Choose(plan, final), nil
}

func flatten(runs []sim.Run) []segment {
	var segs []segment
	for _, r := range runs {
		if !r.New {
			segs = append(segs, segment{start: r.Start, end: r.End})
			continue
		}
		for _, tok := range r.Tokens {
			segs = append(segs, segment{new: true, token: tok})
		}
	}
	return segs
}

// restore walks the final sequence once. An added token at final position f
// whose value equals base[f] becomes Original(f) when f lies strictly
// between the last emitted original and the next surviving one. When the
// next surviving original is f itself, the token and Original(f) trade
// places: the original is emitted at f and the token moves to the back of
// its group. Final values do not change and originals stay in base order.
func restore(segs []segment, base []ir.IRValue, value func(int) ir.IRValue) []segment {
	n := len(base)
	out := make([]segment, 0, len(segs))
	lastOrig := -1
	pos := 0

	for i := 0; i < len(segs); {
		if !segs[i].new {
			sg := segs[i]
			out = append(out, sg)
			lastOrig = sg.end - 1
			pos += sg.end - sg.start
			i++
			continue
		}

		j := i
		var queue []int
		for ; j < len(segs) && segs[j].new; j++ {
			queue = append(queue, segs[j].token)
		}

		for len(queue) > 0 {
			next := n
			if j < len(segs) {
				next = segs[j].start
			}
			tok := queue[0]
			queue = queue[1:]
			equal := pos < n && ir.Equal(value(tok), base[pos])

			switch {
			case equal && lastOrig < pos && pos < next:
				out = append(out, segment{start: pos, end: pos + 1})
				lastOrig = pos
			case equal && pos == next:
				out = append(out, segment{start: pos, end: pos + 1})
				lastOrig = pos
				segs[j].start++
				// tok takes the slot the original held: after the rest of
				// its group, before any tokens that followed the run.
				queue = append(queue, tok)
				if segs[j].start == segs[j].end {
					for j++; j < len(segs) && segs[j].new; j++ {
						queue = append(queue, segs[j].token)
					}
				}
			default:
				out = append(out, segment{new: true, token: tok})
			}
			pos++
		}
		i = j
	}
	return mergeOriginals(out)
}

func mergeOriginals(segs []segment) []segment {
	out := segs[:0]
	for _, sg := range segs {
		if n := len(out); n > 0 && !sg.new && !out[n-1].new && out[n-1].end == sg.start {
			out[n-1].end = sg.end
			continue
		}
		out = append(out, sg)
	}
	return out
}

type pendingInsert struct {
	position int
	token    int
}

// buildPlan turns the final sequence into operations. Each gap between
// surviving originals holds removed base positions and inserted tokens;
// they pair up as replaces and the remainder becomes one remove range or
// plain inserts.
func buildPlan(segs []segment, baseSize int, value func(int) ir.IRValue) *Plan {
	p := &Plan{strategy: StrategyFused, baseSize: baseSize}

	var pending []pendingInsert
	gap := func(start, end int) {
		m := min(end-start, len(pending))
		for k := 0; k < m; k++ {
			p.replaces = append(p.replaces, Replace{
				From:     start + k,
				Position: pending[k].position,
				Value:    value(pending[k].token),
			})
		}
		if start+m < end {
			p.removes = append(p.removes, RemoveRange{Start: start + m, End: end})
		}
		for _, pi := range pending[m:] {
			p.inserts = append(p.inserts, Insert{Position: pi.position, Value: value(pi.token)})
		}
		pending = pending[:0]
	}

	pos := 0
	prevEnd := 0
	for _, sg := range segs {
		if sg.new {
			pending = append(pending, pendingInsert{position: pos, token: sg.token})
			pos++
			continue
		}
		gap(prevEnd, sg.start)
		if off := pos - sg.start; off != 0 {
			p.renumbers = append(p.renumbers, Renumber{Start: sg.start, End: sg.end, Offset: off})
		}
		pos += sg.end - sg.start
		prevEnd = sg.end
	}
	gap(prevEnd, baseSize)
	p.finalSize = pos
	return p
}
