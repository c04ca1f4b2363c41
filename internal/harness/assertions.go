package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/listfuse/internal/fusion"
	"github.com/roach88/listfuse/internal/ir"
)

// AssertionError is returned when a check fails.
type AssertionError struct {
	Type     string // Check name for categorization
	Expected string
	Actual   string
	Plan     string // Plan summary for context, if any
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	if e.Plan != "" {
		fmt.Fprintf(&buf, "\n  Plan: %s", e.Plan)
	}
	return buf.String()
}

// EvaluateExpect checks plan and the replayed final list against expect.
// Returns one message per failed check.
func EvaluateExpect(plan *fusion.Plan, final []ir.IRValue, expect *Expect) []string {
	if expect == nil {
		return nil
	}

	var errs []string
	check := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	check(assertCount("remove_count", expect.Remove, plan.RemoveCount(), plan))
	check(assertCount("add_count", expect.Add, plan.AddCount(), plan))
	check(assertCount("update_count", expect.Update, plan.UpdateCount(), plan))

	if expect.Strategy != "" && expect.Strategy != string(plan.Strategy()) {
		check(&AssertionError{
			Type:     "strategy",
			Expected: expect.Strategy,
			Actual:   string(plan.Strategy()),
			Plan:     plan.Summary(),
		})
	}

	if expect.Final != nil {
		check(assertFinal(expect.Final, final))
	}

	return errs
}

func assertCount(name string, want *int, got int, plan *fusion.Plan) error {
	if want == nil || *want == got {
		return nil
	}
	return &AssertionError{
		Type:     name,
		Expected: fmt.Sprintf("%d", *want),
		Actual:   fmt.Sprintf("%d", got),
		Plan:     plan.Summary(),
	}
}

func assertFinal(raw []any, got []ir.IRValue) error {
	want, err := toValues(raw)
	if err != nil {
		return fmt.Errorf("expect.final: %w", err)
	}
	if !equalLists(want, got) {
		return &AssertionError{
			Type:     "final",
			Expected: formatList(want),
			Actual:   formatList(got),
		}
	}
	return nil
}

func equalLists(a, b []ir.IRValue) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ir.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func formatList(vs []ir.IRValue) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = ir.Format(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
