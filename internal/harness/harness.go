package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/listfuse/internal/edit"
	"github.com/roach88/listfuse/internal/fusion"
	"github.com/roach88/listfuse/internal/ir"
	"github.com/roach88/listfuse/internal/sqlgen"
	"github.com/roach88/listfuse/internal/store"
	"github.com/roach88/listfuse/internal/testutil"
)

// roundTripOwner owns the scenario rows in the SQL round trip.
var roundTripOwner = ir.S("scenario")

// Harness runs one scenario with its own in-memory store.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Record every edit into a fresh log
//  2. Fuse the log
//  3. Check Plan.Apply(base) against direct replay
//  4. Evaluate the expect block
//  5. Compile to SQL and replay it on a fresh in-memory SQLite table
//
// An error is returned only when the scenario itself cannot be executed;
// failed checks are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	result := NewResult()

	base, known, err := scenarioBase(scenario)
	if err != nil {
		return nil, fmt.Errorf("base: %w", err)
	}

	var logOpts []edit.LogOption
	if scenario.Strict {
		logOpts = append(logOpts, edit.WithStrictFlags())
	}
	var log *edit.Log
	if known {
		log = edit.NewLog(base, logOpts...)
	} else {
		log = edit.NewSizedLog(len(base), logOpts...)
	}

	edits := make([]edit.Edit, 0, len(scenario.Edits))
	for i, step := range scenario.Edits {
		e, err := step.toEdit()
		if err != nil {
			return nil, fmt.Errorf("edits[%d]: %w", i, err)
		}
		if err := log.Record(e); err != nil {
			return h.failed(scenario, result, fmt.Errorf("edits[%d]: %w", i, err)), nil
		}
		edits = append(edits, e)
	}

	var fuseOpts []fusion.Option
	if scenario.NoRestore {
		fuseOpts = append(fuseOpts, fusion.WithoutRestoration())
	}
	if scenario.Strategy != "" {
		fuseOpts = append(fuseOpts, fusion.WithStrategy(fusion.Strategy(scenario.Strategy)))
	}
	plan, err := fusion.Fuse(log, fuseOpts...)
	if err != nil {
		return h.failed(scenario, result, err), nil
	}
	if scenario.Error != "" {
		result.AddError(fmt.Sprintf("expected error %s, got none", scenario.Error))
		return result, nil
	}
	result.Plan = plan

	// base holds placeholders for a sized log; positional checks still hold.
	want, err := edit.Materialize(base, edits)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	result.Final = want

	got, err := plan.Apply(base)
	if err != nil {
		result.AddError(fmt.Sprintf("plan apply: %v", err))
	} else if !equalLists(want, got) {
		result.AddError((&AssertionError{
			Type:     "plan_apply",
			Expected: formatList(want),
			Actual:   formatList(got),
			Plan:     plan.Summary(),
		}).Error())
	}

	if known {
		for _, msg := range EvaluateExpect(plan, want, scenario.Expect) {
			result.AddError(msg)
		}
	} else if scenario.Expect != nil {
		// Final values of a sized log are placeholders; only counts apply.
		expect := *scenario.Expect
		expect.Final = nil
		for _, msg := range EvaluateExpect(plan, want, &expect) {
			result.AddError(msg)
		}
	}

	stmts, stored, err := h.roundTrip(ctx, scenario, plan, base)
	if err != nil {
		result.AddError(fmt.Sprintf("sql round trip: %v", err))
		return result, nil
	}
	result.Statements = stmts
	if !equalLists(want, stored) {
		result.AddError((&AssertionError{
			Type:     "sql_round_trip",
			Expected: formatList(want),
			Actual:   formatList(stored),
			Plan:     plan.Summary(),
		}).Error())
	}

	h.logger.Info("scenario executed",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"plan", plan.Summary(),
		"statements", len(stmts))
	return result, nil
}

// failed records err against the scenario's expected error code.
func (h *Harness) failed(scenario *Scenario, result *Result, err error) *Result {
	code := string(edit.CodeOf(err))
	switch {
	case scenario.Error == "":
		result.AddError(err.Error())
	case code != scenario.Error:
		result.AddError(fmt.Sprintf("expected error %s, got %v", scenario.Error, err))
	default:
		result.ErrorCode = code
	}
	h.logger.Debug("scenario stopped on error",
		"scenario", scenario.Name,
		"code", code,
		"error", err)
	return result
}

// roundTrip seeds base, applies the compiled plan and reads the list back.
func (h *Harness) roundTrip(ctx context.Context, scenario *Scenario, plan *fusion.Plan, base []ir.IRValue) ([]sqlgen.Statement, []ir.IRValue, error) {
	mapping := ir.CollectionMapping{
		Name:           scenario.Name,
		Table:          "scenario_items",
		OwnerColumn:    "owner_id",
		PositionColumn: "pos",
		ElementColumn:  "elem",
		PositionBase:   scenario.PositionBase,
	}
	if err := h.store.EnsureCollection(ctx, mapping); err != nil {
		return nil, nil, err
	}
	if err := h.store.Seed(ctx, mapping, roundTripOwner, base); err != nil {
		return nil, nil, err
	}
	stmts, err := sqlgen.Compile(plan, mapping, roundTripOwner)
	if err != nil {
		return nil, nil, err
	}
	if err := h.store.Apply(ctx, stmts, nil); err != nil {
		return nil, nil, err
	}
	stored, err := h.store.LoadCollection(ctx, mapping, roundTripOwner)
	if err != nil {
		return nil, nil, err
	}
	return stmts, stored, nil
}

func scenarioBase(s *Scenario) ([]ir.IRValue, bool, error) {
	if s.BaseSize != nil {
		return testutil.Base(*s.BaseSize), false, nil
	}
	base, err := toValues(s.Base)
	if err != nil {
		return nil, false, err
	}
	return base, true, nil
}
