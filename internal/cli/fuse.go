package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/listfuse/internal/fusion"
	"github.com/roach88/listfuse/internal/harness"
	"github.com/roach88/listfuse/internal/ir"
)

// PlanOutput is the JSON payload of the fuse command.
type PlanOutput struct {
	Scenario  string       `json:"scenario"`
	Summary   string       `json:"summary,omitempty"`
	Plan      ir.IRObject  `json:"plan,omitempty"`
	Final     []ir.IRValue `json:"final,omitempty"`
	ErrorCode string       `json:"error_code,omitempty"`
	Pass      bool         `json:"pass"`
	Errors    []string     `json:"errors,omitempty"`
}

// NewFuseCommand creates the fuse command.
func NewFuseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fuse <scenario.yaml>",
		Short: "Fuse a scenario's edits and print the plan",
		Long: `Record the edits of a scenario file, fuse them, and print the
resulting plan: remove ranges, renumbers, replaces and inserts.

The scenario's expect block is checked as well; a failed check exits 1.

Examples:
  listfuse fuse ./scenarios/remove_then_append.yaml
  listfuse fuse ./scenarios/remove_then_append.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFuse(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runFuse(opts *RootOptions, scenarioFile string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	scenario, loadErr := loadScenarioFile(scenarioFile)
	if loadErr != nil {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(ExitCommandError, loadErr.Error())
	}
	formatter.VerboseLog("Loaded scenario %s (%d edits)", scenario.Name, len(scenario.Edits))

	result, err := harness.Run(scenario)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidScenario, err.Error(), nil)
		return WrapExitError(ExitCommandError, "scenario execution failed", err)
	}

	out := PlanOutput{
		Scenario:  scenario.Name,
		Final:     result.Final,
		ErrorCode: result.ErrorCode,
		Pass:      result.Pass,
		Errors:    result.Errors,
	}
	if result.Plan != nil {
		out.Summary = result.Plan.Summary()
		out.Plan = result.Plan.Document()
	}

	if opts.Format == "json" {
		if err := formatter.Success(out); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		if result.Plan != nil {
			writePlanText(w, result.Plan)
			fmt.Fprintf(w, "Final: %s\n", formatValues(result.Final))
		}
		if result.ErrorCode != "" {
			fmt.Fprintf(w, "Rejected: %s (expected)\n", result.ErrorCode)
		}
		for _, e := range result.Errors {
			fmt.Fprintf(w, "✗ %s\n", e)
		}
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed with %d error(s)", scenario.Name, len(result.Errors)))
	}
	return nil
}

// writePlanText prints one line per plan operation.
func writePlanText(w io.Writer, plan *fusion.Plan) {
	fmt.Fprintf(w, "Plan: %s\n", plan.Summary())
	for _, r := range plan.Removes() {
		fmt.Fprintf(w, "  remove   [%d,%d)\n", r.Start, r.End)
	}
	for _, r := range plan.Renumbers() {
		fmt.Fprintf(w, "  renumber [%d,%d) offset %+d\n", r.Start, r.End, r.Offset)
	}
	for _, r := range plan.Replaces() {
		fmt.Fprintf(w, "  replace  %d -> %d %s\n", r.From, r.Position, ir.Format(r.Value))
	}
	for _, ins := range plan.Inserts() {
		fmt.Fprintf(w, "  insert   %d %s\n", ins.Position, ir.Format(ins.Value))
	}
}

func formatValues(vs []ir.IRValue) string {
	s := "["
	for i, v := range vs {
		if i > 0 {
			s += " "
		}
		s += ir.Format(v)
	}
	return s + "]"
}
