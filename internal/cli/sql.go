package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/listfuse/internal/harness"
	"github.com/roach88/listfuse/internal/sqlgen"
)

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	*RootOptions
	MappingsDir string
	Mapping     string
	Owner       string
}

// StatementOutput is one compiled statement in JSON output.
type StatementOutput struct {
	Kind string `json:"kind"`
	SQL  string `json:"sql"`
	Args []any  `json:"args"`
}

// SQLOutput is the JSON payload of the sql command.
type SQLOutput struct {
	Scenario   string            `json:"scenario"`
	Mapping    string            `json:"mapping"`
	Summary    string            `json:"summary"`
	Statements []StatementOutput `json:"statements"`
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SQLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sql <scenario.yaml>",
		Short: "Compile a scenario's plan to SQL",
		Long: `Fuse the edits of a scenario file and compile the plan to the
parameterized SQL statements that would be run against the mapped table.

Examples:
  listfuse sql ./scenarios/remove_then_append.yaml --mappings ./mappings --mapping order_items --owner 42`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.MappingsDir, "mappings", "", "directory of CUE collection mappings (required)")
	cmd.Flags().StringVar(&opts.Mapping, "mapping", "", "name of the mapping to compile against (required)")
	cmd.Flags().StringVar(&opts.Owner, "owner", "1", "owner id bound to the statements")
	_ = cmd.MarkFlagRequired("mappings")
	_ = cmd.MarkFlagRequired("mapping")

	return cmd
}

func runSQL(opts *SQLOptions, scenarioFile string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	mapping, loadErr := resolveMapping(opts.MappingsDir, opts.Mapping)
	if loadErr != nil {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(ExitCommandError, loadErr.Error())
	}

	scenario, loadErr := loadScenarioFile(scenarioFile)
	if loadErr != nil {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(ExitCommandError, loadErr.Error())
	}

	result, err := harness.Run(scenario)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidScenario, err.Error(), nil)
		return WrapExitError(ExitCommandError, "scenario execution failed", err)
	}
	if result.Plan == nil {
		msg := fmt.Sprintf("scenario %s produced no plan", scenario.Name)
		_ = formatter.Error(ErrCodeEditRejected, msg, result.Errors)
		return NewExitError(ExitFailure, msg)
	}

	stmts, err := sqlgen.Compile(result.Plan, mapping, parseOwner(opts.Owner))
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "compile failed", err)
	}
	formatter.VerboseLog("Compiled %d statement(s) for %s", len(stmts), mapping.Name)

	if opts.Format == "json" {
		out := SQLOutput{
			Scenario:   scenario.Name,
			Mapping:    mapping.Name,
			Summary:    result.Plan.Summary(),
			Statements: make([]StatementOutput, len(stmts)),
		}
		for i, s := range stmts {
			out.Statements[i] = StatementOutput{Kind: s.Kind, SQL: s.SQL, Args: s.Args}
		}
		return formatter.Success(out)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "-- %s (%s)\n", result.Plan.Summary(), mapping.Name)
	for _, s := range stmts {
		fmt.Fprintf(w, "%s; -- %s %v\n", s.SQL, s.Kind, s.Args)
	}
	return nil
}
