package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/listfuse/internal/edit"
	"github.com/roach88/listfuse/internal/fusion"
	"github.com/roach88/listfuse/internal/ir"
	"github.com/roach88/listfuse/internal/session"
	"github.com/roach88/listfuse/internal/store"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	MappingsDir string
	Mapping     string
	Owner       string

	// IDGenerator overrides the session id generator (for testing).
	// If nil, defaults to UUIDv7.
	IDGenerator session.IDGenerator
}

// ApplyOutput is the JSON payload of the apply command.
type ApplyOutput struct {
	Flushes []ir.FlushRecord `json:"flushes"`
	Final   []ir.IRValue     `json:"final"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <db> <scenario.yaml>",
		Short: "Apply a scenario's edits to a SQLite collection",
		Long: `Replay the edits of a scenario against the stored collection of one
owner and flush them through a session: the edits are fused, compiled to
SQL and applied in one transaction together with a journal row.

The database is created if it does not exist. An empty stored collection
is seeded with the scenario's base; otherwise the stored list must equal
the base.

Example:
  listfuse apply ./orders.db ./scenarios/remove_then_append.yaml \
    --mappings ./mappings --mapping order_items --owner 42`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.MappingsDir, "mappings", "", "directory of CUE collection mappings (required)")
	cmd.Flags().StringVar(&opts.Mapping, "mapping", "", "name of the mapping to write through (required)")
	cmd.Flags().StringVar(&opts.Owner, "owner", "1", "owner id of the collection")
	_ = cmd.MarkFlagRequired("mappings")
	_ = cmd.MarkFlagRequired("mapping")

	return cmd
}

func runApply(opts *ApplyOptions, dbPath, scenarioFile string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	fail := func(exit int, code, msg string, err error) error {
		_ = formatter.Error(code, fmt.Sprintf("%s: %v", msg, err), nil)
		return WrapExitError(exit, msg, err)
	}

	mapping, loadErr := resolveMapping(opts.MappingsDir, opts.Mapping)
	if loadErr != nil {
		return fail(ExitCommandError, loadErr.Code, "mapping", loadErr)
	}

	scenario, loadErr := loadScenarioFile(scenarioFile)
	if loadErr != nil {
		return fail(ExitCommandError, loadErr.Code, "scenario", loadErr)
	}
	base, known, err := scenario.BaseValues()
	if err != nil {
		return fail(ExitCommandError, ErrCodeInvalidScenario, "scenario base", err)
	}
	if !known {
		return fail(ExitCommandError, ErrCodeInvalidScenario, "scenario base",
			fmt.Errorf("%s has a sized base; apply needs element values", scenario.Name))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger.Debug("opening database", "path", dbPath)
	st, err := store.Open(dbPath)
	if err != nil {
		return fail(ExitCommandError, ErrCodeStoreFailed, "open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	owner := parseOwner(opts.Owner)
	current, err := prepareCollection(ctx, logger, st, mapping, owner, base)
	if err != nil {
		return fail(ExitCommandError, ErrCodeStoreFailed, "prepare collection", err)
	}

	sessOpts := []session.Option{session.WithLogger(logger)}
	if scenario.Strategy != "" {
		sessOpts = append(sessOpts, session.WithStrategy(fusion.Strategy(scenario.Strategy)))
	}
	if scenario.Strict {
		sessOpts = append(sessOpts, session.WithLogOptions(edit.WithStrictFlags()))
	}
	if scenario.NoRestore {
		sessOpts = append(sessOpts, session.WithFuseOptions(fusion.WithoutRestoration()))
	}
	if opts.IDGenerator != nil {
		sessOpts = append(sessOpts, session.WithIDGenerator(opts.IDGenerator))
	}
	sess := session.New(st, sessOpts...)

	list, err := sess.Track(mapping, owner, current)
	if err != nil {
		return fail(ExitCommandError, ErrCodeGeneric, "track", err)
	}
	if err := scenario.Replay(list); err != nil {
		return fail(ExitFailure, ErrCodeEditRejected, "replay edits", err)
	}

	records, err := sess.Flush(ctx)
	if err != nil {
		return fail(ExitFailure, ErrCodeFlushFailed, "flush", err)
	}

	final, err := st.LoadCollection(ctx, mapping, owner)
	if err != nil {
		return fail(ExitFailure, ErrCodeStoreFailed, "reload collection", err)
	}

	if opts.Format == "json" {
		if records == nil {
			records = []ir.FlushRecord{}
		}
		return formatter.SuccessWithSession(sess.ID(), ApplyOutput{Flushes: records, Final: final})
	}

	w := formatter.Writer
	if len(records) == 0 {
		fmt.Fprintln(w, "Nothing to flush.")
	}
	for _, rec := range records {
		fmt.Fprintf(w, "Flushed %s owner=%s: %s remove=%d add=%d update=%d (%d statements)\n",
			rec.Collection, rec.Owner, rec.Strategy, rec.RemoveCount, rec.AddCount, rec.UpdateCount, rec.Statements)
		formatter.VerboseLog("plan %s", rec.PlanID)
	}
	fmt.Fprintf(w, "Final: %s\n", formatValues(final))
	return nil
}

// prepareCollection makes sure the table exists and holds base for owner.
// An empty collection is seeded with base.
func prepareCollection(ctx context.Context, logger *slog.Logger, st *store.Store, mapping ir.CollectionMapping, owner ir.IRValue, base []ir.IRValue) ([]ir.IRValue, error) {
	if err := st.EnsureCollection(ctx, mapping); err != nil {
		return nil, err
	}
	current, err := st.LoadCollection(ctx, mapping, owner)
	if err != nil {
		return nil, err
	}

	if len(current) == 0 {
		if len(base) > 0 {
			if err := st.Seed(ctx, mapping, owner, base); err != nil {
				return nil, err
			}
			logger.Debug("collection seeded", "collection", mapping.Name, "size", len(base))
		}
		return base, nil
	}

	if len(current) != len(base) {
		return nil, fmt.Errorf("stored collection has %d elements, scenario base has %d", len(current), len(base))
	}
	for i := range current {
		if !ir.Equal(current[i], base[i]) {
			return nil, fmt.Errorf("stored element %d is %s, scenario base has %s",
				i, ir.Format(current[i]), ir.Format(base[i]))
		}
	}
	return current, nil
}
