package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/listfuse/internal/ir"
	"github.com/roach88/listfuse/internal/store"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	SessionID string
	ShowPlan  bool
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal <db>",
		Short: "List recorded flushes",
		Long: `List the flush journal of a database in commit order.

Each row records one collection flush: the session, the logical clock,
the plan id and its counts.

Examples:
  listfuse journal ./orders.db
  listfuse journal ./orders.db --session 01928c3e-... --plan`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SessionID, "session", "", "only show flushes of this session")
	cmd.Flags().BoolVar(&opts.ShowPlan, "plan", false, "print each plan document")

	return cmd
}

func runJournal(opts *JournalOptions, dbPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// Reading must not create an empty database.
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("database not found: %s", dbPath), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", dbPath))
	}

	st, err := store.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	records, err := st.ReadFlushes(ctx, opts.SessionID)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	if opts.Format == "json" {
		return formatter.Success(records)
	}

	w := formatter.Writer
	if len(records) == 0 {
		fmt.Fprintln(w, "No flushes recorded.")
		return nil
	}
	for _, rec := range records {
		writeFlushText(w, rec)
		if opts.ShowPlan {
			fmt.Fprintf(w, "    %s\n", rec.Plan)
		}
	}
	fmt.Fprintf(w, "\n%d flush(es)\n", len(records))
	return nil
}

func writeFlushText(w io.Writer, rec ir.FlushRecord) {
	fmt.Fprintf(w, "#%d %s seq=%d %s owner=%s %s remove=%d add=%d update=%d statements=%d\n",
		rec.ID, rec.SessionID, rec.Seq, rec.Collection, rec.Owner,
		rec.Strategy, rec.RemoveCount, rec.AddCount, rec.UpdateCount, rec.Statements)
}
