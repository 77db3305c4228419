package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/pagecache/internal/harness"
	"github.com/roach88/pagecache/internal/ingest"
	"github.com/roach88/pagecache/internal/journal"
	"github.com/roach88/pagecache/internal/state"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	DB      string
	Signals string
}

// RecordResult reports what record stored.
type RecordResult struct {
	Recorded int   `json:"recorded"`
	FirstSeq int64 `json:"firstSeq"`
	LastSeq  int64 `json:"lastSeq"`
}

// Text implements Texter.
func (r RecordResult) Text() string {
	if r.Recorded == 0 {
		return "Recorded 0 signals"
	}
	return fmt.Sprintf("Recorded %d signals (seq %d..%d)", r.Recorded, r.FirstSeq, r.LastSeq)
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Append request signals to a journal",
		Long: `Append request signals from a YAML file to a SQLite journal.

The signals are first applied to the state the journal already holds.
If any is rejected nothing is written.

Exit codes:
  0 - Signals recorded
  1 - A signal was rejected (unknown request, invalid transition)
  2 - Command error (bad flags, unreadable file, database error)

Examples:
  pagecache record --db cache.db --signals signals.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "path to SQLite journal (required)")
	cmd.Flags().StringVar(&opts.Signals, "signals", "", "path to YAML signals file (required)")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("signals")

	return cmd
}

func runRecord(opts *RecordOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()

	raw, err := harness.LoadSignals(opts.Signals)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load signals", err)
	}
	signals, err := harness.DecodeSignals(raw)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid signals", err)
	}

	j, err := journal.Open(opts.DB)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	current, err := j.Replay(ctx, state.Empty())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to replay journal", err)
	}
	if _, err := ingest.ApplyAll(current, signals...); err != nil {
		return WrapExitError(ExitFailure, "signals rejected", err)
	}

	entries, err := j.AppendAll(ctx, signals...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to record signals", err)
	}

	result := RecordResult{Recorded: len(entries)}
	if len(entries) > 0 {
		result.FirstSeq = entries[0].Seq
		result.LastSeq = entries[len(entries)-1].Seq
	}
	slog.Debug("signals recorded", "db", opts.DB, "count", result.Recorded, "last_seq", result.LastSeq)

	return formatter(opts.RootOptions, cmd).Success(result)
}
