package cli

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pagecache/internal/journal"
	"github.com/roach88/pagecache/internal/state"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	SelectionFlags
	DB    string
	Until int64
}

// ReplaySummary describes the snapshot a replay produced.
type ReplaySummary struct {
	Entries   int            `json:"entries"`
	Queries   int            `json:"queries"`
	LastSeq   int64          `json:"lastSeq"`
	ByKind    map[string]int `json:"byKind"`
	Resources int            `json:"resources"`
	Names     []string       `json:"names"`
}

// Text implements Texter.
func (s ReplaySummary) Text() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Entries: %d (last seq %d)\n", s.Entries, s.LastSeq)

	kinds := make([]string, 0, len(s.ByKind))
	for k := range s.ByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(&buf, "  %s: %d\n", k, s.ByKind[k])
	}

	fmt.Fprintf(&buf, "Queries: %d\n", s.Queries)
	fmt.Fprintf(&buf, "Resources: %d\n", s.Resources)
	fmt.Fprintf(&buf, "Names: %s", strings.Join(s.Names, ", "))
	return buf.String()
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Rebuild a snapshot from a journal",
		Long: `Replay a SQLite journal into a snapshot.

Without a selection the command prints a summary of the journal and of
the snapshot it produces. With --name or --cache-id it prints that
request as select does.

Exit codes:
  0 - Replay succeeded
  1 - A stored signal could not be applied
  2 - Command error (bad flags, database error)

Examples:
  pagecache replay --db cache.db
  pagecache replay --db cache.db --name test
  pagecache replay --db cache.db --cache-id posts/ --until 3 --raw`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().Int64Var(&opts.Until, "until", 0, "replay only entries up to this seq")
	opts.SelectionFlags.register(cmd)

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()

	j, err := journal.Open(opts.DB)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	var s *state.Snapshot
	if opts.Until > 0 {
		s, err = j.ReplayUntil(ctx, state.Empty(), opts.Until)
	} else {
		s, err = j.Replay(ctx, state.Empty())
	}
	if err != nil {
		return WrapExitError(ExitFailure, "replay failed", err)
	}
	slog.Debug("journal replayed", "db", opts.DB, "until", opts.Until)

	out := formatter(opts.RootOptions, cmd)
	if opts.SelectionFlags.set() {
		result, err := opts.SelectionFlags.evaluate(s, nil, 1)
		if err != nil {
			return err
		}
		return out.Success(result)
	}

	st, err := j.Stats(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal stats", err)
	}
	summary := ReplaySummary{
		Entries:   st.Entries,
		Queries:   st.Queries,
		LastSeq:   st.LastSeq,
		ByKind:    make(map[string]int, len(st.ByKind)),
		Resources: s.Resources.Len(),
		Names:     s.RequestsByName.Names(),
	}
	for k, n := range st.ByKind {
		summary.ByKind[string(k)] = n
	}
	if summary.Names == nil {
		summary.Names = []string{}
	}
	return out.Success(summary)
}
