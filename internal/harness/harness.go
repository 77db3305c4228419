package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/pagecache/internal/journal"
	"github.com/roach88/pagecache/internal/record"
	"github.com/roach88/pagecache/internal/selector"
	"github.com/roach88/pagecache/internal/state"
	"github.com/roach88/pagecache/internal/testutil"
)

// Harness evaluates selections against the snapshot a scenario builds.
type Harness struct {
	journal *journal.Journal
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Build the fixture snapshot
// 2. Append signals to a fresh in-memory journal and replay them onto it
// 3. Evaluate every selection twice and check the outputs are identical
// 4. Match expectations
//
// An error is returned when the scenario cannot be executed at all; failed
// expectations are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	j, err := journal.Open(":memory:",
		journal.WithIDGenerator(testutil.NewSequentialIDs("signal")),
		journal.WithSequencer(testutil.NewDeterministicClock()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory journal: %w", err)
	}
	defer j.Close()

	h := &Harness{
		journal: j,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	s, err := scenario.Fixture.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to build fixture: %w", err)
	}

	if len(scenario.Signals) > 0 {
		signals, err := DecodeSignals(scenario.Signals)
		if err != nil {
			return nil, err
		}
		if _, err := h.journal.AppendAll(ctx, signals...); err != nil {
			return nil, fmt.Errorf("failed to journal signals: %w", err)
		}
		s, err = h.journal.Replay(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("failed to apply signals: %w", err)
		}
	}

	result := NewResult()
	for i, sel := range scenario.Selections {
		out, err := h.evaluate(s, sel)
		if err != nil {
			return nil, fmt.Errorf("selections[%d]: %w", i, err)
		}
		result.Outputs = append(result.Outputs, out.Output)
		if !out.stable {
			result.AddError(fmt.Sprintf("selection %s: output changed identity on an unchanged snapshot", out.Selection))
		}

		if sel.Expect == nil {
			continue
		}
		expected, err := record.ObjectFromAny(sel.Expect)
		if err != nil {
			return nil, fmt.Errorf("selections[%d].expect: %w", i, err)
		}
		if err := matchSubset(out.Selection, out.Value, expected); err != nil {
			result.AddError(err.Error())
		}
	}

	h.logger.Debug("scenario complete", "name", scenario.Name, "pass", result.Pass)
	return result, nil
}

type evaluation struct {
	Output
	stable bool
}

func (h *Harness) evaluate(s *state.Snapshot, sel Selection) (evaluation, error) {
	d, err := descriptorFor(sel)
	if err != nil {
		return evaluation{}, err
	}
	out := evaluation{Output: Output{Selection: d.String(), Raw: sel.Raw}}

	if sel.Raw {
		selectRaw, err := selector.SelectRequestRaw(d)
		if err != nil {
			return evaluation{}, err
		}
		first := selectRaw(s)
		out.stable = first == selectRaw(s)
		out.Value = first.Value()
		return out, nil
	}

	selectDenorm, err := selector.SelectRequest(d)
	if err != nil {
		return evaluation{}, err
	}
	first := selectDenorm(s)
	out.stable = first == selectDenorm(s)
	out.Value = first.Value()
	return out, nil
}

// descriptorFor turns a selection into a descriptor.
func descriptorFor(sel Selection) (selector.Descriptor, error) {
	if sel.Name != "" {
		return selector.ParseDescriptor(sel.Name)
	}
	return selector.ParseDescriptor(map[string]any{"cacheID": sel.CacheID, "page": sel.Page})
}
