package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pagecache/internal/memo"
	"github.com/roach88/pagecache/internal/record"
	"github.com/roach88/pagecache/internal/selector"
	"github.com/roach88/pagecache/internal/state"
)

// SelectionFlags are the flags naming one request.
type SelectionFlags struct {
	Name    string
	CacheID string
	Page    int
	Raw     bool
}

func (f *SelectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Name, "name", "", "select the request bound to this name")
	cmd.Flags().StringVar(&f.CacheID, "cache-id", "", "select the request at this cache id")
	cmd.Flags().IntVar(&f.Page, "page", selector.DefaultPage, "page to select with --cache-id")
	cmd.Flags().BoolVar(&f.Raw, "raw", false, "select store positions instead of entities")
}

// set reports whether a request was named.
func (f *SelectionFlags) set() bool {
	return f.Name != "" || f.CacheID != ""
}

func (f *SelectionFlags) descriptor() (selector.Descriptor, error) {
	switch {
	case f.Name != "" && f.CacheID != "":
		return nil, NewExitError(ExitCommandError, "--name and --cache-id are mutually exclusive")
	case f.Name != "":
		return selector.Name(f.Name), nil
	case f.CacheID != "":
		return selector.Coordinates(f.CacheID, f.Page), nil
	default:
		return nil, NewExitError(ExitCommandError, "one of --name or --cache-id is required")
	}
}

// SelectionResult is a selector output.
type SelectionResult struct {
	Selection string
	Raw       bool
	Value     record.Object

	// Memo holds memo counters keyed by metric and cell, when requested.
	Memo map[string]float64
}

// MarshalJSON renders the result with its output as canonical JSON.
func (r SelectionResult) MarshalJSON() ([]byte, error) {
	output, err := record.MarshalCanonical(r.Value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Selection string             `json:"selection"`
		Raw       bool               `json:"raw"`
		Output    json.RawMessage    `json:"output"`
		Memo      map[string]float64 `json:"memo,omitempty"`
	}{r.Selection, r.Raw, output, r.Memo})
}

// Text implements Texter.
func (r SelectionResult) Text() string {
	output, err := record.MarshalCanonical(r.Value)
	if err != nil {
		return fmt.Sprintf("%s: %v", r.Selection, err)
	}

	var buf strings.Builder
	buf.Write(output)
	for _, name := range sortedKeys(r.Memo) {
		fmt.Fprintf(&buf, "\n%s %g", name, r.Memo[name])
	}
	return buf.String()
}

// evaluate builds the selector the flags describe and applies it to s
// passes times, returning the last output. Repeated passes exercise the memo
// cells the way repeated renders of one snapshot would.
func (f *SelectionFlags) evaluate(s *state.Snapshot, metrics *memo.Metrics, passes int) (SelectionResult, error) {
	d, err := f.descriptor()
	if err != nil {
		return SelectionResult{}, err
	}
	result := SelectionResult{Selection: d.String(), Raw: f.Raw}

	if f.Raw {
		sel, err := selector.SelectRequestRaw(d, selector.WithMetrics(metrics))
		if err != nil {
			return SelectionResult{}, WrapExitError(ExitCommandError, "invalid selection", err)
		}
		for i, n := 0, max(passes, 1); i < n; i++ {
			result.Value = sel(s).Value()
		}
		return result, nil
	}

	sel, err := selector.SelectRequest(d, selector.WithMetrics(metrics))
	if err != nil {
		return SelectionResult{}, WrapExitError(ExitCommandError, "invalid selection", err)
	}
	for i, n := 0, max(passes, 1); i < n; i++ {
		result.Value = sel(s).Value()
	}
	return result, nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
