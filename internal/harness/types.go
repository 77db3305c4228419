package harness

import "github.com/roach88/pagecache/internal/record"

// Output is the value one selection produced.
type Output struct {
	// Selection describes the descriptor, e.g. "name:test".
	Selection string
	Raw       bool
	Value     record.Object
}

// Result is the outcome of a scenario.
type Result struct {
	// Pass is true if every expectation matched.
	Pass bool

	// Outputs holds one entry per selection, in scenario order.
	Outputs []Output

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Outputs: []Output{},
		Errors:  []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// snapshotValue renders a result for golden comparison.
func (r *Result) snapshotValue(scenarioName string) record.Object {
	outputs := make(record.List, len(r.Outputs))
	for i, out := range r.Outputs {
		outputs[i] = record.Object{
			"selection": record.String(out.Selection),
			"raw":       record.Bool(out.Raw),
			"output":    out.Value,
		}
	}
	return record.Object{
		"scenario": record.String(scenarioName),
		"outputs":  outputs,
	}
}
