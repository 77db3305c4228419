package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/pagecache/internal/record"
)

// MatchError is an expectation that did not hold.
type MatchError struct {
	Selection string
	Path      string
	Expected  string
	Actual    string
}

// Error implements the error interface.
func (e *MatchError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Expectation failed: %s", e.Selection)
	if e.Path != "" {
		fmt.Fprintf(&buf, " at %s", e.Path)
	}
	fmt.Fprintf(&buf, "\n  Expected: %s\n  Actual: %s", e.Expected, e.Actual)
	return buf.String()
}

// matchSubset checks that actual contains expected. Objects match when
// every expected key matches (extra keys in actual are OK); lists match
// element by element and must have equal length; scalars must be equal.
func matchSubset(selection string, actual, expected record.Value) error {
	return matchAt(selection, "$", actual, expected)
}

func matchAt(selection, path string, actual, expected record.Value) error {
	mismatch := func() error {
		return &MatchError{
			Selection: selection,
			Path:      path,
			Expected:  render(expected),
			Actual:    render(actual),
		}
	}

	switch exp := expected.(type) {
	case record.Object:
		act, ok := actual.(record.Object)
		if !ok {
			return mismatch()
		}
		for _, key := range exp.SortedKeys() {
			av, present := act[key]
			if !present {
				return &MatchError{
					Selection: selection,
					Path:      path + "." + key,
					Expected:  render(exp[key]),
					Actual:    "missing",
				}
			}
			if err := matchAt(selection, path+"."+key, av, exp[key]); err != nil {
				return err
			}
		}
		return nil
	case record.List:
		act, ok := actual.(record.List)
		if !ok || len(act) != len(exp) {
			return mismatch()
		}
		for i := range exp {
			if err := matchAt(selection, fmt.Sprintf("%s[%d]", path, i), act[i], exp[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		if !scalarEqual(actual, expected) {
			return mismatch()
		}
		return nil
	}
}

func scalarEqual(a, b record.Value) bool {
	switch a.(type) {
	case record.Object, record.List:
		return false
	}
	if _, ok := a.(record.Null); ok || a == nil {
		_, bNull := b.(record.Null)
		return bNull || b == nil
	}
	if x, ok := number(a); ok {
		y, ok := number(b)
		return ok && x == y
	}
	return a == b
}

// number reports numeric values as float64 so that 2 and 2.0 match.
func number(v record.Value) (float64, bool) {
	switch n := v.(type) {
	case record.Int:
		return float64(n), true
	case record.Float:
		return float64(n), true
	}
	return 0, false
}

func render(v record.Value) string {
	data, err := record.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
