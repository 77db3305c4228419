package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/pagecache/internal/record"
)

// RunWithGolden executes a scenario and compares its outputs against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check expectations.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file, as
// canonical JSON.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := GoldenBytes(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}

// GoldenBytes renders a result the way golden files store it.
func GoldenBytes(scenarioName string, result *Result) ([]byte, error) {
	return record.MarshalCanonical(result.snapshotValue(scenarioName))
}
