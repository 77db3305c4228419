package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pagecache/internal/state"
)

// Scenario is a selector test case.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Fixture is the initial state. Optional.
	Fixture *Fixture `yaml:"fixture,omitempty"`

	// Signals are applied to the fixture in order. Each is a tagged signal
	// object: "kind" plus the fields of that kind.
	Signals []map[string]any `yaml:"signals,omitempty"`

	// Selections are evaluated against the final snapshot.
	Selections []Selection `yaml:"selections"`
}

// Fixture describes a snapshot.
type Fixture struct {
	// Resources are stored at positions 0..n-1 in order.
	Resources []map[string]any `yaml:"resources,omitempty"`

	// RequestsByName binds request names to coordinates.
	RequestsByName map[string]state.Binding `yaml:"requestsByName,omitempty"`

	// RequestsByQuery holds cacheID -> page -> query.
	RequestsByQuery map[string]map[int]QueryFixture `yaml:"requestsByQuery,omitempty"`
}

// QueryFixture is one QueryState.
type QueryFixture struct {
	Status    string    `yaml:"status"`
	Operation string    `yaml:"operation,omitempty"`
	RequestAt int64     `yaml:"requestAt,omitempty"`
	Error     ErrorInfo `yaml:"error,omitempty"`
	Data      Positions `yaml:"data,omitempty"`
}

// Positions is a query's data: false (nil) or a list of store positions.
type Positions []int

// UnmarshalYAML accepts false as "no data".
func (p *Positions) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!bool" {
		if n.Value != "false" {
			return fmt.Errorf("line %d: data must be false or a list of positions", n.Line)
		}
		*p = nil
		return nil
	}

	var positions []int
	if err := n.Decode(&positions); err != nil {
		return err
	}
	if positions == nil {
		positions = []int{}
	}
	*p = positions
	return nil
}

// ErrorInfo is a query's error: false (nil) or an error object.
type ErrorInfo map[string]any

// UnmarshalYAML accepts false as "no error".
func (e *ErrorInfo) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!bool" {
		if n.Value != "false" {
			return fmt.Errorf("line %d: error must be false or an object", n.Line)
		}
		*e = nil
		return nil
	}

	var obj map[string]any
	if err := n.Decode(&obj); err != nil {
		return err
	}
	if obj == nil {
		obj = map[string]any{}
	}
	*e = obj
	return nil
}

// Selection is one selector evaluation.
type Selection struct {
	// Name selects by request name. Mutually exclusive with CacheID.
	Name string `yaml:"name,omitempty"`

	// CacheID and Page select by coordinates. Page defaults to 1.
	CacheID string `yaml:"cacheID,omitempty"`
	Page    int    `yaml:"page,omitempty"`

	// Raw selects positions instead of denormalized entities.
	Raw bool `yaml:"raw,omitempty"`

	// Expect is matched as a subset of the output. Optional.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// LoadScenario reads, validates and parses a scenario YAML file.
// Returns an error if the file doesn't exist, fails the schema,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(path, data)
}

// ParseScenario is LoadScenario for data already in memory. filename is
// used in error messages only.
func ParseScenario(filename string, data []byte) (*Scenario, error) {
	if err := ValidateScenario(filename, data); err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := decodeStrict(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadFixture reads, validates and parses a fixture YAML file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return ParseFixture(path, data)
}

// ParseFixture is LoadFixture for data already in memory.
func ParseFixture(filename string, data []byte) (*Fixture, error) {
	if err := ValidateFixture(filename, data); err != nil {
		return nil, err
	}

	var fixture Fixture
	if err := decodeStrict(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &fixture, nil
}

// LoadSignals reads a YAML list of tagged signal objects.
func LoadSignals(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signals file: %w", err)
	}
	if err := ValidateSignals(path, data); err != nil {
		return nil, err
	}

	var signals []map[string]any
	if err := decodeStrict(data, &signals); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return signals, nil
}

func decodeStrict(data []byte, out any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	return decoder.Decode(out)
}

// validateScenario checks what the schema cannot express.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Selections) == 0 {
		return fmt.Errorf("selections list is required and must be non-empty")
	}

	for i, sel := range s.Selections {
		switch {
		case sel.Name != "" && sel.CacheID != "":
			return fmt.Errorf("selections[%d]: name and cacheID are mutually exclusive", i)
		case sel.Name == "" && sel.CacheID == "":
			return fmt.Errorf("selections[%d]: name or cacheID is required", i)
		case sel.Name != "" && sel.Page != 0:
			return fmt.Errorf("selections[%d]: page requires cacheID", i)
		}
	}

	for i, sig := range s.Signals {
		if _, ok := sig["kind"]; !ok {
			return fmt.Errorf("signals[%d]: kind is required", i)
		}
	}
	return nil
}
