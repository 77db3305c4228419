package harness

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaSource string

// SchemaError is a file that does not match its schema.
type SchemaError struct {
	Filename string
	Line     int
	Message  string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Filename, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Filename, e.Message)
}

// ValidateScenario checks scenario YAML against the #Scenario schema.
func ValidateScenario(filename string, data []byte) error {
	return validate("#Scenario", filename, data)
}

// ValidateFixture checks fixture YAML against the #Fixture schema.
func ValidateFixture(filename string, data []byte) error {
	return validate("#Fixture", filename, data)
}

// ValidateSignals checks a YAML signal list against the #Signals schema.
func ValidateSignals(filename string, data []byte) error {
	return validate("#Signals", filename, data)
}

// validate unifies the YAML document with a schema definition. Each call
// uses its own CUE context; contexts are not safe for concurrent use.
func validate(definition, filename string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return &SchemaError{Filename: filename, Message: err.Error()}
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return formatCUEError(filename, err)
	}

	unified := schema.LookupPath(cue.ParsePath(definition)).Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(filename, err)
	}
	return nil
}

// formatCUEError reports the first CUE error with its line, if it has one.
func formatCUEError(filename string, err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &SchemaError{Filename: filename, Message: err.Error()}
	}

	first := errs[0]
	se := &SchemaError{Filename: filename, Message: first.Error()}
	for _, pos := range errors.Positions(first) {
		if pos.Filename() == filename {
			se.Line = pos.Line()
			break
		}
	}
	return se
}
