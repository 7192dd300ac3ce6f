package schema

import "fmt"

// ParseError reports schema text that is not valid JSON/YAML or whose root is
// not an object. Loads that fail with a ParseError leave the previously
// loaded form untouched.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("schema: parse: %v", e.Err)
	}
	return fmt.Sprintf("schema: parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
