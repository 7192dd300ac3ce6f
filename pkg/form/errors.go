package form

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-schemaform/pkg/validation"
)

var (
	// ErrNoSchema is returned by operations that need a loaded schema.
	ErrNoSchema = errors.New("form: no schema loaded")
	// ErrUnknownPath is returned when no control is bound to a path.
	ErrUnknownPath = errors.New("form: no control at path")
	// ErrNotComposition is returned by SelectBranch when the path does not
	// hold a composition switch.
	ErrNotComposition = errors.New("form: path is not a composition switch")
	// ErrNotArray is returned by item operations when the path does not hold
	// an array.
	ErrNotArray = errors.New("form: path is not an array")
	// ErrUnknownControl is returned when no descriptor carries a key.
	ErrUnknownControl = errors.New("form: no control with key")
)

// ValidationFailure is returned by Submit when the data does not validate.
// Validate itself never fails; it reports through its Result.
type ValidationFailure struct {
	Result validation.Result
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("form: validation failed with %d error(s)", len(e.Result.Errors))
}
