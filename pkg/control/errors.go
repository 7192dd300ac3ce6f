package control

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaRequired is returned when Build is called without a data schema.
	ErrSchemaRequired = errors.New("control: schema is required")
	// ErrNotArray is returned by item operations on a descriptor that is not
	// an array presentation.
	ErrNotArray = errors.New("control: descriptor is not an array")
	// ErrNotComposition is returned by SelectBranch on a descriptor that is
	// not a composition switch.
	ErrNotComposition = errors.New("control: descriptor is not a composition switch")
	// ErrIndexOutOfRange is returned when a selection or item index does not
	// exist.
	ErrIndexOutOfRange = errors.New("control: index out of range")
)

// UnsupportedElementError reports a UI Schema element type the builder does
// not know. The element degrades to an empty placeholder; the error is kept
// in Tree.Warnings.
type UnsupportedElementError struct {
	Type    string
	Pointer string
}

func (e *UnsupportedElementError) Error() string {
	return fmt.Sprintf("control: unsupported ui schema element %q at %s", e.Type, e.Pointer)
}
