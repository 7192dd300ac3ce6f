package datastore

import (
	"errors"
	"fmt"
)

var (
	// ErrMinItems is returned when removing an item would drop an array below
	// its minItems. The data is left unchanged.
	ErrMinItems = errors.New("datastore: array is at minItems")
	// ErrMaxItems is returned when inserting an item would grow an array past
	// its maxItems. The data is left unchanged.
	ErrMaxItems = errors.New("datastore: array is at maxItems")
	// ErrNotArray is returned by structural operations on non-array values.
	ErrNotArray = errors.New("datastore: value is not an array")
	// ErrIndexOutOfRange is returned for item indices outside the array.
	ErrIndexOutOfRange = errors.New("datastore: index out of range")
)

// PathTypeConflictError reports a write whose path disagrees with the kind of
// container already stored at some prefix of it.
type PathTypeConflictError struct {
	Path string
	Want string
	Got  string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("datastore: path %q needs %s but holds %s", e.Path, e.Want, e.Got)
}
