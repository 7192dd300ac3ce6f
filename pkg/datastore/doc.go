// Package datastore owns the canonical nested data value of a form.
//
// Values are JSON-compatible: map[string]any for objects, []any for arrays,
// and string, bool, int64, float64 or nil scalars. Integers coerced from user
// input are stored as int64 and numbers as float64; Equal compares numbers by
// value regardless of which of the two they are.
//
// The store never looks at rendered state. Structural array operations only
// reshape the data; renumbering the paths of descriptors beneath the array is
// the control tree's job (see control.Tree).
package datastore
