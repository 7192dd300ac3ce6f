package fieldpath

import "fmt"

// MalformedPathError reports dotted path syntax that cannot be tokenized.
type MalformedPathError struct {
	Input  string
	Offset int
	Reason string
}

func (e *MalformedPathError) Error() string {
	return fmt.Sprintf("fieldpath: malformed path %q at offset %d: %s", e.Input, e.Offset, e.Reason)
}
