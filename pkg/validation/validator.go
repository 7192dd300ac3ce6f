package validation

import (
	"context"
	"sort"

	"github.com/goliatone/go-schemaform/pkg/fieldpath"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

// Issue is one failure as reported by a validator.
type Issue struct {
	InstancePointer string
	Keyword         string
	Params          map[string]any
	Message         string
}

// Validator checks a data snapshot.
type Validator interface {
	Validate(data any) []Issue
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(data any) []Issue

func (f ValidatorFunc) Validate(data any) []Issue { return f(data) }

// Compiler turns a data schema into a Validator. Compilation may be slow;
// forms can run it in the background.
type Compiler interface {
	Compile(ctx context.Context, root *schema.Node) (Validator, error)
}

// CompilerFunc adapts a function to Compiler.
type CompilerFunc func(ctx context.Context, root *schema.Node) (Validator, error)

func (f CompilerFunc) Compile(ctx context.Context, root *schema.Node) (Validator, error) {
	return f(ctx, root)
}

// Error is one field-level validation failure.
type Error struct {
	Path    fieldpath.Path
	Pointer string
	Keyword string
	Params  map[string]any
	Message string
}

// Result is the outcome of validating a snapshot. A failed validation is a
// normal result, not an error.
type Result struct {
	Valid  bool
	Errors []Error
}

// ErrorsAt returns the errors reported at exactly p.
func (r Result) ErrorsAt(p fieldpath.Path) []Error {
	var out []Error
	for _, e := range r.Errors {
		if e.Path.Equal(p) {
			out = append(out, e)
		}
	}
	return out
}

// Messages groups messages by dotted field path. Form-level errors use the
// empty key.
func (r Result) Messages() map[string][]string {
	if len(r.Errors) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, e := range r.Errors {
		key := e.Path.String()
		out[key] = append(out[key], e.Message)
	}
	return out
}

// Map converts validator issues into a Result. Instance pointers become
// paths; required failures point at the missing property rather than its
// parent object. Messages come from catalog in the given locale.
func Map(issues []Issue, catalog *Catalog, locale string) Result {
	result := Result{Valid: len(issues) == 0}
	for _, issue := range issues {
		p := fieldpath.FromInstancePointer(issue.InstancePointer)
		if issue.Keyword == "required" {
			if missing, ok := issue.Params["missingProperty"].(string); ok && missing != "" {
				p = p.Child(missing)
			}
		}
		e := Error{
			Path:    p,
			Pointer: issue.InstancePointer,
			Keyword: issue.Keyword,
			Params:  issue.Params,
			Message: issue.Message,
		}
		if catalog != nil {
			e.Message = catalog.Message(locale, e)
		}
		result.Errors = append(result.Errors, e)
	}
	sort.SliceStable(result.Errors, func(i, j int) bool {
		return result.Errors[i].Path.String() < result.Errors[j].Path.String()
	})
	return result
}
