package validation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-schemaform/pkg/fieldpath"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

const resourceURL = "mem://schemaform/schema.json"

var quotedName = regexp.MustCompile(`'((?:[^'\\]|\\.)*)'`)

// JSONSchemaCompiler compiles data schemas with
// github.com/santhosh-tekuri/jsonschema. Documents without $schema are
// treated as draft 2020-12.
type JSONSchemaCompiler struct {
	// AssertFormat turns "format" into an assertion instead of an
	// annotation.
	AssertFormat bool
}

// Compile implements Compiler.
func (c JSONSchemaCompiler) Compile(ctx context.Context, root *schema.Node) (Validator, error) {
	if root == nil {
		return nil, errors.New("validation: schema is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc := root.Raw()
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("validation: encode schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = c.AssertFormat
	if err := compiler.AddResource(resourceURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("validation: add schema: %w", err)
	}
	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("validation: compile schema: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &jsonSchemaValidator{schema: compiled, doc: doc}, nil
}

type jsonSchemaValidator struct {
	schema *jsonschema.Schema
	doc    map[string]any
}

func (v *jsonSchemaValidator) Validate(data any) []Issue {
	instance, err := toInstance(data)
	if err != nil {
		return []Issue{{Keyword: "type", Message: err.Error()}}
	}
	err = v.schema.Validate(instance)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []Issue{{Message: err.Error()}}
	}
	var issues []Issue
	for _, leaf := range leaves(verr, nil) {
		issues = append(issues, v.issues(leaf, instance)...)
	}
	return issues
}

// issues turns one leaf error into issues. Required failures naming several
// properties yield one issue per missing property.
func (v *jsonSchemaValidator) issues(leaf *jsonschema.ValidationError, instance any) []Issue {
	keyword := lastSegment(leaf.KeywordLocation)
	value, _ := lookupPointer(v.doc, fragment(leaf.AbsoluteKeywordLocation))

	if keyword == "required" {
		missing := missingProperties(value, instance, leaf)
		out := make([]Issue, 0, len(missing))
		for _, name := range missing {
			out = append(out, Issue{
				InstancePointer: leaf.InstanceLocation,
				Keyword:         keyword,
				Params:          map[string]any{"missingProperty": name},
				Message:         leaf.Message,
			})
		}
		return out
	}

	return []Issue{{
		InstancePointer: leaf.InstanceLocation,
		Keyword:         keyword,
		Params:          paramsFor(keyword, value),
		Message:         leaf.Message,
	}}
}

func leaves(err *jsonschema.ValidationError, out []*jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return append(out, err)
	}
	for _, cause := range err.Causes {
		out = leaves(cause, out)
	}
	return out
}

func paramsFor(keyword string, value any) map[string]any {
	switch keyword {
	case "minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum", "multipleOf",
		"minLength", "maxLength", "minItems", "maxItems", "minProperties", "maxProperties":
		return map[string]any{"limit": value}
	case "pattern":
		return map[string]any{"pattern": value}
	case "type":
		return map[string]any{"type": value}
	case "format":
		return map[string]any{"format": value}
	case "enum":
		return map[string]any{"allowedValues": value}
	case "const":
		return map[string]any{"allowedValue": value}
	}
	return map[string]any{}
}

// missingProperties compares the required list against the failing object.
// The validator message is parsed only when the schema location cannot be
// resolved.
func missingProperties(required any, instance any, leaf *jsonschema.ValidationError) []string {
	names, ok := required.([]any)
	if ok {
		obj, _ := lookupPointer(instance, leaf.InstanceLocation)
		present, _ := obj.(map[string]any)
		var missing []string
		for _, raw := range names {
			name, _ := raw.(string)
			if _, exists := present[name]; !exists && name != "" {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return missing
		}
	}
	var missing []string
	for _, match := range quotedName.FindAllStringSubmatch(leaf.Message, -1) {
		missing = append(missing, strings.ReplaceAll(match[1], `\'`, `'`))
	}
	return missing
}

// toInstance re-encodes data into the plain JSON shape the validator
// expects, with numbers as json.Number.
func toInstance(data any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("validation: encode data: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("validation: decode data: %w", err)
	}
	return out, nil
}

func fragment(location string) string {
	if idx := strings.Index(location, "#"); idx >= 0 {
		return location[idx+1:]
	}
	return location
}

func lastSegment(pointer string) string {
	pointer = strings.TrimRight(pointer, "/")
	if idx := strings.LastIndex(pointer, "/"); idx >= 0 {
		pointer = pointer[idx+1:]
	}
	pointer = strings.ReplaceAll(pointer, "~1", "/")
	return strings.ReplaceAll(pointer, "~0", "~")
}

func lookupPointer(doc any, pointer string) (any, bool) {
	pointer = strings.TrimPrefix(pointer, "#")
	if pointer == "" || pointer == "/" {
		return doc, true
	}
	current := doc
	for _, part := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			var idx int
			if _, err := fmt.Sscanf(part, "%d", &idx); err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// SchemaIssue is a problem with the schema document itself.
type SchemaIssue struct {
	Pointer string
	Field   string
	Message string
}

// SchemaCheckResult reports whether a schema compiles.
type SchemaCheckResult struct {
	Valid  bool
	Issues []SchemaIssue
}

// CheckSchema compiles root and reports what stops it from compiling. Field
// carries the dotted data path the failing keyword describes, when there is
// one.
func CheckSchema(ctx context.Context, compiler Compiler, root *schema.Node) SchemaCheckResult {
	if compiler == nil {
		compiler = JSONSchemaCompiler{}
	}
	_, err := compiler.Compile(ctx, root)
	if err == nil {
		return SchemaCheckResult{Valid: true}
	}

	var verr *jsonschema.ValidationError
	if errors.As(err, &verr) {
		var issues []SchemaIssue
		for _, leaf := range leaves(verr, nil) {
			issues = append(issues, SchemaIssue{
				Pointer: leaf.InstanceLocation,
				Field:   fieldpath.FromPointer(leaf.InstanceLocation).String(),
				Message: strings.TrimSpace(leaf.Message),
			})
		}
		return SchemaCheckResult{Issues: issues}
	}
	return SchemaCheckResult{Issues: []SchemaIssue{issueFromError(err)}}
}

func issueFromError(err error) SchemaIssue {
	msg := strings.TrimSpace(err.Error())
	pointer := extractJSONPointer(msg)
	if pointer != "" {
		msg = strings.Replace(msg, " at "+pointer, "", 1)
	}
	msg = strings.TrimPrefix(msg, "validation: ")
	return SchemaIssue{
		Pointer: pointer,
		Field:   fieldpath.FromPointer(pointer).String(),
		Message: strings.TrimSpace(msg),
	}
}

func extractJSONPointer(message string) string {
	if idx := strings.LastIndex(message, " at "); idx >= 0 {
		candidate := strings.TrimSpace(message[idx+4:])
		if strings.HasPrefix(candidate, "#") {
			return strings.TrimRight(candidate, ".)];,")
		}
	}
	if idx := strings.LastIndex(message, "#/"); idx >= 0 {
		return strings.TrimRight(strings.Fields(message[idx:])[0], ".)];,")
	}
	return ""
}
