package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-json"

	"github.com/goliatone/go-schemaform/pkg/schema"
)

const (
	componentPrefix = "#/components/schemas/"
	defsPrefix      = "#/$defs/"
)

var (
	// ErrUnknownComponent is returned when the document has no component
	// schema with the requested name.
	ErrUnknownComponent = errors.New("openapi: unknown component schema")
	// ErrUnknownOperation is returned when no operation matches the requested
	// id.
	ErrUnknownOperation = errors.New("openapi: unknown operation")
	// ErrNoRequestBody is returned when an operation declares no request
	// body schema.
	ErrNoRequestBody = errors.New("openapi: operation has no request body schema")
)

// requestMediaTypes lists the request body media types tried in order.
var requestMediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

// Components lists the component schema names of the document, sorted.
func Components(ctx context.Context, raw []byte) ([]string, error) {
	spec, err := load(ctx, raw)
	if err != nil {
		return nil, err
	}
	schemas := componentSchemas(spec)
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// SchemaFromComponents returns the component schema name as a standalone
// data schema.
func SchemaFromComponents(ctx context.Context, raw []byte, name string) (*schema.Node, error) {
	spec, err := load(ctx, raw)
	if err != nil {
		return nil, err
	}
	ref, ok := componentSchemas(spec)[name]
	if !ok || ref == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownComponent, name)
	}
	return standalone(spec, ref)
}

// SchemaForOperation returns the request body schema of the operation with
// the given operationId. Operations without an id match "<method>:<path>",
// for example "post:/pets".
func SchemaForOperation(ctx context.Context, raw []byte, operationID string) (*schema.Node, error) {
	spec, err := load(ctx, raw)
	if err != nil {
		return nil, err
	}
	op := findOperation(spec, operationID)
	if op == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, operationID)
	}
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRequestBody, operationID)
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range requestMediaTypes {
		if mt, ok := content[mediaType]; ok && mt != nil && mt.Schema != nil {
			return standalone(spec, mt.Schema)
		}
	}
	types := make([]string, 0, len(content))
	for mediaType := range content {
		types = append(types, mediaType)
	}
	sort.Strings(types)
	for _, mediaType := range types {
		if mt := content[mediaType]; mt != nil && mt.Schema != nil {
			return standalone(spec, mt.Schema)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoRequestBody, operationID)
}

func load(ctx context.Context, raw []byte) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi: validate: %w", err)
	}
	return spec, nil
}

func componentSchemas(spec *openapi3.T) openapi3.Schemas {
	if spec.Components == nil {
		return nil
	}
	return spec.Components.Schemas
}

func findOperation(spec *openapi3.T, id string) *openapi3.Operation {
	if spec.Paths == nil {
		return nil
	}
	paths := spec.Paths.Map()
	keys := make([]string, 0, len(paths))
	for path := range paths {
		keys = append(keys, path)
	}
	sort.Strings(keys)
	for _, path := range keys {
		item := paths[path]
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			if op.OperationID == id || strings.ToLower(method)+":"+path == id {
				return op
			}
		}
	}
	return nil
}

// standalone converts ref into a schema document carrying every component
// schema under "$defs".
func standalone(spec *openapi3.T, ref *openapi3.SchemaRef) (*schema.Node, error) {
	root, err := plain(ref)
	if err != nil {
		return nil, err
	}
	doc, ok := root.(map[string]any)
	if !ok {
		return nil, errors.New("openapi: schema is not an object")
	}

	components := componentSchemas(spec)
	if len(components) > 0 {
		defs := make(map[string]any, len(components))
		for name, component := range components {
			if component == nil {
				continue
			}
			def, err := plain(component)
			if err != nil {
				return nil, fmt.Errorf("openapi: component %s: %w", name, err)
			}
			defs[name] = def
		}
		doc["$defs"] = defs
	}

	node, err := schema.FromMap(doc)
	if err != nil {
		return nil, fmt.Errorf("openapi: %w", err)
	}
	return node, nil
}

// plain encodes ref and translates the result to JSON Schema 2020-12.
func plain(ref *openapi3.SchemaRef) (any, error) {
	raw, err := json.Marshal(ref)
	if err != nil {
		return nil, fmt.Errorf("openapi: encode schema: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("openapi: decode schema: %w", err)
	}
	return translate(decoded), nil
}

func translate(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for key, child := range v {
			v[key] = translate(child)
		}
		if ref, ok := v["$ref"].(string); ok && strings.HasPrefix(ref, componentPrefix) {
			v["$ref"] = defsPrefix + strings.TrimPrefix(ref, componentPrefix)
		}
		if nullable, ok := v["nullable"].(bool); ok {
			delete(v, "nullable")
			if typ, ok := v["type"].(string); ok && nullable {
				v["type"] = []any{typ, "null"}
			}
		}
		exclusive(v, "exclusiveMinimum", "minimum")
		exclusive(v, "exclusiveMaximum", "maximum")
		return v
	case []any:
		for i, item := range v {
			v[i] = translate(item)
		}
		return v
	}
	return value
}

// exclusive rewrites the OpenAPI 3.0 boolean form of an exclusive bound into
// the numeric form.
func exclusive(v map[string]any, flag, bound string) {
	set, ok := v[flag].(bool)
	if !ok {
		return
	}
	delete(v, flag)
	if limit, ok := v[bound]; ok && set {
		v[flag] = limit
		delete(v, bound)
	}
}
