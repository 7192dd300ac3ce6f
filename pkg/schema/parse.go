package schema

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const defaultMaxRefDepth = 64

// Parse decodes JSON or YAML schema text into a Node tree. The root must be an
// object. Local $ref pointers ("#/...") are expanded; remote references are
// kept on Node.Ref and resolve to a permissive node.
func Parse(raw []byte) (*Node, error) {
	return ParseNamed("", raw)
}

// ParseNamed is Parse with a source label carried into ParseError.
func ParseNamed(source string, raw []byte) (*Node, error) {
	decoded, err := decodeOrdered(raw)
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	return build(source, decoded)
}

// FromMap builds a Node tree from a decoded Go value. Property order follows
// sorted keys because Go maps carry no declaration order.
func FromMap(payload map[string]any) (*Node, error) {
	if payload == nil {
		return nil, &ParseError{Err: errors.New("schema is nil")}
	}
	return build("", fromPlain(payload))
}

// MustParse panics when raw is not a valid schema. Useful for tests.
func MustParse(raw string) *Node {
	node, err := Parse([]byte(raw))
	if err != nil {
		panic(err)
	}
	return node
}

func build(source string, decoded any) (*Node, error) {
	root, ok := decoded.(*object)
	if !ok {
		return nil, &ParseError{Source: source, Err: errors.New("schema root must be an object")}
	}
	b := &builder{root: root, state: &refState{inStack: make(map[string]struct{})}}
	node, err := b.node(root, "#")
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	return node, nil
}

type builder struct {
	root  *object
	state *refState
}

func (b *builder) node(value any, path string) (*Node, error) {
	switch typed := value.(type) {
	case nil:
		return nil, fmt.Errorf("schema: schema is nil at %s", path)
	case bool:
		// Boolean schemas accept (true) or reject (false) everything; the
		// control tree treats both as untyped.
		return &Node{raw: map[string]any{}}, nil
	case *object:
		if ref := strings.TrimSpace(readString(typed, "$ref")); ref != "" {
			return b.ref(typed, ref, path)
		}
		return b.object(typed, path)
	}
	return nil, fmt.Errorf("schema: schema must be an object at %s", path)
}

func (b *builder) object(payload *object, path string) (*Node, error) {
	out := &Node{
		Title:            strings.TrimSpace(readString(payload, "title")),
		Description:      readString(payload, "description"),
		Format:           strings.TrimSpace(readString(payload, "format")),
		Widget:           strings.TrimSpace(readString(payload, "x-ui-widget")),
		Placeholder:      firstString(payload, "placeholder", "x-placeholder"),
		Pattern:          readString(payload, "pattern"),
		ContentEncoding:  strings.TrimSpace(readString(payload, "contentEncoding")),
		ContentMediaType: strings.TrimSpace(readString(payload, "contentMediaType")),
		Extensions:       extractExtensions(payload),
		raw:              toPlain(payload).(map[string]any),
	}

	if typeRaw, ok := payload.get("type"); ok {
		typ, nullable, err := readType(typeRaw)
		if err != nil {
			return nil, fmt.Errorf("schema: %v at %s", err, path)
		}
		out.Type, out.Nullable = typ, nullable
	}

	if v, ok := payload.get("default"); ok {
		out.Default, out.HasDefault = toPlain(v), true
	}
	if v, ok := payload.get("const"); ok {
		out.Const, out.HasConst = toPlain(v), true
	}
	if v, ok := payload.get("readOnly"); ok {
		flag, _ := v.(bool)
		out.ReadOnly = flag
	}

	if enumRaw, ok := payload.get("enum"); ok {
		list, ok := enumRaw.([]any)
		if !ok {
			return nil, fmt.Errorf("schema: enum must be an array at %s", path)
		}
		out.Enum = toPlain(list).([]any)
	}
	for _, key := range []string{"enumNames", "x-enumNames"} {
		if namesRaw, ok := payload.get(key); ok && out.EnumNames == nil {
			list, ok := namesRaw.([]any)
			if !ok {
				return nil, fmt.Errorf("schema: %s must be an array at %s", key, path)
			}
			out.EnumNames = make([]string, len(list))
			for i, item := range list {
				out.EnumNames[i] = stringify(item)
			}
		}
	}

	if requiredRaw, ok := payload.get("required"); ok {
		list, ok := requiredRaw.([]any)
		if !ok {
			return nil, fmt.Errorf("schema: required must be an array at %s", path)
		}
		required := make([]string, 0, len(list))
		for idx, item := range list {
			str, ok := item.(string)
			if !ok || strings.TrimSpace(str) == "" {
				return nil, fmt.Errorf("schema: required[%d] must be a string at %s", idx, path)
			}
			required = appendUnique(required, str)
		}
		out.Required = required
	}

	var err error
	if out.Minimum, err = readFloat(payload, "minimum", path); err != nil {
		return nil, err
	}
	if out.Maximum, err = readFloat(payload, "maximum", path); err != nil {
		return nil, err
	}
	if out.MultipleOf, err = readFloat(payload, "multipleOf", path); err != nil {
		return nil, err
	}
	if out.ExclusiveMinimum, err = readExclusive(payload, "exclusiveMinimum", out.Minimum, path); err != nil {
		return nil, err
	}
	if out.ExclusiveMaximum, err = readExclusive(payload, "exclusiveMaximum", out.Maximum, path); err != nil {
		return nil, err
	}
	if out.MinLength, err = readInt(payload, "minLength", path); err != nil {
		return nil, err
	}
	if out.MaxLength, err = readInt(payload, "maxLength", path); err != nil {
		return nil, err
	}
	if out.MinItems, err = readInt(payload, "minItems", path); err != nil {
		return nil, err
	}
	if out.MaxItems, err = readInt(payload, "maxItems", path); err != nil {
		return nil, err
	}

	if propsRaw, ok := payload.get("properties"); ok {
		props, ok := propsRaw.(*object)
		if !ok {
			return nil, fmt.Errorf("schema: properties must be an object at %s", path)
		}
		out.Properties = make(map[string]*Node, len(props.keys))
		out.PropertyOrder = make([]string, 0, len(props.keys))
		for _, name := range props.keys {
			child, err := b.node(props.values[name], joinPath(path, "properties", name))
			if err != nil {
				return nil, err
			}
			out.Properties[name] = child
			out.PropertyOrder = append(out.PropertyOrder, name)
		}
	}

	if itemsRaw, ok := payload.get("items"); ok {
		// Tuple-form items describe positional schemas; the control tree
		// only renders homogeneous arrays so tuples stay untyped.
		if _, tuple := itemsRaw.([]any); !tuple {
			items, err := b.node(itemsRaw, joinPath(path, "items"))
			if err != nil {
				return nil, err
			}
			out.Items = items
		}
	}

	for _, keyword := range []string{"oneOf", "anyOf", "allOf"} {
		listRaw, ok := payload.get(keyword)
		if !ok {
			continue
		}
		list, ok := listRaw.([]any)
		if !ok {
			return nil, fmt.Errorf("schema: %s must be an array at %s", keyword, path)
		}
		nodes := make([]*Node, 0, len(list))
		for idx, item := range list {
			child, err := b.node(item, joinPath(path, keyword, fmt.Sprint(idx)))
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, child)
		}
		switch keyword {
		case "oneOf":
			out.OneOf = nodes
		case "anyOf":
			out.AnyOf = nodes
		case "allOf":
			out.AllOf = nodes
		}
	}

	return out, nil
}

func readString(payload *object, key string) string {
	v, ok := payload.get(key)
	if !ok {
		return ""
	}
	str, _ := v.(string)
	return str
}

func firstString(payload *object, keys ...string) string {
	for _, key := range keys {
		if v := readString(payload, key); v != "" {
			return v
		}
	}
	return ""
}

// readType accepts a single type name or a list where "null" only marks the
// node nullable.
func readType(raw any) (string, bool, error) {
	switch v := raw.(type) {
	case string:
		typ := strings.TrimSpace(v)
		if !isAllowedType(typ) {
			return "", false, fmt.Errorf("unsupported type %q", typ)
		}
		if typ == "null" {
			return "", true, nil
		}
		return typ, false, nil
	case []any:
		var (
			typ      string
			nullable bool
		)
		for _, item := range v {
			name, ok := item.(string)
			if !ok || !isAllowedType(name) {
				return "", false, fmt.Errorf("unsupported type %v", item)
			}
			if name == "null" {
				nullable = true
				continue
			}
			if typ == "" {
				typ = name
			}
		}
		return typ, nullable, nil
	}
	return "", false, errors.New("type must be a string or an array")
}

func readFloat(payload *object, key, path string) (*float64, error) {
	raw, ok := payload.get(key)
	if !ok {
		return nil, nil
	}
	value, ok := toFloat(raw)
	if !ok {
		return nil, fmt.Errorf("schema: %s must be a number at %s", key, path)
	}
	return &value, nil
}

// readExclusive accepts both the numeric form and the boolean draft-04 form,
// which borrows the bound from minimum/maximum.
func readExclusive(payload *object, key string, bound *float64, path string) (*float64, error) {
	raw, ok := payload.get(key)
	if !ok {
		return nil, nil
	}
	if flag, ok := raw.(bool); ok {
		if flag && bound != nil {
			value := *bound
			return &value, nil
		}
		return nil, nil
	}
	value, ok := toFloat(raw)
	if !ok {
		return nil, fmt.Errorf("schema: %s must be a number at %s", key, path)
	}
	return &value, nil
}

func readInt(payload *object, key, path string) (*int, error) {
	raw, ok := payload.get(key)
	if !ok {
		return nil, nil
	}
	value, ok := toInt(raw)
	if !ok || value < 0 {
		return nil, fmt.Errorf("schema: %s must be a non-negative integer at %s", key, path)
	}
	return &value, nil
}

func isVendorExtension(key string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(key)), "x-")
}

func extractExtensions(payload *object) map[string]any {
	var extensions map[string]any
	for _, key := range payload.keys {
		if !isVendorExtension(key) {
			continue
		}
		if extensions == nil {
			extensions = make(map[string]any)
		}
		extensions[key] = toPlain(payload.values[key])
	}
	return extensions
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
		return 0, false
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

func isAllowedType(value string) bool {
	switch value {
	case "object", "array", "string", "integer", "number", "boolean", "null":
		return true
	default:
		return false
	}
}

func joinPath(path string, segments ...string) string {
	if path == "" || path == "#" {
		path = "#"
	}
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		path = path + "/" + escapeJSONPointer(segment)
	}
	return path
}

func escapeJSONPointer(value string) string {
	replacer := strings.NewReplacer("~", "~0", "/", "~1")
	return replacer.Replace(value)
}

func appendUnique(list []string, value string) []string {
	for _, item := range list {
		if item == value {
			return list
		}
	}
	return append(list, value)
}
