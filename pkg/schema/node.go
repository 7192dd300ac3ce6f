package schema

import "sort"

// Node is one parsed JSON Schema location. Nodes are immutable after parsing;
// helpers that need a modified view (MergeAllOf) return a new Node.
type Node struct {
	Ref         string
	Type        string
	Nullable    bool
	Title       string
	Description string
	Format      string
	Widget      string
	Placeholder string

	Default    any
	HasDefault bool
	Const      any
	HasConst   bool
	Enum       []any
	EnumNames  []string

	Properties    map[string]*Node
	PropertyOrder []string
	Required      []string
	Items         *Node

	OneOf []*Node
	AnyOf []*Node
	AllOf []*Node

	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum *float64
	ExclusiveMaximum *float64
	MultipleOf       *float64
	MinLength        *int
	MaxLength        *int
	MinItems         *int
	MaxItems         *int
	Pattern          string
	ReadOnly         bool

	ContentEncoding  string
	ContentMediaType string

	Extensions map[string]any

	raw map[string]any
}

// Empty returns the permissive, untyped node used for locations a schema does
// not describe.
func Empty() *Node {
	return &Node{}
}

// Raw returns the plain JSON-compatible form of the node as it was declared,
// before $ref expansion or allOf merging. Validators compile against it.
func (n *Node) Raw() map[string]any {
	if n == nil || n.raw == nil {
		return map[string]any{}
	}
	return n.raw
}

// IsObject reports whether the node describes a JSON object, either through an
// explicit type or by declaring properties without any type.
func (n *Node) IsObject() bool {
	if n == nil {
		return false
	}
	return n.Type == "object" || (n.Type == "" && len(n.Properties) > 0)
}

// IsArray reports whether the node describes a JSON array.
func (n *Node) IsArray() bool {
	return n != nil && (n.Type == "array" || (n.Type == "" && n.Items != nil))
}

// IsUntyped reports whether nothing in the node constrains its shape.
func (n *Node) IsUntyped() bool {
	return n == nil || (n.Type == "" && len(n.Properties) == 0 && n.Items == nil &&
		len(n.OneOf) == 0 && len(n.AnyOf) == 0 && len(n.AllOf) == 0 && len(n.Enum) == 0)
}

// Property returns the named child schema, or nil when undeclared.
func (n *Node) Property(name string) *Node {
	if n == nil {
		return nil
	}
	return n.Properties[name]
}

// PropertyNames returns property names in declaration order. Names that were
// added without an order entry are appended sorted.
func (n *Node) PropertyNames() []string {
	if n == nil || len(n.Properties) == 0 {
		return nil
	}
	names := make([]string, 0, len(n.Properties))
	seen := make(map[string]struct{}, len(n.Properties))
	for _, name := range n.PropertyOrder {
		if _, ok := n.Properties[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if len(names) == len(n.Properties) {
		return names
	}
	var rest []string
	for name := range n.Properties {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// IsRequired reports whether name appears in the node's required list.
func (n *Node) IsRequired(name string) bool {
	if n == nil {
		return false
	}
	for _, r := range n.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Branches returns the composition candidates of the node, preferring oneOf
// over anyOf.
func (n *Node) Branches() []*Node {
	if n == nil {
		return nil
	}
	if len(n.OneOf) > 0 {
		return n.OneOf
	}
	return n.AnyOf
}

// CompositionKeyword returns "oneOf" or "anyOf" for composition nodes and an
// empty string otherwise.
func (n *Node) CompositionKeyword() string {
	switch {
	case n == nil:
		return ""
	case len(n.OneOf) > 0:
		return "oneOf"
	case len(n.AnyOf) > 0:
		return "anyOf"
	}
	return ""
}

// Extension returns the value of an x- prefixed keyword.
func (n *Node) Extension(key string) (any, bool) {
	if n == nil || n.Extensions == nil {
		return nil, false
	}
	v, ok := n.Extensions[key]
	return v, ok
}

// EnumLabel returns the display label for the enum value at index i.
func (n *Node) EnumLabel(i int) string {
	if i >= 0 && i < len(n.EnumNames) && n.EnumNames[i] != "" {
		return n.EnumNames[i]
	}
	if i >= 0 && i < len(n.Enum) {
		return stringify(n.Enum[i])
	}
	return ""
}

func (n *Node) shallowClone() *Node {
	clone := *n
	return &clone
}
