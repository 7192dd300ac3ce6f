package schema

import "github.com/goliatone/go-schemaform/pkg/fieldpath"

// MergeAllOf folds every object-typed allOf member into a copy of n. Later
// members overwrite same-named properties from earlier ones, which keep their
// original position; required names are unioned. Non-object members are
// ignored. The result carries no allOf, so merging it again returns it
// unchanged.
func MergeAllOf(n *Node) *Node {
	if n == nil || len(n.AllOf) == 0 {
		return n
	}
	merged := n.shallowClone()
	merged.AllOf = nil
	merged.Properties = make(map[string]*Node, len(n.Properties))
	merged.PropertyOrder = append([]string(nil), n.PropertyNames()...)
	for name, prop := range n.Properties {
		merged.Properties[name] = prop
	}
	merged.Required = append([]string(nil), n.Required...)

	for _, member := range n.AllOf {
		member = MergeAllOf(member)
		if member == nil || member.Type != "object" {
			continue
		}
		merged.Type = "object"
		for _, name := range member.PropertyNames() {
			if _, exists := merged.Properties[name]; !exists {
				merged.PropertyOrder = append(merged.PropertyOrder, name)
			}
			merged.Properties[name] = member.Properties[name]
		}
		for _, name := range member.Required {
			merged.Required = appendUnique(merged.Required, name)
		}
	}
	return merged
}

// BranchChooser picks the active composition branch for the node found at
// the given path. Returning a negative or out-of-range index stops descent.
type BranchChooser func(at fieldpath.Path, node *Node) int

// Resolve returns the effective sub-schema at path p. Name tokens descend into
// properties, index tokens into items; allOf is merged at every hop.
// Undescribed locations resolve to Empty, never to an error.
func Resolve(root *Node, p fieldpath.Path) *Node {
	return ResolveWith(root, p, nil)
}

// ResolveWith is Resolve that also descends through oneOf/anyOf nodes using
// choose to select the active branch.
func ResolveWith(root *Node, p fieldpath.Path, choose BranchChooser) *Node {
	node := MergeAllOf(root)
	if node == nil {
		return Empty()
	}
	for i, tok := range p {
		node = activeBranch(node, p[:i], choose)
		var next *Node
		if tok.IsIndex {
			next = node.Items
		} else if node.IsObject() {
			next = node.Properties[tok.Name]
		}
		if next == nil {
			return Empty()
		}
		node = MergeAllOf(next)
	}
	return activeBranch(node, p, choose)
}

// ResolveDeclared is ResolveWith except that the node at p itself is
// returned as declared: a oneOf/anyOf property keeps its branches. Branch
// descent still applies on the way to p.
func ResolveDeclared(root *Node, p fieldpath.Path, choose BranchChooser) *Node {
	last, ok := p.Last()
	if !ok {
		if root == nil {
			return Empty()
		}
		return MergeAllOf(root)
	}
	parent := ResolveWith(root, p.Parent(), choose)
	var next *Node
	if last.IsIndex {
		next = parent.Items
	} else if parent.IsObject() {
		next = parent.Properties[last.Name]
	}
	if next == nil {
		return Empty()
	}
	return MergeAllOf(next)
}

func activeBranch(node *Node, at fieldpath.Path, choose BranchChooser) *Node {
	for choose != nil {
		branches := node.Branches()
		if len(branches) == 0 {
			return node
		}
		idx := choose(at, node)
		if idx < 0 || idx >= len(branches) {
			return node
		}
		node = MergeAllOf(branches[idx])
	}
	return node
}

// WithUIOptions returns a copy of n carrying presentation hints supplied by a
// UI Schema control. Empty values leave the schema's own hints in place.
func (n *Node) WithUIOptions(widget, placeholder, description string) *Node {
	if n == nil {
		n = Empty()
	}
	if widget == "" && placeholder == "" && description == "" {
		return n
	}
	out := n.shallowClone()
	if widget != "" {
		out.Widget = widget
	}
	if placeholder != "" {
		out.Placeholder = placeholder
	}
	if description != "" {
		out.Description = description
	}
	return out
}
