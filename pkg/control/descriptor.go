package control

import (
	"github.com/goliatone/go-schemaform/pkg/fieldpath"
	"github.com/goliatone/go-schemaform/pkg/render"
	"github.com/goliatone/go-schemaform/pkg/rules"
	"github.com/goliatone/go-schemaform/pkg/schema"
	"github.com/goliatone/go-schemaform/pkg/uischema"
)

// Kind discriminates descriptors.
type Kind string

const (
	// Data-bound kinds.
	KindObject      Kind = "object-group"
	KindArray       Kind = "array-group"
	KindTable       Kind = "array-table"
	KindListDetail  Kind = "list-detail"
	KindComposition Kind = "composition-switch"
	KindLeaf        Kind = "leaf"
	KindCustom      Kind = "custom"

	// Presentation-only kinds produced by UI Schema elements.
	KindLayout      Kind = "layout"
	KindGroup       Kind = "group"
	KindCategories  Kind = "category-tabs"
	KindCategory    Kind = "category"
	KindLabel       Kind = "label"
	KindPlaceholder Kind = "placeholder"
)

// Option is one choice of a closed-choice leaf.
type Option struct {
	Value any
	Label string
}

// Branch is one candidate of a composition switch.
type Branch struct {
	Label  string
	Schema *schema.Node
}

// Column is one column of an array table.
type Column struct {
	Name     string
	Label    string
	Required bool
	Schema   *schema.Node
}

// Descriptor is one node of the control tree.
type Descriptor struct {
	// Key identifies the descriptor for its lifetime, across renumbering.
	Key  string
	Kind Kind
	// Builtin is the kind a custom descriptor would have without its
	// renderer. Custom descriptors keep the children of that kind so the
	// backend can fall back to them.
	Builtin Kind

	Path    fieldpath.Path
	Schema  *schema.Node
	Element *uischema.Element

	Label       string
	HideLabel   bool
	Description string
	Placeholder string
	Required    bool
	ReadOnly    bool

	// Rule is the inline rule of the UI Schema element that produced the
	// descriptor.
	Rule *rules.Rule

	// Leaf payload.
	Input       string
	Options     []Option
	Constraints []Constraint

	// Branches lists composition candidates.
	Branches []Branch
	// Selected is the active branch of a composition switch, the active
	// category of category tabs, or the item shown in a list-detail pane.
	Selected int

	Columns  []Column
	Detail   *uischema.Element
	Renderer render.Selection

	Children []*Descriptor
	Parent   *Descriptor

	// base is the item path presentation-only descriptors are scoped to
	// inside list-detail layouts.
	base      fieldpath.Path
	autoLabel bool
	hidden    bool
	disabled  bool
	ruled     rules.Flags
}

// Base returns the built-in kind: Builtin for custom descriptors, Kind
// otherwise.
func (d *Descriptor) Base() Kind {
	if d.Kind == KindCustom {
		return d.Builtin
	}
	return d.Kind
}

// IsBound reports whether the descriptor reads and writes data at Path.
func (d *Descriptor) IsBound() bool {
	switch d.Base() {
	case KindObject, KindArray, KindTable, KindListDetail, KindComposition, KindLeaf:
		return true
	}
	return false
}

// IsArray reports whether the descriptor presents an array.
func (d *Descriptor) IsArray() bool {
	switch d.Base() {
	case KindArray, KindTable, KindListDetail:
		return true
	}
	return false
}

// IsItem reports whether the descriptor is one item of an array.
func (d *Descriptor) IsItem() bool {
	return d.Parent != nil && d.Parent.IsArray()
}

// Index returns the item position of an array item, or -1.
func (d *Descriptor) Index() int {
	if !d.IsItem() {
		return -1
	}
	last, ok := d.Path.Last()
	if !ok || !last.IsIndex {
		return -1
	}
	return last.Index
}

// Hidden reports the descriptor's own state: hidden manually or by a rule.
func (d *Descriptor) Hidden() bool {
	return d.hidden || d.ruled.Hidden
}

// Disabled reports the descriptor's own state: disabled manually or by a
// rule.
func (d *Descriptor) Disabled() bool {
	return d.disabled || d.ruled.Disabled
}

// Visible reports whether neither the descriptor nor any ancestor is hidden.
func (d *Descriptor) Visible() bool {
	for cur := d; cur != nil; cur = cur.Parent {
		if cur.Hidden() {
			return false
		}
	}
	return true
}

// Enabled reports whether neither the descriptor nor any ancestor is
// disabled. Disabling a subtree disables every control beneath it.
func (d *Descriptor) Enabled() bool {
	for cur := d; cur != nil; cur = cur.Parent {
		if cur.Disabled() {
			return false
		}
	}
	return true
}

// Editable reports whether a user may change the value.
func (d *Descriptor) Editable() bool {
	return d.Enabled() && !d.ReadOnly
}

// SetHidden sets the manual hidden state. Rules combine with it; showing a
// descriptor never overrides a rule that hides it.
func (d *Descriptor) SetHidden(hidden bool) { d.hidden = hidden }

// SetDisabled sets the manual disabled state.
func (d *Descriptor) SetDisabled(disabled bool) { d.disabled = disabled }

// RuleFlags returns the outcome of the last rule evaluation.
func (d *Descriptor) RuleFlags() rules.Flags { return d.ruled }

// CanAppend reports whether an item may be appended to an array.
func (d *Descriptor) CanAppend() bool {
	if !d.IsArray() || !d.Enabled() {
		return false
	}
	_, hi := d.bounds()
	return hi < 0 || len(d.Children) < hi
}

// CanRemove reports whether an array item may be removed.
func (d *Descriptor) CanRemove() bool {
	if !d.IsItem() || !d.Parent.Enabled() {
		return false
	}
	lo, _ := d.Parent.bounds()
	return len(d.Parent.Children) > lo
}

// CanMoveUp reports whether an array item may move one position up.
func (d *Descriptor) CanMoveUp() bool {
	return d.IsItem() && d.Parent.Enabled() && d.Index() > 0
}

// CanMoveDown reports whether an array item may move one position down.
func (d *Descriptor) CanMoveDown() bool {
	return d.IsItem() && d.Parent.Enabled() && d.Index() < len(d.Parent.Children)-1
}

// Active returns the child shown by category tabs, the selected item of a
// list-detail, or the active branch subtree of a composition switch.
func (d *Descriptor) Active() *Descriptor {
	switch d.Base() {
	case KindComposition:
		if len(d.Children) > 0 {
			return d.Children[0]
		}
		return nil
	case KindCategories, KindListDetail:
		if d.Selected >= 0 && d.Selected < len(d.Children) {
			return d.Children[d.Selected]
		}
	}
	return nil
}

// Walk visits d and its descendants depth-first. Returning false from fn
// skips the children of the visited descriptor.
func (d *Descriptor) Walk(fn func(*Descriptor) bool) {
	if d == nil {
		return
	}
	if !fn(d) {
		return
	}
	for _, child := range d.Children {
		child.Walk(fn)
	}
}

func (d *Descriptor) bounds() (lo, hi int) {
	hi = -1
	if d.Schema == nil {
		return 0, hi
	}
	if d.Schema.MinItems != nil {
		lo = *d.Schema.MinItems
	}
	if d.Schema.MaxItems != nil {
		hi = *d.Schema.MaxItems
	}
	return lo, hi
}

func (d *Descriptor) adopt(children ...*Descriptor) {
	for _, child := range children {
		if child == nil {
			continue
		}
		child.Parent = d
		d.Children = append(d.Children, child)
	}
}
