package html

import (
	"strconv"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-schemaform/pkg/control"
	"github.com/goliatone/go-schemaform/pkg/widgets"
)

// View is the template context of one descriptor, exposed to templates as
// "control". Children, Rows and Markup hold markup that is already rendered
// and must be printed with the safe filter.
type View struct {
	Key         string
	Kind        string
	Component   string
	ID          string
	Name        string
	Label       string
	HideLabel   bool
	Description string
	Placeholder string
	Required    bool
	Hidden      bool
	Disabled    bool

	// Leaf payload.
	Type    string
	Value   string
	Checked bool
	Attrs   []Attr
	Options []Choice

	Errors   []string
	Children []string

	// Tabs lists composition branches, categories or list-detail items.
	Tabs    []Tab
	Columns []string
	Rows    []Row
	Markup  string

	CanAppend   bool
	CanRemove   bool
	CanMoveUp   bool
	CanMoveDown bool
}

// Attr is one extra attribute of an input element.
type Attr struct {
	Name  string
	Value string
}

// Choice is one option of a select.
type Choice struct {
	Value    string
	Label    string
	Selected bool
}

// Tab is one selectable entry of a switch, tab strip or master list.
type Tab struct {
	Index  int
	Label  string
	Active bool
}

// Row is one table row: the rendered cells of an array item.
type Row struct {
	Key       string
	Cells     []string
	CanRemove bool
}

var constraintAttrs = map[string]string{
	control.ConstraintMin:        "min",
	control.ConstraintMax:        "max",
	control.ConstraintMinLength:  "minlength",
	control.ConstraintMaxLength:  "maxlength",
	control.ConstraintPattern:    "pattern",
	control.ConstraintMultipleOf: "step",
	control.ConstraintMinItems:   "data-min-items",
	control.ConstraintMaxItems:   "data-max-items",
}

func newView(d *control.Descriptor, value any, errs []string) View {
	v := View{
		Key:         d.Key,
		Kind:        string(d.Kind),
		Component:   componentFor(d),
		ID:          "sf-" + d.Key,
		Label:       d.Label,
		HideLabel:   d.HideLabel,
		Description: d.Description,
		Placeholder: d.Placeholder,
		Required:    d.Required,
		Hidden:      d.Hidden(),
		Disabled:    d.Disabled(),
		Errors:      errs,
		CanAppend:   d.CanAppend(),
		CanRemove:   d.CanRemove(),
		CanMoveUp:   d.CanMoveUp(),
		CanMoveDown: d.CanMoveDown(),
	}
	if d.IsBound() {
		v.Name = d.Path.String()
	}
	if d.IsArray() {
		v.Attrs = attrsOf(d)
	}
	if d.Base() == control.KindLeaf {
		v.Disabled = !d.Editable()
		v.Type = inputType(d.Input)
		v.Attrs = attrsOf(d)
		if d.Input == widgets.FlavorToggle {
			v.Checked = value == true
		} else if d.Input != widgets.FlavorFile {
			v.Value = formatValue(value)
		}
		for _, opt := range d.Options {
			choice := Choice{Value: formatValue(opt.Value), Label: opt.Label}
			choice.Selected = value != nil && choice.Value == v.Value
			v.Options = append(v.Options, choice)
		}
	}
	return v
}

func attrsOf(d *control.Descriptor) []Attr {
	var attrs []Attr
	for _, c := range d.Constraints {
		name, ok := constraintAttrs[c.Kind]
		if !ok {
			continue
		}
		value := c.Params["value"]
		if c.Kind == control.ConstraintPattern {
			value = c.Params["pattern"]
		}
		attrs = append(attrs, Attr{Name: name, Value: value})
	}
	if d.Schema != nil && d.Schema.Type == "integer" && d.Schema.MultipleOf == nil {
		attrs = append(attrs, Attr{Name: "step", Value: "1"})
	}
	return attrs
}

// formatValue renders a stored value the way an input element carries it.
func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(raw)
}
