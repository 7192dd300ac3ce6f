package html

import (
	"github.com/goliatone/go-schemaform/pkg/control"
	"github.com/goliatone/go-schemaform/pkg/widgets"
)

// Component names. Each names one template of the bundle; WithTemplate
// replaces a component by name.
const (
	ComponentForm        = "form"
	ComponentInput       = "input"
	ComponentTextarea    = "textarea"
	ComponentSelect      = "select"
	ComponentToggle      = "toggle"
	ComponentObject      = "object"
	ComponentArray       = "array"
	ComponentTable       = "table"
	ComponentListDetail  = "list-detail"
	ComponentComposition = "composition"
	ComponentLayout      = "layout"
	ComponentGroup       = "group"
	ComponentCategories  = "categories"
	ComponentCategory    = "category"
	ComponentLabel       = "label"
	ComponentPlaceholder = "placeholder"
	ComponentCustom      = "custom"
)

// Components lists every component name.
func Components() []string {
	return []string{
		ComponentForm, ComponentInput, ComponentTextarea, ComponentSelect,
		ComponentToggle, ComponentObject, ComponentArray, ComponentTable,
		ComponentListDetail, ComponentComposition, ComponentLayout,
		ComponentGroup, ComponentCategories, ComponentCategory,
		ComponentLabel, ComponentPlaceholder, ComponentCustom,
	}
}

func templatePath(component string) string {
	if component == ComponentForm {
		return "templates/form.tmpl"
	}
	return "templates/components/" + component + ".tmpl"
}

var kindComponents = map[control.Kind]string{
	control.KindObject:      ComponentObject,
	control.KindArray:       ComponentArray,
	control.KindTable:       ComponentTable,
	control.KindListDetail:  ComponentListDetail,
	control.KindComposition: ComponentComposition,
	control.KindLayout:      ComponentLayout,
	control.KindGroup:       ComponentGroup,
	control.KindCategories:  ComponentCategories,
	control.KindCategory:    ComponentCategory,
	control.KindLabel:       ComponentLabel,
	control.KindPlaceholder: ComponentPlaceholder,
}

// componentFor picks the component painting the built-in kind of d. Leaves
// switch on their input flavour.
func componentFor(d *control.Descriptor) string {
	if d.Base() != control.KindLeaf {
		if name, ok := kindComponents[d.Base()]; ok {
			return name
		}
		return ComponentPlaceholder
	}
	switch d.Input {
	case widgets.FlavorTextarea:
		return ComponentTextarea
	case widgets.FlavorSelect:
		return ComponentSelect
	case widgets.FlavorToggle:
		return ComponentToggle
	}
	return ComponentInput
}

// inputTypes maps input flavours to the type attribute of <input>.
var inputTypes = map[string]string{
	widgets.FlavorText:     "text",
	widgets.FlavorPassword: "password",
	widgets.FlavorEmail:    "email",
	widgets.FlavorURL:      "url",
	widgets.FlavorDate:     "date",
	widgets.FlavorDateTime: "datetime-local",
	widgets.FlavorTime:     "time",
	widgets.FlavorNumber:   "number",
	widgets.FlavorRange:    "range",
	widgets.FlavorFile:     "file",
}

func inputType(flavour string) string {
	if t, ok := inputTypes[flavour]; ok {
		return t
	}
	return "text"
}
