package control

import (
	"strconv"

	"github.com/goliatone/go-schemaform/pkg/schema"
)

const (
	ConstraintMin        = "min"
	ConstraintMax        = "max"
	ConstraintMinLength  = "minLength"
	ConstraintMaxLength  = "maxLength"
	ConstraintPattern    = "pattern"
	ConstraintMultipleOf = "multipleOf"
	ConstraintMinItems   = "minItems"
	ConstraintMaxItems   = "maxItems"
)

// Constraint is one value constraint carried to the rendering backend
// unchanged. Numeric bounds and lengths encode their threshold in
// Params["value"]; pattern constraints keep the expression in
// Params["pattern"]. Exclusive bounds set Params["exclusive"] to "true".
type Constraint struct {
	Kind   string
	Params map[string]string
}

// Lookup returns the constraint of the given kind.
func Lookup(constraints []Constraint, kind string) (Constraint, bool) {
	for _, c := range constraints {
		if c.Kind == kind {
			return c, true
		}
	}
	return Constraint{}, false
}

func constraintsOf(node *schema.Node) []Constraint {
	if node == nil {
		return nil
	}
	var out []Constraint

	switch {
	case node.ExclusiveMinimum != nil:
		out = append(out, Constraint{Kind: ConstraintMin, Params: map[string]string{
			"value":     formatFloat(*node.ExclusiveMinimum),
			"exclusive": "true",
		}})
	case node.Minimum != nil:
		out = append(out, Constraint{Kind: ConstraintMin, Params: map[string]string{
			"value": formatFloat(*node.Minimum),
		}})
	}

	switch {
	case node.ExclusiveMaximum != nil:
		out = append(out, Constraint{Kind: ConstraintMax, Params: map[string]string{
			"value":     formatFloat(*node.ExclusiveMaximum),
			"exclusive": "true",
		}})
	case node.Maximum != nil:
		out = append(out, Constraint{Kind: ConstraintMax, Params: map[string]string{
			"value": formatFloat(*node.Maximum),
		}})
	}

	if node.MultipleOf != nil {
		out = append(out, Constraint{Kind: ConstraintMultipleOf, Params: map[string]string{
			"value": formatFloat(*node.MultipleOf),
		}})
	}
	if node.MinLength != nil {
		out = append(out, Constraint{Kind: ConstraintMinLength, Params: map[string]string{
			"value": strconv.Itoa(*node.MinLength),
		}})
	}
	if node.MaxLength != nil {
		out = append(out, Constraint{Kind: ConstraintMaxLength, Params: map[string]string{
			"value": strconv.Itoa(*node.MaxLength),
		}})
	}
	if node.Pattern != "" {
		out = append(out, Constraint{Kind: ConstraintPattern, Params: map[string]string{
			"pattern": node.Pattern,
		}})
	}
	if node.MinItems != nil {
		out = append(out, Constraint{Kind: ConstraintMinItems, Params: map[string]string{
			"value": strconv.Itoa(*node.MinItems),
		}})
	}
	if node.MaxItems != nil {
		out = append(out, Constraint{Kind: ConstraintMaxItems, Params: map[string]string{
			"value": strconv.Itoa(*node.MaxItems),
		}})
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
