package rules

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-schemaform/pkg/datastore"
	"github.com/goliatone/go-schemaform/pkg/fieldpath"
)

// Effect names what a passing condition does to its target.
type Effect string

const (
	EffectHide    Effect = "HIDE"
	EffectShow    Effect = "SHOW"
	EffectDisable Effect = "DISABLE"
	EffectEnable  Effect = "ENABLE"
)

// Getter reads values by path; *datastore.Store satisfies it.
type Getter interface {
	Get(fieldpath.Path) (any, bool)
}

// Condition selects one value from the data and tests it.
type Condition struct {
	Scope      fieldpath.Path
	Equals     any
	HasEquals  bool
	Const      any
	HasConst   bool
	Expression *Expression
}

// Evaluate reports whether the condition holds for data. Missing values are
// nil, so they only equal an explicit null and are never truthy.
func (c Condition) Evaluate(data Getter) bool {
	if c.Expression != nil {
		return c.Expression.Eval(data)
	}
	value, _ := data.Get(c.Scope)
	switch {
	case c.HasEquals:
		return datastore.Equal(value, c.Equals)
	case c.HasConst:
		return datastore.Equal(value, c.Const)
	}
	return datastore.Truthy(value)
}

// Rule is one conditional effect. Inline rules from a UI Schema apply to the
// element that declares them; programmatic rules name a Target and fall back
// to the condition scope when it is empty.
type Rule struct {
	Effect    Effect
	Condition Condition
	Target    fieldpath.Path
}

// TargetPath returns the path the rule applies to when registered
// programmatically.
func (r Rule) TargetPath() fieldpath.Path {
	if r.Target != nil {
		return r.Target
	}
	return r.Condition.Scope
}

// Flags accumulates rule outcomes for one target.
type Flags struct {
	Hidden   bool
	Disabled bool
}

// Apply evaluates the rule against data and folds the outcome into flags.
// Outcomes only ever set flags, so several rules on one target combine with
// OR.
func (r Rule) Apply(data Getter, flags *Flags) {
	pass := r.Condition.Evaluate(data)
	switch r.Effect {
	case EffectShow:
		flags.Hidden = flags.Hidden || !pass
	case EffectDisable:
		flags.Disabled = flags.Disabled || pass
	case EffectEnable:
		flags.Disabled = flags.Disabled || !pass
	default:
		flags.Hidden = flags.Hidden || pass
	}
}

// Parse decodes a rule from its JSON text.
func Parse(raw []byte) (Rule, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return Rule{}, fmt.Errorf("rules: decode: %w", err)
	}
	return FromMap(datastore.Normalize(payload).(map[string]any))
}

// MustParse panics when raw is not a valid rule. Useful for tests.
func MustParse(raw string) Rule {
	rule, err := Parse([]byte(raw))
	if err != nil {
		panic(err)
	}
	return rule
}

// FromMap builds a rule from its decoded form:
//
//	{"effect": "HIDE", "condition": {"scope": "#/properties/x", "equals": true}, "target": "y"}
//
// The effect defaults to HIDE. Scopes and targets accept JSON-Pointer scopes
// or dotted paths.
func FromMap(payload map[string]any) (Rule, error) {
	if payload == nil {
		return Rule{}, errors.New("rules: rule is nil")
	}
	rule := Rule{Effect: EffectHide}
	if raw, ok := payload["effect"]; ok {
		name, _ := raw.(string)
		effect := Effect(strings.ToUpper(strings.TrimSpace(name)))
		switch effect {
		case EffectHide, EffectShow, EffectDisable, EffectEnable:
			rule.Effect = effect
		case "":
		default:
			return Rule{}, fmt.Errorf("rules: unsupported effect %q", name)
		}
	}

	condRaw, ok := payload["condition"]
	if !ok {
		return Rule{}, errors.New("rules: condition is required")
	}
	condMap, ok := condRaw.(map[string]any)
	if !ok {
		return Rule{}, errors.New("rules: condition must be an object")
	}
	cond, err := conditionFromMap(condMap)
	if err != nil {
		return Rule{}, err
	}
	rule.Condition = cond

	if raw, ok := payload["target"]; ok {
		target, _ := raw.(string)
		if strings.TrimSpace(target) != "" {
			p, err := fieldpath.Parse(target)
			if err != nil {
				return Rule{}, fmt.Errorf("rules: target: %w", err)
			}
			rule.Target = p
		}
	}
	return rule, nil
}

func conditionFromMap(payload map[string]any) (Condition, error) {
	var cond Condition
	if raw, ok := payload["expression"]; ok {
		text, _ := raw.(string)
		expression, err := Compile(text)
		if err != nil {
			return Condition{}, err
		}
		cond.Expression = expression
		return cond, nil
	}

	scope, _ := payload["scope"].(string)
	p, err := fieldpath.Parse(strings.TrimSpace(scope))
	if err != nil {
		return Condition{}, fmt.Errorf("rules: scope: %w", err)
	}
	cond.Scope = p

	if v, ok := payload["equals"]; ok {
		cond.Equals, cond.HasEquals = v, true
	}
	if schemaRaw, ok := payload["schema"].(map[string]any); ok {
		if v, ok := schemaRaw["const"]; ok {
			cond.Const, cond.HasConst = v, true
		}
	}
	return cond, nil
}
