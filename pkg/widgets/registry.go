// Package widgets maps leaf schemas to presentation-level input flavours
// ("text", "toggle", "select", "date", "file", ...). Rendering backends switch
// on the flavour; they never inspect schema keywords themselves.
package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-schemaform/pkg/schema"
)

// Built-in input flavours.
const (
	FlavorText     = "text"
	FlavorTextarea = "textarea"
	FlavorPassword = "password"
	FlavorEmail    = "email"
	FlavorURL      = "url"
	FlavorDate     = "date"
	FlavorDateTime = "datetime"
	FlavorTime     = "time"
	FlavorNumber   = "number"
	FlavorRange    = "range"
	FlavorToggle   = "toggle"
	FlavorSelect   = "select"
	FlavorFile     = "file"
)

// Matcher decides whether a flavour applies to a leaf schema.
type Matcher func(node *schema.Node) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects the input flavour of leaf schemas based on explicit widget
// hints or registered matchers. Higher priority wins; ties fall back to
// registration order. Leaves no matcher claims resolve to FlavorText.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher with the provided name and priority. Higher
// priority values take precedence.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the flavour for a leaf schema. An explicit widget hint
// (x-ui-widget, or options.widget from a UI Schema control) is honoured
// before matcher evaluation, except where the hint conflicts with an enum.
func (r *Registry) Resolve(node *schema.Node) string {
	if node == nil {
		return FlavorText
	}
	if explicit := strings.TrimSpace(node.Widget); explicit != "" && len(node.Enum) == 0 {
		return explicit
	}
	if r == nil {
		return FlavorText
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(node) {
			return entry.name
		}
	}
	return FlavorText
}

// IsBinary reports whether a leaf carries an encoded binary payload.
func IsBinary(node *schema.Node) bool {
	if node == nil {
		return false
	}
	return node.Widget == FlavorFile ||
		strings.EqualFold(node.ContentEncoding, "base64") ||
		node.ContentMediaType != ""
}

func (r *Registry) registerBuiltins() {
	r.Register(FlavorSelect, 100, func(node *schema.Node) bool {
		return len(node.Enum) > 0
	})

	r.Register(FlavorFile, 90, func(node *schema.Node) bool {
		return node.Type == "string" && IsBinary(node)
	})

	r.Register(FlavorToggle, 80, func(node *schema.Node) bool {
		return node.Type == "boolean"
	})

	r.Register(FlavorNumber, 70, func(node *schema.Node) bool {
		return node.Type == "number" || node.Type == "integer"
	})

	formats := map[string]string{
		"textarea":  FlavorTextarea,
		"password":  FlavorPassword,
		"email":     FlavorEmail,
		"uri":       FlavorURL,
		"url":       FlavorURL,
		"date":      FlavorDate,
		"date-time": FlavorDateTime,
		"time":      FlavorTime,
	}
	names := make([]string, 0, len(formats))
	for format := range formats {
		names = append(names, format)
	}
	sort.Strings(names)
	for _, format := range names {
		format, flavour := format, formats[format]
		r.Register(flavour, 60, func(node *schema.Node) bool {
			return node.Type == "string" && strings.EqualFold(strings.TrimSpace(node.Format), format)
		})
	}
}
