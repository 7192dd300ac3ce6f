package uischema

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-schemaform/pkg/datastore"
	"github.com/goliatone/go-schemaform/pkg/fieldpath"
	"github.com/goliatone/go-schemaform/pkg/rules"
	"github.com/goliatone/go-schemaform/pkg/schema"
)

// Parse decodes a UI Schema from JSON or YAML text. Text that is not valid
// JSON/YAML, a non-object root, a malformed scope or an invalid rule fails
// with *schema.ParseError.
func Parse(raw []byte) (*Element, error) {
	return ParseNamed("", raw)
}

// ParseNamed is Parse with a source label carried into the error.
func ParseNamed(source string, raw []byte) (*Element, error) {
	payload, err := decode(raw)
	if err != nil {
		return nil, &schema.ParseError{Source: source, Err: err}
	}
	root, ok := payload.(map[string]any)
	if !ok {
		return nil, &schema.ParseError{Source: source, Err: errors.New("ui schema root must be an object")}
	}
	element, err := FromMap(root)
	if err != nil {
		return nil, &schema.ParseError{Source: source, Err: err}
	}
	return element, nil
}

// MustParse panics when raw is not a valid UI Schema. Useful for tests.
func MustParse(raw string) *Element {
	element, err := Parse([]byte(raw))
	if err != nil {
		panic(err)
	}
	return element
}

func decode(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("document is empty")
	}

	var payload any
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&payload); err == nil {
		return datastore.Normalize(payload), nil
	}

	payload = nil
	if err := yaml.Unmarshal(trimmed, &payload); err == nil {
		return datastore.Normalize(payload), nil
	}
	return nil, errors.New("invalid JSON or YAML")
}

// FromMap builds an Element tree from a decoded document.
func FromMap(payload map[string]any) (*Element, error) {
	return elementFromMap(payload, "#")
}

func elementFromMap(payload map[string]any, pointer string) (*Element, error) {
	el := &Element{
		Type:     strings.TrimSpace(readString(payload, "type")),
		Scope:    strings.TrimSpace(readString(payload, "scope")),
		Text:     readString(payload, "text"),
		Renderer: strings.TrimSpace(readString(payload, "renderer")),
		Pointer:  pointer,
	}

	switch label := payload["label"].(type) {
	case string:
		el.Label = label
	case bool:
		el.HideLabel = !label
	case map[string]any:
		el.Label, _ = label["text"].(string)
		if show, ok := label["show"].(bool); ok {
			el.HideLabel = !show
		}
	}

	if el.Scope != "" {
		p, err := fieldpath.Parse(el.Scope)
		if err != nil {
			return nil, fmt.Errorf("uischema: scope at %s: %w", pointer, err)
		}
		el.Path = p
	}

	if raw, ok := payload["options"]; ok {
		options, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("uischema: options must be an object at %s", pointer)
		}
		el.Options = options
	}

	if raw, ok := payload["rule"]; ok {
		ruleMap, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("uischema: rule must be an object at %s", pointer)
		}
		rule, err := rules.FromMap(ruleMap)
		if err != nil {
			return nil, fmt.Errorf("uischema: rule at %s: %w", pointer, err)
		}
		el.Rule = &rule
	}

	if raw, ok := payload["elements"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("uischema: elements must be an array at %s", pointer)
		}
		el.Elements = make([]*Element, 0, len(list))
		for idx, item := range list {
			childPointer := pointer + "/elements/" + strconv.Itoa(idx)
			childMap, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("uischema: element must be an object at %s", childPointer)
			}
			child, err := elementFromMap(childMap, childPointer)
			if err != nil {
				return nil, err
			}
			el.Elements = append(el.Elements, child)
		}
	}

	// JSONForms nests the detail layout under options; a top-level "detail"
	// is accepted too.
	detailRaw, detailPointer := payload["detail"], pointer+"/detail"
	if detailRaw == nil && el.Options != nil {
		detailRaw, detailPointer = el.Options["detail"], pointer+"/options/detail"
	}
	if detailMap, ok := detailRaw.(map[string]any); ok {
		detail, err := elementFromMap(detailMap, detailPointer)
		if err != nil {
			return nil, err
		}
		el.Detail = detail
	}

	return el, nil
}

func readString(payload map[string]any, key string) string {
	v, _ := payload[key].(string)
	return v
}

// Store keeps named UI Schemas loaded from a directory. It is safe for
// concurrent readers when treated as immutable after construction.
type Store struct {
	layouts map[string]*Element
}

// LoadFS walks fsys and parses every JSON/YAML file as a UI Schema, keyed by
// its path without extension ("forms/person.yaml" becomes "forms/person").
// When fsys is nil the returned store is empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{layouts: make(map[string]*Element)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("uischema: read %s: %w", path, err)
		}
		element, err := ParseNamed(path, data)
		if err != nil {
			return err
		}

		name := strings.TrimSuffix(path, filepath.Ext(path))
		if _, exists := store.layouts[name]; exists {
			return fmt.Errorf("uischema: duplicate layout %q (file %s)", name, path)
		}
		store.layouts[name] = element
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Layout returns the UI Schema registered under name.
func (s *Store) Layout(name string) (*Element, bool) {
	if s == nil {
		return nil, false
	}
	el, ok := s.layouts[name]
	return el, ok
}

// Empty reports whether the store holds any layouts.
func (s *Store) Empty() bool {
	return s == nil || len(s.layouts) == 0
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
