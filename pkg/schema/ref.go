package schema

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type refState struct {
	stack   []string
	inStack map[string]struct{}
}

func (s *refState) push(ref string) {
	s.stack = append(s.stack, ref)
	s.inStack[ref] = struct{}{}
}

func (s *refState) pop() {
	if len(s.stack) == 0 {
		return
	}
	last := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	delete(s.inStack, last)
}

func (s *refState) contains(ref string) bool {
	_, ok := s.inStack[ref]
	return ok
}

// ref expands a local reference. Recursive references stop at the first
// repeat and yield a permissive node carrying the reference, so recursive
// schemas still load.
func (b *builder) ref(payload *object, ref, path string) (*Node, error) {
	if !strings.HasPrefix(ref, "#") {
		return &Node{Ref: ref, raw: toPlain(payload).(map[string]any)}, nil
	}
	if b.state.contains(ref) {
		return &Node{Ref: ref, raw: toPlain(payload).(map[string]any)}, nil
	}
	if len(b.state.stack) >= defaultMaxRefDepth {
		return nil, fmt.Errorf("schema: ref depth exceeds %d at %s", defaultMaxRefDepth, path)
	}
	target, err := resolveJSONPointer(b.root, strings.TrimPrefix(ref, "#"))
	if err != nil {
		return nil, fmt.Errorf("schema: %v at %s", err, path)
	}
	merged := mergeRefTarget(target, payload)

	b.state.push(ref)
	node, err := b.node(merged, path)
	b.state.pop()
	if err != nil {
		return nil, err
	}
	node.Ref = ref
	return node, nil
}

func resolveJSONPointer(root any, pointer string) (any, error) {
	if pointer == "" {
		return root, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, fmt.Errorf("invalid json pointer %q", pointer)
	}

	current := root
	for _, part := range strings.Split(pointer, "/")[1:] {
		decoded, err := url.PathUnescape(part)
		if err != nil {
			return nil, err
		}
		decoded = strings.ReplaceAll(decoded, "~1", "/")
		decoded = strings.ReplaceAll(decoded, "~0", "~")

		switch typed := current.(type) {
		case *object:
			value, ok := typed.get(decoded)
			if !ok {
				return nil, fmt.Errorf("pointer %q not found", pointer)
			}
			current = value
		case []any:
			idx, err := strconv.Atoi(decoded)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil, fmt.Errorf("pointer %q out of range", pointer)
			}
			current = typed[idx]
		default:
			return nil, fmt.Errorf("pointer %q invalid", pointer)
		}
	}
	return current, nil
}

// mergeRefTarget overlays the sibling keywords of a $ref object onto a copy of
// the target.
func mergeRefTarget(target any, refObj *object) any {
	targetObj, ok := target.(*object)
	if !ok {
		return target
	}
	merged := newObject(len(targetObj.keys) + len(refObj.keys))
	for _, key := range targetObj.keys {
		merged.set(key, targetObj.values[key])
	}
	for _, key := range refObj.keys {
		if key == "$ref" {
			continue
		}
		merged.set(key, refObj.values[key])
	}
	return merged
}
