package html

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// engine caches pongo2 templates loaded from a stack of file systems.
// Inline templates registered with define shadow file templates of the same
// name.
type engine struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

func newEngine(files ...fs.FS) *engine {
	loaders := make([]pongo2.TemplateLoader, 0, len(files))
	for _, f := range files {
		if f == nil {
			continue
		}
		loaders = append(loaders, pongo2.NewFSLoader(f))
	}
	return &engine{
		set:       pongo2.NewSet("schemaform", loaders...),
		templates: make(map[string]*pongo2.Template),
	}
}

// define compiles source and registers it under name.
func (e *engine) define(name, source string) error {
	tmpl, err := e.set.FromString(source)
	if err != nil {
		return fmt.Errorf("html: parse template %q: %w", name, err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[name] = tmpl
	return nil
}

func (e *engine) execute(name string, data pongo2.Context) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("html: engine is nil")
	}
	tmpl, err := e.template(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(data, &buf); err != nil {
		return "", fmt.Errorf("html: execute template %q: %w", name, err)
	}
	return buf.String(), nil
}

func (e *engine) template(name string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[name]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("html: load template %q: %w", name, err)
	}
	e.templates[name] = tmpl
	return tmpl, nil
}
