// Package html paints a form's control tree as an HTML preview with pongo2
// templates. It reads the tree and never mutates the form.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-schemaform/pkg/control"
	"github.com/goliatone/go-schemaform/pkg/form"
)

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS fs.FS
	inline     map[string]string
	sanitizer  *bluemonday.Policy
	submit     string
}

// WithTemplatesFS supplies a template bundle that is searched before the
// embedded one. Files use the embedded bundle's names.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads overriding templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplate replaces one component with an inline pongo2 template. The
// template receives the component's View as "control".
func WithTemplate(component, source string) Option {
	return func(cfg *config) {
		component = strings.TrimSpace(component)
		if component == "" {
			return
		}
		if cfg.inline == nil {
			cfg.inline = make(map[string]string)
		}
		cfg.inline[component] = source
	}
}

// WithSanitizer sets the policy applied to markup produced by custom
// renderers. The default is bluemonday's UGC policy.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.sanitizer = policy
		}
	}
}

// WithSubmitLabel sets the caption of the submit button.
func WithSubmitLabel(label string) Option {
	return func(cfg *config) {
		cfg.submit = label
	}
}

// Renderer paints forms whose custom renderers produce markup strings.
type Renderer struct {
	engine    *engine
	sanitizer *bluemonday.Policy
	submit    string
}

// New constructs the renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{submit: "Submit"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.sanitizer == nil {
		cfg.sanitizer = bluemonday.UGCPolicy()
	}

	r := &Renderer{
		engine:    newEngine(cfg.templateFS, TemplatesFS()),
		sanitizer: cfg.sanitizer,
		submit:    cfg.submit,
	}
	for component, source := range cfg.inline {
		if err := r.engine.define(templatePath(component), source); err != nil {
			return nil, fmt.Errorf("html renderer: %w", err)
		}
	}
	return r, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render paints the current control tree of f together with the messages of
// its last validation.
func (r *Renderer) Render(ctx context.Context, f *form.Form[string]) ([]byte, error) {
	if f == nil || f.Tree() == nil {
		return nil, fmt.Errorf("html renderer: %w", form.ErrNoSchema)
	}
	result := f.Errors()
	p := &painter{
		ctx:      ctx,
		r:        r,
		form:     f,
		messages: result.Messages(),
	}
	body, err := p.paint(f.Tree().Root, false)
	if err != nil {
		return nil, fmt.Errorf("html renderer: %w", err)
	}

	out, err := r.engine.execute(templatePath(ComponentForm), pongo2.Context{
		"body":   body,
		"locale": f.Locale(),
		"valid":  result.Valid,
		"errors": p.messages[""],
		"submit": r.submit,
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: %w", err)
	}
	return []byte(out), nil
}

type painter struct {
	ctx      context.Context
	r        *Renderer
	form     *form.Form[string]
	messages map[string][]string
}

func (p *painter) paint(d *control.Descriptor, compact bool) (string, error) {
	if err := p.ctx.Err(); err != nil {
		return "", err
	}
	var value any
	var errs []string
	if d.IsBound() {
		value = p.form.Context(d).Host.Value(d.Path)
		if len(d.Path) > 0 {
			errs = p.messages[d.Path.String()]
		}
	}
	v := newView(d, value, errs)
	if compact {
		v.HideLabel = true
	}

	if markup, ok := p.form.RenderCustom(d); ok {
		v.Component = ComponentCustom
		v.Markup = p.r.sanitizer.Sanitize(markup)
		return p.execute(v)
	}

	var err error
	switch d.Base() {
	case control.KindComposition:
		for i, branch := range d.Branches {
			v.Tabs = append(v.Tabs, Tab{Index: i, Label: branch.Label, Active: i == d.Selected})
		}
		err = p.paintActive(d, &v)
	case control.KindCategories, control.KindListDetail:
		for i, child := range d.Children {
			v.Tabs = append(v.Tabs, Tab{Index: i, Label: child.Label, Active: i == d.Selected})
		}
		err = p.paintActive(d, &v)
	case control.KindTable:
		for _, col := range d.Columns {
			v.Columns = append(v.Columns, col.Label)
		}
		for _, item := range d.Children {
			row, rowErr := p.row(item)
			if rowErr != nil {
				return "", rowErr
			}
			v.Rows = append(v.Rows, row)
		}
	default:
		for _, child := range d.Children {
			out, childErr := p.paint(child, false)
			if childErr != nil {
				return "", childErr
			}
			v.Children = append(v.Children, out)
		}
	}
	if err != nil {
		return "", err
	}
	return p.execute(v)
}

func (p *painter) paintActive(d *control.Descriptor, v *View) error {
	active := d.Active()
	if active == nil {
		return nil
	}
	out, err := p.paint(active, false)
	if err != nil {
		return err
	}
	v.Children = []string{out}
	return nil
}

// row paints the cells of a table item: one per property of an object item,
// or the item itself for primitive items.
func (p *painter) row(item *control.Descriptor) (Row, error) {
	row := Row{Key: item.Key, CanRemove: item.CanRemove()}
	cells := item.Children
	if item.Base() == control.KindLeaf {
		cells = []*control.Descriptor{item}
	}
	for _, cell := range cells {
		out, err := p.paint(cell, true)
		if err != nil {
			return Row{}, err
		}
		row.Cells = append(row.Cells, out)
	}
	return row, nil
}

func (p *painter) execute(v View) (string, error) {
	return p.r.engine.execute(templatePath(v.Component), pongo2.Context{"control": v})
}
