// Package tui fills a form through terminal prompts. It walks the control
// tree, asks for every visible and editable leaf, writes each answer through
// the form and asks again while the form reports errors for the field.
package tui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-schemaform/pkg/control"
	"github.com/goliatone/go-schemaform/pkg/fieldpath"
	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/schema"
	"github.com/goliatone/go-schemaform/pkg/widgets"
)

const noneOption = "(none)"

// Renderer drives terminal sessions for forms whose custom renderers
// produce text.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	maxAttempts       int
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prompts for the fields of f, submits it and serializes the
// submitted data. Values already in the form are offered as defaults. A form
// that still fails validation after the session yields
// *form.ValidationFailure.
func (r *Renderer) Render(ctx context.Context, f *form.Form[string]) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}
	if f == nil || f.Tree() == nil {
		return nil, fmt.Errorf("tui: %w", form.ErrNoSchema)
	}

	s := &session{ctx: ctx, r: r, form: f}
	if err := s.visit(f.Tree().Root.Key); err != nil {
		return nil, err
	}

	data, err := f.Submit()
	if err != nil {
		var failure *form.ValidationFailure
		if errors.As(err, &failure) {
			for _, e := range failure.Result.Errors {
				_ = r.reportError(ctx, e.Path.String(), e.Message)
			}
		}
		return nil, fmt.Errorf("tui: %w", err)
	}
	if r.submitTransformer != nil {
		data, err = r.submitTransformer(data)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(data)
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) reportError(ctx context.Context, field, msg string) error {
	if field == "" {
		return r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
	}
	return r.driver.Info(ctx, fmt.Sprintf("%sInvalid %s: %s", r.theme.ErrorPrefix, field, msg))
}

// session walks one form. Descriptors are looked up by key before every
// step since structural edits may rebuild the tree.
type session struct {
	ctx  context.Context
	r    *Renderer
	form *form.Form[string]
}

func (s *session) visit(key string) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	d := s.form.Control(key)
	if d == nil || !d.Visible() {
		return nil
	}
	if view, ok := s.form.RenderCustom(d); ok {
		return s.r.info(s.ctx, view)
	}

	switch d.Base() {
	case control.KindLeaf:
		return s.leaf(d)
	case control.KindArray, control.KindTable, control.KindListDetail:
		return s.array(key)
	case control.KindComposition:
		return s.composition(key)
	case control.KindCategories:
		return s.children(key, func(i int, child string) error {
			if err := s.form.SelectCategory(key, i); err != nil {
				return err
			}
			return s.visit(child)
		})
	case control.KindLabel:
		return s.r.info(s.ctx, d.Label)
	case control.KindPlaceholder:
		return nil
	}
	return s.children(key, func(_ int, child string) error {
		return s.visit(child)
	})
}

// children calls fn for each child of the descriptor with the given key,
// re-reading the parent after every call.
func (s *session) children(key string, fn func(i int, child string) error) error {
	for i := 0; ; i++ {
		parent := s.form.Control(key)
		if parent == nil || i >= len(parent.Children) {
			return nil
		}
		if err := fn(i, parent.Children[i].Key); err != nil {
			return err
		}
	}
}

func (s *session) leaf(d *control.Descriptor) error {
	if !d.Editable() {
		return nil
	}
	return s.until(d.Path, d.Label, func() (any, error) {
		return s.ask(d)
	})
}

// until asks for a value and writes it at p until the form reports no
// errors there.
func (s *session) until(p fieldpath.Path, label string, ask func() (any, error)) error {
	for attempt := 1; ; attempt++ {
		raw, err := ask()
		if err != nil {
			return err
		}
		if err := s.form.SetValue(p.String(), raw); err != nil {
			return fmt.Errorf("tui: %s: %w", p, err)
		}
		errs := s.form.Validate().ErrorsAt(p)
		if len(errs) == 0 {
			return nil
		}
		for _, e := range errs {
			if err := s.r.reportError(s.ctx, label, e.Message); err != nil {
				return err
			}
		}
		if s.r.maxAttempts > 0 && attempt >= s.r.maxAttempts {
			return fmt.Errorf("%w: %s", ErrTooManyAttempts, p)
		}
	}
}

func (s *session) ask(d *control.Descriptor) (any, error) {
	current := s.form.Context(d).Host.Value(d.Path)
	if d.Input == widgets.FlavorSelect {
		return s.choose(d, current)
	}
	prompt := leafPrompt(d, current)
	answer, err := s.r.driver.Ask(s.ctx, prompt)
	if err != nil {
		return nil, err
	}
	if prompt.Kind == PromptConfirm {
		return answer.Yes, nil
	}
	return answer.Text, nil
}

// pick asks a single-choice question and returns the chosen index, or -1.
func (s *session) pick(p Prompt) (int, error) {
	p.Kind = PromptChoice
	answer, err := s.r.driver.Ask(s.ctx, p)
	if err != nil {
		return -1, err
	}
	if len(answer.Picked) == 0 {
		return -1, nil
	}
	return answer.Picked[0], nil
}

func (s *session) choose(d *control.Descriptor, current any) (any, error) {
	var options []string
	offset := 0
	if !d.Required {
		options = append(options, noneOption)
		offset = 1
	}
	defaultIdx := 0
	for i, opt := range d.Options {
		options = append(options, opt.Label)
		if current != nil && display(opt.Value) == display(current) {
			defaultIdx = i + offset
		}
	}
	idx, err := s.pick(Prompt{
		Path:     d.Path.String(),
		Label:    d.Label,
		Help:     d.Description,
		Options:  options,
		Selected: []int{defaultIdx},
	})
	if err != nil {
		return nil, err
	}
	idx -= offset
	if idx < 0 || idx >= len(d.Options) {
		return "", nil
	}
	return d.Options[idx].Value, nil
}

func (s *session) array(key string) error {
	d := s.form.Control(key)
	if !d.Enabled() {
		return nil
	}
	if d.Schema == nil {
		return nil
	}
	if items := schema.MergeAllOf(d.Schema.Items); items != nil && len(items.Enum) > 0 {
		return s.multiSelect(d, items)
	}

	path := d.Path.String()
	visitItem := func(i int, child string) error {
		if d.Base() == control.KindListDetail {
			if err := s.form.SelectDetail(path, i); err != nil {
				return err
			}
		}
		return s.visit(child)
	}
	if err := s.children(key, visitItem); err != nil {
		return err
	}

	for {
		d = s.form.Control(key)
		if d == nil || !d.CanAppend() {
			return nil
		}
		lo := 0
		if d.Schema != nil && d.Schema.MinItems != nil {
			lo = *d.Schema.MinItems
		}
		if len(d.Children) >= lo {
			more, err := s.r.driver.Ask(s.ctx, Prompt{
				Kind:  PromptConfirm,
				Path:  path,
				Label: fmt.Sprintf("Add an item to %s?", d.Label),
			})
			if err != nil {
				return err
			}
			if !more.Yes {
				return nil
			}
		}
		idx, err := s.form.AppendItem(path, nil)
		if err != nil {
			return fmt.Errorf("tui: %s: %w", path, err)
		}
		d = s.form.Control(key)
		if err := visitItem(idx, d.Children[idx].Key); err != nil {
			return err
		}
	}
}

// multiSelect fills an array of closed-choice items in one prompt.
func (s *session) multiSelect(d *control.Descriptor, items *schema.Node) error {
	options := make([]string, len(items.Enum))
	for i := range items.Enum {
		options[i] = items.EnumLabel(i)
	}
	return s.until(d.Path, d.Label, func() (any, error) {
		current, _ := s.form.Context(d).Host.Value(d.Path).([]any)
		var defaults []int
		for i, value := range items.Enum {
			for _, picked := range current {
				if display(picked) == display(value) {
					defaults = append(defaults, i)
				}
			}
		}
		answer, err := s.r.driver.Ask(s.ctx, Prompt{
			Kind:     PromptChoices,
			Path:     d.Path.String(),
			Label:    d.Label,
			Help:     d.Description,
			Options:  options,
			Selected: defaults,
		})
		if err != nil {
			return nil, err
		}
		picked := make([]any, 0, len(answer.Picked))
		for _, i := range answer.Picked {
			if i >= 0 && i < len(items.Enum) {
				picked = append(picked, items.Enum[i])
			}
		}
		return picked, nil
	})
}

func (s *session) composition(key string) error {
	d := s.form.Control(key)
	if len(d.Branches) > 1 && d.Enabled() {
		options := make([]string, len(d.Branches))
		for i, branch := range d.Branches {
			options[i] = branch.Label
		}
		idx, err := s.pick(Prompt{
			Path:     d.Path.String(),
			Label:    d.Label,
			Help:     d.Description,
			Options:  options,
			Selected: []int{d.Selected},
		})
		if err != nil {
			return err
		}
		if idx >= 0 && idx < len(options) && idx != d.Selected {
			if err := s.form.SelectBranch(d.Path.String(), idx); err != nil {
				return fmt.Errorf("tui: %s: %w", d.Path, err)
			}
		}
	}
	d = s.form.Control(key)
	if d == nil {
		return nil
	}
	if active := d.Active(); active != nil {
		return s.visit(active.Key)
	}
	return nil
}

func (r *Renderer) serialize(data any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		values := url.Values{}
		flatten(fieldpath.Root, data, func(p fieldpath.Path, leaf any) {
			values.Add(p.String(), display(leaf))
		})
		return []byte(values.Encode()), nil
	case OutputFormatPrettyText:
		var b strings.Builder
		flatten(fieldpath.Root, data, func(p fieldpath.Path, leaf any) {
			fmt.Fprintf(&b, "%s=%s\n", p, display(leaf))
		})
		return []byte(b.String()), nil
	default:
		out, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("tui: encode json: %w", err)
		}
		return out, nil
	}
}

// flatten visits the scalar values of data in path order. Object keys are
// sorted.
func flatten(p fieldpath.Path, value any, fn func(fieldpath.Path, any)) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			flatten(p.Child(key), v[key], fn)
		}
	case []any:
		for i, item := range v {
			flatten(p.Item(i), item, fn)
		}
	default:
		if len(p) > 0 {
			fn(p, v)
		}
	}
}

func display(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return fmt.Sprint(value)
}
