package form

import (
	"io"
	"log/slog"

	"github.com/goliatone/go-schemaform/internal/labels"
	"github.com/goliatone/go-schemaform/pkg/validation"
	"github.com/goliatone/go-schemaform/pkg/widgets"
)

// Option customises a Form.
type Option func(*config)

type config struct {
	liveValidate bool
	locale       string
	logger       *slog.Logger
	compiler     validation.Compiler
	async        bool
	labeler      labels.Labeler
	widgets      *widgets.Registry
	translator   validation.Translator
}

func defaultConfig() config {
	return config{
		locale:   validation.DefaultLocale,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		compiler: validation.JSONSchemaCompiler{},
		labeler:  labels.Humanize,
	}
}

// WithLiveValidate validates after every data change.
func WithLiveValidate(enabled bool) Option {
	return func(c *config) {
		c.liveValidate = enabled
	}
}

// WithLocale selects the initial message locale.
func WithLocale(code string) Option {
	return func(c *config) {
		if code != "" {
			c.locale = code
		}
	}
}

// WithLogger routes form diagnostics to logger. Forms log nothing by
// default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithValidator replaces the JSON Schema compiler.
func WithValidator(compiler validation.Compiler) Option {
	return func(c *config) {
		if compiler != nil {
			c.compiler = compiler
		}
	}
}

// WithAsyncCompile compiles validators in the background. Load returns
// before the validator is ready; Validate and Await wait for it.
func WithAsyncCompile(enabled bool) Option {
	return func(c *config) {
		c.async = enabled
	}
}

// WithLabeler overrides how property names become labels.
func WithLabeler(fn func(name string) string) Option {
	return func(c *config) {
		if fn != nil {
			c.labeler = fn
		}
	}
}

// WithWidgets supplies the registry that picks leaf input flavours.
func WithWidgets(registry *widgets.Registry) Option {
	return func(c *config) {
		c.widgets = registry
	}
}

// WithTranslator consults t for validation messages before the built-in
// dictionaries.
func WithTranslator(t validation.Translator) Option {
	return func(c *config) {
		c.translator = t
	}
}
