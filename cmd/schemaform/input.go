package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-schemaform"
	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/openapi"
	"github.com/goliatone/go-schemaform/pkg/schema"
	"github.com/goliatone/go-schemaform/pkg/uischema"
)

// input names the documents a form is built from.
type input struct {
	schema    string
	ui        string
	openapi   string
	component string
	operation string
	layout    string
	data      string
}

func (in *input) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&in.schema, "schema", "s", "", "JSON Schema document (JSON or YAML)")
	flags.StringVarP(&in.ui, "ui", "u", "", "JSON Forms UI Schema document, or a directory of them")
	flags.StringVar(&in.layout, "layout", "", "layout to pick from a --ui directory (default: derived from the schema name)")
	flags.StringVar(&in.openapi, "openapi", "", "OpenAPI 3 document to take the schema from")
	flags.StringVar(&in.component, "component", "", "schema component of the OpenAPI document")
	flags.StringVar(&in.operation, "operation", "", "operationId or method:path whose request body is the schema")
	flags.StringVarP(&in.data, "data", "d", "", "initial data document, - for stdin")
}

// form builds the form described by the flags.
func (in *input) form(ctx context.Context, c *command) (*form.Form[string], error) {
	root, err := in.dataSchema(ctx)
	if err != nil {
		return nil, err
	}
	ui, err := in.uiSchema()
	if err != nil {
		return nil, err
	}

	f := schemaform.New(form.WithLocale(c.locale), form.WithLogger(c.logger))
	if err := f.Load(root, ui); err != nil {
		return nil, err
	}

	if in.data == "" {
		return f, nil
	}
	data, err := in.readData(c.env.stdin)
	if err != nil {
		return nil, err
	}
	if err := f.SetData(data); err != nil {
		return nil, fmt.Errorf("set data: %w", err)
	}
	return f, nil
}

// uiSchema reads --ui. A directory is loaded as a layout store and the
// layout is picked by --layout, the OpenAPI component or operation, or the
// schema file name without its extensions.
func (in *input) uiSchema() (*uischema.Element, error) {
	if in.ui == "" {
		return nil, nil
	}
	info, err := os.Stat(in.ui)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		raw, err := os.ReadFile(in.ui)
		if err != nil {
			return nil, err
		}
		return uischema.ParseNamed(in.ui, raw)
	}

	store, err := uischema.LoadFS(os.DirFS(in.ui))
	if err != nil {
		return nil, err
	}
	name := in.layoutName()
	el, ok := store.Layout(name)
	if !ok {
		return nil, fmt.Errorf("no layout %q in %s", name, in.ui)
	}
	return el, nil
}

func (in *input) layoutName() string {
	switch {
	case in.layout != "":
		return in.layout
	case in.component != "":
		return in.component
	case in.operation != "":
		return in.operation
	}
	name := filepath.Base(in.schema)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.TrimSuffix(name, ".schema")
}

func (in *input) dataSchema(ctx context.Context) (*schema.Node, error) {
	if in.openapi != "" {
		raw, err := os.ReadFile(in.openapi)
		if err != nil {
			return nil, err
		}
		switch {
		case in.component != "":
			return openapi.SchemaFromComponents(ctx, raw, in.component)
		case in.operation != "":
			return openapi.SchemaForOperation(ctx, raw, in.operation)
		}
		names, err := openapi.Components(ctx, raw)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("--openapi needs --component or --operation (components: %s)", strings.Join(names, ", "))
	}
	if in.schema == "" {
		return nil, errors.New("--schema or --openapi is required")
	}
	return schema.Load(schema.SourceFromFile(in.schema))
}

func (in *input) readData(stdin io.Reader) (any, error) {
	var (
		raw []byte
		err error
	)
	if in.data == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(in.data)
	}
	if err != nil {
		return nil, err
	}

	var data any
	switch strings.ToLower(filepath.Ext(in.data)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &data)
	default:
		err = json.Unmarshal(raw, &data)
	}
	if err != nil {
		return nil, fmt.Errorf("decode data %s: %w", in.data, err)
	}
	return data, nil
}
