package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-schemaform"
	"github.com/goliatone/go-schemaform/pkg/control"
	"github.com/goliatone/go-schemaform/pkg/schema"
	"github.com/goliatone/go-schemaform/pkg/uischema"
	"github.com/goliatone/go-schemaform/pkg/validation"
)

type violation struct {
	file     string
	location string
	message  string
}

func newCheckCmd(*command) *cobra.Command {
	var ui string
	cmd := &cobra.Command{
		Use:   "check [schema files...]",
		Short: "report problems in schema and UI Schema documents",
		Long: `check compiles every schema document and reports what keeps it from
validating data. With --ui the UI Schema is built against each schema and
elements that degrade to placeholders are reported too.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var violations []violation
			for _, path := range args {
				found, err := checkFile(cmd.Context(), path, ui)
				if err != nil {
					return fmt.Errorf("check %s: %w", path, err)
				}
				violations = append(violations, found...)
			}
			if len(violations) == 0 {
				return nil
			}

			sort.Slice(violations, func(i, j int) bool {
				if violations[i].file == violations[j].file {
					if violations[i].location == violations[j].location {
						return violations[i].message < violations[j].message
					}
					return violations[i].location < violations[j].location
				}
				return violations[i].file < violations[j].file
			})
			for _, v := range violations {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s -> %s\n", v.file, v.location, v.message)
			}
			return errReported
		},
	}
	cmd.Flags().StringVarP(&ui, "ui", "u", "", "UI Schema document to build against each schema")
	return cmd
}

func checkFile(ctx context.Context, path, uiPath string) ([]violation, error) {
	root, err := schema.Load(schema.SourceFromFile(path))
	var perr *schema.ParseError
	switch {
	case errors.As(err, &perr):
		return []violation{{file: path, location: "#", message: err.Error()}}, nil
	case err != nil:
		return nil, err
	}

	check := validation.CheckSchema(ctx, nil, root)
	if !check.Valid {
		violations := make([]violation, 0, len(check.Issues))
		for _, issue := range check.Issues {
			location := issue.Pointer
			if location == "" {
				location = "#"
			}
			violations = append(violations, violation{file: path, location: location, message: issue.Message})
		}
		return violations, nil
	}
	if uiPath == "" {
		return nil, nil
	}

	uiRaw, err := os.ReadFile(uiPath)
	if err != nil {
		return nil, err
	}
	ui, err := uischema.ParseNamed(uiPath, uiRaw)
	if err != nil {
		return []violation{{file: uiPath, location: "#", message: err.Error()}}, nil
	}
	// Warnings become violations, so the form logs nothing here.
	f := schemaform.New()
	if err := f.Load(root, ui); err != nil {
		return nil, err
	}

	var violations []violation
	for _, warning := range f.Tree().Warnings {
		location := "#"
		var unsupported *control.UnsupportedElementError
		if errors.As(warning, &unsupported) {
			location = unsupported.Pointer
		}
		violations = append(violations, violation{file: uiPath, location: location, message: warning.Error()})
	}
	return violations, nil
}
