package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-schemaform/pkg/form"
	"github.com/goliatone/go-schemaform/pkg/renderers/tui"
)

func newFillCmd(c *command) *cobra.Command {
	var (
		in          input
		format      string
		maxAttempts int
	)
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "fill a form in the terminal and print the submitted data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := in.form(cmd.Context(), c)
			if err != nil {
				return err
			}
			renderer := tui.New(
				tui.WithPromptDriver(c.env.driver),
				tui.WithOutputFormat(tui.OutputFormat(format)),
				tui.WithMaxAttempts(maxAttempts),
				tui.WithTheme(tui.Theme{ErrorPrefix: "! "}),
			)
			out, err := renderer.Render(cmd.Context(), f)
			var failure *form.ValidationFailure
			switch {
			case errors.As(err, &failure):
				// The renderer already reported every error.
				return errReported
			case err != nil:
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", string(tui.OutputFormatJSON), "output format: json, form or pretty")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 3, "give up on a field after this many invalid answers, 0 for no limit")
	return cmd
}
