package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-schemaform/pkg/renderers/html"
)

func newRenderCmd(c *command) *cobra.Command {
	var (
		in        input
		out       string
		templates string
		submit    string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "paint an HTML preview of a form",
		Long: `render paints the form as HTML. When --data is given the data is
validated first and the messages appear next to their fields.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := in.form(cmd.Context(), c)
			if err != nil {
				return err
			}
			if in.data != "" {
				f.Validate()
			}

			opts := []html.Option{html.WithSubmitLabel(submit)}
			if templates != "" {
				opts = append(opts, html.WithTemplatesDir(templates))
			}
			renderer, err := html.New(opts...)
			if err != nil {
				return err
			}
			page, err := renderer.Render(cmd.Context(), f)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(page)
				return err
			}
			return os.WriteFile(out, page, 0o644)
		},
	}
	in.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the page to this file instead of stdout")
	cmd.Flags().StringVar(&templates, "templates", "", "directory of templates overriding the built-in ones")
	cmd.Flags().StringVar(&submit, "submit-label", "Submit", "label of the submit button")
	return cmd
}
