package main

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newValidateCmd(c *command) *cobra.Command {
	var (
		in     input
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "validate a data document against the form schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := in.form(cmd.Context(), c)
			if err != nil {
				return err
			}
			res := f.Validate()
			out := cmd.OutOrStdout()

			if asJSON {
				encoded, err := json.Marshal(map[string]any{
					"valid":  res.Valid,
					"errors": res.Messages(),
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(encoded))
			} else if res.Valid {
				fmt.Fprintln(out, "valid")
			} else {
				messages := res.Messages()
				paths := make([]string, 0, len(messages))
				for path := range messages {
					paths = append(paths, path)
				}
				sort.Strings(paths)
				for _, path := range paths {
					label := path
					if label == "" {
						label = "(form)"
					}
					for _, msg := range messages[path] {
						fmt.Fprintf(out, "%s: %s\n", label, msg)
					}
				}
			}
			if !res.Valid {
				return errReported
			}
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}
