package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-schemaform/pkg/renderers/tui"
)

// errReported marks failures whose details were already written; Main only
// turns them into the exit code.
var errReported = errors.New("schemaform: failure reported")

type environment struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	// driver replaces the interactive terminal for fill. Nil uses survey.
	driver tui.PromptDriver
}

// command carries the state shared by the subcommands.
type command struct {
	env     environment
	verbose bool
	locale  string
	logger  *slog.Logger
}

// Main runs the tool with args and returns the code for os.Exit.
func Main(ctx context.Context, args []string, env environment) int {
	root := newRootCmd(env)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(env.stderr, "schemaform:", err)
		}
		return 1
	}
	return 0
}

func newRootCmd(env environment) *cobra.Command {
	c := &command{env: env}
	cmd := &cobra.Command{
		Use:   "schemaform",
		Short: "schemaform builds live forms from JSON Schema and UI Schema documents.",
		Long: `schemaform loads a data schema, either a JSON Schema document or a schema
taken from an OpenAPI document, together with an optional JSON Forms UI Schema.

The fill command walks the form in the terminal and prints the submitted data.
The render command paints an HTML preview. The validate command checks a data
document against the schema, and check reports problems with the documents
themselves.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			level := slog.LevelWarn
			if c.verbose {
				level = slog.LevelDebug
			}
			c.logger = slog.New(slog.NewTextHandler(c.env.stderr, &slog.HandlerOptions{Level: level}))
		},
	}
	cmd.SetIn(env.stdin)
	cmd.SetOut(env.stdout)
	cmd.SetErr(env.stderr)

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log form activity to stderr")
	flags.StringVar(&c.locale, "locale", "en", "locale of validation messages")

	subCommands := []*cobra.Command{
		newFillCmd(c),
		newRenderCmd(c),
		newValidateCmd(c),
		newCheckCmd(c),
	}
	for _, sub := range subCommands {
		cmd.AddCommand(sub)
	}
	return cmd
}
