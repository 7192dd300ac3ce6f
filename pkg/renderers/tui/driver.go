package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-schemaform/pkg/control"
	"github.com/goliatone/go-schemaform/pkg/widgets"
)

// PromptKind selects how a Prompt is asked.
type PromptKind int

const (
	// PromptText asks for one line of text.
	PromptText PromptKind = iota
	// PromptSecret asks for text without echoing it. It has no default.
	PromptSecret
	// PromptMultiline asks for free text spanning lines.
	PromptMultiline
	// PromptConfirm asks a yes/no question.
	PromptConfirm
	// PromptChoice picks one of Options.
	PromptChoice
	// PromptChoices picks any number of Options.
	PromptChoices
)

// Prompt is one question put to the user. Leaf prompts are derived from the
// control they fill; the renderer also asks branch and "add item" questions.
type Prompt struct {
	Kind        PromptKind
	Path        string
	Label       string
	Help        string
	Placeholder string
	// Default is the prefilled text of text kinds.
	Default string
	// Checked is the default of PromptConfirm.
	Checked bool
	Options []string
	// Selected holds the default indices into Options of choice kinds.
	Selected []int
	// Check rejects an answer of a text kind before it reaches the form.
	Check func(answer string) error
}

// Answer is the reply to a Prompt. Text kinds fill Text, PromptConfirm
// fills Yes and choice kinds fill Picked with indices into Options.
type Answer struct {
	Text   string
	Yes    bool
	Picked []int
}

// PromptDriver abstracts the terminal so form filling can be tested without
// one and callers can swap implementations.
type PromptDriver interface {
	Ask(ctx context.Context, p Prompt) (Answer, error)
	Info(ctx context.Context, msg string) error
}

// leafPrompt derives the prompt for an editable leaf holding current.
func leafPrompt(d *control.Descriptor, current any) Prompt {
	p := Prompt{
		Kind:        PromptText,
		Path:        d.Path.String(),
		Label:       d.Label,
		Help:        d.Description,
		Placeholder: d.Placeholder,
		Default:     display(current),
	}
	switch d.Input {
	case widgets.FlavorToggle:
		p.Kind = PromptConfirm
		p.Checked, _ = current.(bool)
		p.Default = ""
	case widgets.FlavorPassword:
		p.Kind = PromptSecret
		p.Default = ""
	case widgets.FlavorTextarea:
		p.Kind = PromptMultiline
	}
	if p.Kind == PromptText && d.Schema != nil {
		p.Check = numericCheck(d.Schema.Type)
	}
	return p
}

// numericCheck rejects text that cannot be read as a number of typ. Empty
// answers pass so the field can be left out.
func numericCheck(typ string) func(string) error {
	if typ != "integer" && typ != "number" {
		return nil
	}
	return func(answer string) error {
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return nil
		}
		f, err := strconv.ParseFloat(answer, 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", answer)
		}
		if typ == "integer" && f != math.Trunc(f) {
			return fmt.Errorf("%q is not a whole number", answer)
		}
		return nil
	}
}

// surveyDriver prompts through survey and prints messages to out.
type surveyDriver struct {
	out io.Writer
}

func newSurveyDriver() PromptDriver {
	return &surveyDriver{out: os.Stderr}
}

func (d *surveyDriver) Ask(ctx context.Context, p Prompt) (Answer, error) {
	if err := ctx.Err(); err != nil {
		return Answer{}, err
	}
	var opts []survey.AskOpt
	if p.Check != nil {
		opts = append(opts, survey.WithValidator(textValidator(p.Check)))
	}

	switch p.Kind {
	case PromptConfirm:
		var yes bool
		err := survey.AskOne(&survey.Confirm{Message: p.Label, Help: p.Help, Default: p.Checked}, &yes)
		return Answer{Yes: yes}, surveyErr(err)
	case PromptChoice:
		prompt := &survey.Select{Message: p.Label, Help: p.Help, Options: p.Options}
		if len(p.Selected) > 0 && p.Selected[0] >= 0 && p.Selected[0] < len(p.Options) {
			prompt.Default = p.Options[p.Selected[0]]
		}
		var picked int
		if err := survey.AskOne(prompt, &picked); err != nil {
			return Answer{}, surveyErr(err)
		}
		return Answer{Picked: []int{picked}}, nil
	case PromptChoices:
		prompt := &survey.MultiSelect{Message: p.Label, Help: p.Help, Options: p.Options}
		if len(p.Selected) > 0 {
			prompt.Default = p.Selected
		}
		var picked []int
		err := survey.AskOne(prompt, &picked)
		return Answer{Picked: picked}, surveyErr(err)
	case PromptSecret:
		var text string
		err := survey.AskOne(&survey.Password{Message: p.Label, Help: p.Help}, &text, opts...)
		return Answer{Text: text}, surveyErr(err)
	case PromptMultiline:
		var text string
		err := survey.AskOne(&survey.Multiline{Message: p.Label, Help: p.Help, Default: p.Default}, &text, opts...)
		return Answer{Text: text}, surveyErr(err)
	}
	message := p.Label
	if p.Placeholder != "" && p.Default == "" {
		message = fmt.Sprintf("%s (%s)", p.Label, p.Placeholder)
	}
	var text string
	err := survey.AskOne(&survey.Input{Message: message, Help: p.Help, Default: p.Default}, &text, opts...)
	return Answer{Text: text}, surveyErr(err)
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

// textValidator adapts a text check to survey, which hands validators the
// raw answer as an interface value.
func textValidator(check func(string) error) survey.Validator {
	return func(ans interface{}) error {
		s, _ := ans.(string)
		return check(s)
	}
}

func surveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
