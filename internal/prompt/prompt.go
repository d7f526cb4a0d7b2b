// Package prompt asks the user questions on an interactive terminal.
package prompt

import (
	"os"

	"github.com/charmbracelet/huh"
	"github.com/cockroachdb/errors"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when a prompt is needed but stdin or stdout
// is not a terminal.
var ErrNotInteractive = errors.New("not an interactive terminal")

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = errors.New("aborted by user")

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Prompter asks questions. Tests substitute a canned implementation.
type Prompter interface {
	Confirm(title string) (bool, error)
	MultiSelect(title string, options []string) ([]string, error)
}

// Huh implements Prompter with charmbracelet/huh forms.
type Huh struct{}

var runForm = func(form *huh.Form) error { return form.Run() }

func (Huh) run(form *huh.Form) error {
	if !IsInteractive() {
		return ErrNotInteractive
	}
	err := runForm(form)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}

// Confirm renders a yes/no prompt defaulting to no.
func (h Huh) Confirm(title string) (bool, error) {
	var ok bool
	err := h.run(huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	))
	return ok, err
}

// MultiSelect renders a multi-choice prompt. At least one option must be
// chosen.
func (h Huh) MultiSelect(title string, options []string) ([]string, error) {
	opts := make([]huh.Option[string], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o, o)
	}
	var selected []string
	err := h.run(huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title(title).
				Options(opts...).
				Validate(func(s []string) error {
					if len(s) == 0 {
						return errors.New("select at least one")
					}
					return nil
				}).
				Value(&selected),
		),
	))
	return selected, err
}
