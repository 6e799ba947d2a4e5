// Package prompt asks the user questions. Commands depend on the Prompter
// interface; the terminal implementation is built on bubbletea and a
// line-based one takes over when stdin is not a terminal.
package prompt

import (
	"errors"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrCancelled means the user aborted a prompt (Ctrl-C, Esc, or an empty
// answer to a required question). Commands treat it as a clean exit.
var ErrCancelled = errors.New("operation cancelled")

// Option is one choice in a Select or MultiSelect.
type Option struct {
	Label string
	Value string
	Hint  string
	// Key is an optional shortcut; pressing it picks the option at once.
	Key string
}

// Validator rejects an answer with a message shown under the input.
type Validator func(string) error

// Prompter is everything commands need from the user.
type Prompter interface {
	Select(title string, options []Option, def string) (string, error)
	MultiSelect(title string, options []Option, defaults []string) ([]string, error)
	Input(title, def string, validate Validator) (string, error)
	Password(title string, validate Validator) (string, error)
	Confirm(title string, def bool) (bool, error)
}

// New picks the terminal UI when stdin is a terminal and the line prompter
// otherwise (pipes, CI logs).
func New(in *os.File, out io.Writer) Prompter {
	if term.IsTerminal(int(in.Fd())) {
		return &TUI{In: in, Out: out}
	}
	return NewLine(in, out)
}

// Required rejects blank answers.
func Required(msg string) Validator {
	return func(s string) error {
		if s == "" {
			return errors.New(msg)
		}
		return nil
	}
}

func indexOf(options []Option, value string) int {
	for i, o := range options {
		if o.Value == value {
			return i
		}
	}
	return 0
}
