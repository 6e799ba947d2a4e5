package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Line is a Prompter for non-terminal stdin. Each question is answered by one
// line; choices can be given by number, key or value. EOF cancels.
type Line struct {
	r   *bufio.Reader
	out io.Writer
}

// NewLine builds a line prompter.
func NewLine(in io.Reader, out io.Writer) *Line {
	return &Line{r: bufio.NewReader(in), out: out}
}

func (l *Line) readLine() (string, error) {
	s, err := l.r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || s == "") {
		if errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func (l *Line) pick(options []Option, answer string) (int, bool) {
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
		return n - 1, true
	}
	for i, o := range options {
		if (o.Key != "" && strings.EqualFold(o.Key, answer)) || o.Value == answer {
			return i, true
		}
	}
	return 0, false
}

func (l *Line) Select(title string, options []Option, def string) (string, error) {
	if len(options) == 0 {
		return "", ErrCancelled
	}
	fmt.Fprintf(l.out, "? %s\n", title)
	for i, o := range options {
		fmt.Fprintf(l.out, "  %d) %s\n", i+1, o.Label)
	}
	for {
		fmt.Fprint(l.out, "> ")
		answer, err := l.readLine()
		if err != nil {
			return "", err
		}
		if answer == "" {
			return options[indexOf(options, def)].Value, nil
		}
		if i, ok := l.pick(options, answer); ok {
			return options[i].Value, nil
		}
		fmt.Fprintf(l.out, ">> %q is not a valid choice\n", answer)
	}
}

func (l *Line) MultiSelect(title string, options []Option, defaults []string) ([]string, error) {
	fmt.Fprintf(l.out, "? %s (comma-separated numbers, empty for defaults)\n", title)
	for i, o := range options {
		fmt.Fprintf(l.out, "  %d) %s\n", i+1, o.Label)
	}
	fmt.Fprint(l.out, "> ")
	answer, err := l.readLine()
	if err != nil {
		return nil, err
	}
	if answer == "" {
		return defaults, nil
	}
	var out []string
	for _, part := range strings.Split(answer, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		i, ok := l.pick(options, part)
		if !ok {
			return nil, fmt.Errorf("invalid choice %q", part)
		}
		out = append(out, options[i].Value)
	}
	return out, nil
}

func (l *Line) Input(title, def string, validate Validator) (string, error) {
	for {
		if def != "" {
			fmt.Fprintf(l.out, "? %s (%s): ", title, def)
		} else {
			fmt.Fprintf(l.out, "? %s: ", title)
		}
		answer, err := l.readLine()
		if err != nil {
			return "", err
		}
		if answer == "" {
			answer = def
		}
		if validate != nil {
			if verr := validate(answer); verr != nil {
				// A blank answer to a required prompt backs out.
				if answer == "" {
					return "", ErrCancelled
				}
				fmt.Fprintf(l.out, ">> %s\n", verr)
				continue
			}
		}
		return answer, nil
	}
}

func (l *Line) Password(title string, validate Validator) (string, error) {
	return l.Input(title, "", validate)
}

func (l *Line) Confirm(title string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(l.out, "? %s (%s): ", title, hint)
	answer, err := l.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
