package prompt

import "fmt"

// Scripted answers prompts from a queue, in order. A string answers Select,
// Input and Password; []string answers MultiSelect; bool answers Confirm; an
// error is returned as-is (use ErrCancelled to simulate Ctrl-C); a blank
// answer a validator rejects cancels, like the real prompters. When the
// queue is empty the default is returned. Titles are recorded in Asked.
type Scripted struct {
	Answers []any
	Asked   []string
}

// NewScripted builds a scripted prompter.
func NewScripted(answers ...any) *Scripted {
	return &Scripted{Answers: answers}
}

func (s *Scripted) next(title string) (any, bool) {
	s.Asked = append(s.Asked, title)
	if len(s.Answers) == 0 {
		return nil, false
	}
	a := s.Answers[0]
	s.Answers = s.Answers[1:]
	return a, true
}

func (s *Scripted) Select(title string, options []Option, def string) (string, error) {
	a, ok := s.next(title)
	if !ok {
		return def, nil
	}
	switch v := a.(type) {
	case error:
		return "", v
	case string:
		return v, nil
	}
	return "", fmt.Errorf("scripted: %q wants a string, got %T", title, a)
}

func (s *Scripted) MultiSelect(title string, options []Option, defaults []string) ([]string, error) {
	a, ok := s.next(title)
	if !ok {
		return defaults, nil
	}
	switch v := a.(type) {
	case error:
		return nil, v
	case []string:
		return v, nil
	}
	return nil, fmt.Errorf("scripted: %q wants []string, got %T", title, a)
}

func (s *Scripted) Input(title, def string, validate Validator) (string, error) {
	a, ok := s.next(title)
	if !ok {
		return def, nil
	}
	switch v := a.(type) {
	case error:
		return "", v
	case string:
		if v == "" {
			v = def
		}
		if validate != nil {
			if err := validate(v); err != nil {
				if v == "" {
					return "", ErrCancelled
				}
				return "", err
			}
		}
		return v, nil
	}
	return "", fmt.Errorf("scripted: %q wants a string, got %T", title, a)
}

func (s *Scripted) Password(title string, validate Validator) (string, error) {
	return s.Input(title, "", validate)
}

func (s *Scripted) Confirm(title string, def bool) (bool, error) {
	a, ok := s.next(title)
	if !ok {
		return def, nil
	}
	switch v := a.(type) {
	case error:
		return false, v
	case bool:
		return v, nil
	}
	return false, fmt.Errorf("scripted: %q wants a bool, got %T", title, a)
}
