package runner

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Call records one invocation made through a Fake.
type Call struct {
	Name        string
	Args        []string
	Interactive bool
}

// String renders the call as a command line.
func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Response is the canned result for a command line.
type Response struct {
	Output string
	Err    error
}

// Fake is a scripted Runner. Responses are keyed by the full command line
// ("npm view @cometix/ccline version"); Paths lists commands LookPath finds.
type Fake struct {
	Responses map[string]Response
	Paths     map[string]string
	Calls     []Call
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{Responses: map[string]Response{}, Paths: map[string]string{}}
}

// On registers the response for a command line.
func (f *Fake) On(cmdline, output string, err error) *Fake {
	f.Responses[cmdline] = Response{Output: output, Err: err}
	return f
}

// Installed marks name as present on PATH.
func (f *Fake) Installed(names ...string) *Fake {
	for _, n := range names {
		f.Paths[n] = "/usr/local/bin/" + n
	}
	return f
}

func (f *Fake) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	c := Call{Name: name, Args: args}
	f.Calls = append(f.Calls, c)
	if r, ok := f.Responses[c.String()]; ok {
		return []byte(r.Output), r.Err
	}
	return nil, nil
}

func (f *Fake) Interactive(_ context.Context, name string, args ...string) error {
	c := Call{Name: name, Args: args, Interactive: true}
	f.Calls = append(f.Calls, c)
	if r, ok := f.Responses[c.String()]; ok {
		return r.Err
	}
	return nil
}

func (f *Fake) LookPath(name string) (string, error) {
	if p, ok := f.Paths[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%s: %w", name, exec.ErrNotFound)
}

// Ran reports whether cmdline was executed.
func (f *Fake) Ran(cmdline string) bool {
	for _, c := range f.Calls {
		if c.String() == cmdline {
			return true
		}
	}
	return false
}
