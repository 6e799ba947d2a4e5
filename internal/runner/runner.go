// Package runner is the process boundary: every external command ZCF starts
// (npm, npx, ccr, trash utilities, version probes) goes through a Runner so
// the orchestration code can be tested without spawning anything.
package runner

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"zcf/internal/logger"
)

// Runner starts external commands.
type Runner interface {
	// Output runs the command and returns its combined stdout/stderr.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	// Interactive runs the command attached to the current terminal.
	Interactive(ctx context.Context, name string, args ...string) error
	// LookPath reports where name is found on PATH.
	LookPath(name string) (string, error)
}

// Exec is the os/exec backed Runner.
type Exec struct{}

// New returns the default Runner.
func New() Exec { return Exec{} }

func (Exec) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	logger.Debug("[DEBUG] Running command: %s\n", strings.Join(cmd.Args, " "))
	output, err := cmd.CombinedOutput()
	logger.Debug("[DEBUG] %s output: %s\n", name, strings.TrimSpace(string(output)))
	return output, err
}

func (Exec) Interactive(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	logger.Debug("[DEBUG] Running interactive command: %s\n", strings.Join(cmd.Args, " "))
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (Exec) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Exists reports whether name is on PATH.
func Exists(r Runner, name string) bool {
	_, err := r.LookPath(name)
	return err == nil
}
