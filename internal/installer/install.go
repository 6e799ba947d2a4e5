package installer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"zcf/internal/logger"
	"zcf/internal/runner"
)

// Package is an npm-distributed tool ZCF manages.
type Package struct {
	ID      string
	Name    string
	NPM     string
	Command string
}

// The managed packages.
var (
	ClaudeCode = Package{ID: "claude-code", Name: "Claude Code", NPM: "@anthropic-ai/claude-code", Command: "claude"}
	Codex      = Package{ID: "codex", Name: "Codex", NPM: "@openai/codex", Command: "codex"}
	CCR        = Package{ID: "ccr", Name: "Claude Code Router", NPM: "@musistudio/claude-code-router", Command: "ccr"}
	CCLine     = Package{ID: "ccline", Name: "CCometixLine", NPM: "@cometix/ccline", Command: "ccline"}
)

// Packages lists every managed package in check-updates order.
var Packages = []Package{ClaudeCode, Codex, CCR, CCLine}

// Lookup finds a package by id.
func Lookup(id string) (Package, bool) {
	for _, p := range Packages {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}

// Installer drives npm for the managed packages.
type Installer struct {
	Runner runner.Runner
}

// New returns an Installer using r.
func New(r runner.Runner) Installer {
	return Installer{Runner: r}
}

// IsInstalled reports whether the package's command is on PATH.
func (i Installer) IsInstalled(p Package) bool {
	installed := runner.Exists(i.Runner, p.Command)
	logger.Debug("[DEBUG] %s installed: %v\n", p.Command, installed)
	return installed
}

func (i Installer) npm(ctx context.Context, args ...string) error {
	output, err := i.Runner.Output(ctx, "npm", args...)
	if err != nil {
		return fmt.Errorf("npm %s failed: %w\nOutput: %s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Install runs npm install -g for p.
func (i Installer) Install(ctx context.Context, p Package) error {
	logger.Debug("[DEBUG] Installing %s from npm package %s\n", p.Name, p.NPM)
	return i.npm(ctx, "install", "-g", p.NPM)
}

// Update installs the latest published version of p.
func (i Installer) Update(ctx context.Context, p Package) error {
	logger.Debug("[DEBUG] Updating %s to %s@latest\n", p.Name, p.NPM)
	return i.npm(ctx, "install", "-g", p.NPM+"@latest")
}

// Uninstall runs npm uninstall -g for p.
func (i Installer) Uninstall(ctx context.Context, p Package) error {
	logger.Debug("[DEBUG] Uninstalling %s (%s)\n", p.Name, p.NPM)
	return i.npm(ctx, "uninstall", "-g", p.NPM)
}

var versionPattern = regexp.MustCompile(`\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?`)

// ParseVersion returns the first semantic version in s, or "".
func ParseVersion(s string) string {
	return versionPattern.FindString(s)
}

// InstalledVersion runs `<command> --version` and parses the result.
func (i Installer) InstalledVersion(ctx context.Context, p Package) (string, error) {
	if !i.IsInstalled(p) {
		return "", fmt.Errorf("%s is not installed", p.Name)
	}
	output, err := i.Runner.Output(ctx, p.Command, "--version")
	if err != nil {
		return "", fmt.Errorf("%s --version failed: %w", p.Command, err)
	}
	v := ParseVersion(string(output))
	if v == "" {
		return "", fmt.Errorf("no version in %s --version output %q", p.Command, strings.TrimSpace(string(output)))
	}
	return v, nil
}

// LatestVersion asks the npm registry for the published version.
func (i Installer) LatestVersion(ctx context.Context, p Package) (string, error) {
	output, err := i.Runner.Output(ctx, "npm", "view", p.NPM, "version")
	if err != nil {
		return "", fmt.Errorf("npm view %s failed: %w", p.NPM, err)
	}
	v := ParseVersion(string(output))
	if v == "" {
		return "", fmt.Errorf("no version for %s in registry output %q", p.NPM, strings.TrimSpace(string(output)))
	}
	return v, nil
}

// RunCCUsage runs ccusage through npx with the terminal attached.
func (i Installer) RunCCUsage(ctx context.Context, args ...string) error {
	argv := append([]string{"ccusage@latest"}, args...)
	if err := i.Runner.Interactive(ctx, "npx", argv...); err != nil {
		return fmt.Errorf("ccusage failed: %w", err)
	}
	return nil
}
