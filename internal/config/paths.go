package config

import (
	"os"
	"path/filepath"
)

// Paths resolves every file ZCF reads or writes relative to one home directory.
// Commands build it once from the real home; tests build it from a fake one.
type Paths struct {
	Home string

	ClaudeDir       string
	ClaudeSettings  string
	ClaudeJSON      string
	ClaudeMemory    string
	ClaudeCommands  string
	ClaudeAgents    string
	OutputStylesDir string
	ClaudeBackupDir string
	ClineDir        string

	CodexDir       string
	CodexConfig    string
	CodexAuth      string
	CodexAgents    string
	CodexPrompts   string
	CodexBackupDir string

	CCRDir    string
	CCRConfig string

	ZCFConfig string
}

// ZCFSubdir is the folder ZCF owns inside commands/ and agents/.
const ZCFSubdir = "zcf"

// NewPaths builds the path set for the given home directory.
func NewPaths(home string) Paths {
	claude := filepath.Join(home, ".claude")
	codex := filepath.Join(home, ".codex")
	ccr := filepath.Join(home, ".claude-code-router")
	return Paths{
		Home: home,

		ClaudeDir:       claude,
		ClaudeSettings:  filepath.Join(claude, "settings.json"),
		ClaudeJSON:      filepath.Join(home, ".claude.json"),
		ClaudeMemory:    filepath.Join(claude, "CLAUDE.md"),
		ClaudeCommands:  filepath.Join(claude, "commands"),
		ClaudeAgents:    filepath.Join(claude, "agents"),
		OutputStylesDir: filepath.Join(claude, "output-styles"),
		ClaudeBackupDir: filepath.Join(claude, "backup"),
		ClineDir:        filepath.Join(claude, "ccline"),

		CodexDir:       codex,
		CodexConfig:    filepath.Join(codex, "config.toml"),
		CodexAuth:      filepath.Join(codex, "auth.json"),
		CodexAgents:    filepath.Join(codex, "AGENTS.md"),
		CodexPrompts:   filepath.Join(codex, "prompts"),
		CodexBackupDir: filepath.Join(codex, "backup"),

		CCRDir:    ccr,
		CCRConfig: filepath.Join(ccr, "config.json"),

		ZCFConfig: filepath.Join(home, ".zcf-config.json"),
	}
}

// DefaultPaths resolves paths from the current user's home directory.
func DefaultPaths() (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, err
	}
	return NewPaths(home), nil
}
