// Package claude writes Claude Code's configuration: settings.json, the
// MCP server map in ~/.claude.json, CLAUDE.md, output styles, workflow
// commands and agents, and the statusline entry.
package claude

import (
	"runtime"
	"time"

	"github.com/spf13/afero"

	"zcf/internal/config"
	"zcf/internal/fsutil"
)

// Configurator owns every Claude Code file under one home directory.
type Configurator struct {
	Fs    afero.Fs
	Paths config.Paths
	GOOS  string
	Now   func() time.Time
}

// New returns a Configurator for the running platform.
func New(fs afero.Fs, paths config.Paths) *Configurator {
	return &Configurator{Fs: fs, Paths: paths, GOOS: runtime.GOOS, Now: time.Now}
}

// HasConfig reports whether Claude Code has been configured before.
func (c *Configurator) HasConfig() bool {
	return fsutil.Exists(c.Fs, c.Paths.ClaudeSettings)
}

// Backup copies ~/.claude into ~/.claude/backup/backup_<ts> and returns the
// backup path, or "" when there is nothing to back up.
func (c *Configurator) Backup() (string, error) {
	return fsutil.BackupDir(c.Fs, c.Paths.ClaudeDir, c.Paths.ClaudeBackupDir, c.Now())
}

func (c *Configurator) readSettings() (map[string]any, error) {
	return fsutil.ReadJSON(c.Fs, c.Paths.ClaudeSettings)
}

func (c *Configurator) updateSettings(fn func(doc map[string]any) error) error {
	return fsutil.UpdateJSON(c.Fs, c.Paths.ClaudeSettings, fn)
}
