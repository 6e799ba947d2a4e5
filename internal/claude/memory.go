package claude

import (
	"errors"
	"os"

	"github.com/spf13/afero"

	"zcf/internal/fsutil"
	"zcf/internal/templates"
)

// SetMemoryBlock rewrites the ZCF block of the memory file at path.
func SetMemoryBlock(fs afero.Fs, path, body string) error {
	raw, err := afero.ReadFile(fs, path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return fsutil.WriteFile(fs, path, []byte(templates.ReplaceBlock(string(raw), body)), 0o644)
}

// SetAIOutputLanguage pins the assistant's reply language in CLAUDE.md.
func (c *Configurator) SetAIOutputLanguage(lang string) error {
	return SetMemoryBlock(c.Fs, c.Paths.ClaudeMemory, templates.LanguageDirective(lang))
}

// AIOutputLanguageDirective returns the current directive from CLAUDE.md.
func (c *Configurator) AIOutputLanguageDirective() string {
	raw, err := afero.ReadFile(c.Fs, c.Paths.ClaudeMemory)
	if err != nil {
		return ""
	}
	return templates.Block(string(raw))
}
