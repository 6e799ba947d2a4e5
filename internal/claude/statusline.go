package claude

import "zcf/internal/fsutil"

// StatuslineCommand is where CCometixLine installs its binary.
const StatuslineCommand = "~/.claude/ccline/ccline"

// ConfigureStatusline points Claude Code's statusline at CCometixLine.
func (c *Configurator) ConfigureStatusline() error {
	return c.updateSettings(func(doc map[string]any) error {
		doc["statusLine"] = map[string]any{
			"type":    "command",
			"command": StatuslineCommand,
			"padding": 0,
		}
		return nil
	})
}

// HasStatusline reports whether a statusline is configured.
func (c *Configurator) HasStatusline() bool {
	doc, err := c.readSettings()
	if err != nil {
		return false
	}
	_, ok := doc["statusLine"]
	return ok
}

// RemoveStatusline drops the statusLine entry.
func (c *Configurator) RemoveStatusline() (bool, error) {
	return c.RemoveSettingsKeys("statusLine")
}

// RemoveEnvPermissions drops env and permissions, the part
// ImportRecommendedEnvPermissions manages.
func (c *Configurator) RemoveEnvPermissions() (bool, error) {
	return c.RemoveSettingsKeys("env", "permissions")
}

// RemoveSettingsKeys deletes top-level keys from settings.json and reports
// whether any was present. A missing file is left missing.
func (c *Configurator) RemoveSettingsKeys(keys ...string) (bool, error) {
	if !fsutil.Exists(c.Fs, c.Paths.ClaudeSettings) {
		return false, nil
	}
	removed := false
	err := c.updateSettings(func(doc map[string]any) error {
		for _, k := range keys {
			if _, ok := doc[k]; ok {
				delete(doc, k)
				removed = true
			}
		}
		return nil
	})
	return removed, err
}
