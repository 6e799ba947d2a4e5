package claude

import (
	"fmt"
	"path/filepath"
	"strings"

	"zcf/internal/config"
	"zcf/internal/fsutil"
	"zcf/internal/logger"
	"zcf/internal/templates"
)

// Environment keys Claude Code reads its credentials from.
const (
	EnvAuthToken = "ANTHROPIC_AUTH_TOKEN"
	EnvAPIKey    = "ANTHROPIC_API_KEY"
	EnvBaseURL   = "ANTHROPIC_BASE_URL"
)

func settingsTemplate() (map[string]any, error) {
	raw, err := templates.ReadFile(templates.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("read settings template: %w", err)
	}
	doc, err := fsutil.DecodeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("parse settings template: %w", err)
	}
	return doc, nil
}

// ApplySettingsTemplate writes settings.json according to action and returns
// the backup path when one was taken.
//
//   - new: overwrite, no backup
//   - backup: back up ~/.claude, overwrite
//   - merge: back up, then merge the existing settings over the template so
//     user values win and arrays are unioned
//   - docs-only: back up, settings untouched
//   - skip: nothing
func (c *Configurator) ApplySettingsTemplate(action config.ConfigAction) (string, error) {
	if action == config.ActionSkip {
		return "", nil
	}

	var backup string
	if action != config.ActionNew {
		var err error
		if backup, err = c.Backup(); err != nil {
			return "", err
		}
	}
	if action == config.ActionDocsOnly {
		return backup, nil
	}

	tmpl, err := settingsTemplate()
	if err != nil {
		return backup, err
	}

	doc := tmpl
	if action == config.ActionMerge {
		existing, err := c.readSettings()
		if err != nil {
			// The backup above already holds the broken file.
			logger.Debug("[DEBUG] Replacing unparsable settings %s: %v\n", c.Paths.ClaudeSettings, err)
			existing = map[string]any{}
		}
		doc = fsutil.DeepMerge(tmpl, existing, fsutil.MergeOptions{MergeArrays: true})
	}

	logger.Debug("[DEBUG] Applying settings template with action %s\n", action)
	return backup, fsutil.WriteJSON(c.Fs, c.Paths.ClaudeSettings, doc)
}

// ConfigureAPI writes the credential environment for api.Type. For
// ccr_proxy, api.URL is the local router address and api.Key its APIKEY.
func (c *Configurator) ConfigureAPI(api config.APIConfig) error {
	if api.Type == config.APISkip || api.Type == "" {
		return nil
	}
	err := c.updateSettings(func(doc map[string]any) error {
		env := fsutil.Object(doc, "env")
		switch api.Type {
		case config.APIAuthToken:
			env[EnvAuthToken] = api.Key
			delete(env, EnvAPIKey)
		case config.APIKey, config.APICCRProxy:
			env[EnvAPIKey] = api.Key
			delete(env, EnvAuthToken)
		default:
			return fmt.Errorf("unknown api type %q", api.Type)
		}
		if api.URL != "" {
			env[EnvBaseURL] = api.URL
		} else {
			delete(env, EnvBaseURL)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return c.MarkOnboardingComplete()
}

// ClearAPI removes the credential environment so Claude Code falls back to
// its own login.
func (c *Configurator) ClearAPI() error {
	if !fsutil.Exists(c.Fs, c.Paths.ClaudeSettings) {
		return nil
	}
	return c.updateSettings(func(doc map[string]any) error {
		env := fsutil.Object(doc, "env")
		for _, k := range []string{EnvAuthToken, EnvAPIKey, EnvBaseURL} {
			delete(env, k)
		}
		return nil
	})
}

// CurrentAPI reads the credentials currently in settings.json.
func (c *Configurator) CurrentAPI() (config.APIConfig, error) {
	doc, err := c.readSettings()
	if err != nil {
		return config.APIConfig{}, err
	}
	env, _ := doc["env"].(map[string]any)
	str := func(k string) string { s, _ := env[k].(string); return s }

	api := config.APIConfig{URL: str(EnvBaseURL)}
	switch {
	case str(EnvAuthToken) != "":
		api.Type, api.Key = config.APIAuthToken, str(EnvAuthToken)
	case str(EnvAPIKey) != "":
		api.Type, api.Key = config.APIKey, str(EnvAPIKey)
		if strings.HasPrefix(api.URL, "http://127.0.0.1:") {
			api.Type = config.APICCRProxy
		}
	default:
		api.Type = config.APISkip
	}
	return api, nil
}

// MarkOnboardingComplete sets hasCompletedOnboarding in ~/.claude.json so a
// pre-configured Claude Code does not ask to log in.
func (c *Configurator) MarkOnboardingComplete() error {
	return fsutil.UpdateJSON(c.Fs, c.Paths.ClaudeJSON, func(doc map[string]any) error {
		doc["hasCompletedOnboarding"] = true
		return nil
	})
}

// SetModel sets the default model. "default" removes the override.
func (c *Configurator) SetModel(model string) error {
	valid := false
	for _, m := range config.Models {
		valid = valid || m == model
	}
	if !valid {
		return fmt.Errorf("unknown model %q (allowed: %s)", model, strings.Join(config.Models, ", "))
	}
	return c.updateSettings(func(doc map[string]any) error {
		if model == "default" {
			delete(doc, "model")
		} else {
			doc["model"] = model
		}
		return nil
	})
}

// CurrentModel returns the configured model, "default" when unset.
func (c *Configurator) CurrentModel() string {
	doc, err := c.readSettings()
	if err != nil {
		return "default"
	}
	if m, ok := doc["model"].(string); ok && m != "" {
		return m
	}
	return "default"
}

// stalePermission matches allow entries older Claude Code versions accepted
// and current ones reject.
func stalePermission(p string) bool {
	if p == "MultiEdit" {
		return true
	}
	return strings.HasPrefix(p, "mcp__") && strings.Contains(p, "*")
}

// ImportRecommendedEnvPermissions merges the template's env and
// permissions.allow into settings.json and drops stale allow entries.
// Existing env values win over the template.
func (c *Configurator) ImportRecommendedEnvPermissions() error {
	tmpl, err := settingsTemplate()
	if err != nil {
		return err
	}
	return c.updateSettings(func(doc map[string]any) error {
		env := fsutil.Object(doc, "env")
		if tenv, ok := tmpl["env"].(map[string]any); ok {
			for k, v := range tenv {
				if _, set := env[k]; !set {
					env[k] = v
				}
			}
		}

		perms := fsutil.Object(doc, "permissions")
		var tallow []any
		if tp, ok := tmpl["permissions"].(map[string]any); ok {
			tallow, _ = tp["allow"].([]any)
		}
		current, _ := perms["allow"].([]any)
		merged := fsutil.UnionArrays(current, tallow)
		allow := make([]any, 0, len(merged))
		for _, p := range merged {
			if s, ok := p.(string); ok && stalePermission(s) {
				logger.Debug("[DEBUG] Dropping stale permission %s\n", s)
				continue
			}
			allow = append(allow, p)
		}
		perms["allow"] = allow
		return nil
	})
}

// SetOutputStyles copies the custom styles in ids to ~/.claude/output-styles
// and makes def the active style. It returns the written files.
func (c *Configurator) SetOutputStyles(m *templates.Manifest, ids []string, def, lang string) ([]string, error) {
	var written []string
	for _, id := range ids {
		style, ok := m.OutputStyle(id)
		if !ok || !style.Custom {
			continue
		}
		dst := filepath.Join(c.Paths.OutputStylesDir, id+".md")
		if err := fsutil.CopyEmbedded(c.Fs, templates.FS(), templates.OutputStylePath(lang, id), dst); err != nil {
			return written, err
		}
		written = append(written, dst)
	}
	if def == "" {
		return written, nil
	}
	return written, c.updateSettings(func(doc map[string]any) error {
		doc["outputStyle"] = def
		return nil
	})
}
