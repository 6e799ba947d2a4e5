package cmd

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"zcf/internal/ccr"
	"zcf/internal/codex"
	"zcf/internal/config"
	"zcf/internal/i18n"
	"zcf/internal/installer"
	"zcf/internal/logger"
	"zcf/internal/prompt"
	"zcf/internal/state"
)

// apiFlags carries --api-type, --api-key and --api-url.
type apiFlags struct {
	Type string
	Key  string
	URL  string
}

func validURL(s string) error {
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New(i18n.T("api.invalidURL"))
	}
	return nil
}

func requiredURL(s string) error {
	if s == "" {
		return errors.New(i18n.T("api.urlRequired"))
	}
	return validURL(s)
}

// profileName names a saved credential set after the host it talks to.
func profileName(api config.APIConfig) string {
	if u, err := url.Parse(api.URL); err == nil && u.Host != "" {
		return u.Host
	}
	return "default"
}

// configureClaudeAPI writes Claude Code credentials. Skip-prompt mode without
// --api-type leaves the credentials alone.
func configureClaudeAPI(ctx context.Context, a *app, f apiFlags, skipPrompt bool) error {
	c := a.claude()
	t := config.APIType(f.Type)
	if t == "" && skipPrompt {
		if f.Key != "" {
			logger.Warn("%s\n", i18n.T("api.keyWithoutType"))
		}
		t = config.APISkip
	}
	if t == "" {
		if cur, err := c.CurrentAPI(); err == nil && cur.Type != config.APISkip {
			keep, err := a.prompter.Confirm(i18n.T("api.keepExisting", cur.Type, prompt.Mask(cur.Key)), true)
			if err != nil {
				return err
			}
			if keep {
				return nil
			}
		}
		choice, err := a.prompter.Select(i18n.T("api.selectType"), []prompt.Option{
			{Label: i18n.T("api.authToken"), Value: string(config.APIAuthToken), Hint: i18n.T("api.authTokenHint")},
			{Label: i18n.T("api.apiKey"), Value: string(config.APIKey), Hint: i18n.T("api.apiKeyHint")},
			{Label: i18n.T("api.ccrProxy"), Value: string(config.APICCRProxy), Hint: i18n.T("api.ccrProxyHint")},
			{Label: i18n.T("api.skip"), Value: string(config.APISkip)},
		}, string(config.APIAuthToken))
		if err != nil {
			return err
		}
		t = config.APIType(choice)
	}

	switch t {
	case config.APISkip:
		logger.Info("%s\n", i18n.T("api.skipped"))
		return nil
	case config.APICCRProxy:
		return setupCCR(ctx, a, f.Key, skipPrompt)
	}

	api := config.APIConfig{Type: t, Key: f.Key, URL: f.URL}
	var err error
	if api.URL == "" && !skipPrompt {
		if api.URL, err = a.prompter.Input(i18n.T("api.enterURL"), "", validURL); err != nil {
			return err
		}
	} else if err := validURL(api.URL); err != nil {
		return err
	}
	if api.Key == "" {
		if skipPrompt {
			return &config.ValidationError{Flag: "api-key", Reason: i18n.T("api.keyRequired")}
		}
		title := i18n.T("api.enterAuthToken")
		if t == config.APIKey {
			title = i18n.T("api.enterAPIKey")
		}
		if api.Key, err = a.prompter.Password(title, prompt.Required(i18n.T("api.keyRequired"))); err != nil {
			return err
		}
	}

	if err := c.ConfigureAPI(api); err != nil {
		return err
	}
	logger.Success("%s\n", i18n.T("api.configured", t, prompt.Mask(api.Key)))
	return a.saveState(func(st *state.State) {
		name := profileName(api)
		if st.ClaudeCode.Profiles == nil {
			st.ClaudeCode.Profiles = map[string]state.Profile{}
		}
		st.ClaudeCode.Profiles[name] = state.Profile{Name: name, AuthType: api.Type, APIKey: api.Key, BaseURL: api.URL}
		st.ClaudeCode.CurrentProfile = name
	})
}

// setupCCR installs the router if needed, writes its config from a provider
// preset and points Claude Code at it.
func setupCCR(ctx context.Context, a *app, apiKey string, skipPrompt bool) error {
	ok, err := a.ensureInstalled(ctx, installer.CCR, skipPrompt)
	if err != nil || !ok {
		return err
	}

	cfg, found, err := ccr.Load(a.fs, a.paths.CCRConfig)
	if err == nil && found && !skipPrompt {
		keep, err := a.prompter.Confirm(i18n.T("ccr.keepExisting"), true)
		if err != nil {
			return err
		}
		if keep {
			if err := a.claude().ConfigureAPI(cfg.ProxyAPI()); err != nil {
				return err
			}
			logger.Success("%s\n", i18n.T("ccr.proxyConfigured", cfg.BaseURL()))
			return nil
		}
	}

	preset := ccr.Preset{Provider: ccr.SkipPreset}
	if !skipPrompt {
		logger.Info("%s\n", i18n.T("ccr.fetchingPresets"))
		presets := ccr.Presets(ctx, a.http, a.presets)
		opts := make([]prompt.Option, 0, len(presets)+1)
		opts = append(opts, prompt.Option{Label: i18n.T("ccr.skipPreset"), Value: ccr.SkipPreset, Hint: i18n.T("ccr.skipPresetHint")})
		for _, p := range presets {
			opts = append(opts, prompt.Option{Label: p.Name, Value: p.Provider, Hint: p.Description})
		}
		choice, err := a.prompter.Select(i18n.T("ccr.selectPreset"), opts, opts[min(1, len(opts)-1)].Value)
		if err != nil {
			return err
		}
		if p, ok := ccr.FindPreset(presets, choice); ok {
			preset = p
		}
	}

	if preset.RequiresAPIKey && apiKey == "" {
		if apiKey, err = a.prompter.Password(i18n.T("ccr.enterKey", preset.Name), prompt.Required(i18n.T("api.keyRequired"))); err != nil {
			return err
		}
	}

	res, err := ccr.Setup(a.fs, a.paths, a.claude(), preset, apiKey, a.now())
	if err != nil {
		return err
	}
	if res.Backup != "" {
		logger.Info("%s\n", i18n.T("common.backedUp", res.Backup))
	}
	logger.Success("%s\n", i18n.T("ccr.configured", a.paths.CCRConfig))
	logger.Success("%s\n", i18n.T("ccr.proxyConfigured", res.Config.BaseURL()))
	if preset.Provider == ccr.SkipPreset {
		logger.Hint("%s\n", i18n.T("ccr.editHint", a.paths.CCRConfig))
	}

	if err := a.ccr().Restart(ctx); err != nil {
		logger.Warn("%s\n", i18n.T("ccr.restartFailed", err))
	}
	logger.Hint("%s\n", i18n.T("ccr.uiHint"))
	return nil
}

// mcpKeys collects the API keys of the selected services that need one. The
// service's own environment variable is used first.
func mcpKeys(a *app, ids []string, lang string, skipPrompt bool) (map[string]string, error) {
	keys := map[string]string{}
	for _, id := range ids {
		svc, ok := a.manifest.MCPService(id)
		if !ok || !svc.RequiresAPIKey {
			continue
		}
		key := ""
		if svc.APIKeyEnvVar != "" {
			key = a.getenv(svc.APIKeyEnvVar)
		}
		if key == "" && !skipPrompt {
			var err error
			title := svc.APIKeyPrompt.Get(lang)
			if title == "" {
				title = i18n.T("mcp.enterKey", svc.Name.Get(lang))
			}
			if key, err = a.prompter.Password(title, nil); err != nil {
				return nil, err
			}
		}
		if key != "" {
			keys[id] = key
		}
	}
	return keys, nil
}

func reportMCP(configured, skipped []string) {
	if len(configured) > 0 {
		logger.Success("%s\n", i18n.T("mcp.configured", strings.Join(configured, ", ")))
	}
	for _, id := range skipped {
		logger.Warn("%s\n", i18n.T("mcp.skippedNoKey", id))
	}
}

// configureClaudeMCP resolves and writes Claude Code's MCP servers.
func configureClaudeMCP(a *app, st *state.State, flag, lang string, skipPrompt bool) ([]string, error) {
	ids, err := a.resolver(st, skipPrompt).MCPServices(flag, lang)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		logger.Info("%s\n", i18n.T("mcp.none"))
		return ids, nil
	}
	keys, err := mcpKeys(a, ids, lang, skipPrompt)
	if err != nil {
		return nil, err
	}
	res, err := a.claude().ConfigureMCPServers(a.manifest, ids, keys)
	if err != nil {
		return nil, err
	}
	if res.Backup != "" {
		logger.Info("%s\n", i18n.T("common.backedUp", res.Backup))
	}
	reportMCP(res.Configured, res.Skipped)
	return res.Configured, nil
}

// configureCodexMCP resolves and writes Codex's MCP servers.
func configureCodexMCP(a *app, st *state.State, flag, lang string, skipPrompt bool) ([]string, error) {
	ids, err := a.resolver(st, skipPrompt).MCPServices(flag, lang)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		logger.Info("%s\n", i18n.T("mcp.none"))
		return ids, nil
	}
	keys, err := mcpKeys(a, ids, lang, skipPrompt)
	if err != nil {
		return nil, err
	}
	res, err := a.codex().ConfigureMCP(a.manifest, ids, keys)
	if err != nil {
		return nil, err
	}
	reportMCP(res.Configured, res.Skipped)
	return res.Configured, nil
}

// Codex credential modes offered by the prompt.
const (
	codexOfficialLogin = "official-login"
	codexOfficialKey   = "official-key"
	codexCustom        = "custom"
	codexSkip          = "skip"
)

// providerID derives a provider id from an API host.
func providerID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "custom"
	}
	return strings.ReplaceAll(u.Hostname(), ".", "-")
}

// configureCodexAPI sets the Codex model provider. --api-url selects a
// custom provider, --api-key alone the official API with a key.
func configureCodexAPI(a *app, f apiFlags, skipPrompt bool) error {
	cx := a.codex()
	var mode string
	switch {
	case config.APIType(f.Type) == config.APISkip:
		mode = codexSkip
	case f.URL != "":
		mode = codexCustom
	case f.Key != "":
		mode = codexOfficialKey
	case skipPrompt:
		mode = codexSkip
	default:
		choice, err := a.prompter.Select(i18n.T("codex.selectAPIMode"), []prompt.Option{
			{Label: i18n.T("codex.officialLogin"), Value: codexOfficialLogin},
			{Label: i18n.T("codex.officialKey"), Value: codexOfficialKey},
			{Label: i18n.T("codex.customProvider"), Value: codexCustom},
			{Label: i18n.T("api.skip"), Value: codexSkip},
		}, codexOfficialLogin)
		if err != nil {
			return err
		}
		mode = choice
	}

	key := f.Key
	askKey := func() error {
		if key != "" {
			return nil
		}
		if skipPrompt {
			return &config.ValidationError{Flag: "api-key", Reason: i18n.T("api.keyRequired")}
		}
		var err error
		key, err = a.prompter.Password(i18n.T("api.enterAPIKey"), prompt.Required(i18n.T("api.keyRequired")))
		return err
	}

	switch mode {
	case codexSkip:
		logger.Info("%s\n", i18n.T("api.skipped"))
		return nil
	case codexOfficialLogin:
		if err := cx.SwitchProvider(codex.Official); err != nil {
			return err
		}
		logger.Success("%s\n", i18n.T("codex.usingOfficial"))
		return nil
	case codexOfficialKey:
		if err := askKey(); err != nil {
			return err
		}
		if err := cx.ConfigureOfficialKey(key); err != nil {
			return err
		}
		logger.Success("%s\n", i18n.T("codex.usingOfficial"))
		return nil
	}

	baseURL := f.URL
	var err error
	if baseURL == "" {
		if baseURL, err = a.prompter.Input(i18n.T("api.enterURL"), "", requiredURL); err != nil {
			return err
		}
	} else if err := requiredURL(baseURL); err != nil {
		return err
	}
	id := providerID(baseURL)
	if !skipPrompt {
		if id, err = a.prompter.Input(i18n.T("codex.enterProviderID"), id, prompt.Required(i18n.T("codex.providerIDRequired"))); err != nil {
			return err
		}
	}
	if err := askKey(); err != nil {
		return err
	}
	p := codex.Provider{ID: id, Name: id, BaseURL: baseURL}
	if err := cx.ConfigureAPI(p, key); err != nil {
		return err
	}
	logger.Success("%s\n", i18n.T("codex.providerConfigured", id))
	return nil
}
