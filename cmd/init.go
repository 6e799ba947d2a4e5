package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"zcf/internal/claude"
	"zcf/internal/config"
	"zcf/internal/i18n"
	"zcf/internal/installer"
	"zcf/internal/logger"
	"zcf/internal/options"
	"zcf/internal/prompt"
	"zcf/internal/state"
)

// initRun is one init invocation: the parsed flags plus what they imply.
type initRun struct {
	opts config.InitOptions
	// askCometix is set when --install-cometix-line was not given.
	askCometix bool
}

func newInitCmd(a *app) *cobra.Command {
	var run initRun
	o := &run.opts
	cmd := &cobra.Command{
		Use:     "init",
		Aliases: []string{"i"},
		Short:   "Install and configure Claude Code or Codex",
		RunE: func(cmd *cobra.Command, args []string) error {
			run.askCometix = !cmd.Flags().Changed("install-cometix-line")
			return runInit(cmd.Context(), a, run)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.Lang, "lang", "l", "", "Display language (zh-CN, en)")
	f.StringVarP(&o.ConfigLang, "config-lang", "c", "", "Template language (zh-CN, en)")
	f.StringVarP(&o.AIOutputLang, "ai-output-lang", "a", "", "Language the assistant replies in (zh-CN, en or any language name)")
	f.StringVarP(&o.AllLang, "all-lang", "g", "", "Set display, template and AI output language at once")
	f.BoolVarP(&o.Force, "force", "f", false, "Back up and overwrite an existing configuration")
	f.BoolVarP(&o.SkipPrompt, "skip-prompt", "s", false, "Do not ask anything; use flags, saved choices and defaults")
	f.StringVarP(&o.ConfigAction, "config-action", "r", "", "What to do with an existing config (new, backup, merge, docs-only, skip)")
	f.StringVarP(&o.APIType, "api-type", "t", "", "API credential type (auth_token, api_key, ccr_proxy, skip)")
	f.StringVarP(&o.APIKey, "api-key", "k", "", "API key or auth token")
	f.StringVarP(&o.APIURL, "api-url", "u", "", "Custom API base URL")
	f.StringVarP(&o.MCPServices, "mcp-services", "m", "", "Comma-separated MCP services, \"all\" or \"skip\"")
	f.StringVarP(&o.Workflows, "workflows", "w", "", "Comma-separated workflows, \"all\" or \"skip\"")
	f.StringVarP(&o.OutputStyles, "output-styles", "o", "", "Comma-separated output styles, \"all\" or \"skip\"")
	f.StringVarP(&o.DefaultOutputStyle, "default-output-style", "d", "", "Output style Claude Code starts with")
	f.BoolVarP(&o.InstallCometixLine, "install-cometix-line", "x", true, "Install the CCometixLine statusline")
	f.StringVarP(&o.CodeType, "code-type", "T", "", "Assistant to configure (claude-code, codex)")
	return cmd
}

func runInit(ctx context.Context, a *app, run initRun) error {
	opts := &run.opts
	if err := config.ValidateInitOptions(opts, a.manifest); err != nil {
		return err
	}
	st := a.loadState()
	lang, err := a.useLang(st, opts.Lang, opts.SkipPrompt)
	if err != nil {
		return err
	}
	r := a.resolver(st, opts.SkipPrompt)
	tool, err := r.CodeTool(opts.CodeType)
	if err != nil {
		return err
	}
	logger.Title("%s\n", i18n.T("init.title", tool))
	if tool == config.CodeToolCodex {
		return runCodexInit(ctx, a, st, r, run, lang)
	}
	return runClaudeInit(ctx, a, st, r, run, lang)
}

// configAction decides how existing settings are treated. Without existing
// settings the answer is always new. An explicit new over existing settings
// still backs up first.
func configAction(a *app, c *claude.Configurator, opts *config.InitOptions) (config.ConfigAction, error) {
	if !c.HasConfig() {
		return config.ActionNew, nil
	}
	action := config.ConfigAction(opts.ConfigAction)
	switch {
	case opts.Force:
		action = config.ActionBackup
	case action != "":
	case opts.SkipPrompt:
		action = config.ActionBackup
	default:
		choice, err := a.prompter.Select(i18n.T("init.existingConfig"), configActionOptions(), string(config.ActionBackup))
		if err != nil {
			return "", err
		}
		action = config.ConfigAction(choice)
	}
	if action == config.ActionNew {
		action = config.ActionBackup
	}
	return action, nil
}

func configActionOptions() []prompt.Option {
	opts := make([]prompt.Option, 0, len(config.ConfigActions))
	for _, act := range config.ConfigActions {
		if act == config.ActionNew {
			continue
		}
		opts = append(opts, prompt.Option{
			Label: i18n.T("init.action." + string(act)),
			Value: string(act),
			Hint:  i18n.T("init.action." + string(act) + "Hint"),
		})
	}
	return opts
}

func runClaudeInit(ctx context.Context, a *app, st *state.State, r *options.Resolver, run initRun, lang string) error {
	opts := &run.opts
	templateLang, err := r.TemplateLang(opts.ConfigLang, lang)
	if err != nil {
		return err
	}
	aiLang, err := r.AIOutputLang(opts.AIOutputLang, templateLang)
	if err != nil {
		return err
	}

	if _, err := a.ensureInstalled(ctx, installer.ClaudeCode, opts.SkipPrompt); err != nil {
		return err
	}

	c := a.claude()
	action, err := configAction(a, c, opts)
	if err != nil {
		return err
	}
	if action == config.ActionSkip {
		logger.Info("%s\n", i18n.T("init.skipped"))
		return a.saveState(func(s *state.State) {
			s.PreferredLang = lang
			s.CodeToolType = string(config.CodeToolClaudeCode)
		})
	}

	backup, err := c.ApplySettingsTemplate(action)
	if err != nil {
		return err
	}
	if backup != "" {
		logger.Info("%s\n", i18n.T("common.backedUp", backup))
	}

	workflows, err := installWorkflows(a, r, opts.Workflows, templateLang)
	if err != nil {
		return err
	}
	styles, defStyle, err := installOutputStyles(a, r, opts.OutputStyles, opts.DefaultOutputStyle, lang, templateLang)
	if err != nil {
		return err
	}
	if err := c.SetAIOutputLanguage(aiLang); err != nil {
		return err
	}
	logger.Success("%s\n", i18n.T("memory.languageSet", aiLang))

	var mcps []string
	if action != config.ActionDocsOnly {
		api := apiFlags{Type: opts.APIType, Key: opts.APIKey, URL: opts.APIURL}
		if err := configureClaudeAPI(ctx, a, api, opts.SkipPrompt); err != nil {
			return err
		}
		if mcps, err = configureClaudeMCP(a, st, opts.MCPServices, lang, opts.SkipPrompt); err != nil {
			return err
		}
		if err := maybeInstallCCLine(ctx, a, run); err != nil {
			return err
		}
	}

	err = a.saveState(func(s *state.State) {
		s.PreferredLang = lang
		s.TemplateLang = templateLang
		s.AIOutputLang = aiLang
		s.Workflows = workflows
		s.OutputStyles = styles
		s.DefaultOutputStyle = defStyle
		s.CodeToolType = string(config.CodeToolClaudeCode)
		if action != config.ActionDocsOnly {
			s.MCPServices = mcps
		}
	})
	if err != nil {
		return err
	}
	logger.Success("%s\n", i18n.T("init.complete"))
	return nil
}

// installWorkflows resolves and copies workflows, printing one line each.
// A failing workflow is reported and the rest continue.
func installWorkflows(a *app, r *options.Resolver, flag, templateLang string) ([]string, error) {
	ids, err := r.Workflows(flag, templateLang)
	if err != nil {
		return nil, err
	}
	var installed []string
	for _, res := range a.claude().InstallWorkflows(a.manifest, ids, templateLang) {
		name := res.ID
		if wf, ok := a.manifest.Workflow(res.ID); ok {
			name = wf.Name.Get(templateLang)
		}
		if res.Err != nil {
			logger.Error("%s\n", i18n.T("workflow.failed", name, res.Err))
			continue
		}
		logger.Success("%s\n", i18n.T("workflow.installed", name))
		installed = append(installed, res.ID)
	}
	return installed, nil
}

// installOutputStyles resolves, copies and activates output styles.
func installOutputStyles(a *app, r *options.Resolver, flag, defFlag, lang, templateLang string) ([]string, string, error) {
	ids, err := r.OutputStyles(flag, lang)
	if err != nil {
		return nil, "", err
	}
	def, err := r.DefaultOutputStyle(defFlag, ids, lang)
	if err != nil {
		return nil, "", err
	}
	if _, err := a.claude().SetOutputStyles(a.manifest, ids, def, templateLang); err != nil {
		return nil, "", err
	}
	logger.Success("%s\n", i18n.T("outputStyle.installed", len(ids), def))
	return ids, def, nil
}

func maybeInstallCCLine(ctx context.Context, a *app, run initRun) error {
	install := run.opts.InstallCometixLine
	if run.askCometix && !run.opts.SkipPrompt {
		var err error
		if install, err = a.prompter.Confirm(i18n.T("ccline.confirm"), true); err != nil {
			return err
		}
	}
	if !install {
		return nil
	}
	return setupCCLine(ctx, a)
}

// setupCCLine installs CCometixLine and points the Claude Code statusline at it.
func setupCCLine(ctx context.Context, a *app) error {
	if _, err := a.ensureInstalled(ctx, installer.CCLine, true); err != nil {
		return err
	}
	if err := a.claude().ConfigureStatusline(); err != nil {
		return err
	}
	logger.Success("%s\n", i18n.T("ccline.configured"))
	return nil
}

func runCodexInit(ctx context.Context, a *app, st *state.State, r *options.Resolver, run initRun, lang string) error {
	opts := &run.opts
	templateLang, err := r.TemplateLang(opts.ConfigLang, lang)
	if err != nil {
		return err
	}
	aiLang, err := r.AIOutputLang(opts.AIOutputLang, templateLang)
	if err != nil {
		return err
	}

	if _, err := a.ensureInstalled(ctx, installer.Codex, opts.SkipPrompt); err != nil {
		return err
	}

	cx := a.codex()
	if cx.HasConfig() {
		backup, err := cx.Backup()
		if err != nil {
			return err
		}
		if backup != "" {
			logger.Info("%s\n", i18n.T("common.backedUp", backup))
		}
	}

	style, err := r.SystemPromptStyle(opts.DefaultOutputStyle, lang)
	if err != nil {
		return err
	}
	if err := cx.SetSystemPromptStyle(a.manifest, style, templateLang, aiLang); err != nil {
		return err
	}
	logger.Success("%s\n", i18n.T("codex.styleSet", style))

	workflows, err := r.Workflows(opts.Workflows, templateLang)
	if err != nil {
		return err
	}
	prompts, err := cx.InstallPrompts(a.manifest, workflows, templateLang)
	if err != nil {
		return err
	}
	logger.Success("%s\n", i18n.T("codex.promptsInstalled", len(prompts)))

	if err := configureCodexAPI(a, apiFlags{Type: opts.APIType, Key: opts.APIKey, URL: opts.APIURL}, opts.SkipPrompt); err != nil {
		return err
	}
	mcps, err := configureCodexMCP(a, st, opts.MCPServices, lang, opts.SkipPrompt)
	if err != nil {
		return err
	}

	err = a.saveState(func(s *state.State) {
		s.PreferredLang = lang
		s.TemplateLang = templateLang
		s.AIOutputLang = aiLang
		s.Workflows = workflows
		s.MCPServices = mcps
		s.CodeToolType = string(config.CodeToolCodex)
		s.Codex.SystemPromptStyle = style
	})
	if err != nil {
		return err
	}
	logger.Success("%s\n", i18n.T("init.complete"))
	return nil
}
