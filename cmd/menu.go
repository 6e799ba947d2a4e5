package cmd

import (
	"context"

	"zcf/internal/config"
	"zcf/internal/i18n"
	"zcf/internal/logger"
	"zcf/internal/prompt"
	"zcf/internal/state"
)

// Menu entries. Values double as the shortcut keys shown next to them.
const (
	menuInit        = "1"
	menuWorkflows   = "2"
	menuAPI         = "3"
	menuMCP         = "4"
	menuModel       = "5"
	menuMemory      = "6"
	menuPermissions = "7"
	menuCCR         = "r"
	menuCCUsage     = "u"
	menuCCLine      = "l"
	menuSwitchTool  = "s"
	menuLang        = "0"
	menuUninstall   = "-"
	menuCheck       = "+"
	menuQuit        = "q"
)

func menuOptions(tool config.CodeToolType) []prompt.Option {
	entry := func(key, label string) prompt.Option {
		return prompt.Option{Key: key, Value: key, Label: key + ". " + i18n.T(label)}
	}
	opts := []prompt.Option{
		entry(menuInit, "menu.init"),
		entry(menuWorkflows, "menu.workflows"),
		entry(menuAPI, "menu.api"),
		entry(menuMCP, "menu.mcp"),
	}
	if tool == config.CodeToolCodex {
		opts = append(opts, entry(menuMemory, "menu.systemPrompt"))
	} else {
		opts = append(opts,
			entry(menuModel, "menu.model"),
			entry(menuMemory, "menu.memory"),
			entry(menuPermissions, "menu.permissions"),
			entry(menuCCR, "menu.ccr"),
		)
	}
	opts = append(opts, entry(menuCCUsage, "menu.ccusage"))
	if tool != config.CodeToolCodex {
		opts = append(opts, entry(menuCCLine, "menu.ccline"))
	}
	return append(opts,
		entry(menuSwitchTool, "menu.switchTool"),
		entry(menuLang, "menu.lang"),
		entry(menuUninstall, "menu.uninstall"),
		entry(menuCheck, "menu.checkUpdates"),
		entry(menuQuit, "menu.quit"),
	)
}

// runMenu is the default command. It loops until the user quits; a failing
// action is reported and the menu shows again.
func runMenu(ctx context.Context, a *app, lang string) error {
	st := a.loadState()
	if _, err := a.useLang(st, lang, false); err != nil {
		return err
	}
	for {
		st = a.loadState()
		tool, err := a.resolver(st, true).CodeTool("")
		if err != nil {
			return err
		}
		logger.Title("%s\n", i18n.T("menu.title", tool))
		choice, err := a.prompter.Select(i18n.T("menu.choose"), menuOptions(tool), menuInit)
		if err != nil {
			return err
		}
		if choice == menuQuit {
			logger.Info("%s\n", i18n.T("menu.bye"))
			return nil
		}
		if err := runMenuAction(ctx, a, st, tool, choice); err != nil {
			if isCancel(err) {
				return err
			}
			logger.Error("%s %v\n", i18n.T("common.error"), err)
		}
	}
}

func runMenuAction(ctx context.Context, a *app, st *state.State, tool config.CodeToolType, choice string) error {
	lang := i18n.Language()
	r := a.resolver(st, false)
	codexTool := tool == config.CodeToolCodex

	switch choice {
	case menuInit:
		return runInit(ctx, a, initRun{
			opts:       config.InitOptions{Lang: lang, CodeType: string(tool), InstallCometixLine: true},
			askCometix: true,
		})

	case menuWorkflows:
		templateLang, err := r.TemplateLang("", lang)
		if err != nil {
			return err
		}
		if codexTool {
			ids, err := r.Workflows("", templateLang)
			if err != nil {
				return err
			}
			prompts, err := a.codex().InstallPrompts(a.manifest, ids, templateLang)
			if err != nil {
				return err
			}
			logger.Success("%s\n", i18n.T("codex.promptsInstalled", len(prompts)))
			return a.saveState(func(s *state.State) { s.Workflows = ids })
		}
		ids, err := installWorkflows(a, r, "", templateLang)
		if err != nil {
			return err
		}
		return a.saveState(func(s *state.State) { s.Workflows = ids })

	case menuAPI:
		if codexTool {
			return configureCodexAPI(a, apiFlags{}, false)
		}
		return configureClaudeAPI(ctx, a, apiFlags{}, false)

	case menuMCP:
		var ids []string
		var err error
		if codexTool {
			ids, err = configureCodexMCP(a, st, "", lang, false)
		} else {
			ids, err = configureClaudeMCP(a, st, "", lang, false)
		}
		if err != nil {
			return err
		}
		return a.saveState(func(s *state.State) { s.MCPServices = ids })

	case menuModel:
		return chooseModel(a)

	case menuMemory:
		if codexTool {
			return chooseSystemPromptStyle(a, st, lang)
		}
		return configureMemory(a, st, lang)

	case menuPermissions:
		if err := a.claude().ImportRecommendedEnvPermissions(); err != nil {
			return err
		}
		logger.Success("%s\n", i18n.T("permissions.imported"))
		return nil

	case menuCCR:
		return runCCRMenu(ctx, a)

	case menuCCUsage:
		mode, err := a.prompter.Select(i18n.T("ccusage.selectMode"), []prompt.Option{
			{Label: i18n.T("ccusage.daily"), Value: "daily"},
			{Label: i18n.T("ccusage.monthly"), Value: "monthly"},
			{Label: i18n.T("ccusage.session"), Value: "session"},
			{Label: i18n.T("ccusage.blocks"), Value: "blocks"},
		}, "daily")
		if err != nil {
			return err
		}
		return a.installer().RunCCUsage(ctx, mode)

	case menuCCLine:
		return setupCCLine(ctx, a)

	case menuSwitchTool:
		next := config.CodeToolCodex
		if codexTool {
			next = config.CodeToolClaudeCode
		}
		if err := a.saveState(func(s *state.State) { s.CodeToolType = string(next) }); err != nil {
			return err
		}
		logger.Success("%s\n", i18n.T("menu.toolSwitched", next))
		return nil

	case menuLang:
		next, err := a.prompter.Select(i18n.T("prompt.selectDisplayLang"), []prompt.Option{
			{Label: "简体中文", Value: config.LangZhCN},
			{Label: "English", Value: config.LangEn},
		}, lang)
		if err != nil {
			return err
		}
		i18n.SetLanguage(next)
		return a.saveState(func(s *state.State) { s.PreferredLang = next })

	case menuUninstall:
		return runUninstall(ctx, a, uninstallOptions{Lang: lang, Mode: string(config.UninstallInteractive)})

	case menuCheck:
		return runCheckUpdates(ctx, a, false)
	}
	return nil
}

func chooseModel(a *app) error {
	c := a.claude()
	opts := make([]prompt.Option, 0, len(config.Models))
	for _, m := range config.Models {
		opts = append(opts, prompt.Option{Label: i18n.T("model." + m), Value: m})
	}
	model, err := a.prompter.Select(i18n.T("model.select"), opts, c.CurrentModel())
	if err != nil {
		return err
	}
	if err := c.SetModel(model); err != nil {
		return err
	}
	logger.Success("%s\n", i18n.T("model.set", model))
	return nil
}

// configureMemory changes the AI output language or the output styles. The
// saved values are offered as defaults rather than applied silently.
func configureMemory(a *app, st *state.State, lang string) error {
	choice, err := a.prompter.Select(i18n.T("memory.select"), []prompt.Option{
		{Label: i18n.T("memory.aiLanguage"), Value: "language"},
		{Label: i18n.T("memory.outputStyles"), Value: "styles"},
	}, "language")
	if err != nil {
		return err
	}

	fresh := *st
	fresh.AIOutputLang = ""
	r := a.resolver(&fresh, false)
	templateLang, err := r.TemplateLang("", lang)
	if err != nil {
		return err
	}

	if choice == "styles" {
		styles, def, err := installOutputStyles(a, r, "", "", lang, templateLang)
		if err != nil {
			return err
		}
		return a.saveState(func(s *state.State) {
			s.OutputStyles = styles
			s.DefaultOutputStyle = def
		})
	}

	aiLang, err := r.AIOutputLang("", templateLang)
	if err != nil {
		return err
	}
	if err := a.claude().SetAIOutputLanguage(aiLang); err != nil {
		return err
	}
	logger.Success("%s\n", i18n.T("memory.languageSet", aiLang))
	return a.saveState(func(s *state.State) { s.AIOutputLang = aiLang })
}

func chooseSystemPromptStyle(a *app, st *state.State, lang string) error {
	r := a.resolver(st, false)
	templateLang, err := r.TemplateLang("", lang)
	if err != nil {
		return err
	}
	style, err := r.SystemPromptStyle("", lang)
	if err != nil {
		return err
	}
	aiLang := st.AIOutputLang
	if aiLang == "" {
		aiLang = templateLang
	}
	if err := a.codex().SetSystemPromptStyle(a.manifest, style, templateLang, aiLang); err != nil {
		return err
	}
	logger.Success("%s\n", i18n.T("codex.styleSet", style))
	return a.saveState(func(s *state.State) { s.Codex.SystemPromptStyle = style })
}
