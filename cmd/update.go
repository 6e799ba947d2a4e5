package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"zcf/internal/config"
	"zcf/internal/i18n"
	"zcf/internal/logger"
	"zcf/internal/state"
)

// updateOptions are the flags of update. API credentials and MCP servers are
// never touched by update.
type updateOptions struct {
	Lang               string
	ConfigLang         string
	AIOutputLang       string
	SkipPrompt         bool
	Workflows          string
	OutputStyles       string
	DefaultOutputStyle string
	CodeType           string
}

func newUpdateCmd(a *app) *cobra.Command {
	var o updateOptions
	cmd := &cobra.Command{
		Use:     "update",
		Aliases: []string{"u"},
		Short:   "Refresh workflows, output styles and AI memory from the bundled templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd.Context(), a, o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.Lang, "lang", "l", "", "Display language (zh-CN, en)")
	f.StringVarP(&o.ConfigLang, "config-lang", "c", "", "Template language (zh-CN, en)")
	f.StringVarP(&o.AIOutputLang, "ai-output-lang", "a", "", "Language the assistant replies in")
	f.BoolVarP(&o.SkipPrompt, "skip-prompt", "s", false, "Do not ask anything; use flags, saved choices and defaults")
	f.StringVarP(&o.Workflows, "workflows", "w", "", "Comma-separated workflows, \"all\" or \"skip\"")
	f.StringVarP(&o.OutputStyles, "output-styles", "o", "", "Comma-separated output styles, \"all\" or \"skip\"")
	f.StringVarP(&o.DefaultOutputStyle, "default-output-style", "d", "", "Output style Claude Code starts with")
	f.StringVarP(&o.CodeType, "code-type", "T", "", "Assistant to update (claude-code, codex)")
	return cmd
}

func runUpdate(_ context.Context, a *app, o updateOptions) error {
	check := config.InitOptions{
		Lang:               o.Lang,
		ConfigLang:         o.ConfigLang,
		Workflows:          o.Workflows,
		OutputStyles:       o.OutputStyles,
		DefaultOutputStyle: o.DefaultOutputStyle,
		CodeType:           o.CodeType,
	}
	if err := config.ValidateInitOptions(&check, a.manifest); err != nil {
		return err
	}

	st := a.loadState()
	lang, err := a.useLang(st, o.Lang, o.SkipPrompt)
	if err != nil {
		return err
	}
	r := a.resolver(st, o.SkipPrompt)
	tool, err := r.CodeTool(o.CodeType)
	if err != nil {
		return err
	}
	templateLang, err := r.TemplateLang(o.ConfigLang, lang)
	if err != nil {
		return err
	}
	aiLang, err := r.AIOutputLang(o.AIOutputLang, templateLang)
	if err != nil {
		return err
	}
	logger.Title("%s\n", i18n.T("update.title", tool))

	if tool == config.CodeToolCodex {
		cx := a.codex()
		style, err := r.SystemPromptStyle(o.DefaultOutputStyle, lang)
		if err != nil {
			return err
		}
		if err := cx.SetSystemPromptStyle(a.manifest, style, templateLang, aiLang); err != nil {
			return err
		}
		workflows, err := r.Workflows(o.Workflows, templateLang)
		if err != nil {
			return err
		}
		prompts, err := cx.InstallPrompts(a.manifest, workflows, templateLang)
		if err != nil {
			return err
		}
		logger.Success("%s\n", i18n.T("codex.promptsInstalled", len(prompts)))
		err = a.saveState(func(s *state.State) {
			s.PreferredLang = lang
			s.TemplateLang = templateLang
			s.AIOutputLang = aiLang
			s.Workflows = workflows
			s.Codex.SystemPromptStyle = style
		})
		if err != nil {
			return err
		}
		logger.Success("%s\n", i18n.T("update.complete"))
		return nil
	}

	c := a.claude()
	backup, err := c.ApplySettingsTemplate(config.ActionDocsOnly)
	if err != nil {
		return err
	}
	if backup != "" {
		logger.Info("%s\n", i18n.T("common.backedUp", backup))
	}
	workflows, err := installWorkflows(a, r, o.Workflows, templateLang)
	if err != nil {
		return err
	}
	styles, defStyle, err := installOutputStyles(a, r, o.OutputStyles, o.DefaultOutputStyle, lang, templateLang)
	if err != nil {
		return err
	}
	if err := c.SetAIOutputLanguage(aiLang); err != nil {
		return err
	}
	err = a.saveState(func(s *state.State) {
		s.PreferredLang = lang
		s.TemplateLang = templateLang
		s.AIOutputLang = aiLang
		s.Workflows = workflows
		s.OutputStyles = styles
		s.DefaultOutputStyle = defStyle
	})
	if err != nil {
		return err
	}
	logger.Success("%s\n", i18n.T("update.complete"))
	return nil
}
