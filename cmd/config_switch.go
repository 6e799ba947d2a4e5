package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"zcf/internal/codex"
	"zcf/internal/config"
	"zcf/internal/i18n"
	"zcf/internal/logger"
	"zcf/internal/prompt"
	"zcf/internal/state"
)

// officialProfile is the config-switch target that drops custom credentials.
const officialProfile = "official"

type switchOptions struct {
	Lang     string
	CodeType string
	List     bool
}

func newConfigSwitchCmd(a *app) *cobra.Command {
	var o switchOptions
	cmd := &cobra.Command{
		Use:     "config-switch [target]",
		Aliases: []string{"cs"},
		Short:   "Switch between saved API profiles (Claude Code) or providers (Codex)",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			return runConfigSwitch(a, o, target)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.Lang, "lang", "l", "", "Display language (zh-CN, en)")
	f.StringVarP(&o.CodeType, "code-type", "T", "", "Assistant to switch (claude-code, codex)")
	f.BoolVar(&o.List, "list", false, "List the available targets and exit")
	return cmd
}

func runConfigSwitch(a *app, o switchOptions, target string) error {
	if err := config.ValidateCodeType(o.CodeType); err != nil {
		return err
	}
	st := a.loadState()
	// A target on the command line means no prompt is needed.
	noPrompt := target != "" || o.List
	if _, err := a.useLang(st, o.Lang, noPrompt); err != nil {
		return err
	}
	tool, err := a.resolver(st, noPrompt).CodeTool(o.CodeType)
	if err != nil {
		return err
	}

	var targets []string
	var current string
	if tool == config.CodeToolCodex {
		cfg, err := a.codex().Load()
		if err != nil {
			return err
		}
		targets = append([]string{codex.Official}, cfg.ProviderIDs()...)
		current = cfg.ModelProvider
		if current == "" {
			current = codex.Official
		}
	} else {
		targets = append([]string{officialProfile}, profileNames(st)...)
		current = st.ClaudeCode.CurrentProfile
		if current == "" {
			current = officialProfile
		}
	}

	if o.List {
		for _, t := range targets {
			marker := "  "
			if t == current {
				marker = "* "
			}
			logger.Info("%s%s\n", marker, t)
		}
		return nil
	}
	if len(targets) == 1 && target == "" {
		logger.Warn("%s\n", i18n.T("switch.nothing"))
		return nil
	}

	if target == "" {
		opts := make([]prompt.Option, 0, len(targets))
		for _, t := range targets {
			label := t
			if t == current {
				label = i18n.T("switch.current", t)
			}
			opts = append(opts, prompt.Option{Label: label, Value: t})
		}
		if target, err = a.prompter.Select(i18n.T("switch.select"), opts, current); err != nil {
			return err
		}
	}
	if !contains(targets, target) {
		return fmt.Errorf("%s", i18n.T("switch.unknown", target))
	}

	if tool == config.CodeToolCodex {
		if err := a.codex().SwitchProvider(target); err != nil {
			return err
		}
	} else if err := switchClaudeProfile(a, st, target); err != nil {
		return err
	}
	logger.Success("%s\n", i18n.T("switch.done", target))
	return nil
}

func profileNames(st *state.State) []string {
	names := make([]string, 0, len(st.ClaudeCode.Profiles))
	for n := range st.ClaudeCode.Profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func switchClaudeProfile(a *app, st *state.State, name string) error {
	c := a.claude()
	if name == officialProfile {
		if err := c.ClearAPI(); err != nil {
			return err
		}
	} else {
		p := st.ClaudeCode.Profiles[name]
		if err := c.ConfigureAPI(config.APIConfig{Type: p.AuthType, Key: p.APIKey, URL: p.BaseURL}); err != nil {
			return err
		}
	}
	return a.saveState(func(s *state.State) {
		s.ClaudeCode.CurrentProfile = name
		if name == officialProfile {
			s.ClaudeCode.CurrentProfile = ""
		}
	})
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
