// Package options resolves every user choice through the same ordered
// fallback: command-line flag, environment, saved preference, interactive
// prompt, built-in default. The first step that yields a value wins.
package options

import (
	"zcf/internal/config"
	"zcf/internal/i18n"
	"zcf/internal/prompt"
	"zcf/internal/state"
	"zcf/internal/templates"
)

// Environment variables consulted between flags and the preference file.
const (
	EnvLang     = "ZCF_LANG"
	EnvCodeTool = "ZCF_CODE_TOOL"
)

// Step yields a value, reports whether it produced one, or aborts the chain
// with an error.
type Step[T any] func() (T, bool, error)

// Resolve runs steps in order and returns the first value produced. If no
// step produces a value the zero value is returned.
func Resolve[T any](steps ...Step[T]) (T, error) {
	for _, step := range steps {
		v, ok, err := step()
		if err != nil {
			var zero T
			return zero, err
		}
		if ok {
			return v, nil
		}
	}
	var zero T
	return zero, nil
}

// Value yields v when it is not the zero value.
func Value[T comparable](v T) Step[T] {
	return func() (T, bool, error) {
		var zero T
		return v, v != zero, nil
	}
}

// Valid yields v when accept(v) is true. Saved values pass through this so a
// stale preference file cannot inject an unknown choice.
func Valid[T any](v T, accept func(T) bool) Step[T] {
	return func() (T, bool, error) {
		return v, accept(v), nil
	}
}

// Default always yields v.
func Default[T any](v T) Step[T] {
	return func() (T, bool, error) { return v, true, nil }
}

// Ask yields the prompt's answer unless prompting is disabled.
func Ask[T any](enabled bool, ask func() (T, error)) Step[T] {
	return func() (T, bool, error) {
		var zero T
		if !enabled {
			return zero, false, nil
		}
		v, err := ask()
		if err != nil {
			return zero, false, err
		}
		return v, true, nil
	}
}

// Resolver binds the chain steps to one command invocation.
type Resolver struct {
	Prompter   prompt.Prompter
	Manifest   *templates.Manifest
	Saved      *state.State
	SkipPrompt bool
	Getenv     func(string) string
}

func (r *Resolver) env(key string) string {
	if r.Getenv == nil {
		return ""
	}
	return r.Getenv(key)
}

func (r *Resolver) saved() *state.State {
	if r.Saved == nil {
		return state.Default()
	}
	return r.Saved
}

func (r *Resolver) interactive() bool {
	return !r.SkipPrompt && r.Prompter != nil
}

func isLang(s string) bool { return i18n.IsSupported(s) }

func languageOptions() []prompt.Option {
	return []prompt.Option{
		{Label: "简体中文", Value: config.LangZhCN},
		{Label: "English", Value: config.LangEn},
	}
}

// DisplayLang resolves the language ZCF talks to the user in. A preference
// file that already exists wins over asking again.
func (r *Resolver) DisplayLang(flag string) (string, error) {
	return Resolve(
		Value(flag),
		Valid(r.env(EnvLang), isLang),
		Valid(r.savedLang(), isLang),
		Ask(r.interactive(), func() (string, error) {
			return r.Prompter.Select(i18n.T("prompt.selectDisplayLang"), languageOptions(), config.LangEn)
		}),
		Default(config.LangEn),
	)
}

// savedLang is the saved display language, but only once a preference file
// has actually been written; Default() also reports en.
func (r *Resolver) savedLang() string {
	if r.Saved == nil || r.Saved.LastUpdated == "" {
		return ""
	}
	return r.Saved.PreferredLang
}

// TemplateLang resolves the language of the copied templates. Without a
// saved choice the display language is offered as the default.
func (r *Resolver) TemplateLang(flag, displayLang string) (string, error) {
	return Resolve(
		Value(flag),
		Valid(r.saved().TemplateLang, isLang),
		Ask(r.interactive(), func() (string, error) {
			return r.Prompter.Select(i18n.T("prompt.selectTemplateLang"), languageOptions(), displayLang)
		}),
		Default(templates.Lang(displayLang)),
	)
}

// AIOutputLang resolves the language the assistant answers in. Any
// non-empty string is valid; "custom" in the prompt asks for free text.
func (r *Resolver) AIOutputLang(flag, templateLang string) (string, error) {
	saved := r.saved().AIOutputLang
	return Resolve(
		Value(flag),
		Value(saved),
		Ask(r.interactive(), func() (string, error) {
			opts := []prompt.Option{
				{Label: "简体中文", Value: config.LangZhCN},
				{Label: "English", Value: config.LangEn},
				{Label: i18n.T("prompt.customLanguage"), Value: "custom"},
			}
			choice, err := r.Prompter.Select(i18n.T("prompt.selectAIOutputLang"), opts, templateLang)
			if err != nil || choice != "custom" {
				return choice, err
			}
			return r.Prompter.Input(i18n.T("prompt.enterCustomLanguage"), "", prompt.Required(i18n.T("prompt.languageRequired")))
		}),
		Default(templateLang),
	)
}

// CodeTool resolves which assistant is managed.
func (r *Resolver) CodeTool(flag string) (config.CodeToolType, error) {
	valid := func(v config.CodeToolType) bool {
		return v == config.CodeToolClaudeCode || v == config.CodeToolCodex
	}
	return Resolve(
		Value(config.CodeToolType(flag)),
		Valid(config.CodeToolType(r.env(EnvCodeTool)), valid),
		Valid(config.CodeToolType(r.saved().CodeToolType), valid),
		Default(config.CodeToolClaudeCode),
	)
}

// listFlag turns a list flag into ids: "" yields nothing, "skip" an empty
// selection, "all" every known id.
func listFlag(flag string, all []string) Step[[]string] {
	return func() ([]string, bool, error) {
		switch flag {
		case "":
			return nil, false, nil
		case config.ListSkip:
			return []string{}, true, nil
		case config.ListAll:
			return all, true, nil
		}
		return config.ParseList(flag), true, nil
	}
}

// known filters ids down to those in allowed, keeping order.
func known(ids, allowed []string) []string {
	ok := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		ok[a] = true
	}
	out := []string{}
	for _, id := range ids {
		if ok[id] {
			out = append(out, id)
		}
	}
	return out
}

// selection resolves a multi-choice list. Saved choices are used as-is in
// skip-prompt mode and pre-selected otherwise.
func (r *Resolver) selection(flag string, all, saved, def []string, title string, opts []prompt.Option) ([]string, error) {
	saved = known(saved, all)
	preselect := def
	if len(saved) > 0 {
		preselect = saved
	}
	return Resolve(
		listFlag(flag, all),
		Valid(saved, func(s []string) bool { return r.SkipPrompt && len(s) > 0 }),
		Ask(r.interactive(), func() ([]string, error) {
			return r.Prompter.MultiSelect(title, opts, preselect)
		}),
		Default(def),
	)
}

// MCPServices resolves the MCP services to configure. Skip-prompt mode
// defaults to every service that needs no API key.
func (r *Resolver) MCPServices(flag, lang string) ([]string, error) {
	m := r.Manifest
	opts := make([]prompt.Option, 0, len(m.MCPServices))
	for _, s := range m.MCPServices {
		opts = append(opts, prompt.Option{Label: s.Name.Get(lang), Value: s.ID, Hint: s.Description.Get(lang)})
	}
	return r.selection(flag, m.MCPServiceIDs(), r.saved().MCPServices, m.KeylessMCPServiceIDs(),
		i18n.T("prompt.selectMCPServices"), opts)
}

// Workflows resolves the workflows to install. The default is all of them.
func (r *Resolver) Workflows(flag, lang string) ([]string, error) {
	m := r.Manifest
	opts := make([]prompt.Option, 0, len(m.Workflows))
	var defaults []string
	for _, w := range m.Workflows {
		opts = append(opts, prompt.Option{Label: w.Name.Get(lang), Value: w.ID, Hint: w.Description.Get(lang)})
		if w.Default {
			defaults = append(defaults, w.ID)
		}
	}
	if r.SkipPrompt || len(defaults) == 0 {
		defaults = m.WorkflowIDs()
	}
	return r.selection(flag, m.WorkflowIDs(), r.saved().Workflows, defaults,
		i18n.T("prompt.selectWorkflows"), opts)
}

// OutputStyles resolves the custom output styles to install. Built-in styles
// ship with Claude Code and are dropped from the result.
func (r *Resolver) OutputStyles(flag, lang string) ([]string, error) {
	m := r.Manifest
	custom := m.CustomStyleIDs()
	opts := make([]prompt.Option, 0, len(custom))
	for _, id := range custom {
		s, _ := m.OutputStyle(id)
		opts = append(opts, prompt.Option{Label: s.Name.Get(lang), Value: id, Hint: s.Description.Get(lang)})
	}
	ids, err := r.selection(flag, custom, r.saved().OutputStyles, custom,
		i18n.T("prompt.selectOutputStyles"), opts)
	if err != nil {
		return nil, err
	}
	return known(ids, custom), nil
}

// DefaultOutputStyle resolves the style Claude Code starts with. Choices are
// the installed custom styles plus the built-in ones.
func (r *Resolver) DefaultOutputStyle(flag string, installed []string, lang string) (string, error) {
	m := r.Manifest
	choices := append([]string{}, installed...)
	for _, s := range m.OutputStyles {
		if !s.Custom {
			choices = append(choices, s.ID)
		}
	}
	isChoice := func(id string) bool {
		for _, c := range choices {
			if c == id {
				return true
			}
		}
		return false
	}
	def := m.DefaultStyleID()
	if !isChoice(def) {
		def = choices[0]
	}
	return Resolve(
		Value(flag),
		Valid(r.saved().DefaultOutputStyle, func(id string) bool { return r.SkipPrompt && isChoice(id) }),
		Ask(r.interactive(), func() (string, error) {
			opts := make([]prompt.Option, 0, len(choices))
			for _, id := range choices {
				s, _ := m.OutputStyle(id)
				opts = append(opts, prompt.Option{Label: s.Name.Get(lang), Value: id, Hint: s.Description.Get(lang)})
			}
			pre := def
			if saved := r.saved().DefaultOutputStyle; isChoice(saved) {
				pre = saved
			}
			return r.Prompter.Select(i18n.T("prompt.selectDefaultOutputStyle"), opts, pre)
		}),
		Default(def),
	)
}

// SystemPromptStyle resolves the style Codex's AGENTS.md is built from.
// Only styles with a template qualify.
func (r *Resolver) SystemPromptStyle(flag, lang string) (string, error) {
	m := r.Manifest
	custom := m.CustomStyleIDs()
	isCustom := func(id string) bool {
		for _, c := range custom {
			if c == id {
				return true
			}
		}
		return false
	}
	if err := config.ValidateSystemPromptStyle(flag, m); err != nil {
		return "", err
	}
	def := m.DefaultStyleID()
	if !isCustom(def) && len(custom) > 0 {
		def = custom[0]
	}
	return Resolve(
		Valid(flag, isCustom),
		Valid(r.saved().Codex.SystemPromptStyle, func(id string) bool { return r.SkipPrompt && isCustom(id) }),
		Ask(r.interactive(), func() (string, error) {
			opts := make([]prompt.Option, 0, len(custom))
			for _, id := range custom {
				s, _ := m.OutputStyle(id)
				opts = append(opts, prompt.Option{Label: s.Name.Get(lang), Value: id, Hint: s.Description.Get(lang)})
			}
			pre := def
			if saved := r.saved().Codex.SystemPromptStyle; isCustom(saved) {
				pre = saved
			}
			return r.Prompter.Select(i18n.T("prompt.selectSystemPromptStyle"), opts, pre)
		}),
		Default(def),
	)
}
