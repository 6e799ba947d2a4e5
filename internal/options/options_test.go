package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zcf/internal/config"
	"zcf/internal/prompt"
	"zcf/internal/state"
	"zcf/internal/templates"
)

func env(kv map[string]string) func(string) string {
	return func(k string) string { return kv[k] }
}

func TestResolve_FirstValueWins(t *testing.T) {
	calls := 0
	counting := func() (string, bool, error) { calls++; return "late", true, nil }

	v, err := Resolve(Value(""), Value("flag"), counting)
	require.NoError(t, err)
	assert.Equal(t, "flag", v)
	assert.Zero(t, calls)

	v, err = Resolve(Value(""), counting)
	require.NoError(t, err)
	assert.Equal(t, "late", v)
}

func TestResolve_ErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	v, err := Resolve(
		Ask(true, func() (string, error) { return "", boom }),
		Default("unreached"),
	)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, v)
}

func TestResolve_AskDisabled(t *testing.T) {
	v, err := Resolve(
		Ask(false, func() (string, error) { t.Fatal("prompted"); return "", nil }),
		Default("fallback"),
	)
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)
}

func saved(mutate func(*state.State)) *state.State {
	st := state.Default()
	st.LastUpdated = "2026-01-01T00:00:00Z"
	if mutate != nil {
		mutate(st)
	}
	return st
}

func TestDisplayLang_Precedence(t *testing.T) {
	tests := []struct {
		name   string
		flag   string
		env    map[string]string
		saved  *state.State
		answer []any
		skip   bool
		want   string
	}{
		{name: "flag beats env", flag: "en", env: map[string]string{EnvLang: "zh-CN"}, want: "en"},
		{name: "env beats saved", env: map[string]string{EnvLang: "zh-CN"}, saved: saved(nil), want: "zh-CN"},
		{name: "bad env ignored", env: map[string]string{EnvLang: "fr"}, saved: saved(func(s *state.State) { s.PreferredLang = "zh-CN" }), want: "zh-CN"},
		{name: "saved beats prompt", saved: saved(func(s *state.State) { s.PreferredLang = "zh-CN" }), answer: []any{"en"}, want: "zh-CN"},
		{name: "prompt without saved file", saved: state.Default(), answer: []any{"zh-CN"}, want: "zh-CN"},
		{name: "default in skip-prompt", skip: true, want: "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Resolver{Prompter: prompt.NewScripted(tt.answer...), Manifest: templates.MustLoad(), Saved: tt.saved, SkipPrompt: tt.skip, Getenv: env(tt.env)}
			got, err := r.DisplayLang(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAIOutputLang_Custom(t *testing.T) {
	p := prompt.NewScripted("custom", "Français")
	r := &Resolver{Prompter: p, Manifest: templates.MustLoad()}
	got, err := r.AIOutputLang("", "en")
	require.NoError(t, err)
	assert.Equal(t, "Français", got)

	r = &Resolver{Manifest: templates.MustLoad(), SkipPrompt: true}
	got, err = r.AIOutputLang("", "zh-CN")
	require.NoError(t, err)
	assert.Equal(t, "zh-CN", got, "skip-prompt falls back to the template language")
}

func TestAIOutputLang_Cancelled(t *testing.T) {
	r := &Resolver{Prompter: prompt.NewScripted(prompt.ErrCancelled), Manifest: templates.MustLoad()}
	_, err := r.AIOutputLang("", "en")
	assert.ErrorIs(t, err, prompt.ErrCancelled)
}

func TestCodeTool(t *testing.T) {
	r := &Resolver{Getenv: env(map[string]string{EnvCodeTool: "codex"})}
	got, err := r.CodeTool("")
	require.NoError(t, err)
	assert.Equal(t, config.CodeToolCodex, got)

	got, err = r.CodeTool("claude-code")
	require.NoError(t, err)
	assert.Equal(t, config.CodeToolClaudeCode, got)

	r = &Resolver{Saved: saved(func(s *state.State) { s.CodeToolType = "bogus" })}
	got, err = r.CodeTool("")
	require.NoError(t, err)
	assert.Equal(t, config.CodeToolClaudeCode, got)
}

func TestMCPServices(t *testing.T) {
	m := templates.MustLoad()

	r := &Resolver{Manifest: m, SkipPrompt: true}
	got, err := r.MCPServices("", "en")
	require.NoError(t, err)
	assert.Equal(t, m.KeylessMCPServiceIDs(), got)
	assert.NotContains(t, got, "exa")

	got, err = r.MCPServices("skip", "en")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = r.MCPServices("all", "en")
	require.NoError(t, err)
	assert.Equal(t, m.MCPServiceIDs(), got)

	got, err = r.MCPServices("context7, exa", "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"context7", "exa"}, got)

	r = &Resolver{Manifest: m, SkipPrompt: true, Saved: saved(func(s *state.State) { s.MCPServices = []string{"serena", "gone"} })}
	got, err = r.MCPServices("", "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"serena"}, got, "saved selection is filtered to known ids")

	p := prompt.NewScripted([]string{"Playwright"})
	r = &Resolver{Manifest: m, Prompter: p}
	got, err = r.MCPServices("", "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"Playwright"}, got)
}

func TestWorkflows_SkipPromptDefaultsToAll(t *testing.T) {
	m := templates.MustLoad()
	r := &Resolver{Manifest: m, SkipPrompt: true}
	got, err := r.Workflows("", "en")
	require.NoError(t, err)
	assert.Equal(t, m.WorkflowIDs(), got)
}

func TestOutputStyles_DropsBuiltins(t *testing.T) {
	m := templates.MustLoad()
	r := &Resolver{Manifest: m, SkipPrompt: true}
	got, err := r.OutputStyles("engineer-professional,default", "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"engineer-professional"}, got)

	got, err = r.OutputStyles("", "en")
	require.NoError(t, err)
	assert.Equal(t, m.CustomStyleIDs(), got)
}

func TestDefaultOutputStyle(t *testing.T) {
	m := templates.MustLoad()
	r := &Resolver{Manifest: m, SkipPrompt: true}

	got, err := r.DefaultOutputStyle("", m.CustomStyleIDs(), "en")
	require.NoError(t, err)
	assert.Equal(t, "engineer-professional", got)

	got, err = r.DefaultOutputStyle("", []string{"nekomata-engineer"}, "en")
	require.NoError(t, err)
	assert.Equal(t, "nekomata-engineer", got, "falls back to the first installed style")

	got, err = r.DefaultOutputStyle("learning", nil, "en")
	require.NoError(t, err)
	assert.Equal(t, "learning", got)

	p := prompt.NewScripted("explanatory")
	r = &Resolver{Manifest: m, Prompter: p}
	got, err = r.DefaultOutputStyle("", nil, "en")
	require.NoError(t, err)
	assert.Equal(t, "explanatory", got)
}

func TestSystemPromptStyle(t *testing.T) {
	m := templates.MustLoad()

	r := &Resolver{Manifest: m, SkipPrompt: true}
	got, err := r.SystemPromptStyle("", "en")
	require.NoError(t, err)
	assert.Equal(t, "engineer-professional", got)

	_, err = r.SystemPromptStyle("learning", "en")
	var verr *config.ValidationError
	require.ErrorAs(t, err, &verr, "built-in styles have no template")
	assert.Equal(t, "default-output-style", verr.Flag)
	assert.NotContains(t, verr.Allowed, "learning")

	got, err = r.SystemPromptStyle("nekomata-engineer", "en")
	require.NoError(t, err)
	assert.Equal(t, "nekomata-engineer", got)

	r.Saved = saved(func(st *state.State) { st.Codex.SystemPromptStyle = "laowang-engineer" })
	got, err = r.SystemPromptStyle("", "en")
	require.NoError(t, err)
	assert.Equal(t, "laowang-engineer", got)

	p := prompt.NewScripted("ojousama-engineer")
	r = &Resolver{Manifest: m, Prompter: p}
	got, err = r.SystemPromptStyle("", "en")
	require.NoError(t, err)
	assert.Equal(t, "ojousama-engineer", got)
	assert.Len(t, p.Asked, 1)
}
