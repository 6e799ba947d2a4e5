package claude

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zcf/internal/config"
	"zcf/internal/fsutil"
	"zcf/internal/templates"
)

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func newTestConfigurator(t *testing.T) *Configurator {
	t.Helper()
	return &Configurator{
		Fs:    afero.NewMemMapFs(),
		Paths: config.NewPaths("/home/dev"),
		GOOS:  "linux",
		Now:   func() time.Time { return fixedNow },
	}
}

func writeJSON(t *testing.T, c *Configurator, path string, doc map[string]any) {
	t.Helper()
	require.NoError(t, fsutil.WriteJSON(c.Fs, path, doc))
}

func readJSON(t *testing.T, c *Configurator, path string) map[string]any {
	t.Helper()
	doc, err := fsutil.ReadJSON(c.Fs, path)
	require.NoError(t, err)
	return doc
}

func TestApplySettingsTemplate_Actions(t *testing.T) {
	existing := map[string]any{
		"model": "opus",
		"env":   map[string]any{"ANTHROPIC_API_KEY": "sk-user"},
		"permissions": map[string]any{
			"allow": []any{"Bash", "mcp__custom"},
		},
	}

	t.Run("merge keeps user values and unions arrays", func(t *testing.T) {
		c := newTestConfigurator(t)
		writeJSON(t, c, c.Paths.ClaudeSettings, existing)

		backup, err := c.ApplySettingsTemplate(config.ActionMerge)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(c.Paths.ClaudeBackupDir, "backup_2026-03-04_05-06-07"), backup)
		assert.True(t, fsutil.Exists(c.Fs, filepath.Join(backup, "settings.json")))

		doc := readJSON(t, c, c.Paths.ClaudeSettings)
		assert.Equal(t, "opus", doc["model"])
		env := doc["env"].(map[string]any)
		assert.Equal(t, "sk-user", env["ANTHROPIC_API_KEY"])
		assert.Equal(t, "1", env["DISABLE_TELEMETRY"])
		allow := fsutil.Strings(doc["permissions"].(map[string]any)["allow"])
		assert.Contains(t, allow, "mcp__custom")
		assert.Contains(t, allow, "Read")
	})

	t.Run("backup overwrites after copying", func(t *testing.T) {
		c := newTestConfigurator(t)
		writeJSON(t, c, c.Paths.ClaudeSettings, existing)

		backup, err := c.ApplySettingsTemplate(config.ActionBackup)
		require.NoError(t, err)
		saved := readJSON(t, c, filepath.Join(backup, "settings.json"))
		assert.Equal(t, "opus", saved["model"])

		doc := readJSON(t, c, c.Paths.ClaudeSettings)
		assert.NotContains(t, doc, "model")
	})

	t.Run("new overwrites without backup", func(t *testing.T) {
		c := newTestConfigurator(t)
		writeJSON(t, c, c.Paths.ClaudeSettings, existing)

		backup, err := c.ApplySettingsTemplate(config.ActionNew)
		require.NoError(t, err)
		assert.Empty(t, backup)
		assert.False(t, fsutil.Exists(c.Fs, c.Paths.ClaudeBackupDir))
	})

	t.Run("docs-only and skip leave settings alone", func(t *testing.T) {
		for _, action := range []config.ConfigAction{config.ActionDocsOnly, config.ActionSkip} {
			c := newTestConfigurator(t)
			writeJSON(t, c, c.Paths.ClaudeSettings, existing)
			_, err := c.ApplySettingsTemplate(action)
			require.NoError(t, err)
			assert.Equal(t, "opus", readJSON(t, c, c.Paths.ClaudeSettings)["model"], action)
		}
	})

	t.Run("merge replaces a corrupt file", func(t *testing.T) {
		c := newTestConfigurator(t)
		require.NoError(t, afero.WriteFile(c.Fs, c.Paths.ClaudeSettings, []byte("{nope"), 0o644))
		_, err := c.ApplySettingsTemplate(config.ActionMerge)
		require.NoError(t, err)
		assert.Contains(t, readJSON(t, c, c.Paths.ClaudeSettings), "permissions")
	})
}

func TestConfigureAPI(t *testing.T) {
	c := newTestConfigurator(t)
	writeJSON(t, c, c.Paths.ClaudeSettings, map[string]any{
		"env": map[string]any{EnvAPIKey: "old", "KEEP": "1"},
	})

	require.NoError(t, c.ConfigureAPI(config.APIConfig{Type: config.APIAuthToken, Key: "tok", URL: "https://api.example.com"}))
	env := readJSON(t, c, c.Paths.ClaudeSettings)["env"].(map[string]any)
	assert.Equal(t, "tok", env[EnvAuthToken])
	assert.NotContains(t, env, EnvAPIKey)
	assert.Equal(t, "https://api.example.com", env[EnvBaseURL])
	assert.Equal(t, "1", env["KEEP"])
	assert.Equal(t, true, readJSON(t, c, c.Paths.ClaudeJSON)["hasCompletedOnboarding"])

	require.NoError(t, c.ConfigureAPI(config.APIConfig{Type: config.APIKey, Key: "sk"}))
	env = readJSON(t, c, c.Paths.ClaudeSettings)["env"].(map[string]any)
	assert.Equal(t, "sk", env[EnvAPIKey])
	assert.NotContains(t, env, EnvAuthToken)
	assert.NotContains(t, env, EnvBaseURL)

	require.NoError(t, c.ConfigureAPI(config.APIConfig{Type: config.APICCRProxy, Key: "ccr-key", URL: "http://127.0.0.1:3456"}))
	api, err := c.CurrentAPI()
	require.NoError(t, err)
	assert.Equal(t, config.APIConfig{Type: config.APICCRProxy, Key: "ccr-key", URL: "http://127.0.0.1:3456"}, api)

	require.NoError(t, c.ConfigureAPI(config.APIConfig{Type: config.APISkip}))
	api, _ = c.CurrentAPI()
	assert.Equal(t, config.APICCRProxy, api.Type)

	require.NoError(t, c.ClearAPI())
	api, _ = c.CurrentAPI()
	assert.Equal(t, config.APIConfig{Type: config.APISkip}, api)
	assert.Equal(t, "1", readJSON(t, c, c.Paths.ClaudeSettings)["env"].(map[string]any)["KEEP"])
}

func TestSetModel(t *testing.T) {
	c := newTestConfigurator(t)
	require.NoError(t, c.SetModel("opusplan"))
	assert.Equal(t, "opusplan", c.CurrentModel())
	require.NoError(t, c.SetModel("default"))
	assert.Equal(t, "default", c.CurrentModel())
	assert.Error(t, c.SetModel("haiku-9"))
}

func TestImportRecommendedEnvPermissions(t *testing.T) {
	c := newTestConfigurator(t)
	writeJSON(t, c, c.Paths.ClaudeSettings, map[string]any{
		"env": map[string]any{"MCP_TIMEOUT": "120000"},
		"permissions": map[string]any{
			"allow": []any{"MultiEdit", "mcp__.*", "mcp__custom", "Bash"},
		},
	})

	require.NoError(t, c.ImportRecommendedEnvPermissions())

	doc := readJSON(t, c, c.Paths.ClaudeSettings)
	env := doc["env"].(map[string]any)
	assert.Equal(t, "120000", env["MCP_TIMEOUT"], "user env wins")
	assert.Equal(t, "1", env["DISABLE_TELEMETRY"])
	allow := fsutil.Strings(doc["permissions"].(map[string]any)["allow"])
	assert.NotContains(t, allow, "MultiEdit")
	assert.NotContains(t, allow, "mcp__.*")
	assert.Contains(t, allow, "mcp__custom")
	assert.Contains(t, allow, "WebFetch")
	assert.Equal(t, "mcp__custom", allow[0], "existing order kept")
}

func TestSetOutputStyles(t *testing.T) {
	c := newTestConfigurator(t)
	m := templates.MustLoad()

	written, err := c.SetOutputStyles(m, []string{"nekomata-engineer", "learning"}, "learning", "zh-CN")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(c.Paths.OutputStylesDir, "nekomata-engineer.md")}, written)
	assert.Equal(t, "learning", readJSON(t, c, c.Paths.ClaudeSettings)["outputStyle"])
}

func TestSetAIOutputLanguage_PreservesUserContent(t *testing.T) {
	c := newTestConfigurator(t)
	require.NoError(t, afero.WriteFile(c.Fs, c.Paths.ClaudeMemory, []byte("# My notes\nbe brief"), 0o644))

	require.NoError(t, c.SetAIOutputLanguage("zh-CN"))
	require.NoError(t, c.SetAIOutputLanguage("Français"))

	raw, err := afero.ReadFile(c.Fs, c.Paths.ClaudeMemory)
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "# My notes\nbe brief\n")
	assert.Equal(t, 1, strings.Count(content, templates.BlockStart))
	assert.Equal(t, "Always respond in Français", c.AIOutputLanguageDirective())
}

func TestConfigureMCPServers(t *testing.T) {
	c := newTestConfigurator(t)
	m := templates.MustLoad()
	writeJSON(t, c, c.Paths.ClaudeJSON, map[string]any{
		"numStartups": 3,
		"mcpServers":  map[string]any{"mine": map[string]any{"command": "my-server"}},
	})

	res, err := c.ConfigureMCPServers(m, []string{"context7", "exa", "serena"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"context7", "serena"}, res.Configured)
	assert.Equal(t, []string{"exa"}, res.Skipped)
	assert.NotEmpty(t, res.Backup)

	doc := readJSON(t, c, c.Paths.ClaudeJSON)
	assert.Equal(t, json.Number("3"), doc["numStartups"])
	servers := doc["mcpServers"].(map[string]any)
	assert.Contains(t, servers, "mine")
	ctx7 := servers["context7"].(map[string]any)
	assert.Equal(t, "npx", ctx7["command"])

	ids, err := c.MCPServers()
	require.NoError(t, err)
	assert.Equal(t, []string{"context7", "mine", "serena"}, ids)
}

func TestConfigureMCPServers_WindowsAndAPIKey(t *testing.T) {
	c := newTestConfigurator(t)
	c.GOOS = "windows"
	m := templates.MustLoad()

	res, err := c.ConfigureMCPServers(m, []string{"exa"}, map[string]string{"exa": "exa-123"})
	require.NoError(t, err)
	assert.Equal(t, []string{"exa"}, res.Configured)

	exa := readJSON(t, c, c.Paths.ClaudeJSON)["mcpServers"].(map[string]any)["exa"].(map[string]any)
	assert.Equal(t, "cmd", exa["command"])
	assert.Equal(t, []any{"/c", "npx", "-y", "exa-mcp-server"}, exa["args"])
	assert.Equal(t, "exa-123", exa["env"].(map[string]any)["EXA_API_KEY"])
}

func TestClearMCPServers(t *testing.T) {
	c := newTestConfigurator(t)
	removed, err := c.ClearMCPServers()
	require.NoError(t, err)
	assert.False(t, removed)

	writeJSON(t, c, c.Paths.ClaudeJSON, map[string]any{"mcpServers": map[string]any{}, "theme": "dark"})
	removed, err = c.ClearMCPServers()
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, map[string]any{"theme": "dark"}, readJSON(t, c, c.Paths.ClaudeJSON))
}

func TestInstallWorkflows(t *testing.T) {
	c := newTestConfigurator(t)
	m := templates.MustLoad()
	stale := filepath.Join(c.CommandsDir(), "feat.md")
	other := filepath.Join(c.CommandsDir(), "my-own.md")
	require.NoError(t, afero.WriteFile(c.Fs, stale, []byte("old"), 0o644))
	require.NoError(t, afero.WriteFile(c.Fs, other, []byte("mine"), 0o644))

	results := c.InstallWorkflows(m, []string{"featPlanUx", "nope"}, "en")
	require.Len(t, results, 2)
	require.NoError(t, results[0].Err)
	assert.Contains(t, results[0].Files, filepath.Join(c.AgentsDir(), "planner.md"))
	assert.Error(t, results[1].Err)

	raw, err := afero.ReadFile(c.Fs, stale)
	require.NoError(t, err)
	assert.NotEqual(t, "old", string(raw))
	assert.True(t, fsutil.Exists(c.Fs, other), "unrelated files stay")
}

func TestStatusline(t *testing.T) {
	c := newTestConfigurator(t)
	require.NoError(t, c.ConfigureStatusline())
	assert.True(t, c.HasStatusline())
	line := readJSON(t, c, c.Paths.ClaudeSettings)["statusLine"].(map[string]any)
	assert.Equal(t, StatuslineCommand, line["command"])

	removed, err := c.RemoveStatusline()
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, c.HasStatusline())
}
