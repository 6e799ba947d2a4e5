package codex

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zcf/internal/config"
	"zcf/internal/fsutil"
	"zcf/internal/templates"
)

func newTestConfigurator(t *testing.T) *Configurator {
	t.Helper()
	return &Configurator{
		Fs:    afero.NewMemMapFs(),
		Paths: config.NewPaths("/home/dev"),
		GOOS:  "linux",
		Now:   func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
}

const existingTOML = `model = "gpt-5"
approval_policy = "on-request"

[model_providers.other]
name = "Other"
base_url = "https://other.example/v1"
wire_api = "chat"
query_params = { api-version = "2025-01-01" }

[mcp_servers.mine]
command = "my-mcp"

[profiles.fast]
model = "gpt-5-mini"
`

func decode(t *testing.T, c *Configurator) map[string]any {
	t.Helper()
	raw, err := afero.ReadFile(c.Fs, c.Paths.CodexConfig)
	require.NoError(t, err)
	doc := map[string]any{}
	_, err = toml.Decode(string(raw), &doc)
	require.NoError(t, err)
	return doc
}

func TestConfigureAPI_PreservesUnknownKeys(t *testing.T) {
	c := newTestConfigurator(t)
	require.NoError(t, afero.WriteFile(c.Fs, c.Paths.CodexConfig, []byte(existingTOML), 0o644))

	require.NoError(t, c.ConfigureAPI(Provider{ID: "my-api", BaseURL: "https://api.example/v1"}, "sk-1"))

	doc := decode(t, c)
	assert.Equal(t, "on-request", doc["approval_policy"])
	assert.Equal(t, "my-api", doc["model_provider"])
	assert.Equal(t, "gpt-5", doc["model"])
	assert.Contains(t, doc, "profiles")

	providers := doc["model_providers"].(map[string]any)
	mine := providers["my-api"].(map[string]any)
	assert.Equal(t, "https://api.example/v1", mine["base_url"])
	assert.Equal(t, "responses", mine["wire_api"])
	assert.Equal(t, "MY_API_API_KEY", mine["env_key"])

	other := providers["other"].(map[string]any)
	assert.Contains(t, other, "query_params", "unknown provider keys survive")

	auth, err := c.Auth()
	require.NoError(t, err)
	assert.Equal(t, "sk-1", auth["MY_API_API_KEY"])
}

func TestSwitchProvider(t *testing.T) {
	c := newTestConfigurator(t)
	require.NoError(t, afero.WriteFile(c.Fs, c.Paths.CodexConfig, []byte(existingTOML), 0o644))

	require.NoError(t, c.SwitchProvider("other"))
	assert.Equal(t, "other", decode(t, c)["model_provider"])

	require.NoError(t, c.SwitchProvider(Official))
	assert.NotContains(t, decode(t, c), "model_provider")

	assert.Error(t, c.SwitchProvider("missing"))
}

func TestConfigureOfficialKey(t *testing.T) {
	c := newTestConfigurator(t)
	require.NoError(t, c.SetAuth("OTHER_API_KEY", "keep"))
	require.NoError(t, c.ConfigureOfficialKey("sk-openai"))

	auth, err := c.Auth()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"OTHER_API_KEY": "keep", OpenAIKeyEnv: "sk-openai"}, auth)
}

func TestConfigureMCP(t *testing.T) {
	c := newTestConfigurator(t)
	require.NoError(t, afero.WriteFile(c.Fs, c.Paths.CodexConfig, []byte(existingTOML), 0o644))
	m := templates.MustLoad()

	res, err := c.ConfigureMCP(m, []string{"Playwright", "exa"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Playwright"}, res.Configured)
	assert.Equal(t, []string{"exa"}, res.Skipped)

	cfg, err := c.Load()
	require.NoError(t, err)
	assert.Contains(t, cfg.MCPServers, "mine")
	pw := cfg.MCPServers["playwright"]
	assert.Equal(t, "npx", pw.Command)
	assert.Equal(t, MCPStartupTimeoutMs, pw.StartupTimeoutMs)
}

func TestConfigureMCP_LeavesOtherServersUnchanged(t *testing.T) {
	c := newTestConfigurator(t)
	existing := `[mcp_servers.mine]
command = "my-server"

[mcp_servers.remote]
url = "https://mcp.example.com/sse"

[model_providers.other]
name = "Other"
base_url = "https://other.example/v1"
`
	require.NoError(t, afero.WriteFile(c.Fs, c.Paths.CodexConfig, []byte(existing), 0o644))

	_, err := c.ConfigureMCP(templates.MustLoad(), []string{"context7"}, nil)
	require.NoError(t, err)
	require.NoError(t, c.SwitchProvider("other"))

	doc := decode(t, c)
	servers := doc["mcp_servers"].(map[string]any)
	assert.Equal(t, map[string]any{"command": "my-server"}, servers["mine"])
	assert.Equal(t, map[string]any{"url": "https://mcp.example.com/sse"}, servers["remote"])
	assert.Contains(t, servers["context7"], "startup_timeout_ms")

	other := doc["model_providers"].(map[string]any)["other"].(map[string]any)
	assert.NotContains(t, other, "requires_openai_auth")
	assert.Equal(t, "other", doc["model_provider"])
}

func TestConfigureMCP_Windows(t *testing.T) {
	c := newTestConfigurator(t)
	c.GOOS = "windows"
	res, err := c.ConfigureMCP(templates.MustLoad(), []string{"context7"}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"context7"}, res.Configured)

	cfg, err := c.Load()
	require.NoError(t, err)
	srv := cfg.MCPServers["context7"]
	assert.Equal(t, "cmd", srv.Command)
	assert.Equal(t, `C:\Windows`, srv.Env["SYSTEMROOT"])
}

func TestInstallPrompts(t *testing.T) {
	c := newTestConfigurator(t)
	written, err := c.InstallPrompts(templates.MustLoad(), []string{"commonTools", "sixStepsWorkflow"}, "en")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(c.Paths.CodexPrompts, "workflow.md")}, written)
}

func TestSetSystemPromptStyle(t *testing.T) {
	c := newTestConfigurator(t)
	m := templates.MustLoad()
	require.NoError(t, c.SetSystemPromptStyle(m, "engineer-professional", "en", "zh-CN"))

	raw, err := afero.ReadFile(c.Fs, c.Paths.CodexAgents)
	require.NoError(t, err)
	content := string(raw)
	assert.False(t, strings.HasPrefix(content, "---"), "front matter stripped")
	assert.Equal(t, "Always respond in Chinese-simplified", templates.Block(content))

	assert.Error(t, c.SetSystemPromptStyle(m, "learning", "en", "en"))
}

func TestBackup(t *testing.T) {
	c := newTestConfigurator(t)
	require.NoError(t, afero.WriteFile(c.Fs, c.Paths.CodexConfig, []byte(existingTOML), 0o644))
	dir, err := c.Backup()
	require.NoError(t, err)
	assert.True(t, fsutil.Exists(c.Fs, filepath.Join(dir, "config.toml")))
}

func TestEnvKeyFor(t *testing.T) {
	assert.Equal(t, "MY_API_API_KEY", EnvKeyFor("my-api"))
	assert.Equal(t, "OPENROUTER_API_KEY", EnvKeyFor("openrouter"))
}
