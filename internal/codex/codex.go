package codex

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/afero"

	"zcf/internal/config"
	"zcf/internal/fsutil"
	"zcf/internal/logger"
	"zcf/internal/templates"
)

// Official is the pseudo provider id meaning "log in with OpenAI".
const Official = "official"

// OpenAIKeyEnv is the auth.json entry used by the official API key login.
const OpenAIKeyEnv = "OPENAI_API_KEY"

// MCPStartupTimeoutMs is written for every MCP server ZCF adds.
const MCPStartupTimeoutMs = 60000

// Configurator owns every Codex file under one home directory.
type Configurator struct {
	Fs    afero.Fs
	Paths config.Paths
	GOOS  string
	Now   func() time.Time
}

// New returns a Configurator for the running platform.
func New(fs afero.Fs, paths config.Paths) *Configurator {
	return &Configurator{Fs: fs, Paths: paths, GOOS: runtime.GOOS, Now: time.Now}
}

// HasConfig reports whether Codex has been configured before.
func (c *Configurator) HasConfig() bool {
	return fsutil.Exists(c.Fs, c.Paths.CodexConfig)
}

// Backup copies ~/.codex into ~/.codex/backup/backup_<ts>.
func (c *Configurator) Backup() (string, error) {
	return fsutil.BackupDir(c.Fs, c.Paths.CodexDir, c.Paths.CodexBackupDir, c.Now())
}

// Load reads config.toml.
func (c *Configurator) Load() (*Config, error) {
	return LoadConfig(c.Fs, c.Paths.CodexConfig)
}

func (c *Configurator) update(fn func(cfg *Config) error) error {
	cfg, err := c.Load()
	if err != nil {
		return err
	}
	if err := fn(cfg); err != nil {
		return err
	}
	return cfg.Save(c.Fs, c.Paths.CodexConfig)
}

// EnvKeyFor derives the auth.json entry for a provider id: "my-api" becomes
// "MY_API_API_KEY".
func EnvKeyFor(id string) string {
	var b strings.Builder
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune('_')
		}
	}
	return b.String() + "_API_KEY"
}

// ConfigureAPI adds or replaces provider p, makes it current and stores its
// key in auth.json.
func (c *Configurator) ConfigureAPI(p Provider, apiKey string) error {
	if p.ID == "" || p.ID == Official {
		return fmt.Errorf("invalid provider id %q", p.ID)
	}
	if p.Name == "" {
		p.Name = p.ID
	}
	if p.WireAPI == "" {
		p.WireAPI = "responses"
	}
	if p.EnvKey == "" {
		p.EnvKey = EnvKeyFor(p.ID)
	}
	err := c.update(func(cfg *Config) error {
		cfg.SetProvider(p.ID, p)
		cfg.ModelProvider = p.ID
		return nil
	})
	if err != nil {
		return err
	}
	if apiKey == "" {
		return nil
	}
	return c.SetAuth(p.EnvKey, apiKey)
}

// ConfigureOfficialKey uses OpenAI directly with an API key.
func (c *Configurator) ConfigureOfficialKey(apiKey string) error {
	if err := c.SwitchProvider(Official); err != nil {
		return err
	}
	return c.SetAuth(OpenAIKeyEnv, apiKey)
}

// SwitchProvider makes id the current provider. Official removes the
// override so Codex falls back to its own login.
func (c *Configurator) SwitchProvider(id string) error {
	return c.update(func(cfg *Config) error {
		if id == Official {
			cfg.ModelProvider = ""
			return nil
		}
		if _, ok := cfg.ModelProviders[id]; !ok {
			return fmt.Errorf("unknown provider %q (configured: %s)", id, strings.Join(cfg.ProviderIDs(), ", "))
		}
		cfg.ModelProvider = id
		return nil
	})
}

// SetAuth stores one key in auth.json, keeping the others.
func (c *Configurator) SetAuth(envKey, apiKey string) error {
	return fsutil.UpdateJSON(c.Fs, c.Paths.CodexAuth, func(doc map[string]any) error {
		doc[envKey] = apiKey
		return nil
	})
}

// Auth reads auth.json as strings.
func (c *Configurator) Auth() (map[string]string, error) {
	doc, err := fsutil.ReadJSON(c.Fs, c.Paths.CodexAuth)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(doc))
	for k, v := range doc {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out, nil
}

// MCPResult reports what ConfigureMCP did.
type MCPResult struct {
	Configured []string
	Skipped    []string
}

// ConfigureMCP writes [mcp_servers.<id>] for the selected services. Servers
// that are already configured and not selected stay.
func (c *Configurator) ConfigureMCP(m *templates.Manifest, ids []string, apiKeys map[string]string) (MCPResult, error) {
	var res MCPResult
	err := c.update(func(cfg *Config) error {
		for _, id := range ids {
			svc, ok := m.MCPService(id)
			if !ok {
				return fmt.Errorf("unknown MCP service %q", id)
			}
			key := apiKeys[id]
			if svc.RequiresAPIKey && key == "" {
				res.Skipped = append(res.Skipped, id)
				continue
			}
			srv := svc.Launch(key, c.GOOS)
			entry := MCPServer{Command: srv.Command, Args: srv.Args, Env: srv.Env, StartupTimeoutMs: MCPStartupTimeoutMs}
			if c.GOOS == "windows" {
				if entry.Env == nil {
					entry.Env = map[string]string{}
				}
				entry.Env["SYSTEMROOT"] = `C:\Windows`
			}
			cfg.SetMCPServer(strings.ToLower(id), entry)
			res.Configured = append(res.Configured, id)
		}
		return nil
	})
	return res, err
}

// InstallPrompts copies the commands of the selected workflows that double
// as Codex prompts into ~/.codex/prompts.
func (c *Configurator) InstallPrompts(m *templates.Manifest, ids []string, lang string) ([]string, error) {
	var written []string
	for _, id := range ids {
		wf, ok := m.Workflow(id)
		if !ok {
			return written, fmt.Errorf("unknown workflow %q", id)
		}
		if !wf.Codex {
			logger.Debug("[DEBUG] Workflow %s has no Codex prompts\n", id)
			continue
		}
		for _, f := range wf.Commands {
			dst := filepath.Join(c.Paths.CodexPrompts, f)
			if err := fsutil.CopyEmbedded(c.Fs, templates.FS(), templates.CommandPath(lang, f), dst); err != nil {
				return written, err
			}
			written = append(written, dst)
		}
	}
	return written, nil
}

// SetSystemPromptStyle writes AGENTS.md from the output style template and
// pins the reply language.
func (c *Configurator) SetSystemPromptStyle(m *templates.Manifest, styleID, lang, aiLang string) error {
	style, ok := m.OutputStyle(styleID)
	if !ok || !style.Custom {
		return fmt.Errorf("no template for system prompt style %q", styleID)
	}
	raw, err := templates.ReadFile(templates.OutputStylePath(lang, styleID))
	if err != nil {
		return fmt.Errorf("read style %s: %w", styleID, err)
	}
	body := templates.StripFrontMatter(string(raw))
	content := templates.ReplaceBlock(body, templates.LanguageDirective(aiLang))
	return fsutil.WriteFile(c.Fs, c.Paths.CodexAgents, []byte(content), 0o644)
}
