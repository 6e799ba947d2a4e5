// Package codex writes the Codex CLI configuration: config.toml (providers
// and MCP servers), auth.json (API keys), AGENTS.md (system prompt) and the
// prompts directory.
package codex

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"

	"zcf/internal/fsutil"
	"zcf/internal/logger"
)

// Provider is one [model_providers.<id>] table.
type Provider struct {
	ID                 string `toml:"-"`
	Name               string `toml:"name"`
	BaseURL            string `toml:"base_url"`
	WireAPI            string `toml:"wire_api,omitempty"`
	EnvKey             string `toml:"env_key,omitempty"`
	RequiresOpenAIAuth bool   `toml:"requires_openai_auth"`
}

// MCPServer is one [mcp_servers.<id>] table.
type MCPServer struct {
	Command          string            `toml:"command"`
	Args             []string          `toml:"args,omitempty"`
	Env              map[string]string `toml:"env,omitempty"`
	StartupTimeoutMs int               `toml:"startup_timeout_ms,omitempty"`
}

// Config is the part of config.toml ZCF manages. Everything else in the file
// is kept in raw and written back untouched.
type Config struct {
	ModelProvider  string               `toml:"model_provider,omitempty"`
	Model          string               `toml:"model,omitempty"`
	ModelProviders map[string]Provider  `toml:"model_providers,omitempty"`
	MCPServers     map[string]MCPServer `toml:"mcp_servers,omitempty"`

	raw map[string]any
	// touched holds the model_providers and mcp_servers ids ZCF wrote in
	// this session; other entries are written back exactly as read.
	touched map[string]map[string]bool
}

// SetProvider adds or replaces provider id.
func (c *Config) SetProvider(id string, p Provider) {
	c.ModelProviders[id] = p
	c.touch("model_providers", id)
}

// SetMCPServer adds or replaces MCP server id.
func (c *Config) SetMCPServer(id string, s MCPServer) {
	c.MCPServers[id] = s
	c.touch("mcp_servers", id)
}

func (c *Config) touch(table, id string) {
	if c.touched == nil {
		c.touched = map[string]map[string]bool{}
	}
	if c.touched[table] == nil {
		c.touched[table] = map[string]bool{}
	}
	c.touched[table][id] = true
}

// managed lists the keys Config owns at the top level.
var managed = []string{"model_provider", "model", "model_providers", "mcp_servers"}

// LoadConfig reads config.toml. A missing file yields an empty Config.
func LoadConfig(fs afero.Fs, path string) (*Config, error) {
	cfg := &Config{
		ModelProviders: map[string]Provider{},
		MCPServers:     map[string]MCPServer{},
		raw:            map[string]any{},
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), &cfg.raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.ModelProviders == nil {
		cfg.ModelProviders = map[string]Provider{}
	}
	if cfg.MCPServers == nil {
		cfg.MCPServers = map[string]MCPServer{}
	}
	for id, p := range cfg.ModelProviders {
		p.ID = id
		cfg.ModelProviders[id] = p
	}
	return cfg, nil
}

// Encode renders the config, merging managed values over the raw document.
// Entries of model_providers and mcp_servers keep keys ZCF does not know.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	known := map[string]any{}
	if _, err := toml.Decode(buf.String(), &known); err != nil {
		return nil, err
	}

	out := make(map[string]any, len(c.raw)+len(known))
	for k, v := range c.raw {
		out[k] = v
	}
	for _, k := range managed {
		delete(out, k)
	}
	for k, v := range known {
		switch k {
		case "model_providers", "mcp_servers":
			out[k] = overlayTables(c.raw[k], v, c.touched[k])
		default:
			out[k] = v
		}
	}

	buf.Reset()
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// overlayTables merges each touched entry of next over the same entry of
// prev. Untouched entries that exist in prev are kept verbatim, so fields
// the structs do not model (or model with zero values) are not invented.
// Ids missing from next are dropped.
func overlayTables(prev, next any, touched map[string]bool) any {
	nt, ok := next.(map[string]any)
	if !ok {
		return next
	}
	pt, _ := prev.(map[string]any)
	out := make(map[string]any, len(nt))
	for id, v := range nt {
		if old, exists := pt[id]; exists && !touched[id] {
			out[id] = old
			continue
		}
		nv, nok := v.(map[string]any)
		pv, pok := pt[id].(map[string]any)
		if nok && pok {
			out[id] = fsutil.DeepMerge(pv, nv, fsutil.MergeOptions{})
			continue
		}
		out[id] = v
	}
	return out
}

// Save writes config.toml.
func (c *Config) Save(fs afero.Fs, path string) error {
	data, err := c.Encode()
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	logger.Debug("[DEBUG] Writing Codex config %s\n", path)
	return fsutil.WriteFile(fs, path, data, 0o644)
}

// ProviderIDs returns the configured provider ids, sorted.
func (c *Config) ProviderIDs() []string {
	ids := make([]string, 0, len(c.ModelProviders))
	for id := range c.ModelProviders {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
