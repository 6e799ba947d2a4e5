// Package ccr configures and drives Claude Code Router, the local proxy that
// lets Claude Code talk to other model providers.
package ccr

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"

	"zcf/internal/config"
	"zcf/internal/fsutil"
	"zcf/internal/logger"
)

// Defaults written into a fresh router config.
const (
	DefaultHost   = "127.0.0.1"
	DefaultPort   = 3456
	DefaultAPIKey = "sk-zcf-x-ccr"

	DefaultTimeout json.Number = "600000"
)

// Provider is one entry of Providers.
type Provider struct {
	Name        string         `json:"name"`
	APIBaseURL  string         `json:"api_base_url"`
	APIKey      string         `json:"api_key"`
	Models      []string       `json:"models"`
	Transformer map[string]any `json:"transformer,omitempty"`
}

// Router maps request kinds to "provider,model" routes.
type Router struct {
	Default              string `json:"default"`
	Background           string `json:"background,omitempty"`
	Think                string `json:"think,omitempty"`
	LongContext          string `json:"longContext,omitempty"`
	LongContextThreshold int    `json:"longContextThreshold,omitempty"`
	WebSearch            string `json:"webSearch,omitempty"`
}

// Config mirrors ~/.claude-code-router/config.json. Keys it does not model
// are carried in raw and written back.
type Config struct {
	Log          bool        `json:"LOG"`
	ClaudePath   string      `json:"CLAUDE_PATH"`
	Host         string      `json:"HOST"`
	Port         int         `json:"PORT"`
	APIKey       string      `json:"APIKEY"`
	APITimeoutMs json.Number `json:"API_TIMEOUT_MS"`
	ProxyURL     string      `json:"PROXY_URL"`
	Transformers []any       `json:"transformers"`
	Providers    []Provider  `json:"Providers"`
	Router       Router      `json:"Router"`

	raw map[string]any
	// opaque lists keys whose value did not fit the struct; Save writes
	// them back as read.
	opaque map[string]bool
}

// DefaultConfig returns the config written when none exists.
func DefaultConfig() *Config {
	return &Config{
		Host:         DefaultHost,
		Port:         DefaultPort,
		APIKey:       DefaultAPIKey,
		APITimeoutMs: DefaultTimeout,
		Transformers: []any{},
		Providers:    []Provider{},
		raw:          map[string]any{},
	}
}

// Load reads the router config. found is false when the file does not exist.
func Load(fs afero.Fs, path string) (cfg *Config, found bool, err error) {
	cfg = DefaultConfig()
	if !fsutil.Exists(fs, path) {
		return cfg, false, nil
	}
	doc, err := fsutil.ReadJSON(fs, path)
	if err != nil {
		return nil, true, err
	}
	cfg.decode(doc)
	return cfg, true, nil
}

// decode fills the struct one key at a time so a single value of an
// unexpected type does not discard the rest of the file.
func (c *Config) decode(doc map[string]any) {
	c.raw = doc
	c.opaque = map[string]bool{}
	for k, v := range doc {
		one, err := json.Marshal(map[string]any{k: v})
		if err == nil {
			err = json.Unmarshal(one, c)
		}
		if err != nil {
			logger.Debug("[DEBUG] Keeping router config key %s as is: %v\n", k, err)
			c.opaque[k] = true
		}
	}
}

// Save writes the config over whatever keys the file already had.
func (c *Config) Save(fs afero.Fs, path string) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal router config: %w", err)
	}
	known, err := fsutil.DecodeJSON(data)
	if err != nil {
		return fmt.Errorf("marshal router config: %w", err)
	}
	out := make(map[string]any, len(c.raw)+len(known))
	for k, v := range c.raw {
		out[k] = v
	}
	for k, v := range known {
		if c.opaque[k] {
			continue
		}
		out[k] = v
	}
	logger.Debug("[DEBUG] Writing router config %s\n", path)
	return fsutil.WriteJSON(fs, path, out)
}

// BaseURL is the address Claude Code is pointed at. The router always
// listens on loopback for its own clients.
func (c *Config) BaseURL() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return "http://" + DefaultHost + ":" + strconv.Itoa(port)
}

// ProxyAPI is the Claude Code credential set that routes through this router.
func (c *Config) ProxyAPI() config.APIConfig {
	key := c.APIKey
	if key == "" {
		key = DefaultAPIKey
	}
	return config.APIConfig{Type: config.APICCRProxy, Key: key, URL: c.BaseURL()}
}

// BackupConfig copies the router config into ~/.claude-code-router/backup.
func BackupConfig(fs afero.Fs, paths config.Paths, now time.Time) (string, error) {
	dir := filepath.Join(paths.CCRDir, "backup", fsutil.BackupName(now))
	return fsutil.BackupFile(fs, paths.CCRConfig, dir)
}
