package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"zcf/internal/config"
	"zcf/internal/fsutil"
	"zcf/internal/logger"
)

// Version is written into every saved preference file.
const Version = "1.0.0"

// Profile is a named Claude Code API configuration that config-switch can
// activate.
type Profile struct {
	Name     string         `json:"name"`
	AuthType config.APIType `json:"authType"`
	APIKey   string         `json:"apiKey,omitempty"`
	BaseURL  string         `json:"baseUrl,omitempty"`
}

// ClaudeCodeState groups Claude Code specific preferences.
type ClaudeCodeState struct {
	Profiles       map[string]Profile `json:"profiles,omitempty"`
	CurrentProfile string             `json:"currentProfile,omitempty"`
}

// CodexState groups Codex specific preferences.
type CodexState struct {
	SystemPromptStyle string `json:"systemPromptStyle,omitempty"`
}

// State is the ZCF preference file (~/.zcf-config.json). It records what
// ZCF applied so later runs can offer the same choices as defaults.
type State struct {
	Version            string          `json:"version"`
	PreferredLang      string          `json:"preferredLang"`
	TemplateLang       string          `json:"templateLang,omitempty"`
	AIOutputLang       string          `json:"aiOutputLang,omitempty"`
	OutputStyles       []string        `json:"outputStyles,omitempty"`
	DefaultOutputStyle string          `json:"defaultOutputStyle,omitempty"`
	Workflows          []string        `json:"workflows,omitempty"`
	MCPServices        []string        `json:"mcpServices,omitempty"`
	CodeToolType       string          `json:"codeToolType"`
	ClaudeCode         ClaudeCodeState `json:"claudeCode"`
	Codex              CodexState      `json:"codex"`
	LastUpdated        string          `json:"lastUpdated"`
}

// Default returns the state used when no preference file exists.
func Default() *State {
	return &State{
		Version:       Version,
		PreferredLang: config.LangEn,
		CodeToolType:  string(config.CodeToolClaudeCode),
	}
}

// Load reads the preference file at path.
// A missing or unreadable file yields Default(); a corrupt one is reported at
// debug level and also yields Default() so a broken file never blocks setup.
func Load(fs afero.Fs, path string) *State {
	st := Default()
	found, err := fsutil.ReadJSONInto(fs, path, st)
	if err != nil {
		logger.Debug("[DEBUG] Ignoring unreadable preference file %s: %v\n", path, err)
		return Default()
	}
	if !found {
		return st
	}
	if st.PreferredLang == "" {
		st.PreferredLang = config.LangEn
	}
	if st.CodeToolType == "" {
		st.CodeToolType = string(config.CodeToolClaudeCode)
	}
	return st
}

// Exists reports whether a preference file has been written before.
func Exists(fs afero.Fs, path string) bool {
	return fsutil.Exists(fs, path)
}

// Save writes st to path. Keys ZCF does not know about (written by a newer
// version, or by hand) are preserved.
func Save(fs afero.Fs, path string, st *State, now time.Time) error {
	st.Version = Version
	st.LastUpdated = now.UTC().Format(time.RFC3339)

	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	known := map[string]any{}
	if err := json.Unmarshal(raw, &known); err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}

	existing, err := fsutil.ReadJSON(fs, path)
	if err != nil {
		logger.Debug("[DEBUG] Replacing unreadable preference file %s: %v\n", path, err)
		existing = map[string]any{}
	}
	for k, v := range known {
		existing[k] = v
	}
	// omitempty fields that were cleared must not survive from the old file.
	for _, k := range []string{"templateLang", "aiOutputLang", "outputStyles", "defaultOutputStyle", "workflows", "mcpServices"} {
		if _, ok := known[k]; !ok {
			delete(existing, k)
		}
	}

	logger.Debug("[DEBUG] Writing preferences to %s\n", path)
	return fsutil.WriteJSON(fs, path, existing)
}

// Update loads, mutates and saves the preference file in one step.
func Update(fs afero.Fs, path string, now time.Time, fn func(*State)) error {
	st := Load(fs, path)
	fn(st)
	return Save(fs, path, st, now)
}
