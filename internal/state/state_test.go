package state

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zcf/internal/config"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	st := Load(afero.NewMemMapFs(), "/home/.zcf-config.json")
	assert.Equal(t, config.LangEn, st.PreferredLang)
	assert.Equal(t, string(config.CodeToolClaudeCode), st.CodeToolType)
}

func TestLoad_CorruptFileYieldsDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p.json", []byte("{broken"), 0o644))
	st := Load(fs, "/p.json")
	assert.Equal(t, Default(), st)
}

func TestSaveAndLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	st := Default()
	st.PreferredLang = config.LangZhCN
	st.TemplateLang = config.LangZhCN
	st.AIOutputLang = "Japanese"
	st.OutputStyles = []string{"engineer-professional", "nekomata-engineer"}
	st.DefaultOutputStyle = "nekomata-engineer"
	st.ClaudeCode.Profiles = map[string]Profile{
		"work": {Name: "work", AuthType: config.APIKey, APIKey: "sk-1", BaseURL: "https://api.example.com"},
	}
	st.ClaudeCode.CurrentProfile = "work"

	require.NoError(t, Save(fs, "/p.json", st, now))

	got := Load(fs, "/p.json")
	assert.Equal(t, config.LangZhCN, got.PreferredLang)
	assert.Equal(t, "Japanese", got.AIOutputLang)
	assert.Equal(t, "nekomata-engineer", got.DefaultOutputStyle)
	assert.Equal(t, "work", got.ClaudeCode.CurrentProfile)
	assert.Equal(t, "sk-1", got.ClaudeCode.Profiles["work"].APIKey)
	assert.Equal(t, "2025-06-01T12:00:00Z", got.LastUpdated)
	assert.Equal(t, Version, got.Version)
}

func TestSave_PreservesUnknownKeys(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p.json", []byte(`{"preferredLang":"en","claudeCodeInstallation":{"type":"global"},"aiOutputLang":"en"}`), 0o644))

	require.NoError(t, Update(fs, "/p.json", now, func(st *State) {
		st.PreferredLang = config.LangZhCN
		st.AIOutputLang = ""
	}))

	raw, err := afero.ReadFile(fs, "/p.json")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"claudeCodeInstallation"`)
	assert.Contains(t, string(raw), `"preferredLang": "zh-CN"`)
	assert.NotContains(t, string(raw), `"aiOutputLang"`)
}
