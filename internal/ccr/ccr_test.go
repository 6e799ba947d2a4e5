package ccr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zcf/internal/config"
	"zcf/internal/fsutil"
	"zcf/internal/runner"
)

var now = time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

type fakeClaude struct {
	got config.APIConfig
	err error
}

func (f *fakeClaude) ConfigureAPI(api config.APIConfig) error {
	f.got = api
	return f.err
}

func TestFetchPresets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"name":"Acme","provider":"acme","baseURL":"https://acme.example/v1","requiresApiKey":true,"models":["acme-1"]},
			{"name":"Broken","provider":"","baseURL":"","models":[]}
		]`))
	}))
	defer srv.Close()

	presets, err := FetchPresets(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.Equal(t, "acme", presets[0].Provider)
	assert.Equal(t, []string{"acme-1"}, presets[0].Models)
}

func TestPresets_FallsBackToBuiltins(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{"bad json", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("<html>")) }},
		{"empty list", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("[]")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			assert.Equal(t, BuiltinPresets, Presets(context.Background(), srv.Client(), srv.URL))
		})
	}
}

func TestBuildConfig(t *testing.T) {
	deepseek, ok := FindPreset(BuiltinPresets, "deepseek")
	require.True(t, ok)

	cfg := BuildConfig(DefaultConfig(), deepseek, "sk-ds")
	require.Len(t, cfg.Providers, 1)
	assert.Equal(t, "sk-ds", cfg.Providers[0].APIKey)
	assert.Equal(t, "deepseek,deepseek-chat", cfg.Router.Default)
	assert.Equal(t, DefaultPort, cfg.Port)

	skip := BuildConfig(cfg, Preset{Provider: SkipPreset}, "")
	assert.Empty(t, skip.Providers)
	assert.Empty(t, skip.Router.Default)
	assert.Len(t, cfg.Providers, 1, "base is not modified")
}

func TestSetup_PreservesUnknownKeysAndConfiguresClaude(t *testing.T) {
	fs := afero.NewMemMapFs()
	paths := config.NewPaths("/home/dev")
	require.NoError(t, fsutil.WriteJSON(fs, paths.CCRConfig, map[string]any{
		"PORT":                 4000,
		"APIKEY":               "my-router-key",
		"StatusLine":           map[string]any{"enabled": true},
		"NON_INTERACTIVE_MODE": false,
	}))
	claude := &fakeClaude{}
	gemini, _ := FindPreset(BuiltinPresets, "gemini")

	res, err := Setup(fs, paths, claude, gemini, "g-key", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(paths.CCRDir, "backup", "backup_2026-05-06_07-08-09", "config.json"), res.Backup)

	doc, err := fsutil.ReadJSON(fs, paths.CCRConfig)
	require.NoError(t, err)
	assert.Contains(t, doc, "StatusLine")
	assert.Contains(t, doc, "NON_INTERACTIVE_MODE")
	assert.Equal(t, "my-router-key", doc["APIKEY"])

	assert.Equal(t, config.APIConfig{Type: config.APICCRProxy, Key: "my-router-key", URL: "http://127.0.0.1:4000"}, claude.got)
}

func TestLoad_NumericTimeoutAndOddValues(t *testing.T) {
	fs := afero.NewMemMapFs()
	paths := config.NewPaths("/home/dev")
	require.NoError(t, afero.WriteFile(fs, paths.CCRConfig, []byte(`{
  "APIKEY": "mine",
  "PORT": 4000,
  "API_TIMEOUT_MS": 600000,
  "LOG": "verbose",
  "NON_INTERACTIVE_MODE": true,
  "CUSTOM_ROUTER_PATH": "/x.js"
}`), 0o644))

	cfg, found, err := Load(fs, paths.CCRConfig)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "mine", cfg.APIKey)
	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "600000", cfg.APITimeoutMs.String())

	claude := &fakeClaude{}
	_, err = Setup(fs, paths, claude, Preset{Provider: SkipPreset}, "", now)
	require.NoError(t, err)

	doc, err := fsutil.ReadJSON(fs, paths.CCRConfig)
	require.NoError(t, err)
	assert.Equal(t, "mine", doc["APIKEY"])
	assert.Equal(t, json.Number("4000"), doc["PORT"])
	assert.Equal(t, json.Number("600000"), doc["API_TIMEOUT_MS"])
	assert.Equal(t, "verbose", doc["LOG"], "a value of an unexpected type is written back as read")
	assert.Equal(t, true, doc["NON_INTERACTIVE_MODE"])
	assert.Equal(t, "/x.js", doc["CUSTOM_ROUTER_PATH"])
	assert.Equal(t, "http://127.0.0.1:4000", claude.got.URL)
}

func TestSetup_RequiresKey(t *testing.T) {
	fs := afero.NewMemMapFs()
	gemini, _ := FindPreset(BuiltinPresets, "gemini")
	_, err := Setup(fs, config.NewPaths("/home/dev"), &fakeClaude{}, gemini, "", now)
	assert.Error(t, err)
}

func TestSetup_ClaudeFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	boom := errors.New("boom")
	_, err := Setup(fs, config.NewPaths("/home/dev"), &fakeClaude{err: boom}, Preset{Provider: SkipPreset}, "", now)
	assert.ErrorIs(t, err, boom)
}

func TestManager(t *testing.T) {
	fake := runner.NewFake().Installed("ccr")
	fake.On("ccr stop", "", errors.New("not running"))
	m := Manager{Runner: fake}

	assert.True(t, m.Installed())
	require.NoError(t, m.Restart(context.Background()))
	require.NoError(t, m.UI(context.Background()))
	assert.Error(t, m.Stop(context.Background()))
	assert.True(t, fake.Ran("ccr restart"))
	assert.True(t, fake.Calls[0].Interactive)
}
