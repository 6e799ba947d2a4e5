package ccr

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"zcf/internal/config"
	"zcf/internal/runner"
)

// Command is the router's CLI.
const Command = "ccr"

// ClaudeAPI is the part of the Claude Code configurator Setup needs.
type ClaudeAPI interface {
	ConfigureAPI(api config.APIConfig) error
}

// SetupResult reports what Setup wrote.
type SetupResult struct {
	Backup string
	Config *Config
}

// BuildConfig turns a preset into a router config on top of base. The first
// model of the preset becomes every route. The skip preset clears providers
// and routes for manual editing.
func BuildConfig(base *Config, preset Preset, apiKey string) *Config {
	cfg := *base
	if preset.Provider == SkipPreset {
		cfg.Providers = []Provider{}
		cfg.Router = Router{}
		return &cfg
	}
	cfg.Providers = []Provider{{
		Name:        preset.Provider,
		APIBaseURL:  preset.BaseURL,
		APIKey:      apiKey,
		Models:      preset.Models,
		Transformer: preset.Transformer,
	}}
	route := ""
	if len(preset.Models) > 0 {
		route = preset.Provider + "," + preset.Models[0]
	}
	cfg.Router = Router{
		Default:              route,
		Background:           route,
		Think:                route,
		LongContext:          route,
		LongContextThreshold: 60000,
		WebSearch:            route,
	}
	return &cfg
}

// Setup backs up any router config, writes the one built from preset and
// points Claude Code at the router.
func Setup(fs afero.Fs, paths config.Paths, claude ClaudeAPI, preset Preset, apiKey string, now time.Time) (SetupResult, error) {
	var res SetupResult
	if preset.RequiresAPIKey && apiKey == "" && preset.Provider != SkipPreset {
		return res, fmt.Errorf("preset %s needs an API key", preset.Name)
	}

	base, _, err := Load(fs, paths.CCRConfig)
	if err != nil {
		// Unreadable config: keep a copy and start over.
		base = DefaultConfig()
	}
	if res.Backup, err = BackupConfig(fs, paths, now); err != nil {
		return res, err
	}

	cfg := BuildConfig(base, preset, apiKey)
	if err := cfg.Save(fs, paths.CCRConfig); err != nil {
		return res, err
	}
	res.Config = cfg

	if err := claude.ConfigureAPI(cfg.ProxyAPI()); err != nil {
		return res, fmt.Errorf("point Claude Code at the router: %w", err)
	}
	return res, nil
}

// Manager runs router commands.
type Manager struct {
	Runner runner.Runner
}

// Installed reports whether the ccr command is on PATH.
func (m Manager) Installed() bool {
	return runner.Exists(m.Runner, Command)
}

func (m Manager) run(ctx context.Context, sub string) error {
	if err := m.Runner.Interactive(ctx, Command, sub); err != nil {
		return fmt.Errorf("ccr %s: %w", sub, err)
	}
	return nil
}

// UI opens the router's web UI.
func (m Manager) UI(ctx context.Context) error { return m.run(ctx, "ui") }

// Status prints the router status.
func (m Manager) Status(ctx context.Context) error { return m.run(ctx, "status") }

// Restart restarts the router so a new config takes effect.
func (m Manager) Restart(ctx context.Context) error { return m.run(ctx, "restart") }

// Start starts the router.
func (m Manager) Start(ctx context.Context) error { return m.run(ctx, "start") }

// Stop stops the router.
func (m Manager) Stop(ctx context.Context) error { return m.run(ctx, "stop") }
