package cmd

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/spf13/afero"

	"zcf/internal/ccr"
	"zcf/internal/claude"
	"zcf/internal/codex"
	"zcf/internal/config"
	"zcf/internal/fsutil"
	"zcf/internal/i18n"
	"zcf/internal/installer"
	"zcf/internal/logger"
	"zcf/internal/options"
	"zcf/internal/prompt"
	"zcf/internal/runner"
	"zcf/internal/state"
	"zcf/internal/templates"
)

// app holds everything a command touches outside the process. Execute builds
// it from the real machine; tests build one over an in-memory filesystem
// with scripted prompts and a fake runner.
type app struct {
	fs       afero.Fs
	paths    config.Paths
	runner   runner.Runner
	prompter prompt.Prompter
	manifest *templates.Manifest
	http     *http.Client
	trash    fsutil.Trasher
	now      func() time.Time
	getenv   func(string) string
	goos     string
	presets  string
}

func newApp() (*app, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, err
	}
	m, err := templates.Load()
	if err != nil {
		return nil, err
	}
	fs := afero.NewOsFs()
	r := runner.New()
	return &app{
		fs:       fs,
		paths:    paths,
		runner:   r,
		prompter: prompt.New(os.Stdin, os.Stdout),
		manifest: m,
		http:     &http.Client{Timeout: ccr.FetchTimeout},
		trash:    fsutil.NewOSTrash(fs, r, paths.Home),
		now:      time.Now,
		getenv:   os.Getenv,
		goos:     runtime.GOOS,
		presets:  ccr.PresetsURL,
	}, nil
}

func (a *app) loadState() *state.State {
	return state.Load(a.fs, a.paths.ZCFConfig)
}

func (a *app) saveState(fn func(*state.State)) error {
	return state.Update(a.fs, a.paths.ZCFConfig, a.now(), fn)
}

func (a *app) claude() *claude.Configurator {
	c := claude.New(a.fs, a.paths)
	c.GOOS = a.goos
	c.Now = a.now
	return c
}

func (a *app) codex() *codex.Configurator {
	c := codex.New(a.fs, a.paths)
	c.GOOS = a.goos
	c.Now = a.now
	return c
}

func (a *app) installer() installer.Installer {
	return installer.New(a.runner)
}

func (a *app) ccr() ccr.Manager {
	return ccr.Manager{Runner: a.runner}
}

func (a *app) uninstaller() *installer.Uninstaller {
	return &installer.Uninstaller{
		Paths:     a.paths,
		Trash:     a.trash,
		Installer: a.installer(),
		Claude:    a.claude(),
	}
}

func (a *app) resolver(st *state.State, skipPrompt bool) *options.Resolver {
	return &options.Resolver{
		Prompter:   a.prompter,
		Manifest:   a.manifest,
		Saved:      st,
		SkipPrompt: skipPrompt,
		Getenv:     a.getenv,
	}
}

// useLang validates --lang, resolves the display language and switches the
// catalog to it.
func (a *app) useLang(st *state.State, flag string, skipPrompt bool) (string, error) {
	if err := config.ValidateLang(flag); err != nil {
		return "", err
	}
	lang, err := a.resolver(st, skipPrompt).DisplayLang(flag)
	if err != nil {
		return "", err
	}
	i18n.SetLanguage(lang)
	return lang, nil
}

// ensureInstalled installs p when it is missing, asking first unless
// skipPrompt is set. It reports whether p is available afterwards.
func (a *app) ensureInstalled(ctx context.Context, p installer.Package, skipPrompt bool) (bool, error) {
	inst := a.installer()
	if inst.IsInstalled(p) {
		return true, nil
	}
	if !skipPrompt {
		ok, err := a.prompter.Confirm(i18n.T("install.confirm", p.Name), true)
		if err != nil {
			return false, err
		}
		if !ok {
			logger.Warn("%s\n", i18n.T("install.skipped", p.Name))
			return false, nil
		}
	}
	logger.Info("%s\n", i18n.T("install.installing", p.Name))
	if err := inst.Install(ctx, p); err != nil {
		return false, err
	}
	logger.Success("%s\n", i18n.T("install.done", p.Name))
	return true, nil
}
