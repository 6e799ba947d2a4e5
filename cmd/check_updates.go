package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"zcf/internal/i18n"
	"zcf/internal/installer"
	"zcf/internal/logger"
)

var errUpdateIncomplete = errors.New("some updates failed")

type checkOptions struct {
	Lang       string
	SkipPrompt bool
}

func newCheckUpdatesCmd(a *app) *cobra.Command {
	var o checkOptions
	cmd := &cobra.Command{
		Use:     "check-updates",
		Aliases: []string{"check"},
		Short:   "Check the installed tools for newer versions and update them",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.useLang(a.loadState(), o.Lang, o.SkipPrompt); err != nil {
				return err
			}
			return runCheckUpdates(cmd.Context(), a, o.SkipPrompt)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.Lang, "lang", "l", "", "Display language (zh-CN, en)")
	f.BoolVarP(&o.SkipPrompt, "skip-prompt", "s", false, "Update without asking")
	return cmd
}

// runCheckUpdates prints one line per installed package and updates the
// outdated ones after confirmation. A failed package does not stop the others.
func runCheckUpdates(ctx context.Context, a *app, skipPrompt bool) error {
	logger.Title("%s\n", i18n.T("updates.title"))
	inst := a.installer()
	rows := inst.CheckUpdates(ctx, installer.Packages)
	if len(rows) == 0 {
		logger.Warn("%s\n", i18n.T("updates.nothingInstalled"))
		return nil
	}

	failed := false
	for _, row := range rows {
		name := row.Package.Name
		switch {
		case row.Err != nil:
			logger.Error("%s\n", i18n.T("updates.checkFailed", name, row.Err))
		case !row.NeedsUpdate:
			logger.Success("%s\n", i18n.T("updates.upToDate", name, row.Installed))
		default:
			logger.Info("%s\n", i18n.T("updates.available", name, row.Installed, row.Latest))
			if !skipPrompt {
				ok, err := a.prompter.Confirm(i18n.T("updates.confirm", name, row.Latest), true)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
			}
			if err := inst.Update(ctx, row.Package); err != nil {
				logger.Error("%s\n", i18n.T("updates.failed", name, err))
				failed = true
				continue
			}
			logger.Success("%s\n", i18n.T("updates.updated", name, row.Latest))
		}
	}
	if failed {
		return errUpdateIncomplete
	}
	return nil
}
