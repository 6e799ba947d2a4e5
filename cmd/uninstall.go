package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"zcf/internal/config"
	"zcf/internal/i18n"
	"zcf/internal/installer"
	"zcf/internal/logger"
	"zcf/internal/prompt"
)

var errUninstallIncomplete = errors.New("uninstall finished with errors")

type uninstallOptions struct {
	Lang  string
	Mode  string
	Items string
}

func newUninstallCmd(a *app) *cobra.Command {
	var o uninstallOptions
	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove what ZCF configured and the tools it installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUninstall(cmd.Context(), a, o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.Lang, "lang", "l", "", "Display language (zh-CN, en)")
	f.StringVarP(&o.Mode, "mode", "m", "", "Uninstall mode (complete, custom, interactive)")
	f.StringVarP(&o.Items, "items", "i", "", "Comma-separated items for --mode custom ("+strings.Join(installer.Items, ", ")+")")
	return cmd
}

func runUninstall(ctx context.Context, a *app, o uninstallOptions) error {
	if err := config.ValidateUninstall(o.Mode, o.Items, installer.Items); err != nil {
		return err
	}
	mode := config.UninstallMode(o.Mode)
	if _, err := a.useLang(a.loadState(), o.Lang, mode != "" && mode != config.UninstallInteractive); err != nil {
		return err
	}
	logger.Title("%s\n", i18n.T("uninstall.title"))

	u := a.uninstaller()
	if mode == "" || mode == config.UninstallInteractive {
		choice, err := a.prompter.Select(i18n.T("uninstall.selectMode"), []prompt.Option{
			{Label: i18n.T("uninstall.complete"), Value: string(config.UninstallComplete), Hint: i18n.T("uninstall.completeHint")},
			{Label: i18n.T("uninstall.custom"), Value: string(config.UninstallCustom), Hint: i18n.T("uninstall.customHint")},
		}, string(config.UninstallCustom))
		if err != nil {
			return err
		}
		mode = config.UninstallMode(choice)

		var items []string
		if mode == config.UninstallCustom {
			opts := make([]prompt.Option, 0, len(installer.Items))
			for _, it := range installer.Items {
				opts = append(opts, prompt.Option{Label: i18n.T("uninstall.item." + it), Value: it})
			}
			if items, err = a.prompter.MultiSelect(i18n.T("uninstall.selectItems"), opts, nil); err != nil {
				return err
			}
			if len(items) == 0 {
				return prompt.ErrCancelled
			}
			o.Items = strings.Join(items, ",")
		}
		ok, err := a.prompter.Confirm(i18n.T("uninstall.confirm"), false)
		if err != nil {
			return err
		}
		if !ok {
			return prompt.ErrCancelled
		}
	}

	var res installer.UninstallResult
	if mode == config.UninstallComplete {
		res = u.Complete(ctx)
	} else {
		res = u.Custom(ctx, config.ParseList(o.Items))
	}
	printUninstallResult(res)
	if !res.Success {
		return errUninstallIncomplete
	}
	return nil
}

func printUninstallResult(res installer.UninstallResult) {
	for _, r := range res.Removed {
		logger.Success("%s\n", i18n.T("uninstall.removed", r))
	}
	for _, p := range res.RemovedConfigs {
		logger.Success("%s\n", i18n.T("uninstall.trashed", p))
	}
	for _, w := range res.Warnings {
		logger.Warn("%s\n", w)
	}
	for _, e := range res.Errors {
		logger.Error("%s\n", e)
	}
	if res.Success {
		logger.Success("%s\n", i18n.T("uninstall.done"))
	}
}
