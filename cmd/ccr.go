package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"zcf/internal/i18n"
	"zcf/internal/installer"
	"zcf/internal/logger"
	"zcf/internal/prompt"
)

func newCCRCmd(a *app) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "ccr",
		Short: "Manage the Claude Code Router",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.useLang(a.loadState(), lang, false); err != nil {
				return err
			}
			return runCCRMenu(cmd.Context(), a)
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Display language (zh-CN, en)")
	return cmd
}

// runCCRMenu loops over the router actions until the user goes back.
func runCCRMenu(ctx context.Context, a *app) error {
	m := a.ccr()
	for {
		logger.Title("%s\n", i18n.T("ccr.menuTitle"))
		choice, err := a.prompter.Select(i18n.T("menu.choose"), []prompt.Option{
			{Key: "1", Label: i18n.T("ccr.menu.setup"), Value: "setup"},
			{Key: "2", Label: i18n.T("ccr.menu.ui"), Value: "ui"},
			{Key: "3", Label: i18n.T("ccr.menu.status"), Value: "status"},
			{Key: "4", Label: i18n.T("ccr.menu.restart"), Value: "restart"},
			{Key: "5", Label: i18n.T("ccr.menu.start"), Value: "start"},
			{Key: "6", Label: i18n.T("ccr.menu.stop"), Value: "stop"},
			{Key: "0", Label: i18n.T("menu.back"), Value: "back"},
		}, "setup")
		if err != nil {
			return err
		}
		if choice == "back" {
			return nil
		}
		if choice != "setup" && !m.Installed() {
			logger.Warn("%s\n", i18n.T("ccr.notInstalled"))
			if _, err := a.ensureInstalled(ctx, installer.CCR, false); err != nil {
				return err
			}
			continue
		}

		switch choice {
		case "setup":
			err = setupCCR(ctx, a, "", false)
		case "ui":
			err = m.UI(ctx)
		case "status":
			err = m.Status(ctx)
		case "restart":
			err = m.Restart(ctx)
		case "start":
			err = m.Start(ctx)
		case "stop":
			err = m.Stop(ctx)
		}
		if err != nil {
			if isCancel(err) {
				return err
			}
			// Router commands fail for ordinary reasons (not running); stay in the menu.
			logger.Error("%s\n", err)
		}
	}
}
