package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"zcf/internal/i18n"
	"zcf/internal/logger"
	"zcf/internal/prompt"
)

// debug enables [DEBUG] output. It is toggled with the global --debug flag.
var debug bool

// newRootCmd builds the zcf command tree over a. Running zcf without a
// subcommand opens the interactive menu.
func newRootCmd(a *app) *cobra.Command {
	var lang string
	root := &cobra.Command{
		Use:           "zcf",
		Short:         "Zero-config setup for Claude Code and Codex",
		SilenceUsage:  true,
		SilenceErrors: true,

		// PersistentPreRun runs before any subcommand, so --debug applies to all.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd.Context(), a, lang)
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.Flags().StringVarP(&lang, "lang", "l", "", "Display language (zh-CN, en)")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		newInitCmd(a),
		newUpdateCmd(a),
		newCCRCmd(a),
		newCCUCmd(a),
		newConfigSwitchCmd(a),
		newUninstallCmd(a),
		newCheckUpdatesCmd(a),
	)
	return root
}

// Execute runs the CLI and exits with its status: 0 on success or when the
// user cancels, 1 on any other error.
func Execute() {
	a, err := newApp()
	if err != nil {
		logger.Error("%v\n", err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	code := exitCode(newRootCmd(a).ExecuteContext(ctx))
	stop()
	os.Exit(code)
}

// isCancel reports whether err means the user backed out.
func isCancel(err error) bool {
	return errors.Is(err, prompt.ErrCancelled) || errors.Is(err, context.Canceled)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case isCancel(err):
		logger.Warn("%s\n", i18n.T("common.cancelled"))
		return 0
	default:
		logger.Error("%s %v\n", i18n.T("common.error"), err)
		return 1
	}
}
