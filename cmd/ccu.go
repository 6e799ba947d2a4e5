package cmd

import (
	"github.com/spf13/cobra"
)

func newCCUCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ccu [args...]",
		Short: "Analyze Claude Code usage with ccusage",
		// Everything after ccu belongs to ccusage.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.installer().RunCCUsage(cmd.Context(), args...)
		},
	}
}
