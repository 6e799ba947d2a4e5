package main

import (
	"zcf/cmd"
)

// main delegates to cmd.Execute, which parses flags, runs the selected
// command (the interactive menu when none is given) and sets the exit code.
//
// ZCF configures Claude Code and Codex on a developer machine:
//   - installs the assistants and their companions (CCR, CCometixLine) with npm
//   - writes API credentials, MCP servers, workflows and output styles into
//     ~/.claude, ~/.claude.json and ~/.codex, merging with what is there
//   - backs files up before overwriting them and moves them to the trash on uninstall
//   - remembers the choices made in ~/.zcf-config.json so the next run offers them again
func main() {
	cmd.Execute()
}
