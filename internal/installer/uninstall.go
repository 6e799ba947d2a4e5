package installer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"zcf/internal/claude"
	"zcf/internal/config"
	"zcf/internal/fsutil"
	"zcf/internal/logger"
)

// Uninstall items, in the order the interactive mode lists them.
const (
	ItemOutputStyles    = "output-styles"
	ItemCommands        = "commands"
	ItemAgents          = "agents"
	ItemClaudeMD        = "claude-md"
	ItemPermissionsEnvs = "permissions-envs"
	ItemMCPs            = "mcps"
	ItemCCR             = "ccr"
	ItemCCLine          = "ccline"
	ItemClaudeCode      = "claude-code"
	ItemBackups         = "backups"
	ItemZCFConfig       = "zcf-config"
)

// Items lists every custom uninstall item.
var Items = []string{
	ItemOutputStyles, ItemCommands, ItemAgents, ItemClaudeMD, ItemPermissionsEnvs,
	ItemMCPs, ItemCCR, ItemCCLine, ItemClaudeCode, ItemBackups, ItemZCFConfig,
}

// conflicts maps an item to the items it makes redundant. Removing Claude
// Code removes ~/.claude.json, which is where the MCP servers live.
var conflicts = map[string][]string{
	ItemClaudeCode: {ItemMCPs},
}

// ResolveConflicts drops duplicates and items implied by another selected
// item, keeping the original order.
func ResolveConflicts(items []string) []string {
	drop := map[string]bool{}
	for _, it := range items {
		for _, implied := range conflicts[it] {
			drop[implied] = true
		}
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if drop[it] || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

// UninstallResult collects what an uninstall run did. Individual failures
// are recorded and the run continues.
type UninstallResult struct {
	Success        bool
	Removed        []string
	RemovedConfigs []string
	Warnings       []string
	Errors         []string
}

func (r *UninstallResult) merge(o UninstallResult) {
	r.Removed = append(r.Removed, o.Removed...)
	r.RemovedConfigs = append(r.RemovedConfigs, o.RemovedConfigs...)
	r.Warnings = append(r.Warnings, o.Warnings...)
	r.Errors = append(r.Errors, o.Errors...)
}

func (r *UninstallResult) finish() UninstallResult {
	r.Success = len(r.Errors) == 0
	return *r
}

// Uninstaller removes what ZCF and the wrapped tools put on the machine.
// Files go to the trash, never straight to deletion.
type Uninstaller struct {
	Paths     config.Paths
	Trash     fsutil.Trasher
	Installer Installer
	Claude    *claude.Configurator
}

// Complete removes every config directory ZCF touches and uninstalls the
// npm packages.
func (u *Uninstaller) Complete(ctx context.Context) UninstallResult {
	var res UninstallResult
	for _, p := range []string{u.Paths.ClaudeDir, u.Paths.ClaudeJSON, u.Paths.CCRDir, u.Paths.ZCFConfig} {
		res.merge(u.trash(ctx, p))
	}
	for _, p := range []Package{ClaudeCode, CCR, CCLine} {
		res.merge(u.uninstallPackage(ctx, p))
	}
	return res.finish()
}

// Custom removes the selected items after conflict resolution.
func (u *Uninstaller) Custom(ctx context.Context, items []string) UninstallResult {
	var res UninstallResult
	for _, it := range ResolveConflicts(items) {
		logger.Debug("[DEBUG] Uninstalling item %s\n", it)
		res.merge(u.item(ctx, it))
	}
	return res.finish()
}

func (u *Uninstaller) item(ctx context.Context, it string) UninstallResult {
	switch it {
	case ItemOutputStyles:
		res := u.trash(ctx, u.Paths.OutputStylesDir)
		res.merge(u.settingsKeys(it, "outputStyle"))
		return res
	case ItemCommands:
		return u.trash(ctx, filepath.Join(u.Paths.ClaudeCommands, config.ZCFSubdir))
	case ItemAgents:
		return u.trash(ctx, filepath.Join(u.Paths.ClaudeAgents, config.ZCFSubdir))
	case ItemClaudeMD:
		return u.trash(ctx, u.Paths.ClaudeMemory)
	case ItemPermissionsEnvs:
		return u.settingsKeys(it, "env", "permissions")
	case ItemMCPs:
		return u.clearMCPs()
	case ItemCCR:
		res := u.uninstallPackage(ctx, CCR)
		res.merge(u.trash(ctx, u.Paths.CCRDir))
		return res
	case ItemCCLine:
		res := u.uninstallPackage(ctx, CCLine)
		res.merge(u.trash(ctx, u.Paths.ClineDir))
		res.merge(u.settingsKeys(it, "statusLine"))
		return res
	case ItemClaudeCode:
		res := u.uninstallPackage(ctx, ClaudeCode)
		res.merge(u.trash(ctx, u.Paths.ClaudeJSON))
		return res
	case ItemBackups:
		res := u.trash(ctx, u.Paths.ClaudeBackupDir)
		res.merge(u.trash(ctx, u.Paths.CodexBackupDir))
		res.merge(u.trash(ctx, filepath.Join(u.Paths.CCRDir, "backup")))
		return res
	case ItemZCFConfig:
		return u.trash(ctx, u.Paths.ZCFConfig)
	}
	return UninstallResult{Errors: []string{fmt.Sprintf("unknown uninstall item %q", it)}}
}

func (u *Uninstaller) trash(ctx context.Context, path string) UninstallResult {
	var res UninstallResult
	err := u.Trash.Trash(ctx, path)
	switch {
	case err == nil:
		res.RemovedConfigs = append(res.RemovedConfigs, path)
	case errors.Is(err, fsutil.ErrNotFound):
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s not found", path))
	default:
		res.Errors = append(res.Errors, fmt.Sprintf("move %s to trash: %v", path, err))
	}
	return res
}

func (u *Uninstaller) uninstallPackage(ctx context.Context, p Package) UninstallResult {
	var res UninstallResult
	if !u.Installer.IsInstalled(p) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s is not installed", p.Name))
		return res
	}
	if err := u.Installer.Uninstall(ctx, p); err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res
	}
	res.Removed = append(res.Removed, p.Name)
	return res
}

func (u *Uninstaller) settingsKeys(item string, keys ...string) UninstallResult {
	var res UninstallResult
	removed, err := u.Claude.RemoveSettingsKeys(keys...)
	switch {
	case err != nil:
		res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", item, err))
	case removed:
		res.Removed = append(res.Removed, item)
	default:
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s not configured", item))
	}
	return res
}

func (u *Uninstaller) clearMCPs() UninstallResult {
	var res UninstallResult
	removed, err := u.Claude.ClearMCPServers()
	switch {
	case err != nil:
		res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", ItemMCPs, err))
	case removed:
		res.Removed = append(res.Removed, ItemMCPs)
	default:
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s not configured", ItemMCPs))
	}
	return res
}
