package claude

import (
	"fmt"
	"path/filepath"
	"sort"

	"zcf/internal/fsutil"
	"zcf/internal/logger"
	"zcf/internal/templates"
)

// MCPResult reports what ConfigureMCPServers did.
type MCPResult struct {
	Backup     string
	Configured []string
	// Skipped holds services that need an API key none was given for.
	Skipped []string
}

// ConfigureMCPServers adds the selected services to mcpServers in
// ~/.claude.json after backing the file up. Servers already present and not
// selected are left alone. apiKeys maps service id to its key.
func (c *Configurator) ConfigureMCPServers(m *templates.Manifest, ids []string, apiKeys map[string]string) (MCPResult, error) {
	var res MCPResult
	if len(ids) == 0 {
		return res, nil
	}

	backupDir := filepath.Join(c.Paths.ClaudeBackupDir, fsutil.BackupName(c.Now()))
	backup, err := fsutil.BackupFile(c.Fs, c.Paths.ClaudeJSON, backupDir)
	if err != nil {
		return res, err
	}
	res.Backup = backup

	err = fsutil.UpdateJSON(c.Fs, c.Paths.ClaudeJSON, func(doc map[string]any) error {
		servers := fsutil.Object(doc, "mcpServers")
		for _, id := range ids {
			svc, ok := m.MCPService(id)
			if !ok {
				return fmt.Errorf("unknown MCP service %q", id)
			}
			key := apiKeys[id]
			if svc.RequiresAPIKey && key == "" {
				logger.Debug("[DEBUG] Skipping MCP service %s: no API key\n", id)
				res.Skipped = append(res.Skipped, id)
				continue
			}
			servers[id] = serverEntry(svc.Launch(key, c.GOOS))
			res.Configured = append(res.Configured, id)
		}
		return nil
	})
	return res, err
}

// serverEntry renders a server the way Claude Code stores it.
func serverEntry(s templates.MCPServer) map[string]any {
	entry := map[string]any{}
	if s.Type != "" {
		entry["type"] = s.Type
	}
	if s.URL != "" {
		entry["url"] = s.URL
	}
	if s.Command != "" {
		entry["command"] = s.Command
		args := make([]any, len(s.Args))
		for i, a := range s.Args {
			args[i] = a
		}
		entry["args"] = args
	}
	if len(s.Env) > 0 {
		env := make(map[string]any, len(s.Env))
		for k, v := range s.Env {
			env[k] = v
		}
		entry["env"] = env
	}
	return entry
}

// MCPServers lists the configured server ids, sorted.
func (c *Configurator) MCPServers() ([]string, error) {
	doc, err := fsutil.ReadJSON(c.Fs, c.Paths.ClaudeJSON)
	if err != nil {
		return nil, err
	}
	servers, _ := doc["mcpServers"].(map[string]any)
	ids := make([]string, 0, len(servers))
	for id := range servers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ClearMCPServers removes every MCP server from ~/.claude.json, keeping the
// rest of the file. It reports whether there was anything to remove.
func (c *Configurator) ClearMCPServers() (bool, error) {
	if !fsutil.Exists(c.Fs, c.Paths.ClaudeJSON) {
		return false, nil
	}
	removed := false
	err := fsutil.UpdateJSON(c.Fs, c.Paths.ClaudeJSON, func(doc map[string]any) error {
		if _, ok := doc["mcpServers"]; ok {
			delete(doc, "mcpServers")
			removed = true
		}
		return nil
	})
	return removed, err
}
