package claude

import (
	"fmt"
	"path/filepath"

	"zcf/internal/config"
	"zcf/internal/fsutil"
	"zcf/internal/logger"
	"zcf/internal/templates"
)

// WorkflowResult is the outcome for one workflow. A failed workflow does not
// stop the others.
type WorkflowResult struct {
	ID    string
	Files []string
	Err   error
}

// CommandsDir is where ZCF installs slash commands.
func (c *Configurator) CommandsDir() string {
	return filepath.Join(c.Paths.ClaudeCommands, config.ZCFSubdir)
}

// AgentsDir is where ZCF installs agents.
func (c *Configurator) AgentsDir() string {
	return filepath.Join(c.Paths.ClaudeAgents, config.ZCFSubdir)
}

// InstallWorkflows copies the commands and agents of each selected workflow
// in lang. Files from a previous install of the same workflow are replaced;
// files belonging to workflows that were not selected stay.
func (c *Configurator) InstallWorkflows(m *templates.Manifest, ids []string, lang string) []WorkflowResult {
	results := make([]WorkflowResult, 0, len(ids))
	for _, id := range ids {
		res := WorkflowResult{ID: id}
		wf, ok := m.Workflow(id)
		if !ok {
			res.Err = fmt.Errorf("unknown workflow %q", id)
			results = append(results, res)
			continue
		}
		res.Files, res.Err = c.installWorkflow(wf, lang)
		if res.Err != nil {
			logger.Debug("[DEBUG] Workflow %s failed: %v\n", id, res.Err)
		}
		results = append(results, res)
	}
	return results
}

func (c *Configurator) installWorkflow(wf templates.Workflow, lang string) ([]string, error) {
	type item struct{ src, dst string }
	var items []item
	for _, f := range wf.Commands {
		items = append(items, item{templates.CommandPath(lang, f), filepath.Join(c.CommandsDir(), f)})
	}
	for _, f := range wf.Agents {
		items = append(items, item{templates.AgentPath(lang, f), filepath.Join(c.AgentsDir(), f)})
	}

	var written []string
	for _, it := range items {
		if fsutil.Exists(c.Fs, it.dst) {
			if err := c.Fs.Remove(it.dst); err != nil {
				return written, fmt.Errorf("remove old %s: %w", it.dst, err)
			}
		}
		if err := fsutil.CopyEmbedded(c.Fs, templates.FS(), it.src, it.dst); err != nil {
			return written, err
		}
		written = append(written, it.dst)
	}
	return written, nil
}
