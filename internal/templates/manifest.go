// Package templates embeds every file ZCF copies into a user's home directory
// together with manifest.yaml, which describes the installable workflows,
// output styles and MCP services.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed manifest.yaml common claude-code
var files embed.FS

// FS exposes the embedded template tree.
func FS() fs.FS { return files }

// Localized is a per-language string. Lookups fall back to en.
type Localized map[string]string

// Get returns the text for lang, or English if lang has none.
func (l Localized) Get(lang string) string {
	if v, ok := l[lang]; ok && v != "" {
		return v
	}
	return l["en"]
}

// Workflow is a bundle of command and agent templates.
type Workflow struct {
	ID          string    `yaml:"id"`
	Name        Localized `yaml:"name"`
	Description Localized `yaml:"description"`
	Order       int       `yaml:"order"`
	Default     bool      `yaml:"default"`
	Commands    []string  `yaml:"commands"`
	Agents      []string  `yaml:"agents"`
	Codex       bool      `yaml:"codex"` // commands double as Codex prompts
}

// OutputStyle is a Claude Code output style. Built-in styles ship with
// Claude Code and have no template file.
type OutputStyle struct {
	ID          string    `yaml:"id"`
	Name        Localized `yaml:"name"`
	Description Localized `yaml:"description"`
	Custom      bool      `yaml:"custom"`
	Default     bool      `yaml:"default"`
}

// MCPServer is the launch configuration written into the assistant's config.
type MCPServer struct {
	Type    string            `yaml:"type" json:"type,omitempty"`
	Command string            `yaml:"command" json:"command,omitempty"`
	Args    []string          `yaml:"args" json:"args,omitempty"`
	Env     map[string]string `yaml:"env" json:"env,omitempty"`
	URL     string            `yaml:"url" json:"url,omitempty"`
}

// MCPService is one selectable MCP service.
type MCPService struct {
	ID                string    `yaml:"id"`
	Name              Localized `yaml:"name"`
	Description       Localized `yaml:"description"`
	RequiresAPIKey    bool      `yaml:"requiresApiKey"`
	APIKeyEnvVar      string    `yaml:"apiKeyEnvVar"`
	APIKeyPlaceholder string    `yaml:"apiKeyPlaceholder"`
	APIKeyPrompt      Localized `yaml:"apiKeyPrompt"`
	Server            MCPServer `yaml:"server"`
}

// Manifest is the parsed manifest.yaml.
type Manifest struct {
	Workflows    []Workflow    `yaml:"workflows"`
	OutputStyles []OutputStyle `yaml:"outputStyles"`
	MCPServices  []MCPService  `yaml:"mcpServices"`
}

var (
	manifestOnce sync.Once
	manifest     *Manifest
	manifestErr  error
)

// Load parses manifest.yaml once and caches it.
func Load() (*Manifest, error) {
	manifestOnce.Do(func() {
		raw, err := files.ReadFile("manifest.yaml")
		if err != nil {
			manifestErr = fmt.Errorf("read manifest: %w", err)
			return
		}
		var m Manifest
		if err := yaml.Unmarshal(raw, &m); err != nil {
			manifestErr = fmt.Errorf("parse manifest: %w", err)
			return
		}
		sort.SliceStable(m.Workflows, func(i, j int) bool { return m.Workflows[i].Order < m.Workflows[j].Order })
		manifest = &m
	})
	return manifest, manifestErr
}

// MustLoad is Load for call sites that run after the manifest is known good
// (it is embedded, so a parse failure is a build defect).
func MustLoad() *Manifest {
	m, err := Load()
	if err != nil {
		panic(err)
	}
	return m
}

// Workflow looks up a workflow by id.
func (m *Manifest) Workflow(id string) (Workflow, bool) {
	for _, w := range m.Workflows {
		if w.ID == id {
			return w, true
		}
	}
	return Workflow{}, false
}

// OutputStyle looks up an output style by id.
func (m *Manifest) OutputStyle(id string) (OutputStyle, bool) {
	for _, s := range m.OutputStyles {
		if s.ID == id {
			return s, true
		}
	}
	return OutputStyle{}, false
}

// MCPService looks up an MCP service by id.
func (m *Manifest) MCPService(id string) (MCPService, bool) {
	for _, s := range m.MCPServices {
		if s.ID == id {
			return s, true
		}
	}
	return MCPService{}, false
}

// WorkflowIDs returns every workflow id in display order.
func (m *Manifest) WorkflowIDs() []string {
	ids := make([]string, 0, len(m.Workflows))
	for _, w := range m.Workflows {
		ids = append(ids, w.ID)
	}
	return ids
}

// CustomStyleIDs returns the ids of styles that have a template file.
func (m *Manifest) CustomStyleIDs() []string {
	var ids []string
	for _, s := range m.OutputStyles {
		if s.Custom {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// StyleIDs returns every output style id, custom first.
func (m *Manifest) StyleIDs() []string {
	ids := m.CustomStyleIDs()
	for _, s := range m.OutputStyles {
		if !s.Custom {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// DefaultStyleID returns the style flagged as default.
func (m *Manifest) DefaultStyleID() string {
	for _, s := range m.OutputStyles {
		if s.Default {
			return s.ID
		}
	}
	return "engineer-professional"
}

// MCPServiceIDs returns every MCP service id.
func (m *Manifest) MCPServiceIDs() []string {
	ids := make([]string, 0, len(m.MCPServices))
	for _, s := range m.MCPServices {
		ids = append(ids, s.ID)
	}
	return ids
}

// KeylessMCPServiceIDs returns the services that can be installed without
// asking for an API key. Skip-prompt mode defaults to this set.
func (m *Manifest) KeylessMCPServiceIDs() []string {
	var ids []string
	for _, s := range m.MCPServices {
		if !s.RequiresAPIKey {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// Lang normalizes a template language; anything unknown maps to en.
func Lang(lang string) string {
	if lang == "zh-CN" {
		return lang
	}
	return "en"
}

// CommandPath is the embedded path of a workflow command template.
func CommandPath(lang, file string) string {
	return path.Join("claude-code", Lang(lang), "commands", file)
}

// AgentPath is the embedded path of an agent template.
func AgentPath(lang, file string) string {
	return path.Join("claude-code", Lang(lang), "agents", file)
}

// OutputStylePath is the embedded path of a custom output style.
func OutputStylePath(lang, id string) string {
	return path.Join("claude-code", Lang(lang), "output-styles", id+".md")
}

// SettingsPath is the embedded Claude Code settings.json template.
const SettingsPath = "common/settings.json"

// ReadFile reads one embedded template.
func ReadFile(name string) ([]byte, error) {
	return files.ReadFile(name)
}

// StripFrontMatter removes a leading YAML front matter block from a markdown
// template. Codex reads AGENTS.md verbatim and has no use for it.
func StripFrontMatter(content string) string {
	if !strings.HasPrefix(content, "---\n") {
		return content
	}
	rest := content[len("---\n"):]
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		return content
	}
	return strings.TrimLeft(rest[end+len("\n---\n"):], "\n")
}

// LanguageDirective is the instruction that pins the assistant's reply
// language. Any value other than zh-CN and en is used verbatim.
func LanguageDirective(lang string) string {
	switch lang {
	case "zh-CN":
		return "Always respond in Chinese-simplified"
	case "en", "":
		return "Always respond in English"
	default:
		return "Always respond in " + lang
	}
}

// Launch returns the server configuration for this service with apiKey
// substituted for the placeholder in args and env. On Windows npx is wrapped
// in "cmd /c" since it is a batch script there.
func (s MCPService) Launch(apiKey, goos string) MCPServer {
	srv := MCPServer{Type: s.Server.Type, Command: s.Server.Command, URL: s.Server.URL}
	fill := func(v string) string {
		if s.APIKeyPlaceholder != "" && apiKey != "" {
			return strings.ReplaceAll(v, s.APIKeyPlaceholder, apiKey)
		}
		return v
	}
	for _, a := range s.Server.Args {
		srv.Args = append(srv.Args, fill(a))
	}
	if len(s.Server.Env) > 0 {
		srv.Env = make(map[string]string, len(s.Server.Env))
		for k, v := range s.Server.Env {
			srv.Env[k] = fill(v)
		}
	}
	if s.RequiresAPIKey && s.APIKeyEnvVar != "" && apiKey != "" {
		if srv.Env == nil {
			srv.Env = map[string]string{}
		}
		srv.Env[s.APIKeyEnvVar] = apiKey
	}
	if goos == "windows" && srv.Command == "npx" {
		srv.Args = append([]string{"/c", "npx"}, srv.Args...)
		srv.Command = "cmd"
	}
	return srv
}

// Markers fence the part of a memory file ZCF owns. Text outside them
// belongs to the user.
const (
	BlockStart = "<!-- zcf:ai-language:start -->"
	BlockEnd   = "<!-- zcf:ai-language:end -->"
)

// ReplaceBlock returns content with the ZCF block set to body, appending the
// block when content has none. A block missing its end marker runs to the
// end of content.
func ReplaceBlock(content, body string) string {
	block := BlockStart + "\n" + body + "\n" + BlockEnd
	if start, end, ok := blockBounds(content); ok {
		return content[:start] + block + content[end:]
	}
	if content == "" {
		return block + "\n"
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + block + "\n"
}

// blockBounds reports where the ZCF block starts and where the text after
// its end marker begins.
func blockBounds(content string) (start, end int, ok bool) {
	start = strings.Index(content, BlockStart)
	if start < 0 {
		return 0, 0, false
	}
	after := start + len(BlockStart)
	if i := strings.Index(content[after:], BlockEnd); i >= 0 {
		return start, after + i + len(BlockEnd), true
	}
	return start, len(content), true
}

// Block extracts the body of the ZCF block, or "" when there is none.
func Block(content string) string {
	start, end, ok := blockBounds(content)
	if !ok {
		return ""
	}
	body := strings.TrimSuffix(content[start+len(BlockStart):end], BlockEnd)
	return strings.TrimSpace(body)
}
