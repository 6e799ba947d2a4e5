package config

// CodeToolType selects which AI coding assistant ZCF manages.
type CodeToolType string

const (
	CodeToolClaudeCode CodeToolType = "claude-code"
	CodeToolCodex      CodeToolType = "codex"
)

// CodeToolTypes lists valid values for --code-type.
var CodeToolTypes = []CodeToolType{CodeToolClaudeCode, CodeToolCodex}

// ConfigAction describes how init treats an existing configuration.
// - new: overwrite without a backup.
// - backup: back up, then overwrite.
// - merge: back up, then merge templates into the existing files.
// - docs-only: back up, then only refresh workflow/output-style documents.
// - skip: leave existing configuration alone.
type ConfigAction string

const (
	ActionNew      ConfigAction = "new"
	ActionBackup   ConfigAction = "backup"
	ActionMerge    ConfigAction = "merge"
	ActionDocsOnly ConfigAction = "docs-only"
	ActionSkip     ConfigAction = "skip"
)

// ConfigActions lists valid values for --config-action.
var ConfigActions = []ConfigAction{ActionNew, ActionBackup, ActionMerge, ActionDocsOnly, ActionSkip}

// APIType is the way the assistant authenticates against its API.
type APIType string

const (
	APIAuthToken APIType = "auth_token"
	APIKey       APIType = "api_key"
	APICCRProxy  APIType = "ccr_proxy"
	APISkip      APIType = "skip"
)

// APITypes lists valid values for --api-type.
var APITypes = []APIType{APIAuthToken, APIKey, APICCRProxy, APISkip}

// APIConfig is one resolved credential set for Claude Code.
type APIConfig struct {
	Type APIType `json:"authType"`
	Key  string  `json:"apiKey,omitempty"`
	URL  string  `json:"baseUrl,omitempty"`
}

// Display/template languages. The AI output language additionally accepts
// any free-form language name.
const (
	LangZhCN = "zh-CN"
	LangEn   = "en"
)

// Languages lists the supported display and template languages.
var Languages = []string{LangZhCN, LangEn}

// AIOutputLanguages lists the preset AI output languages offered in prompts.
// "custom" asks for a free-form value.
var AIOutputLanguages = []string{LangZhCN, LangEn, "custom"}

// Model values accepted by the default-model setting.
var Models = []string{"default", "opus", "sonnet", "opusplan"}

// Keywords accepted by the list flags.
const (
	ListAll  = "all"
	ListSkip = "skip"
)

// InitOptions carries every init flag after parsing. Empty strings mean
// "not given on the command line".
type InitOptions struct {
	Lang               string
	ConfigLang         string
	AIOutputLang       string
	AllLang            string
	Force              bool
	SkipPrompt         bool
	ConfigAction       string
	APIType            string
	APIKey             string
	APIURL             string
	MCPServices        string
	Workflows          string
	OutputStyles       string
	DefaultOutputStyle string
	InstallCometixLine bool
	CodeType           string
}

// UninstallMode selects the uninstall flow.
type UninstallMode string

const (
	UninstallComplete    UninstallMode = "complete"
	UninstallCustom      UninstallMode = "custom"
	UninstallInteractive UninstallMode = "interactive"
)

// UninstallModes lists valid values for --mode.
var UninstallModes = []UninstallMode{UninstallComplete, UninstallCustom, UninstallInteractive}
