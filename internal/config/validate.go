package config

import (
	"fmt"
	"strings"

	"zcf/internal/templates"
)

// ValidationError is a bad flag value. Commands surface it as a CLI failure
// before any file is touched.
type ValidationError struct {
	Flag    string
	Value   string
	Allowed []string
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid --%s %q: %s", e.Flag, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid --%s %q (allowed: %s)", e.Flag, e.Value, strings.Join(e.Allowed, ", "))
}

// ParseList splits a comma-separated flag value, trimming blanks.
func ParseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func oneOf[T ~string](flag, value string, allowed []T) error {
	if value == "" {
		return nil
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		if string(a) == value {
			return nil
		}
		names[i] = string(a)
	}
	return &ValidationError{Flag: flag, Value: value, Allowed: names}
}

// validateIDs checks a list flag against known ids; "all" and "skip" are
// accepted on their own.
func validateIDs(flag, value string, known []string) error {
	if value == "" || value == ListAll || value == ListSkip {
		return nil
	}
	valid := make(map[string]bool, len(known))
	for _, k := range known {
		valid[k] = true
	}
	for _, id := range ParseList(value) {
		if !valid[id] {
			return &ValidationError{Flag: flag, Value: id, Allowed: known}
		}
	}
	return nil
}

// ApplyAllLang fans --all-lang out to the three language flags.
// zh-CN and en set all three; any other value is treated as an AI output
// language with English for the UI and templates.
func ApplyAllLang(opts *InitOptions) {
	if opts.AllLang == "" {
		return
	}
	if opts.AllLang == LangZhCN || opts.AllLang == LangEn {
		opts.Lang = opts.AllLang
		opts.ConfigLang = opts.AllLang
		opts.AIOutputLang = opts.AllLang
		return
	}
	opts.Lang = LangEn
	opts.ConfigLang = LangEn
	opts.AIOutputLang = opts.AllLang
}

// ValidateInitOptions checks init flags. Enum flags are always validated;
// the credential requirement only applies in skip-prompt mode, where nobody
// can be asked for the missing key.
func ValidateInitOptions(opts *InitOptions, m *templates.Manifest) error {
	ApplyAllLang(opts)

	checks := []error{
		oneOf("lang", opts.Lang, Languages),
		oneOf("config-lang", opts.ConfigLang, Languages),
		oneOf("config-action", opts.ConfigAction, ConfigActions),
		oneOf("api-type", opts.APIType, APITypes),
		oneOf("code-type", opts.CodeType, CodeToolTypes),
		validateIDs("mcp-services", opts.MCPServices, m.MCPServiceIDs()),
		validateIDs("workflows", opts.Workflows, m.WorkflowIDs()),
		validateIDs("output-styles", opts.OutputStyles, m.StyleIDs()),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}

	if opts.DefaultOutputStyle != "" {
		if _, ok := m.OutputStyle(opts.DefaultOutputStyle); !ok {
			return &ValidationError{Flag: "default-output-style", Value: opts.DefaultOutputStyle, Allowed: m.StyleIDs()}
		}
		if CodeToolType(opts.CodeType) == CodeToolCodex {
			if err := ValidateSystemPromptStyle(opts.DefaultOutputStyle, m); err != nil {
				return err
			}
		}
	}

	if opts.SkipPrompt {
		t := APIType(opts.APIType)
		if (t == APIAuthToken || t == APIKey) && opts.APIKey == "" {
			return &ValidationError{Flag: "api-key", Value: "", Reason: fmt.Sprintf("required when --api-type is %s", t)}
		}
	}
	return nil
}

// ValidateUninstall checks uninstall flags against the known item ids.
func ValidateUninstall(mode string, items string, known []string) error {
	if err := oneOf("mode", mode, UninstallModes); err != nil {
		return err
	}
	if UninstallMode(mode) == UninstallCustom && len(ParseList(items)) == 0 {
		return &ValidationError{Flag: "items", Value: items, Reason: "required with --mode custom"}
	}
	valid := make(map[string]bool, len(known))
	for _, k := range known {
		valid[k] = true
	}
	for _, id := range ParseList(items) {
		if !valid[id] {
			return &ValidationError{Flag: "items", Value: id, Allowed: known}
		}
	}
	return nil
}

// ValidateSystemPromptStyle checks a --default-output-style value used as a
// Codex system prompt, where only styles with a template apply.
func ValidateSystemPromptStyle(v string, m *templates.Manifest) error {
	if v == "" {
		return nil
	}
	custom := m.CustomStyleIDs()
	for _, id := range custom {
		if id == v {
			return nil
		}
	}
	return &ValidationError{Flag: "default-output-style", Value: v, Allowed: custom}
}

// ValidateCodeType checks a --code-type value.
func ValidateCodeType(v string) error {
	return oneOf("code-type", v, CodeToolTypes)
}

// ValidateLang checks a --lang value.
func ValidateLang(v string) error {
	return oneOf("lang", v, Languages)
}
