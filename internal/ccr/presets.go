package ccr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"zcf/internal/logger"
)

// PresetsURL serves the maintained provider preset list.
const PresetsURL = "https://pub-0dc3e1677e894f07bbea11b17a29e032.r2.dev/providers.json"

// FetchTimeout bounds the preset download; the built-in list is used after it.
const FetchTimeout = 5 * time.Second

// SkipPreset writes a router config without providers, for manual editing.
const SkipPreset = "skip"

// Preset is a ready-made provider definition.
type Preset struct {
	Name           string         `json:"name"`
	Provider       string         `json:"provider"`
	Description    string         `json:"description,omitempty"`
	BaseURL        string         `json:"baseURL"`
	RequiresAPIKey bool           `json:"requiresApiKey"`
	Models         []string       `json:"models"`
	Transformer    map[string]any `json:"transformer,omitempty"`
}

// BuiltinPresets is used whenever the remote list is unavailable.
var BuiltinPresets = []Preset{
	{
		Name:           "OpenRouter",
		Provider:       "openrouter",
		BaseURL:        "https://openrouter.ai/api/v1/chat/completions",
		RequiresAPIKey: true,
		Models:         []string{"google/gemini-2.5-pro-preview", "anthropic/claude-sonnet-4", "anthropic/claude-3.5-sonnet"},
		Transformer:    map[string]any{"use": []any{"openrouter"}},
	},
	{
		Name:           "DeepSeek",
		Provider:       "deepseek",
		BaseURL:        "https://api.deepseek.com/chat/completions",
		RequiresAPIKey: true,
		Models:         []string{"deepseek-chat", "deepseek-reasoner"},
		Transformer: map[string]any{
			"use":           []any{"deepseek"},
			"deepseek-chat": map[string]any{"use": []any{"tooluse"}},
		},
	},
	{
		Name:           "Gemini",
		Provider:       "gemini",
		BaseURL:        "https://generativelanguage.googleapis.com/v1beta/models/",
		RequiresAPIKey: true,
		Models:         []string{"gemini-2.5-flash", "gemini-2.5-pro"},
		Transformer:    map[string]any{"use": []any{"gemini"}},
	},
	{
		Name:           "SiliconFlow",
		Provider:       "siliconflow",
		BaseURL:        "https://api.siliconflow.cn/v1/chat/completions",
		RequiresAPIKey: true,
		Models:         []string{"moonshotai/Kimi-K2-Instruct"},
		Transformer:    map[string]any{"use": []any{map[string]any{"maxtoken": map[string]any{"max_tokens": 16384}}}},
	},
	{
		Name:           "Volcengine",
		Provider:       "volcengine",
		BaseURL:        "https://ark.cn-beijing.volces.com/api/v3/chat/completions",
		RequiresAPIKey: true,
		Models:         []string{"deepseek-v3-250324", "deepseek-r1-250528"},
		Transformer:    map[string]any{"use": []any{"deepseek"}},
	},
	{
		Name:           "ModelScope",
		Provider:       "modelscope",
		BaseURL:        "https://api-inference.modelscope.cn/v1/chat/completions",
		RequiresAPIKey: true,
		Models:         []string{"Qwen/Qwen3-Coder-480B-A35B-Instruct", "Qwen/Qwen3-235B-A22B-Thinking-2507"},
		Transformer:    map[string]any{"use": []any{map[string]any{"maxtoken": map[string]any{"max_tokens": 65536}}}},
	},
}

// FetchPresets downloads the preset list from url. The request is bounded by
// FetchTimeout.
func FetchPresets(ctx context.Context, client *http.Client, url string) ([]Preset, error) {
	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build preset request: %w", err)
	}
	logger.Debug("[DEBUG] Fetching router presets from URL: %s\n", url)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET error fetching presets: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Debug("[DEBUG] Failed to close HTTP response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("preset fetch failed: HTTP status %d", resp.StatusCode)
	}

	var presets []Preset
	if err := json.NewDecoder(resp.Body).Decode(&presets); err != nil {
		return nil, fmt.Errorf("failed to decode preset JSON: %w", err)
	}
	valid := presets[:0]
	for _, p := range presets {
		if p.Provider != "" && p.BaseURL != "" && len(p.Models) > 0 {
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("preset list from %s is empty", url)
	}
	logger.Debug("[DEBUG] Fetched %d router presets\n", len(valid))
	return valid, nil
}

// Presets returns the remote list, or the built-in one on any failure.
func Presets(ctx context.Context, client *http.Client, url string) []Preset {
	presets, err := FetchPresets(ctx, client, url)
	if err != nil {
		logger.Debug("[DEBUG] Using built-in router presets: %v\n", err)
		return BuiltinPresets
	}
	return presets
}

// FindPreset looks a preset up by provider id.
func FindPreset(presets []Preset, provider string) (Preset, bool) {
	for _, p := range presets {
		if p.Provider == provider {
			return p, true
		}
	}
	return Preset{}, false
}
