// Package i18n holds the zh-CN and en message catalogs shown to the user.
// Catalogs are flat YAML maps embedded at build time; a lookup falls back to
// English and finally to the key itself so a missing translation is visible
// but never fatal.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

const (
	LangZhCN = "zh-CN"
	LangEn   = "en"
)

// Supported lists display languages in menu order.
var Supported = []string{LangZhCN, LangEn}

var (
	mu       sync.RWMutex
	current  = LangEn
	catalogs map[string]map[string]string
	loadOnce sync.Once
	loadErr  error
)

func load() {
	catalogs = make(map[string]map[string]string, len(Supported))
	for _, lang := range Supported {
		raw, err := localeFS.ReadFile(path.Join("locales", lang+".yaml"))
		if err != nil {
			loadErr = fmt.Errorf("read catalog %s: %w", lang, err)
			return
		}
		msgs := map[string]string{}
		if err := yaml.Unmarshal(raw, &msgs); err != nil {
			loadErr = fmt.Errorf("parse catalog %s: %w", lang, err)
			return
		}
		catalogs[lang] = msgs
	}
}

// IsSupported reports whether lang has a catalog.
func IsSupported(lang string) bool {
	for _, l := range Supported {
		if l == lang {
			return true
		}
	}
	return false
}

// SetLanguage switches the active catalog. Unknown languages fall back to en.
func SetLanguage(lang string) {
	if !IsSupported(lang) {
		lang = LangEn
	}
	mu.Lock()
	current = lang
	mu.Unlock()
}

// Language returns the active display language.
func Language() string {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// T formats the message for key in the active language.
func T(key string, args ...any) string {
	return TL(Language(), key, args...)
}

// TL formats the message for key in an explicit language.
func TL(lang, key string, args ...any) string {
	loadOnce.Do(load)
	msg := key
	if loadErr == nil {
		if m, ok := catalogs[lang][key]; ok {
			msg = m
		} else if m, ok := catalogs[LangEn][key]; ok {
			msg = m
		}
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// LoadError reports a catalog that failed to parse. Only tests care.
func LoadError() error {
	loadOnce.Do(load)
	return loadErr
}
