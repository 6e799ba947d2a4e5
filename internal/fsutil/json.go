// Package fsutil holds the file primitives every configurator shares:
// JSON documents, deep merge, backups, template copies and safe deletion.
// Everything goes through an afero.Fs so it can run against memory in tests.
package fsutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"zcf/internal/logger"
)

// Exists reports whether path exists.
func Exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

// ReadJSON reads a JSON object. A missing or empty file yields an empty map;
// invalid JSON is an error so callers decide whether to back up and replace.
func ReadJSON(fs afero.Fs, path string) (map[string]any, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := DecodeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// DecodeJSON parses a JSON object keeping numbers as json.Number, so values
// such as timeouts are written back exactly as they were read.
func DecodeJSON(raw []byte) (map[string]any, error) {
	doc := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return doc, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ReadJSONInto decodes path into v. A missing file leaves v untouched and
// returns false.
func ReadJSONInto(fs afero.Fs, path string, v any) (bool, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// MarshalJSON renders v with two-space indentation and a trailing newline.
// HTML characters are kept literal; these files are read by people.
func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON writes v to path, creating parent directories.
func WriteJSON(fs afero.Fs, path string, v any) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return WriteFile(fs, path, data, 0o644)
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(fs, path, data, perm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Debug("[DEBUG] Wrote %s (%d bytes)\n", path, len(data))
	return nil
}

// UpdateJSON is a read-modify-write of a JSON object file.
func UpdateJSON(fs afero.Fs, path string, fn func(doc map[string]any) error) error {
	doc, err := ReadJSON(fs, path)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return WriteJSON(fs, path, doc)
}

// Object returns doc[key] as an object, creating it when absent or when the
// existing value is not an object.
func Object(doc map[string]any, key string) map[string]any {
	if m, ok := doc[key].(map[string]any); ok {
		return m
	}
	m := map[string]any{}
	doc[key] = m
	return m
}

// Strings converts a decoded JSON array into strings, dropping non-strings.
func Strings(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		if s, ok := v.([]string); ok {
			return s
		}
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
