package fsutil

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zcf/internal/runner"
)

func TestDeepMerge_PreservesUnrelatedKeys(t *testing.T) {
	dst := map[string]any{
		"model": "opus",
		"env":   map[string]any{"ANTHROPIC_API_KEY": "sk-old", "CUSTOM": "1"},
		"permissions": map[string]any{
			"allow": []any{"Bash", "mcp__custom"},
		},
	}
	src := map[string]any{
		"env": map[string]any{"DISABLE_TELEMETRY": "1"},
		"permissions": map[string]any{
			"allow": []any{"Bash", "Read"},
			"deny":  []any{},
		},
	}

	out := DeepMerge(dst, src, MergeOptions{MergeArrays: true})

	assert.Equal(t, "opus", out["model"])
	env := out["env"].(map[string]any)
	assert.Equal(t, "sk-old", env["ANTHROPIC_API_KEY"])
	assert.Equal(t, "1", env["CUSTOM"])
	assert.Equal(t, "1", env["DISABLE_TELEMETRY"])
	perms := out["permissions"].(map[string]any)
	assert.Equal(t, []any{"Bash", "mcp__custom", "Read"}, perms["allow"])
	assert.Equal(t, []any{}, perms["deny"])

	// inputs untouched
	assert.Len(t, dst["env"].(map[string]any), 2)
	assert.NotContains(t, dst["permissions"].(map[string]any), "deny")
}

func TestDeepMerge_ArraysReplacedWithoutMergeArrays(t *testing.T) {
	out := DeepMerge(
		map[string]any{"args": []any{"a", "b"}},
		map[string]any{"args": []any{"c"}},
		MergeOptions{},
	)
	assert.Equal(t, []any{"c"}, out["args"])
}

func TestDeepMerge_ScalarReplacesObject(t *testing.T) {
	out := DeepMerge(
		map[string]any{"statusLine": map[string]any{"type": "command"}},
		map[string]any{"statusLine": "off"},
		MergeOptions{MergeArrays: true},
	)
	assert.Equal(t, "off", out["statusLine"])
}

func TestReadJSON(t *testing.T) {
	fs := afero.NewMemMapFs()

	doc, err := ReadJSON(fs, "/missing.json")
	require.NoError(t, err)
	assert.Empty(t, doc)

	require.NoError(t, afero.WriteFile(fs, "/empty.json", []byte("  \n"), 0o644))
	doc, err = ReadJSON(fs, "/empty.json")
	require.NoError(t, err)
	assert.Empty(t, doc)

	require.NoError(t, afero.WriteFile(fs, "/bad.json", []byte("{nope"), 0o644))
	_, err = ReadJSON(fs, "/bad.json")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/ok.json", []byte(`{"MCP_TIMEOUT": 60000}`), 0o644))
	doc, err = ReadJSON(fs, "/ok.json")
	require.NoError(t, err)
	assert.Equal(t, json.Number("60000"), doc["MCP_TIMEOUT"])
}

func TestWriteJSON_CreatesParentsAndKeepsHTML(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, WriteJSON(fs, "/a/b/c.json", map[string]any{"cmd": "a && b <x>"}))

	raw, err := afero.ReadFile(fs, "/a/b/c.json")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"cmd\": \"a && b <x>\"\n}\n", string(raw))
}

func TestUpdateJSON_NumbersRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/s.json", []byte(`{"PORT": 3456, "x": 1.5}`), 0o644))

	require.NoError(t, UpdateJSON(fs, "/s.json", func(doc map[string]any) error {
		doc["y"] = true
		return nil
	}))

	raw, _ := afero.ReadFile(fs, "/s.json")
	assert.JSONEq(t, `{"PORT": 3456, "x": 1.5, "y": true}`, string(raw))
}

func TestBackupDir_SkipsBackupRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/home/.claude/settings.json", []byte("{}"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/home/.claude/commands/zcf/workflow.md", []byte("wf"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/home/.claude/backup/backup_old/settings.json", []byte("old"), 0o644))

	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	dest, err := BackupDir(fs, "/home/.claude", "/home/.claude/backup", now)
	require.NoError(t, err)
	assert.Equal(t, "/home/.claude/backup/backup_2025-03-04_05-06-07", dest)

	data, err := afero.ReadFile(fs, dest+"/commands/zcf/workflow.md")
	require.NoError(t, err)
	assert.Equal(t, "wf", string(data))
	assert.True(t, Exists(fs, dest+"/settings.json"))
	assert.False(t, Exists(fs, dest+"/backup"))
}

func TestBackupDir_MissingSource(t *testing.T) {
	dest, err := BackupDir(afero.NewMemMapFs(), "/nope", "/nope/backup", time.Now())
	require.NoError(t, err)
	assert.Empty(t, dest)
}

func TestCopyEmbeddedTree(t *testing.T) {
	src := fstest.MapFS{
		"tpl/commands/a.md":     {Data: []byte("a")},
		"tpl/commands/sub/b.md": {Data: []byte("b")},
	}
	fs := afero.NewMemMapFs()

	written, err := CopyEmbeddedTree(fs, src, "tpl/commands", "/dst")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/dst/a.md", "/dst/sub/b.md"}, written)
}

func TestOSTrash_FallsBackToTrashDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/home/.claude.json", []byte("{}"), 0o644))
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	tr := &OSTrash{Fs: fs, Runner: runner.NewFake(), Home: "/home", GOOS: "linux", Now: func() time.Time { return fixed }}

	require.NoError(t, tr.Trash(context.Background(), "/home/.claude.json"))

	assert.False(t, Exists(fs, "/home/.claude.json"))
	assert.True(t, Exists(fs, "/home/.local/share/Trash/files/.claude.json"))
	info, err := afero.ReadFile(fs, "/home/.local/share/Trash/info/.claude.json.trashinfo")
	require.NoError(t, err)
	assert.Contains(t, string(info), "Path=/home/.claude.json")
}

func TestOSTrash_UsesUtilityWhenAvailable(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/home/.claude", 0o755))
	fake := runner.NewFake().Installed("gio")
	tr := &OSTrash{Fs: fs, Runner: fake, Home: "/home", GOOS: "linux", Now: time.Now}

	require.NoError(t, tr.Trash(context.Background(), "/home/.claude"))
	assert.True(t, fake.Ran("gio trash /home/.claude"))
}

func TestOSTrash_MissingPath(t *testing.T) {
	tr := NewOSTrash(afero.NewMemMapFs(), runner.NewFake(), "/home")
	err := tr.Trash(context.Background(), "/home/none")
	assert.True(t, errors.Is(err, ErrNotFound))
}
