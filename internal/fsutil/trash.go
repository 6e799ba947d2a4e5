package fsutil

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/afero"

	"zcf/internal/logger"
	"zcf/internal/runner"
)

// ErrNotFound is returned by Trash when the path does not exist. Uninstall
// reports it as a warning.
var ErrNotFound = errors.New("path not found")

// Trasher moves paths somewhere recoverable instead of deleting them.
type Trasher interface {
	Trash(ctx context.Context, path string) error
}

// OSTrash prefers the platform's trash utility and falls back to moving the
// path into the freedesktop trash directory under Home.
type OSTrash struct {
	Fs     afero.Fs
	Runner runner.Runner
	Home   string
	GOOS   string
	Now    func() time.Time
}

// NewOSTrash builds the default trasher for the running platform.
func NewOSTrash(fs afero.Fs, r runner.Runner, home string) *OSTrash {
	return &OSTrash{Fs: fs, Runner: r, Home: home, GOOS: runtime.GOOS, Now: time.Now}
}

func (t *OSTrash) Trash(ctx context.Context, path string) error {
	if !Exists(t.Fs, path) {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}

	for _, argv := range t.utilities(path) {
		if !runner.Exists(t.Runner, argv[0]) {
			continue
		}
		output, err := t.Runner.Output(ctx, argv[0], argv[1:]...)
		if err == nil {
			logger.Debug("[DEBUG] Moved %s to trash with %s\n", path, argv[0])
			return nil
		}
		logger.Debug("[DEBUG] %s failed for %s: %v (%s)\n", argv[0], path, err, strings.TrimSpace(string(output)))
	}
	return t.moveToTrashDir(path)
}

// utilities lists candidate trash commands, best first.
func (t *OSTrash) utilities(path string) [][]string {
	switch t.GOOS {
	case "darwin":
		script := fmt.Sprintf(`tell application "Finder" to delete POSIX file %q`, path)
		return [][]string{{"trash", path}, {"osascript", "-e", script}}
	case "linux", "freebsd", "openbsd", "netbsd":
		return [][]string{{"gio", "trash", path}, {"trash-put", path}, {"trash", path}}
	default:
		return nil
	}
}

// moveToTrashDir implements the freedesktop layout: the payload goes to
// Trash/files and a matching .trashinfo records where it came from.
func (t *OSTrash) moveToTrashDir(path string) error {
	base := filepath.Join(t.Home, ".local", "share", "Trash")
	filesDir := filepath.Join(base, "files")
	infoDir := filepath.Join(base, "info")
	for _, d := range []string{filesDir, infoDir} {
		if err := t.Fs.MkdirAll(d, 0o700); err != nil {
			return fmt.Errorf("create trash dir: %w", err)
		}
	}

	now := t.Now()
	name := filepath.Base(path)
	if Exists(t.Fs, filepath.Join(filesDir, name)) {
		name = fmt.Sprintf("%s.%s", name, now.Format("20060102150405.000000000"))
	}
	if err := t.Fs.Rename(path, filepath.Join(filesDir, name)); err != nil {
		return fmt.Errorf("move %s to trash: %w", path, err)
	}

	info := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n", path, now.Format("2006-01-02T15:04:05"))
	if err := afero.WriteFile(t.Fs, filepath.Join(infoDir, name+".trashinfo"), []byte(info), 0o600); err != nil {
		logger.Debug("[DEBUG] Failed to write trashinfo for %s: %v\n", path, err)
	}
	logger.Debug("[DEBUG] Moved %s to %s\n", path, filesDir)
	return nil
}
