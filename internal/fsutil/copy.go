package fsutil

import (
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"zcf/internal/logger"
)

// BackupTimeFormat names backup folders and files: backup_2006-01-02_15-04-05.
const BackupTimeFormat = "2006-01-02_15-04-05"

// BackupName returns the folder name used for a backup taken at now.
func BackupName(now time.Time) string {
	return "backup_" + now.Format(BackupTimeFormat)
}

// CopyFile copies a file from src to dst, preserving permissions.
// It creates any missing directories in the destination path.
func CopyFile(fs afero.Fs, src, dst string) (err error) {
	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("open source failed: %w", err)
	}
	defer in.Close()

	if err := fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir failed: %w", err)
	}

	out, err := fs.Create(dst)
	if err != nil {
		return fmt.Errorf("create target failed: %w", err)
	}
	defer func() {
		cerr := out.Close()
		if err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy failed: %w", err)
	}

	if stat, serr := fs.Stat(src); serr == nil {
		err = fs.Chmod(dst, stat.Mode())
	}
	return err
}

// BackupDir copies the tree under src into backupRoot/backup_<ts> and returns
// the backup path. backupRoot itself is skipped when it lives inside src, so
// repeated backups never nest. A missing src is not an error and returns "".
func BackupDir(fs afero.Fs, src, backupRoot string, now time.Time) (string, error) {
	if !Exists(fs, src) {
		return "", nil
	}
	dest := filepath.Join(backupRoot, BackupName(now))
	cleanRoot := filepath.Clean(backupRoot)

	err := afero.Walk(fs, src, func(p string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if filepath.Clean(p) == cleanRoot {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if info.IsDir() {
			return fs.MkdirAll(target, 0o755)
		}
		return CopyFile(fs, p, target)
	})
	if err != nil {
		return "", fmt.Errorf("backup %s: %w", src, err)
	}
	logger.Debug("[DEBUG] Backed up %s to %s\n", src, dest)
	return dest, nil
}

// BackupFile copies one file into backupDir (created if needed) keeping its
// base name, and returns the copy's path. A missing file returns "".
func BackupFile(fs afero.Fs, file, backupDir string) (string, error) {
	if !Exists(fs, file) {
		return "", nil
	}
	dest := filepath.Join(backupDir, filepath.Base(file))
	if err := CopyFile(fs, file, dest); err != nil {
		return "", fmt.Errorf("backup %s: %w", file, err)
	}
	logger.Debug("[DEBUG] Backed up %s to %s\n", file, dest)
	return dest, nil
}

// CopyEmbedded copies one file from a read-only template tree to dst.
func CopyEmbedded(fs afero.Fs, src iofs.FS, name, dst string) error {
	data, err := iofs.ReadFile(src, name)
	if err != nil {
		return fmt.Errorf("read template %s: %w", name, err)
	}
	return WriteFile(fs, dst, data, 0o644)
}

// CopyEmbeddedTree copies every file under dir in src to dstDir, keeping the
// relative layout. It returns the written destination paths.
func CopyEmbeddedTree(fs afero.Fs, src iofs.FS, dir, dstDir string) ([]string, error) {
	var written []string
	err := iofs.WalkDir(src, dir, func(p string, d iofs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, dir), "/")
		dst := filepath.Join(dstDir, filepath.FromSlash(path.Clean(rel)))
		if err := CopyEmbedded(fs, src, p, dst); err != nil {
			return err
		}
		written = append(written, dst)
		return nil
	})
	return written, err
}
