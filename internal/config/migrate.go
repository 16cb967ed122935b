package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
)

const legacyDirName = "ThirdSpace"

// LegacyPaths указывает расположение данных старых версий.
type LegacyPaths struct {
	ConfigDir string // содержит config.json
	DataDir   string // содержит logs/
}

// DefaultLegacyPaths возвращает каталоги, которые использовали прежние версии приложения.
func DefaultLegacyPaths() LegacyPaths {
	var lp LegacyPaths
	if dir, err := os.UserConfigDir(); err == nil {
		lp.ConfigDir = filepath.Join(dir, legacyDirName)
	}
	if dir := dataLocalDir(); dir != "" {
		lp.DataDir = filepath.Join(dir, legacyDirName)
	}
	return lp
}

func dataLocalDir() string {
	switch runtime.GOOS {
	case "windows":
		return os.Getenv("LOCALAPPDATA")
	case "darwin":
		dir, _ := os.UserConfigDir()
		return dir
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return dir
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		return filepath.Join(home, ".local", "share")
	}
}

// MigrateLegacy переносит config.json и логи из старых каталогов в newBase.
// Существующие файлы не перезаписываются: перенесённые получают суффикс .legacy или .legacy-N.
func MigrateLegacy(lp LegacyPaths, newBase string) error {
	if err := os.MkdirAll(newBase, 0o700); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	if lp.ConfigDir != "" {
		oldConfig := filepath.Join(lp.ConfigDir, configFileName)
		if err := movePath(oldConfig, filepath.Join(newBase, configFileName)); err != nil {
			return fmt.Errorf("migrate legacy config: %w", err)
		}
	}

	if lp.DataDir != "" {
		oldLogs := filepath.Join(lp.DataDir, logsDirName)
		if err := mergeDir(oldLogs, filepath.Join(newBase, logsDirName)); err != nil {
			return fmt.Errorf("migrate legacy logs: %w", err)
		}
	}

	// На macOS оба каталога совпадают, поэтому удаляем только после переноса логов
	for _, dir := range []string{lp.ConfigDir, lp.DataDir} {
		if dir != "" {
			_ = os.RemoveAll(dir)
		}
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func mergeDir(source, target string) error {
	if !exists(source) {
		return nil
	}
	if !exists(target) {
		return movePath(source, target)
	}

	entries, err := os.ReadDir(source)
	if err != nil {
		return fmt.Errorf("read source directory: %w", err)
	}
	for _, e := range entries {
		src := filepath.Join(source, e.Name())
		dst := filepath.Join(target, e.Name())
		if e.IsDir() {
			err = mergeDir(src, dst)
		} else {
			err = movePath(src, uniquePath(dst))
		}
		if err != nil {
			return err
		}
	}
	_ = os.RemoveAll(source)
	return nil
}

func movePath(source, target string) error {
	info, err := os.Stat(source)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	target = uniquePath(target)
	if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
		return fmt.Errorf("create target parent: %w", err)
	}
	if os.Rename(source, target) == nil {
		return nil
	}

	// rename не работает между томами
	if info.IsDir() {
		if err := copyDir(source, target); err != nil {
			return err
		}
		return os.RemoveAll(source)
	}
	if err := copyFile(source, target, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Remove(source)
}

func copyDir(source, target string) error {
	return filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(target, rel)
		if d.IsDir() {
			return os.MkdirAll(dst, 0o700)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, dst, info.Mode().Perm())
	})
}

func copyFile(source, target string, perm fs.FileMode) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// uniquePath возвращает path, если он свободен, иначе path.legacy, path.legacy-1, ...
func uniquePath(path string) string {
	if !exists(path) {
		return path
	}
	candidate := path + ".legacy"
	if !exists(candidate) {
		return candidate
	}
	for i := 1; i < 1000; i++ {
		candidate = fmt.Sprintf("%s.legacy-%d", path, i)
		if !exists(candidate) {
			return candidate
		}
	}
	return candidate
}
