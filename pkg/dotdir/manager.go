// Package dotdir manages the .semmatch/ and ~/.semmatch directories.
//
// The directory holds config.toml plus the semantic cache files, so the
// CLI behaves the same whether run from a project checkout (local
// ./.semmatch/) or anywhere else (~/.semmatch/).
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the semmatch directory.
	dirName = ".semmatch"

	// cacheDirName is the semantic cache subdirectory.
	cacheDirName = "cache"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .semmatch/ directory.
// Order of precedence is as follows:
//  1. Provided override
//  2. Local ./.semmatch/ dir
//  3. Home ~/.semmatch/ dir
//  4. If none found, attempt to create ~/.semmatch/ dir
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating semmatch directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// CacheDir resolves (and creates) the semantic cache directory inside the
// target .semmatch/ directory.
func (m *Manager) CacheDir(overrideDir string) (string, error) {
	target, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(target, cacheDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache directory %s: %w", dir, err)
	}

	return dir, nil
}

// localDirExists checks whether a .semmatch/ directory exists in the
// current working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
