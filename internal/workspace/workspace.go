package workspace

import (
	"errors"
	"os"
	"path/filepath"
)

// Dir is the per-project settings directory
const Dir = ".devpilot"

var ErrNoWorkspace = errors.New("no devpilot workspace found (run 'devpilot init' first)")
var ErrWorkspaceExists = errors.New("devpilot workspace already exists (use --force to overwrite)")

// Find walks up from cwd looking for .devpilot/ directory
func Find() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindFrom(dir)
}

// FindFrom walks up from dir looking for .devpilot/ directory
func FindFrom(dir string) (string, error) {
	for {
		wsPath := filepath.Join(dir, Dir)
		if info, err := os.Stat(wsPath); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoWorkspace
		}
		dir = parent
	}
}

// Path returns the .devpilot directory path for a workspace
func Path(workspaceDir string) string {
	return filepath.Join(workspaceDir, Dir)
}

// ConfigPath returns the config.yaml path
func ConfigPath(workspaceDir string) string {
	return filepath.Join(workspaceDir, Dir, "config.yaml")
}

// PromptsPath returns the directory holding prompt overrides
func PromptsPath(workspaceDir string) string {
	return filepath.Join(workspaceDir, Dir, "prompts")
}

// LockDir returns <user cache>/devpilot/locks, where run locks live
func LockDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "devpilot", "locks")
}
