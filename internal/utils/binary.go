package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// ResolveBinaryPath finds a binary, checking common locations
func ResolveBinaryPath(binaryPath string) string {
	if binaryPath == "" {
		return ""
	}

	// If it's an absolute path, use it directly
	if filepath.IsAbs(binaryPath) {
		return binaryPath
	}

	// Check if it's in PATH
	if path, err := exec.LookPath(binaryPath); err == nil {
		return path
	}

	// Handle tilde prefix
	if expanded := ExpandHome(binaryPath); expanded != binaryPath {
		return expanded
	}

	// Check common locations
	home, err := os.UserHomeDir()
	if err == nil {
		commonPaths := []string{
			filepath.Join(home, ".local", "bin", binaryPath),
			filepath.Join("/usr/local/bin", binaryPath),
			filepath.Join("/opt/homebrew/bin", binaryPath),
		}

		for _, p := range commonPaths {
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}

	// Return original, will fail with helpful error later
	return binaryPath
}

// BinaryNotFoundError returns a helpful error message when a tool is missing
func BinaryNotFoundError(name string) error {
	return fmt.Errorf(`%s not found in PATH

Install it, or set another one in .devpilot/config.yaml:
  flow:
    package_manager: npm`, name)
}
