package executor

import (
	"os"
	"path/filepath"
	"strings"
)

// PackageManager describes a detected JavaScript package manager
type PackageManager struct {
	Name       string // e.g., "npm", "pnpm", "yarn", "bun"
	InstallCmd string // Command that installs from the manifest
	DetectedAt string // Lockfile that identified it
}

// lockfiles maps lockfiles to their package manager, most specific first
var lockfiles = []struct {
	file string
	name string
}{
	{"pnpm-lock.yaml", "pnpm"},
	{"yarn.lock", "yarn"},
	{"bun.lockb", "bun"},
	{"bun.lock", "bun"},
	{"package-lock.json", "npm"},
	{"npm-shrinkwrap.json", "npm"},
}

// DetectPackageManager looks for a lockfile in dir. Returns nil when none
// is present.
func DetectPackageManager(dir string) *PackageManager {
	for _, lf := range lockfiles {
		path := filepath.Join(dir, lf.file)
		if _, err := os.Stat(path); err == nil {
			return &PackageManager{
				Name:       lf.name,
				InstallCmd: lf.name + " install",
				DetectedAt: path,
			}
		}
	}
	return nil
}

// installCommand builds the install command line for pm
func installCommand(pm string, packages []string) string {
	parts := []string{pm, "install"}
	for _, pkg := range packages {
		pkg = strings.TrimSpace(pkg)
		if pkg == "" {
			continue
		}
		parts = append(parts, shellQuote(pkg))
	}
	return strings.Join(parts, " ")
}

// shellQuote single-quotes s when it contains characters the shell would
// interpret
func shellQuote(s string) string {
	if !strings.ContainsAny(s, " \t\n'\"\\$`;&|<>()*?[]{}!#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
