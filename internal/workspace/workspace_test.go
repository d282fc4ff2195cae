package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitAndFind(t *testing.T) {
	dir := t.TempDir()

	wsPath, err := Init(dir, false, false)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if wsPath != filepath.Join(dir, Dir) {
		t.Errorf("Init() path = %q", wsPath)
	}

	content, err := os.ReadFile(ConfigPath(dir))
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(string(content), "max_fix_depth: 5") {
		t.Errorf("config missing defaults:\n%s", content)
	}

	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	found, err := FindFrom(nested)
	if err != nil {
		t.Fatalf("FindFrom() error = %v", err)
	}
	if found != dir {
		t.Errorf("FindFrom() = %q, want %q", found, dir)
	}
}

func TestInitExisting(t *testing.T) {
	dir := t.TempDir()
	if _, err := Init(dir, false, false); err != nil {
		t.Fatal(err)
	}

	if _, err := Init(dir, false, false); !errors.Is(err, ErrWorkspaceExists) {
		t.Errorf("second Init() error = %v, want ErrWorkspaceExists", err)
	}

	marker := filepath.Join(Path(dir), "stale.txt")
	if err := os.WriteFile(marker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Init(dir, true, false); err != nil {
		t.Fatalf("forced Init() error = %v", err)
	}
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Error("forced Init() should replace the workspace")
	}
}

func TestInitWithPrompts(t *testing.T) {
	dir := t.TempDir()
	if _, err := Init(dir, false, true); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	for _, name := range []string{"plan.md", "json_plan.md", "fix.md", "generate_logic.md"} {
		if _, err := os.Stat(filepath.Join(PromptsPath(dir), name)); err != nil {
			t.Errorf("prompt %s not copied: %v", name, err)
		}
	}
}

func TestFindFromNoWorkspace(t *testing.T) {
	found, err := FindFrom(t.TempDir())
	if err == nil {
		t.Skipf("a parent directory already holds a workspace: %s", found)
	}
	if !errors.Is(err, ErrNoWorkspace) {
		t.Errorf("FindFrom() error = %v, want ErrNoWorkspace", err)
	}
}
