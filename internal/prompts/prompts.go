package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var embeddedPrompts embed.FS

// Template names
const (
	Plan          = "plan"
	JSONPlan      = "json_plan"
	Fix           = "fix"
	GenerateLogic = "generate_logic"
)

// Get returns the embedded prompt content
func Get(name string) (string, error) {
	// Normalize name
	if !strings.HasSuffix(name, ".md") {
		name = name + ".md"
	}

	content, err := embeddedPrompts.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("prompt %s not found: %w", name, err)
	}
	return string(content), nil
}

// GetForWorkspace returns prompt content, checking .devpilot/prompts/ in
// workspaceDir first then embedded
func GetForWorkspace(workspaceDir, name string) (string, error) {
	if !strings.HasSuffix(name, ".md") {
		name = name + ".md"
	}

	if workspaceDir != "" {
		localPath := filepath.Join(workspaceDir, ".devpilot", "prompts", name)
		if content, err := os.ReadFile(localPath); err == nil {
			return string(content), nil
		}
	}

	// Fall back to embedded
	return Get(name)
}

// Render loads the named prompt and executes it with data.
// Surrounding whitespace is trimmed from the result.
func Render(workspaceDir, name string, data any) (string, error) {
	content, err := GetForWorkspace(workspaceDir, name)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
