package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/daydemir/devpilot/internal/prompts"
)

// Init creates a new devpilot workspace in dir. With withPrompts the
// embedded prompt templates are copied in for editing.
func Init(dir string, force, withPrompts bool) (string, error) {
	wsPath := filepath.Join(dir, Dir)

	// Check if workspace already exists
	if _, err := os.Stat(wsPath); err == nil {
		if !force {
			return "", ErrWorkspaceExists
		}
		// Remove existing workspace if force
		if err := os.RemoveAll(wsPath); err != nil {
			return "", fmt.Errorf("failed to remove existing workspace: %w", err)
		}
	}

	if err := os.MkdirAll(wsPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", wsPath, err)
	}

	// Create config.yaml
	if err := writeFile(filepath.Join(wsPath, "config.yaml"), defaultConfig); err != nil {
		return "", err
	}

	if withPrompts {
		if err := copyPrompts(PromptsPath(dir)); err != nil {
			return "", err
		}
	}

	return wsPath, nil
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func copyPrompts(promptsDir string) error {
	if err := os.MkdirAll(promptsDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", promptsDir, err)
	}
	for _, name := range []string{prompts.Plan, prompts.JSONPlan, prompts.Fix, prompts.GenerateLogic} {
		content, err := prompts.Get(name)
		if err != nil {
			return fmt.Errorf("failed to get embedded prompt %s: %w", name, err)
		}
		if err := writeFile(filepath.Join(promptsDir, name+".md"), content); err != nil {
			return err
		}
	}
	return nil
}

const defaultConfig = `# devpilot configuration
# Every key can be overridden with DEVPILOT_<SECTION>_<KEY>, e.g. DEVPILOT_LLM_MODEL.

llm:
  base_url: https://openrouter.ai/api/v1
  model: open-r1/olympiccoder-7b:free
  api_key: ""              # or set DEVPILOT_LLM_API_KEY / OPENROUTER_API_KEY
  timeout: 0               # seconds, 0 disables the client timeout
  max_retries: 4
  retry_backoff: 2s
  rate_limit: 1.0          # requests per second
  burst: 2

flow:
  max_fix_depth: 5         # 0 means unlimited fix rounds
  package_manager: npm     # used when the plan does not name one
  shell: ""                # empty picks sh (or cmd on Windows)

log:
  level: info
  format: json
  # file: /path/to/debug.log   (defaults to the user cache directory)
`
