package planner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/daydemir/devpilot/internal/types"
)

// Issue severities
const (
	SeverityBlocker = "blocker"
	SeverityWarning = "warning"
)

// VerificationIssue represents a single issue found during plan verification
type VerificationIssue struct {
	Dimension   string `json:"dimension"`
	Severity    string `json:"severity"` // blocker, warning
	Description string `json:"description"`
	Task        int    `json:"task"` // index into Plan.Tasks, -1 for the whole plan
	FixHint     string `json:"fix_hint"`
}

// VerificationResult holds the result of plan verification
type VerificationResult struct {
	Status   string              `json:"status"` // passed, issues_found
	Blockers int                 `json:"blockers"`
	Warnings int                 `json:"warnings"`
	Issues   []VerificationIssue `json:"issues"`
}

// Verify statically checks a parsed plan before it runs. Nothing here stops
// execution; blockers are tasks the dispatcher is certain to reject.
func Verify(plan *types.Plan) *VerificationResult {
	result := &VerificationResult{
		Status: "passed",
		Issues: []VerificationIssue{},
	}

	if plan == nil || len(plan.Tasks) == 0 {
		result.Issues = append(result.Issues, VerificationIssue{
			Dimension:   "scope_sanity",
			Severity:    SeverityWarning,
			Description: "Plan has no tasks",
			Task:        -1,
			FixHint:     "Describe the change in more detail",
		})
	} else {
		checkTaskCompleteness(plan, result)
		checkSingleCommands(plan, result)
		checkWriteTargets(plan, result)
	}

	// Count blockers and warnings
	for _, issue := range result.Issues {
		switch issue.Severity {
		case SeverityBlocker:
			result.Blockers++
		case SeverityWarning:
			result.Warnings++
		}
	}

	if len(result.Issues) > 0 {
		result.Status = "issues_found"
	}

	return result
}

// checkTaskCompleteness verifies all tasks have required fields
func checkTaskCompleteness(plan *types.Plan, result *VerificationResult) {
	for i := range plan.Tasks {
		task := &plan.Tasks[i]

		if task.Type != "" && !task.Type.IsValid() {
			result.Issues = append(result.Issues, VerificationIssue{
				Dimension:   "task_completeness",
				Severity:    SeverityWarning,
				Description: fmt.Sprintf("Task %d has unknown type %q and will be skipped", i+1, task.Type),
				Task:        i,
				FixHint:     fmt.Sprintf("Use one of: %v", types.AllTaskTypes()),
			})
			continue
		}

		errs := task.ValidateWithDetails(fmt.Sprintf("tasks[%d]", i))
		for _, verr := range errs.Errors {
			field := verr.Field[strings.LastIndex(verr.Field, ".")+1:]
			result.Issues = append(result.Issues, VerificationIssue{
				Dimension:   "task_completeness",
				Severity:    SeverityBlocker,
				Description: fmt.Sprintf("Task %d (%s) missing %s", i+1, task.Type, field),
				Task:        i,
				FixHint:     verr.Message,
			})
		}
	}
}

// checkSingleCommands flags cli tasks that chain several commands.
// A chained cd does not move the working directory for later tasks.
func checkSingleCommands(plan *types.Plan, result *VerificationResult) {
	for i, task := range plan.Tasks {
		if task.Type != types.TaskTypeCLI {
			continue
		}
		if strings.Contains(task.Command, "&&") || strings.Contains(task.Command, ";") {
			result.Issues = append(result.Issues, VerificationIssue{
				Dimension:   "single_command",
				Severity:    SeverityWarning,
				Description: fmt.Sprintf("Task %d chains several commands: %s", i+1, task.Command),
				Task:        i,
				FixHint:     "Split into one cli task per command",
			})
		}
	}
}

// checkWriteTargets flags writeFile tasks that target the same path twice
func checkWriteTargets(plan *types.Plan, result *VerificationResult) {
	seen := make(map[string]int)
	for i, task := range plan.Tasks {
		if task.Type != types.TaskTypeWriteFile || task.Path == "" {
			continue
		}
		key := filepath.Clean(task.Path)
		if first, ok := seen[key]; ok {
			result.Issues = append(result.Issues, VerificationIssue{
				Dimension:   "write_targets",
				Severity:    SeverityBlocker,
				Description: fmt.Sprintf("Task %d writes %s, already created by task %d", i+1, task.Path, first+1),
				Task:        i,
				FixHint:     "Use editFile or appendFile to change an existing file",
			})
			continue
		}
		seen[key] = i
	}
}
