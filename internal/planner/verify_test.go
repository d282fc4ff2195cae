package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daydemir/devpilot/internal/types"
)

func TestVerify_Clean(t *testing.T) {
	plan := &types.Plan{Tasks: []types.Task{
		{Type: types.TaskTypeCLI, Command: "mkdir out"},
		{Type: types.TaskTypeWriteFile, Path: "out/a.txt", Content: types.TextContent("hi")},
	}}

	result := Verify(plan)
	assert.Equal(t, "passed", result.Status)
	assert.Empty(t, result.Issues)
}

func TestVerify_Empty(t *testing.T) {
	result := Verify(&types.Plan{})
	require.Len(t, result.Issues, 1)
	assert.Equal(t, -1, result.Issues[0].Task)
	assert.Equal(t, 1, result.Warnings)
}

func TestVerify_Issues(t *testing.T) {
	plan := &types.Plan{Tasks: []types.Task{
		{Type: types.TaskTypeCLI},
		{Type: types.TaskTypeCLI, Command: "cd app && npm init -y"},
		{Type: types.TaskTypeWriteFile, Path: "a.txt", Content: types.TextContent("1")},
		{Type: types.TaskTypeWriteFile, Path: "./a.txt", Content: types.TextContent("2")},
		{Type: types.TaskType("deploy")},
	}}

	result := Verify(plan)

	assert.Equal(t, "issues_found", result.Status)
	assert.Equal(t, 2, result.Blockers)
	assert.Equal(t, 2, result.Warnings)

	byTask := make(map[int]VerificationIssue)
	for _, issue := range result.Issues {
		byTask[issue.Task] = issue
	}
	assert.Equal(t, "Task 1 (cli) missing command", byTask[0].Description)
	assert.Equal(t, "single_command", byTask[1].Dimension)
	assert.Equal(t, "write_targets", byTask[3].Dimension)
	assert.Contains(t, byTask[4].Description, "unknown type")
}
