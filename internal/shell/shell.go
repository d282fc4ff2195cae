// Package shell is the single place devpilot starts external commands.
// Every command runs through a Runner with an explicit working directory.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/daydemir/devpilot/internal/utils"
)

// Output holds what a command printed
type Output struct {
	Stdout string
	Stderr string
}

// Runner runs a command line in a directory
type Runner interface {
	Run(ctx context.Context, dir, command string) (Output, error)
}

// ShellError is returned when a command exits non-zero or cannot start
type ShellError struct {
	Command  string
	Dir      string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ShellError) Error() string {
	msg := fmt.Sprintf("command failed: %s", e.Command)
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(" (exit %d)", e.ExitCode)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		return msg + ": " + stderr
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *ShellError) Unwrap() error {
	return e.Err
}

// Exec runs commands through the platform shell
type Exec struct {
	// Shell overrides the interpreter, e.g. "bash". The command is passed
	// after "-c" (or "/C" for cmd).
	Shell string
}

// NewExec creates a Runner using shell, or the platform default when empty
func NewExec(shell string) *Exec {
	return &Exec{Shell: shell}
}

func (e *Exec) args(command string) (string, []string) {
	sh := e.Shell
	if sh == "" {
		if runtime.GOOS == "windows" {
			sh = "cmd"
		} else {
			sh = "sh"
		}
	}
	if strings.EqualFold(sh, "cmd") || strings.EqualFold(sh, "cmd.exe") {
		return sh, []string{"/C", command}
	}
	return sh, []string{"-c", command}
}

// Run executes command in dir and captures its output
func (e *Exec) Run(ctx context.Context, dir, command string) (Output, error) {
	name, args := e.args(command)
	if e.Shell != "" {
		name = utils.ResolveBinaryPath(name)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return out, nil
	}

	shellErr := &ShellError{
		Command: command,
		Dir:     dir,
		Stderr:  out.Stderr,
		Err:     err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		shellErr.ExitCode = exitErr.ExitCode()
	}
	return out, shellErr
}
