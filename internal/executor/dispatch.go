package executor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/daydemir/devpilot/internal/display"
	"github.com/daydemir/devpilot/internal/filelock"
	"github.com/daydemir/devpilot/internal/llm"
	"github.com/daydemir/devpilot/internal/shell"
	"github.com/daydemir/devpilot/internal/types"
	"github.com/daydemir/devpilot/internal/utils"
)

// Dispatcher performs a single attempt of one task
type Dispatcher interface {
	Dispatch(ctx context.Context, task types.Task, ec *types.ExecutionContext, cursor *Cursor) error
}

// CodeGenerator produces source code for generateLogic tasks
type CodeGenerator interface {
	GenerateCode(ctx context.Context, description string) (string, error)
}

// TaskDispatcher executes tasks against the filesystem, the shell and the
// code generator
type TaskDispatcher struct {
	Runner  shell.Runner
	Code    CodeGenerator
	Display *display.Display
	Logger  *zap.Logger
	// WorkDir is the process working directory. appendFile and
	// installPackages fall back to it when the context has no root.
	WorkDir string
	// PackageManager is used when neither the context nor a lockfile names one
	PackageManager string
}

// Dispatch validates task and runs it once. Unknown types are skipped with a
// warning and return nil.
func (d *TaskDispatcher) Dispatch(ctx context.Context, task types.Task, ec *types.ExecutionContext, cursor *Cursor) error {
	if err := task.Validate(); err != nil {
		return err
	}

	log := d.logger().With(zap.String("task_type", string(task.Type)), zap.String("cursor", cursor.Dir()))

	switch task.Type {
	case types.TaskTypeCLI:
		return d.runCLI(ctx, log, task, cursor)
	case types.TaskTypeWriteFile:
		return d.writeFile(log, task, ec, cursor)
	case types.TaskTypeAppendFile:
		return d.appendFile(log, task, ec)
	case types.TaskTypeEditFile:
		return d.editFile(log, task, ec, cursor)
	case types.TaskTypeInstallPackages:
		return d.installPackages(ctx, log, task, ec)
	case types.TaskTypeGenerateLogic:
		return d.generateLogic(ctx, log, task, cursor)
	default:
		log.Warn("skipping task", zap.Error(fmt.Errorf("%w: %s", ErrUnknownTaskType, task.Type)))
		if d.Display != nil {
			d.Display.Warning(fmt.Sprintf("Unknown task type: %s (skipped)", task.Type))
		}
		return nil
	}
}

func (d *TaskDispatcher) runCLI(ctx context.Context, log *zap.Logger, task types.Task, cursor *Cursor) error {
	if target, ok := parseCD(task.Command); ok {
		dir := cursor.Change(target)
		log.Debug("changed directory", zap.String("dir", dir))
		if d.Display != nil {
			d.Display.Info("cd", dir)
		}
		return nil
	}
	return d.run(ctx, log, cursor.Dir(), task.Command)
}

func (d *TaskDispatcher) run(ctx context.Context, log *zap.Logger, dir, command string) error {
	if d.Runner == nil {
		return fmt.Errorf("no command runner configured")
	}

	log.Debug("running command", zap.String("command", command), zap.String("dir", dir))
	out, err := d.Runner.Run(ctx, dir, command)
	if d.Display != nil {
		d.Display.CommandOutput(out.Stdout, out.Stderr)
	}
	if err != nil {
		log.Debug("command failed", zap.String("command", command), zap.Error(err))
		return err
	}
	return nil
}

func (d *TaskDispatcher) writeFile(log *zap.Logger, task types.Task, ec *types.ExecutionContext, cursor *Cursor) error {
	target := utils.ResolvePath(ec.RootOr(cursor.Dir()), task.Path)
	if utils.FileExists(target) {
		return &AlreadyExistsError{Path: target}
	}
	if err := filelock.CreateExclusive(target, []byte(task.Content.String())); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return &AlreadyExistsError{Path: target}
		}
		return err
	}
	log.Debug("wrote file", zap.String("path", target))
	return nil
}

func (d *TaskDispatcher) appendFile(log *zap.Logger, task types.Task, ec *types.ExecutionContext) error {
	target := utils.ResolvePath(ec.RootOr(d.WorkDir), task.Path)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", target, err)
	}

	f, err := os.OpenFile(target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	if _, err := f.WriteString(task.Content.String()); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", target, err)
	}
	log.Debug("appended to file", zap.String("path", target))
	return nil
}

func (d *TaskDispatcher) editFile(log *zap.Logger, task types.Task, ec *types.ExecutionContext, cursor *Cursor) error {
	target := utils.ResolvePath(ec.RootOr(cursor.Dir()), task.Path)
	existing, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &NotFoundError{Path: target}
		}
		return fmt.Errorf("failed to read %s: %w", target, err)
	}

	updated := string(existing) + "\n" + task.Content.String()
	if err := filelock.AtomicWrite(target, []byte(updated)); err != nil {
		return err
	}
	log.Debug("edited file", zap.String("path", target))
	return nil
}

func (d *TaskDispatcher) installPackages(ctx context.Context, log *zap.Logger, task types.Task, ec *types.ExecutionContext) error {
	dir := ec.RootOr(d.WorkDir)
	pm := d.packageManager(ec, dir)

	var command string
	switch {
	case len(task.Packages) > 0:
		command = installCommand(pm, task.Packages)
	case strings.TrimSpace(task.Command) != "":
		command = task.Command
	default:
		command = installCommand(pm, nil)
	}

	err := d.run(ctx, log.With(zap.String("package_manager", pm)), dir, command)
	var shellErr *shell.ShellError
	if errors.As(err, &shellErr) && shellErr.ExitCode == 127 && strings.HasPrefix(command, pm+" ") {
		return fmt.Errorf("%w: %w", utils.BinaryNotFoundError(pm), err)
	}
	return err
}

// packageManager picks the context's manager, then a lockfile in dir, then
// the configured default
func (d *TaskDispatcher) packageManager(ec *types.ExecutionContext, dir string) string {
	if ec != nil && ec.PackageManager != "" {
		return ec.PackageManager
	}
	if detected := DetectPackageManager(dir); detected != nil {
		return detected.Name
	}
	if d.PackageManager != "" {
		return d.PackageManager
	}
	return "npm"
}

func (d *TaskDispatcher) generateLogic(ctx context.Context, log *zap.Logger, task types.Task, cursor *Cursor) error {
	if d.Code == nil {
		return fmt.Errorf("no code generator configured")
	}

	code, err := d.Code.GenerateCode(ctx, task.Description)
	if err != nil {
		return err
	}
	if strings.TrimSpace(code) == "" {
		return &llm.ServiceError{Empty: true}
	}

	target := utils.ResolvePath(cursor.Dir(), task.LogicPath())
	if err := filelock.AtomicWrite(target, []byte(code)); err != nil {
		return err
	}
	log.Debug("wrote generated code", zap.String("path", target), zap.Int("chars", len(code)))
	if d.Display != nil {
		d.Display.Success("Code written to " + target)
	}
	return nil
}

func (d *TaskDispatcher) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}
