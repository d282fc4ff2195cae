package cli

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/daydemir/devpilot/internal/config"
	"github.com/daydemir/devpilot/internal/display"
	"github.com/daydemir/devpilot/internal/executor"
	"github.com/daydemir/devpilot/internal/folder"
	"github.com/daydemir/devpilot/internal/planner"
	"github.com/daydemir/devpilot/internal/shell"
)

// Flow is one interactive session: ask, plan, confirm, execute, fix
type Flow struct {
	Planner  *planner.Planner
	Prompter display.Prompter
	Display  *display.Display
	Runner   shell.Runner
	Logger   *zap.Logger
	WorkDir  string
	Settings config.FlowConfig
}

// Run drives the session. Declining the plan or closing the input ends it
// without error.
func (f *Flow) Run(ctx context.Context) error {
	if f.Logger == nil {
		f.Logger = zap.NewNop()
	}

	task, err := f.Prompter.AskTask(ctx)
	if errors.Is(err, display.ErrInputClosed) {
		return nil
	}
	if err != nil {
		return err
	}

	spinner := f.Display.Spin("Generating plan...")
	planText, err := f.Planner.Plan(ctx, task)
	spinner.Stop(err == nil)
	if err != nil {
		return fmt.Errorf("failed to generate plan: %w", err)
	}

	f.Display.Plan(planText)

	ok, err := f.Prompter.ConfirmPlan(ctx)
	if err != nil && !errors.Is(err, display.ErrInputClosed) {
		return err
	}
	if !ok {
		f.Display.Println("Plan execution cancelled")
		return nil
	}

	spinner = f.Display.Spin("Converting plan to tasks...")
	plan, err := f.Planner.TasksFromPlan(ctx, planText)
	spinner.Stop(err == nil)
	if err != nil {
		var perr *planner.ParseError
		if errors.As(err, &perr) {
			f.Display.Error("Could not read tasks from the response")
			f.Display.Println(perr.Raw)
		}
		return fmt.Errorf("failed to convert plan to tasks: %w", err)
	}

	f.showVerification(planner.Verify(plan))

	ec := &plan.Context
	ec.Resolve(f.WorkDir)
	ec.FolderStructure = folder.Snapshot(ec.RootOr(f.WorkDir))

	f.Logger.Info("executing plan",
		zap.Int("tasks", len(plan.Tasks)),
		zap.String("root", ec.RootOr(f.WorkDir)),
		zap.Int("files", folder.CountFiles(ec.FolderStructure)))

	dispatcher := &executor.TaskDispatcher{
		Runner:         f.Runner,
		Code:           f.Planner,
		Display:        f.Display,
		Logger:         f.Logger,
		WorkDir:        f.WorkDir,
		PackageManager: f.Settings.PackageManager,
	}
	exec := executor.New(&executor.Config{
		WorkDir:     f.WorkDir,
		MaxFixDepth: f.Settings.MaxFixDepth,
	}, ec, executor.Deps{
		Dispatcher: dispatcher,
		Prompter:   f.Prompter,
		Display:    f.Display,
		Fixer:      f.Planner,
		Logger:     f.Logger,
	})
	return exec.Loop(ctx, plan.Tasks)
}

func (f *Flow) showVerification(result *planner.VerificationResult) {
	for _, issue := range result.Issues {
		msg := issue.Description
		if issue.FixHint != "" {
			msg += " (" + issue.FixHint + ")"
		}
		f.Display.Warning(msg)
	}
}
