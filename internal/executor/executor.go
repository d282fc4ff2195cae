package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/daydemir/devpilot/internal/display"
	"github.com/daydemir/devpilot/internal/types"
)

// Config holds executor configuration
type Config struct {
	WorkDir     string
	MaxFixDepth int // 0 or less means unlimited
}

// DefaultConfig returns default executor configuration
func DefaultConfig(workDir string) *Config {
	return &Config{
		WorkDir:     workDir,
		MaxFixDepth: 5,
	}
}

// Deps are the collaborators an Executor drives
type Deps struct {
	Dispatcher Dispatcher
	Prompter   display.Prompter
	Display    *display.Display
	Fixer      FixPlanner
	Logger     *zap.Logger
}

// Executor runs task lists against one execution context. The directory
// cursor persists across runs, retries and fix runs.
type Executor struct {
	config  *Config
	deps    Deps
	ec      *types.ExecutionContext
	cursor  *Cursor
	guard   *FixGuard
	results []*RunResult
}

// New creates an executor for ec. A nil ec is treated as an empty context.
func New(config *Config, ec *types.ExecutionContext, deps Deps) *Executor {
	if ec == nil {
		ec = &types.ExecutionContext{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Executor{
		config: config,
		deps:   deps,
		ec:     ec,
		cursor: NewCursor(config.WorkDir),
		guard:  NewFixGuard(),
	}
}

// Cursor returns the directory cursor shared by all runs
func (e *Executor) Cursor() *Cursor {
	return e.cursor
}

// Context returns the execution context shared by all runs
func (e *Executor) Context() *types.ExecutionContext {
	return e.ec
}

// Results returns every run result produced so far, oldest first
func (e *Executor) Results() []*RunResult {
	return e.results
}

// FailureRecord is one failed attempt of a task
type FailureRecord struct {
	Task    types.Task
	Err     error
	Message string
}

// RunResult holds the outcome of one pass over a task list
type RunResult struct {
	ID        uuid.UUID
	Completed []types.TaskType
	Failed    []FailureRecord
	Aborted   bool
	Duration  time.Duration
}

// FirstFailure returns the earliest failure, or nil when nothing failed
func (r *RunResult) FirstFailure() *FailureRecord {
	if len(r.Failed) == 0 {
		return nil
	}
	return &r.Failed[0]
}

// Success reports whether no attempt failed
func (r *RunResult) Success() bool {
	return len(r.Failed) == 0
}

// Run executes tasks in order. A failed task is offered one retry; a second
// failure, a declined retry or a cancelled context aborts the run.
func (e *Executor) Run(ctx context.Context, tasks []types.Task) *RunResult {
	start := time.Now()
	result := &RunResult{ID: uuid.New()}
	log := e.deps.Logger.With(zap.String("run_id", result.ID.String()))
	log.Info("run started", zap.Int("tasks", len(tasks)), zap.String("cursor", e.cursor.Dir()))

	for i, task := range tasks {
		if ctx.Err() != nil {
			result.Aborted = true
			break
		}

		taskLog := log.With(zap.Int("task_index", i), zap.String("task_type", string(task.Type)))
		e.showTaskStart(i, len(tasks), task)

		err := e.attempt(ctx, taskLog, task, 1)
		if err == nil {
			result.Completed = append(result.Completed, task.Type)
			continue
		}
		result.Failed = append(result.Failed, e.failure(task, err))

		if ctx.Err() != nil {
			result.Aborted = true
			break
		}

		retry, perr := e.deps.Prompter.ConfirmRetry(ctx)
		if perr != nil {
			taskLog.Info("retry prompt failed", zap.Error(perr))
		}
		if !retry {
			result.Aborted = true
			break
		}

		e.show(func(d *display.Display) { d.Retry(fmt.Sprintf("Retrying %s", task.Type)) })
		if err := e.attempt(ctx, taskLog, task, 2); err != nil {
			result.Failed = append(result.Failed, e.failure(task, err))
			result.Aborted = true
			break
		}
		result.Completed = append(result.Completed, task.Type)
	}

	result.Duration = time.Since(start)
	log.Info("run finished",
		zap.Int("completed", len(result.Completed)),
		zap.Int("failed", len(result.Failed)),
		zap.Bool("aborted", result.Aborted),
		zap.Duration("duration", result.Duration))

	e.summarize(result)
	e.results = append(e.results, result)
	return result
}

// attempt dispatches task once and reports a failure to the user
func (e *Executor) attempt(ctx context.Context, log *zap.Logger, task types.Task, n int) error {
	err := e.deps.Dispatcher.Dispatch(ctx, task, e.ec, e.cursor)
	if err == nil {
		log.Debug("task completed", zap.Int("attempt", n))
		return nil
	}

	log.Warn("task failed", zap.Int("attempt", n), zap.Error(err))
	e.show(func(d *display.Display) {
		d.Error(fmt.Sprintf("Error executing task: %s", describeError(err)))
		var verrs *types.ValidationErrors
		if errors.As(err, &verrs) {
			d.Println(verrs.ToPrompt())
		}
		if raw, jerr := json.MarshalIndent(task, "", "  "); jerr == nil {
			d.Println(string(raw))
		}
	})
	return err
}

func (e *Executor) failure(task types.Task, err error) FailureRecord {
	return FailureRecord{Task: task, Err: err, Message: describeError(err)}
}

func (e *Executor) showTaskStart(i, total int, task types.Task) {
	e.show(func(d *display.Display) {
		d.TaskStart(i+1, total, string(task.Type), taskDetail(task))
	})
}

func (e *Executor) summarize(result *RunResult) {
	e.show(func(d *display.Display) {
		completed := make([]string, len(result.Completed))
		for i, t := range result.Completed {
			completed[i] = string(t)
		}
		var failedType, failedMessage string
		if first := result.FirstFailure(); first != nil {
			failedType = string(first.Task.Type)
			failedMessage = first.Message
		}
		d.Summary(completed, failedType, failedMessage, result.Duration)
	})
}

func (e *Executor) show(fn func(d *display.Display)) {
	if e.deps.Display != nil {
		fn(e.deps.Display)
	}
}

// describeError renders err for the user. Validation problems use the
// structured summary.
func describeError(err error) string {
	var verrs *types.ValidationErrors
	if errors.As(err, &verrs) {
		return "task validation failed: " + verrs.Error()
	}
	return err.Error()
}

// taskDetail picks the field that best identifies a task on screen
func taskDetail(task types.Task) string {
	switch {
	case task.Command != "":
		return task.Command
	case task.Path != "":
		return task.Path
	case task.Description != "":
		return task.Description
	default:
		return ""
	}
}
