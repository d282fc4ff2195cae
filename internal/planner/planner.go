package planner

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/daydemir/devpilot/internal/folder"
	"github.com/daydemir/devpilot/internal/llm"
	"github.com/daydemir/devpilot/internal/prompts"
	"github.com/daydemir/devpilot/internal/types"
)

// Planner turns user requests into plans and task lists using the
// generation service and the prompt templates
type Planner struct {
	Generator llm.Generator
	// WorkDir is searched for .devpilot/prompts overrides
	WorkDir  string
	Platform string
	Logger   *zap.Logger
}

// NewPlanner creates a new Planner instance
func NewPlanner(gen llm.Generator, workDir string, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		Generator: gen,
		WorkDir:   workDir,
		Platform:  runtime.GOOS,
		Logger:    logger,
	}
}

// Plan asks for a human-readable plan for the task description
func (p *Planner) Plan(ctx context.Context, description string) (string, error) {
	prompt, err := prompts.Render(p.WorkDir, prompts.Plan, map[string]string{
		"Task":     description,
		"Platform": p.Platform,
	})
	if err != nil {
		return "", err
	}

	text, err := p.complete(ctx, prompts.Plan, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// TasksFromPlan converts an approved plan into structured tasks
func (p *Planner) TasksFromPlan(ctx context.Context, plan string) (*types.Plan, error) {
	prompt, err := prompts.Render(p.WorkDir, prompts.JSONPlan, map[string]string{
		"Plan":     plan,
		"Platform": p.Platform,
	})
	if err != nil {
		return nil, err
	}

	text, err := p.complete(ctx, prompts.JSONPlan, prompt)
	if err != nil {
		return nil, err
	}
	return p.parse(prompts.JSONPlan, text)
}

// FixTasks converts a fix request into structured tasks.
// snapshot is the current project tree and may be nil.
func (p *Planner) FixTasks(ctx context.Context, fix string, snapshot []folder.Node) (*types.Plan, error) {
	prompt, err := prompts.Render(p.WorkDir, prompts.Fix, map[string]string{
		"Fix":      fix,
		"Platform": p.Platform,
		"Folder":   strings.TrimRight(folder.Render(snapshot), "\n"),
	})
	if err != nil {
		return nil, err
	}

	text, err := p.complete(ctx, prompts.Fix, prompt)
	if err != nil {
		return nil, err
	}
	return p.parse(prompts.Fix, text)
}

// GenerateCode asks for complete source code matching description.
// The text is returned verbatim.
func (p *Planner) GenerateCode(ctx context.Context, description string) (string, error) {
	prompt, err := prompts.Render(p.WorkDir, prompts.GenerateLogic, map[string]string{
		"Description": description,
	})
	if err != nil {
		return "", err
	}
	return p.complete(ctx, prompts.GenerateLogic, prompt)
}

func (p *Planner) complete(ctx context.Context, name, prompt string) (string, error) {
	if p.Generator == nil {
		return "", fmt.Errorf("no text generator configured")
	}

	p.Logger.Debug("requesting completion", zap.String("prompt", name), zap.Int("chars", len(prompt)))
	text, err := p.Generator.Complete(ctx, prompt)
	if err != nil {
		p.Logger.Warn("completion failed", zap.String("prompt", name), zap.Error(err))
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", &llm.ServiceError{Empty: true}
	}
	return text, nil
}

func (p *Planner) parse(name, text string) (*types.Plan, error) {
	plan, err := ParsePlan(text)
	if err != nil {
		p.Logger.Warn("response did not contain a plan", zap.String("prompt", name), zap.Error(err))
		return nil, err
	}
	p.Logger.Debug("parsed plan", zap.String("prompt", name), zap.Int("tasks", len(plan.Tasks)))
	return plan, nil
}
