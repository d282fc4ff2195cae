package executor

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/daydemir/devpilot/internal/display"
	"github.com/daydemir/devpilot/internal/folder"
	"github.com/daydemir/devpilot/internal/planner"
	"github.com/daydemir/devpilot/internal/types"
)

// FixPlanner turns a fix request into a new plan
type FixPlanner interface {
	FixTasks(ctx context.Context, fix string, snapshot []folder.Node) (*types.Plan, error)
}

// FixGuard remembers the fix requests already tried in one flow
type FixGuard struct {
	seen map[[sha256.Size]byte]struct{}
}

// NewFixGuard creates an empty guard
func NewFixGuard() *FixGuard {
	return &FixGuard{seen: make(map[[sha256.Size]byte]struct{})}
}

// Seen records text and reports whether an equivalent request was recorded
// before. Case and whitespace differences are ignored.
func (g *FixGuard) Seen(text string) bool {
	sum := sha256.Sum256([]byte(normalizeFix(text)))
	if _, ok := g.seen[sum]; ok {
		return true
	}
	g.seen[sum] = struct{}{}
	return false
}

func normalizeFix(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// Loop runs tasks, then keeps offering fix rounds until the user declines,
// the model returns no tasks or the depth limit is reached.
func (e *Executor) Loop(ctx context.Context, tasks []types.Task) error {
	e.Run(ctx, tasks)

	log := e.deps.Logger
	for depth := 0; ; {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.config.MaxFixDepth > 0 && depth >= e.config.MaxFixDepth {
			log.Info("fix depth limit reached", zap.Int("depth", depth))
			e.show(func(d *display.Display) {
				d.Warning(fmt.Sprintf("Reached the limit of %d fix attempts", e.config.MaxFixDepth))
			})
			return nil
		}

		fix, ok, err := e.askFix(ctx)
		if err != nil {
			return err
		}
		if !ok {
			e.show(func(d *display.Display) { d.Println("Fixing cancelled by the user.") })
			return nil
		}
		depth++

		if e.guard.Seen(fix) {
			log.Info("repeated fix request", zap.Int("depth", depth))
			e.show(func(d *display.Display) {
				d.Warning("This fix was already tried. Describe the problem differently.")
			})
			continue
		}

		plan, err := e.planFix(ctx, fix)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("fix planning failed", zap.Int("depth", depth), zap.Error(err))
			e.showFixError(err)
			continue
		}
		if len(plan.Tasks) == 0 {
			e.show(func(d *display.Display) { d.Warning("No tasks generated for fixing") })
			return nil
		}

		e.show(func(d *display.Display) { d.SectionBreak() })
		e.Run(ctx, plan.Tasks)
	}
}

// askFix returns the fix text, or ok=false when the user declined or the
// input ended
func (e *Executor) askFix(ctx context.Context) (string, bool, error) {
	ok, err := e.deps.Prompter.ConfirmFix(ctx)
	if err != nil {
		return "", false, promptError(err)
	}
	if !ok {
		return "", false, nil
	}

	fix, err := e.deps.Prompter.AskFix(ctx)
	if err != nil {
		return "", false, promptError(err)
	}
	return fix, true, nil
}

func promptError(err error) error {
	if errors.Is(err, display.ErrInputClosed) {
		return nil
	}
	return err
}

// planFix refreshes the folder snapshot and asks the planner for fix tasks
func (e *Executor) planFix(ctx context.Context, fix string) (*types.Plan, error) {
	if e.deps.Fixer == nil {
		return nil, fmt.Errorf("no fix planner configured")
	}

	e.ec.FolderStructure = folder.Snapshot(e.ec.RootOr(e.config.WorkDir))

	var spinner *display.Spinner
	if e.deps.Display != nil {
		spinner = e.deps.Display.Spin("Generating fix tasks...")
	}
	plan, err := e.deps.Fixer.FixTasks(ctx, fix, e.ec.FolderStructure)
	if spinner != nil {
		spinner.Stop(err == nil)
	}
	return plan, err
}

func (e *Executor) showFixError(err error) {
	e.show(func(d *display.Display) {
		var perr *planner.ParseError
		if errors.As(err, &perr) {
			d.Error("Could not read tasks from the fix response: " + perr.Error())
			if perr.Raw != "" {
				d.Println(perr.Raw)
			}
			return
		}
		d.Error("Fix planning failed: " + err.Error())
	})
}
