package display

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInputClosed is returned when the input ends before an answer arrives
var ErrInputClosed = errors.New("input closed")

// Prompter asks the user the questions that steer a run
type Prompter interface {
	AskTask(ctx context.Context) (string, error)
	ConfirmPlan(ctx context.Context) (bool, error)
	ConfirmRetry(ctx context.Context) (bool, error)
	ConfirmFix(ctx context.Context) (bool, error)
	AskFix(ctx context.Context) (string, error)
}

// Questions shown by the terminal prompter
const (
	QuestionTask        = "How can I help you today?"
	QuestionConfirmPlan = "Are you sure you want to execute these tasks?"
	QuestionRetry       = "Do you want to retry this task?"
	QuestionConfirmFix  = "Do you want to fix something?"
	QuestionFix         = "What things do you want to fix?"
)

// TerminalPrompter reads line answers from an input stream
type TerminalPrompter struct {
	in    *bufio.Reader
	out   io.Writer
	theme *Theme
}

// NewTerminalPrompter creates a prompter reading from in and writing
// questions through d
func NewTerminalPrompter(in io.Reader, d *Display) *TerminalPrompter {
	return &TerminalPrompter{
		in:    bufio.NewReader(in),
		out:   d.out,
		theme: d.theme,
	}
}

func (p *TerminalPrompter) AskTask(ctx context.Context) (string, error) {
	return p.ask(ctx, QuestionTask)
}

func (p *TerminalPrompter) ConfirmPlan(ctx context.Context) (bool, error) {
	return p.confirm(ctx, QuestionConfirmPlan)
}

func (p *TerminalPrompter) ConfirmRetry(ctx context.Context) (bool, error) {
	return p.confirm(ctx, QuestionRetry)
}

func (p *TerminalPrompter) ConfirmFix(ctx context.Context) (bool, error) {
	return p.confirm(ctx, QuestionConfirmFix)
}

func (p *TerminalPrompter) AskFix(ctx context.Context) (string, error) {
	return p.ask(ctx, QuestionFix)
}

// ask repeats the question until a non-empty answer arrives
func (p *TerminalPrompter) ask(ctx context.Context, question string) (string, error) {
	for {
		fmt.Fprintf(p.out, "%s %s ", p.theme.Success(SymbolPrompt), p.theme.Bold(question))
		line, err := p.readLine(ctx)
		if err != nil {
			return "", err
		}
		if line != "" {
			return line, nil
		}
	}
}

// confirm asks a yes/no question. Anything but an explicit yes is a no.
func (p *TerminalPrompter) confirm(ctx context.Context, question string) (bool, error) {
	fmt.Fprintf(p.out, "%s %s %s ", p.theme.Success(SymbolPrompt), p.theme.Bold(question), p.theme.Dim("(y/N)"))
	line, err := p.readLine(ctx)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (p *TerminalPrompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
