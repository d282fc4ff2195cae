package display

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDisplay() (*Display, *bytes.Buffer) {
	var buf bytes.Buffer
	d := NewWithOptions(&buf, false)
	d.now = func() time.Time { return time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC) }
	return d, &buf
}

func TestNewWithOptions_NonTerminalDisablesColor(t *testing.T) {
	d, _ := newTestDisplay()
	assert.True(t, d.noColor)
	assert.False(t, d.interactive)
	assert.Equal(t, 80, d.termWidth)
	assert.Equal(t, "plain", d.Theme().Error("plain"))
}

func TestStatusLines(t *testing.T) {
	d, buf := newTestDisplay()

	d.Success("done")
	d.Error("broken")
	d.Warning("careful")
	d.Info("Model", "gpt")

	assert.Equal(t,
		"[15:04:05] ✓ done\n"+
			"[15:04:05] ✗ broken\n"+
			"[15:04:05] ⚠ careful\n"+
			"[15:04:05] Model: gpt\n",
		buf.String())
}

func TestBoxWrapsAndPads(t *testing.T) {
	d, buf := newTestDisplay()
	d.termWidth = 40

	d.Box("PLAN", "1. short", strings.Repeat("word ", 12))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.True(t, strings.HasPrefix(lines[0], "┌─ PLAN "))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "└"))
	for _, line := range lines[1 : len(lines)-1] {
		assert.Equal(t, 40, len([]rune(line)), "line %q should fill the box", line)
	}
}

func TestBoxEmpty(t *testing.T) {
	d, buf := newTestDisplay()
	d.Box("EMPTY")
	assert.Empty(t, buf.String())
}

func TestCommandOutput(t *testing.T) {
	d, buf := newTestDisplay()

	d.CommandOutput("line one\nline two\n", "warn\n")
	d.CommandOutput("", "  \n")

	assert.Equal(t, "  │ line one\n  │ line two\n  ! warn\n", buf.String())
}

func TestSummary(t *testing.T) {
	t.Run("all completed", func(t *testing.T) {
		d, buf := newTestDisplay()
		d.Summary([]string{"cli", "writeFile"}, "", "", time.Second)

		out := buf.String()
		assert.Contains(t, out, "Completed: cli, writeFile")
		assert.NotContains(t, out, "Failed at")
		assert.Contains(t, out, "All tasks completed successfully!")
	})

	t.Run("with failure", func(t *testing.T) {
		d, buf := newTestDisplay()
		d.Summary(nil, "editFile", "file not found:\n a.txt", time.Second)

		out := buf.String()
		assert.Contains(t, out, "Completed: None")
		assert.Contains(t, out, "Failed at: editFile")
		assert.Contains(t, out, "Error: file not found: a.txt")
		assert.NotContains(t, out, "All tasks completed successfully!")
	})
}

func TestSpinNonInteractive(t *testing.T) {
	d, buf := newTestDisplay()

	s := d.Spin("Thinking...")
	s.Stop(true)
	s.Stop(false)

	assert.Equal(t, "[15:04:05] ○ Thinking...\n", buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hello w...", Truncate("hello world again", 10))
	assert.Equal(t, "a b", Truncate("a\n  b", 10))
}

func TestTerminalPrompter(t *testing.T) {
	d, out := newTestDisplay()
	in := strings.NewReader("\n  build a site  \ny\nno\nYES\nrename it\n")
	p := NewTerminalPrompter(in, d)
	ctx := context.Background()

	task, err := p.AskTask(ctx)
	require.NoError(t, err)
	assert.Equal(t, "build a site", task)

	ok, err := p.ConfirmPlan(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.ConfirmRetry(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.ConfirmFix(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	fix, err := p.AskFix(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rename it", fix)

	assert.Equal(t, 2, strings.Count(out.String(), QuestionTask), "empty answer should repeat the question")
	assert.Contains(t, out.String(), QuestionConfirmPlan+" (y/N)")
}

func TestTerminalPrompter_DefaultsToNo(t *testing.T) {
	d, _ := newTestDisplay()
	p := NewTerminalPrompter(strings.NewReader("\nmaybe\n"), d)

	for i := 0; i < 2; i++ {
		ok, err := p.ConfirmPlan(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestTerminalPrompter_EOF(t *testing.T) {
	d, _ := newTestDisplay()

	p := NewTerminalPrompter(strings.NewReader("last answer"), d)
	got, err := p.AskFix(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "last answer", got)

	_, err = p.ConfirmFix(context.Background())
	assert.True(t, errors.Is(err, ErrInputClosed))
}

func TestTerminalPrompter_CancelledContext(t *testing.T) {
	d, _ := newTestDisplay()
	p := NewTerminalPrompter(strings.NewReader("y\n"), d)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ConfirmRetry(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
