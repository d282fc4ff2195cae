// Package display provides unified output formatting for the devpilot CLI.
// It visually separates devpilot orchestration messages from the output of
// the commands it runs.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Display handles all CLI output with visual hierarchy
type Display struct {
	out         io.Writer
	theme       *Theme
	termWidth   int
	noColor     bool
	interactive bool
	now         func() time.Time
}

// New creates a Display writing to stdout
func New() *Display {
	return NewWithOptions(os.Stdout, false)
}

// NewWithOptions creates a Display writing to out. Colors are disabled when
// noColor is set or out is not a terminal.
func NewWithOptions(out io.Writer, noColor bool) *Display {
	tty := isTerminal(out)
	d := &Display{
		out:         out,
		termWidth:   getTerminalWidth(out),
		noColor:     noColor || !tty,
		interactive: tty,
		now:         time.Now,
	}
	if d.noColor {
		d.theme = NoColorTheme()
	} else {
		d.theme = DefaultTheme()
	}
	return d
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// getTerminalWidth returns the terminal width, defaulting to 80
func getTerminalWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok {
		return 80
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width < 40 {
		return 80
	}
	if width > 120 {
		return 120 // Cap at 120 for readability
	}
	return width
}

// Theme returns the current theme for external use
func (d *Display) Theme() *Theme {
	return d.theme
}

// Println writes a plain line
func (d *Display) Println(a ...interface{}) {
	fmt.Fprintln(d.out, a...)
}

// Box prints a boxed message with a title
func (d *Display) Box(title string, lines ...string) {
	if len(lines) == 0 {
		return
	}

	width := d.termWidth - 2
	titleLen := len(title) + 3 // "─ TITLE "
	remainingWidth := max(width-titleLen, 0)

	// Top border: ┌─ PLAN ─────────────────────────┐
	topLine := BoxTopLeft + BoxHorizontal + " " + title + " " + strings.Repeat(BoxHorizontal, remainingWidth) + BoxTopRight
	fmt.Fprintln(d.out, d.theme.Border(topLine))

	// Content lines: │ text                            │
	for _, line := range lines {
		for _, wrapped := range wrapLine(line, width-2) {
			paddedLine := padRight(wrapped, width-2)
			fmt.Fprintln(d.out, d.theme.Border(BoxVertical)+" "+d.theme.Text(paddedLine)+" "+d.theme.Border(BoxVertical))
		}
	}

	// Bottom border: └─────────────────────────────────┘
	bottomLine := BoxBottomLeft + strings.Repeat(BoxHorizontal, width) + BoxBottomRight
	fmt.Fprintln(d.out, d.theme.Border(bottomLine))
}

// Status prints a single-line status message (no box)
func (d *Display) Status(symbol, message string) {
	timestamp := d.now().Format("[15:04:05]")
	fmt.Fprintf(d.out, "%s %s %s\n",
		d.theme.Border(timestamp),
		symbol,
		d.theme.Text(message))
}

// Success prints a success message with green checkmark
func (d *Display) Success(message string) {
	d.Status(d.theme.Success(SymbolSuccess), message)
}

// Error prints an error message with red X
func (d *Display) Error(message string) {
	d.Status(d.theme.Error(SymbolError), message)
}

// Warning prints a warning message with yellow triangle
func (d *Display) Warning(message string) {
	d.Status(d.theme.Warning(SymbolWarning), message)
}

// Info prints an info message with cyan indicator
func (d *Display) Info(label, message string) {
	d.Status(d.theme.Info(label+":"), message)
}

// Retry prints a retry notice with cyan arrow
func (d *Display) Retry(message string) {
	d.Status(d.theme.Info(SymbolRetry), message)
}

// Plan prints the generated plan for review
func (d *Display) Plan(plan string) {
	d.Box("PLAN", strings.Split(strings.TrimRight(plan, "\n"), "\n")...)
}

// TaskStart prints the banner for one task
func (d *Display) TaskStart(index, total int, taskType, detail string) {
	label := fmt.Sprintf("[%d/%d] %s", index, total, taskType)
	if detail != "" {
		label += " " + d.theme.Dim(Truncate(detail, d.termWidth-30))
	}
	d.Status(d.theme.Info(SymbolPending), label)
}

// CommandOutput prints command output with a left gutter, stderr marked
func (d *Display) CommandOutput(stdout, stderr string) {
	d.gutter(GutterOutput, stdout)
	d.gutter(GutterStderr, stderr)
}

func (d *Display) gutter(mark, text string) {
	text = strings.TrimRight(text, "\n")
	if strings.TrimSpace(text) == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(d.out, "%s%s %s\n", IndentOutput, d.theme.OutputGutter(mark), d.theme.OutputText(line))
	}
}

// Summary prints the end-of-run report. failedType is empty when every
// task completed.
func (d *Display) Summary(completed []string, failedType, failedMessage string, dur time.Duration) {
	done := "None"
	if len(completed) > 0 {
		done = strings.Join(completed, ", ")
	}

	lines := []string{"Completed: " + done}
	if failedType != "" {
		lines = append(lines, "Failed at: "+failedType, "Error: "+CleanText(failedMessage))
	}
	lines = append(lines, "Duration: "+dur.Round(time.Millisecond).String())
	d.Box("SUMMARY", lines...)

	if failedType == "" {
		d.Success("All tasks completed successfully!")
	}
}

// SectionBreak prints a horizontal separator between runs
func (d *Display) SectionBreak() {
	fmt.Fprintln(d.out, d.theme.Separator(strings.Repeat(SectionBreak, d.termWidth)))
}

// wrapLine wraps a line on word boundaries to maxWidth
func wrapLine(text string, maxWidth int) []string {
	if maxWidth <= 0 || len(text) <= maxWidth {
		return []string{text}
	}

	var lines []string
	words := strings.Fields(text)
	var currentLine strings.Builder

	for _, word := range words {
		if currentLine.Len()+len(word)+1 > maxWidth {
			if currentLine.Len() > 0 {
				lines = append(lines, currentLine.String())
				currentLine.Reset()
			}
		}
		if currentLine.Len() > 0 {
			currentLine.WriteString(" ")
		}
		currentLine.WriteString(word)
	}
	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

// padRight pads a string to the specified width
func padRight(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

// Truncate truncates text to max length with ellipsis
func Truncate(s string, max int) string {
	s = CleanText(s)
	if max < 4 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// CleanText removes newlines and collapses spaces
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}
