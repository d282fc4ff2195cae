package display

import (
	"fmt"

	"github.com/fatih/color"
)

// Box drawing characters
const (
	BoxTopLeft     = "┌"
	BoxTopRight    = "┐"
	BoxBottomLeft  = "└"
	BoxBottomRight = "┘"
	BoxHorizontal  = "─"
	BoxVertical    = "│"
	SectionBreak   = "━"
)

// Status symbols
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolRetry   = "↻"
	SymbolPending = "○"
	SymbolPrompt  = "?"
)

// Gutter characters for command output
const (
	GutterOutput = "│"
	GutterStderr = "!"
)

// IndentOutput is the indentation for command output
const IndentOutput = "  "

// Theme holds all color functions for consistent styling
type Theme struct {
	// devpilot orchestration (prominent)
	Border func(a ...interface{}) string
	Label  func(a ...interface{}) string
	Text   func(a ...interface{}) string

	// Command output (subdued)
	OutputGutter func(a ...interface{}) string
	OutputText   func(a ...interface{}) string

	// Status indicators
	Success func(a ...interface{}) string
	Error   func(a ...interface{}) string
	Warning func(a ...interface{}) string
	Info    func(a ...interface{}) string

	// Structural elements
	Bold      func(a ...interface{}) string
	Dim       func(a ...interface{}) string
	Separator func(a ...interface{}) string
}

// DefaultTheme creates the default color theme
func DefaultTheme() *Theme {
	return &Theme{
		// Orchestration - bright cyan for visibility
		Border: color.New(color.FgCyan).SprintFunc(),
		Label:  color.New(color.FgCyan, color.Bold).SprintFunc(),
		Text:   color.New(color.FgWhite).SprintFunc(),

		// Command output - dimmer/gray to distinguish from devpilot
		OutputGutter: color.New(color.FgHiBlack).SprintFunc(),
		OutputText:   color.New(color.FgWhite).SprintFunc(),

		// Status indicators
		Success: color.New(color.FgGreen).SprintFunc(),
		Error:   color.New(color.FgRed).SprintFunc(),
		Warning: color.New(color.FgYellow).SprintFunc(),
		Info:    color.New(color.FgCyan).SprintFunc(),

		// Structural
		Bold:      color.New(color.Bold).SprintFunc(),
		Dim:       color.New(color.FgHiBlack).SprintFunc(),
		Separator: color.New(color.FgCyan).SprintFunc(),
	}
}

// NoColorTheme creates a theme without colors (for --no-color flag or non-TTY)
func NoColorTheme() *Theme {
	identity := func(a ...interface{}) string {
		return fmt.Sprint(a...)
	}
	return &Theme{
		Border:       identity,
		Label:        identity,
		Text:         identity,
		OutputGutter: identity,
		OutputText:   identity,
		Success:      identity,
		Error:        identity,
		Warning:      identity,
		Info:         identity,
		Bold:         identity,
		Dim:          identity,
		Separator:    identity,
	}
}
