package executor

import (
	"strings"

	"github.com/daydemir/devpilot/internal/utils"
)

// Cursor is the working directory that cli tasks run in. Only a plain
// "cd <dir>" task moves it.
type Cursor struct {
	dir string
}

// NewCursor creates a cursor starting at dir
func NewCursor(dir string) *Cursor {
	return &Cursor{dir: dir}
}

// Dir returns the current directory
func (c *Cursor) Dir() string {
	return c.dir
}

// Change moves the cursor to target, resolved against the current directory.
// No existence check is made; a bad directory fails the next command.
func (c *Cursor) Change(target string) string {
	target = utils.ExpandHome(utils.TrimQuotes(target))
	c.dir = utils.ResolvePath(c.dir, target)
	return c.dir
}

// parseCD returns the target of a plain "cd <dir>" command. Commands that
// chain or pipe are left to the shell.
func parseCD(command string) (string, bool) {
	command = strings.TrimSpace(command)
	if !strings.HasPrefix(command, "cd ") && !strings.HasPrefix(command, "cd\t") {
		return "", false
	}
	target := strings.TrimSpace(command[3:])
	if target == "" || strings.ContainsAny(target, ";|&\n") {
		return "", false
	}
	return target, true
}
