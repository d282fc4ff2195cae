// Package folder builds the project snapshot that gives the planner and the
// executor awareness of what already exists on disk.
//
// A snapshot is a tree of Nodes. Files are leaves carrying their full path;
// directories carry their children. Hidden entries (names starting with ".")
// and dependency directories are never included.
package folder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExcludes lists directory names skipped in addition to hidden entries
var DefaultExcludes = []string{
	"node_modules",
	"vendor",
	"bower_components",
	"__pycache__",
	".git",
}

// Node is a single entry in a snapshot
type Node struct {
	Name     string
	Path     string
	IsDir    bool
	Children []Node
}

// Snapshot walks dir and returns its tree, excluding hidden entries and
// DefaultExcludes. A missing or unreadable root yields an empty, non-nil slice.
func Snapshot(dir string) []Node {
	return SnapshotExcluding(dir, DefaultExcludes)
}

// SnapshotExcluding is Snapshot with an explicit exclusion list
func SnapshotExcluding(dir string, excludes []string) []Node {
	skip := make(map[string]bool, len(excludes))
	for _, name := range excludes {
		skip[name] = true
	}
	return walk(dir, skip)
}

func walk(dir string, skip map[string]bool) []Node {
	nodes := []Node{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nodes
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || skip[name] {
			continue
		}

		full := filepath.Join(dir, name)
		if entry.IsDir() {
			nodes = append(nodes, Node{
				Name:     name,
				Path:     full,
				IsDir:    true,
				Children: walk(full, skip),
			})
			continue
		}

		nodes = append(nodes, Node{Name: name, Path: full})
	}

	return nodes
}

// MarshalJSON encodes files as their path string and directories as a
// single-key object mapping the directory name to its children.
func (n Node) MarshalJSON() ([]byte, error) {
	if !n.IsDir {
		return json.Marshal(n.Path)
	}
	children := n.Children
	if children == nil {
		children = []Node{}
	}
	return json.Marshal(map[string][]Node{n.Name: children})
}

// UnmarshalJSON accepts the shape produced by MarshalJSON
func (n *Node) UnmarshalJSON(data []byte) error {
	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		*n = Node{Name: filepath.Base(path), Path: path}
		return nil
	}

	var dir map[string][]Node
	if err := json.Unmarshal(data, &dir); err != nil {
		return fmt.Errorf("folder node must be a path string or a directory object: %w", err)
	}
	if len(dir) != 1 {
		return fmt.Errorf("folder directory object must have exactly one key, got %d", len(dir))
	}
	for name, children := range dir {
		*n = Node{Name: name, IsDir: true, Children: children}
	}
	return nil
}

// Render draws the snapshot as an indented listing, one entry per line,
// directories suffixed with "/".
func Render(nodes []Node) string {
	var sb strings.Builder
	render(&sb, nodes, 0)
	return sb.String()
}

func render(sb *strings.Builder, nodes []Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		if n.IsDir {
			sb.WriteString(indent + n.Name + "/\n")
			render(sb, n.Children, depth+1)
			continue
		}
		sb.WriteString(indent + n.Name + "\n")
	}
}

// CountFiles returns the number of file leaves in the snapshot
func CountFiles(nodes []Node) int {
	total := 0
	for _, n := range nodes {
		if n.IsDir {
			total += CountFiles(n.Children)
			continue
		}
		total++
	}
	return total
}
