package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/daydemir/devpilot/internal/folder"
)

// Plan is the structured form of a model-generated plan
type Plan struct {
	Context ExecutionContext `json:"context"`
	Tasks   []Task           `json:"tasks"`
}

// ValidateWithDetails validates every task and returns all problems at once.
// Unknown task types are not reported here; the dispatcher skips them.
func (p *Plan) ValidateWithDetails() *ValidationErrors {
	errs := &ValidationErrors{}
	for i := range p.Tasks {
		errs.Merge(p.Tasks[i].ValidateWithDetails(fmt.Sprintf("tasks[%d]", i)))
	}
	return errs
}

// Task is one atomic step. Type selects which of the optional fields apply.
type Task struct {
	Type        TaskType `json:"type"`
	Command     string   `json:"command,omitempty"`     // cli, optional for installPackages
	Path        string   `json:"path,omitempty"`        // file tasks and generateLogic
	Content     Content  `json:"content,omitzero"`      // writeFile, appendFile, editFile
	Description string   `json:"description,omitempty"` // generateLogic
	Packages    []string `json:"packages,omitempty"`    // installPackages
}

// DefaultLogicPath is used when a generateLogic task has no path
const DefaultLogicPath = "generatedLogic.js"

// LogicPath returns the target path for a generateLogic task
func (t *Task) LogicPath() string {
	if t.Path == "" {
		return DefaultLogicPath
	}
	return t.Path
}

// Validate checks the fields required by the task's type.
// Returns nil for valid tasks and for unknown types.
func (t *Task) Validate() error {
	errs := t.ValidateWithDetails("task")
	if errs.HasErrors() {
		return errs
	}
	return nil
}

// ValidateWithDetails performs detailed validation and returns structured errors
func (t *Task) ValidateWithDetails(fieldPrefix string) *ValidationErrors {
	errs := &ValidationErrors{}

	switch t.Type {
	case "":
		errs.Add(
			fieldPrefix+".type",
			fmt.Sprintf("one of: %v", AllTaskTypes()),
			"",
			"Every task needs a type",
		)
	case TaskTypeCLI:
		if t.Command == "" {
			errs.Add(fieldPrefix+".command", "non-empty string", "", "Provide the shell command to run")
		}
	case TaskTypeWriteFile, TaskTypeAppendFile, TaskTypeEditFile:
		if t.Path == "" {
			errs.Add(fieldPrefix+".path", "non-empty string", "", "Provide the file path relative to rootDir")
		}
		if t.Content.IsZero() {
			errs.Add(fieldPrefix+".content", "string or JSON value", nil, "Provide the content to write")
		}
	case TaskTypeGenerateLogic:
		if t.Description == "" {
			errs.Add(fieldPrefix+".description", "non-empty string", "", "Describe the logic to generate")
		}
	}

	return errs
}

// Content holds file content that may arrive as a JSON string or as any
// other JSON value. Non-string values are rendered as 2-space indented JSON.
type Content struct {
	text       string
	raw        json.RawMessage
	structured bool
	set        bool
}

// TextContent returns Content holding a plain string
func TextContent(s string) Content {
	return Content{text: s, set: true}
}

// String returns the text that gets written to disk
func (c Content) String() string {
	return c.text
}

// IsStructured reports whether the content came from a non-string JSON value
func (c Content) IsStructured() bool {
	return c.structured
}

// IsZero reports whether content was absent or null
func (c Content) IsZero() bool {
	return !c.set
}

// UnmarshalJSON implements json.Unmarshaler
func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = Content{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = TextContent(s)
		return nil
	}

	// json.Indent keeps the key order the model produced
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("content is not valid JSON: %w", err)
	}
	*c = Content{
		text:       buf.String(),
		raw:        append(json.RawMessage(nil), data...),
		structured: true,
		set:        true,
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (c Content) MarshalJSON() ([]byte, error) {
	if !c.set {
		return []byte("null"), nil
	}
	if c.structured {
		return c.raw, nil
	}
	return json.Marshal(c.text)
}

// ExecutionContext is the project metadata shared by every task of a flow
type ExecutionContext struct {
	RootDir         string         `json:"rootDir,omitempty"`
	Framework       string         `json:"framework,omitempty"`
	Language        string         `json:"language,omitempty"`
	PackageManager  string         `json:"packageManager,omitempty"`
	Extra           map[string]any `json:"-"`
	FolderStructure []folder.Node  `json:"folderStructure,omitempty"`
}

// UnmarshalJSON picks the known string keys and keeps everything else in Extra
func (c *ExecutionContext) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("context must be an object: %w", err)
	}

	*c = ExecutionContext{}
	for key, value := range fields {
		s, isString := value.(string)
		switch key {
		case "rootDir":
			if isString {
				c.RootDir = s
			}
		case "framework":
			if isString {
				c.Framework = s
			}
		case "language":
			if isString {
				c.Language = s
			}
		case "packageManager":
			if isString {
				c.PackageManager = s
			}
		case "folderStructure":
			// Always taken from disk, never from the model
		default:
			if c.Extra == nil {
				c.Extra = make(map[string]any)
			}
			c.Extra[key] = value
		}
	}
	return nil
}

// Resolve makes RootDir absolute against baseDir. An empty RootDir stays
// empty so callers can apply their own fallback.
func (c *ExecutionContext) Resolve(baseDir string) {
	if c.RootDir == "" || filepath.IsAbs(c.RootDir) {
		return
	}
	c.RootDir = filepath.Clean(filepath.Join(baseDir, c.RootDir))
}

// RootOr returns RootDir, or fallback when no root was given
func (c *ExecutionContext) RootOr(fallback string) string {
	if c == nil || c.RootDir == "" {
		return fallback
	}
	return c.RootDir
}
