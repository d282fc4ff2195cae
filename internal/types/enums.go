package types

// TaskType represents the kind of action a task performs
type TaskType string

const (
	// TaskTypeCLI runs a shell command (or moves the directory cursor for "cd")
	TaskTypeCLI TaskType = "cli"
	// TaskTypeWriteFile creates a new file and refuses to overwrite
	TaskTypeWriteFile TaskType = "writeFile"
	// TaskTypeAppendFile appends to a file, creating it if needed
	TaskTypeAppendFile TaskType = "appendFile"
	// TaskTypeEditFile appends to an existing file after a newline separator
	TaskTypeEditFile TaskType = "editFile"
	// TaskTypeInstallPackages runs the package manager install in the project root
	TaskTypeInstallPackages TaskType = "installPackages"
	// TaskTypeGenerateLogic asks the model for source code and writes it to disk
	TaskTypeGenerateLogic TaskType = "generateLogic"
)

// IsValid checks if a task type is one the dispatcher knows how to run
func (t TaskType) IsValid() bool {
	for _, valid := range AllTaskTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

// AllTaskTypes returns all valid task type values
func AllTaskTypes() []TaskType {
	return []TaskType{
		TaskTypeCLI,
		TaskTypeWriteFile,
		TaskTypeAppendFile,
		TaskTypeEditFile,
		TaskTypeInstallPackages,
		TaskTypeGenerateLogic,
	}
}

// String returns the string representation of the task type
func (t TaskType) String() string {
	return string(t)
}
