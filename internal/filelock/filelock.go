// Package filelock provides the atomic file writes used by file tasks and the
// lock that keeps a single devpilot run active per working directory.
package filelock

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the run lock
var ErrLocked = errors.New("another devpilot run is active in this directory")

// FileLock wraps a flock file lock
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a new file lock at path
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Path returns the lock file path
func (fl *FileLock) Path() string {
	return fl.path
}

// TryLock attempts to acquire an exclusive lock without blocking.
// Returns true if the lock was acquired.
func (fl *FileLock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(fl.path), 0755); err != nil {
		return false, fmt.Errorf("failed to create lock directory: %w", err)
	}
	acquired, err := fl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
	}
	return acquired, nil
}

// Unlock releases the lock
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// RunLockPath returns the lock file used for runs started in workDir.
// Locks live under lockDir so the project tree is never touched.
func RunLockPath(lockDir, workDir string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(workDir)))
	return filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock")
}

// AcquireRunLock takes the run lock for workDir or returns ErrLocked
func AcquireRunLock(lockDir, workDir string) (*FileLock, error) {
	fl := NewFileLock(RunLockPath(lockDir, workDir))
	acquired, err := fl.TryLock()
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrLocked
	}
	return fl, nil
}

// AtomicWrite writes data to path through a temp file in the same directory
// followed by a rename, so readers never observe a partial file. Parent
// directories are created as needed.
func AtomicWrite(path string, data []byte) error {
	// Keep the mode of an existing target; new files get 0644
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tempPath, err := writeTemp(path, data, mode)
	if err != nil {
		return err
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}
	return nil
}

// CreateExclusive writes data to a new file at path. It never replaces an
// existing file: when path exists the returned error matches fs.ErrExist.
// The content is staged in a temp file and hard-linked into place, so the
// target appears complete or not at all.
func CreateExclusive(path string, data []byte) error {
	tempPath, err := writeTemp(path, data, 0644)
	if err != nil {
		return err
	}
	defer os.Remove(tempPath)

	err = os.Link(tempPath, path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("create %s: %w", path, fs.ErrExist)
	}

	// Filesystems without hard links get a plain exclusive create
	f, ferr := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if ferr != nil {
		return fmt.Errorf("create %s: %w", path, ferr)
	}
	if _, werr := f.Write(data); werr != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, werr)
	}
	return f.Close()
}

// writeTemp stages data in a synced temp file next to path and returns the
// temp file's name
func writeTemp(path string, data []byte, mode os.FileMode) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".devpilot-tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	fail := func(format string, err error) (string, error) {
		tempFile.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf(format, err)
	}

	if _, err := tempFile.Write(data); err != nil {
		return fail("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fail("failed to sync temp file: %w", err)
	}
	if err := tempFile.Chmod(mode); err != nil {
		return fail("failed to set permissions: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return tempPath, nil
}
