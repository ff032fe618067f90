// Package workspace guards the pipeline's mutable directories against
// concurrent invocations.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// ErrLockWouldBlock indicates the workspace is held by another process.
var ErrLockWouldBlock = errors.New("workspace is locked by another process")

// LockFilename is the lock file created inside the workspace directory.
const LockFilename = ".sdmxclgen.lock"

// Lock provides exclusive workspace locking using flock(2).
// It is safe for coordination between multiple processes.
// The lock is automatically released when the process exits or crashes.
type Lock struct {
	path string
	file *os.File
}

// NewLock creates a lock for the given workspace directory.
func NewLock(dir string) *Lock {
	return &Lock{path: filepath.Join(dir, LockFilename)}
}

// Acquire takes the exclusive lock without blocking. Returns
// ErrLockWouldBlock when another invocation holds the workspace.
func (l *Lock) Acquire() error {
	if err := l.ensureFileExists(); err != nil {
		return err
	}

	err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
	if err != nil {
		_ = l.file.Close()
		l.file = nil
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return ErrLockWouldBlock
		}
		return fmt.Errorf("flock failed: %w", err)
	}
	return nil
}

// Release releases the lock.
// It is safe to call Release on an unlocked Lock (no-op).
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}

	err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil

	if err != nil {
		return fmt.Errorf("flock unlock failed: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("close failed: %w", closeErr)
	}
	return nil
}

// Held returns true if the lock is currently held by this instance.
func (l *Lock) Held() bool {
	return l.file != nil
}

// Path returns the path to the lock file.
func (l *Lock) Path() string {
	return l.path
}

// ensureFileExists creates the lock file and its parent directories if needed.
func (l *Lock) ensureFileExists() error {
	if l.file != nil {
		return nil
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}
	l.file = file
	return nil
}
