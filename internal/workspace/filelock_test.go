package workspace

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// releaseLock is a test helper that releases and logs any error
func releaseLock(t *testing.T, lock *Lock) {
	t.Helper()
	if err := lock.Release(); err != nil {
		t.Logf("Warning: Release failed: %v", err)
	}
}

func TestLock_Acquire_Success(t *testing.T) {
	lock := NewLock(t.TempDir())
	defer releaseLock(t, lock)

	if err := lock.Acquire(); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if !lock.Held() {
		t.Error("Expected Held to return true")
	}
}

func TestLock_Acquire_AlreadyHeld(t *testing.T) {
	dir := t.TempDir()

	lock1 := NewLock(dir)
	if err := lock1.Acquire(); err != nil {
		t.Fatalf("First Acquire failed: %v", err)
	}
	defer releaseLock(t, lock1)

	lock2 := NewLock(dir)
	err := lock2.Acquire()
	if !errors.Is(err, ErrLockWouldBlock) {
		t.Errorf("Expected ErrLockWouldBlock, got: %v", err)
	}
	if lock2.Held() {
		t.Error("Expected second lock's Held to return false")
	}
}

func TestLock_Release_AllowsReacquisition(t *testing.T) {
	dir := t.TempDir()

	lock1 := NewLock(dir)
	if err := lock1.Acquire(); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := lock1.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if lock1.Held() {
		t.Error("Expected Held to return false after release")
	}

	lock2 := NewLock(dir)
	if err := lock2.Acquire(); err != nil {
		t.Fatalf("Expected to acquire after release, got: %v", err)
	}
	releaseLock(t, lock2)
}

func TestLock_Release_NoOp(t *testing.T) {
	lock := NewLock(t.TempDir())

	// Release without ever acquiring - should be no-op
	if err := lock.Release(); err != nil {
		t.Errorf("Expected no error for no-op release, got: %v", err)
	}
}

func TestLock_Release_MultipleTimes(t *testing.T) {
	lock := NewLock(t.TempDir())
	if err := lock.Acquire(); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if err := lock.Release(); err != nil {
		t.Errorf("First release failed: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Errorf("Second release should be no-op, got: %v", err)
	}
}

func TestLock_CreatesDirectories(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "workspace")

	lock := NewLock(dir)
	defer releaseLock(t, lock)

	if err := lock.Acquire(); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Workspace directory should exist: %v", err)
	}
	if !info.IsDir() {
		t.Error("Expected workspace path to be a directory")
	}
}

func TestLock_Path(t *testing.T) {
	lock := NewLock("/srv/sdmx")

	if want := filepath.Join("/srv/sdmx", LockFilename); lock.Path() != want {
		t.Errorf("Path() = %q, want %q", lock.Path(), want)
	}
}

func TestLock_CrossProcess(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping cross-process test in short mode")
	}

	// Check if flock command is available (not on macOS by default)
	if _, err := exec.LookPath("flock"); err != nil {
		t.Skip("Skipping cross-process test: flock command not available")
	}

	lock := NewLock(t.TempDir())
	if err := lock.Acquire(); err != nil {
		t.Fatalf("Failed to acquire lock in parent: %v", err)
	}
	defer releaseLock(t, lock)

	// Try to acquire in child process - should fail
	cmd := exec.Command("sh", "-c", `
		flock -n "$1" -c "echo acquired" 2>/dev/null || echo "blocked"
	`, "_", lock.Path())
	output, err := cmd.Output()
	if err != nil {
		t.Fatalf("Child process failed: %v", err)
	}

	if string(output) != "blocked\n" {
		t.Errorf("Expected child to be blocked, got: %q", output)
	}
}
