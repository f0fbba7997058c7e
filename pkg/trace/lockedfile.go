package trace

import (
	"fmt"
	"os"

	"github.com/gofrs/flock"
)

// LockedFile is a trace output file paired with the advisory lock guarding
// it against a concurrent writer - needed because -watch mode truncates and
// rewrites the same path on every re-run.
type LockedFile struct {
	File *os.File
	lock *flock.Flock
}

// OpenLocked acquires an exclusive advisory lock on path+".lock" and then
// truncates/creates path for writing. The lock is released and the file
// closed by Close.
func OpenLocked(path string) (*LockedFile, error) {
	lock := flock.New(path + ".lock")

	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire trace output lock for %q: %w", path, err)
	}

	if !locked {
		return nil, fmt.Errorf("trace output %q is locked by another run", path)
	}

	file, err := os.Create(path) //nolint:gosec // path is an operator-supplied CLI flag
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open trace output %q: %w", path, err)
	}

	return &LockedFile{File: file, lock: lock}, nil
}

// Close closes the underlying file and releases the advisory lock.
func (lf *LockedFile) Close() error {
	closeErr := lf.File.Close()
	unlockErr := lf.lock.Unlock()

	if closeErr != nil {
		return fmt.Errorf("close trace output: %w", closeErr)
	}

	if unlockErr != nil {
		return fmt.Errorf("release trace output lock: %w", unlockErr)
	}

	return nil
}
