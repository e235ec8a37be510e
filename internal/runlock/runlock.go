// Package runlock keeps two scrapurr processes from capturing the same target
// into the same files.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gofrs/flock"

	"scrapurr/internal/services"
)

// ErrHeld reports that another process owns the target lock.
var ErrHeld = errors.New("target already being captured by another scrapurr process")

var unsafeKey = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Lock is an advisory file lock scoped to one capture target.
type Lock struct {
	path string
	lock *flock.Flock
}

// PathFor returns the lock file location for key inside dir.
func PathFor(dir, key string) string {
	name := unsafeKey.ReplaceAllString(strings.TrimSpace(key), "_")
	if name == "" {
		name = "default"
	}
	return filepath.Join(dir, "scrapurr-"+name+".lock")
}

// Acquire takes the lock for key without blocking.
func Acquire(dir, key string) (*Lock, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "runlock", "acquire", "lock directory is empty", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	path := PathFor(dir, key)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrHeld, path)
	}
	return &Lock{path: path, lock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release unlocks the file. The lock file itself is left in place.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
