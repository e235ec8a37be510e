package runlock_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"scrapurr/internal/runlock"
)

func TestAcquireIsExclusivePerKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "locks")

	first, err := runlock.Acquire(dir, "live-somestreamer")
	if err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	t.Cleanup(func() { _ = first.Release() })

	if _, err := runlock.Acquire(dir, "live-somestreamer"); !errors.Is(err, runlock.ErrHeld) {
		t.Fatalf("expected ErrHeld for second acquire, got %v", err)
	}

	other, err := runlock.Acquire(dir, "vod-123")
	if err != nil {
		t.Fatalf("different key should not conflict: %v", err)
	}
	if err := other.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
}

func TestReleaseAllowsReacquire(t *testing.T) {
	dir := t.TempDir()
	lock, err := runlock.Acquire(dir, "clip-Slug")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	again, err := runlock.Acquire(dir, "clip-Slug")
	if err != nil {
		t.Fatalf("reacquire failed: %v", err)
	}
	_ = again.Release()
}

func TestAcquireRejectsEmptyDir(t *testing.T) {
	if _, err := runlock.Acquire(" ", "live-x"); err == nil {
		t.Fatal("expected error for empty lock directory")
	}
}

func TestPathForSanitizesKey(t *testing.T) {
	got := runlock.PathFor("/tmp/locks", "clip-a/b c")
	if filepath.Dir(got) != "/tmp/locks" {
		t.Fatalf("lock escaped its directory: %q", got)
	}
	if strings.ContainsAny(filepath.Base(got), "/ ") {
		t.Fatalf("unsanitized lock name: %q", got)
	}
	if runlock.PathFor("/tmp/locks", "") != "/tmp/locks/scrapurr-default.lock" {
		t.Fatalf("unexpected default lock path: %q", runlock.PathFor("/tmp/locks", ""))
	}
}

func TestNilLockIsSafe(t *testing.T) {
	var lock *runlock.Lock
	if lock.Path() != "" || lock.Release() != nil {
		t.Fatal("nil lock should be inert")
	}
}
