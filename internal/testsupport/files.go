package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteCapture creates path, and any missing parents, filled with size bytes
// of a repeating pattern standing in for transport-stream data. A size <= 0
// creates an empty file.
func WriteCapture(t testing.TB, path string, size int64) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		// MPEG-TS sync byte
		buf[i] = 0x47
	}

	for remaining := size; remaining > 0; {
		n := min(remaining, int64(chunkSize))
		if _, err := f.Write(buf[:n]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= n
	}
}
