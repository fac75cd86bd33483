package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path, and any missing parent directories, with size
// bytes of filler content. A size below one byte is bumped to one so the
// file is never empty.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size < 1 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunk = 64 * 1024
	filler := bytes.Repeat([]byte("autobbq "), chunk/8)

	for written := int64(0); written < size; {
		n := size - written
		if n > chunk {
			n = chunk
		}
		if _, err := f.Write(filler[:n]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		written += n
	}
}
